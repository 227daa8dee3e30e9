package types

import (
	"errors"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

const (
	maxIdentifierLen = 255
	maxEventNameLen  = 255
	maxEmailLen      = 254
)

var (
	e164Pattern = regexp.MustCompile(`^\+?[1-9]\d{1,14}$`)

	// validator.Validate caches struct metadata and is safe for concurrent use.
	validate = validator.New()
)

// ValidateIdentifier checks a person identifier used by identify, track and
// device registration.
func ValidateIdentifier(identifier string) error {
	trimmed := strings.TrimSpace(identifier)
	if trimmed == "" {
		return invalid("Identifier cannot be empty")
	}
	if utf8.RuneCountInString(trimmed) > maxIdentifierLen {
		return invalid("Identifier cannot exceed %d characters", maxIdentifierLen)
	}
	return nil
}

func ValidateEventName(name string) error {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return invalid("Event name cannot be empty")
	}
	if utf8.RuneCountInString(trimmed) > maxEventNameLen {
		return invalid("Event name cannot exceed %d characters", maxEventNameLen)
	}
	return nil
}

func ValidateEmail(email string) error {
	if strings.TrimSpace(email) == "" {
		return invalid("Email address cannot be empty")
	}
	// The address limit is in bytes, unlike the identifier limits.
	if len(email) > maxEmailLen {
		return invalid("Email address cannot exceed %d characters", maxEmailLen)
	}
	if err := validate.Var(email, "email"); err != nil {
		return invalid("Invalid email address format")
	}
	return nil
}

// ValidatePhoneNumber accepts E.164 numbers, with or without the leading +.
func ValidatePhoneNumber(phone string) error {
	if strings.TrimSpace(phone) == "" {
		return invalid("Phone number cannot be empty")
	}
	if !e164Pattern.MatchString(phone) {
		return invalid("Phone number must be in international format (e.g., +1234567890)")
	}
	return nil
}

// ValidateIdentifiers requires exactly one of id, email or cdp_id.
func ValidateIdentifiers(ids Identifiers) error {
	if ids.count() != 1 {
		return invalid("identifiers must contain exactly one of: id, email, or cdp_id")
	}
	return nil
}

// Validate checks a send-email request. Field-level rules run first; the
// template/raw mode check runs last and reports every missing raw-mode field
// at once.
func (r *SendEmailRequest) Validate() error {
	if r.To == "" {
		return invalid("to is required")
	}
	if err := ValidateEmail(r.To); err != nil {
		return err
	}
	if err := ValidateIdentifiers(r.Identifiers); err != nil {
		return err
	}

	if r.From != nil {
		if err := ValidateEmail(*r.From); err != nil {
			return err
		}
	}
	if err := validateEmailList("bcc", r.BCC); err != nil {
		return err
	}
	if err := validateEmailList("cc", r.CC); err != nil {
		return err
	}
	if r.ReplyTo != nil {
		if err := ValidateEmail(*r.ReplyTo); err != nil {
			return err
		}
	}

	if r.SendAt != nil && *r.SendAt < 0 {
		return invalid("send_at must be a positive integer")
	}

	for _, f := range []struct {
		name  string
		value *string
	}{
		{"body", r.Body},
		{"amp_body", r.AMPBody},
		{"plaintext_body", r.PlaintextBody},
	} {
		if isBlank(f.value) {
			return invalid("%s cannot be empty if provided", f.name)
		}
	}

	if !r.TransactionalMessageID.IsZero() {
		return nil
	}
	return r.validateRawMode()
}

func (r *SendEmailRequest) validateRawMode() error {
	var missing []string
	if r.Body == nil {
		missing = append(missing, "body is required when not using a template")
	}
	if r.Subject == nil {
		missing = append(missing, "subject is required when not using a template")
	}
	if r.From == nil {
		missing = append(missing, "from is required when not using a template")
	}
	if len(missing) > 0 {
		return invalid("When not using a template: %s", strings.Join(missing, ", "))
	}
	return nil
}

func (r *SendPushRequest) Validate() error {
	if err := ValidateIdentifiers(r.Identifiers); err != nil {
		return err
	}
	if r.TransactionalMessageID.isBlank() {
		return invalid("transactional_message_id is required")
	}
	if isBlank(r.Body) {
		return invalid("body cannot be empty if provided")
	}
	return nil
}

func (r *SendSmsRequest) Validate() error {
	if err := ValidateIdentifiers(r.Identifiers); err != nil {
		return err
	}

	hasTemplate := !r.TransactionalMessageID.IsZero() && r.TransactionalMessageID.String() != ""
	if !hasTemplate && (r.Body == nil || *r.Body == "") {
		return invalid("body is required when not using a template")
	}

	if r.To != nil {
		if err := ValidatePhoneNumber(*r.To); err != nil {
			return err
		}
	}
	if r.From != nil {
		if err := ValidatePhoneNumber(*r.From); err != nil {
			return err
		}
	}
	if isBlank(r.Body) {
		return invalid("body cannot be empty if provided")
	}
	return nil
}

// Validate checks the required device fields and the platform enum.
func (d *DeviceRegistration) Validate() error {
	err := validate.Struct(d)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return invalid("invalid device registration: %v", err)
	}

	fe := fieldErrs[0]
	switch {
	case fe.Field() == "Platform" && fe.Tag() == "oneof":
		return invalid("platform must be 'android', 'ios', or 'web'")
	case fe.Field() == "DeviceID":
		return invalid("deviceId is required")
	case fe.Field() == "Platform":
		return invalid("platform is required")
	case fe.Field() == "FCMToken":
		return invalid("fcmToken is required")
	}
	return invalid("invalid device registration: %s", fe.Error())
}

func validateEmailList(field string, emails []string) error {
	for _, e := range emails {
		if err := ValidateEmail(e); err != nil {
			return invalid("%s: %s", field, err.Error())
		}
	}
	return nil
}

func isBlank(s *string) bool {
	return s != nil && strings.TrimSpace(*s) == ""
}
