package types

import "encoding/json"

// SendEmailRequest is the payload of POST v1/send/email.
//
// A request is either in template mode (TransactionalMessageID set) or raw
// mode, where Body, Subject and From must all be supplied. Every pointer,
// slice and map field is optional; nil means "not sent".
type SendEmailRequest struct {
	To          string
	Identifiers Identifiers

	TransactionalMessageID TemplateID
	Body                   *string
	Subject                *string
	From                   *string
	MessageData            map[string]any

	// Accepted by the API but not acted on yet. SendEmail warns when any
	// of these are populated.
	SendAt                  *int64
	DisableMessageRetention *bool
	SendToUnsubscribed      *bool
	QueueDraft              *bool
	FakeBCC                 *bool
	ReplyTo                 *string
	Preheader               *string
	Headers                 map[string]string
	DisableCSSPreprocessing *bool
	Tracked                 *bool
	Attachments             map[string]string

	BCC           []string
	CC            []string
	PlaintextBody *string
	AMPBody       *string
	Language      *string
}

// ToMap returns the wire mapping. Absent fields are omitted and the result is
// a fresh map on every call.
func (r *SendEmailRequest) ToMap() map[string]any {
	m := map[string]any{
		"to":          r.To,
		"identifiers": r.Identifiers.ToMap(),
	}
	putTemplate(m, "transactional_message_id", r.TransactionalMessageID)
	putString(m, "body", r.Body)
	putString(m, "subject", r.Subject)
	putString(m, "from", r.From)
	putData(m, "message_data", r.MessageData)
	putInt64(m, "send_at", r.SendAt)
	putBool(m, "disable_message_retention", r.DisableMessageRetention)
	putBool(m, "send_to_unsubscribed", r.SendToUnsubscribed)
	putBool(m, "queue_draft", r.QueueDraft)
	putStrings(m, "bcc", r.BCC)
	putStrings(m, "cc", r.CC)
	putBool(m, "fake_bcc", r.FakeBCC)
	putString(m, "reply_to", r.ReplyTo)
	putString(m, "preheader", r.Preheader)
	putStringMap(m, "headers", r.Headers)
	putBool(m, "disable_css_preprocessing", r.DisableCSSPreprocessing)
	putBool(m, "tracked", r.Tracked)
	putString(m, "body_plain", r.PlaintextBody)
	putString(m, "body_amp", r.AMPBody)
	putString(m, "language", r.Language)
	putStringMap(m, "attachments", r.Attachments)
	return m
}

func (r *SendEmailRequest) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.ToMap())
}

// InertFields lists, in wire-key form, the populated fields that the backend
// currently accepts but ignores.
func (r *SendEmailRequest) InertFields() []string {
	var fields []string
	add := func(set bool, key string) {
		if set {
			fields = append(fields, key)
		}
	}
	add(r.SendAt != nil, "send_at")
	add(r.DisableMessageRetention != nil, "disable_message_retention")
	add(r.SendToUnsubscribed != nil, "send_to_unsubscribed")
	add(r.QueueDraft != nil, "queue_draft")
	add(r.Headers != nil, "headers")
	add(r.DisableCSSPreprocessing != nil, "disable_css_preprocessing")
	add(r.Tracked != nil, "tracked")
	add(r.FakeBCC != nil, "fake_bcc")
	add(r.ReplyTo != nil, "reply_to")
	add(r.Preheader != nil, "preheader")
	add(r.Attachments != nil, "attachments")
	return fields
}
