package types

import (
	"encoding/json"
	"strconv"
)

// Identifiers tells the CDP how to look a person up. Exactly one of the
// three keys is expected; the constructors below are the only way to build a
// value from Go code and each populates a single key.
//
// Values decoded from JSON may carry zero or several keys. Those are rejected
// by ValidateIdentifiers rather than at decode time so that callers get the
// same error message regardless of how the value was produced.
type Identifiers struct {
	id    *string
	email *string
	cdpID *string
}

// WithID identifies a person by the caller's own opaque id.
func WithID(id string) Identifiers { return Identifiers{id: &id} }

// WithIntID is WithID for numeric ids. The id is sent as a string.
func WithIntID(id int64) Identifiers { return WithID(strconv.FormatInt(id, 10)) }

// WithEmail identifies a person by email address.
func WithEmail(email string) Identifiers { return Identifiers{email: &email} }

// WithCdpID identifies a person by the platform-internal id.
func WithCdpID(cdpID string) Identifiers { return Identifiers{cdpID: &cdpID} }

// ID returns the opaque id and whether it was set.
func (i Identifiers) ID() (string, bool) { return deref(i.id) }

// Email returns the email identifier and whether it was set.
func (i Identifiers) Email() (string, bool) { return deref(i.email) }

// CdpID returns the platform id and whether it was set.
func (i Identifiers) CdpID() (string, bool) { return deref(i.cdpID) }

// ToMap returns the wire form, holding only the populated keys.
func (i Identifiers) ToMap() map[string]string {
	m := make(map[string]string, 1)
	if i.id != nil {
		m["id"] = *i.id
	}
	if i.email != nil {
		m["email"] = *i.email
	}
	if i.cdpID != nil {
		m["cdp_id"] = *i.cdpID
	}
	return m
}

// count reports how many keys hold a non-empty value.
func (i Identifiers) count() int {
	n := 0
	for _, v := range []*string{i.id, i.email, i.cdpID} {
		if v != nil && *v != "" {
			n++
		}
	}
	return n
}

func (i Identifiers) MarshalJSON() ([]byte, error) {
	return json.Marshal(i.ToMap())
}

func (i *Identifiers) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID    *json.RawMessage `json:"id"`
		Email *string          `json:"email"`
		CdpID *string          `json:"cdp_id"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*i = Identifiers{email: raw.Email, cdpID: raw.CdpID}
	if raw.ID != nil {
		// Accept both "42" and 42 for the opaque id.
		var s string
		if err := json.Unmarshal(*raw.ID, &s); err != nil {
			var n json.Number
			if err := json.Unmarshal(*raw.ID, &n); err != nil {
				return invalid("identifiers.id must be a string or integer")
			}
			s = n.String()
		}
		i.id = &s
	}
	return nil
}

func deref(p *string) (string, bool) {
	if p == nil {
		return "", false
	}
	return *p, true
}
