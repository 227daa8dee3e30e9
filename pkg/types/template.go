package types

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// TemplateID references a transactional template, either by its string key
// or by its numeric id. The zero value means "no template".
type TemplateID struct {
	name    string
	num     int64
	numeric bool
	set     bool
}

// Template references a template by its string key.
func Template(name string) TemplateID { return TemplateID{name: name, set: true} }

// TemplateNumber references a template by numeric id.
func TemplateNumber(n int64) TemplateID { return TemplateID{num: n, numeric: true, set: true} }

// IsZero reports whether no template was supplied.
func (t TemplateID) IsZero() bool { return !t.set }

// IsNumeric reports whether the template was supplied as a number.
func (t TemplateID) IsNumeric() bool { return t.numeric }

// isBlank matches the falsy template ids the API refuses: "" and 0.
func (t TemplateID) isBlank() bool {
	if !t.set {
		return true
	}
	if t.numeric {
		return t.num == 0
	}
	return t.name == ""
}

func (t TemplateID) String() string {
	if t.numeric {
		return strconv.FormatInt(t.num, 10)
	}
	return t.name
}

// wire returns the value in the JSON type it was supplied with.
func (t TemplateID) wire() any {
	if t.numeric {
		return t.num
	}
	return t.name
}

func (t TemplateID) MarshalJSON() ([]byte, error) {
	if !t.set {
		return []byte("null"), nil
	}
	return json.Marshal(t.wire())
}

func (t *TemplateID) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*t = TemplateID{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*t = Template(s)
		return nil
	}
	var n int64
	if err := json.Unmarshal(data, &n); err != nil {
		return invalid("transactional_message_id must be a string or integer")
	}
	*t = TemplateNumber(n)
	return nil
}
