package types

import "encoding/json"

// SendSmsRequest is the payload of POST v1/send/sms. Without a template the
// message Body is mandatory.
type SendSmsRequest struct {
	Identifiers            Identifiers
	TransactionalMessageID TemplateID
	To                     *string
	From                   *string
	Body                   *string
	MessageData            map[string]any
}

// ToMap returns the wire mapping. The template id keeps the JSON type it was
// supplied with; the client converts it to a string before sending.
func (r *SendSmsRequest) ToMap() map[string]any {
	m := map[string]any{"identifiers": r.Identifiers.ToMap()}
	putTemplate(m, "transactional_message_id", r.TransactionalMessageID)
	putString(m, "to", r.To)
	putString(m, "from", r.From)
	putString(m, "body", r.Body)
	putData(m, "message_data", r.MessageData)
	return m
}

func (r *SendSmsRequest) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.ToMap())
}
