package types

import "encoding/json"

// SendPushRequest is the payload of POST v1/send/push. Push messages are
// always template based.
type SendPushRequest struct {
	Identifiers            Identifiers
	TransactionalMessageID TemplateID
	Title                  *string
	Body                   *string
	MessageData            map[string]any
}

func (r *SendPushRequest) ToMap() map[string]any {
	m := map[string]any{"identifiers": r.Identifiers.ToMap()}
	putTemplate(m, "transactional_message_id", r.TransactionalMessageID)
	putString(m, "title", r.Title)
	putString(m, "body", r.Body)
	putData(m, "message_data", r.MessageData)
	return m
}

func (r *SendPushRequest) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.ToMap())
}
