package cdp

import "encoding/json"

// SendResult is what the send operations return when they do not fail with
// an error.
//
// On success OK is true (unless the server answered with "ok": false) and
// Body holds the decoded response object. On a suppressed failure OK is false
// and Error describes it; Summary is set when the failure came from the
// gateway rather than from validation.
type SendResult struct {
	OK      bool
	Body    map[string]any
	Error   string
	Summary *ErrorSummary
}

// MarshalJSON renders the result the way the gateway would: the response
// body whenever the server answered (including a 2xx with "ok": false),
// {"ok": false, "error": ...} for client-side and transport failures.
func (r *SendResult) MarshalJSON() ([]byte, error) {
	if r.Body != nil && r.Error == "" && r.Summary == nil {
		return json.Marshal(r.Body)
	}
	if r.OK {
		return json.Marshal(map[string]any{"ok": true})
	}
	var errField any = r.Error
	if r.Summary != nil {
		errField = r.Summary
	}
	return json.Marshal(map[string]any{"ok": false, "error": errField})
}

// decodeSendBody parses a successful send response. Anything other than a
// JSON object yields {"ok": true}.
func decodeSendBody(raw []byte) (bool, map[string]any) {
	var body map[string]any
	if len(raw) == 0 || json.Unmarshal(raw, &body) != nil || body == nil {
		return true, map[string]any{"ok": true}
	}
	if ok, isBool := body["ok"].(bool); isBool {
		return ok, body
	}
	return true, body
}
