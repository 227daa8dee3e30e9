package types_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notifyhub/opencdp-go/pkg/types"
)

func TestIdentifiers_ToMap(t *testing.T) {
	assert.Equal(t, map[string]string{"id": "user123"}, types.WithID("user123").ToMap())
	assert.Equal(t, map[string]string{"id": "42"}, types.WithIntID(42).ToMap())
	assert.Equal(t, map[string]string{"email": "a@b.com"}, types.WithEmail("a@b.com").ToMap())
	assert.Equal(t, map[string]string{"cdp_id": "c1"}, types.WithCdpID("c1").ToMap())
	assert.Empty(t, types.Identifiers{}.ToMap())
}

func TestIdentifiers_JSON(t *testing.T) {
	raw, err := json.Marshal(types.WithCdpID("c1"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"cdp_id":"c1"}`, string(raw))

	var ids types.Identifiers
	require.NoError(t, json.Unmarshal([]byte(`{"id":1001}`), &ids))
	id, ok := ids.ID()
	assert.True(t, ok)
	assert.Equal(t, "1001", id)

	assert.Error(t, json.Unmarshal([]byte(`{"id":true}`), &ids))
}

func TestSendEmailRequest_ToMap_TemplateOnly(t *testing.T) {
	r := types.SendEmailRequest{
		To:                     "user@example.com",
		Identifiers:            types.WithID("user123"),
		TransactionalMessageID: types.Template("WELCOME_EMAIL"),
	}

	m := r.ToMap()
	assert.Len(t, m, 3)
	assert.Equal(t, "user@example.com", m["to"])
	assert.Equal(t, map[string]string{"id": "user123"}, m["identifiers"])
	assert.Equal(t, "WELCOME_EMAIL", m["transactional_message_id"])

	// A second call must produce the same mapping.
	assert.Equal(t, m, r.ToMap())
}

func TestSendEmailRequest_ToMap_AllFields(t *testing.T) {
	r := types.SendEmailRequest{
		To:                      "user@example.com",
		Identifiers:             types.WithEmail("user@example.com"),
		Body:                    types.String("<p>hi</p>"),
		Subject:                 types.String("Hi"),
		From:                    types.String("noreply@example.com"),
		MessageData:             map[string]any{"name": "Ada"},
		SendAt:                  types.Int64(1700000000),
		DisableMessageRetention: types.Bool(false),
		SendToUnsubscribed:      types.Bool(true),
		QueueDraft:              types.Bool(false),
		BCC:                     []string{"b@example.com"},
		CC:                      []string{"c@example.com"},
		FakeBCC:                 types.Bool(false),
		ReplyTo:                 types.String("reply@example.com"),
		Preheader:               types.String("pre"),
		Headers:                 map[string]string{"X-Tag": "1"},
		DisableCSSPreprocessing: types.Bool(true),
		Tracked:                 types.Bool(true),
		PlaintextBody:           types.String("hi"),
		AMPBody:                 types.String("<amp/>"),
		Language:                types.String("en"),
		Attachments:             map[string]string{"a.txt": "aGk="},
	}

	raw, err := json.Marshal(&r)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"to": "user@example.com",
		"identifiers": {"email": "user@example.com"},
		"body": "<p>hi</p>",
		"subject": "Hi",
		"from": "noreply@example.com",
		"message_data": {"name": "Ada"},
		"send_at": 1700000000,
		"disable_message_retention": false,
		"send_to_unsubscribed": true,
		"queue_draft": false,
		"bcc": ["b@example.com"],
		"cc": ["c@example.com"],
		"fake_bcc": false,
		"reply_to": "reply@example.com",
		"preheader": "pre",
		"headers": {"X-Tag": "1"},
		"disable_css_preprocessing": true,
		"tracked": true,
		"body_plain": "hi",
		"body_amp": "<amp/>",
		"language": "en",
		"attachments": {"a.txt": "aGk="}
	}`, string(raw))

	assert.Equal(t, []string{
		"send_at", "disable_message_retention", "send_to_unsubscribed", "queue_draft",
		"headers", "disable_css_preprocessing", "tracked", "fake_bcc", "reply_to",
		"preheader", "attachments",
	}, r.InertFields())
}

func TestSendEmailRequest_InertFields_None(t *testing.T) {
	r := types.SendEmailRequest{To: "a@b.com", Identifiers: types.WithID("u"), Language: types.String("en")}
	assert.Empty(t, r.InertFields())
}

func TestSendPushRequest_ToMap(t *testing.T) {
	r := types.SendPushRequest{
		Identifiers:            types.WithID("user123"),
		TransactionalMessageID: types.TemplateNumber(12),
		Title:                  types.String("Title"),
	}
	raw, err := json.Marshal(&r)
	require.NoError(t, err)
	assert.JSONEq(t, `{"identifiers":{"id":"user123"},"transactional_message_id":12,"title":"Title"}`, string(raw))
}

func TestSendSmsRequest_ToMap(t *testing.T) {
	r := types.SendSmsRequest{
		Identifiers:            types.WithID("user123"),
		TransactionalMessageID: types.TemplateNumber(42),
		To:                     types.String("+1234567890"),
	}
	m := r.ToMap()
	assert.Equal(t, int64(42), m["transactional_message_id"])
	assert.Equal(t, "+1234567890", m["to"])
	assert.NotContains(t, m, "body")
	assert.NotContains(t, m, "from")
}

func TestDeviceRegistration_ToMap(t *testing.T) {
	d := types.DeviceRegistration{
		DeviceID:     "device-123",
		Platform:     types.PlatformAndroid,
		FCMToken:     "fcm",
		AppVersion:   types.String("1.2.0"),
		LastActiveAt: types.String("2024-01-01T00:00:00Z"),
		Attributes:   map[string]any{"beta": true},
	}
	assert.Equal(t, map[string]any{
		"deviceId":       "device-123",
		"platform":       "android",
		"fcmToken":       "fcm",
		"appVersion":     "1.2.0",
		"last_active_at": "2024-01-01T00:00:00Z",
		"attributes":     map[string]any{"beta": true},
	}, d.ToMap())
}

func TestTemplateID_JSON(t *testing.T) {
	var tid types.TemplateID
	require.NoError(t, json.Unmarshal([]byte(`42`), &tid))
	assert.True(t, tid.IsNumeric())
	assert.Equal(t, "42", tid.String())

	require.NoError(t, json.Unmarshal([]byte(`"WELCOME"`), &tid))
	assert.False(t, tid.IsNumeric())
	assert.Equal(t, "WELCOME", tid.String())

	require.NoError(t, json.Unmarshal([]byte(`null`), &tid))
	assert.True(t, tid.IsZero())

	assert.Error(t, json.Unmarshal([]byte(`{}`), &tid))
}
