package main

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/notifyhub/opencdp-go/internal/cdptest"
	"github.com/notifyhub/opencdp-go/pkg/cdp"
	"github.com/notifyhub/opencdp-go/pkg/types"
)

func setup(t *testing.T) *cdptest.Gateway {
	t.Helper()
	gw := cdptest.NewGateway(t)
	t.Setenv("CDP_API_KEY", "cli-key")
	t.Setenv("CDP_ENDPOINT", gw.URL())
	t.Setenv("CDP_FAIL_ON_EXCEPTION", "true")
	t.Setenv("CDP_DUAL_WRITE", "false")
	t.Setenv("CDP_RATE_LIMIT", "0")
	t.Setenv("CDP_DEBUG", "false")
	t.Setenv("CDP_TIMEOUT", "5s")
	return gw
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	envFile := filepath.Join(t.TempDir(), "none.env")
	err := run(context.Background(), append([]string{"-env-file", envFile}, args...), &out, zap.NewNop())
	return out.String(), err
}

func TestRun_Ping(t *testing.T) {
	gw := setup(t)

	out, err := runCLI(t, "ping")
	require.NoError(t, err)
	assert.Equal(t, "ok\n", out)
	assert.Equal(t, 1, gw.Count(cdptest.PathPing))

	req, _ := gw.Last()
	assert.Equal(t, "cli-key", req.Header.Get("Authorization"))
}

func TestRun_IdentifyAndTrack(t *testing.T) {
	gw := setup(t)

	_, err := runCLI(t, "identify", "-id", "user123", "-props", `{"plan":"pro"}`)
	require.NoError(t, err)
	req, _ := gw.Last()
	assert.JSONEq(t, `{"identifier":"user123","properties":{"plan":"pro"}}`, string(req.RawBody))

	_, err = runCLI(t, "track", "-id", "user123", "-event", "login")
	require.NoError(t, err)
	req, _ = gw.Last()
	assert.JSONEq(t, `{"identifier":"user123","eventName":"login","properties":{}}`, string(req.RawBody))

	_, err = runCLI(t, "identify", "-id", "user123", "-props", `[1]`)
	assert.ErrorIs(t, err, errUsage)
}

func TestRun_RegisterDevice(t *testing.T) {
	gw := setup(t)

	_, err := runCLI(t, "register-device", "-id", "user123", "-device-id", "d1", "-platform", "android", "-fcm-token", "tok", "-app-version", "1.0")
	require.NoError(t, err)
	req, _ := gw.Last()
	assert.JSONEq(t, `{"identifier":"user123","deviceId":"d1","platform":"android","fcmToken":"tok","appVersion":"1.0"}`, string(req.RawBody))

	_, err = runCLI(t, "register-device", "-id", "user123", "-device-id", "d1", "-platform", "palm", "-fcm-token", "tok")
	assert.ErrorIs(t, err, types.ErrInvalidArgument)
}

func TestRun_SendEmail(t *testing.T) {
	gw := setup(t)
	gw.Respond(cdptest.PathSendEmail, http.StatusOK, `{"delivery_id":"d-9"}`)

	out, err := runCLI(t, "send-email", "-to", "user@example.com", "-id", "user123", "-template", "WELCOME")
	require.NoError(t, err)
	assert.JSONEq(t, `{"delivery_id":"d-9"}`, out)

	req, _ := gw.Last()
	assert.Equal(t, "WELCOME", req.Body["transactional_message_id"])
}

func TestRun_SendSms_NumericTemplate(t *testing.T) {
	gw := setup(t)

	_, err := runCLI(t, "send-sms", "-email", "a@b.com", "-template", "42", "-to", "+1234567890")
	require.NoError(t, err)
	req, _ := gw.Last()
	assert.Equal(t, "42", req.Body["transactional_message_id"])
}

func TestRun_SendPush_Failure(t *testing.T) {
	gw := setup(t)
	gw.Respond(cdptest.PathSendPush, http.StatusBadRequest, `{"message":"unknown template"}`)

	_, err := runCLI(t, "send-push", "-id", "user123", "-template", "NOPE")
	require.ErrorIs(t, err, cdp.ErrPushSend)

	t.Setenv("CDP_FAIL_ON_EXCEPTION", "false")
	out, err := runCLI(t, "send-push", "-id", "user123", "-template", "NOPE")
	require.ErrorIs(t, err, errSendFailed)
	assert.Contains(t, out, `"data": "unknown template"`)
}

func TestRun_SendPush_ServerNotOK(t *testing.T) {
	gw := setup(t)
	gw.Respond(cdptest.PathSendPush, http.StatusOK, `{"ok":false,"reason":"suppressed","id":"m1"}`)

	out, err := runCLI(t, "send-push", "-id", "user123", "-template", "WELCOME_PUSH")
	require.ErrorIs(t, err, errSendFailed)
	assert.JSONEq(t, `{"ok":false,"reason":"suppressed","id":"m1"}`, out)
}

func TestRun_Usage(t *testing.T) {
	setup(t)

	out, err := runCLI(t)
	assert.True(t, errors.Is(err, errUsage))
	assert.Contains(t, out, "send-email")

	_, err = runCLI(t, "fax")
	assert.ErrorIs(t, err, errUsage)

	_, err = runCLI(t, "send-sms", "-id", "a", "-email", "b@c.com", "-body", "hi")
	assert.ErrorIs(t, err, errUsage)
}

func TestRun_Metrics(t *testing.T) {
	setup(t)

	out, err := runCLI(t, "-metrics", "ping")
	require.NoError(t, err)
	assert.Contains(t, out, `opencdp_operations_total{operation="ping",outcome="success"} 1`)
}

func TestParseTemplate(t *testing.T) {
	assert.True(t, parseTemplate("").IsZero())
	assert.True(t, parseTemplate("42").IsNumeric())
	assert.False(t, parseTemplate("WELCOME").IsNumeric())
}
