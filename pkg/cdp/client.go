package cdp

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/notifyhub/opencdp-go/internal/domain"
	"github.com/notifyhub/opencdp-go/internal/metrics"
	"github.com/notifyhub/opencdp-go/internal/provider"
	"github.com/notifyhub/opencdp-go/internal/ratelimiter"
	"github.com/notifyhub/opencdp-go/pkg/types"
)

const (
	pathPing           = "v1/health/ping"
	pathIdentify       = "v1/persons/identify"
	pathTrack          = "v1/persons/track"
	pathRegisterDevice = "v1/persons/registerDevice"
	pathSendEmail      = "v1/send/email"
	pathSendPush       = "v1/send/push"
	pathSendSms        = "v1/send/sms"

	maxServerMessageRunes = 1024
	truncatedPlaceholder  = "[truncated]"
)

// opText holds the log title and error prefix of each operation.
var opText = map[domain.Operation]struct{ title, prefix string }{
	domain.OpPing:           {"Ping", "Failed to connect to CDP Server: "},
	domain.OpIdentify:       {"Identify", "Identify failed: "},
	domain.OpTrack:          {"Track", "Track failed: "},
	domain.OpRegisterDevice: {"Register device", "Register device failed: "},
	domain.OpSendEmail:      {"Send email", ""},
	domain.OpSendPush:       {"Send push", ""},
	domain.OpSendSms:        {"Send SMS", ""},
}

// Client talks to the CDP gateway and, when dual-write is on, mirrors person
// updates to the secondary provider. It is safe for concurrent use.
type Client struct {
	cfg       *Config
	log       *zap.Logger
	gateway   provider.Doer
	secondary SecondaryProvider
	metrics   *metrics.Metrics
	limiter   *ratelimiter.ChannelLimiters
}

// NewClient builds a client from cfg. cfg must come from NewConfig.
//
// When a Prometheus registerer was configured the client's collectors are
// registered with it; registering two clients with the same registerer panics.
func NewClient(cfg *Config) *Client {
	if cfg == nil || cfg.logger == nil {
		panic("cdp: NewClient requires a Config built with NewConfig")
	}

	log := zap.NewNop()
	if cfg.debug {
		log = cfg.logger
	}

	var m *metrics.Metrics
	if cfg.registerer != nil {
		m = metrics.New(cfg.registerer)
	}

	gw, err := provider.NewGateway(provider.GatewayConfig{
		BaseURL:    cfg.endpoint,
		APIKey:     cfg.apiKey,
		UserAgent:  cfg.userAgent,
		Timeout:    cfg.timeout,
		HTTPClient: cfg.httpClient,
		OnResponse: m.GatewayHook(),
	})
	if err != nil {
		panic(fmt.Sprintf("cdp: invalid endpoint: %v", err))
	}

	c := &Client{
		cfg:     cfg,
		log:     log,
		gateway: gw,
		metrics: m,
		limiter: ratelimiter.New(cfg.rateLimit),
	}
	c.initSecondary()
	return c
}

// initSecondary wires the dual-write target. A failure leaves dual-write off
// rather than failing client construction.
func (c *Client) initSecondary() {
	if !c.cfg.dualWrite {
		return
	}
	if c.cfg.secondary != nil {
		c.secondary = c.cfg.secondary
		return
	}

	settings, _ := c.cfg.CustomerIO()
	cio, err := provider.NewCustomerIO(provider.CustomerIOConfig{
		SiteID:  settings.SiteID,
		APIKey:  settings.APIKey,
		Region:  settings.Region,
		Timeout: c.cfg.timeout,
	})
	if err != nil {
		c.log.Warn("[Customer.io] Initialize error, dual-write disabled", zap.Error(err))
		return
	}
	c.secondary = cio
}

// DualWriteEnabled reports whether person updates are being mirrored.
func (c *Client) DualWriteEnabled() bool {
	return c.cfg.dualWrite && c.secondary != nil
}

// Ping checks that the gateway is reachable with the configured credentials.
func (c *Client) Ping(ctx context.Context) error {
	start := time.Now()
	_, err := c.settle(c.ping(ctx), start)
	return err
}

// Identify creates or updates a person. Nil properties are sent as {}.
func (c *Client) Identify(ctx context.Context, identifier string, properties map[string]any) error {
	start := time.Now()
	_, err := c.settle(c.identify(ctx, identifier, properties), start)
	return err
}

// Track records an event for a person.
func (c *Client) Track(ctx context.Context, identifier, eventName string, properties map[string]any) error {
	start := time.Now()
	_, err := c.settle(c.track(ctx, identifier, eventName, properties), start)
	return err
}

// RegisterDevice attaches a push-capable device to a person.
func (c *Client) RegisterDevice(ctx context.Context, identifier string, device types.DeviceRegistration) error {
	start := time.Now()
	_, err := c.settle(c.registerDevice(ctx, identifier, device), start)
	return err
}

// SendEmail sends a transactional email, either from a template or from the
// raw body, subject and sender.
func (c *Client) SendEmail(ctx context.Context, req *types.SendEmailRequest) (*SendResult, error) {
	start := time.Now()
	return c.settle(c.sendEmail(ctx, req), start)
}

// SendPush sends a template-based push notification.
func (c *Client) SendPush(ctx context.Context, req *types.SendPushRequest) (*SendResult, error) {
	start := time.Now()
	return c.settle(c.sendPush(ctx, req), start)
}

// SendSms sends a transactional SMS. Template ids are sent as strings.
func (c *Client) SendSms(ctx context.Context, req *types.SendSmsRequest) (*SendResult, error) {
	start := time.Now()
	return c.settle(c.sendSms(ctx, req), start)
}

func (c *Client) ping(ctx context.Context) outcome {
	o := c.dispatch(ctx, domain.OpPing, http.MethodGet, pathPing, nil)
	if o.err == nil {
		c.log.Debug("[CDP] Connection established", zap.Int("status", o.status))
	}
	return o
}

func (c *Client) identify(ctx context.Context, identifier string, properties map[string]any) outcome {
	op := domain.OpIdentify
	if err := types.ValidateIdentifier(identifier); err != nil {
		return c.rejected(op, err)
	}
	props := normalizeProperties(properties)

	if err := c.mirror(op, func(s SecondaryProvider) error {
		return s.Identify(ctx, identifier, props)
	}); err != nil {
		return outcome{op: op, err: err}
	}

	o := c.dispatch(ctx, op, http.MethodPost, pathIdentify, map[string]any{
		"identifier": identifier,
		"properties": props,
	})
	if o.err == nil {
		c.log.Debug("[CDP] Identified", zap.String("identifier", identifier))
	}
	return o
}

func (c *Client) track(ctx context.Context, identifier, eventName string, properties map[string]any) outcome {
	op := domain.OpTrack
	if err := types.ValidateIdentifier(identifier); err != nil {
		return c.rejected(op, err)
	}
	if err := types.ValidateEventName(eventName); err != nil {
		return c.rejected(op, err)
	}
	props := normalizeProperties(properties)

	if err := c.mirror(op, func(s SecondaryProvider) error {
		return s.Track(ctx, identifier, eventName, props)
	}); err != nil {
		return outcome{op: op, err: err}
	}

	o := c.dispatch(ctx, op, http.MethodPost, pathTrack, map[string]any{
		"identifier": identifier,
		"eventName":  eventName,
		"properties": props,
	})
	if o.err == nil {
		c.log.Debug("[CDP] Tracked event",
			zap.String("identifier", identifier),
			zap.String("event", eventName),
		)
	}
	return o
}

func (c *Client) registerDevice(ctx context.Context, identifier string, device types.DeviceRegistration) outcome {
	op := domain.OpRegisterDevice
	if err := types.ValidateIdentifier(identifier); err != nil {
		return c.rejected(op, err)
	}
	if err := device.Validate(); err != nil {
		return c.rejected(op, err)
	}
	fields := device.ToMap()

	if err := c.mirror(op, func(s SecondaryProvider) error {
		extra := make(map[string]any, len(fields))
		for k, v := range fields {
			if k != "deviceId" && k != "platform" {
				extra[k] = v
			}
		}
		return s.AddDevice(ctx, identifier, device.DeviceID, string(device.Platform), extra)
	}); err != nil {
		return outcome{op: op, err: err}
	}

	payload := make(map[string]any, len(fields)+1)
	for k, v := range fields {
		payload[k] = v
	}
	payload["identifier"] = identifier

	o := c.dispatch(ctx, op, http.MethodPost, pathRegisterDevice, payload)
	if o.err == nil {
		c.log.Debug("[CDP] Registered device",
			zap.String("identifier", identifier),
			zap.String("deviceId", device.DeviceID),
		)
	}
	return o
}

func (c *Client) sendEmail(ctx context.Context, req *types.SendEmailRequest) outcome {
	op := domain.OpSendEmail
	if req == nil {
		return c.rejected(op, &types.ValidationError{Message: "request is required"})
	}
	if err := req.Validate(); err != nil {
		return c.rejected(op, err)
	}

	if inert := req.InertFields(); len(inert) > 0 {
		c.log.Warn("[CDP] Warning: The following fields are not yet supported by the backend and will be ignored: "+
			strings.Join(inert, ", ")+". These fields are included for future compatibility but have no effect on email delivery.",
			zap.Strings("fields", inert),
		)
	}
	payload := req.ToMap()
	c.warnNotMirrored("email")

	o := c.dispatch(ctx, op, http.MethodPost, pathSendEmail, payload)
	if o.err == nil {
		c.log.Debug("[CDP] Email sent successfully", zap.String("to", req.To))
	}
	return o
}

func (c *Client) sendPush(ctx context.Context, req *types.SendPushRequest) outcome {
	op := domain.OpSendPush
	if req == nil {
		return c.rejected(op, &types.ValidationError{Message: "request is required"})
	}
	if err := req.Validate(); err != nil {
		return c.rejected(op, err)
	}

	payload := req.ToMap()
	c.warnNotMirrored("push")

	o := c.dispatch(ctx, op, http.MethodPost, pathSendPush, payload)
	if o.err == nil {
		c.log.Debug("[CDP] Push notification sent successfully")
	}
	return o
}

func (c *Client) sendSms(ctx context.Context, req *types.SendSmsRequest) outcome {
	op := domain.OpSendSms
	if req == nil {
		return c.rejected(op, &types.ValidationError{Message: "request is required"})
	}
	if err := req.Validate(); err != nil {
		return c.rejected(op, err)
	}

	// The SMS endpoint only accepts string template ids.
	payload := req.ToMap()
	if _, ok := payload["transactional_message_id"]; ok {
		payload["transactional_message_id"] = req.TransactionalMessageID.String()
	}
	c.warnNotMirrored("SMS")

	o := c.dispatch(ctx, op, http.MethodPost, pathSendSms, payload)
	if o.err == nil {
		c.log.Debug("[CDP] SMS sent successfully")
	}
	return o
}

// mirror runs write against the secondary provider when dual-write is live.
// The returned error is non-nil only when the primary call must be skipped.
func (c *Client) mirror(op domain.Operation, write func(SecondaryProvider) error) error {
	if !c.DualWriteEnabled() {
		return nil
	}

	err := write(c.secondary)
	if err == nil {
		c.log.Debug("[Customer.io] "+opText[op].title+" mirrored", zap.String("operation", string(op)))
		return nil
	}

	c.metrics.DualWriteFailed(op)
	c.log.Error("[Customer.io] "+opText[op].title+" error", zap.Error(err))
	if !c.cfg.failOnException {
		return nil
	}
	return fmt.Errorf("%w: %s: %w", ErrSecondary, op, err)
}

func (c *Client) warnNotMirrored(kind string) {
	if !c.DualWriteEnabled() {
		return
	}
	c.log.Warn("[CDP] Warning: Transactional messaging " + kind +
		" will NOT be sent to Customer.io to avoid sending twice. To turn this warning off disable dual-write.")
}

func (c *Client) rejected(op domain.Operation, err error) outcome {
	c.log.Error("[CDP] "+opText[op].title+" validation error", zap.Error(err))
	return outcome{op: op, err: err, invalid: true}
}

// dispatch performs the primary gateway call for op.
func (c *Client) dispatch(ctx context.Context, op domain.Operation, method, path string, payload any) outcome {
	if err := c.limiter.Wait(ctx, op.Channel()); err != nil {
		return c.transportFailure(op, err)
	}

	resp, err := c.gateway.Do(ctx, method, path, payload)
	if err != nil {
		return c.transportFailure(op, err)
	}

	o := outcome{op: op, status: resp.Status}
	if op.IsSend() {
		o.ok, o.body = decodeSendBody(resp.Body)
	}
	return o
}

// transportFailure turns a gateway error into the operation's *Error.
func (c *Client) transportFailure(op domain.Operation, err error) outcome {
	status := http.StatusInternalServerError
	if op.IsSend() {
		status = http.StatusBadRequest
	}

	var serverMsg string
	var hasServerMsg bool
	var statusErr *provider.StatusError
	if errors.As(err, &statusErr) {
		status = statusErr.Status
		serverMsg, hasServerMsg = statusErr.ServerMessage()
	}

	summary := ErrorSummary{Message: err.Error(), Status: status, Data: truncatedPlaceholder}
	if hasServerMsg {
		summary.Data = truncateRunes(serverMsg, maxServerMessageRunes)
	}

	if op == domain.OpPing {
		c.log.Error("[CDP] Failed to connect to CDP Server",
			zap.String("message", summary.Message),
			zap.Int("status", summary.Status),
		)
	} else {
		c.log.Error("[CDP] "+opText[op].title+" error", zap.Any("errorSummary", summary))
	}

	message := opText[op].prefix + err.Error()
	if op.IsSend() && hasServerMsg {
		message = serverMsg
	}

	cdpErr := &Error{
		Code:    codeFor(op),
		Status:  status,
		Message: message,
		Summary: summary,
		Err:     err,
	}
	return outcome{op: op, err: cdpErr, status: status, summary: &summary}
}

// settle translates an outcome into the caller-facing result. It is the only
// place where FailOnException is consulted for the primary flow.
func (c *Client) settle(o outcome, start time.Time) (*SendResult, error) {
	c.metrics.ObserveOperation(o.op, o.label(c.cfg.failOnException), time.Since(start))

	switch {
	case o.err == nil && o.op.IsSend():
		return &SendResult{OK: o.ok, Body: o.body}, nil
	case o.err == nil:
		return nil, nil
	case c.cfg.failOnException:
		return nil, o.err
	case o.op.IsSend():
		return &SendResult{OK: false, Error: o.err.Error(), Summary: o.summary}, nil
	}
	return nil, nil
}

// outcome is the result of one operation before it is shaped for the caller.
type outcome struct {
	op      domain.Operation
	err     error
	invalid bool
	status  int
	summary *ErrorSummary

	// send operations only
	ok   bool
	body map[string]any
}

func (o outcome) label(failOnException bool) domain.Outcome {
	switch {
	case o.err == nil:
		return domain.OutcomeSuccess
	case o.invalid:
		return domain.OutcomeInvalid
	case failOnException:
		return domain.OutcomeFailed
	}
	return domain.OutcomeSuppressed
}

func normalizeProperties(p map[string]any) map[string]any {
	if p == nil {
		return map[string]any{}
	}
	return p
}

func truncateRunes(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
