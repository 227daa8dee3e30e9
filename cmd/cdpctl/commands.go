package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"strconv"

	"github.com/notifyhub/opencdp-go/pkg/cdp"
	"github.com/notifyhub/opencdp-go/pkg/types"
)

type command struct {
	summary string
	run     func(ctx context.Context, c *cdp.Client, args []string, out io.Writer) error
}

var commands = map[string]command{
	"ping":            {"check connectivity and credentials", runPing},
	"identify":        {"create or update a person", runIdentify},
	"track":           {"record an event for a person", runTrack},
	"register-device": {"register a push device for a person", runRegisterDevice},
	"send-email":      {"send a transactional email", runSendEmail},
	"send-push":       {"send a transactional push notification", runSendPush},
	"send-sms":        {"send a transactional SMS", runSendSms},
}

var errSendFailed = errors.New("send failed")

func runPing(ctx context.Context, c *cdp.Client, args []string, out io.Writer) error {
	fs := newFlagSet("ping", out)
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	if err := c.Ping(ctx); err != nil {
		return err
	}
	fmt.Fprintln(out, "ok")
	return nil
}

func runIdentify(ctx context.Context, c *cdp.Client, args []string, out io.Writer) error {
	fs := newFlagSet("identify", out)
	id := fs.String("id", "", "person identifier")
	props := jsonObjectFlag(fs, "props", "person properties as a JSON object")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	if err := c.Identify(ctx, *id, *props); err != nil {
		return err
	}
	fmt.Fprintln(out, "ok")
	return nil
}

func runTrack(ctx context.Context, c *cdp.Client, args []string, out io.Writer) error {
	fs := newFlagSet("track", out)
	id := fs.String("id", "", "person identifier")
	event := fs.String("event", "", "event name")
	props := jsonObjectFlag(fs, "props", "event properties as a JSON object")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	if err := c.Track(ctx, *id, *event, *props); err != nil {
		return err
	}
	fmt.Fprintln(out, "ok")
	return nil
}

func runRegisterDevice(ctx context.Context, c *cdp.Client, args []string, out io.Writer) error {
	fs := newFlagSet("register-device", out)
	id := fs.String("id", "", "person identifier")
	deviceID := fs.String("device-id", "", "device id")
	platform := fs.String("platform", "", "android, ios or web")
	fcmToken := fs.String("fcm-token", "", "Firebase Cloud Messaging token")
	apnToken := optionalString(fs, "apn-token", "Apple Push Notification token")
	appVersion := optionalString(fs, "app-version", "application version")
	attrs := jsonObjectFlag(fs, "attributes", "device attributes as a JSON object")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}

	device := types.DeviceRegistration{
		DeviceID:   *deviceID,
		Platform:   types.Platform(*platform),
		FCMToken:   *fcmToken,
		APNToken:   apnToken.ptr(),
		AppVersion: appVersion.ptr(),
		Attributes: *attrs,
	}
	if err := c.RegisterDevice(ctx, *id, device); err != nil {
		return err
	}
	fmt.Fprintln(out, "ok")
	return nil
}

func runSendEmail(ctx context.Context, c *cdp.Client, args []string, out io.Writer) error {
	fs := newFlagSet("send-email", out)
	var ids identifierFlags
	ids.register(fs)
	to := fs.String("to", "", "recipient email address")
	template := fs.String("template", "", "transactional template id")
	subject := optionalString(fs, "subject", "subject (raw mode)")
	body := optionalString(fs, "body", "HTML body (raw mode)")
	from := optionalString(fs, "from", "sender address (raw mode)")
	data := jsonObjectFlag(fs, "data", "template data as a JSON object")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	identifiers, err := ids.identifiers()
	if err != nil {
		return err
	}

	res, err := c.SendEmail(ctx, &types.SendEmailRequest{
		To:                     *to,
		Identifiers:            identifiers,
		TransactionalMessageID: parseTemplate(*template),
		Subject:                subject.ptr(),
		Body:                   body.ptr(),
		From:                   from.ptr(),
		MessageData:            *data,
	})
	return printResult(out, res, err)
}

func runSendPush(ctx context.Context, c *cdp.Client, args []string, out io.Writer) error {
	fs := newFlagSet("send-push", out)
	var ids identifierFlags
	ids.register(fs)
	template := fs.String("template", "", "transactional template id")
	title := optionalString(fs, "title", "notification title")
	body := optionalString(fs, "body", "notification body")
	data := jsonObjectFlag(fs, "data", "template data as a JSON object")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	identifiers, err := ids.identifiers()
	if err != nil {
		return err
	}

	res, err := c.SendPush(ctx, &types.SendPushRequest{
		Identifiers:            identifiers,
		TransactionalMessageID: parseTemplate(*template),
		Title:                  title.ptr(),
		Body:                   body.ptr(),
		MessageData:            *data,
	})
	return printResult(out, res, err)
}

func runSendSms(ctx context.Context, c *cdp.Client, args []string, out io.Writer) error {
	fs := newFlagSet("send-sms", out)
	var ids identifierFlags
	ids.register(fs)
	template := fs.String("template", "", "transactional template id")
	to := optionalString(fs, "to", "recipient phone number")
	from := optionalString(fs, "from", "sender phone number")
	body := optionalString(fs, "body", "message text")
	data := jsonObjectFlag(fs, "data", "template data as a JSON object")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	identifiers, err := ids.identifiers()
	if err != nil {
		return err
	}

	res, err := c.SendSms(ctx, &types.SendSmsRequest{
		Identifiers:            identifiers,
		TransactionalMessageID: parseTemplate(*template),
		To:                     to.ptr(),
		From:                   from.ptr(),
		Body:                   body.ptr(),
		MessageData:            *data,
	})
	return printResult(out, res, err)
}

func printResult(out io.Writer, res *cdp.SendResult, err error) error {
	if err != nil {
		return err
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(res); err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	if !res.OK {
		return errSendFailed
	}
	return nil
}

func newFlagSet(name string, out io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(out)
	return fs
}

// parseTemplate treats an all-digit template id as numeric.
func parseTemplate(s string) types.TemplateID {
	if s == "" {
		return types.TemplateID{}
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return types.TemplateNumber(n)
	}
	return types.Template(s)
}

type identifierFlags struct {
	id, email, cdpID string
}

func (f *identifierFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&f.id, "id", "", "identify the person by id")
	fs.StringVar(&f.email, "email", "", "identify the person by email")
	fs.StringVar(&f.cdpID, "cdp-id", "", "identify the person by CDP id")
}

// identifiers returns the single identifier given. With none the zero value
// is returned and request validation reports it.
func (f *identifierFlags) identifiers() (types.Identifiers, error) {
	var set []types.Identifiers
	if f.id != "" {
		set = append(set, types.WithID(f.id))
	}
	if f.email != "" {
		set = append(set, types.WithEmail(f.email))
	}
	if f.cdpID != "" {
		set = append(set, types.WithCdpID(f.cdpID))
	}
	switch len(set) {
	case 0:
		return types.Identifiers{}, nil
	case 1:
		return set[0], nil
	}
	return types.Identifiers{}, fmt.Errorf("%w: use only one of -id, -email, -cdp-id", errUsage)
}

// stringFlag distinguishes "not given" from "given as empty".
type stringFlag struct {
	value string
	set   bool
}

func (s *stringFlag) String() string { return s.value }

func (s *stringFlag) Set(v string) error {
	s.value, s.set = v, true
	return nil
}

func (s *stringFlag) ptr() *string {
	if !s.set {
		return nil
	}
	return types.String(s.value)
}

func optionalString(fs *flag.FlagSet, name, usage string) *stringFlag {
	f := &stringFlag{}
	fs.Var(f, name, usage)
	return f
}

type jsonObject struct {
	m *map[string]any
}

func (j jsonObject) String() string {
	if j.m == nil || *j.m == nil {
		return ""
	}
	raw, _ := json.Marshal(*j.m)
	return string(raw)
}

func (j jsonObject) Set(v string) error {
	var m map[string]any
	if err := json.Unmarshal([]byte(v), &m); err != nil {
		return fmt.Errorf("not a JSON object: %w", err)
	}
	*j.m = m
	return nil
}

func jsonObjectFlag(fs *flag.FlagSet, name, usage string) *map[string]any {
	m := new(map[string]any)
	fs.Var(jsonObject{m: m}, name, usage)
	return m
}
