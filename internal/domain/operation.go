package domain

// Operation names one public client call. It is used as a metrics label and
// to pick the rate-limit channel.
type Operation string

const (
	OpPing           Operation = "ping"
	OpIdentify       Operation = "identify"
	OpTrack          Operation = "track"
	OpRegisterDevice Operation = "register_device"
	OpSendEmail      Operation = "send_email"
	OpSendPush       Operation = "send_push"
	OpSendSms        Operation = "send_sms"
)

func (o Operation) IsValid() bool {
	switch o {
	case OpPing, OpIdentify, OpTrack, OpRegisterDevice, OpSendEmail, OpSendPush, OpSendSms:
		return true
	}
	return false
}

// IsSend reports whether the operation delivers a transactional message.
// Send operations return a result object instead of failing silently, and
// they are never mirrored to the secondary provider.
func (o Operation) IsSend() bool {
	switch o {
	case OpSendEmail, OpSendPush, OpSendSms:
		return true
	}
	return false
}

// Channel returns the delivery channel the operation counts against.
func (o Operation) Channel() Channel {
	switch o {
	case OpSendEmail:
		return ChannelEmail
	case OpSendPush:
		return ChannelPush
	case OpSendSms:
		return ChannelSMS
	}
	return ChannelPersons
}

// Channel groups operations that share a rate limit.
type Channel string

const (
	ChannelPersons Channel = "persons"
	ChannelEmail   Channel = "email"
	ChannelPush    Channel = "push"
	ChannelSMS     Channel = "sms"
)

// Channels lists every channel, in a stable order.
var Channels = []Channel{ChannelPersons, ChannelEmail, ChannelPush, ChannelSMS}

func (c Channel) IsValid() bool {
	switch c {
	case ChannelPersons, ChannelEmail, ChannelPush, ChannelSMS:
		return true
	}
	return false
}

// Outcome is the result label recorded for each call.
type Outcome string

const (
	OutcomeSuccess    Outcome = "success"
	OutcomeInvalid    Outcome = "invalid"
	OutcomeFailed     Outcome = "failed"
	OutcomeSuppressed Outcome = "suppressed"
)
