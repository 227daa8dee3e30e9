package cdptest

import (
	"context"
	"sync"
)

// SecondaryCall is one recorded call to the fake secondary provider.
type SecondaryCall struct {
	Method   string
	ID       string
	Name     string
	DeviceID string
	Platform string
	Data     map[string]any

	// PrimaryRequests is how many gateway requests had been received when the
	// call was made. Zero means the secondary ran first.
	PrimaryRequests int
}

// Secondary records dual-write calls. Set Err to make every call fail.
type Secondary struct {
	gateway *Gateway

	mu    sync.Mutex
	calls []SecondaryCall
	Err   error
}

// NewSecondary returns a recording secondary provider. gateway may be nil;
// when set, each call notes how far the primary flow had progressed.
func NewSecondary(gateway *Gateway) *Secondary {
	return &Secondary{gateway: gateway}
}

func (s *Secondary) Identify(_ context.Context, id string, attributes map[string]any) error {
	return s.record(SecondaryCall{Method: "Identify", ID: id, Data: attributes})
}

func (s *Secondary) Track(_ context.Context, id, name string, data map[string]any) error {
	return s.record(SecondaryCall{Method: "Track", ID: id, Name: name, Data: data})
}

func (s *Secondary) AddDevice(_ context.Context, id, deviceID, platform string, data map[string]any) error {
	return s.record(SecondaryCall{Method: "AddDevice", ID: id, DeviceID: deviceID, Platform: platform, Data: data})
}

func (s *Secondary) record(call SecondaryCall) error {
	if s.gateway != nil {
		call.PrimaryRequests = len(s.gateway.Requests())
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, call)
	return s.Err
}

// Calls returns a copy of the recorded calls.
func (s *Secondary) Calls() []SecondaryCall {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]SecondaryCall, len(s.calls))
	copy(out, s.calls)
	return out
}
