package provider

import "context"

// Secondary mirrors person-level writes to a second messaging platform while
// a migration is in progress. Implementations must be safe for concurrent use.
type Secondary interface {
	Identify(ctx context.Context, id string, attributes map[string]any) error
	Track(ctx context.Context, id, name string, data map[string]any) error
	AddDevice(ctx context.Context, id, deviceID, platform string, data map[string]any) error
}

// Doer sends a JSON request to the primary CDP gateway.
// Mocking this interface in tests gives full control over gateway behaviour
// without making real HTTP calls.
type Doer interface {
	Do(ctx context.Context, method, path string, payload any) (*Response, error)
}
