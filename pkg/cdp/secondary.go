package cdp

import (
	"context"

	"github.com/notifyhub/opencdp-go/internal/provider"
)

// SecondaryProvider receives person-level writes in parallel with the CDP
// while dual-write is enabled. Transactional sends are never mirrored.
type SecondaryProvider interface {
	Identify(ctx context.Context, id string, attributes map[string]any) error
	Track(ctx context.Context, id, name string, data map[string]any) error
	AddDevice(ctx context.Context, id, deviceID, platform string, data map[string]any) error
}

var (
	_ SecondaryProvider  = (*provider.CustomerIO)(nil)
	_ provider.Secondary = SecondaryProvider(nil)
)
