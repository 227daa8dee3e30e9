package ratelimiter_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/notifyhub/opencdp-go/internal/domain"
	"github.com/notifyhub/opencdp-go/internal/ratelimiter"
)

func TestChannelLimiters_Disabled(t *testing.T) {
	cl := ratelimiter.New(0)
	if cl != nil {
		t.Fatal("expected nil limiters for a zero rate")
	}
	if err := cl.Wait(context.Background(), domain.ChannelEmail); err != nil {
		t.Fatalf("nil limiters must never block: %v", err)
	}
}

func TestChannelLimiters_BurstThenBlock(t *testing.T) {
	cl := ratelimiter.New(2)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if err := cl.Wait(ctx, domain.ChannelSMS); err != nil {
			t.Fatalf("token %d: unexpected error: %v", i, err)
		}
	}

	// The bucket is empty; a short deadline cannot be met.
	short, cancel := context.WithTimeout(ctx, 10*time.Millisecond)
	defer cancel()
	err := cl.Wait(short, domain.ChannelSMS)
	if !errors.Is(err, domain.ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited, got %v", err)
	}
}

func TestChannelLimiters_ChannelsAreIndependent(t *testing.T) {
	cl := ratelimiter.New(1)
	ctx := context.Background()

	if err := cl.Wait(ctx, domain.ChannelPush); err != nil {
		t.Fatalf("push: %v", err)
	}

	short, cancel := context.WithTimeout(ctx, 10*time.Millisecond)
	defer cancel()
	if err := cl.Wait(short, domain.ChannelPersons); err != nil {
		t.Fatalf("persons should have its own bucket: %v", err)
	}
}

func TestChannelLimiters_UnknownChannel(t *testing.T) {
	cl := ratelimiter.New(5)
	if err := cl.Wait(context.Background(), domain.Channel("fax")); err == nil {
		t.Fatal("expected error for unknown channel")
	}
}
