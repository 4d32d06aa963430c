package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
)

// setupRegistryTest creates a miniredis instance and returns the registry
// and cleanup function.
func setupRegistryTest(t *testing.T) (*RevocationRegistry, *miniredis.Miniredis, func()) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}

	registry, err := NewRevocationRegistry(Config{
		URL:        "redis://" + mr.Addr(),
		MaxRetries: 3,
		PoolSize:   10,
	})
	if err != nil {
		mr.Close()
		t.Fatalf("Failed to create revocation registry: %v", err)
	}

	cleanup := func() {
		registry.Close()
		mr.Close()
	}

	return registry, mr, cleanup
}

func TestNewRevocationRegistry_InvalidURL(t *testing.T) {
	_, err := NewRevocationRegistry(Config{URL: "not-a-url"})
	if err == nil {
		t.Fatal("expected error for invalid URL")
	}
}

func TestRevocationRegistry_RevokeAndCheck(t *testing.T) {
	registry, _, cleanup := setupRegistryTest(t)
	defer cleanup()

	ctx := context.Background()

	revoked, err := registry.IsRevoked(ctx, "abc123")
	if err != nil {
		t.Fatalf("IsRevoked failed: %v", err)
	}
	if revoked {
		t.Error("unknown hash must not be revoked")
	}

	if err := registry.Revoke(ctx, "abc123", time.Hour); err != nil {
		t.Fatalf("Revoke failed: %v", err)
	}

	revoked, err = registry.IsRevoked(ctx, "abc123")
	if err != nil {
		t.Fatalf("IsRevoked failed: %v", err)
	}
	if !revoked {
		t.Error("expected hash to be revoked")
	}
}

func TestRevocationRegistry_EntryExpires(t *testing.T) {
	registry, mr, cleanup := setupRegistryTest(t)
	defer cleanup()

	ctx := context.Background()

	if err := registry.Revoke(ctx, "abc123", time.Minute); err != nil {
		t.Fatalf("Revoke failed: %v", err)
	}

	mr.FastForward(2 * time.Minute)

	revoked, err := registry.IsRevoked(ctx, "abc123")
	if err != nil {
		t.Fatalf("IsRevoked failed: %v", err)
	}
	if revoked {
		t.Error("entry must expire with the token")
	}
}

func TestRevocationRegistry_NonPositiveTTLIsNoop(t *testing.T) {
	registry, _, cleanup := setupRegistryTest(t)
	defer cleanup()

	ctx := context.Background()

	if err := registry.Revoke(ctx, "abc123", 0); err != nil {
		t.Fatalf("Revoke failed: %v", err)
	}

	revoked, err := registry.IsRevoked(ctx, "abc123")
	if err != nil {
		t.Fatalf("IsRevoked failed: %v", err)
	}
	if revoked {
		t.Error("expired token needs no registry entry")
	}
}

func TestRevocationRegistry_Ping(t *testing.T) {
	registry, mr, cleanup := setupRegistryTest(t)
	defer cleanup()

	if err := registry.Ping(context.Background()); err != nil {
		t.Fatalf("Ping failed: %v", err)
	}

	mr.Close()

	if err := registry.Ping(context.Background()); err == nil {
		t.Error("expected ping to fail after server shutdown")
	}
}
