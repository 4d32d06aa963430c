package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/wardenauth/warden/pkg/auth"
	"github.com/wardenauth/warden/pkg/errdefs"
	"github.com/wardenauth/warden/pkg/permissions"
	"github.com/wardenauth/warden/pkg/store"
)

// fakeUserStore is an in-memory UserStore.
type fakeUserStore struct {
	users map[string]*store.User
}

func (f *fakeUserStore) GetUser(_ context.Context, id string) (*store.User, error) {
	user, ok := f.users[id]
	if !ok {
		return nil, errdefs.ErrNotFound
	}
	return user, nil
}

func (f *fakeUserStore) GetUserByEmail(_ context.Context, email string) (*store.User, error) {
	for _, user := range f.users {
		if user.Email == email {
			return user, nil
		}
	}
	return nil, errdefs.ErrNotFound
}

// fakeRefreshStore is an in-memory auth.RefreshTokenStore.
type fakeRefreshStore struct {
	mu      sync.Mutex
	records map[string]auth.RefreshTokenRecord
}

func newFakeRefreshStore() *fakeRefreshStore {
	return &fakeRefreshStore{records: make(map[string]auth.RefreshTokenRecord)}
}

func (f *fakeRefreshStore) Store(_ context.Context, rec auth.RefreshTokenRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records[rec.TokenID] = rec
	return nil
}

func (f *fakeRefreshStore) FindActive(_ context.Context, tokenID, userID string) (*auth.RefreshTokenRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rec, ok := f.records[tokenID]
	if !ok || rec.UserID != userID {
		return nil, errdefs.ErrNotFound
	}
	return &rec, nil
}

func (f *fakeRefreshStore) Consume(_ context.Context, tokenID, userID string) (*auth.RefreshTokenRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rec, ok := f.records[tokenID]
	if !ok || rec.UserID != userID {
		return nil, errdefs.ErrNotFound
	}
	delete(f.records, tokenID)
	return &rec, nil
}

func (f *fakeRefreshStore) Delete(_ context.Context, tokenID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.records, tokenID)
	return nil
}

func (f *fakeRefreshStore) DeleteAll(_ context.Context, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for id, rec := range f.records {
		if rec.UserID == userID {
			delete(f.records, id)
		}
	}
	return nil
}

func (f *fakeRefreshStore) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.records)
}

// fakePermissionReader returns a fixed snapshot.
type fakePermissionReader struct {
	snapshot *permissions.UserPermissions
}

func (f *fakePermissionReader) GetUserPermissions(_ context.Context, userID string) (*permissions.UserPermissions, error) {
	if f.snapshot == nil {
		return nil, errdefs.ErrNotFound
	}
	return f.snapshot, nil
}

// fakeRegistry records revocations in memory.
type fakeRegistry struct {
	mu      sync.Mutex
	revoked map[string]time.Duration
}

func newFakeRegistry() *fakeRegistry {
	return &fakeRegistry{revoked: make(map[string]time.Duration)}
}

func (f *fakeRegistry) Revoke(_ context.Context, tokenHash string, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.revoked[tokenHash] = ttl
	return nil
}

type testEnv struct {
	svc      *AuthService
	users    *fakeUserStore
	refresh  *fakeRefreshStore
	registry *fakeRegistry
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("correct horse"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash test password: %v", err)
	}

	users := &fakeUserStore{users: map[string]*store.User{
		"user-1": {
			ID:           "user-1",
			Email:        "alice@example.com",
			PasswordHash: string(hash),
			Name:         "Alice",
			IsActive:     true,
		},
	}}

	refresh := newFakeRefreshStore()
	tokens, err := auth.NewTokenService(auth.TokenConfig{
		SigningKey: []byte("0123456789abcdef0123456789abcdef"),
		Issuer:     "warden-test",
		AccessTTL:  15 * time.Minute,
		RefreshTTL: 7 * 24 * time.Hour,
	}, refresh)
	if err != nil {
		t.Fatalf("failed to create token service: %v", err)
	}

	perms := &fakePermissionReader{snapshot: &permissions.UserPermissions{
		UserID:      "user-1",
		Email:       "alice@example.com",
		Permissions: []string{"posts.read"},
		Groups:      []string{"editors"},
	}}

	registry := newFakeRegistry()
	svc := NewAuthService(users, auth.NewPasswordHasher(bcrypt.MinCost), tokens, perms, registry)

	return &testEnv{svc: svc, users: users, refresh: refresh, registry: registry}
}

func TestLogin_Success(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	pair, user, err := env.svc.Login(ctx, "alice@example.com", "correct horse")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		t.Error("expected both tokens to be issued")
	}
	if user.ID != "user-1" {
		t.Errorf("unexpected user %s", user.ID)
	}
	if env.refresh.count() != 1 {
		t.Errorf("expected one persisted refresh record, got %d", env.refresh.count())
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	env := newTestEnv(t)

	_, _, err := env.svc.Login(context.Background(), "alice@example.com", "wrong")
	if !errdefs.IsInvalidCredentials(err) {
		t.Errorf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestLogin_UnknownEmail(t *testing.T) {
	env := newTestEnv(t)

	_, _, err := env.svc.Login(context.Background(), "nobody@example.com", "correct horse")
	if !errdefs.IsInvalidCredentials(err) {
		t.Errorf("expected ErrInvalidCredentials for unknown email, got %v", err)
	}
}

func TestLogin_InactiveUser(t *testing.T) {
	env := newTestEnv(t)
	env.users.users["user-1"].IsActive = false

	_, _, err := env.svc.Login(context.Background(), "alice@example.com", "correct horse")
	if !errdefs.IsInvalidCredentials(err) {
		t.Errorf("expected ErrInvalidCredentials for inactive user, got %v", err)
	}
}

func TestRefresh_RotatesToken(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	pair, _, err := env.svc.Login(ctx, "alice@example.com", "correct horse")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	newPair, err := env.svc.Refresh(ctx, pair.RefreshToken)
	if err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}
	if newPair.RefreshToken == pair.RefreshToken {
		t.Error("rotation must mint a new refresh token")
	}

	// The old token was consumed; presenting it again must fail.
	if _, err := env.svc.Refresh(ctx, pair.RefreshToken); !errdefs.IsInvalidToken(err) {
		t.Errorf("expected ErrInvalidToken on replay, got %v", err)
	}

	// The rotated token still works.
	if _, err := env.svc.Refresh(ctx, newPair.RefreshToken); err != nil {
		t.Errorf("rotated token must be usable: %v", err)
	}
}

func TestRefresh_InactiveUser(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	pair, _, err := env.svc.Login(ctx, "alice@example.com", "correct horse")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	env.users.users["user-1"].IsActive = false

	if _, err := env.svc.Refresh(ctx, pair.RefreshToken); !errdefs.IsInvalidToken(err) {
		t.Errorf("expected ErrInvalidToken for deactivated user, got %v", err)
	}
}

func TestRefresh_DeletedUser(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	pair, _, err := env.svc.Login(ctx, "alice@example.com", "correct horse")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	delete(env.users.users, "user-1")

	if _, err := env.svc.Refresh(ctx, pair.RefreshToken); !errdefs.IsInvalidToken(err) {
		t.Errorf("expected ErrInvalidToken for deleted user, got %v", err)
	}
}

func TestLogout_RevokesEverything(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	pair, _, err := env.svc.Login(ctx, "alice@example.com", "correct horse")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	if err := env.svc.Logout(ctx, "user-1", pair.AccessToken); err != nil {
		t.Fatalf("Logout failed: %v", err)
	}

	if env.refresh.count() != 0 {
		t.Errorf("expected all refresh records revoked, got %d", env.refresh.count())
	}

	ttl, ok := env.registry.revoked[auth.HashToken(pair.AccessToken)]
	if !ok {
		t.Fatal("expected access token hash in revocation registry")
	}
	if ttl <= 0 || ttl > 15*time.Minute {
		t.Errorf("expected TTL within remaining token lifetime, got %v", ttl)
	}

	// Old refresh token is dead.
	if _, err := env.svc.Refresh(ctx, pair.RefreshToken); !errdefs.IsInvalidToken(err) {
		t.Errorf("expected ErrInvalidToken after logout, got %v", err)
	}
}

func TestLogout_GarbageAccessTokenStillRevokesRefresh(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	if _, _, err := env.svc.Login(ctx, "alice@example.com", "correct horse"); err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	if err := env.svc.Logout(ctx, "user-1", "not-a-token"); err != nil {
		t.Fatalf("Logout failed: %v", err)
	}
	if env.refresh.count() != 0 {
		t.Errorf("refresh records must be revoked regardless, got %d", env.refresh.count())
	}
	if len(env.registry.revoked) != 0 {
		t.Error("an unverifiable access token needs no registry entry")
	}
}

func TestProfile(t *testing.T) {
	env := newTestEnv(t)

	profile, err := env.svc.Profile(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("Profile failed: %v", err)
	}
	if profile.User.Email != "alice@example.com" {
		t.Errorf("unexpected email %s", profile.User.Email)
	}
	if len(profile.Permissions) != 1 || profile.Permissions[0] != "posts.read" {
		t.Errorf("unexpected permissions %v", profile.Permissions)
	}
	if len(profile.Groups) != 1 || profile.Groups[0] != "editors" {
		t.Errorf("unexpected groups %v", profile.Groups)
	}
}

func TestProfile_UnknownUser(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.svc.Profile(context.Background(), "missing")
	if !errdefs.IsNotFound(err) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
