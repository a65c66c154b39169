package authkit_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	authkit "github.com/Hydrex75/authkit"
	"github.com/Hydrex75/authkit/password"
	"github.com/Hydrex75/authkit/store"
)

func serviceTestConfig() authkit.Config {
	cfg := authkit.DefaultConfig()
	cfg.Token.AccessSecret = []byte("access-secret-0123456789abcdef!!")
	cfg.Token.RefreshSecret = []byte("refresh-secret-0123456789abcdef!")
	// Floor-level work factor keeps the suite fast.
	cfg.Password.Memory = 8 * 1024
	cfg.Password.Time = 1
	cfg.Password.Parallelism = 1
	cfg.Password.KeyLength = 16
	return cfg
}

func newTestService(t *testing.T) (*authkit.Service, *store.Memory) {
	t.Helper()

	mem := store.NewMemory()
	svc, err := authkit.New().
		WithConfig(serviceTestConfig()).
		WithStore(mem).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	t.Cleanup(svc.Close)

	seedUser(t, mem, "alice@example.com", "Alice", "correct-horse")
	return svc, mem
}

func seedUser(t *testing.T, mem *store.Memory, email, name, plaintext string) *authkit.Record {
	t.Helper()

	hasher, err := password.NewHasher(password.Config{
		Memory:      8 * 1024,
		Time:        1,
		Parallelism: 1,
		SaltLength:  16,
		KeyLength:   16,
	})
	if err != nil {
		t.Fatalf("NewHasher failed: %v", err)
	}
	hash, err := hasher.Hash(plaintext)
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}

	record, err := mem.Create(context.Background(), store.CreateInput{
		Email:        email,
		Name:         name,
		PasswordHash: hash,
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	return record
}

func TestBuildRequiresStore(t *testing.T) {
	_, err := authkit.New().WithConfig(serviceTestConfig()).Build()
	if err == nil {
		t.Fatal("expected build without store to fail")
	}
}

func TestBuildRejectsInvalidConfig(t *testing.T) {
	cfg := serviceTestConfig()
	cfg.Token.RefreshSecret = cfg.Token.AccessSecret

	_, err := authkit.New().WithConfig(cfg).WithStore(store.NewMemory()).Build()
	if err == nil {
		t.Fatal("expected equal secrets to be rejected")
	}
}

func TestBuilderSingleUse(t *testing.T) {
	b := authkit.New().WithConfig(serviceTestConfig()).WithStore(store.NewMemory())
	if _, err := b.Build(); err != nil {
		t.Fatalf("first Build failed: %v", err)
	}
	if _, err := b.Build(); err == nil {
		t.Fatal("expected second Build to fail")
	}
}

func TestValidateCredentialsIndistinguishableFailures(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	cases := []struct {
		name     string
		email    string
		password string
	}{
		{"unknown email", "nobody@example.com", "correct-horse"},
		{"wrong password", "alice@example.com", "wrong-horse"},
		{"empty password", "alice@example.com", ""},
		{"empty email", "", "correct-horse"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.ValidateCredentials(ctx, tc.email, tc.password)
			if !errors.Is(err, authkit.ErrInvalidCredentials) {
				t.Fatalf("expected ErrInvalidCredentials, got %v", err)
			}
		})
	}
}

func TestValidateCredentialsSuccess(t *testing.T) {
	svc, _ := newTestService(t)

	user, err := svc.ValidateCredentials(context.Background(), "alice@example.com", "correct-horse")
	if err != nil {
		t.Fatalf("ValidateCredentials failed: %v", err)
	}
	if user.Email != "alice@example.com" || user.Name != "Alice" {
		t.Fatalf("unexpected user: %+v", user)
	}
}

func TestLoginIssuesPairAndStartsSession(t *testing.T) {
	svc, mem := newTestService(t)
	ctx := context.Background()

	result, err := svc.Login(ctx, "alice@example.com", "correct-horse")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if result.AccessToken == "" || result.RefreshToken == "" {
		t.Fatal("expected both tokens to be issued")
	}
	if result.AccessToken == result.RefreshToken {
		t.Fatal("access and refresh tokens must differ")
	}
	if result.ExpiresIn != 3600 {
		t.Fatalf("expected expires_in 3600, got %d", result.ExpiresIn)
	}

	record, err := mem.GetByEmail(ctx, "alice@example.com")
	if err != nil {
		t.Fatalf("GetByEmail failed: %v", err)
	}
	if record.RefreshHash == "" {
		t.Fatal("expected login to persist a refresh hash")
	}
	if record.RefreshHash == result.RefreshToken {
		t.Fatal("store must hold a hash, not the raw token")
	}
}

func TestLoginReplacesPriorSession(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	first, err := svc.Login(ctx, "alice@example.com", "correct-horse")
	if err != nil {
		t.Fatalf("first Login failed: %v", err)
	}
	if _, err := svc.Login(ctx, "alice@example.com", "correct-horse"); err != nil {
		t.Fatalf("second Login failed: %v", err)
	}

	if _, err := svc.Refresh(ctx, first.RefreshToken); !errors.Is(err, authkit.ErrAccessDenied) {
		t.Fatalf("expected first session to be displaced, got %v", err)
	}
}

// vanishingStore serves lookups but reports the record gone by the time
// the refresh hash is persisted, modeling a deletion racing a login.
type vanishingStore struct {
	*store.Memory
}

func (v *vanishingStore) SetRefreshHash(ctx context.Context, id, hash string) error {
	return authkit.ErrUserNotFound
}

func TestLoginRecordDeletedMidFlight(t *testing.T) {
	mem := store.NewMemory()
	seedUser(t, mem, "alice@example.com", "Alice", "correct-horse")

	svc, err := authkit.New().
		WithConfig(serviceTestConfig()).
		WithStore(&vanishingStore{Memory: mem}).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	t.Cleanup(svc.Close)

	_, err = svc.Login(context.Background(), "alice@example.com", "correct-horse")
	if !errors.Is(err, authkit.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for vanished record, got %v", err)
	}
	if errors.Is(err, authkit.ErrUserNotFound) {
		t.Fatalf("store-internal error escaped the core: %v", err)
	}
}

func TestRefreshRotation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	login, err := svc.Login(ctx, "alice@example.com", "correct-horse")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	pair, err := svc.Refresh(ctx, login.RefreshToken)
	if err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}
	if pair.RefreshToken == login.RefreshToken {
		t.Fatal("expected rotation to mint a new refresh token")
	}

	// The superseded token must be dead.
	if _, err := svc.Refresh(ctx, login.RefreshToken); !errors.Is(err, authkit.ErrAccessDenied) {
		t.Fatalf("expected ErrAccessDenied for rotated-out token, got %v", err)
	}

	// The new token keeps the chain alive.
	if _, err := svc.Refresh(ctx, pair.RefreshToken); err != nil {
		t.Fatalf("chained Refresh failed: %v", err)
	}
}

func TestRefreshRejectsMalformedAndForeignTokens(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	login, err := svc.Login(ctx, "alice@example.com", "correct-horse")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	// Access token on the refresh path is a type confusion.
	if _, err := svc.Refresh(ctx, login.AccessToken); !errors.Is(err, authkit.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for access token, got %v", err)
	}
	if _, err := svc.Refresh(ctx, "not-a-token"); !errors.Is(err, authkit.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for garbage, got %v", err)
	}
	if _, err := svc.Refresh(ctx, ""); !errors.Is(err, authkit.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for empty token, got %v", err)
	}
}

func TestRefreshAfterLogoutDenied(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	login, err := svc.Login(ctx, "alice@example.com", "correct-horse")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if err := svc.Logout(ctx, login.User.ID); err != nil {
		t.Fatalf("Logout failed: %v", err)
	}

	if _, err := svc.Refresh(ctx, login.RefreshToken); !errors.Is(err, authkit.ErrAccessDenied) {
		t.Fatalf("expected ErrAccessDenied after logout, got %v", err)
	}
}

func TestLogoutIdempotent(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	login, err := svc.Login(ctx, "alice@example.com", "correct-horse")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	for i := 0; i < 3; i++ {
		if err := svc.Logout(ctx, login.User.ID); err != nil {
			t.Fatalf("Logout round %d failed: %v", i, err)
		}
	}

	// Unknown identity is also a success: the target state holds.
	if err := svc.Logout(ctx, "never-existed"); err != nil {
		t.Fatalf("Logout for unknown identity failed: %v", err)
	}
}

func TestAuthenticateReturnsPrincipal(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	login, err := svc.Login(ctx, "alice@example.com", "correct-horse")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	principal, err := svc.Authenticate(ctx, login.AccessToken)
	if err != nil {
		t.Fatalf("Authenticate failed: %v", err)
	}
	if principal.ID != login.User.ID || principal.Email != "alice@example.com" {
		t.Fatalf("unexpected principal: %+v", principal)
	}
}

func TestAuthenticateRejectsBadTokens(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	login, err := svc.Login(ctx, "alice@example.com", "correct-horse")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	// Refresh token on the access path is a type confusion.
	if _, err := svc.Authenticate(ctx, login.RefreshToken); !errors.Is(err, authkit.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for refresh token, got %v", err)
	}
	if _, err := svc.Authenticate(ctx, "garbage"); !errors.Is(err, authkit.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for garbage, got %v", err)
	}
}

func TestAuthenticateSurvivesLogout(t *testing.T) {
	// Access tokens are stateless; logout only kills the refresh chain.
	svc, _ := newTestService(t)
	ctx := context.Background()

	login, err := svc.Login(ctx, "alice@example.com", "correct-horse")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if err := svc.Logout(ctx, login.User.ID); err != nil {
		t.Fatalf("Logout failed: %v", err)
	}

	if _, err := svc.Authenticate(ctx, login.AccessToken); err != nil {
		t.Fatalf("expected access token to outlive logout, got %v", err)
	}
}

func TestRefreshConcurrencySingleWinner(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	login, err := svc.Login(ctx, "alice@example.com", "correct-horse")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	const n = 16
	var wg sync.WaitGroup
	wg.Add(n)

	results := make(chan error, n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			_, err := svc.Refresh(ctx, login.RefreshToken)
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	success := 0
	denied := 0
	for err := range results {
		switch {
		case err == nil:
			success++
		case errors.Is(err, authkit.ErrAccessDenied):
			denied++
		default:
			t.Fatalf("unexpected refresh error: %v", err)
		}
	}

	if success != 1 {
		t.Fatalf("expected exactly one refresh success, got %d", success)
	}
	if denied != n-1 {
		t.Fatalf("expected %d denials, got %d", n-1, denied)
	}
}

func TestMetricsObserveLoginAndRefresh(t *testing.T) {
	mem := store.NewMemory()
	cfg := serviceTestConfig()
	cfg.Metrics.Enabled = true

	svc, err := authkit.New().WithConfig(cfg).WithStore(mem).Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	t.Cleanup(svc.Close)
	seedUser(t, mem, "alice@example.com", "Alice", "correct-horse")

	ctx := context.Background()
	if _, err := svc.Login(ctx, "alice@example.com", "wrong"); err == nil {
		t.Fatal("expected login failure")
	}
	login, err := svc.Login(ctx, "alice@example.com", "correct-horse")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if _, err := svc.Refresh(ctx, login.RefreshToken); err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}

	snap := svc.MetricsSnapshot()
	if snap.Counters[authkit.MetricLoginSuccess] != 1 {
		t.Fatalf("expected 1 login success, got %d", snap.Counters[authkit.MetricLoginSuccess])
	}
	if snap.Counters[authkit.MetricLoginFailure] != 1 {
		t.Fatalf("expected 1 login failure, got %d", snap.Counters[authkit.MetricLoginFailure])
	}
	if snap.Counters[authkit.MetricRefreshSuccess] != 1 {
		t.Fatalf("expected 1 refresh success, got %d", snap.Counters[authkit.MetricRefreshSuccess])
	}
}

func TestAuditEventsEmitted(t *testing.T) {
	mem := store.NewMemory()
	cfg := serviceTestConfig()
	cfg.Audit.Enabled = true

	sink := authkit.NewChannelSink(16)
	svc, err := authkit.New().WithConfig(cfg).WithStore(mem).WithAuditSink(sink).Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	t.Cleanup(svc.Close)
	seedUser(t, mem, "alice@example.com", "Alice", "correct-horse")

	ctx := authkit.WithClientIP(context.Background(), "203.0.113.7")
	if _, err := svc.Login(ctx, "alice@example.com", "correct-horse"); err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	select {
	case event := <-sink.Events():
		if event.EventType != "login_success" {
			t.Fatalf("expected login_success event, got %q", event.EventType)
		}
		if !event.Success || event.IP != "203.0.113.7" {
			t.Fatalf("unexpected event payload: %+v", event)
		}
		if event.UserID == "" {
			t.Fatal("expected event to carry the user id")
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for audit event")
	}
}
