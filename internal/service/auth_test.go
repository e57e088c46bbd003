package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"testing"

	"github.com/sakif/memories-api/internal/apperror"
	"github.com/sakif/memories-api/internal/auth"
	"github.com/sakif/memories-api/internal/model"
	"github.com/sakif/memories-api/internal/repository"
)

// mockUserRepo stores users in memory keyed by GitHub id.
type mockUserRepo struct {
	byGitHubID map[int64]*model.User
	creates    int // how many Create calls happened
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{byGitHubID: make(map[int64]*model.User)}
}

func (m *mockUserRepo) GetByGitHubID(_ context.Context, githubID int64) (*model.User, error) {
	user, ok := m.byGitHubID[githubID]
	if !ok {
		return nil, apperror.NotFound("user", fmt.Sprint(githubID))
	}
	result := *user
	return &result, nil
}

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	m.creates++
	user.ID = fmt.Sprintf("user-%d", m.creates)
	stored := *user
	m.byGitHubID[user.GitHubID] = &stored
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	for _, u := range m.byGitHubID {
		if u.ID == id {
			result := *u
			return &result, nil
		}
	}
	return nil, apperror.NotFound("user", id)
}

var _ repository.UserRepository = (*mockUserRepo)(nil)

// stubExchanger returns a canned profile (or error) without any HTTP.
type stubExchanger struct {
	user *auth.GitHubUser
	err  error
}

func (s *stubExchanger) Exchange(_ context.Context, code string) (*auth.GitHubUser, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.user, nil
}

// recordingSigner captures what Generate was called with.
type recordingSigner struct {
	userID    string
	name      string
	avatarURL string
}

func (r *recordingSigner) Generate(userID, name, avatarURL string) (string, error) {
	r.userID, r.name, r.avatarURL = userID, name, avatarURL
	return "signed-token", nil
}

func newTestAuthService(t *testing.T, exchanger GitHubExchanger) (*AuthService, *mockUserRepo, *recordingSigner) {
	t.Helper()
	users := newMockUserRepo()
	signer := &recordingSigner{}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	svc := NewAuthService(users, exchanger, signer, logger)
	return svc, users, signer
}

func TestRegister_EmptyCodeIsValidationError(t *testing.T) {
	svc, _, _ := newTestAuthService(t, &stubExchanger{})

	for _, code := range []string{"", "   "} {
		_, err := svc.Register(context.Background(), code)
		if !errors.Is(err, apperror.ErrValidation) {
			t.Errorf("Register(%q) error = %v, want ErrValidation", code, err)
		}
	}
}

func TestRegister_NewGitHubIDCreatesExactlyOneUser(t *testing.T) {
	svc, users, signer := newTestAuthService(t, &stubExchanger{
		user: &auth.GitHubUser{ID: 1234567, Login: "sakif", Name: "Sakif", AvatarURL: "https://a.png"},
	})

	token, err := svc.Register(context.Background(), "valid-code")
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if token != "signed-token" {
		t.Errorf("token = %q, want %q", token, "signed-token")
	}
	if users.creates != 1 {
		t.Errorf("creates = %d, want exactly 1 new user row", users.creates)
	}
	if signer.name != "Sakif" || signer.avatarURL != "https://a.png" {
		t.Errorf("token claims name=%q avatar=%q, want profile fields", signer.name, signer.avatarURL)
	}
}

func TestRegister_ReturningUserCreatesNothing(t *testing.T) {
	svc, users, signer := newTestAuthService(t, &stubExchanger{
		user: &auth.GitHubUser{ID: 42, Login: "alice", Name: "Alice"},
	})

	if _, err := svc.Register(context.Background(), "code-1"); err != nil {
		t.Fatalf("first Register() error = %v", err)
	}
	firstUserID := signer.userID

	if _, err := svc.Register(context.Background(), "code-2"); err != nil {
		t.Fatalf("second Register() error = %v", err)
	}

	if users.creates != 1 {
		t.Errorf("creates = %d, want 1 (second login must not insert)", users.creates)
	}
	if signer.userID != firstUserID {
		t.Errorf("second login signed for %q, want same user %q", signer.userID, firstUserID)
	}
}

func TestRegister_NameDefaultsToLogin(t *testing.T) {
	svc, users, signer := newTestAuthService(t, &stubExchanger{
		user: &auth.GitHubUser{ID: 7, Login: "noname"},
	})

	if _, err := svc.Register(context.Background(), "code"); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	if signer.name != "noname" {
		t.Errorf("token name = %q, want login fallback %q", signer.name, "noname")
	}
	stored, _ := users.GetByGitHubID(context.Background(), 7)
	if stored.Name != "noname" {
		t.Errorf("stored Name = %q, want login fallback", stored.Name)
	}
}

func TestRegister_UpstreamFailurePropagates(t *testing.T) {
	svc, users, _ := newTestAuthService(t, &stubExchanger{
		err: apperror.Upstream("GitHub token exchange failed", errors.New("boom")),
	})

	_, err := svc.Register(context.Background(), "code")
	if !errors.Is(err, apperror.ErrUpstream) {
		t.Errorf("error = %v, want ErrUpstream", err)
	}
	if users.creates != 0 {
		t.Errorf("creates = %d, want 0 when the exchange fails", users.creates)
	}
}
