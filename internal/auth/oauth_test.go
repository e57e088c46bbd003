package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sakif/memories-api/internal/apperror"
)

// newFakeGitHub spins up an httptest server that plays both GitHub roles:
// the OAuth token endpoint (POST /token) and the API (GET /user).
//
// WHY FAKE GITHUB WITH httptest?
// The exchange flow is two outbound HTTP calls. httptest.NewServer gives us a
// real HTTP listener on a random localhost port, so the production code path
// (x/oauth2's Exchange + the authenticated client) runs unmodified — only the
// URLs differ.
func newFakeGitHub(t *testing.T, userHandler http.HandlerFunc) *GitHubProvider {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		if r.FormValue("code") == "bad-code" {
			http.Error(w, `{"error":"bad_verification_code"}`, http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{
			"access_token": "gho_testtoken",
			"token_type":   "bearer",
		})
	})
	mux.HandleFunc("/user", userHandler)

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	return NewGitHubProviderForTest("client-id", "client-secret", srv.URL+"/token", srv.URL)
}

func serveProfile(t *testing.T, profile map[string]any) http.HandlerFunc {
	t.Helper()
	return func(w http.ResponseWriter, r *http.Request) {
		// The oauth2 client must be attaching the exchanged token.
		if r.Header.Get("Authorization") == "" {
			t.Error("GET /user arrived without an Authorization header")
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(profile)
	}
}

func TestExchange_Success(t *testing.T) {
	provider := newFakeGitHub(t, serveProfile(t, map[string]any{
		"id":         int64(1234567),
		"login":      "sakif",
		"name":       "Sakif",
		"avatar_url": "https://avatars.githubusercontent.com/u/1234567",
	}))

	ghUser, err := provider.Exchange(context.Background(), "good-code")
	if err != nil {
		t.Fatalf("Exchange() error = %v", err)
	}

	if ghUser.ID != 1234567 {
		t.Errorf("ID = %d, want 1234567", ghUser.ID)
	}
	if ghUser.Login != "sakif" {
		t.Errorf("Login = %q, want %q", ghUser.Login, "sakif")
	}
	if ghUser.Name != "Sakif" {
		t.Errorf("Name = %q, want %q", ghUser.Name, "Sakif")
	}
}

func TestExchange_OptionalFieldsMayBeAbsent(t *testing.T) {
	// GitHub omits name/avatar_url for some accounts — that must not fail.
	provider := newFakeGitHub(t, serveProfile(t, map[string]any{
		"id":    int64(42),
		"login": "minimal",
	}))

	ghUser, err := provider.Exchange(context.Background(), "good-code")
	if err != nil {
		t.Fatalf("Exchange() error = %v", err)
	}
	if ghUser.Name != "" {
		t.Errorf("Name = %q, want empty", ghUser.Name)
	}
}

func TestExchange_BadCodeIsUpstreamError(t *testing.T) {
	provider := newFakeGitHub(t, serveProfile(t, map[string]any{"id": int64(1), "login": "x"}))

	_, err := provider.Exchange(context.Background(), "bad-code")
	if err == nil {
		t.Fatal("Exchange() should fail when the token endpoint rejects the code")
	}
	if !errors.Is(err, apperror.ErrUpstream) {
		t.Errorf("error = %v, want ErrUpstream in the chain", err)
	}
}

func TestExchange_UserEndpointFailureIsUpstreamError(t *testing.T) {
	provider := newFakeGitHub(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	})

	_, err := provider.Exchange(context.Background(), "good-code")
	if !errors.Is(err, apperror.ErrUpstream) {
		t.Errorf("error = %v, want ErrUpstream in the chain", err)
	}
}

func TestExchange_MalformedProfileIsValidationError(t *testing.T) {
	tests := []struct {
		name    string
		profile map[string]any
	}{
		{"zero id", map[string]any{"id": 0, "login": "sakif"}},
		{"missing login", map[string]any{"id": int64(7)}},
		{"garbage avatar url", map[string]any{"id": int64(7), "login": "x", "avatar_url": "not a url"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider := newFakeGitHub(t, serveProfile(t, tt.profile))

			_, err := provider.Exchange(context.Background(), "good-code")
			if !errors.Is(err, apperror.ErrValidation) {
				t.Errorf("error = %v, want ErrValidation in the chain", err)
			}
		})
	}
}
