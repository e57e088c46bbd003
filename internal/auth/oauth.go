package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"

	"github.com/sakif/memories-api/internal/apperror"
)

// GitHubUser is the portion of the GitHub /user API response we care about.
// GitHub returns a much larger object — we only unmarshal the fields we need.
//
// GitHub API docs: https://docs.github.com/en/rest/users/users#get-the-authenticated-user
type GitHubUser struct {
	ID        int64  `json:"id"`         // GitHub's numeric user ID — stable, never changes
	Login     string `json:"login"`      // GitHub username, e.g. "sakif"
	Name      string `json:"name"`       // Display name (may be empty if unset)
	AvatarURL string `json:"avatar_url"` // Profile picture URL (may be empty)
}

// GitHubProvider wraps golang.org/x/oauth2 for the GitHub Authorization Code flow.
//
// OAUTH 2.0 AUTHORIZATION CODE FLOW (SPA VARIANT):
// 1. The frontend redirects the user to GitHub's authorization endpoint.
// 2. The user approves the authorization request on GitHub.
// 3. GitHub redirects back to the frontend with a short-lived "code".
// 4. The frontend POSTs that code to our /register endpoint.
// 5. This server exchanges the code for an access token (server-to-server,
//    using the ClientSecret) and calls the GitHub API for the user profile.
//
// WHY SERVER-SIDE EXCHANGE?
// The code-for-token exchange uses the ClientSecret, and the GitHub access
// token never touches the browser — the frontend only ever sees our own
// session JWT.
type GitHubProvider struct {
	config *oauth2.Config
	apiURL string // base URL of the GitHub API — overridable in tests
}

// NewGitHubProvider creates a GitHubProvider with the given credentials.
//
// You get ClientID and ClientSecret by registering an OAuth App at:
// https://github.com/settings/developers → "OAuth Apps" → "New OAuth App"
func NewGitHubProvider(clientID, clientSecret string) *GitHubProvider {
	return &GitHubProvider{
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			Endpoint:     github.Endpoint, // pre-defined GitHub OAuth endpoints
		},
		apiURL: "https://api.github.com",
	}
}

// NewGitHubProviderForTest creates a provider whose token endpoint and API
// base both point at a test server (usually net/http/httptest). This keeps
// the exchange flow testable without real GitHub credentials.
func NewGitHubProviderForTest(clientID, clientSecret, tokenURL, apiURL string) *GitHubProvider {
	return &GitHubProvider{
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			Endpoint: oauth2.Endpoint{
				AuthURL:  tokenURL, // unused by Exchange
				TokenURL: tokenURL,
			},
		},
		apiURL: apiURL,
	}
}

// Exchange completes the OAuth flow: trades the authorization code for a GitHub
// user profile.
//
// Steps:
//  1. Exchange the code for an OAuth access token (server-to-server)
//  2. Use the token to call GitHub's /user API endpoint
//  3. Unmarshal and validate the response into a GitHubUser struct
//
// Failures of the GitHub endpoints (network errors, non-2xx) come back as
// apperror.ErrUpstream. A well-formed HTTP response carrying a malformed
// profile comes back as apperror.ErrValidation — GitHub answered, but not
// with anything we can anchor an account on.
func (p *GitHubProvider) Exchange(ctx context.Context, code string) (*GitHubUser, error) {
	// Step 1: exchange authorization code → OAuth access token.
	// This makes a POST to GitHub's token endpoint using our ClientSecret.
	oauthToken, err := p.config.Exchange(ctx, code)
	if err != nil {
		return nil, apperror.Upstream("GitHub token exchange failed", err)
	}

	// Step 2: call the GitHub /user API with the token.
	// oauth2.Config.Client returns an *http.Client that automatically adds
	// the "Authorization: Bearer <token>" header to every request.
	client := p.config.Client(ctx, oauthToken)

	resp, err := client.Get(p.apiURL + "/user")
	if err != nil {
		return nil, apperror.Upstream("GitHub /user API unreachable", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, apperror.Upstream(
			fmt.Sprintf("GitHub /user API returned status %d", resp.StatusCode),
			fmt.Errorf("unexpected status %d", resp.StatusCode),
		)
	}

	// Step 3: unmarshal the JSON response into our GitHubUser struct
	var ghUser GitHubUser
	if err := json.NewDecoder(resp.Body).Decode(&ghUser); err != nil {
		return nil, apperror.ValidationFailed("user", "GitHub /user response is not valid JSON")
	}

	if err := validateProfile(&ghUser); err != nil {
		return nil, err
	}

	return &ghUser, nil
}

// validateProfile enforces the shape we require of the GitHub profile:
// a numeric id, a non-empty login, and — when present — a well-formed
// avatar URL. Name is optional; callers default it to the login.
func validateProfile(u *GitHubUser) error {
	if u.ID == 0 {
		return apperror.ValidationFailed("id", "GitHub profile has no numeric id")
	}
	if u.Login == "" {
		return apperror.ValidationFailed("login", "GitHub profile has no login")
	}
	if u.AvatarURL != "" {
		parsed, err := url.Parse(u.AvatarURL)
		if err != nil || parsed.Scheme == "" || parsed.Host == "" {
			return apperror.ValidationFailed("avatar_url", "GitHub profile avatar_url is not a valid URL")
		}
	}
	return nil
}
