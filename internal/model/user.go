// Package model defines the data structures used throughout the application.
package model

import "time"

// User represents a registered user account.
//
// We use GitHub OAuth as the identity provider, so the primary external
// identifier is the GitHub user ID (an integer). We still generate our own
// internal string ID (xid) to avoid tying our primary keys to a third-party's
// numbering scheme.
//
// WHY GitHubID int64?
// GitHub user IDs are integers (e.g. 1234567). Using int64 avoids overflow
// for large GitHub account numbers. The UNIQUE constraint on github_id in the
// DB ensures one GitHub account maps to exactly one app account.
//
// WHY Name string (not *string)?
// GitHub's /user response may omit the display name. Rather than a nullable
// pointer, we default Name to the login at registration time, so it is never
// empty — simpler to work with and always safe to display.
type User struct {
	ID        string    `json:"id"`
	GitHubID  int64     `json:"githubId"`  // GitHub's numeric user ID
	Login     string    `json:"login"`     // GitHub username, e.g. "sakif"
	Name      string    `json:"name"`      // Display name (defaults to Login)
	AvatarURL string    `json:"avatarUrl"` // Profile picture URL (may be empty)
	CreatedAt time.Time `json:"createdAt"`
}
