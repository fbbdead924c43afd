package auth

import "github.com/uniedit/apiclient/internal/module/user"

// TokenInfo is what the remote API reports about an access token.
type TokenInfo struct {
	ClientID  string   `json:"client_id"`
	Login     string   `json:"login"`
	UserID    string   `json:"user_id"`
	Scopes    []string `json:"scopes"`
	ExpiresIn int      `json:"expires_in"`
}

// Verification is the result of verifying a user access token.
type Verification struct {
	User      *user.User `json:"user"`
	Scopes    []string   `json:"scopes"`
	ExpiresIn int        `json:"expires_in"`
}

// LoginResponse is returned when a login flow is started.
type LoginResponse struct {
	AuthURL string `json:"auth_url"`
	State   string `json:"state"`
}

// LoginResult is returned when a login flow completes.
type LoginResult struct {
	*Verification
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
}
