package oauth

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/oauth2"
)

// Config holds OAuth client configuration.
type Config struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	Scopes       []string

	// AuthBaseURL is the OAuth server root; /authorize and /token are appended.
	AuthBaseURL string
}

// Provider builds authorization URLs and exchanges codes against the API's
// OAuth server.
type Provider struct {
	config *oauth2.Config
}

// NewProvider creates a new OAuth provider.
func NewProvider(cfg *Config) *Provider {
	base := strings.TrimSuffix(cfg.AuthBaseURL, "/")

	return &Provider{
		config: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       cfg.Scopes,
			Endpoint: oauth2.Endpoint{
				AuthURL:   base + "/authorize",
				TokenURL:  base + "/token",
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
	}
}

// Scopes returns the default scopes requested at login.
func (p *Provider) Scopes() []string {
	return p.config.Scopes
}

// GetAuthURL returns the authorization URL for the code flow.
// A nil scopes slice requests the configured default scopes.
func (p *Provider) GetAuthURL(state string, scopes []string, forceVerify bool) string {
	cfg := *p.config
	if scopes != nil {
		cfg.Scopes = scopes
	}

	var opts []oauth2.AuthCodeOption
	if forceVerify {
		opts = append(opts, oauth2.SetAuthURLParam("force_verify", "true"))
	}

	return cfg.AuthCodeURL(state, opts...)
}

// Exchange exchanges the authorization code for tokens.
func (p *Provider) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	token, err := p.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("exchange code: %w", err)
	}
	return token, nil
}
