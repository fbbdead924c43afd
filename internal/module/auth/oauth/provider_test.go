package oauth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func TestProvider_GetAuthURL(t *testing.T) {
	p := NewProvider(&Config{
		ClientID:    "client-id",
		RedirectURL: "http://localhost/callback",
		Scopes:      []string{"user:read:email"},
		AuthBaseURL: "https://id.example.com/oauth2/",
	})

	t.Run("uses default scopes", func(t *testing.T) {
		u, err := url.Parse(p.GetAuthURL("state-1", nil, false))
		require.NoError(t, err)

		assert.Equal(t, "id.example.com", u.Host)
		assert.Equal(t, "/oauth2/authorize", u.Path)

		q := u.Query()
		assert.Equal(t, "code", q.Get("response_type"))
		assert.Equal(t, "client-id", q.Get("client_id"))
		assert.Equal(t, "http://localhost/callback", q.Get("redirect_uri"))
		assert.Equal(t, "user:read:email", q.Get("scope"))
		assert.Equal(t, "state-1", q.Get("state"))
		assert.False(t, q.Has("force_verify"))
	})

	t.Run("joins custom scopes and forces verification", func(t *testing.T) {
		u, err := url.Parse(p.GetAuthURL("state-2", []string{"a:read", "b:write"}, true))
		require.NoError(t, err)

		q := u.Query()
		assert.Equal(t, "a:read b:write", q.Get("scope"))
		assert.Equal(t, "true", q.Get("force_verify"))
		assert.Equal(t, []string{"user:read:email"}, p.Scopes())
	})
}

func TestProvider_Exchange(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/oauth2/token", r.URL.Path)
		assert.NoError(t, r.ParseForm())
		assert.Equal(t, "authorization_code", r.Form.Get("grant_type"))
		assert.Equal(t, "the-code", r.Form.Get("code"))
		assert.Equal(t, "client-id", r.Form.Get("client_id"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"user-token","refresh_token":"refresh","token_type":"bearer","expires_in":3600}`))
	}))
	defer srv.Close()

	p := NewProvider(&Config{
		ClientID:     "client-id",
		ClientSecret: "secret",
		AuthBaseURL:  srv.URL + "/oauth2",
	})

	ctx := context.WithValue(context.Background(), oauth2.HTTPClient, srv.Client())
	token, err := p.Exchange(ctx, "the-code")
	require.NoError(t, err)
	assert.Equal(t, "user-token", token.AccessToken)
	assert.Equal(t, "refresh", token.RefreshToken)
}
