package oauth

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"
	"golang.org/x/oauth2/google"
)

// oauth2Exchanger adapts golang.org/x/oauth2's Config to providerExchanger,
// parameterized by the provider's userinfo endpoint and response shape
// (grounded on the now-retired teacher oauth_client.go, which hand-rolled
// the same two-call protocol against net/http directly).
type oauth2Exchanger struct {
	endpoint     oauth2.Endpoint
	scopes       []string
	userInfoURL  string
	parseProfile func([]byte) Profile
}

func (e oauth2Exchanger) config(cfg ProviderConfig, redirectURI string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		RedirectURL:  redirectURI,
		Scopes:       e.scopes,
		Endpoint:     e.endpoint,
	}
}

func (e oauth2Exchanger) AuthCodeURL(cfg ProviderConfig, state, redirectURI string) string {
	return e.config(cfg, redirectURI).AuthCodeURL(state)
}

func (e oauth2Exchanger) Exchange(ctx context.Context, cfg ProviderConfig, code, redirectURI string) (string, string, error) {
	tok, err := e.config(cfg, redirectURI).Exchange(ctx, code)
	if err != nil {
		return "", "", err
	}
	return tok.AccessToken, tok.RefreshToken, nil
}

func (e oauth2Exchanger) FetchProfile(ctx context.Context, accessToken string) (Profile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, e.userInfoURL, nil)
	if err != nil {
		return Profile{}, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return Profile{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Profile{}, errUnexpectedStatus(resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Profile{}, err
	}
	return e.parseProfile(body), nil
}

type unexpectedStatusError int

func (e unexpectedStatusError) Error() string {
	return "unexpected provider response status"
}

func errUnexpectedStatus(code int) error { return unexpectedStatusError(code) }

// DefaultExchangers returns the built-in provider set (spec §3: `provider
// ∈ {google, github, …}`).
func DefaultExchangers() map[string]providerExchanger {
	return map[string]providerExchanger{
		"google": oauth2Exchanger{
			endpoint:    google.Endpoint,
			scopes:      []string{"openid", "email", "profile"},
			userInfoURL: "https://www.googleapis.com/oauth2/v3/userinfo",
			parseProfile: func(body []byte) Profile {
				var v struct {
					Sub, Email, Name string
				}
				_ = json.Unmarshal(body, &v)
				return Profile{AccountID: v.Sub, Email: v.Email, DisplayName: v.Name}
			},
		},
		"github": oauth2Exchanger{
			endpoint:    github.Endpoint,
			scopes:      []string{"read:user", "user:email"},
			userInfoURL: "https://api.github.com/user",
			parseProfile: func(body []byte) Profile {
				var v struct {
					ID    int    `json:"id"`
					Email string `json:"email"`
					Login string `json:"login"`
					Name  string `json:"name"`
				}
				_ = json.Unmarshal(body, &v)
				displayName := v.Name
				if displayName == "" {
					displayName = v.Login
				}
				return Profile{AccountID: strconv.Itoa(v.ID), Email: v.Email, DisplayName: displayName}
			},
		},
	}
}
