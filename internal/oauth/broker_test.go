package oauth_test

import (
	"context"
	"sync"
	"testing"

	"github.com/insforge/core/internal/auth"
	"github.com/insforge/core/internal/oauth"
	"github.com/stretchr/testify/require"
)

type stubCipher struct{}

func (stubCipher) Encrypt(p []byte) (string, error) { return "ct:" + string(p), nil }
func (stubCipher) Decrypt(w string) ([]byte, error) { return []byte(w[3:]), nil }

type stubLinker struct{ calls int }

func (s *stubLinker) LinkOAuthBinding(ctx context.Context, provider, accountID string, profile auth.Profile, tokens auth.Tokens) (*auth.User, error) {
	s.calls++
	return &auth.User{ID: "u1", Email: profile.Email}, nil
}

type stubIssuer struct{}

func (stubIssuer) Issue(ctx context.Context, subjectID, email, role, subjectType string) (string, error) {
	return "jwt-for-" + subjectID, nil
}

// noopExchanger is an in-process providerExchanger stub with canned
// results; it never dials out.
type noopExchanger struct{}

func (noopExchanger) AuthCodeURL(cfg oauth.ProviderConfig, state, redirectURI string) string {
	return "https://provider.example/authorize?state=" + state
}
func (noopExchanger) Exchange(ctx context.Context, cfg oauth.ProviderConfig, code, redirectURI string) (string, string, error) {
	return "access-tok", "refresh-tok", nil
}
func (noopExchanger) FetchProfile(ctx context.Context, accessToken string) (oauth.Profile, error) {
	return oauth.Profile{AccountID: "acct-1", Email: "user@example.com", DisplayName: "User"}, nil
}

func TestBeginAuthorizationFailsWhenProviderUnconfigured(t *testing.T) {
	b := oauth.NewBroker(nil, nil, &stubLinker{}, stubIssuer{}, nil, nil, nil, nil)
	_, err := b.BeginAuthorization(context.Background(), "google", "")
	require.ErrorIs(t, err, oauth.ErrProviderDisabled)
}

func TestConcurrentReloadsCompleteWithoutError(t *testing.T) {
	// With an empty Repository (nil db) this would panic on a real read;
	// instead we only assert that concurrent Reload() calls against an
	// unconfigured broker (zero exchangers) complete without racing on
	// the shared reloadState slot.
	b := oauth.NewBroker(&oauth.Repository{}, nil, &stubLinker{}, stubIssuer{}, nil, nil, nil, nil)

	var wg sync.WaitGroup
	errs := make([]error, 4)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = b.Reload(context.Background())
		}(i)
	}
	wg.Wait()
	for _, err := range errs {
		require.NoError(t, err)
	}
}
