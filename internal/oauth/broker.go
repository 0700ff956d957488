package oauth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"log/slog"
	"sync"

	"github.com/insforge/core/internal/apperror"
	"github.com/insforge/core/internal/auth"
)

// linker is the subset of auth.Service the broker needs to complete an
// exchange, accepted as an interface for testability; the concrete
// dependency runs C4 → C3 per the spec's stated build order.
type linker interface {
	LinkOAuthBinding(ctx context.Context, provider, accountID string, profile auth.Profile, tokens auth.Tokens) (*auth.User, error)
}

// sessionIssuer is the subset of session.Service the broker needs to
// mint a JWT after a successful exchange (C4 → C5).
type sessionIssuer interface {
	Issue(ctx context.Context, subjectID, email, role, subjectType string) (string, error)
}

// providerExchanger performs the provider-specific half of the exchange
// protocol: code-for-token and token-for-profile. Implementations live
// in provider.go, one per supported provider, registered in NewBroker.
type providerExchanger interface {
	AuthCodeURL(cfg ProviderConfig, state, redirectURI string) string
	Exchange(ctx context.Context, cfg ProviderConfig, code, redirectURI string) (accessToken, refreshToken string, err error)
	FetchProfile(ctx context.Context, accessToken string) (Profile, error)
}

// AuditWriter is the subset of audit.Writer this package needs, accepted
// locally so oauth never imports the audit package directly — the same
// pattern auth.Service uses for its own audit dependency.
type AuditWriter interface {
	Write(ctx context.Context, actor, action, module string, details map[string]any, ipAddress string) error
}

// reloadState is the single-slot memoized future used to coalesce
// concurrent Reload() calls into one read of the config table (spec §9
// "Promise memoization for in-flight dedup", grounded on the teacher's
// lazy-singleton pattern generalized to explicit shared-future form).
type reloadState struct {
	mu     sync.Mutex
	inFlight *reloadTask
}

type reloadTask struct {
	done chan struct{}
	err  error
}

// Broker implements the OAuth Broker (C4).
type Broker struct {
	repo       *Repository
	states     *StateStore
	linker     linker
	issuer     sessionIssuer
	exchangers map[string]providerExchanger
	shared     map[string]ProviderConfig // shared-credential fallback, keyed by provider
	logger     *slog.Logger
	audit      AuditWriter

	snapshot atomicSnapshot
	reload   reloadState
}

// NewBroker constructs a Broker. exchangers maps provider name (e.g.
// "google", "github") to its protocol implementation; shared maps
// provider name to the process's built-in fallback credentials, may be
// empty.
func NewBroker(repo *Repository, states *StateStore, linker linker, issuer sessionIssuer, exchangers map[string]providerExchanger, shared map[string]ProviderConfig, logger *slog.Logger, audit AuditWriter) *Broker {
	return &Broker{
		repo:       repo,
		states:     states,
		linker:     linker,
		issuer:     issuer,
		exchangers: exchangers,
		shared:     shared,
		logger:     logger,
		audit:      audit,
	}
}

// auditAfterCommit writes one audit record without letting a failure
// there surface to the caller of the mutation/exchange it describes —
// mirrors auth.Service.auditAfterCommit.
func (b *Broker) auditAfterCommit(ctx context.Context, actor, action string, details map[string]any) {
	if b.audit == nil {
		return
	}
	_ = b.audit.Write(ctx, actor, action, "OAUTH", details, "")
}

// Reload publishes a fresh Snapshot from storage, coalescing concurrent
// callers into a single underlying read (spec §4.4 point 1, Testable
// Property 7).
func (b *Broker) Reload(ctx context.Context) error {
	b.reload.mu.Lock()
	if b.reload.inFlight != nil {
		task := b.reload.inFlight
		b.reload.mu.Unlock()
		<-task.done
		return task.err
	}
	task := &reloadTask{done: make(chan struct{})}
	b.reload.inFlight = task
	b.reload.mu.Unlock()

	err := b.doReload(ctx)

	b.reload.mu.Lock()
	task.err = err
	b.reload.inFlight = nil
	b.reload.mu.Unlock()
	close(task.done)

	return err
}

func (b *Broker) doReload(ctx context.Context) error {
	providers := make([]string, 0, len(b.exchangers))
	for name := range b.exchangers {
		providers = append(providers, name)
	}

	configs, err := b.repo.LoadAll(ctx, providers)
	if err != nil {
		return err
	}

	next := &Snapshot{providers: make(map[string]effectiveConfig, len(configs))}
	for _, cfg := range configs {
		eff := cfg
		if eff.UseSharedCredentials {
			if sc, ok := b.shared[eff.Provider]; ok {
				eff.ClientID, eff.ClientSecret = sc.ClientID, sc.ClientSecret
			}
		}
		next.providers[cfg.Provider] = effectiveConfig{
			ProviderConfig:   eff,
			effectiveEnabled: eff.Enabled && eff.ClientID != "" && eff.ClientSecret != "",
		}
	}

	b.snapshot.store(next)
	b.auditAfterCommit(ctx, "system", "OAUTH_CONFIG_RELOAD", map[string]any{"providerCount": len(next.providers)})
	return nil
}

// UpdateConfig persists an admin's change to one provider's
// configuration and republishes the snapshot so the new values take
// effect immediately (spec §4.4 point 3: "an admin may update a
// provider's credentials at runtime").
func (b *Broker) UpdateConfig(ctx context.Context, update ProviderConfig) error {
	if err := b.repo.Save(ctx, update); err != nil {
		b.auditAfterCommit(ctx, "admin", "OAUTH_CONFIG_SAVE_FAILED", map[string]any{"provider": update.Provider, "error": err.Error()})
		return err
	}
	b.auditAfterCommit(ctx, "admin", "OAUTH_CONFIG_SAVE", map[string]any{"provider": update.Provider, "enabled": update.Enabled})
	return b.Reload(ctx)
}

// BeginAuthorization generates single-use state and returns the
// provider's authorization URL (spec §4.4 exchange protocol step 1).
func (b *Broker) BeginAuthorization(ctx context.Context, provider, redirectURI string) (AuthURL, error) {
	cfg, exchanger, err := b.effective(provider)
	if err != nil {
		return AuthURL{}, err
	}
	if redirectURI == "" {
		redirectURI = cfg.RedirectURI
	}

	state, err := randomState()
	if err != nil {
		return AuthURL{}, apperror.Wrap(apperror.Internal, "oauth state generation failed", err)
	}
	if err := b.states.Put(ctx, state, provider, redirectURI); err != nil {
		return AuthURL{}, apperror.Wrap(apperror.Internal, "oauth state persist failed", err)
	}

	return AuthURL{URL: exchanger.AuthCodeURL(cfg.ProviderConfig, state, redirectURI), State: state}, nil
}

// CompleteAuthorization validates state, exchanges code for tokens,
// fetches the provider profile, links the account, and mints a session
// (spec §4.4 exchange protocol step 2).
func (b *Broker) CompleteAuthorization(ctx context.Context, provider, code, state string) (Identity, error) {
	cfg, exchanger, err := b.effective(provider)
	if err != nil {
		b.auditAfterCommit(ctx, "anonymous", "OAUTH_EXCHANGE_FAILED", map[string]any{"provider": provider, "reason": err.Error()})
		return Identity{}, err
	}

	stateProvider, redirectURI, ok, err := b.states.Consume(ctx, state)
	if err != nil {
		b.auditAfterCommit(ctx, "anonymous", "OAUTH_EXCHANGE_FAILED", map[string]any{"provider": provider, "reason": err.Error()})
		return Identity{}, apperror.Wrap(apperror.Internal, "oauth state lookup failed", err)
	}
	if !ok || stateProvider != provider {
		b.auditAfterCommit(ctx, "anonymous", "OAUTH_EXCHANGE_FAILED", map[string]any{"provider": provider, "reason": ErrStateInvalid.Error()})
		return Identity{}, ErrStateInvalid
	}

	accessToken, refreshToken, err := exchanger.Exchange(ctx, cfg.ProviderConfig, code, redirectURI)
	if err != nil {
		b.auditAfterCommit(ctx, "anonymous", "OAUTH_EXCHANGE_FAILED", map[string]any{"provider": provider, "reason": err.Error()})
		return Identity{}, apperror.Wrap(apperror.OAuthProviderError, "oauth token exchange failed", err)
	}

	profile, err := exchanger.FetchProfile(ctx, accessToken)
	if err != nil {
		b.auditAfterCommit(ctx, "anonymous", "OAUTH_EXCHANGE_FAILED", map[string]any{"provider": provider, "reason": err.Error()})
		return Identity{}, apperror.Wrap(apperror.OAuthProviderError, "oauth profile fetch failed", err)
	}

	user, err := b.linker.LinkOAuthBinding(ctx, provider, profile.AccountID,
		auth.Profile{Email: profile.Email, DisplayName: profile.DisplayName},
		auth.Tokens{AccessToken: accessToken, RefreshToken: refreshToken})
	if err != nil {
		b.auditAfterCommit(ctx, "anonymous", "OAUTH_EXCHANGE_FAILED", map[string]any{"provider": provider, "reason": err.Error()})
		return Identity{}, err
	}

	token, err := b.issuer.Issue(ctx, user.ID, user.Email, "authenticated", "user")
	if err != nil {
		b.auditAfterCommit(ctx, user.Email, "OAUTH_EXCHANGE_FAILED", map[string]any{"provider": provider, "reason": err.Error()})
		return Identity{}, err
	}

	b.auditAfterCommit(ctx, user.Email, "OAUTH_EXCHANGE_SUCCEEDED", map[string]any{"provider": provider, "userId": user.ID})
	return Identity{UserID: user.ID, Email: user.Email, Token: token}, nil
}

func (b *Broker) effective(provider string) (effectiveConfig, providerExchanger, error) {
	exchanger, known := b.exchangers[provider]
	if !known {
		return effectiveConfig{}, nil, ErrProviderDisabled
	}
	snap := b.snapshot.load()
	cfg, ok := snap.get(provider)
	if !ok || !cfg.effectiveEnabled {
		return effectiveConfig{}, nil, ErrProviderDisabled
	}
	return cfg, exchanger, nil
}

func randomState() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
