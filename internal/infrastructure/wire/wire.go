// Package wire is the explicit composition root: it constructs every
// collaborator (C1-C8) in dependency order and wires them together. No
// code generation — grounded on the teacher's wire.go shape (one App
// struct, one NewApp-equivalent constructor) but hand-written since this
// module's dependency graph is small enough not to need google/wire.
package wire

import (
	"context"
	"log/slog"

	"github.com/insforge/core/internal/audit"
	"github.com/insforge/core/internal/auth"
	"github.com/insforge/core/internal/authz"
	"github.com/insforge/core/internal/cipher"
	"github.com/insforge/core/internal/config"
	"github.com/insforge/core/internal/logsource"
	"github.com/insforge/core/internal/oauth"
	"github.com/insforge/core/internal/secret"
	"github.com/insforge/core/internal/secret/functionsecret"
	"github.com/insforge/core/internal/session"
	"github.com/insforge/core/internal/shared/logging"
	"github.com/insforge/core/internal/shared/redis"
	"gorm.io/gorm"
)

// App holds every collaborator the HTTP layer (or cmd/seed) needs.
type App struct {
	Cipher         *cipher.Cipher
	Secrets        *secret.Store
	FunctionSecrets *functionsecret.Store
	Auth           *auth.Service
	OAuth          *oauth.Broker
	Session        *session.Service
	Authz          *authz.Authorizer
	Audit          *audit.Writer
	LogSources     *logsource.Registry
}

// sessionVerifierAdapter bridges session.Service (whose Verify/VerifyAdmin
// return session.Payload) to authz.SessionVerifier (which expects
// authz.Payload). The two types are structurally identical but distinct
// named types, so Go requires this adapter at the one place both meet.
type sessionVerifierAdapter struct {
	svc *session.Service
}

func (a sessionVerifierAdapter) Verify(token string) (authz.Payload, error) {
	p, err := a.svc.Verify(token)
	return authz.Payload(p), err
}

func (a sessionVerifierAdapter) VerifyAdmin(token string) (authz.Payload, error) {
	p, err := a.svc.VerifyAdmin(token)
	return authz.Payload(p), err
}

// Build constructs the full dependency graph from cfg, db, and an
// optional redisClient (nil disables the OAuth state store, which means
// OAuth login is unavailable but everything else still runs).
func Build(cfg *config.Config, db *gorm.DB, redisClient *redis.Client, logger *slog.Logger, clickHouse *logging.ClickHouseLogger) (*App, error) {
	c := cipher.New(cfg.MasterPassphrase())

	var sink audit.SecuritySink
	if clickHouse != nil {
		sink = logging.NewSecuritySink(clickHouse)
	}
	auditWriter := audit.New(db, sink, logger)

	secrets := secret.New(db, "secrets", "SECRETS", c, auditWriter, logger)
	funcSecrets := functionsecret.New(db, c, auditWriter, logger)

	authRepo := auth.NewRepository(db)
	authSvc := auth.NewService(authRepo, auditWriter)

	sessionSvc := session.New([]byte(cfg.SigningKey()), noOpaqueSessions{})

	var oauthBroker *oauth.Broker
	if redisClient != nil {
		oauthRepo := oauth.NewRepository(db, c)
		states := oauth.NewStateStore(redisClient)
		shared := make(map[string]oauth.ProviderConfig, len(cfg.OAuthProviders))
		for name, p := range cfg.OAuthProviders {
			shared[name] = oauth.ProviderConfig{
				Provider:     name,
				Enabled:      true,
				ClientID:     p.ClientID,
				ClientSecret: p.ClientSecret,
				RedirectURI:  p.RedirectURI,
			}
		}
		oauthBroker = oauth.NewBroker(oauthRepo, states, authSvc, sessionSvc, oauth.DefaultExchangers(), shared, logger, auditWriter)
		if err := oauthBroker.Reload(context.Background()); err != nil {
			logger.Warn("initial oauth config load failed", "error", err)
		}
	}

	authorizer := authz.New(secrets, sessionVerifierAdapter{svc: sessionSvc})

	return &App{
		Cipher:          c,
		Secrets:         secrets,
		FunctionSecrets: funcSecrets,
		Auth:            authSvc,
		OAuth:           oauthBroker,
		Session:         sessionSvc,
		Authz:           authorizer,
		Audit:           auditWriter,
		LogSources:      logsource.New(nil),
	}, nil
}

// noOpaqueSessions is the session.Lookup used when this module has no
// separate opaque-session store configured: Me() falls back to it only
// when JWT verification fails, so a permanent miss here just means every
// session this process issues is a JWT (spec §4.5's documented default).
type noOpaqueSessions struct{}

func (noOpaqueSessions) LookupSession(ctx context.Context, token string) (session.Payload, bool, error) {
	return session.Payload{}, false, nil
}
