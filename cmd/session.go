package cmd

import (
	"context"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/oauth2"

	"sessionctl/cli/internal/auth"
	"sessionctl/cli/internal/backend"
	"sessionctl/cli/internal/config"
	errs "sessionctl/cli/internal/errors"
	"sessionctl/cli/internal/keychain"
	"sessionctl/cli/internal/logging"
)

// loadConfig layers config.yaml, the environment and command-line overrides.
func loadConfig() (config.Config, error) {
	overrides := map[string]any{}
	if apiURL != "" {
		overrides["api.url"] = apiURL
	}
	if verbose {
		overrides["log.level"] = "debug"
	}
	return config.Load(configPath, overrides)
}

// newLogger builds the diagnostic logger. In verbose mode output goes to both
// stderr and the state log file; the returned func closes the file.
func newLogger(cfg config.Config) (zerolog.Logger, func(), error) {
	if !verbose {
		log, err := logging.New(cfg.Log.Level, os.Stderr)
		return log, func() {}, err
	}
	f, err := logging.OpenLogFile()
	if err != nil {
		log, lerr := logging.New(cfg.Log.Level, os.Stderr)
		log.Warn().Err(err).Msg("state log file unavailable")
		return log, func() {}, lerr
	}
	log, err := logging.New(cfg.Log.Level, io.MultiWriter(os.Stderr, f))
	return log, func() { _ = f.Close() }, err
}

// newService wires the session service to the HTTP backend and the keychain.
// The fetcher reads the bearer from the service on every request.
func newService(cfg config.Config, log zerolog.Logger, store auth.Store) *auth.Service {
	var svc *auth.Service
	fetch := backend.NewHTTP(cfg.API.URL,
		backend.WithTimeout(cfg.API.Timeout),
		backend.WithUserAgent("sessionctl/"+Version),
		backend.WithLogger(log),
		backend.WithTokenSource(backend.TokenSourceFunc(func() (*oauth2.Token, error) {
			return svc.Token()
		})),
	)
	api := backend.New(fetch, backend.Endpoints{
		Me:      cfg.Endpoints.Me,
		Login:   cfg.Endpoints.Login,
		Refresh: cfg.Endpoints.Refresh,
	})
	svc = auth.NewService(api,
		auth.WithInitialTokens(auth.StoredTokens(store, api, cfg.Refresh.Leeway)),
		auth.WithOnChange(auth.Persist(store, log)),
		auth.WithRefreshLeeway(cfg.Refresh.Leeway),
		auth.WithLogger(log),
	)
	return svc
}

// withSession runs fn inside a context carrying a started auth.Service whose
// initial tokens are resolved. The service is closed afterwards, which flushes
// pending keychain writes.
func withSession(cmd *cobra.Command, fn func(ctx context.Context, cfg config.Config) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log, closeLog, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer closeLog()
	keychain.SetLogger(log)

	km, err := keychain.GetManager()
	if err != nil {
		return err
	}

	svc := newService(cfg, log, km)
	ctx := log.WithContext(auth.NewContext(cmd.Context(), svc))
	svc.Start(ctx)
	defer svc.Close()

	select {
	case <-svc.Resolved():
	case <-ctx.Done():
		return ctx.Err()
	}
	return fn(ctx, cfg)
}

// settled waits for the session in ctx to finish loading the user profile.
func settled(ctx context.Context) (auth.Snapshot, error) {
	svc, ok := auth.FromContext(ctx)
	if !ok {
		return auth.Snapshot{}, errs.New(errs.OutsideScope, "no session in command context")
	}
	return svc.Settled(ctx)
}
