package main

import (
	"context"
	"errors"
	stdlog "log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/dropDatabas3/sessiond/internal/config"
	"github.com/dropDatabas3/sessiond/internal/http/controllers"
	"github.com/dropDatabas3/sessiond/internal/http/router"
	"github.com/dropDatabas3/sessiond/internal/identity"
	"github.com/dropDatabas3/sessiond/internal/kv"
	"github.com/dropDatabas3/sessiond/internal/metrics"
	"github.com/dropDatabas3/sessiond/internal/oauth"
	"github.com/dropDatabas3/sessiond/internal/oauth/github"
	"github.com/dropDatabas3/sessiond/internal/oauth/google"
	"github.com/dropDatabas3/sessiond/internal/observability/logger"
)

func main() {
	// Best effort: system env wins when there is no .env file.
	_ = godotenv.Load()

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		// The logger is configured from the config, so this one failure goes
		// to the stdlib logger.
		stdlog.Fatalf("config load failed: %v", err)
	}

	logger.Init(logger.Config{
		Env:         cfg.App.Env,
		Level:       cfg.Log.Level,
		ServiceName: "sessiond",
	})
	defer func() { _ = logger.Sync() }()
	log := logger.Named("main")

	if err := metrics.Register(nil); err != nil {
		log.Fatal("metrics registration failed", logger.Err(err))
	}

	substrate, err := kv.New(kv.Config{
		Driver:   cfg.KV.Driver,
		Addr:     cfg.KV.Addr,
		Password: cfg.KV.Password,
		DB:       cfg.KV.DB,
		Prefix:   cfg.KV.Prefix,
	})
	if err != nil {
		log.Fatal("kv substrate init failed", logger.Err(err))
	}
	defer func() { _ = substrate.Close() }()

	store := identity.NewStore(substrate, identity.WithSessionTTL(cfg.Session.TTL))
	resolver := identity.NewResolver(store)
	authenticator := identity.NewAuthenticator(store)

	var providers []oauth.Provider
	if p := cfg.Providers.GitHub; p.Enabled {
		providers = append(providers, oauth.GitHub(github.New(p.ClientID, p.ClientSecret, p.RedirectURL)))
	}
	if p := cfg.Providers.Google; p.Enabled {
		providers = append(providers, oauth.Google(google.New(p.ClientID, p.ClientSecret, p.RedirectURL, p.EmailScope)))
	}
	if len(providers) == 0 {
		log.Warn("no identity providers configured; only anonymous traffic will work")
	}

	states := oauth.NewStateSigner([]byte(cfg.State.Secret), cfg.Server.BaseURL, cfg.State.TTL)
	flow := oauth.NewFlow(states, authenticator, providers...)

	handler := router.New(router.Deps{
		OAuth: controllers.NewOAuth(flow, controllers.CookieConfig{
			Name:     cfg.Session.CookieName,
			Domain:   cfg.Session.Domain,
			SameSite: cfg.Session.SameSite,
			Secure:   cfg.Session.Secure,
			TTL:      cfg.Session.TTL,
		}),
		Health:     controllers.NewHealth(substrate),
		Resolver:   resolver,
		CookieName: cfg.Session.CookieName,
	})

	srv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      handler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("listening", logger.String("addr", cfg.Server.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Fatal("server failed", logger.Err(err))
	}
	log.Info("shutdown complete")
}
