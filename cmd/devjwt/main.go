// Command devjwt mints RS256 tokens for local runs of the planner API and
// serves the matching JWK Set, so AUTH_MODE=jwt can be exercised end to end.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/ilyakaznacheev/cleanenv"
	"go.uber.org/zap"

	"github.com/yatra-labs/pilgrimage-planner-api/internal/platform/auth/devkeys"
	"github.com/yatra-labs/pilgrimage-planner-api/internal/platform/logging"
)

type settings struct {
	Port     string        `env:"PORT" env-default:"5556"`
	LogLevel string        `env:"LOG_LEVEL" env-default:"info"`
	Issuer   string        `env:"ISSUER" env-default:"http://devjwt:5556"`
	Audience string        `env:"AUDIENCE" env-default:"pilgrimage-planner"`
	Kid      string        `env:"KID" env-default:"dev-kid-1"`
	TTL      time.Duration `env:"TTL" env-default:"30m"`
	// MaxTTL caps the ttl query parameter of /token.
	MaxTTL time.Duration `env:"MAX_TTL" env-default:"24h"`
}

type tokenResponse struct {
	Token     string `json:"token"`
	Subject   string `json:"sub"`
	Issuer    string `json:"iss"`
	Audience  string `json:"aud"`
	ExpiresAt int64  `json:"exp"`
}

func main() {
	var cfg settings
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		fmt.Fprintf(os.Stderr, "devjwt config: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.New("local", cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("devjwt failed", zap.Error(err))
	}
}

func run(cfg settings, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	kp, err := devkeys.GenerateRSAKeypair(cfg.Kid)
	if err != nil {
		return fmt.Errorf("generate key: %w", err)
	}
	jwks, err := devkeys.MarshalJWKS(ctx, []devkeys.Keypair{kp})
	if err != nil {
		return fmt.Errorf("marshal jwks: %w", err)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           newRouter(cfg, kp, jwks, logger),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("devjwt listening",
			zap.String("addr", srv.Addr),
			zap.String("iss", cfg.Issuer),
			zap.String("aud", cfg.Audience),
			zap.String("kid", cfg.Kid),
			zap.Duration("ttl", cfg.TTL))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func newRouter(cfg settings, kp devkeys.Keypair, jwks []byte, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})

	r.Get("/.well-known/jwks.json", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(jwks)
	})

	// GET /token?sub=pilgrim-1&ttl=10m
	r.Get("/token", func(w http.ResponseWriter, r *http.Request) {
		sub := strings.TrimSpace(r.URL.Query().Get("sub"))
		if sub == "" {
			http.Error(w, "missing sub", http.StatusBadRequest)
			return
		}
		ttl := cfg.TTL
		if raw := r.URL.Query().Get("ttl"); raw != "" {
			d, err := time.ParseDuration(raw)
			if err != nil || d <= 0 || d > cfg.MaxTTL {
				http.Error(w, "invalid ttl", http.StatusBadRequest)
				return
			}
			ttl = d
		}

		now := time.Now().UTC()
		tok, err := devkeys.Mint(kp, devkeys.Claims(cfg.Issuer, cfg.Audience, sub, now, ttl))
		if err != nil {
			logger.Error("Failed to mint token", zap.Error(err))
			http.Error(w, "failed to mint token", http.StatusInternalServerError)
			return
		}
		logger.Debug("Minted token", zap.String("sub", sub), zap.Duration("ttl", ttl))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(tokenResponse{
			Token:     tok,
			Subject:   sub,
			Issuer:    cfg.Issuer,
			Audience:  cfg.Audience,
			ExpiresAt: now.Add(ttl).Unix(),
		})
	})
	return r
}
