package jwtverifier

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/MicahParks/keyfunc/v3"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/time/rate"

	"github.com/yatra-labs/pilgrimage-planner-api/internal/platform/config"
	"github.com/yatra-labs/pilgrimage-planner-api/internal/ports/out/clock"
)

var (
	ErrUnauthorized = errors.New("unauthorized")
)

// Verifier validates RS256 bearer tokens against a JWKS endpoint.
//
// The key set is fetched lazily on the first Verify call and refreshed in the
// background every JWKSRefreshInterval. A token with an unknown kid triggers
// an immediate refresh, at most once per JWKSMinRefreshInterval.
type Verifier struct {
	cfg    config.JWTConfig
	client *http.Client
	clock  clock.Clock
	parser *jwt.Parser

	mu     sync.Mutex
	kf     keyfunc.Keyfunc
	cancel context.CancelFunc
}

func New(cfg config.JWTConfig) *Verifier {
	return NewWithOptions(cfg, nil, nil)
}

func NewWithOptions(cfg config.JWTConfig, httpClient *http.Client, clk clock.Clock) *Verifier {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.HTTPTimeout}
	}
	if clk == nil {
		clk = clock.System
	}
	return &Verifier{
		cfg:    cfg,
		client: httpClient,
		clock:  clk,
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
			jwt.WithIssuer(cfg.Issuer),
			jwt.WithAudience(cfg.Audience),
			jwt.WithExpirationRequired(),
			jwt.WithLeeway(cfg.ClockSkew),
			jwt.WithTimeFunc(clk.Now),
		),
	}
}

// Verify verifies a JWT and returns the authenticated subject from the `sub` claim.
func (v *Verifier) Verify(ctx context.Context, token string) (string, error) {
	kf, err := v.keyfunc(ctx)
	if err != nil {
		return "", ErrUnauthorized
	}

	var claims jwt.RegisteredClaims
	parsed, err := v.parser.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		if kid, _ := t.Header["kid"].(string); kid == "" {
			return nil, errors.New("missing kid")
		}
		return kf.KeyfuncCtx(ctx)(t)
	})
	if err != nil || !parsed.Valid {
		return "", ErrUnauthorized
	}
	if claims.Subject == "" {
		return "", ErrUnauthorized
	}
	return claims.Subject, nil
}

// Close stops the background JWKS refresh.
func (v *Verifier) Close() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.cancel != nil {
		v.cancel()
		v.cancel = nil
		v.kf = nil
	}
}

func (v *Verifier) keyfunc(ctx context.Context) (keyfunc.Keyfunc, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.kf != nil {
		return v.kf, nil
	}

	// The refresh goroutine outlives the request, so it gets its own context.
	bg, cancel := context.WithCancel(context.Background())
	noFirstErr := false
	kf, err := keyfunc.NewDefaultOverrideCtx(bg, []string{v.cfg.JWKSURL}, keyfunc.Override{
		Client:                    v.client,
		HTTPTimeout:               v.cfg.HTTPTimeout,
		NoErrorReturnFirstHTTPReq: &noFirstErr,
		RefreshInterval:           v.cfg.JWKSRefreshInterval,
		RefreshUnknownKID:         rate.NewLimiter(rate.Every(v.cfg.JWKSMinRefreshInterval), 1),
	})
	if err != nil {
		cancel()
		return nil, fmt.Errorf("load jwks: %w", err)
	}
	if err := ctx.Err(); err != nil {
		cancel()
		return nil, err
	}
	v.kf = kf
	v.cancel = cancel
	return kf, nil
}
