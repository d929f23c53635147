// Package devkeys issues RS256 tokens and publishes their JWK Set for local
// development and tests. It is not an identity provider.
package devkeys

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"time"

	"github.com/MicahParks/jwkset"
	"github.com/golang-jwt/jwt/v5"
)

// Keypair is an RSA signing key published under Kid.
type Keypair struct {
	Kid     string
	Private *rsa.PrivateKey
}

func GenerateRSAKeypair(kid string) (Keypair, error) {
	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		return Keypair{}, err
	}
	return Keypair{Kid: kid, Private: priv}, nil
}

// MarshalJWKS renders the public halves of keys as a JWK Set document.
func MarshalJWKS(ctx context.Context, keys []Keypair) ([]byte, error) {
	set := jwkset.NewMemoryStorage()
	for _, kp := range keys {
		jwk, err := jwkset.NewJWKFromKey(&kp.Private.PublicKey, jwkset.JWKOptions{
			Metadata: jwkset.JWKMetadataOptions{
				ALG: jwkset.AlgRS256,
				KID: kp.Kid,
				USE: jwkset.UseSig,
			},
		})
		if err != nil {
			return nil, fmt.Errorf("jwk %s: %w", kp.Kid, err)
		}
		if err := set.KeyWrite(ctx, jwk); err != nil {
			return nil, fmt.Errorf("store jwk %s: %w", kp.Kid, err)
		}
	}
	raw, err := set.JSONPublic(ctx)
	if err != nil {
		return nil, err
	}
	return raw, nil
}

// Claims returns registered claims for sub, valid from now for ttl.
// A negative ttl yields an already expired token.
func Claims(iss, aud, sub string, now time.Time, ttl time.Duration) jwt.RegisteredClaims {
	return jwt.RegisteredClaims{
		Issuer:    iss,
		Audience:  jwt.ClaimStrings{aud},
		Subject:   sub,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		NotBefore: jwt.NewNumericDate(now.Add(-5 * time.Second)),
	}
}

// Mint signs claims with RS256 and sets the kid header.
func Mint(kp Keypair, claims jwt.Claims) (string, error) {
	tok := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	tok.Header["kid"] = kp.Kid
	return tok.SignedString(kp.Private)
}

// NewRotatingJWKSServer serves a JWK Set that can be swapped at runtime
// through the returned function.
func NewRotatingJWKSServer() (*httptest.Server, func(keys []Keypair)) {
	var doc atomic.Value // []byte
	doc.Store([]byte(`{"keys":[]}`))

	setKeys := func(keys []Keypair) {
		raw, err := MarshalJWKS(context.Background(), keys)
		if err != nil {
			panic(fmt.Sprintf("devkeys: %v", err))
		}
		doc.Store(raw)
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(doc.Load().([]byte))
	}))
	return srv, setKeys
}
