package idempotency

import (
	"context"
	"time"

	"github.com/yatra-labs/pilgrimage-planner-api/internal/domain"
)

// DefaultTTL is how long stored fingerprints and responses are honored.
const DefaultTTL = 24 * time.Hour

// Key is the client-chosen Idempotency-Key header value.
type Key string

// Fingerprint scopes a key to one owner and one route. BodyHash is empty for
// the entry that remembers which payload first used the key, and set for the
// entry that holds the response to that payload.
type Fingerprint struct {
	Key      Key
	Owner    domain.OwnerID
	Method   string
	Route    string
	BodyHash string
}

// Payload returns the fingerprint of the key's payload entry.
func (fp Fingerprint) Payload() Fingerprint {
	fp.BodyHash = ""
	return fp
}

// Response returns the fingerprint of the response stored for bodyHash.
func (fp Fingerprint) Response(bodyHash string) Fingerprint {
	fp.BodyHash = bodyHash
	return fp
}

// Record is a stored entry. For payload entries Body holds the body hash and
// StatusCode is zero.
type Record struct {
	StatusCode  int
	ContentType string
	Body        []byte
	CreatedAt   time.Time
}

// Expired reports whether rec is older than ttl at now. A ttl <= 0 never expires.
func (rec Record) Expired(now time.Time, ttl time.Duration) bool {
	return ttl > 0 && now.Sub(rec.CreatedAt) > ttl
}

// Store keeps idempotency records. Expired records read as absent.
type Store interface {
	Get(ctx context.Context, fp Fingerprint) (Record, bool, error)
	Put(ctx context.Context, fp Fingerprint, rec Record) error
}
