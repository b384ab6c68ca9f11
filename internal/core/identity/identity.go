// Package identity turns voter email addresses into opaque per-event
// identities and signs them for use in voting links.
//
// An identity is a keyed BLAKE2b digest of the normalized address. The key is
// derived from the server secret and the event slug, so identities differ
// between events and cannot be recomputed without the secret. Links carry the
// identity inside an HS256 token bound to the event; nothing about the voter
// is stored server side.
package identity

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/blake2b"
	"golang.org/x/text/cases"
)

// Size is the digest size in bytes. Encoded identities are twice as long.
const Size = 16

// ID is a voter identity as produced by Codec.HashEmail or Codec.Verify.
type ID string

var ErrEmptySecret = errors.New("identity: secret must not be empty")

// NormalizeEmail trims surrounding whitespace and case-folds the address. It
// is applied before hashing and before allow-list comparisons.
func NormalizeEmail(email string) string {
	// Casers keep state and are not shared between goroutines.
	return cases.Fold().String(strings.TrimSpace(email))
}

// Valid reports whether id has the shape of an encoded identity.
func (id ID) Valid() bool {
	if len(id) != 2*Size {
		return false
	}
	_, err := hex.DecodeString(string(id))
	return err == nil && strings.ToLower(string(id)) == string(id)
}

type Codec struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewCodec returns a codec keyed by secret. A positive ttl makes signed links
// expire; zero keeps them valid for as long as the secret is unchanged.
func NewCodec(secret string, ttl time.Duration) (*Codec, error) {
	if secret == "" {
		return nil, ErrEmptySecret
	}
	return &Codec{secret: []byte(secret), ttl: ttl, now: time.Now}, nil
}

// HashEmail returns the identity of email within the event.
func (c *Codec) HashEmail(email, eventSlug string) ID {
	h, err := blake2b.New(Size, c.eventKey("voter-identity:", eventSlug))
	if err != nil {
		// only reachable with a key longer than 64 bytes
		panic(err)
	}
	h.Write([]byte(NormalizeEmail(email)))
	return ID(hex.EncodeToString(h.Sum(nil)))
}

type linkClaims struct {
	jwt.RegisteredClaims
}

// Sign wraps id in a token that only verifies for the same event.
func (c *Codec) Sign(id ID, eventSlug string) (string, error) {
	now := c.now()
	claims := linkClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:  string(id),
			Audience: jwt.ClaimStrings{eventSlug},
			IssuedAt: jwt.NewNumericDate(now),
		},
	}
	if c.ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(c.ttl))
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(c.eventKey("voting-link:", eventSlug))
}

// Verify returns the identity embedded in token. Any problem with the token
// (bad signature, other event, expiry, garbage) yields false.
func (c *Codec) Verify(token, eventSlug string) (ID, bool) {
	var claims linkClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		return c.eventKey("voting-link:", eventSlug), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithAudience(eventSlug),
		jwt.WithStrictDecoding(),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil || !parsed.Valid {
		return "", false
	}

	id := ID(claims.Subject)
	if !id.Valid() {
		return "", false
	}
	return id, true
}

func (c *Codec) eventKey(purpose, eventSlug string) []byte {
	mac := hmac.New(sha256.New, c.secret)
	mac.Write([]byte(purpose))
	mac.Write([]byte(eventSlug))
	return mac.Sum(nil)
}
