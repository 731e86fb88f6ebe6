package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrNoSigningKeys = errors.New("auth: no signing keys configured")
	ErrInvalidToken  = errors.New("auth: invalid token")
)

// Claims is the payload of an admin session token.
type Claims struct {
	Email string   `json:"email"`
	Roles []string `json:"roles"`
	jwt.RegisteredClaims
}

// UserID parses the numeric subject.
func (c *Claims) UserID() (int64, error) {
	return strconv.ParseInt(c.Subject, 10, 64)
}

// Signer issues HS256 tokens with the first key and accepts any configured key,
// so APP_KEYS can be rotated by prepending a new one.
type Signer struct {
	keys [][]byte
	ttl  time.Duration
	now  func() time.Time
}

func NewSigner(keys []string, ttl time.Duration) *Signer {
	s := &Signer{ttl: ttl, now: time.Now}
	for _, k := range keys {
		s.keys = append(s.keys, []byte(k))
	}
	return s
}

func (s *Signer) Sign(userID int64, email string, roles []string) (string, time.Time, error) {
	if len(s.keys) == 0 {
		return "", time.Time{}, ErrNoSigningKeys
	}

	now := s.now()
	expiresAt := now.Add(s.ttl)
	claims := Claims{
		Email: email,
		Roles: roles,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(userID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.keys[0])
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return token, expiresAt, nil
}

func (s *Signer) Verify(tokenString string) (*Claims, error) {
	if len(s.keys) == 0 {
		return nil, ErrNoSigningKeys
	}

	var lastErr error
	for _, key := range s.keys {
		claims := &Claims{}
		token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return key, nil
		}, jwt.WithTimeFunc(s.now))
		if err == nil && token.Valid {
			return claims, nil
		}
		lastErr = err
		// Only a signature mismatch is worth retrying with the next key
		if !errors.Is(err, jwt.ErrTokenSignatureInvalid) {
			break
		}
	}
	return nil, fmt.Errorf("%w: %v", ErrInvalidToken, lastErr)
}
