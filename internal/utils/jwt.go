package utils // package utils provides helpers for password hashing and access tokens

import (
    "errors"  // errors builds configuration errors
    "fmt"     // fmt formats configuration errors
    "strconv" // strconv converts account identifiers to and from subjects
    "time"    // time utilities for generating expirations

    "github.com/golang-jwt/jwt/v5" // JWT library for creating signed tokens
)

// AccessToken represents a signed JWT access token along with its expiry.
// The Token field contains the JWT string.  Exp stores the expiration
// timestamp as a time.Time.
type AccessToken struct {
    Token string    // the serialized JWT string
    Exp   time.Time // the UTC expiration time
}

// TokenService issues and verifies stateless HMAC signed access tokens.
// The signature covers the whole claim set, so changing the subject or
// the expiry invalidates the token.  A TokenService is immutable after
// construction and safe for concurrent use.
type TokenService struct {
    secret     []byte
    method     jwt.SigningMethod
    defaultTTL time.Duration
    now        func() time.Time
}

// NewTokenService builds a TokenService for the named HMAC algorithm
// (HS256, HS384 or HS512).  defaultTTLMin is used whenever Issue is called
// without an explicit validity window.
func NewTokenService(secret, algorithm string, defaultTTLMin int) (*TokenService, error) {
    if secret == "" {
        return nil, errors.New("jwt secret must not be empty")
    }
    m, ok := jwt.GetSigningMethod(algorithm).(*jwt.SigningMethodHMAC)
    if !ok {
        return nil, fmt.Errorf("unsupported signing algorithm %q", algorithm)
    }
    if defaultTTLMin <= 0 {
        return nil, fmt.Errorf("default token validity must be positive, got %d", defaultTTLMin)
    }
    return &TokenService{
        secret:     []byte(secret),
        method:     m,
        defaultTTL: time.Duration(defaultTTLMin) * time.Minute,
        now:        time.Now,
    }, nil
}

// WithClock returns a copy of s that reads the current time from now.
func (s *TokenService) WithClock(now func() time.Time) *TokenService {
    cp := *s
    cp.now = now
    return &cp
}

// Issue signs a token for subject.  ttlMin <= 0 selects the default
// validity window.  The claims are sub, exp and iat.
func (s *TokenService) Issue(subject string, ttlMin int) (AccessToken, error) {
    ttl := s.defaultTTL
    if ttlMin > 0 {
        ttl = time.Duration(ttlMin) * time.Minute
    }
    now := s.now().UTC()
    exp := now.Add(ttl)
    claims := jwt.RegisteredClaims{
        Subject:   subject,
        ExpiresAt: jwt.NewNumericDate(exp),
        IssuedAt:  jwt.NewNumericDate(now),
    }
    signed, err := jwt.NewWithClaims(s.method, claims).SignedString(s.secret)
    if err != nil {
        return AccessToken{}, err
    }
    return AccessToken{Token: signed, Exp: exp}, nil
}

// IssueFor issues a default-lifetime token whose subject is the decimal
// form of id.
func (s *TokenService) IssueFor(id uint64) (AccessToken, error) {
    return s.Issue(strconv.FormatUint(id, 10), 0)
}

// Verify returns the subject of a valid token.  It reports false for a bad
// signature, a different algorithm, a malformed or expired token and a
// missing subject.  It never returns an error.
func (s *TokenService) Verify(raw string) (string, bool) {
    var claims jwt.RegisteredClaims
    tok, err := jwt.ParseWithClaims(raw, &claims,
        func(*jwt.Token) (interface{}, error) { return s.secret, nil },
        jwt.WithValidMethods([]string{s.method.Alg()}),
        jwt.WithExpirationRequired(),
        jwt.WithTimeFunc(s.now),
    )
    if err != nil || !tok.Valid || claims.Subject == "" {
        return "", false
    }
    return claims.Subject, true
}

// SubjectID verifies raw and parses its subject as an account identifier.
// Identifiers are positive and fit a signed 64-bit column.
func (s *TokenService) SubjectID(raw string) (uint64, bool) {
    sub, ok := s.Verify(raw)
    if !ok {
        return 0, false
    }
    id, err := strconv.ParseUint(sub, 10, 63)
    if err != nil || id == 0 {
        return 0, false
    }
    return id, true
}
