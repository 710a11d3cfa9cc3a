package auth

import (
	"fmt"
	"time"

	"github.com/dgrijalva/jwt-go"
)

const accessTokenType = "access"

type accessClaims struct {
	TokenType string `json:"token_type"`
	jwt.StandardClaims
}

// TokenService issues and verifies HS256 signed access tokens. It holds no
// mutable state and is safe for concurrent use.
type TokenService struct {
	key    []byte
	ttl    time.Duration
	issuer string
	now    func() time.Time
}

func NewTokenService(key []byte, ttl time.Duration, issuer string) *TokenService {
	return &TokenService{key: key, ttl: ttl, issuer: issuer, now: time.Now}
}

// Issue returns a signed token for id that expires after the configured TTL.
func (ts *TokenService) Issue(id ID) (string, error) {
	now := ts.now().UTC()
	claims := accessClaims{
		TokenType: accessTokenType,
		StandardClaims: jwt.StandardClaims{
			Issuer:    ts.issuer,
			Subject:   string(id),
			IssuedAt:  now.Unix(),
			ExpiresAt: now.Add(ts.ttl).Unix(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(ts.key)
	if err != nil {
		return "", fmt.Errorf("sign access token: %w", err)
	}
	return signed, nil
}

// Verify checks the token signature and then its expiry. It returns
// ErrTokenInvalid for malformed or untrusted tokens and ErrTokenExpired only
// for correctly signed tokens past their expiry.
func (ts *TokenService) Verify(tokenString string) (ID, error) {
	claims := &accessClaims{}

	// Claims are validated below against our own clock, once the signature
	// has been trusted.
	p := &jwt.Parser{
		ValidMethods:         []string{jwt.SigningMethodHS256.Alg()},
		SkipClaimsValidation: true,
	}
	token, err := p.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrTokenInvalid
		}
		return ts.key, nil
	})
	if err != nil || !token.Valid {
		return "", ErrTokenInvalid
	}

	if claims.TokenType != accessTokenType || claims.Subject == "" || !claims.VerifyIssuer(ts.issuer, true) {
		return "", ErrTokenInvalid
	}

	now := ts.now().Unix()
	if !claims.VerifyExpiresAt(now, true) {
		return "", ErrTokenExpired
	}
	if !claims.VerifyIssuedAt(now, false) || !claims.VerifyNotBefore(now, false) {
		return "", ErrTokenInvalid
	}

	return ID(claims.Subject), nil
}
