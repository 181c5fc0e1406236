package firebase

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

const devTokenIssuer = "vendora-dev"

// DevTokenIssuer signs HS256 tokens for local development so the API can be
// exercised without a Firebase client.
type DevTokenIssuer struct {
	secret []byte
	expiry time.Duration
}

type devClaims struct {
	Role string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

func NewDevTokenIssuer(secret string, expiry time.Duration) *DevTokenIssuer {
	if expiry <= 0 {
		expiry = 24 * time.Hour
	}
	return &DevTokenIssuer{secret: []byte(secret), expiry: expiry}
}

func (d *DevTokenIssuer) Issue(uid, role string) (string, time.Time, error) {
	expiresAt := time.Now().Add(d.expiry)
	claims := devClaims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   uid,
			Issuer:    devTokenIssuer,
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(d.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// Recognizes reports whether token claims to come from this issuer. The
// signature is not checked here.
func (d *DevTokenIssuer) Recognizes(token string) bool {
	var claims devClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return false
	}
	return claims.Issuer == devTokenIssuer
}

func (d *DevTokenIssuer) Verify(token string) (string, error) {
	var claims devClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return d.secret, nil
	})
	if err != nil {
		return "", err
	}
	if !parsed.Valid || claims.Subject == "" {
		return "", fmt.Errorf("invalid dev token")
	}
	return claims.Subject, nil
}
