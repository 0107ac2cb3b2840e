package jwtverify

import (
	"errors"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
)

// Claims is the decoded payload of an access token.
type Claims struct {
	UserID    string
	Username  string
	Role      string
	JTI       string
	ExpiresAt time.Time
}

var (
	// ErrTokenExpired means the token was well formed and correctly signed
	// but its exp is in the past.
	ErrTokenExpired = errors.New("token expired")
	// ErrTokenInvalid covers every other failure: bad signature, wrong
	// algorithm, malformed payload, missing claims.
	ErrTokenInvalid = errors.New("token invalid")
)

// IssueAccessToken signs an HS256 token carrying the user identity and a
// unique jti so individual tokens can be revoked before expiry.
func IssueAccessToken(secret []byte, userID, username, role, jti string, issuedAt time.Time, ttl time.Duration) (string, time.Time, error) {
	expiresAt := issuedAt.Add(ttl)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": userID,
		"usr": username,
		"rol": role,
		"jti": jti,
		"iat": issuedAt.Unix(),
		"exp": expiresAt.Unix(),
	})

	signed, err := token.SignedString(secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// ParseToken verifies the signature and expiry against time.Now.
func ParseToken(tokenString string, secret []byte) (Claims, error) {
	return ParseTokenAt(tokenString, secret, time.Now)
}

// ParseTokenAt is ParseToken with an injectable clock.
func ParseTokenAt(tokenString string, secret []byte, now func() time.Time) (Claims, error) {
	token, err := jwt.Parse(
		tokenString,
		func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, ErrTokenInvalid
			}
			return secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Claims{}, ErrTokenExpired
		}
		return Claims{}, ErrTokenInvalid
	}

	mapClaims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return Claims{}, ErrTokenInvalid
	}

	userID, ok := mapClaims["sub"].(string)
	if !ok || userID == "" {
		return Claims{}, ErrTokenInvalid
	}

	username, _ := mapClaims["usr"].(string)
	role, _ := mapClaims["rol"].(string)

	jti, ok := mapClaims["jti"].(string)
	if !ok || jti == "" {
		return Claims{}, ErrTokenInvalid
	}

	exp, ok := mapClaims["exp"].(float64)
	if !ok {
		return Claims{}, ErrTokenInvalid
	}

	return Claims{
		UserID:    userID,
		Username:  username,
		Role:      role,
		JTI:       jti,
		ExpiresAt: time.Unix(int64(exp), 0),
	}, nil
}
