package security

import (
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

const tokenType = "access"

// Identity is the authenticated user as carried by an access token
type Identity struct {
	ID       uint
	Username string
	Email    string
}

// Claims is the payload of an access token. The subject holds the user id as
// a decimal string.
type Claims struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Type     string `json:"type"`
	jwt.RegisteredClaims
}

// JWTCodec signs and verifies HS256 access tokens
type JWTCodec struct {
	secret []byte
	expiry time.Duration
}

// NewJWTCodec returns a codec signing with secret. Tokens expire after expiry,
// an expiry of zero issues tokens that never expire.
func NewJWTCodec(secret string, expiry time.Duration) *JWTCodec {
	return &JWTCodec{
		secret: []byte(secret),
		expiry: expiry,
	}
}

func (j *JWTCodec) Issue(id Identity) (string, error) {
	jti, err := gonanoid.New()
	if err != nil {
		return "", fmt.Errorf("failed to generate token id, %w", err)
	}

	now := time.Now()
	claims := Claims{
		Username: id.Username,
		Email:    id.Email,
		Type:     tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(id.ID), 10),
			ID:        jti,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	if j.expiry > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(j.expiry))
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(j.secret)
}

// Decode verifies the token and returns the identity it carries along with
// the raw claim set.
func (j *JWTCodec) Decode(tokenStr string) (Identity, jwt.MapClaims, error) {
	claims := jwt.MapClaims{}

	_, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (any, error) {
		return j.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return Identity{}, nil, fmt.Errorf("%w, %w", ErrInvalidToken, err)
	}

	if typ, _ := claims["type"].(string); typ != tokenType {
		return Identity{}, nil, fmt.Errorf("%w, unexpected token type %q", ErrInvalidToken, typ)
	}

	sub, err := claims.GetSubject()
	if err != nil {
		return Identity{}, nil, fmt.Errorf("%w, %w", ErrInvalidToken, err)
	}

	id, err := strconv.ParseUint(sub, 10, 0)
	if err != nil {
		return Identity{}, nil, fmt.Errorf("%w, malformed subject %q", ErrInvalidToken, sub)
	}

	username, _ := claims["username"].(string)
	email, _ := claims["email"].(string)

	return Identity{
		ID:       uint(id),
		Username: username,
		Email:    email,
	}, claims, nil
}
