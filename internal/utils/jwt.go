package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// SessionClaims are the claims carried by a session token
type SessionClaims struct {
	SessionID string
	AccountID string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// SessionTokenIssuer signs and parses session bearer tokens
type SessionTokenIssuer struct {
	secret []byte
}

// NewSessionTokenIssuer creates a new issuer
func NewSessionTokenIssuer(secret string) *SessionTokenIssuer {
	return &SessionTokenIssuer{secret: []byte(secret)}
}

// Issue signs a new token for accountID valid until expiresAt
func (i *SessionTokenIssuer) Issue(accountID string, issuedAt, expiresAt time.Time) (string, *SessionClaims, error) {
	claims := &SessionClaims{
		SessionID: uuid.New().String(),
		AccountID: accountID,
		IssuedAt:  issuedAt,
		ExpiresAt: expiresAt,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sid": claims.SessionID,
		"sub": claims.AccountID,
		"iat": issuedAt.Unix(),
		"exp": expiresAt.Unix(),
	})

	tokenString, err := token.SignedString(i.secret)
	if err != nil {
		return "", nil, fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, claims, nil
}

// Parse checks the signature and returns the claims. Expiry is not enforced
// here: the stored session row is authoritative for that.
func (i *SessionTokenIssuer) Parse(tokenString string) (*SessionClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return i.secret, nil
	}, jwt.WithoutClaimsValidation(), jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	if !token.Valid {
		return nil, errors.New("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New("invalid token claims")
	}

	sessionID, ok := claims["sid"].(string)
	if !ok {
		return nil, errors.New("invalid sid in token")
	}

	accountID, ok := claims["sub"].(string)
	if !ok {
		return nil, errors.New("invalid sub in token")
	}

	iat, ok := claims["iat"].(float64)
	if !ok {
		return nil, errors.New("invalid iat in token")
	}

	exp, ok := claims["exp"].(float64)
	if !ok {
		return nil, errors.New("invalid exp in token")
	}

	return &SessionClaims{
		SessionID: sessionID,
		AccountID: accountID,
		IssuedAt:  time.Unix(int64(iat), 0).UTC(),
		ExpiresAt: time.Unix(int64(exp), 0).UTC(),
	}, nil
}

// HashToken returns the storage key for a session token
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
