package services

import (
	"fmt"

	bazaar_errors "bazaar-chat/pkg/errors"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenVerifier validates access tokens minted by the hosted auth
// provider. This service never issues tokens.
type TokenVerifier struct {
	secret []byte
}

func NewTokenVerifier(secret string) *TokenVerifier {
	return &TokenVerifier{secret: []byte(secret)}
}

type AccessClaims struct {
	UserID uuid.UUID
}

func (v *TokenVerifier) ParseAccessToken(token string) (AccessClaims, error) {
	if token == "" {
		return AccessClaims{}, bazaar_errors.ErrUnauthorized
	}

	parsed, err := jwt.ParseWithClaims(token, &jwt.RegisteredClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil || !parsed.Valid {
		return AccessClaims{}, bazaar_errors.ErrUnauthorized
	}

	claims, ok := parsed.Claims.(*jwt.RegisteredClaims)
	if !ok {
		return AccessClaims{}, bazaar_errors.ErrUnauthorized
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return AccessClaims{}, bazaar_errors.ErrUnauthorized
	}
	return AccessClaims{UserID: userID}, nil
}
