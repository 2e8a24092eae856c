// Package auth issues and checks the HS256 tokens of the control API.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/facegate/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

const issuer = "facegate"

// Claims are the registered claims plus the operator the token was issued to.
type Claims struct {
	jwt.RegisteredClaims
	Operator string `json:"operator"`
}

func GenerateToken(operator string, secretKey []byte, validity time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(validity)),
		},
		Operator: operator,
	})

	tokenString, err := token.SignedString(secretKey)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// OperatorFromToken validates tokenString and returns its operator. Expired
// tokens yield common.ErrTokenExpired, anything else wrong
// common.ErrInvalidToken.
func OperatorFromToken(tokenString string, secretKey []byte) (string, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return secretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithIssuer(issuer))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", common.ErrTokenExpired
		}
		return "", fmt.Errorf("%w: %w", common.ErrInvalidToken, err)
	}

	if !token.Valid {
		return "", common.ErrInvalidToken
	}

	return claims.Operator, nil
}
