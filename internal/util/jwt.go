package util

import (
	"errors"
	"fmt"
	"time"

	"peymonak_backend/internal/model"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type Claims struct {
	AccountID uint       `json:"account_id"`
	Role      model.Role `json:"role,omitempty"`
	Phone     string     `json:"phone"`
	TokenType string     `json:"token_type"`
	jwt.RegisteredClaims
}

type TokenPair struct {
	AccessToken      string    `json:"accessToken"`
	RefreshToken     string    `json:"refreshToken"`
	AccessExpiresAt  time.Time `json:"accessExpiresAt"`
	RefreshExpiresAt time.Time `json:"refreshExpiresAt"`
}

func GenerateJWT(account *model.Account, tokenType, secret string, expiration time.Duration) (string, time.Time, error) {
	now := time.Now()
	expirationTime := now.Add(expiration)

	claims := &Claims{
		AccountID: account.ID,
		Role:      account.Role,
		Phone:     account.PhoneNumber,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   fmt.Sprint(account.ID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expirationTime),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	return signed, expirationTime, err
}

func GenerateTokenPair(account *model.Account, secret string, accessTTL, refreshTTL time.Duration) (*TokenPair, error) {
	access, accessExp, err := GenerateJWT(account, TokenTypeAccess, secret, accessTTL)
	if err != nil {
		return nil, err
	}
	refresh, refreshExp, err := GenerateJWT(account, TokenTypeRefresh, secret, refreshTTL)
	if err != nil {
		return nil, err
	}
	return &TokenPair{
		AccessToken:      access,
		RefreshToken:     refresh,
		AccessExpiresAt:  accessExp,
		RefreshExpiresAt: refreshExp,
	}, nil
}

func ParseJWT(tokenString, secret string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))

	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}

	return nil, errors.New("invalid token claims")
}

func GetUserFromContext(c *gin.Context) *Claims {
	user, exists := c.Get("user")
	if !exists {
		return nil
	}
	claims, ok := user.(*Claims)
	if !ok {
		return nil
	}
	return claims
}
