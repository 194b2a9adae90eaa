package security

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"driverent-backend/internal/domain"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
)

// PrincipalClaims is the token payload issued by the login service: the
// caller id and the role table it was found in.
type PrincipalClaims struct {
	ID   int32  `json:"id"`
	Role string `json:"role"`
	jwt.RegisteredClaims
}

type TokenManager interface {
	GenerateAccessToken(p domain.Principal) (string, error)
	ValidateToken(tokenString string) (*PrincipalClaims, error)
	// ResolvePrincipal validates the token and turns its claims into a
	// Principal with a known role.
	ResolvePrincipal(tokenString string) (domain.Principal, error)
}

type tokenManager struct {
	secret []byte
	expiry time.Duration
}

func NewTokenManager(secret string, expiry time.Duration) TokenManager {
	return &tokenManager{
		secret: []byte(secret),
		expiry: expiry,
	}
}

func (m *tokenManager) GenerateAccessToken(p domain.Principal) (string, error) {
	now := time.Now()
	claims := PrincipalClaims{
		ID:   p.ID,
		Role: string(p.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.Itoa(int(p.ID)),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.expiry)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    "driverent-auth",
			ID:        uuid.NewString(),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

func (m *tokenManager) ValidateToken(tokenString string) (*PrincipalClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &PrincipalClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return m.secret, nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	if claims, ok := token.Claims.(*PrincipalClaims); ok && token.Valid {
		if claims.ID == 0 && claims.Subject != "" {
			id, _ := strconv.Atoi(claims.Subject)
			claims.ID = int32(id)
		}
		return claims, nil
	}

	return nil, ErrInvalidToken
}

func (m *tokenManager) ResolvePrincipal(tokenString string) (domain.Principal, error) {
	claims, err := m.ValidateToken(tokenString)
	if err != nil {
		return domain.Principal{}, err
	}
	if claims.ID <= 0 {
		return domain.Principal{}, ErrInvalidToken
	}
	role, err := domain.ParseRole(claims.Role)
	if err != nil {
		return domain.Principal{}, ErrInvalidToken
	}
	return domain.Principal{ID: claims.ID, Role: role}, nil
}
