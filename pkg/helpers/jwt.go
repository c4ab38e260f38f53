package helpers

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid token")

// JWTManager issues and validates HS256 access tokens
type JWTManager struct {
	AccessSecret []byte
	AccessTTL    time.Duration
	Issuer       string

	now func() time.Time
}

var defaultManager *JWTManager

func NewJWTManager(accessSecret string, accessTTL time.Duration, issuer string) *JWTManager {
	m := &JWTManager{
		AccessSecret: []byte(accessSecret),
		AccessTTL:    accessTTL,
		Issuer:       issuer,
		now:          time.Now,
	}
	defaultManager = m
	return m
}

// DefaultJWT returns the last constructed JWTManager (used for auto-wiring routes)
func DefaultJWT() *JWTManager { return defaultManager }

type Claims struct {
	UserID string `json:"uid"`
	jwt.RegisteredClaims
}

func (m *JWTManager) GenerateAccessToken(userID string) (string, time.Time, error) {
	if userID == "" {
		return "", time.Time{}, errors.New("jwt: empty subject")
	}
	now := m.clock()()
	exp := now.Add(m.AccessTTL)
	claims := &Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    m.Issuer,
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := t.SignedString(m.AccessSecret)
	return s, exp, err
}

func (m *JWTManager) ParseAccessToken(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	tkn, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return m.AccessSecret, nil
	}, jwt.WithTimeFunc(m.clock()))
	if err != nil {
		return nil, err
	}
	if !tkn.Valid || claims.UserID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func (m *JWTManager) clock() func() time.Time {
	if m.now == nil {
		return time.Now
	}
	return m.now
}
