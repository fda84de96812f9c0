package jwt

import (
	"errors"
	"fmt"
	"github.com/golang-jwt/jwt/v5"
	"time"
)

// JWT signs the session cookies and API tokens with one HMAC key.
type JWT struct {
	key []byte
}

// User is what a token carries.
type User struct {
	ID      uint
	Expires int64 // Unix second
}

type claims struct {
	ID uint `json:"id"`
	jwt.RegisteredClaims
}

func New(key string) (*JWT, error) {
	if len(key) == 0 {
		return nil, errors.New("key is empty")
	}

	return &JWT{key: []byte(key)}, nil
}

func (j *JWT) ParseUser(tokenString string) (*User, error) {
	if len(tokenString) == 0 {
		return nil, errors.New("token string is empty")
	}

	var c claims
	if _, err := jwt.ParseWithClaims(tokenString, &c, func(token *jwt.Token) (interface{}, error) {
		return j.key, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired()); err != nil {
		return nil, fmt.Errorf("parse jwt failed: %w", err)
	}

	if c.ID == 0 {
		return nil, errors.New("invalid id claim")
	}

	return &User{
		ID:      c.ID,
		Expires: c.ExpiresAt.Unix(),
	}, nil
}

func (j *JWT) SignToken(user *User) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &claims{
		ID: user.ID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Unix(user.Expires, 0)),
		},
	})

	return token.SignedString(j.key)
}
