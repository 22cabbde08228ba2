package server

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/swampgate/swampmud/pkg/mudstore"
)

// Claims holds the JWT claims for an authenticated player session.
type Claims struct {
	PlayerName string `json:"player_name"`
	jwt.RegisteredClaims
}

// AuthService issues and validates JWT tokens backed by the player store.
type AuthService struct {
	store  *mudstore.Store
	jwtKey []byte
	expiry time.Duration
}

// NewAuthService creates an auth service. If jwtSecret is empty, a
// random 32-byte key is generated, so tokens won't survive a restart.
func NewAuthService(store *mudstore.Store, jwtSecret string, expirySeconds int) *AuthService {
	var key []byte
	if jwtSecret != "" {
		key = []byte(jwtSecret)
	} else {
		key = make([]byte, 32)
		rand.Read(key)
	}
	expiry := 24 * time.Hour
	if expirySeconds > 0 {
		expiry = time.Duration(expirySeconds) * time.Second
	}
	return &AuthService{store: store, jwtKey: key, expiry: expiry}
}

// Login verifies credentials against the store and returns a token.
func (a *AuthService) Login(name, password string) (string, error) {
	rec, err := a.store.GetPlayer(name)
	if err != nil {
		if errors.Is(err, mudstore.ErrNoPlayer) {
			return "", ErrBadCredentials
		}
		return "", err
	}
	if err := rec.CheckPassword(password); err != nil {
		return "", ErrBadCredentials
	}
	return a.issue(rec.Name)
}

func (a *AuthService) issue(playerName string) (string, error) {
	now := time.Now()
	claims := Claims{
		PlayerName: playerName,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   playerName,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(a.expiry)),
			Issuer:    "swampmud",
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(a.jwtKey)
}

// ValidateToken parses and validates a JWT token string.
func (a *AuthService) ValidateToken(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return a.jwtKey, nil
	})
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}
	return claims, nil
}

// RefreshToken issues a fresh token for an existing valid one.
func (a *AuthService) RefreshToken(tokenStr string) (string, error) {
	claims, err := a.ValidateToken(tokenStr)
	if err != nil {
		return "", err
	}
	return a.issue(claims.PlayerName)
}

// GenerateJWTSecret generates a random hex secret for jwt_secret config.
func GenerateJWTSecret() string {
	b := make([]byte, 32)
	rand.Read(b)
	return hex.EncodeToString(b)
}
