package server

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/swampgate/swampmud/pkg/mudstore"
)

func newAuthFixture(t *testing.T) *AuthService {
	t.Helper()
	store, err := mudstore.Open(filepath.Join(t.TempDir(), "players.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { store.Close() })

	hash, err := mudstore.HashPassword("swampy")
	if err != nil {
		t.Fatal(err)
	}
	rec := &mudstore.PlayerRecord{Name: "Fern", Class: "Ranger", PassHash: hash}
	if err := store.PutPlayer(rec); err != nil {
		t.Fatal(err)
	}
	return NewAuthService(store, "test-secret", 3600)
}

func TestAuthLoginAndValidate(t *testing.T) {
	auth := newAuthFixture(t)

	token, err := auth.Login("Fern", "swampy")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	claims, err := auth.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if claims.PlayerName != "Fern" {
		t.Errorf("PlayerName = %q", claims.PlayerName)
	}
}

func TestAuthRejectsBadCredentials(t *testing.T) {
	auth := newAuthFixture(t)
	if _, err := auth.Login("Fern", "wrong"); !errors.Is(err, ErrBadCredentials) {
		t.Errorf("wrong password: err = %v", err)
	}
	if _, err := auth.Login("Nobody", "swampy"); !errors.Is(err, ErrBadCredentials) {
		t.Errorf("unknown player: err = %v", err)
	}
}

func TestAuthRejectsTamperedToken(t *testing.T) {
	auth := newAuthFixture(t)
	token, err := auth.Login("Fern", "swampy")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := auth.ValidateToken(token + "x"); err == nil {
		t.Error("tampered token accepted")
	}
	// A token signed with another key must not validate.
	other := newAuthFixture(t)
	otherToken, err := other.Login("Fern", "swampy")
	if err != nil {
		t.Fatal(err)
	}
	otherAuth := NewAuthService(nil, "different-secret", 3600)
	if _, err := otherAuth.ValidateToken(otherToken); err == nil {
		t.Error("cross-key token accepted")
	}
}

func TestAuthRefresh(t *testing.T) {
	auth := newAuthFixture(t)
	token, err := auth.Login("Fern", "swampy")
	if err != nil {
		t.Fatal(err)
	}
	fresh, err := auth.RefreshToken(token)
	if err != nil {
		t.Fatalf("RefreshToken: %v", err)
	}
	claims, err := auth.ValidateToken(fresh)
	if err != nil || claims.PlayerName != "Fern" {
		t.Errorf("refreshed claims = %+v, %v", claims, err)
	}
}
