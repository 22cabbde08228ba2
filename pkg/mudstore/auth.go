package mudstore

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// ErrBadPassword is returned when a password check fails.
var ErrBadPassword = errors.New("mudstore: password mismatch")

// HashPassword returns the bcrypt hash stored in a player record.
func HashPassword(password string) ([]byte, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("mudstore: hash password: %w", err)
	}
	return hash, nil
}

// CheckPassword verifies a password against a record's stored hash.
func (rec *PlayerRecord) CheckPassword(password string) error {
	if err := bcrypt.CompareHashAndPassword(rec.PassHash, []byte(password)); err != nil {
		return ErrBadPassword
	}
	return nil
}
