package auth

import (
	"sync"

	"golang.org/x/crypto/bcrypt"
)

// bcryptCost is a var so tests can lower it.
var bcryptCost = bcrypt.DefaultCost

// HashPassword returns a salted bcrypt hash of password. Passwords longer
// than 72 bytes are rejected by bcrypt with bcrypt.ErrPasswordTooLong.
func HashPassword(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// CheckPassword reports whether password matches the stored hash.
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

var (
	dummyOnce sync.Once
	dummyHash string
)

// BurnPasswordCheck runs one comparison against a throwaway hash so that a
// login for an unknown email costs about as much as one with a wrong password.
func BurnPasswordCheck(password string) {
	dummyOnce.Do(func() {
		dummyHash, _ = HashPassword("not-a-real-password")
	})
	_ = CheckPassword(dummyHash, password)
}
