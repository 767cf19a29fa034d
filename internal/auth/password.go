package auth

import (
	"github.com/alexedwards/argon2id"
	"github.com/go-faster/errors"
)

// HashPassword derives an argon2id hash of the password using the library
// default parameters.
func HashPassword(password string) (string, error) {
	hash, err := argon2id.CreateHash(password, argon2id.DefaultParams)
	if err != nil {
		return "", errors.Wrap(err, "hash password")
	}
	return hash, nil
}

// CheckPassword reports whether password matches the stored hash. A malformed
// hash is reported as an error rather than a mismatch.
func CheckPassword(password, hash string) (bool, error) {
	ok, err := argon2id.ComparePasswordAndHash(password, hash)
	if err != nil {
		return false, errors.Wrap(err, "compare password")
	}
	return ok, nil
}
