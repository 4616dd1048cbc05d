// Package password hashes platform credentials with Argon2id in PHC string
// format. The backend stores only these hashes; verification recomputes the
// key and compares in constant time.
package password

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/crypto/argon2"
)

// Params are the Argon2id cost parameters baked into each hash.
type Params struct {
	MemoryKB    uint32
	Time        uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

// DefaultParams suits interactive sign-in on server hardware.
func DefaultParams() Params {
	return Params{
		MemoryKB:    64 * 1024,
		Time:        2,
		Parallelism: 2,
		SaltLength:  16,
		KeyLength:   32,
	}
}

var (
	// ErrMalformedHash is returned when a stored hash is not a valid
	// argon2id PHC string.
	ErrMalformedHash = errors.New("password: malformed argon2id hash")
	// ErrWeakParams rejects cost parameters below the supported floor.
	ErrWeakParams = errors.New("password: parameters below minimum")
)

const (
	minMemoryKB   uint32 = 8 * 1024
	minSaltLength uint32 = 16
	minKeyLength  uint32 = 16
)

func (p Params) validate() error {
	if p.MemoryKB < minMemoryKB || p.Time < 1 || p.Parallelism < 1 ||
		p.SaltLength < minSaltLength || p.KeyLength < minKeyLength {
		return ErrWeakParams
	}
	return nil
}

// Hash derives an Argon2id hash of password and encodes it as a PHC string.
func Hash(password string, params Params) (string, error) {
	if err := params.validate(); err != nil {
		return "", err
	}

	salt := make([]byte, params.SaltLength)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return "", fmt.Errorf("password: reading salt: %w", err)
	}

	key := argon2.IDKey([]byte(password), salt, params.Time, params.MemoryKB, params.Parallelism, params.KeyLength)

	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		params.MemoryKB, params.Time, params.Parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

// Verify reports whether password matches the PHC-encoded hash. The cost
// parameters come from the hash itself, so hashes produced under older
// parameters still verify.
func Verify(password, encoded string) (bool, error) {
	salt, key, params, err := parsePHC(encoded)
	if err != nil {
		return false, err
	}

	computed := argon2.IDKey([]byte(password), salt, params.Time, params.MemoryKB, params.Parallelism, uint32(len(key)))
	return subtle.ConstantTimeCompare(computed, key) == 1, nil
}

func parsePHC(encoded string) (salt, key []byte, params Params, err error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[0] != "" || parts[1] != "argon2id" {
		return nil, nil, params, ErrMalformedHash
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil || version != argon2.Version {
		return nil, nil, params, ErrMalformedHash
	}
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &params.MemoryKB, &params.Time, &params.Parallelism); err != nil {
		return nil, nil, params, ErrMalformedHash
	}
	if params.Time < 1 || params.Parallelism < 1 {
		return nil, nil, params, ErrMalformedHash
	}

	salt, err = base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil || len(salt) < int(minSaltLength) {
		return nil, nil, params, ErrMalformedHash
	}
	key, err = base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil || len(key) == 0 {
		return nil, nil, params, ErrMalformedHash
	}
	return salt, key, params, nil
}

// MustHash is Hash for test fixtures and seed data; it panics on error.
func MustHash(password string, params Params) string {
	h, err := Hash(password, params)
	if err != nil {
		panic(err)
	}
	return h
}
