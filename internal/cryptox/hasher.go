// Package cryptox hashes and verifies account passwords.
//
// New hashes are produced by one preferred scheme; verification accepts
// every scheme the package knows, recognising each by the shape of the
// stored string. That keeps accounts created under an older scheme usable
// after the default changes.
package cryptox

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

const (
	SchemeArgon2id = "argon2id"
	SchemeBcrypt   = "bcrypt"
	SchemeLegacy   = "legacy"
)

var (
	ErrPasswordTooLong = errors.New("password too long")
	ErrUnknownHash     = errors.New("unrecognised password hash")
	ErrMalformedHash   = errors.New("malformed password hash")
)

type Hasher interface {
	Scheme() string
	Hash(password string) (string, error)
	// Verify reports whether password matches encoded. A mismatch is
	// (false, nil); an error means encoded could not be checked at all.
	Verify(password, encoded string) (bool, error)
}

// Identify returns the scheme that produced encoded, or "" when unknown.
func Identify(encoded string) string {
	switch {
	case strings.HasPrefix(encoded, "$argon2id$"):
		return SchemeArgon2id
	case strings.HasPrefix(encoded, "$2a$"), strings.HasPrefix(encoded, "$2b$"), strings.HasPrefix(encoded, "$2y$"):
		return SchemeBcrypt
	}
	if _, err := strconv.ParseInt(encoded, 10, 32); err == nil {
		return SchemeLegacy
	}
	return ""
}

// Chain hashes with its preferred Hasher and verifies with whichever
// Hasher matches the stored string.
type Chain struct {
	preferred Hasher
	byScheme  map[string]Hasher
}

func NewChain(preferred Hasher, others ...Hasher) *Chain {
	c := &Chain{preferred: preferred, byScheme: map[string]Hasher{preferred.Scheme(): preferred}}
	for _, h := range others {
		if _, ok := c.byScheme[h.Scheme()]; !ok {
			c.byScheme[h.Scheme()] = h
		}
	}
	return c
}

// NewHasher returns a Chain preferring scheme that can verify all schemes.
func NewHasher(scheme string) (*Chain, error) {
	all := map[string]Hasher{
		SchemeArgon2id: NewArgon2(DefaultArgon2Params),
		SchemeBcrypt:   NewBcrypt(BcryptDefaultCost),
		SchemeLegacy:   Legacy{},
	}
	preferred, ok := all[scheme]
	if !ok {
		return nil, fmt.Errorf("unknown password scheme %q", scheme)
	}
	return NewChain(preferred, all[SchemeArgon2id], all[SchemeBcrypt], all[SchemeLegacy]), nil
}

func (c *Chain) Scheme() string { return c.preferred.Scheme() }

func (c *Chain) Hash(password string) (string, error) {
	return c.preferred.Hash(password)
}

func (c *Chain) Verify(password, encoded string) (bool, error) {
	h, ok := c.byScheme[Identify(encoded)]
	if !ok {
		return false, ErrUnknownHash
	}
	return h.Verify(password, encoded)
}
