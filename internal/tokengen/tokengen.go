// Package tokengen generates opaque shared-secret tokens backed by nanoid.
package tokengen

import (
	"fmt"

	nanoid "github.com/matoous/go-nanoid/v2"
)

// DefaultPrefix is prepended to every generated token.
var DefaultPrefix = "tk-"

// Alphabet defines the character set used for the random portion of the token.
var Alphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// Length is the number of random characters generated (excluding the prefix).
var Length = 32

// Generate returns a new token using the default prefix.
func Generate() (string, error) {
	return GenerateWithPrefix(DefaultPrefix)
}

// GenerateWithPrefix returns a new token with the given prefix.
func GenerateWithPrefix(prefix string) (string, error) {
	token, err := nanoid.Generate(Alphabet, Length)
	if err != nil {
		return "", fmt.Errorf("tokengen: %w", err)
	}
	return prefix + token, nil
}
