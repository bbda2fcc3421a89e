// Package idgen provides short, URL-safe unique ID generation backed by nanoid.
package idgen

import (
	"fmt"

	nanoid "github.com/matoous/go-nanoid/v2"
)

// Prefixes for the IDs handed out by the backend.
const (
	PrefixOpen  = "op-"
	PrefixEvent = "ev-"
)

// Alphabet defines the character set used for the random portion of the ID.
var Alphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// Length is the number of random characters generated (excluding the prefix).
var Length = 12

// NewOpenID returns an ID correlating one open request with the gate_open
// report that follows it.
func NewOpenID() (string, error) {
	return GenerateWithPrefix(PrefixOpen)
}

// NewEventID returns an ID for a stored access event.
func NewEventID() (string, error) {
	return GenerateWithPrefix(PrefixEvent)
}

// GenerateWithPrefix returns a new unique ID with the given prefix.
func GenerateWithPrefix(prefix string) (string, error) {
	id, err := nanoid.Generate(Alphabet, Length)
	if err != nil {
		return "", fmt.Errorf("idgen: %w", err)
	}
	return prefix + id, nil
}
