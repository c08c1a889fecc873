// Package token holds the Solana mint address type and text extraction.
package token

import (
	"errors"
	"regexp"

	"github.com/mr-tron/base58"
)

// Address is a validated base58 Solana mint address. Immutable; only ever
// compared for equality.
type Address string

func (a Address) String() string { return string(a) }

// Short returns the 4...4 abbreviated form used in logs and messages.
func (a Address) Short() string {
	s := string(a)
	if len(s) <= 8 {
		return s
	}
	return s[:4] + "..." + s[len(s)-4:]
}

var ErrInvalidAddress = errors.New("not a valid solana address")

// base58Run matches maximal runs of base58 alphabet characters. Length is
// checked separately so a 50-char run is rejected whole instead of
// yielding a bogus 44-char prefix.
var base58Run = regexp.MustCompile(`[1-9A-HJ-NP-Za-km-z]+`)

const (
	minAddressLen = 32
	maxAddressLen = 44
)

// Extract returns the first substring of text shaped like a Solana address.
// It never errors; ok is false when no candidate is present.
func Extract(text string) (string, bool) {
	if text == "" {
		return "", false
	}
	for _, run := range base58Run.FindAllString(text, -1) {
		if len(run) < minAddressLen || len(run) > maxAddressLen {
			continue
		}
		return run, true
	}
	return "", false
}

// Parse validates s as a Solana address: base58 alphabet, 32-44 chars,
// decoding to a 32-byte public key.
func Parse(s string) (Address, error) {
	if len(s) < minAddressLen || len(s) > maxAddressLen {
		return "", ErrInvalidAddress
	}
	raw, err := base58.Decode(s)
	if err != nil || len(raw) != 32 {
		return "", ErrInvalidAddress
	}
	return Address(s), nil
}
