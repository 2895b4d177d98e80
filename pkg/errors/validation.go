package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// evmAddressRegex matches 0x-prefixed hex contract addresses (40+ hex chars
// covers both 20-byte account addresses and longer chain-specific formats).
var evmAddressRegex = regexp.MustCompile(`^0x[0-9a-fA-F]{40,64}$`)

// base58Alphabet is the Bitcoin base58 alphabet used by Solana addresses.
const base58Alphabet = "123456789ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnopqrstuvwxyz"

// ValidateTokenAddress validates a token contract address for safety and shape.
// EVM-style addresses must be 0x-prefixed hex; anything else must look like a
// base58-encoded 32-byte key (Solana mints).
//
// The validation rules are intentionally conservative:
//   - No empty addresses
//   - No control characters
//   - Maximum length of 128 characters
func ValidateTokenAddress(addr string) error {
	if addr == "" {
		return New(ErrCodeInvalidAddress, "token address cannot be empty")
	}

	if len(addr) > 128 {
		return New(ErrCodeInvalidAddress, "token address too long (max 128 characters)")
	}

	for _, r := range addr {
		if unicode.IsControl(r) || r == '\x00' {
			return New(ErrCodeInvalidAddress, "token address contains invalid control characters")
		}
	}

	if strings.HasPrefix(addr, "0x") {
		if !evmAddressRegex.MatchString(addr) {
			return New(ErrCodeInvalidAddress, "invalid EVM token address: %q", addr)
		}
		return nil
	}

	if !isBase58Key(addr) {
		return New(ErrCodeInvalidAddress, "invalid token address: %q", addr)
	}
	return nil
}

// isBase58Key reports whether s decodes to exactly 32 bytes of base58 data.
func isBase58Key(s string) bool {
	if len(s) < 32 || len(s) > 44 {
		return false
	}

	// Decode into a big-integer byte accumulator.
	buf := []byte{0}
	for _, r := range s {
		idx := strings.IndexRune(base58Alphabet, r)
		if idx < 0 {
			return false
		}
		carry := idx
		for i := len(buf) - 1; i >= 0; i-- {
			carry += int(buf[i]) * 58
			buf[i] = byte(carry & 0xff)
			carry >>= 8
		}
		for carry > 0 {
			buf = append([]byte{byte(carry & 0xff)}, buf...)
			carry >>= 8
		}
	}

	// Leading '1' characters encode leading zero bytes.
	n := len(buf)
	if buf[0] == 0 && n > 1 {
		n--
	}
	for _, r := range s {
		if r != '1' {
			break
		}
		n++
	}
	return n == 32
}

// ValidateURL validates a URL string for safety.
// It ensures the URL has a safe scheme (http or https).
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}

	// Simple scheme validation without full URL parsing
	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return New(ErrCodeInvalidInput, "URL must use http or https scheme")
	}

	return nil
}
