package codec

import (
	"math/big"
	"slices"

	"github.com/matzehuels/pipgrid/pkg/errors"
)

// Alphabet holds the base-62 digits in value order.
//
// math/big formats base 62 with lowercase before uppercase, so it cannot be
// used for this ordering.
const Alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

var base62 = big.NewInt(62)

// FormatBase62 renders n most-significant digit first. Zero renders as "0".
// n must be non-negative.
func FormatBase62(n *big.Int) string {
	if n.Sign() < 0 {
		panic("codec: FormatBase62 of negative value")
	}
	if n.Sign() == 0 {
		return "0"
	}

	var buf []byte
	q := new(big.Int).Set(n)
	r := new(big.Int)
	for q.Sign() > 0 {
		q.QuoRem(q, base62, r)
		buf = append(buf, Alphabet[r.Int64()])
	}
	slices.Reverse(buf)
	return string(buf)
}

// ParseBase62 parses s as a base-62 number. Empty input or any character
// outside Alphabet is an INVALID_TOKEN error.
func ParseBase62(s string) (*big.Int, error) {
	if s == "" {
		return nil, errors.New(errors.ErrCodeInvalidToken, "empty token")
	}

	n := new(big.Int)
	d := new(big.Int)
	for i := 0; i < len(s); i++ {
		v := digitValue(s[i])
		if v < 0 {
			return nil, errors.New(errors.ErrCodeInvalidToken, "invalid character %q at position %d", s[i], i)
		}
		n.Mul(n, base62)
		n.Add(n, d.SetInt64(int64(v)))
	}
	return n, nil
}

func digitValue(ch byte) int {
	switch {
	case ch >= '0' && ch <= '9':
		return int(ch - '0')
	case ch >= 'A' && ch <= 'Z':
		return int(ch-'A') + 10
	case ch >= 'a' && ch <= 'z':
		return int(ch-'a') + 36
	default:
		return -1
	}
}
