package codec

import (
	"fmt"
	"math/big"

	"github.com/matzehuels/pipgrid/pkg/errors"
)

const (
	// DefaultUnits is the number of units distributed by share links.
	DefaultUnits = 100

	// DefaultBuckets is the number of buckets in a share link distribution.
	DefaultBuckets = 25
)

// Default is the codec for 100 units over 25 buckets.
var Default = MustNew(DefaultUnits, DefaultBuckets)

// Codec ranks compositions of a fixed number of units into a fixed number of
// ordered buckets.
type Codec struct {
	units   int
	buckets int

	// binom[n][r] = C(n, r) for n <= units+buckets-1 and r <= buckets-1.
	// Entries are shared and must never be mutated.
	binom [][]*big.Int
	size  *big.Int
}

// New builds a codec for compositions of units into buckets.
// It returns an INVALID_INPUT error when units is negative or buckets < 1.
func New(units, buckets int) (*Codec, error) {
	if units < 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "units must be non-negative, got %d", units)
	}
	if buckets < 1 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "buckets must be at least 1, got %d", buckets)
	}

	slots := units + buckets - 1
	bars := buckets - 1

	binom := make([][]*big.Int, slots+1)
	for n := 0; n <= slots; n++ {
		row := make([]*big.Int, bars+1)
		for r := 0; r <= bars; r++ {
			switch {
			case r == 0 || r == n:
				row[r] = big.NewInt(1)
			case r > n:
				row[r] = new(big.Int)
			default:
				row[r] = new(big.Int).Add(binom[n-1][r-1], binom[n-1][r])
			}
		}
		binom[n] = row
	}

	return &Codec{
		units:   units,
		buckets: buckets,
		binom:   binom,
		size:    binom[slots][bars],
	}, nil
}

// MustNew is like New but panics on invalid parameters.
func MustNew(units, buckets int) *Codec {
	c, err := New(units, buckets)
	if err != nil {
		panic(err)
	}
	return c
}

// Units returns the total number of units every distribution must hold.
func (c *Codec) Units() int { return c.units }

// Buckets returns the number of buckets in a distribution.
func (c *Codec) Buckets() int { return c.buckets }

// Size returns the number of distinct distributions, C(units+buckets-1, buckets-1).
func (c *Codec) Size() *big.Int { return new(big.Int).Set(c.size) }

// MaxIndex returns the largest index produced by Index, Size()-1.
func (c *Codec) MaxIndex() *big.Int { return new(big.Int).Sub(c.size, big.NewInt(1)) }

// MaxToken returns the token of MaxIndex, the longest token the codec emits.
func (c *Codec) MaxToken() string { return FormatBase62(c.MaxIndex()) }

// Index returns the combinatorial rank of counts.
//
// counts must hold exactly Buckets() non-negative entries summing to Units();
// anything else is reported as an INVALID_COUNTS error.
func (c *Codec) Index(counts []int) (*big.Int, error) {
	if err := c.Validate(counts); err != nil {
		return nil, err
	}

	index := new(big.Int)
	cum := 0
	for k := 0; k < c.buckets-1; k++ {
		cum += counts[k]
		index.Add(index, c.binom[cum+k][k+1])
	}
	return index, nil
}

// FromIndex inverts Index. Indexes outside [0, Size()) are rejected with an
// INVALID_TOKEN error.
func (c *Codec) FromIndex(index *big.Int) ([]int, error) {
	if index == nil || index.Sign() < 0 || index.Cmp(c.size) >= 0 {
		return nil, errors.New(errors.ErrCodeInvalidToken,
			"index out of range for %d units in %d buckets", c.units, c.buckets)
	}

	bars := c.buckets - 1
	bar := make([]int, bars)
	rem := new(big.Int).Set(index)

	// Bars are strictly increasing, so each search starts just below the
	// bar recovered before it.
	upper := c.units + bars - 1
	for k := bars - 1; k >= 0; k-- {
		v := upper
		for v >= k && c.binom[v][k+1].Cmp(rem) > 0 {
			v--
		}
		if v < k {
			return nil, errors.New(errors.ErrCodeInvalidToken, "no slot for separator %d", k)
		}
		bar[k] = v
		rem.Sub(rem, c.binom[v][k+1])
		upper = v - 1
	}
	if rem.Sign() != 0 {
		return nil, errors.New(errors.ErrCodeInvalidToken, "index does not rank a distribution")
	}

	return c.countsFromBars(bar), nil
}

// countsFromBars rebuilds bucket counts from separator positions.
// A negative count or a wrong total means the ranking itself is broken.
func (c *Codec) countsFromBars(bar []int) []int {
	counts := make([]int, c.buckets)
	prev, placed := -1, 0
	for i, b := range bar {
		counts[i] = b - prev - 1
		placed += counts[i]
		prev = b
	}
	counts[c.buckets-1] = c.units - placed

	total := 0
	for i, n := range counts {
		if n < 0 {
			panic(fmt.Sprintf("codec: bucket %d decoded to %d units", i, n))
		}
		total += n
	}
	if total != c.units {
		panic(fmt.Sprintf("codec: decoded %d units, want %d", total, c.units))
	}
	return counts
}

// Validate checks that counts is a distribution this codec can rank.
func (c *Codec) Validate(counts []int) error {
	if len(counts) != c.buckets {
		return errors.New(errors.ErrCodeInvalidCounts, "expected %d buckets, got %d", c.buckets, len(counts))
	}
	total := 0
	for i, n := range counts {
		if n < 0 {
			return errors.New(errors.ErrCodeInvalidCounts, "bucket %d has negative count %d", i, n)
		}
		total += n
	}
	if total != c.units {
		return errors.New(errors.ErrCodeInvalidCounts, "counts sum to %d, want %d", total, c.units)
	}
	return nil
}

// Encode returns the share token for counts.
func (c *Codec) Encode(counts []int) (string, error) {
	index, err := c.Index(counts)
	if err != nil {
		return "", err
	}
	return FormatBase62(index), nil
}

// Decode returns the distribution named by token.
func (c *Codec) Decode(token string) ([]int, error) {
	index, err := ParseBase62(token)
	if err != nil {
		return nil, err
	}
	return c.FromIndex(index)
}

// Encode encodes counts with the Default codec.
func Encode(counts []int) (string, error) { return Default.Encode(counts) }

// Decode decodes token with the Default codec.
func Decode(token string) ([]int, error) { return Default.Decode(token) }
