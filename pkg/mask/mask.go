package mask

import (
	"errors"
	"fmt"
	"math"
)

// Mask tokens: ?l lower, ?u upper, ?d digits, ?s specials, ?a all printable, ?? literal '?'
var (
	lower   = []byte("abcdefghijklmnopqrstuvwxyz")
	upper   = []byte("ABCDEFGHIJKLMNOPQRSTUVWXYZ")
	digits  = []byte("0123456789")
	special = []byte(" !\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~")
	all     = concat(lower, upper, digits, special)
)

var (
	ErrEmptyMask = errors.New("mask required")
	ErrKeyspace  = errors.New("mask keyspace overflows uint64")
)

// Generator enumerates every candidate of a mask. Candidate i is the i-th
// number in the mixed radix defined by the per-position charsets, last
// position varying fastest.
type Generator struct {
	sets     [][]byte
	radixes  []uint64 // product of the lengths of all following sets
	keyspace uint64
}

func NewGenerator(pattern string) (*Generator, error) {
	if pattern == "" {
		return nil, ErrEmptyMask
	}
	sets := make([][]byte, 0, len(pattern)/2)
	for i := 0; i < len(pattern); {
		if pattern[i] == '?' {
			if i+1 >= len(pattern) {
				return nil, errors.New("dangling ? in mask")
			}
			switch pattern[i+1] {
			case 'l':
				sets = append(sets, lower)
			case 'u':
				sets = append(sets, upper)
			case 'd':
				sets = append(sets, digits)
			case 's':
				sets = append(sets, special)
			case 'a':
				sets = append(sets, all)
			case '?':
				sets = append(sets, []byte{'?'})
			default:
				return nil, fmt.Errorf("unknown mask token ?%c", pattern[i+1])
			}
			i += 2
			continue
		}
		// literal char
		sets = append(sets, []byte{pattern[i]})
		i++
	}

	radixes := make([]uint64, len(sets))
	prod := uint64(1)
	for i := len(sets) - 1; i >= 0; i-- {
		radixes[i] = prod
		n := uint64(len(sets[i]))
		if prod > math.MaxUint64/n {
			return nil, ErrKeyspace
		}
		prod *= n
	}
	return &Generator{sets: sets, radixes: radixes, keyspace: prod}, nil
}

// Len is the length of every candidate.
func (g *Generator) Len() int { return len(g.sets) }

// Keyspace is the number of candidates.
func (g *Generator) Keyspace() uint64 { return g.keyspace }

// Candidate writes candidate index into buf, which must hold Len bytes.
func (g *Generator) Candidate(index uint64, buf []byte) {
	for i, set := range g.sets {
		buf[i] = set[(index/g.radixes[i])%uint64(len(set))]
	}
}

// Iterator walks candidates [start, end) updating one buffer in place.
type Iterator struct {
	g      *Generator
	digits []int
	buf    []byte
	next   uint64
	end    uint64
	primed bool
}

func (g *Generator) Range(start, end uint64) *Iterator {
	end = min(end, g.keyspace)
	it := &Iterator{g: g, digits: make([]int, len(g.sets)), buf: make([]byte, len(g.sets)), next: start, end: end}
	if start < end {
		for i, set := range g.sets {
			it.digits[i] = int((start / g.radixes[i]) % uint64(len(set)))
		}
		g.Candidate(start, it.buf)
	}
	return it
}

// Next returns the next candidate or false when the range is exhausted. The
// returned slice is overwritten by the following call.
func (it *Iterator) Next() ([]byte, bool) {
	if it.next >= it.end {
		return nil, false
	}
	if it.primed {
		it.increment()
	}
	it.primed = true
	it.next++
	return it.buf, true
}

// increment adds one to the mixed-radix digits, touching only the positions
// that roll over.
func (it *Iterator) increment() {
	for i := len(it.digits) - 1; i >= 0; i-- {
		set := it.g.sets[i]
		d := it.digits[i] + 1
		if d < len(set) {
			it.digits[i] = d
			it.buf[i] = set[d]
			return
		}
		it.digits[i] = 0
		it.buf[i] = set[0]
	}
}

func concat(sets ...[]byte) []byte {
	var out []byte
	for _, s := range sets {
		out = append(out, s...)
	}
	return out
}
