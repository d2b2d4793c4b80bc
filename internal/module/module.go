// Package module defines the contract between a hash-mode descriptor and the
// host that loads target hashes, runs candidates through a kernel and reports
// cracks.
//
// A descriptor is an immutable value implementing Module. Its codec methods
// are pure: they touch only the buffers handed to them and may be called from
// any number of goroutines at once.
package module

import (
	"errors"
	"fmt"
	"sort"
)

// Digest is a 128-bit digest stored as four 32-bit words in storage order.
type Digest [4]uint32

// Positions maps conceptual digest words to storage slots: Positions[i] is
// the slot holding word i.
type Positions [4]uint32

// Gather reads the storage slots of d in the order the kernel compares
// them: word i of the result is slot p[i]. For {0, 3, 2, 1} that is
// {d0, d3, d2, d1}, not the natural order; Scatter is the reordering that
// restores it, so Scatter(Gather(d)) == d.
func (p Positions) Gather(d Digest) [4]uint32 {
	return [4]uint32{d[p[0]], d[p[1]], d[p[2]], d[p[3]]}
}

// Scatter is the inverse of Gather.
func (p Positions) Scatter(w [4]uint32) Digest {
	var d Digest
	for i, slot := range p {
		d[slot] = w[i]
	}
	return d
}

// Compare orders digests the way the host sorts and searches its hash list:
// slot p[3] is most significant, then p[2], p[1], p[0].
func (p Positions) Compare(a, b Digest) int {
	for i := 3; i >= 0; i-- {
		x, y := a[p[i]], b[p[i]]
		if x < y {
			return -1
		}
		if x > y {
			return 1
		}
	}
	return 0
}

var ErrBufferTooSmall = errors.New("output buffer too small")

// EncodeResult reports a formatted write into a fixed-capacity buffer. Len
// is the full length of the text; Written is how much of it fit.
type EncodeResult struct {
	Len     int
	Written int
}

func (r EncodeResult) Truncated() bool { return r.Written < r.Len }

// Err returns ErrBufferTooSmall when the output did not fit.
func (r EncodeResult) Err() error {
	if r.Truncated() {
		return fmt.Errorf("%w: need %d bytes, have %d", ErrBufferTooSmall, r.Len, r.Written)
	}
	return nil
}

// Module is a hash-mode descriptor.
type Module interface {
	Mode() uint32
	HashName() string

	AttackExec() AttackExec
	DgstSize() DgstSize
	DgstPos() Positions
	EsaltSize() uint64
	SaltType() SaltType
	OptiType() OptiType
	OptsType() OptsType

	// StHash and StPass are the self-test pair: StHash is the digest of
	// StPass in this mode's text form.
	StHash() string
	StPass() string

	SaltMin(c *Config) uint32
	SaltMax(c *Config) uint32
	PwMin(c *Config) uint32
	PwMax(c *Config) uint32

	// HashDecode parses one line of hash text into a stored digest.
	HashDecode(c *Config, line []byte) (Digest, error)
	// HashEncode renders d into buf. d is never modified.
	HashEncode(c *Config, d Digest, buf []byte) EncodeResult
}

// ByteDigester is implemented by modules with a CPU reference kernel. The
// returned digest is in stored form: shifted exactly as HashDecode shifts a
// target under c.
type ByteDigester interface {
	DigestBytes(c *Config, plain []byte) Digest
}

// BatchDigester digests many candidates in one call.
type BatchDigester interface {
	DigestMany(c *Config, plains [][]byte) []Digest
}

var (
	ErrUnknownMode = errors.New("unknown hash mode")

	registry = map[uint32]Module{}
)

// Register adds m to the registry. Registering the same mode twice is a
// programming error and panics.
func Register(m Module) {
	if _, ok := registry[m.Mode()]; ok {
		panic(fmt.Sprintf("module: mode %d registered twice", m.Mode()))
	}
	registry[m.Mode()] = m
}

func Get(mode uint32) (Module, error) {
	if m, ok := registry[mode]; ok {
		return m, nil
	}
	return nil, fmt.Errorf("%w: %d", ErrUnknownMode, mode)
}

// List returns all registered modules ordered by mode.
func List() []Module {
	out := make([]Module, 0, len(registry))
	for _, m := range registry {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Mode() < out[j].Mode() })
	return out
}
