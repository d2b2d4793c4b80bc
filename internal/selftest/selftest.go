// Package selftest checks a module end to end against its own self-test
// pair before the host trusts it with real hashes.
package selftest

import (
	"errors"
	"fmt"
	"strings"

	"edu/hashmodule/internal/module"
)

var (
	ErrEncodeMismatch = errors.New("self-test hash does not re-encode to itself")
	ErrDigestMismatch = errors.New("self-test password does not produce self-test hash")
)

type Result struct {
	Mode uint32
	Name string
	// Kernel is false when the module has no CPU reference kernel and only
	// the codec was checked.
	Kernel bool
	Err    error
}

func (r Result) OK() bool { return r.Err == nil }

// Run decodes the module's self-test hash, checks that it encodes back to
// the same text and, when the module has a reference kernel, that the
// self-test password digests to the same stored value.
func Run(m module.Module, opts module.UserOptions) Result {
	res := Result{Mode: m.Mode(), Name: m.HashName()}
	c := module.NewConfig(m, opts)

	want, err := m.HashDecode(c, []byte(m.StHash()))
	if err != nil {
		res.Err = fmt.Errorf("decoding self-test hash: %w", err)
		return res
	}

	buf := make([]byte, len(m.StHash()))
	enc := m.HashEncode(c, want, buf)
	if err := enc.Err(); err != nil {
		res.Err = fmt.Errorf("encoding self-test hash: %w", err)
		return res
	}
	if string(buf[:enc.Written]) != strings.ToLower(m.StHash()) {
		res.Err = fmt.Errorf("%w: got %s", ErrEncodeMismatch, buf[:enc.Written])
		return res
	}

	bd, ok := m.(module.ByteDigester)
	if !ok {
		return res
	}
	res.Kernel = true
	got := bd.DigestBytes(c, []byte(m.StPass()))
	pos := m.DgstPos()
	if pos.Compare(got, want) != 0 {
		res.Err = fmt.Errorf("%w: got %08x, want %08x", ErrDigestMismatch, pos.Gather(got), pos.Gather(want))
	}
	return res
}

// RunAll runs Run for every registered module.
func RunAll(opts module.UserOptions) []Result {
	mods := module.List()
	out := make([]Result, 0, len(mods))
	for _, m := range mods {
		out = append(out, Run(m, opts))
	}
	return out
}
