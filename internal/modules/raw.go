// Package modules holds the hash-mode descriptors. Each file describes one
// mode and registers it from init; import the package for its side effect.
package modules

import (
	"edu/hashmodule/internal/module"
	"edu/hashmodule/internal/module/rawhash"
)

// Initial state of MD4 and MD5. Both use the same four words.
const (
	md4mA = 0x67452301
	md4mB = 0xefcdab89
	md4mC = 0x98badcfe
	md4mD = 0x10325476

	md5mA = 0x67452301
	md5mB = 0xefcdab89
	md5mC = 0x98badcfe
	md5mD = 0x10325476
)

// raw128OptiType is shared by every unsalted single-block 128-bit mode.
const raw128OptiType = module.OptiZeroByte |
	module.OptiPrecomputeInit |
	module.OptiPrecomputeMerkle |
	module.OptiMeetInMiddle |
	module.OptiEarlySkip |
	module.OptiNotIterated |
	module.OptiNotSalted |
	module.OptiRawHash

// The compression function leaves word a in slot 0 and rotates the rest, so
// the kernel compares slots 0, 3, 2, 1.
var raw128DgstPos = module.Positions{0, 3, 2, 1}

// raw128 is the descriptor of an unsalted hash mode with a 4x32-bit
// little-endian digest. It is immutable once built.
type raw128 struct {
	mode   uint32
	name   string
	opts   module.OptsType
	stHash string
	stPass string
	codec  rawhash.Codec
}

func (r raw128) Mode() uint32                  { return r.mode }
func (r raw128) HashName() string              { return r.name }
func (r raw128) AttackExec() module.AttackExec { return module.AttackExecInsideKernel }
func (r raw128) DgstSize() module.DgstSize     { return module.DgstSize4x4 }
func (r raw128) DgstPos() module.Positions     { return raw128DgstPos }
func (r raw128) EsaltSize() uint64             { return 0 }
func (r raw128) SaltType() module.SaltType     { return module.SaltNone }
func (r raw128) OptiType() module.OptiType     { return raw128OptiType }
func (r raw128) OptsType() module.OptsType     { return r.opts }
func (r raw128) StHash() string                { return r.stHash }
func (r raw128) StPass() string                { return r.stPass }

func (r raw128) SaltMin(c *module.Config) uint32 {
	return module.DefaultSaltMin(c, c.Optimized())
}

func (r raw128) SaltMax(c *module.Config) uint32 {
	return module.DefaultSaltMax(c, c.Optimized())
}

func (r raw128) PwMin(c *module.Config) uint32 {
	return module.DefaultPwMin(c, c.Optimized())
}

func (r raw128) PwMax(c *module.Config) uint32 {
	return module.DefaultPwMax(c, c.Optimized())
}

func (r raw128) HashDecode(c *module.Config, line []byte) (module.Digest, error) {
	return r.codec.Decode(c, line)
}

func (r raw128) HashEncode(c *module.Config, d module.Digest, buf []byte) module.EncodeResult {
	return r.codec.Encode(c, d, buf)
}
