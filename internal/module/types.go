package module

import (
	"fmt"
	"strings"
)

// OptiType is the set of kernel optimizations a module supports. The bit
// values match the ones the device kernels are compiled against.
type OptiType uint32

const (
	OptiOptimizedKernel  OptiType = 1 << 0
	OptiZeroByte         OptiType = 1 << 1
	OptiPrecomputeInit   OptiType = 1 << 2
	OptiMeetInMiddle     OptiType = 1 << 3
	OptiEarlySkip        OptiType = 1 << 4
	OptiNotSalted        OptiType = 1 << 5
	OptiNotIterated      OptiType = 1 << 6
	OptiPrependedSalt    OptiType = 1 << 7
	OptiAppendedSalt     OptiType = 1 << 8
	OptiSingleHash       OptiType = 1 << 9
	OptiSingleSalt       OptiType = 1 << 10
	OptiBruteForce       OptiType = 1 << 11
	OptiRawHash          OptiType = 1 << 12
	OptiSlowHashSIMDInit OptiType = 1 << 13
	OptiSlowHashSIMDLoop OptiType = 1 << 14
	OptiSlowHashSIMDComp OptiType = 1 << 15
	OptiUsesBitsliced    OptiType = 1 << 16
	OptiRegisterLimit    OptiType = 1 << 17
	OptiPrecomputeMerkle OptiType = 1 << 18
)

// OptiPrecomputed are the optimizations that shift or shortcut the stored
// digest. Only the optimized kernels implement them.
const OptiPrecomputed = OptiPrecomputeInit | OptiPrecomputeMerkle | OptiMeetInMiddle | OptiEarlySkip

var optiNames = []struct {
	bit  OptiType
	name string
}{
	{OptiOptimizedKernel, "optimized-kernel"},
	{OptiZeroByte, "zero-byte"},
	{OptiPrecomputeInit, "precompute-init"},
	{OptiPrecomputeMerkle, "precompute-merkle-demgard"},
	{OptiMeetInMiddle, "meet-in-the-middle"},
	{OptiEarlySkip, "early-skip"},
	{OptiNotSalted, "not-salted"},
	{OptiNotIterated, "not-iterated"},
	{OptiPrependedSalt, "prepended-salt"},
	{OptiAppendedSalt, "appended-salt"},
	{OptiSingleHash, "single-hash"},
	{OptiSingleSalt, "single-salt"},
	{OptiBruteForce, "brute-force"},
	{OptiRawHash, "raw-hash"},
	{OptiSlowHashSIMDInit, "slow-hash-simd-init"},
	{OptiSlowHashSIMDLoop, "slow-hash-simd-loop"},
	{OptiSlowHashSIMDComp, "slow-hash-simd-comp"},
	{OptiUsesBitsliced, "uses-bitsliced"},
	{OptiRegisterLimit, "register-limit"},
}

// Has reports whether every bit of f is set.
func (o OptiType) Has(f OptiType) bool { return o&f == f }

func (o OptiType) String() string {
	var parts []string
	for _, n := range optiNames {
		if o&n.bit != 0 {
			parts = append(parts, n.name)
		}
	}
	return strings.Join(parts, ",")
}

// OptsType describes how candidates are prepared before they reach the
// kernel.
type OptsType uint64

const (
	OptsPtUpper        OptsType = 1 << 0
	OptsPtLower        OptsType = 1 << 1
	OptsPtAdd01        OptsType = 1 << 2
	OptsPtAdd02        OptsType = 1 << 3
	OptsPtAdd80        OptsType = 1 << 4
	OptsPtAddBits14    OptsType = 1 << 5
	OptsPtAddBits15    OptsType = 1 << 6
	OptsPtGenerateLE   OptsType = 1 << 7
	OptsPtGenerateBE   OptsType = 1 << 8
	OptsPtNeverCrack   OptsType = 1 << 9
	OptsPtBitslice     OptsType = 1 << 10
	OptsPtAlwaysASCII  OptsType = 1 << 11
	OptsPtAlwaysHexify OptsType = 1 << 12
	OptsPtUTF16LE      OptsType = 1 << 13
	OptsPtUTF16BE      OptsType = 1 << 14
)

var optsNames = []struct {
	bit  OptsType
	name string
}{
	{OptsPtUpper, "pt-upper"},
	{OptsPtLower, "pt-lower"},
	{OptsPtAdd01, "pt-add01"},
	{OptsPtAdd02, "pt-add02"},
	{OptsPtAdd80, "pt-add80"},
	{OptsPtAddBits14, "pt-addbits14"},
	{OptsPtAddBits15, "pt-addbits15"},
	{OptsPtGenerateLE, "pt-generate-le"},
	{OptsPtGenerateBE, "pt-generate-be"},
	{OptsPtNeverCrack, "pt-never-crack"},
	{OptsPtBitslice, "pt-bitslice"},
	{OptsPtAlwaysASCII, "pt-always-ascii"},
	{OptsPtAlwaysHexify, "pt-always-hexify"},
	{OptsPtUTF16LE, "pt-utf16le"},
	{OptsPtUTF16BE, "pt-utf16be"},
}

func (o OptsType) Has(f OptsType) bool { return o&f == f }

func (o OptsType) String() string {
	var parts []string
	for _, n := range optsNames {
		if o&n.bit != 0 {
			parts = append(parts, n.name)
		}
	}
	return strings.Join(parts, ",")
}

type SaltType uint32

const (
	SaltNone SaltType = 1 << iota
	SaltEmbedded
	SaltGeneric
	SaltVirtual
)

func (s SaltType) String() string {
	switch s {
	case SaltNone:
		return "none"
	case SaltEmbedded:
		return "embedded"
	case SaltGeneric:
		return "generic"
	case SaltVirtual:
		return "virtual"
	}
	return fmt.Sprintf("salt(%d)", uint32(s))
}

// AttackExec says where candidate generation runs relative to the hash
// computation.
type AttackExec uint32

const (
	AttackExecOutsideKernel AttackExec = 10
	AttackExecInsideKernel  AttackExec = 11
)

func (a AttackExec) String() string {
	switch a {
	case AttackExecInsideKernel:
		return "inside-kernel"
	case AttackExecOutsideKernel:
		return "outside-kernel"
	}
	return fmt.Sprintf("attack-exec(%d)", uint32(a))
}

// DgstSize is the stored digest size in bytes.
type DgstSize uint32

const (
	DgstSize4x2 DgstSize = 2 * 4
	DgstSize4x4 DgstSize = 4 * 4
	DgstSize4x5 DgstSize = 5 * 4
	DgstSize4x8 DgstSize = 8 * 4
)

// Words returns the number of 32-bit words in the digest.
func (d DgstSize) Words() int { return int(d) / 4 }

func (d DgstSize) String() string { return fmt.Sprintf("%dx32bit", d.Words()) }
