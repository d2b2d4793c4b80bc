// Package rawhash is the text codec shared by unsalted hash modes whose
// digest is four little-endian 32-bit words, such as MD4, MD5 and NTLM.
package rawhash

import (
	"encoding/binary"
	"encoding/hex"
	"math/bits"

	"edu/hashmodule/internal/module"
	"edu/hashmodule/internal/tokenizer"
)

// HexLen is the length of the text form: 32 hex characters.
const HexLen = 32

// Codec converts between the hex text of a digest and its stored form.
// IV holds the initial state words of the compression function; with
// OptiPrecomputeMerkle set they are subtracted from stored digests so the
// kernel can skip the final feed-forward addition.
type Codec struct {
	IV [4]uint32
}

// Decode parses line into a stored digest.
func (k Codec) Decode(c *module.Config, line []byte) (module.Digest, error) {
	var d module.Digest

	var token tokenizer.Token
	token.Count = 1
	token.LenMin[0] = HexLen
	token.LenMax[0] = HexLen
	token.Attr[0] = tokenizer.AttrVerifyLength | tokenizer.AttrVerifyHex

	if err := tokenizer.Tokenize(line, &token); err != nil {
		return d, err
	}

	hashPos := token.Buf[0]
	for i := range d {
		w, err := HexToU32(hashPos[i*8 : i*8+8])
		if err != nil {
			return module.Digest{}, err
		}
		d[i] = w
	}

	return k.Precompute(c, d), nil
}

// Precompute applies the stored-form shift to a finished digest.
func (k Codec) Precompute(c *module.Config, d module.Digest) module.Digest {
	if c.OptiType&module.OptiPrecomputeMerkle != 0 {
		for i := range d {
			d[i] -= k.IV[i]
		}
	}
	return d
}

// Encode renders d as 32 lowercase hex characters into buf, truncating when
// buf is shorter. d is a copy; the caller's digest is never touched.
func (k Codec) Encode(c *module.Config, d module.Digest, buf []byte) module.EncodeResult {
	if c.OptiType&module.OptiPrecomputeMerkle != 0 {
		for i := range d {
			d[i] += k.IV[i]
		}
	}

	var raw [16]byte
	for i, w := range d {
		binary.BigEndian.PutUint32(raw[i*4:], ByteSwap32(w))
	}
	var out [HexLen]byte
	hex.Encode(out[:], raw[:])

	n := copy(buf, out[:])
	return module.EncodeResult{Len: HexLen, Written: n}
}

// EncodeString is Encode into a string.
func (k Codec) EncodeString(c *module.Config, d module.Digest) string {
	var buf [HexLen]byte
	k.Encode(c, d, buf[:])
	return string(buf[:])
}

// FromSum converts a 16-byte digest as produced by the hash function into
// storage words.
func FromSum(sum []byte) module.Digest {
	var d module.Digest
	for i := range d {
		d[i] = binary.LittleEndian.Uint32(sum[i*4:])
	}
	return d
}

// HexToU32 parses 8 hex characters into the word whose little-endian bytes
// they spell.
func HexToU32(b []byte) (uint32, error) {
	if len(b) != 8 {
		return 0, tokenizer.ErrLengthMismatch
	}
	var v uint32
	for i := 0; i < 8; i += 2 {
		hi, lo := tokenizer.HexValue(b[i]), tokenizer.HexValue(b[i+1])
		if hi < 0 || lo < 0 {
			return 0, tokenizer.ErrInvalidCharacterClass
		}
		v |= uint32(hi<<4|lo) << (uint(i) * 4)
	}
	return v, nil
}

// ByteSwap32 reverses the byte order of w.
func ByteSwap32(w uint32) uint32 { return bits.ReverseBytes32(w) }
