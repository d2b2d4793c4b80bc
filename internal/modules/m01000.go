package modules

import (
	"unicode/utf8"

	"golang.org/x/crypto/md4"
	"golang.org/x/text/encoding/unicode"

	"edu/hashmodule/internal/module"
	"edu/hashmodule/internal/module/rawhash"
)

const (
	m01000HashName = "NTLM"
	m01000OptsType = module.OptsPtGenerateLE |
		module.OptsPtAdd80 |
		module.OptsPtAddBits14 |
		module.OptsPtUTF16LE
	m01000StHash = "b4b9b02e6f09a9bd760f388b67351e2b"
	m01000StPass = "hashcat"
)

// ntlm is MD4 over the UTF-16LE encoding of the password.
type ntlm struct{ raw128 }

func (n ntlm) DigestBytes(c *module.Config, plain []byte) module.Digest {
	h := md4.New()
	_, _ = h.Write(utf16le(plain))
	return n.codec.Precompute(c, rawhash.FromSum(h.Sum(nil)))
}

// utf16le encodes a UTF-8 candidate the way Windows stores the password
// before hashing. A candidate that is not valid UTF-8 is widened byte by
// byte instead; the encoder would map every bad byte to U+FFFD.
func utf16le(plain []byte) []byte {
	if utf8.Valid(plain) {
		enc := unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewEncoder()
		if b, err := enc.Bytes(plain); err == nil {
			return b
		}
	}
	b := make([]byte, len(plain)*2)
	for i, c := range plain {
		b[i*2] = c
	}
	return b
}

func init() {
	module.Register(ntlm{raw128{
		mode:   1000,
		name:   m01000HashName,
		opts:   m01000OptsType,
		stHash: m01000StHash,
		stPass: m01000StPass,
		codec:  rawhash.Codec{IV: [4]uint32{md4mA, md4mB, md4mC, md4mD}},
	}})
}
