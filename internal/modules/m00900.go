package modules

import (
	"golang.org/x/crypto/md4"

	"edu/hashmodule/internal/module"
	"edu/hashmodule/internal/module/rawhash"
)

const (
	m00900HashName = "MD4"
	m00900OptsType = module.OptsPtGenerateLE |
		module.OptsPtAdd80 |
		module.OptsPtAddBits14
	m00900StHash = "afe04867ec7a3845145579a95f72eca7"
	m00900StPass = "hashcat"
)

type rawMD4 struct{ raw128 }

func (m rawMD4) DigestBytes(c *module.Config, plain []byte) module.Digest {
	h := md4.New()
	_, _ = h.Write(plain)
	return m.codec.Precompute(c, rawhash.FromSum(h.Sum(nil)))
}

func init() {
	module.Register(rawMD4{raw128{
		mode:   900,
		name:   m00900HashName,
		opts:   m00900OptsType,
		stHash: m00900StHash,
		stPass: m00900StPass,
		codec:  rawhash.Codec{IV: [4]uint32{md4mA, md4mB, md4mC, md4mD}},
	}})
}
