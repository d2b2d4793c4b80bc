package modules

import (
	"crypto/md5"
	"sync"

	md5simd "github.com/minio/md5-simd"

	"edu/hashmodule/internal/module"
	"edu/hashmodule/internal/module/rawhash"
)

const (
	m00000HashName = "MD5"
	m00000OptsType = module.OptsPtGenerateLE |
		module.OptsPtAdd80 |
		module.OptsPtAddBits14
	m00000StHash = "8743b52063cd84097a65d1633f5c74f5"
	m00000StPass = "hashcat"
)

type rawMD5 struct{ raw128 }

func (m rawMD5) DigestBytes(c *module.Config, plain []byte) module.Digest {
	sum := md5.Sum(plain)
	return m.codec.Precompute(c, rawhash.FromSum(sum[:]))
}

// DigestMany runs the batch through the shared md5-simd server, which
// interleaves up to 16 lanes per core on AVX-512 hardware.
func (m rawMD5) DigestMany(c *module.Config, plains [][]byte) []module.Digest {
	srv := md5Server()
	out := make([]module.Digest, len(plains))
	hs := make([]md5simd.Hasher, 0, md5Lanes)
	for start := 0; start < len(plains); start += md5Lanes {
		end := min(start+md5Lanes, len(plains))
		hs = hs[:0]
		for _, p := range plains[start:end] {
			h := srv.NewHash()
			_, _ = h.Write(p)
			hs = append(hs, h)
		}
		for i, h := range hs {
			out[start+i] = m.codec.Precompute(c, rawhash.FromSum(h.Sum(nil)))
			h.Close()
		}
	}
	return out
}

const md5Lanes = 16

var (
	md5Once sync.Once
	md5Srv  md5simd.Server
)

func md5Server() md5simd.Server {
	md5Once.Do(func() { md5Srv = md5simd.NewServer() })
	return md5Srv
}

func init() {
	module.Register(rawMD5{raw128{
		mode:   0,
		name:   m00000HashName,
		opts:   m00000OptsType,
		stHash: m00000StHash,
		stPass: m00000StPass,
		codec:  rawhash.Codec{IV: [4]uint32{md5mA, md5mB, md5mC, md5mD}},
	}})
}
