package rawhash

import (
	"errors"
	"regexp"
	"testing"
	"testing/quick"

	"edu/hashmodule/internal/module"
	"edu/hashmodule/internal/tokenizer"
)

var md4 = Codec{IV: [4]uint32{0x67452301, 0xefcdab89, 0x98badcfe, 0x10325476}}

var (
	plain  = &module.Config{}
	merkle = &module.Config{OptiType: module.OptiPrecomputeMerkle | module.OptiOptimizedKernel}
)

const stHash = "b4b9b02e6f09a9bd760f388b67351e2b"

func TestDecodeWords(t *testing.T) {
	d, err := md4.Decode(plain, []byte(stHash))
	if err != nil {
		t.Fatal(err)
	}
	want := module.Digest{0x2eb0b9b4, 0xbda9096f, 0x8b380f76, 0x2b1e3567}
	if d != want {
		t.Fatalf("Decode = %08x, want %08x", d, want)
	}

	m, err := md4.Decode(merkle, []byte(stHash))
	if err != nil {
		t.Fatal(err)
	}
	for i := range m {
		if m[i]+md4.IV[i] != want[i] {
			t.Fatalf("word %d not shifted by IV: %08x", i, m[i])
		}
	}
}

func TestDecodeUppercase(t *testing.T) {
	a, err := md4.Decode(plain, []byte("B4B9B02E6F09A9BD760F388B67351E2B"))
	if err != nil {
		t.Fatal(err)
	}
	b, _ := md4.Decode(plain, []byte(stHash))
	if a != b {
		t.Fatalf("case should not matter: %08x vs %08x", a, b)
	}
}

func TestDecodeErrors(t *testing.T) {
	cases := []struct {
		line string
		want error
	}{
		{stHash[:31], tokenizer.ErrLengthMismatch},
		{stHash + "0", tokenizer.ErrLengthMismatch},
		{"g4b9b02e6f09a9bd760f388b67351e2b", tokenizer.ErrInvalidCharacterClass},
		{"b4b9b02e6f09a9bd760f388b67351e2 ", tokenizer.ErrInvalidCharacterClass},
	}
	for _, tc := range cases {
		if _, err := md4.Decode(merkle, []byte(tc.line)); !errors.Is(err, tc.want) {
			t.Errorf("Decode(%q) = %v, want %v", tc.line, err, tc.want)
		}
	}
}

func TestRoundTrip(t *testing.T) {
	for _, c := range []*module.Config{plain, merkle} {
		f := func(w [4]uint32) bool {
			d := module.Digest(w)
			got, err := md4.Decode(c, []byte(md4.EncodeString(c, d)))
			return err == nil && got == d
		}
		if err := quick.Check(f, nil); err != nil {
			t.Fatalf("opti %v: %v", c.OptiType, err)
		}
	}
}

var lowerHex = regexp.MustCompile(`^[0-9a-f]{32}$`)

func TestEncodeFixedWidth(t *testing.T) {
	f := func(w [4]uint32) bool {
		return lowerHex.MatchString(md4.EncodeString(merkle, module.Digest(w)))
	}
	if err := quick.Check(f, nil); err != nil {
		t.Fatal(err)
	}
	if s := md4.EncodeString(plain, module.Digest{}); s != "00000000000000000000000000000000" {
		t.Fatalf("zero digest = %q", s)
	}
}

func TestSelfTestVector(t *testing.T) {
	d, err := md4.Decode(merkle, []byte(stHash))
	if err != nil {
		t.Fatal(err)
	}
	if got := md4.EncodeString(merkle, d); got != stHash {
		t.Fatalf("re-encode = %s, want %s", got, stHash)
	}
}

func TestEncodeDoesNotModifyInput(t *testing.T) {
	d := module.Digest{1, 2, 3, 4}
	orig := d
	var buf [HexLen]byte
	md4.Encode(merkle, d, buf[:])
	if d != orig {
		t.Fatalf("digest changed: %v", d)
	}
}

func TestEncodeTruncates(t *testing.T) {
	d, _ := md4.Decode(plain, []byte(stHash))

	buf := make([]byte, 10)
	res := md4.Encode(plain, d, buf)
	if res.Len != HexLen || res.Written != 10 || !res.Truncated() {
		t.Fatalf("result = %+v", res)
	}
	if !errors.Is(res.Err(), module.ErrBufferTooSmall) {
		t.Fatalf("Err() = %v", res.Err())
	}
	if string(buf) != stHash[:10] {
		t.Fatalf("prefix = %q", buf)
	}

	res = md4.Encode(plain, d, make([]byte, 64))
	if res.Truncated() || res.Err() != nil || res.Written != HexLen {
		t.Fatalf("large buffer result = %+v", res)
	}

	res = md4.Encode(plain, d, nil)
	if res.Len != HexLen || res.Written != 0 {
		t.Fatalf("nil buffer result = %+v", res)
	}
}

func TestByteSwapIdempotent(t *testing.T) {
	if ByteSwap32(0x2eb0b9b4) != 0xb4b9b02e {
		t.Fatal("ByteSwap32 wrong")
	}
	f := func(w uint32) bool { return ByteSwap32(ByteSwap32(w)) == w }
	if err := quick.Check(f, nil); err != nil {
		t.Fatal(err)
	}
}

func TestHexToU32(t *testing.T) {
	v, err := HexToU32([]byte("01020304"))
	if err != nil || v != 0x04030201 {
		t.Fatalf("HexToU32 = %08x, %v", v, err)
	}
	if _, err := HexToU32([]byte("0102030x")); !errors.Is(err, tokenizer.ErrInvalidCharacterClass) {
		t.Fatalf("bad digit: %v", err)
	}
	if _, err := HexToU32([]byte("010203")); !errors.Is(err, tokenizer.ErrLengthMismatch) {
		t.Fatalf("short: %v", err)
	}
}

func TestFromSumMatchesDecode(t *testing.T) {
	sum := []byte{0xb4, 0xb9, 0xb0, 0x2e, 0x6f, 0x09, 0xa9, 0xbd, 0x76, 0x0f, 0x38, 0x8b, 0x67, 0x35, 0x1e, 0x2b}
	d, _ := md4.Decode(plain, []byte(stHash))
	if FromSum(sum) != d {
		t.Fatalf("FromSum = %08x, want %08x", FromSum(sum), d)
	}
	if md4.Precompute(merkle, FromSum(sum)) != mustDecode(t, merkle) {
		t.Fatal("Precompute should match the shifted decode")
	}
}

func TestCodecConcurrent(t *testing.T) {
	done := make(chan struct{})
	for g := 0; g < 8; g++ {
		go func(seed uint32) {
			defer func() { done <- struct{}{} }()
			var buf [HexLen]byte
			for i := uint32(0); i < 1000; i++ {
				d := module.Digest{seed, i, seed ^ i, ^i}
				md4.Encode(merkle, d, buf[:])
				got, err := md4.Decode(merkle, buf[:])
				if err != nil || got != d {
					t.Errorf("round trip %v: got %v, %v", d, got, err)
					return
				}
			}
		}(uint32(g))
	}
	for g := 0; g < 8; g++ {
		<-done
	}
}

func mustDecode(t *testing.T, c *module.Config) module.Digest {
	t.Helper()
	d, err := md4.Decode(c, []byte(stHash))
	if err != nil {
		t.Fatal(err)
	}
	return d
}
