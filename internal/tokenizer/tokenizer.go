// Package tokenizer splits one line of hash text into a fixed number of
// fields and validates each field before any module interprets it.
//
// The tokenizer never allocates: a Token is a plain value with fixed-size
// arrays and every field it yields is a view into the caller's line.
package tokenizer

import (
	"bytes"
	"errors"
)

// MaxTokens is the most fields a single Token can describe.
const MaxTokens = 16

// Attr is a bitset of per-field checks.
type Attr uint32

const (
	// AttrFixedLength takes exactly LenMin bytes for the field instead of
	// searching for the separator.
	AttrFixedLength Attr = 1 << iota
	// AttrVerifyLength rejects a field whose length is outside [LenMin, LenMax].
	AttrVerifyLength
	// AttrVerifyHex rejects a field containing anything but [0-9a-fA-F].
	AttrVerifyHex
	// AttrVerifyDigit rejects a field containing anything but [0-9].
	AttrVerifyDigit
	// AttrVerifyBase64 rejects a field outside the standard base64 alphabet.
	AttrVerifyBase64
)

var (
	// ErrLengthMismatch means a field is shorter or longer than allowed.
	ErrLengthMismatch = errors.New("token length exception")
	// ErrInvalidCharacterClass means a field holds a byte outside its class.
	ErrInvalidCharacterClass = errors.New("token encoding exception")
	// ErrSeparatorUnmatched means a field's separator never appears.
	ErrSeparatorUnmatched = errors.New("separator unmatched")
	// ErrTokenCount means Token.Count is outside 1..MaxTokens.
	ErrTokenCount = errors.New("invalid token count")
)

// Token describes how to split a line and, after Tokenize, holds the result.
// Build a fresh Token per line; it is not safe to share one between
// goroutines.
type Token struct {
	Count  int
	Sep    [MaxTokens]byte
	LenMin [MaxTokens]int
	LenMax [MaxTokens]int
	Attr   [MaxTokens]Attr

	// Filled by Tokenize. Buf[i] aliases the line passed in.
	Buf [MaxTokens][]byte
	Len [MaxTokens]int
}

// Tokenize splits line into t.Count fields and runs the checks named by
// t.Attr on each. Fields are cut left to right; the last field takes the
// remainder of the line.
func Tokenize(line []byte, t *Token) error {
	if t.Count < 1 || t.Count > MaxTokens {
		return ErrTokenCount
	}

	rest := line
	for i := 0; i < t.Count-1; i++ {
		if t.Attr[i]&AttrFixedLength != 0 {
			n := t.LenMin[i]
			if n > len(rest) {
				return ErrLengthMismatch
			}
			t.Buf[i], t.Len[i] = rest[:n:n], n
			rest = rest[n:]
			continue
		}
		idx := bytes.IndexByte(rest, t.Sep[i])
		if idx < 0 {
			return ErrSeparatorUnmatched
		}
		t.Buf[i], t.Len[i] = rest[:idx:idx], idx
		rest = rest[idx+1:]
	}
	last := t.Count - 1
	t.Buf[last], t.Len[last] = rest, len(rest)

	for i := 0; i < t.Count; i++ {
		attr := t.Attr[i]
		if attr&AttrFixedLength != 0 && t.Len[i] != t.LenMin[i] {
			return ErrLengthMismatch
		}
		if attr&AttrVerifyLength != 0 {
			if t.Len[i] < t.LenMin[i] || t.Len[i] > t.LenMax[i] {
				return ErrLengthMismatch
			}
		}
		if attr&AttrVerifyHex != 0 && !IsHex(t.Buf[i]) {
			return ErrInvalidCharacterClass
		}
		if attr&AttrVerifyDigit != 0 && !isDigits(t.Buf[i]) {
			return ErrInvalidCharacterClass
		}
		if attr&AttrVerifyBase64 != 0 && !isBase64(t.Buf[i]) {
			return ErrInvalidCharacterClass
		}
	}
	return nil
}

// IsHex reports whether every byte of b is a hexadecimal digit.
func IsHex(b []byte) bool {
	for _, c := range b {
		if HexValue(c) < 0 {
			return false
		}
	}
	return true
}

// HexValue returns the value of a single hex digit, or -1.
func HexValue(c byte) int {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0')
	case c >= 'a' && c <= 'f':
		return int(c-'a') + 10
	case c >= 'A' && c <= 'F':
		return int(c-'A') + 10
	}
	return -1
}

func isDigits(b []byte) bool {
	for _, c := range b {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

func isBase64(b []byte) bool {
	pad := 0
	for _, c := range b {
		switch {
		case c == '=':
			pad++
		case pad > 0:
			return false
		case c >= 'A' && c <= 'Z', c >= 'a' && c <= 'z', c >= '0' && c <= '9', c == '+', c == '/':
		default:
			return false
		}
	}
	return pad <= 2
}
