package cracker

import (
	"bufio"
	"bytes"
	"encoding/hex"
	"fmt"
	"io"
	"strings"
)

// WritePotfile appends one "hash:plain" line per crack. Plains that contain
// ':' or non-printable bytes are written as $HEX[...].
func WritePotfile(w io.Writer, cracks []Crack) error {
	bw := bufio.NewWriter(w)
	for _, c := range cracks {
		if _, err := fmt.Fprintf(bw, "%s:%s\n", c.Hash, encodePlain(c.Plaintext)); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// ReadPotfile parses potfile lines written by WritePotfile. Lines without a
// separator or with a malformed $HEX[...] plain are skipped and counted in
// bad; only a read error fails the whole file.
func ReadPotfile(r io.Reader) (cracks []Crack, bad int, err error) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := bytes.TrimRight(scanner.Bytes(), "\r")
		if len(line) == 0 {
			continue
		}
		i := bytes.IndexByte(line, ':')
		if i < 0 {
			bad++
			continue
		}
		plain, err := decodePlain(string(line[i+1:]))
		if err != nil {
			bad++
			continue
		}
		cracks = append(cracks, Crack{Hash: string(line[:i]), Plaintext: plain})
	}
	return cracks, bad, scanner.Err()
}

// Preload marks hashes already present in a potfile as cracked and returns
// them. Lines of other modes simply fail to decode and are ignored.
func (l *HashList) Preload(known []Crack) []Crack {
	var hit []Crack
	for _, k := range known {
		d, err := l.mod.HashDecode(l.conf, []byte(k.Hash))
		if err != nil {
			continue
		}
		idx := l.Find(d)
		if idx < 0 {
			continue
		}
		if first, _ := l.markCracked(idx); first {
			hit = append(hit, Crack{Hash: l.Hash(idx), Plaintext: k.Plaintext})
		}
	}
	return hit
}

func encodePlain(p string) string {
	if strings.HasPrefix(p, "$HEX[") {
		return "$HEX[" + hex.EncodeToString([]byte(p)) + "]"
	}
	for i := 0; i < len(p); i++ {
		if c := p[i]; c < 0x20 || c > 0x7e || c == ':' {
			return "$HEX[" + hex.EncodeToString([]byte(p)) + "]"
		}
	}
	return p
}

func decodePlain(p string) (string, error) {
	if strings.HasPrefix(p, "$HEX[") && strings.HasSuffix(p, "]") {
		b, err := hex.DecodeString(p[5 : len(p)-1])
		if err != nil {
			return "", fmt.Errorf("potfile: bad $HEX plain: %w", err)
		}
		return string(b), nil
	}
	return p, nil
}
