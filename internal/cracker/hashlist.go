package cracker

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"sync"

	"edu/hashmodule/internal/module"
)

// ErrNoHashes is returned when a hash list has no usable line.
var ErrNoHashes = errors.New("no valid hashes loaded")

// HashList is the sorted, de-duplicated set of target digests of one mode.
// Lookups are safe for concurrent use.
type HashList struct {
	mod  module.Module
	conf *module.Config
	pos  module.Positions

	digests []module.Digest

	mu        sync.Mutex
	cracked   []bool
	remaining int

	// Rejected counts lines the module could not decode.
	Rejected int
	// Duplicates counts lines that decoded to a digest already loaded.
	Duplicates int
}

// LoadHashes reads one hash per line. Malformed lines are logged and
// skipped; only an I/O error or an empty result fails the load.
func (c *Cracker) LoadHashes(ctx context.Context, m module.Module, conf *module.Config, r io.Reader) (*HashList, error) {
	l := &HashList{mod: m, conf: conf, pos: m.DgstPos()}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo := 0
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		lineNo++
		line := bytes.TrimRight(scanner.Bytes(), "\r\n")
		if len(line) == 0 {
			continue
		}
		d, err := m.HashDecode(conf, line)
		if err != nil {
			l.Rejected++
			c.logger.Warn("rejected", "line", lineNo, "hash", string(line), "error", err)
			continue
		}
		l.digests = append(l.digests, d)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading hash list: %w", err)
	}

	sort.Slice(l.digests, func(i, j int) bool { return l.pos.Compare(l.digests[i], l.digests[j]) < 0 })
	uniq := l.digests[:0]
	for _, d := range l.digests {
		if len(uniq) > 0 && l.pos.Compare(d, uniq[len(uniq)-1]) == 0 {
			l.Duplicates++
			continue
		}
		uniq = append(uniq, d)
	}
	l.digests = uniq
	if len(l.digests) == 0 {
		return nil, ErrNoHashes
	}
	l.cracked = make([]bool, len(l.digests))
	l.remaining = len(l.digests)

	c.logger.Info("hashes loaded", "mode", m.Mode(), "hashes", len(l.digests),
		"rejected", l.Rejected, "duplicates", l.Duplicates)
	return l, nil
}

func (l *HashList) Len() int { return len(l.digests) }

// Find returns the index of d or -1.
func (l *HashList) Find(d module.Digest) int {
	i := sort.Search(len(l.digests), func(i int) bool { return l.pos.Compare(l.digests[i], d) >= 0 })
	if i < len(l.digests) && l.pos.Compare(l.digests[i], d) == 0 {
		return i
	}
	return -1
}

// Remaining is the number of hashes not cracked yet.
func (l *HashList) Remaining() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.remaining
}

// markCracked records a crack and reports whether it was new.
func (l *HashList) markCracked(i int) (first bool, remaining int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.cracked[i] {
		return false, l.remaining
	}
	l.cracked[i] = true
	l.remaining--
	return true, l.remaining
}

// Hash renders digest i back to text.
func (l *HashList) Hash(i int) string {
	buf := make([]byte, 64)
	res := l.mod.HashEncode(l.conf, l.digests[i], buf)
	return string(buf[:res.Written])
}

// Each calls fn with the text form of every loaded hash in list order.
func (l *HashList) Each(fn func(hash string)) {
	for i := range l.digests {
		fn(l.Hash(i))
	}
}
