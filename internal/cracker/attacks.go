package cracker

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"

	"edu/hashmodule/internal/module"
	"edu/hashmodule/pkg/mask"
)

func (c *Cracker) batchSize() int {
	if c.opts.BatchSize > 0 {
		return c.opts.BatchSize
	}
	return 256
}

// CrackWordlist tries every line of the file at wordlistPath. An empty line
// is the empty password.
func (c *Cracker) CrackWordlist(ctx context.Context, m module.Module, conf *module.Config, list *HashList, wordlistPath string) (Result, error) {
	if wordlistPath == "" {
		return Result{}, errors.New("wordlist required")
	}
	f, err := os.Open(wordlistPath)
	if err != nil {
		return Result{}, err
	}
	defer f.Close()

	size := c.batchSize()
	return c.run(ctx, m, conf, list, "wordlist", func(ctx context.Context, submit func([][]byte) bool) error {
		scanner := bufio.NewScanner(f)
		scanner.Buffer(make([]byte, 0, 1024*1024), 1024*1024)

		batch := make([][]byte, 0, size)
		for scanner.Scan() {
			line := scanner.Bytes()
			if n := len(line); n > 0 && line[n-1] == '\r' {
				line = line[:n-1]
			}
			batch = append(batch, append([]byte(nil), line...))
			if len(batch) == size {
				if !submit(batch) {
					return ctx.Err()
				}
				batch = make([][]byte, 0, size)
			}
		}
		if err := scanner.Err(); err != nil {
			return fmt.Errorf("reading wordlist: %w", err)
		}
		if len(batch) > 0 && !submit(batch) {
			return ctx.Err()
		}
		return nil
	})
}

// CrackMask tries every candidate of a mask such as "?u?l?l?l?d?d".
func (c *Cracker) CrackMask(ctx context.Context, m module.Module, conf *module.Config, list *HashList, pattern string) (Result, error) {
	g, err := mask.NewGenerator(pattern)
	if err != nil {
		return Result{}, err
	}
	c.logger.Info("mask", "pattern", pattern, "keyspace", g.Keyspace(), "length", g.Len())

	size := uint64(c.batchSize())
	return c.run(ctx, m, conf, list, "mask", func(ctx context.Context, submit func([][]byte) bool) error {
		for start := uint64(0); start < g.Keyspace(); {
			end := start + size
			if end < start || end > g.Keyspace() {
				end = g.Keyspace()
			}
			it := g.Range(start, end)
			slab := make([]byte, 0, int(size)*g.Len())
			batch := make([][]byte, 0, size)
			for {
				cand, ok := it.Next()
				if !ok {
					break
				}
				off := len(slab)
				slab = append(slab, cand...)
				batch = append(batch, slab[off:len(slab):len(slab)])
			}
			if !submit(batch) {
				return ctx.Err()
			}
			start = end
		}
		return nil
	})
}
