package cracker

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"runtime"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"edu/hashmodule/internal/module"
	"edu/hashmodule/pkg/workerpool"
)

// ErrNoKernel is returned when a module has no CPU reference kernel.
var ErrNoKernel = errors.New("module has no CPU kernel")

type Options struct {
	Workers int
	// LogPath, if set, receives every event as a JSON line.
	LogPath string
	Logger  *slog.Logger
	// ProgressEvery is the number of candidates between progress events.
	ProgressEvery uint64
	// BatchSize is the number of candidates handed to a worker at once.
	BatchSize int
}

type Crack struct {
	Hash      string `json:"hash"`
	Plaintext string `json:"plaintext"`
}

type Result struct {
	Cracked []Crack `json:"cracked"`
	// Tried counts candidates that reached the kernel.
	Tried uint64 `json:"tried"`
	// Skipped counts candidates outside the module's length bounds.
	Skipped   uint64        `json:"skipped"`
	Remaining int           `json:"remaining"`
	Duration  time.Duration `json:"duration_ns"`
}

type Cracker struct {
	opts    Options
	logger  *slog.Logger
	logFile *os.File
}

func New(opts Options) *Cracker {
	c := &Cracker{opts: opts, logger: opts.Logger}
	if c.logger == nil {
		c.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if opts.LogPath != "" {
		f, err := os.Create(opts.LogPath)
		if err != nil {
			c.logger.Warn("event log disabled", "path", opts.LogPath, "error", err)
		} else {
			c.logFile = f
			c.logger = slog.New(teeHandler{c.logger.Handler(), slog.NewJSONHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug})})
		}
	}
	return c
}

func (c *Cracker) Close() error {
	if c.logFile != nil {
		return c.logFile.Close()
	}
	return nil
}

func (c *Cracker) workers() int {
	workers := c.opts.Workers
	if workers <= 0 || workers > runtime.NumCPU()*4 {
		workers = runtime.NumCPU()
	}
	return workers
}

// session is the shared state of one attack.
type session struct {
	c      *Cracker
	mod    module.Module
	conf   *module.Config
	list   *HashList
	kernel module.ByteDigester
	batch  module.BatchDigester
	cancel context.CancelFunc

	pwMin, pwMax uint32
	every        uint64

	tried   atomic.Uint64
	skipped atomic.Uint64

	mu      sync.Mutex
	cracked []Crack
}

// feeder pushes candidate batches into submit until the source is exhausted
// or submit returns false.
type feeder func(ctx context.Context, submit func([][]byte) bool) error

func (c *Cracker) run(ctx context.Context, m module.Module, conf *module.Config, list *HashList, attack string, feed feeder) (Result, error) {
	start := time.Now()

	kernel, ok := m.(module.ByteDigester)
	if !ok {
		return Result{}, ErrNoKernel
	}
	batch, _ := m.(module.BatchDigester)
	if list.Remaining() == 0 {
		return Result{Duration: time.Since(start)}, nil
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	every := c.opts.ProgressEvery
	if every == 0 {
		every = 50000
	}
	s := &session{
		c: c, mod: m, conf: conf, list: list,
		kernel: kernel, batch: batch, cancel: cancel,
		pwMin: m.PwMin(conf), pwMax: m.PwMax(conf),
		every: every,
	}

	workers := c.workers()
	c.logger.Info("start", "attack", attack, "mode", m.Mode(), "hash_name", m.HashName(),
		"workers", workers, "hashes", list.Len(), "optimized", conf.Optimized(),
		"pw_min", s.pwMin, "pw_max", s.pwMax)

	pool := workerpool.New[[][]byte](ctx, workers, s.work)
	err := feed(ctx, pool.Submit)
	pool.Close()

	res := Result{
		Tried:     s.tried.Load(),
		Skipped:   s.skipped.Load(),
		Remaining: list.Remaining(),
		Duration:  time.Since(start),
	}
	s.mu.Lock()
	res.Cracked = append(res.Cracked, s.cracked...)
	s.mu.Unlock()
	sort.Slice(res.Cracked, func(i, j int) bool { return res.Cracked[i].Hash < res.Cracked[j].Hash })

	c.logger.Info("done", "attack", attack, "cracked", len(res.Cracked), "remaining", res.Remaining,
		"tried", res.Tried, "skipped", res.Skipped, "duration_ms", res.Duration.Milliseconds())

	if err != nil && !errors.Is(err, context.Canceled) {
		return res, err
	}
	return res, nil
}

func (s *session) work(_ context.Context, plains [][]byte) {
	valid := make([][]byte, 0, len(plains))
	for _, p := range plains {
		if n := uint32(len(p)); n < s.pwMin || n > s.pwMax {
			s.skipped.Add(1)
			continue
		}
		valid = append(valid, p)
	}
	if len(valid) == 0 {
		return
	}

	var digests []module.Digest
	if s.batch != nil && len(valid) > 1 {
		digests = s.batch.DigestMany(s.conf, valid)
	} else {
		digests = make([]module.Digest, len(valid))
		for i, p := range valid {
			digests[i] = s.kernel.DigestBytes(s.conf, p)
		}
	}

	for i, d := range digests {
		idx := s.list.Find(d)
		if idx < 0 {
			continue
		}
		first, remaining := s.list.markCracked(idx)
		if !first {
			continue
		}
		crack := Crack{Hash: s.list.Hash(idx), Plaintext: string(valid[i])}
		s.mu.Lock()
		s.cracked = append(s.cracked, crack)
		s.mu.Unlock()
		s.c.logger.Info("found", "hash", crack.Hash, "candidate", crack.Plaintext, "remaining", remaining)
		if remaining == 0 {
			s.cancel()
		}
	}

	before := s.tried.Load()
	after := s.tried.Add(uint64(len(valid)))
	if before/s.every != after/s.every {
		s.c.logger.Debug("progress", "tried", after, "skipped", s.skipped.Load(), "remaining", s.list.Remaining())
	}
}
