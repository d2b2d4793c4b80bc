package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"edu/hashmodule/internal/cracker"
	"edu/hashmodule/internal/module"
	_ "edu/hashmodule/internal/modules"
	"edu/hashmodule/internal/selftest"
)

var (
	workers   int
	timeout   time.Duration
	config    string
	logPath   string
	verbose   bool
	optimized bool
	pwMin     uint32
	pwMax     uint32

	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "hashmodule",
	Short: "hashmodule - hash-mode descriptors with a CPU verification host",
	Long: `hashmodule loads unsalted raw hashes (MD5, MD4, NTLM), validates them
through each mode's codec, runs the mode self-tests and verifies candidates
from a wordlist or mask on the CPU.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if config != "" {
			viper.SetConfigFile(config)
			if err := viper.ReadInConfig(); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: could not read config file: %v\n", err)
			}
		}
		level := slog.LevelWarn
		if verbose || viper.GetBool("verbose") {
			level = slog.LevelDebug
		}
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List supported hash modes",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("Supported hash modes:")
		for _, m := range module.List() {
			fmt.Printf("  %5d  %s\n", m.Mode(), m.HashName())
		}
	},
}

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show the descriptor of a hash mode",
	RunE:  runInfo,
}

var selftestCmd = &cobra.Command{
	Use:   "selftest",
	Short: "Run the self-test of one or all hash modes",
	RunE:  runSelftest,
}

var hashesCmd = &cobra.Command{
	Use:   "hashes",
	Short: "Validate a hash list and print the canonical form of each hash",
	RunE:  runHashes,
}

var crackCmd = &cobra.Command{
	Use:   "crack",
	Short: "Verify wordlist or mask candidates against a hash list",
	RunE:  runCrack,
}

func init() {
	rootCmd.PersistentFlags().IntVarP(&workers, "workers", "t", 0, "Number of worker threads (default: CPU cores)")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 0, "Timeout for cracking attempts")
	rootCmd.PersistentFlags().StringVar(&config, "config", "", "Config file path")
	rootCmd.PersistentFlags().StringVar(&logPath, "log", "", "Log file path for events (JSON lines)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().BoolVarP(&optimized, "optimized-kernel-enable", "O", false, "Use the optimized compute path (limits password length)")
	rootCmd.PersistentFlags().Uint32Var(&pwMin, "pw-min", 0, "Skip candidates shorter than this")
	rootCmd.PersistentFlags().Uint32Var(&pwMax, "pw-max", 0, "Skip candidates longer than this")

	for _, cmd := range []*cobra.Command{infoCmd, hashesCmd, crackCmd} {
		cmd.Flags().Uint32P("hash-type", "m", 1000, "Hash mode")
	}
	selftestCmd.Flags().Int64P("hash-type", "m", -1, "Hash mode (default: all)")

	hashesCmd.Flags().StringP("file", "f", "", "Hash list file (required)")
	hashesCmd.MarkFlagRequired("file")

	crackCmd.Flags().StringP("file", "f", "", "Hash list file (required)")
	crackCmd.Flags().StringP("wordlist", "w", "", "Wordlist file path")
	crackCmd.Flags().String("mask", "", "Mask pattern (e.g., ?l?l?l?d?d)")
	crackCmd.Flags().String("potfile", "", "Potfile path (default: hashmodule.potfile)")
	crackCmd.Flags().Bool("potfile-disable", false, "Do not read or write the potfile")
	crackCmd.MarkFlagRequired("file")

	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(infoCmd)
	rootCmd.AddCommand(selftestCmd)
	rootCmd.AddCommand(hashesCmd)
	rootCmd.AddCommand(crackCmd)

	viper.SetEnvPrefix("HASHMODULE")
	viper.AutomaticEnv()
	viper.SetDefault("workers", runtime.NumCPU())
	viper.SetDefault("optimized", false)
	viper.SetDefault("potfile", "hashmodule.potfile")
	viper.BindPFlag("optimized", rootCmd.PersistentFlags().Lookup("optimized-kernel-enable"))
	viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	viper.BindPFlag("potfile", crackCmd.Flags().Lookup("potfile"))
}

func userOptions() module.UserOptions {
	return module.UserOptions{
		OptimizedKernel: viper.GetBool("optimized"),
		PwMin:           pwMin,
		PwMax:           pwMax,
	}
}

func selectedModule(cmd *cobra.Command) (module.Module, error) {
	mode, _ := cmd.Flags().GetUint32("hash-type")
	return module.Get(mode)
}

func runInfo(cmd *cobra.Command, args []string) error {
	m, err := selectedModule(cmd)
	if err != nil {
		return err
	}
	c := module.NewConfig(m, userOptions())
	pos := m.DgstPos()

	fmt.Printf("Hash mode......: %d\n", m.Mode())
	fmt.Printf("Hash name......: %s\n", m.HashName())
	fmt.Printf("Digest size....: %s\n", m.DgstSize())
	fmt.Printf("Digest pos.....: %d %d %d %d\n", pos[0], pos[1], pos[2], pos[3])
	fmt.Printf("Salt type......: %s\n", m.SaltType())
	fmt.Printf("Attack exec....: %s\n", m.AttackExec())
	fmt.Printf("Opti type......: %s\n", m.OptiType())
	fmt.Printf("Opts type......: %s\n", m.OptsType())
	fmt.Printf("Active opti....: %s\n", c.OptiType)
	fmt.Printf("Password len...: %d-%d\n", m.PwMin(c), m.PwMax(c))
	fmt.Printf("Salt len.......: %d-%d\n", m.SaltMin(c), m.SaltMax(c))
	fmt.Printf("Example hash...: %s\n", m.StHash())
	fmt.Printf("Example pass...: %s\n", m.StPass())
	return nil
}

func runSelftest(cmd *cobra.Command, args []string) error {
	mode, _ := cmd.Flags().GetInt64("hash-type")
	var results []selftest.Result
	if mode < 0 {
		results = selftest.RunAll(userOptions())
	} else {
		m, err := module.Get(uint32(mode))
		if err != nil {
			return err
		}
		results = []selftest.Result{selftest.Run(m, userOptions())}
	}

	failed := 0
	for _, r := range results {
		status := "passed"
		if !r.OK() {
			status = "FAILED: " + r.Err.Error()
			failed++
		} else if !r.Kernel {
			status = "passed (codec only)"
		}
		fmt.Printf("  %5d  %-6s %s\n", r.Mode, r.Name, status)
	}
	if failed > 0 {
		return fmt.Errorf("%d self-test(s) failed", failed)
	}
	return nil
}

func runHashes(cmd *cobra.Command, args []string) error {
	m, err := selectedModule(cmd)
	if err != nil {
		return err
	}
	path, _ := cmd.Flags().GetString("file")
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	c := cracker.New(cracker.Options{Logger: logger})
	defer c.Close()
	conf := module.NewConfig(m, userOptions())
	list, err := c.LoadHashes(cmd.Context(), m, conf, f)
	if err != nil {
		return err
	}
	list.Each(func(h string) { fmt.Println(h) })
	fmt.Fprintf(os.Stderr, "%d hashes, %d rejected, %d duplicates\n", list.Len(), list.Rejected, list.Duplicates)
	return nil
}

func runCrack(cmd *cobra.Command, args []string) error {
	m, err := selectedModule(cmd)
	if err != nil {
		return err
	}
	hashFile, _ := cmd.Flags().GetString("file")
	wordlist, _ := cmd.Flags().GetString("wordlist")
	maskPattern, _ := cmd.Flags().GetString("mask")
	potDisabled, _ := cmd.Flags().GetBool("potfile-disable")
	if (wordlist == "") == (maskPattern == "") {
		return errors.New("exactly one of --wordlist or --mask is required")
	}

	opts := userOptions()
	if r := selftest.Run(m, opts); !r.OK() {
		return fmt.Errorf("self-test failed for mode %d: %w", m.Mode(), r.Err)
	}

	numWorkers := viper.GetInt("workers")
	if workers > 0 {
		numWorkers = workers
	}
	c := cracker.New(cracker.Options{
		Workers: numWorkers,
		LogPath: logPath,
		Logger:  logger,
	})
	defer c.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	f, err := os.Open(hashFile)
	if err != nil {
		return err
	}
	conf := module.NewConfig(m, opts)
	list, err := c.LoadHashes(ctx, m, conf, f)
	f.Close()
	if err != nil {
		return err
	}

	potPath := viper.GetString("potfile")
	if !potDisabled {
		known, err := loadPot(potPath)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			logger.Warn("potfile not read", "path", potPath, "error", err)
		}
		for _, k := range list.Preload(known) {
			fmt.Printf("%s:%s (potfile)\n", k.Hash, k.Plaintext)
		}
	}

	start := time.Now()
	var result cracker.Result
	if wordlist != "" {
		result, err = c.CrackWordlist(ctx, m, conf, list, wordlist)
	} else {
		result, err = c.CrackMask(ctx, m, conf, list, maskPattern)
	}
	if err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	for _, cr := range result.Cracked {
		fmt.Printf("%s:%s\n", cr.Hash, cr.Plaintext)
	}
	if !potDisabled && len(result.Cracked) > 0 {
		if err := appendPot(potPath, result.Cracked); err != nil {
			logger.Warn("potfile not updated", "path", potPath, "error", err)
		}
	}

	duration := time.Since(start)
	fmt.Printf("Tried %d candidates (%d skipped) in %v\n", result.Tried, result.Skipped, duration)
	fmt.Printf("Recovered %d/%d hashes\n", list.Len()-list.Remaining(), list.Len())
	if errors.Is(err, context.DeadlineExceeded) {
		fmt.Println("Stopped: timeout reached")
	}
	return nil
}

func loadPot(path string) ([]cracker.Crack, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	known, bad, err := cracker.ReadPotfile(f)
	if bad > 0 {
		logger.Warn("skipped malformed potfile lines", "path", path, "lines", bad)
	}
	return known, err
}

func appendPot(path string, cracks []cracker.Crack) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return err
	}
	if err := cracker.WritePotfile(f, cracks); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
