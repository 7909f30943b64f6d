// fastsum sums newline-delimited ASCII decimal integers from a file or
// stdin and prints the total.
//
// Usage:
//
//	fastsum numbers.txt
//	generate | fastsum --validate -j 0
//	FASTSUM_BATCH_SIZE=20 fastsum --verbose numbers.txt
package main

import (
	"fmt"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	fastsum "github.com/biggeezerdevelopment/fastsum"
	"github.com/biggeezerdevelopment/fastsum/internal/input"
	"github.com/biggeezerdevelopment/fastsum/internal/kernel"
)

var log = logrus.New()

func main() {
	log.SetOutput(os.Stderr)
	if err := newRootCmd().Execute(); err != nil {
		log.Error(err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "fastsum [file]",
		Short: "Sum newline-delimited ASCII decimal integers",
		Long: `fastsum sums a stream of newline-separated decimal integers in
[0, 2147483647] with a SWAR kernel and writes the 64-bit total to stdout.

The fast path assumes conforming input; pass --validate when that is not
guaranteed. --batch-size above 14 trades a small, quantifiable chance of a
silently wrong result for fewer accumulator flushes.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(v, args)
		},
	}

	fl := cmd.Flags()
	fl.Int("batch-size", fastsum.SafeBatchSize, "chunk iterations between accumulator flushes")
	fl.Bool("strict", false, "fail on input patterns outside the supported distribution")
	fl.Bool("validate", false, "validate input before summing")
	fl.IntP("workers", "j", 1, "parallel workers (0 = all cores)")
	fl.String("config", "", "config file (yaml/toml/json)")
	fl.BoolP("verbose", "v", false, "log diagnostics to stderr")

	_ = v.BindPFlags(fl)
	v.SetEnvPrefix("FASTSUM")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	return cmd
}

func run(v *viper.Viper, args []string) error {
	if cfg := v.GetString("config"); cfg != "" {
		v.SetConfigFile(cfg)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("read config: %w", err)
		}
	}
	if v.GetBool("verbose") {
		log.SetLevel(logrus.DebugLevel)
	} else {
		log.SetLevel(logrus.WarnLevel)
	}

	var (
		data    []byte
		release = func() {}
		err     error
	)
	if len(args) == 1 {
		data, release, err = input.ReadFile(args[0])
	} else {
		data, err = input.ReadAll(os.Stdin)
	}
	if err != nil {
		return err
	}
	defer release()

	opts := fastsum.Options{
		BatchSize: v.GetInt("batch-size"),
		Strict:    v.GetBool("strict"),
		Validate:  v.GetBool("validate"),
		Workers:   resolveWorkers(v.GetInt("workers")),
	}
	if opts.BatchSize > fastsum.SafeBatchSize {
		log.Warnf("batch size %d exceeds the safe bound %d; results may silently overflow",
			opts.BatchSize, fastsum.SafeBatchSize)
	}

	log.WithFields(logrus.Fields{
		"bytes":      len(data),
		"cpu":        kernel.Features(),
		"batch_size": opts.BatchSize,
		"workers":    opts.Workers,
	}).Debug("input loaded")

	start := time.Now()
	total, err := fastsum.SumWithOptions(data, opts)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	log.WithFields(logrus.Fields{
		"elapsed": elapsed,
		"mb_s":    fmt.Sprintf("%.1f", float64(len(data))/1e6/elapsed.Seconds()),
	}).Debug("scan complete")

	fmt.Printf("%d\n", total)
	return nil
}

// resolveWorkers maps the CLI convention (0 = all cores) onto
// fastsum.Options, whose zero Workers value means single-threaded.
func resolveWorkers(n int) int {
	if n == 0 {
		return runtime.GOMAXPROCS(0)
	}
	return n
}
