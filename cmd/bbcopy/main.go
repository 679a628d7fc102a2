package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func main() {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	root := &cobra.Command{
		Use:   "bbcopy",
		Short: "Copy delimited records into a columnar object through block buffers",
		Long: `bbcopy splits every line of the input into fields, appends field i to
column stream i, and flushes the streams stripe by stripe into a local object.
Defaults are read from BBCOPY_* environment variables.`,
		SilenceUsage: true,
	}

	var objectNum int64
	copyCmd := &cobra.Command{
		Use:   "copy <input>",
		Short: "Copy a file into a columnar object",
		Args:  cobra.ExactArgs(1),
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setupLogger(cfg.Debug)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer in.Close()

			report, err := runCopy(cmd.Context(), in, cfg, objectNum)
			if err != nil {
				return err
			}
			report.print(cmd.OutOrStdout())
			return nil
		},
	}

	flags := copyCmd.Flags()
	flags.StringVar(&cfg.BlockSize, "block-size", cfg.BlockSize, "block size of every stream buffer")
	flags.StringVar(&cfg.StripeSize, "stripe-size", cfg.StripeSize, "buffered bytes that trigger a stripe flush")
	flags.StringVar(&cfg.PoolLimit, "pool-limit", cfg.PoolLimit, "maximum memory lent by the block pool")
	flags.StringVar(&cfg.RateLimit, "rate-limit", cfg.RateLimit, "write throughput cap per second, 0 for none")
	flags.StringVar(&cfg.OutputDir, "output-dir", cfg.OutputDir, "directory of the object")
	flags.StringVar(&cfg.Delimiter, "delimiter", cfg.Delimiter, "field delimiter")
	flags.BoolVar(&cfg.Debug, "debug", cfg.Debug, "enable debug logs")
	flags.Int64Var(&objectNum, "object", 1, "object number")

	root.AddCommand(copyCmd)
	root.AddCommand(&cobra.Command{
		Use:   "natural-size <dir>",
		Short: "Print the natural write size of the file system holding dir",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			size, err := probeNaturalWriteSize(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), strconv.FormatUint(size, 10))
			return nil
		},
	})

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func setupLogger(debug bool) error {
	var (
		logger *zap.Logger
		err    error
	)
	if debug {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		return err
	}
	zap.ReplaceGlobals(logger)
	return nil
}
