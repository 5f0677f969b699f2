package main

import (
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/YuminosukeSato/scigo-neighbors/config"
	"github.com/YuminosukeSato/scigo-neighbors/pkg/errors"
	"github.com/YuminosukeSato/scigo-neighbors/pkg/log"
)

var (
	envFile string
	cfg     *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "spatialbench",
	Short: "Benchmark ball tree construction and search",
	Long: `spatialbench generates seeded random vectors, indexes them with a linear
scan and with ball trees of several leaf sizes, and verifies that every tree
answers k-NN and range queries exactly like the linear scan.

Defaults are read from SCIGO_* environment variables (optionally from a
.env file) and can be overridden by flags.

Example usage:
  spatialbench run --n 20000 --dim 8 --metric cosine
  spatialbench run --leaf-sizes 5,20,80 --parallel --plot timings.png
  spatialbench metrics`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return errors.Wrapf(err, "load %s", envFile)
		}
		var err error
		cfg, err = config.Load()
		if err != nil {
			return err
		}
		return log.Setup(os.Stderr, cfg.LogLevel, cfg.LogFormat)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Environment file with SCIGO_* defaults")
}
