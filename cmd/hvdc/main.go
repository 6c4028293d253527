package main

import (
	"errors"
	"io/fs"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/ohowland/cgc_hvdc/internal/pkg/conversion"
	"github.com/spf13/cobra"
)

const version = "v0.1.0"

type options struct {
	config string
}

func envOr(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

// loadConfig reads the conversion configuration. The default file is
// optional, an explicitly given one is not.
func (o *options) loadConfig(cmd *cobra.Command) (conversion.Config, error) {
	cfg, err := conversion.LoadConfig(o.config)
	if f := cmd.Flag("config"); errors.Is(err, fs.ErrNotExist) && (f == nil || !f.Changed) {
		log.Println("[Main] No configuration at", o.config, "using defaults")
		return conversion.DefaultConfig(), nil
	}
	return cfg, err
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:           "hvdc",
		Short:         "Reconstruct HVDC links from DC grid topology",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.config, "config",
		envOr("HVDC_CONFIG", "./config/conversion.json"), "conversion configuration file")

	root.AddCommand(newConvertCmd(opts))
	root.AddCommand(newConvertSQLCmd(opts))
	root.AddCommand(newServeCmd(opts))
	return root
}

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Println("[Main] .env:", err)
	}

	log.Println("[Main] Starting HVDC", version)
	if err := newRootCmd().Execute(); err != nil {
		log.Println("[Main]", err)
		os.Exit(1)
	}
}
