// Command xrlayer-sim drives the input layer against an in-memory runtime.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/wippyai/xr-input-layer/config"
	"github.com/wippyai/xr-input-layer/layer"
)

type options struct {
	configFile string
	logLevel   string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:           "xrlayer-sim",
		Short:         "Exercise the input layer against a simulated runtime",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.configFile, "config", os.Getenv(config.EnvVar), "layer configuration file")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "override the configured console log level")

	root.AddCommand(
		newScenarioCmd(opts),
		newNegotiateCmd(opts),
		newTUICmd(opts),
		newBindingsCmd(),
	)
	return root
}

// load reads the configuration and builds the logger it describes.
func (o *options) load() (*config.Config, *zap.Logger, func(), error) {
	cfg := config.Default()
	if o.configFile != "" {
		loaded, err := config.Load(o.configFile)
		if err != nil {
			return nil, nil, nil, err
		}
		cfg = loaded
	}
	if o.logLevel != "" {
		cfg.Log.Level = o.logLevel
		if err := cfg.Validate(); err != nil {
			return nil, nil, nil, err
		}
	}
	log, closeLog, err := cfg.Logger()
	if err != nil {
		return nil, nil, nil, err
	}
	layer.SetLogger(log)
	return cfg, log, closeLog, nil
}
