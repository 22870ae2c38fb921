package main

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	_defaultInputFile     = "input.txt"
	_defaultMode          = "both"
	_defaultOutput        = "text"
	_defaultCookiesFile   = "Cookies"
	_defaultRetries       = 4
	_defaultFetchInterval = 2 * time.Second
	_defaultFetchTimeout  = 30 * time.Second
	_envPrefix            = "ALMANAC"
)

type _App struct {
	viper   *viper.Viper
	config  Config
	logger  *zap.Logger
	verbose bool
	cfgFile string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		eprintln(err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	app := &_App{viper: viper.New(), logger: zap.NewNop()}

	root := &cobra.Command{
		Use:   "almanac",
		Short: "Find the lowest location number for the seeds of an almanac",
		Long: `almanac moves seed numbers through the maps of an almanac, one map
after another, and reports the lowest location number reached.

Seed ranges are moved as whole ranges, so inputs describing billions of
seeds are solved as quickly as inputs describing a handful.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := app.loadConfig(); err != nil {
				return err
			}
			return app.initLogger()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = app.logger.Sync()
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&app.cfgFile, "config", "", "config file (default ./almanac.yaml if present)")
	flags.BoolVarP(&app.verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(
		newSolveCmd(app),
		newFetchCmd(app),
		newConvertCmd(app),
	)
	return root
}

func (app *_App) loadConfig() error {
	v := app.viper
	v.SetEnvPrefix(_envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if app.cfgFile != "" {
		v.SetConfigFile(app.cfgFile)
	} else {
		v.SetConfigName("almanac")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if app.cfgFile != "" || !errors.As(err, &notFound) {
			return fmt.Errorf("reading config: %w", err)
		}
	}

	config, err := decodeConfig(v)
	if err != nil {
		return err
	}
	app.config = config
	return nil
}

func (app *_App) initLogger() error {
	config := zap.NewProductionConfig()
	config.Encoding = "console"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	if app.verbose {
		config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	logger, err := config.Build()
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	app.logger = logger
	return nil
}
