package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/deepnoodle-ai/qmlc"
	"github.com/deepnoodle-ai/qmlc/qmltypes"
	"github.com/deepnoodle-ai/qmlc/registry"
	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/mitchellh/go-homedir"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// errCheckFailed is returned after compile errors have been printed.
var errCheckFailed = errors.New("compilation failed")

type app struct {
	v       *viper.Viper
	cfgFile string
	logger  zerolog.Logger
}

func newRootCommand() *cobra.Command {
	a := &app{v: viper.New(), logger: zerolog.Nop()}
	root := &cobra.Command{
		Use:           "qmlc",
		Short:         "Compile QML documents against registered native types",
		Version:       fmt.Sprintf("%s (%s)", version, commit),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.initConfig(cmd)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "", "config file (default is $HOME/.qmlc.yaml)")
	flags.StringSlice("types", nil, ".qmltypes files describing the native types")
	flags.Bool("no-color", false, "disable colored output")
	flags.String("log-level", "warn", "log level: debug, info, warn or error")
	flags.Bool("no-simplify", false, "keep translation bindings as compiled scripts")
	flags.Int("concurrency", 0, "number of documents compiled at once (default GOMAXPROCS)")
	_ = a.v.BindPFlags(flags)

	root.AddCommand(a.typesCommand(), a.checkCommand(), a.compileCommand())
	return root
}

// initConfig reads the config file and the QMLC_ environment variables.
// Flags take precedence over both.
func (a *app) initConfig(cmd *cobra.Command) error {
	if a.cfgFile != "" {
		a.v.SetConfigFile(a.cfgFile)
	} else if home, err := homedir.Dir(); err == nil {
		a.v.AddConfigPath(home)
		a.v.SetConfigName(".qmlc")
		a.v.SetConfigType("yaml")
	}
	a.v.SetEnvPrefix("QMLC")
	a.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	a.v.AutomaticEnv()
	if err := a.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if a.cfgFile != "" || !errors.As(err, &notFound) {
			return fmt.Errorf("reading config: %w", err)
		}
	}

	if a.v.GetBool("no-color") {
		color.NoColor = true
	}
	level, err := zerolog.ParseLevel(a.v.GetString("log-level"))
	if err != nil {
		return err
	}
	a.logger = zerolog.New(zerolog.ConsoleWriter{
		Out:     cmd.ErrOrStderr(),
		NoColor: !a.useColor(cmd.ErrOrStderr()),
	}).Level(level).With().Timestamp().Logger()
	return nil
}

// useColor reports whether output written to w should be colored.
func (a *app) useColor(w io.Writer) bool {
	if color.NoColor || a.v.GetBool("no-color") {
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// registry loads the configured .qmltypes files and files.
func (a *app) registry(files ...string) (*registry.Registry, error) {
	paths := append(a.v.GetStringSlice("types"), files...)
	if len(paths) == 0 {
		return nil, errors.New("no .qmltypes files given (use --types)")
	}
	reg := registry.New()
	for _, path := range paths {
		types, err := qmltypes.LoadFile(reg, path)
		if err != nil {
			return nil, err
		}
		a.logger.Debug().Str("file", path).Int("types", len(types)).Msg("loaded type descriptions")
	}
	return reg, nil
}

func (a *app) compileOptions(reg *registry.Registry) []qmlc.Option {
	return []qmlc.Option{
		qmlc.WithRegistry(reg),
		qmlc.WithLogger(a.logger),
		qmlc.WithSimplification(!a.v.GetBool("no-simplify")),
		qmlc.WithConcurrency(a.v.GetInt("concurrency")),
	}
}
