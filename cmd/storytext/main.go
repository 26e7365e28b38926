package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"runtime/debug"
	"strings"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	pflag "github.com/spf13/pflag"

	httpAdapter "github.com/bft-labs/storytext/internal/adapters/http"
	"github.com/bft-labs/storytext/internal/adapters/metrics"
	"github.com/bft-labs/storytext/internal/cliconfig"
	"github.com/bft-labs/storytext/pkg/storytext"
)

const helpDescription = `
Extract story text from rectangular selections on PDF pages and tag
editions with keywords, using external extraction scripts.

Selections are read in sequence order across pages. Script failures are
logged and yield no text rather than aborting the run.

Configure via file ($HOME/.storytext/config.toml), STORYTEXT_* environment
variables, or flags. Flags win over the environment, which wins over the file.
`

var exampleUsage = strings.TrimSpace(`
  storytext extract --pdf edition.pdf --page 0 --region 40,60,200,300
  storytext extract --pdf edition.pdf --selections selections.json
  storytext tag --input edition.json
  storytext spool --inbox /var/spool/storytext --metrics-addr :9464
`)

func getVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

// app carries the configuration shared by all subcommands.
type app struct {
	cfg     cliconfig.Config
	cfgPath string
	log     zerolog.Logger
}

func main() {
	a := &app{
		cfg: cliconfig.DefaultConfig(),
		log: zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger(),
	}

	root := &cobra.Command{
		Use:           "storytext",
		Short:         "Extract ordered story text from PDF selections",
		Long:          strings.TrimSpace(helpDescription),
		Example:       exampleUsage,
		Version:       fmt.Sprintf("%s %s/%s", getVersion(), runtime.GOOS, runtime.GOARCH),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.cfgPath, "config", "", "path to config file (default: $HOME/.storytext/config.toml)")
	pf.StringVar(&a.cfg.ScriptDir, "script-dir", a.cfg.ScriptDir, "base directory of the extraction and tagging scripts")
	pf.StringVar(&a.cfg.Interpreter, "interpreter", a.cfg.Interpreter, "interpreter used to run the scripts (empty runs them directly)")
	pf.StringVar(&a.cfg.ExtractScript, "extract-script", a.cfg.ExtractScript, "extraction script, relative to script-dir")
	pf.StringVar(&a.cfg.TagScript, "tag-script", a.cfg.TagScript, "tagging script, relative to script-dir")
	pf.DurationVar(&a.cfg.ExtractTimeout, "extract-timeout", a.cfg.ExtractTimeout, "deadline per extraction invocation (0 disables)")
	pf.DurationVar(&a.cfg.TagTimeout, "tag-timeout", a.cfg.TagTimeout, "deadline per tagging invocation (0 disables)")
	pf.DurationVar(&a.cfg.KillGrace, "kill-grace", a.cfg.KillGrace, "time between terminate and kill for overrunning scripts")
	pf.BoolVar(&a.cfg.StdinMode, "stdin-mode", a.cfg.StdinMode, "send PDF bytes to the extraction script on stdin")
	pf.StringVar(&a.cfg.LogLevel, "log-level", a.cfg.LogLevel, "log level (debug, info, warn, error)")
	pf.StringVar(&a.cfg.MetricsAddr, "metrics-addr", a.cfg.MetricsAddr, "serve Prometheus metrics on this address (e.g. :9464)")

	root.AddCommand(
		newExtractCmd(a),
		newTagCmd(a),
		newSpoolCmd(a),
	)

	if err := root.Execute(); err != nil {
		a.log.Error().Err(err).Msg("storytext")
		os.Exit(1)
	}
}

// loadConfig applies the config file and the environment beneath the flags
// the user set explicitly, then validates.
func (a *app) loadConfig(cmd *cobra.Command, validate func(*cliconfig.Config) error) error {
	cfgFile := a.cfgPath
	if cfgFile == "" {
		cfgFile = cliconfig.DefaultConfigPath()
	}

	changed := map[string]bool{}
	cmd.Flags().Visit(func(f *pflag.Flag) { changed[f.Name] = true })

	if cfgFile != "" && cliconfig.FileExists(cfgFile) {
		fc, err := cliconfig.LoadFileConfig(cfgFile)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if err := cliconfig.ApplyFileConfig(&a.cfg, fc, changed); err != nil {
			return err
		}
	}

	if err := cliconfig.ApplyEnvConfig(&a.cfg, changed); err != nil {
		return err
	}

	if err := validate(&a.cfg); err != nil {
		return err
	}

	a.log = a.cfg.Logger()
	a.log.Debug().Interface("config", a.cfg).Msg("configuration")
	return nil
}

// pipeline builds the library pipeline. When a metrics address is
// configured it also starts the metrics server; the returned function
// shuts it down.
func (a *app) pipeline(opts ...storytext.Option) (*storytext.Pipeline, func(), error) {
	logger := a.cfg.LogAdapter()
	opts = append([]storytext.Option{storytext.WithLogger(logger)}, opts...)
	stop := func() {}

	if a.cfg.MetricsAddr != "" {
		reg := prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		recorder, err := metrics.NewRecorder(reg)
		if err != nil {
			return nil, nil, fmt.Errorf("register metrics: %w", err)
		}
		srv := httpAdapter.NewMetricsServer(a.cfg.MetricsAddr, reg, logger)
		if err := srv.Start(); err != nil {
			return nil, nil, err
		}
		opts = append(opts, storytext.WithRecorder(recorder))
		stop = func() {
			if err := srv.Shutdown(context.Background()); err != nil {
				a.log.Warn().Err(err).Msg("metrics server shutdown")
			}
		}
	}

	p, err := storytext.New(storytext.Config{
		ScriptDir:      a.cfg.ScriptDir,
		Interpreter:    a.cfg.Interpreter,
		ExtractScript:  a.cfg.ExtractScript,
		TagScript:      a.cfg.TagScript,
		ExtractTimeout: a.cfg.ExtractTimeout,
		TagTimeout:     a.cfg.TagTimeout,
		KillGrace:      a.cfg.KillGrace,
	}, opts...)
	if err != nil {
		stop()
		return nil, nil, fmt.Errorf("create pipeline: %w", err)
	}
	return p, stop, nil
}

// signalContext returns a context cancelled on SIGINT or SIGTERM.
func (a *app) signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		defer signal.Stop(sigCh)
		select {
		case <-sigCh:
			a.log.Info().Msg("received signal, stopping...")
			cancel()
		case <-ctx.Done():
		}
	}()
	return ctx, cancel
}

func validateBase(c *cliconfig.Config) error  { return c.Validate() }
func validateSpool(c *cliconfig.Config) error { return c.ValidateSpool() }
