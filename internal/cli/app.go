// Package cli implements the panbox command tree.
package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/example/panbox/internal/config"
	"github.com/example/panbox/internal/logging"
	"github.com/example/panbox/internal/remote"
	"github.com/example/panbox/internal/selection"
	"github.com/example/panbox/internal/status"
)

// Process exit codes.
const (
	ExitOK          = 0
	ExitError       = 1
	ExitUsage       = 2
	ExitUnavailable = 3
)

// Options wires the command tree to its environment. Zero values select
// the process defaults.
type Options struct {
	In  io.Reader
	Out io.Writer
	Err io.Writer
	// Invoker replaces the configured transport, mainly for tests.
	Invoker remote.Invoker
	// LoadConfig replaces config.Load.
	LoadConfig func(path string) (*config.Config, error)
}

func (o Options) withDefaults() Options {
	if o.In == nil {
		o.In = os.Stdin
	}
	if o.Out == nil {
		o.Out = os.Stdout
	}
	if o.Err == nil {
		o.Err = os.Stderr
	}
	if o.LoadConfig == nil {
		o.LoadConfig = config.Load
	}
	return o
}

// App carries what every command needs once the root command has parsed
// its persistent flags.
type App struct {
	opts     Options
	cfg      *config.Config
	client   *remote.Client
	invoker  remote.Invoker
	closer   func() error
	reporter *status.Reporter
	prompt   *Prompter

	configPath string
	transport  string
	debug      bool
	plain      bool
	noColor    bool
}

func (a *App) setup() error {
	if a.debug {
		logging.EnableDebug()
	}
	cfg, err := a.opts.LoadConfig(a.configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if cfg.Debug && !logging.DebugEnabled() {
		logging.EnableDebug()
	}
	if a.transport != "" {
		switch t := config.Transport(a.transport); t {
		case config.TransportDBus, config.TransportIPC:
			cfg.Transport = t
		default:
			return usageErrorf("unknown transport %q", a.transport)
		}
	}
	if a.plain {
		cfg.Policy = status.Plain
	}
	if a.noColor {
		off := false
		cfg.Color = &off
	}
	a.cfg = cfg
	a.reporter = status.NewReporter(a.opts.Out, cfg.UseColor())
	a.prompt = NewPrompter(a.opts.In, a.opts.Out)
	logging.Debugf("configuration loaded: transport=%s timeout=%s", cfg.Transport, cfg.CallTimeout)
	return nil
}

// backend returns the backend client, connecting the transport on first use.
func (a *App) backend() (*remote.Client, error) {
	if a.client != nil {
		return a.client, nil
	}
	inv := a.opts.Invoker
	if inv == nil {
		var err error
		inv, a.closer, err = newInvoker(a.cfg)
		if err != nil {
			return nil, err
		}
	}
	a.invoker = inv
	a.client = remote.NewClient(inv, a.cfg.CallTimeout)
	return a.client, nil
}

func (a *App) close() {
	if a.closer == nil {
		return
	}
	if err := a.closer(); err != nil {
		logging.Debugf("closing transport: %v", err)
	}
	a.closer = nil
}

// report prints code with the configured policy.
func (a *App) report(code status.Code, success, failure string) {
	a.reporter.Report(a.cfg.Policy, code, success, failure)
}

func (a *App) println(args ...interface{}) {
	fmt.Fprintln(a.opts.Out, args...)
}

func (a *App) printf(format string, args ...interface{}) {
	fmt.Fprintf(a.opts.Out, format, args...)
}

// usageError marks bad command-line input.
type usageError struct {
	msg string
}

func (e *usageError) Error() string { return e.msg }

func usageErrorf(format string, args ...interface{}) error {
	return &usageError{msg: fmt.Sprintf(format, args...)}
}

// ExitCode maps an error returned by a command onto the process exit code.
func ExitCode(err error) int {
	var (
		usage *usageError
		rng   *selection.RangeError
	)
	switch {
	case err == nil:
		return ExitOK
	case errors.As(err, &usage), errors.As(err, &rng):
		return ExitUsage
	case remote.IsUnavailable(err):
		return ExitUnavailable
	default:
		return ExitError
	}
}
