package cli

// package cli implements the speculator command line.
//
// MakeSpeculatorCLI creates the root cobra command and one subcommand per speculatorCommand.
// Each speculatorCommand registers its own flags in register() and does its work in run().
// The root command carries the flags every subcommand shares: the configuration to resolve
// and the trace to replay.
import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/twitter/speculator/common/endpoints"
	specerrors "github.com/twitter/speculator/common/errors"
	"github.com/twitter/speculator/common/resolver"
	"github.com/twitter/speculator/common/stats"
	"github.com/twitter/speculator/speculator/config"
	"github.com/twitter/speculator/speculator/domain"
	"github.com/twitter/speculator/speculator/engine"
	"github.com/twitter/speculator/speculator/estimator"
	"github.com/twitter/speculator/speculator/simulator"
)

// AdminAddrEnv overrides the configured admin address unless --http_addr is given.
const AdminAddrEnv = "SPECULATOR_HTTP_ADDR"

type speculatorCommand interface {
	register() *cobra.Command
	run(opts *rootOptions, cmd *cobra.Command, args []string) error
}

type rootOptions struct {
	configName string
	tracePath  string
}

// MakeSpeculatorCLI builds the root command. ctx bounds long running subcommands.
func MakeSpeculatorCLI(ctx context.Context) *cobra.Command {
	opts := &rootOptions{}
	rootCobraCmd := &cobra.Command{
		Use:          "speculator",
		Short:        "speculative execution decision engine",
		SilenceUsage: true,
	}
	rootCobraCmd.PersistentFlags().StringVar(&opts.configName, "config", "default",
		fmt.Sprintf("preset name (%v) or path to a json/yaml config file", config.Names()))
	rootCobraCmd.PersistentFlags().StringVar(&opts.tracePath, "trace", "", "json trace to replay")

	add := func(subCmd speculatorCommand) {
		cmd := subCmd.register()
		cmd.RunE = func(innerCmd *cobra.Command, args []string) error {
			return subCmd.run(opts, innerCmd, args)
		}
		rootCobraCmd.AddCommand(cmd)
	}

	add(&simulateCommand{})
	add(&serveCommand{ctx: ctx})
	add(&configsCommand{})
	return rootCobraCmd
}

// build wires an engine over the runner's in-memory master. The replay estimator is the
// runner's own so that trace estimates reach the engine.
func build(
	jc *config.SpeculatorJSONConfig,
	runner *simulator.Runner,
	clock domain.Clock,
	stat stats.StatsReceiver,
	debug bool) (*engine.Engine, error) {
	ec, err := jc.Speculator.CreateEngineConfig()
	if err != nil {
		return nil, fail(err, specerrors.ConfigFailureExitCode)
	}
	ec.DebugMode = debug

	var est domain.Estimator = runner.Estimator
	if jc.Estimator.Type != simulator.ReplayName {
		if est, err = estimator.New(jc.Estimator.Type, runner.Directory); err != nil {
			return nil, fail(err, specerrors.EstimatorFailureExitCode)
		}
	}
	log.WithFields(
		log.Fields{
			"engine":    jc.Speculator.Type,
			"estimator": jc.Estimator.Type,
			"debug":     debug,
		}).Info("building engine")
	e, err := engine.NewEngine(ec, runner.Directory, est, runner.Sink, clock, stat)
	if err != nil {
		return nil, fail(err, specerrors.EngineFailureExitCode)
	}
	return e, nil
}

// fail attaches an exit code to a non-nil err.
func fail(err error, code specerrors.ExitCode) error {
	if err == nil {
		return nil
	}
	return specerrors.NewError(err, code)
}

func resolveConfig(opts *rootOptions) (*config.SpeculatorJSONConfig, error) {
	jc, err := config.Resolve(opts.configName)
	return jc, fail(err, specerrors.ConfigFailureExitCode)
}

func loadTrace(opts *rootOptions) (*simulator.Trace, error) {
	if opts.tracePath == "" {
		return nil, fail(errors.New("--trace is required"), specerrors.TraceFailureExitCode)
	}
	trace, err := simulator.LoadTrace(opts.tracePath)
	return trace, fail(err, specerrors.TraceFailureExitCode)
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// writeCommands prints an empty list rather than null.
func writeCommands(w io.Writer, commands []domain.Command) error {
	if commands == nil {
		commands = []domain.Command{}
	}
	return writeJSON(w, commands)
}

type simulateCommand struct {
	printStats bool
}

func (c *simulateCommand) register() *cobra.Command {
	r := &cobra.Command{
		Use:   "simulate",
		Short: "replays a trace on a manual clock and prints the resulting commands as json",
	}
	r.Flags().BoolVar(&c.printStats, "stats", false, "print the engine stats after the commands")
	return r
}

func (c *simulateCommand) run(opts *rootOptions, cmd *cobra.Command, args []string) error {
	jc, err := resolveConfig(opts)
	if err != nil {
		return err
	}
	trace, err := loadTrace(opts)
	if err != nil {
		return err
	}
	runner := simulator.NewRunner(trace)
	stat := stats.NewCustomStatsReceiver(stats.NewFinagleStatsRegistry)
	e, err := build(jc, runner, runner.Clock, stat, true)
	if err != nil {
		return err
	}

	commands := runner.Run(e)
	e.Stop()
	if err := writeCommands(cmd.OutOrStdout(), commands); err != nil {
		return err
	}
	if c.printStats {
		fmt.Fprintln(cmd.OutOrStdout(), string(stat.Render(true)))
	}
	return nil
}

type serveCommand struct {
	ctx      context.Context
	httpAddr string
	linger   time.Duration
}

func (c *serveCommand) register() *cobra.Command {
	r := &cobra.Command{
		Use:   "serve",
		Short: "replays a trace in real time against the running engine loop and serves the admin endpoints",
	}
	r.Flags().StringVar(&c.httpAddr, "http_addr", "", "admin bind address, overrides the configured one")
	r.Flags().DurationVar(&c.linger, "linger", 0, "keep serving this long after the trace ends, forever if 0")
	return r
}

func (c *serveCommand) run(opts *rootOptions, cmd *cobra.Command, args []string) error {
	jc, err := resolveConfig(opts)
	if err != nil {
		return err
	}
	trace, err := loadTrace(opts)
	if err != nil {
		return err
	}
	runner := simulator.NewRunner(trace)
	stat := endpoints.MakeStatsReceiver("speculator").Precision(time.Millisecond)
	e, err := build(jc, runner, domain.WallClock{}, stat, false)
	if err != nil {
		return err
	}

	ctx := c.ctx
	if ctx == nil {
		ctx = context.Background()
	}
	errs := make(chan error, 1)
	if jc.Admin.Type == "http" {
		addr, err := resolver.NewCompositeResolver(
			resolver.NewConstantResolver(c.httpAddr),
			resolver.NewEnvResolver(AdminAddrEnv),
			resolver.NewConstantResolver(jc.Admin.Addr)).Resolve()
		if err != nil {
			return fail(err, specerrors.AdminServerFailureExitCode)
		}
		server := endpoints.NewAdminServer(addr, stat, e)
		go func() { errs <- server.Serve() }()
	}

	e.Start()
	defer e.Stop()
	if err := runner.Replay(ctx, e, domain.WallClock{}); err != nil && err != context.Canceled {
		return fail(err, specerrors.ReplayFailureExitCode)
	}
	log.WithFields(
		log.Fields{
			"commands": len(runner.Sink.Commands()),
			"ledger":   len(e.Ledger()),
		}).Info("trace replayed")

	var done <-chan time.Time
	if c.linger > 0 {
		done = time.After(c.linger)
	}
	select {
	case <-ctx.Done():
	case <-done:
	case err := <-errs:
		return fail(errors.Wrap(err, "admin server"), specerrors.AdminServerFailureExitCode)
	}
	return writeCommands(cmd.OutOrStdout(), runner.Sink.Commands())
}

type configsCommand struct{}

func (c *configsCommand) register() *cobra.Command {
	return &cobra.Command{
		Use:   "configs [name]",
		Short: "lists the preset configurations and estimators, or prints one resolved configuration",
		Args:  cobra.MaximumNArgs(1),
	}
}

func (c *configsCommand) run(opts *rootOptions, cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return writeJSON(cmd.OutOrStdout(), map[string][]string{
			"configs":    config.Names(),
			"estimators": estimator.Names(),
		})
	}
	jc, err := config.Resolve(args[0])
	if err != nil {
		return fail(err, specerrors.ConfigFailureExitCode)
	}
	return writeJSON(cmd.OutOrStdout(), jc)
}
