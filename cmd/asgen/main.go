// Command asgen is the CLI entry point for the metadata generator
// (spec §6 "CLI surface"), grounded on cmd/cctool/main.go's shape: a
// flag.FlagSet for global options, a subcmd dispatch table, and a
// context cancelled by SIGINT/SIGTERM so a long-running suite process
// can be interrupted cleanly (spec §5 "cancellation via a shared
// cancel token checked between pkids").
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/quay/zlog"
	"github.com/rs/zerolog"
)

// newLogger builds the console logger the CLI installs globally via
// zlog.Set, the same zerolog.ConsoleWriter + Timestamp + Caller setup
// cmd/libindexhttp/main.go uses.
func newLogger(verbose bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, NoColor: true}).
		With().Timestamp().Caller().
		Logger().
		Level(level)
}

// subcmd is one CLI verb's implementation, given the already-parsed
// global flags and its own remaining arguments.
type subcmd func(ctx context.Context, g *globalFlags, args []string) error

var subcmds = map[string]subcmd{
	"process":      cmdProcess,
	"run":          cmdProcess, // spec §6: "run <suite> — alias of process"
	"cleanup":      cmdCleanup,
	"remove-found": cmdRemoveFound,
	"forget":       cmdForget,
	"info":         cmdInfo,
}

// globalFlags holds the flags recognized before the subcommand name
// (spec §6 "Global flag --workspace|-w <dir>... --verbose, --help|-h").
type globalFlags struct {
	Workspace string
	Config    string
	Verbose   bool
}

func main() {
	os.Exit(run())
}

func run() int {
	fs := flag.NewFlagSet("asgen", flag.ContinueOnError)
	var g globalFlags
	fs.StringVar(&g.Workspace, "workspace", "", "workspace directory (cache/ and export/ live here)")
	fs.StringVar(&g.Workspace, "w", "", "shorthand for --workspace")
	fs.StringVar(&g.Config, "config", "", "path to the YAML config file (default: <workspace>/asgen-config.yaml)")
	fs.BoolVar(&g.Verbose, "verbose", false, "enable debug-level logging")
	fs.Usage = printUsage(fs)

	if err := fs.Parse(os.Args[1:]); err != nil {
		return 99
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return 99
	}

	name := fs.Arg(0)
	cmd, ok := subcmds[name]
	if !ok {
		fs.Usage()
		fmt.Fprintf(os.Stderr, "\nunknown subcommand %q\n", name)
		return 99
	}
	if g.Workspace == "" {
		fmt.Fprintln(os.Stderr, "--workspace|-w is required")
		return 99
	}
	if g.Config == "" {
		g.Config = g.Workspace + "/asgen-config.yaml"
	}

	log := newLogger(g.Verbose)
	zlog.Set(&log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)
	go func() {
		<-sigCh
		cancel()
	}()

	if err := cmd(ctx, &g, fs.Args()[1:]); err != nil {
		zlog.Error(ctx).Err(err).Msg("command failed")
		return 1
	}
	return 0
}

func printUsage(fs *flag.FlagSet) func() {
	return func() {
		out := fs.Output()
		fmt.Fprintf(out, "Usage: %s [flags] <subcommand> [args]\n\n", os.Args[0])
		fs.PrintDefaults()
		fmt.Fprint(out, "\nSubcommands:\n")
		fmt.Fprint(out, "  process <suite>        full run over a suite\n")
		fmt.Fprint(out, "  run <suite>            alias of process\n")
		fmt.Fprint(out, "  cleanup                run cruft GC\n")
		fmt.Fprint(out, "  remove-found <suite>   drop all pkids of the suite from the store\n")
		fmt.Fprint(out, "  forget <pkid>          drop one package\n")
		fmt.Fprint(out, "  info [--html] <pkid>   dump stored metadata/hints\n")
	}
}
