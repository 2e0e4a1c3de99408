// i18n-sync compares the translation keys used in a codebase with the keys
// published for a project and reports missing and unused keys.
//
// Usage:
//
//	i18n-sync <command> [flags]
//
// Run "i18n-sync --help" for a list of commands.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"github.com/mattn/go-isatty"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/better-i18n/i18n-sync/config"
	"github.com/better-i18n/i18n-sync/internal/logging"
	"github.com/better-i18n/i18n-sync/internal/project"
)

func main() {
	if err := newApp().execute(context.Background(), os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// app carries the collaborators and global flags shared by all commands.
type app struct {
	fs         afero.Fs
	dir        string
	environ    map[string]string
	stdout     io.Writer
	stderr     io.Writer
	httpClient *http.Client

	configFile string
	logLevel   string
	format     string
	usagesFile string
	srcDir     string
	treeFile   string

	base   string
	cfg    *config.Config
	logger *slog.Logger
}

func newApp() *app {
	return &app{
		fs:     afero.NewOsFs(),
		stdout: os.Stdout,
		stderr: os.Stderr,
	}
}

func (a *app) execute(ctx context.Context, args []string) error {
	root := a.rootCommand()
	root.SetArgs(args)
	root.SetOut(a.stdout)
	root.SetErr(a.stderr)
	return root.ExecuteContext(ctx)
}

func (a *app) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "i18n-sync",
		Short: "Reconcile translation keys used in code with the remote store",
		Long: `i18n-sync resolves the translation keys used in a codebase, including
namespace-bound translators, key fragments and template-built keys, and
compares them with the keys published for the project.

Commands:
  sync        Full report: missing, unused, coverage and invariants
  missing     Keys used in code but absent from the remote store
  unused      Remote keys that no usage resolves to
  dynamic     Template keys and the remote keys they match
  references  Where each resolved key is used (file:line)
  check       Lint check: missing + unused + invariants
  stale       Keys in a target locale absent from the source tree
  prune       Remove unused keys from the local tree file
  scan        Usage records found by the built-in scanner`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.configFile, "config", "", "Config file (default: "+config.FileName+" in the project root)")
	flags.StringVar(&a.logLevel, "log-level", "", "Log level: debug, info, warn, error")
	flags.StringVar(&a.format, "format", "text", "Output format: text, json, or yaml (missing only)")
	flags.StringVar(&a.usagesFile, "usages", "", "Read usage records from this JSON or YAML file instead of scanning")
	flags.StringVar(&a.srcDir, "src", "", "Scan this source directory")
	flags.StringVar(&a.treeFile, "tree", "", "Read the remote tree from this JSON or YAML file instead of fetching it")

	root.AddCommand(
		a.syncCommand(),
		a.missingCommand(),
		a.unusedCommand(),
		a.dynamicCommand(),
		a.referencesCommand(),
		a.checkCommand(),
		a.staleCommand(),
		a.pruneCommand(),
		a.scanCommand(),
	)
	return root
}

// setup loads the configuration and builds the logger before any command runs.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	if a.dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return err
		}
		a.dir = wd
	}

	path := a.configFile
	a.base = a.dir
	if path != "" {
		if !filepath.IsAbs(path) {
			path = filepath.Join(a.dir, path)
		}
		a.base = filepath.Dir(path)
	} else if root, err := project.FindRoot(a.fs, a.dir); err == nil {
		a.base = root
		candidate := filepath.Join(root, config.FileName)
		if ok, _ := afero.Exists(a.fs, candidate); ok {
			path = candidate
		}
	}

	cfg, err := config.Load(a.fs, path, a.environ, a.flagOverrides)
	if err != nil {
		return err
	}
	a.cfg = cfg

	a.logger = logging.New(logging.Options{
		Level:   cfg.LogLevel,
		Writer:  a.stderr,
		NoColor: !isTerminal(a.stderr),
	})
	a.logger.Debug("configuration loaded", "config", path, "base", a.base, "command", cmd.Name())
	return nil
}

// flagOverrides applies command-line flags on top of file and environment
// settings. Flag paths are relative to the working directory.
func (a *app) flagOverrides(cfg *config.Config) {
	if a.usagesFile != "" {
		cfg.UsagesFile = a.abs(a.dir, a.usagesFile)
	}
	if a.srcDir != "" {
		cfg.SourceDirs = []string{a.abs(a.dir, a.srcDir)}
		cfg.UsagesFile = ""
	}
	if a.treeFile != "" {
		cfg.TreeFile = a.abs(a.dir, a.treeFile)
	}
	if a.logLevel != "" {
		cfg.LogLevel = a.logLevel
	}
}

// path resolves a configured path against the config base directory.
func (a *app) path(p string) string {
	return a.abs(a.base, p)
}

func (a *app) abs(dir, p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(dir, p)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && isatty.IsTerminal(f.Fd())
}

// checkFormat rejects output formats a command does not support.
func (a *app) checkFormat(allowed ...string) error {
	for _, f := range allowed {
		if a.format == f {
			return nil
		}
	}
	return fmt.Errorf("unsupported --format %q (want one of %v)", a.format, allowed)
}
