// Package cmd provides the CLI commands for pocketbible.
package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	bberrors "github.com/Aman-CERP/pocketbible/internal/errors"
	"github.com/Aman-CERP/pocketbible/pkg/version"
)

// NewRootCmd creates the root command for the pocketbible CLI.
func NewRootCmd() *cobra.Command {
	return newRootCmd(&env{})
}

func newRootCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pocketbible",
		Short: "Offline Bible reader and asset toolkit",
		Long: `pocketbible reads the Bible, missal, devotional, rosary and
confession guide from prebuilt binary assets.

Assets are looked up on the external root first (removable media), then on
the bundled root. Use 'pocketbible build' to generate them from JSON or
SQLite sources.`,
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.SetVersionTemplate("pocketbible version {{.Version}}\n")

	cmd.PersistentFlags().BoolVar(&e.debug, "debug", false, "Enable debug logging to ~/.pocketbible/logs/")
	cmd.PersistentFlags().BoolVar(&e.json, "json", false, "Output as JSON")
	cmd.PersistentFlags().StringVar(&e.external, "external", "", "External asset root (overrides config)")
	cmd.PersistentFlags().StringVar(&e.bundled, "bundled", "", "Bundled asset root (overrides config)")

	cmd.PersistentFlags().StringVar(&e.profile.CPU, "profile-cpu", "", "Write CPU profile to file")
	cmd.PersistentFlags().StringVar(&e.profile.Heap, "profile-mem", "", "Write memory profile to file")
	cmd.PersistentFlags().StringVar(&e.profile.Trace, "profile-trace", "", "Write execution trace to file")

	cmd.PersistentPreRunE = func(cmd *cobra.Command, _ []string) error {
		return e.setup(cmd)
	}
	cmd.PersistentPostRunE = func(_ *cobra.Command, _ []string) error {
		return e.teardown()
	}

	// Reading
	cmd.AddCommand(newVerseCmd(e))
	cmd.AddCommand(newChapterCmd(e))
	cmd.AddCommand(newBooksCmd(e))
	cmd.AddCommand(newSearchCmd(e))

	// Collections
	cmd.AddCommand(newMissalCmd(e))
	cmd.AddCommand(newDevotionalCmd(e))
	cmd.AddCommand(newRosaryCmd(e))
	cmd.AddCommand(newConfessionCmd(e))

	// Assets
	cmd.AddCommand(newBuildCmd(e))
	cmd.AddCommand(newVerifyCmd(e))
	cmd.AddCommand(newLocateCmd(e))
	cmd.AddCommand(newWatchCmd(e))

	// Tooling
	cmd.AddCommand(newConfigCmd(e))
	cmd.AddCommand(newLogsCmd(e))
	cmd.AddCommand(newVersionCmd(e))

	return cmd
}

// Run executes the CLI with args and returns the process exit code. ctx
// cancels long-running commands such as watch and logs --follow. Profiles
// and the log file are closed even when the command fails. A failure is
// written to stderr, as a JSON object when --json is set.
func Run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	e := &env{}
	root := newRootCmd(e)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.ExecuteContext(ctx)
	if terr := e.teardown(); err == nil {
		err = terr
	}
	if err == nil {
		return 0
	}
	reportError(stderr, err, e.json)
	return 1
}

func reportError(w io.Writer, err error, asJSON bool) {
	if asJSON {
		if data, jerr := bberrors.FormatJSON(err); jerr == nil {
			fmt.Fprintln(w, string(data))
			return
		}
	}
	fmt.Fprint(w, bberrors.FormatForCLI(err))
}
