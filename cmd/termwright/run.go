package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"go.alt-gnome.ru/termwright"
	"go.alt-gnome.ru/termwright/fixture"
	"go.alt-gnome.ru/termwright/internal/logging"
	"go.alt-gnome.ru/termwright/providers/local"
	"go.alt-gnome.ru/termwright/providers/tmux"
	"go.alt-gnome.ru/termwright/scenariofile"
)

type scenarioFailedError struct {
	scenario string
}

func (e *scenarioFailedError) Error() string {
	return fmt.Sprintf("scenario %q failed", e.scenario)
}

func newRunCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <scenario>",
		Short: "Run a scenario file against a terminal session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			backend, _ := cmd.Flags().GetString("backend")
			artifactWait, _ := cmd.Flags().GetDuration("artifact-wait")
			return runScenario(cmd, args[0], backend, artifactWait)
		},
	}

	cmd.Flags().String("backend", "tmux", "Session backend: tmux or local")
	cmd.Flags().Duration("artifact-wait", 0, "How long to wait for expected artifact files to appear")

	return cmd
}

func runScenario(cmd *cobra.Command, arg, backend string, artifactWait time.Duration) error {
	path, err := scenariofile.Resolve(arg)
	if err != nil {
		return err
	}
	doc, err := scenariofile.Load(path)
	if err != nil {
		return err
	}

	ctx := loggingContext(cmd)
	out := cmd.OutOrStdout()

	fixtures, err := doc.FixtureList()
	if err != nil {
		return err
	}

	mgr := fixture.NewManager(nil)
	defer mgr.Cleanup(ctx, fixtures)

	if err := mgr.Apply(ctx, fixtures); err != nil {
		return err
	}

	provider, err := selectProvider(backend, doc.Command)
	if err != nil {
		return err
	}

	res, err := termwright.NewRunner(provider).Run(ctx, doc.Scenario())
	if err != nil {
		return err
	}
	printReport(out, res)

	if err := verifyArtifacts(ctx, mgr, fixtures, artifactWait); err != nil {
		return err
	}
	if !res.Passed() {
		return &scenarioFailedError{scenario: doc.Name}
	}
	return nil
}

func selectProvider(backend string, command []string) (termwright.Provider, error) {
	switch backend {
	case "tmux":
		var opts []tmux.Option
		if len(command) > 0 {
			opts = append(opts, tmux.WithShell(shellJoin(command)))
		}
		return tmux.Provider(opts...), nil
	case "local":
		var opts []local.Option
		if len(command) > 0 {
			opts = append(opts, local.WithCommand(command...))
		}
		return local.Provider(opts...), nil
	}
	return nil, fmt.Errorf("unknown backend %q (want tmux or local)", backend)
}

// shellJoin quotes each word so the command survives tmux handing it to
// a shell, including words with spaces or quotes.
func shellJoin(words []string) string {
	quoted := make([]string, len(words))
	for i, w := range words {
		quoted[i] = "'" + strings.ReplaceAll(w, "'", `'\''`) + "'"
	}
	return strings.Join(quoted, " ")
}

// verifyArtifacts gives asynchronously produced files a bounded chance
// to appear before the point-in-time postcondition check.
func verifyArtifacts(ctx context.Context, mgr *fixture.Manager, fixtures []fixture.Fixture, wait time.Duration) error {
	if wait > 0 {
		for _, f := range fixtures {
			if f.Expect != fixture.ExpectExists {
				continue
			}
			if _, err := mgr.WaitPath(ctx, f.Path, wait); err != nil {
				return err
			}
		}
	}
	return mgr.Verify(fixtures)
}

func printReport(w io.Writer, res *termwright.Result) {
	pass := color.New(color.FgGreen).SprintFunc()
	fail := color.New(color.FgRed).SprintFunc()

	for _, line := range strings.Split(strings.TrimRight(res.Report(), "\n"), "\n") {
		switch {
		case strings.Contains(line, "PASSED"):
			fmt.Fprintln(w, pass(line))
		case strings.Contains(line, "FAILED"):
			fmt.Fprintln(w, fail(line))
		default:
			fmt.Fprintln(w, line)
		}
	}
}

func loggingContext(cmd *cobra.Command) context.Context {
	logFile, _ := cmd.Flags().GetString("log-file")
	verbose, _ := cmd.Flags().GetBool("verbose")

	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	return logging.New(cmd.Context(), logging.Config{Path: logFile, Level: level})
}
