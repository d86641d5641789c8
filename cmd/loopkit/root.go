package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"loopkit/internal/app"
	"loopkit/internal/scenario"
)

type rootFlags struct {
	configPath string
	logLevel   string
}

func newRootCmd() *cobra.Command {
	f := &rootFlags{}
	root := &cobra.Command{
		Use:   "loopkit",
		Short: "Replay event-loop scenarios on a deterministic task scheduler",
		Long: `loopkit runs scripted microtask/macrotask scenarios and prints the order
in which their labels execute, the way an async tutorial script would.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&f.configPath, "config", "./loopkit.yaml", "path to config (yaml or json)")
	root.PersistentFlags().StringVar(&f.logLevel, "log-level", "", "override logging.level (trace, debug, info, warn, error)")

	root.AddCommand(newRunCmd(f), newDemoCmd(f), newHistoryCmd(f))
	return root
}

func (f *rootFlags) openApp() (*app.App, error) {
	return app.New(f.configPath, app.Options{LogLevel: f.logLevel})
}

// printResult writes the trace, one label per line, followed by task
// errors. A result that misses its expectation is returned as an error.
func printResult(w io.Writer, res scenario.Result) error {
	fmt.Fprintf(w, "# %s\n", res.Name)
	for _, label := range res.Trace {
		fmt.Fprintln(w, label)
	}
	for _, e := range res.Errors {
		fmt.Fprintf(w, "! %s\n", e)
	}
	if !res.Matches() {
		fmt.Fprintf(w, "trace does not match expect (-expect +trace):\n%s", res.Diff())
		return fmt.Errorf("%s: unexpected trace", res.Name)
	}
	return nil
}

func joinInts(v []int) string {
	parts := make([]string, len(v))
	for i, n := range v {
		parts[i] = fmt.Sprint(n)
	}
	return "[" + strings.Join(parts, " ") + "]"
}
