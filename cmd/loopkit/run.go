package main

import (
	"github.com/spf13/cobra"
	"loopkit/internal/scenario"
	logx "loopkit/pkg/logx"
)

func newRunCmd(f *rootFlags) *cobra.Command {
	var (
		watchFile bool
		record    bool
	)
	cmd := &cobra.Command{
		Use:   "run <scenario.yaml>",
		Short: "Run a scenario file and print its trace",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := f.openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			out := cmd.OutOrStdout()
			if !watchFile {
				res, err := a.RunFile(cmd.Context(), args[0], record)
				if err != nil {
					return err
				}
				return printResult(out, res)
			}
			return a.WatchFile(cmd.Context(), args[0], record, func(res scenario.Result, err error) {
				if err != nil {
					a.Logger().Error("run failed", logx.Err(err))
					return
				}
				if err := printResult(out, res); err != nil {
					a.Logger().Warn(err.Error())
				}
			})
		},
	}
	cmd.Flags().BoolVarP(&watchFile, "watch", "w", false, "rerun whenever the scenario (or config) file changes")
	cmd.Flags().BoolVar(&record, "record", false, "append the run to the configured store")
	return cmd
}
