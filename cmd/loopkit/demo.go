package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"loopkit/internal/scenario"
	"loopkit/internal/traverse"
)

const traverseDemo = "traverse"

func newDemoCmd(f *rootFlags) *cobra.Command {
	var (
		list   bool
		record bool
	)
	cmd := &cobra.Command{
		Use:   "demo [name]",
		Short: "Run the built-in scenarios (all of them when no name is given)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			demos, err := scenario.Demos()
			if err != nil {
				return err
			}
			if list {
				for _, sc := range demos {
					fmt.Fprintf(out, "%-20s %s\n", sc.Name, sc.Description)
				}
				fmt.Fprintf(out, "%-20s %s\n", traverseDemo, "map/filter/find/reduce over a sample slice")
				return nil
			}

			if len(args) == 1 {
				if args[0] == traverseDemo {
					return printTraverseDemo(out)
				}
				sc, err := scenario.Demo(args[0])
				if err != nil {
					return err
				}
				demos = []*scenario.Scenario{sc}
			}

			a, err := f.openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			var errs []error
			for i, sc := range demos {
				if i > 0 {
					fmt.Fprintln(out)
				}
				res, err := a.RunScenario(cmd.Context(), sc, "demo", record)
				if err != nil {
					return err
				}
				errs = append(errs, printResult(out, res))
			}
			if len(args) == 0 {
				fmt.Fprintln(out)
				errs = append(errs, printTraverseDemo(out))
			}
			return errors.Join(errs...)
		},
	}
	cmd.Flags().BoolVarP(&list, "list", "l", false, "list demo names")
	cmd.Flags().BoolVar(&record, "record", false, "append each run to the configured store")
	return cmd
}

func printTraverseDemo(w io.Writer) error {
	nums := []int{3, 8, 1, 12, 7, 20, 5}
	fmt.Fprintf(w, "# %s\n", traverseDemo)
	fmt.Fprintf(w, "input        %s\n", joinInts(nums))

	squares := traverse.Map(nums, func(v, _ int, _ []int) int { return v * v })
	fmt.Fprintf(w, "map x*x      %s\n", joinInts(squares))

	even := traverse.Filter(nums, func(v, _ int, _ []int) bool { return v%2 == 0 })
	fmt.Fprintf(w, "filter even  %s\n", joinInts(even))

	if v, ok := traverse.Find(nums, func(v, _ int, _ []int) bool { return v > 10 }); ok {
		fmt.Fprintf(w, "find >10     %d at %d\n", v, traverse.FindIndex(nums, func(x, _ int, _ []int) bool { return x == v }))
	}

	sum, err := traverse.Reduce(nums, func(acc, v, _ int, _ []int) int { return acc + v })
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "reduce sum   %d\n", sum)

	maxv := traverse.Fold(nums, func(acc, v, _ int, _ []int) int { return max(acc, v) }, nums[0])
	fmt.Fprintf(w, "fold max     %d\n", maxv)

	if _, err := traverse.Reduce([]int{}, func(acc, v, _ int, _ []int) int { return acc + v }); errors.Is(err, traverse.ErrEmptyReduce) {
		fmt.Fprintf(w, "reduce []    %v\n", err)
	}
	return nil
}
