package cli

import (
	"fmt"
	"strconv"

	"github.com/cockroachdb/errors"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/TrevorS/dbscan"
	"github.com/TrevorS/dbscan/internal/pointio"
)

func newSweepCommand(a *app) *cobra.Command {
	var values []int
	cmd := &cobra.Command{
		Use:   "sweep <input>",
		Short: "Compare cluster counts across MinPts values",
		Long: `Label <input> once per MinPts value at a fixed radius and print a table of
cluster and noise counts. Neighbor lists are computed once and shared.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runSweep(cmd, args[0], values)
		},
	}
	cmd.Flags().IntSliceVar(&values, "values", []int{3, 4, 5, 8, 10}, "MinPts values to try")
	return cmd
}

func (a *app) runSweep(cmd *cobra.Command, input string, values []int) error {
	if len(values) == 0 {
		return errors.New("--values must name at least one MinPts value")
	}
	cfg, err := a.dbscanConfig()
	if err != nil {
		return err
	}
	points, err := pointio.Load(input)
	if err != nil {
		return err
	}

	q, _, err := dbscan.IndexPoints(points, cfg)
	if err != nil {
		return err
	}
	results, err := dbscan.Sweep(q, values, cfg)
	if err != nil {
		return err
	}

	data := pterm.TableData{{"min_pts", "clusters", "noise", "largest"}}
	for _, r := range results {
		largest := 0
		for _, size := range r.Result.ClusterSizes {
			largest = max(largest, size)
		}
		data = append(data, []string{
			strconv.Itoa(r.MinPts),
			strconv.Itoa(r.Clusters),
			strconv.Itoa(r.Noise),
			strconv.Itoa(largest),
		})
	}
	table, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
	if err != nil {
		return errors.Wrap(err, "failed to render table")
	}
	fmt.Fprintln(cmd.OutOrStdout(), table)
	return nil
}
