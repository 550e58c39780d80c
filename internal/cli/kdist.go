package cli

import (
	"fmt"
	"strconv"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/TrevorS/dbscan"
	"github.com/TrevorS/dbscan/internal/pointio"
)

type kdistOptions struct {
	k         int
	quantiles []float64
	suggest   float64
}

func newKDistCommand(a *app) *cobra.Command {
	o := &kdistOptions{}
	cmd := &cobra.Command{
		Use:   "kdist <input>",
		Short: "Summarize the k-distance curve and suggest a radius",
		Long: `Compute each point's distance to its k-th nearest neighbor, counting the
point itself, and print quantiles of those distances. With k equal to the
intended MinPts, the --suggest quantile is a reasonable starting radius.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runKDist(cmd, args[0], o)
		},
	}
	cmd.Flags().IntVar(&o.k, "k", 0, "Neighbor rank (default: --min-pts)")
	cmd.Flags().Float64SliceVar(&o.quantiles, "quantile", []float64{0.5, 0.75, 0.9, 0.95, 0.99}, "Quantiles to print")
	cmd.Flags().Float64Var(&o.suggest, "suggest", 0.9, "Quantile used for the suggested radius")
	return cmd
}

func (a *app) runKDist(cmd *cobra.Command, input string, o *kdistOptions) error {
	cfg, err := a.dbscanConfig()
	if err != nil {
		return err
	}
	k := o.k
	if k == 0 {
		k = cfg.MinPts
	}
	points, err := pointio.Load(input)
	if err != nil {
		return err
	}

	kd, err := dbscan.KDistances(points, k, cfg)
	if err != nil {
		return err
	}
	qs, err := dbscan.KDistanceQuantiles(kd, o.quantiles)
	if err != nil {
		return err
	}
	radius, err := dbscan.SuggestRadius(kd, o.suggest)
	if err != nil {
		return err
	}

	data := pterm.TableData{{"quantile", "k-distance"}}
	for i, p := range o.quantiles {
		data = append(data, []string{
			strconv.FormatFloat(p, 'g', -1, 64),
			strconv.FormatFloat(qs[i], 'g', 6, 64),
		})
	}
	table, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, table)
	fmt.Fprintf(out, "suggested radius (k=%d, q=%g): %g\n", k, o.suggest, radius)
	return nil
}
