package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/TrevorS/dbscan"
	"github.com/TrevorS/dbscan/internal/pointio"
)

type labelOptions struct {
	out    string
	format string
	verify bool
}

func newLabelCommand(a *app) *cobra.Command {
	o := &labelOptions{}
	cmd := &cobra.Command{
		Use:   "label <input>",
		Short: "Label every point as clustered or noise",
		Long: `Run DBSCAN over the points in <input> and write one label per point.

The json and yaml reports list each point's kind, cluster id and the index
of the point that discovered it, plus the discovery edges and run summary.
The csv format writes only the per-point rows.

The format defaults to the extension of --out, or json on stdout.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runLabel(cmd, args[0], o)
		},
	}
	cmd.Flags().StringVarP(&o.out, "out", "o", "", "Output file (default stdout)")
	cmd.Flags().StringVarP(&o.format, "format", "f", "", "Output format: json, yaml or csv")
	cmd.Flags().BoolVar(&o.verify, "verify", false, "Check the labeling against the DBSCAN invariants")
	return cmd
}

func (a *app) runLabel(cmd *cobra.Command, input string, o *labelOptions) error {
	format, err := outputFormat(o.format, o.out)
	if err != nil {
		return err
	}
	cfg, err := a.dbscanConfig()
	if err != nil {
		return err
	}
	points, err := pointio.Load(input)
	if err != nil {
		return err
	}

	q, algo, err := dbscan.IndexPoints(points, cfg)
	if err != nil {
		return err
	}
	res, err := dbscan.ClusterIndex(q, cfg)
	if err != nil {
		return err
	}
	res.Algorithm = algo

	if o.verify {
		if err := dbscan.Verify(q, cfg.MinPts, res.Labels, res.NumClusters); err != nil {
			return errors.Wrap(err, "labeling failed verification")
		}
		a.log.Info("labeling verified", zap.Int("points", len(res.Labels)))
	}

	if o.out == "" {
		err = writeResult(cmd.OutOrStdout(), format, a.runID, cfg, res)
	} else {
		err = writeResultFile(o.out, format, a.runID, cfg, res)
	}
	if err != nil {
		return err
	}

	a.printSummary(input, cfg, res)
	return nil
}

func (a *app) printSummary(input string, cfg dbscan.Config, res *dbscan.Result) {
	fmt.Fprint(a.stderr, pterm.Success.Sprintfln("%s: %d points, %d clusters, %d noise (radius %g, min_pts %d, %s)",
		filepath.Base(input), len(res.Labels), res.NumClusters, res.NoiseCount,
		cfg.Radius, cfg.MinPts, res.Algorithm))
}

// outputFormat resolves --format, falling back to the --out extension.
func outputFormat(format, out string) (string, error) {
	if format == "" {
		switch strings.ToLower(filepath.Ext(out)) {
		case ".yaml", ".yml":
			return "yaml", nil
		case ".csv":
			return "csv", nil
		default:
			return "json", nil
		}
	}
	switch f := strings.ToLower(format); f {
	case "json", "yaml", "csv":
		return f, nil
	case "yml":
		return "yaml", nil
	}
	return "", errors.WithHint(
		errors.Newf("unknown output format %q", format),
		"use json, yaml or csv")
}


func writeResult(w io.Writer, format, runID string, cfg dbscan.Config, res *dbscan.Result) error {
	switch format {
	case "csv":
		return pointio.WriteCSV(w, res.Labels)
	case "yaml":
		return pointio.WriteYAML(w, pointio.NewReport(runID, cfg, res))
	default:
		return pointio.WriteJSON(w, pointio.NewReport(runID, cfg, res))
	}
}

// writeResultFile writes the result to path and returns the first of the
// write and Close errors.
func writeResultFile(path, format, runID string, cfg dbscan.Config, res *dbscan.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "failed to create %s", path)
	}
	if err := writeResult(f, format, runID, cfg, res); err != nil {
		_ = f.Close()
		return err
	}
	return errors.Wrapf(f.Close(), "failed to write %s", path)
}
