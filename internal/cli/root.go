// Package cli implements the dbscan command-line tool.
package cli

import (
	"fmt"
	"io"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/TrevorS/dbscan"
	"github.com/TrevorS/dbscan/internal/config"
	"github.com/TrevorS/dbscan/internal/logging"
)

// app is the state shared by every subcommand once the root pre-run hook
// has loaded configuration.
type app struct {
	configPath string
	verbosity  int
	jsonLogs   bool

	v      *viper.Viper
	log    *zap.Logger
	runID  string
	stderr io.Writer
}

// flagKeys maps persistent flag names to config keys.
var flagKeys = map[string]string{
	"radius":      "radius",
	"min-pts":     "min_pts",
	"metric":      "metric",
	"algorithm":   "algorithm",
	"leaf-size":   "leaf_size",
	"precompute":  "precompute",
	"workers":     "workers",
	"cache-size":  "cache_size",
	"minkowski-p": "minkowski_p",
}

// NewRootCommand builds the dbscan command tree.
func NewRootCommand() *cobra.Command {
	a := &app{}
	d := dbscan.DefaultConfig()

	root := &cobra.Command{
		Use:   "dbscan",
		Short: "Density-based clustering of point sets",
		Long: `dbscan - label point sets with DBSCAN and record how each cluster grew.

Every clustered point is written with the index of the point that
discovered it, so each cluster forms a tree rooted at its seed.

Input files are Wavefront OBJ (v x y z lines) or CSV, one point per row.

Examples:
  dbscan label points.obj --radius 0.2 --min-pts 4        # JSON report on stdout
  dbscan label points.csv --out labels.yaml               # YAML report
  dbscan label scan.obj --format csv                      # one row per point
  dbscan sweep points.csv --radius 0.2 --values 3,5,8     # compare MinPts values
  dbscan kdist points.csv --k 4                           # suggest a radius`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.log != nil {
				_ = a.log.Sync()
			}
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.configPath, "config", "", "Config file (yaml, toml or json)")
	pf.CountVarP(&a.verbosity, "verbose", "v", "Increase log verbosity (-v summary, -vv per cluster)")
	pf.BoolVar(&a.jsonLogs, "json-logs", false, "Write logs as JSON lines")

	pf.Float64("radius", d.Radius, "Neighborhood radius (inclusive)")
	pf.Int("min-pts", d.MinPts, "Neighbors, counting the point itself, that make a core point")
	pf.String("metric", "euclidean", "Distance metric: euclidean, manhattan, chebyshev, cosine, minkowski")
	pf.String("algorithm", string(d.Algorithm), "Neighbor index: auto, brute, kdtree, balltree, gonum_kdtree, grid")
	pf.Int("leaf-size", d.LeafSize, "Spatial tree leaf size")
	pf.Bool("precompute", false, "Materialize every neighbor list before labeling")
	pf.Int("workers", 0, "Goroutines for precomputation (0 = NumCPU)")
	pf.Int("cache-size", 0, "LRU cache of neighbor lists (0 = off)")
	pf.Float64("minkowski-p", 2, "Exponent for the minkowski metric")

	root.AddCommand(newLabelCommand(a))
	root.AddCommand(newSweepCommand(a))
	root.AddCommand(newKDistCommand(a))
	return root
}

func (a *app) init(cmd *cobra.Command) error {
	a.stderr = cmd.ErrOrStderr()

	v, err := config.New(a.configPath)
	if err != nil {
		return err
	}
	pf := cmd.Root().PersistentFlags()
	for name, key := range flagKeys {
		if err := v.BindPFlag(key, pf.Lookup(name)); err != nil {
			return errors.Wrapf(err, "failed to bind flag --%s", name)
		}
	}
	a.v = v

	a.log, a.runID = logging.New(logging.Options{
		Verbosity: a.verbosity,
		JSON:      a.jsonLogs,
		Output:    a.stderr,
	})
	return nil
}

// dbscanConfig resolves the effective library configuration.
func (a *app) dbscanConfig() (dbscan.Config, error) {
	c, err := config.Load(a.v)
	if err != nil {
		return dbscan.Config{}, err
	}
	cfg, err := c.ToDBSCAN()
	if err != nil {
		return dbscan.Config{}, err
	}
	cfg.Logger = a.log
	return cfg, nil
}

// Execute runs the command tree and returns the process exit code.
func Execute(args []string, stdout, stderr io.Writer) int {
	root := NewRootCommand()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	if err := root.Execute(); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		for _, hint := range errors.GetAllHints(err) {
			fmt.Fprintf(stderr, "Hint: %s\n", hint)
		}
		return 1
	}
	return 0
}
