package pointio

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"

	"github.com/TrevorS/dbscan"
	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"
)

// Report is what the CLI writes for one labeling run.
type Report struct {
	RunID        string         `json:"run_id" yaml:"run_id"`
	Points       int            `json:"points" yaml:"points"`
	Clusters     int            `json:"clusters" yaml:"clusters"`
	Noise        int            `json:"noise" yaml:"noise"`
	Algorithm    string         `json:"algorithm" yaml:"algorithm"`
	Radius       float64        `json:"radius" yaml:"radius"`
	MinPts       int            `json:"min_pts" yaml:"min_pts"`
	ClusterSizes []int          `json:"cluster_sizes" yaml:"cluster_sizes"`
	Labels       []dbscan.Label `json:"labels" yaml:"labels"`
	Edges        [][2]int       `json:"edges" yaml:"edges"`
}

// NewReport summarizes res, the result of clustering with cfg.
func NewReport(runID string, cfg dbscan.Config, res *dbscan.Result) Report {
	r := Report{
		RunID:        runID,
		Points:       len(res.Labels),
		Clusters:     res.NumClusters,
		Noise:        res.NoiseCount,
		Algorithm:    string(res.Algorithm),
		Radius:       cfg.Radius,
		MinPts:       cfg.MinPts,
		ClusterSizes: res.ClusterSizes,
		Labels:       res.Labels,
		Edges:        make([][2]int, 0, len(res.Labels)),
	}
	for _, e := range dbscan.Edges(res.Labels) {
		r.Edges = append(r.Edges, [2]int{e.Point, e.Prev})
	}
	return r
}

// WriteJSON writes r as indented JSON.
func WriteJSON(w io.Writer, r Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return errors.Wrap(enc.Encode(r), "pointio: encode json")
}

// WriteYAML writes r as a YAML document.
func WriteYAML(w io.Writer, r Report) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(r); err != nil {
		return errors.Wrap(err, "pointio: encode yaml")
	}
	return errors.Wrap(enc.Close(), "pointio: encode yaml")
}

// WriteCSV writes one "index,kind,cluster,prev" row per point. Cluster
// and prev are -1 for noise.
func WriteCSV(w io.Writer, labels []dbscan.Label) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"index", "kind", "cluster", "prev"}); err != nil {
		return errors.Wrap(err, "pointio: write csv")
	}
	for i, l := range labels {
		row := []string{
			strconv.Itoa(i),
			l.Kind().String(),
			strconv.Itoa(l.ClusterID()),
			strconv.Itoa(l.Prev()),
		}
		if err := cw.Write(row); err != nil {
			return errors.Wrap(err, "pointio: write csv")
		}
	}
	cw.Flush()
	return errors.Wrap(cw.Error(), "pointio: write csv")
}
