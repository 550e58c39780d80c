package dbscan

import "go.uber.org/zap"

// SweepResult summarizes one labeling run of a Sweep.
type SweepResult struct {
	MinPts   int
	Clusters int
	Noise    int
	Result   *Result
}

// Sweep labels q once per value in minPts, sharing the neighbor lists
// between runs. Unless q is already a NeighborTable, every list is computed
// once up front with cfg.Workers goroutines. Results are in the order of
// minPts. Only Workers and Logger are read from cfg.
func Sweep(q NeighborQuerier, minPts []int, cfg Config) ([]SweepResult, error) {
	applyDefaults(&cfg)
	for _, m := range minPts {
		if m < 1 {
			return nil, invalidf("dbscan: MinPts must be >= 1 (the count includes the point itself), got %d", m)
		}
	}
	if cfg.Workers < 0 {
		return nil, invalidf("dbscan: Workers must be >= 0, got %d", cfg.Workers)
	}

	table, ok := q.(*NeighborTable)
	if !ok {
		table = BuildNeighborTable(q, cfg.Workers)
		cfg.Logger.Debug("neighbor table built",
			zap.Int("points", table.NumPoints()),
			zap.Int("entries", table.Len()),
		)
	}

	out := make([]SweepResult, 0, len(minPts))
	for _, m := range minPts {
		run := cfg
		run.MinPts = m
		res := runLabeling(table, "", run)
		out = append(out, SweepResult{
			MinPts:   m,
			Clusters: res.NumClusters,
			Noise:    res.NoiseCount,
			Result:   res,
		})
	}
	return out, nil
}
