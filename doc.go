// Package dbscan implements Density-Based Spatial Clustering of Applications
// with Noise (DBSCAN) that also records how each cluster was discovered.
//
// Every clustered point carries, besides its cluster ID, the index of the
// point whose neighborhood expansion reached it. These prev links form one
// tree per cluster, rooted at the seed that started the cluster (whose prev
// is its own index).
//
// Basic usage:
//
//	cfg := dbscan.DefaultConfig()
//	cfg.Radius = 0.3
//	cfg.MinPts = 4
//	result, err := dbscan.Cluster(data, cfg)
//	// result.Labels[i].Cluster() returns (id, prev, ok)
//	// result.Labels[i].IsNoise() reports a noise point
//
// For precomputed distance matrices:
//
//	result, err := dbscan.ClusterPrecomputed(distMatrix, n, cfg)
//
// Any NeighborQuerier can drive the labeling directly:
//
//	n, labels, err := dbscan.LabelClusters(q, minPts)
//
// # Neighborhoods
//
// Two points are neighbors when their distance is <= Radius, and every
// point is its own neighbor. A point is a core point when it has at least
// MinPts neighbors, itself included.
//
// # Algorithm selection
//
// By default (Algorithm: "auto"), Cluster answers radius queries with a
// KD-tree for Lp metrics on data of up to 60 dimensions, a Ball tree above
// that, and a linear scan for other metrics. Set Config.Algorithm to force a
// specific index:
//
//	cfg.Algorithm = dbscan.AlgorithmBrute       // linear scan, any metric
//	cfg.Algorithm = dbscan.AlgorithmGrid        // hash grid with cell side Radius
//	cfg.Algorithm = dbscan.AlgorithmGonumKDTree // gonum spatial/kdtree
//
// # Choosing a radius
//
// KDistances computes each point's distance to its MinPts-th nearest point,
// and SuggestRadius picks a quantile of that curve.
package dbscan
