package dbscan

import (
	"testing"

	"github.com/cockroachdb/errors"
)

func TestVerify_AcceptsLabeling(t *testing.T) {
	q := lineIndex(1, 0, 1, 2, 3, 10)
	clusters, labels := mustLabel(t, q, 3)
	if err := Verify(q, 3, labels, clusters); err != nil {
		t.Errorf("Verify: %v", err)
	}
}

func TestVerify_AcceptsAnyDiscoverer(t *testing.T) {
	// Point 1 could have been discovered by 0 or 2; both are valid.
	q := adjacency{
		{0, 1, 2},
		{0, 1, 2},
		{0, 1, 2},
	}
	labels := []Label{ClusterLabel(0, 0), ClusterLabel(0, 2), ClusterLabel(0, 0)}
	if err := Verify(q, 3, labels, 1); err != nil {
		t.Errorf("Verify: %v", err)
	}
}

func TestVerify_Rejects(t *testing.T) {
	// 1 and 2 are core (minPts 3), 0 and 3 are border points, 4 and 5 are
	// isolated.
	q := lineIndex(1, 0, 1, 2, 3, 4.5, 10)
	goodClusters, good := mustLabel(t, q, 3)
	if err := Verify(q, 3, good, goodClusters); err != nil {
		t.Fatalf("baseline rejected: %v", err)
	}

	tests := []struct {
		name     string
		clusters int
		mutate   func([]Label)
	}{
		{"undefined point", 1, func(l []Label) { l[5] = Label{} }},
		{"id out of range", 1, func(l []Label) { l[3] = ClusterLabel(1, 2) }},
		{"empty cluster", 2, func([]Label) {}},
		{"core point as noise", 1, func(l []Label) { l[1] = NoiseLabel() }},
		{"reachable point as noise", 1, func(l []Label) { l[3] = NoiseLabel() }},
		{"isolated point clustered", 2, func(l []Label) { l[5] = ClusterLabel(1, 5) }},
		{"non-core seed", 2, func(l []Label) { l[4] = ClusterLabel(1, 4) }},
		{"discovered by non-core", 1, func(l []Label) { l[4] = ClusterLabel(0, 3) }},
		{"discoverer not a neighbor", 1, func(l []Label) { l[3] = ClusterLabel(0, 1) }},
		{"broken forest", 1, func(l []Label) { l[2] = ClusterLabel(0, 9) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			labels := append([]Label(nil), good...)
			tt.mutate(labels)
			err := Verify(q, 3, labels, tt.clusters)
			if !errors.Is(err, ErrInvalidLabeling) {
				t.Errorf("expected ErrInvalidLabeling, got %v", err)
			}
		})
	}
}

func TestVerify_SplitCluster(t *testing.T) {
	// One dense chain labeled as two clusters.
	q := lineIndex(1, 0, 1, 2, 3, 4, 5)
	labels := []Label{
		ClusterLabel(0, 1),
		ClusterLabel(0, 1),
		ClusterLabel(0, 1),
		ClusterLabel(1, 4),
		ClusterLabel(1, 4),
		ClusterLabel(1, 4),
	}
	if err := Verify(q, 3, labels, 2); !errors.Is(err, ErrInvalidLabeling) {
		t.Errorf("expected ErrInvalidLabeling, got %v", err)
	}
}

func TestVerify_MergedClusters(t *testing.T) {
	// Two separate groups labeled as one cluster.
	q := lineIndex(1, 0, 1, 2, 10, 11, 12)
	labels := []Label{
		ClusterLabel(0, 1),
		ClusterLabel(0, 1),
		ClusterLabel(0, 1),
		ClusterLabel(0, 4),
		ClusterLabel(0, 4),
		ClusterLabel(0, 4),
	}
	if err := Verify(q, 3, labels, 1); !errors.Is(err, ErrInvalidLabeling) {
		t.Errorf("expected ErrInvalidLabeling, got %v", err)
	}
}

func TestVerify_LengthMismatch(t *testing.T) {
	q := lineIndex(1, 0, 1)
	if err := Verify(q, 2, []Label{NoiseLabel()}, 0); !errors.Is(err, ErrInvalidLabeling) {
		t.Errorf("expected ErrInvalidLabeling, got %v", err)
	}
}

func TestVerify_UsesNeighborTable(t *testing.T) {
	q := lineIndex(1, 0, 1, 2, 8)
	table := BuildNeighborTable(q, 2)
	clusters, labels := mustLabel(t, table, 2)
	if err := Verify(table, 2, labels, clusters); err != nil {
		t.Errorf("Verify: %v", err)
	}
}
