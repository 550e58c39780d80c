package dbscan

import (
	"encoding/json"
	"fmt"

	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"
)

// LabelKind discriminates the three states a point can be in.
type LabelKind uint8

const (
	// Undefined means the point has not been visited yet.
	Undefined LabelKind = iota
	// Noise means the point was visited as a seed with fewer than MinPts
	// neighbors and has not been reached from a core point (yet).
	Noise
	// Clustered means the point belongs to a cluster. Terminal.
	Clustered
)

func (k LabelKind) String() string {
	switch k {
	case Undefined:
		return "undefined"
	case Noise:
		return "noise"
	case Clustered:
		return "cluster"
	default:
		return fmt.Sprintf("LabelKind(%d)", uint8(k))
	}
}

// Label is the per-point result of a labeling run. The zero value is
// Undefined. Only Clustered labels carry a payload: the dense cluster ID and
// prev, the index of the point whose expansion discovered this one (the
// point's own index for the seed of a cluster).
//
// Labels are comparable, so label == Label{} tests for Undefined.
type Label struct {
	kind LabelKind
	id   int
	prev int
}

// NoiseLabel returns a Noise label.
func NoiseLabel() Label { return Label{kind: Noise} }

// ClusterLabel returns a Clustered label for cluster id discovered by prev.
func ClusterLabel(id, prev int) Label {
	return Label{kind: Clustered, id: id, prev: prev}
}

// Kind returns which of the three states the label is in.
func (l Label) Kind() LabelKind { return l.kind }

// IsNoise reports whether l is a Noise label.
func (l Label) IsNoise() bool { return l.kind == Noise }

// IsCluster reports whether l is a Clustered label.
func (l Label) IsCluster() bool { return l.kind == Clustered }

// Cluster returns the cluster ID and discoverer index. ok is false for
// Undefined and Noise labels.
func (l Label) Cluster() (id, prev int, ok bool) {
	if l.kind != Clustered {
		return -1, -1, false
	}
	return l.id, l.prev, true
}

// ClusterID returns the cluster ID, or -1 if the point is not in a cluster.
func (l Label) ClusterID() int {
	if l.kind != Clustered {
		return -1
	}
	return l.id
}

// Prev returns the discoverer index, or -1 if the point is not in a cluster.
func (l Label) Prev() int {
	if l.kind != Clustered {
		return -1
	}
	return l.prev
}

// IsRoot reports whether l, the label of point i, is the seed of its cluster.
func (l Label) IsRoot(i int) bool {
	return l.kind == Clustered && l.prev == i
}

func (l Label) String() string {
	if l.kind == Clustered {
		return fmt.Sprintf("cluster(%d, prev=%d)", l.id, l.prev)
	}
	return l.kind.String()
}

// labelWire is the encoded form of a Label, shared by JSON and YAML.
type labelWire struct {
	Kind    string `json:"kind" yaml:"kind"`
	Cluster *int   `json:"cluster,omitempty" yaml:"cluster,omitempty"`
	Prev    *int   `json:"prev,omitempty" yaml:"prev,omitempty"`
}

func (l Label) wire() labelWire {
	out := labelWire{Kind: l.kind.String()}
	if l.kind == Clustered {
		id, prev := l.id, l.prev
		out.Cluster = &id
		out.Prev = &prev
	}
	return out
}

func (w labelWire) label() (Label, error) {
	switch w.Kind {
	case "undefined":
		return Label{}, nil
	case "noise":
		return NoiseLabel(), nil
	case "cluster":
		if w.Cluster == nil || w.Prev == nil {
			return Label{}, errors.New("dbscan: cluster label requires cluster and prev")
		}
		return ClusterLabel(*w.Cluster, *w.Prev), nil
	default:
		return Label{}, errors.Newf("dbscan: unknown label kind %q", w.Kind)
	}
}

// MarshalJSON encodes the label as {"kind":"cluster","cluster":0,"prev":3},
// {"kind":"noise"} or {"kind":"undefined"}.
func (l Label) MarshalJSON() ([]byte, error) {
	return json.Marshal(l.wire())
}

// UnmarshalJSON decodes the format written by MarshalJSON.
func (l *Label) UnmarshalJSON(data []byte) error {
	var in labelWire
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	dec, err := in.label()
	if err != nil {
		return err
	}
	*l = dec
	return nil
}

// MarshalYAML encodes the label as a mapping with the JSON field names.
func (l Label) MarshalYAML() (interface{}, error) {
	return l.wire(), nil
}

// UnmarshalYAML decodes the format written by MarshalYAML.
func (l *Label) UnmarshalYAML(node *yaml.Node) error {
	var in labelWire
	if err := node.Decode(&in); err != nil {
		return err
	}
	dec, err := in.label()
	if err != nil {
		return errors.Wrapf(err, "line %d", node.Line)
	}
	*l = dec
	return nil
}

// IntLabels flattens labels into cluster IDs with -1 for noise (and for
// Undefined, which a finished run never produces).
func IntLabels(labels []Label) []int {
	out := make([]int, len(labels))
	for i, l := range labels {
		out[i] = l.ClusterID()
	}
	return out
}
