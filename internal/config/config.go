// Package config loads dbscan settings from defaults, an optional config
// file, DBSCAN_* environment variables and command-line flags, in
// increasing order of precedence.
package config

import (
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/spf13/viper"

	"github.com/TrevorS/dbscan"
)

// Config mirrors the file layout:
//
//	radius: 0.5
//	min_pts: 5
//	metric: euclidean
//	algorithm: auto
//	leaf_size: 40
//	precompute: false
//	workers: 0
//	cache_size: 0
//	minkowski_p: 2
type Config struct {
	Radius     float64 `mapstructure:"radius"`
	MinPts     int     `mapstructure:"min_pts"`
	Metric     string  `mapstructure:"metric"`
	Algorithm  string  `mapstructure:"algorithm"`
	LeafSize   int     `mapstructure:"leaf_size"`
	Precompute bool    `mapstructure:"precompute"`
	Workers    int     `mapstructure:"workers"`
	CacheSize  int     `mapstructure:"cache_size"`
	MinkowskiP float64 `mapstructure:"minkowski_p"`
}

// SetDefaults registers the default of every key.
func SetDefaults(v *viper.Viper) {
	d := dbscan.DefaultConfig()
	v.SetDefault("radius", d.Radius)
	v.SetDefault("min_pts", d.MinPts)
	v.SetDefault("metric", "euclidean")
	v.SetDefault("algorithm", string(d.Algorithm))
	v.SetDefault("leaf_size", d.LeafSize)
	v.SetDefault("precompute", false)
	v.SetDefault("workers", 0)     // runtime.NumCPU()
	v.SetDefault("cache_size", 0)  // no cache
	v.SetDefault("minkowski_p", 2) // only read for metric: minkowski
}

// New returns a viper instance with defaults and environment binding in
// place. A non-empty path is read as the config file; its type follows the
// extension.
func New(path string) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix("DBSCAN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	SetDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "failed to read config file %s", path)
		}
	}
	return v, nil
}

// Load unmarshals v into a Config.
func Load(v *viper.Viper) (*Config, error) {
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}
	return &c, nil
}

// Metric resolves a metric name.
func Metric(name string, p float64) (dbscan.DistanceMetric, error) {
	switch strings.ToLower(name) {
	case "", "euclidean", "l2":
		return dbscan.EuclideanMetric{}, nil
	case "manhattan", "l1", "cityblock":
		return dbscan.ManhattanMetric{}, nil
	case "chebyshev", "linf":
		return dbscan.ChebyshevMetric{}, nil
	case "cosine":
		return dbscan.CosineMetric{}, nil
	case "minkowski":
		if p < 1 {
			return nil, errors.Mark(errors.Newf("minkowski_p must be >= 1, got %g", p), dbscan.ErrInvalidConfig)
		}
		return dbscan.MinkowskiMetric{P: p}, nil
	}
	return nil, errors.WithHint(
		errors.Mark(errors.Newf("unknown metric %q", name), dbscan.ErrInvalidConfig),
		"use one of euclidean, manhattan, chebyshev, cosine, minkowski")
}

// ToDBSCAN converts c into a library Config. Range checks are left to the
// dbscan entry points.
func (c *Config) ToDBSCAN() (dbscan.Config, error) {
	m, err := Metric(c.Metric, c.MinkowskiP)
	if err != nil {
		return dbscan.Config{}, err
	}
	return dbscan.Config{
		Radius:     c.Radius,
		MinPts:     c.MinPts,
		Metric:     m,
		Algorithm:  dbscan.Algorithm(strings.ToLower(c.Algorithm)),
		LeafSize:   c.LeafSize,
		Precompute: c.Precompute,
		Workers:    c.Workers,
		CacheSize:  c.CacheSize,
	}, nil
}
