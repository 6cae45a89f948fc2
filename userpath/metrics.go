package userpath

import (
	"sort"

	Hist "github.com/VividCortex/gohistogram"
)

const numLengthBins = 10

// PathMetrics summarizes the shape of a path table: how many distinct
// paths, how much traffic, and how path lengths and per path traffic
// distribute.
type PathMetrics struct {
	TotalPaths       int     `json:"total_paths"`
	TotalUsers       int     `json:"total_users"`
	AvgPathLength    float64 `json:"avg_path_length"`
	MedianPathLength float64 `json:"median_path_length"`
	MaxPathLength    int     `json:"max_path_length"`
	MinPathLength    int     `json:"min_path_length"`
	AvgUsersPerPath  float64 `json:"avg_users_per_path"`
	MaxUsersInPath   int     `json:"max_users_in_path"`
	MinUsersInPath   int     `json:"min_users_in_path"`
}

// ComputePathMetrics derives summary metrics from a path table. The
// zero value is returned for an empty table.
func ComputePathMetrics(table PathCountTable) PathMetrics {
	if len(table) == 0 {
		return PathMetrics{}
	}

	lengthHist := Hist.NewHistogram(numLengthBins)

	m := PathMetrics{
		TotalPaths:     len(table),
		MinPathLength:  int(^uint(0) >> 1),
		MinUsersInPath: int(^uint(0) >> 1),
	}
	lengthSum := 0
	for path, count := range table {
		length := len(SplitPath(path))
		lengthHist.Add(float64(length))
		lengthSum += length
		m.TotalUsers += count

		if length > m.MaxPathLength {
			m.MaxPathLength = length
		}
		if length < m.MinPathLength {
			m.MinPathLength = length
		}
		if count > m.MaxUsersInPath {
			m.MaxUsersInPath = count
		}
		if count < m.MinUsersInPath {
			m.MinUsersInPath = count
		}
	}

	m.AvgPathLength = float64(lengthSum) / float64(len(table))
	m.MedianPathLength = lengthHist.Quantile(0.5)
	m.AvgUsersPerPath = float64(m.TotalUsers) / float64(len(table))
	return m
}

// PathCount is one entry of a ranked path list.
type PathCount struct {
	Path  string `json:"path"`
	Count int    `json:"count"`
}

// PopularPaths returns the topN paths by occurrence count, descending.
// Ties keep lexical path order so the ranking is deterministic.
func PopularPaths(table PathCountTable, topN int) []PathCount {
	ranked := make([]PathCount, 0, len(table))
	for _, path := range table.sortedPaths() {
		ranked = append(ranked, PathCount{Path: path, Count: table[path]})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Count > ranked[j].Count
	})
	if topN > 0 && len(ranked) > topN {
		ranked = ranked[:topN]
	}
	return ranked
}
