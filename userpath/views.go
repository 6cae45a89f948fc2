package userpath

import (
	"fmt"
	"sort"
	"strings"
)

type DistributionItem struct {
	Value int    `json:"value"`
	Name  string `json:"name"`
}

// StepDistribution buckets paths by step count.
type StepDistribution struct {
	Steps []DistributionItem `json:"steps"`
}

var lengthBuckets = []struct {
	Name string
	Min  int
	Max  int
}{
	{"2-3 step paths", 2, 3},
	{"4-5 step paths", 4, 5},
	{"6-8 step paths", 6, 8},
	{"9+ step paths", 9, 1 << 30},
}

// BuildStepDistribution sums path occurrence counts into the four fixed
// length buckets. Empty buckets are omitted.
func BuildStepDistribution(table PathCountTable) StepDistribution {
	totals := make([]int, len(lengthBuckets))
	for path, count := range table {
		length := len(SplitPath(path))
		for i, b := range lengthBuckets {
			if length >= b.Min && length <= b.Max {
				totals[i] += count
				break
			}
		}
	}

	dist := StepDistribution{Steps: []DistributionItem{}}
	for i, b := range lengthBuckets {
		if totals[i] > 0 {
			dist.Steps = append(dist.Steps, DistributionItem{Value: totals[i], Name: b.Name})
		}
	}
	return dist
}

type FunnelStep struct {
	Value int    `json:"value"`
	Name  string `json:"name"`
}

// PathConversion ranks the most visited steps into a funnel. TotalUsers
// is the largest single step aggregate and serves as the funnel's
// reference denominator.
type PathConversion struct {
	FunnelData []FunnelStep `json:"funnelData"`
	TotalUsers int          `json:"totalUsers"`
}

const funnelTopK = 6

// funnelDisplayName simplifies a step identifier for funnel display:
// anything after a colon or an opening parenthesis is presentation
// detail, not funnel identity.
func funnelDisplayName(step string) string {
	name := step
	if idx := strings.Index(name, ":"); idx >= 0 {
		name = name[:idx]
	}
	if idx := strings.Index(name, "("); idx >= 0 {
		name = name[:idx]
	}
	return name
}

// BuildPathConversion computes per step totals weighted by path count,
// ranks them descending and keeps the top entries.
func BuildPathConversion(table PathCountTable) PathConversion {
	conversion := PathConversion{FunnelData: []FunnelStep{}}
	if len(table) == 0 {
		return conversion
	}

	stepTotals := map[string]int{}
	stepOrder := []string{}
	for _, path := range table.sortedPaths() {
		count := table[path]
		for _, step := range SplitPath(path) {
			if _, ok := stepTotals[step]; !ok {
				stepOrder = append(stepOrder, step)
			}
			stepTotals[step] += count
		}
	}

	sort.SliceStable(stepOrder, func(i, j int) bool {
		return stepTotals[stepOrder[i]] > stepTotals[stepOrder[j]]
	})

	for i, step := range stepOrder {
		if i == funnelTopK {
			break
		}
		conversion.FunnelData = append(conversion.FunnelData, FunnelStep{
			Value: stepTotals[step],
			Name:  funnelDisplayName(step),
		})
	}
	// The ranking is descending, so the first entry carries the maximum.
	conversion.TotalUsers = stepTotals[stepOrder[0]]

	return conversion
}

// PathStat describes one path's share and its estimated duration and
// conversion. Duration and conversion are heuristic estimates derived
// from path shape, not measurements.
type PathStat struct {
	Count          int    `json:"count"`
	Percentage     string `json:"percentage"`
	AvgDuration    string `json:"avgDuration"`
	ConversionRate string `json:"conversionRate"`
}

// BuildPathStats computes the per path statistics table.
func BuildPathStats(table PathCountTable) map[string]PathStat {
	stats := map[string]PathStat{}
	total := table.Total()

	for path, count := range table {
		steps := SplitPath(path)

		percentage := 0.0
		if total > 0 {
			percentage = float64(count) / float64(total) * 100
		}

		// Estimated duration: 15s per step, page transitions add
		// complexity, plus a small deterministic jitter.
		pageSteps := 0
		for _, step := range steps {
			if strings.Contains(step, ":") {
				pageSteps++
			}
		}
		baseDuration := float64(len(steps) * 15)
		complexity := 1 + float64(pageSteps)*0.3
		avgDuration := baseDuration*complexity + float64(count%20)

		// Estimated conversion: longer paths convert worse.
		conversionRate := 80 - len(steps)*5 + count%15
		if conversionRate < 10 {
			conversionRate = 10
		}

		stats[path] = PathStat{
			Count:          count,
			Percentage:     fmt.Sprintf("%.1f%%", percentage),
			AvgDuration:    fmt.Sprintf("%.1fs", avgDuration),
			ConversionRate: fmt.Sprintf("%.1f%%", float64(conversionRate)),
		}
	}
	return stats
}

// AnalysisOptions is the full parameter set of one analysis request.
type AnalysisOptions struct {
	Options
	AggregateOptions

	// Keyword restricts the working set to events whose step identifier
	// contains it, case insensitively.
	Keyword string
}

// AnalysisResult bundles the four views produced from one path table.
type AnalysisResult struct {
	Sankey           SankeyData          `json:"sankey"`
	StepDistribution StepDistribution    `json:"stepDistribution"`
	PathConversion   PathConversion      `json:"pathConversion"`
	PathStats        map[string]PathStat `json:"pathStats"`
}

// EmptyResult is the explicit no-data response: all sections present,
// all empty. Yielding no paths is a normal outcome, not a failure.
func EmptyResult() AnalysisResult {
	return AnalysisResult{
		Sankey:           SankeyData{Nodes: []SankeyNode{}, Links: []SankeyLink{}},
		StepDistribution: StepDistribution{Steps: []DistributionItem{}},
		PathConversion:   PathConversion{FunnelData: []FunnelStep{}},
		PathStats:        map[string]PathStat{},
	}
}

// Analyze runs the whole pipeline over a raw event table: normalize,
// filter, segment, aggregate, then build the four views. All state is
// request scoped; concurrent calls are independent.
func Analyze(events []RawEvent, opts AnalysisOptions) AnalysisResult {
	if len(events) == 0 {
		return EmptyResult()
	}

	normalized := NormalizeAll(events, opts.Options)

	if opts.Keyword != "" {
		keyword := strings.ToLower(opts.Keyword)
		filtered := make([]NormalizedEvent, 0, len(normalized))
		for _, e := range normalized {
			if strings.Contains(strings.ToLower(e.StepIdentifier), keyword) {
				filtered = append(filtered, e)
			}
		}
		normalized = filtered
	}

	sessions := Segment(normalized, opts.SessionTimeout)
	table := Aggregate(sessions, opts.AggregateOptions)
	if len(table) == 0 {
		return EmptyResult()
	}

	return AnalysisResult{
		Sankey:           BuildSankey(table),
		StepDistribution: BuildStepDistribution(table),
		PathConversion:   BuildPathConversion(table),
		PathStats:        BuildPathStats(table),
	}
}
