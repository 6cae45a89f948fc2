package userpath_test

import (
	"testing"

	P "github.com/xjrad/miniapp-data-analysis/userpath"

	"github.com/stretchr/testify/assert"
)

func TestBuildStepDistribution(t *testing.T) {
	table := P.PathCountTable{
		P.JoinSteps([]string{"A", "B"}):                                    5,
		P.JoinSteps([]string{"A", "B", "C"}):                               2,
		P.JoinSteps([]string{"A", "B", "C", "D", "E"}):                     3,
		P.JoinSteps([]string{"A", "B", "C", "D", "E", "F", "G", "H", "I"}): 1,
	}

	dist := P.BuildStepDistribution(table)
	assert.Equal(t, []P.DistributionItem{
		{Value: 7, Name: "2-3 step paths"},
		{Value: 3, Name: "4-5 step paths"},
		{Value: 1, Name: "9+ step paths"},
	}, dist.Steps)
}

func TestBuildStepDistributionEmpty(t *testing.T) {
	dist := P.BuildStepDistribution(P.PathCountTable{})
	assert.NotNil(t, dist.Steps)
	assert.Equal(t, 0, len(dist.Steps))
}

func TestBuildPathConversion(t *testing.T) {
	// Step totals: A=5+2=7, B=5, C=2. Ranking is descending and
	// totalUsers equals the largest single step aggregate.
	table := P.PathCountTable{
		P.JoinSteps([]string{"A(Home)", "B(Cart)"}):            5,
		P.JoinSteps([]string{"A(Home)", "C(Search)"}):          2,
	}

	conversion := P.BuildPathConversion(table)
	assert.Equal(t, 3, len(conversion.FunnelData))
	assert.Equal(t, 7, conversion.TotalUsers)
	assert.Equal(t, conversion.FunnelData[0].Value, conversion.TotalUsers)

	// Display names drop the parenthesized suffix.
	assert.Equal(t, "A", conversion.FunnelData[0].Name)
	assert.Equal(t, 7, conversion.FunnelData[0].Value)
	assert.Equal(t, "B", conversion.FunnelData[1].Name)
	assert.Equal(t, 5, conversion.FunnelData[1].Value)
}

func TestBuildPathConversionTopSix(t *testing.T) {
	// Eight distinct steps, only the six most frequent are kept.
	table := P.PathCountTable{
		P.JoinSteps([]string{"A", "B", "C", "D"}): 8,
		P.JoinSteps([]string{"E", "F", "G", "H"}): 3,
	}

	conversion := P.BuildPathConversion(table)
	assert.Equal(t, 6, len(conversion.FunnelData))
	assert.Equal(t, 8, conversion.TotalUsers)

	maxKept := 0
	for _, step := range conversion.FunnelData {
		if step.Value > maxKept {
			maxKept = step.Value
		}
	}
	assert.Equal(t, maxKept, conversion.TotalUsers)
}

func TestBuildPathConversionEmpty(t *testing.T) {
	conversion := P.BuildPathConversion(P.PathCountTable{})
	assert.NotNil(t, conversion.FunnelData)
	assert.Equal(t, 0, len(conversion.FunnelData))
	assert.Equal(t, 0, conversion.TotalUsers)
}

func TestBuildPathStats(t *testing.T) {
	table := P.PathCountTable{
		P.JoinSteps([]string{"A", "B"}):      3,
		P.JoinSteps([]string{"A", "B", "C"}): 1,
	}

	stats := P.BuildPathStats(table)
	assert.Equal(t, 2, len(stats))

	// 2 steps, no page suffixes: duration 2*15*1.0 + 3%20 = 33.0s,
	// conversion 80 - 10 + 3 = 73, share 3/4.
	s := stats[P.JoinSteps([]string{"A", "B"})]
	assert.Equal(t, 3, s.Count)
	assert.Equal(t, "75.0%", s.Percentage)
	assert.Equal(t, "33.0s", s.AvgDuration)
	assert.Equal(t, "73.0%", s.ConversionRate)

	s = stats[P.JoinSteps([]string{"A", "B", "C"})]
	assert.Equal(t, 1, s.Count)
	assert.Equal(t, "25.0%", s.Percentage)
	assert.Equal(t, "46.0s", s.AvgDuration)
	assert.Equal(t, "66.0%", s.ConversionRate)
}

func TestBuildPathStatsConversionFloor(t *testing.T) {
	// A very long path bottoms out at the 10 percent floor.
	steps := []string{"A", "B", "C", "D", "E", "F", "G", "H", "I", "J", "K", "L", "M", "N", "O"}
	table := P.PathCountTable{P.JoinSteps(steps): 5}

	stats := P.BuildPathStats(table)
	assert.Equal(t, "10.0%", stats[P.JoinSteps(steps)].ConversionRate)
}

func TestAnalyzeEndToEnd(t *testing.T) {
	// u1 at 0s and 300s fires the same step twice, then a distinct step
	// at 1000s. No gap exceeds 30 minutes, so one session; the
	// duplicate collapses; the resulting 2 step path lands in the
	// output with count 1.
	events := []P.RawEvent{
		{UserID: "u1", EventName: "page_view", PageTitle: "Home", TimestampSeconds: 0},
		{UserID: "u1", EventName: "page_view", PageTitle: "Home", TimestampSeconds: 300},
		{UserID: "u1", EventName: "click", PageTitle: "Home", TimestampSeconds: 1000},
	}

	result := P.Analyze(events, P.AnalysisOptions{
		Options:          P.DefaultOptions(),
		AggregateOptions: P.AggregateOptions{MinCount: 1},
	})

	path := P.JoinSteps([]string{"Page View(Home)", "Click(Home)"})
	assert.Equal(t, 1, len(result.PathStats))
	assert.Equal(t, 1, result.PathStats[path].Count)
	assert.Equal(t, 2, len(result.Sankey.Nodes))
	assert.Equal(t, 1, len(result.Sankey.Links))
	assert.Equal(t, 1, result.Sankey.Links[0].Value)
	assert.Equal(t, []P.DistributionItem{{Value: 1, Name: "2-3 step paths"}}, result.StepDistribution.Steps)
	assert.Equal(t, 1, result.PathConversion.TotalUsers)
}

func TestAnalyzeMinConversionsExcludes(t *testing.T) {
	// Two users share a 3 step path; a third walks a unique one. With
	// minConversions 2 only the shared path remains, at count 2.
	events := []P.RawEvent{
		{UserID: "u1", EventName: "page_view", PageTitle: "Home", TimestampSeconds: 0},
		{UserID: "u1", EventName: "search", PageTitle: "Home", TimestampSeconds: 10},
		{UserID: "u1", EventName: "click", PageTitle: "Home", TimestampSeconds: 20},
		{UserID: "u2", EventName: "page_view", PageTitle: "Home", TimestampSeconds: 0},
		{UserID: "u2", EventName: "search", PageTitle: "Home", TimestampSeconds: 10},
		{UserID: "u2", EventName: "click", PageTitle: "Home", TimestampSeconds: 20},
		{UserID: "u3", EventName: "page_view", PageTitle: "Home", TimestampSeconds: 0},
		{UserID: "u3", EventName: "share", PageTitle: "Home", TimestampSeconds: 10},
	}

	result := P.Analyze(events, P.AnalysisOptions{
		Options:          P.DefaultOptions(),
		AggregateOptions: P.AggregateOptions{MinCount: 2},
	})

	path := P.JoinSteps([]string{"Page View(Home)", "Search(Home)", "Click(Home)"})
	assert.Equal(t, 1, len(result.PathStats))
	assert.Equal(t, 2, result.PathStats[path].Count)
}

func TestAnalyzeEmptyInput(t *testing.T) {
	result := P.Analyze(nil, P.AnalysisOptions{
		Options:          P.DefaultOptions(),
		AggregateOptions: P.AggregateOptions{MinCount: 1},
	})

	assert.NotNil(t, result.Sankey.Nodes)
	assert.NotNil(t, result.Sankey.Links)
	assert.NotNil(t, result.StepDistribution.Steps)
	assert.NotNil(t, result.PathConversion.FunnelData)
	assert.NotNil(t, result.PathStats)
	assert.Equal(t, 0, len(result.PathStats))
	assert.Equal(t, 0, result.PathConversion.TotalUsers)
}

func TestAnalyzeKeywordFilter(t *testing.T) {
	// The keyword filter narrows the working set before segmentation,
	// matching case insensitively on step identifiers.
	events := []P.RawEvent{
		{UserID: "u1", EventName: "page_view", PageTitle: "Home", TimestampSeconds: 0},
		{UserID: "u1", EventName: "page_view", PageTitle: "Cart", TimestampSeconds: 10},
		{UserID: "u1", EventName: "click", PageTitle: "Settings", TimestampSeconds: 20},
	}

	result := P.Analyze(events, P.AnalysisOptions{
		Options:          P.DefaultOptions(),
		AggregateOptions: P.AggregateOptions{MinCount: 1},
		Keyword:          "page view",
	})

	path := P.JoinSteps([]string{"Page View(Home)", "Page View(Cart)"})
	assert.Equal(t, 1, len(result.PathStats))
	assert.Equal(t, 1, result.PathStats[path].Count)
}

func TestAnalyzeNoSurvivingPaths(t *testing.T) {
	// Every session is too short: the pipeline completes normally with
	// the explicit empty result, not an error.
	events := []P.RawEvent{
		{UserID: "u1", EventName: "page_view", PageTitle: "Home", TimestampSeconds: 0},
	}

	result := P.Analyze(events, P.AnalysisOptions{
		Options:          P.DefaultOptions(),
		AggregateOptions: P.AggregateOptions{MinCount: 1},
	})
	assert.Equal(t, P.EmptyResult(), result)
}
