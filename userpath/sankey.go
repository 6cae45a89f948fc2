package userpath

import "sort"

type SankeyNode struct {
	Name string `json:"name"`
}

type SankeyLink struct {
	Source     int    `json:"source"`
	Target     int    `json:"target"`
	Value      int    `json:"value"`
	SourceName string `json:"sourceName"`
	TargetName string `json:"targetName"`
}

// SankeyData is the flow graph view: nodes ordered left to right by
// typical position, links weighted by aggregate transition counts.
type SankeyData struct {
	Nodes []SankeyNode `json:"nodes"`
	Links []SankeyLink `json:"links"`
}

type transition struct {
	source string
	target string
}

// StepPositions computes each step's typical position: the count
// weighted average of its zero based index over all paths containing it.
func StepPositions(table PathCountTable) map[string]float64 {
	positions := map[string]float64{}
	counts := map[string]int{}

	for _, path := range table.sortedPaths() {
		count := table[path]
		for i, step := range SplitPath(path) {
			positions[step] += float64(i * count)
			counts[step] += count
		}
	}

	for step := range positions {
		if counts[step] > 0 {
			positions[step] /= float64(counts[step])
		}
	}
	return positions
}

// BuildSankey assembles the flow graph from the path table. Nodes are
// sorted ascending by typical position so the graph reads left to
// right. Only forward links under that ordering are emitted: transitions
// that run backward against the typical ordering are suppressed to keep
// the graph acyclic and layerable, at the cost of some weight.
func BuildSankey(table PathCountTable) SankeyData {
	data := SankeyData{Nodes: []SankeyNode{}, Links: []SankeyLink{}}
	if len(table) == 0 {
		return data
	}

	// Collect steps in first-seen order and sum transition weights.
	steps := []string{}
	seen := map[string]bool{}
	transitions := map[transition]int{}
	transitionOrder := []transition{}

	for _, path := range table.sortedPaths() {
		count := table[path]
		pathSteps := SplitPath(path)
		for _, step := range pathSteps {
			if !seen[step] {
				seen[step] = true
				steps = append(steps, step)
			}
		}
		for i := 0; i < len(pathSteps)-1; i++ {
			tr := transition{source: pathSteps[i], target: pathSteps[i+1]}
			if _, ok := transitions[tr]; !ok {
				transitionOrder = append(transitionOrder, tr)
			}
			transitions[tr] += count
		}
	}

	positions := StepPositions(table)
	sort.SliceStable(steps, func(i, j int) bool {
		return positions[steps[i]] < positions[steps[j]]
	})

	stepIndex := map[string]int{}
	for i, step := range steps {
		data.Nodes = append(data.Nodes, SankeyNode{Name: step})
		stepIndex[step] = i
	}

	for _, tr := range transitionOrder {
		sourceIdx := stepIndex[tr.source]
		targetIdx := stepIndex[tr.target]
		if sourceIdx < targetIdx {
			data.Links = append(data.Links, SankeyLink{
				Source:     sourceIdx,
				Target:     targetIdx,
				Value:      transitions[tr],
				SourceName: tr.source,
				TargetName: tr.target,
			})
		}
	}

	return data
}
