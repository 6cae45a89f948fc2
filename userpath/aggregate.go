package userpath

import (
	"sort"
	"strings"
)

// StepSeparator joins step identifiers into the canonical path string.
const StepSeparator = " → "

// AnchorMode constrains where an anchor option must match in a path.
type AnchorMode string

const (
	AnchorStart AnchorMode = "start"
	AnchorEnd   AnchorMode = "end"
	AnchorNone  AnchorMode = ""
)

// PathCountTable maps canonical path strings to their occurrence counts
// across all sessions. It is the sole input of the view builders.
type PathCountTable map[string]int

// AggregateOptions select which session paths are counted.
type AggregateOptions struct {
	PathType    AnchorMode
	StartOption string
	EndOption   string
	PathLength  string
	MinCount    int
}

// JoinSteps renders a step sequence as its canonical path string.
func JoinSteps(steps []string) string {
	return strings.Join(steps, StepSeparator)
}

// SplitPath is the inverse of JoinSteps.
func SplitPath(path string) []string {
	return strings.Split(path, StepSeparator)
}

// ExtractOptionKey pulls the matchable keyword out of an anchor option.
// Event options match against the formatted label, since that is what
// step identifiers are built from.
func ExtractOptionKey(option string) string {
	switch {
	case strings.HasPrefix(option, "event_"):
		return FormatEventLabel(strings.TrimPrefix(option, "event_"))
	case strings.HasPrefix(option, "page_"):
		return strings.TrimPrefix(option, "page_")
	case strings.HasPrefix(option, "url_"):
		return strings.TrimPrefix(option, "url_")
	case strings.HasPrefix(option, "title_"):
		return strings.TrimPrefix(option, "title_")
	case strings.HasPrefix(option, "referrer_"):
		return strings.TrimPrefix(option, "referrer_")
	}
	return option
}

// MatchesPathLength reports whether a path with the given step count
// falls into the named bucket. Unrecognized buckets pass everything.
func MatchesPathLength(length int, bucket string) bool {
	switch bucket {
	case "2-3":
		return length >= 2 && length <= 3
	case "4-5":
		return length >= 4 && length <= 5
	case "6-8":
		return length >= 6 && length <= 8
	case "9+":
		return length >= 9
	}
	return true
}

func matchesAnchor(steps []string, key string) bool {
	for _, step := range steps {
		if strings.Contains(step, key) {
			return true
		}
	}
	return false
}

// Aggregate counts identical session paths, applying the anchor and
// length filters, then removes entries below MinCount. An empty table is
// a valid outcome, not an error.
func Aggregate(sessions []Session, opts AggregateOptions) PathCountTable {
	table := PathCountTable{}

	for _, s := range sessions {
		steps := s.Steps
		if len(steps) < 2 {
			continue
		}

		if opts.PathType == AnchorStart && opts.StartOption != "" {
			key := ExtractOptionKey(opts.StartOption)
			if !matchesAnchor(steps[:2], key) {
				continue
			}
		} else if opts.PathType == AnchorEnd && opts.EndOption != "" {
			key := ExtractOptionKey(opts.EndOption)
			if !matchesAnchor(steps[len(steps)-2:], key) {
				continue
			}
		}

		if !MatchesPathLength(len(steps), opts.PathLength) {
			continue
		}

		table[JoinSteps(steps)]++
	}

	return FilterMinCount(table, opts.MinCount)
}

// FilterMinCount drops paths with a count below min. Idempotent.
func FilterMinCount(table PathCountTable, min int) PathCountTable {
	filtered := PathCountTable{}
	for path, count := range table {
		if count >= min {
			filtered[path] = count
		}
	}
	return filtered
}

// Total sums all occurrence counts in the table.
func (t PathCountTable) Total() int {
	total := 0
	for _, count := range t {
		total += count
	}
	return total
}

// sortedPaths returns the table's keys in lexical order, for
// deterministic iteration.
func (t PathCountTable) sortedPaths() []string {
	paths := make([]string, 0, len(t))
	for path := range t {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return paths
}
