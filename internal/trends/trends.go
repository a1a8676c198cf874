// Package trends ranks the related keywords mined across stored runs.
package trends

import (
	"sort"
	"time"
)

type Trend struct {
	Keyword    string
	Count      int
	Score      float64
	RecentRuns []int64
}

type Analyzer struct {
	runKeywords map[int64]keywordEntry
	now         func() time.Time
}

type keywordEntry struct {
	keywords  []string
	timestamp time.Time
}

func NewAnalyzer() *Analyzer {
	return &Analyzer{
		runKeywords: make(map[int64]keywordEntry),
		now:         time.Now,
	}
}

// AddRun records the keywords of one run. Adding the same run twice merges
// its keywords; the later timestamp wins.
func (a *Analyzer) AddRun(runID int64, keywords []string, at time.Time) {
	entry, ok := a.runKeywords[runID]
	if !ok {
		entry = keywordEntry{timestamp: at}
	}
	for _, k := range keywords {
		if k != "" && !contains(entry.keywords, k) {
			entry.keywords = append(entry.keywords, k)
		}
	}
	if at.After(entry.timestamp) {
		entry.timestamp = at
	}
	a.runKeywords[runID] = entry
}

func (a *Analyzer) Len() int {
	return len(a.runKeywords)
}

// Trends returns at most limit keywords, scored so that runs inside the last
// days count double and a keyword seen very recently gets up to a 2x boost.
func (a *Analyzer) Trends(days int, limit int) []Trend {
	if days <= 0 {
		days = 7
	}
	now := a.now()
	cutoff := now.AddDate(0, 0, -days)

	keywordCounts := make(map[string]int)
	keywordRuns := make(map[string][]int64)
	keywordRecency := make(map[string]time.Time)

	for runID, entry := range a.runKeywords {
		for _, k := range entry.keywords {
			keywordCounts[k]++
			keywordRuns[k] = append(keywordRuns[k], runID)

			if existing, ok := keywordRecency[k]; !ok || entry.timestamp.After(existing) {
				keywordRecency[k] = entry.timestamp
			}
		}
	}

	var trends []Trend
	for k, count := range keywordCounts {
		recentCount := 0
		var recentRuns []int64
		for _, runID := range keywordRuns[k] {
			if a.runKeywords[runID].timestamp.After(cutoff) {
				recentCount++
				recentRuns = append(recentRuns, runID)
			}
		}
		sort.Slice(recentRuns, func(i, j int) bool { return recentRuns[i] > recentRuns[j] })

		recencyBoost := 1.0
		daysSince := now.Sub(keywordRecency[k]).Hours() / 24
		if daysSince < float64(days) {
			recencyBoost = 1.0 + (float64(days)-daysSince)/float64(days)
		}

		trends = append(trends, Trend{
			Keyword:    k,
			Count:      count,
			Score:      (float64(recentCount)*2 + float64(count)) * recencyBoost,
			RecentRuns: recentRuns,
		})
	}

	sort.Slice(trends, func(i, j int) bool {
		if trends[i].Score != trends[j].Score {
			return trends[i].Score > trends[j].Score
		}
		if trends[i].Count != trends[j].Count {
			return trends[i].Count > trends[j].Count
		}
		return trends[i].Keyword < trends[j].Keyword
	})

	if limit > 0 && len(trends) > limit {
		trends = trends[:limit]
	}
	return trends
}

// Similar returns the runs whose keyword sets overlap runID's, most similar
// first, skipping runs with no overlap.
func (a *Analyzer) Similar(runID int64, limit int) []int64 {
	entry, ok := a.runKeywords[runID]
	if !ok {
		return nil
	}
	type scored struct {
		id  int64
		sim float64
	}
	var candidates []scored
	for id, other := range a.runKeywords {
		if id == runID {
			continue
		}
		if sim := Similarity(entry.keywords, other.keywords); sim > 0 {
			candidates = append(candidates, scored{id, sim})
		}
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].sim != candidates[j].sim {
			return candidates[i].sim > candidates[j].sim
		}
		return candidates[i].id > candidates[j].id
	})

	var out []int64
	for _, c := range candidates {
		if limit > 0 && len(out) >= limit {
			break
		}
		out = append(out, c.id)
	}
	return out
}

// Similarity is the Jaccard index of two keyword sets.
func Similarity(a, b []string) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	setA := make(map[string]bool)
	for _, k := range a {
		setA[k] = true
	}
	setB := make(map[string]bool)
	for _, k := range b {
		setB[k] = true
	}

	intersection := 0
	for k := range setA {
		if setB[k] {
			intersection++
		}
	}
	union := len(setA)
	for k := range setB {
		if !setA[k] {
			union++
		}
	}
	return float64(intersection) / float64(union)
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
