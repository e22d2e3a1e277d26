package autotune

import "math"

// Rank is one participant in MPI-aware tuning: its own LiveInfo and the
// subset of the search space it will test. This repo has no real MPI
// binding, so the seam models rank bucketing and space partitioning as
// plain data the caller (internal/engine, or a test) drives, with no
// transport layer.
type Rank struct {
	ID   int
	Info LiveInfo
}

// similarity is homogeneity + w*maxDensity, the bucketing metric.
func similarity(info LiveInfo, w float64) float64 {
	return info.Homogeneity + w*info.Density
}

// BucketRanks groups ranks whose similarity metric falls within the same
// width-wide band, so ranks testing comparably-shaped local systems share a
// search-space partition.
func BucketRanks(ranks []Rank, w, bandWidth float64) [][]Rank {
	if bandWidth <= 0 {
		bandWidth = 0.1
	}
	type scored struct {
		rank  Rank
		score float64
	}
	scores := make([]scored, len(ranks))
	for i, r := range ranks {
		scores[i] = scored{r, similarity(r.Info, w)}
	}

	var buckets [][]Rank
	used := make([]bool, len(scores))
	for i := range scores {
		if used[i] {
			continue
		}
		bucket := []Rank{scores[i].rank}
		used[i] = true
		for j := i + 1; j < len(scores); j++ {
			if used[j] {
				continue
			}
			if math.Abs(scores[j].score-scores[i].score) <= bandWidth {
				bucket = append(bucket, scores[j].rank)
				used[j] = true
			}
		}
		buckets = append(buckets, bucket)
	}
	return buckets
}

// PartitionSpace splits space into numRanks contiguous, near-equal slices —
// one per rank in a bucket — so each rank tests only its assigned subset.
func PartitionSpace(space []Config, numRanks int) [][]Config {
	if numRanks <= 0 {
		return nil
	}
	out := make([][]Config, numRanks)
	base := len(space) / numRanks
	rem := len(space) % numRanks
	pos := 0
	for i := 0; i < numRanks; i++ {
		n := base
		if i < rem {
			n++
		}
		out[i] = append([]Config(nil), space[pos:pos+n]...)
		pos += n
	}
	return out
}

// RankResult is one rank's locally-best (config, reduced time) report.
type RankResult struct {
	Config Config
	Time   float64
}

// AllReduceBest picks the globally fastest configuration across every
// rank's local best — the all-reduce step broadcasting the winner.
func AllReduceBest(localBests map[int]RankResult) (Config, bool) {
	var best Config
	bestTime := math.Inf(1)
	found := false
	for _, lb := range localBests {
		if lb.Time < bestTime {
			best, bestTime, found = lb.Config, lb.Time, true
		}
	}
	return best, found
}
