package database

import (
	"sort"

	"github.com/tantralabs/sena/models"
)

// MergeCandles adds fresh candles to local, skipping timestamps local already
// holds, and returns the result sorted oldest first.
func MergeCandles(local, fresh []models.Candle) []models.Candle {
	seen := make(map[int64]bool, len(local)+len(fresh))
	merged := make([]models.Candle, 0, len(local)+len(fresh))
	for _, c := range local {
		if !seen[c.Timestamp] {
			seen[c.Timestamp] = true
			merged = append(merged, c)
		}
	}
	for _, c := range fresh {
		if !seen[c.Timestamp] {
			seen[c.Timestamp] = true
			merged = append(merged, c)
		}
	}
	sort.SliceStable(merged, func(i, j int) bool { return merged[i].Timestamp < merged[j].Timestamp })
	return merged
}
