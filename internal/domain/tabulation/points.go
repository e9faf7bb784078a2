package tabulation

import "github.com/okian/tally/internal/domain/model"

// DivisionPoints sums each contestant's FinalRank into its division. Lower
// totals are better. With cutoff > 0 only ranks up to cutoff contribute, and
// a division with no contestant inside the cutoff is absent from the map.
func DivisionPoints(results []model.RankResult, cutoff int) map[string]int {
	points := make(map[string]int)
	for _, r := range results {
		if cutoff > 0 && r.FinalRank > cutoff {
			continue
		}
		points[r.Division] += r.FinalRank
	}
	return points
}
