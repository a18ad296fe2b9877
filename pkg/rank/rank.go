// Package rank derives item scores from extracted points text and orders items by them.
package rank

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/umputun/feedrank/pkg/domain"
)

// Score sums all whitespace-separated tokens of text which parse as base-10 integers.
// Tokens failing to parse are skipped, so "Points: 42" gives 42 and "" gives 0.
// The sum saturates at math.MaxInt and math.MinInt instead of wrapping around.
func Score(text string) int {
	res := 0
	for _, tok := range strings.Fields(text) {
		n, err := strconv.Atoi(tok)
		if err != nil {
			continue
		}
		switch {
		case n > 0 && res > math.MaxInt-n:
			res = math.MaxInt
		case n < 0 && res < math.MinInt-n:
			res = math.MinInt
		default:
			res += n
		}
	}
	return res
}

// Rank returns a copy of items ordered by score, highest first.
// Items with equal scores keep their original relative order. The input slice is not modified.
func Rank(items []domain.RankedItem) []domain.RankedItem {
	res := make([]domain.RankedItem, len(items))
	copy(res, items)
	sort.SliceStable(res, func(i, j int) bool {
		return res[i].Score > res[j].Score
	})
	return res
}

// Annotate pairs an item with its extracted description and computed score
func Annotate(item domain.Item, desc domain.Description) domain.RankedItem {
	return domain.RankedItem{Item: item, Extracted: desc, Score: Score(desc.PointsText)}
}
