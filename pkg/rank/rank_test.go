package rank

import (
	"fmt"
	"math"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/umputun/feedrank/pkg/domain"
)

func TestScore(t *testing.T) {
	tests := []struct {
		text string
		want int
	}{
		{text: "Points: 42 123abc 8", want: 50},
		{text: "", want: 0},
		{text: "no numbers here", want: 0},
		{text: "Points: 120", want: 120},
		{text: "  Points:\t7\n 3 ", want: 10},
		{text: "+5 -2", want: 3},
		{text: "1.5 2,000 0x10", want: 0},
		{text: "Points:42", want: 0},
		{text: "-10", want: -10},
		{text: strconv.Itoa(math.MaxInt) + " 1", want: math.MaxInt},
		{text: strconv.Itoa(math.MaxInt) + " " + strconv.Itoa(math.MaxInt) + " -5", want: math.MaxInt - 5},
		{text: strconv.Itoa(math.MinInt) + " -1", want: math.MinInt},
		{text: "99999999999999999999999 7", want: 7},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%q", tt.text), func(t *testing.T) {
			assert.Equal(t, tt.want, Score(tt.text))
		})
	}
}

func TestRank(t *testing.T) {
	items := []domain.RankedItem{
		{Item: domain.Item{Title: "ten"}, Score: 10},
		{Item: domain.Item{Title: "thirty-first"}, Score: 30},
		{Item: domain.Item{Title: "thirty-second"}, Score: 30},
		{Item: domain.Item{Title: "five"}, Score: 5},
	}

	res := Rank(items)
	require.Len(t, res, 4)

	titles := make([]string, 0, len(res))
	for _, r := range res {
		titles = append(titles, r.Item.Title)
	}
	assert.Equal(t, []string{"thirty-first", "thirty-second", "ten", "five"}, titles)

	// input untouched
	assert.Equal(t, "ten", items[0].Item.Title)
	assert.Equal(t, "five", items[3].Item.Title)
}

func TestRank_Empty(t *testing.T) {
	assert.Empty(t, Rank(nil))
	assert.Empty(t, Rank([]domain.RankedItem{}))
}

func TestRank_AllEqualKeepsOrder(t *testing.T) {
	items := make([]domain.RankedItem, 0, 20)
	for i := 0; i < 20; i++ {
		items = append(items, domain.RankedItem{Item: domain.Item{Title: fmt.Sprintf("item-%02d", i)}})
	}
	assert.Equal(t, items, Rank(items))
}

func TestAnnotate(t *testing.T) {
	item := domain.Item{Title: "A", Description: "<p>Points: 30</p>"}
	desc := domain.Description{ArticleURL: "https://a.example", PointsText: "Points: 30"}

	res := Annotate(item, desc)
	assert.Equal(t, item, res.Item)
	assert.Equal(t, desc, res.Extracted)
	assert.Equal(t, 30, res.Score)
}
