package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/umputun/feedrank/pkg/domain"
)

func TestDescription(t *testing.T) {
	tests := []struct {
		name     string
		fragment string
		want     domain.Description
	}{
		{
			name: "hnrss description",
			fragment: `
<p>Article URL: <a href="https://a.example/post?x=1&amp;y=2">https://a.example/post</a></p>
<p>Comments URL: <a href="https://news.ycombinator.com/item?id=1">https://news.ycombinator.com/item?id=1</a></p>
<p>Points: 120</p>
<p># Comments: 42</p>`,
			want: domain.Description{
				ArticleURL:      "https://a.example/post?x=1&y=2",
				CommentsURL:     "https://news.ycombinator.com/item?id=1",
				PointsText:      "Points: 120",
				NumCommentsText: "# Comments: 42",
			},
		},
		{
			name:     "empty",
			fragment: "",
			want:     domain.Description{},
		},
		{
			name:     "whitespace only",
			fragment: "  \n\t ",
			want:     domain.Description{},
		},
		{
			name:     "no anchors",
			fragment: `<p>Points: 7</p><p>just text</p>`,
			want:     domain.Description{PointsText: "Points: 7"},
		},
		{
			name:     "single anchor",
			fragment: `<p>Article URL: <a href="https://only.example">x</a></p>`,
			want:     domain.Description{ArticleURL: "https://only.example"},
		},
		{
			name:     "anchor without href",
			fragment: `<a name="top">top</a><a href="https://second.example">second</a>`,
			want:     domain.Description{CommentsURL: "https://second.example"},
		},
		{
			name:     "three anchors takes first two",
			fragment: `<a href="1">a</a><a href="2">b</a><a href="3">c</a>`,
			want:     domain.Description{ArticleURL: "1", CommentsURL: "2"},
		},
		{
			name:     "nested anchors in document order",
			fragment: `<div><p><a href="outer-1">x</a></p></div><span><a href="outer-2">y</a></span>`,
			want:     domain.Description{ArticleURL: "outer-1", CommentsURL: "outer-2"},
		},
		{
			name:     "marker inside markup of paragraph",
			fragment: `<p><b>Points:</b> 15 <i>today</i></p>`,
			want:     domain.Description{PointsText: "Points: 15 today"},
		},
		{
			name:     "first matching paragraph wins",
			fragment: `<p>intro</p><p>Points: 1</p><p>Points: 2</p><p># Comments: 3</p><p># Comments: 4</p>`,
			want:     domain.Description{PointsText: "Points: 1", NumCommentsText: "# Comments: 3"},
		},
		{
			name:     "marker outside paragraph ignored",
			fragment: `<div>Points: 10</div><span># Comments: 5</span>`,
			want:     domain.Description{},
		},
		{
			name:     "unclosed tags",
			fragment: `<p>Article <a href="https://broken.example">link</a><p>Points: 3<p># Comments: 0`,
			want: domain.Description{
				ArticleURL:      "https://broken.example",
				PointsText:      "Points: 3",
				NumCommentsText: "# Comments: 0",
			},
		},
		{
			name:     "plain text",
			fragment: `no markup at all, Points: 5`,
			want:     domain.Description{},
		},
		{
			name:     "stray closing tags",
			fragment: `</div></p><p>Points: 9</p></a>`,
			want:     domain.Description{PointsText: "Points: 9"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Description(tt.fragment))
		})
	}
}

func TestDescription_Idempotent(t *testing.T) {
	fragment := `<p><a href="https://a.example">a</a> <a href="https://b.example">b</a></p><p>Points: 11</p>`
	assert.Equal(t, Description(fragment), Description(fragment))
}
