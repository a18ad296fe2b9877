package domain

// Item represents a single feed entry.
// Description holds the raw HTML fragment of the entry; an absent description is stored as empty string.
type Item struct {
	Title       string
	Link        string
	Description string
}

// Description represents fields extracted from an item's HTML description.
// Fields are empty when the expected markup is missing.
type Description struct {
	ArticleURL      string
	CommentsURL     string
	PointsText      string
	NumCommentsText string
}

// RankedItem is an item with its extracted description and the score derived from it
type RankedItem struct {
	Item      Item
	Extracted Description
	Score     int
}
