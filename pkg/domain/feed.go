package domain

// Channel represents a parsed feed, built once per request and never cached
type Channel struct {
	Title string
	Link  string
	Items []Item
}
