package domain

// Entry represents one tip in the catalog. Entries are created by the
// loader and never mutated afterwards.
type Entry struct {
	ID    int      `json:"id"`
	Title string   `json:"title"`
	Body  string   `json:"body"`
	Link  string   `json:"link,omitempty"`
	Tags  []string `json:"tags,omitempty"`
}
