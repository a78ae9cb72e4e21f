package domain

// BoardComment is an anchored note on the whiteboard raster.
type BoardComment struct {
	ID         string  `json:"id"`
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Text       string  `json:"text"`
	AuthorName string  `json:"author_name"`
	IsResolved bool    `json:"is_resolved"`
}
