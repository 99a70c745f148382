package models

// Resolution is the outcome of one answered query.
type Resolution struct {
	Answer   string  `json:"answer"`
	Distance float64 `json:"distance"`
	Tier     Tier    `json:"tier"`
	// LineIndex is the corpus index of the answer line, or -1 for NotFound.
	LineIndex int `json:"line_index"`
}
