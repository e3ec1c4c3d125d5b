package domain

// HistoryPage is a read-only slice of the wager history plus paging metadata.
// Out-of-range pages are represented as an empty Records slice with the same
// metadata shape, never an error.
type HistoryPage struct {
	Records     []WagerRecord `json:"data"`
	CurrentPage int           `json:"current_page"`
	TotalPages  int           `json:"total_pages"`
	TotalItems  int           `json:"total_items"`
	HasPrev     bool          `json:"has_prev"`
	HasNext     bool          `json:"has_next"`
}
