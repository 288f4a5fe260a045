package dto

// CategoryTotalsResponse holds the running totals for one category
type CategoryTotalsResponse struct {
	Category string `json:"category"`
	Credit   string `json:"credit"`
	Debit    string `json:"debit"`
	Net      string `json:"net"`
	Count    int64  `json:"count"`
}

// TotalsResponse is the response for the per-category totals endpoint.
// Source is "cache" for the incrementally maintained totals and "query"
// for totals computed over a filtered transaction set.
type TotalsResponse struct {
	Totals []CategoryTotalsResponse `json:"totals"`
	Source string                   `json:"source"`
}
