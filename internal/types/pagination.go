package types

// PageInfo contains pagination metadata for list responses.
type PageInfo struct {
	HasMore    bool `json:"has_more"`
	Offset     int  `json:"offset"`
	Limit      int  `json:"limit"`
	TotalItems int  `json:"total_items"`
}

// ListFilter carries the common offset/limit parameters for list queries.
type ListFilter struct {
	Offset int
	Limit  int
	Search string
}

// Normalize clamps the filter to sane bounds. A zero limit becomes the
// default page size.
func (f *ListFilter) Normalize() {
	if f.Limit <= 0 {
		f.Limit = 20
	}
	if f.Limit > 100 {
		f.Limit = 100
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
}
