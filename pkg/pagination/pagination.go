package pagination

const (
	// DefaultLimit is the standard page size when a limit is not provided.
	DefaultLimit = 25
	// MaxLimit caps how many rows any page query can request.
	MaxLimit = 100
)

// Params holds 1-indexed page/limit inputs from callers.
type Params struct {
	Page  int
	Limit int
}

// Result carries page metadata computed server-side.
type Result struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalItems int64 `json:"totalItems"`
	TotalPages int   `json:"totalPages"`
}

// Normalize enforces the 1-indexed page and the default/maximum limits.
func Normalize(params Params) Params {
	if params.Page <= 0 {
		params.Page = 1
	}
	if params.Limit <= 0 {
		params.Limit = DefaultLimit
	}
	if params.Limit > MaxLimit {
		params.Limit = MaxLimit
	}
	return params
}

// Offset converts the normalized page/limit pair into a row offset.
func (p Params) Offset() int {
	normalized := Normalize(p)
	return (normalized.Page - 1) * normalized.Limit
}

// NewResult computes the totals for a page of a result set.
func NewResult(params Params, totalItems int64) Result {
	normalized := Normalize(params)
	totalPages := 0
	if totalItems > 0 {
		totalPages = int((totalItems + int64(normalized.Limit) - 1) / int64(normalized.Limit))
	}
	return Result{
		Page:       normalized.Page,
		Limit:      normalized.Limit,
		TotalItems: totalItems,
		TotalPages: totalPages,
	}
}
