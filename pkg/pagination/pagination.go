package pagination

const (
	// DefaultLimit is the standard page size when a limit is not provided.
	DefaultLimit = 10
	// MaxLimit caps how many rows any list query can request.
	MaxLimit = 100
)

// Params holds offset pagination inputs from controllers or services.
type Params struct {
	Limit int
	Skip  int
}

// Normalize applies the default/max limit and clamps a negative skip to zero.
func (p Params) Normalize() Params {
	p.Limit = NormalizeLimit(p.Limit)
	if p.Skip < 0 {
		p.Skip = 0
	}
	return p
}

// Meta is returned alongside a page of results.
type Meta struct {
	Total int64 `json:"total"`
	Limit int   `json:"limit"`
	Skip  int   `json:"skip"`
	Pages int   `json:"pages"`
}

// NewMeta builds page metadata for the given total and params.
func NewMeta(total int64, params Params) Meta {
	return Meta{
		Total: total,
		Limit: params.Limit,
		Skip:  params.Skip,
		Pages: Pages(total, params.Limit),
	}
}

// NormalizeLimit enforces the configured default and maximum limits.
func NormalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}

// Pages returns ceil(total/limit), or 0 when there is nothing to page.
func Pages(total int64, limit int) int {
	if total <= 0 || limit <= 0 {
		return 0
	}
	return int((total + int64(limit) - 1) / int64(limit))
}
