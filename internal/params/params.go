package params

import (
	"math"
	"strconv"
	"strings"
)

// URL: /catalogo?page=2&pageSize=12
// → backend returns rows + {total, page, pageSize}
// → ComputeMeta(total) → fills TotalPages, HasNext, etc.
// → JSON response with products + pagination metadata
// Pagination holds pagination info and computed metadata.
type Pagination struct {
	Page       int  `json:"page"`       // Current Page number
	PageSize   int  `json:"pageSize"`   // items per page
	Total      int  `json:"total"`      // Total items reported by the backend
	TotalPages int  `json:"totalPages"` // Total pages available
	HasNext    bool `json:"hasNext"`
	HasPrev    bool `json:"hasPrev"`
}

// ComputeMeta updates pagination after fetching total count.
func (p *Pagination) ComputeMeta(total int) {
	if total < 0 {
		total = 0
	}
	p.Total = total
	p.TotalPages = 0
	if p.PageSize > 0 {
		p.TotalPages = int(math.Ceil(float64(total) / float64(p.PageSize)))
	}
	p.HasPrev = p.Page > 1
	p.HasNext = p.PageSize > 0 && (p.Page*p.PageSize) < total
}

// PositiveInt parses s as a strictly positive integer. Anything else,
// including blanks, returns def.
func PositiveInt(s string, def int) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return def
	}
	return n
}

// NonNegativeFloat parses s as a finite number ≥ 0. ok is false when s is
// blank or not usable.
func NonNegativeFloat(s string) (v float64, ok bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return 0, false
	}
	return f, true
}
