package filters

import (
	"errors"
	"net/url"
	"strconv"
	"strings"
	"unicode/utf8"

	"storefront/internal/params"

	"github.com/go-playground/validator/v10"
)

const (
	DefaultPageSize = 12
	MaxPageSize     = 100
	MaxSearchLen    = 200

	// InventoryAll is sent on every product list call so out-of-stock items
	// stay browsable.
	InventoryAll = "all"
)

// query keys of the addressable surface
const (
	KeyPage     = "page"
	KeyPageSize = "pageSize"
	KeySearch   = "search"
	KeyMinPrice = "minPrice"
	KeyMaxPrice = "maxPrice"
)

var ErrInvalidPriceRange = errors.New("maxPrice must not be lower than minPrice")

var validate = validator.New(validator.WithRequiredStructEnabled())

// State is the in-memory filter selection used to request product pages.
type State struct {
	Page       int      `json:"page" validate:"min=1"`
	PageSize   int      `json:"pageSize" validate:"gt=0,lte=100"`
	Search     string   `json:"search,omitempty" validate:"max=200"`
	MinPrice   *float64 `json:"minPrice,omitempty" validate:"omitempty,gte=0"`
	MaxPrice   *float64 `json:"maxPrice,omitempty" validate:"omitempty,gte=0"`
	CategoryID string   `json:"categoryId,omitempty"`
}

// Default is the state of a location without any query parameter.
func Default() State {
	return State{Page: 1, PageSize: DefaultPageSize}
}

func (s State) Validate() error {
	if err := validate.Struct(s); err != nil {
		return err
	}
	if s.MinPrice != nil && s.MaxPrice != nil && *s.MaxPrice < *s.MinPrice {
		return ErrInvalidPriceRange
	}
	return nil
}

// FromQuery reads a State out of the addressable query parameters.
// Malformed values never fail the read, they fall back to their default.
func FromQuery(q url.Values) State {
	st := Default()
	st.Page = params.PositiveInt(q.Get(KeyPage), 1)
	st.PageSize = params.PositiveInt(q.Get(KeyPageSize), DefaultPageSize)
	if st.PageSize > MaxPageSize {
		st.PageSize = MaxPageSize
	}
	st.Search = strings.TrimSpace(q.Get(KeySearch))
	st.Search = truncateRunes(st.Search, MaxSearchLen)

	if v, ok := params.NonNegativeFloat(q.Get(KeyMinPrice)); ok {
		st.MinPrice = &v
	}
	if v, ok := params.NonNegativeFloat(q.Get(KeyMaxPrice)); ok {
		st.MaxPrice = &v
	}
	if st.MinPrice != nil && st.MaxPrice != nil && *st.MaxPrice < *st.MinPrice {
		st.MaxPrice = nil
	}

	if err := st.Validate(); err != nil {
		return Default()
	}
	return st
}

// BackendQuery maps the state into the query contract of the product data
// source. Scoped requests carry the category in the path, so categoryId is
// only sent for plain list calls.
func BackendQuery(st State, scoped bool) url.Values {
	q := url.Values{}
	q.Set("inventoryManaged", InventoryAll)
	if st.Page > 0 {
		q.Set(KeyPage, strconv.Itoa(st.Page))
	}
	if st.PageSize > 0 {
		q.Set(KeyPageSize, strconv.Itoa(st.PageSize))
	}
	if st.Search != "" {
		q.Set(KeySearch, st.Search)
	}
	// a zero bound filters nothing, the backend never receives it
	if st.MinPrice != nil && *st.MinPrice > 0 {
		q.Set(KeyMinPrice, formatPrice(*st.MinPrice))
	}
	if st.MaxPrice != nil && *st.MaxPrice > 0 {
		q.Set(KeyMaxPrice, formatPrice(*st.MaxPrice))
	}
	if !scoped && st.CategoryID != "" {
		q.Set("categoryId", st.CategoryID)
	}
	return q
}

func formatPrice(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// truncateRunes cuts s to at most n bytes without splitting a rune.
func truncateRunes(s string, n int) string {
	if len(s) <= n {
		return s
	}
	s = s[:n]
	for len(s) > 0 {
		if r, size := utf8.DecodeLastRuneInString(s); r != utf8.RuneError || size > 1 {
			break
		}
		s = s[:len(s)-1]
	}
	return s
}
