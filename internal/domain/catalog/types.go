package catalog

import (
	"bytes"
	"strings"

	"storefront/internal/params"

	"github.com/shopspring/decimal"
)

type Category struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Slug        string  `json:"slug"`
	ImageURL    string  `json:"imageUrl,omitempty"`
	Description string  `json:"description,omitempty"`
	ParentID    *string `json:"parentId"`
}

// HasParent reports whether the category names a parent at all. The parent
// may still be missing from the set; callers decide what that means.
func (c Category) HasParent() bool {
	return c.ParentID != nil && *c.ParentID != ""
}

type ProductImage struct {
	ID    string `json:"id"`
	URL   string `json:"url"`
	Order int    `json:"order"`
}

type Product struct {
	ID           string         `json:"id"`
	Name         string         `json:"name"`
	Slug         string         `json:"slug"`
	SellingPrice Price          `json:"sellingPrice"`
	Description  string         `json:"description,omitempty"`
	CategoryID   string         `json:"categoryId"`
	Images       []ProductImage `json:"productImages"`
	Category     *Category      `json:"category,omitempty"`
}

// MainImage returns the first image URL, or "" when the product has none.
func (p Product) MainImage() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0].URL
}

// Clone returns a deep copy, so a stored snapshot never shares slices or
// pointers with the value it was taken from.
func (p Product) Clone() Product {
	out := p
	if p.Images != nil {
		out.Images = append([]ProductImage(nil), p.Images...)
	}
	if p.Category != nil {
		c := *p.Category
		if p.Category.ParentID != nil {
			pid := *p.Category.ParentID
			c.ParentID = &pid
		}
		out.Category = &c
	}
	return out
}

// ProductPage is one page of a product listing.
type ProductPage struct {
	Rows       []Product         `json:"rows"`
	Pagination params.Pagination `json:"pagination"`
}

// EmptyPage is what every failed list call degrades to.
func EmptyPage(page, pageSize int) ProductPage {
	p := ProductPage{
		Rows:       []Product{},
		Pagination: params.Pagination{Page: page, PageSize: pageSize},
	}
	p.Pagination.ComputeMeta(0)
	return p
}

// Price is a monetary amount. The backend sends decimals either as JSON
// strings or numbers; both decode without going through float64.
type Price struct {
	decimal.Decimal
}

func NewPrice(s string) (Price, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Price{}, err
	}
	return Price{d}, nil
}

func MustPrice(s string) Price {
	p, err := NewPrice(s)
	if err != nil {
		panic(err)
	}
	return p
}

// Fixed formats the amount with exactly two fraction digits.
func (p Price) Fixed() string {
	return p.StringFixed(2)
}

func (p Price) MarshalJSON() ([]byte, error) {
	return []byte(`"` + p.Fixed() + `"`), nil
}

// UnmarshalJSON accepts "12.50", 12.5 and null. Unparseable amounts decode
// as zero instead of failing the whole payload.
func (p *Price) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		p.Decimal = decimal.Zero
		return nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		p.Decimal = decimal.Zero
		return nil
	}
	p.Decimal = d
	return nil
}
