package catalog

import (
	"context"
	"errors"
	"strings"

	"storefront/internal/domain/filters"
)

var (
	ErrCategoryNotFound = errors.New("category not found")
	ErrUnavailable      = errors.New("catalog backend unavailable")
)

// Source is the read-only product/category backend.
//
// List calls always return a usable (possibly empty) page; a non-nil error
// only tells the caller why it is empty. Single-item lookups return a nil
// value with a nil error when nothing matches.
type Source interface {
	ListProducts(ctx context.Context, st filters.State) (ProductPage, error)
	GetProductBySlug(ctx context.Context, slug string) (*Product, error)
	ListProductsByCategoryRecursive(ctx context.Context, categoryID string, st filters.State) (ProductPage, error)
	ListCategories(ctx context.Context) ([]Category, error)
	GetCategoryBySlug(ctx context.Context, slug string) (*Category, error)
}

// DeriveSlug mirrors how the backend names categories without an explicit
// slug: lowercase, spaces replaced by dashes.
func DeriveSlug(name string) string {
	return strings.ReplaceAll(strings.ToLower(name), " ", "-")
}

// MatchSlug finds the category whose slug (explicit or derived from its
// name) equals slug.
func MatchSlug(categories []Category, slug string) *Category {
	if slug == "" {
		return nil
	}
	for i := range categories {
		if categories[i].Slug == slug {
			c := categories[i]
			return &c
		}
	}
	for i := range categories {
		if categories[i].Name != "" && DeriveSlug(categories[i].Name) == slug {
			c := categories[i]
			return &c
		}
	}
	return nil
}

// MatchID finds the category with the given id.
func MatchID(categories []Category, id string) *Category {
	if id == "" {
		return nil
	}
	for i := range categories {
		if categories[i].ID == id {
			c := categories[i]
			return &c
		}
	}
	return nil
}
