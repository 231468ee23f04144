package catalog

import (
	"context"
	"fmt"
	"strings"

	"storefront/internal/domain/filters"

	"go.uber.org/zap"
)

// ScopedResult is a product page plus the category it was scoped to, if any.
type ScopedResult struct {
	Category *Category   `json:"category,omitempty"`
	Page     ProductPage `json:"page"`
}

// Service resolves category path segments and issues scoped product
// listings on top of a Source.
type Service struct {
	src    Source
	logger *zap.SugaredLogger
}

func NewService(src Source, logger *zap.SugaredLogger) *Service {
	return &Service{src: src, logger: logger}
}

func (s *Service) Source() Source {
	return s.src
}

// ResolveCategory maps a human-readable path segment to its category. The
// segment may be a slug, a name-derived slug or a raw id; slugs win over ids.
// A backend failure resolves to ErrCategoryNotFound as well, the caller only
// needs to know there is nothing to scope to.
func (s *Service) ResolveCategory(ctx context.Context, segment string) (*Category, error) {
	segment = strings.TrimSpace(segment)
	if segment == "" {
		return nil, ErrCategoryNotFound
	}

	cat, err := s.src.GetCategoryBySlug(ctx, segment)
	if err != nil {
		s.logger.Warnw("category lookup degraded", "segment", segment, "error", err.Error())
	}
	if cat != nil {
		return cat, nil
	}

	cats, err := s.src.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %q (%v)", ErrCategoryNotFound, segment, err)
	}
	if cat := MatchID(cats, segment); cat != nil {
		return cat, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrCategoryNotFound, segment)
}

// ListScoped lists products for a location. An empty segment lists the whole
// catalog; otherwise the category and all of its descendants are queried.
//
// The returned result is never nil. err wraps ErrCategoryNotFound when the
// segment does not resolve, which callers must tell apart from a category
// that simply has no matching products. Any other error means the page is
// empty because the backend failed.
func (s *Service) ListScoped(ctx context.Context, segment string, st filters.State) (*ScopedResult, error) {
	if strings.TrimSpace(segment) == "" {
		page, err := s.src.ListProducts(ctx, st)
		return &ScopedResult{Page: page}, err
	}

	cat, err := s.ResolveCategory(ctx, segment)
	if err != nil {
		return &ScopedResult{Page: EmptyPage(st.Page, st.PageSize)}, err
	}

	st.CategoryID = cat.ID
	page, err := s.src.ListProductsByCategoryRecursive(ctx, cat.ID, st)
	return &ScopedResult{Category: cat, Page: page}, err
}
