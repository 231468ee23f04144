package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"storefront/internal/auth"
	"storefront/internal/domain/filters"
	"storefront/internal/params"

	"go.uber.org/zap"
)

// Client talks to the catalog backend over its REST API.
type Client struct {
	apiURL     string // e.g. http://localhost:3081/api
	assetURL   string // apiURL without the /api suffix, used for relative images
	tokens     auth.TokenSource
	httpClient *http.Client
	logger     *zap.SugaredLogger
}

func NewClient(apiURL string, tokens auth.TokenSource, logger *zap.SugaredLogger) *Client {
	apiURL = strings.TrimRight(apiURL, "/")
	return &Client{
		apiURL:     apiURL,
		assetURL:   strings.Replace(apiURL, "/api", "", 1),
		tokens:     tokens,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		logger:     logger,
	}
}

// ------------------------------------
// Wire format
// ------------------------------------

type backendImage struct {
	ID    string `json:"id"`
	URL   string `json:"url"`
	Order int    `json:"order"`
}

type backendCategory struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Slug        string  `json:"slug"`
	Image       string  `json:"image"`
	ImageURL    string  `json:"imageUrl"`
	Description string  `json:"description"`
	ParentID    *string `json:"parentId"`
}

type backendProduct struct {
	ID            string           `json:"id"`
	Name          string           `json:"name"`
	Slug          string           `json:"slug"`
	SellingPrice  Price            `json:"sellingPrice"`
	Description   string           `json:"description"`
	CategoryID    string           `json:"categoryId"`
	Category      *backendCategory `json:"category"`
	ProductImages []backendImage   `json:"productImages"`
}

type backendPage struct {
	Rows       []backendProduct `json:"rows"`
	Pagination *struct {
		Total    int `json:"total"`
		Page     int `json:"page"`
		PageSize int `json:"pageSize"`
	} `json:"pagination"`
}

// ------------------------------------
// Products
// ------------------------------------

func (c *Client) ListProducts(ctx context.Context, st filters.State) (ProductPage, error) {
	return c.listProducts(ctx, "/products", filters.BackendQuery(st, false), st)
}

func (c *Client) ListProductsByCategoryRecursive(ctx context.Context, categoryID string, st filters.State) (ProductPage, error) {
	path := "/products/category/" + url.PathEscape(categoryID) + "/recursive"
	return c.listProducts(ctx, path, filters.BackendQuery(st, true), st)
}

func (c *Client) listProducts(ctx context.Context, path string, q url.Values, st filters.State) (ProductPage, error) {
	var body backendPage
	if _, err := c.getJSON(ctx, path, q, &body); err != nil {
		c.logger.Errorw("list products failed", "path", path, "error", err.Error())
		return EmptyPage(st.Page, st.PageSize), err
	}

	rows := make([]Product, 0, len(body.Rows))
	for _, bp := range body.Rows {
		rows = append(rows, c.mapProduct(bp))
	}

	page := ProductPage{
		Rows:       rows,
		Pagination: params.Pagination{Page: st.Page, PageSize: st.PageSize},
	}
	total := len(rows)
	if body.Pagination != nil && body.Pagination.Total > 0 {
		total = body.Pagination.Total
	}
	page.Pagination.ComputeMeta(total)
	return page, nil
}

func (c *Client) GetProductBySlug(ctx context.Context, slug string) (*Product, error) {
	var bp backendProduct
	status, err := c.getJSON(ctx, "/products/slug/"+url.PathEscape(slug), nil, &bp)
	if status == http.StatusNotFound {
		return nil, nil
	}
	if err != nil {
		c.logger.Errorw("get product by slug failed", "slug", slug, "error", err.Error())
		return nil, err
	}
	if bp.ID == "" {
		return nil, nil
	}
	p := c.mapProduct(bp)
	return &p, nil
}

// ------------------------------------
// Categories
// ------------------------------------

func (c *Client) ListCategories(ctx context.Context) ([]Category, error) {
	var raw json.RawMessage
	if _, err := c.getJSON(ctx, "/categories", nil, &raw); err != nil {
		c.logger.Errorw("list categories failed", "error", err.Error())
		return []Category{}, err
	}

	list, err := decodeCategoryList(raw)
	if err != nil {
		c.logger.Errorw("decode categories failed", "error", err.Error())
		return []Category{}, fmt.Errorf("%w: decode categories: %v", ErrUnavailable, err)
	}

	out := make([]Category, 0, len(list))
	for _, bc := range list {
		out = append(out, c.mapCategory(bc))
	}
	return out, nil
}

// GetCategoryBySlug resolves through the full list, the backend has no
// slug lookup for categories.
func (c *Client) GetCategoryBySlug(ctx context.Context, slug string) (*Category, error) {
	cats, err := c.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	return MatchSlug(cats, slug), nil
}

// decodeCategoryList accepts both a bare array and a {rows: [...]} envelope.
func decodeCategoryList(raw json.RawMessage) ([]backendCategory, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}

	if raw[0] == '[' {
		var list []backendCategory
		if err := json.Unmarshal(raw, &list); err != nil {
			return nil, err
		}
		return list, nil
	}

	var env struct {
		Rows []backendCategory `json:"rows"`
	}
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, err
	}
	return env.Rows, nil
}

// ------------------------------------
// Mapping
// ------------------------------------

func (c *Client) mapCategory(bc backendCategory) Category {
	slug := bc.Slug
	if slug == "" {
		slug = DeriveSlug(bc.Name)
	}
	img := bc.Image
	if img == "" {
		img = bc.ImageURL
	}

	var parentID *string
	if bc.ParentID != nil && *bc.ParentID != "" {
		pid := *bc.ParentID
		parentID = &pid
	}

	return Category{
		ID:          bc.ID,
		Name:        bc.Name,
		Slug:        slug,
		ImageURL:    c.absoluteURL(img),
		Description: bc.Description,
		ParentID:    parentID,
	}
}

func (c *Client) mapProduct(bp backendProduct) Product {
	p := Product{
		ID:           bp.ID,
		Name:         bp.Name,
		Slug:         bp.Slug,
		SellingPrice: bp.SellingPrice,
		Description:  bp.Description,
		CategoryID:   bp.CategoryID,
		Images:       make([]ProductImage, 0, len(bp.ProductImages)),
	}
	if bp.Category != nil {
		cat := c.mapCategory(*bp.Category)
		p.Category = &cat
		if cat.ID != "" {
			p.CategoryID = cat.ID
		}
	}
	for _, img := range bp.ProductImages {
		p.Images = append(p.Images, ProductImage{
			ID:    img.ID,
			URL:   c.absoluteURL(img.URL),
			Order: img.Order,
		})
	}
	return p
}

// absoluteURL prefixes relative asset paths with the backend host.
func (c *Client) absoluteURL(u string) string {
	if u == "" {
		return ""
	}
	if strings.HasPrefix(u, "http://") || strings.HasPrefix(u, "https://") {
		return u
	}
	if !strings.HasPrefix(u, "/") {
		u = "/" + u
	}
	return c.assetURL + u
}

// ------------------------------------
// Transport
// ------------------------------------

// getJSON performs an authenticated GET and decodes the body into dst. The
// returned status is 0 when no response was received.
func (c *Client) getJSON(ctx context.Context, path string, q url.Values, dst any) (int, error) {
	endpoint := c.apiURL + path
	if len(q) > 0 {
		endpoint += "?" + q.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return 0, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.tokens != nil {
		token, err := c.tokens.Token()
		if err != nil {
			return 0, fmt.Errorf("service token: %w", err)
		}
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return resp.StatusCode, fmt.Errorf("%w: %s %s returned %d: %s",
			ErrUnavailable, http.MethodGet, path, resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return resp.StatusCode, fmt.Errorf("%w: decode %s: %v", ErrUnavailable, path, err)
	}
	return resp.StatusCode, nil
}
