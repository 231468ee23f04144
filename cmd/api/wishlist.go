package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"storefront/internal/domain/wishlist"

	"github.com/go-chi/chi/v5"
)

var errNoVisitor = errors.New("missing wishlist session")

func (app *application) visitorWishlist(r *http.Request) (*wishlist.Store, error) {
	visitorID := getVisitorFromContext(r)
	if visitorID == "" {
		return nil, errNoVisitor
	}
	return app.wishlists.Get(r.Context(), visitorID)
}

// peekWishlist returns the visitor's list only when it is already in memory.
// Read-only views use it so that anonymous traffic never allocates a store.
func (app *application) peekWishlist(r *http.Request) *wishlist.Store {
	visitorID := getVisitorFromContext(r)
	if visitorID == "" {
		return nil
	}
	return app.wishlists.Peek(visitorID)
}

// wishlistCount is nil until the visitor's list is loaded, so clients can
// hold back the badge instead of flashing zero. A session issued on this
// request is known to be empty.
func (app *application) wishlistCount(r *http.Request) *int {
	n := 0
	if isNewSession(r) {
		return &n
	}
	store := app.peekWishlist(r)
	if store == nil || !store.Ready() {
		return nil
	}
	n = store.Len()
	return &n
}

// readyWishlist writes a 503 and returns nil when the list cannot be used yet.
func (app *application) readyWishlist(w http.ResponseWriter, r *http.Request) *wishlist.Store {
	store, err := app.visitorWishlist(r)
	if err != nil {
		app.serviceUnavailableResponse(w, r, err)
		return nil
	}
	if !store.Ready() {
		app.serviceUnavailableResponse(w, r, wishlist.ErrNotReady)
		return nil
	}
	return store
}

type wishlistView struct {
	Items      []wishlist.Entry `json:"items"`
	Count      int              `json:"count"`
	ExportLink string           `json:"exportLink,omitempty"`
}

var emptyWishlistView = wishlistView{Items: []wishlist.Entry{}}

func newWishlistView(store *wishlist.Store) wishlistView {
	items := store.Items()
	return wishlistView{
		Items:      items,
		Count:      len(items),
		ExportLink: store.ExportLink(),
	}
}

// getWishlistHandler godoc
//
//	@Summary		Get the quote list
//	@Description	Entries in the order they were added. 503 while the stored list is still loading.
//	@Tags			wishlist
//	@Produce		json
//	@Success		200	{object}	wishlistView
//	@Failure		503	{object}	error
//	@Router			/wishlist [get]
func (app *application) getWishlistHandler(w http.ResponseWriter, r *http.Request) {
	if isNewSession(r) {
		app.jsonResponse(w, http.StatusOK, emptyWishlistView)
		return
	}
	store := app.readyWishlist(w, r)
	if store == nil {
		return
	}
	app.jsonResponse(w, http.StatusOK, newWishlistView(store))
}

type addWishlistItemPayload struct {
	Slug string `json:"slug" validate:"required,max=200"`
}

// addWishlistItemHandler godoc
//
//	@Summary		Add a product to the quote list
//	@Description	Adding a product that is already listed changes nothing and answers 200.
//	@Tags			wishlist
//	@Accept			json
//	@Produce		json
//	@Param			payload	body		addWishlistItemPayload	true	"Product slug"
//	@Success		201		{object}	wishlistView
//	@Success		200		{object}	wishlistView
//	@Failure		400		{object}	error
//	@Failure		404		{object}	error
//	@Failure		503		{object}	error
//	@Router			/wishlist/items [post]
func (app *application) addWishlistItemHandler(w http.ResponseWriter, r *http.Request) {
	var payload addWishlistItemPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	payload.Slug = strings.TrimSpace(payload.Slug)
	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	store := app.readyWishlist(w, r)
	if store == nil {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	product, err := app.catalog.Source().GetProductBySlug(ctx, payload.Slug)
	if err != nil {
		app.serviceUnavailableResponse(w, r, fmt.Errorf("product lookup: %w", err))
		return
	}
	if product == nil {
		app.notFoundResponse(w, r, fmt.Errorf("product %q not found", payload.Slug))
		return
	}

	added, err := store.Add(ctx, *product)
	if err != nil {
		app.serviceUnavailableResponse(w, r, err)
		return
	}

	status := http.StatusOK
	if added {
		status = http.StatusCreated
	}
	app.jsonResponse(w, status, newWishlistView(store))
}

// removeWishlistItemHandler godoc
//
//	@Summary		Remove a product from the quote list
//	@Description	Removing a product that is not listed is not an error.
//	@Tags			wishlist
//	@Produce		json
//	@Param			productID	path		string	true	"Product ID"
//	@Success		200			{object}	wishlistView
//	@Failure		503			{object}	error
//	@Router			/wishlist/items/{productID} [delete]
func (app *application) removeWishlistItemHandler(w http.ResponseWriter, r *http.Request) {
	productID := strings.TrimSpace(chi.URLParam(r, "productID"))
	if isNewSession(r) {
		app.jsonResponse(w, http.StatusOK, emptyWishlistView)
		return
	}

	store := app.readyWishlist(w, r)
	if store == nil {
		return
	}

	if _, err := store.Remove(r.Context(), productID); err != nil {
		app.serviceUnavailableResponse(w, r, err)
		return
	}
	app.jsonResponse(w, http.StatusOK, newWishlistView(store))
}

// clearWishlistHandler godoc
//
//	@Summary	Empty the quote list
//	@Tags		wishlist
//	@Produce	json
//	@Success	200	{object}	wishlistView
//	@Failure	503	{object}	error
//	@Router		/wishlist [delete]
func (app *application) clearWishlistHandler(w http.ResponseWriter, r *http.Request) {
	if isNewSession(r) {
		app.jsonResponse(w, http.StatusOK, emptyWishlistView)
		return
	}
	store := app.readyWishlist(w, r)
	if store == nil {
		return
	}

	if err := store.Clear(r.Context()); err != nil {
		app.serviceUnavailableResponse(w, r, err)
		return
	}
	app.jsonResponse(w, http.StatusOK, newWishlistView(store))
}

// exportWishlistHandler godoc
//
//	@Summary		Export link
//	@Description	The pre-filled message link for the quote list. 204 when the list is empty.
//	@Tags			wishlist
//	@Produce		json
//	@Success		200	{object}	map[string]string
//	@Success		204
//	@Failure		503	{object}	error
//	@Router			/wishlist/export [get]
func (app *application) exportWishlistHandler(w http.ResponseWriter, r *http.Request) {
	if isNewSession(r) {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	store := app.readyWishlist(w, r)
	if store == nil {
		return
	}

	link := store.ExportLink()
	if link == "" {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	app.jsonResponse(w, http.StatusOK, map[string]string{"link": link})
}
