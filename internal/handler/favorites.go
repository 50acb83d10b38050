package handler

import (
	"errors"
	"net/http"

	"autohub-rest-api/internal/model"
	"autohub-rest-api/internal/service"
	"autohub-rest-api/pkg/apierror"
	"autohub-rest-api/pkg/response"
	"autohub-rest-api/pkg/uid"

	"github.com/go-chi/chi/v5"
)

// FavoritesHandler handles favorites and comparison-set HTTP requests.
// The browsing client identifies itself with an X-Client-ID header.
type FavoritesHandler struct {
	favorites *service.FavoritesService
	catalog   *service.CatalogService
}

// NewFavoritesHandler creates a new favorites handler.
func NewFavoritesHandler(favorites *service.FavoritesService, catalog *service.CatalogService) *FavoritesHandler {
	return &FavoritesHandler{
		favorites: favorites,
		catalog:   catalog,
	}
}

// ListFavorites handles GET /api/v1/favorites
func (h *FavoritesHandler) ListFavorites(w http.ResponseWriter, r *http.Request) {
	clientID, ok := clientID(w, r)
	if !ok {
		return
	}

	ids, err := h.favorites.Favorites(r.Context(), clientID)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.OK(w, map[string]interface{}{
		"ids":  ids,
		"cars": model.FavoriteCars(h.catalog.Cars(), ids),
	})
}

// ToggleFavorite handles POST /api/v1/favorites/{car_id}
func (h *FavoritesHandler) ToggleFavorite(w http.ResponseWriter, r *http.Request) {
	clientID, ok := clientID(w, r)
	if !ok {
		return
	}

	added, ids, err := h.favorites.ToggleFavorite(r.Context(), clientID, chi.URLParam(r, "car_id"))
	if err != nil {
		response.Error(w, err)
		return
	}
	response.OK(w, map[string]interface{}{"added": added, "ids": ids})
}

// ListCompare handles GET /api/v1/compare
func (h *FavoritesHandler) ListCompare(w http.ResponseWriter, r *http.Request) {
	clientID, ok := clientID(w, r)
	if !ok {
		return
	}

	ids, err := h.favorites.Compare(r.Context(), clientID)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.OK(w, map[string]interface{}{
		"ids":  ids,
		"cars": model.CompareCars(h.catalog.Cars(), ids),
	})
}

// ToggleCompare handles POST /api/v1/compare/{car_id}
func (h *FavoritesHandler) ToggleCompare(w http.ResponseWriter, r *http.Request) {
	clientID, ok := clientID(w, r)
	if !ok {
		return
	}

	added, ids, err := h.favorites.ToggleCompare(r.Context(), clientID, chi.URLParam(r, "car_id"))
	if err != nil {
		if errors.Is(err, service.ErrCompareFull) {
			response.Error(w, apierror.Conflict(err.Error()))
			return
		}
		response.Error(w, err)
		return
	}
	response.OK(w, map[string]interface{}{"added": added, "ids": ids})
}

// clientID extracts the browsing-client id. First-time visitors without
// an X-Client-ID header get a fresh id, echoed back so the client can
// persist it.
func clientID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := r.Header.Get("X-Client-ID")
	if id == "" {
		id = uid.New()
	}
	w.Header().Set("X-Client-ID", id)
	return id, true
}
