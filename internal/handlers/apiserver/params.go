package apiserver

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"social-go/internal/apperrors"
	"social-go/internal/config"
	"social-go/internal/middleware"
	"social-go/internal/models"
	"social-go/internal/services"
)

// pathID reads an object id from the route; malformed ids are 422.
func pathID(r *http.Request, name string) (string, error) {
	id := mux.Vars(r)[name]
	if !models.IsValidID(id) {
		return "", apperrors.ValidationFields("Invalid id", map[string]string{name: "must be a 24-character hex id"})
	}
	return id, nil
}

// queryInt parses an optional integer query parameter.
func queryInt(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperrors.ValidationFields("Invalid query parameter", map[string]string{name: "must be an integer"})
	}
	return n, nil
}

// parsePage reads page and pageSize, defaulting to page 1 and the configured size.
func parsePage(r *http.Request, cfg config.FeedConfig) (services.Page, error) {
	def := cfg.DefaultPageSize
	if def <= 0 {
		def = services.DefaultPageSize
	}
	number, err := queryInt(r, "page", 1)
	if err != nil {
		return services.Page{}, err
	}
	size, err := queryInt(r, "pageSize", def)
	if err != nil {
		return services.Page{}, err
	}
	return services.NewPage(number, size, cfg.MaxPageSize)
}

// parseListing reads page, pageSize and sort.
func parseListing(r *http.Request, cfg config.FeedConfig) (services.Page, services.SortOrder, error) {
	page, err := parsePage(r, cfg)
	if err != nil {
		return services.Page{}, "", err
	}
	order, err := services.ParseSortOrder(r.URL.Query().Get("sort"))
	if err != nil {
		return services.Page{}, "", err
	}
	return page, order, nil
}

// viewerID is the authenticated user, or "" for anonymous reads.
func viewerID(r *http.Request) string {
	id, _ := middleware.GetUserIDFromContext(r.Context())
	return id
}
