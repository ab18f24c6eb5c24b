// README: Location helpers: reverse geocoding and address search.
package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"fria/internal/maps"
	"fria/internal/types"
)

type AddressLookup interface {
	ReverseGeocode(ctx context.Context, lat, lon float64) (string, bool)
	SearchAddress(ctx context.Context, query string) ([]maps.Candidate, error)
}

type LocationHandler struct {
	lookup AddressLookup
}

func NewLocationHandler(lookup AddressLookup) *LocationHandler {
	return &LocationHandler{lookup: lookup}
}

type reverseReq struct {
	Lat *float64 `json:"lat"`
	Lon *float64 `json:"lon"`
}

type searchReq struct {
	Query string `json:"query"`
}

func (h *LocationHandler) ReverseGeocode(c *gin.Context) {
	var req reverseReq
	if err := c.ShouldBindJSON(&req); err != nil || req.Lat == nil || req.Lon == nil {
		writeError(c, http.StatusBadRequest, "lat and lon are required")
		return
	}
	if !(types.Point{Lat: *req.Lat, Lng: *req.Lon}).Valid() {
		writeError(c, http.StatusBadRequest, "coordinates out of range")
		return
	}
	if h.lookup == nil {
		writeError(c, http.StatusServiceUnavailable, "geocoding not configured")
		return
	}
	addr, ok := h.lookup.ReverseGeocode(c.Request.Context(), *req.Lat, *req.Lon)
	if !ok {
		writeError(c, http.StatusUnprocessableEntity, "could not determine an address for this location")
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"address": addr})
}

func (h *LocationHandler) Search(c *gin.Context) {
	var req searchReq
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Query) == "" {
		writeError(c, http.StatusBadRequest, "query is required")
		return
	}
	if h.lookup == nil {
		writeError(c, http.StatusServiceUnavailable, "geocoding not configured")
		return
	}
	candidates, err := h.lookup.SearchAddress(c.Request.Context(), req.Query)
	if err != nil {
		_ = c.Error(err)
		writeError(c, http.StatusBadGateway, "address search failed")
		return
	}
	if candidates == nil {
		candidates = []maps.Candidate{}
	}
	writeJSON(c, http.StatusOK, gin.H{"candidates": candidates})
}
