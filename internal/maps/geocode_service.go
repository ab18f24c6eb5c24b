package maps

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"googlemaps.github.io/maps"
)

const maxCandidates = 5

// Candidate is a simplified forward-geocoding result.
type Candidate struct {
	Address string  `json:"address"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
	PlaceID string  `json:"place_id"`
}

// geocodingAPI is the subset of *maps.Client used here.
type geocodingAPI interface {
	Geocode(ctx context.Context, r *maps.GeocodingRequest) ([]maps.GeocodingResult, error)
	ReverseGeocode(ctx context.Context, r *maps.GeocodingRequest) ([]maps.GeocodingResult, error)
}

type Options struct {
	Language string
	Region   string
	Timeout  time.Duration
}

// GeocodeService handles interactions with the Google Geocoding API.
type GeocodeService struct {
	client geocodingAPI
	opts   Options
	log    *slog.Logger
}

// NewGeocodeService creates a new GeocodeService with the given API Key.
func NewGeocodeService(apiKey string, opts Options, log *slog.Logger) (*GeocodeService, error) {
	client, err := maps.NewClient(maps.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create maps client: %w", err)
	}
	return newGeocodeService(client, opts, log), nil
}

func newGeocodeService(client geocodingAPI, opts Options, log *slog.Logger) *GeocodeService {
	if log == nil {
		log = slog.Default()
	}
	return &GeocodeService{client: client, opts: opts, log: log}
}

// ReverseGeocode resolves coordinates to a formatted street address.
// It never returns an error: any failure, including out-of-range
// coordinates or an empty result set, is reported as ok=false.
func (s *GeocodeService) ReverseGeocode(ctx context.Context, lat, lon float64) (string, bool) {
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return "", false
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	results, err := s.client.ReverseGeocode(ctx, &maps.GeocodingRequest{
		LatLng:   &maps.LatLng{Lat: lat, Lng: lon},
		Language: s.opts.Language,
	})
	if err != nil {
		s.log.Warn("reverse geocode failed", "error", err)
		return "", false
	}
	for _, r := range results {
		if addr := strings.TrimSpace(r.FormattedAddress); addr != "" {
			return addr, true
		}
	}
	return "", false
}

// SearchAddress returns up to five candidates for a free-text address query.
func (s *GeocodeService) SearchAddress(ctx context.Context, query string) ([]Candidate, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	results, err := s.client.Geocode(ctx, &maps.GeocodingRequest{
		Address:  query,
		Language: s.opts.Language,
		Region:   s.opts.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("geocoding api error: %w", err)
	}

	out := make([]Candidate, 0, min(len(results), maxCandidates))
	for _, r := range results {
		out = append(out, Candidate{
			Address: r.FormattedAddress,
			Lat:     r.Geometry.Location.Lat,
			Lon:     r.Geometry.Location.Lng,
			PlaceID: r.PlaceID,
		})
		if len(out) >= maxCandidates {
			break
		}
	}
	return out, nil
}

func (s *GeocodeService) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.opts.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.opts.Timeout)
}
