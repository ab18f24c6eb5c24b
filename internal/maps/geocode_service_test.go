package maps

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"googlemaps.github.io/maps"
)

type fakeGeocoder struct {
	results []maps.GeocodingResult
	err     error
	last    *maps.GeocodingRequest
}

func (f *fakeGeocoder) Geocode(_ context.Context, r *maps.GeocodingRequest) ([]maps.GeocodingResult, error) {
	f.last = r
	return f.results, f.err
}

func (f *fakeGeocoder) ReverseGeocode(_ context.Context, r *maps.GeocodingRequest) ([]maps.GeocodingResult, error) {
	f.last = r
	return f.results, f.err
}

func TestReverseGeocode(t *testing.T) {
	cases := []struct {
		name     string
		fake     *fakeGeocoder
		lat, lon float64
		want     string
		wantOK   bool
	}{
		{
			name:   "resolved",
			fake:   &fakeGeocoder{results: []maps.GeocodingResult{{FormattedAddress: "233 S Wacker Dr, Chicago, IL"}}},
			lat:    41.8789, lon: -87.6359,
			want:   "233 S Wacker Dr, Chicago, IL",
			wantOK: true,
		},
		{
			name:   "skips blank results",
			fake:   &fakeGeocoder{results: []maps.GeocodingResult{{FormattedAddress: " "}, {FormattedAddress: "I-90 Exit 12"}}},
			lat:    41, lon: -87,
			want:   "I-90 Exit 12",
			wantOK: true,
		},
		{name: "api error", fake: &fakeGeocoder{err: errors.New("quota")}, lat: 41, lon: -87},
		{name: "no results", fake: &fakeGeocoder{}, lat: 41, lon: -87},
		{name: "out of range", fake: &fakeGeocoder{results: []maps.GeocodingResult{{FormattedAddress: "x"}}}, lat: 120, lon: 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := newGeocodeService(tc.fake, Options{Language: "en"}, nil)
			got, ok := svc.ReverseGeocode(context.Background(), tc.lat, tc.lon)
			if got != tc.want || ok != tc.wantOK {
				t.Fatalf("got (%q, %v), want (%q, %v)", got, ok, tc.want, tc.wantOK)
			}
		})
	}
}

func TestSearchAddressLimitsCandidates(t *testing.T) {
	var results []maps.GeocodingResult
	for i := 0; i < 8; i++ {
		r := maps.GeocodingResult{FormattedAddress: fmt.Sprintf("%d Main St", i), PlaceID: fmt.Sprint(i)}
		r.Geometry.Location = maps.LatLng{Lat: float64(i), Lng: -float64(i)}
		results = append(results, r)
	}
	fake := &fakeGeocoder{results: results}
	svc := newGeocodeService(fake, Options{Region: "us"}, nil)

	got, err := svc.SearchAddress(context.Background(), "main st")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(got) != maxCandidates {
		t.Fatalf("expected %d candidates, got %d", maxCandidates, len(got))
	}
	if got[2].Address != "2 Main St" || got[2].Lat != 2 || got[2].Lon != -2 {
		t.Errorf("unexpected candidate: %+v", got[2])
	}
	if fake.last.Region != "us" {
		t.Errorf("region not forwarded: %+v", fake.last)
	}
}

func TestSearchAddressError(t *testing.T) {
	svc := newGeocodeService(&fakeGeocoder{err: errors.New("denied")}, Options{}, nil)
	if _, err := svc.SearchAddress(context.Background(), "main st"); err == nil {
		t.Fatal("expected error")
	}
	got, err := svc.SearchAddress(context.Background(), "  ")
	if err != nil || got != nil {
		t.Fatalf("blank query: got %v, %v", got, err)
	}
}
