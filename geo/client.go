// Package geo proxies address geocoding, reverse geocoding and IP-based
// coarse location lookups to external providers. It is a stateless
// pass-through: upstream failures become 503s, empty results become 404s.
package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/sirupsen/logrus"

	"github.com/user/campwood-go/apperror"
	"github.com/user/campwood-go/config"
)

// Result is a resolved position with a human-readable label.
type Result struct {
	Lat   float64 `json:"lat"`
	Lon   float64 `json:"lon"`
	Label string  `json:"label"`
}

// IPResult is a coarse position derived from the caller's IP.
type IPResult struct {
	Lat    float64 `json:"lat"`
	Lon    float64 `json:"lon"`
	City   string  `json:"city,omitempty"`
	Region string  `json:"region,omitempty"`
}

// Client talks to the geocoding and IP-location providers.
type Client struct {
	geocoderBaseURL string
	ipGeoURL        string
	userAgent       string
	httpClient      *http.Client
	log             *logrus.Logger
}

// NewClient creates a geo Client with a shared timeout-bound http.Client.
func NewClient(cfg *config.GeoConfig, log *logrus.Logger) *Client {
	return &Client{
		geocoderBaseURL: cfg.GeocoderBaseURL,
		ipGeoURL:        cfg.IPGeoURL,
		userAgent:       cfg.UserAgent,
		httpClient:      &http.Client{Timeout: cfg.RequestTimeout},
		log:             log,
	}
}

// nominatimPlace is the subset of the provider's search/reverse response
// the proxy forwards. Coordinates arrive as strings.
type nominatimPlace struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

// Geocode resolves a free-text query to the first match's coordinates.
func (c *Client) Geocode(ctx context.Context, query string) (*Result, error) {
	endpoint := fmt.Sprintf("%s/search?format=json&limit=1&q=%s",
		c.geocoderBaseURL, url.QueryEscape(query))

	var places []nominatimPlace
	if err := c.getJSON(ctx, endpoint, &places); err != nil {
		return nil, err
	}
	if len(places) == 0 {
		return nil, apperror.NewNotFoundError("No results", nil)
	}

	lat, err1 := strconv.ParseFloat(places[0].Lat, 64)
	lon, err2 := strconv.ParseFloat(places[0].Lon, 64)
	if err1 != nil || err2 != nil {
		return nil, apperror.NewExternalServiceError("Lookup failed", fmt.Errorf("unparsable coordinates in provider response"))
	}

	return &Result{Lat: lat, Lon: lon, Label: places[0].DisplayName}, nil
}

// Reverse resolves coordinates to a display label. The provider may return
// no label for open water; the coordinates are echoed back either way.
func (c *Client) Reverse(ctx context.Context, lat, lon float64) (*Result, error) {
	endpoint := fmt.Sprintf("%s/reverse?format=json&lat=%g&lon=%g", c.geocoderBaseURL, lat, lon)

	var place nominatimPlace
	if err := c.getJSON(ctx, endpoint, &place); err != nil {
		return nil, err
	}

	return &Result{Lat: lat, Lon: lon, Label: place.DisplayName}, nil
}

// ipGeoResponse is the subset of the IP provider's response the proxy uses.
type ipGeoResponse struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	City      string  `json:"city"`
	Region    string  `json:"region"`
}

// Locate performs an IP-based coarse location lookup.
func (c *Client) Locate(ctx context.Context) (*IPResult, error) {
	var data ipGeoResponse
	if err := c.getJSON(ctx, c.ipGeoURL, &data); err != nil {
		return nil, err
	}
	if data.Latitude == 0 && data.Longitude == 0 {
		return nil, apperror.NewNotFoundError("No IP location available", nil)
	}

	return &IPResult{
		Lat:    data.Latitude,
		Lon:    data.Longitude,
		City:   data.City,
		Region: data.Region,
	}, nil
}

func (c *Client) getJSON(ctx context.Context, endpoint string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return apperror.NewInternalError("failed to build upstream request", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.WithError(err).WithField("url", endpoint).Warn("upstream geocoding request failed")
		return apperror.NewExternalServiceError("Lookup failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.log.WithFields(logrus.Fields{"url": endpoint, "status": resp.StatusCode}).
			Warn("upstream geocoding provider returned non-200")
		return apperror.NewExternalServiceError("Lookup failed", fmt.Errorf("unexpected status code: %d", resp.StatusCode))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return apperror.NewExternalServiceError("Lookup failed", err)
	}
	return nil
}
