package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// ErrUnavailable covers every failure mode of the address lookup: callers
// fall back to storing the charger without coordinates.
var ErrUnavailable = errors.New("geocoding unavailable")

type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 5 * time.Second},
	}
}

type searchResponse struct {
	Message  string `json:"message"`
	Features []struct {
		Geometry struct {
			Coordinates []float64 `json:"coordinates"` // lon, lat
		} `json:"geometry"`
	} `json:"features"`
}

// Coordinates resolves a street + city to (lat, lon). Street may be empty,
// in which case only the locality is matched.
func (c *Client) Coordinates(ctx context.Context, street, city string) (float64, float64, error) {
	address := city
	searchType := "locality"
	if street != "" {
		address = street + "," + city
		searchType = "housenumber"
	}
	endpoint := fmt.Sprintf("%s?q=%s&limit=1&type=%s", c.baseURL, url.QueryEscape(address), searchType)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return 0, 0, ErrUnavailable
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return 0, 0, ErrUnavailable
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return 0, 0, ErrUnavailable
	}
	var parsed searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return 0, 0, ErrUnavailable
	}
	if parsed.Message != "" || len(parsed.Features) == 0 {
		return 0, 0, ErrUnavailable
	}
	coords := parsed.Features[0].Geometry.Coordinates
	if len(coords) < 2 {
		return 0, 0, ErrUnavailable
	}
	return coords[1], coords[0], nil
}
