package geoloc

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/runziggurat/ips/pkg/model"
)

// IPAPIProvider resolves coordinates through the free ip-api.com endpoint.
type IPAPIProvider struct {
	client  *http.Client
	baseURL string
}

// NewIPAPIProvider creates a provider with a bounded-timeout HTTP client.
func NewIPAPIProvider() *IPAPIProvider {
	return &IPAPIProvider{
		client:  &http.Client{Timeout: 5 * time.Second},
		baseURL: "http://ip-api.com/json",
	}
}

type ipAPIResponse struct {
	Status string  `json:"status"`
	Lat    float64 `json:"lat"`
	Lon    float64 `json:"lon"`
}

// Lookup queries ip-api.com for ip's coordinates.
func (p *IPAPIProvider) Lookup(ip string) (model.Coordinates, error) {
	url := fmt.Sprintf("%s/%s", p.baseURL, ip)
	resp, err := p.client.Get(url)
	if err != nil {
		return model.Coordinates{}, fmt.Errorf("geoloc: ip-api request for %s: %w", ip, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return model.Coordinates{}, fmt.Errorf("geoloc: ip-api returned status %s for %s", resp.Status, ip)
	}

	var parsed ipAPIResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return model.Coordinates{}, fmt.Errorf("geoloc: decoding ip-api response for %s: %w", ip, err)
	}
	if strings.ToLower(parsed.Status) != "success" {
		return model.Coordinates{}, fmt.Errorf("geoloc: ip-api lookup failed for %s: status %s", ip, parsed.Status)
	}

	return model.Coordinates{Latitude: parsed.Lat, Longitude: parsed.Lon}, nil
}
