// Package marketdata talks to the outside world: VIN decoding and market
// valuation. Both collaborators sit behind small interfaces so handlers and
// tests never depend on the HTTP clients directly.
package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// VehicleInfo is the decoded identity of a VIN.
type VehicleInfo struct {
	VIN      string `json:"vin"`
	Year     int    `json:"year"`
	Make     string `json:"make"`
	Model    string `json:"model"`
	Trim     string `json:"trim,omitempty"`
	BodyType string `json:"bodyType,omitempty"`
	Engine   string `json:"engine,omitempty"`
}

// Decoder resolves a VIN to vehicle identity.
type Decoder interface {
	Decode(ctx context.Context, vin string) (VehicleInfo, error)
}

const defaultNHTSABaseURL = "https://vpic.nhtsa.dot.gov/api"

// NHTSADecoder decodes VINs against the public NHTSA vPIC API.
type NHTSADecoder struct {
	baseURL string
	client  *http.Client
}

// NewNHTSADecoder creates a decoder. An empty baseURL uses the public API.
func NewNHTSADecoder(baseURL string) *NHTSADecoder {
	if baseURL == "" {
		baseURL = defaultNHTSABaseURL
	}
	return &NHTSADecoder{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

// nhtsaResponse is the subset of the DecodeVinValues payload we read.
type nhtsaResponse struct {
	Results []struct {
		ModelYear string `json:"ModelYear"`
		Make      string `json:"Make"`
		Model     string `json:"Model"`
		Trim      string `json:"Trim"`
		BodyClass string `json:"BodyClass"`
		EngineHP  string `json:"EngineHP"`
	} `json:"Results"`
}

func (d *NHTSADecoder) Decode(ctx context.Context, vin string) (VehicleInfo, error) {
	u := fmt.Sprintf("%s/vehicles/DecodeVinValues/%s?format=json", d.baseURL, url.PathEscape(vin))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return VehicleInfo{}, fmt.Errorf("building vin request: %w", err)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return VehicleInfo{}, fmt.Errorf("decoding vin %s: %w", vin, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return VehicleInfo{}, fmt.Errorf("decoding vin %s: status %d", vin, resp.StatusCode)
	}

	var body nhtsaResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return VehicleInfo{}, fmt.Errorf("parsing vin response: %w", err)
	}
	if len(body.Results) == 0 {
		return VehicleInfo{}, fmt.Errorf("decoding vin %s: empty result", vin)
	}

	r := body.Results[0]
	info := VehicleInfo{
		VIN:      vin,
		Make:     r.Make,
		Model:    r.Model,
		Trim:     r.Trim,
		BodyType: r.BodyClass,
		Engine:   r.EngineHP,
	}
	fmt.Sscanf(r.ModelYear, "%d", &info.Year)
	return info, nil
}

// StubDecoder returns a fixed decoded vehicle. Used in tests and when running
// fully offline.
type StubDecoder struct {
	Info VehicleInfo
}

func (s StubDecoder) Decode(_ context.Context, vin string) (VehicleInfo, error) {
	info := s.Info
	info.VIN = vin
	return info, nil
}
