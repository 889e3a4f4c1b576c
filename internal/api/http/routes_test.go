package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/i474232898/resort-conditions-aggregation/internal/conditions"
)

type fakeService struct {
	weatherErr   error
	lastResort   conditions.Resort
	primaryCalls int
	chainCalls   int
}

func (f *fakeService) GetResortWeather(_ context.Context, r conditions.Resort) (conditions.WeatherSnapshot, error) {
	f.chainCalls++
	f.lastResort = r
	if f.weatherErr != nil {
		return conditions.WeatherSnapshot{}, f.weatherErr
	}
	return conditions.WeatherSnapshot{BaseDepthCm: 120, Source: "open-meteo"}, nil
}

func (f *fakeService) GetResortWeatherPrimary(_ context.Context, r conditions.Resort) (conditions.WeatherSnapshot, error) {
	f.primaryCalls++
	f.lastResort = r
	if f.weatherErr != nil {
		return conditions.WeatherSnapshot{}, f.weatherErr
	}
	return conditions.WeatherSnapshot{BaseDepthCm: 80, Source: "open-meteo"}, nil
}

func (f *fakeService) GetAvalancheDanger(context.Context) conditions.AvalancheAdvisory {
	return conditions.AvalancheAdvisory{DangerLevel: 3, Problems: []string{"Wind Slab"}, Source: conditions.SourceSynthetic}
}

func (f *fakeService) GetChainControls(context.Context) []conditions.ChainControlStatus {
	out := make([]conditions.ChainControlStatus, 0, len(conditions.Routes))
	for _, r := range conditions.Routes {
		out = append(out, conditions.ChainControlStatus{Route: r, Status: conditions.ChainNone, Description: r.Description()})
	}
	return out
}

func doRequest(t *testing.T, svc ConditionsService, target string) *http.Response {
	t.Helper()
	app := NewApp(svc)
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, target, nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

// TestWeatherQueryValidation verifies that malformed resort ids and coordinates are rejected
// before the service is called.
func TestWeatherQueryValidation(t *testing.T) {
	targets := []string{
		"/api/v1/resorts/abc/weather?lat=39.1&lon=-120.2",
		"/api/v1/resorts/-1/weather?lat=39.1&lon=-120.2",
		"/api/v1/resorts/1/weather?lon=-120.2",
		"/api/v1/resorts/1/weather?lat=north&lon=-120.2",
		"/api/v1/resorts/1/weather?lat=91&lon=-120.2",
		"/api/v1/resorts/1/weather?lat=39.1&lon=-181",
		"/api/v1/resorts/1/weather?lat=39.1&lon=-120.2&source=cache",
	}

	for _, target := range targets {
		svc := &fakeService{}
		resp := doRequest(t, svc, target)
		if resp.StatusCode != http.StatusBadRequest {
			t.Fatalf("%s: expected status %d, got %d", target, http.StatusBadRequest, resp.StatusCode)
		}
		if svc.chainCalls+svc.primaryCalls != 0 {
			t.Fatalf("%s: service should not be called", target)
		}
	}
}

func TestWeatherSourceSelection(t *testing.T) {
	svc := &fakeService{}

	resp := doRequest(t, svc, "/api/v1/resorts/7/weather?lat=39.1&lon=-120.2")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, resp.StatusCode)
	}
	if svc.chainCalls != 1 {
		t.Fatalf("expected the fallback chain to be used by default")
	}
	want := conditions.Resort{ID: 7, Latitude: 39.1, Longitude: -120.2}
	if svc.lastResort != want {
		t.Fatalf("expected resort %+v, got %+v", want, svc.lastResort)
	}

	var snap conditions.WeatherSnapshot
	if err := json.NewDecoder(resp.Body).Decode(&snap); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if snap.BaseDepthCm != 120 {
		t.Fatalf("expected base depth 120, got %d", snap.BaseDepthCm)
	}

	resp = doRequest(t, svc, "/api/v1/resorts/7/weather?lat=39.1&lon=-120.2&source=primary")
	if resp.StatusCode != http.StatusOK || svc.primaryCalls != 1 {
		t.Fatalf("expected primary source to be used, status %d", resp.StatusCode)
	}
}

func TestWeatherUnavailableIsBadGateway(t *testing.T) {
	svc := &fakeService{weatherErr: errors.New("weather data unavailable for resort 7: boom")}

	resp := doRequest(t, svc, "/api/v1/resorts/7/weather?lat=39.1&lon=-120.2")
	if resp.StatusCode != http.StatusBadGateway {
		t.Fatalf("expected status %d, got %d", http.StatusBadGateway, resp.StatusCode)
	}

	var body struct {
		Error   bool   `json:"error"`
		Message string `json:"message"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !body.Error || body.Message != svc.weatherErr.Error() {
		t.Fatalf("unexpected error body: %+v", body)
	}
}

func TestAvalancheAndChainControls(t *testing.T) {
	svc := &fakeService{}

	resp := doRequest(t, svc, "/api/v1/avalanche")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, resp.StatusCode)
	}
	var adv conditions.AvalancheAdvisory
	if err := json.NewDecoder(resp.Body).Decode(&adv); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if adv.DangerLevel != 3 {
		t.Fatalf("expected danger level 3, got %d", adv.DangerLevel)
	}

	resp = doRequest(t, svc, "/api/v1/chain-controls")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, resp.StatusCode)
	}
	var statuses []conditions.ChainControlStatus
	if err := json.NewDecoder(resp.Body).Decode(&statuses); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(statuses) != len(conditions.Routes) {
		t.Fatalf("expected %d routes, got %d", len(conditions.Routes), len(statuses))
	}
}

func TestHealth(t *testing.T) {
	resp := doRequest(t, &fakeService{}, "/health")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, resp.StatusCode)
	}
	if resp.Header.Get("X-Request-ID") == "" {
		t.Fatalf("expected a request id header")
	}
}
