package providers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/resort-conditions-aggregation/internal/conditions"
)

func TestMapChainStatus(t *testing.T) {
	cases := map[string]conditions.ChainStatus{
		"R2 chains REQUIRED":                conditions.ChainRequired,
		"Chains advised over the summit":    conditions.ChainAdvised,
		"Travel prohibited":                 conditions.ChainProhibited,
		"No restrictions":                   conditions.ChainNone,
		"advised, required beyond Kingvale": conditions.ChainRequired,
	}
	for in, want := range cases {
		assert.Equal(t, want, MapChainStatus(in), "status %q", in)
	}
	assert.Equal(t, conditions.ChainNone, MapChainStatus(""))
}

func TestCaltrans_FetchChainControls(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "chainControls", r.URL.Query().Get("layers"))
		w.Header().Set(headerContentType, contentTypeJSON)
		_, _ = w.Write([]byte(`{"layers":[
			{"name":"I-80 Donner Summit","description":"Chain control","status":"Chains required"},
			{"name":"Echo Summit","description":"US-50 westbound","status":"Chains advised"}
		]}`))
	}))
	defer srv.Close()

	p := NewCaltransProvider(testDeps(srv.Client()), srv.URL)
	got, err := p.FetchChainControls(context.Background())
	require.NoError(t, err)
	require.Len(t, got, len(conditions.Routes))

	want := map[conditions.Route]conditions.ChainStatus{
		conditions.RouteI80:  conditions.ChainRequired,
		conditions.RouteUS50: conditions.ChainAdvised,
		conditions.RouteSR89: conditions.ChainNone,
	}
	for i, c := range got {
		assert.Equal(t, conditions.Routes[i], c.Route)
		assert.Equal(t, want[c.Route], c.Status)
		assert.Equal(t, c.Route.Description(), c.Description)
		assert.Equal(t, testNow, c.LastUpdated)
	}
}

func TestCaltrans_Fetch_MissingLayers(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set(headerContentType, contentTypeJSON)
		_, _ = w.Write([]byte(`{"features":[]}`))
	}))
	defer srv.Close()

	p := NewCaltransProvider(testDeps(srv.Client()), srv.URL)
	_, err := p.FetchChainControls(context.Background())
	var parseErr *conditions.ParseError
	require.ErrorAs(t, err, &parseErr)
}

func TestCaltrans_ServiceMasksUnavailableFeed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	p := NewCaltransProvider(testDeps(srv.Client()), srv.URL)
	svc := conditions.NewService(conditions.Options{
		ChainControls: []conditions.ChainControlSource{p},
	})

	got := svc.GetChainControls(context.Background())
	require.Len(t, got, len(conditions.Routes))
	for i, c := range got {
		assert.Equal(t, conditions.Routes[i], c.Route)
		assert.Equal(t, c.Route.Description(), c.Description)
		assert.Contains(t, conditions.ChainStatuses, c.Status)
	}
}
