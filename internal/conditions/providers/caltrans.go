package providers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/i474232898/resort-conditions-aggregation/internal/common"
	"github.com/i474232898/resort-conditions-aggregation/internal/conditions"
)

const (
	CaltransName               = "caltrans-quickmap"
	DefaultChainControlBaseURL = "https://quickmap.dot.ca.gov/QuickMap.json"
)

// QuickMapResponse is the chain-control layer query result.
type QuickMapResponse struct {
	Layers []QuickMapLayer `json:"layers"`
}

type QuickMapLayer struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Status      string `json:"status"`
}

// CaltransProvider implements conditions.ChainControlSource over Caltrans QuickMap.
type CaltransProvider struct {
	name    string
	baseURL string
	client  *http.Client
	clock   clockwork.Clock
	logger  *zap.SugaredLogger
	circuit *gobreaker.CircuitBreaker
}

func NewCaltransProvider(deps Deps, baseURL string) *CaltransProvider {
	deps = deps.withDefaults()
	if baseURL == "" {
		baseURL = DefaultChainControlBaseURL
	}
	return &CaltransProvider{
		name:    CaltransName,
		baseURL: baseURL,
		client:  deps.Client,
		clock:   deps.Clock,
		logger:  deps.Logger.With("source", CaltransName),
		circuit: newBreaker(CaltransName),
	}
}

func (p *CaltransProvider) Name() string {
	return p.name
}

// Fetch queries the chain-control layer.
func (p *CaltransProvider) Fetch(ctx context.Context) (QuickMapResponse, error) {
	values := url.Values{}
	values.Set("layers", "chainControls")

	body, err := fetchBody(ctx, p.client, p.circuit, p.name, p.baseURL+"?"+values.Encode(), "application/json")
	if err != nil {
		return QuickMapResponse{}, err
	}

	var payload QuickMapResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return QuickMapResponse{}, parseErr(p.name, err)
	}
	if payload.Layers == nil {
		return QuickMapResponse{}, parseErr(p.name, errors.New("missing layers"))
	}
	return payload, nil
}

// FetchChainControls fetches and normalizes chain-control statuses for every monitored route.
func (p *CaltransProvider) FetchChainControls(ctx context.Context) ([]conditions.ChainControlStatus, error) {
	payload, err := p.Fetch(ctx)
	if err != nil {
		return nil, err
	}
	return NormalizeChainControls(payload, p.clock.Now()), nil
}

// NormalizeChainControls reports one status per monitored route. Routes without a matching
// layer report None.
func NormalizeChainControls(payload QuickMapResponse, now time.Time) []conditions.ChainControlStatus {
	out := make([]conditions.ChainControlStatus, 0, len(conditions.Routes))
	for _, route := range conditions.Routes {
		status := conditions.ChainNone
		if layer, ok := findLayer(payload.Layers, route); ok {
			status = MapChainStatus(layer.Status)
		}
		out = append(out, conditions.ChainControlStatus{
			Route:       route,
			Status:      status,
			Description: route.Description(),
			LastUpdated: now.UTC(),
		})
	}
	return out
}

func findLayer(layers []QuickMapLayer, route conditions.Route) (QuickMapLayer, bool) {
	for _, l := range layers {
		if strings.Contains(l.Name, string(route)) || strings.Contains(l.Description, string(route)) {
			return l, true
		}
	}
	return QuickMapLayer{}, false
}

// MapChainStatus maps free-text status onto a ChainStatus; unrecognized text is None.
func MapChainStatus(status string) conditions.ChainStatus {
	switch {
	case common.ContainsFold(status, "required"):
		return conditions.ChainRequired
	case common.ContainsFold(status, "advised"):
		return conditions.ChainAdvised
	case common.ContainsFold(status, "prohibited"):
		return conditions.ChainProhibited
	default:
		return conditions.ChainNone
	}
}
