package signals

import (
	"context"
	"fmt"
	"net/url"

	httpclient "github.com/kosarica/grooming-service/internal/http"
	"github.com/kosarica/grooming-service/internal/types"
)

// Congestion ratio thresholds (in-traffic duration over free-flow duration)
const (
	lowCongestion    = 1.15
	mediumCongestion = 1.4
)

// TrafficAdapter measures congestion between the business and a fixed
// reference point through a distance matrix endpoint.
type TrafficAdapter struct {
	client    *httpclient.Client
	baseURL   string
	apiKey    string
	reference Location
}

// NewTrafficAdapter creates a traffic adapter. An empty apiKey disables it.
func NewTrafficAdapter(client *httpclient.Client, baseURL, apiKey string, reference Location) *TrafficAdapter {
	return &TrafficAdapter{client: client, baseURL: baseURL, apiKey: apiKey, reference: reference}
}

func (a *TrafficAdapter) Kind() string  { return KindTraffic }
func (a *TrafficAdapter) Enabled() bool { return a.apiKey != "" }

func (a *TrafficAdapter) Mock() types.Traffic {
	return types.Traffic{
		Level:            types.TrafficMedium,
		DurationSeconds:  900,
		InTrafficSeconds: 1080,
		CongestionRatio:  1.2,
		Source:           types.SourceMock,
	}
}

// LevelFor buckets a congestion ratio
func LevelFor(ratio float64) types.TrafficLevel {
	switch {
	case ratio < lowCongestion:
		return types.TrafficLow
	case ratio < mediumCongestion:
		return types.TrafficMedium
	default:
		return types.TrafficHigh
	}
}

type distanceMatrixResponse struct {
	Status string `json:"status"`
	Rows   []struct {
		Elements []struct {
			Status   string `json:"status"`
			Duration struct {
				Value int `json:"value"`
			} `json:"duration"`
			DurationInTraffic *struct {
				Value int `json:"value"`
			} `json:"duration_in_traffic"`
		} `json:"elements"`
	} `json:"rows"`
}

func (a *TrafficAdapter) Fetch(ctx context.Context, loc Location) (types.Traffic, error) {
	q := url.Values{}
	q.Set("origins", loc.String())
	q.Set("destinations", a.reference.String())
	q.Set("departure_time", "now")
	q.Set("key", a.apiKey)

	var resp distanceMatrixResponse
	if err := a.client.GetJSON(ctx, a.baseURL+"?"+q.Encode(), &resp); err != nil {
		return types.Traffic{}, fmt.Errorf("traffic: %w", err)
	}
	if resp.Status != "OK" {
		return types.Traffic{}, fmt.Errorf("traffic: api status %q", resp.Status)
	}
	if len(resp.Rows) == 0 || len(resp.Rows[0].Elements) == 0 {
		return types.Traffic{}, fmt.Errorf("traffic: empty matrix")
	}

	el := resp.Rows[0].Elements[0]
	if el.Status != "OK" {
		return types.Traffic{}, fmt.Errorf("traffic: element status %q", el.Status)
	}
	if el.Duration.Value <= 0 {
		return types.Traffic{}, fmt.Errorf("traffic: non-positive duration")
	}

	inTraffic := el.Duration.Value
	if el.DurationInTraffic != nil {
		inTraffic = el.DurationInTraffic.Value
	}
	ratio := float64(inTraffic) / float64(el.Duration.Value)

	return types.Traffic{
		Level:            LevelFor(ratio),
		DurationSeconds:  el.Duration.Value,
		InTrafficSeconds: inTraffic,
		CongestionRatio:  ratio,
		Source:           types.SourceLive,
	}, nil
}
