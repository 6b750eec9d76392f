package signals

import (
	"context"
	"fmt"
	"math"
	"net/url"
	"sort"
	"strconv"

	httpclient "github.com/kosarica/grooming-service/internal/http"
	"github.com/kosarica/grooming-service/internal/types"
)

const (
	mockInterest   = 65
	maxCompetitors = 10
)

// PlacesAdapter looks up nearby competitors by keyword and derives a local
// interest index from their combined review volume.
type PlacesAdapter struct {
	client     *httpclient.Client
	baseURL    string
	apiKey     string
	keyword    string
	radiusM    int
	saturation int
}

// NewPlacesAdapter creates a places adapter. saturation is the review count
// at which interest reaches 100. An empty apiKey disables it.
func NewPlacesAdapter(client *httpclient.Client, baseURL, apiKey, keyword string, radiusM, saturation int) *PlacesAdapter {
	if saturation <= 0 {
		saturation = 2000
	}
	return &PlacesAdapter{
		client:     client,
		baseURL:    baseURL,
		apiKey:     apiKey,
		keyword:    keyword,
		radiusM:    radiusM,
		saturation: saturation,
	}
}

func (a *PlacesAdapter) Kind() string  { return KindTrends }
func (a *PlacesAdapter) Enabled() bool { return a.apiKey != "" }

func (a *PlacesAdapter) Mock() types.Trends {
	return types.Trends{
		Keyword:     a.keyword,
		Interest:    mockInterest,
		Competitors: []types.Competitor{},
		Source:      types.SourceMock,
	}
}

// Interest maps a review volume onto 0-100
func Interest(totalReviews, saturation int) int {
	if saturation <= 0 || totalReviews <= 0 {
		return 0
	}
	return int(math.Round(100 * math.Min(1, float64(totalReviews)/float64(saturation))))
}

type nearbySearchResponse struct {
	Status  string `json:"status"`
	Results []struct {
		Name             string  `json:"name"`
		Rating           float64 `json:"rating"`
		UserRatingsTotal int     `json:"user_ratings_total"`
		Vicinity         string  `json:"vicinity"`
	} `json:"results"`
}

func (a *PlacesAdapter) Fetch(ctx context.Context, loc Location) (types.Trends, error) {
	q := url.Values{}
	q.Set("location", loc.String())
	q.Set("radius", strconv.Itoa(a.radiusM))
	q.Set("keyword", a.keyword)
	q.Set("key", a.apiKey)

	var resp nearbySearchResponse
	if err := a.client.GetJSON(ctx, a.baseURL+"?"+q.Encode(), &resp); err != nil {
		return types.Trends{}, fmt.Errorf("places: %w", err)
	}
	if resp.Status != "OK" && resp.Status != "ZERO_RESULTS" {
		return types.Trends{}, fmt.Errorf("places: api status %q", resp.Status)
	}

	total := 0
	competitors := make([]types.Competitor, 0, len(resp.Results))
	for _, r := range resp.Results {
		total += r.UserRatingsTotal
		competitors = append(competitors, types.Competitor{
			Name:        r.Name,
			Rating:      r.Rating,
			ReviewCount: r.UserRatingsTotal,
			Address:     r.Vicinity,
		})
	}
	sort.SliceStable(competitors, func(i, j int) bool {
		return competitors[i].ReviewCount > competitors[j].ReviewCount
	})
	if len(competitors) > maxCompetitors {
		competitors = competitors[:maxCompetitors]
	}

	return types.Trends{
		Keyword:     a.keyword,
		Interest:    Interest(total, a.saturation),
		Competitors: competitors,
		Source:      types.SourceLive,
	}, nil
}
