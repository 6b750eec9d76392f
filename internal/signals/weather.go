package signals

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	httpclient "github.com/kosarica/grooming-service/internal/http"
	"github.com/kosarica/grooming-service/internal/types"
)

// WeatherAdapter reads current conditions from a One Call style endpoint
type WeatherAdapter struct {
	client  *httpclient.Client
	baseURL string
	apiKey  string
}

// NewWeatherAdapter creates a weather adapter. An empty apiKey disables it.
func NewWeatherAdapter(client *httpclient.Client, baseURL, apiKey string) *WeatherAdapter {
	return &WeatherAdapter{client: client, baseURL: baseURL, apiKey: apiKey}
}

func (a *WeatherAdapter) Kind() string  { return KindWeather }
func (a *WeatherAdapter) Enabled() bool { return a.apiKey != "" }

// Mock returns mild, dry weather
func (a *WeatherAdapter) Mock() types.Weather {
	return types.Weather{
		TemperatureC:    22,
		PrecipitationMM: 0,
		UVIndex:         5,
		Condition:       "Clear",
		Source:          types.SourceMock,
	}
}

type oneCallResponse struct {
	Current struct {
		Temp float64 `json:"temp"`
		UVI  float64 `json:"uvi"`
		Rain *struct {
			OneHour float64 `json:"1h"`
		} `json:"rain"`
		Weather []struct {
			Main string `json:"main"`
		} `json:"weather"`
	} `json:"current"`
}

func (a *WeatherAdapter) Fetch(ctx context.Context, loc Location) (types.Weather, error) {
	q := url.Values{}
	q.Set("lat", strconv.FormatFloat(loc.Lat, 'f', -1, 64))
	q.Set("lon", strconv.FormatFloat(loc.Lon, 'f', -1, 64))
	q.Set("units", "metric")
	q.Set("exclude", "minutely,hourly,daily,alerts")
	q.Set("appid", a.apiKey)

	var resp oneCallResponse
	if err := a.client.GetJSON(ctx, a.baseURL+"?"+q.Encode(), &resp); err != nil {
		return types.Weather{}, fmt.Errorf("weather: %w", err)
	}

	w := types.Weather{
		TemperatureC: resp.Current.Temp,
		UVIndex:      resp.Current.UVI,
		Source:       types.SourceLive,
	}
	if resp.Current.Rain != nil {
		w.PrecipitationMM = resp.Current.Rain.OneHour
	}
	if len(resp.Current.Weather) > 0 {
		w.Condition = resp.Current.Weather[0].Main
	}
	return w, nil
}
