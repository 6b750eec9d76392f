package signals

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	httpclient "github.com/kosarica/grooming-service/internal/http"
	"github.com/kosarica/grooming-service/internal/types"
)

var shop = Location{Lat: 19.4326, Lon: -99.1332}

func serveJSON(t *testing.T, body string, check func(r *http.Request)) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if check != nil {
			check(r)
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func testClient() *httpclient.Client {
	return httpclient.NewClient(httpclient.Config{RequestsPerSecond: 100, Burst: 10})
}

func TestWeatherAdapter_Fetch(t *testing.T) {
	srv := serveJSON(t, `{"current":{"temp":31.5,"uvi":9.1,"rain":{"1h":6.2},"weather":[{"main":"Rain"}]}}`,
		func(r *http.Request) {
			assert.Equal(t, "secret", r.URL.Query().Get("appid"))
			assert.Equal(t, "metric", r.URL.Query().Get("units"))
			assert.Equal(t, "19.4326", r.URL.Query().Get("lat"))
		})

	a := NewWeatherAdapter(testClient(), srv.URL, "secret")
	w, err := a.Fetch(context.Background(), shop)
	require.NoError(t, err)

	assert.Equal(t, 31.5, w.TemperatureC)
	assert.Equal(t, 9.1, w.UVIndex)
	assert.Equal(t, 6.2, w.PrecipitationMM)
	assert.Equal(t, "Rain", w.Condition)
	assert.Equal(t, types.SourceLive, w.Source)
}

func TestWeatherAdapter_NoRain(t *testing.T) {
	srv := serveJSON(t, `{"current":{"temp":20,"uvi":3,"weather":[]}}`, nil)

	w, err := NewWeatherAdapter(testClient(), srv.URL, "k").Fetch(context.Background(), shop)
	require.NoError(t, err)
	assert.Zero(t, w.PrecipitationMM)
	assert.Empty(t, w.Condition)
}

func TestWeatherAdapter_DisabledWithoutKey(t *testing.T) {
	a := NewWeatherAdapter(testClient(), "http://unused", "")
	assert.False(t, a.Enabled())
	assert.Equal(t, types.SourceMock, a.Mock().Source)
	assert.Equal(t, 22.0, a.Mock().TemperatureC)
}

func TestLevelFor(t *testing.T) {
	tests := []struct {
		ratio float64
		want  types.TrafficLevel
	}{
		{1.0, types.TrafficLow},
		{1.14, types.TrafficLow},
		{1.15, types.TrafficMedium},
		{1.39, types.TrafficMedium},
		{1.4, types.TrafficHigh},
		{2.5, types.TrafficHigh},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, LevelFor(tt.ratio), "ratio %v", tt.ratio)
	}
}

func TestTrafficAdapter_Fetch(t *testing.T) {
	body := `{"status":"OK","rows":[{"elements":[{"status":"OK","duration":{"value":1000},"duration_in_traffic":{"value":1500}}]}]}`
	srv := serveJSON(t, body, func(r *http.Request) {
		assert.Equal(t, "19.4326,-99.1332", r.URL.Query().Get("origins"))
		assert.Equal(t, "19.4000,-99.2000", r.URL.Query().Get("destinations"))
		assert.Equal(t, "now", r.URL.Query().Get("departure_time"))
	})

	a := NewTrafficAdapter(testClient(), srv.URL, "k", Location{Lat: 19.4, Lon: -99.2})
	tr, err := a.Fetch(context.Background(), shop)
	require.NoError(t, err)

	assert.Equal(t, types.TrafficHigh, tr.Level)
	assert.Equal(t, 1000, tr.DurationSeconds)
	assert.Equal(t, 1500, tr.InTrafficSeconds)
	assert.InDelta(t, 1.5, tr.CongestionRatio, 1e-9)
}

func TestTrafficAdapter_BadStatus(t *testing.T) {
	srv := serveJSON(t, `{"status":"REQUEST_DENIED","rows":[]}`, nil)

	_, err := NewTrafficAdapter(testClient(), srv.URL, "k", shop).Fetch(context.Background(), shop)
	assert.ErrorContains(t, err, "REQUEST_DENIED")
}

func TestTrafficAdapter_MissingTrafficDuration(t *testing.T) {
	body := `{"status":"OK","rows":[{"elements":[{"status":"OK","duration":{"value":600}}]}]}`
	srv := serveJSON(t, body, nil)

	tr, err := NewTrafficAdapter(testClient(), srv.URL, "k", shop).Fetch(context.Background(), shop)
	require.NoError(t, err)
	assert.Equal(t, types.TrafficLow, tr.Level)
	assert.Equal(t, 600, tr.InTrafficSeconds)
}

func TestInterest(t *testing.T) {
	assert.Equal(t, 0, Interest(0, 2000))
	assert.Equal(t, 50, Interest(1000, 2000))
	assert.Equal(t, 100, Interest(5000, 2000))
	assert.Equal(t, 0, Interest(100, 0))
}

func TestPlacesAdapter_Fetch(t *testing.T) {
	body := `{"status":"OK","results":[
		{"name":"Guau Spa","rating":4.2,"user_ratings_total":300,"vicinity":"Calle 1"},
		{"name":"Patitas","rating":4.8,"user_ratings_total":700,"vicinity":"Calle 2"}
	]}`
	srv := serveJSON(t, body, func(r *http.Request) {
		assert.Equal(t, "estética canina", r.URL.Query().Get("keyword"))
		assert.Equal(t, "3000", r.URL.Query().Get("radius"))
	})

	a := NewPlacesAdapter(testClient(), srv.URL, "k", "estética canina", 3000, 2000)
	tr, err := a.Fetch(context.Background(), shop)
	require.NoError(t, err)

	assert.Equal(t, 50, tr.Interest)
	require.Len(t, tr.Competitors, 2)
	assert.Equal(t, "Patitas", tr.Competitors[0].Name)
	assert.Equal(t, "Calle 1", tr.Competitors[1].Address)
}

func TestPlacesAdapter_ZeroResults(t *testing.T) {
	srv := serveJSON(t, `{"status":"ZERO_RESULTS","results":[]}`, nil)

	tr, err := NewPlacesAdapter(testClient(), srv.URL, "k", "groomer", 1000, 2000).Fetch(context.Background(), shop)
	require.NoError(t, err)
	assert.Equal(t, 0, tr.Interest)
	assert.NotNil(t, tr.Competitors)
	assert.Empty(t, tr.Competitors)
}

func TestPlacesAdapter_Mock(t *testing.T) {
	m := NewPlacesAdapter(testClient(), "", "", "groomer", 1000, 0).Mock()
	assert.Equal(t, 65, m.Interest)
	assert.Equal(t, "groomer", m.Keyword)
	assert.NotNil(t, m.Competitors)
}
