package types

// SignalSource tells whether a signal came from the live API, the cache or
// the built-in fallback
type SignalSource string

const (
	SourceLive  SignalSource = "live"
	SourceCache SignalSource = "cache"
	SourceMock  SignalSource = "mock"
)

// TrafficLevel is a discrete congestion level
type TrafficLevel string

const (
	TrafficLow    TrafficLevel = "low"
	TrafficMedium TrafficLevel = "medium"
	TrafficHigh   TrafficLevel = "high"
)

// Weather is the current conditions at the shop
type Weather struct {
	TemperatureC    float64      `json:"temperature_c"`
	PrecipitationMM float64      `json:"precipitation_mm"`
	UVIndex         float64      `json:"uv_index"`
	Condition       string       `json:"condition"`
	Source          SignalSource `json:"source"`
}

// Traffic is the congestion between the shop and a reference point
type Traffic struct {
	Level            TrafficLevel `json:"level"`
	DurationSeconds  int          `json:"duration_seconds"`
	InTrafficSeconds int          `json:"in_traffic_seconds"`
	CongestionRatio  float64      `json:"congestion_ratio"`
	Source           SignalSource `json:"source"`
}

// Competitor is a nearby business offering the same service
type Competitor struct {
	Name        string  `json:"name"`
	Rating      float64 `json:"rating"`
	ReviewCount int     `json:"review_count"`
	Address     string  `json:"address"`
}

// Trends is the local demand signal derived from nearby listings
type Trends struct {
	Keyword     string       `json:"keyword"`
	Interest    int          `json:"interest"`
	Competitors []Competitor `json:"competitors"`
	Source      SignalSource `json:"source"`
}
