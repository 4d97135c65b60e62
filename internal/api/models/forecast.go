package models

// ForecastResponse is the response body for GET /v1/forecast.
type ForecastResponse struct {
	Location  string            `json:"location"`
	Lat       float64           `json:"lat"`
	Lon       float64           `json:"lon"`
	Date      string            `json:"date"`
	DayLabel  string            `json:"dayLabel"`
	Sessions  []ForecastSession `json:"sessions"`
	Tides     []TideEvent       `json:"tides"`
	Text      string            `json:"text"`
	FetchedAt Timestamp         `json:"fetchedAt"`
}

// ForecastSession is one session window in a forecast response.
type ForecastSession struct {
	Session       string  `json:"session"`
	WaveHeight    float64 `json:"waveHeightM"`
	WavePeriod    float64 `json:"wavePeriodS"`
	WindSpeed     float64 `json:"windSpeedKmh"`
	WindDirection float64 `json:"windDirectionDeg"`
	TideState     string  `json:"tideState"`
	Rating        int     `json:"rating"`
	Description   string  `json:"description"`
}

// TideEvent is a high or low tide extreme.
type TideEvent struct {
	Time   string  `json:"time"`
	Height float64 `json:"heightM"`
	Kind   string  `json:"kind"`
}
