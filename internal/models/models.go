package models

// RawRecord es una fila cruda del reporte: columna -> texto sin normalizar.
type RawRecord struct {
	Index  int
	Fields map[string]string
}

type Source struct {
	ID   string `yaml:"id" json:"id"`
	Name string `yaml:"name" json:"name"`
	URL  string `yaml:"url" json:"-"`
}

type AggregateResult struct {
	Key          string  `json:"key"`
	Spend        float64 `json:"spend"`
	Impressions  float64 `json:"impressions"`
	Reach        float64 `json:"reach"`
	LinkClicks   float64 `json:"link_clicks"`
	AllClicks    float64 `json:"all_clicks"`
	Messages     float64 `json:"messages"`
	Engagement   float64 `json:"engagement"`
	LandingViews float64 `json:"landing_views"`
	Video3s      float64 `json:"video_3s"`
	Video75      float64 `json:"video_75"`
	Video95      float64 `json:"video_95"`

	CTR           float64 `json:"ctr"`
	CPC           float64 `json:"cpc"`
	CPM           float64 `json:"cpm"`
	CostPerResult float64 `json:"cost_per_result"`
	ConnectRate   float64 `json:"connect_rate"`

	ImpactRate float64 `json:"impact_rate"`
	StoryRate  float64 `json:"story_rate"`
	OfferRate  float64 `json:"offer_rate"`
	CTARate    float64 `json:"cta_rate"`
}

type WeeklyBucket struct {
	StartDate     string  `json:"start_date"`
	EndDate       string  `json:"end_date"`
	Spend         float64 `json:"spend"`
	Impressions   float64 `json:"impressions"`
	LinkClicks    float64 `json:"link_clicks"`
	AllClicks     float64 `json:"all_clicks"`
	Conversations float64 `json:"conversations"`
	CTR           float64 `json:"ctr"`
	CTRAll        float64 `json:"ctr_all"`
	CPM           float64 `json:"cpm"`
	CostPerResult float64 `json:"cost_per_result"`
}

// TrendDelta compara una ventana semanal contra la anterior.
type TrendDelta struct {
	Metric    string  `json:"metric"`
	Window    int     `json:"window"` // índice de la ventana más nueva (1..3)
	Previous  float64 `json:"previous"`
	Current   float64 `json:"current"`
	ChangePct float64 `json:"change_pct"`
	Direction string  `json:"direction"` // up | down | flat
	Good      bool    `json:"good"`
}
