package domain

import "time"

type WindowStatus string

const (
	WindowStatusOK               WindowStatus = "ok"
	WindowStatusInsufficientData WindowStatus = "insufficient_data"
)

// PerformanceWindow agrega os pontos de insight de um lado da mudança.
// CTR e CPC são recalculados a partir das somas, nunca pela média diária.
type PerformanceWindow struct {
	Start       time.Time    `json:"start"`
	End         time.Time    `json:"end"`
	Status      WindowStatus `json:"status"`
	DataPoints  int          `json:"data_points"`
	Impressions int64        `json:"impressions"`
	Clicks      int64        `json:"clicks"`
	Spend       float64      `json:"spend"`
	Conversions float64      `json:"conversions"`
	CTR         *float64     `json:"ctr"`
	CPC         *float64     `json:"cpc"`
}

func (w PerformanceWindow) Sufficient() bool {
	return w.Status == WindowStatusOK
}

type PerformanceComparison struct {
	ImpressionsDelta int64    `json:"impressions_delta"`
	ClicksDelta      int64    `json:"clicks_delta"`
	SpendDelta       float64  `json:"spend_delta"`
	ConversionsDelta float64  `json:"conversions_delta"`
	CTRDelta         *float64 `json:"ctr_delta"`
	CPCDelta         *float64 `json:"cpc_delta"`
}

type ChangeWithPerformance struct {
	Change     *ChangeRecord          `json:"change"`
	WindowDays int                    `json:"window_days"`
	Before     PerformanceWindow      `json:"before"`
	After      PerformanceWindow      `json:"after"`
	Comparison *PerformanceComparison `json:"comparison,omitempty"`
}
