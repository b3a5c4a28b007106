package domain

import (
	"time"
)

// InsightPoint é um ponto diário de performance de uma entidade.
type InsightPoint struct {
	TenantID         string     `json:"-"`
	EntityType       EntityType `json:"entity_type"`
	EntityID         string     `json:"entity_id,omitempty"`
	EntityExternalID string     `json:"entity_external_id"`
	Date             time.Time  `json:"date"`
	Impressions      int64      `json:"impressions"`
	Clicks           int64      `json:"clicks"`
	Spend            float64    `json:"spend"`
	Conversions      float64    `json:"conversions"`
}

type InsightFilters struct {
	StartDate *time.Time
	EndDate   *time.Time
}

// InsightSummary é o resumo que vai para o metadata da entidade.
type InsightSummary struct {
	DateStart   string  `json:"date_start"`
	DateStop    string  `json:"date_stop"`
	Impressions int64   `json:"impressions"`
	Clicks      int64   `json:"clicks"`
	Spend       float64 `json:"spend"`
	Conversions float64 `json:"conversions"`
}

func SummarizeInsights(points []InsightPoint) *InsightSummary {
	if len(points) == 0 {
		return nil
	}

	summary := &InsightSummary{}
	var first, last time.Time
	for i, p := range points {
		if i == 0 || p.Date.Before(first) {
			first = p.Date
		}
		if i == 0 || p.Date.After(last) {
			last = p.Date
		}
		summary.Impressions += p.Impressions
		summary.Clicks += p.Clicks
		summary.Spend += p.Spend
		summary.Conversions += p.Conversions
	}
	summary.DateStart = first.Format(time.DateOnly)
	summary.DateStop = last.Format(time.DateOnly)

	return summary
}

// AsMetadata converte o resumo para a forma que o banco devolve no JSONB.
func (s *InsightSummary) AsMetadata() map[string]any {
	if s == nil {
		return nil
	}
	return map[string]any{
		"date_start":  s.DateStart,
		"date_stop":   s.DateStop,
		"impressions": s.Impressions,
		"clicks":      s.Clicks,
		"spend":       s.Spend,
		"conversions": s.Conversions,
	}
}
