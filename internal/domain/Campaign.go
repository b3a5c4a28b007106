package domain

import "time"

type Campaign struct {
	ID             string    `json:"id"`
	TenantID       string    `json:"tenant_id"`
	AdAccountID    string    `json:"ad_account_id"`
	ExternalID     string    `json:"external_id"`
	Name           string    `json:"name"`
	Status         string    `json:"status"`
	Objective      string    `json:"objective"`
	DailyBudget    *int64    `json:"daily_budget,omitempty"`
	LifetimeBudget *int64    `json:"lifetime_budget,omitempty"`
	BidStrategy    string    `json:"bid_strategy,omitempty"`
	Metadata       Metadata  `json:"metadata,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func (c *Campaign) TrackedFields() FieldSet {
	return FieldSet{
		"name":            c.Name,
		"status":          c.Status,
		"objective":       c.Objective,
		"daily_budget":    c.DailyBudget,
		"lifetime_budget": c.LifetimeBudget,
		"bid_strategy":    c.BidStrategy,
	}
}

type AdGroup struct {
	ID                 string    `json:"id"`
	TenantID           string    `json:"tenant_id"`
	AdAccountID        string    `json:"ad_account_id"`
	CampaignID         string    `json:"campaign_id"`
	ExternalID         string    `json:"external_id"`
	CampaignExternalID string    `json:"campaign_external_id"`
	Name               string    `json:"name"`
	Status             string    `json:"status"`
	DailyBudget        *int64    `json:"daily_budget,omitempty"`
	LifetimeBudget     *int64    `json:"lifetime_budget,omitempty"`
	BidAmount          *int64    `json:"bid_amount,omitempty"`
	BidStrategy        string    `json:"bid_strategy,omitempty"`
	OptimizationGoal   string    `json:"optimization_goal,omitempty"`
	BillingEvent       string    `json:"billing_event,omitempty"`
	Metadata           Metadata  `json:"metadata,omitempty"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

func (g *AdGroup) TrackedFields() FieldSet {
	return FieldSet{
		"name":              g.Name,
		"status":            g.Status,
		"daily_budget":      g.DailyBudget,
		"lifetime_budget":   g.LifetimeBudget,
		"bid_amount":        g.BidAmount,
		"bid_strategy":      g.BidStrategy,
		"optimization_goal": g.OptimizationGoal,
		"billing_event":     g.BillingEvent,
	}
}

type Ad struct {
	ID                string    `json:"id"`
	TenantID          string    `json:"tenant_id"`
	AdAccountID       string    `json:"ad_account_id"`
	AdGroupID         string    `json:"ad_group_id"`
	ExternalID        string    `json:"external_id"`
	AdGroupExternalID string    `json:"ad_group_external_id"`
	Name              string    `json:"name"`
	Status            string    `json:"status"`
	Creative          *Creative `json:"creative,omitempty"`
	Metadata          Metadata  `json:"metadata,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

func (a *Ad) TrackedFields() FieldSet {
	return FieldSet{
		"name":     a.Name,
		"status":   a.Status,
		"creative": a.Creative,
	}
}
