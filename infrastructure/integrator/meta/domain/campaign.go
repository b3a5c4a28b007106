package metadomain

type Cursors struct {
	Before string `json:"before"`
	After  string `json:"after"`
}

type Paging struct {
	Cursors Cursors `json:"cursors"`
	Next    string  `json:"next,omitempty"`
}

// Page é o envelope padrão das listagens da Graph API.
type Page[T any] struct {
	Data   []T    `json:"data"`
	Paging Paging `json:"paging"`
}

type Campaign struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Status          string `json:"status"`
	EffectiveStatus string `json:"effective_status,omitempty"`
	Objective       string `json:"objective,omitempty"`
	DailyBudget     string `json:"daily_budget,omitempty"`
	LifetimeBudget  string `json:"lifetime_budget,omitempty"`
	BidStrategy     string `json:"bid_strategy,omitempty"`
	BuyingType      string `json:"buying_type,omitempty"`
	CreatedTime     string `json:"created_time,omitempty"`
	UpdatedTime     string `json:"updated_time,omitempty"`
}

type AdSet struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	Status           string `json:"status"`
	EffectiveStatus  string `json:"effective_status,omitempty"`
	CampaignID       string `json:"campaign_id"`
	DailyBudget      string `json:"daily_budget,omitempty"`
	LifetimeBudget   string `json:"lifetime_budget,omitempty"`
	BidAmount        string `json:"bid_amount,omitempty"`
	BidStrategy      string `json:"bid_strategy,omitempty"`
	OptimizationGoal string `json:"optimization_goal,omitempty"`
	BillingEvent     string `json:"billing_event,omitempty"`
	StartTime        string `json:"start_time,omitempty"`
	EndTime          string `json:"end_time,omitempty"`
	UpdatedTime      string `json:"updated_time,omitempty"`
}

type Ad struct {
	ID              string      `json:"id"`
	Name            string      `json:"name"`
	Status          string      `json:"status"`
	EffectiveStatus string      `json:"effective_status,omitempty"`
	AdsetID         string      `json:"adset_id"`
	CampaignID      string      `json:"campaign_id"`
	Creative        *AdCreative `json:"creative,omitempty"`
	UpdatedTime     string      `json:"updated_time,omitempty"`
}
