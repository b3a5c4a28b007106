package domain

import "time"

// RawAccountGraph é o snapshot de uma conta de anúncios devolvido pelo
// adaptador do provedor, já convertido para tipos neutros.
type RawAccountGraph struct {
	Account   RawAdAccount
	Campaigns []RawCampaign
	AdGroups  []RawAdGroup
	Ads       []RawAd
	Insights  []InsightPoint
	FetchedAt time.Time
}

type RawAdAccount struct {
	ExternalID string
	Name       string
	Currency   string
	Status     AdAccountStatus
}

type RawCampaign struct {
	ExternalID     string
	Name           string
	Status         string
	Objective      string
	DailyBudget    *int64
	LifetimeBudget *int64
	BidStrategy    string
	Metadata       Metadata
}

type RawAdGroup struct {
	ExternalID         string
	CampaignExternalID string
	Name               string
	Status             string
	DailyBudget        *int64
	LifetimeBudget     *int64
	BidAmount          *int64
	BidStrategy        string
	OptimizationGoal   string
	BillingEvent       string
	Metadata           Metadata
}

type RawAd struct {
	ExternalID        string
	AdGroupExternalID string
	Name              string
	Status            string
	Creative          *Creative
	Metadata          Metadata
}

func (g *RawAccountGraph) CampaignExternalIDs() []string {
	ids := make([]string, 0, len(g.Campaigns))
	for _, c := range g.Campaigns {
		ids = append(ids, c.ExternalID)
	}
	return ids
}

func (g *RawAccountGraph) AdGroupExternalIDs() []string {
	ids := make([]string, 0, len(g.AdGroups))
	for _, ag := range g.AdGroups {
		ids = append(ids, ag.ExternalID)
	}
	return ids
}

func (g *RawAccountGraph) AdExternalIDs() []string {
	ids := make([]string, 0, len(g.Ads))
	for _, ad := range g.Ads {
		ids = append(ids, ad.ExternalID)
	}
	return ids
}
