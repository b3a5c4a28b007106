package domain

import "time"

type SyncStatus string

const (
	SyncStatusRunning SyncStatus = "running"
	SyncStatusSuccess SyncStatus = "success"
	SyncStatusPartial SyncStatus = "partial"
	SyncStatusFailed  SyncStatus = "failed"
)

type SyncCounts struct {
	Accounts       int `json:"accounts"`
	AccountsFailed int `json:"accounts_failed"`
	Campaigns      int `json:"campaigns"`
	AdGroups       int `json:"ad_groups"`
	Ads            int `json:"ads"`
	Changes        int `json:"changes"`
	Skipped        int `json:"skipped"`
}

func (c *SyncCounts) Add(other SyncCounts) {
	c.Accounts += other.Accounts
	c.AccountsFailed += other.AccountsFailed
	c.Campaigns += other.Campaigns
	c.AdGroups += other.AdGroups
	c.Ads += other.Ads
	c.Changes += other.Changes
	c.Skipped += other.Skipped
}

// SyncHistory registra uma execução por provedor por tenant. Nasce running e
// é finalizada uma única vez.
type SyncHistory struct {
	ID            string     `json:"id"`
	TenantID      string     `json:"tenant_id"`
	ConnectionID  string     `json:"connection_id"`
	Provider      Provider   `json:"provider"`
	Status        SyncStatus `json:"status"`
	StartedAt     time.Time  `json:"started_at"`
	FinishedAt    *time.Time `json:"finished_at,omitempty"`
	DurationMs    int64      `json:"duration_ms"`
	Counts        SyncCounts `json:"counts"`
	ErrorCategory string     `json:"error_category,omitempty"`
	ErrorMessage  string     `json:"error_message,omitempty"`
}
