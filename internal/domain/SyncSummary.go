package domain

import "time"

type AccountOutcome string

const (
	AccountOutcomeOK              AccountOutcome = "ok"
	AccountOutcomeDegraded        AccountOutcome = "degraded"
	AccountOutcomeAuthExpired     AccountOutcome = "authExpired"
	AccountOutcomeRejected        AccountOutcome = "rejected"
	AccountOutcomeUnavailable     AccountOutcome = "unavailable"
	AccountOutcomeCredentialError AccountOutcome = "credentialError"
)

// Succeeded considera degraded como sucesso parcial: a conta foi processada,
// mas alguma entidade ficou para trás.
func (o AccountOutcome) Succeeded() bool {
	return o == AccountOutcomeOK || o == AccountOutcomeDegraded
}

type AccountResult struct {
	ConnectionID      string         `json:"connection_id"`
	Provider          Provider       `json:"provider"`
	ExternalAccountID string         `json:"external_account_id,omitempty"`
	Outcome           AccountOutcome `json:"outcome"`
	Message           string         `json:"message,omitempty"`
	Counts            SyncCounts     `json:"counts"`
	Errors            []string       `json:"errors,omitempty"`
}

type ConnectionRunStatus string

const (
	ConnectionRunCompleted      ConnectionRunStatus = "completed"
	ConnectionRunSyncInProgress ConnectionRunStatus = "sync_in_progress"
	ConnectionRunFailed         ConnectionRunStatus = "failed"
)

type ConnectionResult struct {
	ConnectionID  string              `json:"connection_id"`
	Provider      Provider            `json:"provider"`
	Status        ConnectionRunStatus `json:"status"`
	SyncHistoryID string              `json:"sync_history_id,omitempty"`
	HistoryStatus SyncStatus          `json:"history_status,omitempty"`
	Message       string              `json:"message,omitempty"`
}

type SyncStats struct {
	Connections int   `json:"connections"`
	Accounts    int   `json:"accounts"`
	Succeeded   int   `json:"succeeded"`
	Degraded    int   `json:"degraded"`
	Failed      int   `json:"failed"`
	Campaigns   int   `json:"campaigns"`
	AdGroups    int   `json:"ad_groups"`
	Ads         int   `json:"ads"`
	Changes     int   `json:"changes"`
	Skipped     int   `json:"skipped"`
	DurationMs  int64 `json:"duration_ms"`
}

type SyncSummary struct {
	TenantID    string             `json:"tenant_id"`
	Results     []AccountResult    `json:"results"`
	Connections []ConnectionResult `json:"connections"`
	Stats       SyncStats          `json:"stats"`
	StartedAt   time.Time          `json:"started_at"`
	FinishedAt  time.Time          `json:"finished_at"`
}

// SkippedEntity é uma entidade que a reconciliação não gravou.
type SkippedEntity struct {
	EntityType EntityType `json:"entity_type"`
	ExternalID string     `json:"external_id"`
	Reason     string     `json:"reason"`
}

type ReconcileResult struct {
	AdAccountID string
	Campaigns   int
	AdGroups    int
	Ads         int
	Unchanged   int
	Changes     []*ChangeRecord
	Skipped     []SkippedEntity
	Errors      []error
}

func (r *ReconcileResult) Degraded() bool {
	return len(r.Errors) > 0
}

func (r *ReconcileResult) Counts() SyncCounts {
	return SyncCounts{
		Campaigns: r.Campaigns,
		AdGroups:  r.AdGroups,
		Ads:       r.Ads,
		Changes:   len(r.Changes),
		Skipped:   len(r.Skipped),
	}
}

// Lease é a trava de sincronização de uma Connection.
type Lease struct {
	Key        string    `json:"key"`
	Holder     string    `json:"holder"`
	AcquiredAt time.Time `json:"acquired_at"`
	ExpiresAt  time.Time `json:"expires_at"`
}
