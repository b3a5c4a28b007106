package domain

import (
	"time"
)

type AdAccountStatus string

const (
	AdAccountStatusActive   AdAccountStatus = "ACTIVE"
	AdAccountStatusInactive AdAccountStatus = "INACTIVE"
)

type AdAccount struct {
	ID           string          `json:"id"`
	TenantID     string          `json:"tenant_id"`
	ConnectionID string          `json:"connection_id"`
	ExternalID   string          `json:"external_id"`
	Name         string          `json:"name"`
	Currency     string          `json:"currency"`
	Status       AdAccountStatus `json:"status"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// SameAs compara apenas os campos vindos do provedor.
func (a *AdAccount) SameAs(other *AdAccount) bool {
	if a == nil || other == nil {
		return a == other
	}
	return a.Name == other.Name &&
		a.Currency == other.Currency &&
		a.Status == other.Status &&
		a.ConnectionID == other.ConnectionID
}
