package domain

import (
	"encoding/json"
	"time"
)

type Provider string

const (
	ProviderMeta Provider = "meta"
)

type ConnectionStatus string

const (
	ConnectionStatusPending      ConnectionStatus = "pending"
	ConnectionStatusActive       ConnectionStatus = "active"
	ConnectionStatusConnected    ConnectionStatus = "connected"
	ConnectionStatusFailed       ConnectionStatus = "failed"
	ConnectionStatusDisconnected ConnectionStatus = "disconnected"
)

// ActiveConnectionStatuses são os status considerados elegíveis para sincronização.
var ActiveConnectionStatuses = []ConnectionStatus{
	ConnectionStatusActive,
	ConnectionStatusConnected,
}

func (s ConnectionStatus) IsActive() bool {
	return s == ConnectionStatusActive || s == ConnectionStatusConnected
}

// Connection é o vínculo de um tenant com uma plataforma de anúncios.
// Credentials e Metadata são mantidos opacos até a resolução da credencial.
type Connection struct {
	ID                   string           `json:"id"`
	TenantID             string           `json:"tenant_id"`
	Provider             Provider         `json:"provider"`
	Status               ConnectionStatus `json:"status"`
	Credentials          json.RawMessage  `json:"-"`
	Metadata             json.RawMessage  `json:"-"`
	CredentialsUpdatedAt *time.Time       `json:"credentials_updated_at,omitempty"`
	MetadataUpdatedAt    *time.Time       `json:"metadata_updated_at,omitempty"`
	LastSyncAt           *time.Time       `json:"last_sync_at,omitempty"`
	CredentialsErr       error            `json:"-"`
	CreatedAt            time.Time        `json:"created_at"`
	UpdatedAt            time.Time        `json:"updated_at"`
}

func (c *Connection) RawCredential() RawCredential {
	raw := RawCredential{
		Payload:    c.Credentials,
		Metadata:   c.Metadata,
		Unreadable: c.CredentialsErr,
	}
	if c.CredentialsUpdatedAt != nil {
		raw.PayloadUpdatedAt = *c.CredentialsUpdatedAt
	}
	if c.MetadataUpdatedAt != nil {
		raw.MetadataUpdatedAt = *c.MetadataUpdatedAt
	}
	return raw
}
