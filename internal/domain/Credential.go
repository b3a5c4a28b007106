package domain

import (
	"encoding/json"
	"time"
)

// RawCredential é o material bruto de uma Connection, como está no banco.
type RawCredential struct {
	Payload           json.RawMessage
	PayloadUpdatedAt  time.Time
	Metadata          json.RawMessage
	MetadataUpdatedAt time.Time
	// Unreadable vem preenchido quando o payload guardado não pôde ser aberto.
	Unreadable error
}

type CredentialSource string

const (
	CredentialSourcePayload  CredentialSource = "credentials"
	CredentialSourceMetadata CredentialSource = "metadata"
)

// Credential é a forma normalizada usada nas chamadas ao provedor.
type Credential struct {
	AccessToken        string
	ExpiresAt          time.Time
	SelectedAccountIDs []string
	TokenSource        CredentialSource
	DroppedSelections  int
}

// IsExpired só é verdadeiro quando a expiração é conhecida e já passou.
func (c Credential) IsExpired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && !now.Before(c.ExpiresAt)
}
