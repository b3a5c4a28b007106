package domain

import (
	"sort"
	"time"
)

type ChangeType string

const (
	ChangeTypeCreated      ChangeType = "created"
	ChangeTypeUpdated      ChangeType = "updated"
	ChangeTypeCompensation ChangeType = "compensation"
)

// ChangeRecord é imutável depois de gravado. Correções entram como um novo
// registro do tipo compensation.
type ChangeRecord struct {
	ID            string                 `json:"id"`
	TenantID      string                 `json:"tenant_id"`
	EntityType    EntityType             `json:"entity_type"`
	EntityID      string                 `json:"entity_id"`
	ExternalID    string                 `json:"external_id"`
	ChangeType    ChangeType             `json:"change_type"`
	ChangedAt     time.Time              `json:"changed_at"`
	Fields        map[string]FieldChange `json:"fields"`
	Before        FieldSet               `json:"before,omitempty"`
	After         FieldSet               `json:"after,omitempty"`
	SyncHistoryID string                 `json:"sync_history_id,omitempty"`
	Reason        string                 `json:"reason,omitempty"`
	CreatedAt     time.Time              `json:"created_at"`
}

// ClampTo garante que o registro não fique antes do último registro da mesma
// entidade. Retorna true quando o horário precisou ser ajustado.
func (r *ChangeRecord) ClampTo(last time.Time) bool {
	if last.IsZero() || !r.ChangedAt.Before(last) {
		return false
	}
	r.ChangedAt = last
	return true
}

func (r *ChangeRecord) ChangedFields() []string {
	fields := make([]string, 0, len(r.Fields))
	for name := range r.Fields {
		fields = append(fields, name)
	}
	sort.Strings(fields)
	return fields
}
