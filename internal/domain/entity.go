package domain

import (
	"bytes"
	"encoding/json"
	"sort"
)

type EntityType string

const (
	EntityTypeCampaign EntityType = "campaign"
	EntityTypeAdGroup  EntityType = "adgroup"
	EntityTypeAd       EntityType = "ad"
)

func (t EntityType) Valid() bool {
	switch t {
	case EntityTypeCampaign, EntityTypeAdGroup, EntityTypeAd:
		return true
	}
	return false
}

// Metadata guarda os campos do provedor que não são rastreados, incluindo o
// resumo de insights.
type Metadata map[string]any

// Equal compara pela forma serializada, que é como o valor vai para o banco.
func (m Metadata) Equal(other Metadata) bool {
	if len(m) == 0 && len(other) == 0 {
		return true
	}
	return sameJSON(m, other)
}

// FieldSet é o conjunto de campos rastreados de uma entidade.
type FieldSet map[string]any

type FieldChange struct {
	Old any `json:"old"`
	New any `json:"new"`
}

// DiffFields devolve os campos cujo valor mudou entre before e after.
// Um before nil significa entidade nova: todos os campos de after entram.
func DiffFields(before, after FieldSet) map[string]FieldChange {
	changes := make(map[string]FieldChange)

	for _, key := range sortedKeys(after) {
		newValue := after[key]
		if before == nil {
			changes[key] = FieldChange{Old: nil, New: newValue}
			continue
		}

		oldValue, ok := before[key]
		if !ok || !sameJSON(oldValue, newValue) {
			changes[key] = FieldChange{Old: oldValue, New: newValue}
		}
	}

	return changes
}

func sortedKeys(fields FieldSet) []string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sameJSON(a, b any) bool {
	left, errA := json.Marshal(a)
	right, errB := json.Marshal(b)
	if errA != nil || errB != nil {
		return false
	}
	return bytes.Equal(left, right)
}
