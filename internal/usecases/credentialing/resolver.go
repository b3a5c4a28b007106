package credentialing

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/vfg2006/adsync-api/internal/domain"
)

// Resolver transforma o material bruto de uma Connection em uma credencial
// utilizável. Não faz I/O.
type Resolver interface {
	Resolve(raw domain.RawCredential) (*domain.Credential, error)
}

type resolver struct{}

func NewResolver() Resolver {
	return resolver{}
}

func (resolver) Resolve(raw domain.RawCredential) (*domain.Credential, error) {
	return Resolve(raw)
}

var (
	tokenFields       = []string{"access_token", "accessToken", "token"}
	expiryFields      = []string{"expires_at", "token_expires_at", "expiresAt"}
	selectionFields   = []string{"selected_accounts", "selectedAccounts", "accounts"}
	selectionIDFields = []string{"selected_account_ids", "selectedAccountIds"}
	updatedAtFields   = []string{"updated_at", "updatedAt"}
)

const metaAccountPrefix = "act_"

// Resolve aplica as regras de normalização:
//   - o token vem do bag atualizado mais recentemente (empate: credentials);
//   - a lista de contas vem do primeiro bag, na mesma ordem, que tenha algum
//     campo de seleção preenchido;
//   - a lista sai ordenada pela primeira ocorrência, sem duplicatas.
func Resolve(raw domain.RawCredential) (*domain.Credential, error) {
	if raw.Unreadable != nil {
		return nil, domain.NewCredentialError(domain.ErrCredentialMalformed, string(domain.CredentialSourcePayload), raw.Unreadable.Error())
	}

	payload, err := decodeBag(raw.Payload, domain.CredentialSourcePayload, raw.PayloadUpdatedAt)
	if err != nil {
		return nil, err
	}

	metadata, err := decodeBag(raw.Metadata, domain.CredentialSourceMetadata, raw.MetadataUpdatedAt)
	if err != nil {
		return nil, err
	}

	ordered := []*legacyBag{payload, metadata}
	if metadata.updatedAt.After(payload.updatedAt) {
		ordered = []*legacyBag{metadata, payload}
	}

	cred := &domain.Credential{}
	for _, bag := range ordered {
		if bag.token == "" {
			continue
		}
		cred.AccessToken = bag.token
		cred.ExpiresAt = bag.expiresAt
		cred.TokenSource = bag.source
		break
	}

	if cred.AccessToken == "" {
		return nil, domain.NewCredentialError(domain.ErrCredentialMissing, "access_token", "no token in credentials or metadata")
	}

	for _, bag := range ordered {
		if bag.selection.kind == selectionAbsent {
			continue
		}
		if bag.selection.err != nil {
			return nil, bag.selection.err
		}
		cred.SelectedAccountIDs = bag.selection.ids
		cred.DroppedSelections = bag.selection.dropped
		break
	}

	if cred.SelectedAccountIDs == nil {
		cred.SelectedAccountIDs = []string{}
	}

	return cred, nil
}

type selectionKind int

const (
	selectionAbsent selectionKind = iota
	selectionIDStrings
	selectionIDObjects
	selectionIDArray
	selectionMixed
)

// legacySelection é a lista de contas já classificada em uma das formas
// conhecidas. err é preenchido quando o campo existe mas não é uma lista.
type legacySelection struct {
	kind    selectionKind
	ids     []string
	dropped int
	err     error
}

type legacyBag struct {
	source    domain.CredentialSource
	updatedAt time.Time
	token     string
	expiresAt time.Time
	selection legacySelection
}

func decodeBag(raw json.RawMessage, source domain.CredentialSource, columnUpdatedAt time.Time) (*legacyBag, error) {
	bag := &legacyBag{source: source, updatedAt: columnUpdatedAt}

	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return bag, nil
	}

	fields := map[string]json.RawMessage{}
	if err := json.Unmarshal(trimmed, &fields); err != nil {
		return nil, domain.NewCredentialError(domain.ErrCredentialMalformed, string(source), "not a JSON object")
	}

	if ts, ok := firstTime(fields, updatedAtFields); ok {
		bag.updatedAt = ts
	}

	bag.token = firstString(fields, tokenFields)
	if ts, ok := firstTime(fields, expiryFields); ok {
		bag.expiresAt = ts
	}

	bag.selection = decodeSelection(fields, source)

	return bag, nil
}

func decodeSelection(fields map[string]json.RawMessage, source domain.CredentialSource) legacySelection {
	sel := legacySelection{kind: selectionAbsent}
	seen := map[string]struct{}{}

	add := func(id string) {
		id = normalizeAccountID(id)
		if id == "" {
			return
		}
		if _, ok := seen[id]; ok {
			return
		}
		seen[id] = struct{}{}
		sel.ids = append(sel.ids, id)
	}

	for _, name := range selectionFields {
		entries, present, err := listField(fields, name, source)
		if err != nil {
			return legacySelection{kind: selectionMixed, err: err}
		}
		if !present {
			continue
		}

		var strs, objs int
		for _, entry := range entries {
			if id, ok := scalarID(entry); ok {
				strs++
				add(id)
				continue
			}
			if id, ok := objectID(entry); ok {
				objs++
				add(id)
				continue
			}
			sel.dropped++
		}

		sel.kind = mergeKind(sel.kind, classify(strs, objs))
		break
	}

	for _, name := range selectionIDFields {
		entries, present, err := listField(fields, name, source)
		if err != nil {
			return legacySelection{kind: selectionMixed, err: err}
		}
		if !present {
			continue
		}

		for _, entry := range entries {
			if id, ok := scalarID(entry); ok {
				add(id)
				continue
			}
			sel.dropped++
		}

		sel.kind = mergeKind(sel.kind, selectionIDArray)
		break
	}

	if sel.kind != selectionAbsent && sel.ids == nil {
		sel.ids = []string{}
	}

	return sel
}

func classify(strs, objs int) selectionKind {
	switch {
	case objs == 0:
		return selectionIDStrings
	case strs == 0:
		return selectionIDObjects
	default:
		return selectionMixed
	}
}

func mergeKind(current, next selectionKind) selectionKind {
	if current == selectionAbsent {
		return next
	}
	if current == next {
		return current
	}
	return selectionMixed
}

// listField devolve as entradas do campo. Campo ausente ou null não é erro.
func listField(fields map[string]json.RawMessage, name string, source domain.CredentialSource) ([]json.RawMessage, bool, error) {
	raw, ok := fields[name]
	if !ok {
		return nil, false, nil
	}

	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, false, nil
	}

	if trimmed[0] != '[' {
		return nil, true, domain.NewCredentialError(
			domain.ErrCredentialMalformed,
			fmt.Sprintf("%s.%s", source, name),
			"selected accounts must be a list",
		)
	}

	var entries []json.RawMessage
	if err := json.Unmarshal(trimmed, &entries); err != nil {
		return nil, true, domain.NewCredentialError(
			domain.ErrCredentialMalformed,
			fmt.Sprintf("%s.%s", source, name),
			err.Error(),
		)
	}

	return entries, true, nil
}

func scalarID(raw json.RawMessage) (string, bool) {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, true
	}

	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil && n != "" {
		return n.String(), true
	}

	return "", false
}

func objectID(raw json.RawMessage) (string, bool) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return "", false
	}

	for _, key := range []string{"id", "account_id"} {
		if v, ok := obj[key]; ok {
			if id, ok := scalarID(v); ok && strings.TrimSpace(id) != "" {
				return id, true
			}
		}
	}

	return "", false
}

func normalizeAccountID(id string) string {
	id = strings.TrimSpace(id)
	return strings.TrimPrefix(id, metaAccountPrefix)
}

func firstString(fields map[string]json.RawMessage, names []string) string {
	for _, name := range names {
		raw, ok := fields[name]
		if !ok {
			continue
		}
		var s string
		if err := json.Unmarshal(raw, &s); err == nil && strings.TrimSpace(s) != "" {
			return strings.TrimSpace(s)
		}
	}
	return ""
}

// firstTime aceita segundos unix (ou milissegundos) e strings RFC3339.
func firstTime(fields map[string]json.RawMessage, names []string) (time.Time, bool) {
	for _, name := range names {
		raw, ok := fields[name]
		if !ok {
			continue
		}

		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			if ts, err := time.Parse(time.RFC3339, s); err == nil {
				return ts, true
			}
			if n, err := strconv.ParseInt(s, 10, 64); err == nil && n > 0 {
				return unixTime(n), true
			}
			continue
		}

		var n json.Number
		if err := json.Unmarshal(raw, &n); err == nil {
			if v, err := n.Int64(); err == nil && v > 0 {
				return unixTime(v), true
			}
		}
	}
	return time.Time{}, false
}

func unixTime(v int64) time.Time {
	if v > 1e12 {
		return time.UnixMilli(v).UTC()
	}
	return time.Unix(v, 0).UTC()
}
