package syncing

import (
	"context"

	"github.com/vfg2006/adsync-api/internal/domain"
)

// ProviderAdapter busca o snapshot de uma conta de anúncios no provedor.
type ProviderAdapter interface {
	Provider() domain.Provider
	FetchAccountGraph(ctx context.Context, cred domain.Credential, externalAccountID string) (*domain.RawAccountGraph, error)
}
