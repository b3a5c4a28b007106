package reconciling

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/vfg2006/adsync-api/internal/domain"
)

var errWriteRefused = errors.New("write refused")

// memoryStore implementa os repositórios usados pela reconciliação em memória.
type memoryStore struct {
	mu        sync.Mutex
	accounts  map[string]*domain.AdAccount
	campaigns map[string]*domain.Campaign
	adGroups  map[string]*domain.AdGroup
	ads       map[string]*domain.Ad
	changes   []*domain.ChangeRecord
	points    []domain.InsightPoint
	writes    int
	failOn    map[string]bool
	seq       int
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		accounts:  make(map[string]*domain.AdAccount),
		campaigns: make(map[string]*domain.Campaign),
		adGroups:  make(map[string]*domain.AdGroup),
		ads:       make(map[string]*domain.Ad),
		failOn:    make(map[string]bool),
	}
}

func storeKey(tenantID, externalID string) string {
	return tenantID + "|" + externalID
}

func (s *memoryStore) nextID(prefix string) string {
	s.seq++
	return fmt.Sprintf("%s-%d", prefix, s.seq)
}

func (s *memoryStore) GetAdAccountByExternalID(_ context.Context, tenantID, externalID string) (*domain.AdAccount, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.accounts[storeKey(tenantID, externalID)]
	if !ok {
		return nil, nil
	}
	out := *a
	return &out, nil
}

func (s *memoryStore) SaveAdAccount(_ context.Context, account *domain.AdAccount) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failOn[account.ExternalID] {
		return errWriteRefused
	}
	if account.ID == "" {
		account.ID = s.nextID("acc")
	}
	stored := *account
	s.accounts[storeKey(account.TenantID, account.ExternalID)] = &stored
	s.writes++
	return nil
}

func (s *memoryStore) ListCampaignsByExternalIDs(_ context.Context, tenantID string, externalIDs []string) (map[string]*domain.Campaign, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[string]*domain.Campaign)
	for _, ext := range externalIDs {
		if c, ok := s.campaigns[storeKey(tenantID, ext)]; ok {
			cp := *c
			out[ext] = &cp
		}
	}
	return out, nil
}

func (s *memoryStore) SaveCampaign(_ context.Context, campaign *domain.Campaign, change *domain.ChangeRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failOn[campaign.ExternalID] {
		return errWriteRefused
	}
	if campaign.ID == "" {
		campaign.ID = s.nextID("cmp")
	}
	stored := *campaign
	s.campaigns[storeKey(campaign.TenantID, campaign.ExternalID)] = &stored
	s.appendChange(campaign.ID, change)
	s.writes++
	return nil
}

func (s *memoryStore) ListAdGroupsByExternalIDs(_ context.Context, tenantID string, externalIDs []string) (map[string]*domain.AdGroup, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[string]*domain.AdGroup)
	for _, ext := range externalIDs {
		if g, ok := s.adGroups[storeKey(tenantID, ext)]; ok {
			cp := *g
			out[ext] = &cp
		}
	}
	return out, nil
}

func (s *memoryStore) SaveAdGroup(_ context.Context, adGroup *domain.AdGroup, change *domain.ChangeRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failOn[adGroup.ExternalID] {
		return errWriteRefused
	}
	if adGroup.ID == "" {
		adGroup.ID = s.nextID("grp")
	}
	stored := *adGroup
	s.adGroups[storeKey(adGroup.TenantID, adGroup.ExternalID)] = &stored
	s.appendChange(adGroup.ID, change)
	s.writes++
	return nil
}

func (s *memoryStore) ListAdsByExternalIDs(_ context.Context, tenantID string, externalIDs []string) (map[string]*domain.Ad, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[string]*domain.Ad)
	for _, ext := range externalIDs {
		if a, ok := s.ads[storeKey(tenantID, ext)]; ok {
			cp := *a
			out[ext] = &cp
		}
	}
	return out, nil
}

func (s *memoryStore) SaveAd(_ context.Context, ad *domain.Ad, change *domain.ChangeRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failOn[ad.ExternalID] {
		return errWriteRefused
	}
	if ad.ID == "" {
		ad.ID = s.nextID("ad")
	}
	stored := *ad
	s.ads[storeKey(ad.TenantID, ad.ExternalID)] = &stored
	s.appendChange(ad.ID, change)
	s.writes++
	return nil
}

func (s *memoryStore) appendChange(entityID string, change *domain.ChangeRecord) {
	if change == nil {
		return
	}
	change.EntityID = entityID
	s.changes = append(s.changes, change)
}

func (s *memoryStore) UpsertPoints(_ context.Context, _ string, points []domain.InsightPoint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.points = append(s.points, points...)
	return nil
}

func (s *memoryStore) ListSeries(_ context.Context, tenantID string, entityType domain.EntityType, entityID string, start, end time.Time) ([]domain.InsightPoint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []domain.InsightPoint
	for _, p := range s.points {
		if p.TenantID == tenantID && p.EntityType == entityType && p.EntityID == entityID && !p.Date.Before(start) && p.Date.Before(end) {
			out = append(out, p)
		}
	}
	return out, nil
}
