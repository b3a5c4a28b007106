package reconciling

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vfg2006/adsync-api/internal/domain"
)

var runAt = time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

func newEngine(store *memoryStore) *Service {
	return NewEngine(store, store, store, store, store)
}

func testRun() Run {
	return Run{TenantID: "tenant-1", ConnectionID: "conn-1", SyncHistoryID: "hist-1", RunAt: runAt}
}

func testGraph() *domain.RawAccountGraph {
	budget := int64(5000)
	return &domain.RawAccountGraph{
		Account: domain.RawAdAccount{ExternalID: "act_1", Name: "Conta", Currency: "BRL", Status: domain.AdAccountStatusActive},
		Campaigns: []domain.RawCampaign{
			{ExternalID: "c2", Name: "Campanha 2", Status: "ACTIVE", Objective: "OUTCOME_SALES"},
			{ExternalID: "c1", Name: "Campanha 1", Status: "ACTIVE", Objective: "OUTCOME_TRAFFIC", DailyBudget: &budget},
		},
		AdGroups: []domain.RawAdGroup{
			{ExternalID: "g2", CampaignExternalID: "c2", Name: "Conjunto 2", Status: "ACTIVE"},
			{ExternalID: "g1", CampaignExternalID: "c1", Name: "Conjunto 1", Status: "ACTIVE", OptimizationGoal: "LINK_CLICKS"},
		},
		Ads: []domain.RawAd{
			{ExternalID: "a2", AdGroupExternalID: "g2", Name: "Anúncio 2", Status: "ACTIVE"},
			{ExternalID: "a1", AdGroupExternalID: "g1", Name: "Anúncio 1", Status: "ACTIVE", Creative: &domain.Creative{
				Kind:  domain.CreativeKindImage,
				Image: &domain.CreativeImage{URL: "https://cdn.example.com/a1.jpg"},
			}},
		},
		Insights: []domain.InsightPoint{
			{EntityType: domain.EntityTypeAd, EntityExternalID: "a1", Date: runAt.AddDate(0, 0, -1), Impressions: 100, Clicks: 4, Spend: 12.5},
			{EntityType: domain.EntityTypeAd, EntityExternalID: "unknown", Date: runAt.AddDate(0, 0, -1), Impressions: 7},
		},
	}
}

func externalIDs(changes []*domain.ChangeRecord) []string {
	ids := make([]string, 0, len(changes))
	for _, c := range changes {
		ids = append(ids, c.ExternalID)
	}
	return ids
}

func TestReconcile_CriaEntidadesComUmRegistroPorEntidade(t *testing.T) {
	store := newMemoryStore()
	engine := newEngine(store)

	result, err := engine.Reconcile(context.Background(), testRun(), testGraph())
	require.NoError(t, err)

	assert.NotEmpty(t, result.AdAccountID)
	assert.Equal(t, 2, result.Campaigns)
	assert.Equal(t, 2, result.AdGroups)
	assert.Equal(t, 2, result.Ads)
	assert.False(t, result.Degraded())
	assert.Equal(t, []string{"c1", "c2", "g1", "g2", "a1", "a2"}, externalIDs(result.Changes))

	for _, change := range result.Changes {
		assert.Equal(t, domain.ChangeTypeCreated, change.ChangeType)
		assert.Equal(t, runAt, change.ChangedAt)
		assert.Equal(t, "hist-1", change.SyncHistoryID)
		assert.Equal(t, "tenant-1", change.TenantID)
		assert.NotEmpty(t, change.EntityID)
		assert.Nil(t, change.Before)
	}

	require.Len(t, store.points, 1)
	assert.Equal(t, store.ads[storeKey("tenant-1", "a1")].ID, store.points[0].EntityID)
	assert.Equal(t, "tenant-1", store.points[0].TenantID)

	group := store.adGroups[storeKey("tenant-1", "g1")]
	assert.Equal(t, store.campaigns[storeKey("tenant-1", "c1")].ID, group.CampaignID)
}

func TestReconcile_SegundaExecucaoSemMudancasNaoGravaNada(t *testing.T) {
	store := newMemoryStore()
	engine := newEngine(store)

	_, err := engine.Reconcile(context.Background(), testRun(), testGraph())
	require.NoError(t, err)
	writes := store.writes
	changes := len(store.changes)

	result, err := engine.Reconcile(context.Background(), testRun(), testGraph())
	require.NoError(t, err)

	assert.Empty(t, result.Changes)
	assert.Equal(t, 6, result.Unchanged)
	assert.Equal(t, writes, store.writes)
	assert.Len(t, store.changes, changes)
}

func TestReconcile_MudancaDeUmCampoGeraUmRegistro(t *testing.T) {
	store := newMemoryStore()
	engine := newEngine(store)

	_, err := engine.Reconcile(context.Background(), testRun(), testGraph())
	require.NoError(t, err)

	graph := testGraph()
	graph.Campaigns[1].Status = "PAUSED"

	run := testRun()
	run.RunAt = runAt.Add(time.Hour)

	result, err := engine.Reconcile(context.Background(), run, graph)
	require.NoError(t, err)

	require.Len(t, result.Changes, 1)
	change := result.Changes[0]
	assert.Equal(t, domain.ChangeTypeUpdated, change.ChangeType)
	assert.Equal(t, "c1", change.ExternalID)
	assert.Equal(t, run.RunAt, change.ChangedAt)
	assert.Equal(t, []string{"status"}, change.ChangedFields())
	assert.Equal(t, domain.FieldChange{Old: "ACTIVE", New: "PAUSED"}, change.Fields["status"])
	assert.Equal(t, "ACTIVE", change.Before["status"])
	assert.Equal(t, "PAUSED", change.After["status"])
	assert.Equal(t, 1, result.Campaigns)
	assert.Equal(t, 5, result.Unchanged)
}

func TestReconcile_ExternalIDRepetidoGeraUmRegistro(t *testing.T) {
	store := newMemoryStore()
	engine := newEngine(store)

	_, err := engine.Reconcile(context.Background(), testRun(), testGraph())
	require.NoError(t, err)
	writes := store.writes
	changes := len(store.changes)

	graph := testGraph()
	updated := graph.Campaigns[1]
	updated.Name = "Campanha 1 renomeada"
	updated.Status = "PAUSED"
	graph.Campaigns = append(graph.Campaigns, updated)

	run := testRun()
	run.RunAt = runAt.Add(time.Hour)

	result, err := engine.Reconcile(context.Background(), run, graph)
	require.NoError(t, err)

	require.Len(t, result.Changes, 1)
	assert.Equal(t, "c1", result.Changes[0].ExternalID)
	assert.Equal(t, []string{"name", "status"}, result.Changes[0].ChangedFields())
	assert.Equal(t, 1, result.Campaigns)
	assert.Equal(t, writes+1, store.writes)
	assert.Len(t, store.changes, changes+1)
	assert.Equal(t, "PAUSED", store.campaigns[storeKey("tenant-1", "c1")].Status)
}

func TestReconcile_ExternalIDRepetidoNaPrimeiraExecucao(t *testing.T) {
	store := newMemoryStore()
	engine := newEngine(store)

	graph := testGraph()
	graph.Campaigns = append(graph.Campaigns, graph.Campaigns[1])
	graph.Ads = append(graph.Ads, graph.Ads[0])

	result, err := engine.Reconcile(context.Background(), testRun(), graph)
	require.NoError(t, err)

	assert.False(t, result.Degraded())
	assert.Equal(t, 2, result.Campaigns)
	assert.Equal(t, 2, result.Ads)
	assert.Equal(t, []string{"c1", "c2", "g1", "g2", "a1", "a2"}, externalIDs(result.Changes))
	assert.Len(t, store.campaigns, 2)
	assert.Len(t, store.ads, 2)
}

func TestReconcile_MudancaSoNoMetadataAtualizaSemRegistro(t *testing.T) {
	store := newMemoryStore()
	engine := newEngine(store)

	_, err := engine.Reconcile(context.Background(), testRun(), testGraph())
	require.NoError(t, err)
	changes := len(store.changes)

	graph := testGraph()
	graph.Campaigns[0].Metadata = domain.Metadata{"insights": map[string]any{"impressions": 10}}

	result, err := engine.Reconcile(context.Background(), testRun(), graph)
	require.NoError(t, err)

	assert.Empty(t, result.Changes)
	assert.Equal(t, 1, result.Campaigns)
	assert.Len(t, store.changes, changes)
	assert.Equal(t, graph.Campaigns[0].Metadata, store.campaigns[storeKey("tenant-1", "c2")].Metadata)
}

func TestReconcile_PaiDeOutroTenantPulaEntidadeEFilhos(t *testing.T) {
	store := newMemoryStore()
	store.campaigns[storeKey("tenant-2", "cX")] = &domain.Campaign{ID: "cmp-other", TenantID: "tenant-2", ExternalID: "cX"}
	engine := newEngine(store)

	graph := testGraph()
	graph.AdGroups = append(graph.AdGroups, domain.RawAdGroup{ExternalID: "g9", CampaignExternalID: "cX", Name: "Intruso"})
	graph.Ads = append(graph.Ads, domain.RawAd{ExternalID: "a9", AdGroupExternalID: "g9", Name: "Filho do intruso"})

	result, err := engine.Reconcile(context.Background(), testRun(), graph)
	require.NoError(t, err)

	assert.True(t, result.Degraded())
	assert.Equal(t, 2, result.AdGroups)
	assert.Equal(t, 2, result.Ads)
	require.Len(t, result.Skipped, 2)
	assert.Equal(t, domain.SkippedEntity{EntityType: domain.EntityTypeAdGroup, ExternalID: "g9", Reason: reasonCrossTenant}, result.Skipped[0])
	assert.Equal(t, domain.SkippedEntity{EntityType: domain.EntityTypeAd, ExternalID: "a9", Reason: reasonParentSkipped}, result.Skipped[1])

	for _, e := range result.Errors {
		assert.True(t, errors.Is(e, domain.ErrCrossTenantReference))
	}
	_, written := store.adGroups[storeKey("tenant-1", "g9")]
	assert.False(t, written)
	assert.Equal(t, "cmp-other", store.campaigns[storeKey("tenant-2", "cX")].ID)
}

func TestReconcile_FalhaDeEscritaPulaFilhosESegue(t *testing.T) {
	store := newMemoryStore()
	store.failOn["c1"] = true
	engine := newEngine(store)

	result, err := engine.Reconcile(context.Background(), testRun(), testGraph())
	require.NoError(t, err)

	assert.True(t, result.Degraded())
	assert.Equal(t, []string{"c2", "g2", "a2"}, externalIDs(result.Changes))
	require.Len(t, result.Skipped, 3)
	assert.Equal(t, reasonWriteFailed, result.Skipped[0].Reason)
	assert.Equal(t, reasonParentSkipped, result.Skipped[1].Reason)
	assert.Equal(t, reasonParentSkipped, result.Skipped[2].Reason)

	for _, e := range result.Errors {
		assert.True(t, errors.Is(e, domain.ErrStoreWriteFailed))
	}
	assert.True(t, errors.Is(result.Errors[0], errWriteRefused))
	assert.Empty(t, store.points)
}

func TestReconcile_FalhaNaContaInterrompe(t *testing.T) {
	store := newMemoryStore()
	store.failOn["act_1"] = true
	engine := newEngine(store)

	result, err := engine.Reconcile(context.Background(), testRun(), testGraph())

	assert.Nil(t, result)
	assert.True(t, errors.Is(err, domain.ErrStoreWriteFailed))
	assert.Empty(t, store.campaigns)
}

func TestReconcile_ResolvePaiJaGravado(t *testing.T) {
	store := newMemoryStore()
	engine := newEngine(store)

	_, err := engine.Reconcile(context.Background(), testRun(), testGraph())
	require.NoError(t, err)

	graph := testGraph()
	graph.Campaigns = nil
	graph.AdGroups = nil
	graph.Ads = []domain.RawAd{{ExternalID: "a3", AdGroupExternalID: "g1", Name: "Anúncio 3", Status: "ACTIVE"}}

	result, err := engine.Reconcile(context.Background(), testRun(), graph)
	require.NoError(t, err)

	require.Len(t, result.Changes, 1)
	assert.Equal(t, store.adGroups[storeKey("tenant-1", "g1")].ID, store.ads[storeKey("tenant-1", "a3")].AdGroupID)
}

func TestReconcile_CreativeInvalidoEhDescartado(t *testing.T) {
	store := newMemoryStore()
	engine := newEngine(store)

	graph := testGraph()
	graph.Ads[1].Creative = &domain.Creative{Kind: domain.CreativeKindVideo}

	_, err := engine.Reconcile(context.Background(), testRun(), graph)
	require.NoError(t, err)

	assert.Nil(t, store.ads[storeKey("tenant-1", "a1")].Creative)
}
