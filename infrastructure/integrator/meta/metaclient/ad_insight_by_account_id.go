package metaclient

import (
	"context"
	"fmt"
	"net/url"
	"time"

	metadomain "github.com/vfg2006/adsync-api/infrastructure/integrator/meta/domain"
	"github.com/vfg2006/adsync-api/internal/domain"
)

const adInsightFields = "account_id,campaign_id,adset_id,ad_id,objective,impressions,clicks,spend,actions,date_start,date_stop"

// GetAdInsightsByAccountID busca os insights diários no nível de anúncio.
func (c *MetaClient) GetAdInsightsByAccountID(ctx context.Context, cred domain.Credential, accountID string, filters *domain.InsightFilters) ([]metadomain.AdInsight, error) {
	if filters == nil || filters.StartDate == nil || filters.EndDate == nil {
		return nil, domain.NewProviderError(domain.ErrProviderRejected, 0, "insight filters require start and end dates")
	}

	timeRange := fmt.Sprintf("{\"since\":\"%s\",\"until\":\"%s\"}", filters.StartDate.Format(time.DateOnly), filters.EndDate.Format(time.DateOnly))

	params := url.Values{}
	params.Add("fields", adInsightFields)
	params.Add("level", "ad")
	params.Add("time_increment", "1")
	params.Add("time_range", timeRange)
	params.Add("limit", c.pageSize())

	return getAllPages[metadomain.AdInsight](ctx, c, cred, "insights", c.accountURL(accountID, "insights", params))
}
