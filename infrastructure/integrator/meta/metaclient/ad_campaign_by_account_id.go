package metaclient

import (
	"context"
	"net/url"

	metadomain "github.com/vfg2006/adsync-api/infrastructure/integrator/meta/domain"
	"github.com/vfg2006/adsync-api/internal/domain"
)

const campaignFields = "id,name,status,effective_status,objective,daily_budget,lifetime_budget,bid_strategy,buying_type,created_time,updated_time"

func (c *MetaClient) GetCampaignsByAccountID(ctx context.Context, cred domain.Credential, accountID string) ([]metadomain.Campaign, error) {
	params := url.Values{}
	params.Add("fields", campaignFields)
	params.Add("limit", c.pageSize())

	return getAllPages[metadomain.Campaign](ctx, c, cred, "campaigns", c.accountURL(accountID, "campaigns", params))
}
