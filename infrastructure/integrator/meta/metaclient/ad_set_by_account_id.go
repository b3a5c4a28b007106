package metaclient

import (
	"context"
	"net/url"

	metadomain "github.com/vfg2006/adsync-api/infrastructure/integrator/meta/domain"
	"github.com/vfg2006/adsync-api/internal/domain"
)

const adSetFields = "id,name,status,effective_status,campaign_id,daily_budget,lifetime_budget,bid_amount,bid_strategy,optimization_goal,billing_event,start_time,end_time,updated_time"

func (c *MetaClient) GetAdSetsByAccountID(ctx context.Context, cred domain.Credential, accountID string) ([]metadomain.AdSet, error) {
	params := url.Values{}
	params.Add("fields", adSetFields)
	params.Add("limit", c.pageSize())

	return getAllPages[metadomain.AdSet](ctx, c, cred, "adsets", c.accountURL(accountID, "adsets", params))
}
