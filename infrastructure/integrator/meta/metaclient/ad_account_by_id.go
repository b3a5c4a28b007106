package metaclient

import (
	"context"
	"net/url"

	metadomain "github.com/vfg2006/adsync-api/infrastructure/integrator/meta/domain"
	"github.com/vfg2006/adsync-api/internal/domain"
)

func (c *MetaClient) GetAdAccount(ctx context.Context, cred domain.Credential, accountID string) (*metadomain.AdAccount, error) {
	params := url.Values{}
	params.Add("fields", "id,account_id,name,currency,account_status,timezone_name")

	var account metadomain.AdAccount
	if err := c.get(ctx, cred, "account", c.accountURL(accountID, "", params), &account); err != nil {
		return nil, err
	}

	return &account, nil
}
