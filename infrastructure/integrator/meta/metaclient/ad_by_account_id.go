package metaclient

import (
	"context"
	"net/url"

	metadomain "github.com/vfg2006/adsync-api/infrastructure/integrator/meta/domain"
	"github.com/vfg2006/adsync-api/internal/domain"
)

// O criativo vem aninhado para evitar uma chamada por anúncio.
const adFields = "id,name,status,effective_status,adset_id,campaign_id,updated_time," +
	"creative{id,name,title,body,image_url,image_hash,video_id,thumbnail_url,call_to_action_type,object_story_spec,asset_feed_spec}"

func (c *MetaClient) GetAdsByAccountID(ctx context.Context, cred domain.Credential, accountID string) ([]metadomain.Ad, error) {
	params := url.Values{}
	params.Add("fields", adFields)
	params.Add("limit", c.pageSize())

	return getAllPages[metadomain.Ad](ctx, c, cred, "ads", c.accountURL(accountID, "ads", params))
}
