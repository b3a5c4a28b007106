package metaclient

import (
	"context"
	"net/http"
	"time"

	metadomain "github.com/vfg2006/adsync-api/infrastructure/integrator/meta/domain"
	"github.com/vfg2006/adsync-api/internal/config"
	"github.com/vfg2006/adsync-api/internal/domain"
	"github.com/vfg2006/adsync-api/pkg/retry"
	"golang.org/x/time/rate"
)

type Client interface {
	GetAdAccount(ctx context.Context, cred domain.Credential, accountID string) (*metadomain.AdAccount, error)
	GetCampaignsByAccountID(ctx context.Context, cred domain.Credential, accountID string) ([]metadomain.Campaign, error)
	GetAdSetsByAccountID(ctx context.Context, cred domain.Credential, accountID string) ([]metadomain.AdSet, error)
	GetAdsByAccountID(ctx context.Context, cred domain.Credential, accountID string) ([]metadomain.Ad, error)
	GetAdInsightsByAccountID(ctx context.Context, cred domain.Credential, accountID string, filters *domain.InsightFilters) ([]metadomain.AdInsight, error)
}

type MetaClient struct {
	Cfg       *config.Config
	limiter   *rate.Limiter
	policy    retry.Policy
	transport http.RoundTripper
	now       func() time.Time
}

type Option func(*MetaClient)

// WithTransport troca o transporte HTTP base (útil em testes).
func WithTransport(rt http.RoundTripper) Option {
	return func(c *MetaClient) {
		c.transport = rt
	}
}

func WithRetryPolicy(p retry.Policy) Option {
	return func(c *MetaClient) {
		c.policy = p
	}
}

func WithLimiter(l *rate.Limiter) Option {
	return func(c *MetaClient) {
		c.limiter = l
	}
}

func NewClient(cfg *config.Config, opts ...Option) Client {
	return newMetaClient(cfg, opts...)
}

func newMetaClient(cfg *config.Config, opts ...Option) *MetaClient {
	rps := cfg.Meta.RequestsPerSecond
	burst := cfg.Meta.RequestBurst
	if burst < 1 {
		burst = 1
	}

	limit := rate.Inf
	if rps > 0 {
		limit = rate.Limit(rps)
	}

	client := &MetaClient{
		Cfg:       cfg,
		limiter:   rate.NewLimiter(limit, burst),
		transport: http.DefaultTransport,
		now:       time.Now,
		policy: retry.Policy{
			MaxRetries: cfg.ProviderSync.MaxRetries,
			BaseDelay:  cfg.ProviderSync.RetryBaseDelay,
			MaxDelay:   cfg.ProviderSync.RetryMaxDelay,
			Jitter:     true,
		},
	}

	for _, opt := range opts {
		opt(client)
	}

	client.policy.Classify = retryDecision

	return client
}
