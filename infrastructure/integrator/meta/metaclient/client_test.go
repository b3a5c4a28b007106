package metaclient

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vfg2006/adsync-api/internal/config"
	"github.com/vfg2006/adsync-api/internal/domain"
	"github.com/vfg2006/adsync-api/pkg/retry"
)

func newTestClient(t *testing.T, handler func(srvURL string) http.HandlerFunc) (*MetaClient, *httptest.Server) {
	t.Helper()

	var srvURL string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handler(srvURL)(w, r)
	}))
	srvURL = srv.URL
	t.Cleanup(srv.Close)

	cfg := &config.Config{
		Meta: config.Meta{
			URL:      srv.URL + "/v22.0",
			PageSize: 2,
			MaxPages: 10,
			Timeout:  5 * time.Second,
		},
	}

	client := newMetaClient(cfg, WithRetryPolicy(retry.Policy{
		MaxRetries: 2,
		BaseDelay:  time.Millisecond,
		MaxDelay:   5 * time.Millisecond,
	}))

	return client, srv
}

var validCred = domain.Credential{AccessToken: "token-123"}

func TestMetaClient_GetCampaigns_FollowsPagination(t *testing.T) {
	var calls int32
	client, _ := newTestClient(t, func(srvURL string) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt32(&calls, 1)

			assert.Equal(t, "Bearer token-123", r.Header.Get("Authorization"))
			assert.Empty(t, r.URL.Query().Get("access_token"))
			assert.Equal(t, "/v22.0/act_42/campaigns", r.URL.Path)

			if r.URL.Query().Get("after") == "" {
				fmt.Fprintf(w, `{"data":[{"id":"1","name":"A","status":"ACTIVE"},{"id":"2","name":"B","status":"PAUSED"}],
					"paging":{"cursors":{"after":"c1"},"next":"%s/v22.0/act_42/campaigns?after=c1"}}`, srvURL)
				return
			}
			fmt.Fprint(w, `{"data":[{"id":"3","name":"C","status":"ACTIVE","daily_budget":"5000"}],"paging":{"cursors":{}}}`)
		}
	})

	campaigns, err := client.GetCampaignsByAccountID(context.Background(), validCred, "act_42")

	require.NoError(t, err)
	require.Len(t, campaigns, 3)
	assert.Equal(t, "3", campaigns[2].ID)
	assert.Equal(t, "5000", campaigns[2].DailyBudget)
	assert.EqualValues(t, 2, atomic.LoadInt32(&calls))
}

func TestMetaClient_ErrorClassification(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		body      string
		header    map[string]string
		wantErr   error
		wantCalls int32
	}{
		{
			name:      "token expirado não tenta de novo",
			status:    http.StatusBadRequest,
			body:      `{"error":{"message":"Error validating access token","type":"OAuthException","code":190,"error_subcode":463}}`,
			wantErr:   domain.ErrProviderAuthExpired,
			wantCalls: 1,
		},
		{
			name:      "requisição inválida não tenta de novo",
			status:    http.StatusBadRequest,
			body:      `{"error":{"message":"Invalid parameter","type":"OAuthException","code":100}}`,
			wantErr:   domain.ErrProviderRejected,
			wantCalls: 1,
		},
		{
			name:      "erro 5xx esgota as tentativas",
			status:    http.StatusServiceUnavailable,
			body:      `temporarily unavailable`,
			wantErr:   domain.ErrProviderUnavailable,
			wantCalls: 3,
		},
		{
			name:      "rate limit persistente vira indisponível",
			status:    http.StatusBadRequest,
			body:      `{"error":{"message":"User request limit reached","type":"OAuthException","code":17}}`,
			header:    map[string]string{"Retry-After": "1"},
			wantErr:   domain.ErrProviderUnavailable,
			wantCalls: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls int32
			client, _ := newTestClient(t, func(string) http.HandlerFunc {
				return func(w http.ResponseWriter, r *http.Request) {
					atomic.AddInt32(&calls, 1)
					for k, v := range tt.header {
						w.Header().Set(k, v)
					}
					w.WriteHeader(tt.status)
					fmt.Fprint(w, tt.body)
				}
			})

			_, err := client.GetAdSetsByAccountID(context.Background(), validCred, "42")

			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)

			var perr *domain.ProviderError
			assert.True(t, errors.As(err, &perr))
			assert.Equal(t, tt.wantCalls, atomic.LoadInt32(&calls))
		})
	}
}

func TestMetaClient_RateLimitRecovers(t *testing.T) {
	var calls int32
	client, _ := newTestClient(t, func(string) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if atomic.AddInt32(&calls, 1) == 1 {
				w.Header().Set("Retry-After", "1")
				w.WriteHeader(http.StatusTooManyRequests)
				return
			}
			fmt.Fprint(w, `{"id":"act_42","account_id":"42","name":"Loja","currency":"BRL","account_status":1}`)
		}
	})

	account, err := client.GetAdAccount(context.Background(), validCred, "42")

	require.NoError(t, err)
	assert.Equal(t, "Loja", account.Name)
	assert.True(t, account.IsActive())
	assert.EqualValues(t, 2, atomic.LoadInt32(&calls))
}

func TestMetaClient_ExpiredCredentialSkipsRequest(t *testing.T) {
	var calls int32
	client, _ := newTestClient(t, func(string) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt32(&calls, 1)
		}
	})

	cred := domain.Credential{AccessToken: "tok", ExpiresAt: time.Now().Add(-time.Hour)}
	_, err := client.GetAdsByAccountID(context.Background(), cred, "42")

	assert.ErrorIs(t, err, domain.ErrProviderAuthExpired)
	assert.Zero(t, atomic.LoadInt32(&calls))
}

func TestMetaClient_RejectsForeignPaginationHost(t *testing.T) {
	client, _ := newTestClient(t, func(string) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"data":[{"id":"1"}],"paging":{"next":"https://evil.example.com/next"}}`)
		}
	})

	_, err := client.GetAdsByAccountID(context.Background(), validCred, "42")

	assert.ErrorIs(t, err, domain.ErrProviderRejected)
}

func TestMetaClient_GetAdInsights(t *testing.T) {
	client, _ := newTestClient(t, func(string) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			q := r.URL.Query()
			assert.Equal(t, "ad", q.Get("level"))
			assert.Equal(t, "1", q.Get("time_increment"))
			assert.Equal(t, `{"since":"2024-03-01","until":"2024-03-07"}`, q.Get("time_range"))
			fmt.Fprint(w, `{"data":[{"ad_id":"9","adset_id":"8","campaign_id":"7","impressions":"100","clicks":"5","spend":"12.50",
				"objective":"OUTCOME_LEADS","actions":[{"action_type":"lead","value":"2"}],"date_start":"2024-03-01","date_stop":"2024-03-01"}]}`)
		}
	})

	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 3, 7, 0, 0, 0, 0, time.UTC)
	rows, err := client.GetAdInsightsByAccountID(context.Background(), validCred, "42", &domain.InsightFilters{StartDate: &start, EndDate: &end})

	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 2.0, rows[0].GetResult())
}

func TestClassifyResponse_RetryAfter(t *testing.T) {
	header := http.Header{}
	header.Set("Retry-After", "7")

	perr := classifyResponse(http.StatusTooManyRequests, header, []byte(`{}`))

	assert.ErrorIs(t, perr, domain.ErrProviderRateLimited)
	assert.Equal(t, 7*time.Second, perr.RetryAfter)
}
