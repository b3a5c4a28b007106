package metaclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	metadomain "github.com/vfg2006/adsync-api/infrastructure/integrator/meta/domain"
	"github.com/vfg2006/adsync-api/internal/domain"
	"github.com/vfg2006/adsync-api/pkg/metrics"
	"github.com/vfg2006/adsync-api/pkg/retry"
	"golang.org/x/oauth2"
)

const providerLabel = "meta"

// httpClientFor monta um cliente autenticado com o token da credencial.
// O token vai no header Authorization, nunca na URL.
func (c *MetaClient) httpClientFor(token *oauth2.Token) *http.Client {
	return &http.Client{
		Timeout: c.Cfg.Meta.Timeout,
		Transport: &oauth2.Transport{
			Source: oauth2.StaticTokenSource(token),
			Base:   c.transport,
		},
	}
}

func (c *MetaClient) oauthToken(cred domain.Credential) (*oauth2.Token, error) {
	token := &oauth2.Token{
		AccessToken: cred.AccessToken,
		TokenType:   "Bearer",
		Expiry:      cred.ExpiresAt,
	}

	if !token.Valid() {
		return nil, domain.NewProviderError(domain.ErrProviderAuthExpired, 0, "access token expired before request")
	}

	return token, nil
}

// get executa um GET com pacing, retry e classificação de erro.
func (c *MetaClient) get(ctx context.Context, cred domain.Credential, endpoint, rawURL string, out any) error {
	token, err := c.oauthToken(cred)
	if err != nil {
		metrics.ProviderRequests.WithLabelValues(providerLabel, endpoint, outcomeLabel(err)).Inc()
		return err
	}

	httpClient := c.httpClientFor(token)

	policy := c.policy
	policy.OnRetry = func(attempt int, delay time.Duration, err error) {
		metrics.ProviderRetries.WithLabelValues(providerLabel, endpoint).Inc()
		logrus.WithFields(logrus.Fields{
			"endpoint": endpoint,
			"attempt":  attempt,
			"delay":    delay.String(),
			"error":    err.Error(),
		}).Warn("meta: retrying request")
	}

	err = policy.Do(ctx, func(ctx context.Context) error {
		err := c.doRequest(ctx, httpClient, rawURL, out)
		metrics.ProviderRequests.WithLabelValues(providerLabel, endpoint, outcomeLabel(err)).Inc()
		return err
	})

	return finalError(err)
}

func (c *MetaClient) doRequest(ctx context.Context, httpClient *http.Client, rawURL string, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return domain.NewProviderError(domain.ErrProviderRejected, 0, fmt.Sprintf("invalid request: %v", err))
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return &domain.ProviderError{Err: domain.ErrProviderUnavailable, Details: "request failed", Cause: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return &domain.ProviderError{Err: domain.ErrProviderUnavailable, StatusCode: resp.StatusCode, Details: "reading response", Cause: err}
	}

	if resp.StatusCode == http.StatusOK {
		if err := json.Unmarshal(body, out); err != nil {
			return &domain.ProviderError{Err: domain.ErrProviderRejected, StatusCode: resp.StatusCode, Details: "invalid response body", Cause: err}
		}
		return nil
	}

	return classifyResponse(resp.StatusCode, resp.Header, body)
}

// classifyResponse traduz uma resposta de erro da Graph API para a
// taxonomia de erros do provedor.
func classifyResponse(status int, header http.Header, body []byte) *domain.ProviderError {
	var errResp metadomain.ErrorResponse
	parsed := json.Unmarshal(body, &errResp) == nil && (errResp.Error.Code != 0 || errResp.Error.Message != "")

	perr := &domain.ProviderError{StatusCode: status}
	if parsed {
		perr.Code = errResp.Error.Code
		perr.Subcode = errResp.Error.ErrorSubcode
		perr.Details = errResp.Error.Message
	} else {
		perr.Details = truncate(string(body), 256)
	}

	switch {
	case status == http.StatusUnauthorized,
		parsed && errResp.IsTokenExpired(),
		metadomain.ContainsTokenExpirationMessage(string(body)):
		perr.Err = domain.ErrProviderAuthExpired
	case status == http.StatusTooManyRequests, parsed && errResp.IsRateLimited():
		perr.Err = domain.ErrProviderRateLimited
		perr.RetryAfter = parseRetryAfter(header.Get("Retry-After"))
	case status >= http.StatusInternalServerError, parsed && errResp.IsTransient():
		perr.Err = domain.ErrProviderUnavailable
	default:
		perr.Err = domain.ErrProviderRejected
	}

	return perr
}

func retryDecision(err error) retry.Decision {
	var perr *domain.ProviderError
	if !errors.As(err, &perr) {
		return retry.Decision{}
	}

	switch {
	case errors.Is(perr.Err, domain.ErrProviderRateLimited):
		return retry.Decision{Retry: true, After: perr.RetryAfter}
	case errors.Is(perr.Err, domain.ErrProviderUnavailable):
		return retry.Decision{Retry: true}
	}

	return retry.Decision{}
}

// finalError converte um rate limit que esgotou as tentativas em
// indisponibilidade, que é como o chamador deve tratá-lo.
func finalError(err error) error {
	var exhausted *retry.ExhaustedError
	if !errors.As(err, &exhausted) {
		return err
	}

	var perr *domain.ProviderError
	if errors.As(exhausted.Err, &perr) && errors.Is(perr.Err, domain.ErrProviderRateLimited) {
		return &domain.ProviderError{
			Err:        domain.ErrProviderUnavailable,
			StatusCode: perr.StatusCode,
			Code:       perr.Code,
			Details:    fmt.Sprintf("still rate limited after %d attempts", exhausted.Attempts),
			Cause:      perr,
		}
	}

	return exhausted.Err
}

func outcomeLabel(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrProviderAuthExpired):
		return "auth_expired"
	case errors.Is(err, domain.ErrProviderRateLimited):
		return "rate_limited"
	case errors.Is(err, domain.ErrProviderRejected):
		return "rejected"
	default:
		return "unavailable"
	}
}

func parseRetryAfter(value string) time.Duration {
	if value == "" {
		return 0
	}
	if secs, err := strconv.Atoi(strings.TrimSpace(value)); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	if at, err := http.ParseTime(value); err == nil {
		if d := time.Until(at); d > 0 {
			return d
		}
	}
	return 0
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

// getAllPages segue paging.next até o fim ou até o limite de páginas.
func getAllPages[T any](ctx context.Context, c *MetaClient, cred domain.Credential, endpoint, firstURL string) ([]T, error) {
	all := make([]T, 0)
	next := firstURL

	for page := 0; next != ""; page++ {
		if c.Cfg.Meta.MaxPages > 0 && page >= c.Cfg.Meta.MaxPages {
			logrus.WithFields(logrus.Fields{
				"endpoint":  endpoint,
				"max_pages": c.Cfg.Meta.MaxPages,
			}).Warn("meta: page limit reached, result truncated")
			break
		}

		if !c.sameHost(next) {
			return nil, domain.NewProviderError(domain.ErrProviderRejected, 0, "pagination link points to unexpected host")
		}

		var resp metadomain.Page[T]
		if err := c.get(ctx, cred, endpoint, next, &resp); err != nil {
			return nil, err
		}

		all = append(all, resp.Data...)
		next = resp.Paging.Next
	}

	return all, nil
}

func (c *MetaClient) sameHost(rawURL string) bool {
	target, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	base, err := url.Parse(c.Cfg.Meta.URL)
	if err != nil {
		return false
	}
	return target.Host == base.Host
}

func (c *MetaClient) accountURL(accountID, edge string, params url.Values) string {
	u := fmt.Sprintf("%s/act_%s", c.Cfg.Meta.URL, strings.TrimPrefix(accountID, "act_"))
	if edge != "" {
		u += "/" + edge
	}
	if len(params) > 0 {
		u += "?" + params.Encode()
	}
	return u
}

func (c *MetaClient) pageSize() string {
	if c.Cfg.Meta.PageSize <= 0 {
		return "100"
	}
	return strconv.Itoa(c.Cfg.Meta.PageSize)
}
