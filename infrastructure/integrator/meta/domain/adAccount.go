package metadomain

// Valores de account_status da Graph API.
const (
	AccountStatusActive         = 1
	AccountStatusDisabled       = 2
	AccountStatusUnsettled      = 3
	AccountStatusPendingReview  = 7
	AccountStatusInGracePeriod  = 9
	AccountStatusPendingClosure = 100
	AccountStatusClosed         = 101
)

type AdAccount struct {
	ID            string `json:"id"`
	AccountID     string `json:"account_id"`
	Name          string `json:"name"`
	Currency      string `json:"currency"`
	AccountStatus int    `json:"account_status"`
	TimezoneName  string `json:"timezone_name,omitempty"`
}

func (a *AdAccount) IsActive() bool {
	return a.AccountStatus == AccountStatusActive || a.AccountStatus == AccountStatusInGracePeriod
}
