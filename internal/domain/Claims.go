package domain

import (
	"github.com/golang-jwt/jwt/v5"
)

// Claims é o conteúdo do token de acesso aceito pela API. Um token só enxerga
// dados do tenant indicado em TenantID, exceto quando Operator é verdadeiro.
type Claims struct {
	TenantID string `json:"tenant_id"`
	Operator bool   `json:"operator,omitempty"`
	jwt.RegisteredClaims
}

// CanAccessTenant informa se o portador do token pode operar sobre o tenant.
func (c *Claims) CanAccessTenant(tenantID string) bool {
	if c == nil {
		return false
	}
	return c.Operator || (c.TenantID != "" && c.TenantID == tenantID)
}
