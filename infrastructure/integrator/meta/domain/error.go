package metadomain

import "strings"

// ErrorResponse representa a estrutura de erro da API do Meta
type ErrorResponse struct {
	Error ErrorDetails `json:"error"`
}

// ErrorDetails contém os detalhes de erro da API do Meta
type ErrorDetails struct {
	Message      string      `json:"message"`
	Type         string      `json:"type"`
	Code         int         `json:"code"`
	ErrorSubcode int         `json:"error_subcode,omitempty"`
	FBTraceID    string      `json:"fbtrace_id"`
	ErrorData    interface{} `json:"error_data,omitempty"`
}

// IsTokenExpired verifica se o erro é de token expirado
func (e *ErrorResponse) IsTokenExpired() bool {
	// O código 190 representa "token expirado" nas respostas da API do Meta
	// Possíveis subcódigos relacionados a problemas de token: 460, 463, 467
	return e.Error.Code == 190 ||
		(e.Error.Type == "OAuthException" && (e.Error.ErrorSubcode == 460 || e.Error.ErrorSubcode == 463 || e.Error.ErrorSubcode == 467))
}

// Códigos de limitação de uso da Graph API e da Marketing API.
var throttlingCodes = map[int]struct{}{
	4: {}, 17: {}, 32: {}, 613: {},
	80000: {}, 80001: {}, 80002: {}, 80003: {}, 80004: {}, 80005: {},
	80006: {}, 80008: {}, 80009: {}, 80014: {},
}

func (e *ErrorResponse) IsRateLimited() bool {
	_, ok := throttlingCodes[e.Error.Code]
	return ok
}

// IsTransient cobre os códigos de erro temporário do lado do Meta.
func (e *ErrorResponse) IsTransient() bool {
	return e.Error.Code == 1 || e.Error.Code == 2
}

// ContainsTokenExpirationMessage verifica se a mensagem contém indicação de token expirado
func ContainsTokenExpirationMessage(message string) bool {
	return strings.Contains(message, "Error validating access token") ||
		strings.Contains(message, "Session has expired") ||
		strings.Contains(message, "The session has been invalidated")
}
