package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	jsoniter "github.com/json-iterator/go"
	pkgerrors "github.com/pkg/errors"
	"github.com/vfg2006/adsync-api/internal/usecases/authenticating"
	"github.com/vfg2006/adsync-api/internal/usecases/correlating"
	"github.com/vfg2006/adsync-api/internal/usecases/syncing"
	"github.com/vfg2006/adsync-api/internal/usecases/tracking"
	"github.com/vfg2006/adsync-api/pkg/apiErrors"
	"github.com/vfg2006/adsync-api/pkg/log"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.L.WithField("error", err.Error()).Warn("http: failed to encode response")
	}
}

// errorCode extrai o código da API dos erros de caso de uso.
func errorCode(err error) string {
	var syncErr *syncing.SyncError
	var ledgerErr *tracking.LedgerOperationError
	var correlationErr *correlating.CorrelationError
	var authErr *authenticating.AuthError

	switch {
	case errors.As(err, &syncErr):
		return syncErr.Code
	case errors.As(err, &ledgerErr):
		return ledgerErr.Code
	case errors.As(err, &correlationErr):
		return correlationErr.Code
	case errors.As(err, &authErr):
		return authErr.Code
	default:
		return apiErrors.ErrInternalServer
	}
}

func writeUsecaseError(w http.ResponseWriter, err error) {
	code := errorCode(err)
	message := err.Error()
	if apiErrors.StatusFor(code) >= http.StatusInternalServerError {
		// detalhes de banco e provedor não vão para o cliente
		message = "Erro interno no servidor"
	}
	apiErrors.WriteError(w, code, message, nil)
}

// parseInstant aceita RFC3339 ou apenas a data (meia-noite UTC).
func parseInstant(name, value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, pkgerrors.Errorf("parâmetro %s é obrigatório", name)
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(time.DateOnly, value)
	if err != nil {
		return time.Time{}, pkgerrors.Wrapf(err, "parâmetro %s inválido", name)
	}
	return t, nil
}

// parseOptionalInt devolve 0 quando o parâmetro não foi enviado.
func parseOptionalInt(name, value string) (int, error) {
	if value == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, pkgerrors.Wrapf(err, "parâmetro %s inválido", name)
	}
	return n, nil
}
