package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/example/service-order-scheduler/internal/application"
	"github.com/example/service-order-scheduler/internal/logging"
)

var (
	errBadRequestBody      = errors.New("Formato de requisição inválido.")
	errInvalidResourceID   = errors.New("Identificador inválido.")
	errInvalidWeekday      = errors.New("Dia da semana inválido.")
	errInvalidReference    = errors.New("Data de referência inválida. Use AAAA-MM-DD.")
	errInvalidDepartment   = errors.New("Filtro de departamento inválido.")
	errMissingSessionToken = errors.New("Informe o token de autenticação.")
)

type responder struct {
	logger *slog.Logger
}

func newResponder(logger *slog.Logger) responder {
	return responder{logger: defaultLogger(logger)}
}

func (r responder) writeJSON(ctx context.Context, w http.ResponseWriter, status int, payload any) {
	if w == nil {
		return
	}

	if status == http.StatusNoContent || payload == nil {
		w.WriteHeader(status)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		r.loggerFor(ctx).ErrorContext(ctx, "failed to encode response", "error", err)
	}
}

func (r responder) writeError(ctx context.Context, w http.ResponseWriter, status int, err error) {
	message := localizedStatusMessage(status)
	if err != nil {
		if msg := strings.TrimSpace(err.Error()); msg != "" {
			message = msg
		}
		r.loggerFor(ctx).ErrorContext(ctx, "request failed", "status", status, "error", err)
	}

	r.writeJSON(ctx, w, status, errorResponse{Message: message})
}

func (r responder) handleServiceError(ctx context.Context, w http.ResponseWriter, err error) {
	if err == nil {
		r.writeError(ctx, w, http.StatusInternalServerError, errors.New("unknown error"))
		return
	}

	switch {
	case errors.Is(err, application.ErrInvalidCredentials):
		r.writeJSON(ctx, w, http.StatusUnauthorized, errorResponse{
			ErrorCode: "AUTH_INVALID_CREDENTIALS",
			Message:   "Usuário ou senha incorretos.",
		})
	case errors.Is(err, application.ErrSessionExpired), errors.Is(err, application.ErrSessionRevoked):
		r.writeJSON(ctx, w, http.StatusUnauthorized, errorResponse{
			ErrorCode: "AUTH_SESSION_EXPIRED",
			Message:   "Sessão expirada. Faça login novamente.",
		})
	case errors.Is(err, application.ErrUnauthorized):
		r.writeJSON(ctx, w, http.StatusForbidden, errorResponse{
			ErrorCode: "AUTH_FORBIDDEN",
			Message:   "Você não tem permissão para executar esta operação.",
		})
	case errors.Is(err, application.ErrNotFound):
		r.writeJSON(ctx, w, http.StatusNotFound, errorResponse{Message: "Recurso não encontrado."})
	case errors.Is(err, application.ErrAlreadyExists):
		r.writeJSON(ctx, w, http.StatusConflict, errorResponse{Message: "Já existe um registro com estes dados."})
	case errors.Is(err, application.ErrBackendUnavailable):
		r.loggerFor(ctx).ErrorContext(ctx, "backend unavailable", "error", err)
		r.writeJSON(ctx, w, http.StatusBadGateway, errorResponse{
			ErrorCode: "BACKEND_UNAVAILABLE",
			Message:   "Não foi possível comunicar com o servidor de dados. Tente novamente.",
		})
	default:
		var vErr *application.ValidationError
		if errors.As(err, &vErr) {
			r.writeJSON(ctx, w, http.StatusUnprocessableEntity, errorResponse{
				Message: "Há erros nos dados informados.",
				Errors:  localizeValidationErrors(vErr),
			})
			return
		}

		r.loggerFor(ctx).ErrorContext(ctx, "unexpected service error", "error", err)
		r.writeJSON(ctx, w, http.StatusInternalServerError, errorResponse{Message: "Ocorreu um erro interno no servidor."})
	}
}

func (r responder) loggerFor(ctx context.Context) *slog.Logger {
	return logging.FromContextOr(ctx, r.logger)
}

func localizedStatusMessage(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "Requisição inválida."
	case http.StatusUnauthorized:
		return "Autenticação necessária."
	case http.StatusForbidden:
		return "Você não tem permissão para executar esta operação."
	case http.StatusNotFound:
		return "Recurso não encontrado."
	case http.StatusConflict:
		return "A requisição conflita com o estado atual do recurso."
	case http.StatusUnprocessableEntity:
		return "Há erros nos dados informados."
	case http.StatusBadGateway:
		return "Não foi possível comunicar com o servidor de dados."
	default:
		return "Ocorreu um erro interno no servidor."
	}
}

func localizeValidationErrors(vErr *application.ValidationError) map[string]string {
	if vErr == nil || len(vErr.FieldErrors) == 0 {
		return nil
	}

	translated := make(map[string]string, len(vErr.FieldErrors))
	for field, msg := range vErr.FieldErrors {
		translated[field] = translateValidationMessage(msg)
	}
	return translated
}

func translateValidationMessage(message string) string {
	switch message {
	case "is required":
		return "Campo obrigatório."
	case "must be a positive integer":
		return "Informe um número inteiro positivo."
	case "must be between 0 and 6":
		return "Informe um dia entre 0 (domingo) e 6 (sábado)."
	case "must not contain spaces or slashes":
		return "Não pode conter espaços ou barras."
	case "must contain positive department ids":
		return "Informe departamentos válidos."
	case "must contain positive employee ids":
		return "Informe colaboradores válidos."
	case "select at least one day":
		return "Selecione pelo menos um dia."
	case "must contain weekdays between 0 and 6":
		return "Os dias devem estar entre 0 (domingo) e 6 (sábado)."
	case "at least one department is required":
		return "Adicione pelo menos um departamento."
	case "must be HH:MM":
		return "Informe o horário no formato HH:MM."
	case "time slot must be HH:MM-HH:MM":
		return "Informe o intervalo no formato HH:MM-HH:MM."
	case "slot end must be after start":
		return "O horário final deve ser posterior ao inicial."
	default:
		return message
	}
}

type errorResponse struct {
	ErrorCode string            `json:"error_code,omitempty"`
	Message   string            `json:"message"`
	Errors    map[string]string `json:"errors,omitempty"`
}
