package handler

import (
	"campus_auth/internal/api/middleware"
	"campus_auth/internal/app/service"
	"campus_auth/internal/common"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
)

type AccountHandler struct {
	accountService *service.AccountService
	logger         *slog.Logger
}

func NewAccountHandler(accountService *service.AccountService, logger *slog.Logger) *AccountHandler {
	return &AccountHandler{accountService: accountService, logger: logger}
}

// RegisterRoutes mounts the credential endpoints of both variants.
func (h *AccountHandler) RegisterRoutes(r chi.Router) {
	r.Post("/student/register", h.register(service.StudentVariant))
	r.Post("/student/login", h.login(service.StudentVariant))
	r.Put("/student/change-password", h.changePassword(service.StudentVariant))
	r.Post("/representative/login", h.representativeLogin)

	r.Post("/faculty/register", h.register(service.FacultyVariant))
	r.Post("/faculty/login", h.login(service.FacultyVariant))
	r.Put("/faculty/change-password", h.changePassword(service.FacultyVariant))
}

// RegisterListRoutes mounts the account listings. Callers put them behind
// authentication.
func (h *AccountHandler) RegisterListRoutes(r chi.Router) {
	r.Get("/students", h.list(service.StudentVariant))
	r.Get("/faculty", h.list(service.FacultyVariant))
}

func (h *AccountHandler) register(v service.Variant) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req service.RegisterRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
			return
		}

		resp, err := h.accountService.Register(r.Context(), v, req)
		if err != nil {
			h.respondWithServiceError(w, err)
			return
		}
		common.RespondWithJSON(w, http.StatusCreated, resp)
	}
}

func (h *AccountHandler) login(v service.Variant) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req service.LoginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
			return
		}

		resp, err := h.accountService.Login(r.Context(), v, req)
		if err != nil {
			h.respondWithServiceError(w, err)
			return
		}
		common.RespondWithJSON(w, http.StatusOK, resp)
	}
}

func (h *AccountHandler) representativeLogin(w http.ResponseWriter, r *http.Request) {
	var req service.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}

	resp, err := h.accountService.RepresentativeLogin(r.Context(), req)
	if err != nil {
		h.respondWithServiceError(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, resp)
}

func (h *AccountHandler) changePassword(v service.Variant) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req service.ChangePasswordRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
			return
		}

		resp, err := h.accountService.ChangePassword(r.Context(), v, req)
		if err != nil {
			h.respondWithServiceError(w, err)
			return
		}
		common.RespondWithJSON(w, http.StatusOK, resp)
	}
}

func (h *AccountHandler) list(v service.Variant) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		accounts, err := h.accountService.List(r.Context(), v)
		if err != nil {
			h.respondWithServiceError(w, err)
			return
		}

		if requestedBy, ok := middleware.GetEmailFromContext(r.Context()); ok {
			h.logger.Info("accounts listed", "variant", v.Kind, "count", len(accounts), "requested_by", requestedBy)
		}

		views := make([]interface{}, 0, len(accounts))
		for _, a := range accounts {
			views = append(views, a.View())
		}
		common.RespondWithJSON(w, http.StatusOK, views)
	}
}

// respondWithServiceError answers with the error's public message. Internal
// failures are logged with their cause and shown generically.
func (h *AccountHandler) respondWithServiceError(w http.ResponseWriter, err error) {
	status := common.HTTPStatusFromError(err)
	if status >= http.StatusInternalServerError {
		common.LogError(h.logger, "request failed", err)
	}
	common.RespondWithError(w, status, common.PublicMessage(err, http.StatusText(status)))
}
