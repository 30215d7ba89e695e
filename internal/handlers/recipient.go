package handlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/certwatch/certwatch-api/internal/models"
	"github.com/certwatch/certwatch-api/internal/notification"
	"github.com/certwatch/certwatch-api/internal/repository"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
)

type RecipientHandler struct {
	repo         repository.RecipientRepository
	domainSuffix string
	logger       zerolog.Logger
}

func NewRecipientHandler(repo repository.RecipientRepository, domainSuffix string, logger zerolog.Logger) *RecipientHandler {
	return &RecipientHandler{
		repo:         repo,
		domainSuffix: domainSuffix,
		logger:       logger.With().Str("handler", "recipient").Logger(),
	}
}

type recipientRequest struct {
	Name   string `json:"name"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	Active *bool  `json:"active"`
}

func (h *RecipientHandler) List(w http.ResponseWriter, r *http.Request) {
	recipients, err := h.repo.List(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to list recipients")
		http.Error(w, "Failed to list recipients", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"recipients": recipients})
}

func (h *RecipientHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req recipientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	// Bare usernames are completed here, before anything reaches the mail
	// gateway: the gateway only ever sees fully-qualified addresses.
	email := notification.NormalizeAddress(req.Email, h.domainSuffix)
	if email == "" || !strings.Contains(email, "@") {
		http.Error(w, "A valid email is required", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		http.Error(w, "Name is required", http.StatusBadRequest)
		return
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}

	rec, err := h.repo.Create(r.Context(), req.Name, email, req.Role, active)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to create recipient")
		http.Error(w, "Failed to create recipient: "+err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusCreated, rec)
}

func (h *RecipientHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	rec, err := h.repo.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			http.Error(w, "Recipient not found", http.StatusNotFound)
			return
		}
		h.logger.Error().Err(err).Str("id", id).Msg("failed to load recipient")
		http.Error(w, "Failed to load recipient", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (h *RecipientHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	var req recipientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	email := notification.NormalizeAddress(req.Email, h.domainSuffix)
	if email == "" || !strings.Contains(email, "@") {
		http.Error(w, "A valid email is required", http.StatusBadRequest)
		return
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}

	rec := models.Recipient{
		ID:     id,
		Name:   req.Name,
		Email:  email,
		Role:   req.Role,
		Active: active,
	}
	updated, err := h.repo.Update(r.Context(), rec)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			http.Error(w, "Recipient not found", http.StatusNotFound)
			return
		}
		h.logger.Error().Err(err).Str("id", id).Msg("failed to update recipient")
		http.Error(w, "Failed to update recipient", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *RecipientHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := h.repo.Delete(r.Context(), id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			http.Error(w, "Recipient not found", http.StatusNotFound)
			return
		}
		h.logger.Error().Err(err).Str("id", id).Msg("failed to delete recipient")
		http.Error(w, "Failed to delete recipient", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
