package handlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/certwatch/certwatch-api/internal/models"
	"github.com/certwatch/certwatch-api/internal/repository"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
)

// maxAttachmentSize bounds uploaded certificate files.
const maxAttachmentSize = 10 << 20 // 10 MiB

type CertificationHandler struct {
	repo   repository.CertificationRepository
	logger zerolog.Logger
}

func NewCertificationHandler(repo repository.CertificationRepository, logger zerolog.Logger) *CertificationHandler {
	return &CertificationHandler{
		repo:   repo,
		logger: logger.With().Str("handler", "certification").Logger(),
	}
}

type certificationRequest struct {
	GroupNumber   string              `json:"group_number"`
	PlantName     string              `json:"plant_name"`
	Address       string              `json:"address"`
	Scheme        models.Scheme       `json:"scheme"`
	SchemeA       models.SchemeRecord `json:"scheme_a"`
	SchemeB       models.SchemeRecord `json:"scheme_b"`
	ModelList     string              `json:"model_list"`
	StandardRef   string              `json:"standard_ref"`
	RenewalStatus string              `json:"renewal_status"`
	AlarmNote     string              `json:"alarm_note"`
	ActionNote    string              `json:"action_note"`
}

func (req certificationRequest) validate() error {
	if strings.TrimSpace(req.PlantName) == "" {
		return errors.New("plant_name is required")
	}
	if !models.IsValidScheme(req.Scheme) {
		return fmt.Errorf("scheme must be one of %s, %s or %s", models.SchemeA, models.SchemeB, models.SchemeBoth)
	}
	for _, rec := range []models.SchemeRecord{req.SchemeA, req.SchemeB} {
		if rec.Status != "" && !models.IsValidCertStatus(rec.Status) {
			return fmt.Errorf("invalid status %q", rec.Status)
		}
	}
	return nil
}

func (req certificationRequest) toModel() models.Certification {
	return models.Certification{
		GroupNumber:   req.GroupNumber,
		PlantName:     req.PlantName,
		Address:       req.Address,
		Scheme:        req.Scheme,
		SchemeA:       req.SchemeA,
		SchemeB:       req.SchemeB,
		ModelList:     req.ModelList,
		StandardRef:   req.StandardRef,
		RenewalStatus: req.RenewalStatus,
		AlarmNote:     req.AlarmNote,
		ActionNote:    req.ActionNote,
	}
}

func (h *CertificationHandler) List(w http.ResponseWriter, r *http.Request) {
	certs, err := h.repo.List(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to list certifications")
		http.Error(w, "Failed to list certifications", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"certifications": certs})
}

func (h *CertificationHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req certificationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if err := req.validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	cert, err := h.repo.Create(r.Context(), req.toModel())
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to create certification")
		http.Error(w, "Failed to create certification", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, cert)
}

func (h *CertificationHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	cert, err := h.repo.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			http.Error(w, "Certification not found", http.StatusNotFound)
			return
		}
		h.logger.Error().Err(err).Str("id", id).Msg("failed to load certification")
		http.Error(w, "Failed to load certification", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, cert)
}

func (h *CertificationHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	var req certificationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if err := req.validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	cert := req.toModel()
	cert.ID = id
	updated, err := h.repo.Update(r.Context(), cert)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			http.Error(w, "Certification not found", http.StatusNotFound)
			return
		}
		h.logger.Error().Err(err).Str("id", id).Msg("failed to update certification")
		http.Error(w, "Failed to update certification", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *CertificationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := h.repo.Delete(r.Context(), id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			http.Error(w, "Certification not found", http.StatusNotFound)
			return
		}
		h.logger.Error().Err(err).Str("id", id).Msg("failed to delete certification")
		http.Error(w, "Failed to delete certification", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// UploadAttachment stores the request body as the certification's file. The
// file name comes from the X-File-Name header, the MIME type from Content-Type.
func (h *CertificationHandler) UploadAttachment(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	name := strings.TrimSpace(r.Header.Get("X-File-Name"))
	if name == "" {
		http.Error(w, "X-File-Name header is required", http.StatusBadRequest)
		return
	}
	mimeType := r.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}

	data, err := io.ReadAll(io.LimitReader(r.Body, maxAttachmentSize+1))
	if err != nil {
		http.Error(w, "Failed to read upload", http.StatusBadRequest)
		return
	}
	if len(data) == 0 {
		http.Error(w, "Empty attachment", http.StatusBadRequest)
		return
	}
	if len(data) > maxAttachmentSize {
		http.Error(w, "Attachment too large", http.StatusRequestEntityTooLarge)
		return
	}

	if err := h.repo.SetAttachment(r.Context(), id, name, mimeType, data); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			http.Error(w, "Certification not found", http.StatusNotFound)
			return
		}
		h.logger.Error().Err(err).Str("id", id).Msg("failed to store attachment")
		http.Error(w, "Failed to store attachment", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *CertificationHandler) DownloadAttachment(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	att, err := h.repo.GetAttachment(r.Context(), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			http.Error(w, "Attachment not found", http.StatusNotFound)
			return
		}
		h.logger.Error().Err(err).Str("id", id).Msg("failed to load attachment")
		http.Error(w, "Failed to load attachment", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", att.MimeType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", att.Name))
	w.Write(att.Data)
}

func (h *CertificationHandler) DeleteAttachment(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := h.repo.DeleteAttachment(r.Context(), id); err != nil {
		h.logger.Error().Err(err).Str("id", id).Msg("failed to delete attachment")
		http.Error(w, "Failed to delete attachment", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
