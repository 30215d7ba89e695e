package handlers

import (
	"net/http"

	"github.com/certwatch/certwatch-api/internal/importer"
	"github.com/certwatch/certwatch-api/internal/repository"
	"github.com/rs/zerolog"
)

type ImportHandler struct {
	repo   repository.CertificationRepository
	logger zerolog.Logger
}

func NewImportHandler(repo repository.CertificationRepository, logger zerolog.Logger) *ImportHandler {
	return &ImportHandler{
		repo:   repo,
		logger: logger.With().Str("handler", "import").Logger(),
	}
}

// Import replaces the whole register with the uploaded .xlsx. Destructive,
// but all-or-nothing: a parse error or any insert failure leaves the prior
// data untouched.
func (h *ImportHandler) Import(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		http.Error(w, "Invalid multipart request", http.StatusBadRequest)
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "A spreadsheet file is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	certs, err := importer.Parse(file)
	if err != nil {
		http.Error(w, "Failed to parse spreadsheet: "+err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.repo.ReplaceAll(r.Context(), certs); err != nil {
		h.logger.Error().Err(err).Str("file", header.Filename).Msg("reseed failed, rolled back")
		http.Error(w, "Import failed; existing data left intact", http.StatusInternalServerError)
		return
	}

	h.logger.Info().Str("file", header.Filename).Int("rows", len(certs)).Msg("register reseeded")
	writeJSON(w, http.StatusOK, map[string]int{"imported": len(certs)})
}
