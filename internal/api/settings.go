package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/asterview/asterview/internal/auth"
	"github.com/asterview/asterview/internal/settings"
)

// SettingsHandler serves per-user report settings
type SettingsHandler struct {
	store  settings.Store
	logger zerolog.Logger
}

// NewSettingsHandler creates a new SettingsHandler
func NewSettingsHandler(store settings.Store, logger zerolog.Logger) *SettingsHandler {
	return &SettingsHandler{
		store:  store,
		logger: logger.With().Str("component", "settings").Logger(),
	}
}

// HandleGet handles GET /api/settings
func (h *SettingsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	claims := auth.FromContext(r.Context())
	if claims == nil || claims.Email == "" {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	s, err := h.store.GetSettings(r.Context(), claims.Email)
	if err != nil {
		h.logger.Error().Err(err).Str("user", claims.Email).Msg("failed to load settings")
		http.Error(w, "failed to load settings", http.StatusInternalServerError)
		return
	}
	if s == nil {
		s = &settings.ReportSettings{UserID: claims.Email}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(s)
}

// HandlePut handles PUT /api/settings
func (h *SettingsHandler) HandlePut(w http.ResponseWriter, r *http.Request) {
	claims := auth.FromContext(r.Context())
	if claims == nil || claims.Email == "" {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var s settings.ReportSettings
	if err := json.NewDecoder(r.Body).Decode(&s); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	s.UserID = claims.Email
	s.UpdatedAt = time.Now().UTC()

	if err := h.store.SaveSettings(r.Context(), s); err != nil {
		h.logger.Error().Err(err).Str("user", claims.Email).Msg("failed to save settings")
		http.Error(w, "failed to save settings", http.StatusInternalServerError)
		return
	}

	h.logger.Info().Str("user", claims.Email).Msg("settings saved")
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(s)
}
