package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/benvon/career-coach/internal/catalog"
	"github.com/benvon/career-coach/internal/database"
	"github.com/benvon/career-coach/internal/models"
	"github.com/benvon/career-coach/internal/request"
	"github.com/benvon/career-coach/internal/validation"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// ProfileStore reads and updates onboarding profiles.
type ProfileStore interface {
	GetProfile(ctx context.Context, userID uuid.UUID) (*models.Profile, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, update models.ProfileUpdate) (*models.Profile, error)
}

var _ ProfileStore = (*database.ProfileRepository)(nil)

// ProfileHandler serves the onboarding profile and the role catalog
type ProfileHandler struct {
	profiles ProfileStore
	catalog  *catalog.Catalog
	logger   *zap.Logger
}

// NewProfileHandler creates a new profile handler
func NewProfileHandler(profiles ProfileStore, cat *catalog.Catalog, logger *zap.Logger) *ProfileHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProfileHandler{profiles: profiles, catalog: cat, logger: logger}
}

// RegisterRoutes registers profile and role routes on the /api/v1 router
func (h *ProfileHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/profile", h.GetProfile).Methods("GET")
	r.HandleFunc("/profile", h.UpdateProfile).Methods("PATCH")
	r.HandleFunc("/roles", h.ListRoles).Methods("GET")
}

// GetProfile returns the caller's profile, an empty one before onboarding.
func (h *ProfileHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	userID := request.UserID(r)
	if userID == uuid.Nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	profile, err := h.profiles.GetProfile(r.Context(), userID)
	if errors.Is(err, database.ErrNotFound) {
		profile, err = &models.Profile{UserID: userID}, nil
	}
	if err != nil {
		respondServiceError(w, h.logger, "get_profile", err)
		return
	}
	respondJSON(w, http.StatusOK, profile)
}

// UpdateProfile applies a partial update. A selected role must belong to the
// given category, or to the stored one when no category is sent.
func (h *ProfileHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID := request.UserID(r)
	if userID == uuid.Nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	var update models.ProfileUpdate
	if err := decodeJSON(r, &update, false); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}
	if update.Empty() {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "No profile fields to update")
		return
	}
	if err := validation.Struct(update); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}
	if update.FullName != nil {
		name := validation.SanitizeText(*update.FullName)
		update.FullName = &name
	}

	if err := h.checkRole(r.Context(), userID, &update); err != nil {
		if errors.Is(err, catalog.ErrUnknownCategory) || errors.Is(err, catalog.ErrUnknownRole) || errors.Is(err, errCategoryRequired) {
			respondJSONError(w, http.StatusBadRequest, "Bad Request", err.Error())
			return
		}
		respondServiceError(w, h.logger, "update_profile", err)
		return
	}

	profile, err := h.profiles.UpdateProfile(r.Context(), userID, update)
	if err != nil {
		respondServiceError(w, h.logger, "update_profile", err)
		return
	}
	h.logger.Info("profile_updated", zap.String("user_id", userID.String()))
	respondJSON(w, http.StatusOK, profile)
}

var errCategoryRequired = errors.New("role_category is required when selecting a role")

// checkRole validates category and role against the catalog and rewrites
// them to their canonical spelling.
func (h *ProfileHandler) checkRole(ctx context.Context, userID uuid.UUID, update *models.ProfileUpdate) error {
	if update.SelectedRole == nil {
		if update.RoleCategory != nil {
			cat, ok := h.catalog.Category(*update.RoleCategory)
			if !ok {
				return catalog.ErrUnknownCategory
			}
			update.RoleCategory = &cat.Name
		}
		return nil
	}

	category := ""
	if update.RoleCategory != nil {
		category = *update.RoleCategory
	} else {
		stored, err := h.profiles.GetProfile(ctx, userID)
		if err != nil && !errors.Is(err, database.ErrNotFound) {
			return err
		}
		category = stored.Category("")
	}
	if strings.TrimSpace(category) == "" {
		return errCategoryRequired
	}

	cat, role, err := h.catalog.Validate(category, *update.SelectedRole)
	if err != nil {
		return err
	}
	update.RoleCategory = &cat
	update.SelectedRole = &role
	return nil
}

// ListRoles returns the role catalog.
func (h *ProfileHandler) ListRoles(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.catalog)
}
