package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/ipede/auth-hub/internal/domain"
	httperrors "github.com/ipede/auth-hub/internal/interfaces/http/errors"
	"go.uber.org/zap"
)

// ClientHandler manages the client registry. Registrations are immutable:
// a client is created once and only ever removed, never edited, so request
// handling can treat the registry as read-only.
type ClientHandler struct {
	clientRepo domain.ClientRepository
	logger     *zap.Logger
}

func NewClientHandler(clientRepo domain.ClientRepository, logger *zap.Logger) *ClientHandler {
	return &ClientHandler{
		clientRepo: clientRepo,
		logger:     logger,
	}
}

// CreateHandler handles the registration of a new client
func (h *ClientHandler) CreateHandler(w http.ResponseWriter, r *http.Request) {
	var req ClientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("Failed to decode client request", zap.Error(err))
		httperrors.RespondWithError(w, domain.ErrInvalidRequest)
		return
	}

	if details := validateClientRequest(req); details.HasErrors() {
		h.logger.Error("Invalid client registration", zap.Any("details", details))
		httperrors.RespondWithDetails(w, domain.ErrInvalidRequest, details)
		return
	}

	if existing, err := h.clientRepo.FindByID(r.Context(), req.ID); err == nil && existing != nil {
		h.logger.Error("Client already exists", zap.String("client_id", req.ID))
		httperrors.RespondWithError(w, domain.ErrClientAlreadyExists)
		return
	}

	client := &domain.Client{
		ID:           req.ID,
		RedirectURIs: req.RedirectURIs,
		Scopes:       req.Scopes,
		CreatedAt:    time.Now(),
	}

	if err := h.clientRepo.Create(r.Context(), client); err != nil {
		h.logger.Error("Failed to create client", zap.Error(err))
		httperrors.RespondWithError(w, domain.ErrInternal)
		return
	}

	h.logger.Info("Client registered", zap.String("client_id", client.ID))

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(client)
}

// GetHandler handles getting a single client
func (h *ClientHandler) GetHandler(w http.ResponseWriter, r *http.Request) {
	clientID := chi.URLParam(r, "id")
	if clientID == "" {
		var details httperrors.ValidationErrors
		details.Add("id", "client id is required")
		httperrors.RespondWithDetails(w, domain.ErrInvalidRequest, details)
		return
	}

	client, err := h.clientRepo.FindByID(r.Context(), clientID)
	if err != nil {
		h.logger.Error("Failed to find client", zap.String("client_id", clientID), zap.Error(err))
		httperrors.RespondWithError(w, domain.ErrInvalidClient)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(client)
}

// ListHandler handles listing all registered clients
func (h *ClientHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	clients, err := h.clientRepo.List(r.Context())
	if err != nil {
		h.logger.Error("Failed to list clients", zap.Error(err))
		httperrors.RespondWithError(w, domain.ErrInternal)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(clients)
}

// DeleteHandler handles removing a client registration
func (h *ClientHandler) DeleteHandler(w http.ResponseWriter, r *http.Request) {
	clientID := chi.URLParam(r, "id")
	if clientID == "" {
		var details httperrors.ValidationErrors
		details.Add("id", "client id is required")
		httperrors.RespondWithDetails(w, domain.ErrInvalidRequest, details)
		return
	}

	if _, err := h.clientRepo.FindByID(r.Context(), clientID); err != nil {
		h.logger.Error("Failed to find client", zap.String("client_id", clientID), zap.Error(err))
		httperrors.RespondWithError(w, domain.ErrInvalidClient)
		return
	}

	if err := h.clientRepo.Delete(r.Context(), clientID); err != nil {
		h.logger.Error("Failed to delete client", zap.Error(err))
		httperrors.RespondWithError(w, domain.ErrInternal)
		return
	}

	h.logger.Info("Client removed", zap.String("client_id", clientID))
	w.WriteHeader(http.StatusNoContent)
}

func validateClientRequest(req ClientRequest) httperrors.ValidationErrors {
	var details httperrors.ValidationErrors

	if req.ID == "" {
		details.Add("id", "client id is required")
	}
	if len(req.RedirectURIs) == 0 {
		details.Add("redirect_uris", "at least one redirect uri is required")
	}
	if len(req.Scopes) == 0 {
		details.Add("scopes", "at least one scope is required")
	}

	return details
}
