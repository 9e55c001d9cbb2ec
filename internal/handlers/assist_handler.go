package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"credentialVaultAPI/internal/aiassist"
	"credentialVaultAPI/internal/auth"
	"credentialVaultAPI/internal/models"
	"credentialVaultAPI/internal/store"
)

// AssistHandler exposes the structured-generation entry points. Backend is
// nil when no generation credential is configured; every route then fails
// fast with a clear message instead of attempting and failing per call.
type AssistHandler struct {
	Vault   *store.Vault
	Backend aiassist.Backend
}

// NewAssistHandler creates a new AssistHandler
func NewAssistHandler(vault *store.Vault, backend aiassist.Backend) *AssistHandler {
	return &AssistHandler{Vault: vault, Backend: backend}
}

func (h *AssistHandler) ensureConfigured(w http.ResponseWriter) bool {
	if h.Backend == nil {
		http.Error(w, "AI assist is not configured", http.StatusServiceUnavailable)
		return false
	}
	return true
}

// metaFor builds the non-secret prompt input for a credential. Secret
// values never reach the generation backend.
func metaFor(id string, cred *models.Credential) aiassist.CredentialMeta {
	return aiassist.CredentialMeta{
		ID:      id,
		Type:    cred.Type,
		Service: cred.Service,
		Account: cred.Account,
		Notes:   cred.Notes,
	}
}

func (h *AssistHandler) loadCredential(w http.ResponseWriter, r *http.Request) (string, *models.Credential, bool) {
	id, ok := auth.GetCredentialID(r.Context())
	if !ok {
		http.Error(w, "credential id missing", http.StatusBadRequest)
		return "", nil, false
	}

	cred, _, err := h.Vault.GetCredential(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			http.Error(w, "Credential not found", http.StatusNotFound)
			return "", nil, false
		}
		http.Error(w, "failed to get credential: "+err.Error(), http.StatusInternalServerError)
		return "", nil, false
	}
	return id, cred, true
}

// GenerateTestConfig handles POST /credentials/generate-test/{id}. The
// generated config must pass the same acceptance checks as a hand-written
// one before it can be saved; descriptive extras are stripped on save.
func (h *AssistHandler) GenerateTestConfig(w http.ResponseWriter, r *http.Request) {
	if !h.ensureConfigured(w) {
		return
	}

	id, cred, ok := h.loadCredential(w, r)
	if !ok {
		return
	}

	var req models.GenerateRequest
	// An empty body means "generate, don't save".
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		http.Error(w, "invalid request payload", http.StatusBadRequest)
		return
	}

	gen := aiassist.GenerateTestConfig(r.Context(), h.Backend, metaFor(id, cred))
	if !gen.Success {
		http.Error(w, "generation failed after "+attempts(gen.Attempts)+": "+gen.Error, http.StatusBadGateway)
		return
	}

	if res := checkConfigForSave(&gen.Data.TestConfig); !res.Valid {
		http.Error(w, "generated config rejected: "+res.Error, http.StatusUnprocessableEntity)
		return
	}

	resp := models.GenerateTestResponse{
		Config:   &gen.Data,
		Attempts: gen.Attempts,
	}

	if req.Save {
		// Persist the bare TestConfig; description and notes stay ephemeral.
		config := gen.Data.TestConfig
		res := h.Vault.Mutate(r.Context(), req.ExpectedVersion, func(doc *models.SecretsDocument) error {
			target, exists := doc.Credentials[id]
			if !exists {
				return errors.New("credential disappeared during generation")
			}
			target.TestConfig = &config
			return nil
		})
		switch {
		case res.Err != nil:
			http.Error(w, "failed to save test config: "+res.Err.Error(), http.StatusInternalServerError)
			return
		case res.Conflict:
			resp.Saved = "conflict"
			resp.CurrentVersion = res.Version
		default:
			resp.Saved = "saved"
			resp.CurrentVersion = res.Version
		}
	}

	json.NewEncoder(w).Encode(resp)
}

// RotationInfo handles POST /credentials/rotation-info/{id}
func (h *AssistHandler) RotationInfo(w http.ResponseWriter, r *http.Request) {
	if !h.ensureConfigured(w) {
		return
	}

	id, cred, ok := h.loadCredential(w, r)
	if !ok {
		return
	}

	gen := aiassist.GenerateRotationInfo(r.Context(), h.Backend, metaFor(id, cred))
	if !gen.Success {
		http.Error(w, "generation failed after "+attempts(gen.Attempts)+": "+gen.Error, http.StatusBadGateway)
		return
	}

	json.NewEncoder(w).Encode(models.RotationInfoResponse{
		Rotation: &gen.Data,
		Attempts: gen.Attempts,
	})
}

func attempts(n int) string {
	if n == 1 {
		return "1 attempt"
	}
	return strconv.Itoa(n) + " attempts"
}
