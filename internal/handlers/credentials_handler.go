package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"

	"credentialVaultAPI/internal/auth"
	"credentialVaultAPI/internal/models"
	"credentialVaultAPI/internal/store"
)

// CredentialsHandler handles CRUD for credentials. Every mutation follows
// the read-version/write-if-unchanged discipline: the caller presents the
// version it read, and a stale version yields a 409 carrying the current
// one so the caller can re-read and retry.
type CredentialsHandler struct {
	Vault *store.Vault
}

// NewCredentialsHandler creates a new CredentialsHandler
func NewCredentialsHandler(vault *store.Vault) *CredentialsHandler {
	return &CredentialsHandler{Vault: vault}
}

// writeConflict reports a version conflict, without having written.
func writeConflict(w http.ResponseWriter, currentVersion string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusConflict)
	json.NewEncoder(w).Encode(models.ConflictResponse{
		Error:          "document version conflict",
		CurrentVersion: currentVersion,
	})
}

// finishMutation translates a vault MutationResult into the HTTP response.
func finishMutation(w http.ResponseWriter, res store.MutationResult, message string) {
	if res.Err != nil {
		http.Error(w, "failed to update credentials: "+res.Err.Error(), http.StatusInternalServerError)
		return
	}
	if res.Conflict {
		writeConflict(w, res.Version)
		return
	}
	json.NewEncoder(w).Encode(models.MutationResponse{
		Message: message,
		Version: res.Version,
	})
}

// ListCredentials handles GET /credentials. Secret material is redacted:
// only which value fields are populated is reported, never their contents.
func (h *CredentialsHandler) ListCredentials(w http.ResponseWriter, r *http.Request) {
	doc, version, err := h.Vault.Load(r.Context())
	if err != nil {
		http.Error(w, "failed to load credentials: "+err.Error(), http.StatusInternalServerError)
		return
	}

	summaries := make([]models.CredentialSummary, 0, len(doc.Credentials))
	for id, cred := range doc.Credentials {
		summaries = append(summaries, models.Summarize(id, cred))
	}
	sort.Slice(summaries, func(i, j int) bool { return summaries[i].ID < summaries[j].ID })

	json.NewEncoder(w).Encode(models.CredentialListResponse{
		Credentials: summaries,
		Version:     version,
	})
}

// GetCredential handles GET /credentials/get/{id}
func (h *CredentialsHandler) GetCredential(w http.ResponseWriter, r *http.Request) {
	id, ok := auth.GetCredentialID(r.Context())
	if !ok {
		http.Error(w, "credential id missing", http.StatusBadRequest)
		return
	}

	cred, version, err := h.Vault.GetCredential(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			http.Error(w, "Credential not found", http.StatusNotFound)
			return
		}
		http.Error(w, "failed to get credential: "+err.Error(), http.StatusInternalServerError)
		return
	}

	json.NewEncoder(w).Encode(models.CredentialResponse{
		ID:         id,
		Credential: cred,
		Version:    version,
	})
}

// CreateCredential handles POST /credentials/create
func (h *CredentialsHandler) CreateCredential(w http.ResponseWriter, r *http.Request) {
	var req models.CreateCredentialRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request payload", http.StatusBadRequest)
		return
	}
	if req.ID == "" {
		http.Error(w, "credential id missing", http.StatusBadRequest)
		return
	}
	if req.Credential == nil {
		http.Error(w, "credential missing", http.StatusBadRequest)
		return
	}
	if err := req.Credential.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	res := h.Vault.Mutate(r.Context(), req.ExpectedVersion, func(doc *models.SecretsDocument) error {
		if _, exists := doc.Credentials[req.ID]; exists {
			return fmt.Errorf("credential %q already exists", req.ID)
		}
		doc.Credentials[req.ID] = req.Credential
		return nil
	})
	if res.Committed {
		w.WriteHeader(http.StatusCreated)
	}
	finishMutation(w, res, "Credential created")
}

// UpdateCredential handles PUT /credentials/update/{id}
func (h *CredentialsHandler) UpdateCredential(w http.ResponseWriter, r *http.Request) {
	id, ok := auth.GetCredentialID(r.Context())
	if !ok {
		http.Error(w, "credential id missing", http.StatusBadRequest)
		return
	}

	var req models.UpdateCredentialRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request payload", http.StatusBadRequest)
		return
	}
	if req.Credential == nil {
		http.Error(w, "credential missing", http.StatusBadRequest)
		return
	}
	if err := req.Credential.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	found := true
	res := h.Vault.Mutate(r.Context(), req.ExpectedVersion, func(doc *models.SecretsDocument) error {
		if _, exists := doc.Credentials[id]; !exists {
			found = false
			return fmt.Errorf("credential %q not found", id)
		}
		doc.Credentials[id] = req.Credential
		return nil
	})
	if res.Err != nil && !found {
		http.Error(w, "Credential not found", http.StatusNotFound)
		return
	}
	finishMutation(w, res, "Credential updated")
}

// DeleteCredential handles DELETE /credentials/delete/{id}
func (h *CredentialsHandler) DeleteCredential(w http.ResponseWriter, r *http.Request) {
	id, ok := auth.GetCredentialID(r.Context())
	if !ok {
		http.Error(w, "credential id missing", http.StatusBadRequest)
		return
	}

	var req models.DeleteCredentialRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request payload", http.StatusBadRequest)
		return
	}

	found := true
	res := h.Vault.Mutate(r.Context(), req.ExpectedVersion, func(doc *models.SecretsDocument) error {
		if _, exists := doc.Credentials[id]; !exists {
			found = false
			return fmt.Errorf("credential %q not found", id)
		}
		delete(doc.Credentials, id)
		return nil
	})
	if res.Err != nil && !found {
		http.Error(w, "Credential not found", http.StatusNotFound)
		return
	}
	finishMutation(w, res, "Credential deleted")
}
