package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"credentialVaultAPI/internal/auth"
	"credentialVaultAPI/internal/models"
	"credentialVaultAPI/internal/safety"
	"credentialVaultAPI/internal/store"
)

// TestHandler executes credential verification tests. The secret value is
// pulled from the stored credential at execution time; it never appears in
// the request, the response, or any log line.
type TestHandler struct {
	Vault  *store.Vault
	Runner TestRunner
}

// NewTestHandler creates a new TestHandler
func NewTestHandler(vault *store.Vault, runner TestRunner) *TestHandler {
	return &TestHandler{Vault: vault, Runner: runner}
}

// RunTest handles POST /credentials/test/{id}
func (h *TestHandler) RunTest(w http.ResponseWriter, r *http.Request) {
	id, ok := auth.GetCredentialID(r.Context())
	if !ok {
		http.Error(w, "credential id missing", http.StatusBadRequest)
		return
	}

	var req models.RunTestRequest
	// An empty body means "run the stored config, don't save".
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		http.Error(w, "invalid request payload", http.StatusBadRequest)
		return
	}

	cred, _, err := h.Vault.GetCredential(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			http.Error(w, "Credential not found", http.StatusNotFound)
			return
		}
		http.Error(w, "failed to get credential: "+err.Error(), http.StatusInternalServerError)
		return
	}

	config := req.Config
	if config == nil {
		config = cred.TestConfig
	}
	if config == nil {
		http.Error(w, "credential has no test config", http.StatusBadRequest)
		return
	}
	if err := config.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	// Anything other than GET/HEAD may have side effects on the remote
	// service; require the caller to say so explicitly.
	if !config.IsSafeMethod() && !req.Confirmed {
		http.Error(w, "confirmation required for "+config.Method+" tests", http.StatusBadRequest)
		return
	}

	secret, ok := cred.SecretValue()
	if !ok {
		http.Error(w, "credential has no secret value to test", http.StatusBadRequest)
		return
	}

	result := h.Runner.Execute(r.Context(), config, secret)

	resp := models.RunTestResponse{Result: &result}
	if req.SaveResult {
		res := h.Vault.Mutate(r.Context(), req.ExpectedVersion, func(doc *models.SecretsDocument) error {
			target, exists := doc.Credentials[id]
			if !exists {
				return errors.New("credential disappeared during test")
			}
			target.LastTestResult = &result
			return nil
		})
		switch {
		case res.Err != nil:
			http.Error(w, "failed to save test result: "+res.Err.Error(), http.StatusInternalServerError)
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

// ValidateConfig handles POST /credentials/validate-config: the acceptance
// checks applied to any test config before it is persisted, exposed so the
// editor can check before saving.
func (h *TestHandler) ValidateConfig(w http.ResponseWriter, r *http.Request) {
	var config models.TestConfig
	if err := json.NewDecoder(r.Body).Decode(&config); err != nil {
		http.Error(w, "invalid request payload", http.StatusBadRequest)
		return
	}

	json.NewEncoder(w).Encode(checkConfigForSave(&config))
}

// ValidateCommand handles POST /credentials/validate-command: the injection
// guard for the script-based test representation.
func (h *TestHandler) ValidateCommand(w http.ResponseWriter, r *http.Request) {
	var req models.ValidateCommandRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request payload", http.StatusBadRequest)
		return
	}

	json.NewEncoder(w).Encode(safety.ValidateTestCommand(req.Command))
}

// checkConfigForSave runs the persistence-boundary checks: structural
// validity, URL safety, and placeholder presence.
func checkConfigForSave(config *models.TestConfig) safety.Result {
	if err := config.Validate(); err != nil {
		return safety.Result{Valid: false, Error: err.Error()}
	}
	if res := safety.ValidateTestURL(config.URL); !res.Valid {
		return res
	}
	if !config.HasPlaceholder() {
		return safety.Result{Valid: false, Error: "test config must use the $VALUE placeholder"}
	}
	return safety.Result{Valid: true}
}
