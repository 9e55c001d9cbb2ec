package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"credentialVaultAPI/internal/auth"
	"credentialVaultAPI/internal/handlers"
	"credentialVaultAPI/internal/handlers/mocks"
	"credentialVaultAPI/internal/models"
	"credentialVaultAPI/internal/server"
	"credentialVaultAPI/internal/store"
	"credentialVaultAPI/internal/tester"

	"github.com/stretchr/testify/require"
)

const operatorPassword = "correct horse battery staple"

const generatedConfigReply = `{
	"method": "GET",
	"url": "https://api.github.com/user",
	"headers": {"Authorization": "Bearer $VALUE"},
	"expectStatus": 200,
	"description": "Fetches the authenticated user"
}`

// cannedRunner stands in for the HTTP executor so the flows run without
// outbound network access. The executor itself is covered in its own package.
type cannedRunner struct {
	result models.TestResult
}

func (r *cannedRunner) Execute(_ context.Context, _ *models.TestConfig, _ string) models.TestResult {
	return r.result
}

var _ handlers.TestRunner = (*tester.Executor)(nil)

// Helper: start the HTTP server wired with real handlers over a local file store.
func startAPIServer(t *testing.T) (baseURL string, backend *mocks.MockBackend) {
	t.Helper()

	fileStore, err := store.NewLocalFileStore(t.TempDir())
	require.NoError(t, err)
	vault := store.NewVault(fileStore, "credentials.json")

	// Create real JWT manager (shared secret for tests)
	jwtMgr := auth.NewJWTManager("e2e-test-secret", 15*time.Minute)

	hash, err := bcrypt.GenerateFromPassword([]byte(operatorPassword), bcrypt.MinCost)
	require.NoError(t, err)

	backend = &mocks.MockBackend{Replies: []string{generatedConfigReply}}
	runner := &cannedRunner{result: models.TestResult{
		Success:  true,
		Status:   200,
		Message:  "Valid - received 200",
		TestedAt: time.Now().UTC().Format(time.RFC3339),
	}}

	// Instantiate handlers
	loginHandler := handlers.NewLoginHandler(jwtMgr, string(hash))
	credentialsHandler := handlers.NewCredentialsHandler(vault)
	testHandler := handlers.NewTestHandler(vault, runner)
	assistHandler := handlers.NewAssistHandler(vault, backend)

	// Build router with real wiring
	router := server.NewRouter(jwtMgr, loginHandler, credentialsHandler, testHandler, assistHandler)

	ts := httptest.NewServer(router)
	t.Cleanup(ts.Close)
	return ts.URL, backend
}

// Helper: do HTTP POST with JSON
func httpPostJSON(t *testing.T, client *http.Client, url string, body interface{}, token string) *http.Response {
	t.Helper()
	b, err := json.Marshal(body)
	require.NoError(t, err)
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(b))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := client.Do(req)
	require.NoError(t, err)
	return resp
}

// Helper: do HTTP request with method
func doRequest(t *testing.T, client *http.Client, method, url, token string, body io.Reader) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, url, body)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := client.Do(req)
	require.NoError(t, err)
	return resp
}

func login(t *testing.T, client *http.Client, baseURL string) string {
	t.Helper()
	resp := httpPostJSON(t, client, baseURL+"/login", models.LoginRequest{Password: operatorPassword}, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var loginResp models.LoginResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&loginResp))
	require.NotEmpty(t, loginResp.Token)
	return loginResp.Token
}

// Testing the full credential lifecycle end-to-end
func TestE2E_CredentialLifecycle(t *testing.T) {
	baseURL, _ := startAPIServer(t)
	client := &http.Client{Timeout: 15 * time.Second}

	//1) Wrong password is rejected
	t.Log("Login with wrong password")
	resp := httpPostJSON(t, client, baseURL+"/login", models.LoginRequest{Password: "nope"}, "")
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	//2) Login returns JWT
	t.Log("Login")
	token := login(t, client, baseURL)

	//3) Protected routes reject requests without a token
	resp = doRequest(t, client, http.MethodGet, baseURL+"/credentials", "", nil)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	//4) Empty vault lists no credentials
	resp = doRequest(t, client, http.MethodGet, baseURL+"/credentials", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var list models.CredentialListResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&list))
	require.Empty(t, list.Credentials)
	version := list.Version

	//5) Create a credential
	t.Log("Create credential")
	createReq := models.CreateCredentialRequest{
		ID: "github",
		Credential: &models.Credential{
			Type:    "pat",
			Service: "GitHub",
			Value:   "ghp_e2e_secret",
			Account: "ops@example.com",
		},
		ExpectedVersion: version,
	}
	resp = httpPostJSON(t, client, baseURL+"/credentials/create", createReq, token)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var created models.MutationResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	require.NotEqual(t, version, created.Version)
	version = created.Version

	//6) Listing redacts the secret value
	resp = doRequest(t, client, http.MethodGet, baseURL+"/credentials", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NotContains(t, string(raw), "ghp_e2e_secret")
	require.NoError(t, json.Unmarshal(raw, &list))
	require.Len(t, list.Credentials, 1)
	require.Equal(t, []string{"value"}, list.Credentials[0].Fields)

	//7) Get returns the full credential
	resp = doRequest(t, client, http.MethodGet, baseURL+"/credentials/get/github", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var got models.CredentialResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	require.Equal(t, "ghp_e2e_secret", got.Credential.Value)
	require.Equal(t, version, got.Version)

	//8) A stale version is rejected with the current one, nothing written
	t.Log("Stale update conflicts")
	staleReq := models.UpdateCredentialRequest{
		Credential:      &models.Credential{Type: "pat", Service: "GitHub", Value: "must-not-land"},
		ExpectedVersion: "2001-01-01T00:00:00Z",
	}
	b, _ := json.Marshal(staleReq)
	resp = doRequest(t, client, http.MethodPut, baseURL+"/credentials/update/github", token, bytes.NewReader(b))
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	var conflict models.ConflictResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&conflict))
	require.Equal(t, version, conflict.CurrentVersion)

	//9) Retrying with the reported version succeeds
	t.Log("Retry with current version")
	retryReq := models.UpdateCredentialRequest{
		Credential:      &models.Credential{Type: "pat", Service: "GitHub", Value: "ghp_rotated", Account: "ops@example.com"},
		ExpectedVersion: conflict.CurrentVersion,
	}
	b, _ = json.Marshal(retryReq)
	resp = doRequest(t, client, http.MethodPut, baseURL+"/credentials/update/github", token, bytes.NewReader(b))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var updated models.MutationResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&updated))
	version = updated.Version

	//10) Delete the credential
	t.Log("Delete credential")
	b, _ = json.Marshal(models.DeleteCredentialRequest{ExpectedVersion: version})
	resp = doRequest(t, client, http.MethodDelete, baseURL+"/credentials/delete/github", token, bytes.NewReader(b))
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = doRequest(t, client, http.MethodGet, baseURL+"/credentials/get/github", token, nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

// Testing test execution and result persistence end-to-end
func TestE2E_TestExecutionFlow(t *testing.T) {
	baseURL, _ := startAPIServer(t)
	client := &http.Client{Timeout: 15 * time.Second}
	token := login(t, client, baseURL)

	// Seed a credential carrying a test config
	createReq := models.CreateCredentialRequest{
		ID: "github",
		Credential: &models.Credential{
			Type:    "pat",
			Service: "GitHub",
			Value:   "ghp_e2e_secret",
			TestConfig: &models.TestConfig{
				Method:       "GET",
				URL:          "https://api.github.com/user",
				Headers:      map[string]string{"Authorization": "Bearer $VALUE"},
				ExpectStatus: models.StatusSet{200},
			},
		},
	}
	resp := httpPostJSON(t, client, baseURL+"/credentials/create", createReq, token)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var created models.MutationResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))

	// Run the stored test and save the result
	t.Log("Run test and save result")
	runReq := models.RunTestRequest{SaveResult: true, ExpectedVersion: created.Version}
	resp = httpPostJSON(t, client, baseURL+"/credentials/test/github", runReq, token)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var runResp models.RunTestResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&runResp))
	require.True(t, runResp.Result.Success)
	require.Equal(t, "saved", runResp.Saved)

	// The result is visible on a subsequent get
	resp = doRequest(t, client, http.MethodGet, baseURL+"/credentials/get/github", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var got models.CredentialResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	require.NotNil(t, got.Credential.LastTestResult)
	require.Equal(t, "Valid - received 200", got.Credential.LastTestResult.Message)

	// The validation endpoint applies the save-time safety checks
	t.Log("Validate config")
	badConfig := models.TestConfig{
		Method:       "GET",
		URL:          "http://api.github.com/user",
		Headers:      map[string]string{"Authorization": "Bearer $VALUE"},
		ExpectStatus: models.StatusSet{200},
	}
	b, _ := json.Marshal(badConfig)
	resp = doRequest(t, client, http.MethodPost, baseURL+"/credentials/validate-config", token, bytes.NewReader(b))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Contains(t, string(body), "only HTTPS URLs are allowed")
}

// Testing the generation flow end-to-end
func TestE2E_GenerateTestConfigFlow(t *testing.T) {
	baseURL, backend := startAPIServer(t)
	client := &http.Client{Timeout: 15 * time.Second}
	token := login(t, client, baseURL)

	createReq := models.CreateCredentialRequest{
		ID: "github",
		Credential: &models.Credential{
			Type:    "pat",
			Service: "GitHub",
			Value:   "ghp_e2e_secret",
		},
	}
	resp := httpPostJSON(t, client, baseURL+"/credentials/create", createReq, token)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var created models.MutationResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))

	t.Log("Generate and save test config")
	genReq := models.GenerateRequest{Save: true, ExpectedVersion: created.Version}
	resp = httpPostJSON(t, client, baseURL+"/credentials/generate-test/github", genReq, token)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var genResp models.GenerateTestResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&genResp))
	require.Equal(t, 1, genResp.Attempts)
	require.Equal(t, "saved", genResp.Saved)

	// The secret never reached the backend
	for _, prompt := range backend.Prompts {
		require.NotContains(t, prompt, "ghp_e2e_secret")
	}

	// The saved config is on the credential, without the descriptive extras
	resp = doRequest(t, client, http.MethodGet, baseURL+"/credentials/get/github", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var got models.CredentialResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	require.NotNil(t, got.Credential.TestConfig)
	require.Equal(t, "https://api.github.com/user", got.Credential.TestConfig.URL)
}
