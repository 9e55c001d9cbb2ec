package tester

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"credentialVaultAPI/internal/models"
	"credentialVaultAPI/internal/safety"

	"github.com/stretchr/testify/require"
)

// allowLocalURLs lets executor tests target httptest listeners, which the
// real validator would reject as loopback addresses.
func allowLocalURLs(t *testing.T) {
	t.Helper()
	original := validateURL
	validateURL = func(string) safety.Result { return safety.Result{Valid: true} }
	t.Cleanup(func() { validateURL = original })
}

func newTestExecutor(server *httptest.Server) *Executor {
	return &Executor{Client: server.Client(), Timeout: DefaultTimeout}
}

func TestExecute_Success(t *testing.T) {
	allowLocalURLs(t)

	var gotAuth string
	server := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusOK)
		io.WriteString(w, `{"login":"alice"}`)
	}))
	defer server.Close()

	config := &models.TestConfig{
		Method:       "GET",
		URL:          server.URL + "/user",
		Headers:      map[string]string{"Authorization": "Bearer $VALUE"},
		ExpectStatus: models.StatusSet{200},
	}

	result := newTestExecutor(server).Execute(context.Background(), config, "tok-123")
	require.True(t, result.Success)
	require.Equal(t, 200, result.Status)
	require.Equal(t, "Valid - received 200", result.Message)
	require.Equal(t, "Bearer tok-123", gotAuth)
	require.NotEmpty(t, result.TestedAt)
}

func TestExecute_StatusMismatch(t *testing.T) {
	allowLocalURLs(t)

	server := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	config := &models.TestConfig{
		Method:       "GET",
		URL:          server.URL,
		ExpectStatus: models.StatusSet{200, 201},
	}

	result := newTestExecutor(server).Execute(context.Background(), config, "bad-token")
	require.False(t, result.Success)
	require.Equal(t, 401, result.Status)
	require.Equal(t, "Invalid - expected 200 or 201, got 401", result.Message)
}

func TestExecute_StatusSetMatchesAnyMember(t *testing.T) {
	allowLocalURLs(t)

	server := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	config := &models.TestConfig{
		Method:       "POST",
		URL:          server.URL,
		Body:         `{"token":"$VALUE"}`,
		ExpectStatus: models.StatusSet{200, 201},
		Headers:      map[string]string{"Content-Type": "application/json"},
	}

	result := newTestExecutor(server).Execute(context.Background(), config, "s3cret")
	require.True(t, result.Success)
	require.Equal(t, 201, result.Status)
}

func TestExecute_BodySubstitutedOnlyForPostAndPut(t *testing.T) {
	allowLocalURLs(t)

	var gotBody string
	server := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	config := &models.TestConfig{
		Method:       "PUT",
		URL:          server.URL,
		Body:         "key=$VALUE",
		ExpectStatus: models.StatusSet{200},
	}

	result := newTestExecutor(server).Execute(context.Background(), config, "xyz")
	require.True(t, result.Success)
	require.Equal(t, "key=xyz", gotBody)
}

func TestExecute_ExpectBodyContains(t *testing.T) {
	allowLocalURLs(t)

	server := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"login":"alice","plan":"pro"}`)
	}))
	defer server.Close()

	config := &models.TestConfig{
		Method:             "GET",
		URL:                server.URL,
		ExpectStatus:       models.StatusSet{200},
		ExpectBodyContains: `"login"`,
	}

	result := newTestExecutor(server).Execute(context.Background(), config, "tok")
	require.True(t, result.Success)

	config.ExpectBodyContains = `"admin"`
	result = newTestExecutor(server).Execute(context.Background(), config, "tok")
	require.False(t, result.Success)
	require.Equal(t, 200, result.Status)
	require.Equal(t, "Invalid - response body did not contain expected content", result.Message)
}

func TestExecute_UnsafeURLMakesNoNetworkCall(t *testing.T) {
	called := false
	server := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer server.Close()

	// Real validator in place: the loopback httptest URL must be rejected
	// before any request goes out.
	config := &models.TestConfig{
		Method:       "GET",
		URL:          server.URL,
		ExpectStatus: models.StatusSet{200},
	}

	result := newTestExecutor(server).Execute(context.Background(), config, "tok")
	require.False(t, result.Success)
	require.Equal(t, 0, result.Status)
	require.NotEmpty(t, result.Message)
	require.False(t, called)
}

func TestExecute_UnparseableSubstitutedURLDoesNotLeakSecret(t *testing.T) {
	allowLocalURLs(t)

	// A secret with a control character makes the substituted URL fail to
	// parse at request-build time. The parse error embeds the substituted
	// URL, so the message must carry only the unwrapped cause.
	config := &models.TestConfig{
		Method:       "GET",
		URL:          "https://api.example.com/$VALUE",
		ExpectStatus: models.StatusSet{200},
	}

	executor := NewExecutor()
	result := executor.Execute(context.Background(), config, "sekret\nwith-newline")
	require.False(t, result.Success)
	require.Equal(t, 0, result.Status)
	require.Contains(t, result.Message, "Network error:")
	require.NotContains(t, result.Message, "sekret")
	require.NotContains(t, result.Message, "api.example.com")
}

func TestExecute_NetworkError(t *testing.T) {
	allowLocalURLs(t)

	server := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	client := server.Client()
	server.Close() // connection refused from here on

	config := &models.TestConfig{
		Method:       "GET",
		URL:          url,
		ExpectStatus: models.StatusSet{200},
	}

	executor := &Executor{Client: client, Timeout: DefaultTimeout}
	result := executor.Execute(context.Background(), config, "tok")
	require.False(t, result.Success)
	require.Equal(t, 0, result.Status)
	require.Contains(t, result.Message, "Network error:")
	// The secret must never leak into the message.
	require.NotContains(t, result.Message, "tok")
}

func TestExecute_Timeout(t *testing.T) {
	allowLocalURLs(t)

	release := make(chan struct{})
	server := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer func() {
		close(release)
		server.Close()
	}()

	config := &models.TestConfig{
		Method:       "GET",
		URL:          server.URL,
		ExpectStatus: models.StatusSet{200},
	}

	executor := &Executor{Client: server.Client(), Timeout: 50 * time.Millisecond}
	result := executor.Execute(context.Background(), config, "tok")
	require.False(t, result.Success)
	require.Equal(t, 0, result.Status)
	require.Contains(t, result.Message, "Request timed out")
	require.GreaterOrEqual(t, result.DurationMs, int64(50))
}
