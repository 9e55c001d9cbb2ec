package server

import (
	"net/http"
	"strings"

	"credentialVaultAPI/internal/auth"
	"credentialVaultAPI/internal/handlers"
)

// scopedRoute represents a single API route
type scopedRoute struct {
	Name        string
	Method      string
	Pattern     string
	HandlerFunc http.HandlerFunc
	Protected   bool // whether the route requires JWT
}

// NewRouter initializes all routes and returns an http.Handler
func NewRouter(
	jwtManager auth.JWT,
	loginHandler handlers.LoginHandlerInterface,
	credentialsHandler handlers.CredentialsHandlerInterface,
	testHandler handlers.TestHandlerInterface,
	assistHandler handlers.AssistHandlerInterface,
) http.Handler {
	// Define routes
	routes := []scopedRoute{
		// Public routes
		{
			Name:        "Login",
			Method:      http.MethodPost,
			Pattern:     "/login",
			HandlerFunc: loginHandler.Login,
			Protected:   false,
		},

		// Protected routes
		{
			Name:        "ListCredentials",
			Method:      http.MethodGet,
			Pattern:     "/credentials",
			HandlerFunc: credentialsHandler.ListCredentials,
			Protected:   true,
		},
		{
			Name:        "GetCredential",
			Method:      http.MethodGet,
			Pattern:     "/credentials/get/",
			HandlerFunc: withCredentialID(credentialsHandler.GetCredential),
			Protected:   true,
		},
		{
			Name:        "CreateCredential",
			Method:      http.MethodPost,
			Pattern:     "/credentials/create",
			HandlerFunc: credentialsHandler.CreateCredential,
			Protected:   true,
		},
		{
			Name:        "UpdateCredential",
			Method:      http.MethodPut,
			Pattern:     "/credentials/update/",
			HandlerFunc: withCredentialID(credentialsHandler.UpdateCredential),
			Protected:   true,
		},
		{
			Name:        "DeleteCredential",
			Method:      http.MethodDelete,
			Pattern:     "/credentials/delete/",
			HandlerFunc: withCredentialID(credentialsHandler.DeleteCredential),
			Protected:   true,
		},
		{
			Name:        "RunTest",
			Method:      http.MethodPost,
			Pattern:     "/credentials/test/",
			HandlerFunc: withCredentialID(testHandler.RunTest),
			Protected:   true,
		},
		{
			Name:        "ValidateConfig",
			Method:      http.MethodPost,
			Pattern:     "/credentials/validate-config",
			HandlerFunc: testHandler.ValidateConfig,
			Protected:   true,
		},
		{
			Name:        "ValidateCommand",
			Method:      http.MethodPost,
			Pattern:     "/credentials/validate-command",
			HandlerFunc: testHandler.ValidateCommand,
			Protected:   true,
		},
		{
			Name:        "GenerateTestConfig",
			Method:      http.MethodPost,
			Pattern:     "/credentials/generate-test/",
			HandlerFunc: withCredentialID(assistHandler.GenerateTestConfig),
			Protected:   true,
		},
		{
			Name:        "RotationInfo",
			Method:      http.MethodPost,
			Pattern:     "/credentials/rotation-info/",
			HandlerFunc: withCredentialID(assistHandler.RotationInfo),
			Protected:   true,
		},
	}

	// Register routes with mux
	mux := http.NewServeMux()
	for _, route := range routes {
		var handler http.Handler = auth.MethodMiddleware(route.Method)(route.HandlerFunc)

		// Wrap protected routes with JWT middleware
		if route.Protected {
			handler = auth.JWTMiddleware(jwtManager, handler)
		}

		mux.Handle(route.Pattern, handler)
	}

	return mux
}

// withCredentialID extracts the credential id from the path and injects it into the context
func withCredentialID(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		parts := strings.Split(req.URL.Path, "/")

		credentialID := parts[len(parts)-1] // take the last part
		if credentialID == "" {
			http.Error(w, "Credential id required", http.StatusBadRequest)
			return
		}

		ctx := auth.WithCredentialID(req.Context(), credentialID)
		req = req.WithContext(ctx)

		next(w, req)
	}
}
