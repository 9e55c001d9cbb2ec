package handlers

import "net/http"

// LoginHandlerInterface defines the behavior expected from the login handler (real or mock)
type LoginHandlerInterface interface {
	Login(w http.ResponseWriter, r *http.Request)
}

// CredentialsHandlerInterface defines the behavior expected from credential handlers (real or mock)
type CredentialsHandlerInterface interface {
	ListCredentials(w http.ResponseWriter, r *http.Request)
	GetCredential(w http.ResponseWriter, r *http.Request)
	CreateCredential(w http.ResponseWriter, r *http.Request)
	UpdateCredential(w http.ResponseWriter, r *http.Request)
	DeleteCredential(w http.ResponseWriter, r *http.Request)
}

// TestHandlerInterface defines the behavior expected from the test handler (real or mock)
type TestHandlerInterface interface {
	RunTest(w http.ResponseWriter, r *http.Request)
	ValidateConfig(w http.ResponseWriter, r *http.Request)
	ValidateCommand(w http.ResponseWriter, r *http.Request)
}

// AssistHandlerInterface defines the behavior expected from the assist handler (real or mock)
type AssistHandlerInterface interface {
	GenerateTestConfig(w http.ResponseWriter, r *http.Request)
	RotationInfo(w http.ResponseWriter, r *http.Request)
}
