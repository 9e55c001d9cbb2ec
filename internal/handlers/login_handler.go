package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"credentialVaultAPI/internal/auth"
	"credentialVaultAPI/internal/models"

	"golang.org/x/crypto/bcrypt"
)

// operatorName is the username minted into tokens. The console is a
// single-operator tool; the password hash is provisioned via environment.
const operatorName = "operator"

// LoginHandler authenticates the operator and issues a JWT.
type LoginHandler struct {
	JWTManager   auth.JWTGenerator
	PasswordHash string // bcrypt hash of the operator password
}

// NewLoginHandler creates a new LoginHandler
func NewLoginHandler(jwtManager auth.JWTGenerator, passwordHash string) *LoginHandler {
	return &LoginHandler{
		JWTManager:   jwtManager,
		PasswordHash: passwordHash,
	}
}

// Login handles POST /login
func (h *LoginHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(h.PasswordHash), []byte(req.Password)); err != nil {
		http.Error(w, "Invalid password", http.StatusUnauthorized)
		return
	}

	token, err := h.JWTManager.Generate(operatorName)
	if err != nil {
		http.Error(w, "Failed to generate token", http.StatusInternalServerError)
		return
	}

	if err := json.NewEncoder(w).Encode(models.LoginResponse{
		Token:   token,
		Message: "Login successful",
	}); err != nil {
		log.Println("failed to write response:", err)
	}
}
