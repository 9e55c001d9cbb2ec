package main

import (
	"log"
	"net/http"
	"os"
	"time"

	"credentialVaultAPI/internal/aiassist"
	"credentialVaultAPI/internal/auth"
	"credentialVaultAPI/internal/handlers"
	"credentialVaultAPI/internal/server"
	"credentialVaultAPI/internal/store"
	"credentialVaultAPI/internal/tester"
)

// newDocumentStore selects a backend from VAULT_BACKEND:
// "fileserver" (default), "local", or "kubernetes".
func newDocumentStore() (store.DocumentStore, error) {
	switch backend := os.Getenv("VAULT_BACKEND"); backend {
	case "local":
		dir := os.Getenv("VAULT_DIR")
		if dir == "" {
			dir = "./data"
		}
		return store.NewLocalFileStore(dir)
	case "kubernetes":
		namespace := os.Getenv("VAULT_NAMESPACE")
		if namespace == "" {
			namespace = "credential-vault"
		}
		return store.NewKubernetesStore(namespace)
	default:
		baseURL := os.Getenv("FILESERVER_URL")
		if baseURL == "" {
			log.Fatal("FILESERVER_URL environment variable is required for the fileserver backend")
		}
		return store.NewFileServerStore(baseURL, os.Getenv("FILESERVER_TOKEN")), nil
	}
}

func main() {
	mySecretKey := os.Getenv("SECRET_KEY")
	if mySecretKey == "" {
		log.Fatal("SECRET_KEY environment variable is required")
	}

	passwordHash := os.Getenv("OPERATOR_PASSWORD_HASH")
	if passwordHash == "" {
		log.Fatal("OPERATOR_PASSWORD_HASH environment variable is required")
	}

	// Initialize the document store and vault
	documentStore, err := newDocumentStore()
	if err != nil {
		log.Fatalf("failed to initialize document store: %v", err)
	}

	vaultPath := os.Getenv("VAULT_PATH")
	if vaultPath == "" {
		vaultPath = "credentials.json"
	}
	vault := store.NewVault(documentStore, vaultPath)

	// Initialize JWT manager
	jwtManager := auth.NewJWTManager(mySecretKey, time.Hour*24)

	// Initialize the generation backend when configured
	var backend aiassist.Backend
	if aiassist.IsConfigured() {
		backend, err = aiassist.BackendFromEnv()
		if err != nil {
			log.Fatalf("failed to initialize generation backend: %v", err)
		}
		log.Printf("AI assist enabled (%s)", backend.Name())
	} else {
		log.Println("AI assist disabled: no backend credential configured")
	}

	// Initialize handlers
	loginHandler := handlers.NewLoginHandler(jwtManager, passwordHash)
	credentialsHandler := handlers.NewCredentialsHandler(vault)
	testHandler := handlers.NewTestHandler(vault, tester.NewExecutor())
	assistHandler := handlers.NewAssistHandler(vault, backend)

	// Setup router
	router := server.NewRouter(jwtManager, loginHandler, credentialsHandler, testHandler, assistHandler)

	// Create HTTP server
	srv := &http.Server{
		Addr:         ":8080",
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 60 * time.Second, // test executions can take up to 30s
	}

	log.Println("Starting server on :8080")
	if err := srv.ListenAndServe(); err != nil {
		log.Fatalf("server failed: %v", err)
	}
}
