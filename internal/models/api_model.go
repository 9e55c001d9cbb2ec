package models

// LoginRequest is the payload for operator login.
type LoginRequest struct {
	Password string `json:"password"`
}

// LoginResponse carries the issued token.
type LoginResponse struct {
	Token   string `json:"token,omitempty"`
	Message string `json:"message"`
}

// CredentialSummary is the redacted form used by the list endpoint: which
// value fields are populated, never their contents.
type CredentialSummary struct {
	ID             string      `json:"id"`
	Type           string      `json:"type"`
	Service        string      `json:"service"`
	Account        string      `json:"account,omitempty"`
	Project        string      `json:"project,omitempty"`
	Expires        string      `json:"expires,omitempty"`
	UsedBy         []string    `json:"used_by,omitempty"`
	Fields         []string    `json:"fields"`
	HasTestConfig  bool        `json:"hasTestConfig"`
	LastTestResult *TestResult `json:"lastTestResult,omitempty"`
}

// Summarize builds the redacted summary for one credential.
func Summarize(id string, c *Credential) CredentialSummary {
	var fields []string
	for _, f := range []struct {
		name  string
		value string
	}{
		{"value", c.Value},
		{"bearer_token", c.BearerToken},
		{"api_key", c.APIKey},
		{"client_id", c.ClientID},
		{"client_secret", c.ClientSecret},
		{"service_role_key", c.ServiceRoleKey},
		{"url", c.URL},
	} {
		if f.value != "" {
			fields = append(fields, f.name)
		}
	}
	return CredentialSummary{
		ID:             id,
		Type:           c.Type,
		Service:        c.Service,
		Account:        c.Account,
		Project:        c.Project,
		Expires:        c.Expires,
		UsedBy:         c.UsedBy,
		Fields:         fields,
		HasTestConfig:  c.TestConfig != nil,
		LastTestResult: c.LastTestResult,
	}
}

// CredentialListResponse is the list endpoint payload.
type CredentialListResponse struct {
	Credentials []CredentialSummary `json:"credentials"`
	Version     string              `json:"version"`
}

// CredentialResponse returns one credential plus the document version the
// caller must present on a subsequent mutation.
type CredentialResponse struct {
	ID         string      `json:"id"`
	Credential *Credential `json:"credential"`
	Version    string      `json:"version"`
}

// CreateCredentialRequest is the payload for creating a credential.
type CreateCredentialRequest struct {
	ID              string      `json:"id"`
	Credential      *Credential `json:"credential"`
	ExpectedVersion string      `json:"expectedVersion"`
}

// UpdateCredentialRequest is the payload for updating a credential.
type UpdateCredentialRequest struct {
	Credential      *Credential `json:"credential"`
	ExpectedVersion string      `json:"expectedVersion"`
}

// DeleteCredentialRequest is the payload for deleting a credential.
type DeleteCredentialRequest struct {
	ExpectedVersion string `json:"expectedVersion"`
}

// MutationResponse reports the outcome of a mutation. On success Version is
// the new version token; on conflict it is the version currently stored so
// the caller can re-read and retry.
type MutationResponse struct {
	Message string `json:"message"`
	Version string `json:"version"`
}

// ConflictResponse signals that the document changed since the caller read
// it. Nothing was written.
type ConflictResponse struct {
	Error          string `json:"error"`
	CurrentVersion string `json:"currentVersion"`
}

// RunTestRequest is the payload for the test-execution entry point.
type RunTestRequest struct {
	Config          *TestConfig `json:"config,omitempty"` // override; stored config used when nil
	SaveResult      bool        `json:"saveResult"`
	ExpectedVersion string      `json:"expectedVersion,omitempty"`
	Confirmed       bool        `json:"confirmed"`
}

// RunTestResponse carries the test outcome plus the save outcome when
// saveResult was requested. Saved is one of "saved", "conflict" or "" when
// no save was requested; CurrentVersion is set alongside either.
type RunTestResponse struct {
	Result         *TestResult `json:"result"`
	Saved          string      `json:"saved,omitempty"`
	CurrentVersion string      `json:"currentVersion,omitempty"`
}

// ValidateCommandRequest is the payload for the script-test injection guard.
type ValidateCommandRequest struct {
	Command string `json:"command"`
}

// GenerateRequest is the payload for the generation entry points. The
// credential id arrives in the path; the rest is metadata the prompt is
// built from.
type GenerateRequest struct {
	Save            bool   `json:"save"`
	ExpectedVersion string `json:"expectedVersion,omitempty"`
}

// GenerateTestResponse is the generation entry point payload for test configs.
type GenerateTestResponse struct {
	Config         *GeneratedTestConfig `json:"config"`
	Attempts       int                  `json:"attempts"`
	Saved          string               `json:"saved,omitempty"`
	CurrentVersion string               `json:"currentVersion,omitempty"`
}

// RotationInfoResponse is the generation entry point payload for rotation info.
type RotationInfoResponse struct {
	Rotation *RotationInfo `json:"rotation"`
	Attempts int           `json:"attempts"`
}
