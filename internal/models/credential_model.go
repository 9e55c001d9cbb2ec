package models

// Credential represents one stored secret entry. Beyond Type and Service the
// shape is deliberately loose: a credential carries whichever value fields
// apply to its service, and most entries populate only one or two of them.
type Credential struct {
	Type    string `json:"type"`
	Service string `json:"service"`

	// Secret material. Optional and mutually non-exclusive.
	Value          string `json:"value,omitempty"`
	BearerToken    string `json:"bearer_token,omitempty"`
	APIKey         string `json:"api_key,omitempty"`
	ClientID       string `json:"client_id,omitempty"`
	ClientSecret   string `json:"client_secret,omitempty"`
	ServiceRoleKey string `json:"service_role_key,omitempty"`
	URL            string `json:"url,omitempty"`

	// Metadata.
	Account string   `json:"account,omitempty"`
	Email   string   `json:"email,omitempty"`
	Project string   `json:"project,omitempty"`
	Notes   string   `json:"notes,omitempty"`
	UsedBy  []string `json:"used_by,omitempty"`

	// Lifecycle timestamps (RFC 3339 strings).
	Created string `json:"created,omitempty"`
	Expires string `json:"expires,omitempty"`

	TestConfig     *TestConfig `json:"testConfig,omitempty"`
	LastTestResult *TestResult `json:"lastTestResult,omitempty"`
}

// SecretValue returns the field holding the secret material used for
// placeholder substitution, preferring the most specific populated field.
func (c *Credential) SecretValue() (string, bool) {
	for _, v := range []string{c.BearerToken, c.APIKey, c.ClientSecret, c.ServiceRoleKey, c.Value, c.URL} {
		if v != "" {
			return v, true
		}
	}
	return "", false
}

// Validate checks the minimal schema a credential must satisfy.
func (c *Credential) Validate() error {
	if c.Type == "" {
		return ErrMissingType
	}
	if c.Service == "" {
		return ErrMissingService
	}
	return nil
}
