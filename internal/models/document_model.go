package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// metaKey is the reserved top-level key carrying document metadata. Every
// other top-level key is a credential id.
const metaKey = "_meta"

// DocumentMeta carries the document version token. Updated is replaced with
// a fresh timestamp on every successful mutation and compared, as an opaque
// string, against the version a caller read.
type DocumentMeta struct {
	Updated string `json:"updated"`
}

// SecretsDocument is the whole credentials collection: a mapping from
// credential id to Credential plus the _meta block. On the wire the
// credentials and _meta are siblings in a single JSON object.
type SecretsDocument struct {
	Meta        DocumentMeta
	Credentials map[string]*Credential
}

// NewSecretsDocument returns an empty document with a fresh version token.
func NewSecretsDocument() *SecretsDocument {
	return &SecretsDocument{
		Meta:        DocumentMeta{Updated: NewVersion()},
		Credentials: make(map[string]*Credential),
	}
}

// NewVersion produces a new version token. Tokens are only ever compared for
// equality, but RFC 3339 with nanoseconds keeps them unique in practice and
// human-readable in the stored file.
func NewVersion() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}

// Touch stamps a new version token and returns it.
func (d *SecretsDocument) Touch() string {
	d.Meta.Updated = NewVersion()
	return d.Meta.Updated
}

func (d *SecretsDocument) MarshalJSON() ([]byte, error) {
	out := make(map[string]json.RawMessage, len(d.Credentials)+1)
	meta, err := json.Marshal(d.Meta)
	if err != nil {
		return nil, err
	}
	out[metaKey] = meta
	for id, cred := range d.Credentials {
		if id == metaKey {
			return nil, fmt.Errorf("credential id %q is reserved", metaKey)
		}
		raw, err := json.Marshal(cred)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal credential %q: %w", id, err)
		}
		out[id] = raw
	}
	return json.Marshal(out)
}

func (d *SecretsDocument) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	d.Credentials = make(map[string]*Credential, len(raw))
	for key, value := range raw {
		if key == metaKey {
			if err := json.Unmarshal(value, &d.Meta); err != nil {
				return fmt.Errorf("failed to parse %s block: %w", metaKey, err)
			}
			continue
		}
		var cred Credential
		if err := json.Unmarshal(value, &cred); err != nil {
			return fmt.Errorf("failed to parse credential %q: %w", key, err)
		}
		d.Credentials[key] = &cred
	}
	return nil
}
