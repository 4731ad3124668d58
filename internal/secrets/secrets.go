// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads API credentials from a directory of plain-text
// files. Each file is one secret: the filename is the key and the trimmed
// contents are the value.
//
// Supported key files: ncbi-api-key, contact-email. Environment
// variables take precedence over key files, so a CI run can inject
// NCBI_API_KEY without touching the secrets directory.
package secrets

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Key names recognized in the secrets directory.
const (
	KeyNCBIAPIKey   = "ncbi-api-key"
	KeyContactEmail = "contact-email"
)

// envOverrides maps key names to the environment variable that trumps
// the key file.
var envOverrides = map[string]string{
	KeyNCBIAPIKey:   "NCBI_API_KEY",
	KeyContactEmail: "FINDIT_CONTACT_EMAIL",
}

// Store holds loaded secrets by key name.
type Store map[string]string

// Load reads all files in dir into a Store. A missing directory is not
// an error; Load returns an empty Store. Unreadable files produce a
// warning on stderr but do not abort.
func Load(dir string) (Store, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return Store{}, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	s := make(Store)
	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: could not read secret %s: %v\n", entry.Name(), err)
			continue
		}

		value := strings.TrimSpace(string(data))
		if value != "" {
			s[entry.Name()] = value
		}
	}

	return s, nil
}

// Get returns the value for key, preferring the key's environment
// variable override when set. An unknown key with no value returns "".
func (s Store) Get(key string) string {
	if env := envOverrides[key]; env != "" {
		if v := os.Getenv(env); v != "" {
			return v
		}
	}
	return s[key]
}
