// Package credfile loads account credentials from a newline-delimited file.
package credfile

import (
	"fmt"
	"os"
	"strings"

	"github.com/ericfisherdev/catsfarm/internal/domain/model"
	"github.com/ericfisherdev/catsfarm/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.CredentialSource = (*File)(nil)

// File is a CredentialSource backed by a file with one credential per line.
type File struct {
	path string
}

// New creates a File source for the given path. The file is not read until Load.
func New(path string) *File {
	return &File{path: path}
}

// Load reads the file once. Carriage returns are stripped and blank lines
// dropped; order is preserved. Other whitespace is part of the credential.
func (f *File) Load() ([]model.Credential, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		return nil, fmt.Errorf("read credentials file: %w", err)
	}

	return Parse(string(data)), nil
}

// Parse splits raw file contents into credentials.
func Parse(raw string) []model.Credential {
	raw = strings.ReplaceAll(raw, "\r", "")

	creds := []model.Credential{}
	for _, line := range strings.Split(raw, "\n") {
		if line == "" {
			continue
		}
		creds = append(creds, model.Credential(line))
	}

	return creds
}
