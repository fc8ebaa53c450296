package commands

import (
	"fmt"
	"os"

	"github.com/DreamStack-us/redisTOON/pkg/toon"
)

// localDocument wraps a TOON document stored in a single file, for commands
// running without a server.
type localDocument struct {
	path string
	doc  *toon.Document
}

func openLocalDocument(path string) (*localDocument, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	doc, err := toon.Parse(string(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &localDocument{path: path, doc: doc}, nil
}

func (d *localDocument) save() error {
	if err := os.WriteFile(d.path, []byte(d.doc.Encode()), 0644); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	return nil
}

// fragment returns the document (empty path or "$") or the value at path as
// TOON text.
func (d *localDocument) fragment(path string) (string, error) {
	if path == "" || path == "$" {
		return d.doc.Encode(), nil
	}
	v, err := d.doc.Get(path)
	if err != nil {
		return "", err
	}
	return toon.Encode(v), nil
}
