// Package codec serializes inventory databases to interchange formats.
//
// A Document carries one database name together with its datasets, in
// the order the store returns them. JSON output uses the canonical
// inventory field names; YAML output uses snake_case keys.
package codec

import (
	"fmt"
	"io"

	"hsclci/internal/domain"
)

// Document is the serialized form of one inventory database
type Document struct {
	Database string            `json:"database"`
	Datasets []*domain.Dataset `json:"datasets"`
}

// Exporter writes a document to an output stream
type Exporter interface {
	Export(doc *Document, w io.Writer) error
	Format() string
}

// Importer reads a document back from an input stream
type Importer interface {
	Parse(r io.Reader) (*Document, error)
	Format() string
}

// ForFormat returns the exporter registered for a format name
func ForFormat(format string) (Exporter, error) {
	switch format {
	case "json":
		return NewJSONCodec(), nil
	case "yaml", "yml":
		return NewYAMLCodec(), nil
	default:
		return nil, fmt.Errorf("unknown export format %q", format)
	}
}
