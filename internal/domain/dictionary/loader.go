package dictionary

import (
	"bytes"
	"embed"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"marketpulse/pkg/errors"
)

//go:embed assets/default.yaml
var assets embed.FS

const defaultAsset = "assets/default.yaml"

// Format is a dictionary document encoding
type Format string

const (
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
	FormatJSON Format = "json"
)

// FormatFromPath picks the format from a file extension
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	case ".json":
		return FormatJSON, nil
	default:
		return "", errors.NewConfigError("unsupported dictionary extension "+filepath.Ext(path), nil)
	}
}

// Parse decodes and validates a document. Unknown fields are rejected.
func Parse(data []byte, format Format) (*Document, error) {
	var doc Document
	var err error

	switch format {
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		err = dec.Decode(&doc)
	case FormatTOML:
		dec := toml.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		err = dec.Decode(&doc)
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		err = dec.Decode(&doc)
	default:
		return nil, errors.NewConfigError("unsupported dictionary format "+string(format), nil)
	}
	if err != nil {
		return nil, errors.NewConfigError("malformed dictionary document", err)
	}

	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}

// Load reads a document from disk, choosing the decoder by extension
func Load(path string) (*Document, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.NewConfigError("read dictionary "+path, err)
	}
	return Parse(data, format)
}

// LoadEmbedded returns the built-in default dictionary
func LoadEmbedded() (*Document, error) {
	data, err := assets.ReadFile(defaultAsset)
	if err != nil {
		return nil, errors.NewConfigError("read embedded dictionary", err)
	}
	return Parse(data, FormatYAML)
}

// DefaultDocument returns the raw embedded default dictionary (YAML)
func DefaultDocument() []byte {
	data, err := assets.ReadFile(defaultAsset)
	if err != nil {
		panic("embedded dictionary missing: " + err.Error())
	}
	return data
}
