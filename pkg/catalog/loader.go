// Package catalog provides the built-in report reasons and loaders for
// overriding them from YAML or generic decoded data.
package catalog

import (
	"fmt"
	"io"
	"os"
	"reflect"

	"github.com/aretw0/reportflow/pkg/domain"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// Document is the on-disk shape of a catalog file.
type Document struct {
	Categories []domain.Category `mapstructure:"categories"`
}

// Decode converts generic data (decoded YAML/JSON) into a validated Catalog.
// Unknown keys are rejected so that typos in overrides fail at load time.
// Message references may be written as a bare string or as {id: ...}.
func Decode(raw any) (*domain.Catalog, error) {
	var doc Document
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       messageRefHook,
		ErrorUnused:      true,
		WeaklyTypedInput: true,
		Result:           &doc,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create decoder: %w", err)
	}
	if err := decoder.Decode(raw); err != nil {
		return nil, fmt.Errorf("failed to decode catalog: %w", err)
	}
	return domain.NewCatalog(doc.Categories)
}

// LoadYAML reads a catalog document from r.
func LoadYAML(r io.Reader) (*domain.Catalog, error) {
	var raw map[string]any
	if err := yaml.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("failed to parse catalog yaml: %w", err)
	}
	return Decode(raw)
}

// LoadFile reads a catalog document from a YAML file.
func LoadFile(path string) (*domain.Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog: %w", err)
	}
	defer f.Close()
	return LoadYAML(f)
}

// MarshalYAML renders a catalog in the format LoadYAML reads.
func MarshalYAML(c *domain.Catalog) ([]byte, error) {
	return yaml.Marshal(struct {
		Categories []domain.Category `yaml:"categories"`
	}{Categories: c.Categories()})
}

var messageRefType = reflect.TypeOf(domain.MessageRef{})

func messageRefHook(from reflect.Type, to reflect.Type, data any) (any, error) {
	if to != messageRefType || from.Kind() != reflect.String {
		return data, nil
	}
	return domain.MessageRef{ID: reflect.ValueOf(data).String()}, nil
}
