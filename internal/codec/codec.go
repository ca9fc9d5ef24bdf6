// Package codec reads and writes project and module records as YAML.
// Decoding is strict: unknown keys are rejected.
package codec

import (
	"bytes"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"fpm/internal/modules"
	"fpm/internal/project"
)

const indent = 2

// EncodeProject serializes a project record.
func EncodeProject(p *project.Project) ([]byte, error) {
	return encode(p)
}

// DecodeProject parses a project record. The result is normalized and
// validated.
func DecodeProject(data []byte) (*project.Project, error) {
	var p project.Project
	if err := decode(data, &p); err != nil {
		return nil, err
	}
	if p.ID == "" {
		return nil, fmt.Errorf("project record has no id")
	}
	p.Normalize()
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

// EncodeModule serializes a module record.
func EncodeModule(m *modules.Module) ([]byte, error) {
	return encode(m)
}

// DecodeModule parses a module record.
func DecodeModule(data []byte) (*modules.Module, error) {
	var m modules.Module
	if err := decode(data, &m); err != nil {
		return nil, err
	}
	if m.FlatpakModule.Name == "" {
		return nil, fmt.Errorf("module record has no flatpak_module.name")
	}
	return &m, nil
}

func encode(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(indent)
	if err := enc.Encode(v); err != nil {
		return nil, fmt.Errorf("failed to encode record: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("failed to encode record: %w", err)
	}
	return buf.Bytes(), nil
}

func decode(data []byte, v interface{}) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(v); err != nil {
		if err == io.EOF {
			return fmt.Errorf("record is empty")
		}
		return fmt.Errorf("failed to decode record: %w", err)
	}
	return nil
}
