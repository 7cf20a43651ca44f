package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/lorrc/service-desk-analytics/internal/core/domain"
)

// LoadPolicy reads the analytics thresholds from a YAML file. Keys absent
// from the file keep their defaults. An empty path returns the defaults.
func LoadPolicy(path string) (domain.Policy, error) {
	if path == "" {
		return domain.DefaultPolicy(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return domain.Policy{}, fmt.Errorf("read policy file: %w", err)
	}
	return ParsePolicy(data)
}

// ParsePolicy overlays YAML onto the default policy and validates the result.
func ParsePolicy(data []byte) (domain.Policy, error) {
	policy := domain.DefaultPolicy()

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&policy); err != nil && !errors.Is(err, io.EOF) {
		return domain.Policy{}, fmt.Errorf("parse policy file: %w", err)
	}

	if err := policy.Validate(); err != nil {
		return domain.Policy{}, err
	}
	return policy, nil
}
