// Package config parses and validates the project specification YAML
// into entities.ProjectConfiguration. This is distinct
// from internal/adapters/hostconfig, which loads the generator binary's own
// TOML settings rather than the project being generated.
package config

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/rustgen-dev/rustgen/internal/core/entities"
	"github.com/rustgen-dev/rustgen/internal/core/usecases"
)

var _ usecases.ProjectConfigLoader = Loader{}

// Loader implements usecases.ProjectConfigLoader over a YAML project file.
type Loader struct{}

// NewLoader constructs a project configuration Loader.
func NewLoader() Loader { return Loader{} }

func (Loader) Load(ctx context.Context, path string) (entities.ProjectConfiguration, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return entities.ProjectConfiguration{}, fmt.Errorf("reading project config %s: %w", path, err)
	}

	var wire yamlProjectConfig
	if err := yaml.Unmarshal(data, &wire); err != nil {
		return entities.ProjectConfiguration{}, &entities.InvalidConfigError{Rule: "yaml", Field: "(root)", Message: err.Error()}
	}

	config, err := wire.toEntity()
	if err != nil {
		return entities.ProjectConfiguration{}, err
	}

	if err := config.Validate(); err != nil {
		return entities.ProjectConfiguration{}, err
	}
	return config, nil
}
