// Package blueprint loads workbench blueprints from manifest files and
// renders them to Dockerfiles.
package blueprint

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/lanternhq/lantern/internal/core/domain"
)

// Manifest is the on-disk shape of a blueprint override file. Every field is
// optional; unset fields keep their default.
type Manifest struct {
	BaseImage  string   `yaml:"base_image"`
	WorkDir    string   `yaml:"workdir"`
	Packages   []string `yaml:"packages"`
	Port       int      `yaml:"port"`
	Entrypoint []string `yaml:"entrypoint"`
}

// Load reads a manifest file and returns the default blueprint with the
// manifest's overrides applied and validated.
func Load(path string) (domain.Blueprint, error) {
	f, err := os.Open(path)
	if err != nil {
		return domain.Blueprint{}, fmt.Errorf("failed to open manifest: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

// LoadOrDefault behaves like Load, except an empty path or a missing file
// yields the unmodified default blueprint.
func LoadOrDefault(path string) (domain.Blueprint, error) {
	if path == "" {
		return domain.DefaultBlueprint(), nil
	}
	bp, err := Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return domain.DefaultBlueprint(), nil
	}
	return bp, err
}

// Parse decodes a manifest from r and applies it over the stock blueprint.
func Parse(r io.Reader) (domain.Blueprint, error) {
	return ParseOver(r, domain.DefaultBlueprint())
}

// ParseOver decodes a manifest from r and applies it over base. Unknown keys
// are rejected so a typo in a manifest cannot silently fall back to a
// default. Malformed manifests wrap ErrInvalidBlueprint, same as override
// values that break an invariant.
func ParseOver(r io.Reader, base domain.Blueprint) (domain.Blueprint, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var m Manifest
	if err := dec.Decode(&m); err != nil && !errors.Is(err, io.EOF) {
		return domain.Blueprint{}, fmt.Errorf("%w: failed to decode manifest: %v", domain.ErrInvalidBlueprint, err)
	}

	bp := m.apply(base)
	if err := bp.Validate(); err != nil {
		return domain.Blueprint{}, err
	}
	return bp, nil
}

func (m Manifest) apply(bp domain.Blueprint) domain.Blueprint {
	if m.BaseImage != "" {
		bp.BaseImage = m.BaseImage
	}
	if m.WorkDir != "" {
		bp.WorkDir = m.WorkDir
	}
	if len(m.Packages) > 0 {
		bp.Packages = m.Packages
	}
	if m.Port != 0 {
		bp.Port = m.Port
		// A port override without an explicit entrypoint moves the stock
		// server to the new port.
		if len(m.Entrypoint) == 0 {
			bp.Entrypoint = domain.NotebookEntrypoint(m.Port)
		}
	}
	if len(m.Entrypoint) > 0 {
		bp.Entrypoint = m.Entrypoint
	}
	return bp
}
