package domain

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// DefaultPort is the port the stock notebook server listens on.
const DefaultPort = 8888

// Blueprint describes a workbench image: the base runtime it starts from, the
// directory the server runs in, the Python packages layered on top, the single
// port the server listens on, and the command the container executes at start.
// All fields are fixed at build time.
type Blueprint struct {
	BaseImage  string   `yaml:"base_image" json:"base_image"`
	WorkDir    string   `yaml:"workdir" json:"workdir"`
	Packages   []string `yaml:"packages" json:"packages"`
	Port       int      `yaml:"port" json:"port"`
	Entrypoint []string `yaml:"entrypoint" json:"entrypoint"`
}

// DefaultBlueprint returns the stock research workbench: a notebook server
// plus a numerical library and a tokenizer, bound on all interfaces.
func DefaultBlueprint() Blueprint {
	return Blueprint{
		BaseImage:  "python:3.11-slim",
		WorkDir:    "/app",
		Packages:   []string{"jupyter", "numpy", "tokenizers"},
		Port:       DefaultPort,
		Entrypoint: NotebookEntrypoint(DefaultPort),
	}
}

// NotebookEntrypoint builds the notebook server start command for the given
// port: bind all interfaces, fixed port, headless, root allowed.
func NotebookEntrypoint(port int) []string {
	return []string{
		"jupyter", "notebook",
		"--ip=0.0.0.0",
		fmt.Sprintf("--port=%d", port),
		"--no-browser",
		"--allow-root",
	}
}

// Pip requirement specifiers: name, optional extras, optional version pin.
// Anything with whitespace or shell metacharacters is rejected outright since
// packages end up inside a RUN instruction.
var packagePattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*(\[[A-Za-z0-9._,-]+\])?([=<>!~]=?[A-Za-z0-9.*+!-]+)?$`)

// Validate checks the blueprint invariants. Violations wrap
// ErrInvalidBlueprint.
func (b Blueprint) Validate() error {
	if strings.TrimSpace(b.BaseImage) == "" {
		return fmt.Errorf("%w: base image is required", ErrInvalidBlueprint)
	}
	if !strings.HasPrefix(b.WorkDir, "/") {
		return fmt.Errorf("%w: workdir %q must be an absolute path", ErrInvalidBlueprint, b.WorkDir)
	}
	if len(b.Packages) == 0 {
		return fmt.Errorf("%w: at least one package is required", ErrInvalidBlueprint)
	}
	for _, p := range b.Packages {
		if !packagePattern.MatchString(p) {
			return fmt.Errorf("%w: invalid package specifier %q", ErrInvalidBlueprint, p)
		}
	}
	if b.Port < 1 || b.Port > 65535 {
		return fmt.Errorf("%w: port %d out of range", ErrInvalidBlueprint, b.Port)
	}
	if len(b.Entrypoint) == 0 {
		return fmt.Errorf("%w: entrypoint is required", ErrInvalidBlueprint)
	}
	// The server must listen where the blueprint says it does.
	for _, arg := range b.Entrypoint {
		if v, ok := strings.CutPrefix(arg, "--port="); ok {
			if v != strconv.Itoa(b.Port) {
				return fmt.Errorf("%w: entrypoint port %s does not match blueprint port %d", ErrInvalidBlueprint, v, b.Port)
			}
		}
	}
	return nil
}
