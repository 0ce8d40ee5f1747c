package ports

import (
	"context"

	"github.com/lanternhq/lantern/internal/core/domain"
)

// BuildOptions controls a single image build.
type BuildOptions struct {
	// Tag is the name the built image is tagged with.
	Tag string
	// SeedRepoURL, when set, is a git repository whose contents are copied
	// into the blueprint workdir. A requirements.txt at the repository root
	// extends the blueprint packages.
	SeedRepoURL string
}

// ImageBuilder defines operations for building workbench images from a blueprint.
type ImageBuilder interface {
	// Build renders the blueprint to a Dockerfile, assembles a build context,
	// and builds an image through the container daemon.
	// It returns the tag of the built image or an error.
	Build(ctx context.Context, bp domain.Blueprint, opts BuildOptions) (string, error)
}
