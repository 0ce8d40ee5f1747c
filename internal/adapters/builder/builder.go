// Package builder builds workbench images from blueprints through the Docker
// daemon.
package builder

import (
	"archive/tar"
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/client"
	"github.com/docker/docker/pkg/archive"
	"github.com/docker/docker/pkg/jsonmessage"
	"github.com/go-git/go-git/v5"
	"github.com/rs/zerolog/log"

	"github.com/lanternhq/lantern/internal/blueprint"
	"github.com/lanternhq/lantern/internal/core/domain"
	"github.com/lanternhq/lantern/internal/core/ports"
)

const dockerfileName = "Dockerfile"

// Adapter implements ports.ImageBuilder using the Docker SDK.
type Adapter struct {
	cli *client.Client
}

// NewAdapter creates a builder connected to the daemon from the environment.
func NewAdapter() (*Adapter, error) {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, fmt.Errorf("failed to create docker client: %w", err)
	}
	return &Adapter{cli: cli}, nil
}

// Build renders bp to a Dockerfile, assembles the build context, and builds
// the image. A failed build returns the daemon's error; nothing is launched
// on top of it.
func (a *Adapter) Build(ctx context.Context, bp domain.Blueprint, opts ports.BuildOptions) (string, error) {
	if opts.Tag == "" {
		return "", fmt.Errorf("image tag is required")
	}

	buildCtx, err := a.buildContext(ctx, bp, opts)
	if err != nil {
		return "", err
	}
	defer buildCtx.Close()

	log.Info().Str("tag", opts.Tag).Str("base", bp.BaseImage).Msg("building workbench image")
	resp, err := a.cli.ImageBuild(ctx, buildCtx, types.ImageBuildOptions{
		Tags:       []string{opts.Tag},
		Dockerfile: dockerfileName,
		Remove:     true,
	})
	if err != nil {
		return "", fmt.Errorf("failed to build image: %w", err)
	}
	defer resp.Body.Close()

	// The daemon reports build failures inside the JSON stream, not in the
	// response status.
	if err := jsonmessage.DisplayJSONMessagesStream(resp.Body, io.Discard, 0, false, nil); err != nil {
		return "", fmt.Errorf("image build failed: %w", err)
	}

	log.Info().Str("tag", opts.Tag).Msg("workbench image built")
	return opts.Tag, nil
}

// buildContext returns the tar stream sent to the daemon. Without a seed
// repository the context is just the rendered Dockerfile; with one it is the
// clone with the Dockerfile written over whatever the repository carried.
func (a *Adapter) buildContext(ctx context.Context, bp domain.Blueprint, opts ports.BuildOptions) (io.ReadCloser, error) {
	if opts.SeedRepoURL == "" {
		dockerfile, err := blueprint.Render(bp)
		if err != nil {
			return nil, err
		}
		return tarContext(dockerfile)
	}

	tmpDir, err := os.MkdirTemp("", "lantern-build-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp dir: %w", err)
	}
	cleanup := func() { os.RemoveAll(tmpDir) }

	log.Info().Str("repo", opts.SeedRepoURL).Msg("cloning seed repository")
	_, err = git.PlainCloneContext(ctx, tmpDir, false, &git.CloneOptions{
		URL:   opts.SeedRepoURL,
		Depth: 1, // Shallow clone for speed
	})
	if err != nil {
		cleanup()
		return nil, fmt.Errorf("failed to clone repo: %w", err)
	}

	seeded, err := mergeRequirements(bp, filepath.Join(tmpDir, "requirements.txt"))
	if err != nil {
		cleanup()
		return nil, err
	}

	dockerfile, err := blueprint.RenderWorkspace(seeded)
	if err != nil {
		cleanup()
		return nil, err
	}
	if err := os.WriteFile(filepath.Join(tmpDir, dockerfileName), []byte(dockerfile), 0o644); err != nil {
		cleanup()
		return nil, fmt.Errorf("failed to write dockerfile: %w", err)
	}

	tarStream, err := archive.TarWithOptions(tmpDir, &archive.TarOptions{
		ExcludePatterns: []string{".git"},
	})
	if err != nil {
		cleanup()
		return nil, fmt.Errorf("failed to create build context: %w", err)
	}
	return &cleanupReader{ReadCloser: tarStream, cleanup: cleanup}, nil
}

// mergeRequirements appends the specifiers from a requirements.txt to the
// blueprint packages, skipping duplicates. A missing file is not an error.
func mergeRequirements(bp domain.Blueprint, path string) (domain.Blueprint, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return bp, nil
		}
		return domain.Blueprint{}, fmt.Errorf("failed to read requirements: %w", err)
	}
	defer f.Close()

	seen := make(map[string]bool, len(bp.Packages))
	for _, p := range bp.Packages {
		seen[p] = true
	}
	packages := append([]string(nil), bp.Packages...)

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if !seen[line] {
			seen[line] = true
			packages = append(packages, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return domain.Blueprint{}, fmt.Errorf("failed to read requirements: %w", err)
	}

	bp.Packages = packages
	return bp, nil
}

// tarContext packs a single Dockerfile into an in-memory tar stream.
func tarContext(dockerfile string) (io.ReadCloser, error) {
	var buf bytes.Buffer
	tw := tar.NewWriter(&buf)
	hdr := &tar.Header{
		Name: dockerfileName,
		Mode: 0o644,
		Size: int64(len(dockerfile)),
	}
	if err := tw.WriteHeader(hdr); err != nil {
		return nil, fmt.Errorf("failed to create build context: %w", err)
	}
	if _, err := tw.Write([]byte(dockerfile)); err != nil {
		return nil, fmt.Errorf("failed to create build context: %w", err)
	}
	if err := tw.Close(); err != nil {
		return nil, fmt.Errorf("failed to create build context: %w", err)
	}
	return io.NopCloser(&buf), nil
}

// cleanupReader removes the clone directory once the daemon has consumed the
// build context.
type cleanupReader struct {
	io.ReadCloser
	cleanup func()
}

func (r *cleanupReader) Close() error {
	err := r.ReadCloser.Close()
	r.cleanup()
	return err
}
