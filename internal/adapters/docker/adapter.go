// Package docker implements the workbench runtime on the Docker Engine API.
package docker

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/filters"
	"github.com/docker/docker/api/types/network"
	"github.com/docker/docker/client"
	"github.com/docker/go-connections/nat"
	ocispec "github.com/opencontainers/image-spec/specs-go/v1"
	"github.com/rs/zerolog/log"

	"github.com/lanternhq/lantern/internal/core/domain"
)

// Containers launched by this service carry these labels so List only ever
// reports our own workbenches.
const (
	labelWorkbench = "lantern.workbench"
	labelPort      = "lantern.port"
)

// apiClient is the slice of the Docker Engine API the adapter uses,
// satisfied by *client.Client.
type apiClient interface {
	ContainerList(ctx context.Context, options types.ContainerListOptions) ([]types.Container, error)
	ContainerCreate(ctx context.Context, config *container.Config, hostConfig *container.HostConfig, networkingConfig *network.NetworkingConfig, platform *ocispec.Platform, containerName string) (container.CreateResponse, error)
	ContainerStart(ctx context.Context, containerID string, options types.ContainerStartOptions) error
	ContainerStop(ctx context.Context, containerID string, options container.StopOptions) error
	ContainerRemove(ctx context.Context, containerID string, options types.ContainerRemoveOptions) error
	ContainerInspect(ctx context.Context, containerID string) (types.ContainerJSON, error)
	ContainerLogs(ctx context.Context, containerID string, options types.ContainerLogsOptions) (io.ReadCloser, error)
	ImagePull(ctx context.Context, refStr string, options types.ImagePullOptions) (io.ReadCloser, error)
}

// Adapter implements ports.WorkbenchRuntime using the Docker SDK.
type Adapter struct {
	cli         apiClient
	stopTimeout time.Duration
}

// NewAdapter creates a runtime connected to the daemon from the environment.
func NewAdapter(stopTimeout time.Duration) (*Adapter, error) {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, fmt.Errorf("failed to create docker client: %w", err)
	}
	return &Adapter{cli: cli, stopTimeout: stopTimeout}, nil
}

// List returns all workbench containers, running or exited.
func (a *Adapter) List(ctx context.Context) ([]domain.Workbench, error) {
	containers, err := a.cli.ContainerList(ctx, types.ContainerListOptions{
		All:     true,
		Filters: filters.NewArgs(filters.Arg("label", labelWorkbench)),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list workbenches: %w", err)
	}

	var result []domain.Workbench
	for _, c := range containers {
		name := c.Labels[labelWorkbench]
		if name == "" && len(c.Names) > 0 {
			name = strings.TrimPrefix(c.Names[0], "/")
		}

		wb := domain.Workbench{
			ID:     shortID(c.ID),
			Name:   name,
			Image:  c.Image,
			Status: c.Status,
			State:  c.State,
			Port:   labelPortValue(c.Labels),
		}
		for _, p := range c.Ports {
			if p.PublicPort != 0 {
				wb.HostPort = int(p.PublicPort)
				break
			}
		}
		result = append(result, wb)
	}
	return result, nil
}

// Launch creates and starts a workbench container from image, publishing the
// blueprint port on all host interfaces at the same number. A port already in
// use surfaces as the daemon's bind error.
func (a *Adapter) Launch(ctx context.Context, image string, bp domain.Blueprint, name string) (domain.Workbench, error) {
	exposed, bindings, err := portConfig(bp.Port)
	if err != nil {
		return domain.Workbench{}, err
	}

	resp, err := a.cli.ContainerCreate(ctx, &container.Config{
		Image:        image,
		WorkingDir:   bp.WorkDir,
		ExposedPorts: exposed,
		Labels: map[string]string{
			labelWorkbench: name,
			labelPort:      strconv.Itoa(bp.Port),
		},
	}, &container.HostConfig{
		PortBindings: bindings,
	}, nil, nil, name)
	if err != nil {
		return domain.Workbench{}, fmt.Errorf("failed to create workbench: %w", err)
	}

	if err := a.cli.ContainerStart(ctx, resp.ID, types.ContainerStartOptions{}); err != nil {
		// Remove the container so a bind failure does not leave a dead
		// workbench behind in List.
		if rmErr := a.cli.ContainerRemove(ctx, resp.ID, types.ContainerRemoveOptions{Force: true}); rmErr != nil {
			log.Warn().Err(rmErr).Str("id", shortID(resp.ID)).Msg("failed to remove workbench after start failure")
		}
		return domain.Workbench{}, fmt.Errorf("failed to start workbench: %w", err)
	}
	log.Info().Str("id", shortID(resp.ID)).Str("name", name).Str("image", image).Int("port", bp.Port).Msg("workbench started")

	return a.Inspect(ctx, resp.ID)
}

// Pull fetches a prebuilt image, blocking until the daemon has it.
func (a *Adapter) Pull(ctx context.Context, image string) error {
	reader, err := a.cli.ImagePull(ctx, image, types.ImagePullOptions{})
	if err != nil {
		return fmt.Errorf("failed to pull image: %w", err)
	}
	defer reader.Close()
	// The pull completes only once the stream is drained.
	if _, err := io.Copy(io.Discard, reader); err != nil {
		return fmt.Errorf("failed to pull image: %w", err)
	}
	return nil
}

// Inspect returns the current state of one workbench.
func (a *Adapter) Inspect(ctx context.Context, id string) (domain.Workbench, error) {
	info, err := a.cli.ContainerInspect(ctx, id)
	if err != nil {
		if client.IsErrNotFound(err) {
			return domain.Workbench{}, domain.ErrNotFound
		}
		return domain.Workbench{}, fmt.Errorf("failed to inspect workbench: %w", err)
	}

	wb := domain.Workbench{
		ID:    shortID(info.ID),
		Name:  strings.TrimPrefix(info.Name, "/"),
		Image: info.Config.Image,
		Port:  labelPortValue(info.Config.Labels),
	}
	if n := info.Config.Labels[labelWorkbench]; n != "" {
		wb.Name = n
	}
	if info.State != nil {
		wb.State = info.State.Status
		wb.Status = info.State.Status
	}
	if info.NetworkSettings != nil {
		wb.IPAddress = info.NetworkSettings.IPAddress
		wb.HostPort = publishedPort(info.NetworkSettings.Ports, wb.Port)
	}
	return wb, nil
}

// Stop stops a running workbench, giving the server a grace period.
func (a *Adapter) Stop(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, a.stopTimeout+5*time.Second)
	defer cancel()

	seconds := int(a.stopTimeout.Seconds())
	err := a.cli.ContainerStop(ctx, id, container.StopOptions{Timeout: &seconds})
	if err != nil {
		if client.IsErrNotFound(err) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("failed to stop workbench: %w", err)
	}
	log.Info().Str("id", id).Msg("workbench stopped")
	return nil
}

// Remove deletes a stopped workbench container.
func (a *Adapter) Remove(ctx context.Context, id string) error {
	err := a.cli.ContainerRemove(ctx, id, types.ContainerRemoveOptions{})
	if err != nil {
		if client.IsErrNotFound(err) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("failed to remove workbench: %w", err)
	}
	return nil
}

// Logs returns a stream of the workbench server output.
func (a *Adapter) Logs(ctx context.Context, id string) (io.ReadCloser, error) {
	logs, err := a.cli.ContainerLogs(ctx, id, types.ContainerLogsOptions{
		ShowStdout: true,
		ShowStderr: true,
		Timestamps: true,
	})
	if err != nil {
		if client.IsErrNotFound(err) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to read workbench logs: %w", err)
	}
	return logs, nil
}

// portConfig converts the blueprint port to the daemon's exposed-port set and
// host bindings: one TCP port, bound on 0.0.0.0 at the same number.
func portConfig(port int) (nat.PortSet, nat.PortMap, error) {
	p, err := nat.NewPort("tcp", strconv.Itoa(port))
	if err != nil {
		return nil, nil, fmt.Errorf("invalid port %d: %w", port, err)
	}
	exposed := nat.PortSet{p: struct{}{}}
	bindings := nat.PortMap{
		p: []nat.PortBinding{{HostIP: "0.0.0.0", HostPort: strconv.Itoa(port)}},
	}
	return exposed, bindings, nil
}

// publishedPort finds the host port the container port is bound to.
func publishedPort(ports nat.PortMap, containerPort int) int {
	for p, bindings := range ports {
		if p.Int() != containerPort {
			continue
		}
		for _, b := range bindings {
			if hp, err := strconv.Atoi(b.HostPort); err == nil && hp != 0 {
				return hp
			}
		}
	}
	return 0
}

func labelPortValue(labels map[string]string) int {
	port, _ := strconv.Atoi(labels[labelPort])
	return port
}

func shortID(id string) string {
	if len(id) > 12 {
		return id[:12]
	}
	return id
}
