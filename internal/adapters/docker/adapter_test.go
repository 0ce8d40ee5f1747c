package docker

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/network"
	"github.com/docker/go-connections/nat"
	ocispec "github.com/opencontainers/image-spec/specs-go/v1"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lanternhq/lantern/internal/core/domain"
)

// fakeClient stubs the slice of the Engine API the adapter talks to.
type fakeClient struct {
	created    []*container.Config
	hostConfig *container.HostConfig
	started    []string
	removed    []types.ContainerRemoveOptions
	startErr   error
}

func (f *fakeClient) ContainerList(ctx context.Context, options types.ContainerListOptions) ([]types.Container, error) {
	return nil, nil
}

func (f *fakeClient) ContainerCreate(ctx context.Context, config *container.Config, hostConfig *container.HostConfig, networkingConfig *network.NetworkingConfig, platform *ocispec.Platform, containerName string) (container.CreateResponse, error) {
	f.created = append(f.created, config)
	f.hostConfig = hostConfig
	return container.CreateResponse{ID: "0123456789abcdef"}, nil
}

func (f *fakeClient) ContainerStart(ctx context.Context, containerID string, options types.ContainerStartOptions) error {
	if f.startErr != nil {
		return f.startErr
	}
	f.started = append(f.started, containerID)
	return nil
}

func (f *fakeClient) ContainerStop(ctx context.Context, containerID string, options container.StopOptions) error {
	return nil
}

func (f *fakeClient) ContainerRemove(ctx context.Context, containerID string, options types.ContainerRemoveOptions) error {
	f.removed = append(f.removed, options)
	return nil
}

func (f *fakeClient) ContainerInspect(ctx context.Context, containerID string) (types.ContainerJSON, error) {
	return types.ContainerJSON{
		ContainerJSONBase: &types.ContainerJSONBase{
			ID:    containerID,
			Name:  "/research",
			State: &types.ContainerState{Status: "running"},
		},
		Config: &container.Config{
			Image:  "lantern/research:latest",
			Labels: map[string]string{labelWorkbench: "research", labelPort: "8888"},
		},
		NetworkSettings: &types.NetworkSettings{
			NetworkSettingsBase: types.NetworkSettingsBase{
				Ports: nat.PortMap{"8888/tcp": []nat.PortBinding{{HostIP: "0.0.0.0", HostPort: "8888"}}},
			},
			DefaultNetworkSettings: types.DefaultNetworkSettings{IPAddress: "172.17.0.2"},
		},
	}, nil
}

func (f *fakeClient) ContainerLogs(ctx context.Context, containerID string, options types.ContainerLogsOptions) (io.ReadCloser, error) {
	return nil, nil
}

func (f *fakeClient) ImagePull(ctx context.Context, refStr string, options types.ImagePullOptions) (io.ReadCloser, error) {
	return nil, nil
}

func TestLaunch_PublishesBlueprintPort(t *testing.T) {
	cli := &fakeClient{}
	a := &Adapter{cli: cli, stopTimeout: 10 * time.Second}

	wb, err := a.Launch(context.Background(), "lantern/research:latest", domain.DefaultBlueprint(), "research")
	require.NoError(t, err)

	require.Len(t, cli.created, 1)
	port := nat.Port("8888/tcp")
	assert.Contains(t, cli.created[0].ExposedPorts, port)
	assert.Equal(t, "research", cli.created[0].Labels[labelWorkbench])
	require.NotNil(t, cli.hostConfig)
	require.Len(t, cli.hostConfig.PortBindings[port], 1)
	assert.Equal(t, "0.0.0.0", cli.hostConfig.PortBindings[port][0].HostIP)

	assert.Equal(t, []string{"0123456789abcdef"}, cli.started)
	assert.Equal(t, "running", wb.State)
	assert.Equal(t, 8888, wb.HostPort)
	assert.Equal(t, "172.17.0.2", wb.IPAddress)
}

func TestLaunch_StartFailureRemovesContainer(t *testing.T) {
	cli := &fakeClient{startErr: errors.New("port is already allocated")}
	a := &Adapter{cli: cli, stopTimeout: 10 * time.Second}

	_, err := a.Launch(context.Background(), "lantern/research:latest", domain.DefaultBlueprint(), "research")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to start workbench")

	// The created container must not linger in the workbench list.
	require.Len(t, cli.removed, 1)
	assert.True(t, cli.removed[0].Force)
}

func TestPortConfig(t *testing.T) {
	exposed, bindings, err := portConfig(8888)
	require.NoError(t, err)

	port := nat.Port("8888/tcp")
	require.Len(t, exposed, 1)
	assert.Contains(t, exposed, port)

	require.Len(t, bindings, 1)
	require.Len(t, bindings[port], 1)
	assert.Equal(t, "0.0.0.0", bindings[port][0].HostIP)
	assert.Equal(t, "8888", bindings[port][0].HostPort)
}

func TestPublishedPort(t *testing.T) {
	ports := nat.PortMap{
		"8888/tcp": []nat.PortBinding{{HostIP: "0.0.0.0", HostPort: "8888"}},
		"6006/tcp": []nat.PortBinding{{HostIP: "0.0.0.0", HostPort: "49153"}},
	}

	assert.Equal(t, 8888, publishedPort(ports, 8888))
	assert.Equal(t, 49153, publishedPort(ports, 6006))
	assert.Equal(t, 0, publishedPort(ports, 7777))
	assert.Equal(t, 0, publishedPort(nil, 8888))
}

func TestLabelPortValue(t *testing.T) {
	assert.Equal(t, 8888, labelPortValue(map[string]string{labelPort: "8888"}))
	assert.Equal(t, 0, labelPortValue(map[string]string{labelPort: "garbage"}))
	assert.Equal(t, 0, labelPortValue(nil))
}

func TestShortID(t *testing.T) {
	assert.Equal(t, "0123456789ab", shortID("0123456789abcdef0123"))
	assert.Equal(t, "short", shortID("short"))
}
