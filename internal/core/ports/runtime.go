package ports

import (
	"context"
	"io"

	"github.com/lanternhq/lantern/internal/core/domain"
)

// WorkbenchRuntime defines the core operations for managing workbench
// containers. This interface allows us to switch between Docker, Podman, or
// Kubernetes without changing the business logic.
type WorkbenchRuntime interface {
	// List returns all workbenches launched by this service, running or not.
	List(ctx context.Context) ([]domain.Workbench, error)
	// Launch creates and starts a container from image, publishing the
	// blueprint port on all host interfaces.
	Launch(ctx context.Context, image string, bp domain.Blueprint, name string) (domain.Workbench, error)
	// Pull fetches a prebuilt image from its registry.
	Pull(ctx context.Context, image string) error
	Inspect(ctx context.Context, id string) (domain.Workbench, error)
	Stop(ctx context.Context, id string) error
	Remove(ctx context.Context, id string) error
	Logs(ctx context.Context, id string) (io.ReadCloser, error)
}
