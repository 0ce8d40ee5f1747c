package http

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/lanternhq/lantern/internal/blueprint"
	"github.com/lanternhq/lantern/internal/core/domain"
	"github.com/lanternhq/lantern/internal/core/ports"
)

// WorkbenchHandler serves the workbench management API.
type WorkbenchHandler struct {
	runtime  ports.WorkbenchRuntime
	builder  ports.ImageBuilder
	defaults domain.Blueprint
}

func NewWorkbenchHandler(runtime ports.WorkbenchRuntime, builder ports.ImageBuilder, defaults domain.Blueprint) *WorkbenchHandler {
	return &WorkbenchHandler{runtime: runtime, builder: builder, defaults: defaults}
}

func (h *WorkbenchHandler) ListWorkbenches(c *fiber.Ctx) error {
	workbenches, err := h.runtime.List(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	if workbenches == nil {
		workbenches = []domain.Workbench{}
	}
	return c.JSON(workbenches)
}

type LaunchWorkbenchRequest struct {
	Name    string `json:"name"`
	Image   string `json:"image"`    // prebuilt image, skips the build
	RepoURL string `json:"repo_url"` // git repository to seed the workdir with
	// Manifest is an inline blueprint manifest (YAML) applied over the
	// server's blueprint for this launch only.
	Manifest string `json:"manifest"`
}

func (h *WorkbenchHandler) LaunchWorkbench(c *fiber.Ctx) error {
	var req LaunchWorkbenchRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	bp := h.defaults
	if req.Manifest != "" {
		var err error
		bp, err = blueprint.ParseOver(strings.NewReader(req.Manifest), h.defaults)
		if err != nil {
			return c.Status(statusFor(err)).JSON(fiber.Map{
				"error": err.Error(),
			})
		}
	}

	name := req.Name
	if name == "" {
		name = "wb-" + uuid.NewString()[:8]
	}

	image := req.Image
	if image == "" {
		// Build from the blueprint. This blocks until the daemon finishes;
		// builds of the stock blueprint are mostly pip install time.
		tag := fmt.Sprintf("lantern/%s:latest", name)
		built, err := h.builder.Build(c.Context(), bp, ports.BuildOptions{
			Tag:         tag,
			SeedRepoURL: req.RepoURL,
		})
		if err != nil {
			return c.Status(statusFor(err)).JSON(fiber.Map{
				"error": "Build failed: " + err.Error(),
			})
		}
		image = built
	} else {
		if err := h.runtime.Pull(c.Context(), image); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": err.Error(),
			})
		}
	}

	wb, err := h.runtime.Launch(c.Context(), image, bp, name)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.Status(fiber.StatusCreated).JSON(wb)
}

func (h *WorkbenchHandler) GetWorkbench(c *fiber.Ctx) error {
	wb, err := h.runtime.Inspect(c.Context(), c.Params("id"))
	if err != nil {
		return c.Status(statusFor(err)).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	return c.JSON(wb)
}

func (h *WorkbenchHandler) StopWorkbench(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Workbench ID is required",
		})
	}

	if err := h.runtime.Stop(c.Context(), id); err != nil {
		return c.Status(statusFor(err)).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	if err := h.runtime.Remove(c.Context(), id); err != nil {
		return c.Status(statusFor(err)).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.SendStatus(fiber.StatusOK)
}

func (h *WorkbenchHandler) GetWorkbenchLogs(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Workbench ID is required",
		})
	}

	logs, err := h.runtime.Logs(c.Context(), id)
	if err != nil {
		return c.Status(statusFor(err)).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	c.Set("Content-Type", "text/plain")
	return c.SendStream(logs)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, domain.ErrInvalidBlueprint):
		return fiber.StatusBadRequest
	default:
		return fiber.StatusInternalServerError
	}
}
