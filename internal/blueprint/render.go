package blueprint

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/lanternhq/lantern/internal/core/domain"
)

// Render returns the Dockerfile for bp: base image, workdir, one pip install
// layer, one exposed port, and the entry command.
func Render(bp domain.Blueprint) (string, error) {
	return render(bp, false)
}

// RenderWorkspace is Render plus a COPY of the build context into the
// workdir, used when a workbench is seeded from a repository.
func RenderWorkspace(bp domain.Blueprint) (string, error) {
	return render(bp, true)
}

func render(bp domain.Blueprint, copyContext bool) (string, error) {
	if err := bp.Validate(); err != nil {
		return "", err
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "FROM %s\n\n", bp.BaseImage)
	fmt.Fprintf(&sb, "WORKDIR %s\n\n", bp.WorkDir)
	if copyContext {
		fmt.Fprintf(&sb, "COPY . %s\n\n", bp.WorkDir)
	}
	fmt.Fprintf(&sb, "RUN pip install --no-cache-dir %s\n\n", strings.Join(bp.Packages, " "))
	fmt.Fprintf(&sb, "EXPOSE %d\n\n", bp.Port)
	fmt.Fprintf(&sb, "CMD %s\n", jsonArray(bp.Entrypoint))
	return sb.String(), nil
}

// jsonArray renders an exec-form instruction argument list.
func jsonArray(args []string) string {
	quoted := make([]string, len(args))
	for i, a := range args {
		quoted[i] = strconv.Quote(a)
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}
