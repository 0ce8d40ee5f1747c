package http

import (
	"fmt"
	"net/http"
	"net/http/httputil"
	"net/url"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/lanternhq/lantern/internal/core/ports"
)

// ProxyHandler routes subdomain requests to workbench containers.
type ProxyHandler struct {
	runtime    ports.WorkbenchRuntime
	baseDomain string
}

// NewProxyHandler creates a proxy for <name>.<baseDomain> hosts.
func NewProxyHandler(runtime ports.WorkbenchRuntime, baseDomain string) *ProxyHandler {
	return &ProxyHandler{runtime: runtime, baseDomain: baseDomain}
}

// ProxyRequest intercepts requests to subdomains (e.g. my-bench.localhost)
// and routes them to the corresponding workbench's container IP at the port
// its server listens on.
func (h *ProxyHandler) ProxyRequest(c *fiber.Ctx) error {
	host := c.Hostname()

	name, ok := strings.CutSuffix(host, "."+h.baseDomain)
	if !ok || name == "" || name == "www" || strings.Contains(name, ".") {
		return c.Next()
	}

	workbenches, err := h.runtime.List(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).SendString("Failed to list workbenches")
	}

	var target string
	for _, wb := range workbenches {
		if wb.Name != name || wb.State != "running" {
			continue
		}
		// List does not resolve container IPs; inspect the match.
		info, err := h.runtime.Inspect(c.Context(), wb.ID)
		if err != nil || info.IPAddress == "" {
			continue
		}
		target = fmt.Sprintf("http://%s:%d", info.IPAddress, info.Port)
		break
	}

	if target == "" {
		return c.Status(fiber.StatusNotFound).SendString(fmt.Sprintf("Workbench '%s' not found or not running", name))
	}

	remote, err := url.Parse(target)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).SendString("Invalid target URL")
	}

	proxy := httputil.NewSingleHostReverseProxy(remote)

	// Rewrite the Host header to the target so the notebook server does not
	// reject the request as cross-origin.
	originalDirector := proxy.Director
	proxy.Director = func(req *http.Request) {
		originalDirector(req)
		req.Host = remote.Host
		req.URL.Host = remote.Host
		req.URL.Scheme = remote.Scheme
	}

	proxy.ErrorHandler = func(w http.ResponseWriter, r *http.Request, err error) {
		w.WriteHeader(http.StatusBadGateway)
		fmt.Fprintf(w, "Proxy Info: target=%s error=%v", target, err)
	}

	return adaptor.HTTPHandler(proxy)(c)
}
