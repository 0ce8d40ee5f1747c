package domain

// Workbench represents a launched notebook container (Docker, Podman, etc.)
type Workbench struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Image     string `json:"image"`
	Status    string `json:"status"`
	State     string `json:"state"` // running, exited, etc.
	IPAddress string `json:"ip_address,omitempty"`
	Port      int    `json:"port,omitempty"`      // port the server listens on inside the container
	HostPort  int    `json:"host_port,omitempty"` // port published on the host, 0 when not running
}
