package handlers

import (
	"log/slog"
	"net/http"

	"gopkg.in/yaml.v3"

	"github.com/nomis52/turnact/config"
)

// ConfigHandler renders the running configuration as YAML with credentials
// masked. A section query parameter such as ?section=engine narrows the
// output to one top-level block.
type ConfigHandler struct {
	logger         *slog.Logger
	configProvider ConfigProvider
}

// NewConfigHandler creates a new ConfigHandler.
func NewConfigHandler(logger *slog.Logger, provider ConfigProvider) *ConfigHandler {
	return &ConfigHandler{
		logger:         logger,
		configProvider: provider,
	}
}

// ServeHTTP implements http.Handler.
func (h *ConfigHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	redacted := h.configProvider.Config().Redacted()

	var doc any = redacted
	if name := r.URL.Query().Get("section"); name != "" {
		section, ok := configSection(redacted, name)
		if !ok {
			writeError(w, badRequest("unknown config section %q", name))
			return
		}
		doc = section
	}

	w.Header().Set("Content-Type", "text/yaml")
	w.WriteHeader(http.StatusOK)
	if err := yaml.NewEncoder(w).Encode(doc); err != nil {
		h.logger.Error("failed to encode config", "error", err)
	}
}

func configSection(cfg config.Config, name string) (any, bool) {
	switch name {
	case "engine":
		return cfg.Engine, true
	case "simulation":
		return cfg.Simulation, true
	case "catalog":
		return cfg.Catalog, true
	case "snapshot":
		return cfg.Snapshot, true
	case "monitoring":
		return cfg.Monitoring, true
	case "server":
		return cfg.Server, true
	case "logging":
		return cfg.Logging, true
	}
	return nil, false
}
