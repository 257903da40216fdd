package local

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/zorak1103/ncdeploy/internal/compose"
	"github.com/zorak1103/ncdeploy/internal/runtime"
)

// Check is one preflight verification result.
type Check struct {
	Name   string
	OK     bool
	Fatal  bool // a failed fatal check fails the whole preflight
	Detail string
}

// Preflight verifies the local environment without changing it: container
// engine availability, daemon reachability, remote tooling, the host-mode
// interpreter, payload configuration presence and compose template sanity.
func (o *Orchestrator) Preflight(ctx context.Context) []Check {
	var checks []Check

	engine := runtime.DetectLocal(o.runner)
	checks = append(checks, Check{
		Name:   "container engine",
		OK:     engine.Found(),
		Detail: engine.String(),
	})

	if engine == runtime.EngineDocker && o.DockerAPI != nil {
		err := o.DockerAPI.Ping(ctx)
		detail := "daemon reachable"
		if err != nil {
			detail = err.Error()
		}
		checks = append(checks, Check{Name: "docker daemon", OK: err == nil, Detail: detail})
	}

	for _, tool := range []string{"ssh", "scp"} {
		checks = append(checks, Check{
			Name:   tool,
			OK:     o.runner.Look(tool),
			Fatal:  true,
			Detail: "required for remote operations",
		})
	}

	checks = append(checks, Check{
		Name:   "host interpreter",
		OK:     o.runner.Look(o.cfg.Local.PythonBin),
		Detail: o.cfg.Local.PythonBin + " (host-mode fallback)",
	})

	configPath := o.path(o.cfg.Local.ConfigFile)
	_, cfgErr := os.Stat(configPath)
	checks = append(checks, Check{
		Name:   "payload config",
		OK:     cfgErr == nil,
		Detail: configPath + " (run 'ncdeploy init' to create it)",
	})

	rendered := compose.RenderBase(o.cfg, o.localTag())
	var doc map[string]any
	yamlErr := yaml.Unmarshal(rendered, &doc)
	detail := "renders to valid YAML"
	if yamlErr != nil {
		detail = fmt.Sprintf("rendered compose file is invalid: %v", yamlErr)
	}
	checks = append(checks, Check{Name: "compose template", OK: yamlErr == nil, Fatal: true, Detail: detail})

	return checks
}

// PreflightOK reports whether any fatal check failed.
func PreflightOK(checks []Check) bool {
	for _, c := range checks {
		if c.Fatal && !c.OK {
			return false
		}
	}
	return true
}
