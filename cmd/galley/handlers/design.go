package handlers

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
	sigsyaml "sigs.k8s.io/yaml"

	"github.com/sogawa-yk/Galley/internal/architecture"
	"github.com/sogawa-yk/Galley/internal/design"
	"github.com/sogawa-yk/Galley/internal/errdefs"
)

// architectureFile is the on-disk form accepted by `galley design save`.
// Both YAML and JSON are read.
type architectureFile struct {
	Components  []architecture.Component  `json:"components"`
	Connections []architecture.Connection `json:"connections"`
}

var stdin io.Reader = os.Stdin

// readInput reads path, or stdin when path is "-".
func readInput(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(stdin)
	}
	// #nosec G304 - path is supplied by the CLI user
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return data, nil
}

func loadArchitectureFile(path string) (*architectureFile, error) {
	data, err := readInput(path)
	if err != nil {
		return nil, err
	}
	var f architectureFile
	if err := sigsyaml.UnmarshalStrict(data, &f); err != nil {
		return nil, errdefs.InvalidInput("invalid architecture file %s: %v", path, err)
	}
	return &f, nil
}

// parseSets turns key=value pairs into a config map. Values are read as
// YAML scalars so true and 3 keep their types.
func parseSets(sets []string) (architecture.Config, error) {
	cfg := architecture.Config{}
	for _, kv := range sets {
		key, raw, ok := strings.Cut(kv, "=")
		if !ok || key == "" {
			return nil, errdefs.InvalidInput("invalid setting %q (want key=value)", kv)
		}
		if raw == "" {
			cfg[key] = architecture.String("")
			continue
		}
		var v architecture.Value
		if err := yaml.Unmarshal([]byte(raw), &v); err != nil {
			return nil, errdefs.InvalidInput("invalid value for %s: %v", key, err)
		}
		cfg[key] = v
	}
	return cfg, nil
}

// ArchitectureSave handles `galley design save`.
func ArchitectureSave(ctx context.Context, opts *Options, id, path string) error {
	return run(ctx, opts, func(a *app) error {
		f, err := loadArchitectureFile(path)
		if err != nil {
			return err
		}
		svc, err := a.design()
		if err != nil {
			return err
		}
		arch, err := svc.SaveArchitecture(ctx, id, f.Components, f.Connections)
		if err != nil {
			return err
		}
		return a.emit(arch, func() string { return renderComponents(arch) })
	})
}

// ComponentAdd handles `galley design add`.
func ComponentAdd(ctx context.Context, opts *Options, id, serviceType, name string, sets []string) error {
	return run(ctx, opts, func(a *app) error {
		cfg, err := parseSets(sets)
		if err != nil {
			return err
		}
		svc, err := a.design()
		if err != nil {
			return err
		}
		c, err := svc.AddComponent(ctx, id, serviceType, name, cfg)
		if err != nil {
			return err
		}
		return a.emit(c, func() string { return c.ID + "\n" })
	})
}

// ComponentRemove handles `galley design remove`.
func ComponentRemove(ctx context.Context, opts *Options, id, componentID string) error {
	return run(ctx, opts, func(a *app) error {
		svc, err := a.design()
		if err != nil {
			return err
		}
		if err := svc.RemoveComponent(ctx, id, componentID); err != nil {
			return err
		}
		return a.emit(map[string]string{"removed": componentID}, func() string {
			return okStyle.Render(checkMark) + " removed " + componentID + "\n"
		})
	})
}

// ComponentConfigure handles `galley design configure`.
func ComponentConfigure(ctx context.Context, opts *Options, id, componentID string, sets []string) error {
	return run(ctx, opts, func(a *app) error {
		cfg, err := parseSets(sets)
		if err != nil {
			return err
		}
		svc, err := a.design()
		if err != nil {
			return err
		}
		c, err := svc.ConfigureComponent(ctx, id, componentID, cfg)
		if err != nil {
			return err
		}
		return a.emit(c, func() string { return renderComponent(c) })
	})
}

// Connect handles `galley design connect`.
func Connect(ctx context.Context, opts *Options, id string, conn architecture.Connection) error {
	return run(ctx, opts, func(a *app) error {
		svc, err := a.design()
		if err != nil {
			return err
		}
		if err := svc.Connect(ctx, id, conn); err != nil {
			return err
		}
		return a.emit(conn, func() string {
			return okStyle.Render(checkMark) + fmt.Sprintf(" %s -> %s\n", conn.SourceID, conn.TargetID)
		})
	})
}

// Services handles `galley services`.
func Services(ctx context.Context, opts *Options) error {
	return run(ctx, opts, func(a *app) error {
		svc, err := a.design()
		if err != nil {
			return err
		}
		services := svc.ListServices()
		return a.emit(services, func() string { return renderServices(services) })
	})
}

func renderComponents(arch *architecture.Architecture) string {
	var b strings.Builder
	b.WriteString(section(fmt.Sprintf("Components (%d)", len(arch.Components))))
	for _, c := range arch.Components {
		fmt.Fprintf(&b, "    %-36s %-16s %s\n", dimStyle.Render(c.ID), c.ServiceType, c.DisplayName)
	}
	if len(arch.Connections) > 0 {
		b.WriteString(section(fmt.Sprintf("Connections (%d)", len(arch.Connections))))
		for _, conn := range arch.Connections {
			fmt.Fprintf(&b, "    %s -> %s %s\n", conn.SourceID, conn.TargetID, dimStyle.Render(conn.ConnectionType))
		}
	}
	return b.String()
}

func renderComponent(c architecture.Component) string {
	var b strings.Builder
	b.WriteString(title(c.DisplayName))
	b.WriteString(row("ID", c.ID))
	b.WriteString(row("Type", c.ServiceType))
	for _, k := range c.Config.Keys() {
		b.WriteString(row(k, c.Config.String(k)))
	}
	return b.String()
}

func renderServices(services []design.ServiceInfo) string {
	var b strings.Builder
	b.WriteString(title("galley services"))
	for _, s := range services {
		fmt.Fprintf(&b, "    %-18s %s\n", sectionStyle.Render(s.Type), s.DisplayName)
		if s.Description != "" {
			fmt.Fprintf(&b, "    %-18s %s\n", "", dimStyle.Render(s.Description))
		}
		if len(s.RequiredVariables) > 0 {
			names := make([]string, 0, len(s.RequiredVariables))
			for _, v := range s.RequiredVariables {
				names = append(names, v.Name)
			}
			fmt.Fprintf(&b, "    %-18s %s\n", "", dimStyle.Render("requires: "+strings.Join(names, ", ")))
		}
	}
	return b.String()
}
