package handlers

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/samber/lo"

	"github.com/sogawa-yk/Galley/internal/architecture"
	"github.com/sogawa-yk/Galley/internal/design"
	"github.com/sogawa-yk/Galley/internal/errdefs"
)

// Export kinds.
const (
	ExportSummary = "summary"
	ExportMermaid = "mermaid"
	ExportBundle  = "bundle"
	ExportAll     = "all"
)

// Validate handles `galley validate`.
func Validate(ctx context.Context, opts *Options, id string) error {
	return run(ctx, opts, func(a *app) error {
		svc, err := a.design()
		if err != nil {
			return err
		}
		results, err := svc.Validate(ctx, id)
		if err != nil {
			return err
		}
		return a.emit(results, func() string { return renderValidation(results) })
	})
}

// Synthesize handles `galley synthesize`.
func Synthesize(ctx context.Context, opts *Options, id string) error {
	return run(ctx, opts, func(a *app) error {
		svc, err := a.design()
		if err != nil {
			return err
		}
		res, err := svc.Synthesize(ctx, id)
		if err != nil {
			return err
		}
		return a.emit(res, func() string { return renderSynthesis(res) })
	})
}

// Export handles `galley export`.
func Export(ctx context.Context, opts *Options, id, kind string) error {
	return run(ctx, opts, func(a *app) error {
		svc, err := a.design()
		if err != nil {
			return err
		}
		switch kind {
		case ExportSummary:
			md, err := svc.Summary(ctx, id)
			if err != nil {
				return err
			}
			return a.emit(map[string]string{"summary": md}, func() string { return md })
		case ExportMermaid:
			diagram, err := svc.Mermaid(ctx, id)
			if err != nil {
				return err
			}
			return a.emit(map[string]string{"mermaid": diagram}, func() string { return diagram + "\n" })
		case ExportBundle:
			res, err := svc.Bundle(ctx, id)
			if err != nil {
				return err
			}
			return a.emit(res, func() string { return renderFiles(res.Files) })
		case ExportAll:
			res, err := svc.ExportAll(ctx, id)
			if err != nil {
				return err
			}
			return a.emit(res, func() string {
				return res.Summary + "\n```mermaid\n" + res.Mermaid + "\n```\n" + renderFiles(res.Files)
			})
		}
		return errdefs.InvalidInput("unknown export kind %q (want summary, mermaid, bundle or all)", kind)
	})
}

// UpdateFile handles `galley update-file`.
func UpdateFile(ctx context.Context, opts *Options, id, path, source string) error {
	return run(ctx, opts, func(a *app) error {
		content, err := readInput(source)
		if err != nil {
			return err
		}
		svc, err := a.design()
		if err != nil {
			return err
		}
		target, err := svc.UpdateFile(ctx, id, path, string(content))
		if err != nil {
			return err
		}
		return a.emit(map[string]string{"file_path": target, "message": "File updated: " + path}, func() string {
			return okStyle.Render(checkMark) + " updated " + target + "\n"
		})
	})
}

func renderValidation(results []architecture.ValidationResult) string {
	var b strings.Builder
	b.WriteString(title("galley validate"))
	if len(results) == 0 {
		b.WriteString("    " + okStyle.Render(checkMark+" no findings") + "\n")
		return b.String()
	}
	for _, r := range results {
		mark := dimStyle.Render("[--]")
		switch r.Severity {
		case architecture.SeverityError:
			mark = failStyle.Render(crossMark)
		case architecture.SeverityWarning:
			mark = warnStyle.Render(warnMark)
		}
		fmt.Fprintf(&b, "  %s %s %s\n", mark, sectionStyle.Render(r.RuleID), r.Message)
		if len(r.AffectedComponents) > 0 {
			fmt.Fprintf(&b, "       %s\n", dimStyle.Render("components: "+strings.Join(r.AffectedComponents, ", ")))
		}
		if r.Recommendation != "" {
			fmt.Fprintf(&b, "       %s\n", dimStyle.Render("fix: "+r.Recommendation))
		}
	}
	counts := lo.CountValuesBy(results, func(r architecture.ValidationResult) architecture.Severity { return r.Severity })
	fmt.Fprintf(&b, "\n    %d errors, %d warnings, %d info\n",
		counts[architecture.SeverityError], counts[architecture.SeverityWarning], counts[architecture.SeverityInfo])
	return b.String()
}

func renderSynthesis(res *design.Synthesis) string {
	var b strings.Builder
	b.WriteString(title("galley synthesize"))
	b.WriteString(row("Directory", res.Dir))
	b.WriteString(section("Files"))
	for _, name := range slices.Sorted(maps.Keys(res.Files)) {
		fmt.Fprintf(&b, "    %s %s\n", okStyle.Render(checkMark), name)
	}
	if len(res.Variables) > 0 {
		b.WriteString(section("Variables to supply"))
		for _, v := range res.Variables {
			desc := v.Description
			if v.Sensitive {
				desc += " (sensitive)"
			}
			fmt.Fprintf(&b, "    %-24s %s\n", v.Name, dimStyle.Render(desc))
		}
	}
	return b.String()
}

func renderFiles(files map[string]string) string {
	var b strings.Builder
	for _, name := range slices.Sorted(maps.Keys(files)) {
		b.WriteString(section(name))
		b.WriteString(files[name])
		if !strings.HasSuffix(files[name], "\n") {
			b.WriteString("\n")
		}
	}
	return b.String()
}
