package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/sogawa-yk/Galley/internal/ocicli"
)

var newRunner = func() ocicli.Runner { return ocicli.ExecRunner{} }

// OCI handles `galley oci`. The CLI's own exit status is reported in the
// result; a non-zero exit also makes galley exit non-zero.
func OCI(ctx context.Context, opts *Options, command string) error {
	return run(ctx, opts, func(a *app) error {
		gw := ocicli.New(newRunner(),
			ocicli.WithResourcePrincipal(a.cfg.ResourcePrincipal),
			ocicli.WithTimeout(a.timeouts.CLI),
			ocicli.WithLogger(a.log.WithName("ocicli")),
		)
		res, err := gw.Run(ctx, command)
		if err != nil {
			return err
		}
		if err := a.emit(res, func() string { return renderCLIResult(res) }); err != nil {
			return err
		}
		if !res.Success {
			return &ReportedError{Err: fmt.Errorf("oci exited with status %d", res.ExitCode)}
		}
		return nil
	})
}

func renderCLIResult(res *ocicli.Result) string {
	var b strings.Builder
	if res.Stdout != "" {
		b.WriteString(res.Stdout)
		if !strings.HasSuffix(res.Stdout, "\n") {
			b.WriteString("\n")
		}
	}
	if !res.Success {
		b.WriteString(failStyle.Render(fmt.Sprintf("%s %s exited with status %d", crossMark, res.Command, res.ExitCode)))
		b.WriteString("\n")
		if res.Stderr != "" {
			b.WriteString(res.Stderr)
			b.WriteString("\n")
		}
		if res.SetupHint != "" {
			b.WriteString("\n" + warnStyle.Render(res.SetupHint) + "\n")
		}
	}
	return b.String()
}
