package handlers

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sogawa-yk/Galley/internal/session"
)

// SessionCreate handles `galley session create`.
func SessionCreate(ctx context.Context, opts *Options) error {
	return run(ctx, opts, func(a *app) error {
		svc, err := a.design()
		if err != nil {
			return err
		}
		sess, err := svc.CreateSession(ctx)
		if err != nil {
			return err
		}
		return a.emit(sess, func() string { return sess.ID + "\n" })
	})
}

// SessionComplete handles `galley session complete`.
func SessionComplete(ctx context.Context, opts *Options, id, summary string) error {
	return run(ctx, opts, func(a *app) error {
		svc, err := a.design()
		if err != nil {
			return err
		}
		sess, err := svc.CompleteRequirements(ctx, id, summary)
		if err != nil {
			return err
		}
		return a.emit(sess, func() string { return renderSession(sess) })
	})
}

// SessionShow handles `galley session show`.
func SessionShow(ctx context.Context, opts *Options, id string) error {
	return run(ctx, opts, func(a *app) error {
		sess, err := a.store.Load(ctx, id)
		if err != nil {
			return err
		}
		return a.emit(sess, func() string { return renderSession(sess) })
	})
}

// SessionList handles `galley session list`.
func SessionList(ctx context.Context, opts *Options) error {
	return run(ctx, opts, func(a *app) error {
		ids, err := a.store.List(ctx)
		if err != nil {
			return err
		}
		if ids == nil {
			ids = []string{}
		}
		return a.emit(ids, func() string {
			if len(ids) == 0 {
				return dimStyle.Render("no sessions") + "\n"
			}
			return strings.Join(ids, "\n") + "\n"
		})
	})
}

func renderSession(sess *session.Session) string {
	var b strings.Builder
	b.WriteString(title("galley session: " + sess.ID))
	b.WriteString(row("Created", sess.CreatedAt.Format(time.RFC3339)))
	b.WriteString(row("Updated", sess.UpdatedAt.Format(time.RFC3339)))

	gate := failStyle.Render(crossMark + " incomplete")
	if sess.Requirements.Complete {
		gate = okStyle.Render(checkMark + " complete")
	}
	b.WriteString(row("Requirements", gate))
	if sess.Requirements.Summary != "" {
		b.WriteString(row("Summary", sess.Requirements.Summary))
	}

	if arch := sess.Architecture; arch != nil {
		b.WriteString(row("Components", fmt.Sprint(len(arch.Components))))
		b.WriteString(row("Connections", fmt.Sprint(len(arch.Connections))))
		if arch.ValidatedAt != nil {
			b.WriteString(row("Validated", fmt.Sprintf("%s (%d findings)", arch.ValidatedAt.Format(time.RFC3339), len(arch.ValidationResults))))
		}
	} else {
		b.WriteString(row("Architecture", dimStyle.Render("none")))
	}
	if sess.StackID != "" {
		b.WriteString(row("Stack", sess.StackID))
	}
	if job := sess.LastJob; job != nil {
		b.WriteString(row("Last job", fmt.Sprintf("%s %s %s", job.Operation, job.Status, job.JobID)))
	}
	return b.String()
}
