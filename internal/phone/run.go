package phone

import (
	"context"
	"errors"
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/sync/errgroup"

	"github.com/starford/folio/internal/content"
	"github.com/starford/folio/internal/nav"
	"github.com/starford/folio/internal/portfolio"
)

// Run shows the phone until the user quits or ctx is cancelled. Content
// reloads of reg are pushed into the running program.
func Run(ctx context.Context, svc *portfolio.Service, reg *content.Registry, opts Options, logger *slog.Logger) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	m, err := New(ctx, svc, opts)
	if err != nil {
		return err
	}
	defer m.Router().Stop()

	p := tea.NewProgram(m,
		tea.WithContext(ctx),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)

	// Send blocks until Update takes the message, and router callbacks can
	// fire from inside Update.
	unsubscribe := m.Router().Subscribe(func(s nav.Snapshot) {
		go p.Send(RouterMsg{s})
	})
	defer unsubscribe()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		err := reg.Watch(gctx, logger, func(c *content.Catalog) {
			p.Send(ContentMsg{Version: c.Version})
		})
		if err != nil {
			cancel()
		}
		return err
	})
	g.Go(func() error {
		defer cancel()
		_, err := p.Run()
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil
		}
		return err
	})
	return g.Wait()
}
