// Package phone renders the portfolio as a simulated phone home screen in
// the terminal. Mouse drags stand in for touch swipes.
package phone

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/starford/folio/internal/content"
	"github.com/starford/folio/internal/gesture"
	"github.com/starford/folio/internal/ledger"
	"github.com/starford/folio/internal/models"
	"github.com/starford/folio/internal/nav"
	"github.com/starford/folio/internal/portfolio"
)

// Link is a deep link into the detail view of an item.
type Link struct {
	App nav.App
	ID  int
}

// ParseLink parses "notes:3" or "events:2".
func ParseLink(s string) (Link, error) {
	r := content.Render("[[" + s + "]]")
	if len(r.Links) != 1 {
		return Link{}, fmt.Errorf("invalid link %q", s)
	}
	return Link{App: appFor(r.Links[0].Kind), ID: r.Links[0].ID}, nil
}

// Options configure the phone. Zero values select defaults.
type Options struct {
	// Profile is the ledger profile of the local user.
	Profile string
	Clock   nav.Clock

	CommitDelay time.Duration
	SettleDelay time.Duration

	// LatchThreshold and CommitThreshold are in pixels; CellWidth converts
	// terminal columns into pixels.
	LatchThreshold  int
	CommitThreshold int
	CellWidth       int

	// WidgetInterval is the rotation period of the widget.
	WidgetInterval time.Duration

	// Entry opens an item on start, as a link from another site would. It
	// becomes the entry item of its app.
	Entry *Link
}

// Defaults.
const (
	DefaultProfile        = "local"
	DefaultCellWidth      = 8
	DefaultWidgetInterval = 5 * time.Second
)

// RouterMsg is delivered whenever the router state changes.
type RouterMsg struct{ nav.Snapshot }

// ContentMsg is delivered after the content catalog was reloaded.
type ContentMsg struct{ Version string }

type widgetTickMsg struct{}

type point struct{ x, y int }

// Model is the bubbletea model of the phone.
type Model struct {
	ctx  context.Context
	svc  *portfolio.Service
	opts Options

	router  *nav.Router
	gesture *gesture.Interpreter
	pagers  map[nav.App]*nav.Pager
	widget  *nav.Pager

	entry      map[models.Kind]int
	pending    *Link
	highlights map[models.Kind]map[int]bool
	swiped     map[models.Kind]bool
	firstVisit bool
	linkIndex  int
	dirty      bool

	showHelp       bool
	unregisterHelp func()

	press   *point
	dragApp nav.App

	keys   keyMap
	help   help.Model
	theme  Theme
	width  int
	height int
	status string
	err    error
}

// New builds the model and records the visit.
func New(ctx context.Context, svc *portfolio.Service, opts Options) (*Model, error) {
	if opts.Profile == "" {
		opts.Profile = DefaultProfile
	}
	if opts.CellWidth <= 0 {
		opts.CellWidth = DefaultCellWidth
	}
	if opts.WidgetInterval <= 0 {
		opts.WidgetInterval = DefaultWidgetInterval
	}

	m := &Model{
		ctx:  ctx,
		svc:  svc,
		opts: opts,
		router: nav.NewRouter(nav.Options{
			Clock:       opts.Clock,
			CommitDelay: opts.CommitDelay,
			SettleDelay: opts.SettleDelay,
		}),
		gesture:    gesture.New(opts.LatchThreshold, opts.CommitThreshold),
		pagers:     make(map[nav.App]*nav.Pager, len(homeApps)),
		widget:     nav.NewPager(0),
		entry:      make(map[models.Kind]int),
		highlights: make(map[models.Kind]map[int]bool),
		swiped:     make(map[models.Kind]bool),
		keys:       newKeyMap(),
		help:       help.New(),
		theme:      DefaultTheme(),
		dirty:      true,
	}
	for _, a := range homeApps {
		m.pagers[a] = nav.NewPager(0)
	}
	m.resize()

	l := svc.Ledger(opts.Profile)
	visited, err := l.Flag(ctx, ledger.FlagVisited)
	if err != nil {
		return nil, fmt.Errorf("phone: read ledger: %w", err)
	}
	m.firstVisit = !visited
	if !visited {
		if err := l.SetFlag(ctx, ledger.FlagVisited, true); err != nil {
			return nil, fmt.Errorf("phone: write ledger: %w", err)
		}
	}
	for _, kind := range []models.Kind{models.KindNote, models.KindEvent} {
		if m.swiped[kind], err = l.Flag(ctx, ledger.SwipeFlag(kind)); err != nil {
			return nil, fmt.Errorf("phone: read ledger: %w", err)
		}
	}

	if opts.Entry != nil {
		m.followLink(*opts.Entry, true)
	}
	return m, nil
}

// Router exposes the navigation state so callers can observe it.
func (m *Model) Router() *nav.Router { return m.router }

func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.widgetTick(), func() tea.Msg {
		return RouterMsg{m.router.Snapshot()}
	})
}

func (m *Model) widgetTick() tea.Cmd {
	return tea.Tick(m.opts.WidgetInterval, func(time.Time) tea.Msg { return widgetTickMsg{} })
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width

	case tea.KeyMsg:
		cmd = m.handleKey(msg)

	case tea.MouseMsg:
		m.handleMouse(msg)

	case RouterMsg:
		if m.gesture.Active() && !m.canDrag(msg.Snapshot) {
			m.gesture.Cancel()
		}
		m.dirty = true

	case ContentMsg:
		m.resize()
		m.dirty = true

	case widgetTickMsg:
		if m.router.Snapshot().Phase == nav.PhaseIdle && !m.widget.Next() {
			m.widget.Set(0)
		}
		cmd = m.widgetTick()
	}

	m.sync()
	if m.dirty {
		m.refresh()
	}
	return m, cmd
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	snap := m.router.Snapshot()
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.router.Stop()
		return tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.toggleHelp()
	case key.Matches(msg, m.keys.Back):
		m.router.Close()
	case key.Matches(msg, m.keys.Notes):
		m.router.Open(nav.AppNotes, iconRect(nav.AppNotes))
	case key.Matches(msg, m.keys.Socials):
		m.router.Open(nav.AppSocials, iconRect(nav.AppSocials))
	case key.Matches(msg, m.keys.Events):
		m.router.Open(nav.AppEvents, iconRect(nav.AppEvents))
	case key.Matches(msg, m.keys.Prev):
		m.page(gesture.Previous)
	case key.Matches(msg, m.keys.Next):
		m.page(gesture.Next)
	case key.Matches(msg, m.keys.Link):
		if n := len(m.detailLinks()); n > 0 {
			m.linkIndex = (m.linkIndex + 1) % n
		}
	case key.Matches(msg, m.keys.Open):
		m.activate(snap)
	case key.Matches(msg, m.keys.Reset):
		m.reset()
	}
	return nil
}

// page moves the pager of the visible surface without the swipe path.
func (m *Model) page(cmd gesture.Command) {
	snap := m.router.Snapshot()
	switch {
	case snap.Phase == nav.PhaseIdle:
		gesture.Apply(cmd, m.widget)
	case snap.Phase == nav.PhaseOpen && snap.Detail == 0:
		gesture.Apply(cmd, m.pagers[snap.ActiveApp])
	}
}

// activate handles enter and taps on the primary surface.
func (m *Model) activate(snap nav.Snapshot) {
	switch {
	case snap.Phase == nav.PhaseIdle:
		if card, ok := m.currentCard(); ok {
			m.followLink(Link{App: appFor(card.Kind), ID: card.ID}, true)
		}
	case snap.Phase != nav.PhaseOpen:
	case snap.Detail == 0:
		if id, ok := m.currentID(snap.ActiveApp); ok {
			if _, isContent := snap.ActiveApp.Kind(); isContent {
				m.openDetail(id)
			} else if s, ok := m.currentSocial(); ok {
				m.status = s.URL
			}
		}
	default:
		links := m.detailLinks()
		if len(links) > 0 {
			l := links[m.linkIndex%len(links)]
			m.followLink(Link{App: appFor(l.Kind), ID: l.ID}, false)
		}
	}
}

func (m *Model) handleMouse(msg tea.MouseMsg) {
	snap := m.router.Snapshot()
	px := msg.X * m.opts.CellWidth

	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft {
			return
		}
		m.press = &point{msg.X, msg.Y}
		m.gesture.Cancel()
		if snap.Phase == nav.PhaseOpen && snap.Detail == 0 {
			// A terminal has no text selection while the mouse is captured.
			m.gesture.Begin(px, true)
			m.dragApp = snap.ActiveApp
		}

	case tea.MouseActionMotion:
		m.gesture.Move(px)

	case tea.MouseActionRelease:
		press := m.press
		m.press = nil
		if m.gesture.Active() {
			if !m.canDrag(snap) {
				// The app closed or changed under the drag.
				m.gesture.Cancel()
				return
			}
			m.gesture.Move(px)
			if cmd := m.gesture.End(); cmd != gesture.None {
				m.swipe(snap, cmd)
				return
			}
		}
		if press != nil && press.x == msg.X && press.y == msg.Y {
			m.tap(snap, msg.X, msg.Y)
		}
	}
}

// canDrag reports whether the drag that began in m.dragApp may still page it.
func (m *Model) canDrag(snap nav.Snapshot) bool {
	return snap.Phase == nav.PhaseOpen && snap.Detail == 0 && snap.ActiveApp == m.dragApp
}

func (m *Model) swipe(snap nav.Snapshot, cmd gesture.Command) {
	if !gesture.Apply(cmd, m.pagers[snap.ActiveApp]) {
		return
	}
	kind, ok := snap.ActiveApp.Kind()
	if !ok || m.swiped[kind] {
		return
	}
	if err := m.svc.SetFlag(m.ctx, m.opts.Profile, ledger.SwipeFlag(kind), true); err != nil {
		m.err = err
		return
	}
	m.swiped[kind] = true
}

func (m *Model) tap(snap nav.Snapshot, x, y int) {
	switch snap.Phase {
	case nav.PhaseIdle:
		if app, ok := iconAt(x, y); ok {
			m.router.Open(app, iconRect(app))
		} else if contains(widgetRect(), x, y) {
			m.activate(snap)
		}
	case nav.PhaseOpen:
		if y == headerRow {
			m.router.Close()
			return
		}
		m.activate(snap)
	}
}

// followLink opens the detail view of l, closing and opening apps as
// needed once transitions allow it. External links mark their target as
// the entry item.
func (m *Model) followLink(l Link, external bool) {
	if l.App == nav.AppEvents && l.ID != 0 && !m.clickable(l.ID) {
		return
	}
	if kind, ok := l.App.Kind(); ok && external {
		m.entry[kind] = l.ID
		m.dirty = true
	}
	m.pending = &l
	m.sync()
}

// sync advances a pending deep link as far as the router allows.
func (m *Model) sync() {
	if m.pending == nil {
		return
	}
	snap := m.router.Snapshot()
	switch {
	case snap.Animating():
	case snap.Phase == nav.PhaseIdle:
		if !m.router.Open(m.pending.App, iconRect(m.pending.App)) {
			m.pending = nil
		}
	case snap.ActiveApp != m.pending.App:
		if !m.router.Close() {
			m.pending = nil
		}
	default:
		if m.pending.ID != 0 {
			m.openDetail(m.pending.ID)
		}
		m.pending = nil
	}
}

// openDetail shows id inside the active app and records the view.
func (m *Model) openDetail(id int) {
	snap := m.router.Snapshot()
	kind, ok := snap.ActiveApp.Kind()
	if !ok || (kind == models.KindEvent && !m.clickable(id)) {
		return
	}
	if !m.router.OpenDetail(id) {
		return
	}
	if i := slices.Index(m.svc.Catalog().IDs(kind), id); i >= 0 {
		m.pagers[snap.ActiveApp].Set(i)
	}
	m.linkIndex = 0
	if _, err := m.svc.MarkViewed(m.ctx, m.opts.Profile, kind, id); err != nil {
		m.err = err
	}
	m.dirty = true
}

// clickable reports whether the event has a detail view.
func (m *Model) clickable(id int) bool {
	e, err := m.svc.Catalog().Event(id)
	return err == nil && e.Clickable
}

func (m *Model) toggleHelp() {
	if m.showHelp {
		m.hideHelp()
		return
	}
	m.showHelp = true
	m.unregisterHelp = m.router.RegisterBackHandler(func() bool {
		m.hideHelp()
		return true
	})
}

func (m *Model) hideHelp() {
	m.showHelp = false
	if m.unregisterHelp != nil {
		m.unregisterHelp()
		m.unregisterHelp = nil
	}
}

func (m *Model) reset() {
	if err := m.svc.Reset(m.ctx, m.opts.Profile); err != nil {
		m.err = err
		return
	}
	m.entry = make(map[models.Kind]int)
	m.swiped = make(map[models.Kind]bool)
	m.firstVisit = true
	m.status = "forgot everything you've seen"
	m.dirty = true
}

// resize fits the pagers to the current catalog.
func (m *Model) resize() {
	c := m.svc.Catalog()
	m.pagers[nav.AppNotes].Resize(len(c.Notes))
	m.pagers[nav.AppEvents].Resize(len(c.Events))
	m.pagers[nav.AppSocials].Resize(len(c.Socials))
	m.widget.Resize(len(c.WidgetCards()))
}

// refresh recomputes the unseen markers.
func (m *Model) refresh() {
	m.dirty = false
	snap := m.router.Snapshot()
	for _, kind := range []models.Kind{models.KindNote, models.KindEvent} {
		open := 0
		if k, ok := snap.ActiveApp.Kind(); ok && k == kind {
			open = snap.Detail
		}
		hs, err := m.svc.Highlights(m.ctx, m.opts.Profile, kind, m.entry[kind], open)
		if err != nil {
			m.err = err
			return
		}
		set := make(map[int]bool, len(hs))
		for _, h := range hs {
			if h.Highlight {
				set[h.ID] = true
			}
		}
		m.highlights[kind] = set
	}
}

func (m *Model) currentCard() (models.WidgetCard, bool) {
	cards := m.svc.Catalog().WidgetCards()
	if i := m.widget.Index(); i < len(cards) {
		return cards[i], true
	}
	return models.WidgetCard{}, false
}

func (m *Model) currentID(app nav.App) (int, bool) {
	c := m.svc.Catalog()
	i := m.pagers[app].Index()
	switch app {
	case nav.AppSocials:
		if i < len(c.Socials) {
			return c.Socials[i].ID, true
		}
	default:
		kind, _ := app.Kind()
		if ids := c.IDs(kind); i < len(ids) {
			return ids[i], true
		}
	}
	return 0, false
}

func (m *Model) currentSocial() (models.Social, bool) {
	c := m.svc.Catalog()
	if i := m.pagers[nav.AppSocials].Index(); i < len(c.Socials) {
		return c.Socials[i], true
	}
	return models.Social{}, false
}

// detailLinks returns the links of the open note.
func (m *Model) detailLinks() []content.Link {
	snap := m.router.Snapshot()
	if snap.ActiveApp != nav.AppNotes || snap.Detail == 0 {
		return nil
	}
	body, err := m.svc.Catalog().Body(snap.Detail)
	if err != nil {
		return nil
	}
	return body.Links
}

func appFor(kind models.Kind) nav.App {
	if kind == models.KindEvent {
		return nav.AppEvents
	}
	return nav.AppNotes
}
