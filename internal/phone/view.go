package phone

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/starford/folio/internal/models"
	"github.com/starford/folio/internal/nav"
)

func (m *Model) View() string {
	snap := m.router.Snapshot()

	var screen string
	switch {
	case snap.ActiveApp == nav.AppNone:
		screen = m.viewHome(snap)
	case snap.Detail != 0:
		screen = m.viewDetail(snap)
	default:
		screen = m.viewApp(snap)
	}

	footer := m.help.View(m.keys)
	if m.showHelp {
		footer = m.help.FullHelpView(m.keys.FullHelp())
	}
	lines := []string{m.theme.Frame.Render(screen)}
	if m.err != nil {
		lines = append(lines, m.theme.Error.Render(m.err.Error()))
	} else if m.status != "" {
		lines = append(lines, m.theme.Hint.Render(m.status))
	}
	lines = append(lines, footer)
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func (m *Model) statusBar() string {
	left := time.Now().Format("15:04")
	right := "folio · " + m.opts.Profile
	gap := max(contentWidth-lipgloss.Width(left)-lipgloss.Width(right), 1)
	return m.theme.StatusBar.Render(left + strings.Repeat(" ", gap) + right)
}

func (m *Model) viewHome(snap nav.Snapshot) string {
	rows := []string{m.statusBar(), "", m.viewWidget(), ""}

	icons := make([]string, 0, len(homeApps)*2)
	for i, a := range homeApps {
		style := m.theme.Icon
		if snap.Phase == nav.PhaseOpening && snap.Origin == iconRect(a) {
			style = m.theme.IconActive
		}
		label := appTitle(a)
		if m.appHasUnseen(a) {
			label += " " + m.theme.Marker.Render("•")
		}
		if i > 0 {
			icons = append(icons, strings.Repeat(" ", iconGap))
		}
		icons = append(icons, style.Width(iconWidth-2).Render(label))
	}
	rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, icons...), "")

	if m.firstVisit {
		rows = append(rows, m.theme.Hint.Render("first time here? the dots mark what's new."))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (m *Model) viewWidget() string {
	card, ok := m.currentCard()
	inner := contentWidth - 4
	if !ok {
		return m.theme.Widget.Width(contentWidth - 2).Render(m.theme.WidgetDim.Render("nothing pinned") + "\n")
	}
	title := card.Title
	if m.highlights[card.Kind][card.ID] {
		title += " " + m.theme.Marker.Render("•")
	}
	dots := m.dots(m.widget)
	sub := m.theme.WidgetDim.Render(truncate(card.Subtitle, inner-lipgloss.Width(dots)-1))
	gap := max(inner-lipgloss.Width(sub)-lipgloss.Width(dots), 1)
	body := m.theme.Title.Render(truncate(title, inner)) + "\n" + sub + strings.Repeat(" ", gap) + dots
	return m.theme.Widget.Width(contentWidth - 2).Render(body)
}

func (m *Model) header(app nav.App) string {
	return m.theme.Header.Render("‹ " + appTitle(app))
}

func (m *Model) viewApp(snap nav.Snapshot) string {
	rows := []string{m.header(snap.ActiveApp), ""}
	pager := m.pagers[snap.ActiveApp]
	c := m.svc.Catalog()

	switch snap.ActiveApp {
	case nav.AppSocials:
		for i, s := range c.Socials {
			line := fmt.Sprintf("%-10s %s", s.Name, m.theme.Meta.Render(s.Handle))
			if i == pager.Index() {
				line = m.theme.LinkActive.Render(s.Name) + " " + m.theme.Meta.Render(s.Handle)
			}
			rows = append(rows, line)
		}
	case nav.AppNotes:
		ids := c.IDs(models.KindNote)
		if pager.Index() < len(ids) {
			n, _ := c.Note(ids[pager.Index()])
			rows = append(rows, m.itemTitle(models.KindNote, n.ID, n.Title, n.Pinned))
			rows = append(rows, m.theme.Meta.Render(n.Date))
			if n.Locked {
				rows = append(rows, "", m.theme.Meta.Render("🔒 locked"))
			} else if body, err := c.Body(n.ID); err == nil {
				rows = append(rows, "", m.theme.Body.Render(truncate(firstLine(body.Text), contentWidth)))
			}
		}
	case nav.AppEvents:
		ids := c.IDs(models.KindEvent)
		if pager.Index() < len(ids) {
			e, _ := c.Event(ids[pager.Index()])
			rows = append(rows, m.itemTitle(models.KindEvent, e.ID, e.Title, false))
			rows = append(rows, m.theme.Meta.Render(fmt.Sprintf("%s · %d going · %s", e.Date, e.Attendees, e.Timeframe)))
		}
	}

	rows = append(rows, "", m.dots(pager))
	if kind, ok := snap.ActiveApp.Kind(); ok && !m.swiped[kind] && pager.Len() > 1 {
		rows = append(rows, m.theme.Hint.Render("← swipe to browse →"))
	}
	style := lipgloss.NewStyle().Width(contentWidth)
	if snap.Animating() {
		style = style.Faint(true)
	}
	return style.Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (m *Model) viewDetail(snap nav.Snapshot) string {
	rows := []string{m.header(snap.ActiveApp), ""}
	c := m.svc.Catalog()
	wrap := lipgloss.NewStyle().Width(contentWidth)

	switch snap.ActiveApp {
	case nav.AppNotes:
		n, err := c.Note(snap.Detail)
		if err != nil {
			rows = append(rows, m.theme.Meta.Render("this note is gone"))
			break
		}
		rows = append(rows, m.theme.Title.Render(n.Title), m.theme.Meta.Render(n.Date), "")
		body, err := c.Body(n.ID)
		if err != nil {
			rows = append(rows, m.theme.Meta.Render("🔒 this note is locked"))
			break
		}
		rows = append(rows, wrap.Render(m.theme.Body.Render(strings.TrimSpace(body.Text))))
		if len(body.Links) > 0 {
			rows = append(rows, "")
			for i, l := range body.Links {
				style := m.theme.Link
				if i == m.linkIndex%len(body.Links) {
					style = m.theme.LinkActive
				}
				rows = append(rows, "→ "+style.Render(l.Label))
			}
		}
	case nav.AppEvents:
		e, err := c.Event(snap.Detail)
		if err != nil {
			rows = append(rows, m.theme.Meta.Render("this event is gone"))
			break
		}
		rows = append(rows,
			m.theme.Title.Render(e.Title),
			m.theme.Meta.Render(e.Date),
			"",
			fmt.Sprintf("%d attending", e.Attendees),
			m.theme.Meta.Render(string(e.Timeframe)),
		)
	}
	return wrap.Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (m *Model) itemTitle(kind models.Kind, id int, title string, pinned bool) string {
	s := m.theme.Title.Render(title)
	if pinned {
		s = "📌 " + s
	}
	if m.highlights[kind][id] {
		s += " " + m.theme.Marker.Render("•")
	}
	return s
}

func (m *Model) dots(p *nav.Pager) string {
	var b strings.Builder
	for i := 0; i < p.Len(); i++ {
		if i == p.Index() {
			b.WriteString(m.theme.DotActive.Render("●"))
		} else {
			b.WriteString(m.theme.Dot.Render("○"))
		}
	}
	return b.String()
}

func (m *Model) appHasUnseen(app nav.App) bool {
	kind, ok := app.Kind()
	return ok && len(m.highlights[kind]) > 0
}

func appTitle(app nav.App) string {
	switch app {
	case nav.AppNotes:
		return "Notes"
	case nav.AppSocials:
		return "Socials"
	case nav.AppEvents:
		return "Events"
	}
	return ""
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

func truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n == 1 {
		return "…"
	}
	return string(r[:n-1]) + "…"
}
