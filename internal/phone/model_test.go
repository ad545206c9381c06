package phone

import (
	"context"
	"slices"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/starford/folio/internal/ledger"
	"github.com/starford/folio/internal/models"
	"github.com/starford/folio/internal/nav"
	"github.com/starford/folio/internal/portfolio"
	"github.com/starford/folio/internal/testutil"
)

const (
	commit = 100 * time.Millisecond
	settle = 200 * time.Millisecond
)

type harness struct {
	t     *testing.T
	m     *Model
	svc   *portfolio.Service
	clock *nav.ManualClock
}

func newHarness(t *testing.T, entry *Link) *harness {
	t.Helper()
	reg, _ := testutil.TestRegistry(t, "")
	svc := portfolio.NewService(reg, testutil.TestStore(t), nil)
	return newHarnessWith(t, svc, entry)
}

func newHarnessWith(t *testing.T, svc *portfolio.Service, entry *Link) *harness {
	t.Helper()
	clock := &nav.ManualClock{}
	m, err := New(context.Background(), svc, Options{
		Profile:     "test",
		Clock:       clock,
		CommitDelay: commit,
		SettleDelay: settle,
		Entry:       entry,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(m.Router().Stop)
	return &harness{t: t, m: m, svc: svc, clock: clock}
}

func (h *harness) send(msg tea.Msg) {
	h.m.Update(msg)
}

func (h *harness) press(k string) {
	switch k {
	case "enter":
		h.send(tea.KeyMsg{Type: tea.KeyEnter})
	case "esc":
		h.send(tea.KeyMsg{Type: tea.KeyEsc})
	case "tab":
		h.send(tea.KeyMsg{Type: tea.KeyTab})
	default:
		h.send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)})
	}
}

// settle finishes the running transition and delivers the router update,
// as the program observer would.
func (h *harness) settle() {
	h.clock.Advance(commit + settle)
	h.send(RouterMsg{h.m.Router().Snapshot()})
}

func (h *harness) snap() nav.Snapshot {
	return h.m.Router().Snapshot()
}

func (h *harness) viewed(kind models.Kind) []int {
	h.t.Helper()
	ids, err := h.svc.Ledger("test").Viewed(context.Background(), kind)
	if err != nil {
		h.t.Fatal(err)
	}
	return ids
}

func TestNew_RecordsFirstVisit(t *testing.T) {
	h := newHarness(t, nil)
	if !h.m.firstVisit {
		t.Fatal("first launch not treated as first visit")
	}
	visited, err := h.svc.Ledger("test").Flag(context.Background(), ledger.FlagVisited)
	if err != nil || !visited {
		t.Fatalf("visited = %v, %v", visited, err)
	}
	if !strings.Contains(h.m.View(), "first time here") {
		t.Error("first-visit hint missing from home screen")
	}

	again := newHarnessWith(t, h.svc, nil)
	if again.m.firstVisit {
		t.Error("second launch treated as first visit")
	}
}

func TestOpenApp_KeyAndDetail(t *testing.T) {
	h := newHarness(t, nil)

	h.press("1")
	if s := h.snap(); s.Phase != nav.PhaseOpening {
		t.Fatalf("after key: %+v", s)
	}
	h.press("2")
	h.settle()
	if s := h.snap(); s.Phase != nav.PhaseOpen || s.ActiveApp != nav.AppNotes {
		t.Fatalf("after settle: %+v", s)
	}

	// The first pinned note is the priority item.
	if !h.m.highlights[models.KindNote][1] {
		t.Error("priority note not highlighted on first visit")
	}

	h.press("enter")
	if s := h.snap(); s.Detail != 1 {
		t.Fatalf("detail = %d, want 1", s.Detail)
	}
	if got := h.viewed(models.KindNote); !slices.Equal(got, []int{1}) {
		t.Errorf("viewed = %v", got)
	}
	if h.m.highlights[models.KindNote][1] {
		t.Error("open note still highlighted")
	}
	if !strings.Contains(h.m.View(), "hello world") {
		t.Error("detail view missing note title")
	}

	h.press("esc")
	if s := h.snap(); s.Detail != 0 || s.Phase != nav.PhaseOpen {
		t.Fatalf("back from detail: %+v", s)
	}
	h.press("esc")
	if s := h.snap(); s.Phase != nav.PhaseClosing {
		t.Fatalf("back from app: %+v", s)
	}
	h.settle()
	if s := h.snap(); s.Phase != nav.PhaseIdle || s.ActiveApp != nav.AppNone {
		t.Fatalf("after close: %+v", s)
	}
}

func TestLockedNote_ShowsLocked(t *testing.T) {
	h := newHarness(t, &Link{App: nav.AppNotes, ID: 4})
	h.settle()
	if s := h.snap(); s.Detail != 4 {
		t.Fatalf("detail = %d, want 4", s.Detail)
	}
	view := h.m.View()
	if !strings.Contains(view, "locked") || strings.Contains(view, "nice try") {
		t.Errorf("locked note rendered its body:\n%s", view)
	}
}

func TestTapIcon_OpensApp(t *testing.T) {
	h := newHarness(t, nil)
	r := iconRect(nav.AppEvents)

	h.send(tea.MouseMsg{X: r.X + 1, Y: r.Y + 1, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	h.send(tea.MouseMsg{X: r.X + 1, Y: r.Y + 1, Action: tea.MouseActionRelease})

	s := h.snap()
	if s.Phase != nav.PhaseOpening || s.Origin != r {
		t.Fatalf("after tap: %+v", s)
	}
	h.settle()
	if h.snap().ActiveApp != nav.AppEvents {
		t.Fatalf("active = %v", h.snap().ActiveApp)
	}
}

func TestSwipe_PagesAndRecordsFlag(t *testing.T) {
	h := newHarness(t, nil)
	h.press("1")
	h.settle()

	// 10 columns at 8px per cell is well past the commit threshold.
	h.send(tea.MouseMsg{X: 30, Y: 5, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	h.send(tea.MouseMsg{X: 25, Y: 5, Action: tea.MouseActionMotion, Button: tea.MouseButtonLeft})
	h.send(tea.MouseMsg{X: 20, Y: 5, Action: tea.MouseActionRelease})

	if got := h.m.pagers[nav.AppNotes].Index(); got != 1 {
		t.Fatalf("pager = %d, want 1", got)
	}
	if h.snap().Detail != 0 {
		t.Error("swipe opened a detail view")
	}
	used, err := h.svc.Ledger("test").Flag(context.Background(), ledger.SwipeFlag(models.KindNote))
	if err != nil || !used {
		t.Fatalf("swipe flag = %v, %v", used, err)
	}
	if strings.Contains(h.m.View(), "swipe to browse") {
		t.Error("swipe hint still shown")
	}

	// A short drag is a tap on the card, not a swipe.
	h.send(tea.MouseMsg{X: 20, Y: 5, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	h.send(tea.MouseMsg{X: 20, Y: 5, Action: tea.MouseActionRelease})
	if got := h.m.pagers[nav.AppNotes].Index(); got != 1 {
		t.Errorf("pager moved on tap: %d", got)
	}
	if h.snap().Detail != 2 {
		t.Errorf("tap opened %d, want 2", h.snap().Detail)
	}
}

func TestSwipe_IgnoredOnHome(t *testing.T) {
	h := newHarness(t, nil)
	h.send(tea.MouseMsg{X: 30, Y: 1, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	h.send(tea.MouseMsg{X: 10, Y: 1, Action: tea.MouseActionRelease})

	used, err := h.svc.Ledger("test").Flag(context.Background(), ledger.SwipeFlag(models.KindNote))
	if err != nil || used {
		t.Fatalf("swipe flag = %v, %v", used, err)
	}
	if h.snap().Phase != nav.PhaseIdle {
		t.Errorf("drag on home changed phase: %+v", h.snap())
	}
}

func TestHelp_ClaimsBack(t *testing.T) {
	h := newHarness(t, nil)
	h.press("1")
	h.settle()

	h.press("?")
	if !h.m.showHelp {
		t.Fatal("help not shown")
	}
	h.press("esc")
	if h.m.showHelp {
		t.Fatal("back did not hide help")
	}
	if s := h.snap(); s.Phase != nav.PhaseOpen {
		t.Fatalf("back closed the app while help was shown: %+v", s)
	}
	h.press("esc")
	if s := h.snap(); s.Phase != nav.PhaseClosing {
		t.Fatalf("second back: %+v", s)
	}
}

func TestWidget_DeepLinkMarksEntry(t *testing.T) {
	h := newHarness(t, nil)

	// The first card is the soonest upcoming event.
	h.press("enter")
	if s := h.snap(); s.Phase != nav.PhaseOpening {
		t.Fatalf("widget did not open an app: %+v", s)
	}
	h.settle()
	if s := h.snap(); s.ActiveApp != nav.AppEvents || s.Detail != 1 {
		t.Fatalf("after deep link: %+v", s)
	}
	if h.m.entry[models.KindEvent] != 1 {
		t.Errorf("entry = %d, want 1", h.m.entry[models.KindEvent])
	}
	if got := h.viewed(models.KindEvent); !slices.Equal(got, []int{1}) {
		t.Errorf("viewed = %v", got)
	}
}

func TestDetailLink_CrossesApps(t *testing.T) {
	h := newHarness(t, &Link{App: nav.AppNotes, ID: 1})
	h.settle()
	if s := h.snap(); s.ActiveApp != nav.AppNotes || s.Detail != 1 {
		t.Fatalf("entry link: %+v", s)
	}

	// Note 1 links to event 1.
	h.press("enter")
	if s := h.snap(); s.Detail != 0 {
		t.Fatalf("detail not closed before leaving the app: %+v", s)
	}
	h.send(RouterMsg{h.snap()})
	if s := h.snap(); s.Phase != nav.PhaseClosing {
		t.Fatalf("app not closing: %+v", s)
	}
	h.settle()
	if s := h.snap(); s.Phase != nav.PhaseOpening {
		t.Fatalf("target app not opening: %+v", s)
	}
	h.settle()
	if s := h.snap(); s.ActiveApp != nav.AppEvents || s.Detail != 1 {
		t.Fatalf("after link: %+v", s)
	}
	// Internal links do not change the entry item.
	if _, ok := h.m.entry[models.KindEvent]; ok {
		t.Error("internal link set an entry item")
	}
}

func TestDetailLink_SameApp(t *testing.T) {
	h := newHarness(t, &Link{App: nav.AppNotes, ID: 2})
	h.settle()

	h.press("tab")
	h.press("enter")
	if s := h.snap(); s.Detail != 3 {
		t.Fatalf("detail = %d, want 3", s.Detail)
	}
	if got := h.m.pagers[nav.AppNotes].Index(); got != 2 {
		t.Errorf("pager = %d, want 2", got)
	}
	if got := h.viewed(models.KindNote); !slices.Equal(got, []int{2, 3}) {
		t.Errorf("viewed = %v", got)
	}
}

func TestReset_ForgetsEverything(t *testing.T) {
	h := newHarness(t, &Link{App: nav.AppNotes, ID: 2})
	h.settle()
	h.press("R")

	if got := h.viewed(models.KindNote); len(got) != 0 {
		t.Errorf("viewed after reset = %v", got)
	}
	if !h.m.firstVisit || len(h.m.entry) != 0 {
		t.Errorf("model state not reset: first=%v entry=%v", h.m.firstVisit, h.m.entry)
	}
}

func TestParseLink(t *testing.T) {
	l, err := ParseLink("events:2")
	if err != nil || l != (Link{App: nav.AppEvents, ID: 2}) {
		t.Fatalf("ParseLink = %+v, %v", l, err)
	}
	for _, bad := range []string{"", "notes", "widgets:1", "notes:x"} {
		if _, err := ParseLink(bad); err == nil {
			t.Errorf("ParseLink(%q) accepted", bad)
		}
	}
}

func TestSwipe_AppClosedMidDrag(t *testing.T) {
	h := newHarness(t, nil)
	h.press("1")
	h.settle()

	h.send(tea.MouseMsg{X: 30, Y: 5, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	h.press("esc")
	h.clock.Advance(commit)
	if s := h.snap(); s.ActiveApp != nav.AppNone {
		t.Fatalf("app not committed closed: %+v", s)
	}
	// 8 columns is 64px, past the commit threshold.
	h.send(tea.MouseMsg{X: 22, Y: 5, Action: tea.MouseActionRelease})

	if got := h.m.pagers[nav.AppNotes].Index(); got != 0 {
		t.Errorf("pager = %d, want 0", got)
	}
	if h.m.gesture.Active() {
		t.Error("drag still tracked after release")
	}
	used, err := h.svc.Ledger("test").Flag(context.Background(), ledger.SwipeFlag(models.KindNote))
	if err != nil || used {
		t.Fatalf("swipe flag = %v, %v", used, err)
	}
}

func TestSwipe_RouterChangeCancelsDrag(t *testing.T) {
	h := newHarness(t, nil)
	h.press("1")
	h.settle()

	h.send(tea.MouseMsg{X: 30, Y: 5, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	if !h.m.gesture.Active() {
		t.Fatal("drag not started in open app")
	}
	h.press("esc")
	h.send(RouterMsg{h.snap()})
	if h.m.gesture.Active() {
		t.Fatal("closing transition did not cancel the drag")
	}
}

func TestEvent_NotClickable(t *testing.T) {
	h := newHarness(t, nil)
	h.press("3")
	h.settle()

	// Events page upcoming first; the past event 3 is last.
	h.press("l")
	h.press("l")
	if id, _ := h.m.currentID(nav.AppEvents); id != 3 {
		t.Fatalf("current event = %d, want 3", id)
	}
	h.press("enter")
	if s := h.snap(); s.Detail != 0 {
		t.Fatalf("non-clickable event opened: %+v", s)
	}
	if got := h.viewed(models.KindEvent); len(got) != 0 {
		t.Errorf("viewed = %v", got)
	}

	h.press("h")
	h.press("enter")
	if s := h.snap(); s.Detail != 2 {
		t.Errorf("clickable event: detail = %d, want 2", s.Detail)
	}
}

func TestEntry_NonClickableEventIgnored(t *testing.T) {
	h := newHarness(t, &Link{App: nav.AppEvents, ID: 3})
	h.settle()
	if s := h.snap(); s.Phase != nav.PhaseIdle {
		t.Fatalf("link to non-clickable event opened the app: %+v", s)
	}
	if _, ok := h.m.entry[models.KindEvent]; ok {
		t.Error("non-clickable event became the entry item")
	}
}
