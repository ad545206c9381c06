package portfolio

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/starford/folio/internal/apperr"
	"github.com/starford/folio/internal/ledger"
	"github.com/starford/folio/internal/models"
	"github.com/starford/folio/internal/sse"
	"github.com/starford/folio/internal/testutil"
)

type recorder struct {
	mu     sync.Mutex
	events []sse.Event
}

func (r *recorder) Publish(e sse.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recorder) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.events))
	for i, e := range r.events {
		out[i] = e.Type
	}
	return out
}

func newService(t *testing.T) (*Service, *recorder) {
	t.Helper()
	reg, _ := testutil.TestRegistry(t, "")
	rec := &recorder{}
	return NewService(reg, testutil.TestStore(t), rec), rec
}

func TestListNotes_PinnedFirst(t *testing.T) {
	svc, _ := newService(t)
	notes := svc.ListNotes()
	if len(notes) != 4 {
		t.Fatalf("len = %d", len(notes))
	}
	if !notes[0].Pinned || !notes[1].Pinned || notes[2].Pinned {
		t.Errorf("order = %+v", notes)
	}
}

func TestGetNote_LockedHasNoBody(t *testing.T) {
	svc, _ := newService(t)

	open, err := svc.GetNote(1)
	if err != nil {
		t.Fatal(err)
	}
	if open.Body == nil || len(open.Body.Links) != 1 {
		t.Fatalf("body = %+v", open.Body)
	}

	locked, err := svc.GetNote(4)
	if err != nil {
		t.Fatal(err)
	}
	if !locked.Locked || locked.Body != nil {
		t.Errorf("locked note = %+v", locked)
	}

	if _, err := svc.GetNote(99); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("missing note err = %v", err)
	}
}

func TestListEvents_Timeframe(t *testing.T) {
	svc, _ := newService(t)
	up, err := svc.ListEvents(models.Upcoming)
	if err != nil {
		t.Fatal(err)
	}
	if len(up) != 2 || up[0].ID != 1 {
		t.Errorf("upcoming = %+v", up)
	}
	if _, err := svc.ListEvents("someday"); !errors.Is(err, apperr.ErrInvalidArgument) {
		t.Errorf("bad timeframe err = %v", err)
	}
}

func TestMarkViewed_PublishesOnce(t *testing.T) {
	svc, rec := newService(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := svc.MarkViewed(ctx, "v1", models.KindNote, 2); err != nil {
			t.Fatal(err)
		}
	}
	if got := rec.types(); len(got) != 1 || got[0] != sse.TypeLedgerViewed {
		t.Errorf("events = %v, want one ledger.viewed", got)
	}
	if rec.events[0].Topic != "v1" {
		t.Errorf("topic = %q", rec.events[0].Topic)
	}

	if _, err := svc.MarkViewed(ctx, "v1", models.KindNote, 99); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("unknown id err = %v", err)
	}
}

func TestHighlights_FirstVisitThenViewed(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	hs, err := svc.Highlights(ctx, "v1", models.KindNote, 0, 0)
	if err != nil {
		t.Fatal(err)
	}
	marked := 0
	for _, h := range hs {
		if h.Highlight {
			marked++
			if h.ID != 1 || h.Reason != ledger.ReasonFirstVisit {
				t.Errorf("unexpected highlight %+v", h)
			}
		}
	}
	if marked != 1 {
		t.Errorf("highlighted = %d, want exactly the priority note", marked)
	}

	if _, err := svc.MarkViewed(ctx, "v1", models.KindNote, 3); err != nil {
		t.Fatal(err)
	}
	h, err := svc.Highlight(ctx, "v1", models.KindNote, 1, 0, 0)
	if err != nil {
		t.Fatal(err)
	}
	if h.Highlight {
		t.Errorf("priority note still highlighted after another view: %+v", h)
	}
}

func TestHighlight_EntryItem(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	h, err := svc.Highlight(ctx, "v1", models.KindEvent, 2, 2, 0)
	if err != nil {
		t.Fatal(err)
	}
	if !h.Highlight || h.Reason != ledger.ReasonEntry {
		t.Errorf("entry item = %+v", h)
	}

	h, _ = svc.Highlight(ctx, "v1", models.KindEvent, 2, 2, 2)
	if h.Highlight {
		t.Errorf("open entry item still highlighted: %+v", h)
	}
}

func TestSetFlagAndReset(t *testing.T) {
	svc, rec := newService(t)
	ctx := context.Background()

	if err := svc.SetFlag(ctx, "v1", ledger.FlagNotesSwipeUsed, true); err != nil {
		t.Fatal(err)
	}
	st, err := svc.State(ctx, "v1")
	if err != nil {
		t.Fatal(err)
	}
	if !st.NotesSwiped {
		t.Errorf("state = %+v", st)
	}

	if err := svc.Reset(ctx, "v1"); err != nil {
		t.Fatal(err)
	}
	st, _ = svc.State(ctx, "v1")
	if st.NotesSwiped || len(st.ViewedNotes) != 0 {
		t.Errorf("state after reset = %+v", st)
	}

	got := rec.types()
	if len(got) != 2 || got[0] != sse.TypeLedgerFlag || got[1] != sse.TypeLedgerReset {
		t.Errorf("events = %v", got)
	}
}

func TestState_CollectsEveryKey(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	for _, step := range []func() error{
		func() error { _, err := svc.MarkViewed(ctx, "v1", models.KindNote, 3); return err },
		func() error { _, err := svc.MarkViewed(ctx, "v1", models.KindEvent, 2); return err },
		func() error { _, err := svc.MarkViewed(ctx, "v1", models.KindNote, 1); return err },
		func() error { return svc.SetFlag(ctx, "v1", ledger.FlagVisited, true) },
		func() error { return svc.SetFlag(ctx, "v1", ledger.FlagEventsSwipeUsed, true) },
	} {
		if err := step(); err != nil {
			t.Fatal(err)
		}
	}

	got, err := svc.State(ctx, "v1")
	if err != nil {
		t.Fatal(err)
	}
	want := ledger.State{
		Visited:      true,
		ViewedNotes:  []int{3, 1},
		ViewedEvents: []int{2},
		EventsSwiped: true,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("state mismatch (-want +got):\n%s", diff)
	}

	// Other profiles are untouched.
	other, err := svc.State(ctx, "v2")
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(ledger.State{ViewedNotes: []int{}, ViewedEvents: []int{}}, other); diff != "" {
		t.Errorf("other profile (-want +got):\n%s", diff)
	}
}
