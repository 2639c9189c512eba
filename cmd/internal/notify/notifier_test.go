package notify

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"gopkg.in/gomail.v2"

	"holasmile/cmd/internal/domain/entity"
)

type recordingDispatcher struct {
	mu       sync.Mutex
	sent     []Message
	failFor  map[int]bool
	panicFor map[int]bool
}

func (r *recordingDispatcher) Dispatch(ctx context.Context, msg Message) error {
	if r.panicFor[msg.RecipientUserID] {
		panic("boom")
	}
	if r.failFor[msg.RecipientUserID] {
		return errors.New("channel down")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, msg)
	return nil
}

func (r *recordingDispatcher) recipients() []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make([]int, 0, len(r.sent))
	for _, m := range r.sent {
		ids = append(ids, m.RecipientUserID)
	}
	sort.Ints(ids)
	return ids
}

func hello(id int) Message {
	return Message{Title: "hello", Body: "world", Category: "test"}
}

func TestFanOut_DeliversOncePerDistinctRecipient(t *testing.T) {
	d := &recordingDispatcher{}
	n := NewNotifier(d, 2, time.Second)

	report := n.FanOut(context.Background(), Users(3, 1, 3, 2, 0, -4), hello)

	got := d.recipients()
	if len(got) != 3 || got[0] != 1 || got[1] != 2 || got[2] != 3 {
		t.Fatalf("expected recipients [1 2 3], got %v", got)
	}
	if report.Recipients != 3 || report.Delivered != 3 || report.Failed != 0 {
		t.Fatalf("unexpected report %+v", report)
	}
	if report.Batch == "" {
		t.Fatal("expected a batch id")
	}
}

func TestFanOut_FailuresAndPanicsAreSwallowed(t *testing.T) {
	d := &recordingDispatcher{failFor: map[int]bool{2: true}, panicFor: map[int]bool{3: true}}
	n := NewNotifier(d, 4, time.Second)

	report := n.FanOut(context.Background(), Users(1, 2, 3, 4), hello)

	if got := d.recipients(); len(got) != 2 || got[0] != 1 || got[1] != 4 {
		t.Fatalf("expected deliveries to 1 and 4, got %v", got)
	}
	if report.Delivered != 2 || report.Failed != 2 {
		t.Fatalf("unexpected report %+v", report)
	}
}

func TestFanOut_AudienceErrorIsSwallowed(t *testing.T) {
	d := &recordingDispatcher{}
	n := NewNotifier(d, 1, time.Second)

	failing := func(context.Context) ([]int, error) { return nil, errors.New("db down") }
	report := n.FanOut(context.Background(), failing, hello)

	if report.Recipients != 0 || len(d.recipients()) != 0 {
		t.Fatalf("expected nothing sent, got %+v", report)
	}

	panicking := func(context.Context) ([]int, error) { panic("nil map") }
	report = n.FanOut(context.Background(), panicking, hello)
	if report.Recipients != 0 {
		t.Fatalf("expected nothing sent, got %+v", report)
	}
}

func TestFanOut_IgnoresCallerCancellation(t *testing.T) {
	d := &recordingDispatcher{}
	n := NewNotifier(d, 1, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	report := n.FanOut(ctx, Users(7), hello)

	if report.Delivered != 1 {
		t.Fatalf("expected delivery despite cancelled request context, got %+v", report)
	}
}

type slowDispatcher struct{}

func (slowDispatcher) Dispatch(ctx context.Context, msg Message) error {
	<-ctx.Done()
	return ctx.Err()
}

func TestFanOut_PerMessageTimeout(t *testing.T) {
	n := NewNotifier(slowDispatcher{}, 2, 20*time.Millisecond)

	start := time.Now()
	report := n.FanOut(context.Background(), Users(1, 2), hello)

	if report.Failed != 2 {
		t.Fatalf("expected both deliveries to time out, got %+v", report)
	}
	if time.Since(start) > 2*time.Second {
		t.Fatal("fan-out did not honour the timeout")
	}
}

type memStore struct {
	rows []*entity.Notification
}

func (m *memStore) Create(_ context.Context, n *entity.Notification) error {
	m.rows = append(m.rows, n)
	return nil
}

func TestStoreDispatcher_PersistsInboxRow(t *testing.T) {
	store := &memStore{}
	related := 42
	err := (&StoreDispatcher{Store: store}).Dispatch(context.Background(), Message{
		RecipientUserID: 9, Title: "Schedule", Body: "updated", Category: "schedule",
		RelatedObjectID: &related, TargetURL: "/schedules/42",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(store.rows) != 1 {
		t.Fatalf("expected one row, got %d", len(store.rows))
	}
	row := store.rows[0]
	if row.UserID != 9 || row.IsRead || row.MappingURL != "/schedules/42" || *row.RelatedObjectID != 42 || row.CreatedAt == 0 {
		t.Fatalf("unexpected row %+v", row)
	}
}

type userLookup map[int]*entity.User

func (u userLookup) FindByID(_ context.Context, id int) (*entity.User, error) {
	return u[id], nil
}

type fakeSender struct {
	sent []*gomail.Message
}

func (f *fakeSender) DialAndSend(m ...*gomail.Message) error {
	f.sent = append(f.sent, m...)
	return nil
}

func TestMailDispatcher(t *testing.T) {
	sender := &fakeSender{}
	d := &MailDispatcher{
		Users:  userLookup{1: {ID: 1, Email: "a@clinic.test"}, 2: {ID: 2}},
		Sender: sender,
		From:   "noreply@clinic.test",
	}

	if err := d.Dispatch(context.Background(), Message{RecipientUserID: 1, Title: "t", Body: "b"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := d.Dispatch(context.Background(), Message{RecipientUserID: 2, Title: "t", Body: "b"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sender.sent) != 1 {
		t.Fatalf("expected one mail, got %d", len(sender.sent))
	}
	if to := sender.sent[0].GetHeader("To"); len(to) != 1 || to[0] != "a@clinic.test" {
		t.Fatalf("unexpected recipient %v", to)
	}
}

func TestMulti_JoinsErrors(t *testing.T) {
	ok := &recordingDispatcher{}
	bad := &recordingDispatcher{failFor: map[int]bool{5: true}}

	err := Multi{bad, ok}.Dispatch(context.Background(), Message{RecipientUserID: 5})
	if err == nil {
		t.Fatal("expected joined error")
	}
	if len(ok.recipients()) != 1 {
		t.Fatal("later dispatchers must still run after a failure")
	}
}

func TestChannel(t *testing.T) {
	if got := Channel(12); got != "notifications:12" {
		t.Fatalf("unexpected channel %q", got)
	}
}
