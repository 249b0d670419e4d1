package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/shopspring/decimal"

	"gifttable/internal/domain"
)

var errBoom = errors.New("boom")

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// memStore is an in-memory relational store shared by the fake repositories.
// A single mutex makes every method atomic, like a row-locking database.
type memStore struct {
	mu            sync.Mutex
	seq           int
	events        map[string]*domain.Event
	attendees     map[string]*domain.Attendee
	items         map[string]*domain.GiftItem
	attendeeOrder []string
	itemOrder     []string
	notifications []*domain.Notification
	// fail makes the named operation return the error, e.g. "event.Create".
	fail map[string]error
}

func newMemStore() *memStore {
	return &memStore{
		events:    make(map[string]*domain.Event),
		attendees: make(map[string]*domain.Attendee),
		items:     make(map[string]*domain.GiftItem),
		fail:      make(map[string]error),
	}
}

func (s *memStore) nextID(prefix string) string {
	s.seq++
	return fmt.Sprintf("%s-%d", prefix, s.seq)
}

func (s *memStore) eventRepo() *memEventRepo               { return &memEventRepo{s} }
func (s *memStore) attendeeRepo() *memAttendeeRepo         { return &memAttendeeRepo{s} }
func (s *memStore) giftItemRepo() *memGiftItemRepo         { return &memGiftItemRepo{s} }
func (s *memStore) notificationRepo() *memNotificationRepo { return &memNotificationRepo{s} }

// seedEvent stores an event with the given status and returns its ID.
func (s *memStore) seedEvent(status domain.EventStatus) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	e := domain.NewEvent("Secret Santa", nil, "Carol", now)
	e.ID = s.nextID("ev")
	e.Status = status
	s.events[e.ID] = e
	return e.ID
}

func (s *memStore) seedAttendee(eventID, name string) *domain.Attendee {
	s.mu.Lock()
	defer s.mu.Unlock()
	a := domain.NewAttendee(eventID, name, name+"@example.com", "tok-"+name, time.Now())
	a.ID = s.nextID("att")
	s.attendees[a.ID] = a
	s.attendeeOrder = append(s.attendeeOrder, a.ID)
	cp := *a
	return &cp
}

func (s *memStore) seedGiftItem(eventID, name string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	price := decimal.NewFromInt(20)
	g := domain.NewGiftItem(eventID, name, &price, nil, time.Now())
	g.ID = s.nextID("gift")
	s.items[g.ID] = g
	s.itemOrder = append(s.itemOrder, g.ID)
	return g.ID
}

func (s *memStore) setStatus(eventID string, status domain.EventStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events[eventID].Status = status
}

// item returns a snapshot of the stored gift item.
func (s *memStore) item(id string) *domain.GiftItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.items[id]
	if !ok {
		return nil
	}
	return s.copyItem(g)
}

func (s *memStore) copyItem(g *domain.GiftItem) *domain.GiftItem {
	cp := *g
	cp.StoreURLs = slices.Clone(g.StoreURLs)
	if g.Claim != nil {
		claim := *g.Claim
		if a, ok := s.attendees[claim.AttendeeID]; ok {
			claim.AttendeeName = a.Name
			claim.AttendeeEmail = a.Email
		}
		cp.Claim = &claim
	}
	return &cp
}

// mutable reports whether the event exists and is not archived. Callers hold mu.
func (s *memStore) mutable(eventID string) bool {
	e, ok := s.events[eventID]
	return ok && e.Status != domain.EventStatusArchived
}

func (s *memStore) failure(op string) error {
	return s.fail[op]
}

type memEventRepo struct{ s *memStore }

func (r *memEventRepo) Create(ctx context.Context, e *domain.Event, attendees []*domain.Attendee) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure("event.Create"); err != nil {
		return err
	}
	for _, a := range attendees {
		for _, existing := range s.attendees {
			if existing.AccessToken == a.AccessToken {
				return domain.ErrDuplicate
			}
		}
	}
	e.ID = s.nextID("ev")
	cp := *e
	s.events[e.ID] = &cp
	for _, a := range attendees {
		a.EventID = e.ID
		a.ID = s.nextID("att")
		acp := *a
		s.attendees[a.ID] = &acp
		s.attendeeOrder = append(s.attendeeOrder, a.ID)
	}
	return nil
}

func (r *memEventRepo) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.events[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *e
	return &cp, nil
}

func (r *memEventRepo) List(ctx context.Context, params domain.PaginationParams) ([]*domain.EventSummary, int, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure("event.List"); err != nil {
		return nil, 0, err
	}
	out := []*domain.EventSummary{}
	for _, e := range s.events {
		sum := &domain.EventSummary{Event: *e}
		for _, a := range s.attendees {
			if a.EventID == e.ID {
				sum.AttendeeCount++
			}
		}
		for _, g := range s.items {
			if g.EventID == e.ID {
				sum.GiftCount++
			}
		}
		out = append(out, sum)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	total := len(out)
	if off := params.Offset(); off < len(out) {
		out = out[off:]
	} else {
		out = out[:0]
	}
	if l := params.Limit(); l > 0 && l < len(out) {
		out = out[:l]
	}
	return out, total, nil
}

func (r *memEventRepo) Update(ctx context.Context, id, subject string, description *string, giftReceiverName string) (*domain.Event, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.events[id]
	if !ok || e.Status == domain.EventStatusArchived {
		return nil, domain.ErrNotFound
	}
	e.Subject, e.Description, e.GiftReceiverName = subject, description, giftReceiverName
	e.UpdatedAt = time.Now()
	cp := *e
	return &cp, nil
}

func (r *memEventRepo) Transition(ctx context.Context, id string, from []domain.EventStatus, to domain.EventStatus, at time.Time) (*domain.Event, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.events[id]
	if !ok || !slices.Contains(from, e.Status) {
		return nil, domain.ErrNotFound
	}
	e.Status = to
	e.UpdatedAt = at
	switch to {
	case domain.EventStatusPublished:
		e.PublishedAt = &at
	case domain.EventStatusArchived:
		e.ClosedAt = &at
	}
	cp := *e
	return &cp, nil
}

func (r *memEventRepo) Delete(ctx context.Context, id string) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.events[id]; !ok {
		return domain.ErrNotFound
	}
	delete(s.events, id)
	for aid, a := range s.attendees {
		if a.EventID == id {
			delete(s.attendees, aid)
		}
	}
	for gid, g := range s.items {
		if g.EventID == id {
			delete(s.items, gid)
		}
	}
	return nil
}

type memAttendeeRepo struct{ s *memStore }

func (r *memAttendeeRepo) CreateMany(ctx context.Context, attendees []*domain.Attendee) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure("attendee.CreateMany"); err != nil {
		return err
	}
	for _, a := range attendees {
		if !s.mutable(a.EventID) {
			return domain.ErrNotFound
		}
	}
	for _, a := range attendees {
		a.ID = s.nextID("att")
		cp := *a
		s.attendees[a.ID] = &cp
		s.attendeeOrder = append(s.attendeeOrder, a.ID)
	}
	return nil
}

func (r *memAttendeeRepo) GetByID(ctx context.Context, id string) (*domain.Attendee, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.attendees[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (r *memAttendeeRepo) GetByToken(ctx context.Context, token string) (*domain.Attendee, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure("attendee.GetByToken"); err != nil {
		return nil, err
	}
	for _, a := range s.attendees {
		if a.AccessToken == token {
			cp := *a
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *memAttendeeRepo) ListByEventID(ctx context.Context, eventID string) ([]*domain.Attendee, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure("attendee.ListByEventID"); err != nil {
		return nil, err
	}
	out := []*domain.Attendee{}
	for _, id := range s.attendeeOrder {
		if a, ok := s.attendees[id]; ok && a.EventID == eventID {
			cp := *a
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *memAttendeeRepo) Update(ctx context.Context, id, name, email string) (*domain.Attendee, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.attendees[id]
	if !ok || !s.mutable(a.EventID) {
		return nil, domain.ErrNotFound
	}
	a.Name, a.Email = name, email
	cp := *a
	return &cp, nil
}

func (r *memAttendeeRepo) Delete(ctx context.Context, id string) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.attendees[id]
	if !ok || !s.mutable(a.EventID) {
		return domain.ErrNotFound
	}
	delete(s.attendees, id)
	for _, g := range s.items {
		if g.Claim != nil && g.Claim.AttendeeID == id {
			g.Claim = nil
		}
	}
	return nil
}

type memGiftItemRepo struct{ s *memStore }

func (r *memGiftItemRepo) Create(ctx context.Context, item *domain.GiftItem) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure("gift.Create"); err != nil {
		return err
	}
	if !s.mutable(item.EventID) {
		return domain.ErrNotFound
	}
	item.ID = s.nextID("gift")
	s.items[item.ID] = s.copyItem(item)
	s.itemOrder = append(s.itemOrder, item.ID)
	return nil
}

func (r *memGiftItemRepo) GetByID(ctx context.Context, id string) (*domain.GiftItem, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.items[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return s.copyItem(g), nil
}

func (r *memGiftItemRepo) list(match func(*domain.GiftItem) bool) []*domain.GiftItem {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []*domain.GiftItem{}
	for _, id := range s.itemOrder {
		if g, ok := s.items[id]; ok && match(g) {
			out = append(out, s.copyItem(g))
		}
	}
	return out
}

func (r *memGiftItemRepo) ListByEventID(ctx context.Context, eventID string) ([]*domain.GiftItem, error) {
	return r.list(func(g *domain.GiftItem) bool { return g.EventID == eventID }), nil
}

func (r *memGiftItemRepo) ListClaimedBy(ctx context.Context, attendeeID string) ([]*domain.GiftItem, error) {
	return r.list(func(g *domain.GiftItem) bool { return g.IsClaimedBy(attendeeID) }), nil
}

func (r *memGiftItemRepo) Update(ctx context.Context, id, name string, price *decimal.Decimal, storeURLs []string) (*domain.GiftItem, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.items[id]
	if !ok || !s.mutable(g.EventID) {
		return nil, domain.ErrNotFound
	}
	g.Name, g.Price, g.StoreURLs = name, price, storeURLs
	return s.copyItem(g), nil
}

func (r *memGiftItemRepo) Delete(ctx context.Context, id string) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.items[id]
	if !ok || !s.mutable(g.EventID) {
		return domain.ErrNotFound
	}
	delete(s.items, id)
	return nil
}

func (r *memGiftItemRepo) published(g *domain.GiftItem) bool {
	e, ok := r.s.events[g.EventID]
	return ok && e.Status == domain.EventStatusPublished
}

func (r *memGiftItemRepo) Claim(ctx context.Context, id, attendeeID string, at time.Time) (bool, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.items[id]
	if !ok || g.Claim != nil || !r.published(g) {
		return false, nil
	}
	g.Claim = &domain.GiftClaim{AttendeeID: attendeeID, ClaimedAt: at}
	return true, nil
}

func (r *memGiftItemRepo) Release(ctx context.Context, id, attendeeID string) (bool, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.items[id]
	if !ok || !g.IsClaimedBy(attendeeID) || !r.published(g) {
		return false, nil
	}
	g.Claim = nil
	return true, nil
}

type memNotificationRepo struct{ s *memStore }

func (r *memNotificationRepo) Create(ctx context.Context, n *domain.Notification) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure("notification.Create"); err != nil {
		return err
	}
	n.ID = s.nextID("n")
	cp := *n
	s.notifications = append(s.notifications, &cp)
	return nil
}

func (r *memNotificationRepo) ListByEventID(ctx context.Context, eventID string) ([]*domain.Notification, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []*domain.Notification{}
	for _, n := range s.notifications {
		if n.EventID == eventID {
			cp := *n
			out = append(out, &cp)
		}
	}
	return out, nil
}

// seqTokens hands out predictable, unique access tokens.
type seqTokens struct {
	n   atomic.Int64
	err error
}

func (t *seqTokens) NewAccessToken() (string, error) {
	if t.err != nil {
		return "", t.err
	}
	return fmt.Sprintf("token-%d", t.n.Add(1)), nil
}

// recordingNotifier records notifier calls instead of sending anything.
type recordingNotifier struct {
	mu        sync.Mutex
	published []string
	added     []string
}

func (n *recordingNotifier) EventPublished(ctx context.Context, event *domain.Event) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.published = append(n.published, event.ID)
}

func (n *recordingNotifier) GiftItemAdded(ctx context.Context, event *domain.Event, item *domain.GiftItem) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.added = append(n.added, item.ID)
}
