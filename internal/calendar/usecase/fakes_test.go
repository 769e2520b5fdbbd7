package usecase

import (
	"context"
	"sort"
	"sync"
	"time"

	calendardomain "meeting-portal-backend/internal/calendar/domain"
	"meeting-portal-backend/internal/calendar/repository"
	"meeting-portal-backend/internal/notification"
	"meeting-portal-backend/pkg/graph"
)

type fakeTokenStore struct {
	mu      sync.Mutex
	records map[string]calendardomain.TokenRecord
	saves   int
}

func newFakeTokenStore(records ...*calendardomain.TokenRecord) *fakeTokenStore {
	s := &fakeTokenStore{records: make(map[string]calendardomain.TokenRecord)}
	for _, r := range records {
		s.records[r.UserID] = *r
	}
	return s
}

func (s *fakeTokenStore) Get(userID string) (*calendardomain.TokenRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.records[userID]
	if !ok {
		return nil, nil
	}
	return &r, nil
}

func (s *fakeTokenStore) Save(record *calendardomain.TokenRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[record.UserID] = *record
	s.saves++
	return nil
}

func (s *fakeTokenStore) Delete(userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, userID)
	return nil
}

func (s *fakeTokenStore) ListConnected() ([]*calendardomain.TokenRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*calendardomain.TokenRecord, 0, len(s.records))
	for _, r := range s.records {
		r := r
		out = append(out, &r)
	}
	return out, nil
}

// fakeMeetingRepo enforces the (user, remote event) uniqueness like the database index
type fakeMeetingRepo struct {
	mu        sync.Mutex
	meetings  map[string]*calendardomain.Meeting
	createErr error
}

func newFakeMeetingRepo() *fakeMeetingRepo {
	return &fakeMeetingRepo{meetings: make(map[string]*calendardomain.Meeting)}
}

func (r *fakeMeetingRepo) Create(m *calendardomain.Meeting) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	if m.RemoteEventID != nil {
		for _, existing := range r.meetings {
			if existing.UserID == m.UserID && existing.RemoteEventID != nil && *existing.RemoteEventID == *m.RemoteEventID {
				return repository.ErrDuplicateRemoteEvent
			}
		}
	}
	cp := *m
	r.meetings[m.ID] = &cp
	return nil
}

func (r *fakeMeetingRepo) FindByID(id string) (*calendardomain.Meeting, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.meetings[id]
	if !ok {
		return nil, nil
	}
	cp := *m
	return &cp, nil
}

func (r *fakeMeetingRepo) FindByUserID(userID string, status *calendardomain.MeetingStatus, from *time.Time, limit, offset int) ([]*calendardomain.Meeting, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*calendardomain.Meeting
	for _, m := range r.meetings {
		if m.UserID != userID {
			continue
		}
		if status != nil && m.Status != *status {
			continue
		}
		if from != nil && m.StartTime.Before(*from) {
			continue
		}
		cp := *m
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime.Before(out[j].StartTime) })
	total := int64(len(out))
	if offset >= len(out) {
		return nil, total, nil
	}
	out = out[offset:]
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, total, nil
}

func (r *fakeMeetingRepo) Update(m *calendardomain.Meeting) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *m
	r.meetings[m.ID] = &cp
	return nil
}

func (r *fakeMeetingRepo) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.meetings, id)
	return nil
}

func (r *fakeMeetingRepo) ExistingRemoteIDs(userID string) (map[string]struct{}, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make(map[string]struct{})
	for _, m := range r.meetings {
		if m.UserID == userID && m.RemoteEventID != nil {
			ids[*m.RemoteEventID] = struct{}{}
		}
	}
	return ids, nil
}

func (r *fakeMeetingRepo) byRemoteID(userID, remoteID string) *calendardomain.Meeting {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.meetings {
		if m.UserID == userID && m.RemoteEventID != nil && *m.RemoteEventID == remoteID {
			return m
		}
	}
	return nil
}

func (r *fakeMeetingRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.meetings)
}

type fakeRunRepo struct {
	mu        sync.Mutex
	runs      []*calendardomain.SyncRun
	createErr error
}

func (r *fakeRunRepo) Create(run *calendardomain.SyncRun) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	cp := *run
	r.runs = append(r.runs, &cp)
	return nil
}

func (r *fakeRunRepo) Finish(run *calendardomain.SyncRun) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, existing := range r.runs {
		if existing.ID == run.ID {
			cp := *run
			r.runs[i] = &cp
		}
	}
	return nil
}

func (r *fakeRunRepo) LastRun(userID string, trigger calendardomain.Trigger) (*calendardomain.SyncRun, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var last *calendardomain.SyncRun
	for _, run := range r.runs {
		if run.UserID == userID && run.Trigger == trigger && (last == nil || run.StartedAt.After(last.StartedAt)) {
			last = run
		}
	}
	return last, nil
}

func (r *fakeRunRepo) ListByUserID(userID string, limit int) ([]*calendardomain.SyncRun, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*calendardomain.SyncRun
	for i := len(r.runs) - 1; i >= 0 && len(out) < limit; i-- {
		if r.runs[i].UserID == userID {
			out = append(out, r.runs[i])
		}
	}
	return out, nil
}

// fakeExchanger returns the queued results in order, repeating the last one
type fakeExchanger struct {
	mu      sync.Mutex
	results []exchangeResult
	calls   int
	seen    []string
}

type exchangeResult struct {
	token *graph.Token
	err   error
}

func (e *fakeExchanger) RefreshToken(_ context.Context, refreshToken string) (*graph.Token, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.calls++
	e.seen = append(e.seen, refreshToken)
	if len(e.results) == 0 {
		return &graph.Token{AccessToken: "new-access", RefreshToken: "new-refresh", ExpiresIn: 3600}, nil
	}
	idx := e.calls - 1
	if idx >= len(e.results) {
		idx = len(e.results) - 1
	}
	return e.results[idx].token, e.results[idx].err
}

type fakeCalendarAPI struct {
	mu        sync.Mutex
	responses []apiResponse
	calls     int
	tokens    []string
	froms     []time.Time
}

type apiResponse struct {
	result *calendardomain.FetchResult
	err    error
}

func (a *fakeCalendarAPI) ListUpcomingEvents(_ context.Context, accessToken string, from time.Time, _ int) (*calendardomain.FetchResult, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.calls++
	a.tokens = append(a.tokens, accessToken)
	a.froms = append(a.froms, from)
	if len(a.responses) == 0 {
		return &calendardomain.FetchResult{}, nil
	}
	idx := a.calls - 1
	if idx >= len(a.responses) {
		idx = len(a.responses) - 1
	}
	return a.responses[idx].result, a.responses[idx].err
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []notification.Event
}

func (p *recordingPublisher) Publish(evt notification.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, evt)
}

func (p *recordingPublisher) types() []notification.EventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]notification.EventType, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

type fixedClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fixedClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func timePtr(t time.Time) *time.Time { return &t }

func timedEvent(id string, start time.Time, joinURL string) *calendardomain.RemoteEvent {
	return &calendardomain.RemoteEvent{
		RemoteID:         id,
		Subject:          "Event " + id,
		StartTime:        timePtr(start),
		EndTime:          timePtr(start.Add(time.Hour)),
		OnlineMeetingURL: joinURL,
	}
}

func fetchResult(events ...*calendardomain.RemoteEvent) *calendardomain.FetchResult {
	return &calendardomain.FetchResult{Events: events, TotalFound: len(events)}
}

func noSleepPolicy() RefresherOption {
	p := DefaultRefreshPolicy()
	p.Sleep = func(context.Context, time.Duration) error { return nil }
	return WithRetryPolicy(p)
}
