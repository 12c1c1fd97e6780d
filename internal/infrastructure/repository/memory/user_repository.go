package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/riskibarqy/quiniela/internal/domain/coinledger"
	"github.com/riskibarqy/quiniela/internal/domain/user"
)

type outboxEntry struct {
	enqueuedAt time.Time
	version    int64
	attempts   int
	lastError  string
}

// UserRepository keeps users, their coin ledger and the mirror outbox behind
// one lock so a credit is applied atomically.
type UserRepository struct {
	mu      sync.RWMutex
	nextID  int64
	users   map[int64]user.User
	entries []coinledger.Entry
	outbox  map[int64]outboxEntry
	now     func() time.Time
}

func NewUserRepository(users []user.User) *UserRepository {
	r := &UserRepository{
		users:  make(map[int64]user.User, len(users)),
		outbox: make(map[int64]outboxEntry),
		now:    time.Now,
	}
	for _, item := range users {
		if item.Version == 0 {
			item.Version = 1
		}
		r.users[item.ID] = cloneUser(item)
		if item.ID > r.nextID {
			r.nextID = item.ID
		}
	}

	return r
}

func (r *UserRepository) Create(_ context.Context, item user.User) (user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.users {
		if strings.EqualFold(existing.Username, item.Username) {
			return user.User{}, user.ErrUsernameTaken
		}
	}

	now := r.now().UTC()
	r.nextID++
	item.ID = r.nextID
	item.CreatedAt = now
	item.UpdatedAt = now
	item.Version = 1
	r.users[item.ID] = cloneUser(item)
	r.enqueueLocked(item.ID, item.Version, now)

	return cloneUser(item), nil
}

func (r *UserRepository) GetByID(_ context.Context, userID int64) (user.User, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.users[userID]
	if !ok {
		return user.User{}, false, nil
	}
	return cloneUser(item), true, nil
}

func (r *UserRepository) GetByUsername(_ context.Context, username string) (user.User, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, item := range r.users {
		if strings.EqualFold(item.Username, username) {
			return cloneUser(item), true, nil
		}
	}
	return user.User{}, false, nil
}

func (r *UserRepository) ListActive(_ context.Context) ([]user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]user.User, 0, len(r.users))
	for _, item := range r.users {
		if item.IsActive {
			out = append(out, cloneUser(item))
		}
	}
	sortUsers(out)

	return out, nil
}

func (r *UserRepository) ListByIDs(_ context.Context, userIDs []int64) ([]user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]user.User, 0, len(userIDs))
	for _, id := range userIDs {
		if item, ok := r.users[id]; ok {
			out = append(out, cloneUser(item))
		}
	}
	sortUsers(out)

	return out, nil
}

func (r *UserRepository) UpdateProfile(_ context.Context, userID int64, in user.ProfileUpdate) (user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, ok := r.users[userID]
	if !ok {
		return user.User{}, user.ErrUserNotFound
	}
	if in.Email != nil {
		item.Email = *in.Email
	}
	if in.FirstName != nil {
		item.FirstName = *in.FirstName
	}
	if in.LastName != nil {
		item.LastName = *in.LastName
	}
	now := r.now().UTC()
	item.UpdatedAt = now
	item.Version++
	r.users[userID] = item
	r.enqueueLocked(userID, item.Version, now)

	return cloneUser(item), nil
}

func (r *UserRepository) Apply(_ context.Context, entry coinledger.Entry) (coinledger.Credit, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, ok := r.users[entry.UserID]
	if !ok {
		return coinledger.Credit{}, false, user.ErrUserNotFound
	}
	if !entry.Forced {
		for _, existing := range r.entries {
			if !existing.Forced && existing.UserID == entry.UserID && existing.Jornada == entry.Jornada {
				return coinledger.Credit{Entry: existing, Previous: item.VirtualCoins, User: cloneUser(item)}, false, nil
			}
		}
	}

	previous := item.VirtualCoins
	assignedAt := entry.AssignedAt
	item.VirtualCoins = item.VirtualCoins.Add(entry.Amount)
	item.LastCoinsAssignment = &assignedAt
	item.UpdatedAt = assignedAt
	item.Version++
	r.users[item.ID] = item
	r.entries = append(r.entries, entry)
	r.enqueueLocked(item.ID, item.Version, assignedAt)

	return coinledger.Credit{Entry: entry, Previous: previous, User: cloneUser(item)}, true, nil
}

func (r *UserRepository) ListByUser(_ context.Context, userID int64) ([]coinledger.Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]coinledger.Entry, 0)
	for _, entry := range r.entries {
		if entry.UserID == userID {
			out = append(out, entry)
		}
	}
	return out, nil
}

func (r *UserRepository) ListPending(_ context.Context, limit int) ([]int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]int64, 0, len(r.outbox))
	for id := range r.outbox {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		left, right := r.outbox[ids[i]], r.outbox[ids[j]]
		if !left.enqueuedAt.Equal(right.enqueuedAt) {
			return left.enqueuedAt.Before(right.enqueuedAt)
		}
		return ids[i] < ids[j]
	})
	if limit > 0 && len(ids) > limit {
		ids = ids[:limit]
	}

	return ids, nil
}

func (r *UserRepository) MarkMirrored(_ context.Context, userID, version int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if entry, ok := r.outbox[userID]; ok && entry.version <= version {
		delete(r.outbox, userID)
	}
	return nil
}

func (r *UserRepository) RecordFailure(_ context.Context, userID int64, reason string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.outbox[userID]
	if !ok {
		entry = outboxEntry{enqueuedAt: r.now().UTC()}
	}
	entry.attempts++
	entry.lastError = reason
	r.outbox[userID] = entry

	return nil
}

// enqueueLocked keeps the original enqueue time and raises the queued version.
func (r *UserRepository) enqueueLocked(userID, version int64, at time.Time) {
	entry, ok := r.outbox[userID]
	if !ok {
		r.outbox[userID] = outboxEntry{enqueuedAt: at, version: version}
		return
	}
	if version > entry.version {
		entry.version = version
		r.outbox[userID] = entry
	}
}

// UserMirror is the in-memory user projection.
type UserMirror struct {
	mu    sync.RWMutex
	items map[int64]user.User
	fail  error
}

func NewUserMirror() *UserMirror {
	return &UserMirror{items: make(map[int64]user.User)}
}

func (m *UserMirror) Upsert(_ context.Context, item user.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.fail != nil {
		return m.fail
	}
	if current, ok := m.items[item.ID]; ok && current.Version >= item.Version {
		return nil
	}
	m.items[item.ID] = cloneUser(item)
	return nil
}

// SetFailure makes every following Upsert return err until reset with nil.
func (m *UserMirror) SetFailure(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.fail = err
}

func (m *UserMirror) Get(userID int64) (user.User, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	item, ok := m.items[userID]
	return item, ok
}

func cloneUser(item user.User) user.User {
	if item.LastCoinsAssignment != nil {
		last := *item.LastCoinsAssignment
		item.LastCoinsAssignment = &last
	}
	return item
}

func sortUsers(items []user.User) {
	sort.Slice(items, func(i, j int) bool {
		return items[i].ID < items[j].ID
	})
}
