// Package memory is an in-process storage.Store. A transaction holds the
// store lock from Begin until Save or Rollback, so its writes are invisible
// to everyone else until then; Rollback replays an undo journal.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"wishlist/internal/models"
	"wishlist/internal/storage"
)

type wishlistRow struct {
	w     models.Wishlist
	added time.Time
}

type itemRow struct {
	item  models.WishlistItem
	added time.Time
	seq   uint64
}

type state struct {
	wishlists map[uuid.UUID]*wishlistRow
	items     map[uuid.UUID]*itemRow
	sessions  map[string]models.Session
	emails    []models.EmailRecord
	seq       uint64
	now       func() time.Time
}

type Store struct {
	mu sync.Mutex
	st *state
}

type Option func(*Store)

// WithClock replaces time.Now for every timestamp the store assigns.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.st.now = now
	}
}

func New(opts ...Option) *Store {
	s := &Store{
		st: &state{
			wishlists: make(map[uuid.UUID]*wishlistRow),
			items:     make(map[uuid.UUID]*itemRow),
			sessions:  make(map[string]models.Session),
			now:       time.Now,
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) Close() {}

func (s *Store) Ping(ctx context.Context) error { return ctx.Err() }

func (s *Store) Begin(ctx context.Context) (storage.Tx, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("storage.memory.Begin: %w", err)
	}
	s.mu.Lock()
	return &Tx{store: s}, nil
}

// autocommit runs fn as its own single statement unit of work.
func (s *Store) autocommit(fn func(j *journal) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	j := &journal{}
	if err := fn(j); err != nil {
		j.undo()
		return err
	}
	return nil
}

func (s *Store) Wishlist(ctx context.Context, id uuid.UUID) (*models.Wishlist, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.wishlist(id)
}

func (s *Store) Item(ctx context.Context, wishlistID, itemID uuid.UUID) (*models.WishlistItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.item(wishlistID, itemID)
}

func (s *Store) WishlistsByEmail(ctx context.Context, email string) ([]models.Wishlist, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.wishlistsByEmail(email), nil
}

func (s *Store) AddWishlist(ctx context.Context, w *models.Wishlist) error {
	return s.autocommit(func(j *journal) error { return s.st.addWishlist(j, w) })
}

func (s *Store) AddItems(ctx context.Context, wishlistID uuid.UUID, items []models.WishlistItem) error {
	return s.autocommit(func(j *journal) error { return s.st.addItems(j, wishlistID, items) })
}

func (s *Store) UpdateItem(ctx context.Context, item *models.WishlistItem) error {
	return s.autocommit(func(j *journal) error { return s.st.updateItem(j, item) })
}

func (s *Store) RemoveItem(ctx context.Context, itemID, wishlistID uuid.UUID) (int64, error) {
	var n int64
	err := s.autocommit(func(j *journal) error {
		n = s.st.removeItem(j, itemID, wishlistID)
		return nil
	})
	return n, err
}

func (s *Store) RemoveWishlist(ctx context.Context, id uuid.UUID) (int64, error) {
	var n int64
	err := s.autocommit(func(j *journal) error {
		n = s.st.removeWishlist(j, id)
		return nil
	})
	return n, err
}

func (s *Store) VerifyOwnerToken(ctx context.Context, wishlistID uuid.UUID, token string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.verifyToken(wishlistID, token, true), nil
}

func (s *Store) VerifyShareToken(ctx context.Context, wishlistID uuid.UUID, token string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.verifyToken(wishlistID, token, false), nil
}

func (s *Store) MarkEmailVerified(ctx context.Context, wishlistID uuid.UUID) error {
	return s.autocommit(func(j *journal) error { return s.st.markEmailVerified(j, wishlistID) })
}

func (s *Store) NewSession(ctx context.Context, id, ip string) error {
	return s.autocommit(func(j *journal) error { return s.st.newSession(j, id, ip) })
}

func (s *Store) Session(ctx context.Context, id string) (*models.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.session(id)
}

func (s *Store) SessionItems(ctx context.Context, sessionID string) ([]models.WishlistItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.sessionItems(sessionID), nil
}

func (s *Store) RecordEmailSent(ctx context.Context, email, sessionID string) error {
	return s.autocommit(func(j *journal) error { return s.st.recordEmailSent(j, email, sessionID) })
}

func (s *Store) RecentEmailCount(ctx context.Context, email string, since time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.recentEmailCount(email, since), nil
}

type journal struct {
	steps []func()
}

func (j *journal) push(step func()) {
	j.steps = append(j.steps, step)
}

func (j *journal) undo() {
	for i := len(j.steps) - 1; i >= 0; i-- {
		j.steps[i]()
	}
	j.steps = nil
}

func (st *state) wishlist(id uuid.UUID) (*models.Wishlist, error) {
	row, ok := st.wishlists[id]
	if !ok {
		return nil, storage.ErrWishlistNotFound
	}
	w := row.w
	w.Items = st.itemsOf(id)
	return &w, nil
}

func (st *state) itemsOf(wishlistID uuid.UUID) []models.WishlistItem {
	rows := make([]*itemRow, 0)
	for _, r := range st.items {
		if r.item.WishlistID == wishlistID {
			rows = append(rows, r)
		}
	}
	return collect(rows)
}

func collect(rows []*itemRow) []models.WishlistItem {
	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].added.Equal(rows[j].added) {
			return rows[i].added.Before(rows[j].added)
		}
		return rows[i].seq < rows[j].seq
	})

	items := make([]models.WishlistItem, 0, len(rows))
	for _, r := range rows {
		items = append(items, copyItem(r.item))
	}
	return items
}

func copyItem(item models.WishlistItem) models.WishlistItem {
	if item.Getter != nil {
		g := *item.Getter
		item.Getter = &g
	}
	return item
}

func (st *state) item(wishlistID, itemID uuid.UUID) (*models.WishlistItem, error) {
	r, ok := st.items[itemID]
	if !ok || r.item.WishlistID != wishlistID {
		return nil, storage.ErrItemNotFound
	}
	item := copyItem(r.item)
	return &item, nil
}

func (st *state) wishlistsByEmail(email string) []models.Wishlist {
	rows := make([]*wishlistRow, 0)
	for _, r := range st.wishlists {
		if strings.EqualFold(r.w.Email, email) {
			rows = append(rows, r)
		}
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].added.Before(rows[j].added) })

	out := make([]models.Wishlist, 0, len(rows))
	for _, r := range rows {
		w := r.w
		w.Items = st.itemsOf(w.ID)
		out = append(out, w)
	}
	return out
}

func (st *state) addWishlist(j *journal, w *models.Wishlist) error {
	if _, ok := st.wishlists[w.ID]; ok {
		return storage.ErrWishlistExists
	}
	id := w.ID
	row := *w
	row.Items = nil
	st.wishlists[id] = &wishlistRow{w: row, added: st.now()}
	j.push(func() { delete(st.wishlists, id) })

	if len(w.Items) > 0 {
		return st.addItems(j, w.ID, w.Items)
	}
	return nil
}

func (st *state) addItems(j *journal, wishlistID uuid.UUID, items []models.WishlistItem) error {
	if _, ok := st.wishlists[wishlistID]; !ok {
		return storage.ErrWishlistNotFound
	}
	for _, item := range items {
		if _, ok := st.items[item.ID]; ok {
			return storage.ErrItemExists
		}
		if err := st.checkGetter(item.Getter); err != nil {
			return err
		}

		st.seq++
		item = copyItem(item)
		item.WishlistID = wishlistID
		id := item.ID
		st.items[id] = &itemRow{item: item, added: st.now(), seq: st.seq}
		j.push(func() { delete(st.items, id) })
	}
	return nil
}

func (st *state) checkGetter(getter *string) error {
	if getter == nil {
		return nil
	}
	if _, ok := st.sessions[*getter]; !ok {
		return fmt.Errorf("getter references unknown session: %w", storage.ErrSessionNotFound)
	}
	return nil
}

func (st *state) updateItem(j *journal, item *models.WishlistItem) error {
	r, ok := st.items[item.ID]
	if !ok {
		return nil
	}
	if err := st.checkGetter(item.Getter); err != nil {
		return err
	}

	prev := r.item
	next := copyItem(*item)
	next.WishlistID = prev.WishlistID
	r.item = next
	j.push(func() { r.item = prev })
	return nil
}

func (st *state) removeItem(j *journal, itemID, wishlistID uuid.UUID) int64 {
	r, ok := st.items[itemID]
	if !ok || r.item.WishlistID != wishlistID {
		return 0
	}
	delete(st.items, itemID)
	j.push(func() { st.items[itemID] = r })
	return 1
}

func (st *state) removeWishlist(j *journal, id uuid.UUID) int64 {
	row, ok := st.wishlists[id]
	if !ok {
		return 0
	}
	for itemID, r := range st.items {
		if r.item.WishlistID == id {
			st.removeItem(j, itemID, id)
		}
	}
	delete(st.wishlists, id)
	j.push(func() { st.wishlists[id] = row })
	return 1
}

func (st *state) verifyToken(wishlistID uuid.UUID, token string, owner bool) bool {
	row, ok := st.wishlists[wishlistID]
	if !ok {
		return false
	}
	if owner {
		return row.w.OwnerToken == token
	}
	return row.w.ShareToken == token
}

func (st *state) markEmailVerified(j *journal, wishlistID uuid.UUID) error {
	row, ok := st.wishlists[wishlistID]
	if !ok || row.w.EmailVerified {
		return nil
	}
	row.w.EmailVerified = true
	j.push(func() { row.w.EmailVerified = false })
	return nil
}

func (st *state) newSession(j *journal, id, ip string) error {
	if _, ok := st.sessions[id]; ok {
		return storage.ErrSessionExists
	}
	st.sessions[id] = models.Session{ID: id, IPAddress: ip, Started: st.now()}
	j.push(func() { delete(st.sessions, id) })
	return nil
}

func (st *state) session(id string) (*models.Session, error) {
	sess, ok := st.sessions[id]
	if !ok {
		return nil, storage.ErrSessionNotFound
	}
	return &sess, nil
}

func (st *state) sessionItems(sessionID string) []models.WishlistItem {
	rows := make([]*itemRow, 0)
	for _, r := range st.items {
		if r.item.Getter != nil && *r.item.Getter == sessionID {
			rows = append(rows, r)
		}
	}
	return collect(rows)
}

func (st *state) recordEmailSent(j *journal, email, sessionID string) error {
	if _, ok := st.sessions[sessionID]; !ok {
		return fmt.Errorf("sender references unknown session: %w", storage.ErrSessionNotFound)
	}
	st.emails = append(st.emails, models.EmailRecord{
		Email:           email,
		SenderSessionID: sessionID,
		SentTime:        st.now(),
	})
	n := len(st.emails) - 1
	j.push(func() { st.emails = st.emails[:n] })
	return nil
}

func (st *state) recentEmailCount(email string, since time.Time) int {
	count := 0
	for _, rec := range st.emails {
		if rec.Email == email && !rec.SentTime.Before(since) {
			count++
		}
	}
	return count
}
