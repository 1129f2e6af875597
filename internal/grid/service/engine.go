package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"roomgrid/internal/grid/catalog"
	"roomgrid/internal/grid/conflict"
	griderrors "roomgrid/internal/grid/errors"
	"roomgrid/internal/grid/occupancy"
	"roomgrid/internal/grid/validator"
	"roomgrid/pkg/config"
	"roomgrid/pkg/dates"
	"roomgrid/pkg/model"
	"roomgrid/pkg/sanitizer"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// Store is the external reservation store. The engine never mutates a record
// itself; every change is a request through this boundary.
type Store interface {
	ListReservations(ctx context.Context) ([]*model.Reservation, error)
	ListBlockedDates(ctx context.Context) ([]*model.BlockedDate, error)
	UpdateReservation(ctx context.Context, id string, update *model.ReservationUpdate) error
	AddBlockedDates(ctx context.Context, entries []*model.BlockedDate) error
	RemoveBlockedDates(ctx context.Context, keys []model.BlockedDateKey) error
}

// RoomLocker hands out short-lived advisory locks on room numbers. Lock
// returns griderrors.ErrRoomLocked when another owner holds the room.
type RoomLocker interface {
	Lock(ctx context.Context, roomNumber, owner string, ttl time.Duration) error
	Unlock(ctx context.Context, roomNumber, owner string) error
}

type EventPublisher interface {
	Publish(ctx context.Context, event *model.GridEvent) error
}

type Engine struct {
	cfg       *config.Config
	store     Store
	rooms     *catalog.Catalog
	detector  *conflict.Detector
	validator *validator.ReservationValidator
	clock     dates.Clock
	locker    RoomLocker
	publisher EventPublisher

	sessionsMu sync.Mutex
	sessions   map[string]*session

	index     atomic.Pointer[occupancy.Index]
	group     singleflight.Group
	mu        sync.Mutex
	seq       atomic.Uint64
	installed uint64
}

type Option func(*Engine)

func WithLocker(l RoomLocker) Option {
	return func(e *Engine) {
		e.locker = l
	}
}

func WithPublisher(p EventPublisher) Option {
	return func(e *Engine) {
		e.publisher = p
	}
}

func WithClock(c dates.Clock) Option {
	return func(e *Engine) {
		e.clock = c
	}
}

func NewEngine(cfg *config.Config, store Store, rooms *catalog.Catalog, opts ...Option) *Engine {
	e := &Engine{
		cfg:       cfg,
		store:     store,
		rooms:     rooms,
		detector:  conflict.NewDetector(rooms),
		validator: validator.NewReservationValidator(cfg.Log, rooms),
		sessions:  make(map[string]*session),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.clock == nil {
		loc := cfg.Location
		if loc == nil {
			loc = time.UTC
		}
		e.clock = dates.NewClock(loc)
	}
	e.index.Store(occupancy.Build(nil, nil))
	return e
}

// Index returns the current occupancy snapshot. It is never modified after
// it is published; rebuilds swap in a new one.
func (e *Engine) Index() *occupancy.Index {
	return e.index.Load()
}

func (e *Engine) Rooms() *catalog.Catalog {
	return e.rooms
}

func (e *Engine) Today() time.Time {
	return e.clock.Today()
}

// Close drops every operator's pending undo and gesture.
func (e *Engine) Close() {
	e.closeSessions()
}

// Rebuild reloads both collections from the store and replaces the index.
// Concurrent callers share one load.
func (e *Engine) Rebuild(ctx context.Context) error {
	_, err, _ := e.group.Do("rebuild", func() (interface{}, error) {
		return nil, e.rebuild(ctx)
	})
	return err
}

// refresh is Rebuild that never joins a load started before the caller's own
// commit landed.
func (e *Engine) refresh(ctx context.Context) error {
	e.group.Forget("rebuild")
	return e.Rebuild(ctx)
}

func (e *Engine) rebuild(ctx context.Context) error {
	seq := e.seq.Add(1)

	var reservations []*model.Reservation
	var blocked []*model.BlockedDate

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		r, err := e.store.ListReservations(gctx)
		if err != nil {
			return fmt.Errorf("list reservations: %w", err)
		}
		reservations = r
		return nil
	})
	g.Go(func() error {
		b, err := e.store.ListBlockedDates(gctx)
		if err != nil {
			return fmt.Errorf("list blocked dates: %w", err)
		}
		blocked = b
		return nil
	})
	if err := g.Wait(); err != nil {
		e.cfg.Log.Error("Failed to load occupancy sources", "error", err)
		return err
	}

	// Every active stay with a usable range occupies the grid, even when other
	// fields break the rules; hiding it would let a move land on top of it.
	valid := make([]*model.Reservation, 0, len(reservations))
	for _, r := range reservations {
		if r == nil || !r.IsActive() {
			continue
		}
		if !dates.Normalize(r.CheckOut).After(dates.Normalize(r.CheckIn)) {
			e.cfg.Log.Warn("Data integrity violation: reservation has an empty date range",
				"reservation_id", r.ID,
				"check_in", dates.Key(r.CheckIn),
				"check_out", dates.Key(r.CheckOut),
			)
			continue
		}
		if err := e.validator.Validate(r); err != nil {
			e.cfg.Log.Warn("Data integrity violation: reservation failed validation",
				"reservation_id", r.ID,
				"error", err,
			)
		}
		valid = append(valid, r)
	}

	idx := occupancy.Build(valid, blocked)
	for _, d := range idx.Duplicates() {
		e.cfg.Log.Warn("Data integrity violation: room number double booked",
			"room_number", d.RoomNumber,
			"date", dates.Key(d.Date),
			"shown_reservation_id", d.Kept,
			"hidden_reservation_id", d.Other,
		)
	}

	if !e.install(seq, idx) {
		e.cfg.Log.Debug("Discarding stale occupancy rebuild", "seq", seq)
		return nil
	}
	e.cfg.Log.Debug("Occupancy index rebuilt",
		"reservations", len(idx.Reservations()),
		"blocked_dates", len(idx.BlockedDates()),
		"skipped", len(reservations)-len(valid),
	)
	return nil
}

// install publishes idx unless a newer rebuild already did.
func (e *Engine) install(seq uint64, idx *occupancy.Index) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if seq < e.installed {
		return false
	}
	e.installed = seq
	e.index.Store(idx)
	return true
}

// project rebuilds the index locally from the current one, for when the
// store cannot be re-read right after a commit.
func (e *Engine) project(apply func(res []*model.Reservation, blk []*model.BlockedDate) ([]*model.Reservation, []*model.BlockedDate)) {
	seq := e.seq.Add(1)
	cur := e.Index()
	res := append([]*model.Reservation(nil), cur.Reservations()...)
	blk := append([]*model.BlockedDate(nil), cur.BlockedDates()...)
	res, blk = apply(res, blk)
	e.install(seq, occupancy.Build(res, blk))
}

func (e *Engine) afterReservationCommit(ctx context.Context, updated *model.Reservation) {
	if err := e.refresh(ctx); err != nil {
		e.cfg.Log.Warn("Rebuild after commit failed, projecting change locally",
			"reservation_id", updated.ID,
			"error", err,
		)
		e.project(func(res []*model.Reservation, blk []*model.BlockedDate) ([]*model.Reservation, []*model.BlockedDate) {
			for i, r := range res {
				if r.ID == updated.ID {
					res[i] = updated
					return res, blk
				}
			}
			return append(res, updated), blk
		})
	}
}

func (e *Engine) publish(ctx context.Context, event *model.GridEvent) {
	if e.publisher == nil {
		return
	}
	event.OccurredAt = e.clock.Now()
	if err := e.publisher.Publish(ctx, event); err != nil {
		e.cfg.Log.Warn("Failed to publish grid event",
			"type", event.Type,
			"key", event.Key(),
			"error", err,
		)
	}
}

// lockRooms takes the advisory lock on every room number, in sorted order.
// The returned release is safe to call when no locker is configured.
func (e *Engine) lockRooms(ctx context.Context, roomNumbers []string) (func(), error) {
	if e.locker == nil {
		return func() {}, nil
	}

	numbers := uniqueSorted(roomNumbers)
	owner := uuid.NewString()
	held := make([]string, 0, len(numbers))

	release := func() {
		rctx := context.WithoutCancel(ctx)
		for _, n := range held {
			if err := e.locker.Unlock(rctx, n, owner); err != nil {
				e.cfg.Log.Warn("Failed to release room lock", "room_number", n, "error", err)
			}
		}
	}

	for _, n := range numbers {
		if err := e.locker.Lock(ctx, n, owner, e.cfg.RoomLockTTL); err != nil {
			release()
			if griderrors.Code(err) != "" {
				return nil, err
			}
			return nil, fmt.Errorf("%w: lock room %s: %v", griderrors.ErrPersistence, n, err)
		}
		held = append(held, n)
	}
	return release, nil
}

func uniqueSorted(in []string) []string {
	out := sanitizer.NormalizeRoomNumbers(in)
	sort.Strings(out)
	return out
}

// unitsOf lists every (room id, room number) the reservation occupies.
func unitsOf(r *model.Reservation) []conflict.Unit {
	units := make([]conflict.Unit, 0, len(r.Allocations)+1)
	if r.RoomNumber != "" {
		units = append(units, conflict.Unit{RoomID: r.RoomID, RoomNumber: r.RoomNumber})
	}
	for _, a := range r.Allocations {
		if a.RoomNumber != "" {
			units = append(units, conflict.Unit{RoomID: a.RoomID, RoomNumber: a.RoomNumber})
		}
	}
	return units
}

func roomNumbersOf(units []conflict.Unit) []string {
	out := make([]string, 0, len(units))
	for _, u := range units {
		out = append(out, u.RoomNumber)
	}
	return out
}
