package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"roomgrid/internal/grid/conflict"
	griderrors "roomgrid/internal/grid/errors"
	"roomgrid/pkg/config"
	"roomgrid/pkg/dates"
	mongotx "roomgrid/pkg/db/mongo"
	"roomgrid/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	ReservationsCollection = "Reservations"
	BlockedDatesCollection = "Blocked_dates"
)

// MongoStore is the reservation store behind the grid engine.
type MongoStore struct {
	cfg          *config.Config
	db           *mongo.Database
	reservations *mongo.Collection
	blocked      *mongo.Collection
	txManager    mongotx.TransactionManager
}

func NewMongoStore(cfg *config.Config) *MongoStore {
	db := cfg.Client.Mongo.Client.Database(cfg.MongoDatabaseName)
	return &MongoStore{
		cfg:          cfg,
		db:           db,
		reservations: db.Collection(ReservationsCollection),
		blocked:      db.Collection(BlockedDatesCollection),
		txManager:    mongotx.NewTransactionManager(cfg.Client.Mongo.Client),
	}
}

// withTimeout wraps the context with a timeout if not already in a transaction.
// A SessionContext is returned unchanged with a no-op cancel.
func withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}

	deadline, hasDeadline := ctx.Deadline()
	if !hasDeadline {
		return context.WithTimeout(ctx, timeout)
	}

	remaining := time.Until(deadline)
	if remaining < timeout {
		return context.WithTimeout(ctx, remaining)
	}

	return context.WithTimeout(ctx, timeout)
}

func (s *MongoStore) ListReservations(ctx context.Context) ([]*model.Reservation, error) {
	ctx, cancel := withTimeout(ctx, s.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{"status": bson.M{"$ne": model.StatusCancelled}}
	opts := options.Find().SetSort(bson.D{{Key: "check_in", Value: 1}, {Key: "_id", Value: 1}})

	cursor, err := s.reservations.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find reservations: %w", err)
	}
	defer cursor.Close(ctx)

	var reservations []*model.Reservation
	if err = cursor.All(ctx, &reservations); err != nil {
		return nil, fmt.Errorf("failed to decode reservations: %w", err)
	}
	return reservations, nil
}

func (s *MongoStore) ListBlockedDates(ctx context.Context) ([]*model.BlockedDate, error) {
	ctx, cancel := withTimeout(ctx, s.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "date", Value: 1}})
	cursor, err := s.blocked.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find blocked dates: %w", err)
	}
	defer cursor.Close(ctx)

	var blocked []*model.BlockedDate
	if err = cursor.All(ctx, &blocked); err != nil {
		return nil, fmt.Errorf("failed to decode blocked dates: %w", err)
	}
	return blocked, nil
}

// UpdateReservation applies a placement change inside a transaction that
// re-checks the new placement against the stored collections. Two commits
// validated against the same stale index cannot both land.
func (s *MongoStore) UpdateReservation(ctx context.Context, id string, update *model.ReservationUpdate) error {
	ctx, cancel := withTimeout(ctx, s.cfg.WriteTimeout)
	defer cancel()

	return s.txManager.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		var current model.Reservation
		if err := s.reservations.FindOne(sessCtx, bson.M{"_id": id}).Decode(&current); err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				return fmt.Errorf("%w: %s", griderrors.ErrReservationNotFound, id)
			}
			return fmt.Errorf("failed to load reservation: %w", err)
		}

		merged := current.Apply(update)
		if err := s.verifyPlacement(sessCtx, merged); err != nil {
			return err
		}

		set := updateFields(update)
		set["updated_at"] = time.Now().UTC().Truncate(time.Millisecond)
		result, err := s.reservations.UpdateOne(sessCtx, bson.M{"_id": id}, bson.M{"$set": set})
		if err != nil {
			return fmt.Errorf("failed to update reservation: %w", err)
		}
		if result.MatchedCount == 0 {
			return fmt.Errorf("%w: %s", griderrors.ErrReservationNotFound, id)
		}
		return nil
	})
}

// verifyPlacement loads every active reservation and block touching r's rooms
// and range, then runs the same predicates the engine uses.
func (s *MongoStore) verifyPlacement(ctx mongo.SessionContext, r *model.Reservation) error {
	numbers := r.RoomNumbers()
	if len(numbers) == 0 {
		return nil
	}
	checkIn := dates.Normalize(r.CheckIn)
	checkOut := dates.Normalize(r.CheckOut)

	resFilter := bson.M{
		"_id":       bson.M{"$ne": r.ID},
		"status":    bson.M{"$ne": model.StatusCancelled},
		"check_in":  bson.M{"$lt": checkOut},
		"check_out": bson.M{"$gt": checkIn},
		"$or": bson.A{
			bson.M{"room_number": bson.M{"$in": numbers}},
			bson.M{"allocations.room_number": bson.M{"$in": numbers}},
		},
	}
	cursor, err := s.reservations.Find(ctx, resFilter)
	if err != nil {
		return fmt.Errorf("failed to query overlapping reservations: %w", err)
	}
	var others []*model.Reservation
	if err := cursor.All(ctx, &others); err != nil {
		return fmt.Errorf("failed to decode overlapping reservations: %w", err)
	}

	blockFilter := bson.M{
		"room_number": bson.M{"$in": numbers},
		"date":        bson.M{"$gte": checkIn, "$lt": checkOut},
	}
	cursor, err = s.blocked.Find(ctx, blockFilter)
	if err != nil {
		return fmt.Errorf("failed to query blocked dates: %w", err)
	}
	var blocked []*model.BlockedDate
	if err := cursor.All(ctx, &blocked); err != nil {
		return fmt.Errorf("failed to decode blocked dates: %w", err)
	}

	return checkPlacement(r, conflict.Collections{Reservations: others, Blocked: blocked})
}

func checkPlacement(r *model.Reservation, src conflict.Source) error {
	var units []conflict.Unit
	if r.RoomNumber != "" {
		units = append(units, conflict.Unit{RoomID: r.RoomID, RoomNumber: r.RoomNumber})
	}
	for _, a := range r.Allocations {
		if a.RoomNumber != "" {
			units = append(units, conflict.Unit{RoomID: a.RoomID, RoomNumber: a.RoomNumber})
		}
	}
	for _, u := range units {
		if other := src.OccupantIn(u.RoomNumber, r.CheckIn, r.CheckOut, r.ID); other != nil {
			return fmt.Errorf("%w: room %s is held by reservation %s", griderrors.ErrStoreOverlap, u.RoomNumber, other.ID)
		}
		if b := src.FirstBlocked(u.RoomID, u.RoomNumber, r.CheckIn, r.CheckOut); b != nil {
			return fmt.Errorf("%w: room %s is blocked on %s", griderrors.ErrStoreOverlap, u.RoomNumber, dates.Key(b.Date))
		}
	}
	return nil
}

func updateFields(u *model.ReservationUpdate) bson.M {
	set := bson.M{}
	if u == nil {
		return set
	}
	if u.RoomID != nil {
		set["room_id"] = *u.RoomID
	}
	if u.RoomNumber != nil {
		set["room_number"] = *u.RoomNumber
	}
	if u.Allocations != nil {
		set["allocations"] = *u.Allocations
	}
	if u.CheckIn != nil {
		set["check_in"] = dates.Normalize(*u.CheckIn)
	}
	if u.CheckOut != nil {
		set["check_out"] = dates.Normalize(*u.CheckOut)
	}
	if u.TotalNights != nil {
		set["total_nights"] = *u.TotalNights
	}
	return set
}

// AddBlockedDates upserts by natural key, so repeating a block is harmless.
func (s *MongoStore) AddBlockedDates(ctx context.Context, entries []*model.BlockedDate) error {
	if len(entries) == 0 {
		return nil
	}
	ctx, cancel := withTimeout(ctx, s.cfg.WriteTimeout)
	defer cancel()

	writes := make([]mongo.WriteModel, 0, len(entries))
	for _, b := range entries {
		doc := *b
		doc.Date = dates.Normalize(b.Date)
		doc.ID = doc.Key().DocumentID()
		if doc.CreatedAt.IsZero() {
			doc.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
		}
		writes = append(writes, mongo.NewReplaceOneModel().
			SetFilter(bson.M{"_id": doc.ID}).
			SetReplacement(doc).
			SetUpsert(true))
	}

	if _, err := s.blocked.BulkWrite(ctx, writes, options.BulkWrite().SetOrdered(false)); err != nil {
		return fmt.Errorf("failed to add blocked dates: %w", err)
	}
	return nil
}

func (s *MongoStore) RemoveBlockedDates(ctx context.Context, keys []model.BlockedDateKey) error {
	if len(keys) == 0 {
		return nil
	}
	ctx, cancel := withTimeout(ctx, s.cfg.WriteTimeout)
	defer cancel()

	ids := make([]string, 0, len(keys))
	for _, k := range keys {
		ids = append(ids, k.DocumentID())
	}
	if _, err := s.blocked.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": ids}}); err != nil {
		return fmt.Errorf("failed to remove blocked dates: %w", err)
	}
	return nil
}

func (s *MongoStore) Ping(ctx context.Context) error {
	ctx, cancel := withTimeout(ctx, s.cfg.ReadTimeout)
	defer cancel()
	return s.db.Client().Ping(ctx, nil)
}
