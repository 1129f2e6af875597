package service

import (
	"context"
	"fmt"

	griderrors "roomgrid/internal/grid/errors"
	"roomgrid/pkg/dates"
	"roomgrid/pkg/model"
	"roomgrid/pkg/sanitizer"
)

// BlockDates marks every day of [req.From, req.To) unavailable on one room
// number. Days already blocked are skipped; when nothing is left the store
// is not called.
func (e *Engine) BlockDates(ctx context.Context, in *model.BlockRequest) ([]*model.BlockedDate, error) {
	var req *model.BlockRequest
	if in != nil {
		clean := *in
		clean.RoomID = sanitizer.NormalizeRoomID(in.RoomID)
		clean.RoomNumber = sanitizer.NormalizeRoomNumber(in.RoomNumber)
		clean.Reason = sanitizer.NormalizeReason(in.Reason)
		req = &clean
	}
	if err := e.validator.ValidateBlockRequest(req); err != nil {
		return nil, err
	}
	if !e.rooms.HasNumber(req.RoomID, req.RoomNumber) {
		return nil, fmt.Errorf("%w: %s is not a room of %s", griderrors.ErrUnknownRoom, req.RoomNumber, req.RoomID)
	}
	if dates.Normalize(req.From).Before(e.clock.Today()) {
		return nil, fmt.Errorf("%w: %s", griderrors.ErrPastDate, dates.Key(req.From))
	}

	idx := e.Index()
	now := e.clock.Now()
	var entries []*model.BlockedDate
	for _, b := range req.Expand() {
		if idx.IsBlocked(b.RoomID, b.RoomNumber, b.Date) {
			continue
		}
		b.CreatedAt = now
		entries = append(entries, b)
	}
	if len(entries) == 0 {
		e.cfg.Log.Debug("Block request covers only blocked days",
			"room_number", req.RoomNumber,
			"from", dates.Key(req.From),
			"to", dates.Key(req.To),
		)
		return nil, nil
	}

	if err := e.store.AddBlockedDates(ctx, entries); err != nil {
		e.cfg.Log.Error("Failed to add blocked dates", "room_number", req.RoomNumber, "error", err)
		return nil, fmt.Errorf("%w: %v", griderrors.ErrPersistence, err)
	}

	if err := e.refresh(ctx); err != nil {
		e.cfg.Log.Warn("Rebuild after blocking failed, projecting change locally", "error", err)
		e.project(func(res []*model.Reservation, blk []*model.BlockedDate) ([]*model.Reservation, []*model.BlockedDate) {
			return res, append(blk, entries...)
		})
	}

	keys := make([]model.BlockedDateKey, 0, len(entries))
	for _, b := range entries {
		keys = append(keys, b.Key())
	}
	e.cfg.Log.Info("Dates blocked",
		"room_id", req.RoomID,
		"room_number", req.RoomNumber,
		"from", dates.Key(req.From),
		"to", dates.Key(req.To),
		"added", len(entries),
	)
	e.publish(ctx, &model.GridEvent{Type: model.EventBlockedDatesAdded, Blocked: keys})
	return entries, nil
}

// UnblockDates removes the given blocks.
func (e *Engine) UnblockDates(ctx context.Context, keys []model.BlockedDateKey) error {
	if err := e.validator.ValidateBlockKeys(keys); err != nil {
		return err
	}
	normalized := make([]model.BlockedDateKey, len(keys))
	for i, k := range keys {
		k.RoomID = sanitizer.NormalizeRoomID(k.RoomID)
		k.RoomNumber = sanitizer.NormalizeRoomNumber(k.RoomNumber)
		k.Date = dates.Normalize(k.Date)
		normalized[i] = k
	}

	if err := e.store.RemoveBlockedDates(ctx, normalized); err != nil {
		e.cfg.Log.Error("Failed to remove blocked dates", "count", len(keys), "error", err)
		return fmt.Errorf("%w: %v", griderrors.ErrPersistence, err)
	}

	if err := e.refresh(ctx); err != nil {
		e.cfg.Log.Warn("Rebuild after unblocking failed, projecting change locally", "error", err)
		removed := make(map[string]bool, len(normalized))
		for _, k := range normalized {
			removed[k.DocumentID()] = true
		}
		e.project(func(res []*model.Reservation, blk []*model.BlockedDate) ([]*model.Reservation, []*model.BlockedDate) {
			kept := blk[:0]
			for _, b := range blk {
				if !removed[b.Key().DocumentID()] {
					kept = append(kept, b)
				}
			}
			return res, kept
		})
	}

	e.cfg.Log.Info("Dates unblocked", "count", len(normalized))
	e.publish(ctx, &model.GridEvent{Type: model.EventBlockedDatesRemoved, Blocked: normalized})
	return nil
}
