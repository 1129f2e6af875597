package model

import (
	"time"

	"roomgrid/pkg/dates"
)

// BlockedDate marks one room number unavailable for one day.
type BlockedDate struct {
	ID         string    `json:"id,omitempty" bson:"_id,omitempty"`
	RoomID     string    `json:"room_id" bson:"room_id" validate:"required"`
	RoomNumber string    `json:"room_number" bson:"room_number" validate:"required,max=20"`
	Date       time.Time `json:"date" bson:"date" validate:"required"`
	Reason     string    `json:"reason,omitempty" bson:"reason,omitempty" validate:"omitempty,max=200"`
	CreatedAt  time.Time `json:"created_at,omitempty" bson:"created_at,omitempty"`
}

type BlockedDateKey struct {
	RoomID     string    `json:"room_id" validate:"required"`
	RoomNumber string    `json:"room_number" validate:"required"`
	Date       time.Time `json:"date" validate:"required"`
}

func (b *BlockedDate) Key() BlockedDateKey {
	return BlockedDateKey{RoomID: b.RoomID, RoomNumber: b.RoomNumber, Date: dates.Normalize(b.Date)}
}

// DocumentID is the natural id used by the store, so adding the same block
// twice is idempotent.
func (k BlockedDateKey) DocumentID() string {
	return k.RoomID + "|" + k.RoomNumber + "|" + dates.Key(k.Date)
}

// BlockRequest asks for every day in [From, To) to be blocked.
type BlockRequest struct {
	RoomID     string    `json:"room_id" validate:"required"`
	RoomNumber string    `json:"room_number" validate:"required,max=20"`
	From       time.Time `json:"from" validate:"required"`
	To         time.Time `json:"to" validate:"required,gtfield=From"`
	Reason     string    `json:"reason,omitempty" validate:"omitempty,max=200"`
}

// Expand turns the request into one record per day.
func (r *BlockRequest) Expand() []*BlockedDate {
	days := dates.Range(r.From, r.To)
	out := make([]*BlockedDate, 0, len(days))
	for _, d := range days {
		b := &BlockedDate{
			RoomID:     r.RoomID,
			RoomNumber: r.RoomNumber,
			Date:       d,
			Reason:     r.Reason,
		}
		b.ID = b.Key().DocumentID()
		out = append(out, b)
	}
	return out
}
