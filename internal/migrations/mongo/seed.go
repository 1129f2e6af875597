package mongo

import (
	"encoding/json"
	"fmt"
	"io"

	"roomgrid/pkg/model"
	"roomgrid/pkg/sanitizer"
)

// ParseRoomSeed reads a JSON array of rooms. Every room needs all three
// identifiers and room numbers must be unique across the property.
func ParseRoomSeed(r io.Reader) ([]model.RoomInfo, error) {
	var rooms []model.RoomInfo
	if err := json.NewDecoder(r).Decode(&rooms); err != nil {
		return nil, fmt.Errorf("failed to decode room seed: %w", err)
	}

	seen := make(map[string]bool, len(rooms))
	for i := range rooms {
		room := &rooms[i]
		room.RoomType = sanitizer.TrimAndNormalize(room.RoomType)
		room.RoomID = sanitizer.NormalizeRoomID(room.RoomID)
		room.RoomNumber = sanitizer.NormalizeRoomNumber(room.RoomNumber)

		if room.RoomType == "" || room.RoomID == "" || room.RoomNumber == "" {
			return nil, fmt.Errorf("room %d: room_type, room_id and room_number are required", i)
		}
		if seen[room.RoomNumber] {
			return nil, fmt.Errorf("room %d: duplicate room number %s", i, room.RoomNumber)
		}
		seen[room.RoomNumber] = true
	}
	return rooms, nil
}
