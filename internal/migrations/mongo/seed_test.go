package mongo

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRoomSeed(t *testing.T) {
	rooms, err := ParseRoomSeed(strings.NewReader(`[
		{"room_type": "Deluxe", "room_id": "deluxe", "room_number": " 101 "},
		{"room_type": "Deluxe", "room_id": "deluxe", "room_number": "102"}
	]`))

	require.NoError(t, err)
	require.Len(t, rooms, 2)
	assert.Equal(t, "101", rooms[0].RoomNumber)
}

func TestParseRoomSeed_Errors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr string
	}{
		{"not json", `{`, "decode"},
		{"missing id", `[{"room_type": "Villa", "room_number": "201"}]`, "required"},
		{"duplicate number", `[
			{"room_type": "Villa", "room_id": "villa", "room_number": "201"},
			{"room_type": "Suite", "room_id": "suite", "room_number": "201"}
		]`, "duplicate room number 201"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseRoomSeed(strings.NewReader(tt.input))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
