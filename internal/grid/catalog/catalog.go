// Package catalog answers room-type questions about a property's fixed set of
// bookable units.
package catalog

import (
	"sort"

	"roomgrid/pkg/model"
)

type Catalog struct {
	types   map[string]string          // room id -> room type
	numbers map[string]map[string]bool // room id -> room numbers
	owners  map[string]string          // room number -> room id
	rooms   []model.RoomInfo
}

func New(rooms []model.RoomInfo) *Catalog {
	c := &Catalog{
		types:   make(map[string]string),
		numbers: make(map[string]map[string]bool),
		owners:  make(map[string]string),
		rooms:   make([]model.RoomInfo, 0, len(rooms)),
	}
	for _, r := range rooms {
		c.types[r.RoomID] = r.RoomType
		if c.numbers[r.RoomID] == nil {
			c.numbers[r.RoomID] = make(map[string]bool)
		}
		c.numbers[r.RoomID][r.RoomNumber] = true
		c.owners[r.RoomNumber] = r.RoomID
		c.rooms = append(c.rooms, r)
	}
	sort.SliceStable(c.rooms, func(i, j int) bool {
		if c.rooms[i].RoomType != c.rooms[j].RoomType {
			return c.rooms[i].RoomType < c.rooms[j].RoomType
		}
		return c.rooms[i].RoomNumber < c.rooms[j].RoomNumber
	})
	return c
}

func (c *Catalog) RoomType(roomID string) (string, bool) {
	t, ok := c.types[roomID]
	return t, ok
}

func (c *Catalog) HasNumber(roomID, roomNumber string) bool {
	return c.numbers[roomID][roomNumber]
}

// RoomIDOf returns the room id a room number belongs to.
func (c *Catalog) RoomIDOf(roomNumber string) (string, bool) {
	id, ok := c.owners[roomNumber]
	return id, ok
}

// Rooms lists every unit ordered by type then number, the order grid rows
// are drawn in.
func (c *Catalog) Rooms() []model.RoomInfo {
	out := make([]model.RoomInfo, len(c.rooms))
	copy(out, c.rooms)
	return out
}
