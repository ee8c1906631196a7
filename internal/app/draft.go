package app

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"hotel_editor/internal/domain"
)

// Draft is the editable copy of a hotel. Values are kept as typed so that a
// re-render shows exactly what the user entered.
type Draft struct {
	Name    string      `form:"name" validate:"required"`
	Address string      `form:"address" validate:"required"`
	Phone   string      `form:"phone" validate:"required"`
	Email   string      `form:"email" validate:"required"`
	Rating  string      `form:"rating" validate:"required"`
	Image   string      `form:"image" validate:"required"`
	Website string      `form:"website"`
	Rooms   []RoomDraft `form:"rooms" validate:"dive"`
}

// RoomDraft is one room row. Key is local to the draft and never sent to the API.
type RoomDraft struct {
	Key         string `form:"key" validate:"-"`
	Name        string `form:"name" validate:"required"`
	MaxCount    string `form:"maxcount" validate:"required,number,count"`
	RentPerDay  string `form:"rentperday" validate:"required,numeric,amount"`
	Description string `form:"description" validate:"required"`
	Image       string `form:"image" validate:"required"`
}

func newRoomKey() string { return uuid.NewString() }

// DraftFromRecord seeds a draft from a loaded hotel, rooms included.
func DraftFromRecord(h domain.HotelRecord) Draft {
	d := Draft{
		Name:    h.Name,
		Address: h.Address,
		Phone:   h.Phone,
		Email:   h.Email,
		Rating:  h.Rating,
		Image:   h.Image,
		Website: h.Website,
		Rooms:   make([]RoomDraft, 0, len(h.Rooms)),
	}
	for _, r := range h.Rooms {
		rd := RoomDraft{
			Key:         newRoomKey(),
			Name:        r.Name,
			Description: r.Description,
			Image:       r.Image,
		}
		// absent numbers stay blank so the required rules catch them
		if !r.MaxCountUnset {
			rd.MaxCount = strconv.Itoa(r.MaxCount)
		}
		if !r.RentPerDayUnset {
			rd.RentPerDay = strconv.FormatFloat(r.RentPerDay, 'f', -1, 64)
		}
		d.Rooms = append(d.Rooms, rd)
	}
	return d
}

// Clone returns a deep copy.
func (d Draft) Clone() Draft {
	out := d
	out.Rooms = make([]RoomDraft, len(d.Rooms))
	copy(out.Rooms, d.Rooms)
	return out
}

// Normalize trims surrounding whitespace so blank input counts as empty.
func (d *Draft) Normalize() {
	for _, p := range []*string{&d.Name, &d.Address, &d.Phone, &d.Email, &d.Rating, &d.Image, &d.Website} {
		*p = strings.TrimSpace(*p)
	}
	for i := range d.Rooms {
		r := &d.Rooms[i]
		for _, p := range []*string{&r.Name, &r.MaxCount, &r.RentPerDay, &r.Description, &r.Image} {
			*p = strings.TrimSpace(*p)
		}
	}
}

// ensureKeys gives every room a key; rows posted without one get a fresh key.
func (d *Draft) ensureKeys() {
	seen := make(map[string]bool, len(d.Rooms))
	for i := range d.Rooms {
		if d.Rooms[i].Key == "" || seen[d.Rooms[i].Key] {
			d.Rooms[i].Key = newRoomKey()
		}
		seen[d.Rooms[i].Key] = true
	}
}

// AddRoom appends an empty room and returns its key.
func (d *Draft) AddRoom() string {
	k := newRoomKey()
	d.Rooms = append(d.Rooms, RoomDraft{Key: k})
	return k
}

// RemoveRoom deletes the room with the given key.
func (d *Draft) RemoveRoom(key string) bool {
	for i := range d.Rooms {
		if d.Rooms[i].Key == key {
			d.Rooms = append(d.Rooms[:i:i], d.Rooms[i+1:]...)
			return true
		}
	}
	return false
}

// FieldError is a draft value that cannot be converted for the API.
type FieldError struct {
	Field string // form name, e.g. "rooms[0].maxcount"
	Err   error
}

func (e *FieldError) Error() string { return e.Field + ": " + e.Err.Error() }
func (e *FieldError) Unwrap() error { return e.Err }

// Record converts a validated draft into the record sent to the API.
func (d Draft) Record(id string) (domain.HotelRecord, error) {
	h := domain.HotelRecord{
		ID:      id,
		Name:    d.Name,
		Address: d.Address,
		Phone:   d.Phone,
		Email:   d.Email,
		Rating:  d.Rating,
		Image:   d.Image,
		Website: d.Website,
		Rooms:   make([]domain.RoomRecord, 0, len(d.Rooms)),
	}
	for i, r := range d.Rooms {
		mc, err := strconv.Atoi(r.MaxCount)
		if err != nil {
			return domain.HotelRecord{}, &FieldError{Field: fmt.Sprintf("rooms[%d].maxcount", i), Err: err}
		}
		rent, err := strconv.ParseFloat(r.RentPerDay, 64)
		if err != nil {
			return domain.HotelRecord{}, &FieldError{Field: fmt.Sprintf("rooms[%d].rentperday", i), Err: err}
		}
		h.Rooms = append(h.Rooms, domain.RoomRecord{
			Name:        r.Name,
			MaxCount:    mc,
			RentPerDay:  rent,
			Description: r.Description,
			Image:       r.Image,
		})
	}
	return h, nil
}
