package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// HotelRecord is the hotel entity owned by the hotel API. ID is immutable once loaded.
type HotelRecord struct {
	ID      string       `json:"_id,omitempty"`
	Name    string       `json:"name"`
	Address string       `json:"address"`
	Phone   string       `json:"phone"`
	Email   string       `json:"email"`
	Rating  string       `json:"rating"`
	Image   string       `json:"image"`
	Website string       `json:"website,omitempty"`
	Rooms   []RoomRecord `json:"rooms"`

	// RatingIsNumber records that rating arrived as a JSON number; it is
	// written back as one while it still parses as a number.
	RatingIsNumber bool `json:"-"`
}

// RoomRecord has no identity of its own; rooms are positional within HotelRecord.Rooms.
type RoomRecord struct {
	Name        string  `json:"name"`
	MaxCount    int     `json:"maxcount"`
	RentPerDay  float64 `json:"rentperday"`
	Description string  `json:"description"`
	Image       string  `json:"image"`

	// Set when the field was absent or null in the source document.
	MaxCountUnset   bool `json:"-"`
	RentPerDayUnset bool `json:"-"`
}

var ErrNotWholeNumber = errors.New("not a whole number")

// maxExactInt is the largest integer a float64 holds exactly.
const maxExactInt = 1 << 53

// Clone returns a copy that shares no slice with h.
func (h HotelRecord) Clone() HotelRecord {
	out := h
	out.Rooms = make([]RoomRecord, len(h.Rooms))
	copy(out.Rooms, h.Rooms)
	return out
}

// UnmarshalJSON accepts rating as either a string or a number.
func (h *HotelRecord) UnmarshalJSON(b []byte) error {
	type plain HotelRecord
	var aux struct {
		plain
		Rating json.RawMessage `json:"rating"`
	}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	*h = HotelRecord(aux.plain)
	r, err := flexString(aux.Rating)
	if err != nil {
		return fmt.Errorf("rating: %w", err)
	}
	h.Rating = r
	h.RatingIsNumber = r != "" && isRawNumber(aux.Rating)
	return nil
}

// MarshalJSON writes rating back in the JSON type it was read as.
func (h HotelRecord) MarshalJSON() ([]byte, error) {
	type plain HotelRecord
	if !h.RatingIsNumber || !isNumberLiteral(h.Rating) {
		return json.Marshal(plain(h))
	}
	return json.Marshal(struct {
		plain
		Rating json.Number `json:"rating"`
	}{plain(h), json.Number(h.Rating)})
}

// UnmarshalJSON accepts maxcount and rentperday as numbers or numeric strings;
// older clients stored the raw form input. A fractional maxcount is rejected.
func (r *RoomRecord) UnmarshalJSON(b []byte) error {
	type plain RoomRecord
	var aux struct {
		plain
		MaxCount   json.RawMessage `json:"maxcount"`
		RentPerDay json.RawMessage `json:"rentperday"`
	}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	*r = RoomRecord(aux.plain)

	mc, err := flexString(aux.MaxCount)
	if err != nil {
		return fmt.Errorf("maxcount: %w", err)
	}
	if mc == "" {
		r.MaxCountUnset = true
	} else {
		f, err := strconv.ParseFloat(mc, 64)
		if err != nil {
			return fmt.Errorf("maxcount: %w", err)
		}
		if f != math.Trunc(f) || math.Abs(f) > maxExactInt {
			return fmt.Errorf("maxcount %s: %w", mc, ErrNotWholeNumber)
		}
		r.MaxCount = int(f)
	}

	rent, err := flexString(aux.RentPerDay)
	if err != nil {
		return fmt.Errorf("rentperday: %w", err)
	}
	if rent == "" {
		r.RentPerDayUnset = true
	} else if r.RentPerDay, err = strconv.ParseFloat(rent, 64); err != nil {
		return fmt.Errorf("rentperday: %w", err)
	}
	return nil
}

// MarshalJSON leaves out numbers that were absent when the room was read.
func (r RoomRecord) MarshalJSON() ([]byte, error) {
	out := struct {
		Name        string   `json:"name"`
		MaxCount    *int     `json:"maxcount,omitempty"`
		RentPerDay  *float64 `json:"rentperday,omitempty"`
		Description string   `json:"description"`
		Image       string   `json:"image"`
	}{Name: r.Name, Description: r.Description, Image: r.Image}
	if !r.MaxCountUnset {
		out.MaxCount = &r.MaxCount
	}
	if !r.RentPerDayUnset {
		out.RentPerDay = &r.RentPerDay
	}
	return json.Marshal(out)
}

// flexString renders a JSON string, number or null as a plain string.
func flexString(raw json.RawMessage) (string, error) {
	s := strings.TrimSpace(string(raw))
	if s == "" || s == "null" {
		return "", nil
	}
	if s[0] == '"' {
		var out string
		if err := json.Unmarshal(raw, &out); err != nil {
			return "", err
		}
		return strings.TrimSpace(out), nil
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return "", err
	}
	return n.String(), nil
}

func isRawNumber(raw json.RawMessage) bool {
	s := strings.TrimSpace(string(raw))
	return s != "" && s != "null" && s[0] != '"'
}

// isNumberLiteral reports whether s is a valid JSON number as written.
func isNumberLiteral(s string) bool {
	if s == "" || !json.Valid([]byte(s)) {
		return false
	}
	_, err := strconv.ParseFloat(s, 64)
	return err == nil
}
