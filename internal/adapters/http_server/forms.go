package httpserver

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-playground/form"

	"hotel_editor/internal/app"
)

// maxRooms bounds the room index accepted from a posted form.
const maxRooms = 200

var formDecoder = form.NewDecoder()

var errTooManyRooms = errors.New("too many rooms in form")

// decodeDraft reads the edit form ("name", "rooms[0].maxcount", ...) into a draft.
// Unknown keys such as "action" are ignored.
func decodeDraft(values url.Values) (app.Draft, error) {
	for k := range values {
		idx, ok := roomIndex(k)
		if ok && idx >= maxRooms {
			return app.Draft{}, fmt.Errorf("%w: index %d", errTooManyRooms, idx)
		}
	}
	var d app.Draft
	if err := formDecoder.Decode(&d, values); err != nil {
		return app.Draft{}, err
	}
	return d, nil
}

func roomIndex(key string) (int, bool) {
	rest, ok := strings.CutPrefix(key, "rooms[")
	if !ok {
		return 0, false
	}
	num, _, ok := strings.Cut(rest, "]")
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(num)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

// pageAction is the button that posted the form.
type pageAction struct {
	Kind string // submit, add-room, remove-room, reset
	Key  string // room key for remove-room
}

func parseAction(v string) pageAction {
	kind, key, _ := strings.Cut(v, ":")
	switch kind {
	case "add-room", "reset":
		return pageAction{Kind: kind}
	case "remove-room":
		return pageAction{Kind: kind, Key: key}
	}
	// Enter in a text input posts without a button value
	return pageAction{Kind: "submit"}
}
