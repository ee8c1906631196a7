package httpserver

import (
	"errors"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeDraft(t *testing.T) {
	v := url.Values{
		"action":               {"submit"},
		"name":                 {"Sea View"},
		"rating":               {"4"},
		"website":              {""},
		"rooms[0].key":         {"k0"},
		"rooms[0].name":        {"Deluxe"},
		"rooms[0].maxcount":    {"2"},
		"rooms[0].rentperday":  {"100"},
		"rooms[1].key":         {"k1"},
		"rooms[1].name":        {"Suite"},
		"rooms[1].description": {"sea"},
	}
	d, err := decodeDraft(v)
	require.NoError(t, err)
	assert.Equal(t, "Sea View", d.Name)
	assert.Equal(t, "4", d.Rating)
	require.Len(t, d.Rooms, 2)
	assert.Equal(t, "k0", d.Rooms[0].Key)
	assert.Equal(t, "Deluxe", d.Rooms[0].Name)
	assert.Equal(t, "2", d.Rooms[0].MaxCount)
	assert.Equal(t, "100", d.Rooms[0].RentPerDay)
	assert.Equal(t, "Suite", d.Rooms[1].Name)
	assert.Equal(t, "sea", d.Rooms[1].Description)
}

func TestDecodeDraft_NoRooms(t *testing.T) {
	d, err := decodeDraft(url.Values{"name": {"x"}})
	require.NoError(t, err)
	assert.Empty(t, d.Rooms)
}

func TestDecodeDraft_RejectsHugeIndex(t *testing.T) {
	_, err := decodeDraft(url.Values{"rooms[100000].name": {"x"}})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errTooManyRooms))
}

func TestParseAction(t *testing.T) {
	cases := map[string]pageAction{
		"":                   {Kind: "submit"},
		"submit":             {Kind: "submit"},
		"add-room":           {Kind: "add-room"},
		"reset":              {Kind: "reset"},
		"remove-room:abc-1":  {Kind: "remove-room", Key: "abc-1"},
		"something-else:zzz": {Kind: "submit"},
	}
	for in, want := range cases {
		assert.Equal(t, want, parseAction(in), in)
	}
}
