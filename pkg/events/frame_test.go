package events

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestEncode_AddsTimestampNextToPayloadFields(t *testing.T) {
	ts := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	b, err := Encode(ContentRated, ContentRating{ContentID: "42", UserID: "u-1", Rating: 5}, ts)
	require.NoError(t, err)

	f, err := DecodeFrame(b)
	require.NoError(t, err)
	require.Equal(t, ContentRated, f.Event)

	var got ContentRating
	require.NoError(t, f.Decode(&got))
	require.Equal(t, "42", got.ContentID)
	require.Equal(t, 5, got.Rating)

	stamp, ok := f.Timestamp()
	require.True(t, ok)
	require.True(t, stamp.Equal(ts))
}

func TestEncode_EmptyPayload(t *testing.T) {
	b, err := Encode(Pong, Empty{}, time.Now())
	require.NoError(t, err)
	f, err := DecodeFrame(b)
	require.NoError(t, err)
	_, ok := f.Timestamp()
	require.True(t, ok)
}

func TestEncodeRequest_NoTimestamp(t *testing.T) {
	b, err := EncodeRequest(JoinContentRoom, RoomRequest{ID: "42"})
	require.NoError(t, err)
	f, err := DecodeFrame(b)
	require.NoError(t, err)

	var req RoomRequest
	require.NoError(t, f.Decode(&req))
	require.Equal(t, "42", req.ID)
	_, ok := f.Timestamp()
	require.False(t, ok)
}

func TestDecodeFrame_Invalid(t *testing.T) {
	_, err := DecodeFrame([]byte(`{"data":{}}`))
	require.ErrorIs(t, err, ErrEmptyEvent)

	_, err = DecodeFrame([]byte(`not json`))
	require.Error(t, err)
}

func TestRoomKinds(t *testing.T) {
	require.Equal(t, "content_42", RoomName(RoomContent, "42"))

	kind, ok := JoinKind(JoinDiaryRoom)
	require.True(t, ok)
	require.Equal(t, RoomDiary, kind)

	name, ok := LeaveRequestFor(RoomAlbum)
	require.True(t, ok)
	require.Equal(t, LeaveAlbumRoom, name)

	_, ok = JoinRequestFor(RoomUser)
	require.False(t, ok)
}

func TestServerEventsAreUnique(t *testing.T) {
	seen := map[Name]bool{}
	for _, n := range ServerEvents {
		require.False(t, seen[n], "duplicate %s", n)
		seen[n] = true
		_, isJoin := JoinKind(n)
		require.False(t, isJoin)
	}
	require.NotContains(t, ServerEvents, ConnectionStatus)
}
