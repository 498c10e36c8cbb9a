package api

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixClock(t *testing.T, ts time.Time) {
	t.Helper()
	orig := nowFunc
	nowFunc = func() time.Time { return ts }
	t.Cleanup(func() { nowFunc = orig })
}

func TestSuccess(t *testing.T) {
	jst := time.FixedZone("JST", 9*60*60)
	fixClock(t, time.Date(2024, 6, 1, 9, 30, 15, 123456789, jst))

	b, err := json.Marshal(Success(map[string]int{"n": 1}, "done"))
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"success": true,
		"data": {"n": 1},
		"message": "done",
		"timestamp": "2024-06-01T00:30:15.123Z"
	}`, string(b))
}

func TestSuccess_OmitsEmptyMessage(t *testing.T) {
	fixClock(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))

	b, err := json.Marshal(Success([]string{}, ""))
	require.NoError(t, err)
	assert.JSONEq(t, `{"success":true,"data":[],"timestamp":"2024-01-01T00:00:00.000Z"}`, string(b))
}

func TestFailure(t *testing.T) {
	fixClock(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))

	b, err := json.Marshal(Failure(404, "Post with slug \"x\" not found", nil))
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"success": false,
		"error": {"code": 404, "message": "Post with slug \"x\" not found"},
		"timestamp": "2024-01-01T00:00:00.000Z"
	}`, string(b))

	b, err = json.Marshal(Failure(400, "bad", map[string]string{"field": "page"}))
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"success": false,
		"error": {"code": 400, "message": "bad", "details": {"field": "page"}},
		"timestamp": "2024-01-01T00:00:00.000Z"
	}`, string(b))
}
