package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestID(t *testing.T) {
	r := httptest.NewRequest("GET", "/api/dashboard", nil)
	id := RequestID(r)
	_, err := uuid.Parse(id)
	assert.NoError(t, err)

	r.Header.Set(RequestIDHeader, "abc-123")
	assert.Equal(t, "abc-123", RequestID(r))
}

func TestJSONOutputCarriesRequestFields(t *testing.T) {
	var buf bytes.Buffer
	Configure("production", "debug")
	SetOutput(&buf)
	t.Cleanup(func() {
		Configure("local", "info")
		SetOutput(io.Discard)
	})

	r := httptest.NewRequest("POST", "/api/insights", nil)
	r.Header.Set(RequestIDHeader, "req-1")
	New().WithRequest(r).WithField("component", "test").Info("hello")
	New().WithError(errors.New("boom")).Warn("failed")

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 2)

	var first map[string]any
	require.NoError(t, json.Unmarshal(lines[0], &first))
	assert.Equal(t, "req-1", first["req_id"])
	assert.Equal(t, "/api/insights", first["path"])
	assert.Equal(t, "test", first["component"])
	assert.Equal(t, "hello", first["msg"])

	var second map[string]any
	require.NoError(t, json.Unmarshal(lines[1], &second))
	assert.Equal(t, "boom", second["error"])
	assert.Equal(t, "warning", second["level"])
}
