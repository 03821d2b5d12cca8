package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestIDGeneratesAndPropagates(t *testing.T) {
	var seen string
	handler := RequestID(zerolog.Nop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", nil))

	assert.NotEmpty(t, seen)
	assert.Equal(t, seen, rec.Header().Get("X-Request-ID"))
}

func TestRequestIDKeepsIncomingHeader(t *testing.T) {
	var seen string
	handler := RequestID(zerolog.Nop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
	}))

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, "abc-123", seen)
}

func TestRequestIDLogsProcedureAndStatus(t *testing.T) {
	var buf bytes.Buffer
	handler := RequestID(zerolog.New(&buf))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		zerolog.Ctx(r.Context()).Info().Msg("handling")
		w.WriteHeader(http.StatusNotFound)
	}))

	req := httptest.NewRequest(http.MethodPost, "/character.v1.CharacterService/GetCharacter", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 2)

	var handling, completed map[string]any
	require.NoError(t, json.Unmarshal(lines[0], &handling))
	require.NoError(t, json.Unmarshal(lines[1], &completed))

	assert.Equal(t, "GetCharacter", handling["procedure"])
	assert.Equal(t, "abc-123", handling["request_id"])
	assert.Equal(t, "request completed", completed["message"])
	assert.Equal(t, float64(http.StatusNotFound), completed["status"])
	assert.Equal(t, "info", completed["level"])
}

func TestRequestIDWarnsOnServerError(t *testing.T) {
	var buf bytes.Buffer
	handler := RequestID(zerolog.New(&buf))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/character.v1.CharacterService/SaveCharacter", nil))

	var completed map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &completed))
	assert.Equal(t, "warn", completed["level"])
	assert.Equal(t, "SaveCharacter", completed["procedure"])
}

func TestProcedure(t *testing.T) {
	assert.Equal(t, "SaveCharacter", Procedure("/character.v1.CharacterService/SaveCharacter"))
	assert.Equal(t, "/", Procedure("/"))
	assert.Equal(t, "", Procedure(""))
}
