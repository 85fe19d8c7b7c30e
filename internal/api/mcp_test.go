package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func callMCP(t *testing.T, srv *Server, body string) MCPResponse {
	t.Helper()
	rec := do(srv, httptest.NewRequest(http.MethodPost, "/mcp", strings.NewReader(body)))
	require.Equal(t, http.StatusOK, rec.Code)
	var resp MCPResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestHandleMCP(t *testing.T) {
	t.Run("Should list tools", func(t *testing.T) {
		srv, _, _, _ := newTestServer(t)

		resp := callMCP(t, srv, `{"id":"1","method":"tools/list"}`)
		require.Nil(t, resp.Error)
		assert.Contains(t, mustJSON(t, resp.Result), `"ask_question"`)
		assert.Contains(t, mustJSON(t, resp.Result), `"rebuild_index"`)
	})

	t.Run("Should answer through the ask_question tool", func(t *testing.T) {
		srv, asker, _, _ := newTestServer(t)

		resp := callMCP(t, srv, `{"id":"2","method":"tools/call","params":{"name":"ask_question","arguments":{"question":"What is Mach 1?"}}}`)
		require.Nil(t, resp.Error)
		assert.Equal(t, "2", resp.ID)
		assert.Equal(t, []string{"What is Mach 1?"}, asker.questions)
	})

	t.Run("Should rebuild through the rebuild_index tool", func(t *testing.T) {
		srv, _, indexer, _ := newTestServer(t)

		resp := callMCP(t, srv, `{"id":"3","method":"tools/call","params":{"name":"rebuild_index"}}`)
		require.Nil(t, resp.Error)
		assert.Equal(t, 1, indexer.builds)

		indexer.err = errors.New("no indexable documents found")
		resp = callMCP(t, srv, `{"id":"4","method":"tools/call","params":{"name":"rebuild_index"}}`)
		require.NotNil(t, resp.Error)
		assert.Equal(t, codeInternalError, resp.Error.Code)
	})

	t.Run("Should map protocol errors to codes", func(t *testing.T) {
		srv, _, _, _ := newTestServer(t)

		tests := []struct {
			body string
			code int
		}{
			{`{"id":`, codeParseError},
			{`{"id":"5","method":"resources/list"}`, codeMethodNotFound},
			{`{"id":"6","method":"tools/call","params":{}}`, codeInvalidParams},
			{`{"id":"7","method":"tools/call","params":{"name":"get_weather"}}`, codeMethodNotFound},
			{`{"id":"8","method":"tools/call","params":{"name":"ask_question","arguments":{"question":"x"}}}`, codeInvalidParams},
		}
		for _, tt := range tests {
			resp := callMCP(t, srv, tt.body)
			require.NotNil(t, resp.Error, tt.body)
			assert.Equal(t, tt.code, resp.Error.Code, tt.body)
		}
	})

	t.Run("Should serve the tool list over GET", func(t *testing.T) {
		srv, _, _, _ := newTestServer(t)

		rec := do(srv, httptest.NewRequest(http.MethodGet, "/tools/list", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "ask_question")
	})
}

func mustJSON(t *testing.T, v any) string {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return string(b)
}
