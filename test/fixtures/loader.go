// Package fixtures serves recorded Sui JSON-RPC results to tests.
package fixtures

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"
)

// fixturesDir returns the absolute path to the fixtures directory.
func fixturesDir() string {
	_, file, _, _ := runtime.Caller(0)
	return filepath.Dir(file)
}

// LoadRPCResult loads the "result" member of a recorded RPC response.
func LoadRPCResult(t *testing.T, filename string) json.RawMessage {
	t.Helper()
	path := filepath.Join(fixturesDir(), "rpc", filename)
	data, err := os.ReadFile(path)
	require.NoError(t, err, "failed to load fixture RPC response: %s", filename)

	var resp struct {
		Result json.RawMessage `json:"result"`
	}
	require.NoError(t, json.Unmarshal(data, &resp), filename)
	require.NotEmpty(t, resp.Result, "fixture %s has no result", filename)
	return resp.Result
}

// SuiNode starts a JSON-RPC server answering each method with the given
// result. Unknown methods get a -32601 error.
func SuiNode(t *testing.T, results map[string]json.RawMessage) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			ID     int    `json:"id"`
			Method string `json:"method"`
		}
		json.NewDecoder(r.Body).Decode(&req) //nolint:errcheck

		resp := map[string]any{"jsonrpc": "2.0", "id": req.ID}
		if res, ok := results[req.Method]; ok {
			resp["result"] = res
		} else {
			resp["error"] = map[string]any{"code": -32601, "message": "Method not found"}
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp) //nolint:errcheck
	}))
	t.Cleanup(srv.Close)
	return srv
}
