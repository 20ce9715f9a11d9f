package service

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	"github.com/uriel-reyes/sellertools-sub000/internal/ctp"
)

// stubHandler answers one GraphQL request: the returned value becomes the
// response's data field.
type stubHandler func(query string, vars map[string]interface{}) (interface{}, []ctp.GraphQLError)

// newStubClient starts a fake platform GraphQL endpoint for the test and
// returns a client pointed at it.
func newStubClient(t *testing.T, handle stubHandler) *ctp.Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req ctp.GraphQLRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		data, gqlErrs := handle(req.Query, req.Variables)
		resp := map[string]interface{}{"data": data}
		if len(gqlErrs) > 0 {
			resp["errors"] = gqlErrs
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}))
	t.Cleanup(srv.Close)
	return ctp.NewClientForEndpoint(srv.URL, "test-token", zap.NewNop())
}

func concurrentModification() []ctp.GraphQLError {
	return []ctp.GraphQLError{{
		Message:    "Object has been modified concurrently",
		Extensions: map[string]interface{}{"code": "ConcurrentModification"},
	}}
}
