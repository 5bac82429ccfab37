package metrics

import (
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scrape(t *testing.T, r *Registry) string {
	t.Helper()
	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	require.Equal(t, 200, rec.Code)
	return rec.Body.String()
}

func TestRecordOperation(t *testing.T) {
	r := NewIsolated()

	r.RecordOperation("firewall", "create", nil, 10*time.Millisecond)
	r.RecordOperation("firewall", "create", nil, 20*time.Millisecond)
	r.RecordOperation("firewall", "create", errors.New("boom"), time.Millisecond)

	body := scrape(t, r)
	assert.Contains(t, body, `rampart_operations_total{collection="firewall",op="create",outcome="fulfilled"} 2`)
	assert.Contains(t, body, `rampart_operations_total{collection="firewall",op="create",outcome="rejected"} 1`)
	assert.Contains(t, body, `rampart_operation_duration_seconds_count{collection="firewall",op="create"} 3`)
}

func TestRecordStore(t *testing.T) {
	r := NewIsolated()

	r.RecordStore(7, map[string]int{"firewall": 3, "users": 1})

	body := scrape(t, r)
	assert.Contains(t, body, "rampart_store_version 7")
	assert.Contains(t, body, `rampart_collection_items{collection="firewall"} 3`)
	assert.Contains(t, body, `rampart_collection_items{collection="users"} 1`)
}

func TestRecordAPIRequest(t *testing.T) {
	r := NewIsolated()

	r.RecordAPIRequest("GET", "/api/state", 200, 0.01)
	r.RecordAPIRequest("POST", "/api/{kind}", 502, 0.2)

	body := scrape(t, r)
	assert.Contains(t, body, `rampart_api_requests_total{method="GET",path="/api/state",status="2xx"} 1`)
	assert.Contains(t, body, `rampart_api_requests_total{method="POST",path="/api/{kind}",status="5xx"} 1`)
}

func TestNilRegistry(t *testing.T) {
	var r *Registry
	assert.NotPanics(t, func() {
		r.RecordOperation("vpn", "fetch", nil, time.Second)
		r.RecordStore(1, nil)
		r.RecordAPIRequest("GET", "/", 200, 0)
	})
}

func TestIsolatedRegistries(t *testing.T) {
	// Two isolated registries must not collide on registration.
	a, b := NewIsolated(), NewIsolated()
	a.RecordStore(1, nil)
	b.RecordStore(2, nil)

	assert.Contains(t, scrape(t, a), "rampart_store_version 1")
	assert.Contains(t, scrape(t, b), "rampart_store_version 2")
}

func TestStatusString(t *testing.T) {
	assert.Equal(t, "2xx", statusString(204))
	assert.Equal(t, "3xx", statusString(304))
	assert.Equal(t, "4xx", statusString(404))
	assert.Equal(t, "5xx", statusString(503))
	assert.Equal(t, "101", statusString(101))
}

func TestGet_Singleton(t *testing.T) {
	assert.Same(t, Get(), Get())
}
