package store

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"grimm.is/rampart/internal/metrics"
)

func httptestScrape(t *testing.T, reg *metrics.Registry) string {
	t.Helper()
	rec := httptest.NewRecorder()
	reg.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	require.Equal(t, 200, rec.Code)
	return rec.Body.String()
}
