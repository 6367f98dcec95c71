package api_test

import (
	"net/http"
	"net/http/httptest"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/chaman08/buildhub-sub001/api"
)

func TestTimeoutMiddleware_PassesFastRequests(t *testing.T) {
	handler := api.TimeoutMiddleware(time.Second)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"ok": true}`))
	}))

	req, err := http.NewRequest("GET", "/api/v1/projects", nil)
	if err != nil {
		t.Fatal(err)
	}

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, `{"ok": true}`, rr.Body.String())
}

func TestTimeoutMiddleware_TimesOutSlowRequests(t *testing.T) {
	release := make(chan struct{})

	handler := api.TimeoutMiddleware(20*time.Millisecond)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))

	base := runtime.NumGoroutine()

	for i := 0; i < 8; i++ {
		req, err := http.NewRequest("GET", "/api/v1/admin/stats", nil)
		if err != nil {
			t.Fatal(err)
		}

		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusRequestTimeout, rr.Code)
		assert.Contains(t, rr.Body.String(), "Request timeout")
	}

	// once unblocked, every stalled handler goroutine must drain away
	// rather than staying parked on the done channel
	close(release)
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) && runtime.NumGoroutine() > base+1 {
		time.Sleep(10 * time.Millisecond)
	}
	assert.LessOrEqual(t, runtime.NumGoroutine(), base+1)
}
