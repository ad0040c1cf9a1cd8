package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })

func hit(h http.Handler) int {
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/resources", nil))
	return rr.Code
}

func TestLimit_RefillsEachSecond(t *testing.T) {
	now := time.Unix(1000, 0)
	tb := NewTokenBucket(2)
	tb.now = func() time.Time { return now }
	tb.lastSec = now.Unix()
	h := Limit(tb, okHandler)

	assert.Equal(t, http.StatusOK, hit(h))
	assert.Equal(t, http.StatusOK, hit(h))
	assert.Equal(t, http.StatusTooManyRequests, hit(h))

	now = now.Add(time.Second)
	assert.Equal(t, http.StatusOK, hit(h))
}

func TestWrap_Disabled(t *testing.T) {
	t.Setenv("RATE_LIMIT_ENABLED", "")
	h := Wrap(okHandler)
	for i := 0; i < 500; i++ {
		assert.Equal(t, http.StatusOK, hit(h))
	}
}

func TestWrap_Enabled(t *testing.T) {
	t.Setenv("RATE_LIMIT_ENABLED", "true")
	t.Setenv("RATE_LIMIT_QPS", "1")
	h := Wrap(okHandler)
	codes := map[int]int{}
	for i := 0; i < 5; i++ {
		codes[hit(h)]++
	}
	// 跨秒边界时最多放行两次
	assert.LessOrEqual(t, codes[http.StatusOK], 2)
	assert.GreaterOrEqual(t, codes[http.StatusTooManyRequests], 3)
}
