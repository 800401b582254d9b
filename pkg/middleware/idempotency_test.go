package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// fakeRedis is an in-memory RedisClient for middleware tests
type fakeRedis struct {
	mu   sync.Mutex
	data map[string]string
	err  error
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{data: make(map[string]string)}
}

func (f *fakeRedis) Get(ctx context.Context, key string) *redis.StringCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return redis.NewStringResult("", f.err)
	}
	v, ok := f.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (f *fakeRedis) Set(ctx context.Context, key string, value interface{}, _ time.Duration) *redis.StatusCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return redis.NewStatusResult("", f.err)
	}
	f.data[key] = fmt.Sprint(value)
	return redis.NewStatusResult("OK", nil)
}

func (f *fakeRedis) SetNX(ctx context.Context, key string, value interface{}, _ time.Duration) *redis.BoolCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return redis.NewBoolResult(false, f.err)
	}
	if _, ok := f.data[key]; ok {
		return redis.NewBoolResult(false, nil)
	}
	f.data[key] = fmt.Sprint(value)
	return redis.NewBoolResult(true, nil)
}

func (f *fakeRedis) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	var deleted int64
	for _, key := range keys {
		if _, ok := f.data[key]; ok {
			delete(f.data, key)
			deleted++
		}
	}
	return redis.NewIntResult(deleted, nil)
}

func (f *fakeRedis) seed(t *testing.T, key string, record *IdempotencyRecord) {
	t.Helper()
	data, err := json.Marshal(record)
	if err != nil {
		t.Fatalf("failed to marshal record: %v", err)
	}
	f.mu.Lock()
	f.data[IdempotencyKeyPrefix+key] = string(data)
	f.mu.Unlock()
}

// requestHash mirrors the hash the middleware computes for an
// unauthenticated request.
func requestHash(method, path string, body []byte) string {
	h := sha256.New()
	h.Write([]byte(method))
	h.Write([]byte(path))
	if len(body) > 0 {
		h.Write(body)
	}
	return hex.EncodeToString(h.Sum(nil))
}

func setupIdempotencyRouter(store RedisClient, calls *int) *gin.Engine {
	idempotency := Idempotency(DefaultIdempotencyConfig(store))
	router := gin.New()
	router.POST("/reservations", idempotency, func(c *gin.Context) {
		*calls++
		c.JSON(http.StatusCreated, gin.H{"id": "r1"})
	})
	router.GET("/reservations", idempotency, func(c *gin.Context) {
		*calls++
		c.JSON(http.StatusOK, gin.H{})
	})
	router.DELETE("/reservations/:id", idempotency, func(c *gin.Context) {
		*calls++
		c.JSON(http.StatusOK, gin.H{"status": "cancelled"})
	})
	return router
}

func TestIdempotency_FirstRequestPassesThrough(t *testing.T) {
	store := newFakeRedis()
	calls := 0
	router := setupIdempotencyRouter(store, &calls)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/reservations", bytes.NewBufferString(`{"event_id":"e1"}`))
	req.Header.Set(IdempotencyKeyHeader, "key-1")
	router.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Errorf("status = %d, want 201", w.Code)
	}
	if calls != 1 {
		t.Errorf("handler calls = %d, want 1", calls)
	}

	record, err := getIdempotencyRecord(context.Background(), store, IdempotencyKeyPrefix+"key-1")
	if err != nil {
		t.Fatalf("record not stored: %v", err)
	}
	if record.Status != StatusCompleted {
		t.Errorf("record status = %s, want completed", record.Status)
	}
	if record.ResponseCode != http.StatusCreated {
		t.Errorf("record code = %d, want 201", record.ResponseCode)
	}
}

func TestIdempotency_ReplayReturnsCachedResponse(t *testing.T) {
	store := newFakeRedis()
	calls := 0
	router := setupIdempotencyRouter(store, &calls)

	body := `{"event_id":"e1"}`
	send := func() *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		req := httptest.NewRequest("POST", "/reservations", bytes.NewBufferString(body))
		req.Header.Set(IdempotencyKeyHeader, "key-replay")
		router.ServeHTTP(w, req)
		return w
	}

	first := send()
	second := send()

	if calls != 1 {
		t.Errorf("handler calls = %d, want 1", calls)
	}
	if second.Code != first.Code {
		t.Errorf("replay status = %d, want %d", second.Code, first.Code)
	}
	if second.Body.String() != first.Body.String() {
		t.Errorf("replay body = %s, want %s", second.Body.String(), first.Body.String())
	}
}

func TestIdempotency_ReplayedCancelKeepsFirstOutcome(t *testing.T) {
	// A retried DELETE must replay the cached 200 instead of reaching
	// the handler again and observing an already-cancelled reservation.
	store := newFakeRedis()
	calls := 0
	router := setupIdempotencyRouter(store, &calls)

	send := func() *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		req := httptest.NewRequest("DELETE", "/reservations/r1", nil)
		req.Header.Set(IdempotencyKeyHeader, "key-cancel")
		router.ServeHTTP(w, req)
		return w
	}

	first := send()
	second := send()

	if calls != 1 {
		t.Errorf("handler calls = %d, want 1", calls)
	}
	if first.Code != http.StatusOK || second.Code != http.StatusOK {
		t.Errorf("statuses = %d, %d, want 200, 200", first.Code, second.Code)
	}
	if second.Body.String() != first.Body.String() {
		t.Errorf("replay body = %s, want %s", second.Body.String(), first.Body.String())
	}
}

func TestIdempotency_KeyReusedWithDifferentRequest(t *testing.T) {
	store := newFakeRedis()
	calls := 0
	router := setupIdempotencyRouter(store, &calls)

	store.seed(t, "key-reused", &IdempotencyRecord{
		Key:         "key-reused",
		Status:      StatusCompleted,
		RequestHash: requestHash("POST", "/reservations", []byte(`{"event_id":"other"}`)),
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/reservations", bytes.NewBufferString(`{"event_id":"e1"}`))
	req.Header.Set(IdempotencyKeyHeader, "key-reused")
	router.ServeHTTP(w, req)

	if w.Code != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want 422", w.Code)
	}
	if calls != 0 {
		t.Errorf("handler calls = %d, want 0", calls)
	}
}

func TestIdempotency_RequestInProgress(t *testing.T) {
	store := newFakeRedis()
	calls := 0
	router := setupIdempotencyRouter(store, &calls)

	body := []byte(`{"event_id":"e1"}`)
	store.seed(t, "key-busy", &IdempotencyRecord{
		Key:         "key-busy",
		Status:      StatusProcessing,
		RequestHash: requestHash("POST", "/reservations", body),
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/reservations", bytes.NewBuffer(body))
	req.Header.Set(IdempotencyKeyHeader, "key-busy")
	router.ServeHTTP(w, req)

	if w.Code != http.StatusConflict {
		t.Errorf("status = %d, want 409", w.Code)
	}
	if calls != 0 {
		t.Errorf("handler calls = %d, want 0", calls)
	}
}

func TestIdempotency_MissingKey(t *testing.T) {
	store := newFakeRedis()
	calls := 0
	router := setupIdempotencyRouter(store, &calls)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/reservations", bytes.NewBufferString(`{}`))
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
	if calls != 0 {
		t.Errorf("handler calls = %d, want 0", calls)
	}
}

func TestIdempotency_MethodNotRequired(t *testing.T) {
	store := newFakeRedis()
	calls := 0
	router := setupIdempotencyRouter(store, &calls)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/reservations", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
	if calls != 1 {
		t.Errorf("handler calls = %d, want 1", calls)
	}
}

func TestIdempotency_FailOpenOnRedisError(t *testing.T) {
	store := newFakeRedis()
	store.err = errors.New("redis unavailable")
	calls := 0
	router := setupIdempotencyRouter(store, &calls)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/reservations", bytes.NewBufferString(`{}`))
	req.Header.Set(IdempotencyKeyHeader, "key-open")
	router.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Errorf("status = %d, want 201", w.Code)
	}
	if calls != 1 {
		t.Errorf("handler calls = %d, want 1", calls)
	}
}
