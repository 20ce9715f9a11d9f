package middleware

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const IdempotencyKeyHeader = "Idempotency-Key"

// storedResponse is a completed mutation's outcome, replayed when the same
// key arrives again with the same payload.
type storedResponse struct {
	requestHash string
	status      int
	contentType string
	body        []byte
	expiresAt   time.Time
}

// IdempotencyStore keeps recent mutation outcomes in memory. The console's
// mutations are all remote read-modify-writes, so a replay window is enough;
// nothing needs to survive a restart.
type IdempotencyStore struct {
	mu      sync.Mutex
	entries map[string]storedResponse
	ttl     time.Duration
}

func NewIdempotencyStore(ttl time.Duration) *IdempotencyStore {
	return &IdempotencyStore{
		entries: make(map[string]storedResponse),
		ttl:     ttl,
	}
}

func (s *IdempotencyStore) get(key string) (storedResponse, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.entries[key]
	if !ok || time.Now().After(entry.expiresAt) {
		delete(s.entries, key)
		return storedResponse{}, false
	}
	return entry, true
}

func (s *IdempotencyStore) put(key string, entry storedResponse) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for k, e := range s.entries {
		if now.After(e.expiresAt) {
			delete(s.entries, k)
		}
	}
	entry.expiresAt = now.Add(s.ttl)
	s.entries[key] = entry
}

// IdempotencyMiddleware handles idempotency key validation for mutations.
// Same key + same payload replays the stored response; same key + different
// payload is a conflict.
func IdempotencyMiddleware(store *IdempotencyStore, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Only apply to POST/PUT/PATCH requests
		if c.Request.Method != http.MethodPost && c.Request.Method != http.MethodPut && c.Request.Method != http.MethodPatch {
			c.Next()
			return
		}

		idempotencyKey := c.GetHeader(IdempotencyKeyHeader)
		if idempotencyKey == "" {
			c.Next()
			return
		}

		// Read request body
		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			logger.Error("Failed to read request body for idempotency", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to process request"})
			c.Abort()
			return
		}

		// Restore body for handler
		c.Request.Body = io.NopCloser(bytes.NewBuffer(body))

		// Calculate request hash
		hash := sha256.Sum256(body)
		requestHash := hex.EncodeToString(hash[:])

		if entry, ok := store.get(idempotencyKey); ok {
			if entry.requestHash != requestHash {
				// Same key, different payload - conflict
				c.JSON(http.StatusConflict, gin.H{
					"error": "idempotency key conflict: same key used with different payload",
				})
				c.Abort()
				return
			}
			c.Header("Content-Type", entry.contentType)
			c.Data(entry.status, entry.contentType, entry.body)
			c.Abort()
			return
		}

		// New key: capture the response so it can be replayed.
		capture := &captureWriter{ResponseWriter: c.Writer}
		c.Writer = capture

		c.Next()

		status := c.Writer.Status()
		if status >= 200 && status < 300 {
			store.put(idempotencyKey, storedResponse{
				requestHash: requestHash,
				status:      status,
				contentType: c.Writer.Header().Get("Content-Type"),
				body:        capture.buf.Bytes(),
			})
		}
	}
}

type captureWriter struct {
	gin.ResponseWriter
	buf bytes.Buffer
}

func (w *captureWriter) Write(b []byte) (int, error) {
	w.buf.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *captureWriter) WriteString(s string) (int, error) {
	w.buf.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}
