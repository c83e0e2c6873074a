package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/papermill/portal/internal/infrastructure/cache"
	"github.com/papermill/portal/internal/interfaces/http/dto"
)

// IdempotencyHeader carries the client's submission key. HTML forms send
// it as the IdempotencyFormField hidden input instead.
const (
	IdempotencyHeader    = "Idempotency-Key"
	IdempotencyFormField = "_idempotency_key"
	maxIdempotencyKeyLen = 128
)

// IdempotencyConfig configures duplicate-submit protection
type IdempotencyConfig struct {
	Store cache.IdempotencyStore
	TTL   time.Duration
	// OnDuplicate answers a repeated submission; it must abort. Defaults
	// to a 409 envelope.
	OnDuplicate func(c *gin.Context)
	Logger      *zap.Logger
}

// Idempotency rejects a POST whose key was already processed within the
// TTL. Keys are scoped to the user and route. A submission that fails
// (status >= 400) releases its key so it can be retried. Requests without
// a key pass through; a store failure lets the request through too.
func Idempotency(cfg IdempotencyConfig) gin.HandlerFunc {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.OnDuplicate == nil {
		cfg.OnDuplicate = func(c *gin.Context) {
			abortJSON(c, http.StatusConflict, dto.ErrCodeDuplicateSubmission, "This form was already submitted")
		}
	}

	return func(c *gin.Context) {
		if c.Request.Method != http.MethodPost {
			c.Next()
			return
		}
		key := strings.TrimSpace(c.GetHeader(IdempotencyHeader))
		if key == "" {
			key = strings.TrimSpace(c.PostForm(IdempotencyFormField))
		}
		if key == "" || len(key) > maxIdempotencyKeyLen {
			c.Next()
			return
		}

		scoped := "idem:" + c.GetString(UsernameKey) + ":" + c.FullPath() + ":" + key
		ctx := c.Request.Context()
		fresh, err := cfg.Store.MarkProcessed(ctx, scoped, cfg.TTL)
		if err != nil {
			cfg.Logger.Warn("idempotency store unavailable", zap.Error(err))
			c.Next()
			return
		}
		if !fresh {
			cfg.Logger.Info("duplicate submission rejected", zap.String("route", c.FullPath()))
			cfg.OnDuplicate(c)
			return
		}

		c.Next()

		if c.Writer.Status() >= http.StatusBadRequest {
			if err := cfg.Store.Release(ctx, scoped); err != nil {
				cfg.Logger.Warn("failed to release idempotency key", zap.Error(err))
			}
		}
	}
}
