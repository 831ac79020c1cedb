package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
)

const (
	responseMetaKey   = "response_meta"
	requestStartKey   = "request_start"
	cacheHitKey       = "cacheHit"
	processingTimeKey = "processingTimeMs"
)

// WithResponseMeta initialises response metadata storage on the request context
// and notes when the request started.
func WithResponseMeta() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(requestStartKey, time.Now())
		c.Set(responseMetaKey, map[string]interface{}{})
		c.Next()
	}
}

// StampProcessingTime records the time spent so far in the response metadata.
// Handlers call it right before rendering; anything set after the body is
// written never reaches the client.
func StampProcessingTime(c *gin.Context) {
	start, ok := c.Get(requestStartKey)
	if !ok {
		return
	}
	if t, ok := start.(time.Time); ok {
		SetMeta(c, processingTimeKey, time.Since(t).Milliseconds())
	}
}

// SetCacheHit records whether the response was served from the public cache.
func SetCacheHit(c *gin.Context, hit bool) {
	SetMeta(c, cacheHitKey, hit)
}

// SetMeta adds a metadata entry to the response envelope.
func SetMeta(c *gin.Context, key string, value interface{}) {
	ensureMeta(c)[key] = value
}

// ExtractMeta returns the metadata map stored on the context.
func ExtractMeta(c *gin.Context) map[string]interface{} {
	if c == nil {
		return nil
	}
	if meta, exists := c.Get(responseMetaKey); exists {
		if typed, ok := meta.(map[string]interface{}); ok {
			return typed
		}
	}
	return nil
}

func ensureMeta(c *gin.Context) map[string]interface{} {
	if meta := ExtractMeta(c); meta != nil {
		return meta
	}
	newMeta := make(map[string]interface{})
	if c != nil {
		c.Set(responseMetaKey, newMeta)
	}
	return newMeta
}
