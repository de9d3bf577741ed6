package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
)

const (
	metaStartKey  = "meta_start_time"
	metaValuesKey = "meta_values"
)

// ResponseMeta stamps the request start time so handlers can report
// processing time in the response meta map.
func ResponseMeta() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(metaStartKey, time.Now())
		c.Next()
	}
}

// SetCacheInfo records how the handler's payload was obtained.
func SetCacheInfo(c *gin.Context, hit bool, ageMinutes int, nextRefreshAt time.Time) {
	values := metaValues(c)
	values["cache_hit"] = hit
	values["age_minutes"] = ageMinutes
	if !nextRefreshAt.IsZero() {
		values["next_refresh_at"] = nextRefreshAt.UTC().Format(time.RFC3339)
	}
}

// Extract builds the response meta map, adding elapsed processing time.
func Extract(c *gin.Context) map[string]interface{} {
	values := metaValues(c)
	if v, ok := c.Get(metaStartKey); ok {
		if start, ok := v.(time.Time); ok {
			values["processing_time_ms"] = time.Since(start).Milliseconds()
		}
	}
	return values
}

func metaValues(c *gin.Context) map[string]interface{} {
	if v, ok := c.Get(metaValuesKey); ok {
		if values, ok := v.(map[string]interface{}); ok {
			return values
		}
	}
	values := map[string]interface{}{}
	c.Set(metaValuesKey, values)
	return values
}
