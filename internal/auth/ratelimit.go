package auth

import (
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// RateLimit returns middleware limiting each client IP to max requests
// per window for the matched route, using Redis INCR + PEXPIRE. If Redis
// is unreachable the limiter fails open.
func RateLimit(rdb *redis.Client, window time.Duration, max int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if rdb == nil {
			c.Next()
			return
		}

		key := fmt.Sprintf("ratelimit:%s:%s", c.ClientIP(), c.FullPath())
		ctx := c.Request.Context()

		current, err := rdb.Incr(ctx, key).Result()
		if err != nil {
			log.Printf("Rate limit error: %v", err)
			c.Next()
			return
		}

		if current == 1 {
			rdb.PExpire(ctx, key, window)
		}

		c.Header("X-RateLimit-Limit", strconv.FormatInt(max, 10))
		remaining := max - current
		if remaining < 0 {
			remaining = 0
		}
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))

		if current > max {
			ttl, _ := rdb.PTTL(ctx, key).Result()
			if ttl > 0 {
				c.Header("Retry-After", strconv.Itoa(int(ttl/time.Second)+1))
			}
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error": "Rate limit exceeded. Please try again later.",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}
