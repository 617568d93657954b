// app/seenmw.go
package app

import (
	"asset_borrow_ledger/db"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

func TouchLastSeen(repo *db.Repo, rdb *redis.Client, throttle time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		v, ok := c.Get("profileID")
		if !ok {
			c.Next()
			return
		}
		pid, _ := v.(string)
		if pid == "" {
			c.Next()
			return
		}

		key := "abl:lastseen:" + pid
		if ok, _ := rdb.SetNX(c, key, "1", throttle).Result(); ok {
			_ = repo.TouchProfileSeen(c, pid) // 忽略错误，不阻塞请求
		}
		c.Next()
	}
}
