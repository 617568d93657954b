package app

import (
	"asset_borrow_ledger/db"
	"asset_borrow_ledger/session"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const AppSessionCookie = "app_session"

func AuthRequired(appSess *session.AppSessionStore, repo *db.Repo, cfg Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		ck, err := c.Request.Cookie(AppSessionCookie)
		if err != nil || ck.Value == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, H{"error": "unauthorized"})
			return
		}
		as, err := appSess.Get(c.Request.Context(), ck.Value)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, H{"error": "invalid session"})
			return
		}

		// 确认档案仍存在，并把 isStaff 放进 Context（只查一次）
		p, err := repo.FindProfileByID(c.Request.Context(), as.ProfileID)
		if err != nil {
			_ = appSess.Delete(c.Request.Context(), ck.Value)
			c.AbortWithStatusJSON(http.StatusUnauthorized, H{"error": "unauthorized"})
			return
		}
		c.Set("profileID", p.ID)
		c.Set("email", p.Email)

		isStaff := p.IsStaff()
		for _, staff := range cfg.StaffEmails {
			if strings.EqualFold(staff, p.Email) {
				isStaff = true
			}
		}
		c.Set("isStaff", isStaff)

		c.Next()
	}
}

func StaffOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		// AuthRequired 已经放好 isStaff
		v, ok := c.Get("isStaff")
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, H{"error": "unauthorized"})
			return
		}
		if staff, _ := v.(bool); !staff {
			c.AbortWithStatusJSON(http.StatusForbidden, H{"error": "forbidden"})
			return
		}
		c.Next()
	}
}
