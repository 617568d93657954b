package controllers

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"
	"strings"

	"asset_borrow_ledger/app"
	"asset_borrow_ledger/mailer"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// POST /auth/magiclink
// 给邮箱发一次性登录链接。提交借用表单前必须用同一邮箱登录。
func (s *Srv) RequestMagicLink(c *gin.Context) {
	var in struct {
		Email string `json:"email" binding:"required,email"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}
	email := strings.ToLower(strings.TrimSpace(in.Email))

	buf := make([]byte, 16)
	rand.Read(buf)
	token := hex.EncodeToString(buf)

	if err := s.Links.Save(c.Request.Context(), token, email); err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}

	link := fmt.Sprintf("%s/login?token=%s", s.WebOrigin, token)
	err := s.Mailer.Send(c.Request.Context(), mailer.Message{
		To:      []string{email},
		Subject: "Your sign-in link",
		Text:    "Open this link to sign in and submit your borrow request:\n\n" + link,
		HTML:    fmt.Sprintf(`<p>Open this link to sign in and submit your borrow request:</p><p><a href="%s">%s</a></p>`, link, link),
	})
	if err != nil {
		s.Log.Error("magic link send failed", zap.String("recipient", email), zap.Error(err))
		c.JSON(http.StatusBadGateway, app.H{"error": "could not send magic link"})
		return
	}
	c.JSON(http.StatusOK, app.H{"ok": true})
}

// POST /auth/magiclink/verify
// 令牌一次性，二次使用返回 401
func (s *Srv) VerifyMagicLink(c *gin.Context) {
	var in struct {
		Token string `json:"token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}

	email, err := s.Links.Consume(c.Request.Context(), in.Token)
	if err == redis.Nil {
		c.JSON(http.StatusUnauthorized, app.H{"error": "invalid or expired token"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}

	p, err := s.Repo.FindOrCreateProfile(c.Request.Context(), email, uuid.NewString())
	if err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}
	if err := s.issueSession(c.Request.Context(), c.Writer, p.ID, p.Email); err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, app.H{"profile": p})
}

// GET /auth/whoami
func (s *Srv) Whoami(c *gin.Context) {
	pid, _ := c.Get("profileID")
	email, _ := c.Get("email")
	isStaff, _ := c.Get("isStaff")
	c.JSON(http.StatusOK, app.H{
		"profileID": pid,
		"email":     email,
		"isStaff":   isStaff,
	})
}

// POST /auth/logout
func (s *Srv) Logout(c *gin.Context) {
	if ck, err := c.Request.Cookie(app.AppSessionCookie); err == nil && ck.Value != "" {
		_ = s.AppSess.Delete(c.Request.Context(), ck.Value)
	}
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     app.AppSessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   strings.HasPrefix(s.WebOrigin, "https://"),
	})
	c.JSON(http.StatusOK, app.H{"ok": true})
}
