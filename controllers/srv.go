// controllers/srv.go
package controllers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"asset_borrow_ledger/app"
	"asset_borrow_ledger/db"
	"asset_borrow_ledger/mailer"
	"asset_borrow_ledger/session"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Srv struct {
	Repo      *db.Repo
	AppSess   *session.AppSessionStore
	Links     *session.MagicLinkStore
	Mailer    mailer.Mailer
	Log       *zap.Logger
	WebOrigin string
	Cfg       app.Config
}

func GetSrv(a *app.App) *Srv {
	return &Srv{
		Repo:      db.NewRepo(a.DB),
		AppSess:   a.AppSessions(),
		Links:     session.NewMagicLinkStore(a.RDB, a.Config.MagicLinkTTL),
		Mailer:    a.Mailer,
		Log:       a.Log,
		WebOrigin: a.Config.WebOrigin,
		Cfg:       a.Config,
	}
}

// --- helpers ---

// 统一设置业务会话 Cookie
func (s *Srv) setAppCookie(w http.ResponseWriter, sessionID string, maxAge time.Duration) {
	secure := strings.HasPrefix(s.WebOrigin, "https://")
	http.SetCookie(w, &http.Cookie{
		Name:     app.AppSessionCookie,
		Value:    sessionID,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   secure,
		MaxAge:   int(maxAge / time.Second),
	})
}

// 登录成功：创建会话 + 触发登录快照
func (s *Srv) issueSession(ctx context.Context, w http.ResponseWriter, profileID, email string) error {
	if err := s.Repo.TouchProfileLogin(ctx, profileID); err != nil {
		// 不阻塞
	}
	id := uuid.NewString()
	if err := s.AppSess.Create(ctx, id, profileID, email); err != nil {
		return err
	}
	s.setAppCookie(w, id, s.Cfg.SessionTTL)
	return nil
}

// 从中间件放进 Context 的操作者 ID；匿名/系统操作返回 nil
func actorFromCtx(c *app.Ctx) *string {
	v, ok := c.Get("profileID")
	if !ok {
		return nil
	}
	pid, _ := v.(string)
	if pid == "" {
		return nil
	}
	return &pid
}
