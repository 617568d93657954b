package routes

import (
	"asset_borrow_ledger/app"
	"asset_borrow_ledger/controllers"
	"time"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.Engine, a *app.App) {
	// 控制器与依赖
	s := controllers.GetSrv(a)
	borrowCtl := controllers.NewBorrowController(s)
	profileCtl := controllers.GetProfileController(s.Repo)

	// 复用的中间件
	authMW := app.AuthRequired(s.AppSess, s.Repo, a.Config)
	staffMW := app.StaffOnly()
	seenMW := app.TouchLastSeen(s.Repo, a.RDB, 5*time.Minute)

	// ------------------------------
	// 登录（魔法链接，公开+受保护）
	// ------------------------------
	auth := r.Group("/auth")
	{
		auth.POST("/magiclink", s.RequestMagicLink)
		auth.POST("/magiclink/verify", s.VerifyMagicLink)
	}

	authed := auth.Group("", authMW, seenMW)
	{
		authed.GET("/whoami", s.Whoami)
		authed.POST("/logout", s.Logout)
	}

	// ------------------------------
	// 借用单（提交对所有登录用户开放，其余仅 IT）
	// ------------------------------
	reqs := r.Group("/api/requests", authMW, seenMW)
	{
		reqs.POST("", borrowCtl.CreateRequest)
	}

	reqsStaff := r.Group("/api/requests", authMW, staffMW, seenMW)
	{
		reqsStaff.GET("", borrowCtl.ListRequests) // ?status=active|returned
		reqsStaff.GET("/:id", borrowCtl.GetRequest)
		reqsStaff.GET("/:id/activity", borrowCtl.ListActivity)
		reqsStaff.POST("/:id/return", borrowCtl.Return)
		reqsStaff.POST("/:id/extend", borrowCtl.Extend)
		reqsStaff.POST("/:id/lost", borrowCtl.Lost)
	}

	// ------------------------------
	// 面板统计（仅 IT）
	// ------------------------------
	r.GET("/api/stats", authMW, staffMW, borrowCtl.Stats)

	// ------------------------------
	// 档案管理（仅 IT）
	// ------------------------------
	profiles := r.Group("/api/profiles", authMW, staffMW)
	{
		profiles.GET("", profileCtl.ListProfiles) // ?q=&page=&size=
		profiles.GET("/:id", profileCtl.GetProfile)
	}
}
