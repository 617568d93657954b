// controllers/borrow_controller.go
package controllers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"asset_borrow_ledger/app"
	"asset_borrow_ledger/lifecycle"
	"asset_borrow_ledger/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type BorrowController struct{ *Srv }

func NewBorrowController(s *Srv) *BorrowController { return &BorrowController{Srv: s} }

// 公开表单提交。前提：已用同一邮箱走完魔法链接登录。
func (bc *BorrowController) CreateRequest(c *gin.Context) {
	var in struct {
		BorrowerName  string     `json:"borrowerName" binding:"required,min=2"`
		BorrowerEmail string     `json:"borrowerEmail" binding:"required,email"`
		Department    string     `json:"department"`
		TicketID      string     `json:"ticketId" binding:"required,min=4"`
		AssetType     string     `json:"assetType" binding:"required"`
		AssetLabel    string     `json:"assetLabel"`
		Reason        string     `json:"reason" binding:"required,min=4"`
		BorrowedAt    *time.Time `json:"borrowedAt"`
		DueAt         time.Time  `json:"dueAt" binding:"required"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}

	// 提交邮箱必须等于会话里验证过的邮箱
	sessionEmail, _ := c.Get("email")
	if se, _ := sessionEmail.(string); !strings.EqualFold(se, in.BorrowerEmail) {
		c.JSON(http.StatusForbidden, app.H{"error": "sign in with the same email before submitting"})
		return
	}

	if !models.ValidAssetType(in.AssetType) {
		c.JSON(http.StatusBadRequest, app.H{"error": "unknown asset type"})
		return
	}

	borrowedAt := time.Now().UTC()
	if in.BorrowedAt != nil {
		borrowedAt = in.BorrowedAt.UTC()
	}
	if !in.DueAt.After(borrowedAt) {
		c.JSON(http.StatusBadRequest, app.H{"error": "due date must be after borrow date"})
		return
	}

	req := &models.BorrowRequest{
		TicketID:      in.TicketID,
		BorrowerName:  in.BorrowerName,
		BorrowerEmail: strings.ToLower(in.BorrowerEmail),
		Department:    in.Department,
		AssetType:     in.AssetType,
		AssetLabel:    in.AssetLabel,
		Reason:        in.Reason,
		BorrowedAt:    borrowedAt,
		DueAt:         in.DueAt.UTC(),
	}
	if err := bc.Repo.CreateRequest(c.Request.Context(), req); err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, req)
}

// 面板列表，?status=active|returned
func (bc *BorrowController) ListRequests(c *gin.Context) {
	rows, err := bc.Repo.ListRequests(c.Request.Context(), c.Query("status"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, app.H{"requests": rows})
}

func (bc *BorrowController) GetRequest(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		c.JSON(http.StatusBadRequest, app.H{"error": "missing request id"})
		return
	}
	req, err := bc.Repo.FindRequestByID(c.Request.Context(), id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		// 读路径的 NotFound 给占位，不算失败
		c.JSON(http.StatusNotFound, app.H{"request": nil})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, app.H{"request": req})
}

func (bc *BorrowController) ListActivity(c *gin.Context) {
	rows, err := bc.Repo.ListActivity(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, app.H{"activity": rows})
}

type transitionInput struct {
	DueAt *time.Time `json:"dueAt"`
	Notes string     `json:"notes"`
}

// 三个流转共用：解析 → 引擎 + 事务 → 按错误类型给状态码
func (bc *BorrowController) transition(c *gin.Context, kind lifecycle.TransitionKind) {
	id := c.Param("id")
	if id == "" {
		c.JSON(http.StatusBadRequest, app.H{"error": "missing request id"})
		return
	}
	var in transitionInput
	_ = c.ShouldBindJSON(&in)

	updated, entry, err := bc.Repo.ApplyTransition(c.Request.Context(), id, kind,
		lifecycle.TransitionPayload{DueAt: in.DueAt, Notes: in.Notes}, actorFromCtx(c))

	var ve *lifecycle.ValidationError
	switch {
	case errors.As(err, &ve):
		c.JSON(http.StatusBadRequest, app.H{"error": ve.Error()})
	case errors.Is(err, lifecycle.ErrAlreadyReturned):
		c.JSON(http.StatusConflict, app.H{"error": err.Error()})
	case errors.Is(err, gorm.ErrRecordNotFound):
		c.JSON(http.StatusNotFound, app.H{"request": nil})
	case err != nil:
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
	default:
		c.JSON(http.StatusOK, app.H{"request": updated, "entry": entry})
	}
}

func (bc *BorrowController) Return(c *gin.Context) { bc.transition(c, lifecycle.Return) }
func (bc *BorrowController) Extend(c *gin.Context) { bc.transition(c, lifecycle.Extend) }
func (bc *BorrowController) Lost(c *gin.Context)   { bc.transition(c, lifecycle.Lost) }

// 面板顶部的 SLA 数字
func (bc *BorrowController) Stats(c *gin.Context) {
	rows, err := bc.Repo.ListRequests(c.Request.Context(), "")
	if err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}
	now := time.Now().UTC()
	if cl := lifecycle.Classify(rows, now); cl.Skipped > 0 {
		bc.Log.Warn("requests with unusable due_at skipped from stats", zap.Int("skipped", cl.Skipped))
	}
	c.JSON(http.StatusOK, app.H{"stats": lifecycle.ComputeStats(rows, now)})
}
