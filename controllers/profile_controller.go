package controllers

import (
	"net/http"
	"strconv"

	"asset_borrow_ledger/app"
	"asset_borrow_ledger/db"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ProfileController struct {
	repo *db.Repo
}

func GetProfileController(repo *db.Repo) *ProfileController {
	return &ProfileController{repo: repo}
}

// GET /api/profiles?q=alex&page=1&size=20
func (pc *ProfileController) ListProfiles(c *gin.Context) {
	q := c.Query("q")
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("size", "20"))

	res, err := pc.repo.ListProfiles(c.Request.Context(), q, page, size)
	if err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, app.H{
		"total":    res.Total,
		"profiles": res.Profiles,
	})
}

// GET /api/profiles/:id
func (pc *ProfileController) GetProfile(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		c.JSON(http.StatusBadRequest, app.H{"error": "profile id is required"})
		return
	}
	if _, err := uuid.Parse(id); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": "invalid uuid"})
		return
	}
	p, err := pc.repo.FindProfileByID(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, app.H{"profile": nil})
		return
	}
	c.JSON(http.StatusOK, app.H{"profile": p})
}
