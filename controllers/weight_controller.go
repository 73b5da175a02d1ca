package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/kutmanm/eatwise/services"
)

type WeightController struct {
	users *services.UserService
}

func NewWeightController(users *services.UserService) *WeightController {
	return &WeightController{users: users}
}

type weightRequest struct {
	Weight   float64   `json:"weight" binding:"required,min=10,max=400"`
	Note     string    `json:"note"`
	LoggedAt time.Time `json:"logged_at"`
}

func (wc *WeightController) Create(c *gin.Context) {
	var req weightRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	log, err := wc.users.LogWeight(c.Request.Context(), currentUserID(c), req.Weight, req.Note, req.LoggedAt)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to log weight"})
		return
	}
	c.JSON(http.StatusCreated, log)
}

func (wc *WeightController) List(c *gin.Context) {
	from, ok := queryTime(c, "from")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid from date"})
		return
	}
	to, ok := queryTime(c, "to")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid to date"})
		return
	}
	logs, err := wc.users.ListWeightLogs(c.Request.Context(), currentUserID(c), from, to, queryInt(c, "limit", 100))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list weight logs"})
		return
	}
	c.JSON(http.StatusOK, logs)
}

func (wc *WeightController) Delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid weight log id"})
		return
	}
	err := wc.users.DeleteWeightLog(c.Request.Context(), currentUserID(c), id)
	if err == gorm.ErrRecordNotFound {
		c.JSON(http.StatusNotFound, gin.H{"error": "Weight log not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete weight log"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Weight log deleted"})
}

func (wc *WeightController) Stats(c *gin.Context) {
	stats, err := wc.users.WeightStats(c.Request.Context(), currentUserID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build weight stats"})
		return
	}
	c.JSON(http.StatusOK, stats)
}
