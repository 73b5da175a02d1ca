package controllers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kutmanm/eatwise/services"
)

type SubscriptionController struct {
	subscriptions *services.SubscriptionService
}

func NewSubscriptionController(subscriptions *services.SubscriptionService) *SubscriptionController {
	return &SubscriptionController{subscriptions: subscriptions}
}

func (sc *SubscriptionController) Plans(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"plans": sc.subscriptions.Plans()})
}

type checkoutRequest struct {
	PlanID string `json:"plan_id" binding:"required"`
}

func (sc *SubscriptionController) Checkout(c *gin.Context) {
	var req checkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	url, err := sc.subscriptions.CreateCheckoutSession(c.Request.Context(), currentUserID(c), currentEmail(c), req.PlanID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"checkout_url": url})
}

func (sc *SubscriptionController) Portal(c *gin.Context) {
	url, err := sc.subscriptions.CreatePortalSession(c.Request.Context(), currentUserID(c), c.Query("return_url"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"portal_url": url})
}

func (sc *SubscriptionController) Status(c *gin.Context) {
	status, err := sc.subscriptions.Status(c.Request.Context(), currentUserID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load subscription status"})
		return
	}
	c.JSON(http.StatusOK, status)
}

func (sc *SubscriptionController) Cancel(c *gin.Context) {
	if err := sc.subscriptions.Cancel(c.Request.Context(), currentUserID(c)); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Subscription will cancel at period end"})
}

// Webhook is unauthenticated; Stripe's signature is the auth.
func (sc *SubscriptionController) Webhook(c *gin.Context) {
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, 65536))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read payload"})
		return
	}
	signature := c.GetHeader("Stripe-Signature")
	if err := sc.subscriptions.HandleWebhook(c.Request.Context(), payload, signature); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"received": true})
}
