package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kingfisher-trust/kingfisher-records/config"
	"github.com/kingfisher-trust/kingfisher-records/services"
)

// GiveAwayRequest names the recipient of a food donation
type GiveAwayRequest struct {
	RecipientID string `json:"recipientID" binding:"required"`
}

// GiveAwayFood handles POST /api/v1/food-donations/:id/give-away
func GiveAwayFood(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		return
	}

	var req GiveAwayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	given, err := services.NewFoodService(config.GetDB()).GiveAway(c.Request.Context(), sess, c.Param("id"), req.RecipientID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusCreated, given)
}

// GetFoodRecipient handles GET /api/v1/food-donations/:id/give-away
func GetFoodRecipient(c *gin.Context) {
	given, err := services.NewFoodService(config.GetDB()).GivenTo(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, given)
}
