package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kingfisher-trust/kingfisher-records/config"
	"github.com/kingfisher-trust/kingfisher-records/models"
	"github.com/kingfisher-trust/kingfisher-records/services"
)

// CreateStaffRequest represents the request body for adding a staff login
type CreateStaffRequest struct {
	StaffID     string `json:"staffID"`
	Surname     string `json:"surname"`
	Forename    string `json:"forename"`
	Contact     string `json:"contact"`
	AccessLevel string `json:"accessLevel"`
	Password    string `json:"password"`
}

func staffService() *services.StaffService {
	db := config.GetDB()
	return services.NewStaffService(db, services.NewRecords(db).Staff)
}

// CreateStaff handles POST /api/v1/staff (admins only)
func CreateStaff(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		return
	}

	var req CreateStaffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	staff := &models.Staff{
		StaffID:     req.StaffID,
		Surname:     req.Surname,
		Forename:    req.Forename,
		Contact:     req.Contact,
		AccessLevel: req.AccessLevel,
	}
	if err := staffService().Create(c.Request.Context(), sess, staff, req.Password); err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusCreated, staff)
}

// UpdateStaff handles PUT /api/v1/staff/:id (self or admin)
func UpdateStaff(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		return
	}

	var req services.StaffUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	staff, err := staffService().UpdateProfile(c.Request.Context(), sess, c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, staff)
}

// DeleteStaff handles DELETE /api/v1/staff/:id. A referenced login cannot be deleted;
// ?revoke=true removes its access instead.
func DeleteStaff(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		return
	}

	svc := staffService()
	if c.Query("revoke") == "true" {
		if err := svc.Revoke(c.Request.Context(), sess, c.Param("id")); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": "Access revoked",
		})
		return
	}

	if err := svc.Remove(c.Request.Context(), sess, c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Record deleted",
	})
}
