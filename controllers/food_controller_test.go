package controllers

import (
	"net/http"
	"testing"

	"github.com/kingfisher-trust/kingfisher-records/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func seedFood(t *testing.T, db *gorm.DB) {
	t.Helper()
	require.NoError(t, db.Create(&models.Recipient{RecipientID: "RE00000001", Forename: "Kim"}).Error)
	require.NoError(t, db.Create(&models.FoodDonation{
		FoodID:       "FD00000001",
		Name:         "Tinned soup",
		DonationDate: models.NewDate(2024, 3, 1),
		ExpiryDate:   models.NewDate(2025, 3, 1),
		DonorID:      models.Anonymous,
		StaffID:      "admin",
	}).Error)
}

func TestGiveAwayFood(t *testing.T) {
	db := setupControllerTest(t)
	seedFood(t, db)

	const route = "/food-donations/:id/give-away"
	const path = "/food-donations/FD00000001/give-away"

	w := performRequest(t, GetFoodRecipient, &readerSession, "GET", route, path, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = performRequest(t, GiveAwayFood, &readerSession, "POST", route, path, map[string]string{"recipientID": "RE00000001"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = performRequest(t, GiveAwayFood, &editorSession, "POST", route, path, map[string]string{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = performRequest(t, GiveAwayFood, &editorSession, "POST", route, path, map[string]string{"recipientID": "RE00000404"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "recipientID", decode(t, w).Error.Field)

	w = performRequest(t, GiveAwayFood, &editorSession, "POST", route, path, map[string]string{"recipientID": "RE00000001"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var given models.FoodGiven
	decodeData(t, w, &given)
	assert.Equal(t, models.FoodGiven{FoodID: "FD00000001", RecipientID: "RE00000001", StaffID: "ST00000002"}, given)

	w = performRequest(t, GiveAwayFood, &editorSession, "POST", route, path, map[string]string{"recipientID": models.Anonymous})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "ALREADY_GIVEN_AWAY", decode(t, w).Error.Code)

	w = performRequest(t, GetFoodRecipient, &readerSession, "GET", route, path, nil)
	require.Equal(t, http.StatusOK, w.Code)
	decodeData(t, w, &given)
	assert.Equal(t, "RE00000001", given.RecipientID)

	w = performRequest(t, GiveAwayFood, &editorSession, "POST", route, "/food-donations/FD00000404/give-away", map[string]string{"recipientID": "RE00000001"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}
