package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/kingfisher-trust/kingfisher-records/models"
	"github.com/kingfisher-trust/kingfisher-records/utils"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// FoodService hands donated food to recipients
type FoodService struct {
	db *gorm.DB
}

// NewFoodService creates a food service over db
func NewFoodService(db *gorm.DB) *FoodService {
	return &FoodService{db: db}
}

// GiveAway records that foodID went to recipientID and marks it given away.
// A food donation can only be given away once.
func (s *FoodService) GiveAway(ctx context.Context, sess Session, foodID, recipientID string) (*models.FoodGiven, error) {
	if err := sess.Require(LevelEdit); err != nil {
		return nil, err
	}
	if recipientID == "" {
		return nil, utils.NewValidationError("recipientID", "recipientID is required")
	}

	given := &models.FoodGiven{FoodID: foodID, RecipientID: recipientID, StaffID: sess.StaffID}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var food models.FoodDonation
		if err := tx.Where(map[string]interface{}{"foodID": foodID}).First(&food).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("failed to load food donation %s: %w", foodID, err)
		}
		if food.GivenAway {
			return ErrAlreadyGivenAway
		}
		if recipientID != models.Anonymous {
			link := models.Link{Table: RecipientSchema.Table, Column: "recipientID", Value: recipientID}
			if err := linkExists(tx, link); err != nil {
				return err
			}
		}

		if err := tx.Create(given).Error; err != nil {
			if isDuplicateKey(err) {
				return ErrAlreadyGivenAway
			}
			return fmt.Errorf("failed to record give-away of %s: %w", foodID, err)
		}
		err := tx.Model(&models.FoodDonation{}).
			Where(map[string]interface{}{"foodID": foodID}).
			UpdateColumn("givenAway", true).Error
		if err != nil {
			return fmt.Errorf("failed to mark %s given away: %w", foodID, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info().Str("food_id", foodID).Str("recipient_id", recipientID).Msg("food given away")
	return given, nil
}

// GivenTo returns the give-away record of foodID
func (s *FoodService) GivenTo(ctx context.Context, foodID string) (*models.FoodGiven, error) {
	var given models.FoodGiven
	if err := s.db.WithContext(ctx).Where(map[string]interface{}{"foodID": foodID}).First(&given).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load give-away of %s: %w", foodID, err)
	}
	return &given, nil
}
