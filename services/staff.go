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

// StaffUpdate carries the editable fields of a staff profile
type StaffUpdate struct {
	Surname         string `json:"surname"`
	Forename        string `json:"forename"`
	Contact         string `json:"contact"`
	AccessLevel     string `json:"accessLevel"`
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// StaffService manages staff logins on top of the staff record store
type StaffService struct {
	db      *gorm.DB
	records *Repository[models.Staff, *models.Staff]
}

// NewStaffService creates a staff service over db
func NewStaffService(db *gorm.DB, records *Repository[models.Staff, *models.Staff]) *StaffService {
	return &StaffService{db: db, records: records}
}

// Create adds a staff login with a freshly salted password. Admins only.
func (s *StaffService) Create(ctx context.Context, sess Session, staff *models.Staff, password string) error {
	if err := sess.Require(LevelDelete); err != nil {
		return err
	}
	if password == "" {
		return utils.NewValidationError("password", "password is required")
	}
	if staff.AccessLevel == models.AccessLevelRevoked {
		return utils.NewValidationError("accessLevel", "new staff cannot start revoked")
	}

	hash, salt, err := HashPassword(password)
	if err != nil {
		return err
	}
	staff.PasswordHash = hash
	staff.Salt = salt
	return s.records.Insert(ctx, staff)
}

// UpdateProfile edits a staff row. Staff may edit their own row; anyone else's needs level 3,
// as does changing an access level. The target's current password confirms the change.
func (s *StaffService) UpdateProfile(ctx context.Context, sess Session, staffID string, update StaffUpdate) (*models.Staff, error) {
	if !sess.CanManageStaff(staffID) {
		return nil, ErrInsufficientAccess
	}
	if update.CurrentPassword == "" {
		return nil, utils.NewValidationError("currentPassword", "Please fill all fields")
	}

	var updated models.Staff
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var staff models.Staff
		if err := tx.Where(map[string]interface{}{"staffID": staffID}).First(&staff).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("failed to load staff %s: %w", staffID, err)
		}
		if staff.Revoked() {
			return ErrRevoked
		}
		if !VerifyPassword(update.CurrentPassword, staff.Salt, staff.PasswordHash) {
			return ErrBadCredential
		}

		if update.AccessLevel != "" && update.AccessLevel != staff.AccessLevel {
			if err := sess.Require(LevelDelete); err != nil {
				return err
			}
			if update.AccessLevel == models.AccessLevelRevoked {
				return utils.NewValidationError("accessLevel", "use revoke to remove access")
			}
			staff.AccessLevel = update.AccessLevel
		}
		staff.Surname = update.Surname
		staff.Forename = update.Forename
		staff.Contact = update.Contact
		if err := utils.ValidateStruct(&staff); err != nil {
			return err
		}

		fields := map[string]interface{}{
			"staffSurname":  staff.Surname,
			"staffForename": staff.Forename,
			"staffContact":  staff.Contact,
			"accessLevel":   staff.AccessLevel,
		}
		if update.NewPassword != "" {
			hash, salt, err := HashPassword(update.NewPassword)
			if err != nil {
				return err
			}
			staff.PasswordHash, staff.Salt = hash, salt
			fields["password"] = hash
			fields["salt"] = salt
		}

		if err := tx.Model(&models.Staff{}).Where(map[string]interface{}{"staffID": staffID}).Updates(fields).Error; err != nil {
			return fmt.Errorf("failed to update staff %s: %w", staffID, err)
		}
		updated = staff
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// Remove hard-deletes a staff row that nothing references. A referenced row fails with
// ReferentialIntegrityError so the caller can offer Revoke instead.
func (s *StaffService) Remove(ctx context.Context, sess Session, staffID string) error {
	if !sess.CanManageStaff(staffID) {
		return ErrInsufficientAccess
	}
	staff, err := s.records.Get(ctx, staffID)
	if err != nil {
		return err
	}
	if staff.Revoked() {
		return ErrAlreadyRevoked
	}
	if err := s.records.Delete(ctx, staffID); err != nil {
		return err
	}
	log.Info().Str("staff_id", staffID).Str("removed_by", sess.StaffID).Msg("staff deleted")
	return nil
}

// Revoke keeps the staff row for the records that reference it but bars it from logging in
func (s *StaffService) Revoke(ctx context.Context, sess Session, staffID string) error {
	if !sess.CanManageStaff(staffID) {
		return ErrInsufficientAccess
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var staff models.Staff
		if err := tx.Where(map[string]interface{}{"staffID": staffID}).First(&staff).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("failed to load staff %s: %w", staffID, err)
		}
		if staff.Revoked() {
			return ErrAlreadyRevoked
		}

		err := tx.Model(&models.Staff{}).Where(map[string]interface{}{"staffID": staffID}).Updates(map[string]interface{}{
			"accessLevel": models.AccessLevelRevoked,
			"password":    "",
			"salt":        "",
		}).Error
		if err != nil {
			return fmt.Errorf("failed to revoke staff %s: %w", staffID, err)
		}

		log.Info().Str("staff_id", staffID).Str("revoked_by", sess.StaffID).Msg("staff access revoked")
		return nil
	})
}
