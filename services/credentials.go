package services

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/kingfisher-trust/kingfisher-records/models"
	"github.com/kingfisher-trust/kingfisher-records/observability"
	"github.com/kingfisher-trust/kingfisher-records/utils"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/argon2"
	"gorm.io/gorm"
)

const (
	saltLength    = 16
	hashLength    = 32
	argonTime     = 2
	argonMemory   = 19 * 1024
	argonThreads  = 1
	adminStaffID  = "admin"
	adminPassword = "admin"
)

// HashPassword derives a salted hash of plaintext with a freshly generated salt
func HashPassword(plaintext string) (hash, salt string, err error) {
	rawSalt := make([]byte, saltLength)
	if _, err := rand.Read(rawSalt); err != nil {
		return "", "", fmt.Errorf("failed to generate salt: %w", err)
	}
	salt = base64.RawStdEncoding.EncodeToString(rawSalt)
	return derive(plaintext, rawSalt), salt, nil
}

// VerifyPassword recomputes the salted hash of plaintext and compares it to storedHash
func VerifyPassword(plaintext, salt, storedHash string) bool {
	rawSalt, err := base64.RawStdEncoding.DecodeString(salt)
	if err != nil || len(rawSalt) == 0 || storedHash == "" {
		return false
	}
	computed := derive(plaintext, rawSalt)
	return subtle.ConstantTimeCompare([]byte(computed), []byte(storedHash)) == 1
}

func derive(plaintext string, salt []byte) string {
	key := argon2.IDKey([]byte(plaintext), salt, argonTime, argonMemory, argonThreads, hashLength)
	return base64.RawStdEncoding.EncodeToString(key)
}

// Credentials looks up staff logins and checks their passwords
type Credentials struct {
	db *gorm.DB
}

// NewCredentials creates a credential store over db
func NewCredentials(db *gorm.DB) *Credentials {
	return &Credentials{db: db}
}

// Authenticate checks staffID and plaintext against the stored salted hash
func (c *Credentials) Authenticate(ctx context.Context, staffID, plaintext string) (*models.Staff, error) {
	if staffID == "" || plaintext == "" {
		return nil, utils.NewValidationError("staffID", "Please fill all fields")
	}

	staff, err := c.authenticate(ctx, staffID, plaintext)
	outcome := "ok"
	var authErr *AuthError
	if errors.As(err, &authErr) {
		outcome = authErr.Code
	} else if err != nil {
		outcome = "error"
	}
	observability.RecordAuthAttempt(outcome)
	return staff, err
}

func (c *Credentials) authenticate(ctx context.Context, staffID, plaintext string) (*models.Staff, error) {
	var staff models.Staff
	if err := c.db.WithContext(ctx).Where(map[string]interface{}{"staffID": staffID}).First(&staff).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUnknownStaff
		}
		return nil, fmt.Errorf("failed to load staff %s: %w", staffID, err)
	}

	if staff.Revoked() {
		return nil, ErrRevoked
	}
	if !VerifyPassword(plaintext, staff.Salt, staff.PasswordHash) {
		return nil, ErrBadCredential
	}
	return &staff, nil
}

// Session reloads the current clearance of staffID, failing if the login has been revoked
func (c *Credentials) Session(ctx context.Context, staffID string) (Session, error) {
	var staff models.Staff
	if err := c.db.WithContext(ctx).Where(map[string]interface{}{"staffID": staffID}).First(&staff).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Session{}, ErrUnknownStaff
		}
		return Session{}, fmt.Errorf("failed to load staff %s: %w", staffID, err)
	}
	if staff.Revoked() {
		return Session{}, ErrRevoked
	}
	return NewSession(staff), nil
}

// ResetPassword sets a new password for targetStaffID without knowing the old one.
// An admin (level 3) has to authenticate first to approve the change.
func (c *Credentials) ResetPassword(ctx context.Context, adminID, adminPlaintext, targetStaffID, newPlaintext string) error {
	admin, err := c.Authenticate(ctx, adminID, adminPlaintext)
	if err != nil {
		return err
	}
	if !CheckAccess(admin.Level(), LevelDelete) {
		return ErrInsufficientAccess
	}
	if targetStaffID == "" || newPlaintext == "" {
		return utils.NewValidationError("staffID", "Enter username and password")
	}

	hash, salt, err := HashPassword(newPlaintext)
	if err != nil {
		return err
	}

	result := c.db.WithContext(ctx).Model(&models.Staff{}).
		Where(map[string]interface{}{"staffID": targetStaffID}).
		Updates(map[string]interface{}{"password": hash, "salt": salt})
	if result.Error != nil {
		return fmt.Errorf("failed to reset password for %s: %w", targetStaffID, result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}

	log.Info().Str("staff_id", targetStaffID).Str("approved_by", admin.StaffID).Msg("password reset")
	return nil
}

// SeedAdmin creates the default admin login if it does not exist yet
func SeedAdmin(ctx context.Context, db *gorm.DB) (bool, error) {
	var count int64
	if err := db.WithContext(ctx).Model(&models.Staff{}).Where(map[string]interface{}{"staffID": adminStaffID}).Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to look up admin: %w", err)
	}
	if count > 0 {
		return false, nil
	}

	hash, salt, err := HashPassword(adminPassword)
	if err != nil {
		return false, err
	}
	admin := models.Staff{
		StaffID:      adminStaffID,
		Forename:     "Admin",
		AccessLevel:  models.AccessLevelAdmin,
		PasswordHash: hash,
		Salt:         salt,
	}
	if err := db.WithContext(ctx).Create(&admin).Error; err != nil {
		return false, fmt.Errorf("failed to seed admin: %w", err)
	}

	log.Warn().Msg("seeded default admin login, change its password")
	return true, nil
}
