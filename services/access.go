package services

import "github.com/kingfisher-trust/kingfisher-records/models"

// Clearance thresholds
const (
	LevelRead   = 1
	LevelEdit   = 2 // create and update records
	LevelDelete = 3 // delete records and manage staff
)

// Session is the authenticated staff member on whose behalf operations run
type Session struct {
	StaffID     string `json:"staffID"`
	FullName    string `json:"fullName"`
	AccessLevel int    `json:"accessLevel"`
}

// NewSession builds a session from a staff row
func NewSession(staff models.Staff) Session {
	return Session{
		StaffID:     staff.StaffID,
		FullName:    staff.FullName(),
		AccessLevel: staff.Level(),
	}
}

// CheckAccess reports whether currentLevel clears requiredLevel
func CheckAccess(currentLevel, requiredLevel int) bool {
	return currentLevel >= requiredLevel
}

// Can reports whether the session clears requiredLevel
func (s Session) Can(requiredLevel int) bool {
	return CheckAccess(s.AccessLevel, requiredLevel)
}

// CanManageStaff allows admins to edit or delete any staff row, and everyone to edit or delete their own
func (s Session) CanManageStaff(targetStaffID string) bool {
	return s.StaffID == targetStaffID || s.Can(LevelDelete)
}

// Require returns ErrInsufficientAccess unless the session clears requiredLevel
func (s Session) Require(requiredLevel int) error {
	if !s.Can(requiredLevel) {
		return ErrInsufficientAccess
	}
	return nil
}
