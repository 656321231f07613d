package models

import "strconv"

// Access level values stored on a staff row
const (
	AccessLevelRead    = "1"
	AccessLevelEdit    = "2"
	AccessLevelAdmin   = "3"
	AccessLevelRevoked = "x" // account kept for references but barred from logging in
)

// Anonymous is the sentinel used in place of a donor, customer or recipient ID
const Anonymous = "Anonymous"

// Staff represents a staff login and its clearance
type Staff struct {
	StaffID      string `gorm:"column:staffID;primaryKey" json:"staffID"`
	Surname      string `gorm:"column:staffSurname;not null" json:"surname"`
	Forename     string `gorm:"column:staffForename;not null" json:"forename" validate:"required"`
	Contact      string `gorm:"column:staffContact;not null" json:"contact" validate:"omitempty,ukphone"`
	AccessLevel  string `gorm:"column:accessLevel;not null" json:"accessLevel" validate:"required,oneof=1 2 3 x"`
	PasswordHash string `gorm:"column:password;not null" json:"-"`
	Salt         string `gorm:"column:salt;not null" json:"-"`
}

// TableName specifies the table name for the Staff model
func (Staff) TableName() string {
	return "staffTbl"
}

func (s Staff) PrimaryKey() string      { return s.StaffID }
func (s *Staff) SetPrimaryKey(k string) { s.StaffID = k }

// FullName is forename followed by surname
func (s Staff) FullName() string {
	if s.Surname == "" {
		return s.Forename
	}
	return s.Forename + " " + s.Surname
}

// Revoked reports whether the account has had its access removed
func (s Staff) Revoked() bool {
	return s.AccessLevel == AccessLevelRevoked
}

// Level returns the numeric clearance, 0 for revoked or unknown values
func (s Staff) Level() int {
	level, err := strconv.Atoi(s.AccessLevel)
	if err != nil {
		return 0
	}
	return level
}
