package models

// Link is a foreign key value held by a record, checked for existence before writes
type Link struct {
	Table          string
	Column         string
	Value          string
	AllowAnonymous bool
}

// Linker is implemented by records that reference other tables
type Linker interface {
	Links() []Link
}

// StaffStamped is implemented by records that carry the ID of the staff member who created them
type StaffStamped interface {
	SetStaffID(string)
}
