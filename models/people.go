package models

// Donor gives cash or food donations
type Donor struct {
	DonorID  string `gorm:"column:donorID;primaryKey" json:"donorID"`
	Surname  string `gorm:"column:donorSurname;not null" json:"surname" validate:"required"`
	Forename string `gorm:"column:donorForename;not null" json:"forename" validate:"required"`
	Contact  string `gorm:"column:donorContact;not null" json:"contact" validate:"required,contact"`
}

// TableName specifies the table name for the Donor model
func (Donor) TableName() string {
	return "donorTbl"
}

func (d Donor) PrimaryKey() string      { return d.DonorID }
func (d *Donor) SetPrimaryKey(k string) { d.DonorID = k }

// Customer places orders
type Customer struct {
	CustomerID string `gorm:"column:customerID;primaryKey" json:"customerID"`
	Surname    string `gorm:"column:customerSurname;not null" json:"surname" validate:"required"`
	Forename   string `gorm:"column:customerForename;not null" json:"forename" validate:"required"`
	Contact    string `gorm:"column:customerContact;not null" json:"contact" validate:"required,contact"`
}

// TableName specifies the table name for the Customer model
func (Customer) TableName() string {
	return "customerTbl"
}

func (c Customer) PrimaryKey() string      { return c.CustomerID }
func (c *Customer) SetPrimaryKey(k string) { c.CustomerID = k }

// Recipient receives donated food; contact is optional
type Recipient struct {
	RecipientID string `gorm:"column:recipientID;primaryKey" json:"recipientID"`
	Surname     string `gorm:"column:recipientSurname;not null" json:"surname"`
	Forename    string `gorm:"column:recipientForename;not null" json:"forename" validate:"required"`
	Contact     string `gorm:"column:recipientContact" json:"contact" validate:"omitempty,contact"`
}

// TableName specifies the table name for the Recipient model
func (Recipient) TableName() string {
	return "recipientTbl"
}

func (r Recipient) PrimaryKey() string      { return r.RecipientID }
func (r *Recipient) SetPrimaryKey(k string) { r.RecipientID = k }

// Supplier provides stock items
type Supplier struct {
	SupplierID string `gorm:"column:supplierID;primaryKey" json:"supplierID"`
	Name       string `gorm:"column:supplierName;not null" json:"name" validate:"required"`
	Contact    string `gorm:"column:supplierContact;not null" json:"contact" validate:"required,contact"`
}

// TableName specifies the table name for the Supplier model
func (Supplier) TableName() string {
	return "supplierTbl"
}

func (s Supplier) PrimaryKey() string      { return s.SupplierID }
func (s *Supplier) SetPrimaryKey(k string) { s.SupplierID = k }
