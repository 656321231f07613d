package models

// Payment methods for cash donations
const (
	PaymentCash = "Cash"
	PaymentBank = "Bank"
)

// Donation is a cash or bank donation
type Donation struct {
	DonationID    string  `gorm:"column:donationID;primaryKey" json:"donationID"`
	Amount        float64 `gorm:"column:amount;not null" json:"amount" validate:"gte=0"`
	PaymentMethod string  `gorm:"column:cashorbank;not null" json:"paymentMethod" validate:"required,oneof=Cash Bank"`
	ReferenceNo   string  `gorm:"column:referenceNo" json:"referenceNo" validate:"required_if=PaymentMethod Bank"`
	Date          Date    `gorm:"column:date;not null" json:"date" validate:"required"`
	DonorID       string  `gorm:"column:donorID;not null" json:"donorID" validate:"required"`
	StaffID       string  `gorm:"column:staffID;not null" json:"staffID"`
}

// TableName specifies the table name for the Donation model
func (Donation) TableName() string {
	return "donationsTbl"
}

func (d Donation) PrimaryKey() string      { return d.DonationID }
func (d *Donation) SetPrimaryKey(k string) { d.DonationID = k }
func (d *Donation) SetStaffID(id string)   { d.StaffID = id }

func (d Donation) Links() []Link {
	return []Link{{Table: "donorTbl", Column: "donorID", Value: d.DonorID, AllowAnonymous: true}}
}

// FoodDonation is a donated food item waiting to be, or already, given away
type FoodDonation struct {
	FoodID       string `gorm:"column:foodID;primaryKey" json:"foodID"`
	Name         string `gorm:"column:foodName;not null" json:"name" validate:"required"`
	DonationDate Date   `gorm:"column:donatDate;not null" json:"donationDate" validate:"required"`
	ExpiryDate   Date   `gorm:"column:expiryDate;not null" json:"expiryDate" validate:"required"`
	GivenAway    bool   `gorm:"column:givenAway;not null" json:"givenAway"`
	DonorID      string `gorm:"column:donorID;not null" json:"donorID" validate:"required"`
	StaffID      string `gorm:"column:staffID;not null" json:"staffID"`
}

// TableName specifies the table name for the FoodDonation model
func (FoodDonation) TableName() string {
	return "foodDonatTbl"
}

func (f FoodDonation) PrimaryKey() string      { return f.FoodID }
func (f *FoodDonation) SetPrimaryKey(k string) { f.FoodID = k }
func (f *FoodDonation) SetStaffID(id string)   { f.StaffID = id }

func (f FoodDonation) Links() []Link {
	return []Link{{Table: "donorTbl", Column: "donorID", Value: f.DonorID, AllowAnonymous: true}}
}

// FoodGiven records which recipient a food donation went to
type FoodGiven struct {
	FoodID      string `gorm:"column:foodID;primaryKey" json:"foodID"`
	RecipientID string `gorm:"column:recipientID;primaryKey" json:"recipientID"`
	StaffID     string `gorm:"column:staffID;not null" json:"staffID"`
}

// TableName specifies the table name for the FoodGiven model
func (FoodGiven) TableName() string {
	return "giveFoodTbl"
}

// Expenditure is money spent by the charity
type Expenditure struct {
	ExpenditureID string  `gorm:"column:expenditureID;primaryKey" json:"expenditureID"`
	Amount        float64 `gorm:"column:amount;not null" json:"amount" validate:"gte=0"`
	Details       string  `gorm:"column:details;not null" json:"details" validate:"required,max=35"`
	Date          Date    `gorm:"column:date;not null" json:"date" validate:"required"`
	StaffID       string  `gorm:"column:staffID;not null" json:"staffID"`
}

// TableName specifies the table name for the Expenditure model
func (Expenditure) TableName() string {
	return "expenditureTbl"
}

func (e Expenditure) PrimaryKey() string      { return e.ExpenditureID }
func (e *Expenditure) SetPrimaryKey(k string) { e.ExpenditureID = k }
func (e *Expenditure) SetStaffID(id string)   { e.StaffID = id }
