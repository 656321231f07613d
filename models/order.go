package models

// Order is a sale of one or more stock items
type Order struct {
	OrderNo    string      `gorm:"column:orderNo;primaryKey" json:"orderNo"`
	CustomerID string      `gorm:"column:customerID;not null" json:"customerID"`
	OrderTotal float64     `gorm:"column:orderTotal;not null" json:"orderTotal"`
	Date       Date        `gorm:"column:date;not null" json:"date"`
	StaffID    string      `gorm:"column:staffID;not null" json:"staffID"`
	Lines      []OrderLine `gorm:"-" json:"lines,omitempty"`
}

// TableName specifies the table name for the Order model
func (Order) TableName() string {
	return "orderTbl"
}

func (o Order) PrimaryKey() string      { return o.OrderNo }
func (o *Order) SetPrimaryKey(k string) { o.OrderNo = k }

// OrderLine is the aggregated count of one item within an order
type OrderLine struct {
	OrderNo  string `gorm:"column:orderNo;primaryKey" json:"orderNo"`
	ItemID   string `gorm:"column:itemID;primaryKey" json:"itemID"`
	Quantity int    `gorm:"column:quantity;not null" json:"quantity"`
}

// TableName specifies the table name for the OrderLine model
func (OrderLine) TableName() string {
	return "orderItemTbl"
}

// All lists every model, in migration order
func All() []interface{} {
	return []interface{}{
		&Staff{}, &Donor{}, &Customer{}, &Recipient{}, &Supplier{}, &Item{},
		&Donation{}, &FoodDonation{}, &FoodGiven{}, &Order{}, &OrderLine{}, &Expenditure{},
	}
}
