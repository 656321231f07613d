package models

// Item is a stock line sold through orders
type Item struct {
	ItemID       string  `gorm:"column:itemID;primaryKey" json:"itemID"`
	Name         string  `gorm:"column:itemName;not null" json:"name" validate:"required,max=16"`
	SalePrice    float64 `gorm:"column:salePrice;not null" json:"salePrice" validate:"gte=0"`
	Quantity     int     `gorm:"column:quantity;not null" json:"quantity" validate:"gte=0"`
	SupplierCost float64 `gorm:"column:supplierCost;not null" json:"supplierCost" validate:"gte=0"`
	SupplierID   string  `gorm:"column:supplierID;not null" json:"supplierID" validate:"required"`
}

// TableName specifies the table name for the Item model
func (Item) TableName() string {
	return "itemTbl"
}

func (i Item) PrimaryKey() string      { return i.ItemID }
func (i *Item) SetPrimaryKey(k string) { i.ItemID = k }

func (i Item) Links() []Link {
	return []Link{{Table: "supplierTbl", Column: "supplierID", Value: i.SupplierID}}
}
