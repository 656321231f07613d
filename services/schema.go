package services

import (
	"github.com/kingfisher-trust/kingfisher-records/models"
	"gorm.io/gorm"
)

// staffReferences are the tables that record which staff member created a row
var staffReferences = []Reference{
	{Table: "donationsTbl", Column: "staffID"},
	{Table: "orderTbl", Column: "staffID"},
	{Table: "foodDonatTbl", Column: "staffID"},
	{Table: "giveFoodTbl", Column: "staffID"},
	{Table: "expenditureTbl", Column: "staffID"},
}

var (
	StaffSchema = Schema{
		Table:     "staffTbl",
		KeyColumn: "staffID",
		Prefix:    PrefixStaff,
		SearchFields: map[string]string{
			"staffid":     "staffID",
			"surname":     "staffSurname",
			"forename":    "staffForename",
			"contact":     "staffContact",
			"accesslevel": "accessLevel",
		},
		ReferencedBy: staffReferences,
		Immutable:    []string{"password", "salt"},
	}

	DonorSchema = Schema{
		Table:     "donorTbl",
		KeyColumn: "donorID",
		Prefix:    PrefixDonor,
		SearchFields: map[string]string{
			"donorid":  "donorID",
			"surname":  "donorSurname",
			"forename": "donorForename",
			"contact":  "donorContact",
		},
		ReferencedBy: []Reference{
			{Table: "donationsTbl", Column: "donorID"},
			{Table: "foodDonatTbl", Column: "donorID"},
		},
	}

	CustomerSchema = Schema{
		Table:     "customerTbl",
		KeyColumn: "customerID",
		Prefix:    PrefixCustomer,
		SearchFields: map[string]string{
			"customerid": "customerID",
			"surname":    "customerSurname",
			"forename":   "customerForename",
			"contact":    "customerContact",
		},
		ReferencedBy: []Reference{{Table: "orderTbl", Column: "customerID"}},
	}

	RecipientSchema = Schema{
		Table:     "recipientTbl",
		KeyColumn: "recipientID",
		Prefix:    PrefixRecipient,
		SearchFields: map[string]string{
			"recipientid": "recipientID",
			"surname":     "recipientSurname",
			"forename":    "recipientForename",
			"contact":     "recipientContact",
		},
		ReferencedBy: []Reference{{Table: "giveFoodTbl", Column: "recipientID"}},
	}

	SupplierSchema = Schema{
		Table:     "supplierTbl",
		KeyColumn: "supplierID",
		Prefix:    PrefixSupplier,
		SearchFields: map[string]string{
			"supplierid": "supplierID",
			"name":       "supplierName",
			"contact":    "supplierContact",
		},
		ReferencedBy: []Reference{{Table: "itemTbl", Column: "supplierID"}},
	}

	ItemSchema = Schema{
		Table:     "itemTbl",
		KeyColumn: "itemID",
		Prefix:    PrefixItem,
		SearchFields: map[string]string{
			"itemid":       "itemID",
			"name":         "itemName",
			"itemname":     "itemName",
			"saleprice":    "salePrice",
			"quantity":     "quantity",
			"suppliercost": "supplierCost",
			"supplierid":   "supplierID",
		},
		ReferencedBy: []Reference{{Table: "orderItemTbl", Column: "itemID"}},
	}

	DonationSchema = Schema{
		Table:     "donationsTbl",
		KeyColumn: "donationID",
		Prefix:    PrefixDonation,
		SearchFields: map[string]string{
			"donationid":    "donationID",
			"amount":        "amount",
			"cashbank":      "cashorbank",
			"paymentmethod": "cashorbank",
			"referenceno":   "referenceNo",
			"date":          "date",
			"donorid":       "donorID",
			"staffid":       "staffID",
		},
		DateColumns: []string{"date"},
		Immutable:   []string{"staffID"},
	}

	FoodDonationSchema = Schema{
		Table:     "foodDonatTbl",
		KeyColumn: "foodID",
		Prefix:    PrefixFoodDonation,
		SearchFields: map[string]string{
			"foodid":       "foodID",
			"name":         "foodName",
			"donationdate": "donatDate",
			"expirydate":   "expiryDate",
			"givenaway":    "givenAway",
			"donorid":      "donorID",
			"staffid":      "staffID",
		},
		DateColumns:  []string{"donatDate", "expiryDate"},
		ReferencedBy: []Reference{{Table: "giveFoodTbl", Column: "foodID"}},
		Immutable:    []string{"staffID", "givenAway"},
		DeleteGuard:  refuseGivenAway,
	}

	OrderSchema = Schema{
		Table:     "orderTbl",
		KeyColumn: "orderNo",
		Prefix:    PrefixOrder,
		SearchFields: map[string]string{
			"orderno":    "orderNo",
			"customerid": "customerID",
			"ordertotal": "orderTotal",
			"date":       "date",
			"staffid":    "staffID",
		},
		DateColumns: []string{"date"},
	}

	ExpenditureSchema = Schema{
		Table:     "expenditureTbl",
		KeyColumn: "expenditureID",
		Prefix:    PrefixExpenditure,
		SearchFields: map[string]string{
			"expenditureid": "expenditureID",
			"amount":        "amount",
			"details":       "details",
			"date":          "date",
			"staffid":       "staffID",
		},
		DateColumns: []string{"date"},
		Immutable:   []string{"staffID"},
	}
)

func refuseGivenAway(tx *gorm.DB, key string) error {
	var food models.FoodDonation
	if err := tx.Where(map[string]interface{}{"foodID": key}).First(&food).Error; err != nil {
		return err
	}
	if food.GivenAway {
		return ErrAlreadyGivenAway
	}
	return nil
}

// Records holds one record store per entity table
type Records struct {
	Staff         *Repository[models.Staff, *models.Staff]
	Donors        *Repository[models.Donor, *models.Donor]
	Customers     *Repository[models.Customer, *models.Customer]
	Recipients    *Repository[models.Recipient, *models.Recipient]
	Suppliers     *Repository[models.Supplier, *models.Supplier]
	Items         *Repository[models.Item, *models.Item]
	Donations     *Repository[models.Donation, *models.Donation]
	FoodDonations *Repository[models.FoodDonation, *models.FoodDonation]
	Orders        *Repository[models.Order, *models.Order]
	Expenditures  *Repository[models.Expenditure, *models.Expenditure]
}

// NewRecords creates the record stores over db
func NewRecords(db *gorm.DB) *Records {
	return &Records{
		Staff:         NewRepository[models.Staff](db, StaffSchema),
		Donors:        NewRepository[models.Donor](db, DonorSchema),
		Customers:     NewRepository[models.Customer](db, CustomerSchema),
		Recipients:    NewRepository[models.Recipient](db, RecipientSchema),
		Suppliers:     NewRepository[models.Supplier](db, SupplierSchema),
		Items:         NewRepository[models.Item](db, ItemSchema),
		Donations:     NewRepository[models.Donation](db, DonationSchema),
		FoodDonations: NewRepository[models.FoodDonation](db, FoodDonationSchema),
		Orders:        NewRepository[models.Order](db, OrderSchema),
		Expenditures:  NewRepository[models.Expenditure](db, ExpenditureSchema),
	}
}
