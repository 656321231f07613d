package services

import (
	"context"
	"testing"

	"github.com/kingfisher-trust/kingfisher-records/models"
	"github.com/kingfisher-trust/kingfisher-records/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRepositoryInsertGeneratesPrefixedID(t *testing.T) {
	records := NewRecords(setupTestDB(t))
	ctx := context.Background()

	donor := &models.Donor{Surname: "Smith", Forename: "Jo", Contact: "jo@example.com"}
	require.NoError(t, records.Donors.Insert(ctx, donor))

	assert.Regexp(t, `^DO[0-9A-F]{10}$`, donor.DonorID)

	got, err := records.Donors.Get(ctx, donor.DonorID)
	require.NoError(t, err)
	assert.Equal(t, *donor, *got)
}

func TestRepositoryInsertKeepsExplicitID(t *testing.T) {
	records := NewRecords(setupTestDB(t))
	ctx := context.Background()

	supplier := &models.Supplier{SupplierID: "SU00001", Name: "Wholesale Ltd", Contact: "01234567890"}
	require.NoError(t, records.Suppliers.Insert(ctx, supplier))
	assert.Equal(t, "SU00001", supplier.SupplierID)
}

func TestRepositoryInsertDuplicateKey(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	customers := NewRepository[models.Customer](db, CustomerSchema).
		WithIDGenerator(sequentialIDs("CU00000001"))

	require.NoError(t, customers.Insert(ctx, &models.Customer{Surname: "A", Forename: "B", Contact: "01234567890"}))
	err := customers.Insert(ctx, &models.Customer{Surname: "C", Forename: "D", Contact: "01234567890"})

	var dup *DuplicateKeyError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "customerTbl", dup.Table)
	assert.Equal(t, "CU00000001", dup.Key)
	assert.Contains(t, dup.Error(), "please try again")
}

func TestRepositoryInsertValidation(t *testing.T) {
	records := NewRecords(setupTestDB(t))
	ctx := context.Background()

	tests := []struct {
		name   string
		insert func() error
		field  string
	}{
		{
			name: "bad donor contact",
			insert: func() error {
				return records.Donors.Insert(ctx, &models.Donor{Surname: "A", Forename: "B", Contact: "not a contact"})
			},
			field: "contact",
		},
		{
			name: "missing forename",
			insert: func() error {
				return records.Customers.Insert(ctx, &models.Customer{Surname: "A", Contact: "a@b.co"})
			},
			field: "forename",
		},
		{
			name: "item name too long",
			insert: func() error {
				return records.Items.Insert(ctx, &models.Item{Name: "a very long item name", SupplierID: "SU1"})
			},
			field: "name",
		},
		{
			name: "bank donation without reference",
			insert: func() error {
				return records.Donations.Insert(ctx, &models.Donation{
					Amount: 10, PaymentMethod: models.PaymentBank, Date: models.NewDate(2024, 1, 1), DonorID: models.Anonymous,
				})
			},
			field: "referenceNo",
		},
		{
			name: "unknown supplier",
			insert: func() error {
				return records.Items.Insert(ctx, &models.Item{Name: "Tea", SalePrice: 1, SupplierID: "SU404"})
			},
			field: "supplierID",
		},
		{
			name: "unknown donor",
			insert: func() error {
				return records.Donations.Insert(ctx, &models.Donation{
					Amount: 10, PaymentMethod: models.PaymentCash, Date: models.NewDate(2024, 1, 1), DonorID: "DO404",
				})
			},
			field: "donorID",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.insert()
			var ve *utils.ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.field, ve.Field)
		})
	}
}

func TestRepositoryAnonymousDonor(t *testing.T) {
	records := NewRecords(setupTestDB(t))

	donation := &models.Donation{
		Amount: 5, PaymentMethod: models.PaymentCash, Date: models.NewDate(2024, 3, 1), DonorID: models.Anonymous,
	}
	require.NoError(t, records.Donations.Create(context.Background(), editorSession, donation))
	assert.Equal(t, editorSession.StaffID, donation.StaffID, "acting staff is stamped on create")
}

func TestRepositorySearch(t *testing.T) {
	records := NewRecords(setupTestDB(t))
	ctx := context.Background()

	for _, d := range []models.Donor{
		{DonorID: "DO1", Surname: "Smith", Forename: "Jo", Contact: "jo@example.com"},
		{DonorID: "DO2", Surname: "Smithers", Forename: "Al", Contact: "07123456789"},
		{DonorID: "DO3", Surname: "Jones", Forename: "100%_Real", Contact: "01234567890"},
	} {
		d := d
		require.NoError(t, records.Donors.Insert(ctx, &d))
	}

	tests := []struct {
		name    string
		field   string
		pattern string
		want    []string
	}{
		{name: "case insensitive substring", field: "surname", pattern: "smith", want: []string{"DO1", "DO2"}},
		{name: "display tag", field: "Surname", pattern: "JONES", want: []string{"DO3"}},
		{name: "contact", field: "contact", pattern: "0712", want: []string{"DO2"}},
		{name: "wildcards are literal", field: "forename", pattern: "%_", want: []string{"DO3"}},
		{name: "no match", field: "forename", pattern: "zz", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows, err := records.Donors.Search(ctx, tt.field, tt.pattern)
			require.NoError(t, err)
			var ids []string
			for _, r := range rows {
				ids = append(ids, r.DonorID)
			}
			assert.Equal(t, tt.want, ids)
		})
	}

	_, err := records.Donors.Search(ctx, "donorSurname; DROP TABLE donorTbl", "x")
	assert.True(t, utils.IsValidationError(err), "only enumerated fields can be searched")
}

func TestRepositorySearchByDisplayDate(t *testing.T) {
	records := NewRecords(setupTestDB(t))
	ctx := context.Background()

	require.NoError(t, records.Expenditures.Insert(ctx, &models.Expenditure{
		ExpenditureID: "EX1", Amount: 12.5, Details: "Milk", Date: models.NewDate(2024, 2, 14),
	}))
	require.NoError(t, records.Expenditures.Insert(ctx, &models.Expenditure{
		ExpenditureID: "EX2", Amount: 3, Details: "Bread", Date: models.NewDate(2024, 3, 1),
	}))

	rows, err := records.Expenditures.Search(ctx, "date", "14/02/2024")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "EX1", rows[0].ExpenditureID)
}

func TestRepositoryListAndUpdate(t *testing.T) {
	records := NewRecords(setupTestDB(t))
	ctx := context.Background()

	require.NoError(t, records.Recipients.Insert(ctx, &models.Recipient{RecipientID: "RE2", Forename: "B"}))
	require.NoError(t, records.Recipients.Insert(ctx, &models.Recipient{RecipientID: "RE1", Forename: "A"}))

	rows, err := records.Recipients.List(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "RE1", rows[0].RecipientID)

	update := &models.Recipient{Surname: "Ash", Forename: "Alex", Contact: "alex@example.com"}
	require.NoError(t, records.Recipients.Update(ctx, "RE1", update))

	got, err := records.Recipients.Get(ctx, "RE1")
	require.NoError(t, err)
	assert.Equal(t, "Alex", got.Forename)
	assert.Equal(t, "alex@example.com", got.Contact)

	err = records.Recipients.Update(ctx, "RE404", &models.Recipient{Forename: "Nobody"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRepositoryUpdateKeepsImmutableColumns(t *testing.T) {
	records := NewRecords(setupTestDB(t))
	ctx := context.Background()

	exp := &models.Expenditure{ExpenditureID: "EX1", Amount: 10, Details: "Rent", Date: models.NewDate(2024, 1, 1)}
	require.NoError(t, records.Expenditures.Create(ctx, editorSession, exp))

	update := &models.Expenditure{Amount: 0, Details: "Rent refund", Date: models.NewDate(2024, 1, 2), StaffID: "someone"}
	require.NoError(t, records.Expenditures.Modify(ctx, adminSession, "EX1", update))

	got, err := records.Expenditures.Get(ctx, "EX1")
	require.NoError(t, err)
	assert.Equal(t, 0.0, got.Amount, "zero values are written")
	assert.Equal(t, "Rent refund", got.Details)
	assert.Equal(t, editorSession.StaffID, got.StaffID)
}

func TestRepositoryReferentialDeleteGuard(t *testing.T) {
	records := NewRecords(setupTestDB(t))
	ctx := context.Background()

	require.NoError(t, records.Donors.Insert(ctx, &models.Donor{DonorID: "DO1", Surname: "A", Forename: "B", Contact: "a@b.co"}))
	require.NoError(t, records.Donors.Insert(ctx, &models.Donor{DonorID: "DO2", Surname: "C", Forename: "D", Contact: "c@d.co"}))
	require.NoError(t, records.Donations.Insert(ctx, &models.Donation{
		Amount: 10, PaymentMethod: models.PaymentCash, Date: models.NewDate(2024, 1, 1), DonorID: "DO1",
	}))

	err := records.Donors.Delete(ctx, "DO1")
	var ref *ReferentialIntegrityError
	require.ErrorAs(t, err, &ref)
	assert.Equal(t, []string{"donationsTbl"}, ref.ReferencedBy)

	_, err = records.Donors.Get(ctx, "DO1")
	assert.NoError(t, err, "referenced donor must survive")

	require.NoError(t, records.Donors.Delete(ctx, "DO2"))
	_, err = records.Donors.Get(ctx, "DO2")
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, records.Donors.Delete(ctx, "DO2"), ErrNotFound)
}

func TestRepositorySessionGates(t *testing.T) {
	records := NewRecords(setupTestDB(t))
	ctx := context.Background()

	donor := &models.Donor{DonorID: "DO1", Surname: "A", Forename: "B", Contact: "a@b.co"}
	assert.ErrorIs(t, records.Donors.Create(ctx, readerSession, donor), ErrInsufficientAccess)
	require.NoError(t, records.Donors.Create(ctx, editorSession, donor))

	assert.ErrorIs(t, records.Donors.Modify(ctx, readerSession, "DO1", donor), ErrInsufficientAccess)
	assert.ErrorIs(t, records.Donors.Remove(ctx, editorSession, "DO1"), ErrInsufficientAccess)
	assert.NoError(t, records.Donors.Remove(ctx, adminSession, "DO1"))
}

func TestSearchTag(t *testing.T) {
	assert.Equal(t, "referenceno", searchTag("Reference No"))
	assert.Equal(t, "cashbank", searchTag("Cash/Bank"))
	assert.Equal(t, "donorid", searchTag("donorID"))
}
