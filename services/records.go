package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/kingfisher-trust/kingfisher-records/models"
	"github.com/kingfisher-trust/kingfisher-records/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Record is a row with a single-column primary key
type Record interface {
	TableName() string
	PrimaryKey() string
	SetPrimaryKey(string)
}

// RecordPtr constrains a pointer to a record struct
type RecordPtr[T any] interface {
	*T
	Record
}

// Reference is a column in another table that may hold this entity's key
type Reference struct {
	Table  string
	Column string
}

// Schema describes how an entity table is keyed, searched and protected on delete
type Schema struct {
	Table     string
	KeyColumn string
	Prefix    string
	// SearchFields maps a search tag to the column it searches
	SearchFields map[string]string
	DateColumns  []string
	// ReferencedBy lists every foreign key that must be clear before a delete
	ReferencedBy []Reference
	// Immutable columns are never overwritten by Update
	Immutable []string
	// DeleteGuard can refuse a delete before references are checked
	DeleteGuard func(tx *gorm.DB, key string) error
}

// Repository is the generic record store for one entity type
type Repository[T any, PT RecordPtr[T]] struct {
	db     *gorm.DB
	schema Schema
	newID  IDGenerator
}

// NewRepository creates a record store for schema over db
func NewRepository[T any, PT RecordPtr[T]](db *gorm.DB, schema Schema) *Repository[T, PT] {
	return &Repository[T, PT]{db: db, schema: schema, newID: NewID}
}

// WithIDGenerator replaces the generator used for rows inserted without a key
func (r *Repository[T, PT]) WithIDGenerator(gen IDGenerator) *Repository[T, PT] {
	r.newID = gen
	return r
}

// Schema returns the entity description
func (r *Repository[T, PT]) Schema() Schema {
	return r.schema
}

func (r *Repository[T, PT]) keyCondition(key string) map[string]interface{} {
	return map[string]interface{}{r.schema.KeyColumn: key}
}

func (r *Repository[T, PT]) ordered(tx *gorm.DB) *gorm.DB {
	return tx.Order(clause.OrderByColumn{Column: clause.Column{Name: r.schema.KeyColumn}})
}

// List returns every row of the table
func (r *Repository[T, PT]) List(ctx context.Context) ([]T, error) {
	var rows []T
	if err := r.ordered(r.db.WithContext(ctx)).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", r.schema.Table, err)
	}
	return rows, nil
}

// Search returns rows whose field contains pattern, ignoring case. Only the
// fields named in the schema can be searched.
func (r *Repository[T, PT]) Search(ctx context.Context, field, pattern string) ([]T, error) {
	column, ok := r.schema.SearchFields[searchTag(field)]
	if !ok {
		return nil, utils.NewValidationError("field", fmt.Sprintf("cannot search %s by %q", r.schema.Table, field))
	}

	pattern = strings.TrimSpace(pattern)
	if r.isDateColumn(column) {
		if d, err := models.ParseDate(pattern); err == nil {
			pattern = d.String()
		}
	}
	like := "%" + escapeLike(strings.ToUpper(pattern)) + "%"

	var rows []T
	err := r.ordered(r.db.WithContext(ctx)).
		Where("UPPER(CAST(? AS TEXT)) LIKE ? ESCAPE '\\'", clause.Column{Name: column}, like).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to search %s: %w", r.schema.Table, err)
	}
	return rows, nil
}

// Get returns the row with the given key
func (r *Repository[T, PT]) Get(ctx context.Context, key string) (*T, error) {
	return r.get(r.db.WithContext(ctx), key)
}

func (r *Repository[T, PT]) get(tx *gorm.DB, key string) (*T, error) {
	var row T
	if err := tx.Where(r.keyCondition(key)).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load %s %s: %w", r.schema.Table, key, err)
	}
	return &row, nil
}

// Insert validates and stores row, generating a key when it has none.
// A key collision is reported as DuplicateKeyError and never retried here.
func (r *Repository[T, PT]) Insert(ctx context.Context, row PT) error {
	if row.PrimaryKey() == "" {
		row.SetPrimaryKey(r.newID(r.schema.Prefix))
	}
	if err := utils.ValidateStruct(row); err != nil {
		return err
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := checkLinks(tx, row); err != nil {
			return err
		}
		if err := tx.Create(row).Error; err != nil {
			if isDuplicateKey(err) {
				return &DuplicateKeyError{Table: r.schema.Table, Key: row.PrimaryKey()}
			}
			return fmt.Errorf("failed to insert into %s: %w", r.schema.Table, err)
		}
		return nil
	})
}

// Update overwrites the row stored under key with row, except for immutable columns
func (r *Repository[T, PT]) Update(ctx context.Context, key string, row PT) error {
	row.SetPrimaryKey(key)
	if err := utils.ValidateStruct(row); err != nil {
		return err
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := r.get(tx, key); err != nil {
			return err
		}
		if err := checkLinks(tx, row); err != nil {
			return err
		}

		omit := append([]string{r.schema.KeyColumn}, r.schema.Immutable...)
		if err := tx.Model(row).Select("*").Omit(omit...).Updates(row).Error; err != nil {
			return fmt.Errorf("failed to update %s %s: %w", r.schema.Table, key, err)
		}
		return tx.Where(r.keyCondition(key)).First(row).Error
	})
}

// Delete removes the row stored under key once nothing references it
func (r *Repository[T, PT]) Delete(ctx context.Context, key string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := r.get(tx, key); err != nil {
			return err
		}
		if r.schema.DeleteGuard != nil {
			if err := r.schema.DeleteGuard(tx, key); err != nil {
				return err
			}
		}

		tables, err := r.referencedBy(tx, key)
		if err != nil {
			return err
		}
		if len(tables) > 0 {
			return &ReferentialIntegrityError{Table: r.schema.Table, Key: key, ReferencedBy: tables}
		}

		if err := tx.Where(r.keyCondition(key)).Delete(PT(new(T))).Error; err != nil {
			return fmt.Errorf("failed to delete %s %s: %w", r.schema.Table, key, err)
		}
		return nil
	})
}

// ReferencedBy lists the tables that still hold key as a foreign key
func (r *Repository[T, PT]) ReferencedBy(ctx context.Context, key string) ([]string, error) {
	return r.referencedBy(r.db.WithContext(ctx), key)
}

func (r *Repository[T, PT]) referencedBy(tx *gorm.DB, key string) ([]string, error) {
	var tables []string
	for _, ref := range r.schema.ReferencedBy {
		var count int64
		err := tx.Table(ref.Table).Where(map[string]interface{}{ref.Column: key}).Count(&count).Error
		if err != nil {
			return nil, fmt.Errorf("failed to check %s references: %w", ref.Table, err)
		}
		if count > 0 {
			tables = append(tables, ref.Table)
		}
	}
	return tables, nil
}

func (r *Repository[T, PT]) isDateColumn(column string) bool {
	for _, c := range r.schema.DateColumns {
		if c == column {
			return true
		}
	}
	return false
}

// checkLinks confirms every foreign key a record holds points at an existing row
func checkLinks(tx *gorm.DB, record interface{}) error {
	linker, ok := record.(models.Linker)
	if !ok {
		return nil
	}
	for _, link := range linker.Links() {
		if link.Value == "" || (link.AllowAnonymous && link.Value == models.Anonymous) {
			continue
		}
		if err := linkExists(tx, link); err != nil {
			return err
		}
	}
	return nil
}

func linkExists(tx *gorm.DB, link models.Link) error {
	var count int64
	err := tx.Table(link.Table).Where(map[string]interface{}{link.Column: link.Value}).Count(&count).Error
	if err != nil {
		return fmt.Errorf("failed to check %s: %w", link.Table, err)
	}
	if count == 0 {
		return utils.NewValidationError(link.Column, fmt.Sprintf("%s %s does not exist", link.Column, link.Value))
	}
	return nil
}

// searchTag folds "Reference No" and "referenceNo" onto the same tag
func searchTag(field string) string {
	var b strings.Builder
	for _, r := range field {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(unicode.ToLower(r))
		}
	}
	return b.String()
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// Create inserts row on behalf of sess, stamping the acting staff ID where the record carries one
func (r *Repository[T, PT]) Create(ctx context.Context, sess Session, row PT) error {
	if err := sess.Require(LevelEdit); err != nil {
		return err
	}
	if stamped, ok := any(row).(models.StaffStamped); ok {
		stamped.SetStaffID(sess.StaffID)
	}
	return r.Insert(ctx, row)
}

// Modify updates the row under key on behalf of sess
func (r *Repository[T, PT]) Modify(ctx context.Context, sess Session, key string, row PT) error {
	if err := sess.Require(LevelEdit); err != nil {
		return err
	}
	return r.Update(ctx, key, row)
}

// Remove deletes the row under key on behalf of sess
func (r *Repository[T, PT]) Remove(ctx context.Context, sess Session, key string) error {
	if err := sess.Require(LevelDelete); err != nil {
		return err
	}
	return r.Delete(ctx, key)
}
