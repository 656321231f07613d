package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/kingfisher-trust/kingfisher-records/models"
	"github.com/kingfisher-trust/kingfisher-records/observability"
	"github.com/kingfisher-trust/kingfisher-records/utils"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Reconciliation operations
type ReconcileOp string

const (
	OpCreate ReconcileOp = "create"
	OpEdit   ReconcileOp = "edit"
	OpDelete ReconcileOp = "delete"
)

// Selection is the list of item units picked while an order form is open. Nothing is
// persisted until the order is committed; displayed quantities are an optimistic view.
type Selection struct {
	catalogue map[string]models.Item
	baseline  map[string]int
	picked    []string
	total     float64
}

// NewSelection starts an empty selection over the given stock items
func NewSelection(catalogue []models.Item) *Selection {
	s := &Selection{
		catalogue: make(map[string]models.Item, len(catalogue)),
		baseline:  map[string]int{},
	}
	for _, item := range catalogue {
		s.catalogue[item.ItemID] = item
	}
	return s
}

// NewEditSelection starts a selection holding the units an existing order already reserves
func NewEditSelection(catalogue []models.Item, baseline []string) *Selection {
	s := NewSelection(catalogue)
	for _, id := range baseline {
		s.baseline[id]++
		s.picked = append(s.picked, id)
		s.total += s.catalogue[id].SalePrice
	}
	return s
}

// Displayed is the quantity shown for itemID given the units picked so far
func (s *Selection) Displayed(itemID string) int {
	return s.catalogue[itemID].Quantity + s.baseline[itemID] - countOf(s.picked, itemID)
}

// Add picks one unit of itemID, refusing when none are left
func (s *Selection) Add(itemID string) error {
	item, ok := s.catalogue[itemID]
	if !ok {
		return ErrNotFound
	}
	if available := s.Displayed(itemID); available <= 0 {
		return &StockUnavailableError{ItemID: itemID, Requested: 1, Available: available}
	}
	s.picked = append(s.picked, itemID)
	s.total += item.SalePrice
	return nil
}

// Remove puts back one picked unit of itemID
func (s *Selection) Remove(itemID string) error {
	for i := len(s.picked) - 1; i >= 0; i-- {
		if s.picked[i] == itemID {
			s.picked = append(s.picked[:i], s.picked[i+1:]...)
			s.total -= s.catalogue[itemID].SalePrice
			return nil
		}
	}
	return ErrNotFound
}

// Items returns the picked units in selection order
func (s *Selection) Items() []string {
	return append([]string(nil), s.picked...)
}

// Total is the sale price of every picked unit
func (s *Selection) Total() float64 {
	return roundPence(s.total)
}

// Replace swaps the picked units for units, adding only what stock still allows
func (s *Selection) Replace(units []string) error {
	added, removed := DiffSelections(s.picked, units)
	for _, id := range removed {
		if err := s.Remove(id); err != nil {
			return err
		}
	}
	for _, id := range added {
		if err := s.Add(id); err != nil {
			return err
		}
	}
	return nil
}

// View is what an order form shows for the current selection
func (s *Selection) View() SelectionView {
	view := SelectionView{
		Items:     append([]string{}, s.picked...),
		Total:     s.Total(),
		Displayed: make(map[string]int, len(s.catalogue)),
	}
	for id := range s.catalogue {
		view.Displayed[id] = s.Displayed(id)
	}
	return view
}

// Selection actions
type SelectionAction string

const (
	SelectAdd    SelectionAction = "add"
	SelectRemove SelectionAction = "remove"
)

// SelectionRequest carries an open order form's picks and the change to apply to them
type SelectionRequest struct {
	OrderNo string          `json:"orderNo"`
	Items   []string        `json:"items"`
	Action  SelectionAction `json:"action" binding:"required,oneof=add remove"`
	ItemID  string          `json:"itemID" binding:"required"`
}

// SelectionView holds the picked units, their total and the quantity displayed per item
type SelectionView struct {
	Items     []string       `json:"items"`
	Total     float64        `json:"total"`
	Displayed map[string]int `json:"displayed"`
}

// DiffSelections compares an order's stored units with a new selection. For each unit in
// selection one matching unit is struck off a working copy of baseline; selection units
// with no match were added, and baseline units left over were removed.
func DiffSelections(baseline, selection []string) (added, removed []string) {
	working := append([]string(nil), baseline...)
	for _, id := range selection {
		matched := false
		for i, candidate := range working {
			if candidate == id {
				working = append(working[:i], working[i+1:]...)
				matched = true
				break
			}
		}
		if !matched {
			added = append(added, id)
		}
	}
	return added, working
}

// ExpandLines turns aggregated order lines back into one entry per unit
func ExpandLines(lines []models.OrderLine) []string {
	var units []string
	for _, line := range lines {
		for i := 0; i < line.Quantity; i++ {
			units = append(units, line.ItemID)
		}
	}
	return units
}

// CountUnits aggregates units into a per-item count
func CountUnits(units []string) map[string]int {
	counts := make(map[string]int)
	for _, id := range units {
		counts[id]++
	}
	return counts
}

// OrderDraft is the content of an order form on commit
type OrderDraft struct {
	OrderNo    string      `json:"orderNo"`
	CustomerID string      `json:"customerID"`
	Date       models.Date `json:"date"`
	Items      []string    `json:"items"`
}

// ReconcileRequest names an order operation and its input
type ReconcileRequest struct {
	Op      ReconcileOp `json:"op" binding:"required,oneof=create edit delete"`
	OrderNo string      `json:"orderNo"`
	Draft   OrderDraft  `json:"draft"`
}

// OrderService keeps item stock consistent with order lines. Every operation runs in one
// transaction covering the order row, its lines and the stock adjustments.
type OrderService struct {
	db    *gorm.DB
	newID IDGenerator
}

// NewOrderService creates an order reconciler over db
func NewOrderService(db *gorm.DB) *OrderService {
	return &OrderService{db: db, newID: NewID}
}

// WithIDGenerator replaces the generator used for orders created without a number
func (s *OrderService) WithIDGenerator(gen IDGenerator) *OrderService {
	s.newID = gen
	return s
}

// StartSelection opens a selection over current stock, preloaded with orderNo's units when editing
func (s *OrderService) StartSelection(ctx context.Context, orderNo string) (*Selection, error) {
	db := s.db.WithContext(ctx)
	var catalogue []models.Item
	if err := db.Find(&catalogue).Error; err != nil {
		return nil, fmt.Errorf("failed to load items: %w", err)
	}
	if orderNo == "" {
		return NewSelection(catalogue), nil
	}

	if _, err := loadOrder(db, orderNo); err != nil {
		return nil, err
	}
	lines, err := loadLines(db, orderNo)
	if err != nil {
		return nil, err
	}
	return NewEditSelection(catalogue, ExpandLines(lines)), nil
}

// ApplySelection rebuilds an open order form's selection over current stock and applies
// one add or remove. Nothing is written; a refused add comes back as StockUnavailableError.
func (s *OrderService) ApplySelection(ctx context.Context, req SelectionRequest) (*SelectionView, error) {
	sel, err := s.StartSelection(ctx, req.OrderNo)
	if err != nil {
		return nil, err
	}
	if err := sel.Replace(req.Items); err != nil {
		return nil, err
	}

	switch req.Action {
	case SelectAdd:
		err = sel.Add(req.ItemID)
	case SelectRemove:
		err = sel.Remove(req.ItemID)
	default:
		err = utils.NewValidationError("action", fmt.Sprintf("unknown selection action %q", req.Action))
	}
	if err != nil {
		return nil, err
	}

	view := sel.View()
	return &view, nil
}

// Get returns an order with its lines
func (s *OrderService) Get(ctx context.Context, orderNo string) (*models.Order, error) {
	db := s.db.WithContext(ctx)
	order, err := loadOrder(db, orderNo)
	if err != nil {
		return nil, err
	}
	if order.Lines, err = loadLines(db, orderNo); err != nil {
		return nil, err
	}
	return order, nil
}

// Reconcile dispatches req to the matching order operation
func (s *OrderService) Reconcile(ctx context.Context, sess Session, req ReconcileRequest) (*models.Order, error) {
	switch req.Op {
	case OpCreate:
		return s.CreateOrder(ctx, sess, req.Draft)
	case OpEdit:
		return s.EditOrder(ctx, sess, req.OrderNo, req.Draft)
	case OpDelete:
		return nil, s.DeleteOrder(ctx, sess, req.OrderNo)
	default:
		return nil, utils.NewValidationError("op", fmt.Sprintf("unknown order operation %q", req.Op))
	}
}

// CreateOrder stores a new order, one line per distinct item, and takes its units out of stock
func (s *OrderService) CreateOrder(ctx context.Context, sess Session, draft OrderDraft) (order *models.Order, err error) {
	defer func() { observability.RecordReconciliation(string(OpCreate), err) }()

	if err := sess.Require(LevelEdit); err != nil {
		return nil, err
	}
	if err := validateDraft(draft); err != nil {
		return nil, err
	}
	if draft.OrderNo == "" {
		draft.OrderNo = s.newID(PrefixOrder)
	}

	counts := CountUnits(draft.Items)
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := checkCustomer(tx, draft.CustomerID); err != nil {
			return err
		}
		total, err := priceUnits(tx, counts)
		if err != nil {
			return err
		}

		order = &models.Order{
			OrderNo:    draft.OrderNo,
			CustomerID: draft.CustomerID,
			OrderTotal: total,
			Date:       draft.Date,
			StaffID:    sess.StaffID,
		}
		if err := tx.Create(order).Error; err != nil {
			if isDuplicateKey(err) {
				return &DuplicateKeyError{Table: OrderSchema.Table, Key: order.OrderNo}
			}
			return fmt.Errorf("failed to create order: %w", err)
		}

		for _, id := range sortedKeys(counts) {
			if err := reserveStock(tx, id, counts[id]); err != nil {
				return err
			}
		}
		order.Lines, err = writeLines(tx, order.OrderNo, counts)
		return err
	})
	if err != nil {
		return nil, err
	}

	observability.RecordStockMovement(len(draft.Items), 0)
	log.Info().Str("order_no", order.OrderNo).Int("units", len(draft.Items)).Float64("total", order.OrderTotal).Msg("order created")
	return order, nil
}

// EditOrder replaces the units of orderNo with draft.Items, adjusting stock only by the
// difference, and rewrites the order's lines, total, customer and date
func (s *OrderService) EditOrder(ctx context.Context, sess Session, orderNo string, draft OrderDraft) (order *models.Order, err error) {
	defer func() { observability.RecordReconciliation(string(OpEdit), err) }()

	if err := sess.Require(LevelEdit); err != nil {
		return nil, err
	}
	if err := validateDraft(draft); err != nil {
		return nil, err
	}

	var added, removed []string
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := loadOrder(tx, orderNo)
		if err != nil {
			return err
		}
		if err := checkCustomer(tx, draft.CustomerID); err != nil {
			return err
		}
		lines, err := loadLines(tx, orderNo)
		if err != nil {
			return err
		}

		added, removed = DiffSelections(ExpandLines(lines), draft.Items)
		restore := CountUnits(removed)
		for _, id := range sortedKeys(restore) {
			if err := restoreStock(tx, id, restore[id]); err != nil {
				return err
			}
		}
		reserve := CountUnits(added)
		for _, id := range sortedKeys(reserve) {
			if err := reserveStock(tx, id, reserve[id]); err != nil {
				return err
			}
		}

		counts := CountUnits(draft.Items)
		total, err := priceUnits(tx, counts)
		if err != nil {
			return err
		}

		if err := tx.Where(map[string]interface{}{"orderNo": orderNo}).Delete(&models.OrderLine{}).Error; err != nil {
			return fmt.Errorf("failed to clear lines of order %s: %w", orderNo, err)
		}
		newLines, err := writeLines(tx, orderNo, counts)
		if err != nil {
			return err
		}

		err = tx.Model(&models.Order{}).Where(map[string]interface{}{"orderNo": orderNo}).Updates(map[string]interface{}{
			"customerID": draft.CustomerID,
			"orderTotal": total,
			"date":       draft.Date,
		}).Error
		if err != nil {
			return fmt.Errorf("failed to update order %s: %w", orderNo, err)
		}

		existing.CustomerID = draft.CustomerID
		existing.OrderTotal = total
		existing.Date = draft.Date
		existing.Lines = newLines
		order = existing
		return nil
	})
	if err != nil {
		return nil, err
	}

	observability.RecordStockMovement(len(added), len(removed))
	log.Info().Str("order_no", orderNo).Int("added", len(added)).Int("removed", len(removed)).Msg("order edited")
	return order, nil
}

// DeleteOrder puts every unit of orderNo back into stock and removes the order and its lines
func (s *OrderService) DeleteOrder(ctx context.Context, sess Session, orderNo string) (err error) {
	defer func() { observability.RecordReconciliation(string(OpDelete), err) }()

	if err := sess.Require(LevelDelete); err != nil {
		return err
	}

	restored := 0
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := loadOrder(tx, orderNo); err != nil {
			return err
		}
		lines, err := loadLines(tx, orderNo)
		if err != nil {
			return err
		}
		for _, line := range lines {
			if err := restoreStock(tx, line.ItemID, line.Quantity); err != nil {
				return err
			}
			restored += line.Quantity
		}

		if err := tx.Where(map[string]interface{}{"orderNo": orderNo}).Delete(&models.OrderLine{}).Error; err != nil {
			return fmt.Errorf("failed to delete lines of order %s: %w", orderNo, err)
		}
		if err := tx.Where(map[string]interface{}{"orderNo": orderNo}).Delete(&models.Order{}).Error; err != nil {
			return fmt.Errorf("failed to delete order %s: %w", orderNo, err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	observability.RecordStockMovement(0, restored)
	log.Info().Str("order_no", orderNo).Int("restored", restored).Msg("order deleted")
	return nil
}

func validateDraft(draft OrderDraft) error {
	if draft.CustomerID == "" {
		return utils.NewValidationError("customerID", "customerID is required")
	}
	if draft.Date.IsZero() {
		return utils.NewValidationError("date", "date is required")
	}
	if len(draft.Items) == 0 {
		return utils.NewValidationError("items", "Order must contain at least one item")
	}
	for i, id := range draft.Items {
		if strings.TrimSpace(id) == "" {
			return utils.NewValidationError("items", fmt.Sprintf("item %d has no item ID", i+1))
		}
	}
	return nil
}

func checkCustomer(tx *gorm.DB, customerID string) error {
	if customerID == models.Anonymous {
		return nil
	}
	return linkExists(tx, models.Link{Table: CustomerSchema.Table, Column: "customerID", Value: customerID})
}

func loadOrder(tx *gorm.DB, orderNo string) (*models.Order, error) {
	var order models.Order
	if err := tx.Where(map[string]interface{}{"orderNo": orderNo}).First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load order %s: %w", orderNo, err)
	}
	return &order, nil
}

func loadLines(tx *gorm.DB, orderNo string) ([]models.OrderLine, error) {
	var lines []models.OrderLine
	err := tx.Where(map[string]interface{}{"orderNo": orderNo}).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "itemID"}}).
		Find(&lines).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load lines of order %s: %w", orderNo, err)
	}
	return lines, nil
}

// priceUnits sums sale prices from the item table, failing for unknown items
func priceUnits(tx *gorm.DB, counts map[string]int) (float64, error) {
	total := 0.0
	for _, id := range sortedKeys(counts) {
		var item models.Item
		if err := tx.Where(map[string]interface{}{"itemID": id}).First(&item).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return 0, utils.NewValidationError("items", fmt.Sprintf("item %s does not exist", id))
			}
			return 0, fmt.Errorf("failed to load item %s: %w", id, err)
		}
		total += item.SalePrice * float64(counts[id])
	}
	return roundPence(total), nil
}

// reserveStock takes n units of itemID out of stock, refusing to go below zero
func reserveStock(tx *gorm.DB, itemID string, n int) error {
	quantity := clause.Column{Name: "quantity"}
	result := tx.Model(&models.Item{}).
		Where(map[string]interface{}{"itemID": itemID}).
		Where("? >= ?", quantity, n).
		UpdateColumn("quantity", gorm.Expr("? - ?", quantity, n))
	if result.Error != nil {
		return fmt.Errorf("failed to reserve stock of %s: %w", itemID, result.Error)
	}
	if result.RowsAffected == 0 {
		var item models.Item
		if err := tx.Where(map[string]interface{}{"itemID": itemID}).First(&item).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return utils.NewValidationError("items", fmt.Sprintf("item %s does not exist", itemID))
			}
			return fmt.Errorf("failed to load item %s: %w", itemID, err)
		}
		return &StockUnavailableError{ItemID: itemID, Requested: n, Available: item.Quantity}
	}
	return nil
}

// restoreStock puts n units of itemID back into stock
func restoreStock(tx *gorm.DB, itemID string, n int) error {
	quantity := clause.Column{Name: "quantity"}
	result := tx.Model(&models.Item{}).
		Where(map[string]interface{}{"itemID": itemID}).
		UpdateColumn("quantity", gorm.Expr("? + ?", quantity, n))
	if result.Error != nil {
		return fmt.Errorf("failed to restore stock of %s: %w", itemID, result.Error)
	}
	if result.RowsAffected == 0 {
		log.Warn().Str("item_id", itemID).Int("units", n).Msg("stock restore skipped, item no longer exists")
	}
	return nil
}

func writeLines(tx *gorm.DB, orderNo string, counts map[string]int) ([]models.OrderLine, error) {
	lines := make([]models.OrderLine, 0, len(counts))
	for _, id := range sortedKeys(counts) {
		lines = append(lines, models.OrderLine{OrderNo: orderNo, ItemID: id, Quantity: counts[id]})
	}
	if len(lines) == 0 {
		return lines, nil
	}
	if err := tx.Create(&lines).Error; err != nil {
		return nil, fmt.Errorf("failed to write lines of order %s: %w", orderNo, err)
	}
	return lines, nil
}

func countOf(units []string, itemID string) int {
	n := 0
	for _, id := range units {
		if id == itemID {
			n++
		}
	}
	return n
}

func sortedKeys(counts map[string]int) []string {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func roundPence(amount float64) float64 {
	return math.Round(amount*100) / 100
}
