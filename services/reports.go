package services

import (
	"context"
	"fmt"
	"sort"

	"github.com/kingfisher-trust/kingfisher-records/models"
	"github.com/kingfisher-trust/kingfisher-records/observability"
	"github.com/kingfisher-trust/kingfisher-records/utils"
	"gorm.io/gorm"
)

// ReportKind names one of the summary reports
type ReportKind string

const (
	ReportDonation    ReportKind = "donation"
	ReportRevenue     ReportKind = "revenue"
	ReportExpenditure ReportKind = "expenditure"
)

// Total labels
const (
	TotalDonated = "Total Donated"
	TotalCost    = "Total Cost"
	TotalRevenue = "Total Revenue"
	TotalProfit  = "Total Profit"
	TotalSpent   = "Total Spent"
)

// Total is a labelled summary amount
type Total struct {
	Label  string  `json:"label"`
	Amount float64 `json:"amount"`
}

// Report is the row set and totals for one report over an inclusive date range
type Report struct {
	Kind    ReportKind  `json:"kind"`
	Title   string      `json:"title"`
	Start   models.Date `json:"start"`
	End     models.Date `json:"end"`
	Columns []string    `json:"columns"`
	Rows    [][]string  `json:"rows"`
	Totals  []Total     `json:"totals"`
}

// Total returns the amount recorded under label, or 0
func (r *Report) Total(label string) float64 {
	for _, t := range r.Totals {
		if t.Label == label {
			return t.Amount
		}
	}
	return 0
}

// Caption describes the date range the report covers
func (r *Report) Caption() string {
	return fmt.Sprintf("From %s to %s", r.Start.Display(), r.End.Display())
}

// FilterByDateRange keeps rows whose date falls between start and end, both inclusive
func FilterByDateRange[T any](rows []T, date func(T) models.Date, start, end models.Date) []T {
	var kept []T
	for _, row := range rows {
		d := date(row)
		if !d.Before(start) && !d.After(end) {
			kept = append(kept, row)
		}
	}
	return kept
}

// ReportService builds the donation, revenue and expenditure summaries
type ReportService struct {
	db *gorm.DB
}

// NewReportService creates a report builder over db
func NewReportService(db *gorm.DB) *ReportService {
	return &ReportService{db: db}
}

// BuildReport parses the date range and builds the report of the given kind
func (s *ReportService) BuildReport(ctx context.Context, kind ReportKind, start, end string) (*Report, error) {
	startDate, err := utils.ParseDate("start", start)
	if err != nil {
		return nil, err
	}
	endDate, err := utils.ParseDate("end", end)
	if err != nil {
		return nil, err
	}
	if endDate.Before(startDate) {
		return nil, utils.NewValidationError("end", "End date is before start date")
	}

	var report *Report
	switch kind {
	case ReportDonation:
		report, err = s.DonationReport(ctx, startDate, endDate)
	case ReportRevenue:
		report, err = s.RevenueReport(ctx, startDate, endDate)
	case ReportExpenditure:
		report, err = s.ExpenditureReport(ctx, startDate, endDate)
	default:
		return nil, utils.NewValidationError("kind", fmt.Sprintf("unknown report %q", kind))
	}
	if err != nil {
		return nil, err
	}

	observability.RecordReport(string(kind))
	return report, nil
}

// DonationReport lists cash donations in range with the donor's name and sums their amounts.
// Anonymous donations are included.
func (s *ReportService) DonationReport(ctx context.Context, start, end models.Date) (*Report, error) {
	db := s.db.WithContext(ctx)

	var donations []models.Donation
	if err := db.Find(&donations).Error; err != nil {
		return nil, fmt.Errorf("failed to load donations: %w", err)
	}
	donations = FilterByDateRange(donations, func(d models.Donation) models.Date { return d.Date }, start, end)
	sort.SliceStable(donations, func(i, j int) bool { return donations[i].Date.Before(donations[j].Date) })

	var donors []models.Donor
	if err := db.Find(&donors).Error; err != nil {
		return nil, fmt.Errorf("failed to load donors: %w", err)
	}
	names := make(map[string]string, len(donors))
	for _, d := range donors {
		names[d.DonorID] = d.Forename + " " + d.Surname
	}

	report := &Report{
		Kind:    ReportDonation,
		Title:   "Donation Report",
		Start:   start,
		End:     end,
		Columns: []string{"DonationID", "Amount", "Cash/Bank", "Reference No", "Date", "DonorID", "Donor Name", "StaffID"},
		Rows:    [][]string{},
	}
	total := 0.0
	for _, d := range donations {
		name, ok := names[d.DonorID]
		if !ok {
			name = models.Anonymous
		}
		report.Rows = append(report.Rows, []string{
			d.DonationID, money(d.Amount), d.PaymentMethod, d.ReferenceNo, d.Date.Display(), d.DonorID, name, d.StaffID,
		})
		total += d.Amount
	}
	report.Totals = []Total{{Label: TotalDonated, Amount: roundPence(total)}}
	return report, nil
}

// RevenueReport expands every order in range into its lines, priced at current item
// sale price and supplier cost, and totals cost, revenue and profit
func (s *ReportService) RevenueReport(ctx context.Context, start, end models.Date) (*Report, error) {
	db := s.db.WithContext(ctx)

	var orders []models.Order
	if err := db.Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("failed to load orders: %w", err)
	}
	orders = FilterByDateRange(orders, func(o models.Order) models.Date { return o.Date }, start, end)
	sort.SliceStable(orders, func(i, j int) bool {
		if orders[i].Date.Equal(orders[j].Date.Time) {
			return orders[i].OrderNo < orders[j].OrderNo
		}
		return orders[i].Date.Before(orders[j].Date)
	})

	report := &Report{
		Kind:    ReportRevenue,
		Title:   "Revenue Report",
		Start:   start,
		End:     end,
		Columns: []string{"OrderID", "CustomerID", "Date", "ItemID", "ItemName", "Quantity", "SalePrice", "SupplierCost", "SupplierID"},
		Rows:    [][]string{},
	}
	if len(orders) == 0 {
		report.Totals = revenueTotals(0, 0)
		return report, nil
	}

	orderNos := make([]string, len(orders))
	for i, o := range orders {
		orderNos[i] = o.OrderNo
	}
	var lines []models.OrderLine
	if err := db.Where(map[string]interface{}{"orderNo": orderNos}).Find(&lines).Error; err != nil {
		return nil, fmt.Errorf("failed to load order lines: %w", err)
	}
	byOrder := make(map[string][]models.OrderLine)
	for _, line := range lines {
		byOrder[line.OrderNo] = append(byOrder[line.OrderNo], line)
	}

	var items []models.Item
	if err := db.Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to load items: %w", err)
	}
	catalogue := make(map[string]models.Item, len(items))
	for _, item := range items {
		catalogue[item.ItemID] = item
	}

	cost, revenue := 0.0, 0.0
	for _, order := range orders {
		orderLines := byOrder[order.OrderNo]
		sort.Slice(orderLines, func(i, j int) bool { return orderLines[i].ItemID < orderLines[j].ItemID })
		for i, line := range orderLines {
			item := catalogue[line.ItemID]
			lineRevenue := item.SalePrice * float64(line.Quantity)
			lineCost := item.SupplierCost * float64(line.Quantity)
			revenue += lineRevenue
			cost += lineCost

			row := []string{"", "", ""}
			if i == 0 {
				row = []string{order.OrderNo, order.CustomerID, order.Date.Display()}
			}
			report.Rows = append(report.Rows, append(row,
				line.ItemID, item.Name, fmt.Sprint(line.Quantity), money(lineRevenue), money(lineCost), item.SupplierID,
			))
		}
	}
	report.Totals = revenueTotals(cost, revenue)
	return report, nil
}

func revenueTotals(cost, revenue float64) []Total {
	return []Total{
		{Label: TotalCost, Amount: roundPence(cost)},
		{Label: TotalRevenue, Amount: roundPence(revenue)},
		{Label: TotalProfit, Amount: roundPence(revenue - cost)},
	}
}

// ExpenditureReport lists expenditures in range and sums their amounts
func (s *ReportService) ExpenditureReport(ctx context.Context, start, end models.Date) (*Report, error) {
	var expenditures []models.Expenditure
	if err := s.db.WithContext(ctx).Find(&expenditures).Error; err != nil {
		return nil, fmt.Errorf("failed to load expenditures: %w", err)
	}
	expenditures = FilterByDateRange(expenditures, func(e models.Expenditure) models.Date { return e.Date }, start, end)
	sort.SliceStable(expenditures, func(i, j int) bool { return expenditures[i].Date.Before(expenditures[j].Date) })

	report := &Report{
		Kind:    ReportExpenditure,
		Title:   "Expenditure Report",
		Start:   start,
		End:     end,
		Columns: []string{"ExpenditureID", "Amount", "Details", "Date", "StaffID"},
		Rows:    [][]string{},
	}
	total := 0.0
	for _, e := range expenditures {
		report.Rows = append(report.Rows, []string{e.ExpenditureID, money(e.Amount), e.Details, e.Date.Display(), e.StaffID})
		total += e.Amount
	}
	report.Totals = []Total{{Label: TotalSpent, Amount: roundPence(total)}}
	return report, nil
}

func money(amount float64) string {
	return fmt.Sprintf("%.2f", amount)
}
