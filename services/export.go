package services

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"
	appConfig "github.com/kingfisher-trust/kingfisher-records/config"
	"github.com/kingfisher-trust/kingfisher-records/models"
)

const (
	reportPrefix   = "reports/"
	pdfContentType = "application/pdf"
	organisation   = "Kingfisher Trust"
)

// Report page layout, in millimetres
const (
	pageMargin   = 15.0
	lineHeight   = 6.0
	rowHeight    = 7.0
	titleSize    = 14.0
	bodySize     = 10.0
	tableSize    = 8.0
	footerOffset = -10.0
)

// Trust logo colour
var brandRGB = [3]int{35, 128, 183}

// ReportStorage keeps exported report documents
type ReportStorage interface {
	Store(ctx context.Context, name string, content []byte) (string, error)
	URL(ctx context.Context, key string) (string, error)
	Delete(ctx context.Context, key string) error
}

var reportStorageInstance ReportStorage

// InitReportStorage picks local or S3 storage from cfg and installs it as the shared instance
func InitReportStorage(ctx context.Context, cfg *appConfig.Config) (ReportStorage, error) {
	var storage ReportStorage = NewLocalReportStorage(cfg.ReportDir)
	if cfg.ReportStorage == "s3" {
		s3Storage, err := NewS3ReportStorage(ctx, cfg)
		if err != nil {
			return nil, err
		}
		storage = s3Storage
	}

	reportStorageInstance = storage
	return storage, nil
}

// GetReportStorage returns the shared report storage
func GetReportStorage() ReportStorage {
	return reportStorageInstance
}

// SetReportStorage sets the shared report storage (primarily for testing)
func SetReportStorage(storage ReportStorage) {
	reportStorageInstance = storage
}

// LocalReportStorage writes exported reports into a directory
type LocalReportStorage struct {
	dir string
}

// NewLocalReportStorage creates storage rooted at dir
func NewLocalReportStorage(dir string) *LocalReportStorage {
	return &LocalReportStorage{dir: dir}
}

func (l *LocalReportStorage) path(key string) string {
	return filepath.Join(l.dir, filepath.Base(key))
}

// Store writes content to the directory, overwriting an existing report of the same name
func (l *LocalReportStorage) Store(_ context.Context, name string, content []byte) (string, error) {
	if err := os.MkdirAll(l.dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create report directory: %w", err)
	}
	key := reportKey(name)
	if err := os.WriteFile(l.path(key), content, 0o644); err != nil {
		return "", fmt.Errorf("failed to write report: %w", err)
	}
	return key, nil
}

// URL returns a file URL for the stored report
func (l *LocalReportStorage) URL(_ context.Context, key string) (string, error) {
	if key == "" {
		return "", nil
	}
	abs, err := filepath.Abs(l.path(key))
	if err != nil {
		return "", err
	}
	if _, err := os.Stat(abs); err != nil {
		return "", fmt.Errorf("report %s not found: %w", key, err)
	}
	return "file://" + filepath.ToSlash(abs), nil
}

// Delete removes the stored report
func (l *LocalReportStorage) Delete(_ context.Context, key string) error {
	if err := os.Remove(l.path(key)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete report: %w", err)
	}
	return nil
}

// ExportResult locates an exported report
type ExportResult struct {
	Key string `json:"key"`
	URL string `json:"url"`
}

// ReportExporter renders reports as PDF documents and stores them
type ReportExporter struct {
	storage ReportStorage
	now     func() time.Time
}

// NewReportExporter creates an exporter writing to storage
func NewReportExporter(storage ReportStorage) *ReportExporter {
	return &ReportExporter{storage: storage, now: time.Now}
}

// Export renders report and stores it, returning where it can be downloaded
func (e *ReportExporter) Export(ctx context.Context, report *Report) (*ExportResult, error) {
	content, err := RenderPDF(report, e.now())
	if err != nil {
		return nil, err
	}
	key, err := e.storage.Store(ctx, ExportName(report), content)
	if err != nil {
		return nil, err
	}
	url, err := e.storage.URL(ctx, key)
	if err != nil {
		return nil, err
	}
	return &ExportResult{Key: key, URL: url}, nil
}

// ExportName is the file name of an exported report, e.g. "DONATION 2024-01-01 to 2024-01-31.pdf"
func ExportName(report *Report) string {
	return fmt.Sprintf("%s %s to %s.pdf", strings.ToUpper(string(report.Kind)), report.Start, report.End)
}

// RenderPDF lays report out as an A4 document: the title block, date range, totals and
// creation date, then the rows under a column header repeated on every page
func RenderPDF(report *Report, created time.Time) ([]byte, error) {
	pdf := newReportPDF(report, created)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render report: %w", err)
	}
	return buf.Bytes(), nil
}

func newReportPDF(report *Report, created time.Time) *fpdf.Fpdf {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(pageMargin, pageMargin, pageMargin)
	pdf.SetAutoPageBreak(true, pageMargin)
	pdf.SetCompression(false)
	pdf.SetCreationDate(created)
	pdf.SetTitle(report.Title, true)
	pdf.SetAuthor(organisation, true)
	pdf.AliasNbPages("")

	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pageWidth, pageHeight := pdf.GetPageSize()
	width := pageWidth - 2*pageMargin

	pdf.SetFooterFunc(func() {
		pdf.SetY(footerOffset)
		pdf.SetFont("Arial", "I", tableSize)
		pdf.CellFormat(0, lineHeight, fmt.Sprintf("Page %d of {nb}", pdf.PageNo()), "", 0, "C", false, 0, "")
	})

	pdf.AddPage()
	pdf.SetFont("Arial", "B", titleSize)
	pdf.SetTextColor(brandRGB[0], brandRGB[1], brandRGB[2])
	pdf.CellFormat(width, lineHeight*1.5, tr(organisation), "", 1, "C", false, 0, "")

	pdf.SetFont("Arial", "", bodySize)
	pdf.SetTextColor(0, 0, 0)
	pdf.CellFormat(width, lineHeight, tr(report.Title), "", 1, "C", false, 0, "")
	pdf.Ln(lineHeight / 2)
	pdf.CellFormat(width, lineHeight, tr(report.Caption()+":"), "", 1, "L", false, 0, "")

	createdLine := "Report Created: " + created.Format(models.DisplayDateLayout)
	for i, t := range report.Totals {
		pdf.CellFormat(width/2, lineHeight, tr(fmt.Sprintf("%s = £%.2f", t.Label, t.Amount)), "", 0, "L", false, 0, "")
		if i == 0 {
			pdf.CellFormat(width/2, lineHeight, createdLine, "", 0, "R", false, 0, "")
		}
		pdf.Ln(lineHeight)
	}
	if len(report.Totals) == 0 {
		pdf.CellFormat(width, lineHeight, createdLine, "", 1, "R", false, 0, "")
	}
	pdf.Ln(lineHeight / 2)

	if len(report.Columns) == 0 {
		return pdf
	}
	colWidth := width / float64(len(report.Columns))
	header := func() {
		pdf.SetFont("Arial", "B", tableSize)
		for _, col := range report.Columns {
			pdf.CellFormat(colWidth, rowHeight, tr(col), "B", 0, "C", false, 0, "")
		}
		pdf.Ln(rowHeight)
		pdf.SetFont("Arial", "", tableSize)
	}

	header()
	for _, row := range report.Rows {
		if pdf.GetY()+rowHeight > pageHeight-pageMargin {
			pdf.AddPage()
			header()
		}
		for _, cell := range row {
			pdf.CellFormat(colWidth, rowHeight, tr(fitCell(pdf, cell, colWidth)), "", 0, "C", false, 0, "")
		}
		pdf.Ln(rowHeight)
	}
	return pdf
}

// fitCell shortens text until it fits inside a table column
func fitCell(pdf *fpdf.Fpdf, text string, width float64) string {
	const ellipsis = "..."
	limit := width - 2*pdf.GetCellMargin()
	if pdf.GetStringWidth(text) <= limit {
		return text
	}
	runes := []rune(text)
	for len(runes) > 0 && pdf.GetStringWidth(string(runes)+ellipsis) > limit {
		runes = runes[:len(runes)-1]
	}
	return string(runes) + ellipsis
}

func reportKey(name string) string {
	return reportPrefix + filepath.Base(name)
}
