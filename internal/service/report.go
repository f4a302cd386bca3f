package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math"
	"sort"
	"time"

	"collectbook/internal/clients"
	"collectbook/internal/domain"
	"collectbook/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

type AccountLister interface {
	ListWithCustomers(ctx context.Context, f repository.AccountsFilter) ([]repository.AccountRow, error)
	HasMoreThan(ctx context.Context, limit int64, f repository.AccountsFilter) (bool, error)
}

// FileStore is where rendered receipts and reports end up: the local
// storage directory or an S3 bucket, selected at startup.
type FileStore interface {
	Save(ctx context.Context, fileName string, data []byte) (string, error)
	URL(ctx context.Context, fileName string) (string, error)
}

type ReportStatus struct {
	Key         string    `json:"key"`
	Type        string    `json:"type"`
	CollectorID string    `json:"collector_id"`
	Filters     any       `json:"filters"`
	Progress    float64   `json:"progress"`
	FileURL     *string   `json:"file_url"`
	Error       *string   `json:"error,omitempty"`
	Created     time.Time `json:"created_at"`
}

const (
	reportSetKey = "report_ids"
	reportTTL    = 20 * time.Minute
)

const maxAccountsForReport = 100_000

type ReportFilter struct {
	Area     *string
	Status   *string // entry status: paid / unpaid
	DateFrom *time.Time
	DateTo   *time.Time
}

// CollectionRow is one dated ledger entry flattened together with the
// customer it belongs to, the unit of the collections report.
type CollectionRow struct {
	Date         string
	Day          string
	CustomerName string
	NIC          string
	Area         string
	LoanType     string
	Status       domain.CollectionStatus
	Amount       decimal.Decimal
	Notes        string
	CollectorID  string
	Balance      decimal.Decimal
}

type ReportColumn struct {
	Header string
	Value  func(r CollectionRow) any
}

var reportColumns = map[string]ReportColumn{
	"date":          {Header: "Date", Value: func(r CollectionRow) any { return r.Date }},
	"day":           {Header: "Day", Value: func(r CollectionRow) any { return r.Day }},
	"customer_name": {Header: "Customer", Value: func(r CollectionRow) any { return r.CustomerName }},
	"nic":           {Header: "NIC", Value: func(r CollectionRow) any { return r.NIC }},
	"area":          {Header: "Area", Value: func(r CollectionRow) any { return r.Area }},
	"loan_type":     {Header: "Loan Plan", Value: func(r CollectionRow) any { return r.LoanType }},
	"status":        {Header: "Status", Value: func(r CollectionRow) any { return string(r.Status) }},
	"amount":        {Header: "Amount", Value: func(r CollectionRow) any { return r.Amount.StringFixed(2) }},
	"notes":         {Header: "Notes", Value: func(r CollectionRow) any { return r.Notes }},
	"collector_id":  {Header: "Collector", Value: func(r CollectionRow) any { return r.CollectorID }},
	"balance":       {Header: "Balance", Value: func(r CollectionRow) any { return r.Balance.StringFixed(2) }},
}

var defaultReportFields = []string{
	"date", "day", "customer_name", "nic", "area", "loan_type",
	"status", "amount", "notes", "collector_id", "balance",
}

// ReportService produces multi-customer collection reports asynchronously:
// status lives in Redis, progress is pushed over the websocket hub and the
// finished XLSX goes to the file store.
type ReportService struct {
	accounts AccountLister
	redis    *clients.RedisClient
	files    FileStore
	ws       *clients.WebSocketClient
}

func NewReportService(accounts AccountLister, redis *clients.RedisClient, files FileStore, ws *clients.WebSocketClient) *ReportService {
	return &ReportService{
		accounts: accounts,
		redis:    redis,
		files:    files,
		ws:       ws,
	}
}

func (s *ReportService) saveStatus(ctx context.Context, st *ReportStatus) error {
	if s.redis == nil {
		return nil
	}
	data, err := json.Marshal(st)
	if err != nil {
		return err
	}
	if err := s.redis.Set(ctx, st.Key, string(data), reportTTL); err != nil {
		return err
	}
	return s.redis.SAdd(ctx, reportSetKey, st.Key)
}

func (s *ReportService) StartCollectionsReport(ctx context.Context, selected []string, filter ReportFilter, collectorID string) (string, error) {
	if len(selected) == 0 {
		selected = defaultReportFields
	}

	tooMany, err := s.accounts.HasMoreThan(ctx, maxAccountsForReport, accountsFilter(filter))
	if err != nil {
		return "", err
	}
	if tooMany {
		return "", fmt.Errorf("too many accounts for report (more than %d)", maxAccountsForReport)
	}

	reportID := fmt.Sprintf("reports:%s", uuid.NewString())

	status := &ReportStatus{
		Key:         reportID,
		Type:        "collections",
		CollectorID: collectorID,
		Filters:     filtersMap(filter, selected),
		Progress:    0,
		Created:     time.Now(),
	}
	_ = s.saveStatus(ctx, status)

	go s.runCollectionsReport(context.Background(), status, selected, filter)

	return reportID, nil
}

func (s *ReportService) runCollectionsReport(ctx context.Context, status *ReportStatus, selected []string, filter ReportFilter) {
	accounts, err := s.accounts.ListWithCustomers(ctx, accountsFilter(filter))
	if err != nil {
		s.fail(ctx, status, fmt.Sprintf("list accounts failed: %v", err))
		return
	}

	collectionRows := FlattenCollections(accounts, filter)

	var cols []ReportColumn
	for _, key := range selected {
		col, ok := reportColumns[key]
		if !ok {
			continue
		}
		cols = append(cols, col)
	}
	if len(cols) == 0 {
		s.fail(ctx, status, "no known fields selected")
		return
	}

	f := excelize.NewFile()
	sheet := "Collections"
	f.SetSheetName(f.GetSheetName(0), sheet)

	_ = f.SetDocProps(&excelize.DocProperties{Creator: fmt.Sprintf("collector_%s", status.CollectorID)})

	for i, col := range cols {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, col.Header)
	}

	total := len(collectionRows)
	chunkSize := 200
	for i, row := range collectionRows {
		for colIdx, col := range cols {
			cell, _ := excelize.CoordinatesToCellName(colIdx+1, i+2)
			_ = f.SetCellValue(sheet, cell, col.Value(row))
		}

		if (i+1)%chunkSize == 0 || i == total-1 {
			raw := float64(i+1) / float64(total) * 100.0
			progress := math.Round(raw)
			if progress >= 100 {
				progress = 95
			}
			status.Progress = progress
			_ = s.saveStatus(ctx, status)
			if s.ws != nil {
				_ = s.ws.NotifyReportProgress(ctx, status.CollectorID, status.Key, progress, "generating")
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		s.fail(ctx, status, fmt.Sprintf("write workbook failed: %v", err))
		return
	}

	fileName := fmt.Sprintf("collections_%s.xlsx", time.Now().Format("20060102_150405"))

	status.Progress = 95
	_ = s.saveStatus(ctx, status)
	if s.ws != nil {
		_ = s.ws.NotifyReportProgress(ctx, status.CollectorID, status.Key, 95, "uploading")
	}

	savedName, err := s.files.Save(ctx, fileName, buf.Bytes())
	if err != nil {
		s.fail(ctx, status, fmt.Sprintf("save report failed: %v", err))
		return
	}

	url, err := s.files.URL(ctx, savedName)
	if err != nil {
		s.fail(ctx, status, fmt.Sprintf("resolve report url failed: %v", err))
		return
	}

	status.FileURL = &url
	status.Progress = 100
	_ = s.saveStatus(ctx, status)
	if s.ws != nil {
		_ = s.ws.NotifyReportProgress(ctx, status.CollectorID, status.Key, 100, "ready")
		_ = s.ws.NotifyReportComplete(ctx, status.CollectorID, status.Key, url, fileName)
	}
}

func (s *ReportService) fail(ctx context.Context, status *ReportStatus, msg string) {
	log.Printf("report %s: %s", status.Key, msg)
	status.Error = &msg
	status.Progress = 100
	_ = s.saveStatus(ctx, status)
	if s.ws != nil {
		_ = s.ws.NotifyReportFailed(ctx, status.CollectorID, status.Key, msg)
	}
}

// FlattenCollections turns the per-account dated entry maps into report
// rows, applying the entry-level filters and ordering by date then name.
func FlattenCollections(accounts []repository.AccountRow, filter ReportFilter) []CollectionRow {
	var out []CollectionRow

	for _, a := range accounts {
		for date, entry := range a.Account.DailyCollections {
			if filter.Status != nil && *filter.Status != "" && string(entry.Status) != *filter.Status {
				continue
			}
			if !dateInRange(date, filter.DateFrom, filter.DateTo) {
				continue
			}

			out = append(out, CollectionRow{
				Date:         date,
				Day:          entry.Day,
				CustomerName: a.Customer.Name,
				NIC:          a.Customer.NIC,
				Area:         a.Customer.Area,
				LoanType:     a.Customer.LoanType,
				Status:       entry.Status,
				Amount:       entry.Amount,
				Notes:        entry.Notes,
				CollectorID:  entry.CollectorID,
				Balance:      a.Account.Balance,
			})
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date < out[j].Date
		}
		return out[i].CustomerName < out[j].CustomerName
	})

	return out
}

func dateInRange(date string, from, to *time.Time) bool {
	d, err := time.Parse(DateLayout, date)
	if err != nil {
		return false
	}
	if from != nil && d.Before(*from) {
		return false
	}
	if to != nil && d.After(*to) {
		return false
	}
	return true
}

func accountsFilter(f ReportFilter) repository.AccountsFilter {
	return repository.AccountsFilter{Area: f.Area}
}

func filtersMap(f ReportFilter, fields []string) map[string]any {
	m := map[string]any{}
	if f.Area != nil {
		m["area"] = *f.Area
	} else {
		m["area"] = nil
	}
	if f.Status != nil {
		m["status"] = *f.Status
	} else {
		m["status"] = nil
	}
	if f.DateFrom != nil {
		m["date_from"] = f.DateFrom.Format(DateLayout)
	} else {
		m["date_from"] = nil
	}
	if f.DateTo != nil {
		m["date_to"] = f.DateTo.Format(DateLayout)
	} else {
		m["date_to"] = nil
	}
	m["fields"] = fields
	return m
}
