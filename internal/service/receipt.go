package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"time"

	"collectbook/internal/domain"
	"collectbook/internal/repository"
)

type AccountReader interface {
	GetByCustomerID(ctx context.Context, customerID string) (*domain.Account, error)
}

type CollectorStore interface {
	GetByID(ctx context.Context, id string) (*domain.Collector, error)
}

// ReceiptService renders a customer's collection entry into an HTML receipt
// and hands it to the file store. Pure formatting: a failure here never
// touches the ledger, which has already committed.
type ReceiptService struct {
	customers  CustomerStore
	accounts   AccountReader
	collectors CollectorStore
	files      FileStore

	now func() time.Time
}

func NewReceiptService(customers CustomerStore, accounts AccountReader, collectors CollectorStore, files FileStore) *ReceiptService {
	return &ReceiptService{
		customers:  customers,
		accounts:   accounts,
		collectors: collectors,
		files:      files,
		now:        time.Now,
	}
}

type Receipt struct {
	FileName string `json:"file_name"`
	URL      string `json:"url"`
}

type receiptModel struct {
	Name        string
	NIC         string
	Address     string
	Area        string
	LoanType    string
	Date        string
	Day         string
	Status      string
	Paid        bool
	Amount      string
	Notes       string
	Balance     string
	Collector   string
	GeneratedAt string
}

var receiptTmpl = template.Must(template.New("receipt").Parse(`<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8">
  <title>Collection Receipt</title>
  <style>
    body { font-family: Arial, sans-serif; margin: 20px; color: #333; }
    .header { text-align: center; margin-bottom: 30px; border-bottom: 2px solid #4A90E2; padding-bottom: 20px; }
    .header h1 { color: #4A90E2; margin: 0; font-size: 28px; }
    .header p { margin: 5px 0; color: #666; }
    .details { background-color: #f8f9fa; padding: 20px; border-radius: 8px; border-left: 4px solid #4A90E2; }
    .detail-item { display: flex; justify-content: space-between; padding: 8px 0; border-bottom: 1px solid #eee; }
    .detail-label { font-weight: bold; color: #555; }
    .status { margin-top: 20px; padding: 15px; border-radius: 8px; text-align: center; font-weight: bold; }
    .paid { background-color: #d4edda; color: #155724; border: 1px solid #c3e6cb; }
    .unpaid { background-color: #f8d7da; color: #721c24; border: 1px solid #f5c6cb; }
    .footer { margin-top: 30px; text-align: center; color: #999; font-size: 12px; }
  </style>
</head>
<body>
  <div class="header">
    <h1>Collection Receipt</h1>
    <p>{{.Date}} ({{.Day}})</p>
  </div>
  <div class="details">
    <div class="detail-item"><span class="detail-label">Name</span><span>{{.Name}}</span></div>
    <div class="detail-item"><span class="detail-label">NIC</span><span>{{.NIC}}</span></div>
    <div class="detail-item"><span class="detail-label">Address</span><span>{{.Address}}</span></div>
    <div class="detail-item"><span class="detail-label">Area</span><span>{{.Area}}</span></div>
    <div class="detail-item"><span class="detail-label">Loan Plan</span><span>{{.LoanType}}</span></div>
    <div class="detail-item"><span class="detail-label">Amount</span><span>Rs. {{.Amount}}</span></div>
    {{if .Notes}}<div class="detail-item"><span class="detail-label">Notes</span><span>{{.Notes}}</span></div>{{end}}
    <div class="detail-item"><span class="detail-label">Remaining Balance</span><span>Rs. {{.Balance}}</span></div>
    <div class="detail-item"><span class="detail-label">Collector</span><span>{{.Collector}}</span></div>
  </div>
  <div class="status {{if .Paid}}paid{{else}}unpaid{{end}}">{{.Status}}</div>
  <div class="footer">Generated at {{.GeneratedAt}}</div>
</body>
</html>
`))

// Generate renders the receipt for one collection day. Date defaults to
// today when empty.
func (s *ReceiptService) Generate(ctx context.Context, customerID, date string) (*Receipt, error) {
	if customerID == "" {
		return nil, validationErr("customer_id", "customer_id is required")
	}
	if date == "" {
		date = s.now().Format(DateLayout)
	} else if _, err := time.Parse(DateLayout, date); err != nil {
		return nil, validationErr("date", "date must be YYYY-MM-DD")
	}

	customer, err := s.customers.GetByID(ctx, customerID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, notFoundErr("customer not found")
	}
	if err != nil {
		return nil, storeErr("failed to load customer", err)
	}

	account, err := s.accounts.GetByCustomerID(ctx, customerID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, notFoundErr("account not found for this customer")
	}
	if err != nil {
		return nil, storeErr("failed to load account", err)
	}

	entry, ok := account.DailyCollections[date]
	if !ok {
		return nil, notFoundErr(fmt.Sprintf("no collection recorded for %s", date))
	}

	// Show the collector's name when the account is known; the raw id is the
	// fallback for tokens issued before the collector profile existed.
	collectorLabel := entry.CollectorID
	if s.collectors != nil && entry.CollectorID != "" {
		if collector, err := s.collectors.GetByID(ctx, entry.CollectorID); err == nil {
			collectorLabel = fmt.Sprintf("%s %s", collector.FirstName, collector.LastName)
		}
	}

	model := receiptModel{
		Name:        customer.Name,
		NIC:         customer.NIC,
		Address:     customer.Address,
		Area:        customer.Area,
		LoanType:    customer.LoanType,
		Date:        date,
		Day:         entry.Day,
		Status:      string(entry.Status),
		Paid:        entry.Status == domain.CollectionPaid,
		Amount:      entry.Amount.StringFixed(2),
		Notes:       entry.Notes,
		Balance:     account.Balance.StringFixed(2),
		Collector:   collectorLabel,
		GeneratedAt: s.now().Format("2006-01-02 15:04:05"),
	}

	var buf bytes.Buffer
	if err := receiptTmpl.Execute(&buf, model); err != nil {
		return nil, fmt.Errorf("render receipt: %w", err)
	}

	fileName := fmt.Sprintf("receipt_%s_%s.html", customer.NIC, date)
	savedName, err := s.files.Save(ctx, fileName, buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("save receipt: %w", err)
	}

	url, err := s.files.URL(ctx, savedName)
	if err != nil {
		return nil, fmt.Errorf("resolve receipt url: %w", err)
	}

	return &Receipt{FileName: savedName, URL: url}, nil
}
