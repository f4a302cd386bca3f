package rest

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"time"

	"collectbook/internal/service"

	"github.com/shopspring/decimal"
)

type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

type SubmitCollectionRequest struct {
	Amount *decimal.Decimal `json:"amount,omitempty"`
	Notes  string           `json:"notes"`
}

type rawSubmitCollectionRequest struct {
	Amount any    `json:"amount"`
	Notes  string `json:"notes"`
}

// ValidateSubmitCollectionRequest parses the collection submission. Amount
// accepts a JSON number or a numeric string (the mobile client sends the
// raw text-input value); empty means no payment was collected.
func ValidateSubmitCollectionRequest(r *http.Request) (*SubmitCollectionRequest, error) {
	var raw rawSubmitCollectionRequest
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil && err != io.EOF {
		return nil, err
	}

	amount, err := toDecimalPtr(raw.Amount)
	if err != nil {
		return nil, &ValidationError{Field: "amount", Message: "amount must be a number or empty"}
	}

	return &SubmitCollectionRequest{
		Amount: amount,
		Notes:  raw.Notes,
	}, nil
}

func toDecimalPtr(v any) (*decimal.Decimal, error) {
	switch t := v.(type) {
	case nil:
		return nil, nil
	case float64:
		d := decimal.NewFromFloat(t)
		return &d, nil
	case string:
		if t == "" {
			return nil, nil
		}
		d, err := decimal.NewFromString(t)
		if err != nil {
			return nil, err
		}
		return &d, nil
	default:
		return nil, &ValidationError{Message: "invalid type for decimal field"}
	}
}

type RegisterCustomerRequest struct {
	Name     string  `json:"name"`
	NIC      string  `json:"nic"`
	Contact  string  `json:"contact"`
	Address  string  `json:"address"`
	Area     string  `json:"area"`
	LoanType string  `json:"loan_type"`
	Picture  *string `json:"customer_picture,omitempty"`
}

func ValidateRegisterCustomerRequest(r *http.Request) (*RegisterCustomerRequest, error) {
	var req RegisterCustomerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return nil, err
	}
	return &req, nil
}

type CollectionsReportRequest struct {
	Fields   []string   `json:"fields"`
	Area     *string    `json:"-"`
	Status   *string    `json:"-"`
	DateFrom *time.Time `json:"-"`
	DateTo   *time.Time `json:"-"`
}

type rawCollectionsReportRequest struct {
	Fields   []string `json:"fields"`
	Area     any      `json:"area"`
	Status   any      `json:"status"`
	DateFrom any      `json:"date_from"`
	DateTo   any      `json:"date_to"`
}

func ValidateCollectionsReportRequest(r *http.Request) (*CollectionsReportRequest, error) {
	var raw rawCollectionsReportRequest
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil && err != io.EOF {
		return nil, err
	}

	area, err := toStringPtr(raw.Area)
	if err != nil {
		return nil, &ValidationError{Field: "area", Message: "area must be string or empty"}
	}

	status, err := toStringPtr(raw.Status)
	if err != nil {
		return nil, &ValidationError{Field: "status", Message: "status must be string or empty"}
	}
	if status != nil && *status != "paid" && *status != "unpaid" {
		return nil, &ValidationError{Field: "status", Message: "status must be paid, unpaid or empty"}
	}

	dateFrom, err := toDatePtr(raw.DateFrom)
	if err != nil {
		return nil, &ValidationError{Field: "date_from", Message: "date_from must be YYYY-MM-DD or empty"}
	}
	dateTo, err := toDatePtr(raw.DateTo)
	if err != nil {
		return nil, &ValidationError{Field: "date_to", Message: "date_to must be YYYY-MM-DD or empty"}
	}

	return &CollectionsReportRequest{
		Fields:   raw.Fields,
		Area:     area,
		Status:   status,
		DateFrom: dateFrom,
		DateTo:   dateTo,
	}, nil
}

func (r *CollectionsReportRequest) ToReportFilter() service.ReportFilter {
	return service.ReportFilter{
		Area:     r.Area,
		Status:   r.Status,
		DateFrom: r.DateFrom,
		DateTo:   r.DateTo,
	}
}

func toStringPtr(v any) (*string, error) {
	switch t := v.(type) {
	case nil:
		return nil, nil
	case string:
		if t == "" {
			return nil, nil
		}
		return &t, nil
	case float64:
		s := strconv.FormatInt(int64(t), 10)
		return &s, nil
	default:
		return nil, &ValidationError{Message: "invalid type for string field"}
	}
}

func toDatePtr(v any) (*time.Time, error) {
	switch t := v.(type) {
	case nil:
		return nil, nil
	case string:
		if t == "" {
			return nil, nil
		}
		parsed, err := time.Parse("2006-01-02", t)
		if err != nil {
			return nil, err
		}
		return &parsed, nil
	default:
		return nil, &ValidationError{Message: "invalid type for date field"}
	}
}
