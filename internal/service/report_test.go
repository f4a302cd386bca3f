package service

import (
	"testing"
	"time"

	"collectbook/internal/domain"
	"collectbook/internal/repository"
)

func reportRows() []repository.AccountRow {
	first := activeAccount("4000")
	first.DailyCollections["2026-01-04"] = domain.CollectionEntry{Amount: dec("500"), Status: domain.CollectionPaid, Day: "Sunday"}
	first.DailyCollections["2026-01-05"] = domain.CollectionEntry{Status: domain.CollectionUnpaid, Day: "Monday", Notes: "away"}

	second := activeAccount("9600")
	second.CustomerID = "cust-2"
	second.DailyCollections["2026-01-05"] = domain.CollectionEntry{Amount: dec("400"), Status: domain.CollectionPaid, Day: "Monday"}

	return []repository.AccountRow{
		{Account: *first, Customer: *approvedCustomer()},
		{Account: *second, Customer: domain.Customer{ID: "cust-2", Name: "Kamala Silva", NIC: "880456789V", Area: "Galle", LoanType: "standard"}},
	}
}

func TestFlattenCollections_OrderAndContent(t *testing.T) {
	rows := FlattenCollections(reportRows(), ReportFilter{})

	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}

	// ordered by date, then customer name
	if rows[0].Date != "2026-01-04" {
		t.Errorf("first row should be the earliest date, got %s", rows[0].Date)
	}
	if rows[1].Date != "2026-01-05" || rows[1].CustomerName != "Kamala Silva" {
		t.Errorf("same-date rows should sort by name, got %s / %s", rows[1].Date, rows[1].CustomerName)
	}
	if rows[2].CustomerName != "Nimal Perera" {
		t.Errorf("expected Nimal Perera last, got %s", rows[2].CustomerName)
	}

	if rows[2].Status != domain.CollectionUnpaid || rows[2].Notes != "away" {
		t.Errorf("entry fields not carried into the row: %+v", rows[2])
	}
	if !rows[0].Balance.Equal(dec("4000")) {
		t.Errorf("row should carry the account balance, got %s", rows[0].Balance)
	}
}

func TestFlattenCollections_StatusFilter(t *testing.T) {
	unpaid := "unpaid"
	rows := FlattenCollections(reportRows(), ReportFilter{Status: &unpaid})

	if len(rows) != 1 {
		t.Fatalf("expected 1 unpaid row, got %d", len(rows))
	}
	if rows[0].Status != domain.CollectionUnpaid {
		t.Errorf("expected unpaid, got %s", rows[0].Status)
	}
}

func TestFlattenCollections_DateRange(t *testing.T) {
	from := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
	rows := FlattenCollections(reportRows(), ReportFilter{DateFrom: &from})

	if len(rows) != 2 {
		t.Fatalf("expected 2 rows from 2026-01-05, got %d", len(rows))
	}
	for _, row := range rows {
		if row.Date != "2026-01-05" {
			t.Errorf("row outside range: %s", row.Date)
		}
	}

	to := time.Date(2026, 1, 4, 0, 0, 0, 0, time.UTC)
	rows = FlattenCollections(reportRows(), ReportFilter{DateTo: &to})
	if len(rows) != 1 || rows[0].Date != "2026-01-04" {
		t.Fatalf("expected only the 2026-01-04 row, got %d", len(rows))
	}
}

func TestDateInRange(t *testing.T) {
	from := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC)

	if !dateInRange("2026-01-15", &from, &to) {
		t.Error("mid-range date should pass")
	}
	if dateInRange("2025-12-31", &from, &to) {
		t.Error("date before range should fail")
	}
	if dateInRange("2026-02-01", &from, &to) {
		t.Error("date after range should fail")
	}
	if dateInRange("not-a-date", nil, nil) {
		t.Error("unparseable date should fail")
	}
	if !dateInRange("2026-01-15", nil, nil) {
		t.Error("open range should pass any valid date")
	}
}

func TestFiltersMap(t *testing.T) {
	area := "Galle"
	m := filtersMap(ReportFilter{Area: &area}, []string{"date", "amount"})

	if m["area"] != "Galle" {
		t.Errorf("expected area Galle, got %v", m["area"])
	}
	if m["status"] != nil {
		t.Errorf("unset status should be nil, got %v", m["status"])
	}
	fields, ok := m["fields"].([]string)
	if !ok || len(fields) != 2 {
		t.Errorf("fields not carried: %v", m["fields"])
	}
}

func TestHumanizeAgo(t *testing.T) {
	now := time.Now()

	if got := humanizeAgo(now.Add(-30 * time.Second)); got != "just now" {
		t.Errorf("expected 'just now', got %q", got)
	}
	if got := humanizeAgo(now.Add(-5 * time.Minute)); got != "5 minutes ago" {
		t.Errorf("expected '5 minutes ago', got %q", got)
	}
	if got := humanizeAgo(now.Add(-1 * time.Hour)); got != "1 hour ago" {
		t.Errorf("expected '1 hour ago', got %q", got)
	}
	if got := humanizeAgo(now.Add(-49 * time.Hour)); got != "2 days ago" {
		t.Errorf("expected '2 days ago', got %q", got)
	}
}
