// Package ingest normalizes raw CSV uploads into typed domain records. It is
// the only place that parses strings into numbers and dates; everything
// downstream works on the typed collections.
package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/retailpulse/backend-go/internal/domain"
)

const dateLayout = "2006-01-02"

// Options controls how malformed rows are handled. With SkipInvalid set, bad
// rows are dropped and reported; otherwise the first bad row aborts the batch.
type Options struct {
	SkipInvalid bool
}

// RowError describes a single malformed CSV row.
type RowError struct {
	Line  int    `json:"line"`
	Field string `json:"field"`
	Err   error  `json:"-"`
}

func (e *RowError) Error() string {
	return fmt.Sprintf("row %d: field %q: %v", e.Line, e.Field, e.Err)
}

func (e *RowError) Unwrap() error { return e.Err }

// MarshalJSON flattens the wrapped error into a message for API responses.
func (e *RowError) MarshalJSON() ([]byte, error) {
	return []byte(fmt.Sprintf(`{"line":%d,"field":%q,"message":%q}`, e.Line, e.Field, e.Err.Error())), nil
}

var productColumns = []string{"product_id", "product_name", "store_id", "expiry_date", "stock", "MRP", "final_price"}

var transferColumns = []string{"product_id", "from_store", "to_store", "quantity", "distance_km", "days_to_expiry"}

// ParseProducts reads an inventory CSV. The header row maps columns by name;
// remaining_expected_sales is optional and defaults to 0 when absent.
func ParseProducts(r io.Reader, opts Options) ([]domain.Product, []*RowError, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	cols, err := readHeader(reader, productColumns)
	if err != nil {
		return nil, nil, err
	}
	hasSales := cols.has("remaining_expected_sales")

	var (
		products []domain.Product
		skipped  []*RowError
	)
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("read inventory csv: %w", err)
		}
		line++

		p, rowErr := parseProductRow(record, cols, hasSales, line)
		if rowErr != nil {
			if opts.SkipInvalid {
				skipped = append(skipped, rowErr)
				continue
			}
			return nil, nil, rowErr
		}
		products = append(products, p)
	}

	return products, skipped, nil
}

// ParseTransfers reads a transfer-suggestions CSV.
func ParseTransfers(r io.Reader, opts Options) ([]domain.Transfer, []*RowError, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	cols, err := readHeader(reader, transferColumns)
	if err != nil {
		return nil, nil, err
	}

	var (
		transfers []domain.Transfer
		skipped   []*RowError
	)
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("read transfers csv: %w", err)
		}
		line++

		t, rowErr := parseTransferRow(record, cols, line)
		if rowErr != nil {
			if opts.SkipInvalid {
				skipped = append(skipped, rowErr)
				continue
			}
			return nil, nil, rowErr
		}
		transfers = append(transfers, t)
	}

	return transfers, skipped, nil
}

type columnIndex map[string]int

func (c columnIndex) has(name string) bool {
	_, ok := c[name]
	return ok
}

func (c columnIndex) value(record []string, name string) string {
	i, ok := c[name]
	if !ok || i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}

func readHeader(reader *csv.Reader, required []string) (columnIndex, error) {
	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}

	cols := make(columnIndex, len(header))
	for i, name := range header {
		cols[strings.TrimSpace(name)] = i
	}
	for _, name := range required {
		if !cols.has(name) {
			return nil, fmt.Errorf("csv header missing required column %q", name)
		}
	}

	return cols, nil
}

func parseProductRow(record []string, cols columnIndex, hasSales bool, line int) (domain.Product, *RowError) {
	var p domain.Product

	p.ProductID = cols.value(record, "product_id")
	p.ProductName = cols.value(record, "product_name")
	p.StoreID = cols.value(record, "store_id")
	if p.ProductID == "" {
		return p, &RowError{Line: line, Field: "product_id", Err: fmt.Errorf("empty value")}
	}
	if p.StoreID == "" {
		return p, &RowError{Line: line, Field: "store_id", Err: fmt.Errorf("empty value")}
	}

	expiry, err := time.Parse(dateLayout, cols.value(record, "expiry_date"))
	if err != nil {
		return p, &RowError{Line: line, Field: "expiry_date", Err: err}
	}
	p.ExpiryDate = expiry

	p.Stock, err = strconv.Atoi(cols.value(record, "stock"))
	if err != nil {
		return p, &RowError{Line: line, Field: "stock", Err: err}
	}
	if p.Stock < 0 {
		return p, &RowError{Line: line, Field: "stock", Err: fmt.Errorf("must be non-negative, got %d", p.Stock)}
	}

	p.MRP, err = strconv.ParseFloat(cols.value(record, "MRP"), 64)
	if err != nil {
		return p, &RowError{Line: line, Field: "MRP", Err: err}
	}
	p.FinalPrice, err = strconv.ParseFloat(cols.value(record, "final_price"), 64)
	if err != nil {
		return p, &RowError{Line: line, Field: "final_price", Err: err}
	}
	if p.FinalPrice < 0 || p.MRP < 0 {
		return p, &RowError{Line: line, Field: "final_price", Err: fmt.Errorf("prices must be non-negative")}
	}
	if p.FinalPrice > p.MRP {
		return p, &RowError{Line: line, Field: "final_price", Err: fmt.Errorf("final price %.2f exceeds MRP %.2f", p.FinalPrice, p.MRP)}
	}

	if hasSales {
		if raw := cols.value(record, "remaining_expected_sales"); raw != "" {
			p.RemainingExpectedSales, err = strconv.ParseFloat(raw, 64)
			if err != nil {
				return p, &RowError{Line: line, Field: "remaining_expected_sales", Err: err}
			}
			if p.RemainingExpectedSales < 0 {
				return p, &RowError{Line: line, Field: "remaining_expected_sales", Err: fmt.Errorf("must be non-negative")}
			}
		}
	}

	return p, nil
}

func parseTransferRow(record []string, cols columnIndex, line int) (domain.Transfer, *RowError) {
	var t domain.Transfer

	t.ProductID = cols.value(record, "product_id")
	t.FromStore = cols.value(record, "from_store")
	t.ToStore = cols.value(record, "to_store")
	if t.ProductID == "" {
		return t, &RowError{Line: line, Field: "product_id", Err: fmt.Errorf("empty value")}
	}
	if t.FromStore == "" || t.ToStore == "" {
		return t, &RowError{Line: line, Field: "from_store", Err: fmt.Errorf("both stores must be set")}
	}

	var err error
	t.Quantity, err = strconv.Atoi(cols.value(record, "quantity"))
	if err != nil {
		return t, &RowError{Line: line, Field: "quantity", Err: err}
	}
	if t.Quantity <= 0 {
		return t, &RowError{Line: line, Field: "quantity", Err: fmt.Errorf("must be positive, got %d", t.Quantity)}
	}

	t.DistanceKM, err = strconv.ParseFloat(cols.value(record, "distance_km"), 64)
	if err != nil {
		return t, &RowError{Line: line, Field: "distance_km", Err: err}
	}
	if t.DistanceKM < 0 {
		return t, &RowError{Line: line, Field: "distance_km", Err: fmt.Errorf("must be non-negative")}
	}

	t.DaysToExpiry, err = strconv.Atoi(cols.value(record, "days_to_expiry"))
	if err != nil {
		return t, &RowError{Line: line, Field: "days_to_expiry", Err: err}
	}

	return t, nil
}
