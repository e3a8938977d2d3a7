package core

// ingest.go validates raw source entries and turns them into Records.
//
// Each entry is checked independently. An entry that is missing a field,
// carries an unparsable timestamp, a negative price or a duplicate ID is
// skipped and reported; the rest of the load continues.

import (
	"fmt"
	"strings"
	"time"
)

// timestampLayouts are tried in order when parsing ISO-8601 values.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// SkippedRecord describes a source entry that was rejected at ingestion.
type SkippedRecord struct {
	Index  int    `json:"index"` // Position in the source sequence
	Reason string `json:"reason"`
}

// LoadReport summarizes one ingestion pass.
type LoadReport struct {
	Source   string          `json:"source"`
	Received int             `json:"received"`
	Loaded   int             `json:"loaded"`
	Skipped  []SkippedRecord `json:"skipped,omitempty"`
	Duration time.Duration   `json:"duration"`
}

// SkippedCount returns the number of rejected entries.
func (r LoadReport) SkippedCount() int {
	return len(r.Skipped)
}

// ParseTimestamp parses an ISO-8601 timestamp or date.
// Values without a zone are interpreted as UTC.
func ParseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("invalid date: empty value")
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date: %q", s)
}

// BuildRecord validates a single entry.
func BuildRecord(in RecordInput) (Record, error) {
	switch {
	case in.Err != nil:
		return Record{}, fmt.Errorf("malformed record: %w", in.Err)
	case in.ID == nil:
		return Record{}, fmt.Errorf("required field id is missing")
	case in.Name == nil:
		return Record{}, fmt.Errorf("required field name is missing")
	case in.Category == nil:
		return Record{}, fmt.Errorf("required field category is missing")
	case in.Subcategory == nil:
		return Record{}, fmt.Errorf("required field subcategory is missing")
	case in.CreatedAt == nil:
		return Record{}, fmt.Errorf("required field createdAt is missing")
	case in.UpdatedAt == nil:
		return Record{}, fmt.Errorf("required field updatedAt is missing")
	case in.Price == nil:
		return Record{}, fmt.Errorf("required field price is missing")
	}

	created, err := ParseTimestamp(*in.CreatedAt)
	if err != nil {
		return Record{}, fmt.Errorf("createdAt: %w", err)
	}
	updated, err := ParseTimestamp(*in.UpdatedAt)
	if err != nil {
		return Record{}, fmt.Errorf("updatedAt: %w", err)
	}

	if in.Price.IsNegative() {
		return Record{}, fmt.Errorf("invalid number: price %s is negative", in.Price)
	}

	rec := Record{
		ID:          *in.ID,
		Name:        *in.Name,
		Category:    *in.Category,
		Subcategory: *in.Subcategory,
		CreatedAt:   created,
		UpdatedAt:   updated,
		Price:       *in.Price,
	}

	sale := in.SalePrice
	if sale == nil {
		sale = in.SalePriceAlt
	}
	if sale != nil {
		if sale.IsNegative() {
			return Record{}, fmt.Errorf("invalid number: sale_price %s is negative", sale)
		}
		rec.SalePrice.Decimal = *sale
		rec.SalePrice.Valid = true
	}

	return rec, nil
}

// BuildRecords validates entries in order, skipping malformed ones and any
// entry whose ID was already accepted. The returned records keep source order.
func BuildRecords(inputs []RecordInput) ([]Record, []SkippedRecord) {
	records := make([]Record, 0, len(inputs))
	var skipped []SkippedRecord
	seen := make(map[int64]int, len(inputs))

	for i, in := range inputs {
		rec, err := BuildRecord(in)
		if err != nil {
			skipped = append(skipped, SkippedRecord{Index: i, Reason: err.Error()})
			continue
		}
		if first, dup := seen[rec.ID]; dup {
			skipped = append(skipped, SkippedRecord{
				Index:  i,
				Reason: fmt.Sprintf("duplicate key: id %d already loaded from entry %d", rec.ID, first),
			})
			continue
		}
		seen[rec.ID] = i
		records = append(records, rec)
	}

	return records, skipped
}
