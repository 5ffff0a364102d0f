package importer

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"customer-api/internal/domain"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// CustomerCreator is the write side of the customer service.
type CustomerCreator interface {
	Create(ctx context.Context, data domain.CustomerData) (*domain.Customer, error)
}

// RowError describes a CSV row that was skipped.
type RowError struct {
	Line   int
	Email  string
	Reason string
}

// Result summarises an import run.
type Result struct {
	Imported int
	Skipped  []RowError
}

// CSVImporter reads a customer CSV export and creates one customer per row
// through the customer service, so uniqueness and events apply as they do
// for API writes. Required columns: name, email. Optional: phone, address,
// company, status, metadata (a JSON object).
type CSVImporter struct {
	reader   *csv.Reader
	svc      CustomerCreator
	validate *validator.Validate
	logger   *zap.Logger
}

func NewCSVImporter(r io.Reader, svc CustomerCreator, logger *zap.Logger) *CSVImporter {
	if logger == nil {
		logger = zap.NewNop()
	}
	csvr := csv.NewReader(r)
	csvr.FieldsPerRecord = -1 // rows may have trailing commas
	csvr.TrimLeadingSpace = true
	return &CSVImporter{
		reader:   csvr,
		svc:      svc,
		validate: validator.New(),
		logger:   logger.Named("importer"),
	}
}

type csvRow struct {
	Name     string `validate:"required,max=255"`
	Email    string `validate:"required,email,max=255"`
	Phone    string `validate:"omitempty,max=50"`
	Address  string `validate:"omitempty,max=500"`
	Company  string `validate:"omitempty,max=255"`
	Status   string `validate:"omitempty,oneof=active inactive suspended pending"`
	Metadata string `validate:"omitempty,json"`
}

// Run imports every data row. Invalid rows and duplicate emails are skipped
// and reported in the result; any other service error aborts the run.
func (i *CSVImporter) Run(ctx context.Context) (Result, error) {
	var res Result

	headers, err := i.reader.Read()
	if err != nil {
		return res, fmt.Errorf("read headers: %w", err)
	}
	index := headerIndex(headers)
	for _, col := range []string{"name", "email"} {
		if _, ok := index[col]; !ok {
			return res, fmt.Errorf("missing required column %q", col)
		}
	}

	line := 1
	for {
		record, err := i.reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return res, fmt.Errorf("read row: %w", err)
		}
		line++
		if blank(record) {
			continue
		}
		if err := ctx.Err(); err != nil {
			return res, err
		}

		row := parseRow(record, index)
		data, reason := i.toData(row)
		if reason != "" {
			res.Skipped = append(res.Skipped, RowError{Line: line, Email: row.Email, Reason: reason})
			continue
		}

		created, err := i.svc.Create(ctx, data)
		if err != nil {
			if errors.Is(err, domain.ErrCustomerAlreadyExists) {
				res.Skipped = append(res.Skipped, RowError{Line: line, Email: row.Email, Reason: "email already taken"})
				continue
			}
			return res, fmt.Errorf("line %d: create customer %q: %w", line, row.Email, err)
		}
		res.Imported++
		i.logger.Debug("customer imported", zap.Int("line", line), zap.String("uuid", created.UUID))
	}

	i.logger.Info("import finished", zap.Int("imported", res.Imported), zap.Int("skipped", len(res.Skipped)))
	return res, nil
}

func (i *CSVImporter) toData(row csvRow) (domain.CustomerData, string) {
	if err := i.validate.Struct(row); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			var reasons []string
			for _, fe := range verrs {
				reasons = append(reasons, fmt.Sprintf("%s failed %s", strings.ToLower(fe.Field()), fe.Tag()))
			}
			return domain.CustomerData{}, strings.Join(reasons, "; ")
		}
		return domain.CustomerData{}, err.Error()
	}

	data := domain.CustomerData{
		Name:    row.Name,
		Email:   row.Email,
		Phone:   optional(row.Phone),
		Address: optional(row.Address),
		Company: optional(row.Company),
		Status:  domain.CustomerStatus(row.Status),
	}
	if row.Metadata != "" {
		if err := json.Unmarshal([]byte(row.Metadata), &data.Metadata); err != nil {
			return domain.CustomerData{}, "metadata must be a JSON object"
		}
	}
	return data, ""
}

func headerIndex(headers []string) map[string]int {
	idx := make(map[string]int, len(headers))
	for i, h := range headers {
		idx[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))] = i
	}
	return idx
}

func parseRow(record []string, index map[string]int) csvRow {
	return csvRow{
		Name:     pick(record, index, "name"),
		Email:    pick(record, index, "email"),
		Phone:    pick(record, index, "phone"),
		Address:  pick(record, index, "address"),
		Company:  pick(record, index, "company"),
		Status:   strings.ToLower(pick(record, index, "status")),
		Metadata: pick(record, index, "metadata"),
	}
}

func pick(record []string, index map[string]int, key string) string {
	pos, ok := index[key]
	if !ok || pos >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[pos])
}

func optional(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}

func blank(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
