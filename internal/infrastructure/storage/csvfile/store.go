// Package csvfile persists the customer record table as a `;`-delimited
// UTF-8 text file with a header row. Loading is deliberately forgiving:
// whatever the file contains, the returned table always matches the declared
// schema. Saving is strict: a failed write is reported and propagated, since
// it means the mutation was not durably committed.
package csvfile

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"crm-engine/internal/domain/customer"
	"crm-engine/internal/pkg/apperrors"

	"github.com/shopspring/decimal"
)

const (
	defaultDataFile = "data.csv"
	delimiter       = ';'

	// Index columns accidentally persisted by spreadsheet tooling show up
	// with this marker in the header and are discarded on load.
	unnamedColumnMarker = "Unnamed:"

	// Legacy files carried a single combined name column.
	legacyNameColumn = "Name"
)

type Store struct {
	path   string
	logger *slog.Logger
}

var _ customer.TableStore = (*Store)(nil)

func NewStore(path string, logger *slog.Logger) *Store {
	if path == "" {
		path = defaultDataFile
	}
	if logger == nil {
		panic("logger cannot be nil")
	}
	return &Store{
		path:   path,
		logger: logger.With(slog.String("component", "CSVFileStore"), slog.String("path", path)),
	}
}

// Load reconstructs the record table from the data file. It never returns an
// error for content problems: unreadable or malformed files are reported and
// an empty declared-schema table is returned instead.
func (s *Store) Load(ctx context.Context) ([]customer.Customer, error) {
	f, err := os.Open(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			s.logger.DebugContext(ctx, "Data file does not exist, starting with empty table")
			return []customer.Customer{}, nil
		}
		s.logger.ErrorContext(ctx, "Error loading data", slog.Any("error", err))
		return []customer.Customer{}, nil
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.Comma = delimiter
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		s.logger.ErrorContext(ctx, "Error parsing data file", slog.Any("error", err))
		return []customer.Customer{}, nil
	}
	if len(records) == 0 {
		return []customer.Customer{}, nil
	}

	table := newRawTable(records[0], records[1:])
	table.dropUnnamedColumns()
	table.splitLegacyName()
	table.normalizeSchema()
	table.dropEmptyRows()

	rows := table.customers()
	s.logger.DebugContext(ctx, "Loaded record table", slog.Int("rows", len(rows)))
	return rows, nil
}

// Save serializes the full table back to the data file, header first, no
// row-index column, overwriting whatever is there.
func (s *Store) Save(ctx context.Context, rows []customer.Customer) error {
	f, err := os.Create(s.path)
	if err != nil {
		s.logger.ErrorContext(ctx, "Error saving data", slog.Any("error", err))
		return apperrors.WrapStorageError(err, fmt.Sprintf("failed to open %s for writing", s.path))
	}

	w := csv.NewWriter(f)
	w.Comma = delimiter

	writeErr := w.Write(customer.Columns())
	for _, row := range rows {
		if writeErr != nil {
			break
		}
		writeErr = w.Write(row.Fields())
	}
	w.Flush()
	if writeErr == nil {
		writeErr = w.Error()
	}
	if closeErr := f.Close(); writeErr == nil {
		writeErr = closeErr
	}
	if writeErr != nil {
		s.logger.ErrorContext(ctx, "Error saving data", slog.Any("error", writeErr))
		return apperrors.WrapStorageError(writeErr, fmt.Sprintf("failed to write %s", s.path))
	}

	s.logger.InfoContext(ctx, "Data successfully saved", slog.Int("rows", len(rows)))
	return nil
}

// rawTable is the pre-normalization view of the file: named columns of string
// cells. All schema repair happens here before rows become Customer values.
type rawTable struct {
	columns []string
	cells   map[string][]string
	length  int
}

func newRawTable(header []string, records [][]string) *rawTable {
	t := &rawTable{
		cells:  make(map[string][]string, len(header)),
		length: len(records),
	}
	for i, name := range header {
		if _, ok := t.cells[name]; ok {
			// Duplicate header: first occurrence wins.
			continue
		}
		col := make([]string, len(records))
		for j, rec := range records {
			if i < len(rec) {
				col[j] = rec[i]
			}
		}
		t.columns = append(t.columns, name)
		t.cells[name] = col
	}
	return t
}

func (t *rawTable) has(name string) bool {
	_, ok := t.cells[name]
	return ok
}

func (t *rawTable) drop(name string) {
	if !t.has(name) {
		return
	}
	delete(t.cells, name)
	kept := t.columns[:0]
	for _, col := range t.columns {
		if col != name {
			kept = append(kept, col)
		}
	}
	t.columns = kept
}

func (t *rawTable) setColumn(name string, values []string) {
	if !t.has(name) {
		t.columns = append(t.columns, name)
	}
	t.cells[name] = values
}

func (t *rawTable) dropUnnamedColumns() {
	for _, name := range append([]string(nil), t.columns...) {
		if strings.Contains(name, unnamedColumnMarker) {
			t.drop(name)
		}
	}
}

// splitLegacyName handles files that predate the First Name/Last Name split:
// the combined Name cell is split on the first space, with everything after
// it (possibly nothing) becoming the last name. The Name column is discarded
// afterwards even when First/Last were already present.
func (t *rawTable) splitLegacyName() {
	if !t.has(legacyNameColumn) {
		return
	}
	if !t.has(customer.ColumnFirstName) || !t.has(customer.ColumnLastName) {
		first := make([]string, t.length)
		last := make([]string, t.length)
		for i, v := range t.cells[legacyNameColumn] {
			parts := strings.SplitN(v, " ", 2)
			first[i] = parts[0]
			if len(parts) == 2 {
				last[i] = parts[1]
			}
		}
		t.setColumn(customer.ColumnFirstName, first)
		t.setColumn(customer.ColumnLastName, last)
	}
	t.drop(legacyNameColumn)
}

// normalizeSchema guarantees the declared column set: absent columns are
// created empty, and typed columns that fail coercion are replaced with
// all-empty columns rather than failing the load.
func (t *rawTable) normalizeSchema() {
	for _, name := range customer.Columns() {
		if !t.has(name) {
			t.setColumn(name, make([]string, t.length))
			continue
		}
		switch name {
		case customer.ColumnCustomerID:
			if !coercible(t.cells[name], func(v string) bool {
				_, err := strconv.ParseInt(v, 10, 64)
				return err == nil
			}) {
				t.cells[name] = make([]string, t.length)
			}
		case customer.ColumnAmount:
			if !coercible(t.cells[name], func(v string) bool {
				_, err := decimal.NewFromString(v)
				return err == nil
			}) {
				t.cells[name] = make([]string, t.length)
			}
		}
	}
}

func coercible(values []string, parses func(string) bool) bool {
	for _, v := range values {
		if v == "" {
			continue
		}
		if !parses(v) {
			return false
		}
	}
	return true
}

// dropEmptyRows removes rows that are empty across every declared column and
// renumbers the remainder contiguously from 0.
func (t *rawTable) dropEmptyRows() {
	keep := make([]int, 0, t.length)
	for i := 0; i < t.length; i++ {
		empty := true
		for _, name := range customer.Columns() {
			if t.cells[name][i] != "" {
				empty = false
				break
			}
		}
		if !empty {
			keep = append(keep, i)
		}
	}
	if len(keep) == t.length {
		return
	}
	for _, name := range customer.Columns() {
		col := make([]string, len(keep))
		for j, i := range keep {
			col[j] = t.cells[name][i]
		}
		t.cells[name] = col
	}
	t.length = len(keep)
}

func (t *rawTable) customers() []customer.Customer {
	ids := t.cells[customer.ColumnCustomerID]
	firsts := t.cells[customer.ColumnFirstName]
	lasts := t.cells[customer.ColumnLastName]
	emails := t.cells[customer.ColumnEmail]
	phones := t.cells[customer.ColumnPhone]
	statuses := t.cells[customer.ColumnStatus]
	amounts := t.cells[customer.ColumnAmount]

	rows := make([]customer.Customer, t.length)
	for i := 0; i < t.length; i++ {
		var id int64
		if ids[i] != "" {
			id, _ = strconv.ParseInt(ids[i], 10, 64)
		}
		amount := decimal.Zero
		if amounts[i] != "" {
			amount, _ = decimal.NewFromString(amounts[i])
		}
		rows[i] = customer.Customer{
			CustomerID: id,
			FirstName:  firsts[i],
			LastName:   lasts[i],
			Email:      emails[i],
			Phone:      phones[i],
			Status:     customer.Status(statuses[i]),
			Amount:     amount,
		}
	}
	return rows
}
