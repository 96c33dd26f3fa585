package datarecording

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"

	"github.com/fatih/structs"
)

// ErrUnmappedTable is returned when a table is queried before MapTable.
var ErrUnmappedTable = errors.New("datarecording: table is not mapped")

// QueryParams narrows and orders the rows of a query.
type QueryParams struct {
	// Where is a filter without the WHERE keyword, e.g. "Step > ?".
	Where string

	// Args fill the placeholders of Where.
	Args []any

	// Limit caps the number of rows returned. 0 returns every row.
	Limit int

	// Offset skips rows. It only applies together with Limit.
	Offset int

	// OrderBy lists sort columns without the ORDER BY keywords.
	OrderBy string
}

// DataReader reads tables written by a DataRecorder back into structs.
type DataReader interface {
	// MapTable binds a table to the struct type of sampleEntry. Columns are
	// matched to fields by name.
	MapTable(tableName string, sampleEntry any)

	// ListTables returns the mapped tables in name order.
	ListTables() []string

	// Query returns pointers to entries of the mapped type together with the
	// number of rows matching params.Where, regardless of Limit.
	Query(ctx context.Context, tableName string, params QueryParams) (
		results []any,
		totalCount int,
		err error,
	)

	// Close closes the underlying database.
	Close() error
}

// NewReader opens a recording file for reading. The file is only touched by
// the first query, so a reader may be opened before its writer flushes.
func NewReader(dbFilename string) (DataReader, error) {
	db, err := sql.Open("sqlite3", dbFilename)
	if err != nil {
		return nil, fmt.Errorf("datarecording: open %s: %w", dbFilename, err)
	}

	return NewReaderWithDB(db), nil
}

// NewReaderWithDB creates a DataReader over an open database.
func NewReaderWithDB(db *sql.DB) DataReader {
	return &sqliteReader{
		db:       db,
		mappings: make(map[string]tableMapping),
	}
}

// tableMapping knows which struct field receives which column.
type tableMapping struct {
	entryType reflect.Type
	fieldOf   map[string]int
}

func newTableMapping(sampleEntry any) tableMapping {
	entryType := reflect.TypeOf(sampleEntry)
	if entryType.Kind() == reflect.Pointer {
		entryType = entryType.Elem()
	}

	m := tableMapping{
		entryType: entryType,
		fieldOf:   make(map[string]int),
	}

	for _, name := range structs.Names(reflect.New(entryType).Interface()) {
		f, _ := entryType.FieldByName(name)
		if f.IsExported() {
			m.fieldOf[name] = f.Index[0]
		}
	}

	return m
}

// scanTargets allocates a new entry and the destinations for one row. Columns
// without a field are read and dropped.
func (m tableMapping) scanTargets(columns []string) (any, []any) {
	entry := reflect.New(m.entryType)
	value := entry.Elem()

	targets := make([]any, len(columns))
	for i, col := range columns {
		idx, ok := m.fieldOf[col]
		if !ok {
			targets[i] = new(any)
			continue
		}

		targets[i] = value.Field(idx).Addr().Interface()
	}

	return entry.Interface(), targets
}

// selectStatement renders the SQL of one Query call.
type selectStatement struct {
	table  string
	params QueryParams
}

func (s selectStatement) where(b *strings.Builder) {
	if s.params.Where != "" {
		b.WriteString(" WHERE ")
		b.WriteString(s.params.Where)
	}
}

func (s selectStatement) countSQL() string {
	var b strings.Builder

	fmt.Fprintf(&b, "SELECT COUNT(*) FROM %q", s.table)
	s.where(&b)

	return b.String()
}

func (s selectStatement) rowsSQL() string {
	var b strings.Builder

	fmt.Fprintf(&b, "SELECT * FROM %q", s.table)
	s.where(&b)

	if s.params.OrderBy != "" {
		b.WriteString(" ORDER BY ")
		b.WriteString(s.params.OrderBy)
	}

	if s.params.Limit > 0 {
		fmt.Fprintf(&b, " LIMIT %d", s.params.Limit)

		if s.params.Offset > 0 {
			fmt.Fprintf(&b, " OFFSET %d", s.params.Offset)
		}
	}

	return b.String()
}

type sqliteReader struct {
	db *sql.DB

	lock     sync.RWMutex
	mappings map[string]tableMapping
}

func (r *sqliteReader) MapTable(tableName string, sampleEntry any) {
	r.lock.Lock()
	defer r.lock.Unlock()

	r.mappings[tableName] = newTableMapping(sampleEntry)
}

func (r *sqliteReader) ListTables() []string {
	r.lock.RLock()
	defer r.lock.RUnlock()

	tables := make([]string, 0, len(r.mappings))
	for name := range r.mappings {
		tables = append(tables, name)
	}

	sort.Strings(tables)

	return tables
}

func (r *sqliteReader) Query(
	ctx context.Context,
	tableName string,
	params QueryParams,
) ([]any, int, error) {
	r.lock.RLock()
	mapping, ok := r.mappings[tableName]
	r.lock.RUnlock()

	if !ok {
		return nil, 0, fmt.Errorf("%w: %s", ErrUnmappedTable, tableName)
	}

	stmt := selectStatement{table: tableName, params: params}

	var total int
	err := r.db.QueryRowContext(ctx, stmt.countSQL(), params.Args...).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("datarecording: count %s: %w", tableName, err)
	}

	rows, err := r.db.QueryContext(ctx, stmt.rowsSQL(), params.Args...)
	if err != nil {
		return nil, 0, fmt.Errorf("datarecording: query %s: %w", tableName, err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, 0, err
	}

	results := make([]any, 0, total)
	for rows.Next() {
		entry, targets := mapping.scanTargets(columns)
		if err := rows.Scan(targets...); err != nil {
			return nil, 0, fmt.Errorf("datarecording: scan %s: %w", tableName, err)
		}

		results = append(results, entry)
	}

	return results, total, rows.Err()
}

func (r *sqliteReader) Close() error {
	return r.db.Close()
}

// readAll maps a table to T and returns every row in the given order.
func readAll[T any](
	ctx context.Context,
	r DataReader,
	tableName, orderBy string,
) ([]T, error) {
	var sample T
	r.MapTable(tableName, sample)

	rows, _, err := r.Query(ctx, tableName, QueryParams{OrderBy: orderBy})
	if err != nil {
		return nil, err
	}

	entries := make([]T, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, *row.(*T))
	}

	return entries, nil
}
