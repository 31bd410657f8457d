package model

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"entgo.io/ent/dialect/sql"
)

// TimeLayout is how date/time values are rendered in text dumps.
const TimeLayout = "2006-01-02 15:04:05"

// timeLayouts are accepted when a driver hands dates back as text.
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999",
	TimeLayout,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// Record is one row of an entity, holding every physical column in table
// order.
type Record struct {
	entity  *Entity
	columns []string
	values  []any
}

// NewRecord builds a record from parallel column and value slices.
func NewRecord(e *Entity, columns []string, values []any) *Record {
	return &Record{entity: e, columns: columns, values: values}
}

func (r *Record) Entity() *Entity { return r.entity }

// Columns returns the record's column names in table order.
func (r *Record) Columns() []string {
	out := make([]string, len(r.columns))
	copy(out, r.columns)
	return out
}

// Get returns the raw value of a column.
func (r *Record) Get(col string) (any, bool) {
	for i, c := range r.columns {
		if c == col {
			return r.values[i], true
		}
	}
	return nil, false
}

// Value returns the value of a column or computed attribute.
func (r *Record) Value(name string) (any, error) {
	if v, ok := r.Get(name); ok {
		return v, nil
	}
	if a, ok := r.entity.Attribute(name); ok {
		return a.Value(r)
	}
	return nil, fmt.Errorf("%w: %s.%s", ErrUnknownField, r.entity.Name, name)
}

// Key returns the primary key value.
func (r *Record) Key() any {
	v, _ := r.Get(r.entity.Key)
	return v
}

// String returns a column as text. Null and missing columns give ok=false.
func (r *Record) String(col string) (string, bool) {
	v, ok := r.Get(col)
	if !ok || v == nil {
		return "", false
	}
	return format(v), true
}

// Int returns an integer column. A null value gives nil.
func (r *Record) Int(col string) (*int, error) {
	v, ok := r.Get(col)
	if !ok {
		return nil, fmt.Errorf("%w: %s.%s", ErrUnknownField, r.entity.Name, col)
	}
	var n int
	switch v := v.(type) {
	case nil:
		return nil, nil
	case int64:
		n = int(v)
	case int32:
		n = int(v)
	case int:
		n = v
	case float64:
		if v != float64(int(v)) {
			return nil, fmt.Errorf("%w: %s.%s = %v is not an integer", ErrUnmappedScore, r.entity.Name, col, v)
		}
		n = int(v)
	case string:
		parsed, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return nil, fmt.Errorf("%w: %s.%s = %q is not an integer", ErrUnmappedScore, r.entity.Name, col, v)
		}
		n = parsed
	default:
		return nil, fmt.Errorf("%w: %s.%s has type %T", ErrUnmappedScore, r.entity.Name, col, v)
	}
	return &n, nil
}

// Flag returns a boolean column. Stores without a native boolean type report
// flags as 0/1 integers, which are accepted. A null value gives nil.
func (r *Record) Flag(col string) (*bool, error) {
	v, ok := r.Get(col)
	if !ok {
		return nil, fmt.Errorf("%w: %s.%s", ErrUnknownField, r.entity.Name, col)
	}
	var b bool
	switch v := v.(type) {
	case nil:
		return nil, nil
	case bool:
		b = v
	case int64:
		if v != 0 && v != 1 {
			return nil, fmt.Errorf("%w: flag %s.%s = %d", ErrUnmappedScore, r.entity.Name, col, v)
		}
		b = v == 1
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "t", "true", "y", "yes":
			b = true
		case "0", "f", "false", "n", "no":
			b = false
		default:
			return nil, fmt.Errorf("%w: flag %s.%s = %q", ErrUnmappedScore, r.entity.Name, col, v)
		}
	default:
		return nil, fmt.Errorf("%w: flag %s.%s has type %T", ErrUnmappedScore, r.entity.Name, col, v)
	}
	return &b, nil
}

// Time returns a date/time column. A null value gives nil.
func (r *Record) Time(col string) (*time.Time, error) {
	v, ok := r.Get(col)
	if !ok {
		return nil, fmt.Errorf("%w: %s.%s", ErrUnknownField, r.entity.Name, col)
	}
	switch v := v.(type) {
	case nil:
		return nil, nil
	case time.Time:
		return &v, nil
	case string:
		for _, layout := range timeLayouts {
			if t, err := time.Parse(layout, v); err == nil {
				return &t, nil
			}
		}
		return nil, fmt.Errorf("%s.%s: cannot parse %q as a date", r.entity.Name, col, v)
	default:
		return nil, fmt.Errorf("%s.%s: %T is not a date", r.entity.Name, col, v)
	}
}

// Display returns a column formatted as in Text. Missing columns render as
// None.
func (r *Record) Display(col string) string {
	v, _ := r.Get(col)
	return format(v)
}

// Summary returns the one-line display declared for the record's entity, or
// "<Entity> <key>" when none is declared.
func (r *Record) Summary() (string, error) {
	if r.entity.summary == nil {
		return r.entity.Name + " " + format(r.Key()), nil
	}
	return r.entity.summary(r)
}

// Text renders every physical column as "<column>: <value>\n" in column
// order.
func (r *Record) Text() string {
	var b strings.Builder
	for i, c := range r.columns {
		b.WriteString(c)
		b.WriteString(": ")
		b.WriteString(format(r.values[i]))
		b.WriteByte('\n')
	}
	return b.String()
}

func format(v any) string {
	switch v := v.(type) {
	case nil:
		return "None"
	case bool:
		if v {
			return "True"
		}
		return "False"
	case time.Time:
		return v.Format(TimeLayout)
	case []byte:
		return string(v)
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}

type recordJSON struct {
	Entity    string         `json:"entity"`
	Key       any            `json:"key"`
	Summary   string         `json:"summary,omitempty"`
	Columns   map[string]any `json:"columns"`
	Computed  map[string]any `json:"computed,omitempty"`
	Relations []string       `json:"relations"`
}

func (r *Record) MarshalJSON() ([]byte, error) {
	out := recordJSON{
		Entity:    r.entity.Name,
		Key:       r.Key(),
		Columns:   make(map[string]any, len(r.columns)),
		Relations: r.entity.Relations(),
	}
	// A record that cannot be summarized is still serialized in full.
	if summary, err := r.Summary(); err == nil {
		out.Summary = summary
	}
	for i, c := range r.columns {
		out.Columns[c] = r.values[i]
	}
	for _, a := range r.entity.attrs {
		v, err := a.Value(r)
		if err != nil {
			return nil, err
		}
		if out.Computed == nil {
			out.Computed = map[string]any{}
		}
		out.Computed[a.Name()] = v
	}
	return json.Marshal(out)
}

// scanRecords reads every row into records of e.
func scanRecords(e *Entity, rows *sql.Rows) ([]*Record, error) {
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	var out []*Record
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scan %s: %w", e.Table, err)
		}
		for i, v := range values {
			if b, ok := v.([]byte); ok {
				values[i] = string(b)
			}
		}
		out = append(out, NewRecord(e, cols, values))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", e.Table, err)
	}
	if out == nil {
		out = []*Record{}
	}
	return out, nil
}
