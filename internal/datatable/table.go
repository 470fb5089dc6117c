// Package datatable реализует поиск и сортировку строк админских таблиц.
// Производное представление не кешируется: фильтр и сортировка
// пересчитываются из исходных строк при каждом обращении.
package datatable

import (
	"errors"
	"fmt"
	"reflect"
	"slices"
	"strings"
	"time"
)

// EmptyText показывается вместо пустого тела таблицы
const EmptyText = "データが見つかりません"

var ErrNotSortable = errors.New("колонка не сортируется")

type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// ParseDirection всё, кроме desc, считается asc
func ParseDirection(raw string) Direction {
	if strings.EqualFold(strings.TrimSpace(raw), string(Desc)) {
		return Desc
	}
	return Asc
}

type Column struct {
	Key      string `json:"key"`
	Label    string `json:"label"`
	Sortable bool   `json:"sortable"`
}

// FieldFunc возвращает сырое значение поля строки по ключу колонки
type FieldFunc[T any] func(row T, key string) any

type Options[T any] struct {
	Columns      []Column
	SearchFields []string
	Field        FieldFunc[T]
	OnEdit       func(row T)
	OnDelete     func(row T)
	OnCreate     func()
}

type Table[T any] struct {
	opts    Options[T]
	rows    []T
	query   string
	sortKey string
	dir     Direction
}

func New[T any](rows []T, opts Options[T]) *Table[T] {
	return &Table[T]{opts: opts, rows: rows, dir: Asc}
}

// SetRows заменяет исходные строки, поиск и сортировка сохраняются
func (t *Table[T]) SetRows(rows []T) {
	t.rows = rows
}

func (t *Table[T]) Search(query string) {
	t.query = query
}

func (t *Table[T]) Query() string {
	return t.query
}

// ClickHeader повторный клик по текущей колонке меняет направление,
// клик по другой выбирает её по возрастанию. Несортируемые колонки игнорируются.
func (t *Table[T]) ClickHeader(key string) bool {
	if !t.sortable(key) {
		return false
	}

	if t.sortKey == key {
		if t.dir == Asc {
			t.dir = Desc
		} else {
			t.dir = Asc
		}
		return true
	}

	t.sortKey = key
	t.dir = Asc
	return true
}

// SortBy задаёт сортировку напрямую, пустой ключ её снимает
func (t *Table[T]) SortBy(key string, dir Direction) error {
	if key == "" {
		t.sortKey = ""
		t.dir = Asc
		return nil
	}
	if !t.sortable(key) {
		return fmt.Errorf("%s: %w", key, ErrNotSortable)
	}
	t.sortKey = key
	t.dir = dir
	return nil
}

func (t *Table[T]) Sort() (string, Direction) {
	return t.sortKey, t.dir
}

func (t *Table[T]) sortable(key string) bool {
	for _, c := range t.opts.Columns {
		if c.Key == key {
			return c.Sortable
		}
	}
	return false
}

func (t *Table[T]) field(row T, key string) any {
	if t.opts.Field == nil {
		return nil
	}
	return t.opts.Field(row, key)
}

// Rows возвращает отфильтрованные и отсортированные строки
func (t *Table[T]) Rows() []T {
	result := t.filter()
	if t.sortKey == "" {
		return result
	}

	key, dir := t.sortKey, t.dir
	slices.SortStableFunc(result, func(a, b T) int {
		c := compare(t.field(a, key), t.field(b, key))
		if dir == Desc {
			return -c
		}
		return c
	})
	return result
}

func (t *Table[T]) filter() []T {
	query := strings.ToLower(t.query)
	if query == "" {
		return slices.Clone(t.rows)
	}

	result := make([]T, 0, len(t.rows))
	for _, row := range t.rows {
		for _, f := range t.opts.SearchFields {
			if strings.Contains(strings.ToLower(stringify(t.field(row, f))), query) {
				result = append(result, row)
				break
			}
		}
	}
	return result
}

// Edit вызывает обработчик редактирования, если он задан
func (t *Table[T]) Edit(row T) bool {
	if t.opts.OnEdit == nil {
		return false
	}
	t.opts.OnEdit(row)
	return true
}

func (t *Table[T]) Delete(row T) bool {
	if t.opts.OnDelete == nil {
		return false
	}
	t.opts.OnDelete(row)
	return true
}

func (t *Table[T]) Create() bool {
	if t.opts.OnCreate == nil {
		return false
	}
	t.opts.OnCreate()
	return true
}

type HeaderCell struct {
	Column
	Sorted    bool      `json:"sorted"`
	Direction Direction `json:"direction,omitempty"`
}

type RowView[T any] struct {
	Row       T        `json:"row"`
	Cells     []string `json:"cells"`
	CanEdit   bool     `json:"can_edit"`
	CanDelete bool     `json:"can_delete"`
}

type View[T any] struct {
	Columns    []HeaderCell `json:"columns"`
	Rows       []RowView[T] `json:"rows"`
	Searchable bool         `json:"searchable"`
	Query      string       `json:"query"`
	Total      int          `json:"total"`
	CanCreate  bool         `json:"can_create"`
	// Empty выставлен, когда после фильтра не осталось строк
	Empty     bool   `json:"empty"`
	EmptyText string `json:"empty_text,omitempty"`
}

func (t *Table[T]) Render() View[T] {
	view := View[T]{
		Columns:    make([]HeaderCell, 0, len(t.opts.Columns)),
		Rows:       []RowView[T]{},
		Searchable: len(t.opts.SearchFields) > 0,
		Query:      t.query,
		Total:      len(t.rows),
		CanCreate:  t.opts.OnCreate != nil,
	}

	for _, c := range t.opts.Columns {
		cell := HeaderCell{Column: c}
		if c.Sortable && c.Key == t.sortKey {
			cell.Sorted = true
			cell.Direction = t.dir
		}
		view.Columns = append(view.Columns, cell)
	}

	for _, row := range t.Rows() {
		cells := make([]string, len(t.opts.Columns))
		for i, c := range t.opts.Columns {
			cells[i] = stringify(t.field(row, c.Key))
		}
		view.Rows = append(view.Rows, RowView[T]{
			Row:       row,
			Cells:     cells,
			CanEdit:   t.opts.OnEdit != nil,
			CanDelete: t.opts.OnDelete != nil,
		})
	}

	if len(view.Rows) == 0 {
		view.Empty = true
		view.EmptyText = EmptyText
	}

	return view
}

// deref снимает указатели, nil-указатель превращается в nil
func deref(v any) any {
	rv := reflect.ValueOf(v)
	for rv.IsValid() && rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}
	if !rv.IsValid() {
		return nil
	}
	return rv.Interface()
}

func stringify(v any) string {
	v = deref(v)
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case time.Time:
		return x.Format(time.RFC3339)
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprint(x)
	}
}

// compare числа сравниваются численно, строки лексикографически.
// nil меньше любого значения, значения разных типов считаются равными.
func compare(a, b any) int {
	a, b = deref(a), deref(b)
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}

	if ta, ok := a.(time.Time); ok {
		if tb, ok := b.(time.Time); ok {
			return ta.Compare(tb)
		}
		return 0
	}

	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	if fa, ok := number(va); ok {
		if fb, ok := number(vb); ok {
			switch {
			case fa < fb:
				return -1
			case fa > fb:
				return 1
			}
		}
		return 0
	}

	if va.Kind() == reflect.String && vb.Kind() == reflect.String {
		return strings.Compare(va.String(), vb.String())
	}

	if va.Kind() == reflect.Bool && vb.Kind() == reflect.Bool {
		switch {
		case !va.Bool() && vb.Bool():
			return -1
		case va.Bool() && !vb.Bool():
			return 1
		}
	}

	return 0
}

func number(v reflect.Value) (float64, bool) {
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(v.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return float64(v.Uint()), true
	case reflect.Float32, reflect.Float64:
		return v.Float(), true
	}
	return 0, false
}
