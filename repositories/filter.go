package repositories

import (
	"reflect"
	"sort"
	"strings"

	"newsroom-cms/models"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// flagsColumn holds the named boolean flags of a document.
const flagsColumn = "filters"

// Filter selects documents. Unless Status says otherwise only active
// documents match.
type Filter struct {
	// Equals matches column = value. Slice values match column IN (values).
	Equals map[string]interface{}
	// NotIn excludes documents whose column is one of the values.
	NotIn map[string][]string
	// Flags matches named flags inside the filters document.
	Flags map[string]bool
	// Contains matches a case-insensitive substring.
	Contains map[string]string
	// Status is "" for active documents, a concrete status, or models.StatusAny.
	Status string
}

// ByID matches a single document.
func ByID(id string) Filter {
	return Filter{Equals: map[string]interface{}{"id": id}}
}

// ByIDs matches any of the given documents. An empty list matches nothing.
func ByIDs(ids []string) Filter {
	if ids == nil {
		ids = []string{}
	}
	return Filter{Equals: map[string]interface{}{"id": ids}}
}

// Exclude returns a copy of f that skips the given ids.
func (f Filter) Exclude(ids ...string) Filter {
	if len(ids) == 0 {
		return f
	}
	out := f
	out.NotIn = make(map[string][]string, len(f.NotIn)+1)
	for k, v := range f.NotIn {
		out.NotIn[k] = v
	}
	out.NotIn["id"] = append(append([]string{}, out.NotIn["id"]...), ids...)
	return out
}

// Scope applies the filter to a gorm query.
func (f Filter) Scope(db *gorm.DB) *gorm.DB {
	switch f.Status {
	case "":
		db = db.Where(clause.Eq{Column: clause.Column{Name: "status"}, Value: models.StatusActive})
	case models.StatusAny:
	default:
		db = db.Where(clause.Eq{Column: clause.Column{Name: "status"}, Value: f.Status})
	}

	for _, col := range sortedKeys(f.Equals) {
		value := f.Equals[col]
		if values, ok := asList(value); ok {
			if len(values) == 0 {
				db = db.Where("1 = 0")
				continue
			}
			db = db.Where(clause.IN{Column: clause.Column{Name: col}, Values: values})
			continue
		}
		db = db.Where(clause.Eq{Column: clause.Column{Name: col}, Value: value})
	}

	for _, col := range sortedKeys(f.NotIn) {
		values := f.NotIn[col]
		if len(values) == 0 {
			continue
		}
		list := make([]interface{}, len(values))
		for i, v := range values {
			list[i] = v
		}
		db = db.Where(clause.Not(clause.IN{Column: clause.Column{Name: col}, Values: list}))
	}

	for _, flag := range sortedKeys(f.Flags) {
		db = db.Where(datatypes.JSONQuery(flagsColumn).Equals(f.Flags[flag], flag))
	}

	for _, col := range sortedKeys(f.Contains) {
		pattern := "%" + strings.ToLower(f.Contains[col]) + "%"
		db = db.Where(clause.Expr{SQL: "LOWER(?) LIKE ?", Vars: []interface{}{clause.Column{Name: col}, pattern}})
	}
	return db
}

func asList(value interface{}) ([]interface{}, bool) {
	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Slice || rv.Type().Elem().Kind() == reflect.Uint8 {
		return nil, false
	}
	out := make([]interface{}, rv.Len())
	for i := 0; i < rv.Len(); i++ {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// SortField orders results by a column.
type SortField struct {
	Column string
	Desc   bool
}

// FindOptions shapes a Find call. A zero Limit means no limit.
type FindOptions struct {
	Select []string
	Sort   []SortField
	Skip   int
	Limit  int
}
