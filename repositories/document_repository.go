package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"newsroom-cms/models"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrDuplicate reports an insert that collided with a unique index.
var ErrDuplicate = errors.New("duplicate key")

// IsDuplicate reports whether err, or any error it wraps, is ErrDuplicate.
func IsDuplicate(err error) bool {
	return errors.Is(err, ErrDuplicate)
}

// DocumentRepository is the store adapter every resource service is built on.
type DocumentRepository[T any] interface {
	Find(ctx context.Context, filter Filter, opts FindOptions) ([]T, error)
	// FindOne returns nil, nil when nothing matches.
	FindOne(ctx context.Context, filter Filter) (*T, error)
	Insert(ctx context.Context, doc *T) error
	// Save persists every field of an active document and reports how many
	// rows matched.
	Save(ctx context.Context, doc *T) (int64, error)
	// UpdateMany sets columns and unsets columns or "column.key" JSON paths on
	// every matching document.
	UpdateMany(ctx context.Context, filter Filter, set map[string]interface{}, unset []string) (models.UpdateCount, error)
}

type documentRepository[T any] struct {
	db *gorm.DB
}

func NewDocumentRepository[T any](db *gorm.DB) DocumentRepository[T] {
	return &documentRepository[T]{db: db}
}

func (r *documentRepository[T]) Find(ctx context.Context, filter Filter, opts FindOptions) ([]T, error) {
	query := r.db.WithContext(ctx).Model(new(T)).Scopes(filter.Scope)
	if len(opts.Select) > 0 {
		query = query.Select(opts.Select)
	}
	for _, s := range opts.Sort {
		query = query.Order(clause.OrderByColumn{Column: clause.Column{Name: s.Column}, Desc: s.Desc})
	}
	if opts.Skip > 0 {
		query = query.Offset(opts.Skip)
	}
	if opts.Limit > 0 {
		query = query.Limit(opts.Limit)
	}

	var docs []T
	if err := query.Find(&docs).Error; err != nil {
		return nil, fmt.Errorf("find documents: %w", err)
	}
	return docs, nil
}

func (r *documentRepository[T]) FindOne(ctx context.Context, filter Filter) (*T, error) {
	var doc T
	err := r.db.WithContext(ctx).Model(new(T)).Scopes(filter.Scope).Take(&doc).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("find document: %w", err)
	}
	return &doc, nil
}

func (r *documentRepository[T]) Insert(ctx context.Context, doc *T) error {
	if err := r.db.WithContext(ctx).Create(doc).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("insert document: %w", ErrDuplicate)
		}
		return fmt.Errorf("insert document: %w", err)
	}
	return nil
}

func (r *documentRepository[T]) Save(ctx context.Context, doc *T) (int64, error) {
	res := r.db.WithContext(ctx).Model(doc).
		Where(clause.Eq{Column: clause.Column{Name: "status"}, Value: models.StatusActive}).
		Select("*").Omit("id", "created_at").
		Updates(doc)
	if res.Error != nil {
		return 0, fmt.Errorf("save document: %w", res.Error)
	}
	return res.RowsAffected, nil
}

func (r *documentRepository[T]) UpdateMany(ctx context.Context, filter Filter, set map[string]interface{}, unset []string) (models.UpdateCount, error) {
	var count models.UpdateCount
	db := r.db.WithContext(ctx)

	if err := db.Model(new(T)).Scopes(filter.Scope).Count(&count.Matched).Error; err != nil {
		return count, fmt.Errorf("count documents: %w", err)
	}
	if count.Matched == 0 || (len(set) == 0 && len(unset) == 0) {
		return count, nil
	}

	assignments := make(map[string]interface{}, len(set)+len(unset))
	changed := make([]clause.Expression, 0, len(set)+len(unset))

	for _, col := range sortedKeys(set) {
		value := set[col]
		assignments[col] = value
		column := clause.Column{Name: col}
		changed = append(changed, clause.Expr{
			SQL:  "(? <> ? OR ? IS NULL)",
			Vars: []interface{}{column, value, column},
		})
	}

	jsonKeys := map[string][]string{}
	for _, path := range unset {
		col, key, nested := strings.Cut(path, ".")
		if !nested {
			assignments[col] = gorm.Expr("NULL")
			changed = append(changed, clause.Expr{SQL: "? IS NOT NULL", Vars: []interface{}{clause.Column{Name: col}}})
			continue
		}
		jsonKeys[col] = append(jsonKeys[col], key)
		changed = append(changed, datatypes.JSONQuery(col).HasKey(key))
	}
	for _, col := range sortedKeys(jsonKeys) {
		assignments[col] = r.jsonRemove(col, jsonKeys[col])
	}

	res := db.Model(new(T)).Scopes(filter.Scope).Where(clause.Or(changed...)).Updates(assignments)
	if res.Error != nil {
		return count, fmt.Errorf("update documents: %w", res.Error)
	}
	count.Modified = res.RowsAffected
	return count, nil
}

// jsonRemove builds the dialect's expression that drops keys from a JSON column.
func (r *documentRepository[T]) jsonRemove(col string, keys []string) clause.Expr {
	column := clause.Column{Name: col}
	if r.db.Dialector.Name() == "postgres" {
		sql := "?"
		vars := []interface{}{column}
		for _, key := range keys {
			sql += " - ?::text"
			vars = append(vars, key)
		}
		return gorm.Expr(sql, vars...)
	}

	var sb strings.Builder
	sb.WriteString("JSON_REMOVE(?")
	vars := []interface{}{column}
	for _, key := range keys {
		sb.WriteString(", ?")
		vars = append(vars, "$."+key)
	}
	sb.WriteString(")")
	return gorm.Expr(sb.String(), vars...)
}
