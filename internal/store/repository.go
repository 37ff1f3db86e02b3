package store

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"batchbook/internal/exceptions"
)

// Filter restricts a query to rows whose columns equal the given values.
type Filter map[string]any

// Fields is a partial column update.
type Fields map[string]any

// Order sorts a list query by one column.
type Order struct {
	Column string
	Desc   bool
}

// Repository is a generic accessor for one table. Errors are reported as
// exceptions types: NotFound for missing rows, Backend for storage failures.
type Repository[T any] struct {
	db        *gorm.DB
	resource  string
	plural    string
	immutable []string
}

// NewRepository builds a Repository for T. Columns listed in immutable are
// rejected by Update.
func NewRepository[T any](db *gorm.DB, resource, plural string, immutable ...string) *Repository[T] {
	return &Repository[T]{
		db:        db,
		resource:  resource,
		plural:    plural,
		immutable: append([]string{"id"}, immutable...),
	}
}

func (r *Repository[T]) scoped(ctx context.Context, filter Filter) *gorm.DB {
	query := r.db.WithContext(ctx).Model(new(T))
	for _, column := range slices.Sorted(maps.Keys(filter)) {
		query = query.Where(clause.Eq{Column: clause.Column{Name: column}, Value: filter[column]})
	}
	return query
}

// List returns every row matching filter, sorted by order.
func (r *Repository[T]) List(ctx context.Context, filter Filter, order ...Order) ([]T, error) {
	query := r.scoped(ctx, filter)
	for _, o := range order {
		query = query.Order(clause.OrderByColumn{Column: clause.Column{Name: o.Column}, Desc: o.Desc})
	}

	var rows []T
	if err := query.Find(&rows).Error; err != nil {
		return nil, r.fail("fetch", err)
	}
	return rows, nil
}

// Count returns the number of rows matching filter.
func (r *Repository[T]) Count(ctx context.Context, filter Filter) (int64, error) {
	var count int64
	if err := r.scoped(ctx, filter).Count(&count).Error; err != nil {
		return 0, r.fail("count", err)
	}
	return count, nil
}

// Get loads a single row by id.
func (r *Repository[T]) Get(ctx context.Context, id string) (T, error) {
	return r.GetScoped(ctx, nil, id)
}

// GetScoped loads a row by id that also matches scope.
func (r *Repository[T]) GetScoped(ctx context.Context, scope Filter, id string) (T, error) {
	var row T
	err := r.scoped(ctx, scope).Where(clause.Eq{Column: clause.Column{Name: "id"}, Value: id}).Take(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return row, exceptions.NotFound(r.resource, id)
		}
		return row, r.fail("fetch", err)
	}
	return row, nil
}

// Insert creates row and fills in its server-assigned columns.
func (r *Repository[T]) Insert(ctx context.Context, row *T) error {
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		return r.fail("save", err)
	}
	return nil
}

// InsertMany creates rows in one statement. Identifiers are written back
// into the slice.
func (r *Repository[T]) InsertMany(ctx context.Context, rows []T) error {
	if len(rows) == 0 {
		return nil
	}
	if err := r.db.WithContext(ctx).Create(&rows).Error; err != nil {
		return r.fail("save", err)
	}
	return nil
}

// Update applies fields to the row with id.
func (r *Repository[T]) Update(ctx context.Context, id string, fields Fields) error {
	return r.UpdateScoped(ctx, nil, id, fields)
}

// UpdateScoped applies fields to the row with id only when it also matches
// scope. A row outside the scope is reported as not found.
func (r *Repository[T]) UpdateScoped(ctx context.Context, scope Filter, id string, fields Fields) error {
	for column := range fields {
		if slices.Contains(r.immutable, column) {
			return exceptions.InvalidInput(fmt.Sprintf("%s %s cannot be changed", r.resource, column))
		}
	}
	if len(fields) == 0 {
		return nil
	}

	result := r.scoped(ctx, scope).
		Where(clause.Eq{Column: clause.Column{Name: "id"}, Value: id}).
		Updates(map[string]any(fields))
	if result.Error != nil {
		return r.fail("save", result.Error)
	}
	if result.RowsAffected == 0 {
		return exceptions.NotFound(r.resource, id)
	}
	return nil
}

// DeleteScoped removes rows by id that match scope.
func (r *Repository[T]) DeleteScoped(ctx context.Context, scope Filter, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	if err := r.scoped(ctx, scope).Where("id IN ?", ids).Delete(new(T)).Error; err != nil {
		return r.fail("delete", err)
	}
	return nil
}

func (r *Repository[T]) fail(verb string, err error) error {
	return exceptions.Backend(fmt.Sprintf("Failed to %s %s", verb, r.plural), err)
}
