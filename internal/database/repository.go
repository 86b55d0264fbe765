package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/publisherradar/sellersync/domain/repository"
	"gorm.io/gorm"
)

// ErrNotFound indicates the requested entity does not exist.
var ErrNotFound = errors.New("entity not found")

// EntityMapper converts between a domain type D and its database model E.
type EntityMapper[D any, E any] interface {
	ToDomain(entity E) D
	ToModel(domain D) E
}

// Repository implements the generic read/delete operations every store
// shares. Stores embed it and add their domain-specific writes on top,
// dropping down to DB() for SQL the option vocabulary cannot express.
type Repository[D any, E any] struct {
	db     Database
	mapper EntityMapper[D, E]
	label  string
}

// NewRepository creates a Repository. The label names the entity in error
// messages.
func NewRepository[D any, E any](db Database, mapper EntityMapper[D, E], label string) Repository[D, E] {
	return Repository[D, E]{db: db, mapper: mapper, label: label}
}

// Find returns all entities matching the options, mapped to domain types.
func (r Repository[D, E]) Find(ctx context.Context, options ...repository.Option) ([]D, error) {
	var entities []E
	session := applyQuery(r.db.Session(ctx).Model(new(E)), options...)
	if err := session.Find(&entities).Error; err != nil {
		return nil, fmt.Errorf("find %s: %w", r.label, err)
	}

	out := make([]D, len(entities))
	for i, e := range entities {
		out[i] = r.mapper.ToDomain(e)
	}
	return out, nil
}

// FindOne returns the first entity matching the options, or ErrNotFound.
func (r Repository[D, E]) FindOne(ctx context.Context, options ...repository.Option) (D, error) {
	var entity E
	err := applyQuery(r.db.Session(ctx), options...).First(&entity).Error
	if err != nil {
		var zero D
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return zero, fmt.Errorf("%w: %s", ErrNotFound, r.label)
		}
		return zero, fmt.Errorf("find one %s: %w", r.label, err)
	}
	return r.mapper.ToDomain(entity), nil
}

// Exists reports whether any entity matches the options.
func (r Repository[D, E]) Exists(ctx context.Context, options ...repository.Option) (bool, error) {
	n, err := r.Count(ctx, options...)
	return n > 0, err
}

// Count returns the number of entities matching the options. Ordering and
// pagination options are ignored.
func (r Repository[D, E]) Count(ctx context.Context, options ...repository.Option) (int64, error) {
	var n int64
	session := applyConditions(r.db.Session(ctx).Model(new(E)), options...)
	if err := session.Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count %s: %w", r.label, err)
	}
	return n, nil
}

// DeleteBy removes all entities matching the options.
func (r Repository[D, E]) DeleteBy(ctx context.Context, options ...repository.Option) error {
	session := applyConditions(r.db.Session(ctx), options...)
	if err := session.Delete(new(E)).Error; err != nil {
		return fmt.Errorf("delete %s: %w", r.label, err)
	}
	return nil
}

// DB returns a GORM session for operations the generic methods do not cover.
func (r Repository[D, E]) DB(ctx context.Context) *gorm.DB {
	return r.db.Session(ctx)
}

// Mapper exposes the entity mapper to the embedding store.
func (r Repository[D, E]) Mapper() EntityMapper[D, E] {
	return r.mapper
}
