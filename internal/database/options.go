package database

import (
	"github.com/publisherradar/sellersync/domain/repository"
	"gorm.io/gorm"
)

// applyQuery translates a full option set, filters plus ordering and
// pagination, onto a GORM session.
func applyQuery(db *gorm.DB, options ...repository.Option) *gorm.DB {
	q := repository.Build(options...)
	db = applyFilters(db, q)

	for _, ord := range q.Orders() {
		clause := ord.Column() + " ASC"
		if ord.Descending() {
			clause = ord.Column() + " DESC"
		}
		db = db.Order(clause)
	}
	if q.Limit() > 0 {
		db = db.Limit(q.Limit())
	}
	if q.Offset() > 0 {
		db = db.Offset(q.Offset())
	}
	return db
}

// applyConditions translates only the WHERE filters. COUNT queries use this
// so a caller-supplied limit does not distort the count.
func applyConditions(db *gorm.DB, options ...repository.Option) *gorm.DB {
	return applyFilters(db, repository.Build(options...))
}

func applyFilters(db *gorm.DB, q repository.Query) *gorm.DB {
	for _, f := range q.Filters() {
		db = db.Where(f.Clause(), f.Args()...)
	}
	return db
}
