// Package option holds composable query modifiers for the generic store.
package option

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type QueryOption interface {
	Apply(db *gorm.DB) *gorm.DB
}

type queryFunc func(db *gorm.DB) *gorm.DB

func (f queryFunc) Apply(db *gorm.DB) *gorm.DB { return f(db) }

// Where adds a raw condition, e.g. Where("timestamp >= ?", from).
func Where(query string, args ...any) QueryOption {
	return queryFunc(func(db *gorm.DB) *gorm.DB {
		return db.Where(query, args...)
	})
}

func Limit(n int) QueryOption {
	return queryFunc(func(db *gorm.DB) *gorm.DB {
		if n <= 0 {
			return db
		}
		return db.Limit(n)
	})
}

func Offset(n int) QueryOption {
	return queryFunc(func(db *gorm.DB) *gorm.DB {
		if n <= 0 {
			return db
		}
		return db.Offset(n)
	})
}

// Preload eagerly loads the named association.
func Preload(association string, args ...any) QueryOption {
	return queryFunc(func(db *gorm.DB) *gorm.DB {
		return db.Preload(association, args...)
	})
}

// OrderByColumn orders by a column name quoted for the active dialect.
func OrderByColumn(column string, desc bool) QueryOption {
	return queryFunc(func(db *gorm.DB) *gorm.DB {
		return db.Order(clause.OrderByColumn{Column: clause.Column{Name: column}, Desc: desc})
	})
}
