package storage

import (
	"gorm.io/gorm"
)

// ErrRecordNotFound is returned by every repository lookup that finds nothing.
// It aliases GORM's sentinel so the in-memory store can return the same value.
var ErrRecordNotFound = gorm.ErrRecordNotFound

// ErrDuplicatedKey is returned when a unique constraint rejects an insert.
var ErrDuplicatedKey = gorm.ErrDuplicatedKey

// PageQuery is a resolved offset/limit window over rows ordered by
// (created_at, id). Limit 0 means unbounded.
type PageQuery struct {
	Offset int
	Limit  int
	Desc   bool
}

// OrderClause orders by creation time with the id as tie-breaker, so equal
// timestamps still partition deterministically across pages.
func (q PageQuery) OrderClause() string {
	if q.Desc {
		return "created_at DESC, id DESC"
	}
	return "created_at ASC, id ASC"
}

func (q PageQuery) apply(db *gorm.DB) *gorm.DB {
	db = db.Order(q.OrderClause())
	if q.Offset < 0 {
		// an overflowed window is past the end, never page one
		return db.Where("1 = 0")
	}
	if q.Offset > 0 {
		db = db.Offset(q.Offset)
	}
	if q.Limit > 0 {
		db = db.Limit(q.Limit)
	}
	return db
}

// countRow is the scan target for GROUP BY parent counts.
type countRow struct {
	ParentID string
	Total    int64
}

func countsToMap(rows []countRow) map[string]int64 {
	out := make(map[string]int64, len(rows))
	for _, row := range rows {
		out[row.ParentID] = row.Total
	}
	return out
}
