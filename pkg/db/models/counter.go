package models

// Counter backs the daily number sequences. Rows are incremented with a
// single atomic upsert, never read-then-written, so concurrent creators
// can't mint the same sequence value.
type Counter struct {
	Scope string `gorm:"column:scope;primaryKey"`
	Day   string `gorm:"column:day;primaryKey"`
	Value int64  `gorm:"column:value;not null;default:0"`
}
