package models

// TransactionCounter backs sequential transaction number generation. A single
// row is seeded by migration and incremented atomically per settlement.
type TransactionCounter struct {
	ID    int   `gorm:"column:id;primaryKey"`
	Value int64 `gorm:"column:value;not null"`
}
