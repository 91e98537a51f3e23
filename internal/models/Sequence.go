package models

// Sequence is a named monotonic counter, e.g. the one behind schedule numbers.
type Sequence struct {
	Name  string `gorm:"primaryKey;size:64"`
	Value int64  `gorm:"not null;default:0"`
}
