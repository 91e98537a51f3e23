package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"fleet_tracker/internal/apperr"
	"fleet_tracker/internal/models"
)

const uniqueViolation = "23505"

// GormStore implements Store on top of a GORM connection.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) Transaction(ctx context.Context, fn func(tx Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormStore{db: tx})
	})
}

func (s *GormStore) NextSequence(ctx context.Context, name string) (int64, error) {
	var seq models.Sequence
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&models.Sequence{Name: name}).Error; err != nil {
			return err
		}
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("name = ?", name).First(&seq).Error; err != nil {
			return err
		}
		seq.Value++
		return tx.Model(&seq).Update("value", seq.Value).Error
	})
	if err != nil {
		return 0, wrap("next sequence "+name, err)
	}
	return seq.Value, nil
}

// wrap turns driver errors into apperr kinds. Unique violations become conflicts.
func wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	if isUniqueViolation(err) {
		return &apperr.Error{Kind: apperr.ErrConflict, Msg: op, Err: err}
	}
	return apperr.Persistence(op, err)
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return true
	}
	return errors.Is(err, gorm.ErrDuplicatedKey)
}

// first loads a single row into dest, reporting a missing row as apperr.ErrNotFound.
func first(q *gorm.DB, dest any, what string, key any) error {
	err := q.First(dest).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound("%s %v not found", what, key)
	}
	return wrap(fmt.Sprintf("load %s %v", what, key), err)
}

// deleteOne removes rows matching the query and reports zero rows as apperr.ErrNotFound.
func deleteOne(q *gorm.DB, model any, what string, key any) error {
	res := q.Delete(model)
	if res.Error != nil {
		return wrap(fmt.Sprintf("delete %s %v", what, key), res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("%s %v not found", what, key)
	}
	return nil
}

func count(q *gorm.DB, op string) (int64, error) {
	var n int64
	if err := q.Count(&n).Error; err != nil {
		return 0, wrap(op, err)
	}
	return n, nil
}
