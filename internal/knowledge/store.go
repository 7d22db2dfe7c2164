// Package knowledge loads the food/condition table and answers lookups against it.
//
// A Store is built once at startup and never mutated, so it is safe to share
// between goroutines without locking.
package knowledge

import (
	"context"
	"sort"

	"github.com/pageza/nutrichat/backend/internal/models"
)

// Source yields the rows of a knowledge table in load order.
type Source interface {
	Records(ctx context.Context) ([]models.FoodRecord, error)
	String() string
}

type recordKey struct {
	food      string
	condition string
}

// Store is an immutable, ordered view of the knowledge table.
type Store struct {
	records    []models.FoodRecord
	foods      []string
	conditions []string
	index      map[recordKey]int
}

// Load reads every record from src and indexes it.
func Load(ctx context.Context, src Source) (*Store, error) {
	records, err := src.Records(ctx)
	if err != nil {
		return nil, loadErr(src.String(), err)
	}
	return New(records), nil
}

// New indexes records. Later duplicates of a (food, condition) pair are ignored.
func New(records []models.FoodRecord) *Store {
	s := &Store{
		records: make([]models.FoodRecord, len(records)),
		index:   make(map[recordKey]int, len(records)),
	}
	copy(s.records, records)

	seenFood := make(map[string]struct{})
	seenCondition := make(map[string]struct{})
	for i, r := range s.records {
		k := recordKey{food: r.FoodName, condition: r.Condition}
		if _, ok := s.index[k]; !ok {
			s.index[k] = i
		}
		if _, ok := seenFood[r.FoodName]; !ok {
			seenFood[r.FoodName] = struct{}{}
			s.foods = append(s.foods, r.FoodName)
		}
		if _, ok := seenCondition[r.Condition]; !ok {
			seenCondition[r.Condition] = struct{}{}
			s.conditions = append(s.conditions, r.Condition)
		}
	}
	sort.Strings(s.conditions)
	return s
}

// DistinctFoodNames returns each food name once, in first-appearance order.
// The order is what the food matcher iterates, so it must stay stable.
func (s *Store) DistinctFoodNames() []string {
	out := make([]string, len(s.foods))
	copy(out, s.foods)
	return out
}

// DistinctConditions returns the sorted unique conditions.
func (s *Store) DistinctConditions() []string {
	out := make([]string, len(s.conditions))
	copy(out, s.conditions)
	return out
}

// Lookup finds the record for an exact, case-sensitive (food, condition) pair.
func (s *Store) Lookup(foodName, condition string) (models.FoodRecord, bool) {
	i, ok := s.index[recordKey{food: foodName, condition: condition}]
	if !ok {
		return models.FoodRecord{}, false
	}
	return s.records[i], true
}

// Len returns the number of loaded records.
func (s *Store) Len() int {
	return len(s.records)
}
