package knowledge

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pageza/nutrichat/backend/internal/models"
)

// FileSource reads the knowledge table from a CSV file on disk.
type FileSource struct {
	Path string
}

func (f FileSource) String() string {
	return f.Path
}

// Records opens and parses the CSV file.
func (f FileSource) Records(_ context.Context) ([]models.FoodRecord, error) {
	file, err := os.Open(f.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrSourceNotFound, f.Path)
		}
		return nil, fmt.Errorf("failed to open knowledge file: %w", err)
	}
	defer file.Close()

	return ParseCSV(file)
}

// ParseCSV reads knowledge records from CSV data with a header row.
// Columns may appear in any order and extra columns are ignored.
func ParseCSV(r io.Reader) ([]models.FoodRecord, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("%w: empty file, expected header %s", ErrMissingColumns, strings.Join(models.RequiredColumns, ","))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	positions := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		if _, dup := positions[name]; !dup {
			positions[name] = i
		}
	}

	var missing []string
	for _, col := range models.RequiredColumns {
		if _, ok := positions[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumns, strings.Join(missing, ", "))
	}

	var records []models.FoodRecord
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedRow, err)
		}

		cell := func(col string) (string, error) {
			i := positions[col]
			if i >= len(row) {
				line, _ := reader.FieldPos(0)
				return "", fmt.Errorf("%w: line %d has no %s value", ErrMalformedRow, line, col)
			}
			return strings.TrimSpace(row[i]), nil
		}

		var rec models.FoodRecord
		if rec.FoodName, err = cell(models.ColumnFoodName); err != nil {
			return nil, err
		}
		if rec.Condition, err = cell(models.ColumnCondition); err != nil {
			return nil, err
		}
		if rec.Recommendation, err = cell(models.ColumnRecommendation); err != nil {
			return nil, err
		}
		if rec.Explanation, err = cell(models.ColumnExplanation); err != nil {
			return nil, err
		}
		line, _ := reader.FieldPos(0)
		if err := requireKey(rec, fmt.Sprintf("line %d", line)); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}

	return records, nil
}

// requireKey rejects a record with a blank food name or condition.
// A blank food name is a substring of every query and would shadow real foods.
func requireKey(rec models.FoodRecord, where string) error {
	switch {
	case rec.FoodName == "":
		return fmt.Errorf("%w: %s has no %s value", ErrMalformedRow, where, models.ColumnFoodName)
	case rec.Condition == "":
		return fmt.Errorf("%w: %s has no %s value", ErrMalformedRow, where, models.ColumnCondition)
	}
	return nil
}
