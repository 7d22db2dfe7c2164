package knowledge

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/pageza/nutrichat/backend/internal/models"
)

// DefaultTable is the table read when a database source does not name one.
const DefaultTable = "foods"

var tableColumns = []string{"food_name", "condition", "recommendation", "explanation"}

// TableSource reads the knowledge table from a SQL database through gorm.
// Rows are ordered by id when the table has one, which keeps load order stable.
type TableSource struct {
	DB    *gorm.DB
	Table string

	// owned is set when the source opened DB itself and must close it.
	owned bool
	label string
}

func (t *TableSource) String() string {
	if t.label != "" {
		return t.label + "#" + t.table()
	}
	return "table " + t.table()
}

func (t *TableSource) table() string {
	if t.Table == "" {
		return DefaultTable
	}
	return t.Table
}

// Records selects every row of the table.
func (t *TableSource) Records(ctx context.Context) ([]models.FoodRecord, error) {
	db := t.DB.WithContext(ctx)
	table := t.table()

	migrator := db.Migrator()
	if !migrator.HasTable(table) {
		return nil, fmt.Errorf("%w: table %s", ErrSourceNotFound, table)
	}

	var missing []string
	for _, col := range tableColumns {
		if !migrator.HasColumn(table, col) {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumns, strings.Join(missing, ", "))
	}

	query := db.Table(table).Select(tableColumns)
	if migrator.HasColumn(table, "id") {
		query = query.Order("id")
	}

	var records []models.FoodRecord
	if err := query.Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", table, err)
	}

	for i := range records {
		records[i].FoodName = strings.TrimSpace(records[i].FoodName)
		records[i].Condition = strings.TrimSpace(records[i].Condition)
		records[i].Recommendation = strings.TrimSpace(records[i].Recommendation)
		records[i].Explanation = strings.TrimSpace(records[i].Explanation)
		if err := requireKey(records[i], fmt.Sprintf("%s row %d", table, i+1)); err != nil {
			return nil, err
		}
	}
	return records, nil
}

// Close releases the database connection if the source opened it.
func (t *TableSource) Close() error {
	if !t.owned || t.DB == nil {
		return nil
	}
	sqlDB, err := t.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
