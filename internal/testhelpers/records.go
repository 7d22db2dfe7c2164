// Package testhelpers provides fixtures shared by package tests.
package testhelpers

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/pageza/nutrichat/backend/internal/models"
)

// SampleRecords returns a small knowledge table covering two conditions.
func SampleRecords() []models.FoodRecord {
	return []models.FoodRecord{
		{FoodName: "Apples", Condition: "Hypertension", Recommendation: "Recommended", Explanation: "high in potassium"},
		{FoodName: "Apples", Condition: "Diabetes", Recommendation: "In moderation", Explanation: "contains natural sugars"},
		{FoodName: "Bacon", Condition: "Hypertension", Recommendation: "Avoid", Explanation: "very high in sodium"},
		{FoodName: "Pineapple", Condition: "Diabetes", Recommendation: "In moderation", Explanation: "high glycemic fruit"},
		{FoodName: "Oatmeal", Condition: "Diabetes", Recommendation: "Recommended", Explanation: "rich in soluble fiber"},
	}
}

// CSVContent renders records as CSV with the standard header.
func CSVContent(t *testing.T, records []models.FoodRecord) string {
	t.Helper()
	path := WriteCSV(t, records)
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read csv: %v", err)
	}
	return string(data)
}

// WriteCSV writes records to a temporary CSV file and returns its path.
func WriteCSV(t *testing.T, records []models.FoodRecord) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "foods.csv")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create csv: %v", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(models.RequiredColumns); err != nil {
		t.Fatalf("failed to write csv header: %v", err)
	}
	for _, r := range records {
		if err := w.Write([]string{r.FoodName, r.Condition, r.Recommendation, r.Explanation}); err != nil {
			t.Fatalf("failed to write csv row: %v", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		t.Fatalf("failed to flush csv: %v", err)
	}
	return path
}

// WriteFile writes raw content to a temporary file and returns its path.
func WriteFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}
