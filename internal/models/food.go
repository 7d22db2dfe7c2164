package models

// FoodRecord is one row of the food/condition knowledge table.
// A food appears once per condition it has advice for.
type FoodRecord struct {
	ID             uint   `gorm:"primaryKey" json:"-"`
	FoodName       string `gorm:"column:food_name;size:100;not null;index" json:"food_name"`
	Condition      string `gorm:"column:condition;size:100;not null;index" json:"condition"`
	Recommendation string `gorm:"column:recommendation;size:50;not null" json:"recommendation"`
	Explanation    string `gorm:"column:explanation;type:text" json:"explanation"`
}

func (FoodRecord) TableName() string {
	return "foods"
}

// Knowledge table column names, as they appear in CSV headers.
const (
	ColumnFoodName       = "FoodName"
	ColumnCondition      = "Condition"
	ColumnRecommendation = "Recommendation"
	ColumnExplanation    = "Explanation"
)

// RequiredColumns lists the CSV header columns every knowledge table must have.
var RequiredColumns = []string{
	ColumnFoodName,
	ColumnCondition,
	ColumnRecommendation,
	ColumnExplanation,
}
