package model

const FoodItemCollection = "FoodItem"

type FoodItem struct {
	ID        string   `json:"_id" bson:"_id,omitempty" gorm:"column:id;primaryKey"`
	FoodItem  string   `json:"foodItem" bson:"foodItem" gorm:"column:foodItem" validate:"required"`
	CostPrice *float64 `json:"costPrice" bson:"costPrice" gorm:"column:costPrice" validate:"required,gte=0"`
}

func (f *FoodItem) DocumentID() string      { return f.ID }
func (f *FoodItem) SetDocumentID(id string) { f.ID = id }

// FoodItemUpdate carries the edit form fields of PUT /FoodItem/{id}.
type FoodItemUpdate struct {
	EditFoodName  string   `json:"editFoodName" validate:"required"`
	EditFoodPrice *float64 `json:"editFoodPrice" validate:"required,gte=0"`
}

func (u *FoodItemUpdate) Patch() map[string]any {
	return map[string]any{
		"foodItem":  u.EditFoodName,
		"costPrice": *u.EditFoodPrice,
	}
}
