package model

const DistributionCollection = "Distribution"

// Distribution records one serving of food to a student.
type Distribution struct {
	ID        string   `json:"_id" bson:"_id,omitempty" gorm:"column:id;primaryKey"`
	StudentID string   `json:"studentId" bson:"studentId" gorm:"column:studentId;index" validate:"required"`
	Roll      Roll     `json:"roll,omitempty" bson:"roll,omitempty" gorm:"column:roll"`
	Date      string   `json:"date" bson:"date" gorm:"column:date" validate:"required"`
	Shift     string   `json:"shift" bson:"shift" gorm:"column:shift" validate:"required"`
	Status    string   `json:"status,omitempty" bson:"status,omitempty" gorm:"column:status"`
	FoodItems []string `json:"foodItems,omitempty" bson:"foodItems,omitempty" gorm:"column:foodItems;type:text;serializer:json"`
}

func (d *Distribution) DocumentID() string      { return d.ID }
func (d *Distribution) SetDocumentID(id string) { d.ID = id }
