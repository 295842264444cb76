package model

const StudentCollection = "Student"

type Student struct {
	ID       string `json:"_id" bson:"_id,omitempty" gorm:"column:id;primaryKey"`
	FullName string `json:"fullName" bson:"fullName" gorm:"column:fullName" validate:"required"`
	Roll     Roll   `json:"roll" bson:"roll" gorm:"column:roll;index" validate:"required"`
	Class    string `json:"class" bson:"class" gorm:"column:class" validate:"required"`
	Age      int    `json:"age" bson:"age" gorm:"column:age" validate:"required,gt=0"`
	HallName string `json:"hallName" bson:"hallName" gorm:"column:hallName" validate:"required"`
	Status   string `json:"status" bson:"status" gorm:"column:status" validate:"required"`
}

func (s *Student) DocumentID() string      { return s.ID }
func (s *Student) SetDocumentID(id string) { s.ID = id }

// Patch is the $set document for a full-record update. The id is never part of it.
func (s *Student) Patch() map[string]any {
	return map[string]any{
		"fullName": s.FullName,
		"roll":     string(s.Roll),
		"class":    s.Class,
		"age":      s.Age,
		"hallName": s.HallName,
		"status":   s.Status,
	}
}

// StudentStatusUpdate is the body of the bulk status route.
type StudentStatusUpdate struct {
	StudentID []string `json:"studentId" validate:"required,min=1,dive,required"`
	IsStatus  string   `json:"isStatus" validate:"required"`
}
