package service

import (
	"context"
	"strings"

	"github.com/itzrizvi/yooda-hostel-server/internal/database"
	"github.com/itzrizvi/yooda-hostel-server/internal/model"
)

type StudentService struct {
	students database.Collection
}

func NewStudentService(students database.Collection) *StudentService {
	return &StudentService{students: students}
}

func (s *StudentService) Create(ctx context.Context, student *model.Student) (*database.InsertResult, error) {
	if err := validateStruct(student); err != nil {
		return nil, err
	}
	student.ID = ""
	res, err := s.students.InsertOne(ctx, student)
	if err != nil {
		return nil, storageErr("insert student", err)
	}
	return res, nil
}

func (s *StudentService) List(ctx context.Context) ([]model.Student, error) {
	return s.find(ctx, database.Filter{}, "list students")
}

// FindByRoll returns every student whose roll equals roll. Rolls are not
// unique, so zero or several matches are normal.
func (s *StudentService) FindByRoll(ctx context.Context, roll string) ([]model.Student, error) {
	return s.find(ctx, database.Filter{"roll": roll}, "find students by roll")
}

func (s *StudentService) find(ctx context.Context, filter database.Filter, op string) ([]model.Student, error) {
	students := []model.Student{}
	if err := s.students.Find(ctx, filter, &students); err != nil {
		return nil, storageErr(op, err)
	}
	if students == nil {
		students = []model.Student{}
	}
	return students, nil
}

// UpdateStatus sets the status of every listed student in one call. Ids that
// match nothing are ignored; the result carries the match and modify counts.
func (s *StudentService) UpdateStatus(ctx context.Context, upd *model.StudentStatusUpdate) (*database.UpdateResult, error) {
	if err := validateStruct(upd); err != nil {
		return nil, err
	}
	res, err := s.students.UpdateMany(ctx, database.IDIn(upd.StudentID), database.Patch{"status": upd.IsStatus})
	if err != nil {
		return nil, storageErr("update student status", err)
	}
	return res, nil
}

func (s *StudentService) Update(ctx context.Context, id string, student *model.Student, upsert bool) (*database.UpdateResult, error) {
	if strings.TrimSpace(id) == "" {
		return nil, ErrInvalidID
	}
	if err := validateStruct(student); err != nil {
		return nil, err
	}
	res, err := s.students.UpdateOne(ctx, database.ByID(id), student.Patch(), upsert)
	if err != nil {
		return nil, storageErr("update student", err)
	}
	if res.MatchedCount == 0 && res.UpsertedCount == 0 {
		return res, ErrNotFound
	}
	return res, nil
}

func (s *StudentService) Delete(ctx context.Context, id string) (*database.DeleteResult, error) {
	if strings.TrimSpace(id) == "" {
		return nil, ErrInvalidID
	}
	res, err := s.students.DeleteOne(ctx, database.ByID(id))
	if err != nil {
		return nil, storageErr("delete student", err)
	}
	if res.DeletedCount == 0 {
		return res, ErrNotFound
	}
	return res, nil
}
