package handler

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/itzrizvi/yooda-hostel-server/internal/database"
	"github.com/itzrizvi/yooda-hostel-server/internal/model"
)

type StudentService interface {
	Create(ctx context.Context, student *model.Student) (*database.InsertResult, error)
	List(ctx context.Context) ([]model.Student, error)
	FindByRoll(ctx context.Context, roll string) ([]model.Student, error)
	UpdateStatus(ctx context.Context, upd *model.StudentStatusUpdate) (*database.UpdateResult, error)
	Update(ctx context.Context, id string, student *model.Student, upsert bool) (*database.UpdateResult, error)
	Delete(ctx context.Context, id string) (*database.DeleteResult, error)
}

type StudentHandler struct {
	studentService StudentService
}

func NewStudentHandler(studentService StudentService) *StudentHandler {
	return &StudentHandler{studentService: studentService}
}

func (h *StudentHandler) CreateStudent(w http.ResponseWriter, r *http.Request) {
	var student model.Student
	if !decodeJSON(w, r, &student) {
		return
	}
	res, err := h.studentService.Create(r.Context(), &student)
	writeResult(w, r, http.StatusCreated, res, err)
}

func (h *StudentHandler) ListStudents(w http.ResponseWriter, r *http.Request) {
	students, err := h.studentService.List(r.Context())
	writeResult(w, r, http.StatusOK, students, err)
}

// GetStudentsByRoll returns all students with the given roll; rolls are not unique.
func (h *StudentHandler) GetStudentsByRoll(w http.ResponseWriter, r *http.Request) {
	students, err := h.studentService.FindByRoll(r.Context(), mux.Vars(r)["roll"])
	writeResult(w, r, http.StatusOK, students, err)
}

// UpdateStudentStatus sets one status on every student id in the body.
func (h *StudentHandler) UpdateStudentStatus(w http.ResponseWriter, r *http.Request) {
	var upd model.StudentStatusUpdate
	if !decodeJSON(w, r, &upd) {
		return
	}
	res, err := h.studentService.UpdateStatus(r.Context(), &upd)
	writeResult(w, r, http.StatusOK, res, err)
}

func (h *StudentHandler) UpdateStudent(w http.ResponseWriter, r *http.Request) {
	var student model.Student
	if !decodeJSON(w, r, &student) {
		return
	}
	res, err := h.studentService.Update(r.Context(), mux.Vars(r)["id"], &student, upsertRequested(r))
	writeResult(w, r, http.StatusOK, res, err)
}

func (h *StudentHandler) DeleteStudent(w http.ResponseWriter, r *http.Request) {
	res, err := h.studentService.Delete(r.Context(), mux.Vars(r)["id"])
	writeResult(w, r, http.StatusOK, res, err)
}
