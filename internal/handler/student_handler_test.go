package handler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/itzrizvi/yooda-hostel-server/internal/database"
	"github.com/itzrizvi/yooda-hostel-server/internal/handler"
	"github.com/itzrizvi/yooda-hostel-server/internal/model"
	"github.com/itzrizvi/yooda-hostel-server/internal/service"
)

type MockStudentService struct {
	mock.Mock
}

func (m *MockStudentService) Create(ctx context.Context, student *model.Student) (*database.InsertResult, error) {
	args := m.Called(ctx, student)
	res, _ := args.Get(0).(*database.InsertResult)
	return res, args.Error(1)
}

func (m *MockStudentService) List(ctx context.Context) ([]model.Student, error) {
	args := m.Called(ctx)
	students, _ := args.Get(0).([]model.Student)
	return students, args.Error(1)
}

func (m *MockStudentService) FindByRoll(ctx context.Context, roll string) ([]model.Student, error) {
	args := m.Called(ctx, roll)
	students, _ := args.Get(0).([]model.Student)
	return students, args.Error(1)
}

func (m *MockStudentService) UpdateStatus(ctx context.Context, upd *model.StudentStatusUpdate) (*database.UpdateResult, error) {
	args := m.Called(ctx, upd)
	res, _ := args.Get(0).(*database.UpdateResult)
	return res, args.Error(1)
}

func (m *MockStudentService) Update(ctx context.Context, id string, student *model.Student, upsert bool) (*database.UpdateResult, error) {
	args := m.Called(ctx, id, student, upsert)
	res, _ := args.Get(0).(*database.UpdateResult)
	return res, args.Error(1)
}

func (m *MockStudentService) Delete(ctx context.Context, id string) (*database.DeleteResult, error) {
	args := m.Called(ctx, id)
	res, _ := args.Get(0).(*database.DeleteResult)
	return res, args.Error(1)
}

func studentRouter(h *handler.StudentHandler) *mux.Router {
	router := mux.NewRouter()
	router.HandleFunc("/Student", h.CreateStudent).Methods(http.MethodPost)
	router.HandleFunc("/Student", h.ListStudents).Methods(http.MethodGet)
	router.HandleFunc("/Student/", h.UpdateStudentStatus).Methods(http.MethodPut)
	router.HandleFunc("/Student/{id}", h.UpdateStudent).Methods(http.MethodPut)
	router.HandleFunc("/Student/{id}", h.DeleteStudent).Methods(http.MethodDelete)
	router.HandleFunc("/Student/{roll}", h.GetStudentsByRoll).Methods(http.MethodGet)
	return router
}

const aliceJSON = `{"fullName":"Alice","roll":101,"age":20,"class":"10","hallName":"North","status":"active"}`

func TestCreateStudent(t *testing.T) {
	mockService := new(MockStudentService)
	mockService.On("Create", mock.Anything, mock.MatchedBy(func(s *model.Student) bool {
		return s.FullName == "Alice" && s.Roll == "101" && s.Age == 20
	})).Return(&database.InsertResult{Acknowledged: true, InsertedID: "s1"}, nil)

	w := serve(studentRouter(handler.NewStudentHandler(mockService)), http.MethodPost, "/Student", aliceJSON)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.JSONEq(t, `{"acknowledged":true,"insertedId":"s1"}`, w.Body.String())
	mockService.AssertExpectations(t)
}

func TestListStudentsEmpty(t *testing.T) {
	mockService := new(MockStudentService)
	mockService.On("List", mock.Anything).Return([]model.Student{}, nil)

	w := serve(studentRouter(handler.NewStudentHandler(mockService)), http.MethodGet, "/Student", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestGetStudentsByRoll(t *testing.T) {
	mockService := new(MockStudentService)
	mockService.On("FindByRoll", mock.Anything, "101").Return([]model.Student{
		{ID: "a", FullName: "Alice", Roll: "101"},
		{ID: "b", FullName: "Bob", Roll: "101"},
	}, nil)

	w := serve(studentRouter(handler.NewStudentHandler(mockService)), http.MethodGet, "/Student/101", "")

	assert.Equal(t, http.StatusOK, w.Code)
	var got []model.Student
	require.NoError(t, json.NewDecoder(w.Body).Decode(&got))
	assert.Len(t, got, 2)
	mockService.AssertExpectations(t)
}

func TestUpdateStudentStatus(t *testing.T) {
	mockService := new(MockStudentService)
	mockService.On("UpdateStatus", mock.Anything, mock.MatchedBy(func(u *model.StudentStatusUpdate) bool {
		return len(u.StudentID) == 2 && u.IsStatus == "inactive"
	})).Return(&database.UpdateResult{Acknowledged: true, MatchedCount: 1, ModifiedCount: 1}, nil)

	w := serve(studentRouter(handler.NewStudentHandler(mockService)), http.MethodPut, "/Student/", `{"studentId":["a","z"],"isStatus":"inactive"}`)

	assert.Equal(t, http.StatusOK, w.Code)
	var res database.UpdateResult
	require.NoError(t, json.NewDecoder(w.Body).Decode(&res))
	assert.Equal(t, int64(1), res.ModifiedCount)
	mockService.AssertExpectations(t)
}

func TestUpdateStudentStatusValidation(t *testing.T) {
	mockService := new(MockStudentService)
	mockService.On("UpdateStatus", mock.Anything, mock.Anything).
		Return(nil, &service.ValidationError{Fields: map[string]string{"studentId": "must have at least 1 item"}})

	w := serve(studentRouter(handler.NewStudentHandler(mockService)), http.MethodPut, "/Student/", `{"studentId":[],"isStatus":"inactive"}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "studentId")
}

func TestUpdateStudentUpsert(t *testing.T) {
	mockService := new(MockStudentService)
	upsertedID := "x"
	mockService.On("Update", mock.Anything, "x", mock.Anything, true).
		Return(&database.UpdateResult{Acknowledged: true, UpsertedCount: 1, UpsertedID: &upsertedID}, nil)

	w := serve(studentRouter(handler.NewStudentHandler(mockService)), http.MethodPut, "/Student/x?upsert=true", aliceJSON)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"acknowledged":true,"matchedCount":0,"modifiedCount":0,"upsertedCount":1,"upsertedId":"x"}`, w.Body.String())
}

func TestDeleteStudentInvalidID(t *testing.T) {
	mockService := new(MockStudentService)
	mockService.On("Delete", mock.Anything, mock.Anything).Return(nil, service.ErrInvalidID)

	w := serve(studentRouter(handler.NewStudentHandler(mockService)), http.MethodDelete, "/Student/%20", "")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"Invalid id"}`, w.Body.String())
}
