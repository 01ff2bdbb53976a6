package handler_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"deedflow/internal/domain"
	"deedflow/internal/handler"
	"deedflow/internal/service"
	"deedflow/mocks"
)

func TestUserHandler_Create_Success(t *testing.T) {
	mockUsers := new(mocks.MockUserService)
	h := handler.NewUserHandler(mockUsers)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	jsonRequest(c, http.MethodPost, "/api/v1/users", map[string]interface{}{
		"email":     "staff4@deedflow.local",
		"password":  "password123",
		"full_name": "Cross Verification Desk",
		"role":      "staff4",
	})

	mockUsers.On("Create", mock.Anything, service.CreateUserInput{
		Email:    "staff4@deedflow.local",
		Password: "password123",
		FullName: "Cross Verification Desk",
		Role:     domain.RoleStaff4,
	}).Return(&domain.User{
		ID:    uuid.New(),
		Email: "staff4@deedflow.local",
		Role:  domain.RoleStaff4,
	}, nil)

	h.Create(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	mockUsers.AssertExpectations(t)
}

func TestUserHandler_Create_ShortPassword(t *testing.T) {
	mockUsers := new(mocks.MockUserService)
	h := handler.NewUserHandler(mockUsers)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	jsonRequest(c, http.MethodPost, "/api/v1/users", map[string]interface{}{
		"email":     "staff4@deedflow.local",
		"password":  "short",
		"full_name": "Cross Verification Desk",
		"role":      "staff4",
	})

	h.Create(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockUsers.AssertNotCalled(t, "Create")
}

func TestUserHandler_Create_DuplicateEmail(t *testing.T) {
	mockUsers := new(mocks.MockUserService)
	h := handler.NewUserHandler(mockUsers)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	jsonRequest(c, http.MethodPost, "/api/v1/users", map[string]interface{}{
		"email":     "staff1@deedflow.local",
		"password":  "password123",
		"full_name": "Front Desk",
		"role":      "staff1",
	})

	mockUsers.On("Create", mock.Anything, mock.AnythingOfType("service.CreateUserInput")).
		Return(nil, domain.ErrDuplicateEmail)

	h.Create(c)

	assert.Equal(t, http.StatusConflict, w.Code)

	var resp handler.APIResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	assert.Equal(t, "DUPLICATE_EMAIL", resp.Error.Code)
}

func TestUserHandler_Get_NotFound(t *testing.T) {
	mockUsers := new(mocks.MockUserService)
	h := handler.NewUserHandler(mockUsers)

	userID := uuid.New()
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Params = gin.Params{{Key: "id", Value: userID.String()}}
	jsonRequest(c, http.MethodGet, "/api/v1/users/"+userID.String(), nil)

	mockUsers.On("GetByID", mock.Anything, userID).Return(nil, domain.ErrNotFound)

	h.Get(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUserHandler_List_Success(t *testing.T) {
	mockUsers := new(mocks.MockUserService)
	h := handler.NewUserHandler(mockUsers)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	jsonRequest(c, http.MethodGet, "/api/v1/users?offset=0&limit=10", nil)

	mockUsers.On("List", mock.Anything, 0, 10).
		Return([]domain.User{{ID: uuid.New(), Role: domain.RoleStaff1}}, 1, nil)

	h.List(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp handler.APIResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	assert.NotNil(t, resp.Meta)
	assert.Equal(t, 1, resp.Meta.Total)
}

func TestUserHandler_Update_Success(t *testing.T) {
	mockUsers := new(mocks.MockUserService)
	h := handler.NewUserHandler(mockUsers)

	userID := uuid.New()
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Params = gin.Params{{Key: "id", Value: userID.String()}}
	jsonRequest(c, http.MethodPut, "/api/v1/users/"+userID.String(), map[string]interface{}{
		"is_active": false,
	})

	mockUsers.On("Update", mock.Anything, userID, mock.AnythingOfType("service.UpdateUserInput")).
		Return(&domain.User{ID: userID, IsActive: false}, nil)

	h.Update(c)

	assert.Equal(t, http.StatusOK, w.Code)
	mockUsers.AssertExpectations(t)
}

func TestUserHandler_Delete_Success(t *testing.T) {
	mockUsers := new(mocks.MockUserService)
	h := handler.NewUserHandler(mockUsers)

	userID := uuid.New()
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Params = gin.Params{{Key: "id", Value: userID.String()}}
	jsonRequest(c, http.MethodDelete, "/api/v1/users/"+userID.String(), nil)

	mockUsers.On("Delete", mock.Anything, userID).Return(nil)

	h.Delete(c)

	assert.Equal(t, http.StatusOK, w.Code)
	mockUsers.AssertExpectations(t)
}
