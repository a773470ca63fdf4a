package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/abdbodara/taskora-backend/internal/database"
	"github.com/abdbodara/taskora-backend/internal/models"
	"github.com/abdbodara/taskora-backend/internal/repository"
	"github.com/abdbodara/taskora-backend/internal/services"
)

// TechnicianHandlerTestSuite defines the test suite for TechnicianHandler
type TechnicianHandlerTestSuite struct {
	suite.Suite
	db      *gorm.DB
	handler *TechnicianHandler
}

// SetupTest runs before each test
func (suite *TechnicianHandlerTestSuite) SetupTest() {
	var err error

	suite.db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	suite.Require().NoError(err)

	err = suite.db.AutoMigrate(
		&models.User{},
		&models.Technician{},
		&models.Task{},
		&models.TaskTechnician{},
		&models.Comment{},
	)
	suite.Require().NoError(err)

	database.SetDB(suite.db)

	technicianRepo := repository.NewTechnicianRepository(suite.db)
	taskRepo := repository.NewTaskRepository(suite.db)
	suite.handler = NewTechnicianHandler(
		services.NewTechnicianService(technicianRepo),
		services.NewTaskService(taskRepo, technicianRepo),
	)

	gin.SetMode(gin.TestMode)
}

// TearDownTest runs after each test
func (suite *TechnicianHandlerTestSuite) TearDownTest() {
	sqlDB, err := suite.db.DB()
	suite.Require().NoError(err)
	sqlDB.Close()
}

func (suite *TechnicianHandlerTestSuite) createTestUser(email string) *models.User {
	user := &models.User{
		Name:         "Test User",
		Email:        email,
		PasswordHash: "hashedpassword",
		Role:         models.RoleAdmin,
	}
	suite.db.Create(user)
	return user
}

func (suite *TechnicianHandlerTestSuite) createTestTechnician(name, email string, ownerID uint64) *models.Technician {
	technician := &models.Technician{
		Name:         name,
		Email:        &email,
		PasswordHash: "hashedpassword",
		Status:       models.TechnicianStatusActive,
		Role:         models.RoleTechnician,
		UserID:       ownerID,
	}
	suite.db.Create(technician)
	return technician
}

func (suite *TechnicianHandlerTestSuite) createAuthContext(method, url string, body []byte, subjectID uint64) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, url, bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, url, nil)
	}

	c, _ := gin.CreateTestContext(w)
	c.Request = req
	c.Set("user_id", subjectID)

	return c, w
}

func (suite *TechnicianHandlerTestSuite) setIDParam(c *gin.Context, id uint64) {
	c.Params = gin.Params{{Key: "id", Value: strconv.FormatUint(id, 10)}}
}

// TestCreateTechnician_Success tests creation and that the password never
// shows up in the response
func (suite *TechnicianHandlerTestSuite) TestCreateTechnician_Success() {
	user := suite.createTestUser("test@example.com")

	requestBody := map[string]interface{}{
		"name":     "Alice",
		"email":    "Alice@Example.com",
		"phone":    "555-0100",
		"password": "secret123",
	}
	body, _ := json.Marshal(requestBody)

	c, w := suite.createAuthContext("POST", "/api/technicians", body, user.ID)

	suite.handler.CreateTechnician(c)

	assert.Equal(suite.T(), http.StatusCreated, w.Code)
	assert.NotContains(suite.T(), w.Body.String(), "secret123")
	assert.NotContains(suite.T(), w.Body.String(), "password")

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(suite.T(), err)

	data := response["data"].(map[string]interface{})
	assert.Equal(suite.T(), "Alice", data["name"])
	assert.Equal(suite.T(), "alice@example.com", data["email"]) // normalized
	assert.Equal(suite.T(), "active", data["status"])

	// The stored hash verifies against the plaintext
	var stored models.Technician
	suite.db.First(&stored, uint64(data["id"].(float64)))
	assert.NoError(suite.T(), bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("secret123")))
}

// TestCreateTechnician_EmailTakenInTenant tests per-tenant email uniqueness
func (suite *TechnicianHandlerTestSuite) TestCreateTechnician_EmailTakenInTenant() {
	user := suite.createTestUser("test@example.com")
	suite.createTestTechnician("Alice", "alice@example.com", user.ID)

	requestBody := map[string]interface{}{
		"name":     "Other Alice",
		"email":    "alice@example.com",
		"password": "secret123",
	}
	body, _ := json.Marshal(requestBody)

	c, w := suite.createAuthContext("POST", "/api/technicians", body, user.ID)

	suite.handler.CreateTechnician(c)

	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
}

// TestCreateTechnician_SameEmailOtherTenant tests that uniqueness does not
// cross tenant boundaries
func (suite *TechnicianHandlerTestSuite) TestCreateTechnician_SameEmailOtherTenant() {
	userA := suite.createTestUser("a@example.com")
	userB := suite.createTestUser("b@example.com")
	suite.createTestTechnician("Alice", "alice@example.com", userA.ID)

	requestBody := map[string]interface{}{
		"name":     "Alice Too",
		"email":    "alice@example.com",
		"password": "secret123",
	}
	body, _ := json.Marshal(requestBody)

	c, w := suite.createAuthContext("POST", "/api/technicians", body, userB.ID)

	suite.handler.CreateTechnician(c)

	assert.Equal(suite.T(), http.StatusCreated, w.Code)
}

// TestListTechnicians_StatusFilter tests filtering by status
func (suite *TechnicianHandlerTestSuite) TestListTechnicians_StatusFilter() {
	user := suite.createTestUser("test@example.com")
	suite.createTestTechnician("Active One", "a1@example.com", user.ID)
	inactive := suite.createTestTechnician("Inactive One", "i1@example.com", user.ID)
	inactive.Status = models.TechnicianStatusInactive
	suite.db.Save(inactive)

	c, w := suite.createAuthContext("GET", "/api/technicians", nil, user.ID)
	c.Request.URL.RawQuery = "status=inactive"

	suite.handler.ListTechnicians(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(suite.T(), err)

	technicians := response["data"].([]interface{})
	assert.Len(suite.T(), technicians, 1)
	assert.Equal(suite.T(), "Inactive One", technicians[0].(map[string]interface{})["name"])
}

// TestListTechnicians_InvalidStatus tests rejecting an unknown status filter
func (suite *TechnicianHandlerTestSuite) TestListTechnicians_InvalidStatus() {
	user := suite.createTestUser("test@example.com")

	c, w := suite.createAuthContext("GET", "/api/technicians", nil, user.ID)
	c.Request.URL.RawQuery = "status=retired"

	suite.handler.ListTechnicians(c)

	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
}

// TestGetTechnician_CrossTenant tests that a foreign technician reads as absent
func (suite *TechnicianHandlerTestSuite) TestGetTechnician_CrossTenant() {
	userA := suite.createTestUser("a@example.com")
	userB := suite.createTestUser("b@example.com")
	technician := suite.createTestTechnician("Alice", "alice@example.com", userA.ID)

	c, w := suite.createAuthContext("GET", "/api/technicians/1", nil, userB.ID)
	suite.setIDParam(c, technician.ID)

	suite.handler.GetTechnician(c)

	assert.Equal(suite.T(), http.StatusNotFound, w.Code)
}

// TestUpdateTechnician_Success tests a partial update
func (suite *TechnicianHandlerTestSuite) TestUpdateTechnician_Success() {
	user := suite.createTestUser("test@example.com")
	technician := suite.createTestTechnician("Alice", "alice@example.com", user.ID)

	requestBody := map[string]interface{}{
		"name":   "Alice Renamed",
		"status": "inactive",
	}
	body, _ := json.Marshal(requestBody)

	c, w := suite.createAuthContext("PUT", "/api/technicians/1", body, user.ID)
	suite.setIDParam(c, technician.ID)

	suite.handler.UpdateTechnician(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var updated models.Technician
	suite.db.First(&updated, technician.ID)
	assert.Equal(suite.T(), "Alice Renamed", updated.Name)
	assert.Equal(suite.T(), models.TechnicianStatusInactive, updated.Status)
	// Untouched fields survive
	assert.Equal(suite.T(), "alice@example.com", *updated.Email)
}

// TestChangePassword_Success tests the admin-side password reset
func (suite *TechnicianHandlerTestSuite) TestChangePassword_Success() {
	user := suite.createTestUser("test@example.com")
	technician := suite.createTestTechnician("Alice", "alice@example.com", user.ID)

	body, _ := json.Marshal(map[string]interface{}{"newPassword": "newsecret"})
	c, w := suite.createAuthContext("PUT", "/api/technicians/change-password/1", body, user.ID)
	suite.setIDParam(c, technician.ID)

	suite.handler.ChangePassword(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var updated models.Technician
	suite.db.First(&updated, technician.ID)
	assert.NoError(suite.T(), bcrypt.CompareHashAndPassword([]byte(updated.PasswordHash), []byte("newsecret")))
}

// TestChangePassword_TooShort tests the minimum password length
func (suite *TechnicianHandlerTestSuite) TestChangePassword_TooShort() {
	user := suite.createTestUser("test@example.com")
	technician := suite.createTestTechnician("Alice", "alice@example.com", user.ID)

	body, _ := json.Marshal(map[string]interface{}{"newPassword": "short"})
	c, w := suite.createAuthContext("PUT", "/api/technicians/change-password/1", body, user.ID)
	suite.setIDParam(c, technician.ID)

	suite.handler.ChangePassword(c)

	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
}

// TestDeleteTechnician_Success tests soft deletion
func (suite *TechnicianHandlerTestSuite) TestDeleteTechnician_Success() {
	user := suite.createTestUser("test@example.com")
	technician := suite.createTestTechnician("Alice", "alice@example.com", user.ID)

	c, w := suite.createAuthContext("DELETE", "/api/technicians/1", nil, user.ID)
	suite.setIDParam(c, technician.ID)

	suite.handler.DeleteTechnician(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var deleted models.Technician
	err := suite.db.First(&deleted, technician.ID).Error
	assert.Error(suite.T(), err)
}

// TestListAssignedTasks_DueDateWindow tests the technician task view with a
// due date range
func (suite *TechnicianHandlerTestSuite) TestListAssignedTasks_DueDateWindow() {
	user := suite.createTestUser("test@example.com")
	technician := suite.createTestTechnician("Alice", "alice@example.com", user.ID)

	soon := time.Now().Add(24 * time.Hour)
	later := time.Now().Add(30 * 24 * time.Hour)

	inWindow := &models.Task{Title: "Soon", Status: models.TaskStatusPending, Priority: models.TaskPriorityMedium, DueDate: &soon, UserID: user.ID}
	outOfWindow := &models.Task{Title: "Later", Status: models.TaskStatusPending, Priority: models.TaskPriorityMedium, DueDate: &later, UserID: user.ID}
	unassigned := &models.Task{Title: "Unassigned", Status: models.TaskStatusPending, Priority: models.TaskPriorityMedium, DueDate: &soon, UserID: user.ID}
	suite.db.Create(inWindow)
	suite.db.Create(outOfWindow)
	suite.db.Create(unassigned)
	suite.db.Create(&models.TaskTechnician{TaskID: inWindow.ID, TechnicianID: technician.ID})
	suite.db.Create(&models.TaskTechnician{TaskID: outOfWindow.ID, TechnicianID: technician.ID})

	c, w := suite.createAuthContext("GET", "/api/technicians/assigned/tasks", nil, technician.ID)
	c.Request.URL.RawQuery = "dueDateFrom=" + time.Now().Format("2006-01-02") +
		"&dueDateTo=" + time.Now().Add(7*24*time.Hour).Format("2006-01-02")

	suite.handler.ListAssignedTasks(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(suite.T(), err)

	tasks := response["data"].([]interface{})
	assert.Len(suite.T(), tasks, 1)
	assert.Equal(suite.T(), "Soon", tasks[0].(map[string]interface{})["title"])
}

// TestSuite runs the test suite
func TestTechnicianHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(TechnicianHandlerTestSuite))
}
