package repository

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/abdbodara/taskora-backend/internal/models"
)

// TaskRepositoryTestSuite exercises the listing queries against a real
// database so join duplication and ordering bugs surface as failures.
type TaskRepositoryTestSuite struct {
	suite.Suite
	db   *gorm.DB
	repo TaskRepository

	owner *models.User
}

func (suite *TaskRepositoryTestSuite) SetupTest() {
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

	suite.repo = NewTaskRepository(suite.db)

	suite.owner = &models.User{Name: "Owner", Email: "owner@example.com", PasswordHash: "x", Role: models.RoleAdmin}
	suite.db.Create(suite.owner)
}

func (suite *TaskRepositoryTestSuite) TearDownTest() {
	sqlDB, err := suite.db.DB()
	suite.Require().NoError(err)
	sqlDB.Close()
}

func (suite *TaskRepositoryTestSuite) createTechnician(name string) *models.Technician {
	email := name + "@example.com"
	technician := &models.Technician{
		Name:         name,
		Email:        &email,
		PasswordHash: "x",
		Status:       models.TechnicianStatusActive,
		Role:         models.RoleTechnician,
		UserID:       suite.owner.ID,
	}
	suite.db.Create(technician)
	return technician
}

func (suite *TaskRepositoryTestSuite) createTask(title string, priority models.TaskPriority, dueDate *time.Time, technicians ...*models.Technician) *models.Task {
	task := &models.Task{
		Title:    title,
		Status:   models.TaskStatusPending,
		Priority: priority,
		DueDate:  dueDate,
		UserID:   suite.owner.ID,
	}
	suite.db.Create(task)
	for _, technician := range technicians {
		suite.db.Create(&models.TaskTechnician{TaskID: task.ID, TechnicianID: technician.ID})
	}
	return task
}

// TestList_SearchJoinDoesNotDuplicate pins the core property of the
// two-phase fetch: a task matching through several technicians is one row
// and counts once.
func (suite *TaskRepositoryTestSuite) TestList_SearchJoinDoesNotDuplicate() {
	tech1 := suite.createTechnician("mario")
	tech2 := suite.createTechnician("maria")
	suite.createTask("Shared", models.TaskPriorityMedium, nil, tech1, tech2)

	tasks, total, err := suite.repo.List(TaskFilter{
		OwnerID: suite.owner.ID,
		Search:  "mari",
		Page:    1,
		Limit:   10,
	})

	suite.Require().NoError(err)
	assert.Equal(suite.T(), int64(1), total)
	assert.Len(suite.T(), tasks, 1)
	assert.Len(suite.T(), tasks[0].Technicians, 2)
}

// TestList_Ordering pins the sort: due dates ascending with NULLs last,
// then priority from urgent down.
func (suite *TaskRepositoryTestSuite) TestList_Ordering() {
	near := time.Now().Add(24 * time.Hour)
	far := time.Now().Add(72 * time.Hour)

	suite.createTask("no due date", models.TaskPriorityUrgent, nil)
	suite.createTask("far", models.TaskPriorityLow, &far)
	suite.createTask("near", models.TaskPriorityLow, &near)
	suite.createTask("near urgent", models.TaskPriorityUrgent, &near)

	tasks, _, err := suite.repo.List(TaskFilter{OwnerID: suite.owner.ID, Page: 1, Limit: 10})

	suite.Require().NoError(err)
	suite.Require().Len(tasks, 4)
	assert.Equal(suite.T(), "near urgent", tasks[0].Title)
	assert.Equal(suite.T(), "near", tasks[1].Title)
	assert.Equal(suite.T(), "far", tasks[2].Title)
	assert.Equal(suite.T(), "no due date", tasks[3].Title)
}

// TestList_PaginationAfterDeduplication tests that offsets apply to distinct
// tasks, not join rows
func (suite *TaskRepositoryTestSuite) TestList_PaginationAfterDeduplication() {
	tech1 := suite.createTechnician("searchable-one")
	tech2 := suite.createTechnician("searchable-two")
	for i := 0; i < 3; i++ {
		suite.createTask("multi", models.TaskPriorityMedium, nil, tech1, tech2)
	}

	tasks, total, err := suite.repo.List(TaskFilter{
		OwnerID: suite.owner.ID,
		Search:  "searchable",
		Page:    2,
		Limit:   2,
	})

	suite.Require().NoError(err)
	assert.Equal(suite.T(), int64(3), total)
	assert.Len(suite.T(), tasks, 1)
}

// TestListAssigned_RestrictedToTechnician tests the technician view only
// sees the technician's own assignments
func (suite *TaskRepositoryTestSuite) TestListAssigned_RestrictedToTechnician() {
	mine := suite.createTechnician("mine")
	other := suite.createTechnician("other")
	suite.createTask("mine only", models.TaskPriorityMedium, nil, mine)
	suite.createTask("both", models.TaskPriorityMedium, nil, mine, other)
	suite.createTask("other only", models.TaskPriorityMedium, nil, other)

	tasks, total, err := suite.repo.ListAssigned(AssignedTaskFilter{
		TechnicianID: mine.ID,
		Page:         1,
		Limit:        10,
	})

	suite.Require().NoError(err)
	assert.Equal(suite.T(), int64(2), total)
	assert.Len(suite.T(), tasks, 2)
}

// TestHasTechnician_DeletedTask tests that assignment checks ignore deleted
// tasks even when the join row survives
func (suite *TaskRepositoryTestSuite) TestHasTechnician_DeletedTask() {
	technician := suite.createTechnician("tech")
	task := suite.createTask("doomed", models.TaskPriorityMedium, nil, technician)

	assigned, err := suite.repo.HasTechnician(task.ID, technician.ID)
	suite.Require().NoError(err)
	assert.True(suite.T(), assigned)

	suite.db.Delete(&models.Task{}, task.ID)

	assigned, err = suite.repo.HasTechnician(task.ID, technician.ID)
	suite.Require().NoError(err)
	assert.False(suite.T(), assigned)
}

// TestHasTechnician_DeletedTechnician tests that a deleted technician drops
// out of the assignment set even though its join rows survive
func (suite *TaskRepositoryTestSuite) TestHasTechnician_DeletedTechnician() {
	technician := suite.createTechnician("tech")
	task := suite.createTask("ongoing", models.TaskPriorityMedium, nil, technician)

	assigned, err := suite.repo.HasTechnician(task.ID, technician.ID)
	suite.Require().NoError(err)
	assert.True(suite.T(), assigned)

	suite.db.Delete(&models.Technician{}, technician.ID)

	var rows []models.TaskTechnician
	suite.db.Where("task_id = ?", task.ID).Find(&rows)
	suite.Require().Len(rows, 1)

	assigned, err = suite.repo.HasTechnician(task.ID, technician.ID)
	suite.Require().NoError(err)
	assert.False(suite.T(), assigned)
}

// TestReplaceTechnicians_Wholesale tests the transactional assignment rewrite
func (suite *TaskRepositoryTestSuite) TestReplaceTechnicians_Wholesale() {
	tech1 := suite.createTechnician("one")
	tech2 := suite.createTechnician("two")
	task := suite.createTask("task", models.TaskPriorityMedium, nil, tech1)

	err := suite.repo.ReplaceTechnicians(task.ID, []uint64{tech2.ID})
	suite.Require().NoError(err)

	var rows []models.TaskTechnician
	suite.db.Where("task_id = ?", task.ID).Find(&rows)
	suite.Require().Len(rows, 1)
	assert.Equal(suite.T(), tech2.ID, rows[0].TechnicianID)

	err = suite.repo.ReplaceTechnicians(task.ID, nil)
	suite.Require().NoError(err)

	suite.db.Where("task_id = ?", task.ID).Find(&rows)
	assert.Empty(suite.T(), rows)
}

func TestTaskRepositoryTestSuite(t *testing.T) {
	suite.Run(t, new(TaskRepositoryTestSuite))
}

// TestList_TwoPhaseSQLShape pins the generated SQL: the total is a distinct
// count and phase one selects grouped task ids only. An empty id page skips
// hydration entirely.
func TestList_TwoPhaseSQLShape(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer sqlDB.Close()

	db, err := gorm.Open(postgres.New(postgres.Config{
		Conn:                 sqlDB,
		PreferSimpleProtocol: true,
	}), &gorm.Config{})
	assert.NoError(t, err)

	repo := NewTaskRepository(db)

	mock.ExpectQuery(`SELECT COUNT\(DISTINCT\("?tasks"?\."?id"?\)\) FROM "tasks" LEFT JOIN task_technicians ON task_technicians\.task_id = tasks\.id LEFT JOIN technicians ON technicians\.id = task_technicians\.technician_id`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	mock.ExpectQuery(`SELECT tasks\.id FROM "tasks" LEFT JOIN task_technicians .* GROUP BY "?tasks"?\."?id"? ORDER BY CASE WHEN tasks\.due_date IS NULL THEN 1 ELSE 0 END`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	tasks, total, err := repo.List(TaskFilter{
		OwnerID: 1,
		Search:  "pump",
		Page:    1,
		Limit:   10,
	})

	assert.NoError(t, err)
	assert.Equal(t, int64(0), total)
	assert.Empty(t, tasks)
	assert.NoError(t, mock.ExpectationsWereMet())
}
