package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/suite"
	"github.com/yukikurage/task-tracker/internal/constants"
	"github.com/yukikurage/task-tracker/internal/dto"
	"github.com/yukikurage/task-tracker/internal/models"
	"github.com/yukikurage/task-tracker/internal/repository"
	"github.com/yukikurage/task-tracker/internal/services"
	"github.com/yukikurage/task-tracker/internal/testutils"
	"gorm.io/gorm"
)

// TaskHandlerTestSuite defines the test suite for TaskHandler
type TaskHandlerTestSuite struct {
	suite.Suite
	db          *gorm.DB
	taskService *services.TaskService
	handler     *TaskHandler
	router      *gin.Engine
	actor       services.Actor
	alice       *models.User
	bob         *models.User
}

// SetupTest runs before each test
func (suite *TaskHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)

	suite.db = testutils.SetupTestDB(suite.T())
	suite.taskService = services.NewTaskService(repository.NewTaskRepository(suite.db), nil, nil)
	authService := services.NewAuthService(repository.NewUserRepository(suite.db), nil)
	suite.handler = NewTaskHandler(suite.taskService, authService)

	suite.alice = suite.createTestUser("alice")
	suite.bob = suite.createTestUser("bob")
	suite.actor = services.UserActor(suite.alice.ID)

	suite.router = gin.New()
	suite.router.Use(func(c *gin.Context) {
		c.Set(constants.ContextKeyActor, suite.actor)
		if id, ok := suite.actor.UserID(); ok {
			c.Set(constants.ContextKeyUserID, id)
		}
		c.Next()
	})
	suite.router.GET("/", suite.handler.Index)
	suite.router.POST("/", suite.handler.Create)
	suite.router.POST("/edit/:id", suite.handler.Edit)
	suite.router.GET("/complete/:id", suite.handler.Complete)
	suite.router.GET("/delete/:id", suite.handler.Delete)
	suite.router.GET("/clear_history", suite.handler.ClearHistory)
	suite.router.POST("/bulk_action", suite.handler.BulkAction)
	suite.router.GET("/history", suite.handler.History)
	suite.router.GET("/categories", suite.handler.Categories)
	suite.router.POST("/suggest", suite.handler.Suggest)
}

// Helper function to create test data
func (suite *TaskHandlerTestSuite) createTestUser(username string) *models.User {
	user := &models.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "hashedpassword",
		FullName:     constants.DefaultFullName,
	}
	suite.Require().NoError(suite.db.Create(user).Error)
	return user
}

func (suite *TaskHandlerTestSuite) createTestTask(title string, owner *models.User) *models.Task {
	task := &models.Task{
		Title:    title,
		Priority: models.PriorityMedium,
		Category: constants.DefaultCategory,
		OwnerID:  &owner.ID,
	}
	suite.Require().NoError(suite.db.Create(task).Error)
	return task
}

func (suite *TaskHandlerTestSuite) reload(id uint64) (*models.Task, error) {
	var task models.Task
	err := suite.db.First(&task, id).Error
	return &task, err
}

func (suite *TaskHandlerTestSuite) do(method, target string, form url.Values) *httptest.ResponseRecorder {
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

func (suite *TaskHandlerTestSuite) doJSON(method, target string, body interface{}) *httptest.ResponseRecorder {
	payload, err := json.Marshal(body)
	suite.Require().NoError(err)
	req := httptest.NewRequest(method, target, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

func (suite *TaskHandlerTestSuite) assertRedirect(w *httptest.ResponseRecorder, location string) {
	suite.Equal(http.StatusFound, w.Code)
	suite.Equal(location, w.Header().Get("Location"))
}

// Test Index
func (suite *TaskHandlerTestSuite) TestIndex_Anonymous() {
	suite.actor = services.Anonymous()
	suite.createTestTask("Alice's task", suite.alice)

	w := suite.do(http.MethodGet, "/", nil)
	suite.Equal(http.StatusOK, w.Code)

	var response dto.DashboardResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &response))
	suite.Empty(response.Tasks)
	suite.Empty(response.History)
	suite.Nil(response.User)
	suite.Equal([]int{0, 0, 0, 0, 0, 0, 0}, response.ChartData)
	suite.Len(response.ChartLabels, 7)
}

func (suite *TaskHandlerTestSuite) TestIndex_DecoratesAndScopes() {
	overdue := time.Now().UTC().Add(-time.Hour)
	task := &models.Task{
		Title:    "Late",
		Priority: models.PriorityLow,
		Category: "Home",
		DueDate:  &overdue,
		OwnerID:  &suite.alice.ID,
	}
	suite.Require().NoError(suite.db.Create(task).Error)
	suite.createTestTask("Bob's task", suite.bob)

	w := suite.do(http.MethodGet, "/", nil)
	suite.Equal(http.StatusOK, w.Code)

	var response dto.DashboardResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &response))
	suite.Require().Len(response.Tasks, 1)
	suite.Equal(1, response.Count)

	item := response.Tasks[0]
	suite.Equal("Late", item.Title)
	suite.Equal(models.PriorityLow, item.Priority)
	suite.Equal(models.PriorityHigh, item.DisplayPriority)
	suite.True(item.IsOverdue)
	suite.True(item.IsUrgent)
	suite.Equal([]string{"Home"}, response.Categories)
	suite.Require().NotNil(response.User)
	suite.Equal("alice", response.User.Username)
}

// Test Create
func (suite *TaskHandlerTestSuite) TestCreate_FormPost() {
	w := suite.do(http.MethodPost, "/", url.Values{
		"title":    {"Write report"},
		"priority": {"High"},
		"category": {""},
		"due_date": {"2030-01-15T10:00"},
	})
	suite.assertRedirect(w, "/")

	var task models.Task
	suite.Require().NoError(suite.db.Where("title = ?", "Write report").First(&task).Error)
	suite.Equal(models.PriorityHigh, task.Priority)
	suite.Equal("General", task.Category)
	suite.Equal(suite.alice.ID, *task.OwnerID)
	suite.Require().NotNil(task.DueDate)
}

func (suite *TaskHandlerTestSuite) TestCreate_JSON() {
	w := suite.doJSON(http.MethodPost, "/", map[string]string{"title": "From JSON", "category": "Work"})
	suite.assertRedirect(w, "/")

	var task models.Task
	suite.Require().NoError(suite.db.Where("title = ?", "From JSON").First(&task).Error)
	suite.Equal("Work", task.Category)
}

func (suite *TaskHandlerTestSuite) TestCreate_BlankTitle() {
	w := suite.do(http.MethodPost, "/", url.Values{"title": {"   "}})
	suite.Equal(http.StatusBadRequest, w.Code)
	suite.Contains(w.Body.String(), "VALIDATION_FAILED")
}

func (suite *TaskHandlerTestSuite) TestCreate_TitleTooLong() {
	w := suite.do(http.MethodPost, "/", url.Values{"title": {strings.Repeat("t", constants.MaxTitleLength+1)}})
	suite.Equal(http.StatusBadRequest, w.Code)
	suite.Contains(w.Body.String(), "VALIDATION_FAILED")
	suite.Contains(w.Body.String(), "title")

	w = suite.do(http.MethodPost, "/", url.Values{"title": {strings.Repeat("ü", constants.MaxTitleLength)}})
	suite.assertRedirect(w, "/")
}

func (suite *TaskHandlerTestSuite) TestCreate_AnonymousRedirectsToLogin() {
	suite.actor = services.Anonymous()

	w := suite.do(http.MethodPost, "/", url.Values{"title": {"Sneaky"}})
	suite.assertRedirect(w, "/login")

	var count int64
	suite.Require().NoError(suite.db.Model(&models.Task{}).Count(&count).Error)
	suite.Zero(count)
}

// Test Edit
func (suite *TaskHandlerTestSuite) TestEdit() {
	task := suite.createTestTask("Original", suite.alice)

	w := suite.do(http.MethodPost, "/edit/"+itoa(task.ID), url.Values{
		"title":    {"Renamed"},
		"priority": {"low"},
		"category": {"Errands"},
	})
	suite.assertRedirect(w, "/")

	stored, err := suite.reload(task.ID)
	suite.Require().NoError(err)
	suite.Equal("Renamed", stored.Title)
	suite.Equal(models.PriorityLow, stored.Priority)
	suite.Equal("Errands", stored.Category)
}

func (suite *TaskHandlerTestSuite) TestEdit_OtherOwnerIsIgnored() {
	task := suite.createTestTask("Bob's", suite.bob)

	w := suite.do(http.MethodPost, "/edit/"+itoa(task.ID), url.Values{"title": {"Hijacked"}})
	suite.assertRedirect(w, "/")

	stored, err := suite.reload(task.ID)
	suite.Require().NoError(err)
	suite.Equal("Bob's", stored.Title)
}

// Test Complete and Delete
func (suite *TaskHandlerTestSuite) TestComplete() {
	task := suite.createTestTask("Finish", suite.alice)

	suite.assertRedirect(suite.do(http.MethodGet, "/complete/"+itoa(task.ID), nil), "/")

	stored, err := suite.reload(task.ID)
	suite.Require().NoError(err)
	suite.True(stored.Completed)
	suite.NotNil(stored.CompletedAt)
}

func (suite *TaskHandlerTestSuite) TestCompleteAndDelete_NotFound() {
	suite.Equal(http.StatusNotFound, suite.do(http.MethodGet, "/complete/999", nil).Code)
	suite.Equal(http.StatusNotFound, suite.do(http.MethodGet, "/delete/999", nil).Code)
	suite.Equal(http.StatusNotFound, suite.do(http.MethodGet, "/complete/abc", nil).Code)
	suite.Equal(http.StatusNotFound, suite.do(http.MethodPost, "/edit/-1", url.Values{"title": {"x"}}).Code)
}

func (suite *TaskHandlerTestSuite) TestDelete() {
	mine := suite.createTestTask("Mine", suite.alice)
	theirs := suite.createTestTask("Theirs", suite.bob)

	suite.assertRedirect(suite.do(http.MethodGet, "/delete/"+itoa(mine.ID), nil), "/")
	suite.assertRedirect(suite.do(http.MethodGet, "/delete/"+itoa(theirs.ID), nil), "/")

	_, err := suite.reload(mine.ID)
	suite.ErrorIs(err, gorm.ErrRecordNotFound)
	_, err = suite.reload(theirs.ID)
	suite.NoError(err)
}

// Test BulkAction
func (suite *TaskHandlerTestSuite) TestBulkAction_Complete() {
	t1 := suite.createTestTask("one", suite.alice)
	t2 := suite.createTestTask("two", suite.alice)
	t3 := suite.createTestTask("bob's", suite.bob)

	w := suite.do(http.MethodPost, "/bulk_action", url.Values{
		"task_ids": {itoa(t1.ID), itoa(t2.ID), itoa(t3.ID)},
		"action":   {"complete"},
	})
	suite.assertRedirect(w, "/")

	for _, id := range []uint64{t1.ID, t2.ID} {
		stored, err := suite.reload(id)
		suite.Require().NoError(err)
		suite.True(stored.Completed)
	}
	stored, err := suite.reload(t3.ID)
	suite.Require().NoError(err)
	suite.False(stored.Completed)
}

func (suite *TaskHandlerTestSuite) TestBulkAction_DeleteJSON() {
	t1 := suite.createTestTask("one", suite.alice)

	w := suite.doJSON(http.MethodPost, "/bulk_action", map[string]interface{}{
		"task_ids": []uint64{t1.ID},
		"action":   "delete",
	})
	suite.assertRedirect(w, "/")

	_, err := suite.reload(t1.ID)
	suite.ErrorIs(err, gorm.ErrRecordNotFound)
}

func (suite *TaskHandlerTestSuite) TestBulkAction_InvalidAction() {
	t1 := suite.createTestTask("one", suite.alice)

	w := suite.do(http.MethodPost, "/bulk_action", url.Values{
		"task_ids": {itoa(t1.ID)},
		"action":   {"archive"},
	})
	suite.Equal(http.StatusBadRequest, w.Code)

	w = suite.do(http.MethodPost, "/bulk_action", url.Values{"task_ids": {itoa(t1.ID)}})
	suite.Equal(http.StatusBadRequest, w.Code)
}

// Test ClearHistory and History
func (suite *TaskHandlerTestSuite) TestClearHistory() {
	done := suite.createTestTask("done", suite.alice)
	active := suite.createTestTask("active", suite.alice)
	suite.Require().NoError(suite.taskService.CompleteTask(suite.actor, done.ID))

	suite.assertRedirect(suite.do(http.MethodGet, "/clear_history", nil), "/")

	_, err := suite.reload(done.ID)
	suite.ErrorIs(err, gorm.ErrRecordNotFound)
	_, err = suite.reload(active.ID)
	suite.NoError(err)
}

func (suite *TaskHandlerTestSuite) TestHistory_Paginated() {
	for _, title := range []string{"a", "b", "c"} {
		task := suite.createTestTask(title, suite.alice)
		suite.Require().NoError(suite.taskService.CompleteTask(suite.actor, task.ID))
	}

	w := suite.do(http.MethodGet, "/history?page=1&limit=2", nil)
	suite.Equal(http.StatusOK, w.Code)

	var response dto.TaskHistoryResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &response))
	suite.Len(response.Tasks, 2)
	suite.Equal(int64(3), response.Pagination.Total)
	suite.Equal(2, response.Pagination.TotalPages)
	for _, task := range response.Tasks {
		suite.True(task.Completed)
	}
}

func (suite *TaskHandlerTestSuite) TestCategories() {
	task := suite.createTestTask("one", suite.alice)
	suite.Require().NoError(suite.db.Model(task).Update("category", "Work").Error)
	suite.createTestTask("two", suite.alice)

	w := suite.do(http.MethodGet, "/categories", nil)
	suite.Equal(http.StatusOK, w.Code)

	var response struct {
		Categories []string `json:"categories"`
	}
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &response))
	suite.Equal([]string{"General", "Work"}, response.Categories)
}

// Test Suggest
func (suite *TaskHandlerTestSuite) TestSuggest_NotConfigured() {
	w := suite.doJSON(http.MethodPost, "/suggest", map[string]string{"text": "buy milk tomorrow"})
	suite.Equal(http.StatusServiceUnavailable, w.Code)
}

func (suite *TaskHandlerTestSuite) TestSuggest_MissingText() {
	w := suite.doJSON(http.MethodPost, "/suggest", map[string]string{})
	suite.Equal(http.StatusBadRequest, w.Code)
}

func itoa(id uint64) string {
	return strconv.FormatUint(id, 10)
}

// TestTaskHandlerTestSuite runs the test suite
func TestTaskHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(TaskHandlerTestSuite))
}
