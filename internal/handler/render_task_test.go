package handler_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"reelsmith/internal/handler"
	"reelsmith/internal/response"
	"reelsmith/internal/router"
	"reelsmith/internal/service"
	"reelsmith/internal/storage"
	"reelsmith/internal/types"
	apperrors "reelsmith/pkg/errors"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) {
	t.Helper()

	original := storage.DB
	t.Cleanup(func() { storage.DB = original })

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&types.RenderTask{}, &types.UsageRecord{}))
	storage.DB = db
}

func buildRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	router.SetupRouter(r, handler.NewHandlerWithService(&service.Service{}))
	return r
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) response.Response {
	t.Helper()
	var res response.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	return res
}

func TestStartRenderTaskRejectsBadJSON(t *testing.T) {
	r := buildRouter()

	req, _ := http.NewRequest("POST", "/api/render", strings.NewReader(`{"user_id": 42}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	res := decodeResponse(t, w)
	assert.Equal(t, int32(apperrors.CodeInvalidParams), res.Error)
}

func TestStartRenderTaskRequiresSourceKey(t *testing.T) {
	r := buildRouter()

	req, _ := http.NewRequest("POST", "/api/render",
		strings.NewReader(`{"user_id":"u1","account_id":"acc1"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	res := decodeResponse(t, w)
	assert.Equal(t, int32(apperrors.CodeInvalidParams), res.Error)
}

func TestGetRenderTaskRequiresTaskId(t *testing.T) {
	r := buildRouter()

	req, _ := http.NewRequest("GET", "/api/render", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	res := decodeResponse(t, w)
	assert.Equal(t, int32(apperrors.CodeInvalidParams), res.Error)
}

func TestGetRenderTaskReturnsTask(t *testing.T) {
	setupTestDB(t)
	require.NoError(t, storage.SaveTask(&types.RenderTask{
		TaskId: "t1", UserId: "u1", Status: types.StatusDone, StatusMsg: "Done",
	}))

	r := buildRouter()
	req, _ := http.NewRequest("GET", "/api/render?task_id=t1", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	res := decodeResponse(t, w)
	assert.Equal(t, int32(0), res.Error)
	assert.Contains(t, w.Body.String(), `"t1"`)
}

func TestGetTaskHistoryFiltersByUser(t *testing.T) {
	setupTestDB(t)
	require.NoError(t, storage.SaveTask(&types.RenderTask{TaskId: "t1", UserId: "u1"}))
	require.NoError(t, storage.SaveTask(&types.RenderTask{TaskId: "t2", UserId: "u2"}))

	r := buildRouter()
	req, _ := http.NewRequest("GET", "/api/render/history?user_id=u1", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	res := decodeResponse(t, w)
	assert.Equal(t, int32(0), res.Error)
	assert.Contains(t, w.Body.String(), `"t1"`)
	assert.NotContains(t, w.Body.String(), `"t2"`)
}

func TestDeleteTask(t *testing.T) {
	setupTestDB(t)
	require.NoError(t, storage.SaveTask(&types.RenderTask{TaskId: "t1", UserId: "u1"}))

	r := buildRouter()
	req, _ := http.NewRequest("DELETE", "/api/render/t1", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	res := decodeResponse(t, w)
	assert.Equal(t, int32(0), res.Error)

	_, err := storage.GetTask("t1")
	assert.Error(t, err)
}

func TestGetBatchGroupsTasks(t *testing.T) {
	setupTestDB(t)
	require.NoError(t, storage.SaveTask(&types.RenderTask{TaskId: "t1", UserId: "u1", BatchId: "b1"}))
	require.NoError(t, storage.SaveTask(&types.RenderTask{TaskId: "t2", UserId: "u1", BatchId: "b2"}))

	r := buildRouter()
	req, _ := http.NewRequest("GET", "/api/generate/batch/b1", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	res := decodeResponse(t, w)
	assert.Equal(t, int32(0), res.Error)
	assert.Contains(t, w.Body.String(), `"t1"`)
	assert.NotContains(t, w.Body.String(), `"t2"`)
}
