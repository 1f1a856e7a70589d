package handler

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"surveylens/internal/app"
	"surveylens/internal/model"
	"surveylens/internal/storage"
	"surveylens/internal/transport/http/middleware"
)

type memUploadRepo struct {
	uploads map[string]*model.CSVUpload
}

func newMemUploadRepo() *memUploadRepo {
	return &memUploadRepo{uploads: make(map[string]*model.CSVUpload)}
}

func (r *memUploadRepo) Create(upload *model.CSVUpload) error {
	copied := *upload
	r.uploads[upload.ID] = &copied
	return nil
}

func (r *memUploadRepo) GetByID(id string) (*model.CSVUpload, error) {
	upload, ok := r.uploads[id]
	if !ok {
		return nil, nil
	}
	copied := *upload
	return &copied, nil
}

func (r *memUploadRepo) ListByUserID(userID uint) ([]model.CSVUpload, error) {
	var result []model.CSVUpload
	for _, upload := range r.uploads {
		if upload.UserID == userID {
			result = append(result, *upload)
		}
	}
	return result, nil
}

func (r *memUploadRepo) DeleteByID(id string) error {
	delete(r.uploads, id)
	return nil
}

func newUploadTestRouter(t *testing.T, maxUploadBytes int64) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store, err := storage.NewLocalStore(t.TempDir())
	require.NoError(t, err)
	h := NewUploadHandler(app.NewUploadService(newMemUploadRepo(), store, nil), maxUploadBytes)

	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set(middleware.ContextUserIDKey, uint(1))
		c.Next()
	})
	router.POST("/api/v1/data/csv-uploads", h.Upload)
	return router
}

func postFile(t *testing.T, router *gin.Engine, fileName, content string) *httptest.ResponseRecorder {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", fileName)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/data/csv-uploads", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)
	return recorder
}

func TestUploadEndpointReturnsColumns(t *testing.T) {
	router := newUploadTestRouter(t, 10<<20)

	recorder := postFile(t, router, "people.csv", "name,age\nalice,30\n")
	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Contains(t, recorder.Body.String(), `"columns":["name","age"]`)
}

func TestUploadEndpointRejectsNonCSV(t *testing.T) {
	router := newUploadTestRouter(t, 10<<20)

	recorder := postFile(t, router, "notes.txt", "hello")
	require.Equal(t, http.StatusUnprocessableEntity, recorder.Code)
}

func TestUploadEndpointRejectsOversizedBodyWhileStreaming(t *testing.T) {
	router := newUploadTestRouter(t, 64)

	recorder := postFile(t, router, "big.csv", "col\n"+strings.Repeat("x,\n", 200))
	require.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Contains(t, recorder.Body.String(), "file too large")
}
