package handlers

import (
	"bytes"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	json "github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"gorm.io/gorm/logger"

	"github.com/tbourn/go-fitcircle/internal/appstore"
	"github.com/tbourn/go-fitcircle/internal/docstore"
	"github.com/tbourn/go-fitcircle/internal/http/middleware"
	"github.com/tbourn/go-fitcircle/internal/localstorage"
	"github.com/tbourn/go-fitcircle/internal/repo"
	"github.com/tbourn/go-fitcircle/internal/services"
)

func init() { gin.SetMode(gin.TestMode) }

type fixture struct {
	r     *gin.Engine
	state *appstore.Store
	docs  *services.DocumentService
	store *docstore.SQLStore
}

// newFixture mounts every route over a real SQLite store and an in-memory
// application store with simulated activity disabled.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := repo.OpenSQLite(filepath.Join(t.TempDir(), "api.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	db.Logger = logger.Default.LogMode(logger.Silent)
	if err := repo.AutoMigrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	st := appstore.New(localstorage.NewMemory(),
		appstore.WithLogger(zerolog.Nop()),
		appstore.WithActivityInterval(-1),
	)
	t.Cleanup(st.Close)

	store := docstore.NewSQLStore(db)
	docs := services.NewDocumentService(store, db, 2*time.Second)
	idem := services.NewIdempotencyService(db, time.Hour)
	h := New(st, docs, idem)

	r := gin.New()
	r.Use(middleware.RequestID(), middleware.UserID(),
		middleware.IdempotencyValidator(middleware.IdempotencyOptions{}, idem.Exists))
	r.GET("/state", h.GetState)
	r.PATCH("/state/profile", h.UpdateProfile)
	r.PUT("/state/challenge", h.SetActiveChallenge)
	r.POST("/state/dark-mode", h.ToggleDarkMode)
	r.POST("/state/toasts", h.AddToast)
	r.DELETE("/state/toasts/:id", h.RemoveToast)
	r.PUT("/state/posts/:id", h.UpdatePost)
	r.POST("/state/posts/:id/reactions", h.ReactToPost)
	r.POST("/state/logout", h.Logout)
	r.GET("/docs/*path", h.GetDocuments)
	r.PUT("/docs/*path", h.PutDocument)
	r.POST("/docs/*path", h.AddDocument)
	r.DELETE("/docs/*path", h.DeleteDocument)
	r.GET("/stream/docs/*path", h.StreamDocuments)
	r.GET("/stream/state", h.StreamState)

	return &fixture{r: r, state: st, docs: docs, store: store}
}

func (f *fixture) do(method, path string, body any, hdr ...string) *httptest.ResponseRecorder {
	var rd *bytes.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		rd = bytes.NewReader(raw)
	} else {
		rd = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(hdr); i += 2 {
		req.Header.Set(hdr[i], hdr[i+1])
	}
	w := httptest.NewRecorder()
	f.r.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
	return out
}

func wantStatus(t *testing.T, w *httptest.ResponseRecorder, code int) {
	t.Helper()
	if w.Code != code {
		t.Fatalf("status = %d; want %d; body=%s", w.Code, code, w.Body.String())
	}
}

func wantCode(t *testing.T, w *httptest.ResponseRecorder, status int, code string) {
	t.Helper()
	wantStatus(t, w, status)
	if got := decode[ErrorResponse](t, w).Code; got != code {
		t.Fatalf("code = %q; want %q", got, code)
	}
}

