package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/hek316/workin/internal/config"
	"github.com/hek316/workin/internal/models"
	"github.com/hek316/workin/internal/notify"
	"github.com/hek316/workin/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var kst = time.FixedZone("KST", 9*60*60)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := storage.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func testConfig() *config.Config {
	return &config.Config{
		CheckInCutoff:    config.ClockTime{Hour: 9, Minute: 5},
		CheckOutCutoff:   config.ClockTime{Hour: 18, Minute: 0},
		CheckInRadius:    1000,
		CheckOutRadius:   3000,
		MaxAccuracy:      50,
		MinReasonLen:     5,
		Timezone:         kst,
		DefaultOfficeLat: 37.5665,
		DefaultOfficeLng: 126.9780,
	}
}

// asUser stands in for the JWT middleware in tests.
func asUser(uid, name string, role models.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("uid", uid)
		c.Set("name", name)
		c.Set("role", string(role))
		c.Next()
	}
}

type testEnv struct {
	db   *gorm.DB
	cfg  *config.Config
	hub  *notify.Hub
	att  *AttendanceHandler
	appr *ApprovalHandler
	r    *gin.Engine
	now  time.Time
}

// setNow moves both handlers' clocks.
func (e *testEnv) setNow(t time.Time) {
	e.now = t
	e.att.Now = func() time.Time { return e.now }
	e.appr.Now = func() time.Time { return e.now }
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := newTestDB(t)
	cfg := testConfig()
	hub := notify.NewHub()
	t.Cleanup(hub.Close)

	e := &testEnv{
		db:   db,
		cfg:  cfg,
		hub:  hub,
		att:  NewAttendanceHandler(db, cfg),
		appr: NewApprovalHandler(db, cfg, hub),
	}
	e.setNow(time.Date(2024, 3, 15, 9, 0, 0, 0, kst))

	r := gin.New()
	emp := r.Group("/", asUser("emp-1", "Kim Jiho", models.RoleEmployee))
	{
		emp.POST("/attendance/check-in", e.att.CheckIn)
		emp.POST("/attendance/check-out", e.att.CheckOut)
		emp.GET("/attendance/today", e.att.Today)
		emp.GET("/attendance/history", e.att.History)
		emp.GET("/attendance/monthly", e.att.Monthly)
		emp.POST("/approvals", e.appr.Create)
		emp.GET("/approvals", e.appr.ListMine)
	}
	adm := r.Group("/admin", asUser("adm-1", "Admin", models.RoleAdmin))
	{
		adm.GET("/approvals/pending", e.appr.ListPending)
		adm.POST("/approvals/:id/approve", e.appr.Approve)
		adm.POST("/approvals/:id/reject", e.appr.Reject)
	}
	e.r = r
	return e
}

func (e *testEnv) do(t *testing.T, method, path string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	e.r.ServeHTTP(w, req)

	var resp map[string]any
	if w.Body.Len() > 0 {
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	}
	return w, resp
}

// officeFix is a tight GPS fix right at the default office.
func officeFix() gin.H {
	return gin.H{"lat": 37.5665, "lng": 126.9780, "accuracy": 10.0}
}

// farFix is ~1.2km east of the default office.
func farFix() gin.H {
	return gin.H{"lat": 37.5665, "lng": 126.99162, "accuracy": 10.0}
}

// closeNotifyRecorder adds the CloseNotify method gin's Stream requires,
// which httptest.ResponseRecorder does not implement.
type closeNotifyRecorder struct {
	*httptest.ResponseRecorder
	closed chan bool
}

func newCloseNotifyRecorder() *closeNotifyRecorder {
	return &closeNotifyRecorder{httptest.NewRecorder(), make(chan bool, 1)}
}

func (r *closeNotifyRecorder) CloseNotify() <-chan bool { return r.closed }
