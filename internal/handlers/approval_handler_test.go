package handlers

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/hek316/workin/internal/models"

	"github.com/stretchr/testify/assert"
)

func createRequest(t *testing.T, e *testEnv, typ string) uint {
	t.Helper()
	body := farFix()
	body["type"] = typ
	body["reason"] = "client visit ran long"
	w, resp := e.do(t, http.MethodPost, "/approvals", body)
	assert.Equal(t, http.StatusOK, w.Code)
	return uint(resp["data"].(map[string]any)["id"].(float64))
}

func TestCreateApprovalRequest(t *testing.T) {
	e := newTestEnv(t)

	id := createRequest(t, e, "check_in")
	assert.NotZero(t, id)

	var row models.ApprovalRequest
	assert.NoError(t, e.db.First(&row, id).Error)
	assert.Equal(t, models.ApprovalPending, row.Status)
	assert.Equal(t, "2024-03-15", row.Date)
	assert.Equal(t, "emp-1", row.UserUID)
}

func TestDuplicatePendingRequestConflicts(t *testing.T) {
	e := newTestEnv(t)

	createRequest(t, e, "check_in")

	body := farFix()
	body["type"] = "check_in"
	body["reason"] = "still stuck in traffic"
	w, _ := e.do(t, http.MethodPost, "/approvals", body)
	assert.Equal(t, http.StatusConflict, w.Code)

	// A different type for the same day is a different key.
	body["type"] = "check_out"
	w, _ = e.do(t, http.MethodPost, "/approvals", body)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRecreateAfterRejection(t *testing.T) {
	e := newTestEnv(t)

	id := createRequest(t, e, "check_in")

	w, _ := e.do(t, http.MethodPost, fmt.Sprintf("/admin/approvals/%d/reject", id),
		map[string]any{"rejection_reason": "no supporting detail"})
	assert.Equal(t, http.StatusOK, w.Code)

	// The key is reused: a fresh pending request supersedes the rejection.
	body := farFix()
	body["type"] = "check_in"
	body["reason"] = "attaching the client sign-in sheet"
	w, resp := e.do(t, http.MethodPost, "/approvals", body)
	assert.Equal(t, http.StatusOK, w.Code)

	data := resp["data"].(map[string]any)
	assert.Equal(t, float64(id), data["id"].(float64))
	assert.Equal(t, "pending", data["status"])
	assert.Nil(t, data["rejection_reason"])
	assert.Nil(t, data["reviewed_at"])
}

func TestRejectRequiresReason(t *testing.T) {
	e := newTestEnv(t)

	id := createRequest(t, e, "check_in")

	w, _ := e.do(t, http.MethodPost, fmt.Sprintf("/admin/approvals/%d/reject", id),
		map[string]any{"rejection_reason": "no"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = e.do(t, http.MethodPost, fmt.Sprintf("/admin/approvals/%d/reject", id), nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestReasonMinimumLength(t *testing.T) {
	e := newTestEnv(t)

	body := farFix()
	body["type"] = "check_in"
	body["reason"] = "hi"
	w, _ := e.do(t, http.MethodPost, "/approvals", body)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestApproveMaterializesCheckIn(t *testing.T) {
	e := newTestEnv(t)

	e.setNow(time.Date(2024, 3, 15, 9, 20, 0, 0, kst))
	id := createRequest(t, e, "check_in")

	e.setNow(time.Date(2024, 3, 15, 9, 45, 0, 0, kst))
	w, resp := e.do(t, http.MethodPost, fmt.Sprintf("/admin/approvals/%d/approve", id), nil)
	assert.Equal(t, http.StatusOK, w.Code)

	data := resp["data"].(map[string]any)
	assert.Equal(t, "approved", data["status"])
	assert.Equal(t, "adm-1", data["reviewed_by"])
	assert.NotNil(t, data["reviewed_at"])

	att := resp["attendance"].(map[string]any)
	assert.Equal(t, true, att["check_in_approved"])
	assert.Equal(t, "late", att["check_in_status"])
	// Location comes from the request, not from any fresh sensor read.
	assert.InDelta(t, 126.99162, att["check_in_lng"].(float64), 1e-6)

	var row models.Attendance
	assert.NoError(t, e.db.Where("user_uid = ? AND date = ?", "emp-1", "2024-03-15").First(&row).Error)
	assert.True(t, row.CheckInApproved)
}

func TestApproveMaterializesCheckOut(t *testing.T) {
	e := newTestEnv(t)

	e.do(t, http.MethodPost, "/attendance/check-in", officeFix())

	e.setNow(time.Date(2024, 3, 15, 16, 0, 0, 0, kst))
	id := createRequest(t, e, "check_out")

	e.setNow(time.Date(2024, 3, 15, 16, 30, 0, 0, kst))
	w, resp := e.do(t, http.MethodPost, fmt.Sprintf("/admin/approvals/%d/approve", id), nil)
	assert.Equal(t, http.StatusOK, w.Code)

	att := resp["attendance"].(map[string]any)
	assert.Equal(t, true, att["check_out_approved"])
	assert.Equal(t, "early", att["check_out_status"])
	assert.Equal(t, 7.5, att["work_hours"])
}

func TestApproveCheckOutWithoutCheckInConflicts(t *testing.T) {
	e := newTestEnv(t)

	id := createRequest(t, e, "check_out")

	w, _ := e.do(t, http.MethodPost, fmt.Sprintf("/admin/approvals/%d/approve", id), nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	// The transaction rolled back: the request is still pending.
	var row models.ApprovalRequest
	assert.NoError(t, e.db.First(&row, id).Error)
	assert.Equal(t, models.ApprovalPending, row.Status)
}

func TestDoubleApproveConflicts(t *testing.T) {
	e := newTestEnv(t)

	id := createRequest(t, e, "check_in")

	w, _ := e.do(t, http.MethodPost, fmt.Sprintf("/admin/approvals/%d/approve", id), nil)
	assert.Equal(t, http.StatusOK, w.Code)

	// Stale admin UI clicking approve again must see a conflict, not a
	// silent no-op.
	w, _ = e.do(t, http.MethodPost, fmt.Sprintf("/admin/approvals/%d/approve", id), nil)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestRejectThenApproveConflicts(t *testing.T) {
	e := newTestEnv(t)

	id := createRequest(t, e, "check_in")

	w, _ := e.do(t, http.MethodPost, fmt.Sprintf("/admin/approvals/%d/reject", id),
		map[string]any{"rejection_reason": "not today"})
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = e.do(t, http.MethodPost, fmt.Sprintf("/admin/approvals/%d/approve", id), nil)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestRejectLeavesNoAttendance(t *testing.T) {
	e := newTestEnv(t)

	id := createRequest(t, e, "check_in")

	w, _ := e.do(t, http.MethodPost, fmt.Sprintf("/admin/approvals/%d/reject", id),
		map[string]any{"rejection_reason": "insufficient reason"})
	assert.Equal(t, http.StatusOK, w.Code)

	var n int64
	assert.NoError(t, e.db.Model(&models.Attendance{}).Count(&n).Error)
	assert.Zero(t, n)
}

func TestListPendingForAdmin(t *testing.T) {
	e := newTestEnv(t)

	w, resp := e.do(t, http.MethodGet, "/admin/approvals/pending", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, resp["data"])

	id := createRequest(t, e, "check_in")

	w, resp = e.do(t, http.MethodGet, "/admin/approvals/pending", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	rows := resp["data"].([]any)
	if assert.Len(t, rows, 1) {
		assert.Equal(t, float64(id), rows[0].(map[string]any)["id"])
	}
}

func TestApprovalStatusPublished(t *testing.T) {
	e := newTestEnv(t)

	id := createRequest(t, e, "check_in")

	ch, cancel := e.hub.Subscribe(fmt.Sprintf("approval/%d", id))
	defer cancel()

	w, _ := e.do(t, http.MethodPost, fmt.Sprintf("/admin/approvals/%d/approve", id), nil)
	assert.Equal(t, http.StatusOK, w.Code)

	select {
	case s := <-ch:
		row, ok := s.(models.ApprovalRequest)
		if assert.True(t, ok) {
			assert.Equal(t, models.ApprovalApproved, row.Status)
		}
	case <-time.After(time.Second):
		t.Fatal("no snapshot published on approve")
	}
}

// A review that commits while the watch stream is still being set up must
// still reach the watcher: terminal states publish exactly once, so the
// stream subscribes before it loads the initial snapshot. Whichever side
// wins the race, the output has to contain the approved state.
func TestWatchSeesReviewDuringStreamSetup(t *testing.T) {
	e := newTestEnv(t)
	e.r.GET("/approvals/:id/watch", asUser("emp-1", "Kim Jiho", models.RoleEmployee), e.appr.Watch)

	id := createRequest(t, e, "check_in")

	ctx, stop := context.WithCancel(context.Background())
	req := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/approvals/%d/watch", id), nil).WithContext(ctx)
	w := newCloseNotifyRecorder()

	done := make(chan struct{})
	go func() {
		defer close(done)
		e.r.ServeHTTP(w, req)
	}()

	wr, _ := e.do(t, http.MethodPost, fmt.Sprintf("/admin/approvals/%d/approve", id), nil)
	assert.Equal(t, http.StatusOK, wr.Code)

	time.Sleep(100 * time.Millisecond)
	stop()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("watch stream did not stop on client disconnect")
	}

	assert.Contains(t, w.Body.String(), `"status":"approved"`)
}
