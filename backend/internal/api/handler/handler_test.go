package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"learnhub/backend/internal/dto"
	"learnhub/backend/internal/model"
	"learnhub/backend/internal/service"
	pkgerrors "learnhub/backend/pkg/errors"
	"learnhub/backend/pkg/response"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// ═══════════════════════════════════════════════════════════
// Mock Services
// ═══════════════════════════════════════════════════════════

// ── Mock ProgressService ──

type mockProgressService struct {
	progress     *dto.ProgressResponse
	progressErr  error
	unlock       *dto.UnlockStatusResponse
	unlockErr    error
	next         *dto.ModuleRef
	nextErr      error
	viewedCalls  []string
	checkCalls   int
	unlockCourse string
}

func (m *mockProgressService) CalculateProgress(_ context.Context, _, _ string) (*dto.ProgressResponse, error) {
	return m.progress, m.progressErr
}
func (m *mockProgressService) MarkContentViewed(_ context.Context, _, _, contentID string) (*dto.ProgressResponse, error) {
	m.viewedCalls = append(m.viewedCalls, contentID)
	return m.progress, m.progressErr
}
func (m *mockProgressService) GetNextModuleToUnlock(_ context.Context, _ string) (*dto.ModuleRef, error) {
	return m.next, m.nextErr
}
func (m *mockProgressService) IsModuleUnlocked(_ context.Context, _, _, courseID string) (*dto.UnlockStatusResponse, error) {
	m.unlockCourse = courseID
	return m.unlock, m.unlockErr
}
func (m *mockProgressService) CheckAndUpdateModuleCompletion(_ context.Context, _, _ string) (*dto.ProgressResponse, error) {
	m.checkCalls++
	return m.progress, m.progressErr
}

// ── Mock EnrollmentService ──

type mockEnrollmentService struct {
	accessErr     error
	accessCalls   int
	visibleErr    error
	visibleCalls  int
	outline       *dto.CourseOutlineResponse
	outlineErr    error
	enrollResult  *dto.EnrollmentResponse
	enrollErr     error
	enrollReq     *dto.EnrollRequest
	importResult  *dto.ImportResult
	importErr     error
	importedBytes int
}

func (m *mockEnrollmentService) Enroll(_ context.Context, _ string, req *dto.EnrollRequest, _, _ string) (*dto.EnrollmentResponse, error) {
	m.enrollReq = req
	return m.enrollResult, m.enrollErr
}
func (m *mockEnrollmentService) Unenroll(_ context.Context, _, _, _, _ string) error {
	return nil
}
func (m *mockEnrollmentService) ListByCourse(_ context.Context, _, _, _ string) ([]dto.EnrollmentResponse, error) {
	return nil, nil
}
func (m *mockEnrollmentService) ListMyCourses(_ context.Context, _ string) ([]dto.CourseResponse, error) {
	return []dto.CourseResponse{}, nil
}
func (m *mockEnrollmentService) CheckModuleVisible(_ context.Context, moduleID, _, _ string) (*model.Module, error) {
	m.visibleCalls++
	if m.visibleErr != nil {
		return nil, m.visibleErr
	}
	return &model.Module{ModuleID: moduleID, IsPublished: true}, nil
}
func (m *mockEnrollmentService) CheckModuleAccess(_ context.Context, moduleID, _, _ string) (*model.Module, error) {
	m.accessCalls++
	if m.accessErr != nil {
		return nil, m.accessErr
	}
	return &model.Module{ModuleID: moduleID, IsPublished: true}, nil
}
func (m *mockEnrollmentService) CourseOutline(_ context.Context, _, _, _ string) (*dto.CourseOutlineResponse, error) {
	return m.outline, m.outlineErr
}
func (m *mockEnrollmentService) ImportRoster(_ context.Context, _ string, r io.Reader, _, _ string) (*dto.ImportResult, error) {
	b, _ := io.ReadAll(r)
	m.importedBytes = len(b)
	return m.importResult, m.importErr
}

// ── Mock ContentService ──
// 仅 GetInModule 被学习端使用，其余方法不应被调用

type mockContentService struct {
	service.ContentService
	inModuleErr error
}

func (m *mockContentService) GetInModule(_ context.Context, moduleID, contentID string) (*model.ContentItem, error) {
	if m.inModuleErr != nil {
		return nil, m.inModuleErr
	}
	return &model.ContentItem{ContentItemID: contentID, ModuleID: moduleID, IsPublished: true}, nil
}

// ── Mock SubmissionService / GradeService ──

type mockSubmissionService struct {
	submitResult *dto.SubmitResponse
	submitErr    error
	mine         *dto.SubmissionResponse
	mineErr      error
}

func (m *mockSubmissionService) Submit(_ context.Context, _ string, _ *dto.SubmitRequest, _, _ string) (*dto.SubmitResponse, error) {
	return m.submitResult, m.submitErr
}
func (m *mockSubmissionService) GetMine(_ context.Context, _, _ string) (*dto.SubmissionResponse, error) {
	return m.mine, m.mineErr
}
func (m *mockSubmissionService) ListByAssignment(_ context.Context, _, _, _ string) ([]dto.SubmissionResponse, error) {
	return nil, nil
}

type mockGradeService struct {
	gradeResult  *dto.GradeResponse
	gradeErr     error
	courseGrade  *dto.CourseGradeResponse
	gradeStudent string
	transcript   *dto.TranscriptResponse
}

func (m *mockGradeService) GradeSubmission(_ context.Context, _ string, _ *dto.GradeRequest, _, _ string) (*dto.GradeResponse, error) {
	return m.gradeResult, m.gradeErr
}
func (m *mockGradeService) CourseGrade(_ context.Context, _, studentID, _, _ string) (*dto.CourseGradeResponse, error) {
	m.gradeStudent = studentID
	return m.courseGrade, nil
}
func (m *mockGradeService) Transcript(_ context.Context, _ string) (*dto.TranscriptResponse, error) {
	return m.transcript, nil
}

// ── Mock GradebookService / CalendarService ──

type mockGradebookService struct {
	book     *dto.GradebookResponse
	buf      *bytes.Buffer
	filename string
	err      error
}

func (m *mockGradebookService) Build(_ context.Context, _, _, _ string) (*dto.GradebookResponse, error) {
	return m.book, m.err
}
func (m *mockGradebookService) Export(_ context.Context, _, _, _ string) (*bytes.Buffer, string, error) {
	return m.buf, m.filename, m.err
}

type mockCalendarService struct {
	body     string
	filename string
	err      error
}

func (m *mockCalendarService) CourseDeadlines(_ context.Context, _, _, _ string) (string, string, error) {
	return m.body, m.filename, m.err
}

// ═══════════════════════════════════════════════════════════
// Test Helpers
// ═══════════════════════════════════════════════════════════

func setAuth(c *gin.Context) {
	c.Set("user_id", "test-user-id")
	c.Set("role", "student")
}

func setAuthAs(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("user_id", "test-user-id")
		c.Set("role", role)
	}
}

func jsonBody(v interface{}) io.Reader {
	b, _ := json.Marshal(v)
	return bytes.NewReader(b)
}

func parseResponse(w *httptest.ResponseRecorder) response.Response {
	var resp response.Response
	json.Unmarshal(w.Body.Bytes(), &resp)
	return resp
}

func serve(r *gin.Engine, method, path string, body io.Reader) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	r.ServeHTTP(w, req)
	return w
}

func newLearningRouter(p *mockProgressService, e *mockEnrollmentService, c *mockContentService) *gin.Engine {
	h := NewLearningHandler(p, e, c)
	r := gin.New()
	r.Use(setAuth)
	r.GET("/modules/:id/progress", h.GetProgress)
	r.POST("/modules/:id/contents/:content_id/view", h.ViewContent)
	r.POST("/modules/:id/progress/check", h.CheckCompletion)
	r.GET("/modules/:id/unlock-status", h.GetUnlockStatus)
	r.GET("/modules/:id/next", h.GetNextModule)
	r.GET("/courses/:id/outline", h.GetOutline)
	return r
}

// ═══════════════════════════════════════════════════════════
// LearningHandler Tests
// ═══════════════════════════════════════════════════════════

func TestLearningHandler_ViewContent_Success(t *testing.T) {
	progress := &mockProgressService{progress: &dto.ProgressResponse{
		ModuleID:       "m1",
		Progress:       100,
		IsComplete:     true,
		UnlockedModule: &dto.ModuleRef{ID: "m2", Title: "第二章"},
	}}
	enrollment := &mockEnrollmentService{}
	r := newLearningRouter(progress, enrollment, &mockContentService{})

	w := serve(r, http.MethodPost, "/modules/m1/contents/c1/view", nil)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if enrollment.accessCalls != 1 {
		t.Errorf("expected access check once, got %d", enrollment.accessCalls)
	}
	if len(progress.viewedCalls) != 1 || progress.viewedCalls[0] != "c1" {
		t.Errorf("expected view of c1, got %v", progress.viewedCalls)
	}

	var body struct {
		Data dto.ProgressResponse `json:"data"`
	}
	json.Unmarshal(w.Body.Bytes(), &body)
	if body.Data.UnlockedModule == nil || body.Data.UnlockedModule.ID != "m2" {
		t.Errorf("expected unlocked module m2, got %+v", body.Data.UnlockedModule)
	}
}

func TestLearningHandler_ViewContent_ModuleLocked(t *testing.T) {
	prereq := "m0"
	locked := &service.ModuleLockedError{Status: &dto.UnlockStatusResponse{
		ModuleID:             "m1",
		IsUnlocked:           false,
		UnlockMessage:        "请先完成模块「导论」",
		PrerequisiteModuleID: &prereq,
	}}
	progress := &mockProgressService{}
	r := newLearningRouter(progress, &mockEnrollmentService{accessErr: locked}, &mockContentService{})

	w := serve(r, http.MethodPost, "/modules/m1/contents/c1/view", nil)

	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", w.Code)
	}
	var body struct {
		Code    int                      `json:"code"`
		Message string                   `json:"message"`
		Data    dto.UnlockStatusResponse `json:"data"`
	}
	json.Unmarshal(w.Body.Bytes(), &body)
	if body.Code != 15103 {
		t.Errorf("expected code 15103, got %d", body.Code)
	}
	if body.Message != "请先完成模块「导论」" {
		t.Errorf("unexpected message %q", body.Message)
	}
	if body.Data.PrerequisiteModuleID == nil || *body.Data.PrerequisiteModuleID != "m0" {
		t.Errorf("expected prerequisite m0, got %+v", body.Data.PrerequisiteModuleID)
	}
	if len(progress.viewedCalls) != 0 {
		t.Error("locked module must not record views")
	}
}

func TestLearningHandler_ViewContent_ContentNotInModule(t *testing.T) {
	progress := &mockProgressService{}
	r := newLearningRouter(progress, &mockEnrollmentService{}, &mockContentService{inModuleErr: service.ErrContentNotFound})

	w := serve(r, http.MethodPost, "/modules/m1/contents/other/view", nil)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
	if resp := parseResponse(w); resp.Code != 15201 {
		t.Errorf("expected code 15201, got %d", resp.Code)
	}
	if len(progress.viewedCalls) != 0 {
		t.Error("unknown content must not record views")
	}
}

func TestLearningHandler_ViewContent_StorageError(t *testing.T) {
	progress := &mockProgressService{progressErr: errors.New("connection reset")}
	r := newLearningRouter(progress, &mockEnrollmentService{}, &mockContentService{})

	w := serve(r, http.MethodPost, "/modules/m1/contents/c1/view", nil)

	if w.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", w.Code)
	}
}

func TestLearningHandler_GetProgress_NotEnrolled(t *testing.T) {
	r := newLearningRouter(&mockProgressService{}, &mockEnrollmentService{accessErr: service.ErrNotEnrolled}, &mockContentService{})

	w := serve(r, http.MethodGet, "/modules/m1/progress", nil)

	if w.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %d", w.Code)
	}
	if resp := parseResponse(w); resp.Code != 15401 {
		t.Errorf("expected code 15401, got %d", resp.Code)
	}
}

func TestLearningHandler_UnlockAndNext_RequireVisibility(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   int
	}{
		{"not enrolled", service.ErrNotEnrolled, http.StatusForbidden, 15401},
		{"draft course", service.ErrModuleNotFound, http.StatusNotFound, 15101},
	}
	paths := []string{"/modules/m1/unlock-status?course_id=course-1", "/modules/m1/next"}

	for _, tt := range tests {
		for _, path := range paths {
			t.Run(tt.name+" "+path, func(t *testing.T) {
				progress := &mockProgressService{
					unlock: &dto.UnlockStatusResponse{ModuleID: "m1", IsUnlocked: true},
					next:   &dto.ModuleRef{ID: "m2", Title: "第二章"},
				}
				enrollment := &mockEnrollmentService{visibleErr: tt.err}
				r := newLearningRouter(progress, enrollment, &mockContentService{})

				w := serve(r, http.MethodGet, path, nil)

				if w.Code != tt.wantStatus {
					t.Errorf("expected %d, got %d", tt.wantStatus, w.Code)
				}
				resp := parseResponse(w)
				if resp.Code != tt.wantCode {
					t.Errorf("expected code %d, got %d", tt.wantCode, resp.Code)
				}
				if resp.Data != nil {
					t.Errorf("expected no data leaked, got %v", resp.Data)
				}
				if progress.unlockCourse != "" {
					t.Error("unlock status must not be computed for invisible module")
				}
			})
		}
	}
}

func TestLearningHandler_GetUnlockStatus_LockedStillReturned(t *testing.T) {
	prereq := "m0"
	progress := &mockProgressService{unlock: &dto.UnlockStatusResponse{
		ModuleID:             "m1",
		IsUnlocked:           false,
		UnlockMessage:        "请先完成模块「导论」",
		PrerequisiteModuleID: &prereq,
	}}
	enrollment := &mockEnrollmentService{}
	r := newLearningRouter(progress, enrollment, &mockContentService{})

	w := serve(r, http.MethodGet, "/modules/m1/unlock-status", nil)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if enrollment.visibleCalls != 1 || enrollment.accessCalls != 0 {
		t.Errorf("expected visibility check only, got visible=%d access=%d", enrollment.visibleCalls, enrollment.accessCalls)
	}
	var body struct {
		Data dto.UnlockStatusResponse `json:"data"`
	}
	json.Unmarshal(w.Body.Bytes(), &body)
	if body.Data.IsUnlocked || body.Data.PrerequisiteModuleID == nil {
		t.Errorf("expected locked status with prerequisite, got %+v", body.Data)
	}
}

func TestLearningHandler_CheckCompletion(t *testing.T) {
	progress := &mockProgressService{progress: &dto.ProgressResponse{ModuleID: "m1", Progress: 50}}
	r := newLearningRouter(progress, &mockEnrollmentService{}, &mockContentService{})

	w := serve(r, http.MethodPost, "/modules/m1/progress/check", nil)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	if progress.checkCalls != 1 {
		t.Errorf("expected 1 completion check, got %d", progress.checkCalls)
	}
}

func TestLearningHandler_GetUnlockStatus_PassesCourseID(t *testing.T) {
	progress := &mockProgressService{unlock: &dto.UnlockStatusResponse{ModuleID: "m1", IsUnlocked: true}}
	r := newLearningRouter(progress, &mockEnrollmentService{}, &mockContentService{})

	w := serve(r, http.MethodGet, "/modules/m1/unlock-status?course_id=course-1", nil)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	if progress.unlockCourse != "course-1" {
		t.Errorf("expected course-1, got %q", progress.unlockCourse)
	}
}

func TestLearningHandler_GetUnlockStatus_WrongCourse(t *testing.T) {
	progress := &mockProgressService{unlockErr: service.ErrModuleNotFound}
	r := newLearningRouter(progress, &mockEnrollmentService{}, &mockContentService{})

	w := serve(r, http.MethodGet, "/modules/m1/unlock-status?course_id=other", nil)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}

func TestLearningHandler_GetNextModule_None(t *testing.T) {
	r := newLearningRouter(&mockProgressService{}, &mockEnrollmentService{}, &mockContentService{})

	w := serve(r, http.MethodGet, "/modules/m1/next", nil)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	if resp := parseResponse(w); resp.Data != nil {
		t.Errorf("expected empty data, got %v", resp.Data)
	}
}

func TestLearningHandler_Unauthenticated(t *testing.T) {
	h := NewLearningHandler(&mockProgressService{}, &mockEnrollmentService{}, &mockContentService{})
	r := gin.New()
	r.GET("/modules/:id/progress", h.GetProgress)

	w := serve(r, http.MethodGet, "/modules/m1/progress", nil)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
}

func TestLearningHandler_GetOutline(t *testing.T) {
	enrollment := &mockEnrollmentService{outline: &dto.CourseOutlineResponse{
		CourseID: "course-1",
		Modules: []dto.OutlineModuleResponse{
			{ID: "m1", IsUnlocked: true, Progress: 100, IsComplete: true},
			{ID: "m2", IsUnlocked: true},
		},
	}}
	r := newLearningRouter(&mockProgressService{}, enrollment, &mockContentService{})

	w := serve(r, http.MethodGet, "/courses/course-1/outline", nil)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var body struct {
		Data dto.CourseOutlineResponse `json:"data"`
	}
	json.Unmarshal(w.Body.Bytes(), &body)
	if len(body.Data.Modules) != 2 {
		t.Errorf("expected 2 modules, got %d", len(body.Data.Modules))
	}
}

// ═══════════════════════════════════════════════════════════
// EnrollmentHandler Tests
// ═══════════════════════════════════════════════════════════

func TestEnrollmentHandler_Enroll_EmptyBody(t *testing.T) {
	mock := &mockEnrollmentService{enrollResult: &dto.EnrollmentResponse{CourseID: "course-1", UserID: "test-user-id", Role: "student"}}
	h := NewEnrollmentHandler(mock)
	r := gin.New()
	r.Use(setAuth)
	r.POST("/courses/:id/enrollments", h.Enroll)

	w := serve(r, http.MethodPost, "/courses/course-1/enrollments", nil)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	if mock.enrollReq == nil || mock.enrollReq.UserID != "" {
		t.Errorf("expected empty self-enroll request, got %+v", mock.enrollReq)
	}
}

func TestEnrollmentHandler_Enroll_InvalidRole(t *testing.T) {
	h := NewEnrollmentHandler(&mockEnrollmentService{})
	r := gin.New()
	r.Use(setAuth)
	r.POST("/courses/:id/enrollments", h.Enroll)

	w := serve(r, http.MethodPost, "/courses/course-1/enrollments", jsonBody(map[string]string{"role": "admin"}))

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestEnrollmentHandler_Enroll_Forbidden(t *testing.T) {
	h := NewEnrollmentHandler(&mockEnrollmentService{enrollErr: service.ErrEnrollInvalid})
	r := gin.New()
	r.Use(setAuth)
	r.POST("/courses/:id/enrollments", h.Enroll)

	w := serve(r, http.MethodPost, "/courses/course-1/enrollments", jsonBody(map[string]string{"role": "instructor"}))

	if w.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %d", w.Code)
	}
	if resp := parseResponse(w); resp.Code != 15402 {
		t.Errorf("expected code 15402, got %d", resp.Code)
	}
}

func TestEnrollmentHandler_ImportRoster(t *testing.T) {
	tests := []struct {
		name       string
		importErr  error
		wantStatus int
		wantCode   int
	}{
		{"success", nil, http.StatusOK, 0},
		{"no data", service.ErrImportNoData, http.StatusBadRequest, 15403},
		{"bad header", service.ErrImportBadHeader, http.StatusBadRequest, 15405},
		{"forbidden", service.ErrCourseForbidden, http.StatusForbidden, 15002},
		{"unreadable", errors.New("zip: not a valid zip file"), http.StatusBadRequest, 15406},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := &mockEnrollmentService{importResult: &dto.ImportResult{Total: 1, Enrolled: 1}, importErr: tt.importErr}
			h := NewEnrollmentHandler(mock)
			r := gin.New()
			r.Use(setAuthAs("instructor"))
			r.POST("/courses/:id/enrollments/import", h.ImportRoster)

			var buf bytes.Buffer
			mw := multipart.NewWriter(&buf)
			part, _ := mw.CreateFormFile("file", "roster.xlsx")
			part.Write([]byte("fake-xlsx"))
			mw.Close()

			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/courses/course-1/enrollments/import", &buf)
			req.Header.Set("Content-Type", mw.FormDataContentType())
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("expected %d, got %d", tt.wantStatus, w.Code)
			}
			if resp := parseResponse(w); resp.Code != tt.wantCode {
				t.Errorf("expected code %d, got %d", tt.wantCode, resp.Code)
			}
			if mock.importedBytes != len("fake-xlsx") {
				t.Errorf("expected file forwarded to service, got %d bytes", mock.importedBytes)
			}
		})
	}
}

func TestEnrollmentHandler_ImportRoster_MissingFile(t *testing.T) {
	h := NewEnrollmentHandler(&mockEnrollmentService{})
	r := gin.New()
	r.Use(setAuthAs("instructor"))
	r.POST("/courses/:id/enrollments/import", h.ImportRoster)

	w := serve(r, http.MethodPost, "/courses/course-1/enrollments/import", nil)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

// ═══════════════════════════════════════════════════════════
// SubmissionHandler Tests
// ═══════════════════════════════════════════════════════════

func newSubmissionRouter(s *mockSubmissionService, g *mockGradeService, role string) *gin.Engine {
	h := NewSubmissionHandler(s, g)
	r := gin.New()
	r.Use(setAuthAs(role))
	r.POST("/assignments/:id/submissions", h.Submit)
	r.GET("/assignments/:id/submissions/me", h.GetMySubmission)
	r.PUT("/submissions/:id/grade", h.GradeSubmission)
	r.GET("/courses/:id/grade", h.GetCourseGrade)
	r.GET("/me/transcript", h.GetTranscript)
	return r
}

func TestSubmissionHandler_Submit_Success(t *testing.T) {
	mock := &mockSubmissionService{submitResult: &dto.SubmitResponse{
		Submission: dto.SubmissionResponse{ID: "s1", AssignmentID: "a1", Attempt: 1},
		Progress:   &dto.ProgressResponse{ModuleID: "m1", Progress: 100, IsComplete: true},
	}}
	r := newSubmissionRouter(mock, &mockGradeService{}, "student")

	w := serve(r, http.MethodPost, "/assignments/a1/submissions", jsonBody(dto.SubmitRequest{Body: "答案"}))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var body struct {
		Data dto.SubmitResponse `json:"data"`
	}
	json.Unmarshal(w.Body.Bytes(), &body)
	if body.Data.Progress == nil || !body.Data.Progress.IsComplete {
		t.Error("expected progress in submit response")
	}
}

func TestSubmissionHandler_Submit_EmptyBody(t *testing.T) {
	r := newSubmissionRouter(&mockSubmissionService{}, &mockGradeService{}, "student")

	w := serve(r, http.MethodPost, "/assignments/a1/submissions", jsonBody(map[string]string{}))

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestSubmissionHandler_Submit_Locked(t *testing.T) {
	locked := &service.ModuleLockedError{Status: &dto.UnlockStatusResponse{ModuleID: "m2", UnlockMessage: "请先完成模块「导论」"}}
	r := newSubmissionRouter(&mockSubmissionService{submitErr: locked}, &mockGradeService{}, "student")

	w := serve(r, http.MethodPost, "/assignments/a1/submissions", jsonBody(dto.SubmitRequest{Body: "答案"}))

	if w.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %d", w.Code)
	}
	if resp := parseResponse(w); resp.Code != 15103 {
		t.Errorf("expected code 15103, got %d", resp.Code)
	}
}

func TestSubmissionHandler_GetMySubmission_NotFound(t *testing.T) {
	r := newSubmissionRouter(&mockSubmissionService{mineErr: service.ErrSubmissionNotFound}, &mockGradeService{}, "student")

	w := serve(r, http.MethodGet, "/assignments/a1/submissions/me", nil)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}

func TestSubmissionHandler_Grade_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   int
	}{
		{"points out of range", service.ErrGradePointsInvalid, http.StatusBadRequest, 15601},
		{"version required", service.ErrGradeVersionRequired, http.StatusBadRequest, 15602},
		{"stale version", pkgerrors.ErrOptimisticLock, http.StatusConflict, 10005},
		{"forbidden", service.ErrCourseForbidden, http.StatusForbidden, 15002},
		{"not found", service.ErrSubmissionNotFound, http.StatusNotFound, 15501},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newSubmissionRouter(&mockSubmissionService{}, &mockGradeService{gradeErr: tt.err}, "instructor")

			w := serve(r, http.MethodPut, "/submissions/s1/grade", strings.NewReader(`{"points": 90}`))

			if w.Code != tt.wantStatus {
				t.Errorf("expected %d, got %d", tt.wantStatus, w.Code)
			}
			if resp := parseResponse(w); resp.Code != tt.wantCode {
				t.Errorf("expected code %d, got %d", tt.wantCode, resp.Code)
			}
		})
	}
}

func TestSubmissionHandler_Grade_MissingPoints(t *testing.T) {
	r := newSubmissionRouter(&mockSubmissionService{}, &mockGradeService{}, "instructor")

	w := serve(r, http.MethodPut, "/submissions/s1/grade", strings.NewReader(`{"feedback": "好"}`))

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestSubmissionHandler_GetCourseGrade_DefaultsToSelf(t *testing.T) {
	grade := &mockGradeService{courseGrade: &dto.CourseGradeResponse{CourseID: "course-1", Letter: "B"}}
	r := newSubmissionRouter(&mockSubmissionService{}, grade, "student")

	w := serve(r, http.MethodGet, "/courses/course-1/grade", nil)
	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	if grade.gradeStudent != "test-user-id" {
		t.Errorf("expected self, got %q", grade.gradeStudent)
	}

	serve(r, http.MethodGet, "/courses/course-1/grade?student_id=other", nil)
	if grade.gradeStudent != "other" {
		t.Errorf("expected other, got %q", grade.gradeStudent)
	}
}

// ═══════════════════════════════════════════════════════════
// ReportHandler Tests
// ═══════════════════════════════════════════════════════════

func newReportRouter(g *mockGradebookService, cal *mockCalendarService) *gin.Engine {
	h := NewReportHandler(g, cal)
	r := gin.New()
	r.Use(setAuthAs("instructor"))
	r.GET("/courses/:id/gradebook", h.GetGradebook)
	r.GET("/courses/:id/gradebook/export", h.ExportGradebook)
	r.GET("/courses/:id/calendar.ics", h.ExportDeadlines)
	return r
}

func TestReportHandler_ExportGradebook_Success(t *testing.T) {
	r := newReportRouter(&mockGradebookService{
		buf:      bytes.NewBufferString("fake-xlsx-content"),
		filename: "课程_成绩册.xlsx",
	}, &mockCalendarService{})

	w := serve(r, http.MethodGet, "/courses/course-1/gradebook/export", nil)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != contentTypeXLSX {
		t.Errorf("unexpected content type %q", ct)
	}
	if cd := w.Header().Get("Content-Disposition"); !strings.HasPrefix(cd, "attachment; filename*=UTF-8''") {
		t.Errorf("unexpected disposition %q", cd)
	}
	if w.Body.String() != "fake-xlsx-content" {
		t.Errorf("unexpected body %q", w.Body.String())
	}
}

func TestReportHandler_ExportGradebook_GenerateFail(t *testing.T) {
	r := newReportRouter(&mockGradebookService{err: service.ErrExportGenerateFail}, &mockCalendarService{})

	w := serve(r, http.MethodGet, "/courses/course-1/gradebook/export", nil)

	if w.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", w.Code)
	}
}

func TestReportHandler_GetGradebook_Forbidden(t *testing.T) {
	r := newReportRouter(&mockGradebookService{err: service.ErrCourseForbidden}, &mockCalendarService{})

	w := serve(r, http.MethodGet, "/courses/course-1/gradebook", nil)

	if w.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %d", w.Code)
	}
}

func TestReportHandler_ExportDeadlines(t *testing.T) {
	r := newReportRouter(&mockGradebookService{}, &mockCalendarService{
		body:     "BEGIN:VCALENDAR\r\nEND:VCALENDAR\r\n",
		filename: "course_deadlines.ics",
	})

	w := serve(r, http.MethodGet, "/courses/course-1/calendar.ics", nil)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/calendar") {
		t.Errorf("unexpected content type %q", ct)
	}
	if !strings.HasPrefix(w.Body.String(), "BEGIN:VCALENDAR") {
		t.Errorf("unexpected body %q", w.Body.String())
	}
}

// ═══════════════════════════════════════════════════════════
// Error Mapping
// ═══════════════════════════════════════════════════════════

func TestHandleCommonError_Mapping(t *testing.T) {
	tests := []struct {
		err        error
		wantStatus int
		wantCode   int
	}{
		{service.ErrCourseNotFound, http.StatusNotFound, 15001},
		{service.ErrModuleNotFound, http.StatusNotFound, 15101},
		{service.ErrModuleOrderConflict, http.StatusConflict, 15102},
		{service.ErrAssignmentNotFound, http.StatusNotFound, 15301},
		{service.ErrAssignmentDueInvalid, http.StatusBadRequest, 15302},
		{service.ErrUserNotFound, http.StatusNotFound, 11001},
		{errors.New("boom"), http.StatusInternalServerError, 50000},
	}

	for _, tt := range tests {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		handleCommonError(c, tt.err)

		if w.Code != tt.wantStatus {
			t.Errorf("%v: expected %d, got %d", tt.err, tt.wantStatus, w.Code)
		}
		if resp := parseResponse(w); resp.Code != tt.wantCode {
			t.Errorf("%v: expected code %d, got %d", tt.err, tt.wantCode, resp.Code)
		}
	}
}
