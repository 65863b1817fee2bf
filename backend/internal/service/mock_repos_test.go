package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"gorm.io/gorm"

	"learnhub/backend/internal/model"
	"learnhub/backend/internal/repository"
	pkgerrors "learnhub/backend/pkg/errors"
)

// ── 测试辅助 ──

type mockRepos struct {
	user       *mockUserRepo
	course     *mockCourseRepo
	enrollment *mockEnrollmentRepo
	module     *mockModuleRepo
	content    *mockContentRepo
	assignment *mockAssignmentRepo
	submission *mockSubmissionRepo
	grade      *mockGradeRepo
	progress   *mockProgressRepo
}

func newMockRepos() (*repository.Repository, *mockRepos) {
	m := &mockRepos{
		user:       newMockUserRepo(),
		course:     newMockCourseRepo(),
		module:     newMockModuleRepo(),
		content:    newMockContentRepo(),
		submission: newMockSubmissionRepo(),
		grade:      newMockGradeRepo(),
		progress:   newMockProgressRepo(),
	}
	m.enrollment = newMockEnrollmentRepo(m.user)
	m.assignment = newMockAssignmentRepo(m.module)

	repo := &repository.Repository{
		User:       m.user,
		Course:     m.course,
		Enrollment: m.enrollment,
		Module:     m.module,
		Content:    m.content,
		Assignment: m.assignment,
		Submission: m.submission,
		Grade:      m.grade,
		Progress:   m.progress,
	}
	return repo, m
}

// ── Mock UserRepository ──

type mockUserRepo struct {
	users map[string]*model.User
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*model.User)}
}

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	for _, u := range m.users {
		if u.Email == user.Email {
			return gorm.ErrDuplicatedKey
		}
	}
	if user.UserID == "" {
		user.UserID = "user-" + user.Email
	}
	m.users[user.UserID] = user
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	if u, ok := m.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) ListByIDs(_ context.Context, ids []string) ([]model.User, error) {
	var result []model.User
	for _, id := range ids {
		if u, ok := m.users[id]; ok {
			result = append(result, *u)
		}
	}
	return result, nil
}

func (m *mockUserRepo) List(_ context.Context, role string, offset, limit int) ([]model.User, int64, error) {
	var result []model.User
	for _, u := range m.users {
		if role != "" && u.Role != role {
			continue
		}
		result = append(result, *u)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Email < result[j].Email })
	total := int64(len(result))
	if offset >= len(result) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(result) {
		end = len(result)
	}
	return result[offset:end], total, nil
}

func (m *mockUserRepo) Update(_ context.Context, user *model.User) error {
	cp := *user
	m.users[user.UserID] = &cp
	return nil
}

// ── Mock CourseRepository ──

type mockCourseRepo struct {
	courses map[string]*model.Course
}

func newMockCourseRepo() *mockCourseRepo {
	return &mockCourseRepo{courses: make(map[string]*model.Course)}
}

func (m *mockCourseRepo) Create(_ context.Context, course *model.Course) error {
	if course.CourseID == "" {
		course.CourseID = "course-" + course.Title
	}
	m.courses[course.CourseID] = course
	return nil
}

func (m *mockCourseRepo) GetByID(_ context.Context, id string) (*model.Course, error) {
	if c, ok := m.courses[id]; ok {
		cp := *c
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockCourseRepo) List(_ context.Context, filter repository.CourseFilter) ([]model.Course, int64, error) {
	var result []model.Course
	for _, c := range m.courses {
		switch {
		case filter.OwnerID != "" && filter.PublishedOnly:
			if !c.IsPublished && c.OwnerID != filter.OwnerID {
				continue
			}
		case filter.OwnerID != "":
			if c.OwnerID != filter.OwnerID {
				continue
			}
		case filter.PublishedOnly:
			if !c.IsPublished {
				continue
			}
		}
		result = append(result, *c)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Title < result[j].Title })
	return result, int64(len(result)), nil
}

func (m *mockCourseRepo) ListByIDs(_ context.Context, ids []string) ([]model.Course, error) {
	var result []model.Course
	for _, id := range ids {
		if c, ok := m.courses[id]; ok {
			result = append(result, *c)
		}
	}
	return result, nil
}

func (m *mockCourseRepo) Update(_ context.Context, course *model.Course) error {
	cp := *course
	m.courses[course.CourseID] = &cp
	return nil
}

func (m *mockCourseRepo) Delete(_ context.Context, id string, _ string) error {
	delete(m.courses, id)
	return nil
}

// ── Mock EnrollmentRepository ──

type mockEnrollmentRepo struct {
	items map[string]*model.CourseEnrollment
	users *mockUserRepo
}

func newMockEnrollmentRepo(users *mockUserRepo) *mockEnrollmentRepo {
	return &mockEnrollmentRepo{items: make(map[string]*model.CourseEnrollment), users: users}
}

func enrollmentKey(courseID, userID string) string {
	return courseID + "|" + userID
}

func (m *mockEnrollmentRepo) Create(_ context.Context, e *model.CourseEnrollment) (bool, error) {
	key := enrollmentKey(e.CourseID, e.UserID)
	if _, ok := m.items[key]; ok {
		return false, nil
	}
	if e.EnrolledAt.IsZero() {
		e.EnrolledAt = time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	}
	cp := *e
	m.items[key] = &cp
	return true, nil
}

func (m *mockEnrollmentRepo) Get(_ context.Context, courseID, userID string) (*model.CourseEnrollment, error) {
	if e, ok := m.items[enrollmentKey(courseID, userID)]; ok {
		cp := *e
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockEnrollmentRepo) ListByCourse(_ context.Context, courseID, role string) ([]model.CourseEnrollment, error) {
	var result []model.CourseEnrollment
	for _, e := range m.items {
		if e.CourseID != courseID || (role != "" && e.Role != role) {
			continue
		}
		cp := *e
		if u, ok := m.users.users[e.UserID]; ok {
			cp.User = u
		}
		result = append(result, cp)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].UserID < result[j].UserID })
	return result, nil
}

func (m *mockEnrollmentRepo) ListByUser(_ context.Context, userID string) ([]model.CourseEnrollment, error) {
	var result []model.CourseEnrollment
	for _, e := range m.items {
		if e.UserID == userID {
			result = append(result, *e)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CourseID < result[j].CourseID })
	return result, nil
}

func (m *mockEnrollmentRepo) Delete(_ context.Context, courseID, userID string) error {
	delete(m.items, enrollmentKey(courseID, userID))
	return nil
}

// ── Mock ModuleRepository ──

type mockModuleRepo struct {
	modules map[string]*model.Module
	nextErr error // 注入 NextPublished 失败
}

func newMockModuleRepo() *mockModuleRepo {
	return &mockModuleRepo{modules: make(map[string]*model.Module)}
}

func (m *mockModuleRepo) orderTaken(module *model.Module) bool {
	for _, other := range m.modules {
		if other.ModuleID != module.ModuleID && other.CourseID == module.CourseID && other.OrderIndex == module.OrderIndex {
			return true
		}
	}
	return false
}

func (m *mockModuleRepo) Create(_ context.Context, module *model.Module) error {
	if module.ModuleID == "" {
		module.ModuleID = "mod-" + module.Title
	}
	if m.orderTaken(module) {
		return gorm.ErrDuplicatedKey
	}
	cp := *module
	m.modules[module.ModuleID] = &cp
	return nil
}

func (m *mockModuleRepo) GetByID(_ context.Context, id string) (*model.Module, error) {
	if mod, ok := m.modules[id]; ok {
		cp := *mod
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockModuleRepo) sorted(courseID string, publishedOnly bool) []model.Module {
	var result []model.Module
	for _, mod := range m.modules {
		if mod.CourseID != courseID || (publishedOnly && !mod.IsPublished) {
			continue
		}
		result = append(result, *mod)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].OrderIndex < result[j].OrderIndex })
	return result
}

func (m *mockModuleRepo) ListByCourse(_ context.Context, courseID string, publishedOnly bool) ([]model.Module, error) {
	return m.sorted(courseID, publishedOnly), nil
}

func (m *mockModuleRepo) MaxOrderIndex(_ context.Context, courseID string) (int, error) {
	all := m.sorted(courseID, false)
	if len(all) == 0 {
		return -1, nil
	}
	return all[len(all)-1].OrderIndex, nil
}

func (m *mockModuleRepo) NextPublished(_ context.Context, courseID string, orderIndex int) (*model.Module, error) {
	if m.nextErr != nil {
		return nil, m.nextErr
	}
	for _, mod := range m.sorted(courseID, true) {
		if mod.OrderIndex > orderIndex {
			return &mod, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockModuleRepo) PrevPublished(_ context.Context, courseID string, orderIndex int) (*model.Module, error) {
	all := m.sorted(courseID, true)
	for i := len(all) - 1; i >= 0; i-- {
		if all[i].OrderIndex < orderIndex {
			return &all[i], nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockModuleRepo) Update(_ context.Context, module *model.Module) error {
	if m.orderTaken(module) {
		return gorm.ErrDuplicatedKey
	}
	cp := *module
	m.modules[module.ModuleID] = &cp
	return nil
}

func (m *mockModuleRepo) Delete(_ context.Context, id string, _ string) error {
	delete(m.modules, id)
	return nil
}

// ── Mock ContentItemRepository ──

type mockContentRepo struct {
	items map[string]*model.ContentItem
}

func newMockContentRepo() *mockContentRepo {
	return &mockContentRepo{items: make(map[string]*model.ContentItem)}
}

func (m *mockContentRepo) Create(_ context.Context, item *model.ContentItem) error {
	if item.ContentItemID == "" {
		item.ContentItemID = fmt.Sprintf("content-%d", len(m.items)+1)
	}
	cp := *item
	m.items[item.ContentItemID] = &cp
	return nil
}

func (m *mockContentRepo) GetByID(_ context.Context, id string) (*model.ContentItem, error) {
	if item, ok := m.items[id]; ok {
		cp := *item
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockContentRepo) ListByModule(_ context.Context, moduleID string, publishedOnly bool) ([]model.ContentItem, error) {
	var result []model.ContentItem
	for _, item := range m.items {
		if item.ModuleID != moduleID || (publishedOnly && !item.IsPublished) {
			continue
		}
		result = append(result, *item)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].OrderIndex < result[j].OrderIndex })
	return result, nil
}

func (m *mockContentRepo) CountPublished(_ context.Context, moduleID string) (int64, error) {
	var count int64
	for _, item := range m.items {
		if item.ModuleID == moduleID && item.IsPublished {
			count++
		}
	}
	return count, nil
}

func (m *mockContentRepo) Update(_ context.Context, item *model.ContentItem) error {
	cp := *item
	m.items[item.ContentItemID] = &cp
	return nil
}

func (m *mockContentRepo) Delete(_ context.Context, id string, _ string) error {
	delete(m.items, id)
	return nil
}

// ── Mock AssignmentRepository ──

type mockAssignmentRepo struct {
	items   map[string]*model.Assignment
	modules *mockModuleRepo
}

func newMockAssignmentRepo(modules *mockModuleRepo) *mockAssignmentRepo {
	return &mockAssignmentRepo{items: make(map[string]*model.Assignment), modules: modules}
}

func (m *mockAssignmentRepo) Create(_ context.Context, a *model.Assignment) error {
	if a.AssignmentID == "" {
		a.AssignmentID = "asg-" + a.Title
	}
	cp := *a
	m.items[a.AssignmentID] = &cp
	return nil
}

func (m *mockAssignmentRepo) GetByID(_ context.Context, id string) (*model.Assignment, error) {
	if a, ok := m.items[id]; ok {
		cp := *a
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockAssignmentRepo) ListByModule(_ context.Context, moduleID string, publishedOnly bool) ([]model.Assignment, error) {
	var result []model.Assignment
	for _, a := range m.items {
		if a.ModuleID != moduleID || (publishedOnly && !a.IsPublished) {
			continue
		}
		result = append(result, *a)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].AssignmentID < result[j].AssignmentID })
	return result, nil
}

func (m *mockAssignmentRepo) ListByCourse(_ context.Context, courseID string, publishedOnly bool) ([]model.Assignment, error) {
	var result []model.Assignment
	for _, a := range m.items {
		if a.CourseID != courseID || (publishedOnly && !a.IsPublished) {
			continue
		}
		mod, ok := m.modules.modules[a.ModuleID]
		if !ok {
			continue
		}
		cp := *a
		cp.Module = mod
		result = append(result, cp)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Module.OrderIndex != result[j].Module.OrderIndex {
			return result[i].Module.OrderIndex < result[j].Module.OrderIndex
		}
		return result[i].AssignmentID < result[j].AssignmentID
	})
	return result, nil
}

func (m *mockAssignmentRepo) ListPublishedIDs(_ context.Context, moduleID string) ([]string, error) {
	var ids []string
	for _, a := range m.items {
		if a.ModuleID == moduleID && a.IsPublished {
			ids = append(ids, a.AssignmentID)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

func (m *mockAssignmentRepo) Update(_ context.Context, a *model.Assignment) error {
	cp := *a
	cp.Module = nil
	m.items[a.AssignmentID] = &cp
	return nil
}

func (m *mockAssignmentRepo) Delete(_ context.Context, id string, _ string) error {
	delete(m.items, id)
	return nil
}

// ── Mock SubmissionRepository ──

type mockSubmissionRepo struct {
	mu   sync.Mutex
	subs map[string]*model.Submission // key: assignment|student
}

func newMockSubmissionRepo() *mockSubmissionRepo {
	return &mockSubmissionRepo{subs: make(map[string]*model.Submission)}
}

func (m *mockSubmissionRepo) Upsert(_ context.Context, sub *model.Submission) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := sub.AssignmentID + "|" + sub.StudentID
	if existing, ok := m.subs[key]; ok {
		existing.Body = sub.Body
		existing.SubmittedAt = sub.SubmittedAt
		existing.IsLate = sub.IsLate
		existing.Attempt++
		*sub = *existing
		return nil
	}
	sub.SubmissionID = fmt.Sprintf("sub-%d", len(m.subs)+1)
	if sub.Attempt == 0 {
		sub.Attempt = 1
	}
	cp := *sub
	m.subs[key] = &cp
	return nil
}

func (m *mockSubmissionRepo) GetByID(_ context.Context, id string) (*model.Submission, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.subs {
		if s.SubmissionID == id {
			cp := *s
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockSubmissionRepo) GetByAssignmentAndStudent(_ context.Context, assignmentID, studentID string) (*model.Submission, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.subs[assignmentID+"|"+studentID]; ok {
		cp := *s
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockSubmissionRepo) CountSubmitted(_ context.Context, assignmentIDs []string, studentID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var count int64
	for _, id := range assignmentIDs {
		if _, ok := m.subs[id+"|"+studentID]; ok {
			count++
		}
	}
	return count, nil
}

func (m *mockSubmissionRepo) ListByAssignments(_ context.Context, assignmentIDs []string, studentID string) ([]model.Submission, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	wanted := make(map[string]bool, len(assignmentIDs))
	for _, id := range assignmentIDs {
		wanted[id] = true
	}
	var result []model.Submission
	for _, s := range m.subs {
		if !wanted[s.AssignmentID] || (studentID != "" && s.StudentID != studentID) {
			continue
		}
		result = append(result, *s)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].SubmissionID < result[j].SubmissionID })
	return result, nil
}

// ── Mock GradeRepository ──

type mockGradeRepo struct {
	grades map[string]*model.Grade // key: submission_id
}

func newMockGradeRepo() *mockGradeRepo {
	return &mockGradeRepo{grades: make(map[string]*model.Grade)}
}

func (m *mockGradeRepo) Create(_ context.Context, grade *model.Grade) error {
	if _, ok := m.grades[grade.SubmissionID]; ok {
		return gorm.ErrDuplicatedKey
	}
	if grade.GradeID == "" {
		grade.GradeID = "grade-" + grade.SubmissionID
	}
	grade.Version = 1
	cp := *grade
	m.grades[grade.SubmissionID] = &cp
	return nil
}

func (m *mockGradeRepo) GetBySubmission(_ context.Context, submissionID string) (*model.Grade, error) {
	if g, ok := m.grades[submissionID]; ok {
		cp := *g
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockGradeRepo) Update(_ context.Context, grade *model.Grade) error {
	stored, ok := m.grades[grade.SubmissionID]
	if !ok || stored.Version != grade.Version {
		return pkgerrors.ErrOptimisticLock
	}
	grade.Version++
	cp := *grade
	m.grades[grade.SubmissionID] = &cp
	return nil
}

func (m *mockGradeRepo) ListBySubmissions(_ context.Context, submissionIDs []string) ([]model.Grade, error) {
	var result []model.Grade
	for _, id := range submissionIDs {
		if g, ok := m.grades[id]; ok {
			result = append(result, *g)
		}
	}
	return result, nil
}

// ── Mock ProgressRepository ──

type mockProgressRepo struct {
	mu        sync.Mutex
	rows      map[string]bool
	views     map[string]map[string]struct{}
	completed map[string]time.Time
	getErr    error // 注入 Get 失败
	markCalls int   // MarkCompleted 中实际迁移的次数
}

func newMockProgressRepo() *mockProgressRepo {
	return &mockProgressRepo{
		rows:      make(map[string]bool),
		views:     make(map[string]map[string]struct{}),
		completed: make(map[string]time.Time),
	}
}

func progressKey(moduleID, userID string) string {
	return moduleID + "|" + userID
}

func (m *mockProgressRepo) Get(_ context.Context, moduleID, userID string) (*model.ModuleProgressRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}

	key := progressKey(moduleID, userID)
	if !m.rows[key] {
		return nil, gorm.ErrRecordNotFound
	}
	record := model.NewModuleProgressRecord(moduleID, userID)
	for id := range m.views[key] {
		record.ContentViewed[id] = struct{}{}
	}
	if at, ok := m.completed[key]; ok {
		record.CompletedAt = &at
	}
	return record, nil
}

func (m *mockProgressRepo) AddContentView(_ context.Context, moduleID, userID, contentID string, _ time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := progressKey(moduleID, userID)
	m.rows[key] = true
	if m.views[key] == nil {
		m.views[key] = make(map[string]struct{})
	}
	if _, ok := m.views[key][contentID]; ok {
		return false, nil
	}
	m.views[key][contentID] = struct{}{}
	return true, nil
}

func (m *mockProgressRepo) MarkCompleted(_ context.Context, moduleID, userID string, at time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := progressKey(moduleID, userID)
	m.rows[key] = true
	if _, ok := m.completed[key]; ok {
		return false, nil
	}
	m.completed[key] = at
	m.markCalls++
	return true, nil
}

func (m *mockProgressRepo) ListCompleted(_ context.Context, userID string, moduleIDs []string) (map[string]time.Time, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	result := make(map[string]time.Time)
	for _, id := range moduleIDs {
		if at, ok := m.completed[progressKey(id, userID)]; ok {
			result[id] = at
		}
	}
	return result, nil
}

// ── 数据构造 ──

func (m *mockRepos) addCourse(id, ownerID string, published bool) *model.Course {
	c := &model.Course{CourseID: id, Title: "课程-" + id, OwnerID: ownerID, Credits: 3, IsPublished: published}
	m.course.courses[id] = c
	return c
}

func (m *mockRepos) addModule(id, courseID string, order int, published, requiresPrevious bool) *model.Module {
	mod := &model.Module{
		ModuleID:         id,
		CourseID:         courseID,
		Title:            "模块-" + id,
		OrderIndex:       order,
		IsPublished:      published,
		RequiresPrevious: requiresPrevious,
	}
	m.module.modules[id] = mod
	return mod
}

func (m *mockRepos) addContent(id, moduleID string, published bool) *model.ContentItem {
	item := &model.ContentItem{ContentItemID: id, ModuleID: moduleID, Title: "内容-" + id, IsPublished: published}
	m.content.items[id] = item
	return item
}

func (m *mockRepos) addAssignment(id, moduleID, courseID string, published bool, dueAt *time.Time) *model.Assignment {
	a := &model.Assignment{
		AssignmentID: id,
		ModuleID:     moduleID,
		CourseID:     courseID,
		Title:        "作业-" + id,
		DueAt:        dueAt,
		MaxPoints:    100,
		IsPublished:  published,
	}
	m.assignment.items[id] = a
	return a
}

func (m *mockRepos) addUser(id, role string) *model.User {
	u := &model.User{UserID: id, Name: "用户-" + id, Email: id + "@example.com", Role: role}
	m.user.users[id] = u
	return u
}

func (m *mockRepos) enroll(courseID, userID string) {
	m.enrollment.items[enrollmentKey(courseID, userID)] = &model.CourseEnrollment{
		CourseID:   courseID,
		UserID:     userID,
		Role:       model.RoleStudent,
		EnrolledAt: time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (m *mockRepos) submit(assignmentID, studentID string, late bool) *model.Submission {
	sub := &model.Submission{AssignmentID: assignmentID, StudentID: studentID, SubmittedAt: time.Now().UTC(), IsLate: late}
	_ = m.submission.Upsert(context.Background(), sub)
	return sub
}
