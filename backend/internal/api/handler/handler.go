package handler

import "learnhub/backend/internal/service"

// Handler 所有 Handler 的聚合入口
type Handler struct {
	User       *UserHandler
	Course     *CourseHandler
	Module     *ModuleHandler
	Content    *ContentHandler
	Assignment *AssignmentHandler
	Learning   *LearningHandler
	Enrollment *EnrollmentHandler
	Submission *SubmissionHandler
	Report     *ReportHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(svc *service.Service) *Handler {
	return &Handler{
		User:       NewUserHandler(svc.User),
		Course:     NewCourseHandler(svc.Course, svc.Module, svc.Assignment),
		Module:     NewModuleHandler(svc.Module, svc.Content, svc.Assignment, svc.Enrollment),
		Content:    NewContentHandler(svc.Content),
		Assignment: NewAssignmentHandler(svc.Assignment),
		Learning:   NewLearningHandler(svc.Progress, svc.Enrollment, svc.Content),
		Enrollment: NewEnrollmentHandler(svc.Enrollment),
		Submission: NewSubmissionHandler(svc.Submission, svc.Grade),
		Report:     NewReportHandler(svc.Gradebook, svc.Calendar),
	}
}
