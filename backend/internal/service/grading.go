package service

import (
	"context"
	"math"

	"learnhub/backend/internal/model"
	"learnhub/backend/internal/repository"
)

// letterBand 百分制下限 → 等级 → 4.0 制绩点
type letterBand struct {
	min    float64
	letter string
	points float64
}

var letterBands = []letterBand{
	{97, "A+", 4.0},
	{93, "A", 4.0},
	{90, "A-", 3.7},
	{87, "B+", 3.3},
	{83, "B", 3.0},
	{80, "B-", 2.7},
	{77, "C+", 2.3},
	{73, "C", 2.0},
	{70, "C-", 1.7},
	{67, "D+", 1.3},
	{63, "D", 1.0},
	{60, "D-", 0.7},
	{0, "F", 0.0},
}

// letterGrade 百分比换算等级与绩点
func letterGrade(percentage float64) (string, float64) {
	for _, band := range letterBands {
		if percentage >= band.min {
			return band.letter, band.points
		}
	}
	return "F", 0
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// courseScore 学生在一门课程中已评分作业的汇总
type courseScore struct {
	earned   float64
	possible float64
	graded   int
}

func (c *courseScore) add(points, maxPoints float64) {
	c.earned += points
	c.possible += maxPoints
	c.graded++
}

// percentage 无已评分作业时返回 nil
func (c *courseScore) percentage() *float64 {
	if c.graded == 0 || c.possible <= 0 {
		return nil
	}
	pct := round2(c.earned / c.possible * 100)
	return &pct
}

// courseGradeData 课程已发布作业及其提交、评分
type courseGradeData struct {
	assignments []model.Assignment
	// submissions[assignmentID][studentID]
	submissions map[string]map[string]*model.Submission
	// grades[submissionID]
	grades map[string]*model.Grade
}

// scoreFor 计算单个学生的课程成绩
func (d *courseGradeData) scoreFor(studentID string) *courseScore {
	score := &courseScore{}
	for _, a := range d.assignments {
		sub, ok := d.submissions[a.AssignmentID][studentID]
		if !ok {
			continue
		}
		if grade, ok := d.grades[sub.SubmissionID]; ok {
			score.add(grade.Points, a.MaxPoints)
		}
	}
	return score
}

// loadCourseGradeData studentID 为空时加载全部学生
func loadCourseGradeData(ctx context.Context, repo *repository.Repository, courseID, studentID string) (*courseGradeData, error) {
	assignments, err := repo.Assignment.ListByCourse(ctx, courseID, true)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(assignments))
	for _, a := range assignments {
		ids = append(ids, a.AssignmentID)
	}
	subs, err := repo.Submission.ListByAssignments(ctx, ids, studentID)
	if err != nil {
		return nil, err
	}

	data := &courseGradeData{
		assignments: assignments,
		submissions: make(map[string]map[string]*model.Submission, len(assignments)),
		grades:      make(map[string]*model.Grade, len(subs)),
	}
	subIDs := make([]string, 0, len(subs))
	for i := range subs {
		sub := &subs[i]
		if data.submissions[sub.AssignmentID] == nil {
			data.submissions[sub.AssignmentID] = make(map[string]*model.Submission)
		}
		data.submissions[sub.AssignmentID][sub.StudentID] = sub
		subIDs = append(subIDs, sub.SubmissionID)
	}

	grades, err := repo.Grade.ListBySubmissions(ctx, subIDs)
	if err != nil {
		return nil, err
	}
	for i := range grades {
		data.grades[grades[i].SubmissionID] = &grades[i]
	}
	return data, nil
}
