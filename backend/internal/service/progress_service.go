package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"learnhub/backend/config"
	"learnhub/backend/internal/dto"
	"learnhub/backend/internal/model"
	"learnhub/backend/internal/repository"
	"learnhub/backend/pkg/telemetry"
)

// ProgressService 模块学习进度引擎
//
// 进度 = 内容浏览占比与作业提交占比的自适应加权；模块首次达到 100% 时写入
// completed_at（仅一次），并返回因此解锁的下一个模块。
// 调用方负责校验模块、内容存在且学习者有权访问。
type ProgressService interface {
	CalculateProgress(ctx context.Context, moduleID, userID string) (*dto.ProgressResponse, error)
	MarkContentViewed(ctx context.Context, moduleID, userID, contentID string) (*dto.ProgressResponse, error)
	GetNextModuleToUnlock(ctx context.Context, moduleID string) (*dto.ModuleRef, error)
	IsModuleUnlocked(ctx context.Context, moduleID, userID, courseID string) (*dto.UnlockStatusResponse, error)
	CheckAndUpdateModuleCompletion(ctx context.Context, moduleID, userID string) (*dto.ProgressResponse, error)
}

type progressService struct {
	repo         *repository.Repository
	capAtHundred bool
	logger       *zap.Logger
	now          func() time.Time
}

// NewProgressService 创建 ProgressService 实例
func NewProgressService(cfg *config.ProgressConfig, repo *repository.Repository, logger *zap.Logger) ProgressService {
	return &progressService{
		repo:         repo,
		capAtHundred: cfg.CapAtHundred,
		logger:       logger,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// ────────────────────── CalculateProgress ──────────────────────

func (s *progressService) CalculateProgress(ctx context.Context, moduleID, userID string) (*dto.ProgressResponse, error) {
	result, _, err := s.compute(ctx, moduleID, userID)
	return result, err
}

// ────────────────────── MarkContentViewed ──────────────────────

func (s *progressService) MarkContentViewed(ctx context.Context, moduleID, userID, contentID string) (*dto.ProgressResponse, error) {
	ctx, span := telemetry.Tracer().Start(ctx, "progress.MarkContentViewed",
		trace.WithAttributes(attribute.String("module_id", moduleID)))
	defer span.End()

	added, err := s.repo.Progress.AddContentView(ctx, moduleID, userID, contentID, s.now())
	if err != nil {
		s.logger.Error("记录内容浏览失败",
			zap.String("module_id", moduleID),
			zap.String("user_id", userID),
			zap.String("content_id", contentID),
			zap.Error(err),
		)
		return nil, err
	}

	// 重复浏览：不写入，也不重新触发完成判定
	if !added {
		return s.CalculateProgress(ctx, moduleID, userID)
	}

	return s.completeIfReached(ctx, moduleID, userID)
}

// ────────────────────── CheckAndUpdateModuleCompletion ──────────────────────

func (s *progressService) CheckAndUpdateModuleCompletion(ctx context.Context, moduleID, userID string) (*dto.ProgressResponse, error) {
	ctx, span := telemetry.Tracer().Start(ctx, "progress.CheckAndUpdateModuleCompletion",
		trace.WithAttributes(attribute.String("module_id", moduleID)))
	defer span.End()

	return s.completeIfReached(ctx, moduleID, userID)
}

// ────────────────────── GetNextModuleToUnlock ──────────────────────

func (s *progressService) GetNextModuleToUnlock(ctx context.Context, moduleID string) (*dto.ModuleRef, error) {
	module, err := loadModule(ctx, s.repo, s.logger, moduleID)
	if err != nil {
		return nil, err
	}

	// 按 "下一个更大的 order_index" 查找，允许序号存在空洞
	next, err := s.repo.Module.NextPublished(ctx, module.CourseID, module.OrderIndex)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	if !next.RequiresPrevious {
		return nil, nil
	}
	return &dto.ModuleRef{ID: next.ModuleID, Title: next.Title}, nil
}

// ────────────────────── IsModuleUnlocked ──────────────────────

func (s *progressService) IsModuleUnlocked(ctx context.Context, moduleID, userID, courseID string) (*dto.UnlockStatusResponse, error) {
	module, err := loadModule(ctx, s.repo, s.logger, moduleID)
	if err != nil {
		return nil, err
	}
	if courseID == "" {
		courseID = module.CourseID
	} else if module.CourseID != courseID {
		return nil, ErrModuleNotFound
	}

	status := &dto.UnlockStatusResponse{ModuleID: moduleID, IsUnlocked: true}
	if !module.RequiresPrevious {
		return status, nil
	}

	prev, err := s.repo.Module.PrevPublished(ctx, courseID, module.OrderIndex)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return status, nil
		}
		s.logger.Error("查询前置模块失败", zap.String("module_id", moduleID), zap.Error(err))
		return nil, err
	}

	record, err := s.repo.Progress.Get(ctx, prev.ModuleID, userID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("查询前置模块进度失败",
			zap.String("module_id", prev.ModuleID),
			zap.String("user_id", userID),
			zap.Error(err),
		)
		return nil, err
	}
	if record != nil && record.IsCompleted() {
		return status, nil
	}

	status.IsUnlocked = false
	status.UnlockMessage = lockedMessage(prev.Title)
	status.PrerequisiteModuleID = &prev.ModuleID
	return status, nil
}

// ── 辅助 ──

// compute 读取存储状态计算进度，无副作用
func (s *progressService) compute(ctx context.Context, moduleID, userID string) (*dto.ProgressResponse, *model.ModuleProgressRecord, error) {
	record, err := s.repo.Progress.Get(ctx, moduleID, userID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Error("查询模块进度失败",
				zap.String("module_id", moduleID),
				zap.String("user_id", userID),
				zap.Error(err),
			)
			return nil, nil, err
		}
		record = model.NewModuleProgressRecord(moduleID, userID)
	}

	totalContent, err := s.repo.Content.CountPublished(ctx, moduleID)
	if err != nil {
		s.logger.Error("统计模块内容失败", zap.String("module_id", moduleID), zap.Error(err))
		return nil, nil, err
	}

	assignmentIDs, err := s.repo.Assignment.ListPublishedIDs(ctx, moduleID)
	if err != nil {
		s.logger.Error("查询模块作业失败", zap.String("module_id", moduleID), zap.Error(err))
		return nil, nil, err
	}

	submitted, err := s.repo.Submission.CountSubmitted(ctx, assignmentIDs, userID)
	if err != nil {
		s.logger.Error("统计作业提交失败",
			zap.String("module_id", moduleID),
			zap.String("user_id", userID),
			zap.Error(err),
		)
		return nil, nil, err
	}

	viewed := record.ViewedCount()
	progress := weightedProgress(viewed, int(totalContent), int(submitted), len(assignmentIDs))
	if s.capAtHundred && progress > 100 {
		progress = 100
	}

	return &dto.ProgressResponse{
		ModuleID:         moduleID,
		Progress:         progress,
		IsComplete:       progress >= 100,
		ViewedCount:      viewed,
		TotalContent:     int(totalContent),
		SubmittedCount:   int(submitted),
		TotalAssignments: len(assignmentIDs),
		CompletedAt:      formatTimePtr(record.CompletedAt),
	}, record, nil
}

// completeIfReached 进度达到 100 且尚未完成时写入 completed_at 并检测解锁
func (s *progressService) completeIfReached(ctx context.Context, moduleID, userID string) (*dto.ProgressResponse, error) {
	result, record, err := s.compute(ctx, moduleID, userID)
	if err != nil {
		return nil, err
	}
	if !result.IsComplete || record.IsCompleted() {
		return result, nil
	}

	at := s.now()
	transitioned, err := s.repo.Progress.MarkCompleted(ctx, moduleID, userID, at)
	if err != nil {
		s.logger.Error("写入模块完成时间失败",
			zap.String("module_id", moduleID),
			zap.String("user_id", userID),
			zap.Error(err),
		)
		return nil, err
	}
	if !transitioned {
		// 并发请求已完成迁移，解锁由对方返回
		if latest, err := s.repo.Progress.Get(ctx, moduleID, userID); err == nil {
			result.CompletedAt = formatTimePtr(latest.CompletedAt)
		}
		return result, nil
	}
	result.CompletedAt = formatTimePtr(&at)

	next, err := s.GetNextModuleToUnlock(ctx, moduleID)
	if err != nil {
		s.logger.Warn("检测待解锁模块失败",
			zap.String("module_id", moduleID),
			zap.String("user_id", userID),
			zap.Error(err),
		)
		return result, nil
	}
	result.UnlockedModule = next

	s.logger.Info("模块已完成",
		zap.String("module_id", moduleID),
		zap.String("user_id", userID),
		zap.Bool("unlocked_next", next != nil),
	)
	return result, nil
}

// weightedProgress 自适应加权：内容与作业同时存在时各占一半
func weightedProgress(viewed, totalContent, submitted, totalAssignments int) int {
	var pct float64
	switch {
	case totalContent > 0 && totalAssignments > 0:
		pct = 50*float64(viewed)/float64(totalContent) + 50*float64(submitted)/float64(totalAssignments)
	case totalContent > 0:
		pct = 100 * float64(viewed) / float64(totalContent)
	case totalAssignments > 0:
		pct = 100 * float64(submitted) / float64(totalAssignments)
	default:
		return 0
	}
	return int(math.Round(pct))
}

func lockedMessage(prerequisiteTitle string) string {
	return fmt.Sprintf("请先完成模块「%s」", prerequisiteTitle)
}
