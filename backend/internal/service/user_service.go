package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"learnhub/backend/internal/dto"
	"learnhub/backend/internal/model"
	"learnhub/backend/internal/repository"
)

// ── 用户模块业务错误 ──

var (
	ErrUserNotFound = errors.New("用户不存在")
	ErrEmailExists  = errors.New("邮箱已被其他用户使用")
)

// UserService 用户业务接口
//
// 用户由统一身份服务签发 Token，本服务只保存展示与选课所需的资料。
type UserService interface {
	// Sync 按 user_id 创建或更新用户资料（管理员调用）
	Sync(ctx context.Context, req *dto.SyncUserRequest, callerID string) (*dto.UserResponse, error)
	GetByID(ctx context.Context, id string) (*dto.UserResponse, error)
	List(ctx context.Context, req *dto.UserListRequest) ([]dto.UserResponse, int64, error)
}

type userService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewUserService 创建 UserService 实例
func NewUserService(repo *repository.Repository, logger *zap.Logger) UserService {
	return &userService{repo: repo, logger: logger}
}

// ────────────────────── Sync ──────────────────────

func (s *userService) Sync(ctx context.Context, req *dto.SyncUserRequest, callerID string) (*dto.UserResponse, error) {
	// 邮箱唯一性
	if existing, err := s.repo.User.GetByEmail(ctx, req.Email); err == nil {
		if req.UserID == "" || existing.UserID != req.UserID {
			return nil, ErrEmailExists
		}
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("查询用户邮箱失败", zap.Error(err))
		return nil, err
	}

	if req.UserID != "" {
		user, err := s.repo.User.GetByID(ctx, req.UserID)
		if err == nil {
			user.Name = req.Name
			user.Email = req.Email
			user.Role = req.Role
			user.UpdatedBy = &callerID
			if err := s.repo.User.Update(ctx, user); err != nil {
				s.logger.Error("更新用户失败", zap.String("user_id", user.UserID), zap.Error(err))
				return nil, err
			}
			return toUserResponse(user), nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Error("查询用户失败", zap.String("user_id", req.UserID), zap.Error(err))
			return nil, err
		}
	}

	user := &model.User{
		UserID: req.UserID,
		Name:   req.Name,
		Email:  req.Email,
		Role:   req.Role,
	}
	user.CreatedBy = &callerID
	user.UpdatedBy = &callerID
	if err := s.repo.User.Create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrEmailExists
		}
		s.logger.Error("创建用户失败", zap.Error(err))
		return nil, err
	}
	return toUserResponse(user), nil
}

// ────────────────────── GetByID ──────────────────────

func (s *userService) GetByID(ctx context.Context, id string) (*dto.UserResponse, error) {
	user, err := s.repo.User.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		s.logger.Error("查询用户失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return toUserResponse(user), nil
}

// ────────────────────── List ──────────────────────

func (s *userService) List(ctx context.Context, req *dto.UserListRequest) ([]dto.UserResponse, int64, error) {
	users, total, err := s.repo.User.List(ctx, req.Role, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("列出用户失败", zap.Error(err))
		return nil, 0, err
	}

	result := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		result = append(result, *toUserResponse(&users[i]))
	}
	return result, total, nil
}

// ── 辅助 ──

func toUserResponse(user *model.User) *dto.UserResponse {
	return &dto.UserResponse{
		ID:        user.UserID,
		Name:      user.Name,
		Email:     user.Email,
		Role:      user.Role,
		CreatedAt: formatTime(user.CreatedAt),
	}
}
