package impl

import (
	"context"
	"fmt"
	"log/slog"

	"campus/internal/domain/entity"
	"campus/internal/domain/repository"
	"campus/internal/errors"
	"campus/internal/infra/cache"
	"campus/internal/usecase"
)

// userService implements the UserUsecase interface.
type userService struct {
	repo   repository.UserRepository
	tags   *cache.Store
	logger *slog.Logger
}

// NewUserService is the constructor for userService.
func NewUserService(
	repo repository.UserRepository,
	tags *cache.Store,
	logger *slog.Logger,
) usecase.UserUsecase {
	return &userService{repo: repo, tags: tags, logger: logger}
}

func (srv *userService) List(ctx context.Context, params entity.ListParams) (*entity.List[entity.User], error) {
	key := "users:list:" + params.Query().Encode()

	return cache.Fetch(ctx, srv.tags, key, []cache.Tag{cache.TagUsers},
		func(ctx context.Context) (*entity.List[entity.User], error) {
			return srv.repo.List(ctx, params)
		})
}

func (srv *userService) Me(ctx context.Context) (*entity.User, error) {
	return cache.Fetch(ctx, srv.tags, "users:me", []cache.Tag{cache.TagMe},
		func(ctx context.Context) (*entity.User, error) {
			return srv.repo.Me(ctx)
		})
}

func (srv *userService) UpdateMe(ctx context.Context, req entity.UserUpdateRequest) (*entity.User, error) {
	user, err := srv.repo.UpdateMe(ctx, req)
	if err != nil {
		return nil, errors.Wrap(err, "update profile")
	}
	srv.logger.Info("profile updated", slog.Int64("user_id", user.ID))
	srv.tags.Invalidate(ctx, cache.TagMe, cache.TagUsers)

	return user, nil
}

func (srv *userService) Profile(ctx context.Context, userID int64) (*entity.User, error) {
	key := fmt.Sprintf("users:profile:%d", userID)

	return cache.Fetch(ctx, srv.tags, key, []cache.Tag{cache.TagUsers},
		func(ctx context.Context) (*entity.User, error) {
			return srv.repo.Profile(ctx, userID)
		})
}

func (srv *userService) MyCourses(ctx context.Context, params entity.CourseListParams) (*entity.List[entity.Course], error) {
	key := "users:my_courses:" + params.Query().Encode()

	return cache.Fetch(ctx, srv.tags, key, []cache.Tag{cache.TagCourses, cache.TagMe},
		func(ctx context.Context) (*entity.List[entity.Course], error) {
			return srv.repo.MyCourses(ctx, params)
		})
}

func (srv *userService) MyCourseStats(ctx context.Context) (*entity.CourseStats, error) {
	return cache.Fetch(ctx, srv.tags, "users:my_course_stats", []cache.Tag{cache.TagCourses, cache.TagMe},
		func(ctx context.Context) (*entity.CourseStats, error) {
			return srv.repo.MyCourseStats(ctx)
		})
}
