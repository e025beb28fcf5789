package rest

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"campus/internal/domain/entity"
	"campus/internal/domain/repository"
	"campus/internal/infra/httpclient"
)

type userRepository struct {
	client *httpclient.Client
	logger *slog.Logger
}

// NewUserRepository is the constructor for userRepository.
func NewUserRepository(client *httpclient.Client, logger *slog.Logger) repository.UserRepository {
	return &userRepository{client: client, logger: logger}
}

func (r *userRepository) List(ctx context.Context, params entity.ListParams) (*entity.List[entity.User], error) {
	return httpclient.DoList[entity.User](ctx, r.client, "/users/", params.Query())
}

func (r *userRepository) Me(ctx context.Context) (*entity.User, error) {
	user, err := httpclient.Do[entity.User](ctx, r.client, http.MethodGet, "/users/me/", nil, nil)
	if err != nil {
		return nil, err
	}

	return &user, nil
}

func (r *userRepository) UpdateMe(ctx context.Context, req entity.UserUpdateRequest) (*entity.User, error) {
	user, err := httpclient.Do[entity.User](ctx, r.client, http.MethodPut, "/users/me/", nil, req)
	if err != nil {
		return nil, err
	}

	return &user, nil
}

func (r *userRepository) Profile(ctx context.Context, userID int64) (*entity.User, error) {
	user, err := httpclient.Do[entity.User](ctx, r.client, http.MethodGet,
		fmt.Sprintf("/users/%d/profile/", userID), nil, nil)
	if err != nil {
		return nil, err
	}

	return &user, nil
}

func (r *userRepository) MyCourses(ctx context.Context, params entity.CourseListParams) (*entity.List[entity.Course], error) {
	return httpclient.DoList[entity.Course](ctx, r.client, "/users/my_courses/", params.Query())
}

func (r *userRepository) MyCourseStats(ctx context.Context) (*entity.CourseStats, error) {
	stats, err := httpclient.Do[entity.CourseStats](ctx, r.client, http.MethodGet, "/users/my_course_stats/", nil, nil)
	if err != nil {
		return nil, err
	}

	return &stats, nil
}
