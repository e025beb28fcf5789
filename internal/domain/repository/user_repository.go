package repository

import (
	"context"

	"campus/internal/domain/entity"
)

// UserRepository covers the users endpoints.
type UserRepository interface {
	List(ctx context.Context, params entity.ListParams) (*entity.List[entity.User], error)
	Me(ctx context.Context) (*entity.User, error)
	UpdateMe(ctx context.Context, req entity.UserUpdateRequest) (*entity.User, error)
	Profile(ctx context.Context, userID int64) (*entity.User, error)
	MyCourses(ctx context.Context, params entity.CourseListParams) (*entity.List[entity.Course], error)
	MyCourseStats(ctx context.Context) (*entity.CourseStats, error)
}
