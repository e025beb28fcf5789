package usecase

import (
	"context"

	"campus/internal/domain/entity"
)

// CourseUsecase covers course CRUD, enrollment and the nested collections.
// Each mutation invalidates the cache tags its dependent reads provide.
type CourseUsecase interface {
	List(ctx context.Context, params entity.CourseListParams) (*entity.List[entity.Course], error)
	Mine(ctx context.Context, params entity.CourseListParams) (*entity.List[entity.Course], error)
	Get(ctx context.Context, courseID int64) (*entity.CourseDetail, error)
	Create(ctx context.Context, req entity.CourseCreateRequest) (*entity.Course, error)
	Update(ctx context.Context, courseID int64, req entity.CourseCreateRequest) (*entity.Course, error)
	Delete(ctx context.Context, courseID int64) error
	Enroll(ctx context.Context, courseID int64) error
	MarkComplete(ctx context.Context, courseID int64) error

	ListMaterials(ctx context.Context, courseID int64, params entity.ListParams) (*entity.List[entity.CourseMaterial], error)
	CreateMaterial(ctx context.Context, courseID int64, req entity.MaterialCreateRequest) (*entity.CourseMaterial, error)
	UpdateMaterial(ctx context.Context, courseID, materialID int64, req entity.MaterialCreateRequest) (*entity.CourseMaterial, error)
	DeleteMaterial(ctx context.Context, courseID, materialID int64) error

	ListFeedbacks(ctx context.Context, courseID int64, params entity.ListParams) (*entity.List[entity.CourseFeedback], error)
	CreateFeedback(ctx context.Context, courseID int64, req entity.FeedbackCreateRequest) (*entity.CourseFeedback, error)
	UpdateFeedback(ctx context.Context, courseID, feedbackID int64, req entity.FeedbackCreateRequest) (*entity.CourseFeedback, error)
	DeleteFeedback(ctx context.Context, courseID, feedbackID int64) error

	ListMembers(ctx context.Context, courseID int64, params entity.ListParams) (*entity.List[entity.CourseMember], error)
	BlockMember(ctx context.Context, courseID, memberID int64) error
}
