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

	"github.com/go-playground/validator/v10"
)

// courseService implements the CourseUsecase interface.
type courseService struct {
	repo     repository.CourseRepository
	tags     *cache.Store
	validate *validator.Validate
	logger   *slog.Logger
}

// NewCourseService is the constructor for courseService.
func NewCourseService(
	repo repository.CourseRepository,
	tags *cache.Store,
	logger *slog.Logger,
) usecase.CourseUsecase {
	return &courseService{
		repo:     repo,
		tags:     tags,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		logger:   logger,
	}
}

func (srv *courseService) List(ctx context.Context, params entity.CourseListParams) (*entity.List[entity.Course], error) {
	key := "courses:list:" + params.Query().Encode()

	return cache.Fetch(ctx, srv.tags, key, []cache.Tag{cache.TagCourses},
		func(ctx context.Context) (*entity.List[entity.Course], error) {
			return srv.repo.List(ctx, params)
		})
}

func (srv *courseService) Mine(ctx context.Context, params entity.CourseListParams) (*entity.List[entity.Course], error) {
	key := "courses:mine:" + params.Query().Encode()

	return cache.Fetch(ctx, srv.tags, key, []cache.Tag{cache.TagCourses},
		func(ctx context.Context) (*entity.List[entity.Course], error) {
			return srv.repo.Mine(ctx, params)
		})
}

func (srv *courseService) Get(ctx context.Context, courseID int64) (*entity.CourseDetail, error) {
	key := fmt.Sprintf("courses:detail:%d", courseID)

	return cache.Fetch(ctx, srv.tags, key, []cache.Tag{cache.TagCourses},
		func(ctx context.Context) (*entity.CourseDetail, error) {
			return srv.repo.Get(ctx, courseID)
		})
}

func (srv *courseService) Create(ctx context.Context, req entity.CourseCreateRequest) (*entity.Course, error) {
	if err := srv.validate.Struct(req); err != nil {
		return nil, errors.Wrap(err, "validate course")
	}

	course, err := srv.repo.Create(ctx, req)
	if err != nil {
		return nil, errors.Wrap(err, "create course")
	}
	srv.logger.Info("course created", slog.Int64("course_id", course.ID))
	srv.tags.Invalidate(ctx, cache.TagCourses)

	return course, nil
}

func (srv *courseService) Update(ctx context.Context, courseID int64, req entity.CourseCreateRequest) (*entity.Course, error) {
	if err := srv.validate.Struct(req); err != nil {
		return nil, errors.Wrap(err, "validate course")
	}

	course, err := srv.repo.Update(ctx, courseID, req)
	if err != nil {
		return nil, errors.Wrap(err, "update course")
	}
	srv.tags.Invalidate(ctx, cache.TagCourses)

	return course, nil
}

func (srv *courseService) Delete(ctx context.Context, courseID int64) error {
	if err := srv.repo.Delete(ctx, courseID); err != nil {
		return errors.Wrap(err, "delete course")
	}
	srv.logger.Info("course deleted", slog.Int64("course_id", courseID))
	srv.tags.Invalidate(ctx, cache.TagCourses, cache.TagMaterials, cache.TagFeedbacks)

	return nil
}

func (srv *courseService) Enroll(ctx context.Context, courseID int64) error {
	if err := srv.repo.Enroll(ctx, courseID); err != nil {
		return errors.Wrap(err, "enroll course")
	}
	srv.logger.Info("enrolled in course", slog.Int64("course_id", courseID))
	srv.tags.Invalidate(ctx, cache.TagCourses)

	return nil
}

func (srv *courseService) MarkComplete(ctx context.Context, courseID int64) error {
	if err := srv.repo.MarkComplete(ctx, courseID); err != nil {
		return errors.Wrap(err, "mark course complete")
	}
	srv.tags.Invalidate(ctx, cache.TagCourses, cache.TagMe)

	return nil
}

func (srv *courseService) ListMaterials(ctx context.Context, courseID int64, params entity.ListParams) (*entity.List[entity.CourseMaterial], error) {
	key := fmt.Sprintf("courses:%d:materials:%s", courseID, params.Query().Encode())

	return cache.Fetch(ctx, srv.tags, key, []cache.Tag{cache.TagMaterials},
		func(ctx context.Context) (*entity.List[entity.CourseMaterial], error) {
			return srv.repo.ListMaterials(ctx, courseID, params)
		})
}

func (srv *courseService) CreateMaterial(ctx context.Context, courseID int64, req entity.MaterialCreateRequest) (*entity.CourseMaterial, error) {
	if err := srv.validate.Struct(req); err != nil {
		return nil, errors.Wrap(err, "validate material")
	}

	material, err := srv.repo.CreateMaterial(ctx, courseID, req)
	if err != nil {
		return nil, errors.Wrap(err, "create material")
	}
	srv.tags.Invalidate(ctx, cache.TagMaterials)

	return material, nil
}

func (srv *courseService) UpdateMaterial(ctx context.Context, courseID, materialID int64, req entity.MaterialCreateRequest) (*entity.CourseMaterial, error) {
	if err := srv.validate.Struct(req); err != nil {
		return nil, errors.Wrap(err, "validate material")
	}

	material, err := srv.repo.UpdateMaterial(ctx, courseID, materialID, req)
	if err != nil {
		return nil, errors.Wrap(err, "update material")
	}
	srv.tags.Invalidate(ctx, cache.TagMaterials)

	return material, nil
}

func (srv *courseService) DeleteMaterial(ctx context.Context, courseID, materialID int64) error {
	if err := srv.repo.DeleteMaterial(ctx, courseID, materialID); err != nil {
		return errors.Wrap(err, "delete material")
	}
	srv.tags.Invalidate(ctx, cache.TagMaterials)

	return nil
}

func (srv *courseService) ListFeedbacks(ctx context.Context, courseID int64, params entity.ListParams) (*entity.List[entity.CourseFeedback], error) {
	key := fmt.Sprintf("courses:%d:feedbacks:%s", courseID, params.Query().Encode())

	return cache.Fetch(ctx, srv.tags, key, []cache.Tag{cache.TagFeedbacks},
		func(ctx context.Context) (*entity.List[entity.CourseFeedback], error) {
			return srv.repo.ListFeedbacks(ctx, courseID, params)
		})
}

func (srv *courseService) CreateFeedback(ctx context.Context, courseID int64, req entity.FeedbackCreateRequest) (*entity.CourseFeedback, error) {
	if err := srv.validate.Struct(req); err != nil {
		return nil, errors.Wrap(err, "validate feedback")
	}

	feedback, err := srv.repo.CreateFeedback(ctx, courseID, req)
	if err != nil {
		return nil, errors.Wrap(err, "create feedback")
	}
	// Ratings roll up into the course summary as well.
	srv.tags.Invalidate(ctx, cache.TagFeedbacks, cache.TagCourses)

	return feedback, nil
}

func (srv *courseService) UpdateFeedback(ctx context.Context, courseID, feedbackID int64, req entity.FeedbackCreateRequest) (*entity.CourseFeedback, error) {
	if err := srv.validate.Struct(req); err != nil {
		return nil, errors.Wrap(err, "validate feedback")
	}

	feedback, err := srv.repo.UpdateFeedback(ctx, courseID, feedbackID, req)
	if err != nil {
		return nil, errors.Wrap(err, "update feedback")
	}
	srv.tags.Invalidate(ctx, cache.TagFeedbacks, cache.TagCourses)

	return feedback, nil
}

func (srv *courseService) DeleteFeedback(ctx context.Context, courseID, feedbackID int64) error {
	if err := srv.repo.DeleteFeedback(ctx, courseID, feedbackID); err != nil {
		return errors.Wrap(err, "delete feedback")
	}
	srv.tags.Invalidate(ctx, cache.TagFeedbacks, cache.TagCourses)

	return nil
}

func (srv *courseService) ListMembers(ctx context.Context, courseID int64, params entity.ListParams) (*entity.List[entity.CourseMember], error) {
	key := fmt.Sprintf("courses:%d:members:%s", courseID, params.Query().Encode())

	return cache.Fetch(ctx, srv.tags, key, []cache.Tag{cache.TagUsers},
		func(ctx context.Context) (*entity.List[entity.CourseMember], error) {
			return srv.repo.ListMembers(ctx, courseID, params)
		})
}

func (srv *courseService) BlockMember(ctx context.Context, courseID, memberID int64) error {
	if err := srv.repo.BlockMember(ctx, courseID, memberID); err != nil {
		return errors.Wrap(err, "block member")
	}
	srv.logger.Info("member blocked",
		slog.Int64("course_id", courseID), slog.Int64("member_id", memberID))
	srv.tags.Invalidate(ctx, cache.TagUsers)

	return nil
}
