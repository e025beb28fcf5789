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

type courseRepository struct {
	client *httpclient.Client
	logger *slog.Logger
}

// NewCourseRepository is the constructor for courseRepository.
func NewCourseRepository(client *httpclient.Client, logger *slog.Logger) repository.CourseRepository {
	return &courseRepository{client: client, logger: logger}
}

func (r *courseRepository) List(ctx context.Context, params entity.CourseListParams) (*entity.List[entity.Course], error) {
	return httpclient.DoList[entity.Course](ctx, r.client, "/course/", params.Query())
}

func (r *courseRepository) Mine(ctx context.Context, params entity.CourseListParams) (*entity.List[entity.Course], error) {
	return httpclient.DoList[entity.Course](ctx, r.client, "/course/mine/", params.Query())
}

func (r *courseRepository) Get(ctx context.Context, courseID int64) (*entity.CourseDetail, error) {
	detail, err := httpclient.Do[entity.CourseDetail](ctx, r.client, http.MethodGet,
		fmt.Sprintf("/course/%d/", courseID), nil, nil)
	if err != nil {
		return nil, err
	}

	return &detail, nil
}

func (r *courseRepository) Create(ctx context.Context, req entity.CourseCreateRequest) (*entity.Course, error) {
	course, err := httpclient.Do[entity.Course](ctx, r.client, http.MethodPost, "/course/", nil, req)
	if err != nil {
		return nil, err
	}

	return &course, nil
}

func (r *courseRepository) Update(ctx context.Context, courseID int64, req entity.CourseCreateRequest) (*entity.Course, error) {
	course, err := httpclient.Do[entity.Course](ctx, r.client, http.MethodPut,
		fmt.Sprintf("/course/%d/", courseID), nil, req)
	if err != nil {
		return nil, err
	}

	return &course, nil
}

func (r *courseRepository) Delete(ctx context.Context, courseID int64) error {
	_, err := httpclient.Do[struct{}](ctx, r.client, http.MethodDelete,
		fmt.Sprintf("/course/%d/", courseID), nil, nil)

	return err
}

func (r *courseRepository) Enroll(ctx context.Context, courseID int64) error {
	_, err := httpclient.Do[struct{}](ctx, r.client, http.MethodPost,
		fmt.Sprintf("/course/%d/enroll/", courseID), nil, nil)

	return err
}

func (r *courseRepository) MarkComplete(ctx context.Context, courseID int64) error {
	_, err := httpclient.Do[struct{}](ctx, r.client, http.MethodPost,
		fmt.Sprintf("/course/%d/mark_complete/", courseID), nil, nil)

	return err
}

func (r *courseRepository) ListMaterials(ctx context.Context, courseID int64, params entity.ListParams) (*entity.List[entity.CourseMaterial], error) {
	return httpclient.DoList[entity.CourseMaterial](ctx, r.client,
		fmt.Sprintf("/course/%d/materials/", courseID), params.Query())
}

func (r *courseRepository) CreateMaterial(ctx context.Context, courseID int64, req entity.MaterialCreateRequest) (*entity.CourseMaterial, error) {
	material, err := httpclient.Do[entity.CourseMaterial](ctx, r.client, http.MethodPost,
		fmt.Sprintf("/course/%d/materials/", courseID), nil, req)
	if err != nil {
		return nil, err
	}

	return &material, nil
}

func (r *courseRepository) UpdateMaterial(ctx context.Context, courseID, materialID int64, req entity.MaterialCreateRequest) (*entity.CourseMaterial, error) {
	material, err := httpclient.Do[entity.CourseMaterial](ctx, r.client, http.MethodPut,
		fmt.Sprintf("/course/%d/materials/%d/", courseID, materialID), nil, req)
	if err != nil {
		return nil, err
	}

	return &material, nil
}

func (r *courseRepository) DeleteMaterial(ctx context.Context, courseID, materialID int64) error {
	_, err := httpclient.Do[struct{}](ctx, r.client, http.MethodDelete,
		fmt.Sprintf("/course/%d/materials/%d/", courseID, materialID), nil, nil)

	return err
}

func (r *courseRepository) ListFeedbacks(ctx context.Context, courseID int64, params entity.ListParams) (*entity.List[entity.CourseFeedback], error) {
	return httpclient.DoList[entity.CourseFeedback](ctx, r.client,
		fmt.Sprintf("/course/%d/feedbacks/", courseID), params.Query())
}

func (r *courseRepository) CreateFeedback(ctx context.Context, courseID int64, req entity.FeedbackCreateRequest) (*entity.CourseFeedback, error) {
	feedback, err := httpclient.Do[entity.CourseFeedback](ctx, r.client, http.MethodPost,
		fmt.Sprintf("/course/%d/feedbacks/", courseID), nil, req)
	if err != nil {
		return nil, err
	}

	return &feedback, nil
}

func (r *courseRepository) UpdateFeedback(ctx context.Context, courseID, feedbackID int64, req entity.FeedbackCreateRequest) (*entity.CourseFeedback, error) {
	feedback, err := httpclient.Do[entity.CourseFeedback](ctx, r.client, http.MethodPut,
		fmt.Sprintf("/course/%d/feedbacks/%d/", courseID, feedbackID), nil, req)
	if err != nil {
		return nil, err
	}

	return &feedback, nil
}

func (r *courseRepository) DeleteFeedback(ctx context.Context, courseID, feedbackID int64) error {
	_, err := httpclient.Do[struct{}](ctx, r.client, http.MethodDelete,
		fmt.Sprintf("/course/%d/feedbacks/%d/", courseID, feedbackID), nil, nil)

	return err
}

func (r *courseRepository) ListMembers(ctx context.Context, courseID int64, params entity.ListParams) (*entity.List[entity.CourseMember], error) {
	return httpclient.DoList[entity.CourseMember](ctx, r.client,
		fmt.Sprintf("/course/%d/members/", courseID), params.Query())
}

func (r *courseRepository) BlockMember(ctx context.Context, courseID, memberID int64) error {
	_, err := httpclient.Do[struct{}](ctx, r.client, http.MethodPost,
		fmt.Sprintf("/course/%d/members/%d/block_user/", courseID, memberID), nil, nil)

	return err
}
