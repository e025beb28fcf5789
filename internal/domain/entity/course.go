package entity

import "time"

// CourseStatus is the publication state of a course.
type CourseStatus string

const (
	CourseStatusPublished CourseStatus = "published"
	CourseStatusDraft     CourseStatus = "draft"
	CourseStatusArchived  CourseStatus = "archived"
)

// MaterialType classifies an uploaded course material.
type MaterialType string

const (
	MaterialTypeImage    MaterialType = "image"
	MaterialTypeVideo    MaterialType = "video"
	MaterialTypeAudio    MaterialType = "audio"
	MaterialTypeDocument MaterialType = "document"
	MaterialTypeOther    MaterialType = "other"
)

// Course is the list/detail representation of a course.
type Course struct {
	ID             int64        `json:"id"`
	Title          string       `json:"title"`
	Description    string       `json:"description,omitempty"`
	Duration       string       `json:"duration"`
	Category       string       `json:"category"`
	Instructor     User         `json:"instructor"`
	IsEnrolled     bool         `json:"isEnrolled,omitempty"`
	MembersCount   int          `json:"membersCount,omitempty"`
	AverageRating  float64      `json:"averageRating,omitempty"`
	TotalFeedbacks int          `json:"totalFeedbacks,omitempty"`
	Status         CourseStatus `json:"status"`
	CoverURL       string       `json:"coverUrl"`
	CreatedAt      *time.Time   `json:"createdAt,omitempty"`
	UpdatedAt      *time.Time   `json:"updatedAt,omitempty"`
}

// CourseDetail extends Course with its nested collections.
type CourseDetail struct {
	Course
	Materials []CourseMaterial `json:"materials"`
	Feedbacks []CourseFeedback `json:"feedbacks"`
}

// CourseMaterial is a single learning resource attached to a course. The
// upload itself happens elsewhere; only the resulting URL is carried here.
type CourseMaterial struct {
	ID           int64        `json:"id"`
	Title        string       `json:"title"`
	Duration     string       `json:"duration"`
	Description  string       `json:"description"`
	URL          string       `json:"url"`
	FileType     MaterialType `json:"fileType"`
	FileName     string       `json:"fileName"`
	ThumbnailURL string       `json:"thumnailUrl"` // spelling matches the API contract
	CreatedAt    *time.Time   `json:"createdAt,omitempty"`
	UpdatedAt    *time.Time   `json:"updatedAt,omitempty"`
}

// CourseFeedback is a rating plus free-form comment left by a member.
type CourseFeedback struct {
	ID        int64      `json:"id"`
	Rating    int        `json:"rating"`
	Feedback  string     `json:"feedback"`
	User      User       `json:"user"`
	CreatedAt *time.Time `json:"createdAt,omitempty"`
}

// CourseMember is the membership-list projection of a user.
type CourseMember struct {
	ID                int64  `json:"id"`
	FirstName         string `json:"firstName,omitempty"`
	LastName          string `json:"lastName,omitempty"`
	Email             string `json:"email"`
	Bio               string `json:"bio,omitempty"`
	Avatar            string `json:"avatar,omitempty"`
	IsUserBlocked     bool   `json:"is_user_blocked,omitempty"`
	IsCourseCompleted bool   `json:"is_course_completed,omitempty"`
}

// CourseCreateRequest creates or replaces a course. Request bodies use the
// API's snake_case field names.
type CourseCreateRequest struct {
	Title       string       `json:"title" validate:"required"`
	Description string       `json:"description" validate:"required"`
	Duration    string       `json:"duration" validate:"required"`
	Category    string       `json:"category" validate:"required"`
	Status      CourseStatus `json:"status" validate:"required,oneof=published draft archived"`
	CoverURL    string       `json:"cover_url" validate:"omitempty,url"`
}

// MaterialCreateRequest creates or replaces a course material.
type MaterialCreateRequest struct {
	Title        string `json:"title" validate:"required"`
	Description  string `json:"description"`
	URL          string `json:"url" validate:"required,url"`
	Duration     string `json:"duration"`
	FileType     string `json:"file_type" validate:"required,oneof=image video audio document other"`
	ThumbnailURL string `json:"thumnail_url,omitempty"`
}

// FeedbackCreateRequest creates or replaces a course feedback.
type FeedbackCreateRequest struct {
	Rating   int    `json:"rating" validate:"required,min=1,max=5"`
	Feedback string `json:"feedback" validate:"required"`
	Course   int64  `json:"course" validate:"required"`
}

// CourseListParams filters paginated course listings.
type CourseListParams struct {
	ListParams
	Search   string
	Category string
	Status   CourseStatus
}
