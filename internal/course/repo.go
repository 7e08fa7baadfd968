package course

import "context"

type Store interface {
	Create(ctx context.Context, c Course) (Course, error)
	// Get returns the course with teacher name and lesson/enrollment
	// counts. Visibility is the caller's (policy) problem.
	Get(ctx context.Context, id string) (Course, error)
	List(ctx context.Context, opts ListOpts) ([]Course, int, error)
	Update(ctx context.Context, id string, upd CourseUpdate) (Course, error)
	Delete(ctx context.Context, id string) error

	CreateLesson(ctx context.Context, l Lesson) (Lesson, error)
	GetLesson(ctx context.Context, id string) (Lesson, error)
	// ListLessons returns the course's lessons in order; publishedOnly
	// narrows to student-visible ones.
	ListLessons(ctx context.Context, courseID string, publishedOnly bool) ([]Lesson, error)
	UpdateLesson(ctx context.Context, id string, upd LessonUpdate) (Lesson, error)
	DeleteLesson(ctx context.Context, id string) error
}
