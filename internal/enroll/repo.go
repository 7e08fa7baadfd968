package enroll

import "context"

// Store persists enrollments and lesson progress.
type Store interface {
	Enroll(ctx context.Context, userID, courseID string) (*Enrollment, error)
	Exists(ctx context.Context, userID, courseID string) (bool, error)
	ListByUser(ctx context.Context, userID string) ([]Enrollment, error)
	ListByCourse(ctx context.Context, courseID string) ([]Enrollment, error)

	UpsertProgress(ctx context.Context, p *Progress) (*Progress, error)
	GetProgress(ctx context.Context, userID, lessonID string) (*Progress, error)
	ListProgress(ctx context.Context, userID, courseID string) ([]Progress, error)
}
