package quiz

import "context"

type AttemptListOpts struct {
	QuizID string
	UserID string // empty: all users (teacher/admin views)
	Limit  int
	Offset int
}

type Store interface {
	// PutQuiz inserts the quiz and its questions in one transaction,
	// filling in missing IDs and CreatedAt.
	PutQuiz(ctx context.Context, q *Quiz) error
	// GetQuiz returns the quiz with questions in order. Answer keys and
	// explanations are included; the handler strips them for students.
	GetQuiz(ctx context.Context, id string) (Quiz, error)
	// CourseRef resolves the owning lesson/course for policy checks.
	CourseRef(ctx context.Context, quizID string) (CourseRef, error)

	CreateAttempt(ctx context.Context, a Attempt) (Attempt, error)
	ListAttempts(ctx context.Context, opts AttemptListOpts) ([]Attempt, error)
}
