package enroll

type Enrollment struct {
	ID          string `json:"id"`
	UserID      string `json:"user_id"`
	CourseID    string `json:"course_id"`
	CourseTitle string `json:"course,omitempty"`
	EnrolledAt  int64  `json:"enrolled_at"`
}

type Progress struct {
	ID           string `json:"id"`
	UserID       string `json:"user_id"`
	LessonID     string `json:"lesson_id"`
	Completed    bool   `json:"completed"`
	TimeSpentSec int    `json:"timeSpent"`
	CompletedAt  *int64 `json:"completedAt,omitempty"`
}
