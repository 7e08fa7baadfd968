package quiz

// Question options are stored as a JSON array in the options_json
// column; CorrectAnswer always matches one of Options.
type Question struct {
	ID            string   `json:"id"`
	QuizID        string   `json:"quiz_id,omitempty"`
	Prompt        string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correctAnswer,omitempty"`
	Explanation   string   `json:"explanation,omitempty"`
	Order         int      `json:"order"`
}

type Quiz struct {
	ID           string     `json:"id"`
	LessonID     string     `json:"lesson_id"`
	Title        string     `json:"title"`
	Description  string     `json:"description,omitempty"`
	TimeLimitMin int        `json:"time_limit,omitempty"`
	PassingScore int        `json:"passingScore"`
	Questions    []Question `json:"questions"`
	CreatedAt    int64      `json:"created_at,omitempty"`
}

// Attempt is append-only: rows are inserted on submission and never
// updated afterwards.
type Attempt struct {
	ID           string   `json:"id"`
	QuizID       string   `json:"quiz_id"`
	UserID       string   `json:"user_id"`
	Score        int      `json:"score"`
	Passed       bool     `json:"passed"`
	Answers      []string `json:"answers"`
	TimeSpentSec int      `json:"time_spent"`
	AttemptedAt  int64    `json:"attempted_at"`
}

// CourseRef locates the course that owns a quiz (via its lesson), for
// ownership and enrollment checks.
type CourseRef struct {
	CourseID  string
	LessonID  string
	TeacherID string
	Published bool // owning lesson's publish flag
}
