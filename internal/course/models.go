package course

// Course status lifecycle: draft → pending → published → featured →
// archived. Only admins move a course between statuses.
const (
	StatusDraft     = "draft"
	StatusPending   = "pending"
	StatusPublished = "published"
	StatusFeatured  = "featured"
	StatusArchived  = "archived"
)

// CEFR levels.
var Levels = []string{"a1", "a2", "b1", "b2", "c1", "c2"}

func ValidStatus(s string) bool {
	switch s {
	case StatusDraft, StatusPending, StatusPublished, StatusFeatured, StatusArchived:
		return true
	}
	return false
}

func ValidLevel(l string) bool {
	for _, v := range Levels {
		if l == v {
			return true
		}
	}
	return false
}

type Course struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Level       string  `json:"level"`
	Status      string  `json:"status"`
	Featured    bool    `json:"featured"`
	Thumbnail   string  `json:"thumbnail,omitempty"`
	DurationMin int     `json:"duration"`
	TeacherID   string  `json:"teacher_id"`
	TeacherName string  `json:"teacher,omitempty"`
	Lessons     int     `json:"lesson_count"`
	Enrollments int     `json:"enrollment_count"`
	CreatedAt   int64   `json:"created_at"`
	UpdatedAt   int64   `json:"updated_at"`
}

type Lesson struct {
	ID          string `json:"id"`
	CourseID    string `json:"course_id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Content     string `json:"content,omitempty"`
	VideoURL    string `json:"video_url,omitempty"`
	DurationMin int    `json:"duration"`
	Order       int    `json:"order"`
	IsPublished bool   `json:"isPublished"`
	CreatedAt   int64  `json:"created_at"`
	UpdatedAt   int64  `json:"updated_at"`
}

type ListOpts struct {
	Level    string
	Status   string
	Featured bool
	Search   string
	Limit    int
	Offset   int

	// Viewer scoping: teachers see their own courses regardless of
	// status, students and visitors only published ones.
	ViewerID   string
	ViewerRole string
}

// CourseUpdate fields are pointers so PUT can send a partial document.
type CourseUpdate struct {
	Title       *string
	Description *string
	Price       *float64
	Level       *string
	DurationMin *int
	Thumbnail   *string
	Status      *string // admin only; dropped for teachers by the handler
	Featured    *bool   // admin only
}

type LessonUpdate struct {
	Title       *string
	Description *string
	Content     *string
	VideoURL    *string
	DurationMin *int
	Order       *int
	IsPublished *bool
}
