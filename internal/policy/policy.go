package policy

// Role is stored lowercase in both the users table and JWT claims.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleTeacher Role = "teacher"
	RoleStudent Role = "student"
	RoleVisitor Role = "visitor"
)

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleTeacher, RoleStudent, RoleVisitor:
		return true
	}
	return false
}

// Actor is the authenticated caller as established by the auth layer.
// Unauthenticated requests act as a visitor with an empty ID.
type Actor struct {
	ID   string
	Role Role
}

func Visitor() Actor { return Actor{Role: RoleVisitor} }

// CanViewCourse reports whether the actor may read a course at all.
// Drafts and other non-public statuses are visible only to the owning
// teacher and admins. Featured is a promoted published course and
// stays public.
func CanViewCourse(a Actor, ownerTeacherID, status string) bool {
	public := status == "published" || status == "featured"
	switch a.Role {
	case RoleAdmin:
		return true
	case RoleTeacher:
		return a.ID == ownerTeacherID || public
	case RoleStudent, RoleVisitor:
		return public
	default:
		return false
	}
}

// CanViewLesson gates lesson (and, through the lesson, quiz) reads.
// Students additionally need the lesson published and an enrollment in
// the owning course. Visitors never see lessons.
func CanViewLesson(a Actor, ownerTeacherID string, lessonPublished, enrolled bool) bool {
	switch a.Role {
	case RoleAdmin:
		return true
	case RoleTeacher:
		return a.ID == ownerTeacherID
	case RoleStudent:
		return lessonPublished && enrolled
	default:
		return false
	}
}

// CanMutate gates writes on a course and everything it owns (lessons,
// quizzes). Admins mutate anything; teachers only their own courses.
func CanMutate(a Actor, ownerTeacherID string) bool {
	switch a.Role {
	case RoleAdmin:
		return true
	case RoleTeacher:
		return a.ID == ownerTeacherID
	default:
		return false
	}
}

// CanSetCourseStatus reports whether the actor may change a course's
// publication status. Teachers submit content; only admins move it
// through draft/pending/published/featured/archived.
func CanSetCourseStatus(a Actor) bool {
	return a.Role == RoleAdmin
}
