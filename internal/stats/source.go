package stats

import (
	"context"
	"database/sql"
	"time"
)

// Source runs the dashboard queries and hands the rows to the pure
// Build* projections. Handlers depend on this type, not on *sql.DB.
type Source struct {
	db *sql.DB
}

func NewSource(db *sql.DB) *Source { return &Source{db: db} }

func (s *Source) Admin(ctx context.Context) (AdminStats, error) {
	users, err := s.users(ctx)
	if err != nil {
		return AdminStats{}, err
	}
	courses, err := s.coursesWithEnrollment(ctx, "")
	if err != nil {
		return AdminStats{}, err
	}
	var enrollTotal int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM enrollments`).Scan(&enrollTotal); err != nil {
		return AdminStats{}, err
	}
	var revenue float64
	if err := s.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(amount), 0) FROM payments WHERE status='succeeded'`).Scan(&revenue); err != nil {
		return AdminStats{}, err
	}
	windowStart := time.Now().Add(-30 * 24 * time.Hour).Unix()
	return BuildAdminStats(users, courses, enrollTotal, revenue, windowStart), nil
}

func (s *Source) Teacher(ctx context.Context, teacherID string) (TeacherStats, error) {
	courses, err := s.coursesWithEnrollment(ctx, teacherID)
	if err != nil {
		return TeacherStats{}, err
	}
	var studentTotal int
	if err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(DISTINCT e.user_id)
		  FROM enrollments e
		  JOIN courses c ON c.id = e.course_id
		 WHERE c.teacher_id = $1`, teacherID).Scan(&studentTotal); err != nil {
		return TeacherStats{}, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT e.id, u.first_name || ' ' || u.last_name, u.email, c.title, e.enrolled_at
		  FROM enrollments e
		  JOIN users u   ON u.id = e.user_id
		  JOIN courses c ON c.id = e.course_id
		 WHERE c.teacher_id = $1
		 ORDER BY e.enrolled_at DESC
		 LIMIT 10`, teacherID)
	if err != nil {
		return TeacherStats{}, err
	}
	defer rows.Close()
	recent := []EnrollmentRow{}
	for rows.Next() {
		var e EnrollmentRow
		if err := rows.Scan(&e.ID, &e.StudentName, &e.Email, &e.CourseTitle, &e.EnrolledAt); err != nil {
			return TeacherStats{}, err
		}
		recent = append(recent, e)
	}
	if err := rows.Err(); err != nil {
		return TeacherStats{}, err
	}
	return BuildTeacherStats(courses, studentTotal, recent), nil
}

func (s *Source) Student(ctx context.Context, userID string) (StudentStats, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT c.id, c.title, c.level,
		       (SELECT COUNT(1) FROM lessons l WHERE l.course_id = c.id AND l.is_published) AS lessons,
		       e.enrolled_at
		  FROM enrollments e
		  JOIN courses c ON c.id = e.course_id
		 WHERE e.user_id = $1
		 ORDER BY e.enrolled_at DESC`, userID)
	if err != nil {
		return StudentStats{}, err
	}
	defer rows.Close()
	enrollments := []CourseSummary{}
	for rows.Next() {
		var c CourseSummary
		if err := rows.Scan(&c.ID, &c.Title, &c.Level, &c.Lessons, &c.EnrolledAt); err != nil {
			return StudentStats{}, err
		}
		enrollments = append(enrollments, c)
	}
	if err := rows.Err(); err != nil {
		return StudentStats{}, err
	}

	var completed int
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM progress WHERE user_id=$1 AND completed`, userID).Scan(&completed); err != nil {
		return StudentStats{}, err
	}
	var timeSpent int64
	if err := s.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(time_spent_sec), 0) FROM progress WHERE user_id=$1`, userID).Scan(&timeSpent); err != nil {
		return StudentStats{}, err
	}

	arows, err := s.db.QueryContext(ctx, `
		SELECT q.title, c.title, a.score, a.passed, a.attempted_at
		  FROM quiz_attempts a
		  JOIN quizzes q ON q.id = a.quiz_id
		  JOIN lessons l ON l.id = q.lesson_id
		  JOIN courses c ON c.id = l.course_id
		 WHERE a.user_id = $1
		 ORDER BY a.attempted_at DESC`, userID)
	if err != nil {
		return StudentStats{}, err
	}
	defer arows.Close()
	attempts := []AttemptRow{}
	for arows.Next() {
		var a AttemptRow
		if err := arows.Scan(&a.QuizTitle, &a.CourseTitle, &a.Score, &a.Passed, &a.AttemptedAt); err != nil {
			return StudentStats{}, err
		}
		attempts = append(attempts, a)
	}
	if err := arows.Err(); err != nil {
		return StudentStats{}, err
	}
	return BuildStudentStats(enrollments, completed, timeSpent, attempts), nil
}

// users returns every account; the projection decides which counts
// include inactive ones.
func (s *Source) users(ctx context.Context) ([]UserRow, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT role, created_at, is_active FROM users`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []UserRow{}
	for rows.Next() {
		var u UserRow
		if err := rows.Scan(&u.Role, &u.CreatedAt, &u.IsActive); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// coursesWithEnrollment lists courses (optionally one teacher's) with
// their enrollment counts, newest first.
func (s *Source) coursesWithEnrollment(ctx context.Context, teacherID string) ([]CourseRow, error) {
	sqlStr := `
		SELECT c.id, c.title, c.status,
		       u.first_name || ' ' || u.last_name,
		       (SELECT COUNT(1) FROM enrollments e WHERE e.course_id = c.id)
		  FROM courses c
		  JOIN users u ON u.id = c.teacher_id`
	var args []any
	if teacherID != "" {
		sqlStr += ` WHERE c.teacher_id = $1`
		args = append(args, teacherID)
	}
	sqlStr += ` ORDER BY c.created_at DESC`

	rows, err := s.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []CourseRow{}
	for rows.Next() {
		var c CourseRow
		if err := rows.Scan(&c.ID, &c.Title, &c.Status, &c.TeacherName, &c.Enrollments); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
