package enroll

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/lingua-school/lingua-lms/internal/db"
	"github.com/lingua-school/lingua-lms/internal/httperr"
)

// SQLStore keeps enrollment state in SQL. Duplicate enrollments and
// duplicate progress rows are fenced by UNIQUE constraints rather than
// check-then-insert, so concurrent requests cannot race past the check.
type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(database *sql.DB) *SQLStore { return &SQLStore{db: database} }

func (s *SQLStore) Enroll(ctx context.Context, userID, courseID string) (*Enrollment, error) {
	e := &Enrollment{
		ID:         uuid.NewString(),
		UserID:     userID,
		CourseID:   courseID,
		EnrolledAt: time.Now().Unix(),
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO enrollments (id, user_id, course_id, enrolled_at) VALUES ($1, $2, $3, $4)`,
		e.ID, e.UserID, e.CourseID, e.EnrolledAt)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return nil, httperr.Conflict("already enrolled in this course")
		}
		return nil, httperr.Wrap("enroll", err)
	}
	return e, nil
}

func (s *SQLStore) Exists(ctx context.Context, userID, courseID string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx,
		`SELECT 1 FROM enrollments WHERE user_id = $1 AND course_id = $2`,
		userID, courseID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, httperr.Wrap("enrollment lookup", err)
	}
	return true, nil
}

func (s *SQLStore) ListByUser(ctx context.Context, userID string) ([]Enrollment, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT e.id, e.user_id, e.course_id, c.title, e.enrolled_at
		   FROM enrollments e JOIN courses c ON c.id = e.course_id
		  WHERE e.user_id = $1
		  ORDER BY e.enrolled_at DESC`, userID)
	if err != nil {
		return nil, httperr.Wrap("list enrollments", err)
	}
	defer rows.Close()
	return scanEnrollments(rows)
}

func (s *SQLStore) ListByCourse(ctx context.Context, courseID string) ([]Enrollment, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT e.id, e.user_id, e.course_id, c.title, e.enrolled_at
		   FROM enrollments e JOIN courses c ON c.id = e.course_id
		  WHERE e.course_id = $1
		  ORDER BY e.enrolled_at DESC`, courseID)
	if err != nil {
		return nil, httperr.Wrap("list course enrollments", err)
	}
	defer rows.Close()
	return scanEnrollments(rows)
}

func scanEnrollments(rows *sql.Rows) ([]Enrollment, error) {
	var out []Enrollment
	for rows.Next() {
		var e Enrollment
		if err := rows.Scan(&e.ID, &e.UserID, &e.CourseID, &e.CourseTitle, &e.EnrolledAt); err != nil {
			return nil, httperr.Wrap("scan enrollment", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// UpsertProgress records lesson progress for a user. A second write for
// the same (user, lesson) pair updates the existing row; time spent
// accumulates and a lesson once completed stays completed.
func (s *SQLStore) UpsertProgress(ctx context.Context, p *Progress) (*Progress, error) {
	cur, err := s.GetProgress(ctx, p.UserID, p.LessonID)
	if err != nil && httperr.KindOf(err) != httperr.KindNotFound {
		return nil, err
	}
	now := time.Now().Unix()
	if cur == nil {
		p.ID = uuid.NewString()
		if p.Completed {
			p.CompletedAt = &now
		}
		_, err := s.db.ExecContext(ctx,
			`INSERT INTO progress (id, user_id, lesson_id, completed, time_spent_sec, completed_at)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			p.ID, p.UserID, p.LessonID, p.Completed, p.TimeSpentSec, p.CompletedAt)
		if err != nil {
			if db.IsUniqueViolation(err) {
				// lost the race to a concurrent insert, fold into an update
				return s.UpsertProgress(ctx, p)
			}
			return nil, httperr.Wrap("insert progress", err)
		}
		return p, nil
	}
	cur.TimeSpentSec += p.TimeSpentSec
	if p.Completed && !cur.Completed {
		cur.Completed = true
		cur.CompletedAt = &now
	}
	_, err = s.db.ExecContext(ctx,
		`UPDATE progress SET completed = $1, time_spent_sec = $2, completed_at = $3 WHERE id = $4`,
		cur.Completed, cur.TimeSpentSec, cur.CompletedAt, cur.ID)
	if err != nil {
		return nil, httperr.Wrap("update progress", err)
	}
	return cur, nil
}

func (s *SQLStore) GetProgress(ctx context.Context, userID, lessonID string) (*Progress, error) {
	var p Progress
	err := s.db.QueryRowContext(ctx,
		`SELECT id, user_id, lesson_id, completed, time_spent_sec, completed_at
		   FROM progress WHERE user_id = $1 AND lesson_id = $2`,
		userID, lessonID).Scan(&p.ID, &p.UserID, &p.LessonID, &p.Completed, &p.TimeSpentSec, &p.CompletedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, httperr.NotFound("no progress for lesson %s", lessonID)
	}
	if err != nil {
		return nil, httperr.Wrap("get progress", err)
	}
	return &p, nil
}

func (s *SQLStore) ListProgress(ctx context.Context, userID, courseID string) ([]Progress, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT p.id, p.user_id, p.lesson_id, p.completed, p.time_spent_sec, p.completed_at
		   FROM progress p JOIN lessons l ON l.id = p.lesson_id
		  WHERE p.user_id = $1 AND l.course_id = $2
		  ORDER BY l.ord`, userID, courseID)
	if err != nil {
		return nil, httperr.Wrap("list progress", err)
	}
	defer rows.Close()
	var out []Progress
	for rows.Next() {
		var p Progress
		if err := rows.Scan(&p.ID, &p.UserID, &p.LessonID, &p.Completed, &p.TimeSpentSec, &p.CompletedAt); err != nil {
			return nil, httperr.Wrap("scan progress", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
