package course

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/lingua-school/lingua-lms/internal/db"
	"github.com/lingua-school/lingua-lms/internal/httperr"
)

type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(d *sql.DB) *SQLStore { return &SQLStore{db: d} }

const courseSelect = `
	SELECT c.id, c.title, c.description, c.price, c.level, c.status, c.featured,
	       c.thumbnail, c.duration_min, c.teacher_id,
	       u.first_name || ' ' || u.last_name,
	       (SELECT COUNT(1) FROM lessons l WHERE l.course_id = c.id),
	       (SELECT COUNT(1) FROM enrollments e WHERE e.course_id = c.id),
	       c.created_at, c.updated_at
	  FROM courses c
	  JOIN users u ON u.id = c.teacher_id`

func scanCourse(row interface{ Scan(...any) error }) (Course, error) {
	var c Course
	err := row.Scan(&c.ID, &c.Title, &c.Description, &c.Price, &c.Level, &c.Status, &c.Featured,
		&c.Thumbnail, &c.DurationMin, &c.TeacherID, &c.TeacherName,
		&c.Lessons, &c.Enrollments, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

func (s *SQLStore) Create(ctx context.Context, c Course) (Course, error) {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.Status == "" {
		c.Status = StatusDraft
	}
	now := time.Now().Unix()
	c.CreatedAt, c.UpdatedAt = now, now
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO courses (id, title, description, price, level, status, featured, thumbnail, duration_min, teacher_id, created_at, updated_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`,
		c.ID, c.Title, c.Description, c.Price, c.Level, c.Status, c.Featured, c.Thumbnail, c.DurationMin, c.TeacherID, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		return Course{}, err
	}
	return s.Get(ctx, c.ID)
}

func (s *SQLStore) Get(ctx context.Context, id string) (Course, error) {
	c, err := scanCourse(s.db.QueryRowContext(ctx, courseSelect+` WHERE c.id=$1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return Course{}, httperr.NotFound("course not found")
	}
	return c, err
}

func (s *SQLStore) List(ctx context.Context, opts ListOpts) ([]Course, int, error) {
	if opts.Limit <= 0 || opts.Limit > 100 {
		opts.Limit = 10
	}

	where := ` WHERE 1=1`
	var args []any

	// Role scoping mirrors the original service: admins see everything,
	// teachers their own catalog, everyone else published courses only.
	switch opts.ViewerRole {
	case "admin":
	case "teacher":
		args = append(args, opts.ViewerID)
		where += ` AND c.teacher_id=$` + strconv.Itoa(len(args))
	default:
		where += ` AND c.status IN ('published','featured')`
	}

	if opts.Level != "" {
		args = append(args, opts.Level)
		where += ` AND c.level=$` + strconv.Itoa(len(args))
	}
	if opts.Status != "" && (opts.ViewerRole == "admin" || opts.ViewerRole == "teacher") {
		args = append(args, opts.Status)
		where += ` AND c.status=$` + strconv.Itoa(len(args))
	}
	if opts.Featured {
		where += ` AND c.featured`
	}
	if opts.Search != "" {
		args = append(args, "%"+strings.ToLower(opts.Search)+"%")
		n := strconv.Itoa(len(args))
		where += ` AND (LOWER(c.title) LIKE $` + n + ` OR LOWER(c.description) LIKE $` + n + `)`
	}

	var total int
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM courses c`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, opts.Limit, opts.Offset)
	sqlStr := courseSelect + where +
		` ORDER BY c.featured DESC, c.created_at DESC LIMIT $` + strconv.Itoa(len(args)-1) + ` OFFSET $` + strconv.Itoa(len(args))
	rows, err := s.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := []Course{}
	for rows.Next() {
		c, err := scanCourse(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, c)
	}
	return out, total, rows.Err()
}

func (s *SQLStore) Update(ctx context.Context, id string, upd CourseUpdate) (Course, error) {
	c, err := s.Get(ctx, id)
	if err != nil {
		return Course{}, err
	}
	if upd.Title != nil {
		c.Title = *upd.Title
	}
	if upd.Description != nil {
		c.Description = *upd.Description
	}
	if upd.Price != nil {
		c.Price = *upd.Price
	}
	if upd.Level != nil {
		c.Level = *upd.Level
	}
	if upd.DurationMin != nil {
		c.DurationMin = *upd.DurationMin
	}
	if upd.Thumbnail != nil {
		c.Thumbnail = *upd.Thumbnail
	}
	if upd.Status != nil {
		c.Status = *upd.Status
	}
	if upd.Featured != nil {
		c.Featured = *upd.Featured
	}
	c.UpdatedAt = time.Now().Unix()
	_, err = s.db.ExecContext(ctx,
		`UPDATE courses SET title=$1, description=$2, price=$3, level=$4, status=$5, featured=$6, thumbnail=$7, duration_min=$8, updated_at=$9 WHERE id=$10`,
		c.Title, c.Description, c.Price, c.Level, c.Status, c.Featured, c.Thumbnail, c.DurationMin, c.UpdatedAt, id)
	return c, err
}

func (s *SQLStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM courses WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return httperr.NotFound("course not found")
	}
	return nil
}

// ---- lessons ----

const lessonCols = `id, course_id, title, description, content, video_url, duration_min, ord, is_published, created_at, updated_at`

func scanLesson(row interface{ Scan(...any) error }) (Lesson, error) {
	var l Lesson
	err := row.Scan(&l.ID, &l.CourseID, &l.Title, &l.Description, &l.Content, &l.VideoURL,
		&l.DurationMin, &l.Order, &l.IsPublished, &l.CreatedAt, &l.UpdatedAt)
	return l, err
}

func (s *SQLStore) CreateLesson(ctx context.Context, l Lesson) (Lesson, error) {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	now := time.Now().Unix()
	l.CreatedAt, l.UpdatedAt = now, now
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO lessons (id, course_id, title, description, content, video_url, duration_min, ord, is_published, created_at, updated_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`,
		l.ID, l.CourseID, l.Title, l.Description, l.Content, l.VideoURL, l.DurationMin, l.Order, l.IsPublished, l.CreatedAt, l.UpdatedAt)
	if db.IsUniqueViolation(err) {
		return Lesson{}, httperr.Conflict("lesson order %d already taken in this course", l.Order)
	}
	if err != nil {
		return Lesson{}, err
	}
	return l, nil
}

func (s *SQLStore) GetLesson(ctx context.Context, id string) (Lesson, error) {
	l, err := scanLesson(s.db.QueryRowContext(ctx, `SELECT `+lessonCols+` FROM lessons WHERE id=$1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return Lesson{}, httperr.NotFound("lesson not found")
	}
	return l, err
}

func (s *SQLStore) ListLessons(ctx context.Context, courseID string, publishedOnly bool) ([]Lesson, error) {
	sqlStr := `SELECT ` + lessonCols + ` FROM lessons WHERE course_id=$1`
	if publishedOnly {
		sqlStr += ` AND is_published`
	}
	sqlStr += ` ORDER BY ord`
	rows, err := s.db.QueryContext(ctx, sqlStr, courseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Lesson{}
	for rows.Next() {
		l, err := scanLesson(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (s *SQLStore) UpdateLesson(ctx context.Context, id string, upd LessonUpdate) (Lesson, error) {
	l, err := s.GetLesson(ctx, id)
	if err != nil {
		return Lesson{}, err
	}
	if upd.Title != nil {
		l.Title = *upd.Title
	}
	if upd.Description != nil {
		l.Description = *upd.Description
	}
	if upd.Content != nil {
		l.Content = *upd.Content
	}
	if upd.VideoURL != nil {
		l.VideoURL = *upd.VideoURL
	}
	if upd.DurationMin != nil {
		l.DurationMin = *upd.DurationMin
	}
	if upd.Order != nil {
		l.Order = *upd.Order
	}
	if upd.IsPublished != nil {
		l.IsPublished = *upd.IsPublished
	}
	l.UpdatedAt = time.Now().Unix()
	_, err = s.db.ExecContext(ctx,
		`UPDATE lessons SET title=$1, description=$2, content=$3, video_url=$4, duration_min=$5, ord=$6, is_published=$7, updated_at=$8 WHERE id=$9`,
		l.Title, l.Description, l.Content, l.VideoURL, l.DurationMin, l.Order, l.IsPublished, l.UpdatedAt, id)
	if db.IsUniqueViolation(err) {
		return Lesson{}, httperr.Conflict("lesson order %d already taken in this course", l.Order)
	}
	return l, err
}

func (s *SQLStore) DeleteLesson(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM lessons WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return httperr.NotFound("lesson not found")
	}
	return nil
}
