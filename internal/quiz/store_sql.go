package quiz

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/lingua-school/lingua-lms/internal/httperr"
)

type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore { return &SQLStore{db: db} }

func (s *SQLStore) PutQuiz(ctx context.Context, q *Quiz) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if q.ID == "" {
		q.ID = uuid.NewString()
	}
	if q.CreatedAt == 0 {
		q.CreatedAt = time.Now().Unix()
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO quizzes (id, lesson_id, title, description, time_limit_min, passing_score, created_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		q.ID, q.LessonID, q.Title, q.Description, q.TimeLimitMin, q.PassingScore, q.CreatedAt)
	if err != nil {
		return err
	}
	for i := range q.Questions {
		qu := &q.Questions[i]
		opts, e := json.Marshal(qu.Options)
		if e != nil {
			return e
		}
		if qu.ID == "" {
			qu.ID = uuid.NewString()
		}
		qu.QuizID = q.ID
		qu.Order = i + 1
		_, err = tx.ExecContext(ctx,
			`INSERT INTO quiz_questions (id, quiz_id, prompt, options_json, correct_answer, explanation, ord)
			 VALUES ($1,$2,$3,$4,$5,$6,$7)`,
			qu.ID, q.ID, qu.Prompt, string(opts), qu.CorrectAnswer, qu.Explanation, qu.Order)
		if err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *SQLStore) GetQuiz(ctx context.Context, id string) (Quiz, error) {
	var q Quiz
	err := s.db.QueryRowContext(ctx,
		`SELECT id, lesson_id, title, description, time_limit_min, passing_score, created_at
		   FROM quizzes WHERE id=$1`, id).
		Scan(&q.ID, &q.LessonID, &q.Title, &q.Description, &q.TimeLimitMin, &q.PassingScore, &q.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Quiz{}, httperr.NotFound("quiz not found")
	}
	if err != nil {
		return Quiz{}, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, prompt, options_json, correct_answer, explanation, ord
		   FROM quiz_questions WHERE quiz_id=$1 ORDER BY ord`, q.ID)
	if err != nil {
		return Quiz{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var qu Question
		var opts string
		if err := rows.Scan(&qu.ID, &qu.Prompt, &opts, &qu.CorrectAnswer, &qu.Explanation, &qu.Order); err != nil {
			return Quiz{}, err
		}
		if err := json.Unmarshal([]byte(opts), &qu.Options); err != nil {
			return Quiz{}, err
		}
		q.Questions = append(q.Questions, qu)
	}
	return q, rows.Err()
}

func (s *SQLStore) CourseRef(ctx context.Context, quizID string) (CourseRef, error) {
	var ref CourseRef
	err := s.db.QueryRowContext(ctx, `
		SELECT c.id, l.id, c.teacher_id, l.is_published
		  FROM quizzes q
		  JOIN lessons l ON l.id = q.lesson_id
		  JOIN courses c ON c.id = l.course_id
		 WHERE q.id = $1`, quizID).
		Scan(&ref.CourseID, &ref.LessonID, &ref.TeacherID, &ref.Published)
	if errors.Is(err, sql.ErrNoRows) {
		return CourseRef{}, httperr.NotFound("quiz not found")
	}
	return ref, err
}

func (s *SQLStore) CreateAttempt(ctx context.Context, a Attempt) (Attempt, error) {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.AttemptedAt == 0 {
		a.AttemptedAt = time.Now().Unix()
	}
	answers, err := json.Marshal(a.Answers)
	if err != nil {
		return Attempt{}, err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO quiz_attempts (id, quiz_id, user_id, score, passed, answers_json, time_spent_sec, attempted_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		a.ID, a.QuizID, a.UserID, a.Score, a.Passed, string(answers), a.TimeSpentSec, a.AttemptedAt)
	if err != nil {
		return Attempt{}, err
	}
	return a, nil
}

func (s *SQLStore) ListAttempts(ctx context.Context, opts AttemptListOpts) ([]Attempt, error) {
	if opts.Limit <= 0 || opts.Limit > 200 {
		opts.Limit = 50
	}
	sqlStr := `SELECT id, quiz_id, user_id, score, passed, answers_json, time_spent_sec, attempted_at
	             FROM quiz_attempts WHERE 1=1`
	var args []any
	if opts.QuizID != "" {
		args = append(args, opts.QuizID)
		sqlStr += ` AND quiz_id=$` + strconv.Itoa(len(args))
	}
	if opts.UserID != "" {
		args = append(args, opts.UserID)
		sqlStr += ` AND user_id=$` + strconv.Itoa(len(args))
	}
	args = append(args, opts.Limit, opts.Offset)
	sqlStr += ` ORDER BY attempted_at DESC LIMIT $` + strconv.Itoa(len(args)-1) + ` OFFSET $` + strconv.Itoa(len(args))

	rows, err := s.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Attempt{}
	for rows.Next() {
		var a Attempt
		var answers string
		if err := rows.Scan(&a.ID, &a.QuizID, &a.UserID, &a.Score, &a.Passed, &answers, &a.TimeSpentSec, &a.AttemptedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(answers), &a.Answers); err != nil {
			a.Answers = nil
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
