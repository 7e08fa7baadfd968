package quiz_test

import (
	"context"
	"database/sql"
	"testing"

	"github.com/lingua-school/lingua-lms/internal/db"
	"github.com/lingua-school/lingua-lms/internal/httperr"
	"github.com/lingua-school/lingua-lms/internal/quiz"
)

func testDB(t *testing.T) *sql.DB {
	t.Helper()
	d, err := db.Open(context.Background(), db.DriverSQLite, "file:"+t.Name()+"?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	d.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = d.Close() })

	stmts := []string{
		`INSERT INTO users (id, email, password_hash, first_name, last_name, role, is_active, created_at, updated_at)
		 VALUES ('t1','t@example.com','x','Tom','Ray','teacher',1,0,0)`,
		`INSERT INTO users (id, email, password_hash, first_name, last_name, role, is_active, created_at, updated_at)
		 VALUES ('u1','s@example.com','x','Ann','Lee','student',1,0,0)`,
		`INSERT INTO users (id, email, password_hash, first_name, last_name, role, is_active, created_at, updated_at)
		 VALUES ('u2','s2@example.com','x','Ben','Kim','student',1,0,0)`,
		`INSERT INTO courses (id, title, description, price, level, status, featured, thumbnail, duration_min, teacher_id, created_at, updated_at)
		 VALUES ('c1','Spanish A1','',0,'a1','published',0,'',60,'t1',0,0)`,
		`INSERT INTO lessons (id, course_id, title, description, content, video_url, duration_min, ord, is_published, created_at, updated_at)
		 VALUES ('l1','c1','Greetings','','hola','',10,1,1,0,0)`,
	}
	for _, s := range stmts {
		if _, err := d.Exec(s); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
	return d
}

func sampleQuiz() *quiz.Quiz {
	return &quiz.Quiz{
		LessonID:     "l1",
		Title:        "Greetings check",
		PassingScore: 70,
		Questions: []quiz.Question{
			{Prompt: "hello?", Options: []string{"hola", "adios"}, CorrectAnswer: "hola", Explanation: "greeting"},
			{Prompt: "bye?", Options: []string{"hola", "adios"}, CorrectAnswer: "adios"},
		},
	}
}

func TestPutAndGetQuiz(t *testing.T) {
	store := quiz.NewSQLStore(testDB(t))
	ctx := context.Background()

	q := sampleQuiz()
	if err := store.PutQuiz(ctx, q); err != nil {
		t.Fatalf("put quiz: %v", err)
	}
	if q.ID == "" || q.Questions[0].ID == "" {
		t.Fatal("ids not assigned on insert")
	}

	got, err := store.GetQuiz(ctx, q.ID)
	if err != nil {
		t.Fatalf("get quiz: %v", err)
	}
	if got.Title != "Greetings check" || got.PassingScore != 70 || len(got.Questions) != 2 {
		t.Errorf("quiz = %+v", got)
	}
	if got.Questions[0].Order != 1 || got.Questions[1].Order != 2 {
		t.Errorf("question order: %+v", got.Questions)
	}
	if got.Questions[0].CorrectAnswer != "hola" || len(got.Questions[0].Options) != 2 {
		t.Errorf("question roundtrip: %+v", got.Questions[0])
	}

	_, err = store.GetQuiz(ctx, "missing")
	if httperr.KindOf(err) != httperr.KindNotFound {
		t.Errorf("missing quiz: got %v, want not found", err)
	}
}

func TestCourseRef(t *testing.T) {
	store := quiz.NewSQLStore(testDB(t))
	ctx := context.Background()

	q := sampleQuiz()
	if err := store.PutQuiz(ctx, q); err != nil {
		t.Fatal(err)
	}
	ref, err := store.CourseRef(ctx, q.ID)
	if err != nil {
		t.Fatalf("course ref: %v", err)
	}
	if ref.CourseID != "c1" || ref.LessonID != "l1" || ref.TeacherID != "t1" || !ref.Published {
		t.Errorf("ref = %+v", ref)
	}

	_, err = store.CourseRef(ctx, "missing")
	if httperr.KindOf(err) != httperr.KindNotFound {
		t.Errorf("missing ref: got %v", err)
	}
}

func TestAttempts(t *testing.T) {
	store := quiz.NewSQLStore(testDB(t))
	ctx := context.Background()

	q := sampleQuiz()
	if err := store.PutQuiz(ctx, q); err != nil {
		t.Fatal(err)
	}

	a1, err := store.CreateAttempt(ctx, quiz.Attempt{
		QuizID: q.ID, UserID: "u1", Score: 50, Passed: false,
		Answers: []string{"hola", "hola"}, TimeSpentSec: 30, AttemptedAt: 100,
	})
	if err != nil {
		t.Fatalf("create attempt: %v", err)
	}
	if a1.ID == "" {
		t.Fatal("attempt id not assigned")
	}
	_, err = store.CreateAttempt(ctx, quiz.Attempt{
		QuizID: q.ID, UserID: "u1", Score: 100, Passed: true,
		Answers: []string{"hola", "adios"}, AttemptedAt: 200,
	})
	if err != nil {
		t.Fatal(err)
	}
	_, err = store.CreateAttempt(ctx, quiz.Attempt{
		QuizID: q.ID, UserID: "u2", Score: 0, Passed: false,
		Answers: []string{}, AttemptedAt: 300,
	})
	if err != nil {
		t.Fatal(err)
	}

	own, err := store.ListAttempts(ctx, quiz.AttemptListOpts{QuizID: q.ID, UserID: "u1"})
	if err != nil {
		t.Fatal(err)
	}
	if len(own) != 2 {
		t.Fatalf("own attempts = %d, want 2", len(own))
	}
	// newest first
	if own[0].Score != 100 || own[1].Score != 50 {
		t.Errorf("sort order: %+v", own)
	}
	if len(own[1].Answers) != 2 || own[1].Answers[0] != "hola" {
		t.Errorf("answers roundtrip: %+v", own[1].Answers)
	}

	all, err := store.ListAttempts(ctx, quiz.AttemptListOpts{QuizID: q.ID})
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 3 {
		t.Errorf("all attempts = %d, want 3", len(all))
	}
}
