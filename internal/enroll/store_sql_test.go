package enroll_test

import (
	"context"
	"database/sql"
	"testing"

	"github.com/lingua-school/lingua-lms/internal/db"
	"github.com/lingua-school/lingua-lms/internal/enroll"
	"github.com/lingua-school/lingua-lms/internal/httperr"
)

func testDB(t *testing.T) *sql.DB {
	t.Helper()
	d, err := db.Open(context.Background(), db.DriverSQLite, "file:"+t.Name()+"?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	d.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = d.Close() })
	return d
}

func seed(t *testing.T, d *sql.DB) {
	t.Helper()
	stmts := []string{
		`INSERT INTO users (id, email, password_hash, first_name, last_name, role, is_active, created_at, updated_at)
		 VALUES ('u1','s@example.com','x','Ann','Lee','student',1,0,0)`,
		`INSERT INTO users (id, email, password_hash, first_name, last_name, role, is_active, created_at, updated_at)
		 VALUES ('t1','t@example.com','x','Tom','Ray','teacher',1,0,0)`,
		`INSERT INTO courses (id, title, description, price, level, status, featured, thumbnail, duration_min, teacher_id, created_at, updated_at)
		 VALUES ('c1','Spanish A1','',0,'a1','published',0,'',60,'t1',0,0)`,
		`INSERT INTO lessons (id, course_id, title, description, content, video_url, duration_min, ord, is_published, created_at, updated_at)
		 VALUES ('l1','c1','Greetings','','hola','',10,1,1,0,0)`,
		`INSERT INTO lessons (id, course_id, title, description, content, video_url, duration_min, ord, is_published, created_at, updated_at)
		 VALUES ('l2','c1','Numbers','','uno','',10,2,1,0,0)`,
	}
	for _, s := range stmts {
		if _, err := d.Exec(s); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
}

func TestEnrollDuplicateConflicts(t *testing.T) {
	d := testDB(t)
	seed(t, d)
	store := enroll.NewSQLStore(d)
	ctx := context.Background()

	e, err := store.Enroll(ctx, "u1", "c1")
	if err != nil {
		t.Fatalf("first enroll: %v", err)
	}
	if e.ID == "" || e.EnrolledAt == 0 {
		t.Errorf("enrollment not filled in: %+v", e)
	}

	_, err = store.Enroll(ctx, "u1", "c1")
	if httperr.KindOf(err) != httperr.KindConflict {
		t.Fatalf("second enroll: got %v, want conflict", err)
	}

	ok, err := store.Exists(ctx, "u1", "c1")
	if err != nil || !ok {
		t.Errorf("Exists = %v, %v", ok, err)
	}
	ok, err = store.Exists(ctx, "u1", "nope")
	if err != nil || ok {
		t.Errorf("Exists(nope) = %v, %v", ok, err)
	}
}

func TestListByUserJoinsCourse(t *testing.T) {
	d := testDB(t)
	seed(t, d)
	store := enroll.NewSQLStore(d)
	ctx := context.Background()

	if _, err := store.Enroll(ctx, "u1", "c1"); err != nil {
		t.Fatal(err)
	}
	list, err := store.ListByUser(ctx, "u1")
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 || list[0].CourseTitle != "Spanish A1" {
		t.Errorf("list = %+v", list)
	}
}

func TestProgressUpsert(t *testing.T) {
	d := testDB(t)
	seed(t, d)
	store := enroll.NewSQLStore(d)
	ctx := context.Background()

	p1, err := store.UpsertProgress(ctx, &enroll.Progress{
		UserID: "u1", LessonID: "l1", TimeSpentSec: 120,
	})
	if err != nil {
		t.Fatalf("first upsert: %v", err)
	}
	if p1.Completed || p1.CompletedAt != nil {
		t.Errorf("should not be completed yet: %+v", p1)
	}

	p2, err := store.UpsertProgress(ctx, &enroll.Progress{
		UserID: "u1", LessonID: "l1", Completed: true, TimeSpentSec: 60,
	})
	if err != nil {
		t.Fatalf("second upsert: %v", err)
	}
	if p2.ID != p1.ID {
		t.Errorf("upsert created a new row: %s vs %s", p2.ID, p1.ID)
	}
	if p2.TimeSpentSec != 180 {
		t.Errorf("time spent = %d, want accumulated 180", p2.TimeSpentSec)
	}
	if !p2.Completed || p2.CompletedAt == nil {
		t.Errorf("completion not recorded: %+v", p2)
	}

	// completion is sticky
	p3, err := store.UpsertProgress(ctx, &enroll.Progress{
		UserID: "u1", LessonID: "l1", Completed: false, TimeSpentSec: 10,
	})
	if err != nil {
		t.Fatal(err)
	}
	if !p3.Completed {
		t.Error("completed flag must not be cleared")
	}
	if p3.TimeSpentSec != 190 {
		t.Errorf("time spent = %d, want 190", p3.TimeSpentSec)
	}
}

func TestListProgressOrderedByLesson(t *testing.T) {
	d := testDB(t)
	seed(t, d)
	store := enroll.NewSQLStore(d)
	ctx := context.Background()

	if _, err := store.UpsertProgress(ctx, &enroll.Progress{UserID: "u1", LessonID: "l2", TimeSpentSec: 5}); err != nil {
		t.Fatal(err)
	}
	if _, err := store.UpsertProgress(ctx, &enroll.Progress{UserID: "u1", LessonID: "l1", TimeSpentSec: 5}); err != nil {
		t.Fatal(err)
	}
	list, err := store.ListProgress(ctx, "u1", "c1")
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 2 || list[0].LessonID != "l1" || list[1].LessonID != "l2" {
		t.Errorf("progress order wrong: %+v", list)
	}
}
