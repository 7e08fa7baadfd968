package http_test

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	api "github.com/lingua-school/lingua-lms/internal/api/http"
	"github.com/lingua-school/lingua-lms/internal/auth"
	"github.com/lingua-school/lingua-lms/internal/course"
	"github.com/lingua-school/lingua-lms/internal/db"
	"github.com/lingua-school/lingua-lms/internal/enroll"
	"github.com/lingua-school/lingua-lms/internal/payments"
	"github.com/lingua-school/lingua-lms/internal/quiz"
	"github.com/lingua-school/lingua-lms/internal/rbac"
	"github.com/lingua-school/lingua-lms/internal/syncx"
	"github.com/lingua-school/lingua-lms/internal/user"
)

type testAPI struct {
	router      *chi.Mux
	authSvc     *auth.AuthService
	users       user.Store
	courses     course.Store
	quizzes     quiz.Store
	enrollments enroll.Store
	db          *sql.DB
}

// newTestAPI wires the routes the way cmd/gateway does, against an
// in-memory sqlite database.
func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	d, err := db.Open(context.Background(), db.DriverSQLite, "file:"+t.Name()+"?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	d.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = d.Close() })

	a := &testAPI{
		authSvc:     auth.NewAuthService("test-secret"),
		users:       user.NewSQLStore(d),
		courses:     course.NewSQLStore(d),
		quizzes:     quiz.NewSQLStore(d),
		enrollments: enroll.NewSQLStore(d),
		db:          d,
	}
	events := syncx.NewEventRepo(d)
	paySvc := payments.NewService(payments.NewSQLStore(d), a.enrollments, payments.LocalProvider{})

	r := chi.NewRouter()
	r.Post("/auth/register", api.RegisterHandler(a.users, a.authSvc))
	r.Post("/auth/login", api.LoginHandler(a.users, a.authSvc))
	r.Group(func(pr chi.Router) {
		pr.Use(auth.OptionalJWT(a.authSvc))
		pr.Get("/courses", api.ListCoursesHandler(a.courses))
		pr.Get("/courses/{id}", api.GetCourseHandler(a.courses))
		pr.Get("/courses/{id}/lessons", api.ListLessonsHandler(a.courses, a.enrollments))
	})
	r.Group(func(pr chi.Router) {
		pr.Use(auth.JWTMiddleware(a.authSvc))
		pr.Get("/auth/profile", api.ProfileHandler(a.users))
		pr.With(rbac.Require("user:change_password")).
			Post("/auth/change-password", api.ChangePasswordHandler(a.users))
		pr.With(rbac.Require("course:create")).
			Post("/courses", api.CreateCourseHandler(a.courses))
		pr.With(rbac.Require("quiz:create")).
			Post("/quizzes", api.CreateQuizHandler(a.quizzes, a.courses))
		pr.With(rbac.Require("quiz:view")).
			Get("/quizzes/{id}", api.GetQuizHandler(a.quizzes, a.enrollments))
		pr.With(rbac.Require("attempt:submit")).
			Post("/quizzes/{id}/attempts", api.SubmitAttemptHandler(a.quizzes, a.enrollments, events))
		pr.With(rbac.Require("enrollment:create")).
			Post("/courses/{id}/enroll", api.EnrollHandler(a.courses, a.enrollments, events))
		pr.With(rbac.Require("payment:create")).
			Post("/payments/checkout", api.CheckoutHandler(paySvc, a.courses))
		pr.With(rbac.Require("payment:create")).
			Post("/payments/{id}/confirm", api.ConfirmPaymentHandler(paySvc, events))
	})
	a.router = r
	return a
}

func (a *testAPI) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func (a *testAPI) mkUser(t *testing.T, email, role string) (user.User, string) {
	t.Helper()
	u, err := a.users.Create(context.Background(), user.User{
		Email: email, FirstName: "Test", LastName: "User", Role: role, IsActive: true,
	}, "$2a$12$invalidhashforloginxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxx")
	if err != nil {
		t.Fatal(err)
	}
	token, err := a.authSvc.IssueJWT(u.ID, u.Role)
	if err != nil {
		t.Fatal(err)
	}
	return u, token
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, dst any) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), dst); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
}

func TestRegisterLoginProfile(t *testing.T) {
	a := newTestAPI(t)

	w := a.do(t, "POST", "/auth/register", "", map[string]any{
		"email": "ann@example.com", "password": "secret123",
		"firstName": "Ann", "lastName": "Lee",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("register: %d %s", w.Code, w.Body.String())
	}
	var reg struct {
		Token string    `json:"token"`
		User  user.User `json:"user"`
	}
	decodeBody(t, w, &reg)
	if reg.Token == "" || reg.User.Role != "student" {
		t.Errorf("register resp = %+v", reg)
	}

	// duplicate registration
	w = a.do(t, "POST", "/auth/register", "", map[string]any{
		"email": "ann@example.com", "password": "secret123",
		"firstName": "Ann", "lastName": "Lee",
	})
	if w.Code != http.StatusConflict {
		t.Errorf("duplicate register: %d", w.Code)
	}

	w = a.do(t, "POST", "/auth/login", "", map[string]any{
		"email": "ann@example.com", "password": "secret123",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("login: %d %s", w.Code, w.Body.String())
	}
	var login struct {
		Token string `json:"token"`
	}
	decodeBody(t, w, &login)

	w = a.do(t, "GET", "/auth/profile", login.Token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("profile: %d", w.Code)
	}
	var profile user.User
	decodeBody(t, w, &profile)
	if profile.Email != "ann@example.com" {
		t.Errorf("profile = %+v", profile)
	}

	// wrong password gets the same generic message
	w = a.do(t, "POST", "/auth/login", "", map[string]any{
		"email": "ann@example.com", "password": "wrongpass",
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf("bad login: %d", w.Code)
	}

	// no token
	w = a.do(t, "GET", "/auth/profile", "", nil)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("unauthenticated profile: %d", w.Code)
	}
}

func TestRBACBlocksStudents(t *testing.T) {
	a := newTestAPI(t)
	_, token := a.mkUser(t, "s@example.com", "student")

	w := a.do(t, "POST", "/courses", token, map[string]any{
		"title": "Nope", "level": "a1",
	})
	if w.Code != http.StatusForbidden {
		t.Errorf("student course create: %d, want 403", w.Code)
	}
}

func TestCourseVisibility(t *testing.T) {
	a := newTestAPI(t)
	teacher, teacherTok := a.mkUser(t, "t@example.com", "teacher")
	_, studentTok := a.mkUser(t, "s@example.com", "student")

	w := a.do(t, "POST", "/courses", teacherTok, map[string]any{
		"title": "Spanish A1", "level": "a1", "price": 0,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create course: %d %s", w.Code, w.Body.String())
	}
	var c course.Course
	decodeBody(t, w, &c)
	if c.Status != course.StatusDraft || c.TeacherID != teacher.ID {
		t.Errorf("course = %+v", c)
	}

	// draft invisible to students
	w = a.do(t, "GET", "/courses/"+c.ID, studentTok, nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("student sees draft: %d", w.Code)
	}
	// owner sees it
	w = a.do(t, "GET", "/courses/"+c.ID, teacherTok, nil)
	if w.Code != http.StatusOK {
		t.Errorf("owner blocked: %d", w.Code)
	}
	// anonymous list has no drafts
	w = a.do(t, "GET", "/courses", "", nil)
	var listing struct {
		Total int `json:"total"`
	}
	decodeBody(t, w, &listing)
	if listing.Total != 0 {
		t.Errorf("anonymous total = %d, want 0", listing.Total)
	}
}

// seedQuizCourse creates a published course with one published lesson
// and a two-question quiz, bypassing the HTTP layer.
func (a *testAPI) seedQuizCourse(t *testing.T, teacherID string) (course.Course, *quiz.Quiz) {
	t.Helper()
	ctx := context.Background()
	c, err := a.courses.Create(ctx, course.Course{
		Title: "Spanish A1", Level: "a1", Status: course.StatusPublished, TeacherID: teacherID,
	})
	if err != nil {
		t.Fatal(err)
	}
	l, err := a.courses.CreateLesson(ctx, course.Lesson{
		CourseID: c.ID, Title: "Greetings", Order: 1, IsPublished: true,
	})
	if err != nil {
		t.Fatal(err)
	}
	q := &quiz.Quiz{
		LessonID: l.ID, Title: "Check", PassingScore: 70,
		Questions: []quiz.Question{
			{Prompt: "hello?", Options: []string{"hola", "adios"}, CorrectAnswer: "hola"},
			{Prompt: "bye?", Options: []string{"hola", "adios"}, CorrectAnswer: "adios"},
		},
	}
	if err := a.quizzes.PutQuiz(ctx, q); err != nil {
		t.Fatal(err)
	}
	return c, q
}

func TestQuizFlow(t *testing.T) {
	a := newTestAPI(t)
	teacher, teacherTok := a.mkUser(t, "t@example.com", "teacher")
	_, studentTok := a.mkUser(t, "s@example.com", "student")
	c, q := a.seedQuizCourse(t, teacher.ID)

	// not enrolled: no quiz access
	w := a.do(t, "GET", "/quizzes/"+q.ID, studentTok, nil)
	if w.Code != http.StatusForbidden {
		t.Fatalf("unenrolled quiz view: %d", w.Code)
	}

	// enroll (free course)
	w = a.do(t, "POST", "/courses/"+c.ID+"/enroll", studentTok, nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("enroll: %d %s", w.Code, w.Body.String())
	}
	// enrolling twice conflicts
	w = a.do(t, "POST", "/courses/"+c.ID+"/enroll", studentTok, nil)
	if w.Code != http.StatusConflict {
		t.Errorf("second enroll: %d, want 409", w.Code)
	}

	// student view must not leak answer keys
	w = a.do(t, "GET", "/quizzes/"+q.ID, studentTok, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("enrolled quiz view: %d", w.Code)
	}
	var view struct {
		Quiz quiz.Quiz `json:"quiz"`
	}
	decodeBody(t, w, &view)
	for _, qu := range view.Quiz.Questions {
		if qu.CorrectAnswer != "" || qu.Explanation != "" {
			t.Errorf("answer key leaked: %+v", qu)
		}
	}

	// teacher sees the full document
	w = a.do(t, "GET", "/quizzes/"+q.ID, teacherTok, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("teacher quiz view: %d", w.Code)
	}
	var full quiz.Quiz
	decodeBody(t, w, &full)
	if full.Questions[0].CorrectAnswer != "hola" {
		t.Errorf("teacher view stripped: %+v", full.Questions[0])
	}

	// submit: one of two correct = 50, below 70 threshold
	w = a.do(t, "POST", "/quizzes/"+q.ID+"/attempts", studentTok, map[string]any{
		"answers": []string{"hola", "hola"}, "time_spent": 42,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("submit: %d %s", w.Code, w.Body.String())
	}
	var sub struct {
		AttemptID string      `json:"attempt_id"`
		Result    quiz.Result `json:"result"`
	}
	decodeBody(t, w, &sub)
	if sub.Result.Score != 50 || sub.Result.Passed {
		t.Errorf("result = %+v", sub.Result)
	}
	if len(sub.Result.Detailed) != 2 || !sub.Result.Detailed[0].IsCorrect || sub.Result.Detailed[1].IsCorrect {
		t.Errorf("detail = %+v", sub.Result.Detailed)
	}
}

func TestCreateQuizValidation(t *testing.T) {
	a := newTestAPI(t)
	teacher, teacherTok := a.mkUser(t, "t@example.com", "teacher")

	ctx := context.Background()
	c, err := a.courses.Create(ctx, course.Course{
		Title: "Spanish A1", Level: "a1", Status: course.StatusPublished, TeacherID: teacher.ID,
	})
	if err != nil {
		t.Fatal(err)
	}
	l, err := a.courses.CreateLesson(ctx, course.Lesson{
		CourseID: c.ID, Title: "Greetings", Order: 1, IsPublished: true,
	})
	if err != nil {
		t.Fatal(err)
	}

	// a quiz needs at least one question
	w := a.do(t, "POST", "/quizzes", teacherTok, map[string]any{
		"lesson_id": l.ID, "title": "Empty", "questions": []any{},
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf("empty question list: %d, want 400", w.Code)
	}
	w = a.do(t, "POST", "/quizzes", teacherTok, map[string]any{
		"lesson_id": l.ID, "title": "Missing",
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf("absent question list: %d, want 400", w.Code)
	}

	question := map[string]any{
		"question": "hello?", "options": []string{"hola", "adios"}, "correctAnswer": "hola",
	}

	// an explicit passingScore of 0 is kept, not swapped for the default
	w = a.do(t, "POST", "/quizzes", teacherTok, map[string]any{
		"lesson_id": l.ID, "title": "Zero bar", "passingScore": 0,
		"questions": []any{question},
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create with passingScore 0: %d %s", w.Code, w.Body.String())
	}
	var zero quiz.Quiz
	decodeBody(t, w, &zero)
	if zero.PassingScore != 0 {
		t.Errorf("passingScore = %d, want 0", zero.PassingScore)
	}

	// omitted passingScore falls back to 70
	w = a.do(t, "POST", "/quizzes", teacherTok, map[string]any{
		"lesson_id": l.ID, "title": "Default bar",
		"questions": []any{question},
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create without passingScore: %d %s", w.Code, w.Body.String())
	}
	var def quiz.Quiz
	decodeBody(t, w, &def)
	if def.PassingScore != 70 {
		t.Errorf("passingScore = %d, want 70", def.PassingScore)
	}
}

func TestLessonListRequiresEnrollment(t *testing.T) {
	a := newTestAPI(t)
	teacher, teacherTok := a.mkUser(t, "t@example.com", "teacher")
	student, studentTok := a.mkUser(t, "s@example.com", "student")
	c, q := a.seedQuizCourse(t, teacher.ID)

	// published course, but lessons stay behind enrollment
	w := a.do(t, "GET", "/courses/"+c.ID+"/lessons", studentTok, nil)
	if w.Code != http.StatusForbidden {
		t.Errorf("unenrolled student lesson list: %d, want 403", w.Code)
	}
	w = a.do(t, "GET", "/courses/"+c.ID+"/lessons", "", nil)
	if w.Code != http.StatusForbidden {
		t.Errorf("anonymous lesson list: %d, want 403", w.Code)
	}

	ctx := context.Background()
	if _, err := a.enrollments.Enroll(ctx, student.ID, c.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := a.enrollments.UpsertProgress(ctx, &enroll.Progress{
		UserID: student.ID, LessonID: q.LessonID, TimeSpentSec: 90,
	}); err != nil {
		t.Fatal(err)
	}

	w = a.do(t, "GET", "/courses/"+c.ID+"/lessons", studentTok, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("enrolled lesson list: %d %s", w.Code, w.Body.String())
	}
	var list []struct {
		ID       string `json:"id"`
		Progress *struct {
			TimeSpent int `json:"timeSpent"`
		} `json:"progress"`
	}
	decodeBody(t, w, &list)
	if len(list) != 1 || list[0].Progress == nil || list[0].Progress.TimeSpent != 90 {
		t.Errorf("lesson list = %+v", list)
	}

	// the owner still sees the outline without enrolling
	w = a.do(t, "GET", "/courses/"+c.ID+"/lessons", teacherTok, nil)
	if w.Code != http.StatusOK {
		t.Errorf("owner lesson list: %d", w.Code)
	}
}

func TestPaidCourseCheckout(t *testing.T) {
	a := newTestAPI(t)
	teacher, _ := a.mkUser(t, "t@example.com", "teacher")
	_, studentTok := a.mkUser(t, "s@example.com", "student")

	c, err := a.courses.Create(context.Background(), course.Course{
		Title: "Premium", Level: "b2", Status: course.StatusPublished,
		Price: 49.90, TeacherID: teacher.ID,
	})
	if err != nil {
		t.Fatal(err)
	}

	// direct enrollment refused for paid courses
	w := a.do(t, "POST", "/courses/"+c.ID+"/enroll", studentTok, nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("paid direct enroll: %d", w.Code)
	}

	w = a.do(t, "POST", "/payments/checkout", studentTok, map[string]any{"course_id": c.ID})
	if w.Code != http.StatusCreated {
		t.Fatalf("checkout: %d %s", w.Code, w.Body.String())
	}
	var intent payments.Intent
	decodeBody(t, w, &intent)
	if intent.Amount != 49.90 || intent.PaymentID == "" {
		t.Errorf("intent = %+v", intent)
	}

	w = a.do(t, "POST", "/payments/"+intent.PaymentID+"/confirm", studentTok, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("confirm: %d %s", w.Code, w.Body.String())
	}
	var paid payments.Payment
	decodeBody(t, w, &paid)
	if paid.Status != payments.StatusSucceeded {
		t.Errorf("payment = %+v", paid)
	}

	enrolled, err := a.enrollments.Exists(context.Background(), paid.UserID, c.ID)
	if err != nil || !enrolled {
		t.Errorf("buyer not enrolled: %v %v", enrolled, err)
	}

	// event log records the payment
	events, err := syncx.NewEventRepo(a.db).ListSince(context.Background(), 0, 10)
	if err != nil {
		t.Fatal(err)
	}
	found := false
	for _, e := range events {
		if e.Type == syncx.EventPaymentSucceeded && e.Key == paid.ID {
			found = true
		}
	}
	if !found {
		t.Errorf("no PaymentSucceeded event, got %+v", events)
	}
}
