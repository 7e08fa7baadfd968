package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/lingua-school/lingua-lms/internal/course"
	"github.com/lingua-school/lingua-lms/internal/enroll"
	"github.com/lingua-school/lingua-lms/internal/httperr"
	"github.com/lingua-school/lingua-lms/internal/policy"
	"github.com/lingua-school/lingua-lms/internal/quiz"
	"github.com/lingua-school/lingua-lms/internal/syncx"
)

type quizQuestionReq struct {
	Prompt        string   `json:"question" validate:"required"`
	Options       []string `json:"options" validate:"required,min=2,dive,required"`
	CorrectAnswer string   `json:"correctAnswer" validate:"required"`
	Explanation   string   `json:"explanation"`
}

type createQuizReq struct {
	LessonID     string            `json:"lesson_id" validate:"required"`
	Title        string            `json:"title" validate:"required"`
	Description  string            `json:"description"`
	TimeLimitMin int               `json:"time_limit" validate:"gte=0"`
	PassingScore *int              `json:"passingScore" validate:"omitempty,gte=0,lte=100"`
	Questions    []quizQuestionReq `json:"questions" validate:"required,min=1,dive"`
}

// POST /quizzes. The quiz attaches to a lesson the caller owns; each
// question's answer key must be one of its own options.
func CreateQuizHandler(quizzes quiz.Store, courses course.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		a := actorFrom(r)
		var req createQuizReq
		if err := decodeJSON(r, &req); err != nil {
			httperr.Write(w, err)
			return
		}
		l, err := courses.GetLesson(r.Context(), req.LessonID)
		if err != nil {
			httperr.Write(w, err)
			return
		}
		c, err := courses.Get(r.Context(), l.CourseID)
		if err != nil {
			httperr.Write(w, err)
			return
		}
		if !policy.CanMutate(a, c.TeacherID) {
			httperr.Write(w, httperr.Forbidden("not your course"))
			return
		}
		q := quiz.Quiz{
			LessonID:     req.LessonID,
			Title:        req.Title,
			Description:  req.Description,
			TimeLimitMin: req.TimeLimitMin,
			PassingScore: 70,
		}
		if req.PassingScore != nil {
			q.PassingScore = *req.PassingScore
		}
		for i, qr := range req.Questions {
			found := false
			for _, opt := range qr.Options {
				if opt == qr.CorrectAnswer {
					found = true
					break
				}
			}
			if !found {
				httperr.Write(w, httperr.Validation("question %d: correct answer is not among the options", i+1))
				return
			}
			q.Questions = append(q.Questions, quiz.Question{
				Prompt:        qr.Prompt,
				Options:       qr.Options,
				CorrectAnswer: qr.CorrectAnswer,
				Explanation:   qr.Explanation,
				Order:         i + 1,
			})
		}
		if err := quizzes.PutQuiz(r.Context(), &q); err != nil {
			httperr.Write(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, q)
	}
}

// GET /quizzes/{id}. Students get the quiz with answer keys and
// explanations stripped, plus their own recent attempts. Teachers and
// admins see the full document.
func GetQuizHandler(quizzes quiz.Store, enrollments enroll.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		a := actorFrom(r)
		q, err := quizzes.GetQuiz(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			httperr.Write(w, err)
			return
		}
		ref, err := quizzes.CourseRef(r.Context(), q.ID)
		if err != nil {
			httperr.Write(w, err)
			return
		}
		enrolled := false
		if a.Role == policy.RoleStudent {
			enrolled, err = enrollments.Exists(r.Context(), a.ID, ref.CourseID)
			if err != nil {
				httperr.Write(w, err)
				return
			}
		}
		if !policy.CanViewLesson(a, ref.TeacherID, ref.Published, enrolled) {
			httperr.Write(w, httperr.Forbidden("enroll in the course to access this quiz"))
			return
		}
		if policy.CanMutate(a, ref.TeacherID) {
			writeJSON(w, http.StatusOK, q)
			return
		}
		for i := range q.Questions {
			q.Questions[i].CorrectAnswer = ""
			q.Questions[i].Explanation = ""
		}
		attempts, err := quizzes.ListAttempts(r.Context(), quiz.AttemptListOpts{
			QuizID: q.ID, UserID: a.ID, Limit: 5,
		})
		if err != nil {
			httperr.Write(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"quiz": q, "attempts": attempts})
	}
}

type submitAttemptReq struct {
	Answers      []string `json:"answers" validate:"required"`
	TimeSpentSec int      `json:"time_spent" validate:"gte=0"`
}

// POST /quizzes/{id}/attempts. Answers are matched to questions by
// position; the graded result comes back with per-question detail.
func SubmitAttemptHandler(quizzes quiz.Store, enrollments enroll.Store, events *syncx.EventRepo) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		a := actorFrom(r)
		var req submitAttemptReq
		if err := decodeJSON(r, &req); err != nil {
			httperr.Write(w, err)
			return
		}
		q, err := quizzes.GetQuiz(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			httperr.Write(w, err)
			return
		}
		ref, err := quizzes.CourseRef(r.Context(), q.ID)
		if err != nil {
			httperr.Write(w, err)
			return
		}
		enrolled, err := enrollments.Exists(r.Context(), a.ID, ref.CourseID)
		if err != nil {
			httperr.Write(w, err)
			return
		}
		if !policy.CanViewLesson(a, ref.TeacherID, ref.Published, enrolled) {
			httperr.Write(w, httperr.Forbidden("enroll in the course to take this quiz"))
			return
		}
		result := quiz.Score(q.Questions, req.Answers, q.PassingScore)
		att, err := quizzes.CreateAttempt(r.Context(), quiz.Attempt{
			QuizID:       q.ID,
			UserID:       a.ID,
			Score:        result.Score,
			Passed:       result.Passed,
			Answers:      req.Answers,
			TimeSpentSec: req.TimeSpentSec,
		})
		if err != nil {
			httperr.Write(w, err)
			return
		}
		if err := events.Append(r.Context(), syncx.EventAttemptSubmitted, att.ID, map[string]any{
			"quiz_id": q.ID, "user_id": a.ID, "score": result.Score, "passed": result.Passed,
		}); err != nil {
			httperr.Write(w, httperr.Wrap("record event", err))
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{"attempt_id": att.ID, "result": result})
	}
}

// GET /quizzes/{id}/attempts?user_id=&limit=&offset=
// Students only see their own attempts; course owners and admins see
// everyone's.
func ListAttemptsHandler(quizzes quiz.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		a := actorFrom(r)
		quizID := chi.URLParam(r, "id")
		ref, err := quizzes.CourseRef(r.Context(), quizID)
		if err != nil {
			httperr.Write(w, err)
			return
		}
		userID := r.URL.Query().Get("user_id")
		if !policy.CanMutate(a, ref.TeacherID) {
			userID = a.ID
		}
		list, err := quizzes.ListAttempts(r.Context(), quiz.AttemptListOpts{
			QuizID: quizID,
			UserID: userID,
			Limit:  parseIntDefault(r.URL.Query().Get("limit"), 50),
			Offset: parseIntDefault(r.URL.Query().Get("offset"), 0),
		})
		if err != nil {
			httperr.Write(w, err)
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}
