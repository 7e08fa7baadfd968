package quiz

import "math"

// QuestionResult mirrors one entry of the API's detailedResults array.
type QuestionResult struct {
	QuestionID    string `json:"questionId"`
	Question      string `json:"question"`
	UserAnswer    string `json:"userAnswer"`
	CorrectAnswer string `json:"correctAnswer"`
	IsCorrect     bool   `json:"isCorrect"`
	Explanation   string `json:"explanation,omitempty"`
}

type Result struct {
	Score          int              `json:"score"`
	Passed         bool             `json:"passed"`
	CorrectAnswers int              `json:"correctAnswers"`
	TotalQuestions int              `json:"totalQuestions"`
	PassingScore   int              `json:"passingScore"`
	Detailed       []QuestionResult `json:"detailedResults"`
}

// Score grades a submission against the quiz's questions. Answers are
// matched by position: answers[i] is compared to questions[i]; a
// submission shorter than the question list leaves the tail incorrect.
// Score is the percentage of correct answers rounded half-up.
//
// A quiz with zero questions scores 0 and never passes, whatever the
// threshold. Creation-side validation rejects empty quizzes, so this
// only guards direct callers.
//
// Pure function: persisting the resulting attempt is the caller's job.
func Score(questions []Question, answers []string, passingScore int) Result {
	res := Result{
		TotalQuestions: len(questions),
		PassingScore:   passingScore,
		Detailed:       make([]QuestionResult, 0, len(questions)),
	}
	for i, q := range questions {
		var submitted string
		if i < len(answers) {
			submitted = answers[i]
		}
		correct := submitted != "" && submitted == q.CorrectAnswer
		if correct {
			res.CorrectAnswers++
		}
		res.Detailed = append(res.Detailed, QuestionResult{
			QuestionID:    q.ID,
			Question:      q.Prompt,
			UserAnswer:    submitted,
			CorrectAnswer: q.CorrectAnswer,
			IsCorrect:     correct,
			Explanation:   q.Explanation,
		})
	}
	if res.TotalQuestions > 0 {
		res.Score = int(math.Round(100 * float64(res.CorrectAnswers) / float64(res.TotalQuestions)))
		res.Passed = res.Score >= passingScore
	}
	return res
}
