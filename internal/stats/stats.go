package stats

import "sort"

// Input rows. The SQL source (source.go) materializes these; the Build*
// functions below only derive numbers from them and never touch I/O.

type UserRow struct {
	Role      string
	CreatedAt int64
	IsActive  bool
}

type CourseRow struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Status      string `json:"status"`
	TeacherName string `json:"teacher,omitempty"`
	Enrollments int    `json:"enrollments"`
}

type EnrollmentRow struct {
	ID          string `json:"id"`
	StudentName string `json:"student"`
	Email       string `json:"email,omitempty"`
	CourseTitle string `json:"course"`
	EnrolledAt  int64  `json:"enrolled_at"`
}

type CourseSummary struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	Level      string `json:"level"`
	Lessons    int    `json:"lessons"`
	EnrolledAt int64  `json:"enrolled_at"`
}

type AttemptRow struct {
	QuizTitle   string `json:"quiz"`
	CourseTitle string `json:"course"`
	Score       int    `json:"score"`
	Passed      bool   `json:"passed"`
	AttemptedAt int64  `json:"attempted_at"`
}

// Output projections, returned verbatim by /stats/{admin,teacher,student}.

type AdminStats struct {
	Users struct {
		Total  int            `json:"total"`
		ByRole map[string]int `json:"byRole"`
		Recent int            `json:"recent"`
	} `json:"users"`
	Courses struct {
		Total    int            `json:"total"`
		ByStatus map[string]int `json:"byStatus"`
	} `json:"courses"`
	Enrollments struct {
		Total int `json:"total"`
	} `json:"enrollments"`
	Revenue struct {
		Total    float64 `json:"total"`
		Currency string  `json:"currency"`
	} `json:"revenue"`
	PopularCourses []CourseRow `json:"popularCourses"`
}

type TeacherStats struct {
	Courses struct {
		Total     int `json:"total"`
		Published int `json:"published"`
		Draft     int `json:"draft"`
	} `json:"courses"`
	Students struct {
		Total int `json:"total"`
	} `json:"students"`
	RecentEnrollments []EnrollmentRow `json:"recentEnrollments"`
	CourseDetails     []CourseRow     `json:"courseDetails"`
}

type StudentStats struct {
	Enrollments struct {
		Total   int             `json:"total"`
		Courses []CourseSummary `json:"courses"`
	} `json:"enrollments"`
	Progress struct {
		CompletedLessons int   `json:"completedLessons"`
		TotalTimeSpent   int64 `json:"totalTimeSpent"`
	} `json:"progress"`
	Quizzes struct {
		TotalAttempts  int          `json:"totalAttempts"`
		AverageScore   float64      `json:"averageScore"`
		RecentAttempts []AttemptRow `json:"recentAttempts"`
	} `json:"quizzes"`
}

// BuildAdminStats derives the admin dashboard from already-fetched
// collections. Only active users count toward role totals, but the
// "new users" count covers every signup in the window regardless of
// account state; recentWindowStart bounds that window (callers pass
// now-30d). Revenue is the sum over succeeded payments. Popular
// courses are the top 5 by enrollment count, ties keeping input order.
func BuildAdminStats(users []UserRow, courses []CourseRow, enrollmentTotal int, revenue float64, recentWindowStart int64) AdminStats {
	var s AdminStats
	s.Users.ByRole = map[string]int{}
	for _, u := range users {
		if u.IsActive {
			s.Users.Total++
			s.Users.ByRole[u.Role]++
		}
		if u.CreatedAt >= recentWindowStart {
			s.Users.Recent++
		}
	}

	s.Courses.ByStatus = map[string]int{}
	for _, c := range courses {
		s.Courses.Total++
		s.Courses.ByStatus[c.Status]++
	}

	s.Enrollments.Total = enrollmentTotal
	s.Revenue.Total = revenue
	s.Revenue.Currency = "EUR"
	s.PopularCourses = topByEnrollment(courses, 5)
	return s
}

// topByEnrollment picks the n most-enrolled courses with a stable sort,
// so equally popular courses keep their input order.
func topByEnrollment(courses []CourseRow, n int) []CourseRow {
	out := make([]CourseRow, len(courses))
	copy(out, courses)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Enrollments > out[j].Enrollments
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}

// BuildTeacherStats summarizes one teacher's courses. studentTotal is
// the count of distinct enrolled students across those courses (the
// store deduplicates); recent holds at most the 10 newest enrollments.
func BuildTeacherStats(courses []CourseRow, studentTotal int, recent []EnrollmentRow) TeacherStats {
	var s TeacherStats
	s.Courses.Total = len(courses)
	for _, c := range courses {
		switch c.Status {
		case "published", "featured":
			s.Courses.Published++
		case "draft":
			s.Courses.Draft++
		}
	}
	s.Students.Total = studentTotal
	if len(recent) > 10 {
		recent = recent[:10]
	}
	s.RecentEnrollments = recent
	s.CourseDetails = courses
	return s
}

// BuildStudentStats summarizes one student's activity. Average score is
// the arithmetic mean over all attempts, 0 when there are none.
func BuildStudentStats(enrollments []CourseSummary, completedLessons int, timeSpentSec int64, attempts []AttemptRow) StudentStats {
	var s StudentStats
	s.Enrollments.Total = len(enrollments)
	s.Enrollments.Courses = enrollments
	s.Progress.CompletedLessons = completedLessons
	s.Progress.TotalTimeSpent = timeSpentSec
	s.Quizzes.TotalAttempts = len(attempts)
	if len(attempts) > 0 {
		sum := 0
		for _, a := range attempts {
			sum += a.Score
		}
		s.Quizzes.AverageScore = float64(sum) / float64(len(attempts))
	}
	recent := attempts
	if len(recent) > 10 {
		recent = recent[:10]
	}
	s.Quizzes.RecentAttempts = recent
	return s
}
