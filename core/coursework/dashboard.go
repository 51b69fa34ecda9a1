package coursework

import (
	"fmt"
	"math"

	"github.com/katikolakarthik/el-frontend/core/session"
)

const recentLimit = 5

// AdminStats are the figures of the admin dashboard.
type AdminStats struct {
	TotalStudents     int
	TotalAssignments  int
	TotalSubmissions  int
	AverageProgress   int
	RecentStudents    []Student
	RecentAssignments []Assignment
}

// ComputeAdminStats aggregates the student summaries and the assignments.
// The average progress is the rounded mean over students, 0 without students.
func ComputeAdminStats(students []Student, assignments []Assignment) AdminStats {
	stats := AdminStats{
		TotalStudents:     len(students),
		TotalAssignments:  len(assignments),
		RecentStudents:    head(students, recentLimit),
		RecentAssignments: head(assignments, recentLimit),
	}
	var progress float64
	for _, s := range students {
		stats.TotalSubmissions += s.SubmissionCount
		progress += s.AverageProgress
	}
	if len(students) > 0 {
		stats.AverageProgress = int(math.Round(progress / float64(len(students))))
	}
	return stats
}

// StudentProgress is the per-student summary served by the remote API.
type StudentProgress struct {
	TotalAssignments     int     `json:"totalAssignments"`
	CompletedAssignments int     `json:"completedAssignments"`
	AverageScore         float64 `json:"averageScore"`
	PendingAssignments   int     `json:"pendingAssignments"`
	OverallProgress      float64 `json:"overallProgress"`
}

// CompletionPercent is completed over total assignments, rounded.
func (p StudentProgress) CompletionPercent() int {
	if p.TotalAssignments <= 0 {
		return 0
	}
	return int(math.Round(float64(p.CompletedAssignments) * 100 / float64(p.TotalAssignments)))
}

// StudentDashboard gathers what the student dashboard shows.
type StudentDashboard struct {
	Progress          StudentProgress
	RecentSubmissions []Submission
}

func NewStudentDashboard(p StudentProgress, submissions []Submission) StudentDashboard {
	return StudentDashboard{Progress: p, RecentSubmissions: head(submissions, recentLimit)}
}

// PaymentStatus is "Fully paid" or the amount still owed.
func PaymentStatus(id session.Identity) string {
	if r := id.Remaining(); r > 0 {
		return fmt.Sprintf("$%d remaining", r)
	}
	return "Fully paid"
}

func head[T any](s []T, n int) []T {
	if len(s) > n {
		s = s[:n]
	}
	return append([]T(nil), s...)
}
