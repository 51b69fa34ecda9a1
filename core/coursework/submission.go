package coursework

import (
	"github.com/katikolakarthik/el-frontend/core"
	"github.com/katikolakarthik/el-frontend/core/listeditor"
	"github.com/katikolakarthik/el-frontend/core/session"
)

type SubmittedAnswers struct {
	PatientName string   `json:"patientName"`
	AgeDob      string   `json:"ageDob"`
	IcdCodes    []string `json:"icdCodes"`
	CptCodes    []string `json:"cptCodes"`
	Notes       string   `json:"notes"`
}

// SubmissionRequest is the body of an assignment attempt.
type SubmissionRequest struct {
	StudentID        string           `json:"studentId"`
	AssignmentID     string           `json:"assignmentId"`
	SubmittedAnswers SubmittedAnswers `json:"submittedAnswers"`
}

// Submission is a graded attempt as listed by the remote API.
type Submission struct {
	ID               string           `json:"_id"`
	Assignment       *Assignment      `json:"assignment,omitempty"`
	SubmissionDate   string           `json:"submissionDate,omitempty"`
	SubmittedAnswers SubmittedAnswers `json:"submittedAnswers"`
	CorrectCount     int              `json:"correctCount"`
	WrongCount       int              `json:"wrongCount"`
	ProgressPercent  float64          `json:"progressPercent"`
}

func (s Submission) ModuleName() string {
	if s.Assignment == nil || s.Assignment.ModuleName == "" {
		return "Unknown Assignment"
	}
	return s.Assignment.ModuleName
}

// SubmittedOn formats the submission date for display.
func (s Submission) SubmittedOn() string {
	t, ok := session.ParseDate(s.SubmissionDate)
	if !ok {
		return "N/A"
	}
	return t.Format("Jan 2, 2006")
}

// SubmissionForm holds the answers as typed in the submission dialog.
type SubmissionForm struct {
	PatientName string `form:"patientName"`
	AgeDob      string `form:"ageDob"`
	IcdCodes    string `form:"icdCodes"`
	CptCodes    string `form:"cptCodes"`
	Notes       string `form:"notes"`
}

// Request builds the submission of the form by student for assignment.
func (f SubmissionForm) Request(studentID, assignmentID string) SubmissionRequest {
	return SubmissionRequest{
		StudentID:    studentID,
		AssignmentID: assignmentID,
		SubmittedAnswers: SubmittedAnswers{
			PatientName: core.CleanString(f.PatientName),
			AgeDob:      core.CleanString(f.AgeDob),
			IcdCodes:    listeditor.SplitList(f.IcdCodes),
			CptCodes:    listeditor.SplitList(f.CptCodes),
			Notes:       f.Notes,
		},
	}
}

// AuditReport is the template data of the email sent to the audit mailbox.
type AuditReport struct {
	StudentName   string
	ModuleName    string
	SubModuleName string
	PatientName   string
	AgeDob        string
	IcdCodes      string
	CptCodes      string
	Notes         string
}

func NewAuditReport(student session.Identity, a Assignment, answers SubmittedAnswers) AuditReport {
	return AuditReport{
		StudentName:   student.Name,
		ModuleName:    a.ModuleName,
		SubModuleName: a.SubModule(),
		PatientName:   answers.PatientName,
		AgeDob:        answers.AgeDob,
		IcdCodes:      listeditor.JoinList(answers.IcdCodes),
		CptCodes:      listeditor.JoinList(answers.CptCodes),
		Notes:         answers.Notes,
	}
}
