package coursework

import (
	"strconv"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/katikolakarthik/el-frontend/core"
	"github.com/katikolakarthik/el-frontend/core/session"
)

// Student is a student record as served by the remote API.
// SubmissionCount and AverageProgress are only filled by the summary endpoint.
type Student struct {
	ID              string      `json:"_id"`
	Name            string      `json:"name"`
	Email           string      `json:"email,omitempty"`
	Role            string      `json:"role,omitempty"`
	CourseName      string      `json:"courseName,omitempty"`
	PaidAmount      null.Int    `json:"paidAmount"`
	RemainingAmount null.Int    `json:"remainingAmount"`
	EnrolledDate    null.String `json:"enrolledDate"`
	ProfileImage    string      `json:"profileImage,omitempty"`
	SubmissionCount int         `json:"submissionCount,omitempty"`
	AverageProgress float64     `json:"averageProgress,omitempty"`
}

func (s Student) RecordID() string { return s.ID }

// Identity turns the record into a session identity. Student records always belong to students.
func (s Student) Identity() session.Identity {
	return session.Identity{
		ID:              s.ID,
		Name:            s.Name,
		Role:            session.Student,
		Email:           s.Email,
		CourseName:      s.CourseName,
		PaidAmount:      s.PaidAmount,
		RemainingAmount: s.RemainingAmount,
		EnrolledDate:    s.EnrolledDate,
		ProfileImage:    s.ProfileImage,
	}
}

// EnrolledOn formats the enrollment date as YYYY-MM-DD, or "" when unknown.
func (s Student) EnrolledOn() string {
	return dateInput(s.EnrolledDate)
}

func (s Student) Remaining() int {
	if s.RemainingAmount.Valid && s.RemainingAmount.Int > 0 {
		return s.RemainingAmount.Int
	}
	return 0
}

func (s Student) Paid() int {
	if s.PaidAmount.Valid {
		return s.PaidAmount.Int
	}
	return 0
}

// StudentForm is the editable part of a student. Amounts are kept as typed.
type StudentForm struct {
	Name            string `form:"name" json:"name" validate:"required"`
	CourseName      string `form:"courseName" json:"courseName"`
	PaidAmount      string `form:"paidAmount" json:"paidAmount" validate:"omitempty,digits"`
	RemainingAmount string `form:"remainingAmount" json:"remainingAmount" validate:"omitempty,digits"`
	EnrolledDate    string `form:"enrolledDate" json:"enrolledDate" validate:"omitempty,datetime=2006-01-02"`

	ProfileImage *Upload `form:"-" json:"-"`
}

var studentTexts = map[string]string{
	"name.required": "Name is required",
}

// Clean trims the text fields.
func (f *StudentForm) Clean() {
	f.Name = core.CleanString(f.Name)
	f.CourseName = core.CleanString(f.CourseName)
	f.PaidAmount = core.CleanString(f.PaidAmount)
	f.RemainingAmount = core.CleanString(f.RemainingAmount)
	f.EnrolledDate = core.CleanString(f.EnrolledDate)
}

func (f StudentForm) Validate(validate *validator.Validate, translator ut.Translator) error {
	f.Clean()
	return core.ValidateStruct(validate, translator, f, studentTexts)
}

// Fields are the form values as sent to the remote API.
func (f StudentForm) Fields() map[string]string {
	f.Clean()
	return map[string]string{
		"name":            f.Name,
		"courseName":      f.CourseName,
		"paidAmount":      f.PaidAmount,
		"remainingAmount": f.RemainingAmount,
		"enrolledDate":    f.EnrolledDate,
	}
}

// PrefillStudent is the form shown when editing s.
func PrefillStudent(s Student) StudentForm {
	f := StudentForm{
		Name:         s.Name,
		CourseName:   s.CourseName,
		EnrolledDate: s.EnrolledOn(),
	}
	if s.PaidAmount.Valid && s.PaidAmount.Int != 0 {
		f.PaidAmount = strconv.Itoa(s.PaidAmount.Int)
	}
	if s.RemainingAmount.Valid && s.RemainingAmount.Int != 0 {
		f.RemainingAmount = strconv.Itoa(s.RemainingAmount.Int)
	}
	return f
}

// PrefillProfile is the profile form of the logged in student.
func PrefillProfile(id session.Identity) StudentForm {
	return PrefillStudent(Student{
		ID:              id.ID,
		Name:            id.Name,
		CourseName:      id.CourseName,
		PaidAmount:      id.PaidAmount,
		RemainingAmount: id.RemainingAmount,
		EnrolledDate:    id.EnrolledDate,
	})
}

func BlankStudent() StudentForm { return StudentForm{} }

func dateInput(d null.String) string {
	if !d.Valid {
		return ""
	}
	t, ok := session.ParseDate(d.String)
	if !ok {
		return ""
	}
	return t.UTC().Format("2006-01-02")
}
