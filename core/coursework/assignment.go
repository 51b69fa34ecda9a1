package coursework

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/katikolakarthik/el-frontend/core"
	"github.com/katikolakarthik/el-frontend/core/listeditor"
)

// AnswerKey holds the reference answers of an assignment; same shape as submitted answers.
type AnswerKey struct {
	PatientName string   `json:"patientName,omitempty"`
	IcdCodes    []string `json:"icdCodes"`
	CptCodes    []string `json:"cptCodes"`
	Notes       string   `json:"notes,omitempty"`
}

type Assignment struct {
	ID               string    `json:"_id"`
	ModuleName       string    `json:"moduleName"`
	SubModuleName    string    `json:"subModuleName,omitempty"`
	PatientName      string    `json:"patientName,omitempty"`
	IcdCodes         []string  `json:"icdCodes"`
	CptCodes         []string  `json:"cptCodes"`
	Notes            string    `json:"notes,omitempty"`
	AnswerKey        AnswerKey `json:"answerKey"`
	AssignedStudents []string  `json:"assignedStudents"`
	AssignmentPdf    string    `json:"assignmentPdf,omitempty"`
	AssignedDate     string    `json:"assignedDate,omitempty"`
}

func (a Assignment) RecordID() string { return a.ID }

// SubModule falls back to a placeholder for display.
func (a Assignment) SubModule() string {
	if a.SubModuleName == "" {
		return "No Submodule"
	}
	return a.SubModuleName
}

func (a Assignment) HasPDF() bool { return a.AssignmentPdf != "" }

// AssignmentForm is the editable part of an assignment.
// Code lists are edited as comma-separated text.
type AssignmentForm struct {
	ModuleName    string `form:"moduleName" validate:"required"`
	SubModuleName string `form:"subModuleName"`
	PatientName   string `form:"patientName"`
	IcdCodes      string `form:"icdCodes"`
	CptCodes      string `form:"cptCodes"`
	Notes         string `form:"notes"`

	KeyPatientName string `form:"answerKey[patientName]"`
	KeyIcdCodes    string `form:"answerKey[icdCodes]"`
	KeyCptCodes    string `form:"answerKey[cptCodes]"`
	KeyNotes       string `form:"answerKey[notes]"`

	AssignmentPdf *Upload `form:"-"`
}

var assignmentTexts = map[string]string{
	"moduleName.required": "Module name is required",
}

func (f *AssignmentForm) Clean() {
	f.ModuleName = core.CleanString(f.ModuleName)
	f.SubModuleName = core.CleanString(f.SubModuleName)
	f.PatientName = core.CleanString(f.PatientName)
	f.KeyPatientName = core.CleanString(f.KeyPatientName)
}

func (f AssignmentForm) Validate(validate *validator.Validate, translator ut.Translator) error {
	f.Clean()
	return core.ValidateStruct(validate, translator, f, assignmentTexts)
}

// Fields are the multipart fields sent to the remote API.
// Code lists travel as normalized comma-separated text; the API splits them.
func (f AssignmentForm) Fields() map[string]string {
	f.Clean()
	return map[string]string{
		"moduleName":             f.ModuleName,
		"subModuleName":          f.SubModuleName,
		"patientName":            f.PatientName,
		"icdCodes":               listeditor.NormalizeList(f.IcdCodes),
		"cptCodes":               listeditor.NormalizeList(f.CptCodes),
		"notes":                  f.Notes,
		"answerKey[patientName]": f.KeyPatientName,
		"answerKey[icdCodes]":    listeditor.NormalizeList(f.KeyIcdCodes),
		"answerKey[cptCodes]":    listeditor.NormalizeList(f.KeyCptCodes),
		"answerKey[notes]":       f.KeyNotes,
	}
}

// PrefillAssignment is the form shown when editing a.
func PrefillAssignment(a Assignment) AssignmentForm {
	return AssignmentForm{
		ModuleName:     a.ModuleName,
		SubModuleName:  a.SubModuleName,
		PatientName:    a.PatientName,
		IcdCodes:       listeditor.JoinList(a.IcdCodes),
		CptCodes:       listeditor.JoinList(a.CptCodes),
		Notes:          a.Notes,
		KeyPatientName: a.AnswerKey.PatientName,
		KeyIcdCodes:    listeditor.JoinList(a.AnswerKey.IcdCodes),
		KeyCptCodes:    listeditor.JoinList(a.AnswerKey.CptCodes),
		KeyNotes:       a.AnswerKey.Notes,
	}
}

func BlankAssignment() AssignmentForm { return AssignmentForm{} }
