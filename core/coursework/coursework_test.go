package coursework

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/volatiletech/null/v8"

	"github.com/katikolakarthik/el-frontend/core"
	"github.com/katikolakarthik/el-frontend/core/session"
)

func newValidator() (*validator.Validate, ut.Translator) {
	_en := en.New()
	translator, _ := ut.New(_en, _en).GetTranslator("en")
	validate := validator.New()
	core.InitValidators(validate, translator)
	return validate, translator
}

func fieldErrors(t *testing.T, err error) map[string]string {
	t.Helper()
	if err == nil {
		return nil
	}
	vErr, ok := core.AsValidationError(err)
	require.True(t, ok, "want *core.ValidationError, got %v", err)
	return vErr.FieldMap()
}

func TestStudentForm_Validate(t *testing.T) {
	validate, translator := newValidator()

	tests := []struct {
		name string
		form StudentForm
		want map[string]string
	}{
		{name: "valid", form: StudentForm{Name: "alice", PaidAmount: "300", RemainingAmount: "0", EnrolledDate: "2024-01-10"}},
		{name: "only name", form: StudentForm{Name: "alice"}},
		{name: "blank name", form: StudentForm{Name: "   "}, want: map[string]string{"name": "Name is required"}},
		{name: "negative amount", form: StudentForm{Name: "a", PaidAmount: "-5"}, want: map[string]string{"paidAmount": "Must be a number"}},
		{name: "decimal amount", form: StudentForm{Name: "a", RemainingAmount: "10.5"}, want: map[string]string{"remainingAmount": "Must be a number"}},
		{name: "bad date", form: StudentForm{Name: "a", EnrolledDate: "10/01/2024"}, want: map[string]string{"enrolledDate": "must be a date (YYYY-MM-DD)"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, fieldErrors(t, tt.form.Validate(validate, translator)))
		})
	}
}

func TestAssignmentForm_Validate(t *testing.T) {
	validate, translator := newValidator()

	err := AssignmentForm{IcdCodes: "A01"}.Validate(validate, translator)
	assert.Equal(t, map[string]string{"moduleName": "Module name is required"}, fieldErrors(t, err))
	assert.NoError(t, AssignmentForm{ModuleName: "Cardiology"}.Validate(validate, translator))
}

func TestAssignment_prefillAndFields(t *testing.T) {
	a := Assignment{
		ID:         "as1",
		ModuleName: "Cardiology",
		IcdCodes:   []string{"I10", "E11.9"},
		CptCodes:   []string{"99213"},
		AnswerKey:  AnswerKey{PatientName: "John Doe", IcdCodes: []string{"I10"}},
	}
	form := PrefillAssignment(a)
	assert.Equal(t, "I10, E11.9", form.IcdCodes)
	assert.Equal(t, "99213", form.CptCodes)
	assert.Equal(t, "John Doe", form.KeyPatientName)
	assert.Equal(t, "I10", form.KeyIcdCodes)
	assert.Equal(t, PrefillAssignment(a), form)

	form.IcdCodes = "A01.1, B02.2 ,C03.3,"
	fields := form.Fields()
	assert.Equal(t, "A01.1, B02.2, C03.3", fields["icdCodes"])
	assert.Equal(t, "I10", fields["answerKey[icdCodes]"])
	assert.Equal(t, "Cardiology", fields["moduleName"])
}

func TestPrefillStudent(t *testing.T) {
	s := Student{
		ID:              "s1",
		Name:            "alice",
		PaidAmount:      null.IntFrom(300),
		RemainingAmount: null.IntFrom(0),
		EnrolledDate:    null.StringFrom("2024-01-10T00:00:00.000Z"),
	}
	assert.Equal(t, StudentForm{Name: "alice", PaidAmount: "300", EnrolledDate: "2024-01-10"}, PrefillStudent(s))

	id := s.Identity()
	assert.Equal(t, session.Student, id.Role)
	assert.NoError(t, id.Validate())
	assert.Equal(t, PrefillStudent(s), PrefillProfile(id))
}

func TestSubmissionForm_Request(t *testing.T) {
	req := SubmissionForm{PatientName: " John ", IcdCodes: "A01.1, B02.2 ,C03.3", CptCodes: ""}.Request("s1", "as1")
	assert.Equal(t, "s1", req.StudentID)
	assert.Equal(t, "as1", req.AssignmentID)
	assert.Equal(t, "John", req.SubmittedAnswers.PatientName)
	assert.Equal(t, []string{"A01.1", "B02.2", "C03.3"}, req.SubmittedAnswers.IcdCodes)
	assert.Equal(t, []string{}, req.SubmittedAnswers.CptCodes)
}

func TestComputeAdminStats(t *testing.T) {
	students := []Student{
		{ID: "1", SubmissionCount: 2, AverageProgress: 80},
		{ID: "2", SubmissionCount: 3, AverageProgress: 65},
		{ID: "3", AverageProgress: 50.5},
		{ID: "4"}, {ID: "5"}, {ID: "6"},
	}
	stats := ComputeAdminStats(students, []Assignment{{ID: "a"}})
	assert.Equal(t, 6, stats.TotalStudents)
	assert.Equal(t, 1, stats.TotalAssignments)
	assert.Equal(t, 5, stats.TotalSubmissions)
	assert.Equal(t, 33, stats.AverageProgress) // 195.5 / 6
	assert.Len(t, stats.RecentStudents, 5)
	assert.Equal(t, "1", stats.RecentStudents[0].ID)

	empty := ComputeAdminStats(nil, nil)
	assert.Zero(t, empty.AverageProgress)
	assert.Empty(t, empty.RecentStudents)
}

func TestStudentProgress(t *testing.T) {
	assert.Equal(t, 67, StudentProgress{TotalAssignments: 3, CompletedAssignments: 2}.CompletionPercent())
	assert.Zero(t, StudentProgress{}.CompletionPercent())
}

func TestPaymentStatus(t *testing.T) {
	assert.Equal(t, "$200 remaining", PaymentStatus(session.Identity{RemainingAmount: null.IntFrom(200)}))
	assert.Equal(t, "Fully paid", PaymentStatus(session.Identity{RemainingAmount: null.IntFrom(0)}))
	assert.Equal(t, "Fully paid", PaymentStatus(session.Identity{}))
}

func TestViewer(t *testing.T) {
	v := NewViewer()
	assert.Equal(t, Viewer{Zoom: 100, Page: 1}, v)
	assert.False(t, v.HasPrev())

	for i := 0; i < 10; i++ {
		v = v.ZoomIn()
	}
	assert.Equal(t, MaxZoom, v.Zoom)
	assert.False(t, v.CanZoomIn())

	for i := 0; i < 10; i++ {
		v = v.ZoomOut()
	}
	assert.Equal(t, MinZoom, v.Zoom)

	for i := 0; i < 20; i++ {
		v = v.NextPage()
	}
	assert.Equal(t, 12, v.Page)
	assert.False(t, v.HasNext())

	assert.Equal(t, Viewer{Zoom: 125, Page: 3}, ParseViewer("125", "3"))
	assert.Equal(t, Viewer{Zoom: 200, Page: 12}, ParseViewer("900", "99"))
	assert.Equal(t, NewViewer(), ParseViewer("lol", ""))

	// zoom snaps to the nearest step
	for zoom, want := range map[string]int{"73": 75, "62": 50, "63": 75, "99": 100, "187": 175, "-30": MinZoom, "210": MaxZoom} {
		assert.Equal(t, want, ParseViewer(zoom, "1").Zoom, zoom)
	}
}

func fileHeader(t *testing.T, field, filename string, content []byte) *multipart.FileHeader {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = fw.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(MaxUploadSize))
	return req.MultipartForm.File[field][0]
}

func TestReadPDF(t *testing.T) {
	pdf := []byte("%PDF-1.4\n1 0 obj\n<<>>\nendobj\ntrailer\n<<>>\n%%EOF\n")
	up, err := ReadPDF(fileHeader(t, "assignmentPdf", "case.pdf", pdf))
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", up.ContentType)
	assert.Equal(t, "case.pdf", up.Filename)

	_, err = ReadPDF(fileHeader(t, "assignmentPdf", "case.pdf", []byte("hello there")))
	assert.Equal(t, map[string]string{"assignmentPdf": "must be a PDF file"}, fieldErrors(t, err))
}

func TestReadProfileImage(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 1024, 768))
	img.Set(10, 10, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))

	up, err := ReadProfileImage(fileHeader(t, "profileImage", "me.png", buf.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", up.ContentType)

	decoded, _, err := image.Decode(bytes.NewReader(up.Data))
	require.NoError(t, err)
	assert.Equal(t, 512, decoded.Bounds().Dx())
	assert.Equal(t, 384, decoded.Bounds().Dy())

	_, err = ReadProfileImage(fileHeader(t, "profileImage", "me.png", []byte("not an image")))
	assert.Contains(t, fieldErrors(t, err), "profileImage")
}
