package testutil

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/volatiletech/null/v8"

	"github.com/katikolakarthik/el-frontend/core/coursework"
	"github.com/katikolakarthik/el-frontend/core/listeditor"
	"github.com/katikolakarthik/el-frontend/core/session"
)

const (
	AdminName     = "Ada"
	AdminPassword = "admin123"
	StudentName   = "alice"
	StudentPwd    = "secret1"
)

var (
	AdminIdentity   = session.Identity{ID: "a1", Name: AdminName, Role: session.Admin, Email: "ada@test.cd"}
	StudentIdentity = session.Identity{
		ID:              "s1",
		Name:            StudentName,
		Role:            session.Student,
		Email:           "alice@test.cd",
		CourseName:      "CPC Exam Prep",
		PaidAmount:      null.IntFrom(300),
		RemainingAmount: null.IntFrom(200),
		EnrolledDate:    null.StringFrom("2024-01-10T00:00:00.000Z"),
	}
)

type fakeUser struct {
	password string
	identity session.Identity
}

type failure struct {
	status  int
	message string
}

// FakeAPI is an in-memory stand-in for the remote API, served over HTTP.
// Calls are counted per route ("METHOD /path/:param") and routes can be made to fail.
type FakeAPI struct {
	*httptest.Server

	mu          sync.Mutex
	users       map[string]fakeUser
	students    []coursework.Student
	assignments []coursework.Assignment
	submissions []coursework.Submission
	progress    map[string]coursework.StudentProgress
	failures    map[string]failure
	delays      map[string]time.Duration
	calls       map[string]int
	lastFields  map[string]map[string]string
	lastFiles   map[string]map[string][]byte
	lastSubmit  *coursework.SubmissionRequest
	nextID      int
}

// NewFakeAPI starts a seeded fake API, closed when the test ends.
func NewFakeAPI(t *testing.T) *FakeAPI {
	f := &FakeAPI{
		users: map[string]fakeUser{
			AdminName:   {password: AdminPassword, identity: AdminIdentity},
			StudentName: {password: StudentPwd, identity: StudentIdentity},
		},
		students: []coursework.Student{
			{
				ID: "s1", Name: StudentName, Email: "alice@test.cd", Role: "user", CourseName: "CPC Exam Prep",
				PaidAmount: null.IntFrom(300), RemainingAmount: null.IntFrom(200),
				EnrolledDate: null.StringFrom("2024-01-10T00:00:00.000Z"), SubmissionCount: 2, AverageProgress: 75,
			},
			{
				ID: "s2", Name: "bob", Email: "bob@test.cd", Role: "user", CourseName: "CCS",
				PaidAmount: null.IntFrom(500), RemainingAmount: null.IntFrom(0), SubmissionCount: 1, AverageProgress: 50,
			},
		},
		assignments: []coursework.Assignment{
			{
				ID: "as1", ModuleName: "Cardiology", SubModuleName: "Hypertension", PatientName: "John Doe",
				IcdCodes: []string{"I10", "E11.9"}, CptCodes: []string{"99213"}, Notes: "Review the **discharge** summary.",
				AnswerKey:        coursework.AnswerKey{PatientName: "John Doe", IcdCodes: []string{"I10"}, CptCodes: []string{"99213"}},
				AssignedStudents: []string{"s1"}, AssignmentPdf: "http://files.test/as1.pdf", AssignedDate: "2024-02-01T00:00:00.000Z",
			},
			{ID: "as2", ModuleName: "Radiology", IcdCodes: []string{}, CptCodes: []string{}},
		},
		submissions: []coursework.Submission{
			{ID: "sub1", SubmissionDate: "2024-02-03T10:00:00.000Z", CorrectCount: 3, WrongCount: 1, ProgressPercent: 75},
		},
		progress: map[string]coursework.StudentProgress{
			"s1": {TotalAssignments: 4, CompletedAssignments: 3, AverageScore: 82.5, PendingAssignments: 1, OverallProgress: 75},
		},
		failures:   make(map[string]failure),
		delays:     make(map[string]time.Duration),
		calls:      make(map[string]int),
		lastFields: make(map[string]map[string]string),
		lastFiles:  make(map[string]map[string][]byte),
		nextID:     100,
	}
	f.submissions[0].Assignment = &f.assignments[0]

	e := echo.New()
	e.HideBanner = true
	e.Use(f.middleware)

	e.POST("/login", f.login)
	e.GET("/admin/students", f.listStudents)
	e.GET("/admin/students/summary", f.listStudents)
	e.POST("/admin/add-student", f.createStudent)
	e.PUT("/admin/student/:id", f.updateStudent)
	e.DELETE("/admin/student/:id", f.deleteStudent)
	e.GET("/admin/assignments", f.listAssignments)
	e.POST("/admin/add-assignment", f.createAssignment)
	e.PUT("/admin/assignment/:id", f.updateAssignment)
	e.DELETE("/admin/assignments/:id", f.deleteAssignment)
	e.GET("/student/:id/summary", f.studentSummary)
	e.GET("/student/submissions", f.listSubmissions)
	e.POST("/student/submit-assignment", f.submit)

	f.Server = httptest.NewServer(e)
	t.Cleanup(f.Close)
	return f
}

func routeKey(c echo.Context) string {
	return c.Request().Method + " " + c.Path()
}

func (f *FakeAPI) middleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		key := routeKey(c)
		f.mu.Lock()
		f.calls[key]++
		fail, failing := f.failures[key]
		delay := f.delays[key]
		f.mu.Unlock()

		if delay > 0 {
			time.Sleep(delay)
		}
		if failing {
			if fail.message == "" {
				return c.NoContent(fail.status)
			}
			return c.JSON(fail.status, echo.Map{"message": fail.message})
		}
		return next(c)
	}
}

// Fail makes route answer status (with message, if not empty) until Recover is called.
func (f *FakeAPI) Fail(route string, status int, message string) {
	f.mu.Lock()
	f.failures[route] = failure{status: status, message: message}
	f.mu.Unlock()
}

func (f *FakeAPI) Recover(route string) {
	f.mu.Lock()
	delete(f.failures, route)
	f.mu.Unlock()
}

// Delay slows route down by d.
func (f *FakeAPI) Delay(route string, d time.Duration) {
	f.mu.Lock()
	f.delays[route] = d
	f.mu.Unlock()
}

// Calls returns how many times route was hit.
func (f *FakeAPI) Calls(route string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[route]
}

func (f *FakeAPI) TotalCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int
	for _, c := range f.calls {
		n += c
	}
	return n
}

// LastFields returns the form or JSON fields last received on route.
func (f *FakeAPI) LastFields(route string) map[string]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastFields[route]
}

// LastFiles returns the files last received on route, by field name.
func (f *FakeAPI) LastFiles(route string) map[string][]byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastFiles[route]
}

func (f *FakeAPI) LastSubmission() *coursework.SubmissionRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastSubmit
}

func (f *FakeAPI) Students() []coursework.Student {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]coursework.Student(nil), f.students...)
}

func (f *FakeAPI) Assignments() []coursework.Assignment {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]coursework.Assignment(nil), f.assignments...)
}

// readFields reads a JSON object of strings or a (multipart) form; files are returned apart.
func readFields(c echo.Context) (map[string]string, map[string][]byte, error) {
	fields := make(map[string]string)
	files := make(map[string][]byte)

	if strings.HasPrefix(c.Request().Header.Get(echo.HeaderContentType), echo.MIMEApplicationJSON) {
		body, err := io.ReadAll(c.Request().Body)
		if err != nil {
			return nil, nil, err
		}
		if err = json.Unmarshal(body, &fields); err != nil {
			return nil, nil, err
		}
		return fields, files, nil
	}

	params, err := c.FormParams()
	if err != nil {
		return nil, nil, err
	}
	for k, v := range params {
		if len(v) > 0 {
			fields[k] = v[0]
		}
	}
	if form, err := c.MultipartForm(); err == nil {
		for name, fhs := range form.File {
			if len(fhs) == 0 {
				continue
			}
			fh, err := fhs[0].Open()
			if err != nil {
				return nil, nil, err
			}
			data, err := io.ReadAll(fh)
			fh.Close()
			if err != nil {
				return nil, nil, err
			}
			files[name] = data
		}
	}
	return fields, files, nil
}

func (f *FakeAPI) record(c echo.Context) (map[string]string, map[string][]byte, error) {
	fields, files, err := readFields(c)
	if err != nil {
		return nil, nil, err
	}
	f.mu.Lock()
	f.lastFields[routeKey(c)] = fields
	f.lastFiles[routeKey(c)] = files
	f.mu.Unlock()
	return fields, files, nil
}

func badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, echo.Map{"message": msg})
}

func notFound(c echo.Context) error {
	return c.JSON(http.StatusNotFound, echo.Map{"message": "Not found"})
}

func nullInt(s string) null.Int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return null.Int{}
	}
	return null.IntFrom(n)
}

func nullString(s string) null.String {
	if s == "" {
		return null.String{}
	}
	return null.StringFrom(s)
}

func (f *FakeAPI) login(c echo.Context) error {
	var body struct {
		Name     string `json:"name"`
		Password string `json:"password"`
	}
	if err := c.Bind(&body); err != nil {
		return badRequest(c, "Invalid request")
	}
	f.mu.Lock()
	usr, ok := f.users[body.Name]
	f.mu.Unlock()
	if !ok || usr.password != body.Password {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Invalid credentials"})
	}
	return c.JSON(http.StatusOK, echo.Map{"user": usr.identity})
}

func (f *FakeAPI) listStudents(c echo.Context) error {
	return c.JSON(http.StatusOK, f.Students())
}

func studentFromFields(s coursework.Student, fields map[string]string, files map[string][]byte) coursework.Student {
	s.Name = fields["name"]
	s.CourseName = fields["courseName"]
	s.PaidAmount = nullInt(fields["paidAmount"])
	s.RemainingAmount = nullInt(fields["remainingAmount"])
	s.EnrolledDate = nullString(fields["enrolledDate"])
	if _, ok := files["profileImage"]; ok {
		s.ProfileImage = "http://files.test/" + s.ID + ".jpg"
	}
	return s
}

func (f *FakeAPI) createStudent(c echo.Context) error {
	fields, files, err := f.record(c)
	if err != nil {
		return badRequest(c, err.Error())
	}
	if fields["name"] == "" {
		return badRequest(c, "Name is required")
	}
	f.mu.Lock()
	f.nextID++
	s := studentFromFields(coursework.Student{ID: fmt.Sprintf("s%d", f.nextID), Role: "user"}, fields, files)
	f.students = append(f.students, s)
	f.mu.Unlock()
	return c.JSON(http.StatusCreated, s)
}

func (f *FakeAPI) updateStudent(c echo.Context) error {
	fields, files, err := f.record(c)
	if err != nil {
		return badRequest(c, err.Error())
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, s := range f.students {
		if s.ID == c.Param("id") {
			f.students[i] = studentFromFields(s, fields, files)
			return c.JSON(http.StatusOK, f.students[i])
		}
	}
	return notFound(c)
}

func (f *FakeAPI) deleteStudent(c echo.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, s := range f.students {
		if s.ID == c.Param("id") {
			f.students = append(f.students[:i], f.students[i+1:]...)
			return c.JSON(http.StatusOK, echo.Map{"message": "Student deleted"})
		}
	}
	return notFound(c)
}

func (f *FakeAPI) listAssignments(c echo.Context) error {
	return c.JSON(http.StatusOK, f.Assignments())
}

func assignmentFromFields(a coursework.Assignment, fields map[string]string, files map[string][]byte) coursework.Assignment {
	a.ModuleName = fields["moduleName"]
	a.SubModuleName = fields["subModuleName"]
	a.PatientName = fields["patientName"]
	a.IcdCodes = listeditor.SplitList(fields["icdCodes"])
	a.CptCodes = listeditor.SplitList(fields["cptCodes"])
	a.Notes = fields["notes"]
	a.AnswerKey = coursework.AnswerKey{
		PatientName: fields["answerKey[patientName]"],
		IcdCodes:    listeditor.SplitList(fields["answerKey[icdCodes]"]),
		CptCodes:    listeditor.SplitList(fields["answerKey[cptCodes]"]),
		Notes:       fields["answerKey[notes]"],
	}
	if _, ok := files["assignmentPdf"]; ok {
		a.AssignmentPdf = "http://files.test/" + a.ID + ".pdf"
	}
	return a
}

func (f *FakeAPI) createAssignment(c echo.Context) error {
	fields, files, err := f.record(c)
	if err != nil {
		return badRequest(c, err.Error())
	}
	f.mu.Lock()
	f.nextID++
	a := assignmentFromFields(coursework.Assignment{ID: fmt.Sprintf("as%d", f.nextID)}, fields, files)
	f.assignments = append(f.assignments, a)
	f.mu.Unlock()
	return c.JSON(http.StatusCreated, a)
}

func (f *FakeAPI) updateAssignment(c echo.Context) error {
	fields, files, err := f.record(c)
	if err != nil {
		return badRequest(c, err.Error())
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, a := range f.assignments {
		if a.ID == c.Param("id") {
			f.assignments[i] = assignmentFromFields(a, fields, files)
			return c.JSON(http.StatusOK, f.assignments[i])
		}
	}
	return notFound(c)
}

func (f *FakeAPI) deleteAssignment(c echo.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, a := range f.assignments {
		if a.ID == c.Param("id") {
			f.assignments = append(f.assignments[:i], f.assignments[i+1:]...)
			return c.JSON(http.StatusOK, echo.Map{"message": "Assignment deleted"})
		}
	}
	return notFound(c)
}

func (f *FakeAPI) studentSummary(c echo.Context) error {
	f.mu.Lock()
	p, ok := f.progress[c.Param("id")]
	f.mu.Unlock()
	if !ok {
		return notFound(c)
	}
	return c.JSON(http.StatusOK, p)
}

func (f *FakeAPI) listSubmissions(c echo.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return c.JSON(http.StatusOK, f.submissions)
}

func (f *FakeAPI) submit(c echo.Context) error {
	var req coursework.SubmissionRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "Invalid submission")
	}
	if req.StudentID == "" || req.AssignmentID == "" {
		return badRequest(c, "Missing student or assignment")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastSubmit = &req
	f.nextID++
	sub := coursework.Submission{
		ID:               fmt.Sprintf("sub%d", f.nextID),
		SubmissionDate:   time.Now().UTC().Format(time.RFC3339),
		SubmittedAnswers: req.SubmittedAnswers,
	}
	for i := range f.assignments {
		if f.assignments[i].ID == req.AssignmentID {
			a := f.assignments[i]
			sub.Assignment = &a
		}
	}
	f.submissions = append([]coursework.Submission{sub}, f.submissions...)
	return c.JSON(http.StatusCreated, sub)
}
