package apisvc

import (
	"context"
	"net/url"

	"github.com/sendgrid/rest"

	"github.com/katikolakarthik/el-frontend/core/coursework"
	"github.com/katikolakarthik/el-frontend/core/listeditor"
	"github.com/katikolakarthik/el-frontend/core/session"
)

var _ session.Authenticator = (*Client)(nil)

// Authenticate implements session.Authenticator.
func (c *Client) Authenticate(ctx context.Context, identifier, secret string) (session.Identity, error) {
	cl, err := jsonCall(rest.Post, "/login", "/login", map[string]string{"name": identifier, "password": secret})
	if err != nil {
		return session.Identity{}, err
	}
	var res struct {
		User session.Identity `json:"user"`
	}
	if err = c.do(ctx, cl, &res); err != nil {
		return session.Identity{}, err
	}
	return res.User, nil
}

// Students

func (c *Client) ListStudents(ctx context.Context) ([]coursework.Student, error) {
	var students []coursework.Student
	err := c.do(ctx, call{method: rest.Get, route: "/admin/students", path: "/admin/students"}, &students)
	return students, err
}

// StudentSummaries lists students with their submission count and average progress.
func (c *Client) StudentSummaries(ctx context.Context) ([]coursework.Student, error) {
	var students []coursework.Student
	err := c.do(ctx, call{method: rest.Get, route: "/admin/students/summary", path: "/admin/students/summary"}, &students)
	return students, err
}

// studentCall is JSON unless a profile image travels with the form.
func studentCall(method rest.Method, route, path string, form coursework.StudentForm) (call, error) {
	if form.ProfileImage != nil {
		return multipartCall(method, route, path, form.Fields(), form.ProfileImage)
	}
	return jsonCall(method, route, path, form.Fields())
}

func (c *Client) CreateStudent(ctx context.Context, form coursework.StudentForm) error {
	cl, err := studentCall(rest.Post, "/admin/add-student", "/admin/add-student", form)
	if err != nil {
		return err
	}
	return c.do(ctx, cl, nil)
}

// UpdateStudent returns the updated record.
func (c *Client) UpdateStudent(ctx context.Context, id string, form coursework.StudentForm) (coursework.Student, error) {
	cl, err := studentCall(rest.Put, "/admin/student/:id", "/admin/student/"+url.PathEscape(id), form)
	if err != nil {
		return coursework.Student{}, err
	}
	var s coursework.Student
	err = c.do(ctx, cl, &s)
	return s, err
}

func (c *Client) DeleteStudent(ctx context.Context, id string) error {
	return c.do(ctx, call{method: rest.Delete, route: "/admin/student/:id", path: "/admin/student/" + url.PathEscape(id)}, nil)
}

// Assignments

func (c *Client) ListAssignments(ctx context.Context) ([]coursework.Assignment, error) {
	var assignments []coursework.Assignment
	err := c.do(ctx, call{method: rest.Get, route: "/admin/assignments", path: "/admin/assignments"}, &assignments)
	return assignments, err
}

func (c *Client) CreateAssignment(ctx context.Context, form coursework.AssignmentForm) error {
	cl, err := multipartCall(rest.Post, "/admin/add-assignment", "/admin/add-assignment", form.Fields(), form.AssignmentPdf)
	if err != nil {
		return err
	}
	return c.do(ctx, cl, nil)
}

func (c *Client) UpdateAssignment(ctx context.Context, id string, form coursework.AssignmentForm) error {
	cl, err := multipartCall(rest.Put, "/admin/assignment/:id", "/admin/assignment/"+url.PathEscape(id), form.Fields(), form.AssignmentPdf)
	if err != nil {
		return err
	}
	return c.do(ctx, cl, nil)
}

func (c *Client) DeleteAssignment(ctx context.Context, id string) error {
	return c.do(ctx, call{method: rest.Delete, route: "/admin/assignments/:id", path: "/admin/assignments/" + url.PathEscape(id)}, nil)
}

// Student work

func (c *Client) StudentProgress(ctx context.Context, studentID string) (coursework.StudentProgress, error) {
	var p coursework.StudentProgress
	err := c.do(ctx, call{method: rest.Get, route: "/student/:id/summary", path: "/student/" + url.PathEscape(studentID) + "/summary"}, &p)
	return p, err
}

func (c *Client) Submissions(ctx context.Context) ([]coursework.Submission, error) {
	var subs []coursework.Submission
	err := c.do(ctx, call{method: rest.Get, route: "/student/submissions", path: "/student/submissions"}, &subs)
	return subs, err
}

func (c *Client) SubmitAssignment(ctx context.Context, req coursework.SubmissionRequest) error {
	cl, err := jsonCall(rest.Post, "/student/submit-assignment", "/student/submit-assignment", req)
	if err != nil {
		return err
	}
	return c.do(ctx, cl, nil)
}

// Students adapts the client to the list editor of the students screen.
type Students struct{ *Client }

var _ listeditor.Collaborator[coursework.Student, coursework.StudentForm] = Students{}

func (s Students) List(ctx context.Context) ([]coursework.Student, error) {
	return s.ListStudents(ctx)
}

func (s Students) Create(ctx context.Context, f coursework.StudentForm) error {
	return s.CreateStudent(ctx, f)
}

func (s Students) Update(ctx context.Context, id string, f coursework.StudentForm) error {
	_, err := s.UpdateStudent(ctx, id, f)
	return err
}

func (s Students) Delete(ctx context.Context, id string) error {
	return s.DeleteStudent(ctx, id)
}

// Assignments adapts the client to the list editor of the assignments screen.
type Assignments struct{ *Client }

var _ listeditor.Collaborator[coursework.Assignment, coursework.AssignmentForm] = Assignments{}

func (a Assignments) List(ctx context.Context) ([]coursework.Assignment, error) {
	return a.ListAssignments(ctx)
}

func (a Assignments) Create(ctx context.Context, f coursework.AssignmentForm) error {
	return a.CreateAssignment(ctx, f)
}

func (a Assignments) Update(ctx context.Context, id string, f coursework.AssignmentForm) error {
	return a.UpdateAssignment(ctx, id, f)
}

func (a Assignments) Delete(ctx context.Context, id string) error {
	return a.DeleteAssignment(ctx, id)
}
