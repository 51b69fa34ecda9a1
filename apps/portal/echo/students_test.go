package echoportal

import (
	"bytes"
	"image/color"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	exportsvc "github.com/katikolakarthik/el-frontend/services/export"
)

const (
	listStudents  = "GET /admin/students"
	createStudent = "POST /admin/add-student"
	updateStudent = "PUT /admin/student/:id"
	deleteStudent = "DELETE /admin/student/:id"
)

func pngBytes(t *testing.T) []byte {
	var buf bytes.Buffer
	require.NoError(t, imaging.Encode(&buf, imaging.New(4, 4, color.White), imaging.PNG))
	return buf.Bytes()
}

func Test_studentsScreen(t *testing.T) {
	p := setup(t)
	p.loginAdmin()

	res, body := p.get("/admin/students")
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, body, "alice")
	assert.Contains(t, body, "CPC Exam Prep")
	assert.Contains(t, body, "$200")
	assert.Contains(t, body, "2024-01-10")
	assert.Equal(t, 1, p.api.Calls(listStudents))

	// dialogs open over the cached list
	_, body = p.get("/admin/students?new=1")
	assert.Contains(t, body, `role="dialog"`)
	_, body = p.get("/admin/students?edit=s2")
	assert.Contains(t, body, "Edit Student")
	assert.Contains(t, body, `value="bob"`)
	assert.Contains(t, body, `value="500"`)
	_, body = p.get("/admin/students?close=1")
	assert.NotContains(t, body, `role="dialog"`)
	assert.Equal(t, 1, p.api.Calls(listStudents))

	// unknown records close the screen back to the list
	res, _ = p.get("/admin/students?edit=nope")
	assert.Equal(t, http.StatusFound, res.StatusCode)
	assert.Equal(t, "/admin/students", res.Header.Get("Location"))

	// a plain GET mounts the screen again
	p.get("/admin/students")
	assert.Equal(t, 2, p.api.Calls(listStudents))
}

func Test_studentsScreen_loadFailure(t *testing.T) {
	p := setup(t)
	p.loginAdmin()
	p.api.Fail(listStudents, http.StatusInternalServerError, "")

	res, body := p.get("/admin/students")
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, 1, strings.Count(body, "Failed to load students"))
	assert.Contains(t, body, "No students found")

	p.api.Recover(listStudents)
	_, body = p.get("/admin/students")
	assert.NotContains(t, body, "Failed to load students")
	assert.Contains(t, body, "alice")
}

func Test_saveStudent(t *testing.T) {
	p := setup(t)
	p.loginAdmin()
	p.get("/admin/students?new=1")

	t.Run("invalid", func(t *testing.T) {
		res, body := p.post("/admin/students", url.Values{"name": {" "}, "paidAmount": {"12.5"}})
		assert.Equal(t, http.StatusUnprocessableEntity, res.StatusCode)
		assert.Contains(t, body, "Name is required")
		assert.Contains(t, body, "Must be a number")
		assert.Contains(t, body, `value="12.5"`)
		assert.Equal(t, 0, p.api.Calls(createStudent))
	})

	t.Run("bad image", func(t *testing.T) {
		res, body := p.postFile("/admin/students", url.Values{"name": {"carol"}}, "profileImage", "x.txt", []byte("not an image"))
		assert.Equal(t, http.StatusUnprocessableEntity, res.StatusCode)
		assert.Contains(t, body, "must be a JPEG, PNG, GIF, BMP or TIFF image")
		assert.Equal(t, 0, p.api.Calls(createStudent))
	})

	t.Run("remote failure", func(t *testing.T) {
		p.api.Fail(createStudent, http.StatusConflict, "Student already exists")
		defer p.api.Recover(createStudent)

		res, body := p.post("/admin/students", url.Values{"name": {"carol"}})
		assert.Equal(t, http.StatusOK, res.StatusCode)
		assert.Contains(t, body, "Student already exists")
		assert.Contains(t, body, `role="dialog"`)
		assert.Contains(t, body, `value="carol"`)
	})

	t.Run("create", func(t *testing.T) {
		res, _ := p.post("/admin/students", url.Values{"name": {"carol"}, "courseName": {"CPC"}, "paidAmount": {"100"}})
		require.Equal(t, http.StatusSeeOther, res.StatusCode)
		assert.Equal(t, "/admin/students", res.Header.Get("Location"))
		assert.Equal(t, "100", p.api.LastFields(createStudent)["paidAmount"])

		listed := p.api.Calls(listStudents)
		_, body := p.follow(res)
		assert.Contains(t, body, "Student added successfully")
		assert.Contains(t, body, "carol")
		assert.NotContains(t, body, `role="dialog"`)
		assert.Equal(t, listed+1, p.api.Calls(listStudents))
	})

	t.Run("update with image", func(t *testing.T) {
		p.get("/admin/students?edit=s2")
		res, _ := p.postFile("/admin/students/s2", url.Values{"name": {"bobby"}, "paidAmount": {"600"}}, "profileImage", "me.png", pngBytes(t))
		require.Equal(t, http.StatusSeeOther, res.StatusCode)
		assert.NotEmpty(t, p.api.LastFiles(updateStudent)["profileImage"])

		_, body := p.follow(res)
		assert.Contains(t, body, "Student updated successfully")
		assert.Contains(t, body, "bobby")
	})
}

func Test_deleteStudent(t *testing.T) {
	p := setup(t)
	p.loginAdmin()

	// a delete that was never confirmed is sent to the confirmation
	res, _ := p.post("/admin/students/s2/delete", nil)
	require.Equal(t, http.StatusSeeOther, res.StatusCode)
	assert.Equal(t, "/admin/students?delete=s2", res.Header.Get("Location"))
	assert.Equal(t, 0, p.api.Calls(deleteStudent))

	_, body := p.follow(res)
	assert.Contains(t, body, "Are you sure you want to delete bob?")
	assert.Equal(t, 0, p.api.Calls(deleteStudent))

	// a confirmation for another record does not cover this one
	p.get("/admin/students?delete=s1")
	res, _ = p.post("/admin/students/s2/delete", nil)
	assert.Equal(t, "/admin/students?delete=s2", res.Header.Get("Location"))
	assert.Equal(t, 0, p.api.Calls(deleteStudent))

	_, body = p.get("/admin/students?delete=s2")
	assert.Contains(t, body, "Are you sure you want to delete bob?")

	p.api.Fail(deleteStudent, http.StatusInternalServerError, "")
	res, body = p.post("/admin/students/s2/delete", nil)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, body, "Delete failed")
	assert.Contains(t, body, `role="alertdialog"`)

	p.api.Recover(deleteStudent)
	res, _ = p.post("/admin/students/s2/delete", nil)
	require.Equal(t, http.StatusSeeOther, res.StatusCode)
	assert.Equal(t, 2, p.api.Calls(deleteStudent))

	_, body = p.follow(res)
	assert.Contains(t, body, "Student deleted successfully")
	assert.NotContains(t, body, "<td>bob</td>")

	// the record is gone: nothing left to confirm
	res, _ = p.post("/admin/students/s2/delete", nil)
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
}

func Test_exportStudents(t *testing.T) {
	p := setup(t)
	p.loginAdmin()

	res, body := p.get("/admin/students/export.xlsx")
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, exportsvc.ContentType, res.Header.Get("Content-Type"))
	assert.Contains(t, res.Header.Get("Content-Disposition"), "students.xlsx")

	f, err := excelize.OpenReader(strings.NewReader(body))
	require.NoError(t, err)
	rows, err := f.GetRows(exportsvc.StudentsSheet)
	require.NoError(t, err)
	assert.Len(t, rows, 3)

	p.api.Fail(listStudents, http.StatusInternalServerError, "")
	res, _ = p.get("/admin/students/export.xlsx")
	assert.Equal(t, http.StatusFound, res.StatusCode)
	_, body = p.follow(res)
	assert.Contains(t, body, "Failed to load students")
}
