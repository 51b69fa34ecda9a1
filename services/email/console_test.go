package emailsvc

import (
	"net/mail"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katikolakarthik/el-frontend/core"
	"github.com/katikolakarthik/el-frontend/core/coursework"
	logsvc "github.com/katikolakarthik/el-frontend/services/logger"
	testutil "github.com/katikolakarthik/el-frontend/tests"
)

func TestConsoleServiceMock_SendMessages(t *testing.T) {
	conf := core.NewTestConfig()
	svc := NewConsoleServiceMock(conf, logsvc.NewNopLogger())

	report := coursework.NewAuditReport(testutil.StudentIdentity, coursework.Assignment{ModuleName: "Cardiology"}, coursework.SubmittedAnswers{
		PatientName: "John Doe",
		IcdCodes:    []string{"I10", "E11.9"},
	})
	svc.SendMessages(
		&core.EmailMessage{
			To:           []mail.Address{{Address: conf.AuditEmail}},
			Subject:      "Submission for audit",
			TemplateName: "audit_submission",
			TemplateData: report,
		},
		&core.EmailMessage{Subject: "no recipient", BodyStr: "dropped"},
		&core.EmailMessage{To: []mail.Address{{Address: "a@test.cd"}}, BodyStr: "plain"},
	)

	sent := svc.Messages()
	require.Len(t, sent, 2)

	assert.Contains(t, sent[0].TextContent, "alice sent a submission for audit.")
	assert.Contains(t, sent[0].TextContent, "Assignment: Cardiology / No Submodule")
	assert.Contains(t, sent[0].TextContent, "ICD-10 codes: I10, E11.9")
	assert.Contains(t, sent[0].HTMLContent, "<strong>alice</strong>")
	assert.Equal(t, "plain", sent[1].TextContent)
	assert.Empty(t, sent[1].HTMLContent)
}

func TestConsoleService_compose(t *testing.T) {
	conf := core.NewTestConfig()
	svc := NewConsoleServiceMock(conf, logsvc.NewNopLogger())

	body, err := svc.compose(core.EmailMessage{
		To:          []mail.Address{{Name: "Audit", Address: "audit@test.cd"}},
		Cc:          []mail.Address{{Address: "cc@test.cd"}},
		Subject:     "hello",
		TextContent: "text",
		HTMLContent: "<p>html</p>",
	})
	require.NoError(t, err)
	assert.Contains(t, body, "Subject: ["+conf.AppName+"] hello")
	assert.Contains(t, body, `To: "Audit" <audit@test.cd>`)
	assert.Contains(t, body, "CC: <cc@test.cd>")
	assert.Contains(t, body, "text/html")
}
