package echoportal

import (
	"bytes"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"

	"github.com/katikolakarthik/el-frontend/core"
	"github.com/katikolakarthik/el-frontend/core/session"
	apisvc "github.com/katikolakarthik/el-frontend/services/api"
	emailsvc "github.com/katikolakarthik/el-frontend/services/email"
	logsvc "github.com/katikolakarthik/el-frontend/services/logger"
	sessionstore "github.com/katikolakarthik/el-frontend/storage/session"
	testutil "github.com/katikolakarthik/el-frontend/tests"
)

// portal drives a test server through a cookie-keeping client that does not follow redirects.
type portal struct {
	t      *testing.T
	srv    *server
	api    *testutil.FakeAPI
	mail   *emailsvc.ConsoleServiceMock
	client *http.Client
	url    string
}

func setup(t *testing.T) *portal {
	api := testutil.NewFakeAPI(t)
	conf := core.NewTestConfig()
	logger := logsvc.NewNopLogger()

	_en := en.New()
	translator, _ := ut.New(_en, _en).GetTranslator("en")
	validate := validator.New()
	core.InitValidators(validate, translator)

	client := apisvc.NewClient(api.URL, 2*time.Second)
	storage := sessionstore.NewInmemStorage(conf.Session.CookieName, conf.Session.MaxAge, false)
	mailSvc := emailsvc.NewConsoleServiceMock(conf, logger)

	app, err := NewServer(
		Options{DisableReqLogs: true, DisableCSRF: true},
		Deps{
			Conf:       conf,
			Logger:     logger,
			API:        client,
			Sessions:   session.NewStore(client, storage, logger),
			MailSvc:    mailSvc,
			Validate:   validate,
			Translator: translator,
		},
	)
	require.NoError(t, err)

	ts := httptest.NewServer(app)
	t.Cleanup(ts.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)

	return &portal{
		t:    t,
		srv:  app.(*server),
		api:  api,
		mail: mailSvc,
		client: &http.Client{
			Jar: jar,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		url: ts.URL,
	}
}

func (p *portal) do(req *http.Request) (*http.Response, string) {
	p.t.Helper()
	res, err := p.client.Do(req)
	require.NoError(p.t, err)
	defer res.Body.Close()
	body, err := io.ReadAll(res.Body)
	require.NoError(p.t, err)
	return res, string(body)
}

func (p *portal) get(path string) (*http.Response, string) {
	p.t.Helper()
	req, err := http.NewRequest(http.MethodGet, p.url+path, nil)
	require.NoError(p.t, err)
	return p.do(req)
}

func (p *portal) post(path string, form url.Values) (*http.Response, string) {
	p.t.Helper()
	req, err := http.NewRequest(http.MethodPost, p.url+path, strings.NewReader(form.Encode()))
	require.NoError(p.t, err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return p.do(req)
}

func (p *portal) postFile(path string, form url.Values, field, filename string, data []byte) (*http.Response, string) {
	p.t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for k, vs := range form {
		for _, v := range vs {
			require.NoError(p.t, w.WriteField(k, v))
		}
	}
	fw, err := w.CreateFormFile(field, filename)
	require.NoError(p.t, err)
	_, err = fw.Write(data)
	require.NoError(p.t, err)
	require.NoError(p.t, w.Close())

	req, err := http.NewRequest(http.MethodPost, p.url+path, &body)
	require.NoError(p.t, err)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return p.do(req)
}

// follow GETs the location a redirect points to.
func (p *portal) follow(res *http.Response) (*http.Response, string) {
	p.t.Helper()
	loc := res.Header.Get("Location")
	require.NotEmpty(p.t, loc, "no redirect to follow")
	return p.get(loc)
}

func (p *portal) login(name, password string) {
	p.t.Helper()
	res, _ := p.post("/login", url.Values{"name": {name}, "password": {password}})
	require.Equal(p.t, http.StatusSeeOther, res.StatusCode)
}

func (p *portal) loginAdmin()   { p.login(testutil.AdminName, testutil.AdminPassword) }
func (p *portal) loginStudent() { p.login(testutil.StudentName, testutil.StudentPwd) }
