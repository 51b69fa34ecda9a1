// Package apisvc talks to the remote API that owns students, assignments and submissions.
package apisvc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"sort"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sendgrid/rest"

	"github.com/katikolakarthik/el-frontend/core/coursework"
)

var remoteCalls = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "portal",
		Name:      "remote_api_calls_total",
		Help:      "Calls made to the remote API, by route and outcome.",
	},
	[]string{"method", "route", "outcome"},
)

var remoteLatency = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: "portal",
		Name:      "remote_api_call_seconds",
		Help:      "Latency of the remote API calls.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"method", "route"},
)

func init() {
	prometheus.MustRegister(remoteCalls, remoteLatency)
}

// Error is a non-2xx answer of the remote API.
type Error struct {
	Method  string
	Path    string
	Status  int
	Message string
}

func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s %s: %d: %s", e.Method, e.Path, e.Status, e.Message)
	}
	return fmt.Sprintf("%s %s: %d", e.Method, e.Path, e.Status)
}

// UserMessage is the message the API meant for end users.
func (e *Error) UserMessage() string { return e.Message }

func IsStatus(err error, status int) bool {
	apiErr, ok := errors.Cause(err).(*Error)
	return ok && apiErr.Status == status
}

type Client struct {
	baseURL string
	http    *rest.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &rest.Client{HTTPClient: &http.Client{Timeout: timeout}},
	}
}

// call is one remote API request. route is the path template used as metric label.
type call struct {
	method rest.Method
	route  string
	path   string
	body   []byte
	ctype  string
}

func (c *Client) do(ctx context.Context, cl call, out interface{}) error {
	req := rest.Request{
		Method:  cl.method,
		BaseURL: c.baseURL + cl.path,
		Headers: map[string]string{"Accept": "application/json"},
		Body:    cl.body,
	}
	if cl.ctype != "" {
		req.Headers["Content-Type"] = cl.ctype
	}

	start := time.Now()
	res, err := c.http.SendWithContext(ctx, req)
	remoteLatency.WithLabelValues(string(cl.method), cl.route).Observe(time.Since(start).Seconds())
	if err != nil {
		remoteCalls.WithLabelValues(string(cl.method), cl.route, "transport_error").Inc()
		return errors.Wrapf(err, "%s %s", cl.method, cl.path)
	}
	remoteCalls.WithLabelValues(string(cl.method), cl.route, strconv.Itoa(res.StatusCode)).Inc()

	if res.StatusCode >= http.StatusBadRequest {
		var body struct {
			Message string `json:"message"`
			Error   string `json:"error"`
		}
		_ = json.Unmarshal([]byte(res.Body), &body)
		msg := body.Message
		if msg == "" {
			msg = body.Error
		}
		return &Error{Method: string(cl.method), Path: cl.path, Status: res.StatusCode, Message: msg}
	}
	if out == nil || res.Body == "" {
		return nil
	}
	if err = json.Unmarshal([]byte(res.Body), out); err != nil {
		return errors.Wrapf(err, "decoding %s %s", cl.method, cl.path)
	}
	return nil
}

func jsonCall(method rest.Method, route, path string, payload interface{}) (call, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return call{}, errors.Wrap(err, "encoding request body")
	}
	return call{method: method, route: route, path: path, body: body, ctype: "application/json"}, nil
}

// multipartCall encodes fields and files as multipart/form-data. Fields are written in key order.
func multipartCall(method rest.Method, route, path string, fields map[string]string, files ...*coursework.Upload) (call, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := mw.WriteField(k, fields[k]); err != nil {
			return call{}, errors.Wrapf(err, "writing field %s", k)
		}
	}

	for _, f := range files {
		if f == nil {
			continue
		}
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, f.Field, f.Filename))
		h.Set("Content-Type", f.ContentType)
		w, err := mw.CreatePart(h)
		if err != nil {
			return call{}, errors.Wrapf(err, "creating part %s", f.Field)
		}
		if _, err = w.Write(f.Data); err != nil {
			return call{}, errors.Wrapf(err, "writing part %s", f.Field)
		}
	}
	if err := mw.Close(); err != nil {
		return call{}, errors.Wrap(err, "closing multipart body")
	}
	return call{method: method, route: route, path: path, body: buf.Bytes(), ctype: mw.FormDataContentType()}, nil
}
