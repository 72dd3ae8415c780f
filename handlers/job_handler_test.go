package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/onurcolak/contact-dispatch-service/internal/contacts"
	"github.com/onurcolak/contact-dispatch-service/internal/dispatch"
	"github.com/onurcolak/contact-dispatch-service/internal/domain"
	"github.com/onurcolak/contact-dispatch-service/internal/jobs"
	"github.com/onurcolak/contact-dispatch-service/internal/scheduler"
	"github.com/onurcolak/contact-dispatch-service/internal/service"
	"github.com/onurcolak/contact-dispatch-service/pkg/response"
	validatorpkg "github.com/onurcolak/contact-dispatch-service/pkg/validator"
)

type fakeTransport struct {
	mu    sync.Mutex
	sends []string
}

func (f *fakeTransport) SendMessage(ctx context.Context, phone, content string) (*domain.WebhookResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sends = append(f.sends, phone+": "+content)
	return &domain.WebhookResponse{Message: "Accepted", MessageID: "m-" + phone}, nil
}

func (f *fakeTransport) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sends)
}

type testEnv struct {
	e         *echo.Echo
	handler   *JobHandler
	transport *fakeTransport
	sched     *scheduler.Scheduler
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	tr := &fakeTransport{}
	disp := dispatch.NewDispatcher(tr, nil, nil, dispatch.Config{
		PhonePolicy:      contacts.RequireExplicitCountryCode(),
		MaxContentLength: 1000,
	})
	store := jobs.NewStore()
	sched := scheduler.NewScheduler(disp, store, nil, nil, 2)
	t.Cleanup(func() { _ = sched.Stop() })

	svc := service.NewDispatchService(sched, disp, store, nil, nil)

	e := echo.New()
	e.Validator = validatorpkg.New()

	return &testEnv{
		e:         e,
		handler:   NewJobHandler(svc, time.UTC),
		transport: tr,
		sched:     sched,
	}
}

func (env *testEnv) jsonContext(method, path, body string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return env.e.NewContext(req, rec), rec
}

func (env *testEnv) idContext(method, path, id string) (echo.Context, *httptest.ResponseRecorder) {
	c, rec := env.jsonContext(method, path, "")
	c.SetParamNames("id")
	c.SetParamValues(id)
	return c, rec
}

const validJobBody = `{
	"headers": ["Name", "Phone", "Mehendi"],
	"rows": [["Ann", "+15550001", "Yes"], ["Bob", "+15550002", "No"]],
	"rules": [{"filters": {"Mehendi": "yes"}, "template": "Hi {name}"}]
}`

func decodeSuccess(t *testing.T, rec *httptest.ResponseRecorder, data any) {
	t.Helper()

	body := struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
	}{}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if !body.Success {
		t.Fatalf("expected Success=true, body: %s", rec.Body.String())
	}
	if data != nil {
		if err := json.Unmarshal(body.Data, data); err != nil {
			t.Fatalf("failed to unmarshal data: %v", err)
		}
	}
}

func waitForJob(t *testing.T, env *testEnv, id string) domain.JobSnapshot {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		c, rec := env.idContext(http.MethodGet, "/api/v1/jobs/"+id, id)
		if err := env.handler.GetJob(c); err != nil {
			t.Fatalf("GetJob returned error: %v", err)
		}

		var snap domain.JobSnapshot
		decodeSuccess(t, rec, &snap)
		if snap.Status.Terminal() {
			return snap
		}
		time.Sleep(5 * time.Millisecond)
	}

	t.Fatalf("job %s did not finish in time", id)
	return domain.JobSnapshot{}
}

func TestCreateJob_QueuesAndRuns(t *testing.T) {
	env := newTestEnv(t)

	c, rec := env.jsonContext(http.MethodPost, "/api/v1/jobs", validJobBody)
	if err := env.handler.CreateJob(c); err != nil {
		t.Fatalf("CreateJob returned error: %v", err)
	}

	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected status %d, got %d (%s)", http.StatusAccepted, rec.Code, rec.Body.String())
	}

	var queued domain.JobSnapshot
	decodeSuccess(t, rec, &queued)
	if queued.ID == "" {
		t.Fatalf("expected a job id")
	}

	snap := waitForJob(t, env, queued.ID)
	if snap.Status != domain.JobFinished {
		t.Fatalf("expected finished job, got %s (%s)", snap.Status, snap.Error)
	}
	if snap.Counters.Sent != 1 || snap.Counters.Skipped != 1 {
		t.Errorf("unexpected counters: %+v", snap.Counters)
	}
	if env.transport.count() != 1 {
		t.Errorf("expected 1 send, got %d", env.transport.count())
	}
}

func TestCreateJob_BadJSON(t *testing.T) {
	env := newTestEnv(t)

	c, rec := env.jsonContext(http.MethodPost, "/api/v1/jobs", `{"headers": [`)
	if err := env.handler.CreateJob(c); err != nil {
		t.Fatalf("CreateJob returned error: %v", err)
	}

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, rec.Code)
	}
}

func TestCreateJob_EmptyRulesReturns422(t *testing.T) {
	env := newTestEnv(t)

	body := `{"headers": ["Name", "Phone"], "rows": [["Ann", "+1"]], "rules": []}`
	c, rec := env.jsonContext(http.MethodPost, "/api/v1/jobs", body)
	if err := env.handler.CreateJob(c); err != nil {
		t.Fatalf("CreateJob returned error: %v", err)
	}

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected status %d, got %d", http.StatusUnprocessableEntity, rec.Code)
	}

	var resp validatorpkg.ValidationErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if _, ok := resp.Details["rules"]; !ok {
		t.Errorf("expected a validation error for rules, got %v", resp.Details)
	}
}

func TestCreateJob_InvalidSendTime(t *testing.T) {
	env := newTestEnv(t)

	body := `{"headers": ["Name", "Phone"], "rows": [], "rules": [{"template": "hi", "sendAt": "tomorrow"}]}`
	c, rec := env.jsonContext(http.MethodPost, "/api/v1/jobs", body)
	if err := env.handler.CreateJob(c); err != nil {
		t.Fatalf("CreateJob returned error: %v", err)
	}

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, rec.Code)
	}
}

func TestUploadJob_FromCSV(t *testing.T) {
	env := newTestEnv(t)

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", "guests.csv")
	if err != nil {
		t.Fatalf("CreateFormFile: %v", err)
	}
	_, _ = part.Write([]byte("Guest Name,Mobile,Sangeet\nAnn,+15550001,Yes\nBob,+15550002,yes\n"))
	_ = w.WriteField("rules", `[{"filters": {"Sangeet": "YES"}, "template": "See you, {Name}"}]`)
	_ = w.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/jobs/upload", &buf)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
	rec := httptest.NewRecorder()
	c := env.e.NewContext(req, rec)

	if err := env.handler.UploadJob(c); err != nil {
		t.Fatalf("UploadJob returned error: %v", err)
	}
	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected status %d, got %d (%s)", http.StatusAccepted, rec.Code, rec.Body.String())
	}

	var queued domain.JobSnapshot
	decodeSuccess(t, rec, &queued)

	snap := waitForJob(t, env, queued.ID)
	if snap.Counters.Sent != 2 {
		t.Fatalf("expected 2 sends, got %+v (%s)", snap.Counters, snap.Error)
	}
}

func TestParseContacts_UnsupportedFormat(t *testing.T) {
	env := newTestEnv(t)

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, _ := w.CreateFormFile("file", "guests.pdf")
	_, _ = part.Write([]byte("%PDF"))
	_ = w.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/contacts/parse", &buf)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
	rec := httptest.NewRecorder()

	if err := env.handler.ParseContacts(env.e.NewContext(req, rec)); err != nil {
		t.Fatalf("ParseContacts returned error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, rec.Code)
	}
}

func TestPreviewJob_MissingNameColumn(t *testing.T) {
	env := newTestEnv(t)

	body := `{"headers": ["City", "Phone"], "rows": [["Paris", "+1"]], "rules": [{"template": "hi"}]}`
	c, rec := env.jsonContext(http.MethodPost, "/api/v1/jobs/preview", body)
	if err := env.handler.PreviewJob(c); err != nil {
		t.Fatalf("PreviewJob returned error: %v", err)
	}

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected status %d, got %d", http.StatusUnprocessableEntity, rec.Code)
	}
	if env.transport.count() != 0 {
		t.Errorf("preview must not send")
	}
}

func TestGetJob_NotFound(t *testing.T) {
	env := newTestEnv(t)

	c, rec := env.idContext(http.MethodGet, "/api/v1/jobs/nope", "nope")
	if err := env.handler.GetJob(c); err != nil {
		t.Fatalf("GetJob returned error: %v", err)
	}

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status %d, got %d", http.StatusNotFound, rec.Code)
	}
}

func TestCancelJob_FinishedJobConflicts(t *testing.T) {
	env := newTestEnv(t)

	c, rec := env.jsonContext(http.MethodPost, "/api/v1/jobs", validJobBody)
	_ = env.handler.CreateJob(c)

	var queued domain.JobSnapshot
	decodeSuccess(t, rec, &queued)
	waitForJob(t, env, queued.ID)

	c, rec = env.idContext(http.MethodPost, "/api/v1/jobs/"+queued.ID+"/cancel", queued.ID)
	if err := env.handler.CancelJob(c); err != nil {
		t.Fatalf("CancelJob returned error: %v", err)
	}
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected status %d, got %d", http.StatusConflict, rec.Code)
	}
}

func TestGetJobLogs_InvalidOffset(t *testing.T) {
	env := newTestEnv(t)

	c, rec := env.idContext(http.MethodGet, "/api/v1/jobs/x/logs?from=-1", "x")
	if err := env.handler.GetJobLogs(c); err != nil {
		t.Fatalf("GetJobLogs returned error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, rec.Code)
	}
}

func TestGetStats_WithoutDatabase(t *testing.T) {
	env := newTestEnv(t)

	c, rec := env.jsonContext(http.MethodGet, "/api/v1/messages/stats", "")
	if err := env.handler.GetStats(c); err != nil {
		t.Fatalf("GetStats returned error: %v", err)
	}

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected status %d, got %d", http.StatusServiceUnavailable, rec.Code)
	}

	var resp response.ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if resp.Error != service.ErrDatabaseNotConfigured.Error() {
		t.Errorf("unexpected error message %q", resp.Error)
	}
}
