package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/onurcolak/contact-dispatch-service/internal/dispatch"
	"github.com/onurcolak/contact-dispatch-service/internal/domain"
	"github.com/onurcolak/contact-dispatch-service/internal/jobs"
	"github.com/onurcolak/contact-dispatch-service/internal/scheduler"
	"github.com/onurcolak/contact-dispatch-service/internal/service"
	"github.com/onurcolak/contact-dispatch-service/pkg/ingest"
	"github.com/onurcolak/contact-dispatch-service/pkg/response"
	"github.com/onurcolak/contact-dispatch-service/pkg/validator"
)

type JobHandler struct {
	service *service.DispatchService
	// location is used for send times given without a UTC offset.
	location *time.Location
}

func NewJobHandler(service *service.DispatchService, location *time.Location) *JobHandler {
	if location == nil {
		location = time.Local
	}
	return &JobHandler{service: service, location: location}
}

type RuleRequest struct {
	// Filters is an ordered JSON object of category -> required value.
	Filters  domain.Filters `json:"filters" swaggertype:"object,string"`
	Template string         `json:"template" validate:"nonblank"`
	// SendAt is RFC3339 or a local "2006-01-02T15:04" time. Empty sends now.
	SendAt string `json:"sendAt,omitempty"`
}

type CreateJobRequest struct {
	Headers []string      `json:"headers" validate:"required,min=1"`
	Rows    [][]string    `json:"rows"`
	Rules   []RuleRequest `json:"rules" validate:"required,min=1,dive"`
}

type RulesRequest struct {
	Rules []RuleRequest `json:"rules" validate:"required,min=1,dive"`
}

// CreateJob godoc
// @Summary Submit a dispatch job
// @Description Queues a job for a contact table and an ordered rule set. The job runs in the background; poll it by id.
// @Tags jobs
// @Accept json
// @Produce json
// @Param job body CreateJobRequest true "Contact table and rules"
// @Success 202 {object} response.SuccessResponse
// @Failure 400 {object} response.ErrorResponse
// @Failure 422 {object} validator.ValidationErrorResponse
// @Failure 503 {object} response.ErrorResponse
// @Router /api/v1/jobs [post]
func (h *JobHandler) CreateJob(c echo.Context) error {
	req, err := bindJobRequest(c)
	if err != nil {
		return validator.HandleValidationError(c, err)
	}

	dreq, err := h.toDispatchRequest(domain.ContactTable{Headers: req.Headers, Rows: req.Rows}, req.Rules)
	if err != nil {
		return response.BadRequest(c, err)
	}

	return h.submit(c, dreq)
}

// UploadJob godoc
// @Summary Submit a dispatch job from a spreadsheet
// @Description Queues a job for an uploaded .csv or .xlsx contact sheet. The rules form field holds the JSON array of rules.
// @Tags jobs
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Contact sheet (.csv or .xlsx)"
// @Param rules formData string true "JSON array of rules"
// @Success 202 {object} response.SuccessResponse
// @Failure 400 {object} response.ErrorResponse
// @Failure 422 {object} validator.ValidationErrorResponse
// @Router /api/v1/jobs/upload [post]
func (h *JobHandler) UploadJob(c echo.Context) error {
	var form RulesRequest
	if err := json.Unmarshal([]byte(c.FormValue("rules")), &form.Rules); err != nil {
		return response.BadRequest(c, fmt.Errorf("rules must be a JSON array of rules: %w", err))
	}

	if err := c.Validate(&form); err != nil {
		return validator.HandleValidationError(c, err)
	}

	parsed, err := h.parseUpload(c)
	if err != nil {
		return h.writeError(c, err)
	}

	dreq, err := h.toDispatchRequest(parsed.ContactTable, form.Rules)
	if err != nil {
		return response.BadRequest(c, err)
	}

	return h.submit(c, dreq)
}

// PreviewJob godoc
// @Summary Preview a dispatch job
// @Description Returns, per rule, the messages that would be sent and the rows that would be skipped. Nothing is sent.
// @Tags jobs
// @Accept json
// @Produce json
// @Param job body CreateJobRequest true "Contact table and rules"
// @Success 200 {object} response.SuccessResponse
// @Failure 400 {object} response.ErrorResponse
// @Failure 422 {object} response.ErrorResponse
// @Router /api/v1/jobs/preview [post]
func (h *JobHandler) PreviewJob(c echo.Context) error {
	req, err := bindJobRequest(c)
	if err != nil {
		return validator.HandleValidationError(c, err)
	}

	dreq, err := h.toDispatchRequest(domain.ContactTable{Headers: req.Headers, Rows: req.Rows}, req.Rules)
	if err != nil {
		return response.BadRequest(c, err)
	}

	preview, err := h.service.Preview(dreq)
	if err != nil {
		return h.writeError(c, err)
	}

	return response.Ok(c, preview)
}

// GetJob godoc
// @Summary Get a job
// @Description Returns status, log lines and counters of a job
// @Tags jobs
// @Produce json
// @Param id path string true "Job ID"
// @Success 200 {object} response.SuccessResponse
// @Failure 404 {object} response.ErrorResponse
// @Router /api/v1/jobs/{id} [get]
func (h *JobHandler) GetJob(c echo.Context) error {
	snap, err := h.service.GetJob(c.Request().Context(), c.Param("id"))
	if err != nil {
		return h.writeError(c, err)
	}

	return response.Ok(c, snap)
}

// GetJobLogs godoc
// @Summary Get job log lines
// @Description Returns the log lines of a job from the given offset on. Poll again with the returned next offset.
// @Tags jobs
// @Produce json
// @Param id path string true "Job ID"
// @Param from query int false "Offset of the first line (default: 0)"
// @Success 200 {object} response.SuccessResponse
// @Failure 400 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse
// @Router /api/v1/jobs/{id}/logs [get]
func (h *JobHandler) GetJobLogs(c echo.Context) error {
	from := 0
	if v := c.QueryParam("from"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return response.BadRequestWithMessage(c, "from must be a non-negative integer")
		}
		from = n
	}

	logs, err := h.service.GetJobLogs(c.Param("id"), from)
	if err != nil {
		return h.writeError(c, err)
	}

	return response.Ok(c, logs)
}

// ListJobs godoc
// @Summary List jobs
// @Description Returns every job known to this process, newest first, without log lines
// @Tags jobs
// @Produce json
// @Success 200 {object} response.SuccessResponse
// @Router /api/v1/jobs [get]
func (h *JobHandler) ListJobs(c echo.Context) error {
	return response.Ok(c, h.service.ListJobs())
}

// CancelJob godoc
// @Summary Cancel a job
// @Description Stops a queued or running job. It ends as failed once it notices.
// @Tags jobs
// @Produce json
// @Param id path string true "Job ID"
// @Success 202 {object} response.SuccessResponse
// @Failure 404 {object} response.ErrorResponse
// @Failure 409 {object} response.ErrorResponse
// @Router /api/v1/jobs/{id}/cancel [post]
func (h *JobHandler) CancelJob(c echo.Context) error {
	id := c.Param("id")

	if err := h.service.CancelJob(id); err != nil {
		return h.writeError(c, err)
	}

	return response.Accepted(c, "Cancellation requested", map[string]any{
		"id": id,
	})
}

// GetJobMessages godoc
// @Summary Get the send attempts of a job
// @Description Returns a paginated list of stored send attempts of a job
// @Tags jobs
// @Produce json
// @Param id path string true "Job ID"
// @Param page query int false "Page number (default: 1)"
// @Param pageSize query int false "Page size (default: 20, max: 100)"
// @Success 200 {object} response.PaginatedResponse
// @Failure 400 {object} response.ErrorResponse
// @Failure 503 {object} response.ErrorResponse
// @Router /api/v1/jobs/{id}/messages [get]
func (h *JobHandler) GetJobMessages(c echo.Context) error {
	page, pageSize, err := parsePaginationParams(c)
	if err != nil {
		return response.BadRequest(c, err)
	}

	messages, totalCount, err := h.service.GetJobMessages(c.Request().Context(), c.Param("id"), page, pageSize)
	if err != nil {
		return h.writeError(c, err)
	}

	return response.Paginated(c, messages, page, pageSize, totalCount)
}

// GetCachedJobs godoc
// @Summary Get cached job summaries from Redis
// @Description Returns the summaries of completed jobs kept in Redis for 24 hours
// @Tags jobs
// @Produce json
// @Success 200 {object} response.SuccessResponse
// @Failure 503 {object} response.ErrorResponse
// @Router /api/v1/jobs/cached [get]
func (h *JobHandler) GetCachedJobs(c echo.Context) error {
	cached, err := h.service.GetCachedJobs(c.Request().Context())
	if err != nil {
		return h.writeError(c, err)
	}

	return response.Ok(c, cached)
}

// GetStats godoc
// @Summary Get send statistics
// @Description Returns the number of stored send attempts by status across all jobs
// @Tags messages
// @Produce json
// @Success 200 {object} response.SuccessResponse
// @Failure 503 {object} response.ErrorResponse
// @Router /api/v1/messages/stats [get]
func (h *JobHandler) GetStats(c echo.Context) error {
	sent, failed, err := h.service.GetStats(c.Request().Context())
	if err != nil {
		return h.writeError(c, err)
	}

	return response.Ok(c, map[string]any{
		"sent":   sent,
		"failed": failed,
		"total":  sent + failed,
	})
}

// ParseContacts godoc
// @Summary Parse a contact sheet
// @Description Parses an uploaded .csv or .xlsx sheet and detects its name, phone and category columns
// @Tags contacts
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Contact sheet (.csv or .xlsx)"
// @Success 200 {object} response.SuccessResponse
// @Failure 400 {object} response.ErrorResponse
// @Router /api/v1/contacts/parse [post]
func (h *JobHandler) ParseContacts(c echo.Context) error {
	parsed, err := h.parseUpload(c)
	if err != nil {
		return h.writeError(c, err)
	}

	return response.Ok(c, parsed)
}

// bindJobRequest binds and validates the body. Its errors are meant for
// validator.HandleValidationError.
func bindJobRequest(c echo.Context) (*CreateJobRequest, error) {
	var req CreateJobRequest
	if err := c.Bind(&req); err != nil {
		return nil, err
	}

	if err := c.Validate(&req); err != nil {
		return nil, err
	}

	return &req, nil
}

func (h *JobHandler) parseUpload(c echo.Context) (*domain.ParsedContacts, error) {
	file, err := c.FormFile("file")
	if err != nil {
		return nil, fmt.Errorf("%w: file field is required", errBadUpload)
	}

	src, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errBadUpload, err)
	}
	defer src.Close()

	return h.service.ParseContacts(file.Filename, src)
}

func (h *JobHandler) toDispatchRequest(table domain.ContactTable, rules []RuleRequest) (domain.DispatchRequest, error) {
	out := domain.DispatchRequest{
		Table: table,
		Rules: make([]domain.FilterRule, 0, len(rules)),
	}
	if out.Table.Rows == nil {
		out.Table.Rows = [][]string{}
	}

	for i, r := range rules {
		sendAt, err := domain.ParseSendTime(r.SendAt, h.location)
		if err != nil {
			return domain.DispatchRequest{}, fmt.Errorf("rule #%d: %w", i+1, err)
		}

		out.Rules = append(out.Rules, domain.FilterRule{
			Filters:  r.Filters,
			Template: r.Template,
			SendAt:   sendAt,
		})
	}

	return out, nil
}

func (h *JobHandler) submit(c echo.Context, req domain.DispatchRequest) error {
	snap, err := h.service.SubmitJob(req)
	if err != nil {
		return h.writeError(c, err)
	}

	return response.Accepted(c, "Job queued", snap)
}

var errBadUpload = errors.New("invalid upload")

func (h *JobHandler) writeError(c echo.Context, err error) error {
	var pre *dispatch.PreconditionError

	switch {
	case errors.Is(err, jobs.ErrJobNotFound):
		return response.NotFound(c, err.Error())
	case errors.Is(err, scheduler.ErrJobNotActive):
		return response.Conflict(c, err)
	case errors.Is(err, scheduler.ErrSchedulerStopped),
		errors.Is(err, service.ErrDatabaseNotConfigured),
		errors.Is(err, service.ErrRedisNotConfigured):
		return response.ServiceUnavailable(c, err)
	case errors.As(err, &pre):
		return response.UnprocessableEntity(c, err)
	case errors.Is(err, errBadUpload),
		errors.Is(err, ingest.ErrUnsupportedFormat),
		errors.Is(err, ingest.ErrEmptySheet):
		return response.BadRequest(c, err)
	default:
		return response.InternalServerError(c, err)
	}
}

func parsePaginationParams(c echo.Context) (int, int, error) {
	const (
		defaultPage     = 1
		defaultPageSize = 20
		maxPageSize     = 100
	)

	page := defaultPage
	if v := c.QueryParam("page"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil || p <= 0 {
			return 0, 0, fmt.Errorf("page must be a positive integer")
		}
		page = p
	}

	pageSize := defaultPageSize
	if v := c.QueryParam("pageSize"); v != "" {
		ps, err := strconv.Atoi(v)
		if err != nil || ps <= 0 || ps > maxPageSize {
			return 0, 0, fmt.Errorf("pageSize must be between 1 and %d", maxPageSize)
		}
		pageSize = ps
	}

	return page, pageSize, nil
}
