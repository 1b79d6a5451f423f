package http

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/clematis-labs/justify-server/internal/application/service"
	"github.com/clematis-labs/justify-server/internal/domain/apperr"
)

// Handlers contains all HTTP request handlers
type Handlers struct {
	submissionService   service.SubmissionService
	reviewService       service.ReviewService
	documentService     service.DocumentService
	notificationService service.NotificationService
	reportService       service.ReportService
	logger              *zap.Logger
}

// NewHandlers creates a new Handlers instance
func NewHandlers(
	submissionService service.SubmissionService,
	reviewService service.ReviewService,
	documentService service.DocumentService,
	notificationService service.NotificationService,
	reportService service.ReportService,
	logger *zap.Logger,
) *Handlers {
	return &Handlers{
		submissionService:   submissionService,
		reviewService:       reviewService,
		documentService:     documentService,
		notificationService: notificationService,
		reportService:       reportService,
		logger:              logger,
	}
}

// errorBody is the uniform error envelope.
type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func abortWithError(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, errorBody{Error: errorDetail{Code: code, Message: message}})
}

// respondError maps an application error onto an HTTP status. Unknown
// errors are opaque 500s.
func (h *Handlers) respondError(c *gin.Context, err error) {
	var appErr *apperr.Error
	if !errors.As(err, &appErr) {
		h.logger.Error("Unhandled error",
			zap.String("path", c.Request.URL.Path),
			zap.Error(err))
		abortWithError(c, http.StatusInternalServerError, "INTERNAL", "internal server error")
		return
	}

	status := http.StatusInternalServerError
	switch appErr.Kind {
	case apperr.KindAuthenticationRequired:
		status = http.StatusUnauthorized
	case apperr.KindOrganizationContextMissing, apperr.KindValidation, apperr.KindInvalidStateTransition:
		status = http.StatusBadRequest
	case apperr.KindPermissionDenied:
		status = http.StatusForbidden
	case apperr.KindNotFound:
		status = http.StatusNotFound
	case apperr.KindDependencyFailure:
		status = http.StatusBadGateway
	}

	abortWithError(c, status, string(appErr.Kind), appErr.Message)
}

type pageQuery struct {
	Limit  int `form:"limit"`
	Offset int `form:"offset"`
}

// HealthCheck handles GET /health
func (h *Handlers) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// createSubmissionRequest is the body of POST /submissions.
type createSubmissionRequest struct {
	ExpenseType string  `json:"expense_type" binding:"required"`
	Title       string  `json:"title"`
	AmountCents *int64  `json:"amount_cents"`
	ExpenseDate *string `json:"expense_date"` // YYYY-MM-DD
}

// CreateSubmission handles POST /api/v1/submissions
func (h *Handlers) CreateSubmission(c *gin.Context) {
	var req createSubmissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, string(apperr.KindValidation), "invalid request body")
		return
	}

	input := service.CreateSubmissionInput{
		ExpenseType: req.ExpenseType,
		Title:       req.Title,
		AmountCents: req.AmountCents,
	}
	if req.ExpenseDate != nil {
		t, err := time.Parse("2006-01-02", *req.ExpenseDate)
		if err != nil {
			abortWithError(c, http.StatusBadRequest, string(apperr.KindValidation), "expense_date must be YYYY-MM-DD")
			return
		}
		input.ExpenseDate = &t
	}

	sub, err := h.submissionService.Create(c.Request.Context(), requestActor(c), input)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, sub)
}

// ListMySubmissions handles GET /api/v1/submissions
func (h *Handlers) ListMySubmissions(c *gin.Context) {
	var page pageQuery
	if err := c.ShouldBindQuery(&page); err != nil {
		abortWithError(c, http.StatusBadRequest, string(apperr.KindValidation), "invalid query parameters")
		return
	}

	subs, err := h.submissionService.ListMine(c.Request.Context(), requestActor(c), page.Limit, page.Offset)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"submissions": subs})
}

// GetSubmission handles GET /api/v1/submissions/:id
func (h *Handlers) GetSubmission(c *gin.Context) {
	detail, err := h.submissionService.Get(c.Request.Context(), requestActor(c), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, detail)
}

// SubmitSubmission handles POST /api/v1/submissions/:id/submit
func (h *Handlers) SubmitSubmission(c *gin.Context) {
	sub, err := h.submissionService.Submit(c.Request.Context(), requestActor(c), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, sub)
}

// decisionRequest is the body of POST /submissions/:id/decision.
type decisionRequest struct {
	Decision string `json:"decision" binding:"required"`
	Comment  string `json:"comment" binding:"required"`
}

// SubmitDecision handles POST /api/v1/submissions/:id/decision
func (h *Handlers) SubmitDecision(c *gin.Context) {
	var req decisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, string(apperr.KindValidation), "decision and comment are required")
		return
	}

	detail, err := h.reviewService.SubmitDecision(c.Request.Context(), requestActor(c),
		c.Param("id"), req.Decision, req.Comment)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, detail)
}

// commentRequest is the body of POST /submissions/:id/comments.
type commentRequest struct {
	Text string `json:"text" binding:"required"`
}

// AddComment handles POST /api/v1/submissions/:id/comments
func (h *Handlers) AddComment(c *gin.Context) {
	var req commentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, string(apperr.KindValidation), "text is required")
		return
	}

	comment, err := h.reviewService.AddComment(c.Request.Context(), requestActor(c), c.Param("id"), req.Text)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, comment)
}

// ListForReview handles GET /api/v1/review/submissions
func (h *Handlers) ListForReview(c *gin.Context) {
	var page pageQuery
	if err := c.ShouldBindQuery(&page); err != nil {
		abortWithError(c, http.StatusBadRequest, string(apperr.KindValidation), "invalid query parameters")
		return
	}

	details, err := h.reviewService.ListForReview(c.Request.Context(), requestActor(c), page.Limit, page.Offset)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"submissions": details})
}

// IngestDocument handles POST /api/v1/submissions/:id/documents (multipart)
func (h *Handlers) IngestDocument(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		abortWithError(c, http.StatusBadRequest, string(apperr.KindValidation), "multipart field 'file' is required")
		return
	}

	src, err := fileHeader.Open()
	if err != nil {
		abortWithError(c, http.StatusBadRequest, string(apperr.KindValidation), "uploaded file is unreadable")
		return
	}
	defer src.Close()

	content, err := io.ReadAll(src)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, string(apperr.KindValidation), "uploaded file is unreadable")
		return
	}

	file, err := h.documentService.Ingest(c.Request.Context(), requestActor(c), service.IngestDocumentInput{
		SubmissionID: c.Param("id"),
		FileName:     fileHeader.Filename,
		Content:      content,
		Kind:         c.PostForm("kind"),
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, file)
}

// DocumentURL handles GET /api/v1/documents/:id/url
func (h *Handlers) DocumentURL(c *gin.Context) {
	url, err := h.documentService.PresignedURL(c.Request.Context(), requestActor(c), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"url": url})
}

// ListNotifications handles GET /api/v1/notifications
func (h *Handlers) ListNotifications(c *gin.Context) {
	var page pageQuery
	if err := c.ShouldBindQuery(&page); err != nil {
		abortWithError(c, http.StatusBadRequest, string(apperr.KindValidation), "invalid query parameters")
		return
	}

	notifications, err := h.notificationService.List(c.Request.Context(), requestActor(c), page.Limit, page.Offset)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"notifications": notifications})
}

// ActivityReport handles GET /api/v1/admin/activity-report
func (h *Handlers) ActivityReport(c *gin.Context) {
	data, err := h.reportService.ActivityReport(c.Request.Context(), requestActor(c))
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="activity-report.xlsx"`)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}
