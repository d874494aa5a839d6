package http

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/venhawk/venhawk-intake/internal/auth"
	"github.com/venhawk/venhawk-intake/internal/intake/domain"
	"github.com/venhawk/venhawk-intake/internal/intake/service"
	"github.com/venhawk/venhawk-intake/internal/logger"
)

// wizard returns the caller's wizard, or aborts with 401.
func (h *Handler) wizard(c *gin.Context) (*service.Wizard, bool) {
	uid := auth.UserFirebaseUID(c)
	if uid == "" {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "user not authenticated", Code: string(domain.ErrCodeAuthFailed)})
		return nil, false
	}
	return h.sessions.Get(uid), true
}

// GetOptions returns the selectable industries and categories
func (h *Handler) GetOptions(c *gin.Context) {
	c.JSON(http.StatusOK, h.catalog)
}

// GetWizard returns the caller's wizard state
func (h *Handler) GetWizard(c *gin.Context) {
	w, ok := h.wizard(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, w.State())
}

func (h *Handler) UpdateDetails(c *gin.Context) {
	w, ok := h.wizard(c)
	if !ok {
		return
	}

	var req DetailsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	st, err := w.UpdateDetails(req.patch())
	if err != nil {
		h.writeError(c, err, &st)
		return
	}
	c.JSON(http.StatusOK, st)
}

func (h *Handler) UpdateTimeline(c *gin.Context) {
	w, ok := h.wizard(c)
	if !ok {
		return
	}

	var req TimelineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	st, err := w.UpdateTimeline(req.patch())
	if err != nil {
		h.writeError(c, err, &st)
		return
	}
	c.JSON(http.StatusOK, st)
}

func (h *Handler) Next(c *gin.Context) {
	h.transition(c, (*service.Wizard).Next)
}

func (h *Handler) Back(c *gin.Context) {
	h.transition(c, (*service.Wizard).Back)
}

func (h *Handler) Edit(c *gin.Context) {
	h.transition(c, (*service.Wizard).Edit)
}

func (h *Handler) Restart(c *gin.Context) {
	h.transition(c, (*service.Wizard).Restart)
}

func (h *Handler) transition(c *gin.Context, fn func(*service.Wizard) (service.State, error)) {
	w, ok := h.wizard(c)
	if !ok {
		return
	}
	st, err := fn(w)
	if err != nil {
		h.writeError(c, err, &st)
		return
	}
	c.JSON(http.StatusOK, st)
}

// UploadFiles accepts a multipart batch under the "files" field. Per-file
// failures are part of a 200 response.
func (h *Handler) UploadFiles(c *gin.Context) {
	w, ok := h.wizard(c)
	if !ok {
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes)
	form, err := c.MultipartForm()
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, ErrorResponse{Error: "upload batch is too large", Code: string(domain.ErrCodeUploadFailed)})
			return
		}
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid multipart form"})
		return
	}
	defer form.RemoveAll()

	headers := form.File["files"]
	if len(headers) == 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "no files provided"})
		return
	}

	uploads := make([]service.Upload, 0, len(headers))
	for _, fh := range headers {
		uploads = append(uploads, toUpload(fh))
	}

	res, err := w.UploadFiles(c.Request.Context(), uploads)
	if err != nil {
		h.writeError(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, gin.H{"result": res, "state": w.State()})
}

func toUpload(fh *multipart.FileHeader) service.Upload {
	return service.Upload{
		Name:     sanitizeText(fh.Filename),
		Size:     fh.Size,
		MimeType: fh.Header.Get("Content-Type"),
		Open: func() (io.ReadCloser, error) {
			return fh.Open()
		},
	}
}

// DeleteFile removes an attachment by its URL
func (h *Handler) DeleteFile(c *gin.Context) {
	w, ok := h.wizard(c)
	if !ok {
		return
	}

	fileURL := strings.TrimSpace(c.Query("url"))
	if fileURL == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "url is required"})
		return
	}

	if err := w.DeleteFile(c.Request.Context(), fileURL); err != nil {
		st := w.State()
		h.writeError(c, err, &st)
		return
	}
	c.JSON(http.StatusOK, w.State())
}

// Submit sends the reviewed draft to the matching backend
func (h *Handler) Submit(c *gin.Context) {
	w, ok := h.wizard(c)
	if !ok {
		return
	}

	st, err := w.Submit(c.Request.Context())
	if err != nil {
		h.writeError(c, err, &st)
		return
	}
	c.JSON(http.StatusOK, st)
}

// GetResults returns the matched vendors, or redirects to the wizard when
// nothing has been submitted in this session.
func (h *Handler) GetResults(c *gin.Context) {
	w, ok := h.wizard(c)
	if !ok {
		return
	}

	vendors, err := w.Results()
	if errors.Is(err, domain.ErrNoSubmission) {
		c.Redirect(http.StatusSeeOther, wizardPath(c))
		return
	}
	if err != nil {
		h.writeError(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, ResultsResponse{Vendors: vendors, Count: len(vendors)})
}

// SaveDraft writes a snapshot of the draft
func (h *Handler) SaveDraft(c *gin.Context) {
	w, ok := h.wizard(c)
	if !ok {
		return
	}
	if h.saver == nil {
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "saving drafts is not enabled"})
		return
	}

	if err := w.SaveDraft(c.Request.Context(), h.saver); err != nil {
		logger.FromContext(c.Request.Context(), h.log).WithError(err).Warn("save draft failed", nil)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to save draft"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"saved": true})
}

// wizardPath is the GET /wizard route next to the current one.
func wizardPath(c *gin.Context) string {
	p := c.FullPath()
	if i := strings.LastIndex(p, "/results"); i >= 0 {
		return p[:i]
	}
	return "/"
}

func (h *Handler) writeError(c *gin.Context, err error, st *service.State) {
	resp := ErrorResponse{Error: err.Error(), State: st}
	status := http.StatusInternalServerError

	var screenErr *service.ScreenError
	var intakeErr *domain.IntakeError
	switch {
	case errors.As(err, &screenErr):
		status = http.StatusUnprocessableEntity
		resp.Error = domain.ErrScreenInvalid.Error()
		resp.Errors = screenErr.Result.Messages()
		resp.FieldErrors = screenErr.Result.Errors
		if len(screenErr.Result.Errors) > 0 {
			resp.Code = string(screenErr.Result.Errors[0].Code)
		}
	case errors.As(err, &intakeErr):
		resp.Error = intakeErr.Message
		resp.Code = string(intakeErr.Code)
		switch intakeErr.Code {
		case domain.ErrCodeInvalidFormat, domain.ErrCodeMissingField, domain.ErrCodeInvalidRange:
			status = http.StatusBadRequest
		case domain.ErrCodeAuthFailed:
			status = http.StatusUnauthorized
		default:
			status = http.StatusBadGateway
		}
	case errors.Is(err, domain.ErrFileNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrWrongStep),
		errors.Is(err, domain.ErrSubmitInProgress),
		errors.Is(err, domain.ErrDeleteInProgress):
		status = http.StatusConflict
	default:
		resp.Error = "internal error"
		logger.FromContext(c.Request.Context(), h.log).WithError(err).Error("unhandled intake error", nil)
	}

	c.JSON(status, resp)
}
