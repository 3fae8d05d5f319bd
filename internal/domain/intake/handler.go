package intake

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"leadintake/internal/backend"
	"leadintake/internal/domain"
	"leadintake/internal/domain/lead"
	"leadintake/internal/domain/upload"
	"leadintake/internal/middleware"
	"leadintake/internal/pkg/response"
	"leadintake/internal/pkg/validator"
)

// Handler handles HTTP requests for lead form sessions
type Handler struct {
	service *Service
	hub     *Hub
}

func NewHandler(service *Service, hub *Hub) *Handler {
	return &Handler{service: service, hub: hub}
}

// ---- Session endpoints ----

// Open godoc
// @Summary Open a lead form session
// @Tags LeadSessions
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param body body OpenRequest false "Lead to edit"
// @Success 201 {object} map[string]interface{}
// @Router /lead-sessions [post]
func (h *Handler) Open(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}
	var req OpenRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
			return
		}
	}
	if errs := validator.Validate(req); errs != nil {
		response.CustomError(c, http.StatusBadRequest, "VALIDATION_ERROR", errs)
		return
	}

	view, err := h.service.Open(requestContext(c), actor, req.LeadID)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, view)
}

// Get godoc
// @Summary Get a lead form session
// @Tags LeadSessions
// @Security BearerAuth
// @Param id path string true "Session ID"
// @Success 200 {object} map[string]interface{}
// @Router /lead-sessions/{id} [get]
func (h *Handler) Get(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}
	view, err := h.service.View(c.Param("id"), actor)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, view)
}

// Close godoc
// @Summary Discard a lead form session
// @Tags LeadSessions
// @Security BearerAuth
// @Param id path string true "Session ID"
// @Success 200 {object} map[string]interface{}
// @Router /lead-sessions/{id} [delete]
func (h *Handler) Close(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}
	if err := h.service.Close(c.Param("id"), actor); err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "Session closed"})
}

// ---- Draft endpoints ----

// Select godoc
// @Summary Choose the bank or the new-lead form
// @Tags LeadSessions
// @Security BearerAuth
// @Param id path string true "Session ID"
// @Param body body SelectionRequest true "Selection"
// @Success 200 {object} map[string]interface{}
// @Router /lead-sessions/{id}/selection [put]
func (h *Handler) Select(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}
	var req SelectionRequest
	if !bindJSON(c, &req) {
		return
	}
	view, err := h.service.Select(requestContext(c), c.Param("id"), actor, req.Selection)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, view)
}

// EditField godoc
// @Summary Set a form field
// @Tags LeadSessions
// @Security BearerAuth
// @Param id path string true "Session ID"
// @Param body body FieldRequest true "Field"
// @Success 200 {object} map[string]interface{}
// @Router /lead-sessions/{id}/fields [patch]
func (h *Handler) EditField(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}
	var req FieldRequest
	if !bindJSON(c, &req) {
		return
	}
	view, err := h.service.EditField(c.Param("id"), actor, req.Key, req.Value)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, view)
}

// SetAssignment godoc
// @Summary Assign the lead to an agent, sub-agent or bank
// @Tags LeadSessions
// @Security BearerAuth
// @Param id path string true "Session ID"
// @Param body body AssignmentRequest true "Assignment"
// @Success 200 {object} map[string]interface{}
// @Router /lead-sessions/{id}/assignment [put]
func (h *Handler) SetAssignment(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}
	var req AssignmentRequest
	if !bindJSON(c, &req) {
		return
	}
	view, err := h.service.SetAssignment(c.Param("id"), actor, req)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, view)
}

// ---- Document endpoints ----

// UploadDocument godoc
// @Summary Upload a document for the lead
// @Tags LeadSessions
// @Security BearerAuth
// @Accept multipart/form-data
// @Param id path string true "Session ID"
// @Param file formData file true "Document"
// @Param documentType formData string true "Document type key"
// @Param description formData string false "Description"
// @Success 200 {object} map[string]interface{}
// @Router /lead-sessions/{id}/documents [post]
func (h *Handler) UploadDocument(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}
	var req UploadRequest
	if err := c.ShouldBind(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}
	if errs := validator.Validate(req); errs != nil {
		response.CustomError(c, http.StatusBadRequest, "VALIDATION_ERROR", errs)
		return
	}
	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.Error(c, http.StatusBadRequest, "FILE_REQUIRED", "File is required")
		return
	}

	view, err := h.service.UploadDocument(requestContext(c), c.Param("id"), actor, req, fileHeader)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, view)
}

// RemoveDocument godoc
// @Summary Remove an uploaded document from the draft
// @Tags LeadSessions
// @Security BearerAuth
// @Param id path string true "Session ID"
// @Param index path int true "Document index"
// @Success 200 {object} map[string]interface{}
// @Router /lead-sessions/{id}/documents/{index} [delete]
func (h *Handler) RemoveDocument(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_INDEX", "Document index must be a number")
		return
	}
	view, err := h.service.RemoveDocument(c.Param("id"), actor, index)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, view)
}

// ---- Submission endpoints ----

// Validate godoc
// @Summary Check the draft without submitting
// @Tags LeadSessions
// @Security BearerAuth
// @Param id path string true "Session ID"
// @Success 200 {object} map[string]interface{}
// @Router /lead-sessions/{id}/validate [post]
func (h *Handler) Validate(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}
	res, err := h.service.Validate(c.Param("id"), actor)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, res)
}

// Submit godoc
// @Summary Create or update the lead
// @Tags LeadSessions
// @Security BearerAuth
// @Param id path string true "Session ID"
// @Success 200 {object} map[string]interface{}
// @Failure 422 {object} map[string]interface{}
// @Failure 502 {object} map[string]interface{}
// @Router /lead-sessions/{id}/submit [post]
func (h *Handler) Submit(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}
	saved, err := h.service.Submit(requestContext(c), c.Param("id"), actor)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, saved)
}

// Preview godoc
// @Summary Render and check a lead form without a session
// @Tags LeadForms
// @Security BearerAuth
// @Param body body PreviewRequest true "Schema and draft"
// @Success 200 {object} map[string]interface{}
// @Router /lead-forms/preview [post]
func (h *Handler) Preview(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}
	var req PreviewRequest
	if !bindJSON(c, &req) {
		return
	}
	res, err := h.service.Preview(actor, req)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, res)
}

// ListSubmissions godoc
// @Summary List journaled submissions
// @Tags LeadSubmissions
// @Security BearerAuth
// @Param actorId query string false "Actor"
// @Param status query string false "succeeded or failed"
// @Param limit query int false "Limit (default 50)"
// @Param offset query int false "Offset"
// @Success 200 {object} map[string]interface{}
// @Router /lead-submissions [get]
func (h *Handler) ListSubmissions(c *gin.Context) {
	f := domain.SubmissionFilter{
		ActorID: c.Query("actorId"),
		Status:  domain.SubmissionStatus(c.Query("status")),
		Limit:   50,
	}
	if l, err := strconv.Atoi(c.Query("limit")); err == nil && l > 0 && l <= 100 {
		f.Limit = l
	}
	if o, err := strconv.Atoi(c.Query("offset")); err == nil && o >= 0 {
		f.Offset = o
	}

	items, total, err := h.service.ListSubmissions(c.Request.Context(), f)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{
		"items":  items,
		"total":  total,
		"limit":  f.Limit,
		"offset": f.Offset,
	})
}

// ---- Live channel ----

// Live godoc
// @Summary Follow and edit a session over websocket
// @Tags LeadSessions
// @Param id path string true "Session ID"
// @Param token query string true "Bearer token"
// @Router /lead-sessions/{id}/live [get]
func (h *Handler) Live(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}
	id := c.Param("id")
	view, err := h.service.View(id, actor)
	if err != nil {
		handleError(c, err)
		return
	}

	conn, err := h.hub.Upgrade(c.Writer, c.Request)
	if err != nil {
		return
	}
	ctx := requestContext(c)
	h.hub.ServeWS(conn, id, view, func(m LiveMessage) error {
		return h.dispatch(ctx, id, actor, m)
	})
}

func (h *Handler) dispatch(ctx context.Context, id string, actor lead.Actor, m LiveMessage) error {
	var err error
	switch m.Type {
	case "edit":
		_, err = h.service.EditField(id, actor, m.Key, m.Value)
	case "select":
		_, err = h.service.Select(ctx, id, actor, m.Selection)
	case "assign":
		_, err = h.service.SetAssignment(id, actor, AssignmentRequest{
			Agent:      m.Agent,
			SubAgent:   m.SubAgent,
			AssignBank: m.AssignBank,
		})
	default:
		err = ErrUnknownMessage
	}
	return err
}

// ---- Helpers ----

func mustActor(c *gin.Context) (lead.Actor, bool) {
	actor := lead.Actor{
		ID:    c.GetString(middleware.KeyUserID),
		Role:  lead.Role(c.GetString(middleware.KeyRole)),
		Name:  c.GetString(middleware.KeyUserName),
		Email: c.GetString(middleware.KeyUserEmail),
	}
	if actor.ID == "" || actor.Role == "" {
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
		return lead.Actor{}, false
	}
	return actor, true
}

// requestContext carries the caller's bearer token to backend calls.
func requestContext(c *gin.Context) context.Context {
	return backend.WithToken(c.Request.Context(), c.GetString(middleware.KeyToken))
}

func bindJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return false
	}
	if errs := validator.Validate(req); errs != nil {
		response.CustomError(c, http.StatusBadRequest, "VALIDATION_ERROR", errs)
		return false
	}
	return true
}

func handleError(c *gin.Context, err error) {
	var verrs lead.ValidationErrors
	if errors.As(err, &verrs) {
		response.ErrorWithDetails(c, http.StatusUnprocessableEntity, "VALIDATION_ERROR", verrs.First(), []string(verrs))
		return
	}
	var subErr *SubmissionError
	if errors.As(err, &subErr) {
		_ = c.Error(err)
		response.Error(c, http.StatusBadGateway, "SUBMISSION_FAILED", subErr.Error())
		return
	}

	switch {
	case errors.Is(err, ErrSessionNotFound):
		response.Error(c, http.StatusNotFound, "SESSION_NOT_FOUND", "Form session not found")
	case errors.Is(err, ErrSessionBusy):
		response.Error(c, http.StatusConflict, "SESSION_BUSY", "Wait for uploads to finish before submitting")
	case errors.Is(err, domain.ErrDuplicateSubmission):
		response.Error(c, http.StatusConflict, "DUPLICATE_SUBMISSION", "An identical lead was already submitted")
	case errors.Is(err, lead.ErrLeadNotFound):
		response.Error(c, http.StatusNotFound, "LEAD_NOT_FOUND", "Lead not found")
	case errors.Is(err, lead.ErrUnknownField):
		response.Error(c, http.StatusBadRequest, "UNKNOWN_FIELD", "Field is not part of this form")
	case errors.Is(err, lead.ErrFieldNotEditable):
		response.Error(c, http.StatusForbidden, "FIELD_NOT_EDITABLE", "You cannot change this field")
	case errors.Is(err, lead.ErrInvalidSchema), errors.Is(err, lead.ErrSchemaMissing):
		response.Error(c, http.StatusBadRequest, "INVALID_SCHEMA", err.Error())
	case errors.Is(err, ErrUnknownDocumentType):
		response.Error(c, http.StatusBadRequest, "UNKNOWN_DOCUMENT_TYPE", "Document type is not requested by this form")
	case errors.Is(err, ErrDocumentNotFound):
		response.Error(c, http.StatusNotFound, "DOCUMENT_NOT_FOUND", "Document not found")
	case errors.Is(err, upload.ErrFileTooLarge):
		response.Error(c, http.StatusRequestEntityTooLarge, "UPLOAD_FAILED", err.Error())
	case upload.IsClientError(err):
		response.Error(c, http.StatusBadRequest, "UPLOAD_FAILED", err.Error())
	case errors.Is(err, upload.ErrUploadFailed):
		_ = c.Error(err)
		response.Error(c, http.StatusBadGateway, "UPLOAD_FAILED", "Upload failed")
	case errors.Is(err, backend.ErrUnauthorized):
		response.Error(c, http.StatusUnauthorized, "BACKEND_UNAUTHORIZED", backend.Message(err))
	default:
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error")
	}
}
