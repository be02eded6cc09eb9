package api

import (
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"strconv"

	"github.com/gin-gonic/gin"

	"aurix/internal/models"
	"aurix/internal/session"
	"aurix/internal/workflow"
)

const (
	AppName    = "aurix-gateway"
	AppVersion = "0.1.0"
)

const defaultMaxStagedBytes = 10 << 20 // 10 MB

// Handler wires HTTP routes to the per-session workflow instances.
type Handler struct {
	sessions       *session.Registry
	maxStagedBytes int64
}

// NewHandler constructs a Handler instance.
func NewHandler(sessions *session.Registry, maxStagedBytes int64) *Handler {
	if maxStagedBytes <= 0 {
		maxStagedBytes = defaultMaxStagedBytes
	}
	return &Handler{
		sessions:       sessions,
		maxStagedBytes: maxStagedBytes,
	}
}

// RegisterRoutes attaches all HTTP routes to the router.
func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.GET("/health", h.health)

	api := router.Group("/api")
	api.GET("/chat/suggestions", h.chatSuggestions)
	api.POST("/sessions", h.createSession)

	sessionRoutes := api.Group("/sessions/:id")
	sessionRoutes.GET("", h.getSession)
	sessionRoutes.DELETE("", h.deleteSession)
	sessionRoutes.POST("/files", h.stageFile)
	sessionRoutes.POST("/files/drag", h.setDrag)
	sessionRoutes.DELETE("/files", h.removeFile)
	sessionRoutes.POST("/upload", h.startUpload)
	sessionRoutes.POST("/chat", h.submitChat)
	sessionRoutes.GET("/chat", h.getChat)
	sessionRoutes.PUT("/chat/draft", h.setDraft)
	sessionRoutes.GET("/notifications", h.getNotifications)
	sessionRoutes.POST("/notifications", h.pushNotification)
	sessionRoutes.POST("/notifications/toggle", h.toggleNotifications)
	sessionRoutes.POST("/notifications/read", h.markNotificationsRead)
	sessionRoutes.DELETE("/notifications/:notice_id", h.dismissNotification)
}

func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"app":     AppName,
		"version": AppVersion,
	})
}

func (h *Handler) session(c *gin.Context) (*session.Session, bool) {
	id := c.Param("id")
	s, ok := h.sessions.Get(id)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return nil, false
	}
	return s, true
}

func (h *Handler) createSession(c *gin.Context) {
	s := h.sessions.Create()
	c.JSON(http.StatusCreated, gin.H{"session_id": s.ID})
}

func (h *Handler) getSession(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"session_id":    s.ID,
		"upload":        s.Upload.Snapshot(),
		"chat":          h.chatPayload(s),
		"notifications": s.Notices.Snapshot(),
	})
}

func (h *Handler) deleteSession(c *gin.Context) {
	id := c.Param("id")
	h.sessions.Remove(id)
	c.Status(http.StatusNoContent)
}

// File staging: drops and picker selections both land here with identical
// replacement semantics. Accepted extensions (CSV/XLSX/XLS) are advisory
// only; enforcement, if any, belongs to the upload service.
func (h *Handler) stageFile(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	if err := c.Request.ParseMultipartForm(h.maxStagedBytes); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid multipart form"})
		return
	}
	header, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}
	if header.Size > h.maxStagedBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "file too large"})
		return
	}
	f, err := header.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "open file failed"})
		return
	}
	payload, err := io.ReadAll(f)
	_ = f.Close()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "read file failed"})
		return
	}
	mimeType := header.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = http.DetectContentType(payload)
	}
	staged := &models.StagedFile{
		Name:     filepath.Base(header.Filename),
		Size:     header.Size,
		MimeType: mimeType,
		Payload:  payload,
	}
	if err := s.Upload.Stage(staged); err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, s.Upload.Snapshot())
}

func (h *Handler) setDrag(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	var req struct {
		Active bool `json:"active"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if req.Active {
		s.Upload.DragEnter()
	} else {
		s.Upload.DragLeave()
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) removeFile(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	if err := s.Upload.Remove(); err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) startUpload(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	snapshot, err := s.Upload.Do(c.Request.Context())
	switch {
	case errors.Is(err, workflow.ErrUploadInFlight):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	case errors.Is(err, workflow.ErrNoStagedFile):
		// Not an error for the UI: nothing staged means nothing happens.
		c.JSON(http.StatusOK, s.Upload.Snapshot())
		return
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	switch snapshot.State {
	case models.UploadSucceeded:
		s.Notices.Push("Upload complete", "Your file was uploaded and queued for analysis.")
	case models.UploadFailed:
		s.Notices.Push("Upload failed", "Your file could not be uploaded. You can retry or remove it.")
	}
	c.JSON(http.StatusOK, snapshot)
}

func (h *Handler) submitChat(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	var req struct {
		Message string `json:"message"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	user, assistant, err := s.Chat.Submit(c.Request.Context(), req.Message)
	switch {
	case errors.Is(err, workflow.ErrEmptyInput):
		// Blank submissions are ignored, not failed.
		c.Status(http.StatusNoContent)
		return
	case errors.Is(err, workflow.ErrTurnInFlight):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	h.sessions.SyncTranscript(s)
	c.JSON(http.StatusOK, gin.H{
		"user_message": user,
		"ai_message":   assistant,
	})
}

func (h *Handler) getChat(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, h.chatPayload(s))
}

func (h *Handler) chatPayload(s *session.Session) gin.H {
	messages := s.Chat.Messages()
	if messages == nil {
		messages = make([]*models.Message, 0)
	}
	return gin.H{
		"messages":  messages,
		"in_flight": s.Chat.InFlight(),
		"draft":     s.Chat.Draft(),
	}
}

func (h *Handler) setDraft(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	var req struct {
		Text string `json:"text"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	s.Chat.SetDraft(req.Text)
	c.Status(http.StatusNoContent)
}

func (h *Handler) chatSuggestions(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"suggestions": workflow.SuggestedPrompts})
}

func (h *Handler) getNotifications(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, s.Notices.Snapshot())
}

func (h *Handler) pushNotification(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	var req struct {
		Title string `json:"title"`
		Body  string `json:"body"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Title == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "title is required"})
		return
	}
	notice := s.Notices.Push(req.Title, req.Body)
	c.JSON(http.StatusCreated, notice)
}

func (h *Handler) toggleNotifications(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	var req struct {
		Open bool `json:"open"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	s.Notices.SetOpen(req.Open)
	c.Status(http.StatusNoContent)
}

func (h *Handler) markNotificationsRead(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	s.Notices.MarkAllRead()
	c.Status(http.StatusNoContent)
}

func (h *Handler) dismissNotification(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	noticeID, err := strconv.ParseInt(c.Param("notice_id"), 10, 64)
	if err != nil || noticeID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid notice id"})
		return
	}
	if !s.Notices.Dismiss(noticeID) {
		c.JSON(http.StatusNotFound, gin.H{"error": "notice not found"})
		return
	}
	c.Status(http.StatusNoContent)
}
