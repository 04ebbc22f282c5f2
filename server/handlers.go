package server

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/skillsenselab/scribe/errors"
	"github.com/skillsenselab/scribe/transcription"
	"github.com/skillsenselab/scribe/version"
)

// TranscriptResponse is the payload of a completed transcription request.
type TranscriptResponse struct {
	// Document is the rendered markdown document.
	Document string `json:"document"`
}

// TranscriptHandler serves the transcription endpoints.
type TranscriptHandler struct {
	service        *transcription.Service
	maxUploadBytes int64
}

// NewTranscriptHandler creates a handler around the transcription service.
func NewTranscriptHandler(service *transcription.Service, maxUploadBytes int64) *TranscriptHandler {
	return &TranscriptHandler{service: service, maxUploadBytes: maxUploadBytes}
}

// Register mounts the handler's routes.
func (h *TranscriptHandler) Register(r gin.IRouter) {
	api := r.Group("/api")
	api.GET("/health", h.health)
	api.POST("/transcripts", h.create)
}

func (h *TranscriptHandler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "version": version.Get().Version})
}

// create accepts a multipart media upload, runs it through the active
// provider, and returns the rendered document. The request stays open for
// the duration of the job.
func (h *TranscriptHandler) create(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		RespondWithError(c, apperrors.MissingField("file"))
		return
	}
	defer file.Close()

	if h.maxUploadBytes > 0 && header.Size > h.maxUploadBytes {
		RespondWithError(c, apperrors.InvalidInput("file", "upload exceeds the size limit"))
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		RespondWithError(c, apperrors.Internal(err))
		return
	}

	doc, err := h.service.Transcribe(c.Request.Context(), transcription.Request{
		FileName: header.Filename,
		Data:     data,
		Language: c.PostForm("language"),
	})
	if err != nil {
		RespondWithError(c, err)
		return
	}

	RespondOK(c, TranscriptResponse{Document: doc})
}
