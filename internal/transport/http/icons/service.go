package icons

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"ico-builder-go/internal/domain/artifact"
	"ico-builder-go/internal/domain/icon"
	"ico-builder-go/internal/platform/errors"
	"ico-builder-go/internal/platform/logging"
	httptransport "ico-builder-go/internal/transport/http"
)

const (
	formFiles = "files"
	formName  = "name"
	// multipartMemory is kept in RAM before spilling parts to temp files.
	multipartMemory = 32 << 20
)

// Options wires the icons service.
type Options struct {
	Builder     *icon.Service
	Artifacts   *artifact.Manager
	Tokens      *artifact.DownloadToken
	MaxFileSize int64
	MaxFiles    int
	Logger      *logging.Logger
}

// Service exposes icon validation, building and artifact download over HTTP.
type Service struct {
	builder     *icon.Service
	artifacts   *artifact.Manager
	tokens      *artifact.DownloadToken
	maxFileSize int64
	maxFiles    int
	logger      *logging.Logger
}

func NewService(opts Options) (*Service, error) {
	if opts.Builder == nil {
		return nil, errors.New(errors.KindConfig, "icons.new", "icon builder is required")
	}
	if opts.Artifacts == nil {
		return nil, errors.New(errors.KindConfig, "icons.new", "artifact manager is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.Default
	}
	return &Service{
		builder:     opts.Builder,
		artifacts:   opts.Artifacts,
		tokens:      opts.Tokens,
		maxFileSize: opts.MaxFileSize,
		maxFiles:    opts.MaxFiles,
		logger:      logger,
	}, nil
}

// Register mounts the icon routes on router (normally /api).
func (s *Service) Register(_ context.Context, router *gin.RouterGroup) error {
	router.POST("/icons/validate", s.handleValidate)
	router.POST("/icons", s.handleBuild)
	router.GET("/icons", s.handleList)
	router.GET("/icons/:id", s.handleDownload)
	router.DELETE("/icons/:id", s.handleDelete)

	s.logger.InfoTag("HTTP", "icon routes registered")
	return nil
}

func (s *Service) handleValidate(c *gin.Context) {
	sources, ok := s.readSources(c)
	if !ok {
		return
	}
	sel := s.builder.Check(c.Request.Context(), sources)
	httptransport.RespondSuccess(c, http.StatusOK, newValidationView(sel.Candidates(), sel.Summary()), sel.Summary().Message)
}

func (s *Service) handleBuild(c *gin.Context) {
	sources, ok := s.readSources(c)
	if !ok {
		return
	}

	report, err := s.builder.Build(c.Request.Context(), c.PostForm(formName), sources)
	if err != nil {
		status := buildErrorStatus(err)
		var data interface{}
		if report != nil {
			data = newValidationView(report.Candidates, report.Summary)
		}
		message := err.Error()
		if stderrors.Is(err, icon.ErrEmptyInput) && report != nil {
			message = report.Summary.Message
		}
		httptransport.RespondError(c, status, message, data)
		return
	}

	art := report.Artifact
	if c.Query("download") == "1" || c.Query("download") == "true" {
		writeContainer(c, art.Name, art.Data)
		return
	}

	rec, err := s.artifacts.Save(c.Request.Context(), art)
	if err != nil {
		httptransport.RespondError(c, http.StatusInternalServerError, "failed to store icon", nil)
		return
	}
	view, err := s.view(rec)
	if err != nil {
		httptransport.RespondError(c, http.StatusInternalServerError, "failed to sign download link", nil)
		return
	}
	httptransport.RespondSuccess(c, http.StatusCreated, view, report.Summary.Message)
}

func (s *Service) handleList(c *gin.Context) {
	records, err := s.artifacts.List(c.Request.Context())
	if err != nil {
		httptransport.RespondError(c, http.StatusInternalServerError, "failed to list icons", nil)
		return
	}
	views := make([]ArtifactView, 0, len(records))
	for _, rec := range records {
		view, err := s.view(rec)
		if err != nil {
			httptransport.RespondError(c, http.StatusInternalServerError, "failed to sign download link", nil)
			return
		}
		views = append(views, view)
	}
	httptransport.RespondSuccess(c, http.StatusOK, views, "")
}

func (s *Service) handleDownload(c *gin.Context) {
	id := c.Param("id")
	if s.tokens.Enabled() {
		if err := s.tokens.Verify(c.Query("token"), id); err != nil {
			httptransport.RespondError(c, http.StatusUnauthorized, "invalid or expired download token", nil)
			return
		}
	}

	rec, err := s.artifacts.Get(c.Request.Context(), id)
	if err != nil {
		s.respondLookupError(c, id, err)
		return
	}
	writeContainer(c, rec.Name, rec.Data)
}

func (s *Service) handleDelete(c *gin.Context) {
	id := c.Param("id")
	if err := s.artifacts.Delete(c.Request.Context(), id); err != nil {
		s.respondLookupError(c, id, err)
		return
	}
	httptransport.RespondSuccess(c, http.StatusOK, gin.H{"id": id}, "deleted")
}

func (s *Service) respondLookupError(c *gin.Context, id string, err error) {
	if stderrors.Is(err, artifact.ErrNotFound) {
		httptransport.RespondError(c, http.StatusNotFound, fmt.Sprintf("icon %s not found", id), nil)
		return
	}
	s.logger.ErrorTag("HTTP", "artifact %s lookup failed: %v", id, err)
	httptransport.RespondError(c, http.StatusInternalServerError, "artifact store error", nil)
}

// readSources turns the multipart "files" field into loader sources.
func (s *Service) readSources(c *gin.Context) ([]icon.Source, bool) {
	if s.maxFileSize > 0 && s.maxFiles > 0 {
		limit := s.maxFileSize*int64(s.maxFiles) + multipartMemory
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
	}
	form, err := c.MultipartForm()
	if err != nil {
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			httptransport.RespondError(c, http.StatusRequestEntityTooLarge, "request body too large", nil)
			return nil, false
		}
		httptransport.RespondError(c, http.StatusBadRequest, "expected multipart form with files", nil)
		return nil, false
	}

	files := form.File[formFiles]
	if len(files) == 0 {
		httptransport.RespondError(c, http.StatusBadRequest, "select image files to include in the icon", nil)
		return nil, false
	}
	if s.maxFiles > 0 && len(files) > s.maxFiles {
		httptransport.RespondError(c, http.StatusRequestEntityTooLarge,
			fmt.Sprintf("too many files: %d (max %d)", len(files), s.maxFiles), nil)
		return nil, false
	}

	sources := make([]icon.Source, 0, len(files))
	for _, fh := range files {
		sources = append(sources, partSource(fh))
	}
	return sources, true
}

func partSource(fh *multipart.FileHeader) icon.Source {
	mediaType := fh.Header.Get("Content-Type")
	if mediaType == "" {
		mediaType = icon.MediaTypeFromName(fh.Filename)
	}
	return icon.Source{
		Name:      fh.Filename,
		MediaType: mediaType,
		Open: func(context.Context) (io.ReadCloser, error) {
			return fh.Open()
		},
	}
}

func (s *Service) view(rec artifact.Record) (ArtifactView, error) {
	link := "/api/icons/" + url.PathEscape(rec.ID)
	if s.tokens.Enabled() {
		token, err := s.tokens.Sign(rec.ID)
		if err != nil {
			return ArtifactView{}, err
		}
		link += "?token=" + url.QueryEscape(token)
	}
	return ArtifactView{
		ID:          rec.ID,
		Name:        rec.Name,
		Size:        rec.Size,
		Entries:     rec.Entries,
		CreatedAt:   rec.CreatedAt,
		ExpiresAt:   rec.ExpiresAt,
		DownloadURL: link,
	}, nil
}

func buildErrorStatus(err error) int {
	switch {
	case stderrors.Is(err, icon.ErrEmptyInput), stderrors.Is(err, icon.ErrTooManyEntries):
		return http.StatusUnprocessableEntity
	case stderrors.Is(err, icon.ErrContainerTooLarge):
		return http.StatusRequestEntityTooLarge
	case stderrors.Is(err, context.Canceled), stderrors.Is(err, context.DeadlineExceeded):
		return http.StatusRequestTimeout
	default:
		return http.StatusInternalServerError
	}
}

func writeContainer(c *gin.Context, name string, data []byte) {
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	c.Data(http.StatusOK, icon.ContentType, data)
}
