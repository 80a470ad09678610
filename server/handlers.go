package server

import (
	"context"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/skillsenselab/callscribe/audio"
	apperrors "github.com/skillsenselab/callscribe/errors"
	"github.com/skillsenselab/callscribe/logger"
	"github.com/skillsenselab/callscribe/server/endpoint"
	"github.com/skillsenselab/callscribe/server/middleware"
	"github.com/skillsenselab/callscribe/session"
	"github.com/skillsenselab/callscribe/transcription"
	"github.com/skillsenselab/callscribe/validation"
)

// API exposes the transcription and annotation REST surface.
type API struct {
	svc      *transcription.Service
	sessions *session.Manager
	cfg      Config
	log      *logger.Logger
	limiter  *middleware.RateLimiter
}

// NewAPI creates the API handler set.
func NewAPI(svc *transcription.Service, sessions *session.Manager, cfg Config, log *logger.Logger) *API {
	a := &API{
		svc:      svc,
		sessions: sessions,
		cfg:      cfg,
		log:      log.WithComponent("api"),
	}
	if cfg.UploadsPerMinute > 0 {
		a.limiter = middleware.NewRateLimiter(middleware.RateLimitConfig{
			RequestsPerMinute: cfg.UploadsPerMinute,
			KeyFunc:           middleware.SessionBasedKey,
		})
	}
	return a
}

// Close stops the upload rate limiter's janitor, if one is running.
func (a *API) Close() {
	if a.limiter != nil {
		a.limiter.Stop()
	}
}

// Register mounts all API routes on the given router.
func (a *API) Register(r gin.IRouter) {
	api := r.Group("/api")

	api.POST("/sessions", a.createSession)
	api.DELETE("/sessions/:id", a.destroySession)

	if a.limiter != nil {
		api.POST("/sessions/:id/transcriptions", a.limiter.Middleware(), a.transcribe)
	} else {
		api.POST("/sessions/:id/transcriptions", a.transcribe)
	}

	api.POST("/sessions/:id/entries", a.saveEntry)
	api.GET("/sessions/:id/entries", a.listEntries)
	api.DELETE("/sessions/:id/entries", a.clearEntries)
	api.GET("/sessions/:id/entries/:index/export", a.exportEntry)

	api.GET("/models", a.listModels)
	api.GET("/languages", a.listLanguages)
}

// HealthChecker reports the availability of the configured speech backend.
func (a *API) HealthChecker() endpoint.HealthChecker {
	return func(ctx context.Context) []endpoint.ComponentHealth {
		ch := endpoint.ComponentHealth{
			Name:   "backend:" + a.svc.ProviderName(),
			Status: endpoint.StatusHealthy,
		}
		if !a.svc.ProviderAvailable(ctx) {
			ch.Status = endpoint.StatusUnhealthy
			ch.Message = "transcription backend unreachable"
		}
		return []endpoint.ComponentHealth{ch}
	}
}

type sessionResponse struct {
	SessionID string    `json:"session_id"`
	CreatedAt time.Time `json:"created_at"`
}

func (a *API) createSession(c *gin.Context) {
	s := a.sessions.Create()
	RespondCreated(c, sessionResponse{SessionID: s.ID, CreatedAt: s.CreatedAt})
}

func (a *API) destroySession(c *gin.Context) {
	id, err := a.sessionID(c)
	if err != nil {
		RespondWithError(c, err)
		return
	}
	if err := a.sessions.Destroy(id); err != nil {
		RespondWithError(c, err)
		return
	}
	RespondNoContent(c)
}

// transcriptionResponse is the transcript payload returned to the client.
type transcriptionResponse struct {
	Text        string                  `json:"text"`
	Language    string                  `json:"language,omitempty"`
	Duration    float64                 `json:"duration_seconds,omitempty"`
	Provider    string                  `json:"provider"`
	Fingerprint string                  `json:"fingerprint"`
	Segments    []transcription.Segment `json:"segments,omitempty"`
}

func (a *API) transcribe(c *gin.Context) {
	sess, err := a.session(c)
	if err != nil {
		RespondWithError(c, err)
		return
	}

	fileHeader, err := c.FormFile("audio")
	if err != nil {
		RespondWithError(c, apperrors.MissingField("audio"))
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		RespondWithError(c, apperrors.InvalidInput("audio", "could not open uploaded file"))
		return
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		RespondWithError(c, apperrors.InvalidInput("audio", "could not read uploaded file"))
		return
	}

	hint := c.PostForm("container")
	if hint == "" {
		hint = fileHeader.Header.Get("Content-Type")
	}

	blob := audio.Blob{
		Bytes:    data,
		Hint:     hint,
		Filename: fileHeader.Filename,
	}
	opts := transcription.Options{
		Model:    c.PostForm("model"),
		Language: c.PostForm("language"),
	}

	log := a.log.WithContext(c.Request.Context())
	start := time.Now()

	res, err := a.svc.Transcribe(c.Request.Context(), blob, opts)
	if err != nil {
		log.Warn("Transcription failed", logger.ErrorFields("transcribe", err), map[string]interface{}{
			logger.FieldSessionID: sess.ID,
			"filename":            fileHeader.Filename,
		})
		RespondWithError(c, err)
		return
	}

	sess.SetCurrent(fileHeader.Filename, res.Text)
	log.Info("Transcription completed", map[string]interface{}{
		logger.FieldSessionID:   sess.ID,
		logger.FieldFingerprint: res.Fingerprint,
		logger.FieldProvider:    res.Provider,
		logger.FieldDuration:    time.Since(start).Milliseconds(),
	})

	RespondOK(c, transcriptionResponse{
		Text:        res.Text,
		Language:    res.Language,
		Duration:    res.Duration,
		Provider:    res.Provider,
		Fingerprint: res.Fingerprint,
		Segments:    res.Segments,
	})
}

// saveEntryRequest is the annotated entry payload. All annotation fields are
// free-form; the transcription falls back to the session's current slot.
type saveEntryRequest struct {
	Filename      string `json:"filename" validate:"max=255"`
	Caller        string `json:"caller" validate:"max=128"`
	Address       string `json:"address" validate:"max=512"`
	Phone         string `json:"phone" validate:"max=64"`
	Note          string `json:"note" validate:"max=4096"`
	Transcription string `json:"transcription"`
}

func (a *API) saveEntry(c *gin.Context) {
	sess, err := a.session(c)
	if err != nil {
		RespondWithError(c, err)
		return
	}

	var req saveEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondWithError(c, apperrors.InvalidInput("body", "malformed JSON body"))
		return
	}
	if err := validation.Validate(req); err != nil {
		RespondWithError(c, err)
		return
	}

	text := req.Transcription
	filename := req.Filename
	if text == "" {
		curFilename, curText, ok := sess.Current()
		if !ok {
			RespondWithError(c, apperrors.MissingField("transcription"))
			return
		}
		text = curText
		if filename == "" {
			filename = curFilename
		}
	}

	entry := session.Entry{
		Filename:          filename,
		Caller:            req.Caller,
		Address:           req.Address,
		Phone:             req.Phone,
		Note:              req.Note,
		TranscriptionText: text,
		CreatedAt:         time.Now().UTC(),
	}
	sess.Store().Append(entry)

	a.log.Info("Entry saved", map[string]interface{}{
		logger.FieldSessionID: sess.ID,
		"entries":             sess.Store().Len(),
	})
	RespondCreated(c, entry)
}

func (a *API) listEntries(c *gin.Context) {
	sess, err := a.session(c)
	if err != nil {
		RespondWithError(c, err)
		return
	}
	entries := sess.Store().ListReverse()
	RespondOKWithMeta(c, entries, &Meta{Total: len(entries)})
}

func (a *API) clearEntries(c *gin.Context) {
	sess, err := a.session(c)
	if err != nil {
		RespondWithError(c, err)
		return
	}
	sess.Store().Clear()
	a.log.Info("Entries cleared", logger.Fields(logger.FieldSessionID, sess.ID))
	RespondNoContent(c)
}

func (a *API) exportEntry(c *gin.Context) {
	sess, err := a.session(c)
	if err != nil {
		RespondWithError(c, err)
		return
	}

	entry, err := a.resolveExportEntry(sess, c.Param("index"))
	if err != nil {
		RespondWithError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+entry.ExportFilename()+`"`)
	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(entry.ExportText()))
}

// resolveExportEntry maps an index path parameter to an entry. "current" or
// "-1" selects the session's unsaved transcript slot.
func (a *API) resolveExportEntry(sess *session.Session, indexParam string) (session.Entry, error) {
	if indexParam == "current" || indexParam == "-1" {
		filename, text, ok := sess.Current()
		if !ok {
			return session.Entry{}, apperrors.NotFound("transcription", "current")
		}
		return session.Entry{
			Filename:          filename,
			TranscriptionText: text,
			CreatedAt:         time.Now().UTC(),
		}, nil
	}

	idx, err := strconv.Atoi(indexParam)
	if err != nil || idx < 0 {
		return session.Entry{}, apperrors.InvalidInput("index", "index must be a non-negative integer, -1, or \"current\"")
	}
	entry, ok := sess.Store().Get(idx)
	if !ok {
		return session.Entry{}, apperrors.NotFound("entry", indexParam)
	}
	return entry, nil
}

type catalogResponse struct {
	Models  []transcription.ModelInfo `json:"models"`
	Default string                    `json:"default"`
}

func (a *API) listModels(c *gin.Context) {
	RespondOK(c, catalogResponse{
		Models:  transcription.Models,
		Default: transcription.DefaultModel,
	})
}

type languageCatalogResponse struct {
	Languages []transcription.LanguageInfo `json:"languages"`
	Default   string                       `json:"default"`
}

func (a *API) listLanguages(c *gin.Context) {
	RespondOK(c, languageCatalogResponse{
		Languages: transcription.Languages,
		Default:   transcription.DefaultLanguage,
	})
}

// sessionID extracts and validates the session ID path parameter.
func (a *API) sessionID(c *gin.Context) (string, error) {
	id, err := validation.ValidateUUID("session_id", c.Param("id"))
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// session resolves the session addressed by the request path.
func (a *API) session(c *gin.Context) (*session.Session, error) {
	id, err := a.sessionID(c)
	if err != nil {
		return nil, err
	}
	sess, err := a.sessions.Get(id)
	if err != nil {
		return nil, err
	}
	c.Request = c.Request.WithContext(
		logger.ContextWithSessionID(c.Request.Context(), sess.ID))
	return sess, nil
}
