package web

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/Fuwaaaaaa/Goodmorning-Tweet-AIScore/internal/evaluator"
	"github.com/Fuwaaaaaa/Goodmorning-Tweet-AIScore/internal/model"
	"github.com/Fuwaaaaaa/Goodmorning-Tweet-AIScore/internal/photo"
	"github.com/Fuwaaaaaa/Goodmorning-Tweet-AIScore/internal/session"
)

// analyzingRefresh is how often the analyzing page reloads itself.
const analyzingRefresh = 2

// ErrorResponse is the JSON body of a failed API call.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

type modeOption struct {
	Mode     model.EvaluationMode
	Info     model.ModeInfo
	Selected bool
}

type pageData struct {
	State      session.State
	Phase      string
	Pending    model.ModeInfo
	Modes      []modeOption
	Ranked     []model.RankedCategory
	Tier       model.Tier
	HasPreview bool
	Refresh    int
}

func newPageData(s session.State) pageData {
	p := pageData{
		State:      s,
		Phase:      s.Phase.String(),
		Pending:    s.Pending.Info(),
		HasPreview: s.Preview != nil && len(s.Preview.Data) > 0,
	}
	for _, m := range model.Modes() {
		p.Modes = append(p.Modes, modeOption{Mode: m, Info: m.Info(), Selected: m == s.Mode})
	}
	if s.Phase == session.PhaseAnalyzing {
		p.Refresh = analyzingRefresh
	}
	if s.Result != nil {
		p.Ranked = model.RankedCategories(s.Result)
		p.Tier = model.TierFor(s.Result.Score)
	}
	return p
}

// machine returns the caller's session, issuing a new cookie when needed.
func (s *Server) machine(c *gin.Context) *session.Machine {
	id, _ := c.Cookie(SessionCookie)
	newID, m, created := s.sessions.GetOrCreate(id, s.now())
	if created {
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(SessionCookie, newID, 0, "/", "", false, true)
	}
	return m
}

func (s *Server) index(c *gin.Context) {
	state := s.machine(c).State()
	c.Header("Cache-Control", "no-store")
	c.HTML(http.StatusOK, "index.html", newPageData(state))
}

func (s *Server) preview(c *gin.Context) {
	state := s.machine(c).State()
	if state.Preview == nil || len(state.Preview.Data) == 0 {
		c.Status(http.StatusNotFound)
		return
	}
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, state.Preview.MIMEType, state.Preview.Data)
}

func (s *Server) selectMode(c *gin.Context) {
	m := s.machine(c)
	if mode, err := model.ParseMode(c.PostForm("mode")); err == nil {
		m.Dispatch(c.Request.Context(), session.SelectMode{Mode: mode})
	}
	c.Redirect(http.StatusSeeOther, "/")
}

func (s *Server) reset(c *gin.Context) {
	s.machine(c).Dispatch(c.Request.Context(), session.Reset{})
	c.Redirect(http.StatusSeeOther, "/")
}

// analyze starts an analysis in the background and sends the browser back
// to the page, which shows progress until the session leaves Analyzing.
func (s *Server) analyze(c *gin.Context) {
	m := s.machine(c)
	if m.State().Phase != session.PhaseIdle {
		c.Redirect(http.StatusSeeOther, "/")
		return
	}

	img, err := s.readPhoto(c)
	switch {
	case errors.Is(err, http.ErrMissingFile):
		c.Redirect(http.StatusSeeOther, "/")
		return
	case err != nil:
		// The upload never became an image; record it as a failed attempt.
		m.Reject(c.Request.Context(), img, err)
		c.Redirect(http.StatusSeeOther, "/")
		return
	}

	ctx, cancel := s.analysisContext(context.WithoutCancel(c.Request.Context()))
	done, err := m.Start(ctx, s.analyzer, img)
	if err != nil {
		cancel()
		c.Redirect(http.StatusSeeOther, "/")
		return
	}
	go func() {
		<-done
		cancel()
	}()
	c.Redirect(http.StatusSeeOther, "/")
}

// apiAnalyze analyzes one photo synchronously, outside any browser session.
func (s *Server) apiAnalyze(c *gin.Context) {
	mode, err := model.ParseMode(c.PostForm("mode"))
	if err != nil {
		s.respondError(c, http.StatusBadRequest, "invalid mode", err)
		return
	}

	img, err := s.readPhoto(c)
	switch {
	case errors.Is(err, photo.ErrTooLarge):
		s.respondError(c, http.StatusRequestEntityTooLarge, "photo too large", err)
		return
	case err != nil:
		s.respondError(c, http.StatusBadRequest, "missing or unreadable photo", err)
		return
	}

	ctx, cancel := s.analysisContext(c.Request.Context())
	defer cancel()

	start := time.Now()
	result, err := s.analyzer.Analyze(ctx, img, mode)
	if err != nil {
		s.respondError(c, evaluator.StatusCode(err), session.GenericErrorMessage, err)
		return
	}

	s.log.WithFields(logrus.Fields{
		"mode":               mode,
		"score":              result.Score,
		"processing_time_ms": time.Since(start).Milliseconds(),
	}).Info("API analysis completed")
	c.JSON(http.StatusOK, result)
}

func (s *Server) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "available",
		"version": s.opts.Version,
		"time":    time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) readPhoto(c *gin.Context) (model.Image, error) {
	fh, err := c.FormFile("photo")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return model.Image{}, photo.ErrTooLarge
		}
		return model.Image{}, err
	}
	f, err := fh.Open()
	if err != nil {
		return model.Image{Name: fh.Filename}, err
	}
	defer f.Close()
	img, err := photo.Read(f, fh.Filename, s.opts.MaxUploadBytes)
	if err != nil {
		return model.Image{Name: fh.Filename}, err
	}
	return img, nil
}

func (s *Server) analysisContext(parent context.Context) (context.Context, context.CancelFunc) {
	if s.opts.RequestTimeout > 0 {
		return context.WithTimeout(parent, s.opts.RequestTimeout)
	}
	return context.WithCancel(parent)
}

// respondError logs err and replies with a message that never includes it.
func (s *Server) respondError(c *gin.Context, code int, message string, err error) {
	s.log.WithError(err).WithFields(logrus.Fields{
		"status_code": code,
		"kind":        evaluator.KindOf(err),
		"path":        c.Request.URL.Path,
		"ip":          c.ClientIP(),
	}).Warn("Request failed")

	c.AbortWithStatusJSON(code, ErrorResponse{
		Error:   http.StatusText(code),
		Message: message,
	})
}
