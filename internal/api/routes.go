package api

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"prediction-form/internal/form"
	"prediction-form/internal/render"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

const pageTitle = "Prediction Form"

// Config defines server dependencies.
type Config struct {
	Predictor      form.Predictor
	Endpoint       string
	Sample         []float64
	Labels         []string
	AllowedOrigins []string
	MaxSessions    int
	SessionTTL     time.Duration
}

// Server wires HTTP handlers to per-session form controllers.
type Server struct {
	predictor      form.Predictor
	endpoint       string
	sample         []float64
	labels         []string
	allowedOrigins []string
	templates      *template.Template
	sessions       *sessionStore
}

// NewServer constructs the API server.
func NewServer(cfg Config) (*Server, error) {
	if cfg.Predictor == nil {
		return nil, errors.New("predictor required")
	}
	if _, err := form.SampleFields(cfg.Sample); err != nil {
		return nil, fmt.Errorf("sample: %w", err)
	}
	labels := cfg.Labels
	if len(labels) == 0 {
		labels = render.DefaultLabels()
	}
	if len(labels) != form.FieldCount {
		return nil, fmt.Errorf("labels: want %d, got %d", form.FieldCount, len(labels))
	}

	tmpl, err := template.ParseFS(templateFS, "templates/*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	server := &Server{
		predictor:      cfg.Predictor,
		endpoint:       cfg.Endpoint,
		sample:         append([]float64(nil), cfg.Sample...),
		labels:         append([]string(nil), labels...),
		allowedOrigins: cfg.AllowedOrigins,
		templates:      tmpl,
	}
	server.sessions = newSessionStore(cfg.MaxSessions, cfg.SessionTTL, server.newSession)
	return server, nil
}

// Close drops every session and its websocket clients.
func (s *Server) Close() {
	s.sessions.purge()
}

// Router configures gin routes.
func (s *Server) Router() (*gin.Engine, error) {
	r := gin.Default()
	r.SetHTMLTemplate(s.templates)

	corsCfg := cors.DefaultConfig()
	corsCfg.AllowCredentials = true
	if len(s.allowedOrigins) == 0 {
		corsCfg.AllowAllOrigins = true
		corsCfg.AllowCredentials = false
	} else {
		corsCfg.AllowOrigins = s.allowedOrigins
	}
	corsCfg.AllowHeaders = []string{"Origin", "Content-Type", "Accept"}
	corsCfg.AllowMethods = []string{"GET", "POST", "PUT", "OPTIONS"}
	r.Use(cors.New(corsCfg))

	r.GET("/", s.handleIndex)
	r.POST("/form", s.handleFormPost)

	api := r.Group("/api")
	{
		api.GET("/healthz", s.handleHealth)
		api.GET("/config", s.handleConfig)
		api.GET("/state", s.handleState)
		api.PUT("/fields/:index", s.handleUpdateField)
		api.POST("/sample", s.handleFillSample)
		api.POST("/reset", s.handleReset)
		api.POST("/submit", s.handleSubmit)
		api.GET("/stream", s.handleStream)
	}

	return r, nil
}

func (s *Server) newSession(id string) (*session, error) {
	store := form.NewStore()
	controller, err := form.NewController(store, s.predictor, s.sample)
	if err != nil {
		return nil, err
	}
	sess := &session{id: id, controller: controller, notifier: NewStateNotifier()}
	sess.unsubscribe = store.Subscribe(func(state form.State) {
		sess.notifier.Broadcast(StateEvent{Type: "state", State: s.stateDTO(state)})
	})
	return sess, nil
}

// session resolves the caller's session from the cookie, issuing a new one
// when needed.
func (s *Server) session(c *gin.Context) (*session, error) {
	id, _ := c.Cookie(sessionCookie)
	sess, created, err := s.sessions.get(strings.TrimSpace(id))
	if err != nil {
		return nil, err
	}
	if created {
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(sessionCookie, sess.id, 0, "/", "", false, true)
	}
	return sess, nil
}

func (s *Server) stateDTO(state form.State) StateDTO {
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, "status", render.Page(s.labels, state)); err != nil {
		logrus.WithError(err).Warn("render status fragment")
	}
	return StateFromModel(state, buf.String())
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleConfig(c *gin.Context) {
	c.JSON(http.StatusOK, ConfigResponse{
		Endpoint:   s.endpoint,
		FieldCount: form.FieldCount,
		Labels:     s.labels,
	})
}

func (s *Server) handleIndex(c *gin.Context) {
	sess, err := s.session(c)
	if err != nil {
		s.renderError(c, http.StatusInternalServerError, err)
		return
	}
	state := sess.controller.Store().State()
	c.HTML(http.StatusOK, "page", gin.H{
		"Title": pageTitle,
		"Page":  render.Page(s.labels, state),
	})
}

// handleFormPost serves the plain HTML form. Submissions block until the
// prediction call completes, then redirect back to the page.
func (s *Server) handleFormPost(c *gin.Context) {
	sess, err := s.session(c)
	if err != nil {
		s.renderError(c, http.StatusInternalServerError, err)
		return
	}
	ctrl := sess.controller

	switch action := strings.ToLower(strings.TrimSpace(c.PostForm("action"))); action {
	case "sample":
		ctrl.FillSample()
	case "reset":
		ctrl.Reset()
	case "", "submit":
		for i := 0; i < form.FieldCount; i++ {
			if value, ok := c.GetPostForm(render.FieldName(i)); ok {
				if _, err := ctrl.UpdateField(i, value); err != nil {
					s.renderError(c, http.StatusBadRequest, err)
					return
				}
			}
		}
		if err := ctrl.Submit(context.WithoutCancel(c.Request.Context())); err != nil {
			logrus.WithError(err).WithField("session", sess.id).Info("form submission failed")
		}
	default:
		s.renderError(c, http.StatusBadRequest, fmt.Errorf("unknown action %q", action))
		return
	}

	c.Redirect(http.StatusSeeOther, "/")
}

func (s *Server) handleState(c *gin.Context) {
	sess, err := s.session(c)
	if err != nil {
		s.renderError(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, s.stateDTO(sess.controller.Store().State()))
}

func (s *Server) handleUpdateField(c *gin.Context) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		s.renderError(c, http.StatusBadRequest, fmt.Errorf("invalid field index %q", c.Param("index")))
		return
	}
	var req FieldRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.renderError(c, http.StatusBadRequest, err)
		return
	}
	if req.Value == nil {
		s.renderError(c, http.StatusBadRequest, errors.New("value is required"))
		return
	}

	sess, err := s.session(c)
	if err != nil {
		s.renderError(c, http.StatusInternalServerError, err)
		return
	}
	state, err := sess.controller.UpdateField(index, *req.Value)
	if err != nil {
		s.renderError(c, http.StatusBadRequest, err)
		return
	}
	c.JSON(http.StatusOK, s.stateDTO(state))
}

func (s *Server) handleFillSample(c *gin.Context) {
	sess, err := s.session(c)
	if err != nil {
		s.renderError(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, s.stateDTO(sess.controller.FillSample()))
}

func (s *Server) handleReset(c *gin.Context) {
	sess, err := s.session(c)
	if err != nil {
		s.renderError(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, s.stateDTO(sess.controller.Reset()))
}

// handleSubmit starts a prediction and answers before it completes; the
// outcome is published on the session's stream.
func (s *Server) handleSubmit(c *gin.Context) {
	sess, err := s.session(c)
	if err != nil {
		s.renderError(c, http.StatusInternalServerError, err)
		return
	}
	ctrl := sess.controller

	if _, err := ctrl.SubmitAsync(context.WithoutCancel(c.Request.Context())); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, form.ErrInvalidFields) {
			status = http.StatusUnprocessableEntity
		}
		c.JSON(status, s.stateDTO(ctrl.Store().State()))
		return
	}
	logrus.WithField("session", sess.id).Debug("prediction submitted")
	c.JSON(http.StatusAccepted, s.stateDTO(ctrl.Store().State()))
}

func (s *Server) handleStream(c *gin.Context) {
	id, _ := c.Cookie(sessionCookie)
	sess, ok := s.sessions.lookup(strings.TrimSpace(id))
	if !ok {
		s.renderError(c, http.StatusUnauthorized, errors.New("no form session; load the page first"))
		return
	}

	upgrader := websocket.Upgrader{
		HandshakeTimeout:  5 * time.Second,
		EnableCompression: true,
		CheckOrigin: func(r *http.Request) bool {
			origin := strings.TrimSpace(r.Header.Get("Origin"))
			if origin == "" || len(s.allowedOrigins) == 0 {
				return true
			}
			for _, allowed := range s.allowedOrigins {
				if strings.EqualFold(origin, allowed) {
					return true
				}
			}
			return false
		},
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logrus.WithError(err).Warn("upgrade websocket")
		return
	}

	current := StateEvent{Type: "state", State: s.stateDTO(sess.controller.Store().State())}
	client := sess.notifier.Register(conn, current)
	logrus.WithFields(logrus.Fields{
		"remote":  conn.RemoteAddr().String(),
		"session": sess.id,
	}).Info("form websocket connected")
	defer sess.notifier.Unregister(client)

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if !websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logrus.WithField("remote", conn.RemoteAddr().String()).Info("form websocket closed")
			} else {
				logrus.WithError(err).Warn("form websocket unexpected close")
			}
			break
		}
	}
}

func (s *Server) renderError(c *gin.Context, status int, err error) {
	c.JSON(status, gin.H{"error": err.Error()})
}
