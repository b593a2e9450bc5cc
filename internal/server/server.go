// Package server exposes the question answering pipeline over HTTP.
package server

import (
	"context"
	"log"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/Yates-Labs/lectern/internal/orchestrator"
	"github.com/Yates-Labs/lectern/internal/session"
)

// Engine answers queries and reports catalog statistics. Satisfied by
// *orchestrator.Pipeline.
type Engine interface {
	Answer(ctx context.Context, query, sessionID string) (*orchestrator.Answer, error)
	Stats(ctx context.Context) (*orchestrator.CourseStats, error)
}

// Server is the HTTP front end: a query endpoint, a catalog analytics
// endpoint and optional static file serving for a web UI.
type Server struct {
	echo     *echo.Echo
	engine   Engine
	sessions *session.Store
}

// New creates the HTTP server. staticDir, when non-empty, is served at the
// site root.
func New(engine Engine, sessions *session.Store, staticDir string) *Server {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	s := &Server{echo: e, engine: engine, sessions: sessions}

	e.POST("/api/query", s.handleQuery)
	e.GET("/api/courses", s.handleCourses)
	if staticDir != "" {
		e.Static("/", staticDir)
	}

	return s
}

// Start blocks serving HTTP on the given address.
func (s *Server) Start(address string) error {
	return s.echo.Start(address)
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

type queryRequest struct {
	Query     string `json:"query"`
	SessionID string `json:"session_id"`
}

type sourceResponse struct {
	Text string `json:"text"`
	Link string `json:"link,omitempty"`
}

type queryResponse struct {
	Answer    string           `json:"answer"`
	Sources   []sourceResponse `json:"sources"`
	SessionID string           `json:"session_id"`
}

type coursesResponse struct {
	TotalCourses int      `json:"total_courses"`
	CourseTitles []string `json:"course_titles"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// handleQuery answers one question. Requests without a session ID get a
// fresh session so follow-ups can reference earlier exchanges.
func (s *Server) handleQuery(c echo.Context) error {
	var req queryRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request body"})
	}
	if strings.TrimSpace(req.Query) == "" {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "query is required"})
	}

	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = s.sessions.Create()
	}

	answer, err := s.engine.Answer(c.Request().Context(), req.Query, sessionID)
	if err != nil {
		log.Printf("[Server] Query failed: %v", err)
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: "unable to process request"})
	}

	sources := make([]sourceResponse, 0, len(answer.Sources))
	for _, source := range answer.Sources {
		sources = append(sources, sourceResponse{Text: source.Text, Link: source.Link})
	}

	return c.JSON(http.StatusOK, queryResponse{
		Answer:    answer.Text,
		Sources:   sources,
		SessionID: sessionID,
	})
}

// handleCourses reports catalog analytics.
func (s *Server) handleCourses(c echo.Context) error {
	stats, err := s.engine.Stats(c.Request().Context())
	if err != nil {
		log.Printf("[Server] Stats failed: %v", err)
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: "unable to load course statistics"})
	}

	return c.JSON(http.StatusOK, coursesResponse{
		TotalCourses: stats.TotalCourses,
		CourseTitles: stats.CourseTitles,
	})
}
