package api

import (
	"context"
	"net/http"
	"unicode/utf8"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/safememefi/riskscan/internal/health"
	"github.com/safememefi/riskscan/internal/mentions"
)

// Poster publishes a standalone post and returns the new post's id.
type Poster interface {
	Post(ctx context.Context, text string) (string, error)
}

const maxTweetLen = 280

// Server exposes the manual-post and health endpoints.
type Server struct {
	echo   *echo.Echo
	poster Poster
	hlth   *health.Health
}

type tweetRequest struct {
	TweetText string `json:"tweetText"`
}

type tweetResponse struct {
	Success  bool   `json:"success"`
	TweetID  string `json:"tweetId,omitempty"`
	TweetURL string `json:"tweetUrl,omitempty"`
	Error    string `json:"error,omitempty"`
}

func NewServer(poster Poster, hlth *health.Health) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	s := &Server{echo: e, poster: poster, hlth: hlth}

	e.GET("/api/health", s.handleHealth)
	e.POST("/api/tweet", s.handleTweet)

	return s
}

// Start blocks serving HTTP until Shutdown is called.
func (s *Server) Start(addr string) error {
	err := s.echo.Start(addr)
	if err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, s.hlth.Snapshot(c.Request().Context()))
}

func (s *Server) handleTweet(c echo.Context) error {
	var req tweetRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, tweetResponse{Success: false, Error: "invalid request body"})
	}
	if req.TweetText == "" {
		return c.JSON(http.StatusBadRequest, tweetResponse{Success: false, Error: "tweetText is required"})
	}
	if utf8.RuneCountInString(req.TweetText) > maxTweetLen {
		return c.JSON(http.StatusBadRequest, tweetResponse{Success: false, Error: "tweetText exceeds 280 characters"})
	}

	id, err := s.poster.Post(c.Request().Context(), req.TweetText)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, tweetResponse{Success: false, Error: err.Error()})
	}

	return c.JSON(http.StatusOK, tweetResponse{
		Success:  true,
		TweetID:  id,
		TweetURL: mentions.TweetURL(id),
	})
}
