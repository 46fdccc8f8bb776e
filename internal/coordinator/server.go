package coordinator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"SharedBoard/internal/geom"
	"SharedBoard/internal/render"
)

type Options struct {
	Presence  Presence
	Publisher Publisher
	Logger    *slog.Logger

	// PingPeriod is the websocket keepalive interval. It must be shorter
	// than the presence TTL.
	PingPeriod time.Duration

	// Size of images served by the render endpoint, in canvas units.
	CanvasWidth  int
	CanvasHeight int
}

type Server struct {
	hub      *Hub
	logger   *slog.Logger
	upgrader websocket.Upgrader
	width    int
	height   int
	ping     time.Duration
}

func NewServer(opt Options) *Server {
	if opt.Logger == nil {
		opt.Logger = slog.Default()
	}
	if opt.CanvasWidth <= 0 {
		opt.CanvasWidth = 1280
	}
	if opt.CanvasHeight <= 0 {
		opt.CanvasHeight = 800
	}
	return &Server{
		hub:    NewHub(opt.Presence, opt.Publisher, opt.Logger),
		logger: opt.Logger.With("component", "coordinator"),
		// desktop clients send no Origin; browsers are let through by CORS policy
		upgrader: websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }},
		width:    opt.CanvasWidth,
		height:   opt.CanvasHeight,
		ping:     opt.PingPeriod,
	}
}

func (s *Server) Hub() *Hub { return s.hub }

func (s *Server) Router() *gin.Engine {
	r := gin.New()
	// route on the escaped path so a room id may contain an escaped slash
	r.UseRawPath = true
	r.UnescapePathValues = true
	r.Use(s.requestLogger(), gin.Recovery())
	r.Use(cors.New(cors.Config{
		AllowOriginFunc:  func(origin string) bool { return true },
		AllowMethods:     []string{"GET", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true, "rooms": len(s.hub.Rooms())})
	})
	rooms := r.Group("/rooms/:room")
	rooms.GET("/ws", s.connect)
	rooms.GET("/snapshot", s.snapshot)
	rooms.GET("/render.png", s.renderPNG)
	return r
}

func (s *Server) connect(c *gin.Context) {
	roomID := c.Param("room")
	ws, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "err", err, "origin", c.Request.Header.Get("Origin"))
		return
	}
	conn := newConn(ws, s.hub, s.logger.With("room", roomID, "remote", c.Request.RemoteAddr), s.ping)
	conn.serve(c.Request.Context(), roomID)
}

func (s *Server) snapshot(c *gin.Context) {
	room, ok := s.hub.Lookup(c.Param("room"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "room not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"room": room.ID, "actions": room.Snapshot()})
}

// renderPNG replays the room server-side. Query: scale, dx, dy, w, h.
func (s *Server) renderPNG(c *gin.Context) {
	room, ok := s.hub.Lookup(c.Param("room"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "room not found"})
		return
	}
	t, err := transformFromQuery(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	w, errW := strconv.Atoi(c.DefaultQuery("w", strconv.Itoa(s.width)))
	h, errH := strconv.Atoi(c.DefaultQuery("h", strconv.Itoa(s.height)))
	if errW != nil || errH != nil || w <= 0 || h <= 0 || w > 8192 || h > 8192 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad image size"})
		return
	}

	raster := render.NewRaster(w, h, 1)
	if err := render.Replay(raster, room.Snapshot(), t, nil); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Header("Content-Type", "image/png")
	c.Status(http.StatusOK)
	if err := raster.EncodePNG(c.Writer); err != nil {
		s.logger.Warn("png encode failed", "room", room.ID, "err", err)
	}
}

func transformFromQuery(c *gin.Context) (geom.Transform, error) {
	t := geom.Identity()
	var err error
	parse := func(key string, dst *float64) {
		v := c.Query(key)
		if v == "" || err != nil {
			return
		}
		f, perr := strconv.ParseFloat(v, 64)
		if perr != nil {
			err = fmt.Errorf("bad %s: %w", key, perr)
			return
		}
		*dst = f
	}
	parse("scale", &t.Scale)
	parse("dx", &t.Offset.X)
	parse("dy", &t.Offset.Y)
	if err != nil {
		return t, err
	}
	if !t.Valid() {
		return t, errors.New("scale must be positive")
	}
	return t, nil
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Debug("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"took", time.Since(start))
	}
}

// ListenAndServe serves until ctx is done, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.Router()}
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("coordinator listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()
	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
