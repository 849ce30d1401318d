package handlers

import (
	"errors"
	"net/http"
	"slices"
	"strconv"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"deadgrid/server/persistence"
	"deadgrid/server/services"
)

// Response codes in the JSON body of every HTTP answer.
const (
	codeSuccess    = 0
	codeBadRequest = 400
	codeNotFound   = 404
	codeInternal   = 500
)

// Response is the JSON body of every HTTP endpoint.
type Response struct {
	Code      int    `json:"code"`
	Msg       string `json:"msg"`
	Data      any    `json:"data,omitempty"`
	Timestamp int64  `json:"timestamp"`
}

func respond(c *gin.Context, status, code int, msg string, data any) {
	c.JSON(status, Response{
		Code:      code,
		Msg:       msg,
		Data:      data,
		Timestamp: time.Now().Unix(),
	})
}

// Deps are the services the router serves.
type Deps struct {
	Sessions       *services.SessionService
	Runs           *services.RunService
	Clients        *ClientManager
	Log            *logrus.Entry
	AllowedOrigins []string
}

// NewRouter wires the HTTP and WebSocket endpoints.
func NewRouter(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(d.Log))
	r.Use(cors.New(corsConfig(d.AllowedOrigins)))

	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(req *http.Request) bool {
			return originAllowed(d.AllowedOrigins, req.Header.Get("Origin"))
		},
	}

	r.GET("/ws", func(c *gin.Context) {
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			// Upgrade has already written the HTTP error.
			d.Log.WithError(err).Warn("websocket upgrade failed")
			return
		}
		HandleClientConnection(c.Request.Context(), conn, d.Sessions, d.Clients, d.Log)
	})

	r.GET("/healthz", func(c *gin.Context) {
		respond(c, http.StatusOK, codeSuccess, "ok", gin.H{
			"sessions": d.Sessions.Count(),
			"clients":  d.Clients.Count(),
		})
	})

	api := r.Group("/api")
	api.GET("/runs", func(c *gin.Context) {
		limit := 0
		if raw := c.Query("limit"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil {
				respond(c, http.StatusBadRequest, codeBadRequest, "limit must be an integer", nil)
				return
			}
			limit = n
		}
		runs, err := d.Runs.Top(c.Request.Context(), limit)
		if err != nil {
			d.Log.WithError(err).Error("load leaderboard")
			respond(c, http.StatusInternalServerError, codeInternal, "could not load runs", nil)
			return
		}
		respond(c, http.StatusOK, codeSuccess, "success", runs)
	})
	api.GET("/runs/:id", func(c *gin.Context) {
		run, err := d.Runs.Get(c.Request.Context(), c.Param("id"))
		if err != nil {
			if errors.Is(err, persistence.ErrNotFound) {
				respond(c, http.StatusNotFound, codeNotFound, "run not found", nil)
				return
			}
			d.Log.WithError(err).Error("load run")
			respond(c, http.StatusInternalServerError, codeInternal, "could not load run", nil)
			return
		}
		respond(c, http.StatusOK, codeSuccess, "success", run)
	})

	return r
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.DefaultConfig()
	cfg.AllowMethods = []string{http.MethodGet, http.MethodOptions}
	if len(origins) == 0 || slices.Contains(origins, "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}

// originAllowed checks a WebSocket handshake against the allowed origins.
// Requests without an Origin header come from non-browser clients.
func originAllowed(origins []string, origin string) bool {
	if origin == "" || len(origins) == 0 || slices.Contains(origins, "*") {
		return true
	}
	return slices.Contains(origins, origin)
}

func requestLogger(log *logrus.Entry) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.WithFields(logrus.Fields{
			"method":  c.Request.Method,
			"path":    c.Request.URL.Path,
			"status":  c.Writer.Status(),
			"latency": time.Since(start).String(),
			"client":  c.ClientIP(),
		}).Debug("http request")
	}
}
