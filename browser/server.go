package browser

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/jrsteele09/go-festival-companion/internal/config"
	"github.com/jrsteele09/go-festival-companion/proximity"
	"github.com/rs/zerolog/log"
)

// ProximityController is the part of the proximity engine the bridge exposes to pages
type ProximityController interface {
	Status() proximity.Status
	Check(ctx context.Context) bool
	ClearNotification(id string)
	ClearAll()
}

// Server is the local HTTP endpoint browser pages talk to: the websocket
// bridge plus a small proximity API.
type Server struct {
	env    string
	mux    *http.ServeMux
	routes []string
	config config.Config
	hub    *Hub
	engine ProximityController
}

func NewServer(c config.Config, hub *Hub, engine ProximityController) *Server {
	s := &Server{
		env:    c.GetEnv(),
		mux:    http.NewServeMux(),
		config: c,
		hub:    hub,
		engine: engine,
	}
	s.initRoutes()
	s.logRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) RegisterRouteHandler(pattern string, handler http.Handler) {
	s.routes = append(s.routes, pattern)
	s.mux.Handle(pattern, handler)
}

func (s *Server) RegisterRouteFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, handler)
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return
	}
	for _, route := range s.routes {
		parts := strings.SplitN(route, " ", 2)
		if len(parts) > 1 {
			logRoute(parts[0], parts[1])
		} else {
			logRoute("", parts[0])
		}
	}
}

func logRoute(method, path string) {
	paddedMethod := fmt.Sprintf(" %-7s", method)
	color, ok := methodColors[method]
	if !ok {
		color = Gray
	}
	log.Debug().Msgf("[%-19s] %s", color+paddedMethod+ResetColor, path)
}
