package http

import (
	"github.com/gin-gonic/gin"
)

const defaultAddress = ":8080"

// Server wraps the gin engine serving the evaluation API.
type Server struct {
	Engine *gin.Engine
}

func NewServer(cfg RouterConfig) *Server {
	return &Server{Engine: NewRouter(cfg)}
}

// Run blocks serving on the given address, falling back to :8080 when
// none is configured.
func (s *Server) Run(address string) error {
	if address == "" {
		address = defaultAddress
	}
	return s.Engine.Run(address)
}
