// internal/server/server.go
//
// HTTP server construction.
//
// Timeouts come from the `http` config section:
//
//   - ReadTimeout   abort slow-loris headers and bodies
//   - WriteTimeout  cap total response time, uploads included
//   - IdleTimeout   close idle keep-alives
//
// ReadHeaderTimeout follows ReadTimeout so a client cannot hold a socket
// open by trickling headers.
package server

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/ispora/ispora-api/internal/config"
)

// New constructs an *http.Server for handler.
func New(cfg config.HTTP, handler http.Handler, log *zap.SugaredLogger) *http.Server {
	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           handler,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
	}
	if log != nil {
		srv.ErrorLog = zap.NewStdLog(log.Desugar())
	}
	return srv
}
