package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"bistrobook/api"
	"bistrobook/config"
	"bistrobook/internal/auth"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type Handlers struct {
	Auth     *api.AuthHandler
	Bookings *api.BookingHandler
	Orders   *api.OrderHandler
	Menu     *api.MenuHandler
	Tables   *api.TableHandler
}

// Run starts the HTTP server and blocks until the context is canceled or the
// server fails.
func Run(ctx context.Context, cfg *config.Config, tokens *auth.TokenManager, h Handlers, log *logrus.Logger) error {
	router := newRouter(tokens, h)

	srv := &http.Server{
		Addr:    cfg.HTTP.Address,
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	log.WithField("address", cfg.HTTP.Address).Info("http server started")

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	}
}

func newRouter(tokens *auth.TokenManager, h Handlers) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	h.Auth.Register(router.Group("/auth"))
	h.Bookings.Register(router.Group("/bookings"))
	h.Menu.Register(router.Group("/menu"))
	h.Tables.Register(router.Group("/tables"))

	// Orders take an optional identity: signed-in callers order against
	// their linked customer, everyone else supplies guest details.
	h.Orders.Register(router.Group("/orders", auth.Optional(tokens)))

	admin := router.Group("/admin", auth.Required(tokens))
	h.Menu.RegisterAdmin(admin.Group("/menu"))
	h.Tables.RegisterAdmin(admin.Group("/tables"))

	return router
}
