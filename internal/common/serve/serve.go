package serve

import (
	"context"
	"net/http"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// ListenAndServe runs srv until it fails or ctx is cancelled, in which case the
// server is shut down gracefully.
func ListenAndServe(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return errors.WithMessagef(err, "error serving on %s", srv.Addr)
	case <-ctx.Done():
		log.Infof("Shutting down server on %s", srv.Addr)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return errors.WithMessagef(err, "error shutting down server on %s", srv.Addr)
		}
		return nil
	}
}
