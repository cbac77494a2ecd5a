// Package httpd implements the httpd command, which exposes the scraper over
// a small HTTP API so runs can be triggered and inspected remotely.
package httpd

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/jonesrussell/gotenders/cmd/common"
	"github.com/jonesrussell/gotenders/internal/domain"
	"github.com/jonesrussell/gotenders/internal/logger"
)

const shutdownTimeout = 10 * time.Second

// Command returns the httpd command.
func Command() *cobra.Command {
	return &cobra.Command{
		Use:   "httpd",
		Short: "Serve the scraper over HTTP",
		Long: `Httpd starts an HTTP server exposing a health check, a trigger
endpoint that runs a scrape, and the summary of the most recent run.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			deps, err := common.Setup(cmd)
			if err != nil {
				return err
			}
			return run(cmd.Context(), deps)
		},
	}
}

// server holds the API state: the shared dependencies and the last completed
// run. Runs are serialized; the portal does not tolerate parallel sessions.
type server struct {
	deps   *common.Deps
	logger logger.Interface

	mu      sync.Mutex
	running bool
	last    *domain.RunSummary
}

func run(ctx context.Context, deps *common.Deps) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log := deps.Logger.WithComponent("httpd")
	s := &server{deps: deps, logger: log}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/healthz", s.health)
	router.POST("/api/v1/runs", s.triggerRun)
	router.GET("/api/v1/runs/latest", s.latestRun)

	srv := &http.Server{
		Addr:    deps.Config.Server.Address,
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening", "address", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func (s *server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// triggerRun starts a scrape and blocks until it completes. A second trigger
// while one is in flight is refused rather than queued.
func (s *server) triggerRun(c *gin.Context) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		c.JSON(http.StatusConflict, gin.H{"error": "a run is already in progress"})
		return
	}
	s.running = true
	s.mu.Unlock()

	summary, err := common.RunScrape(c.Request.Context(), s.deps)

	s.mu.Lock()
	s.running = false
	if err == nil {
		s.last = summary
	}
	s.mu.Unlock()

	if err != nil {
		s.logger.WithError(err).Error("triggered scrape failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, summaryJSON(summary))
}

func (s *server) latestRun(c *gin.Context) {
	s.mu.Lock()
	last := s.last
	s.mu.Unlock()

	if last == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no completed runs"})
		return
	}
	c.JSON(http.StatusOK, summaryJSON(last))
}

func summaryJSON(summary *domain.RunSummary) gin.H {
	return gin.H{
		"run_id":         summary.RunID,
		"report_date":    summary.ReportDate,
		"pages_visited":  summary.PagesVisited,
		"rows_processed": summary.RowsProcessed,
		"rows_skipped":   summary.RowsSkipped,
		"rows_filtered":  summary.RowsFiltered,
		"inserted":       summary.Merge.Inserted,
		"duplicates":     summary.Merge.Duplicates,
		"rejected":       summary.Merge.Rejected,
		"elapsed":        summary.Elapsed.String(),
	}
}
