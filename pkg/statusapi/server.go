/*
 * Copyright 2024-2025 Raamsri Kumar <raam@tinkershack.in>
 * Copyright 2024-2025 The StrataSTOR Authors and Contributors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     https://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Using http.Server directly instead of gin.Run() gives us graceful
// shutdown through the context passed to Start, instead of blocking
// forever — matters here since Start runs alongside a live backup/restore
// operation rather than as the program's sole purpose.

package statusapi

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stratastor/logger"
	"github.com/northvault/zbackup/config"
)

var srv *http.Server

// Start serves the read-only report API on port until ctx is cancelled.
func Start(ctx context.Context, port int, reportsDir string) error {
	l, err := logger.NewTag(config.NewLoggerConfig(config.GetConfig()), "statusapi")
	if err != nil {
		return err
	}

	cfg := config.GetConfig()
	switch cfg.Environment {
	case "prod", "production":
		gin.SetMode(gin.ReleaseMode)
	default:
		gin.SetMode(gin.DebugMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(LoggerMiddleware(l))
	engine.Use(ErrorHandler())

	engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})
	registerReportRoutes(engine, reportsDir)

	srv = &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: engine}

	errChan := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	select {
	case err := <-errChan:
		return fmt.Errorf("status api startup failed: %w", err)
	case <-ctx.Done():
		return Shutdown(ctx)
	}
}

// Shutdown gracefully stops the server started by Start.
func Shutdown(ctx context.Context) error {
	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}
