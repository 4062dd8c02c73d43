// Copyright 2025 Raamsri Kumar <raam@tinkershack.in>
// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

package statusapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/northvault/zbackup/internal/common"
)

func registerReportRoutes(engine *gin.Engine, reportsDir string) {
	v1 := engine.Group("/api/v1")
	{
		v1.GET("/reports", func(c *gin.Context) {
			reports, err := ListReports(reportsDir)
			if err != nil {
				common.APIError(c, err)
				return
			}
			c.JSON(http.StatusOK, reports)
		})

		v1.GET("/reports/latest", func(c *gin.Context) {
			reports, err := ListReports(reportsDir)
			if err != nil {
				common.APIError(c, err)
				return
			}
			if len(reports) == 0 {
				c.JSON(http.StatusNotFound, gin.H{"error": "no reports yet"})
				return
			}
			c.JSON(http.StatusOK, reports[0])
		})

		v1.GET("/reports/:id", func(c *gin.Context) {
			r, err := LoadReport(reportsDir, c.Param("id"))
			if err != nil {
				common.APIError(c, err)
				return
			}
			c.JSON(http.StatusOK, r)
		})
	}
}
