package controller

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"rasa-cafe/model"
	"rasa-cafe/report"
	"rasa-cafe/utils"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func (ctl *Controller) respondReportError(c *gin.Context, err error) {
	switch {
	case report.IsInvalid(err):
		badRequest(c, err.Error())
	case errors.Is(err, report.ErrReportNotFound):
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": err.Error()})
	case errors.Is(err, report.ErrNotConfigured):
		c.JSON(http.StatusServiceUnavailable, gin.H{"success": false, "error": "Reporting is not configured"})
	case errors.Is(err, report.ErrGenerationFailed):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"success": false, "error": "Could not build a valid query for this question"})
	default:
		ctl.serverError(c, "report failed", err)
	}
}

func (ctl *Controller) RunReport(c *gin.Context) {
	var req struct {
		Query string `json:"query"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid report request")
		return
	}

	res, err := ctl.Reports.Run(c.Request.Context(), req.Query)
	if err != nil {
		ctl.respondReportError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": res})
}

func (ctl *Controller) SaveReport(c *gin.Context) {
	admin, _ := utils.CurrentUser(c)
	var in report.SaveInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "Invalid report payload")
		return
	}

	saved, err := report.Save(c.Request.Context(), ctl.DB, admin.ID, in)
	if err != nil {
		ctl.respondReportError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "message": "Report saved", "data": saved})
}

func (ctl *Controller) SavedReports(c *gin.Context) {
	admin, _ := utils.CurrentUser(c)
	reports, err := report.List(c.Request.Context(), ctl.DB, admin.ID)
	if err != nil {
		ctl.serverError(c, "list reports failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": reports})
}

func (ctl *Controller) savedResult(c *gin.Context) (*model.Report, *report.Result, bool) {
	admin, _ := utils.CurrentUser(c)
	ctx := c.Request.Context()
	saved, err := report.Get(ctx, ctl.DB, admin.ID, c.Param("id"))
	if err != nil {
		ctl.respondReportError(c, err)
		return nil, nil, false
	}
	res, err := report.Execute(ctx, ctl.DB, saved.SQLQuery, 0)
	if err != nil {
		ctl.respondReportError(c, err)
		return nil, nil, false
	}
	return saved, res, true
}

func (ctl *Controller) ReportResults(c *gin.Context) {
	saved, res, ok := ctl.savedResult(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": gin.H{"report": saved, "result": res}})
}

func (ctl *Controller) ExportReport(c *gin.Context) {
	saved, res, ok := ctl.savedResult(c)
	if !ok {
		return
	}
	c.Header("Content-Type", xlsxContentType)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "report-"+saved.ID+".xlsx"))
	c.Status(http.StatusOK)
	if err := report.WriteXLSX(c.Writer, res); err != nil {
		ctl.Log.Error("write report export failed", zap.Error(err))
	}
}

func (ctl *Controller) DeleteReport(c *gin.Context) {
	admin, _ := utils.CurrentUser(c)
	if err := report.Delete(c.Request.Context(), ctl.DB, admin.ID, c.Param("id")); err != nil {
		ctl.respondReportError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Report deleted"})
}
