package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/FAHMIDA-78/copo/core/batch"
	"github.com/FAHMIDA-78/copo/core/user"
	spreadsheetsvc "github.com/FAHMIDA-78/copo/services/spreadsheet"
)

type batchApi struct {
	svc     *batch.Service
	userSvc *user.Service
}

func registerBatchAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *batch.Service, userSvc *user.Service) {
	api := batchApi{svc: svc, userSvc: userSvc}

	// the blank workbook is available to any authenticated user
	g.GET("/template", api.template, jwt)

	bg := g.Group("/batches", jwt)
	bg.POST("", api.create, teacherMiddleware())
	bg.GET("", api.query, teacherMiddleware())
	bg.GET("/:id", api.retrieve, teacherMiddleware())
	bg.GET("/:id/insights", api.insights, teacherMiddleware())
	bg.POST("/:id/reports", api.sendReports, teacherMiddleware())
	bg.DELETE("/:id", api.destroy, adminMiddleware())

	// students may fetch their own result; staff may fetch any
	bg.GET("/:id/students/:studentID", api.studentResult)
}

// Handlers

func (api *batchApi) template(ctx echo.Context) error {
	res := ctx.Response()
	res.Header().Set(echo.HeaderContentType, spreadsheetsvc.ContentType)
	res.Header().Set(echo.HeaderContentDisposition, `attachment; filename=`+spreadsheetsvc.TemplateFilename)
	res.WriteHeader(http.StatusOK)
	return spreadsheetsvc.WriteTemplate(res)
}

func (api *batchApi) create(ctx echo.Context) error {
	fh, err := ctx.FormFile("file")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "missing upload file")
	}
	f, err := fh.Open()
	if err != nil {
		return errors.Wrap(err, "opening upload file")
	}
	defer f.Close()

	up, err := spreadsheetsvc.Parse(f)
	if err != nil {
		return err
	}

	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	pb, err := api.svc.Process(up, claims.Subject)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, pb)
}

func (api *batchApi) query(ctx echo.Context) error {
	batches, err := api.svc.QueryAll()
	if err != nil {
		return errors.Wrap(err, "querying batches")
	}
	if batches == nil {
		batches = []batch.Batch{}
	}
	return ctx.JSON(http.StatusOK, batches)
}

func (api *batchApi) retrieve(ctx echo.Context) error {
	pb, err := api.svc.GetByID(ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, pb)
}

func (api *batchApi) insights(ctx echo.Context) error {
	pb, err := api.svc.GetByID(ctx.Param("id"))
	if err != nil {
		return err
	}
	if pb.Insights == nil {
		return echo.NewHTTPError(http.StatusNotFound, "no insights available for this batch")
	}
	return ctx.JSON(http.StatusOK, pb.Insights)
}

func (api *batchApi) studentResult(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	sr, err := api.svc.GetStudentResult(ctx.Param("id"), ctx.Param("studentID"))
	if err != nil {
		return err
	}

	// students only see results recorded under their own email
	if !(claims.IsTeacher || claims.IsAdmin) {
		if !claims.IsStudent || sr.Outcome.Record.Email != claims.Email {
			return errHttpNotFound
		}
	}
	return ctx.JSON(http.StatusOK, sr)
}

func (api *batchApi) destroy(ctx echo.Context) error {
	if _, err := api.svc.GetByID(ctx.Param("id")); err != nil {
		return err
	}
	if err := api.svc.Delete(ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting batch")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *batchApi) sendReports(ctx echo.Context) error {
	includeParents := ctx.QueryParam("parents") == "true"

	sent, err := api.svc.SendReports(ctx.Param("id"), includeParents)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, ReportsResponse{Sent: sent})
}

type ReportsResponse struct {
	Sent int `json:"sent"`
}
