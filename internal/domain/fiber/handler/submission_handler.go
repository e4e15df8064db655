package handler

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/fadilmartias/plan-analyzer/internal/dto"
	"github.com/fadilmartias/plan-analyzer/internal/extractor"
	"github.com/fadilmartias/plan-analyzer/internal/middleware"
	"github.com/fadilmartias/plan-analyzer/internal/model"
	"github.com/fadilmartias/plan-analyzer/internal/repository"
	"github.com/fadilmartias/plan-analyzer/internal/response"
	"github.com/fadilmartias/plan-analyzer/internal/usecase"
	"github.com/fadilmartias/plan-analyzer/internal/util"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

type SubmissionService interface {
	Submit(ctx context.Context, in usecase.SubmitInput) (*model.Submission, error)
	GetSubmission(ctx context.Context, id uuid.UUID) (*model.Submission, error)
	ListSubmissions(ctx context.Context, professorID uuid.UUID, page, pageSize int) ([]model.Submission, int64, error)
	Retry(ctx context.Context, submissionID, professorID uuid.UUID) error
	GetReport(ctx context.Context, submissionID, professorID uuid.UUID) (*model.Analysis, error)
}

type SubmissionHandler struct {
	uc SubmissionService
}

func NewSubmissionHandler(uc SubmissionService) *SubmissionHandler {
	return &SubmissionHandler{uc: uc}
}

func (h *SubmissionHandler) RegisterRoutes(app *fiber.App) {
	app.Post("/submissions", middleware.RateLimiter(10, 1*time.Minute), h.Submit)
	app.Get("/submissions/:id", h.Status)

	app.Get("/professor/submissions", middleware.RequireProfessor(), h.List)
	app.Post("/submissions/:id/retry", middleware.RequireProfessor(), h.Retry)
	app.Get("/api/analysis/:id", middleware.RequireProfessor(), h.Report)
}

func (h *SubmissionHandler) Submit(c *fiber.Ctx) error {
	in := usecase.SubmitInput{
		StudentName:  strings.TrimSpace(c.FormValue("student_name")),
		StudentEmail: strings.TrimSpace(c.FormValue("student_email")),
		ProjectTitle: strings.TrimSpace(c.FormValue("project_title")),
	}

	formErrors := map[string]string{}
	if in.StudentName == "" {
		formErrors["student_name"] = "required"
	}
	if in.ProjectTitle == "" {
		formErrors["project_title"] = "required"
	}
	professorID, err := uuid.Parse(c.FormValue("professor_id"))
	if err != nil {
		formErrors["professor_id"] = "must be a valid uuid"
	}
	file, fileErr := c.FormFile("file")
	if fileErr != nil {
		formErrors["file"] = "required"
	}
	if len(formErrors) > 0 {
		return util.FormErrorResponse(c, util.NewFormError("invalid submission", formErrors))
	}
	in.ProfessorID = professorID
	in.FileName = file.Filename

	f, err := file.Open()
	if err != nil {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Message: "cannot read uploaded file",
		}, err)
	}
	defer f.Close()
	if in.Content, err = io.ReadAll(f); err != nil {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Message: "cannot read uploaded file",
		}, err)
	}

	submission, err := h.uc.Submit(c.UserContext(), in)
	if err != nil {
		code := fiber.StatusInternalServerError
		message := "failed to submit business plan"
		if errors.Is(err, extractor.ErrUnsupportedFormat) || errors.Is(err, usecase.ErrFileTooLarge) || errors.Is(err, usecase.ErrEmptyFile) {
			code = fiber.StatusBadRequest
			message = err.Error()
		}
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Code:    code,
			Message: message,
		}, err)
	}

	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Code:    fiber.StatusCreated,
		Message: "Success submit business plan",
		Data:    dto.NewSubmissionDTO(submission),
	})
}

func (h *SubmissionHandler) Status(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return invalidID(c, err)
	}
	submission, err := h.uc.GetSubmission(c.UserContext(), id)
	if err != nil {
		return h.lookupError(c, err, "submission not found")
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Code:    fiber.StatusOK,
		Message: "Success get submission",
		Data:    dto.NewSubmissionStatusDTO(submission),
	})
}

func (h *SubmissionHandler) List(c *fiber.Ctx) error {
	page := c.QueryInt("page", 1)
	if page < 1 {
		page = 1
	}
	pageSize := c.QueryInt("page_size", defaultPageSize)
	if pageSize < 1 || pageSize > maxPageSize {
		pageSize = defaultPageSize
	}

	submissions, total, err := h.uc.ListSubmissions(c.UserContext(), middleware.ProfessorID(c), page, pageSize)
	if err != nil {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Message: "failed to list submissions",
		}, err)
	}

	data := make([]dto.SubmissionDTO, 0, len(submissions))
	for i := range submissions {
		data = append(data, dto.NewSubmissionDTO(&submissions[i]))
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Code:       fiber.StatusOK,
		Message:    "Success list submissions",
		Data:       data,
		Pagination: response.NewPagination(page, pageSize, total, len(data)),
	})
}

func (h *SubmissionHandler) Retry(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return invalidID(c, err)
	}
	if err := h.uc.Retry(c.UserContext(), id, middleware.ProfessorID(c)); err != nil {
		if errors.Is(err, usecase.ErrSubmissionBusy) {
			return util.ErrorResponse(c, util.ErrorResponseFormat{
				Code:    fiber.StatusConflict,
				Message: "submission is being processed",
			})
		}
		return h.lookupError(c, err, "submission not found")
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Code:    fiber.StatusAccepted,
		Message: "Success queue retry",
		Data:    fiber.Map{"id": id, "status": model.StatusPending},
	})
}

func (h *SubmissionHandler) Report(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return invalidID(c, err)
	}
	analysis, err := h.uc.GetReport(c.UserContext(), id, middleware.ProfessorID(c))
	if err != nil {
		return h.lookupError(c, err, "analysis not found")
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Code:    fiber.StatusOK,
		Message: "Success get analysis",
		Data:    dto.NewReportDTO(analysis),
	})
}

func (h *SubmissionHandler) lookupError(c *fiber.Ctx, err error, notFound string) error {
	if errors.Is(err, repository.ErrSubmissionNotFound) || errors.Is(err, repository.ErrAnalysisNotFound) {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Code:    fiber.StatusNotFound,
			Message: notFound,
		})
	}
	return util.ErrorResponse(c, util.ErrorResponseFormat{
		Message: "internal error",
	}, err)
}

func invalidID(c *fiber.Ctx, err error) error {
	return util.ErrorResponse(c, util.ErrorResponseFormat{
		Code:    fiber.StatusBadRequest,
		Message: "invalid id",
	}, err)
}
