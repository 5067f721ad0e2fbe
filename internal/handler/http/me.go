package http

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-backend-go/internal/handler/http/response"
)

// MeHandler serves the self-service routes of the employee linked to the caller.
type MeHandler interface {
	GetProfile(w http.ResponseWriter, r *http.Request)
	UpdateProfile(w http.ResponseWriter, r *http.Request)
	GetTeam(w http.ResponseWriter, r *http.Request)
	ListPayrolls(w http.ResponseWriter, r *http.Request)
	DownloadPayslip(w http.ResponseWriter, r *http.Request)
}

type meHandlerImpl struct {
	employeeService employee.EmployeeService
	payrollService  payroll.PayrollService
}

func NewMeHandler(employeeService employee.EmployeeService, payrollService payroll.PayrollService) MeHandler {
	return &meHandlerImpl{
		employeeService: employeeService,
		payrollService:  payrollService,
	}
}

func (h *meHandlerImpl) GetProfile(w http.ResponseWriter, r *http.Request) {
	result, err := h.employeeService.GetMyProfile(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *meHandlerImpl) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req employee.UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("UpdateProfile decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	result, err := h.employeeService.UpdateMyProfile(r.Context(), req)
	if err != nil {
		slog.Error("UpdateProfile service error", "error", err)
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Profile updated successfully", result)
}

func (h *meHandlerImpl) GetTeam(w http.ResponseWriter, r *http.Request) {
	result, err := h.employeeService.GetMyTeam(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *meHandlerImpl) ListPayrolls(w http.ResponseWriter, r *http.Request) {
	result, err := h.payrollService.ListMine(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *meHandlerImpl) DownloadPayslip(w http.ResponseWriter, r *http.Request) {
	id, ok := payrollIDParam(w, r)
	if !ok {
		return
	}

	writePayslip(w, func(buf *bytes.Buffer) (string, error) {
		return h.payrollService.WriteMyPayslip(r.Context(), id, buf)
	})
}
