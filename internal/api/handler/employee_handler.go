package handler

import (
	"bytes"
	"errors"
	"io"
	"net/http"

	"employee_manager/internal/api/middleware"
	"employee_manager/internal/app/service"
	"employee_manager/internal/common"

	"github.com/go-chi/chi/v5"
)

type EmployeeHandler struct {
	employeeService *service.EmployeeService
	maxUploadBytes  int64
}

func NewEmployeeHandler(es *service.EmployeeService, maxUploadBytes int64) *EmployeeHandler {
	return &EmployeeHandler{employeeService: es, maxUploadBytes: maxUploadBytes}
}

func (h *EmployeeHandler) RegisterRoutes(r chi.Router) {
	r.Get("/employees", h.list)
	r.Get("/employees/search", h.search)
	r.Get("/employees/{employeeID}", h.get)

	// Mutations require a valid token; reads stay public.
	r.Group(func(protected chi.Router) {
		protected.Use(middleware.Authenticator)
		protected.Post("/employees", h.create)
		protected.Put("/employees/{employeeID}", h.update)
		protected.Delete("/employees", h.del)
	})
}

func (h *EmployeeHandler) list(w http.ResponseWriter, r *http.Request) {
	employees, err := h.employeeService.List(r.Context())
	if err != nil {
		common.RespondWithDomainError(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, employees)
}

func (h *EmployeeHandler) create(w http.ResponseWriter, r *http.Request) {
	if err := h.parseMultipart(w, r); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	upload, cleanup, err := h.formUpload(r)
	if err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid file upload")
		return
	}
	defer cleanup()

	req := service.CreateEmployeeRequest{
		FirstName:     r.FormValue("first_name"),
		LastName:      r.FormValue("last_name"),
		Email:         r.FormValue("email"),
		Position:      r.FormValue("position"),
		Salary:        r.FormValue("salary"),
		DateOfJoining: r.FormValue("date_of_joining"),
		Department:    r.FormValue("department"),
	}

	resp, err := h.employeeService.Create(r.Context(), req, upload)
	if err != nil {
		common.RespondWithDomainError(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusCreated, resp)
}

func (h *EmployeeHandler) get(w http.ResponseWriter, r *http.Request) {
	emp, err := h.employeeService.GetByID(r.Context(), chi.URLParam(r, "employeeID"))
	if err != nil {
		common.RespondWithDomainError(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, emp)
}

func (h *EmployeeHandler) update(w http.ResponseWriter, r *http.Request) {
	if err := h.parseMultipart(w, r); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	upload, cleanup, err := h.formUpload(r)
	if err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid file upload")
		return
	}
	defer cleanup()

	req := service.UpdateEmployeeRequest{
		FirstName:     formValue(r, "first_name"),
		LastName:      formValue(r, "last_name"),
		Email:         formValue(r, "email"),
		Position:      formValue(r, "position"),
		Salary:        formValue(r, "salary"),
		DateOfJoining: formValue(r, "date_of_joining"),
		Department:    formValue(r, "department"),
	}

	resp, err := h.employeeService.Update(r.Context(), chi.URLParam(r, "employeeID"), req, upload)
	if err != nil {
		common.RespondWithDomainError(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, resp)
}

func (h *EmployeeHandler) del(w http.ResponseWriter, r *http.Request) {
	if err := h.employeeService.Delete(r.Context(), r.URL.Query().Get("eid")); err != nil {
		common.RespondWithDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *EmployeeHandler) search(w http.ResponseWriter, r *http.Request) {
	employees, err := h.employeeService.Search(
		r.Context(),
		r.URL.Query().Get("department"),
		r.URL.Query().Get("position"),
	)
	if err != nil {
		common.RespondWithDomainError(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, employees)
}

func (h *EmployeeHandler) parseMultipart(w http.ResponseWriter, r *http.Request) error {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	return r.ParseMultipartForm(h.maxUploadBytes)
}

// formUpload extracts the optional profile picture from the request. The
// content type is sniffed from the leading bytes rather than trusted from
// the part header.
func (h *EmployeeHandler) formUpload(r *http.Request) (*service.FileUpload, func(), error) {
	noop := func() {}

	file, header, err := r.FormFile("profile_picture")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, noop, nil
		}
		return nil, noop, err
	}

	sniff := make([]byte, 512)
	n, err := io.ReadFull(file, sniff)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		file.Close()
		return nil, noop, err
	}

	upload := &service.FileUpload{
		OriginalName: header.Filename,
		ContentType:  http.DetectContentType(sniff[:n]),
		Content:      io.MultiReader(bytes.NewReader(sniff[:n]), file),
	}
	return upload, func() { file.Close() }, nil
}

// formValue reports a field as present only if the form actually carried it,
// so partial updates can tell "absent" from "empty".
func formValue(r *http.Request, key string) *string {
	if r.MultipartForm == nil {
		return nil
	}
	values, ok := r.MultipartForm.Value[key]
	if !ok || len(values) == 0 {
		return nil
	}
	return &values[0]
}
