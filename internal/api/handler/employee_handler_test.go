package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"employee_manager/internal/app/service"
	"employee_manager/internal/common"
	"employee_manager/internal/common/security"
	"employee_manager/internal/domain/model"
	"employee_manager/internal/domain/repository"
	"employee_manager/internal/platform/config"
	"employee_manager/internal/platform/storage"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/jwtauth/v5"
)

type memEmployeeRepo struct {
	employees map[string]model.Employee
}

func (r *memEmployeeRepo) List(ctx context.Context) ([]model.Employee, error) {
	out := []model.Employee{}
	for _, emp := range r.employees {
		out = append(out, emp)
	}
	return out, nil
}

func (r *memEmployeeRepo) Create(ctx context.Context, emp *model.Employee) error {
	for _, existing := range r.employees {
		if existing.Email == emp.Email {
			return common.ConflictError("Employee with this email already exists")
		}
	}
	emp.CreatedAt = time.Now()
	emp.UpdatedAt = emp.CreatedAt
	r.employees[emp.ID] = *emp
	return nil
}

func (r *memEmployeeRepo) FindByID(ctx context.Context, id string) (*model.Employee, error) {
	emp, ok := r.employees[id]
	if !ok {
		return nil, common.NotFoundError("Employee not found")
	}
	return &emp, nil
}

func (r *memEmployeeRepo) Update(ctx context.Context, emp *model.Employee) error {
	if _, ok := r.employees[emp.ID]; !ok {
		return common.NotFoundError("Employee not found")
	}
	r.employees[emp.ID] = *emp
	return nil
}

func (r *memEmployeeRepo) Delete(ctx context.Context, id string) error {
	if _, ok := r.employees[id]; !ok {
		return common.NotFoundError("Employee not found")
	}
	delete(r.employees, id)
	return nil
}

func (r *memEmployeeRepo) Search(ctx context.Context, filter repository.SearchFilter) ([]model.Employee, error) {
	out := []model.Employee{}
	for _, emp := range r.employees {
		if filter.Department != "" && !strings.Contains(strings.ToLower(emp.Department), strings.ToLower(filter.Department)) {
			continue
		}
		if filter.Position != "" && !strings.Contains(strings.ToLower(emp.Position), strings.ToLower(filter.Position)) {
			continue
		}
		out = append(out, emp)
	}
	return out, nil
}

func (r *memEmployeeRepo) ListProfilePictures(ctx context.Context) ([]string, error) {
	return nil, nil
}

func newEmployeeTestServer(t *testing.T) (http.Handler, string) {
	t.Helper()

	uploads, err := storage.NewDiskStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewDiskStore: %v", err)
	}
	repo := &memEmployeeRepo{employees: map[string]model.Employee{}}
	svc := service.NewEmployeeService(repo, uploads, nil)

	jwt := security.NewJWTManager(&config.Config{JWTKey: []byte("test-secret"), JWTExp: time.Hour})
	token, err := jwt.GenerateToken("test-user")
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	r := chi.NewRouter()
	r.Use(jwtauth.Verifier(jwt.TokenAuth))
	r.Route("/emp", NewEmployeeHandler(svc, 5*1024*1024).RegisterRoutes)
	return r, token
}

// multipartBody builds a multipart form from field values plus an optional
// file part named profile_picture.
func multipartBody(t *testing.T, fields map[string]string, filename string, fileContent []byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for key, value := range fields {
		if err := writer.WriteField(key, value); err != nil {
			t.Fatalf("WriteField(%s): %v", key, err)
		}
	}
	if filename != "" {
		part, err := writer.CreateFormFile("profile_picture", filename)
		if err != nil {
			t.Fatalf("CreateFormFile: %v", err)
		}
		if _, err := part.Write(fileContent); err != nil {
			t.Fatalf("write file part: %v", err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return body, writer.FormDataContentType()
}

func employeeFields() map[string]string {
	return map[string]string{
		"first_name":      "Ann",
		"last_name":       "Lee",
		"email":           "ann@x.com",
		"position":        "Engineer",
		"salary":          "90000",
		"date_of_joining": "2024-01-01",
		"department":      "IT",
	}
}

func doRequest(t *testing.T, h http.Handler, method, target, token string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func createEmployee(t *testing.T, h http.Handler, token string, fields map[string]string) string {
	t.Helper()
	body, contentType := multipartBody(t, fields, "", nil)
	rec := doRequest(t, h, http.MethodPost, "/emp/employees", token, body, contentType)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var resp service.CreateEmployeeResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal create response: %v", err)
	}
	return resp.EmployeeID
}

func decodeErrorEnvelope(t *testing.T, rec *httptest.ResponseRecorder) common.ErrorResponse {
	t.Helper()
	var envelope common.ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("unmarshal error envelope: %v (body %s)", err, rec.Body.String())
	}
	return envelope
}

func TestCreateEmployeeRequiresToken(t *testing.T) {
	h, _ := newEmployeeTestServer(t)

	body, contentType := multipartBody(t, employeeFields(), "", nil)
	rec := doRequest(t, h, http.MethodPost, "/emp/employees", "", body, contentType)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestCreateAndGetEmployee(t *testing.T) {
	h, token := newEmployeeTestServer(t)

	id := createEmployee(t, h, token, employeeFields())

	rec := doRequest(t, h, http.MethodGet, "/emp/employees/"+id, "", nil, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("get: status = %d", rec.Code)
	}
	var emp model.Employee
	if err := json.Unmarshal(rec.Body.Bytes(), &emp); err != nil {
		t.Fatalf("unmarshal employee: %v", err)
	}
	if emp.FirstName != "Ann" || emp.Email != "ann@x.com" || emp.Salary != 90000 {
		t.Errorf("unexpected employee: %+v", emp)
	}
	if emp.ProfilePicture != nil {
		t.Errorf("profile_picture = %q, want null", *emp.ProfilePicture)
	}
}

func TestCreateEmployeeValidationEnvelope(t *testing.T) {
	h, token := newEmployeeTestServer(t)

	fields := employeeFields()
	fields["first_name"] = ""
	body, contentType := multipartBody(t, fields, "", nil)
	rec := doRequest(t, h, http.MethodPost, "/emp/employees", token, body, contentType)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	envelope := decodeErrorEnvelope(t, rec)
	if envelope.Status || envelope.Message != "First name is required" {
		t.Errorf("envelope = %+v", envelope)
	}
}

func TestCreateDuplicateEmailReturns400(t *testing.T) {
	h, token := newEmployeeTestServer(t)

	createEmployee(t, h, token, employeeFields())

	body, contentType := multipartBody(t, employeeFields(), "", nil)
	rec := doRequest(t, h, http.MethodPost, "/emp/employees", token, body, contentType)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if msg := decodeErrorEnvelope(t, rec).Message; msg != "Employee with this email already exists" {
		t.Errorf("message = %q", msg)
	}
}

func TestCreateEmployeeWithPicture(t *testing.T) {
	h, token := newEmployeeTestServer(t)

	// Minimal PNG header so content sniffing sees an image.
	png := append([]byte("\x89PNG\r\n\x1a\n"), bytes.Repeat([]byte{0}, 64)...)
	body, contentType := multipartBody(t, employeeFields(), "avatar.png", png)
	rec := doRequest(t, h, http.MethodPost, "/emp/employees", token, body, contentType)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var resp service.CreateEmployeeResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	get := doRequest(t, h, http.MethodGet, "/emp/employees/"+resp.EmployeeID, "", nil, "")
	var emp model.Employee
	if err := json.Unmarshal(get.Body.Bytes(), &emp); err != nil {
		t.Fatalf("unmarshal employee: %v", err)
	}
	if emp.ProfilePicture == nil || !strings.HasSuffix(*emp.ProfilePicture, ".png") {
		t.Errorf("profile_picture = %v, want stored .png filename", emp.ProfilePicture)
	}
	if emp.ProfilePicture != nil && strings.ContainsAny(*emp.ProfilePicture, "/\\") {
		t.Errorf("profile_picture leaks a path: %q", *emp.ProfilePicture)
	}
}

func TestGetEmployeeNotFound(t *testing.T) {
	h, _ := newEmployeeTestServer(t)

	rec := doRequest(t, h, http.MethodGet, "/emp/employees/no-such-id", "", nil, "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	if msg := decodeErrorEnvelope(t, rec).Message; msg != "Employee not found" {
		t.Errorf("message = %q", msg)
	}
}

func TestListEmployees(t *testing.T) {
	h, token := newEmployeeTestServer(t)

	createEmployee(t, h, token, employeeFields())

	rec := doRequest(t, h, http.MethodGet, "/emp/employees", "", nil, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var employees []model.Employee
	if err := json.Unmarshal(rec.Body.Bytes(), &employees); err != nil {
		t.Fatalf("unmarshal list: %v", err)
	}
	if len(employees) != 1 {
		t.Errorf("list length = %d, want 1", len(employees))
	}
}

func TestUpdateEmployeePartial(t *testing.T) {
	h, token := newEmployeeTestServer(t)

	id := createEmployee(t, h, token, employeeFields())

	body, contentType := multipartBody(t, map[string]string{"position": "Manager"}, "", nil)
	rec := doRequest(t, h, http.MethodPut, "/emp/employees/"+id, token, body, contentType)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var resp service.MessageResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Message != "Employee details updated successfully." {
		t.Errorf("message = %q", resp.Message)
	}

	get := doRequest(t, h, http.MethodGet, "/emp/employees/"+id, "", nil, "")
	var emp model.Employee
	if err := json.Unmarshal(get.Body.Bytes(), &emp); err != nil {
		t.Fatalf("unmarshal employee: %v", err)
	}
	if emp.Position != "Manager" || emp.FirstName != "Ann" {
		t.Errorf("partial update wrong: %+v", emp)
	}
}

func TestUpdateEmployeeNotFound(t *testing.T) {
	h, token := newEmployeeTestServer(t)

	body, contentType := multipartBody(t, map[string]string{"position": "Manager"}, "", nil)
	rec := doRequest(t, h, http.MethodPut, "/emp/employees/ghost", token, body, contentType)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestDeleteEmployee(t *testing.T) {
	h, token := newEmployeeTestServer(t)

	id := createEmployee(t, h, token, employeeFields())

	rec := doRequest(t, h, http.MethodDelete, "/emp/employees?eid="+id, token, nil, "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rec.Code)
	}
	if rec.Body.Len() != 0 {
		t.Errorf("204 response carried a body: %s", rec.Body.String())
	}

	get := doRequest(t, h, http.MethodGet, "/emp/employees/"+id, "", nil, "")
	if get.Code != http.StatusNotFound {
		t.Errorf("get after delete: status = %d, want 404", get.Code)
	}
}

func TestDeleteEmployeeRequiresID(t *testing.T) {
	h, token := newEmployeeTestServer(t)

	rec := doRequest(t, h, http.MethodDelete, "/emp/employees", token, nil, "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if msg := decodeErrorEnvelope(t, rec).Message; msg != "Employee ID is required" {
		t.Errorf("message = %q", msg)
	}
}

func TestSearchEmployees(t *testing.T) {
	h, token := newEmployeeTestServer(t)

	createEmployee(t, h, token, employeeFields())
	other := employeeFields()
	other["email"] = "bob@x.com"
	other["department"] = "Finance"
	createEmployee(t, h, token, other)

	rec := doRequest(t, h, http.MethodGet, "/emp/employees/search?department=fin", "", nil, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var employees []model.Employee
	if err := json.Unmarshal(rec.Body.Bytes(), &employees); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(employees) != 1 || employees[0].Department != "Finance" {
		t.Errorf("search result = %+v", employees)
	}

	empty := doRequest(t, h, http.MethodGet, "/emp/employees/search", "", nil, "")
	if empty.Code != http.StatusBadRequest {
		t.Fatalf("no params: status = %d, want 400", empty.Code)
	}
}
