package service

import (
	"context"
	"io"
	"log"
	"strconv"
	"strings"
	"time"

	"employee_manager/internal/common"
	"employee_manager/internal/domain/model"
	"employee_manager/internal/domain/repository"
	"employee_manager/internal/platform/cache"
	"employee_manager/internal/platform/storage"

	"github.com/google/uuid"
)

type EmployeeService struct {
	employeeRepo repository.EmployeeRepository
	uploads      *storage.DiskStore
	cache        *cache.EmployeeCache
}

func NewEmployeeService(
	employeeRepo repository.EmployeeRepository,
	uploads *storage.DiskStore,
	employeeCache *cache.EmployeeCache,
) *EmployeeService {
	return &EmployeeService{
		employeeRepo: employeeRepo,
		uploads:      uploads,
		cache:        employeeCache,
	}
}

// FileUpload is the single optional profile picture attached to a create or
// update request. The file is staged to disk only after field validation
// passes, and removed again if the record write fails.
type FileUpload struct {
	OriginalName string
	ContentType  string
	Content      io.Reader
}

type CreateEmployeeRequest struct {
	FirstName     string
	LastName      string
	Email         string
	Position      string
	Salary        string
	DateOfJoining string
	Department    string
}

type CreateEmployeeResponse struct {
	Message    string `json:"message"`
	EmployeeID string `json:"employee_id"`
}

// UpdateEmployeeRequest carries only the fields present in the request; a
// nil field leaves the stored value untouched.
type UpdateEmployeeRequest struct {
	FirstName     *string
	LastName      *string
	Email         *string
	Position      *string
	Salary        *string
	DateOfJoining *string
	Department    *string
}

type MessageResponse struct {
	Message string `json:"message"`
}

func (s *EmployeeService) List(ctx context.Context) ([]model.Employee, error) {
	var cached []model.Employee
	if s.cache.GetList(ctx, &cached) {
		return cached, nil
	}

	employees, err := s.employeeRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	s.cache.SetList(ctx, employees)
	return employees, nil
}

func (s *EmployeeService) Create(ctx context.Context, req CreateEmployeeRequest, upload *FileUpload) (*CreateEmployeeResponse, error) {
	emp := &model.Employee{ID: uuid.NewString()}

	if err := applyField(&emp.FirstName, &req.FirstName, firstNameRules); err != nil {
		return nil, err
	}
	if err := applyField(&emp.LastName, &req.LastName, lastNameRules); err != nil {
		return nil, err
	}
	if err := applyEmail(emp, &req.Email); err != nil {
		return nil, err
	}
	if err := applyField(&emp.Position, &req.Position, positionRules); err != nil {
		return nil, err
	}
	if err := applySalary(emp, &req.Salary); err != nil {
		return nil, err
	}
	if err := applyDate(emp, &req.DateOfJoining); err != nil {
		return nil, err
	}
	if err := applyField(&emp.Department, &req.Department, departmentRules); err != nil {
		return nil, err
	}

	stored, err := s.stageUpload(upload)
	if err != nil {
		return nil, err
	}
	if stored != "" {
		emp.ProfilePicture = &stored
	}

	if err := s.employeeRepo.Create(ctx, emp); err != nil {
		s.discardUpload(stored)
		return nil, err
	}

	s.cache.Invalidate(ctx)
	return &CreateEmployeeResponse{
		Message:    "Employee created successfully.",
		EmployeeID: emp.ID,
	}, nil
}

func (s *EmployeeService) GetByID(ctx context.Context, id string) (*model.Employee, error) {
	var cached model.Employee
	if s.cache.GetEmployee(ctx, id, &cached) {
		return &cached, nil
	}

	emp, err := s.employeeRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.cache.SetEmployee(ctx, id, emp)
	return emp, nil
}

func (s *EmployeeService) Update(ctx context.Context, id string, req UpdateEmployeeRequest, upload *FileUpload) (*MessageResponse, error) {
	emp, err := s.employeeRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := applyField(&emp.FirstName, req.FirstName, firstNameRules); err != nil {
		return nil, err
	}
	if err := applyField(&emp.LastName, req.LastName, lastNameRules); err != nil {
		return nil, err
	}
	if err := applyEmail(emp, req.Email); err != nil {
		return nil, err
	}
	if err := applyField(&emp.Position, req.Position, positionRules); err != nil {
		return nil, err
	}
	if err := applySalary(emp, req.Salary); err != nil {
		return nil, err
	}
	if err := applyDate(emp, req.DateOfJoining); err != nil {
		return nil, err
	}
	if err := applyField(&emp.Department, req.Department, departmentRules); err != nil {
		return nil, err
	}

	var oldPicture *string
	stored, err := s.stageUpload(upload)
	if err != nil {
		return nil, err
	}
	if stored != "" {
		oldPicture = emp.ProfilePicture
		emp.ProfilePicture = &stored
	}

	if err := s.employeeRepo.Update(ctx, emp); err != nil {
		s.discardUpload(stored)
		return nil, err
	}

	// The replaced picture is removed only after the record write succeeds.
	if oldPicture != nil {
		if err := s.uploads.Remove(*oldPicture); err != nil {
			log.Printf("WARN: failed to remove replaced picture %s: %v", *oldPicture, err)
		}
	}

	s.cache.Invalidate(ctx, id)
	return &MessageResponse{Message: "Employee details updated successfully."}, nil
}

func (s *EmployeeService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return common.ValidationError("Employee ID is required")
	}

	emp, err := s.employeeRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.employeeRepo.Delete(ctx, id); err != nil {
		return err
	}

	if emp.ProfilePicture != nil {
		if err := s.uploads.Remove(*emp.ProfilePicture); err != nil {
			log.Printf("WARN: failed to remove picture %s: %v", *emp.ProfilePicture, err)
		}
	}

	s.cache.Invalidate(ctx, id)
	return nil
}

func (s *EmployeeService) Search(ctx context.Context, department, position string) ([]model.Employee, error) {
	if department == "" && position == "" {
		return nil, common.ValidationError("Please provide department or position to search")
	}
	return s.employeeRepo.Search(ctx, repository.SearchFilter{
		Department: department,
		Position:   position,
	})
}

// stageUpload validates and writes the picture to disk, returning the stored
// filename. An empty name means no file was attached.
func (s *EmployeeService) stageUpload(upload *FileUpload) (string, error) {
	if upload == nil {
		return "", nil
	}
	if !strings.HasPrefix(upload.ContentType, "image/") {
		return "", common.ValidationError("Only image files are allowed")
	}

	name := storage.Filename(upload.OriginalName)
	if err := s.uploads.Save(name, upload.Content); err != nil {
		return "", err
	}
	return name, nil
}

func (s *EmployeeService) discardUpload(name string) {
	if name == "" {
		return
	}
	if err := s.uploads.Remove(name); err != nil {
		log.Printf("WARN: failed to discard staged upload %s: %v", name, err)
	}
}

// fieldRules is one ordered pair of validation messages for a plain string
// field: required first, then the length cap.
type fieldRules struct {
	requiredMsg string
	maxLen      int
	maxLenMsg   string
}

var (
	firstNameRules  = fieldRules{"First name is required", 50, "First name cannot exceed 50 characters"}
	lastNameRules   = fieldRules{"Last name is required", 50, "Last name cannot exceed 50 characters"}
	positionRules   = fieldRules{"Position is required", 100, "Position cannot exceed 100 characters"}
	departmentRules = fieldRules{"Department is required", 100, "Department cannot exceed 100 characters"}
)

// applyField validates a supplied value and writes it into dst. A nil value
// means the field was not part of the request and dst is left untouched.
func applyField(dst *string, value *string, rules fieldRules) error {
	if value == nil {
		return nil
	}
	v := strings.TrimSpace(*value)
	if v == "" {
		return common.ValidationError(rules.requiredMsg)
	}
	if len(v) > rules.maxLen {
		return common.ValidationError(rules.maxLenMsg)
	}
	*dst = v
	return nil
}

func applyEmail(emp *model.Employee, value *string) error {
	if value == nil {
		return nil
	}
	v := strings.ToLower(strings.TrimSpace(*value))
	if v == "" {
		return common.ValidationError("Email is required")
	}
	if !emailRegexp.MatchString(v) {
		return common.ValidationError("Please provide a valid email")
	}
	emp.Email = v
	return nil
}

func applySalary(emp *model.Employee, value *string) error {
	if value == nil {
		return nil
	}
	v := strings.TrimSpace(*value)
	if v == "" {
		return common.ValidationError("Salary is required")
	}
	salary, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return common.ValidationError("Salary must be a number")
	}
	if salary < 0 {
		return common.ValidationError("Salary cannot be negative")
	}
	emp.Salary = salary
	return nil
}

func applyDate(emp *model.Employee, value *string) error {
	if value == nil {
		return nil
	}
	v := strings.TrimSpace(*value)
	if v == "" {
		return common.ValidationError("Date of joining is required")
	}
	parsed, err := time.Parse("2006-01-02", v)
	if err != nil {
		parsed, err = time.Parse(time.RFC3339, v)
	}
	if err != nil {
		return common.ValidationError("Please provide a valid date")
	}
	emp.DateOfJoining = parsed
	return nil
}
