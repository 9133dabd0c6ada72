package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"employee_manager/internal/common"
	"employee_manager/internal/domain/model"

	"github.com/jackc/pgx/v5/pgconn"
)

// SearchFilter carries the optional search parameters. Empty fields are not
// matched against.
type SearchFilter struct {
	Department string
	Position   string
}

type EmployeeRepository interface {
	List(ctx context.Context) ([]model.Employee, error)
	Create(ctx context.Context, emp *model.Employee) error
	FindByID(ctx context.Context, id string) (*model.Employee, error)
	Update(ctx context.Context, emp *model.Employee) error
	Delete(ctx context.Context, id string) error
	Search(ctx context.Context, filter SearchFilter) ([]model.Employee, error)
	ListProfilePictures(ctx context.Context) ([]string, error)
}

type pgEmployeeRepository struct {
	db *sql.DB
}

func NewPgEmployeeRepository(db *sql.DB) EmployeeRepository {
	return &pgEmployeeRepository{db: db}
}

const employeeColumns = `id, first_name, last_name, email, position, salary,
	date_of_joining, department, profile_picture, created_at, updated_at`

func scanEmployee(row interface{ Scan(...interface{}) error }) (*model.Employee, error) {
	emp := &model.Employee{}
	err := row.Scan(
		&emp.ID, &emp.FirstName, &emp.LastName, &emp.Email, &emp.Position, &emp.Salary,
		&emp.DateOfJoining, &emp.Department, &emp.ProfilePicture, &emp.CreatedAt, &emp.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return emp, nil
}

func (r *pgEmployeeRepository) List(ctx context.Context) ([]model.Employee, error) {
	query := `SELECT ` + employeeColumns + ` FROM employees ORDER BY created_at`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("pgEmployeeRepository.List: %w", err)
	}
	defer rows.Close()

	employees := []model.Employee{}
	for rows.Next() {
		emp, err := scanEmployee(rows)
		if err != nil {
			return nil, fmt.Errorf("pgEmployeeRepository.List scan: %w", err)
		}
		employees = append(employees, *emp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("pgEmployeeRepository.List rows: %w", err)
	}
	return employees, nil
}

// Create inserts atomically; the unique constraint on email turns duplicate
// inserts into a conflict instead of racing a separate lookup.
func (r *pgEmployeeRepository) Create(ctx context.Context, emp *model.Employee) error {
	query := `INSERT INTO employees
	          (id, first_name, last_name, email, position, salary, date_of_joining, department, profile_picture)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	          RETURNING created_at, updated_at`
	err := r.db.QueryRowContext(ctx, query,
		emp.ID, emp.FirstName, emp.LastName, emp.Email, emp.Position, emp.Salary,
		emp.DateOfJoining, emp.Department, emp.ProfilePicture,
	).Scan(&emp.CreatedAt, &emp.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // Unique constraint violation
			return common.ConflictError("Employee with this email already exists")
		}
		return fmt.Errorf("pgEmployeeRepository.Create: %w", err)
	}
	return nil
}

func (r *pgEmployeeRepository) FindByID(ctx context.Context, id string) (*model.Employee, error) {
	query := `SELECT ` + employeeColumns + ` FROM employees WHERE id = $1`
	emp, err := scanEmployee(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.NotFoundError("Employee not found")
		}
		return nil, fmt.Errorf("pgEmployeeRepository.FindByID: %w", err)
	}
	return emp, nil
}

func (r *pgEmployeeRepository) Update(ctx context.Context, emp *model.Employee) error {
	query := `UPDATE employees
	          SET first_name = $2, last_name = $3, email = $4, position = $5, salary = $6,
	              date_of_joining = $7, department = $8, profile_picture = $9, updated_at = now()
	          WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query,
		emp.ID, emp.FirstName, emp.LastName, emp.Email, emp.Position, emp.Salary,
		emp.DateOfJoining, emp.Department, emp.ProfilePicture,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return common.ConflictError("Employee with this email already exists")
		}
		return fmt.Errorf("pgEmployeeRepository.Update: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("pgEmployeeRepository.Update affected: %w", err)
	}
	if affected == 0 {
		return common.NotFoundError("Employee not found")
	}
	return nil
}

func (r *pgEmployeeRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM employees WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("pgEmployeeRepository.Delete: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("pgEmployeeRepository.Delete affected: %w", err)
	}
	if affected == 0 {
		return common.NotFoundError("Employee not found")
	}
	return nil
}

// Search matches case-insensitive substrings on department and/or position.
func (r *pgEmployeeRepository) Search(ctx context.Context, filter SearchFilter) ([]model.Employee, error) {
	query := `SELECT ` + employeeColumns + ` FROM employees WHERE 1=1`
	args := []interface{}{}
	if filter.Department != "" {
		args = append(args, "%"+filter.Department+"%")
		query += fmt.Sprintf(" AND department ILIKE $%d", len(args))
	}
	if filter.Position != "" {
		args = append(args, "%"+filter.Position+"%")
		query += fmt.Sprintf(" AND position ILIKE $%d", len(args))
	}
	query += ` ORDER BY created_at`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("pgEmployeeRepository.Search: %w", err)
	}
	defer rows.Close()

	employees := []model.Employee{}
	for rows.Next() {
		emp, err := scanEmployee(rows)
		if err != nil {
			return nil, fmt.Errorf("pgEmployeeRepository.Search scan: %w", err)
		}
		employees = append(employees, *emp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("pgEmployeeRepository.Search rows: %w", err)
	}
	return employees, nil
}

// ListProfilePictures returns every stored picture filename currently
// referenced by a record. The upload sweeper treats anything else in the
// upload directory as an orphan.
func (r *pgEmployeeRepository) ListProfilePictures(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT profile_picture FROM employees WHERE profile_picture IS NOT NULL`)
	if err != nil {
		return nil, fmt.Errorf("pgEmployeeRepository.ListProfilePictures: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("pgEmployeeRepository.ListProfilePictures scan: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("pgEmployeeRepository.ListProfilePictures rows: %w", err)
	}
	return names, nil
}
