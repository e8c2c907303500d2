package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/grievance-service/internal/domain"
)

// ComplaintRepository encapsulates complaint persistence.
type ComplaintRepository interface {
	Create(ctx context.Context, complaint *domain.Complaint) error
	GetByID(ctx context.Context, id string) (*domain.Complaint, error)
	ListByOwner(ctx context.Context, studentID string) ([]domain.Complaint, error)
	ListAll(ctx context.Context, filter domain.ComplaintFilter) ([]domain.Complaint, error)
	Update(ctx context.Context, id string, patch domain.ComplaintPatch) (*domain.Complaint, error)
	Delete(ctx context.Context, id string) error
}

const complaintColumns = `id, student_id, student_name, student_email, category, description,
               status, assigned_to, remarks, created_at, updated_at`

type complaintRepository struct {
	db DBTX
}

// NewComplaintRepository instantiates repository.
func NewComplaintRepository(db DBTX) ComplaintRepository {
	return &complaintRepository{db: db}
}

func (r *complaintRepository) Create(ctx context.Context, complaint *domain.Complaint) error {
	const query = `
        INSERT INTO complaints (id, student_id, student_name, student_email, category, description, status, assigned_to, remarks)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
        RETURNING created_at, updated_at`

	if complaint.ID == "" {
		complaint.ID = uuid.NewString()
	}
	return r.db.QueryRow(ctx, query,
		complaint.ID,
		complaint.StudentID,
		complaint.StudentName,
		complaint.StudentEmail,
		complaint.Category,
		complaint.Description,
		string(complaint.Status),
		complaint.AssignedTo,
		complaint.Remarks,
	).Scan(&complaint.CreatedAt, &complaint.UpdatedAt)
}

func (r *complaintRepository) GetByID(ctx context.Context, id string) (*domain.Complaint, error) {
	if !ValidID(id) {
		return nil, ErrNotFound
	}
	query := `SELECT ` + complaintColumns + ` FROM complaints WHERE id=$1`
	complaint, err := scanComplaint(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, notFoundOr(err)
	}
	return complaint, nil
}

func (r *complaintRepository) ListByOwner(ctx context.Context, studentID string) ([]domain.Complaint, error) {
	if !ValidID(studentID) {
		return []domain.Complaint{}, nil
	}
	query := `SELECT ` + complaintColumns + ` FROM complaints WHERE student_id=$1 ORDER BY created_at DESC, id DESC`
	return r.list(ctx, query, studentID)
}

func (r *complaintRepository) ListAll(ctx context.Context, filter domain.ComplaintFilter) ([]domain.Complaint, error) {
	query, args := buildListQuery(filter)
	return r.list(ctx, query, args...)
}

// Update applies the patch in a single statement. Concurrent updates are
// last-write-wins per field.
func (r *complaintRepository) Update(ctx context.Context, id string, patch domain.ComplaintPatch) (*domain.Complaint, error) {
	if !ValidID(id) {
		return nil, ErrNotFound
	}
	var status *string
	if patch.Status != nil {
		s := string(*patch.Status)
		status = &s
	}
	query := `
        UPDATE complaints SET
            status = COALESCE($2, status),
            assigned_to = COALESCE($3, assigned_to),
            remarks = COALESCE($4, remarks),
            updated_at = NOW()
        WHERE id=$1
        RETURNING ` + complaintColumns
	complaint, err := scanComplaint(r.db.QueryRow(ctx, query, id, status, patch.AssignedTo, patch.Remarks))
	if err != nil {
		return nil, notFoundOr(err)
	}
	return complaint, nil
}

func (r *complaintRepository) Delete(ctx context.Context, id string) error {
	if !ValidID(id) {
		return ErrNotFound
	}
	cmd, err := r.db.Exec(ctx, `DELETE FROM complaints WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *complaintRepository) list(ctx context.Context, query string, args ...any) ([]domain.Complaint, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.Complaint{}
	for rows.Next() {
		complaint, err := scanComplaint(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *complaint)
	}
	return result, rows.Err()
}

func buildListQuery(filter domain.ComplaintFilter) (string, []any) {
	clauses := []string{"1=1"}
	args := []any{}

	if filter.Status != nil {
		args = append(args, string(*filter.Status))
		clauses = append(clauses, fmt.Sprintf("status=$%d", len(args)))
	}
	if filter.Category != nil {
		args = append(args, *filter.Category)
		clauses = append(clauses, fmt.Sprintf("category=$%d", len(args)))
	}

	query := fmt.Sprintf(`SELECT %s FROM complaints WHERE %s ORDER BY created_at DESC, id DESC`,
		complaintColumns, strings.Join(clauses, " AND "))
	return query, args
}

func scanComplaint(row pgx.Row) (*domain.Complaint, error) {
	var complaint domain.Complaint
	if err := row.Scan(
		&complaint.ID,
		&complaint.StudentID,
		&complaint.StudentName,
		&complaint.StudentEmail,
		&complaint.Category,
		&complaint.Description,
		&complaint.Status,
		&complaint.AssignedTo,
		&complaint.Remarks,
		&complaint.CreatedAt,
		&complaint.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &complaint, nil
}
