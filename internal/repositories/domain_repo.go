package repositories

import (
	"context"
	"fmt"

	"github.com/dngun/backend/internal/db"
	"github.com/dngun/backend/internal/models"
	"github.com/google/uuid"
)

type DomainRepo struct {
	pool db.Querier
}

func NewDomainRepo(pool db.Querier) *DomainRepo {
	return &DomainRepo{pool: pool}
}

const domainColumns = `id, name, extension, price, category, status, seller_id, description, featured, views, created_at, updated_at`

func scanDomain(row interface{ Scan(dest ...any) error }, d *models.Domain) error {
	return row.Scan(&d.ID, &d.Name, &d.Extension, &d.Price, &d.Category, &d.Status,
		&d.SellerID, &d.Description, &d.Featured, &d.Views, &d.CreatedAt, &d.UpdatedAt)
}

func (r *DomainRepo) Create(ctx context.Context, d *models.Domain) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO domains (name, extension, price, category, status, seller_id, description, featured)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at
	`, d.Name, d.Extension, d.Price, d.Category, d.Status, d.SellerID, d.Description, d.Featured,
	).Scan(&d.ID, &d.CreatedAt, &d.UpdatedAt)
}

func (r *DomainRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Domain, error) {
	var d models.Domain
	err := scanDomain(r.pool.QueryRow(ctx, `
		SELECT `+domainColumns+` FROM domains WHERE id = $1
	`, id), &d)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *DomainRepo) GetByNameExtension(ctx context.Context, name, extension string) (*models.Domain, error) {
	var d models.Domain
	err := scanDomain(r.pool.QueryRow(ctx, `
		SELECT `+domainColumns+` FROM domains WHERE lower(name) = lower($1) AND lower(extension) = lower($2)
	`, name, extension), &d)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

type DomainFilter struct {
	Category *string
	Status   *string
	PriceMin *float64
	PriceMax *float64
	Search   *string // case-insensitive substring on name
	Limit    int
	Offset   int
}

func (r *DomainRepo) List(ctx context.Context, f DomainFilter) ([]models.Domain, error) {
	query := `SELECT ` + domainColumns + ` FROM domains`
	args := []any{}
	argIdx := 1
	where := []string{}

	if f.Category != nil {
		where = append(where, fmt.Sprintf("category = $%d", argIdx))
		args = append(args, *f.Category)
		argIdx++
	}
	if f.Status != nil {
		where = append(where, fmt.Sprintf("status = $%d", argIdx))
		args = append(args, *f.Status)
		argIdx++
	}
	if f.PriceMin != nil {
		where = append(where, fmt.Sprintf("price >= $%d", argIdx))
		args = append(args, *f.PriceMin)
		argIdx++
	}
	if f.PriceMax != nil {
		where = append(where, fmt.Sprintf("price <= $%d", argIdx))
		args = append(args, *f.PriceMax)
		argIdx++
	}
	if f.Search != nil {
		where = append(where, fmt.Sprintf("name ILIKE $%d", argIdx))
		args = append(args, "%"+*f.Search+"%")
		argIdx++
	}

	if len(where) > 0 {
		query += " WHERE "
		for i, w := range where {
			if i > 0 {
				query += " AND "
			}
			query += w
		}
	}

	limit := f.Limit
	if limit <= 0 || limit > 100 {
		limit = 100
	}
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", argIdx, argIdx+1)
	args = append(args, limit, f.Offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var domains []models.Domain
	for rows.Next() {
		var d models.Domain
		if err := scanDomain(rows, &d); err != nil {
			return nil, err
		}
		domains = append(domains, d)
	}
	return domains, rows.Err()
}

// UpdateStatus performs a compare-and-set transition keyed on the expected
// prior status. It reports false when the domain was not in the expected
// status; the caller decides whether that is a conflict or a benign replay.
func (r *DomainRepo) UpdateStatus(ctx context.Context, id uuid.UUID, from, to string) (bool, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE domains SET status = $1, updated_at = now() WHERE id = $2 AND status = $3
	`, to, id, from)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// IncrementViews is fire-and-forget; callers ignore its error.
func (r *DomainRepo) IncrementViews(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `UPDATE domains SET views = views + 1 WHERE id = $1`, id)
	return err
}
