package repository

import (
	"context"
	"database/sql"

	"helperhive/internal/database"
	"helperhive/internal/domain"
	"helperhive/internal/models"

	"github.com/lib/pq"
)

type ServiceRepository struct {
	db *database.DB
}

func NewServiceRepository(db *database.DB) *ServiceRepository {
	return &ServiceRepository{db: db}
}

const serviceColumns = `
	id, name, description, category, subcategory, icon, base_price,
	pricing_type, currency, duration_min, duration_max, is_active,
	created_at, updated_at`

func scanService(row interface{ Scan(...any) error }) (*models.Service, error) {
	svc := &models.Service{}
	err := row.Scan(
		&svc.ID,
		&svc.Name,
		&svc.Description,
		&svc.Category,
		&svc.Subcategory,
		&svc.Icon,
		&svc.BasePrice,
		&svc.PricingType,
		&svc.Currency,
		&svc.DurationMin,
		&svc.DurationMax,
		&svc.IsActive,
		&svc.CreatedAt,
		&svc.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return svc, err
}

func (r *ServiceRepository) Create(ctx context.Context, svc *models.Service) error {
	query := `
		INSERT INTO services (name, description, category, subcategory, icon,
		                      base_price, pricing_type, currency, duration_min, duration_max)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at, updated_at`

	return r.db.QueryRowContext(ctx, query,
		svc.Name,
		svc.Description,
		svc.Category,
		svc.Subcategory,
		svc.Icon,
		svc.BasePrice,
		svc.PricingType,
		svc.Currency,
		svc.DurationMin,
		svc.DurationMax,
	).Scan(&svc.ID, &svc.CreatedAt, &svc.UpdatedAt)
}

func (r *ServiceRepository) GetByID(ctx context.Context, id int64) (*models.Service, error) {
	query := `SELECT` + serviceColumns + ` FROM services WHERE id = $1`
	return scanService(r.db.QueryRowContext(ctx, query, id))
}

func (r *ServiceRepository) List(ctx context.Context, category string, activeOnly bool) ([]models.Service, error) {
	query := `SELECT` + serviceColumns + `
		FROM services
		WHERE ($1 = '' OR category = $1)
		  AND (NOT $2 OR is_active)
		ORDER BY category, subcategory, name`

	rows, err := r.db.QueryContext(ctx, query, category, activeOnly)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var services []models.Service
	for rows.Next() {
		svc, err := scanService(rows)
		if err != nil {
			return nil, err
		}
		services = append(services, *svc)
	}

	return services, rows.Err()
}

func (r *ServiceRepository) Categories(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT DISTINCT category FROM services WHERE is_active ORDER BY category`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func (r *ServiceRepository) SetActive(ctx context.Context, id int64, active bool) error {
	query := `UPDATE services SET is_active = $1, updated_at = NOW() WHERE id = $2`
	_, err := r.db.ExecContext(ctx, query, active, id)
	return err
}

// Add-ons

func (r *ServiceRepository) AddAddOn(ctx context.Context, serviceID int64, name, description string, price int64) (int64, error) {
	var id int64
	query := `
		INSERT INTO service_add_ons (service_id, name, description, price)
		VALUES ($1, $2, $3, $4)
		RETURNING id`
	err := r.db.QueryRowContext(ctx, query, serviceID, name, description, price).Scan(&id)
	return id, err
}

func (r *ServiceRepository) GetAddOns(ctx context.Context, serviceID int64) ([]domain.AddOn, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT name, price FROM service_add_ons WHERE service_id = $1 ORDER BY id`, serviceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var addOns []domain.AddOn
	for rows.Next() {
		var a domain.AddOn
		if err := rows.Scan(&a.Name, &a.Price); err != nil {
			return nil, err
		}
		addOns = append(addOns, a)
	}
	return addOns, rows.Err()
}

// CategoriesForServiceIDs resolves the distinct categories a provider covers,
// used when building the provider search document.
func (r *ServiceRepository) CategoriesForServiceIDs(ctx context.Context, serviceIDs []int64) ([]string, error) {
	if len(serviceIDs) == 0 {
		return nil, nil
	}

	query := `SELECT DISTINCT category FROM services WHERE id = ANY($1) ORDER BY category`
	rows, err := r.db.QueryContext(ctx, query, pq.Array(serviceIDs))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}
