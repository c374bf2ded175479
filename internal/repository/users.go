package repository

import (
	"context"
	"database/sql"

	"helperhive/internal/database"
	"helperhive/internal/models"
)

type UserRepository struct {
	db *database.DB
}

func NewUserRepository(db *database.DB) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `
	id, first_name, last_name, email, phone, password_hash, role,
	email_verified, phone_verified, is_active, is_suspended, suspension_reason,
	street, city, province, postal_code, country, longitude, latitude,
	total_bookings, total_spent, created_at, updated_at, last_active_at`

func scanUser(row interface{ Scan(...any) error }) (*models.User, error) {
	user := &models.User{}
	err := row.Scan(
		&user.ID,
		&user.FirstName,
		&user.LastName,
		&user.Email,
		&user.Phone,
		&user.PasswordHash,
		&user.Role,
		&user.EmailVerified,
		&user.PhoneVerified,
		&user.IsActive,
		&user.IsSuspended,
		&user.SuspensionReason,
		&user.Street,
		&user.City,
		&user.Province,
		&user.PostalCode,
		&user.Country,
		&user.Longitude,
		&user.Latitude,
		&user.TotalBookings,
		&user.TotalSpent,
		&user.CreatedAt,
		&user.UpdatedAt,
		&user.LastActiveAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return user, err
}

func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (first_name, last_name, email, phone, password_hash, role, country)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at`

	return r.db.QueryRowContext(ctx, query,
		user.FirstName,
		user.LastName,
		user.Email,
		user.Phone,
		user.PasswordHash,
		user.Role,
		user.Country,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	query := `SELECT` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(r.db.QueryRowContext(ctx, query, id))
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT` + userColumns + ` FROM users WHERE email = $1`
	return scanUser(r.db.QueryRowContext(ctx, query, email))
}

func (r *UserRepository) GetByPhone(ctx context.Context, phone string) (*models.User, error) {
	query := `SELECT` + userColumns + ` FROM users WHERE phone = $1`
	return scanUser(r.db.QueryRowContext(ctx, query, phone))
}

func (r *UserRepository) UpdateProfile(ctx context.Context, id int64, req *models.UpdateProfileRequest) error {
	query := `
		UPDATE users
		SET first_name = COALESCE($1, first_name),
		    last_name = COALESCE($2, last_name),
		    street = COALESCE($3, street),
		    city = COALESCE($4, city),
		    province = COALESCE($5, province),
		    postal_code = COALESCE($6, postal_code),
		    updated_at = NOW()
		WHERE id = $7`

	_, err := r.db.ExecContext(ctx, query,
		req.FirstName, req.LastName, req.Street, req.City, req.Province, req.PostalCode, id)
	return err
}

func (r *UserRepository) UpdateLocation(ctx context.Context, id int64, lon, lat float64) error {
	query := `UPDATE users SET longitude = $1, latitude = $2, updated_at = NOW() WHERE id = $3`
	_, err := r.db.ExecContext(ctx, query, lon, lat, id)
	return err
}

func (r *UserRepository) MarkPhoneVerified(ctx context.Context, id int64) error {
	query := `UPDATE users SET phone_verified = TRUE, updated_at = NOW() WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id)
	return err
}

func (r *UserRepository) TouchLastActive(ctx context.Context, id int64) error {
	query := `UPDATE users SET last_active_at = NOW() WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id)
	return err
}

func (r *UserRepository) SetStatus(ctx context.Context, id int64, isActive, isSuspended *bool, reason *string) error {
	query := `
		UPDATE users
		SET is_active = COALESCE($1, is_active),
		    is_suspended = COALESCE($2, is_suspended),
		    suspension_reason = COALESCE($3, suspension_reason),
		    updated_at = NOW()
		WHERE id = $4`

	_, err := r.db.ExecContext(ctx, query, isActive, isSuspended, reason, id)
	return err
}

// IncrementSpending updates the customer spending counters after a captured
// payment.
func (r *UserRepository) IncrementSpending(ctx context.Context, id int64, amount int64) error {
	query := `
		UPDATE users
		SET total_spent = total_spent + $1, total_bookings = total_bookings + 1, updated_at = NOW()
		WHERE id = $2`
	_, err := r.db.ExecContext(ctx, query, amount, id)
	return err
}

func (r *UserRepository) List(ctx context.Context, role string, page, limit int) ([]models.User, int64, error) {
	var total int64
	countQuery := `SELECT COUNT(*) FROM users WHERE ($1 = '' OR role = $1)`
	if err := r.db.QueryRowContext(ctx, countQuery, role).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT` + userColumns + `
		FROM users
		WHERE ($1 = '' OR role = $1)
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`

	rows, err := r.db.QueryContext(ctx, query, role, limit, (page-1)*limit)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, 0, err
		}
		users = append(users, *user)
	}

	return users, total, rows.Err()
}

// Provider profile

func (r *UserRepository) CreateProviderProfile(ctx context.Context, userID int64) error {
	query := `INSERT INTO provider_profiles (user_id) VALUES ($1) ON CONFLICT (user_id) DO NOTHING`
	_, err := r.db.ExecContext(ctx, query, userID)
	return err
}

func (r *UserRepository) GetProviderProfile(ctx context.Context, userID int64) (*models.ProviderProfile, error) {
	profile := &models.ProviderProfile{}
	query := `
		SELECT user_id, bio, hourly_rate, serving_radius_km, background_check_status,
		       is_available, is_online, rating_average, rating_count,
		       completed_jobs, total_earnings, bank_verified
		FROM provider_profiles
		WHERE user_id = $1`

	err := r.db.QueryRowContext(ctx, query, userID).Scan(
		&profile.UserID,
		&profile.Bio,
		&profile.HourlyRate,
		&profile.ServingRadiusKm,
		&profile.BackgroundCheckStatus,
		&profile.IsAvailable,
		&profile.IsOnline,
		&profile.RatingAverage,
		&profile.RatingCount,
		&profile.CompletedJobs,
		&profile.TotalEarnings,
		&profile.BankVerified,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return profile, err
}

func (r *UserRepository) UpdateProviderProfile(ctx context.Context, userID int64, req *models.UpdateProviderProfileRequest) error {
	query := `
		UPDATE provider_profiles
		SET bio = COALESCE($1, bio),
		    hourly_rate = COALESCE($2, hourly_rate),
		    serving_radius_km = COALESCE($3, serving_radius_km)
		WHERE user_id = $4`

	_, err := r.db.ExecContext(ctx, query, req.Bio, req.HourlyRate, req.ServingRadiusKm, userID)
	return err
}

func (r *UserRepository) SetProviderAvailability(ctx context.Context, userID int64, isAvailable, isOnline *bool) error {
	query := `
		UPDATE provider_profiles
		SET is_available = COALESCE($1, is_available),
		    is_online = COALESCE($2, is_online)
		WHERE user_id = $3`

	_, err := r.db.ExecContext(ctx, query, isAvailable, isOnline, userID)
	return err
}

func (r *UserRepository) SetBackgroundCheckStatus(ctx context.Context, userID int64, status string) error {
	query := `UPDATE provider_profiles SET background_check_status = $1 WHERE user_id = $2`
	_, err := r.db.ExecContext(ctx, query, status, userID)
	return err
}

// CreditEarnings records a completed payout on the provider counters.
func (r *UserRepository) CreditEarnings(ctx context.Context, userID int64, amount int64) error {
	query := `
		UPDATE provider_profiles
		SET total_earnings = total_earnings + $1, completed_jobs = completed_jobs + 1
		WHERE user_id = $2`
	_, err := r.db.ExecContext(ctx, query, amount, userID)
	return err
}

// Provider services join

func (r *UserRepository) SetProviderServices(ctx context.Context, providerID int64, serviceIDs []int64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM provider_services WHERE provider_id = $1`, providerID); err != nil {
		return err
	}
	for _, sid := range serviceIDs {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO provider_services (provider_id, service_id) VALUES ($1, $2)`, providerID, sid); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (r *UserRepository) GetProviderServiceIDs(ctx context.Context, providerID int64) ([]int64, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT service_id FROM provider_services WHERE provider_id = $1`, providerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// ProviderOffersService checks the provider/service join.
func (r *UserRepository) ProviderOffersService(ctx context.Context, providerID, serviceID int64) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM provider_services WHERE provider_id = $1 AND service_id = $2)`
	err := r.db.QueryRowContext(ctx, query, providerID, serviceID).Scan(&exists)
	return exists, err
}

func (r *UserRepository) CountByRole(ctx context.Context, role string) (int64, error) {
	var count int64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users WHERE role = $1`, role).Scan(&count)
	return count, err
}
