package database

import (
	"fmt"
	"log/slog"
)

func (db *DB) RunMigrations() error {
	slog.Info("Running database migrations...")

	migrations := []string{
		createUsersTable,
		createProviderProfilesTable,
		createServicesTable,
		createServiceAddOnsTable,
		createProviderServicesTable,
		createBookingsTable,
		createBookingAddOnsTable,
		createStatusHistoryTable,
		createBookingMessagesTable,
		createBookingIndexes,
	}

	for i, migration := range migrations {
		if _, err := db.Exec(migration); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}

	slog.Info("All migrations completed successfully")
	return nil
}

const createUsersTable = `
CREATE TABLE IF NOT EXISTS users (
    id BIGSERIAL PRIMARY KEY,
    first_name VARCHAR(50) NOT NULL,
    last_name VARCHAR(50) NOT NULL,
    email VARCHAR(255) UNIQUE NOT NULL,
    phone VARCHAR(20) UNIQUE NOT NULL,
    password_hash VARCHAR(100) NOT NULL,
    role VARCHAR(20) NOT NULL CHECK (role IN ('customer', 'provider', 'admin')),
    email_verified BOOLEAN NOT NULL DEFAULT FALSE,
    phone_verified BOOLEAN NOT NULL DEFAULT FALSE,
    is_active BOOLEAN NOT NULL DEFAULT TRUE,
    is_suspended BOOLEAN NOT NULL DEFAULT FALSE,
    suspension_reason TEXT,
    street VARCHAR(255),
    city VARCHAR(100),
    province VARCHAR(100),
    postal_code VARCHAR(20),
    country VARCHAR(100) NOT NULL DEFAULT 'South Africa',
    longitude DOUBLE PRECISION NOT NULL DEFAULT 0,
    latitude DOUBLE PRECISION NOT NULL DEFAULT 0,
    total_bookings INTEGER NOT NULL DEFAULT 0,
    total_spent BIGINT NOT NULL DEFAULT 0,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    last_active_at TIMESTAMPTZ
);`

const createProviderProfilesTable = `
CREATE TABLE IF NOT EXISTS provider_profiles (
    user_id BIGINT PRIMARY KEY REFERENCES users(id) ON DELETE CASCADE,
    bio TEXT NOT NULL DEFAULT '',
    hourly_rate BIGINT NOT NULL DEFAULT 0,
    serving_radius_km INTEGER NOT NULL DEFAULT 25,
    background_check_status VARCHAR(20) NOT NULL DEFAULT 'pending'
        CHECK (background_check_status IN ('pending', 'approved', 'rejected', 'not-required')),
    is_available BOOLEAN NOT NULL DEFAULT TRUE,
    is_online BOOLEAN NOT NULL DEFAULT FALSE,
    rating_average DOUBLE PRECISION NOT NULL DEFAULT 0,
    rating_count INTEGER NOT NULL DEFAULT 0,
    completed_jobs INTEGER NOT NULL DEFAULT 0,
    total_earnings BIGINT NOT NULL DEFAULT 0,
    bank_verified BOOLEAN NOT NULL DEFAULT FALSE
);`

const createServicesTable = `
CREATE TABLE IF NOT EXISTS services (
    id BIGSERIAL PRIMARY KEY,
    name VARCHAR(255) NOT NULL,
    description TEXT NOT NULL,
    category VARCHAR(50) NOT NULL,
    subcategory VARCHAR(50) NOT NULL,
    icon VARCHAR(100) NOT NULL DEFAULT '',
    base_price BIGINT NOT NULL CHECK (base_price >= 0),
    pricing_type VARCHAR(20) NOT NULL CHECK (pricing_type IN ('hourly', 'fixed', 'per-item')),
    currency VARCHAR(3) NOT NULL DEFAULT 'ZAR',
    duration_min INTEGER NOT NULL,
    duration_max INTEGER NOT NULL,
    is_active BOOLEAN NOT NULL DEFAULT TRUE,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);`

const createServiceAddOnsTable = `
CREATE TABLE IF NOT EXISTS service_add_ons (
    id BIGSERIAL PRIMARY KEY,
    service_id BIGINT NOT NULL REFERENCES services(id) ON DELETE CASCADE,
    name VARCHAR(255) NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    price BIGINT NOT NULL CHECK (price >= 0)
);`

const createProviderServicesTable = `
CREATE TABLE IF NOT EXISTS provider_services (
    provider_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    service_id BIGINT NOT NULL REFERENCES services(id) ON DELETE CASCADE,
    PRIMARY KEY (provider_id, service_id)
);`

const createBookingsTable = `
CREATE TABLE IF NOT EXISTS bookings (
    id BIGSERIAL PRIMARY KEY,
    booking_number VARCHAR(20) UNIQUE NOT NULL,
    customer_id BIGINT NOT NULL REFERENCES users(id),
    provider_id BIGINT NOT NULL REFERENCES users(id),
    service_id BIGINT NOT NULL REFERENCES services(id),
    scheduled_date DATE NOT NULL,
    scheduled_start VARCHAR(5) NOT NULL,
    scheduled_end VARCHAR(5),

    street VARCHAR(255) NOT NULL,
    city VARCHAR(100) NOT NULL,
    province VARCHAR(100) NOT NULL,
    postal_code VARCHAR(20) NOT NULL DEFAULT '',
    country VARCHAR(100) NOT NULL DEFAULT 'South Africa',
    longitude DOUBLE PRECISION NOT NULL,
    latitude DOUBLE PRECISION NOT NULL,
    special_instructions TEXT NOT NULL DEFAULT '',
    access_instructions TEXT NOT NULL DEFAULT '',

    base_price BIGINT NOT NULL,
    add_ons_total BIGINT NOT NULL DEFAULT 0,
    subtotal BIGINT NOT NULL,
    platform_fee BIGINT NOT NULL,
    total BIGINT NOT NULL,
    currency VARCHAR(3) NOT NULL DEFAULT 'ZAR',

    status VARCHAR(20) NOT NULL DEFAULT 'pending'
        CHECK (status IN ('pending', 'confirmed', 'en-route', 'in-progress',
                          'completed', 'cancelled', 'no-show', 'disputed')),

    current_longitude DOUBLE PRECISION,
    current_latitude DOUBLE PRECISION,
    estimated_arrival TIMESTAMPTZ,
    actual_arrival TIMESTAMPTZ,
    actual_completion TIMESTAMPTZ,

    emergency_active BOOLEAN NOT NULL DEFAULT FALSE,
    emergency_by BIGINT REFERENCES users(id),
    emergency_reason TEXT,
    emergency_at TIMESTAMPTZ,
    emergency_resolved BOOLEAN NOT NULL DEFAULT FALSE,

    cancelled_by BIGINT REFERENCES users(id),
    cancel_reason TEXT,
    cancelled_at TIMESTAMPTZ,
    refund_amount BIGINT NOT NULL DEFAULT 0,
    refund_status VARCHAR(20),

    payment_status VARCHAR(20) NOT NULL DEFAULT 'pending'
        CHECK (payment_status IN ('pending', 'processing', 'completed', 'failed', 'refunded')),
    payment_intent_id VARCHAR(100),
    paid_at TIMESTAMPTZ,
    payout_status VARCHAR(20) NOT NULL DEFAULT 'pending'
        CHECK (payout_status IN ('pending', 'scheduled', 'completed')),
    payout_at TIMESTAMPTZ,
    fee_collected BOOLEAN NOT NULL DEFAULT FALSE,

    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);`

const createBookingAddOnsTable = `
CREATE TABLE IF NOT EXISTS booking_add_ons (
    id BIGSERIAL PRIMARY KEY,
    booking_id BIGINT NOT NULL REFERENCES bookings(id) ON DELETE CASCADE,
    name VARCHAR(255) NOT NULL,
    price BIGINT NOT NULL CHECK (price >= 0)
);`

const createStatusHistoryTable = `
CREATE TABLE IF NOT EXISTS booking_status_history (
    id BIGSERIAL PRIMARY KEY,
    booking_id BIGINT NOT NULL REFERENCES bookings(id) ON DELETE CASCADE,
    status VARCHAR(20) NOT NULL,
    note TEXT,
    actor_id BIGINT REFERENCES users(id),
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);`

const createBookingMessagesTable = `
CREATE TABLE IF NOT EXISTS booking_messages (
    id BIGSERIAL PRIMARY KEY,
    booking_id BIGINT NOT NULL REFERENCES bookings(id) ON DELETE CASCADE,
    sender_id BIGINT NOT NULL REFERENCES users(id),
    body TEXT NOT NULL,
    is_read BOOLEAN NOT NULL DEFAULT FALSE,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);`

const createBookingIndexes = `
CREATE INDEX IF NOT EXISTS idx_bookings_customer ON bookings(customer_id, created_at DESC);
CREATE INDEX IF NOT EXISTS idx_bookings_provider ON bookings(provider_id, created_at DESC);
CREATE INDEX IF NOT EXISTS idx_bookings_status ON bookings(status);
CREATE INDEX IF NOT EXISTS idx_bookings_scheduled ON bookings(scheduled_date);
CREATE INDEX IF NOT EXISTS idx_bookings_intent ON bookings(payment_intent_id);
CREATE INDEX IF NOT EXISTS idx_status_history_booking ON booking_status_history(booking_id, created_at);
CREATE INDEX IF NOT EXISTS idx_messages_booking ON booking_messages(booking_id, created_at);
CREATE INDEX IF NOT EXISTS idx_users_role ON users(role);`
