package repository

import "helperhive/internal/database"

// Repositories bundles every repository over one shared connection pool.
type Repositories struct {
	Users    *UserRepository
	Services *ServiceRepository
	Bookings *BookingRepository
}

func New(db *database.DB) *Repositories {
	return &Repositories{
		Users:    NewUserRepository(db),
		Services: NewServiceRepository(db),
		Bookings: NewBookingRepository(db),
	}
}
