package postgres

import (
	"github.com/jmoiron/sqlx"

	"github.com/jwalitptl/petcare-api/internal/repository"
)

type appointmentRepository struct {
	BaseRepository
}

type storeRepository struct {
	BaseRepository
}

type serviceRepository struct {
	BaseRepository
}

func NewAppointmentRepository(db *sqlx.DB) repository.AppointmentRepository {
	return &appointmentRepository{NewBaseRepository(db)}
}

func NewStoreRepository(db *sqlx.DB) repository.StoreRepository {
	return &storeRepository{NewBaseRepository(db)}
}

func NewServiceRepository(db *sqlx.DB) repository.ServiceRepository {
	return &serviceRepository{NewBaseRepository(db)}
}
