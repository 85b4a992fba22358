package service

import (
	"context"
	"strings"

	"carserve/internal/domain"
	"carserve/internal/models"

	"github.com/rs/zerolog"
)

type VehicleService struct {
	repo   domain.Repository
	logger *zerolog.Logger
}

func NewVehicleService(repo domain.Repository, logger *zerolog.Logger) *VehicleService {
	return &VehicleService{repo: repo, logger: logger}
}

func (s *VehicleService) AddVehicle(ctx context.Context, vehicle *models.Vehicle) error {
	if strings.TrimSpace(vehicle.LicensePlate) == "" {
		return ErrPlateRequired
	}
	return s.repo.CreateVehicle(ctx, vehicle)
}

func (s *VehicleService) ListVehicles(ctx context.Context, ownerID int64) ([]*models.Vehicle, error) {
	return s.repo.ListVehiclesByOwner(ctx, ownerID)
}

func (s *VehicleService) SetPrimary(ctx context.Context, ownerID, vehicleID int64) error {
	return s.repo.SetPrimaryVehicle(ctx, ownerID, vehicleID)
}

// RecordMileage updates the odometer reading. The reading may only grow.
func (s *VehicleService) RecordMileage(ctx context.Context, ownerID, vehicleID, mileage int64) error {
	vehicle, err := s.repo.GetVehicle(ctx, vehicleID)
	if err != nil {
		return err
	}
	if vehicle.OwnerID != ownerID {
		return ErrVehicleNotOwned
	}
	if mileage < vehicle.Mileage {
		return ErrMileageDecreased
	}
	return s.repo.UpdateVehicleMileage(ctx, vehicleID, mileage)
}

func (s *VehicleService) RemoveVehicle(ctx context.Context, ownerID, vehicleID int64) error {
	return s.repo.DeactivateVehicle(ctx, vehicleID, ownerID)
}
