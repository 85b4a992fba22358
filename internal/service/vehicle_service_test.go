package service

import (
	"context"
	"testing"

	"carserve/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestAddVehicleRequiresPlate(t *testing.T) {
	svc := NewVehicleService(new(mockRepo), testLogger())
	err := svc.AddVehicle(context.Background(), &models.Vehicle{Make: "Toyota"})
	assert.ErrorIs(t, err, ErrPlateRequired)
}

func TestRecordMileage(t *testing.T) {
	repo := new(mockRepo)
	repo.On("GetVehicle", mock.Anything, int64(7)).Return(&models.Vehicle{ID: 7, OwnerID: 1, Mileage: 42000}, nil)
	repo.On("UpdateVehicleMileage", mock.Anything, int64(7), int64(43500)).Return(nil)

	svc := NewVehicleService(repo, testLogger())
	require.NoError(t, svc.RecordMileage(context.Background(), 1, 7, 43500))
	repo.AssertExpectations(t)
}

func TestRecordMileageCannotDecrease(t *testing.T) {
	repo := new(mockRepo)
	repo.On("GetVehicle", mock.Anything, int64(7)).Return(&models.Vehicle{ID: 7, OwnerID: 1, Mileage: 42000}, nil)

	svc := NewVehicleService(repo, testLogger())
	err := svc.RecordMileage(context.Background(), 1, 7, 41000)
	assert.ErrorIs(t, err, ErrMileageDecreased)
	repo.AssertNotCalled(t, "UpdateVehicleMileage", mock.Anything, mock.Anything, mock.Anything)
}

func TestRecordMileageWrongOwner(t *testing.T) {
	repo := new(mockRepo)
	repo.On("GetVehicle", mock.Anything, int64(7)).Return(&models.Vehicle{ID: 7, OwnerID: 99, Mileage: 42000}, nil)

	svc := NewVehicleService(repo, testLogger())
	err := svc.RecordMileage(context.Background(), 1, 7, 43500)
	assert.ErrorIs(t, err, ErrVehicleNotOwned)
}
