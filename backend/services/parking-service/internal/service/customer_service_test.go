package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"parkwash/backend/services/parking-service/internal/repository"
)

func TestCustomerServiceNormalizes(t *testing.T) {
	svc := NewCustomerService(&fakeCustomerRepo{}, zap.NewNop())

	c, err := svc.Create(context.Background(), CustomerInput{Name: "  Ana Lima ", Email: " Ana@Example.COM "})
	require.NoError(t, err)
	assert.Equal(t, "Ana Lima", c.Name)
	assert.Equal(t, "ana@example.com", c.Email)

	_, err = svc.Create(context.Background(), CustomerInput{Name: " "})
	assert.True(t, errors.Is(err, ErrInvalidInput))

	_, err = svc.Create(context.Background(), CustomerInput{Name: "Bo", Email: "not-an-email"})
	assert.True(t, errors.Is(err, ErrInvalidInput))

	_, err = svc.Update(context.Background(), 42, CustomerInput{Name: "Ghost"})
	assert.True(t, errors.Is(err, repository.ErrCustomerNotFound))
}

func TestCarInputNormalize(t *testing.T) {
	car, err := CarInput{PlateNumber: " ab-12 cd ", Category: " SUV "}.normalize()
	require.NoError(t, err)
	assert.Equal(t, "AB12CD", car.PlateNumber)
	assert.Equal(t, "suv", car.Category)

	_, err = CarInput{PlateNumber: "--"}.normalize()
	assert.True(t, errors.Is(err, ErrInvalidInput))

	bad := int64(-3)
	_, err = CarInput{PlateNumber: "X1", CustomerID: &bad}.normalize()
	assert.True(t, errors.Is(err, ErrInvalidInput))
}

func TestZoneServiceCreateSlotsValidation(t *testing.T) {
	svc := NewZoneService(nil, zap.NewNop())
	_, err := svc.CreateSlots(context.Background(), 1, nil)
	assert.True(t, errors.Is(err, ErrInvalidInput))
	_, err = svc.CreateSlots(context.Background(), 1, []string{"a1", "A1"})
	assert.True(t, errors.Is(err, ErrInvalidInput))
	_, err = svc.CreateZone(context.Background(), "", "")
	assert.True(t, errors.Is(err, ErrInvalidInput))
}
