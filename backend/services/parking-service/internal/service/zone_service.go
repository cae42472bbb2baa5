package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"parkwash/backend/services/parking-service/internal/models"
)

// ZoneRepository defines storage contract for zones and slots.
type ZoneRepository interface {
	CreateZone(ctx context.Context, z *models.Zone) error
	ListZones(ctx context.Context) ([]models.Zone, error)
	UpdateZone(ctx context.Context, z *models.Zone) error
	DeleteZone(ctx context.Context, id int64) error
	CreateSlot(ctx context.Context, s *models.Slot) error
	ListSlots(ctx context.Context, zoneID int64, onlyAvailable bool) ([]models.Slot, error)
	DeleteSlot(ctx context.Context, id int64) error
}

// ZoneService manages parking zones and slots.
type ZoneService struct {
	repo   ZoneRepository
	logger *zap.Logger
}

// NewZoneService builds ZoneService.
func NewZoneService(repo ZoneRepository, logger *zap.Logger) *ZoneService {
	return &ZoneService{repo: repo, logger: logger}
}

// CreateZone adds a zone.
func (s *ZoneService) CreateZone(ctx context.Context, name, description string) (*models.Zone, error) {
	zone := &models.Zone{Name: strings.TrimSpace(name), Description: strings.TrimSpace(description)}
	if zone.Name == "" {
		return nil, invalid("name is required")
	}
	if err := s.repo.CreateZone(ctx, zone); err != nil {
		return nil, err
	}
	s.logger.Info("zone created", zap.Int64("zone_id", zone.ID), zap.String("name", zone.Name))
	return zone, nil
}

// ListZones returns all zones.
func (s *ZoneService) ListZones(ctx context.Context) ([]models.Zone, error) {
	return s.repo.ListZones(ctx)
}

// UpdateZone renames or re-describes a zone.
func (s *ZoneService) UpdateZone(ctx context.Context, id int64, name, description string) (*models.Zone, error) {
	zone := &models.Zone{ID: id, Name: strings.TrimSpace(name), Description: strings.TrimSpace(description)}
	if zone.Name == "" {
		return nil, invalid("name is required")
	}
	if err := s.repo.UpdateZone(ctx, zone); err != nil {
		return nil, err
	}
	return zone, nil
}

// DeleteZone removes a zone with all its slots.
func (s *ZoneService) DeleteZone(ctx context.Context, id int64) error {
	if err := s.repo.DeleteZone(ctx, id); err != nil {
		return err
	}
	s.logger.Info("zone deleted", zap.Int64("zone_id", id))
	return nil
}

// CreateSlots adds slots with the given codes to a zone.
func (s *ZoneService) CreateSlots(ctx context.Context, zoneID int64, codes []string) ([]models.Slot, error) {
	if len(codes) == 0 {
		return nil, invalid("at least one slot code is required")
	}
	seen := make(map[string]struct{}, len(codes))
	slots := make([]models.Slot, 0, len(codes))
	for _, code := range codes {
		code = strings.ToUpper(strings.TrimSpace(code))
		if code == "" {
			return nil, invalid("slot code must not be empty")
		}
		if _, dup := seen[code]; dup {
			return nil, invalid("slot code %q repeated", code)
		}
		seen[code] = struct{}{}
		slots = append(slots, models.Slot{ZoneID: zoneID, Code: code})
	}

	for i := range slots {
		if err := s.repo.CreateSlot(ctx, &slots[i]); err != nil {
			return nil, err
		}
	}
	s.logger.Info("slots created", zap.Int64("zone_id", zoneID), zap.Int("count", len(slots)))
	return slots, nil
}

// ListSlots returns slots of a zone.
func (s *ZoneService) ListSlots(ctx context.Context, zoneID int64, onlyAvailable bool) ([]models.Slot, error) {
	return s.repo.ListSlots(ctx, zoneID, onlyAvailable)
}

// DeleteSlot removes a free slot.
func (s *ZoneService) DeleteSlot(ctx context.Context, id int64) error {
	return s.repo.DeleteSlot(ctx, id)
}
