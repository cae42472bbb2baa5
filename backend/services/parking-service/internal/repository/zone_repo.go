package repository

import (
	"context"
	"database/sql"
	"errors"

	"parkwash/backend/services/parking-service/internal/models"
)

// ZoneRepository persists parking zones and their slots.
type ZoneRepository struct {
	db *sql.DB
}

// NewZoneRepository returns repository.
func NewZoneRepository(db *sql.DB) *ZoneRepository {
	return &ZoneRepository{db: db}
}

// CreateZone inserts a zone.
func (r *ZoneRepository) CreateZone(ctx context.Context, z *models.Zone) error {
	const query = `INSERT INTO parking_zones (name, description) VALUES ($1, $2) RETURNING id, created_at`
	if err := r.db.QueryRowContext(ctx, query, z.Name, z.Description).Scan(&z.ID, &z.CreatedAt); err != nil {
		return mapPgError("create zone", err)
	}
	return nil
}

// ListZones returns all zones.
func (r *ZoneRepository) ListZones(ctx context.Context) ([]models.Zone, error) {
	const query = `SELECT id, name, description, created_at FROM parking_zones ORDER BY name`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	zones := []models.Zone{}
	for rows.Next() {
		var z models.Zone
		if err := rows.Scan(&z.ID, &z.Name, &z.Description, &z.CreatedAt); err != nil {
			return nil, err
		}
		zones = append(zones, z)
	}
	return zones, rows.Err()
}

// UpdateZone overwrites zone fields.
func (r *ZoneRepository) UpdateZone(ctx context.Context, z *models.Zone) error {
	const query = `UPDATE parking_zones SET name = $2, description = $3 WHERE id = $1 RETURNING created_at`
	if err := r.db.QueryRowContext(ctx, query, z.ID, z.Name, z.Description).Scan(&z.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrZoneNotFound
		}
		return mapPgError("update zone", err)
	}
	return nil
}

// DeleteZone removes a zone and its slots unless one of them is occupied.
func (r *ZoneRepository) DeleteZone(ctx context.Context, id int64) error {
	const query = `
		DELETE FROM parking_zones
		WHERE id = $1
		  AND NOT EXISTS (SELECT 1 FROM parking_slots WHERE zone_id = $1 AND is_occupied)
	`
	err := deleteByID(ctx, r.db, query, id, ErrZoneNotFound)
	if errors.Is(err, ErrZoneNotFound) && r.exists(ctx, `SELECT EXISTS (SELECT 1 FROM parking_zones WHERE id = $1)`, id) {
		return ErrInUse
	}
	return err
}

// CreateSlot inserts a slot into a zone.
func (r *ZoneRepository) CreateSlot(ctx context.Context, s *models.Slot) error {
	const query = `INSERT INTO parking_slots (zone_id, code) VALUES ($1, $2) RETURNING id, is_occupied`
	if err := r.db.QueryRowContext(ctx, query, s.ZoneID, s.Code).Scan(&s.ID, &s.IsOccupied); err != nil {
		return mapPgError("create slot", err)
	}
	return nil
}

// ListSlots returns slots of a zone, optionally only the free ones.
func (r *ZoneRepository) ListSlots(ctx context.Context, zoneID int64, onlyAvailable bool) ([]models.Slot, error) {
	if !r.exists(ctx, `SELECT EXISTS (SELECT 1 FROM parking_zones WHERE id = $1)`, zoneID) {
		return nil, ErrZoneNotFound
	}

	const query = `
		SELECT id, zone_id, code, is_occupied, session_id
		FROM parking_slots
		WHERE zone_id = $1 AND (NOT $2 OR NOT is_occupied)
		ORDER BY code
	`
	rows, err := r.db.QueryContext(ctx, query, zoneID, onlyAvailable)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	slots := []models.Slot{}
	for rows.Next() {
		var s models.Slot
		if err := rows.Scan(&s.ID, &s.ZoneID, &s.Code, &s.IsOccupied, &s.SessionID); err != nil {
			return nil, err
		}
		slots = append(slots, s)
	}
	return slots, rows.Err()
}

// DeleteSlot removes a free slot.
func (r *ZoneRepository) DeleteSlot(ctx context.Context, id int64) error {
	err := deleteByID(ctx, r.db, `DELETE FROM parking_slots WHERE id = $1 AND NOT is_occupied`, id, ErrSlotNotFound)
	if errors.Is(err, ErrSlotNotFound) && r.exists(ctx, `SELECT EXISTS (SELECT 1 FROM parking_slots WHERE id = $1)`, id) {
		return ErrInUse
	}
	return err
}

func (r *ZoneRepository) exists(ctx context.Context, query string, id int64) bool {
	var found bool
	if err := r.db.QueryRowContext(ctx, query, id).Scan(&found); err != nil {
		return false
	}
	return found
}
