package pricing

import (
	"time"

	"github.com/shopspring/decimal"

	"parkwash/backend/services/parking-service/internal/models"
)

// Composition is the summed price of selected additional services.
// Unknown lists ids missing from the rate table; they contribute nothing.
type Composition struct {
	Amount  decimal.Decimal
	Unknown []int
}

// Compose sums the prices of the selected services. Each id is counted once.
func Compose(serviceIDs []int, rates models.RateTable) Composition {
	result := Composition{Amount: decimal.Zero}
	seen := make(map[int]struct{}, len(serviceIDs))
	for _, id := range serviceIDs {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}

		svc, ok := rates.Service(id)
		if !ok {
			result.Unknown = append(result.Unknown, id)
			continue
		}
		result.Amount = result.Amount.Add(svc.Price)
	}
	return result
}

// Input describes what is being priced.
type Input struct {
	EntryTime        time.Time
	ExitTime         *time.Time
	ParkingRequested bool
	ServiceIDs       []int
}

// Breakdown is the full price of a session.
type Breakdown struct {
	Quote             Quote           `json:"quote"`
	ParkingPrice      decimal.Decimal `json:"parking_price"`
	AdditionalPrice   decimal.Decimal `json:"additional_price"`
	TotalPrice        decimal.Decimal `json:"total_price"`
	UnknownServiceIDs []int           `json:"unknown_service_ids,omitempty"`
}

// Price combines parking cost and additional services into a total.
func (c *Calculator) Price(in Input, rates models.RateTable) Breakdown {
	quote := c.Calculate(in.EntryTime, in.ExitTime, rates)
	parking := decimal.Zero
	if in.ParkingRequested {
		parking = quote.Cost
	}
	services := Compose(in.ServiceIDs, rates)

	return Breakdown{
		Quote:             quote,
		ParkingPrice:      parking,
		AdditionalPrice:   services.Amount,
		TotalPrice:        parking.Add(services.Amount),
		UnknownServiceIDs: services.Unknown,
	}
}

// Apply writes the breakdown prices onto the session.
func (b Breakdown) Apply(s *models.Session) {
	s.ParkingPrice = b.ParkingPrice
	s.AdditionalPrice = b.AdditionalPrice
	s.TotalPrice = b.TotalPrice
}

// PriceSession prices a stored session from its own fields.
func (c *Calculator) PriceSession(s *models.Session, rates models.RateTable) Breakdown {
	return c.Price(Input{
		EntryTime:        s.EntryTime,
		ExitTime:         s.ExitTime,
		ParkingRequested: s.ParkingRequested,
		ServiceIDs:       s.SelectedServiceIDs,
	}, rates)
}
