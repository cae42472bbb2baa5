package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// DefaultRateVersion identifies the configured fallback rates used before any table is published.
const DefaultRateVersion int64 = 0

// AdditionalService is a priced extra such as a wash or polish.
type AdditionalService struct {
	ID    int             `json:"id"`
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
}

// RateTable is an immutable snapshot of parking and service prices.
type RateTable struct {
	Version            int64               `json:"version"`
	HourlyRate         decimal.Decimal     `json:"hourly_rate"`
	DailyRate          decimal.Decimal     `json:"daily_rate"`
	AdditionalServices []AdditionalService `json:"additional_services"`
	CreatedAt          time.Time           `json:"created_at"`
}

// Service looks up an additional service by id.
func (t RateTable) Service(id int) (AdditionalService, bool) {
	for _, svc := range t.AdditionalServices {
		if svc.ID == id {
			return svc, true
		}
	}
	return AdditionalService{}, false
}
