package models

// PricingConfig is the tiered day-rate table. Version increases on
// every admin update; price caches key on it.
type PricingConfig struct {
	DailyPrices    map[int]float64 `json:"daily_prices"`
	MidRangeRate   float64         `json:"mid_range_rate"`
	MidRangeMaxDay int             `json:"mid_range_max_day"`
	LongTermRate   float64         `json:"long_term_rate"`
	Version        int64           `json:"version"`
}

// DefaultPricingConfig seeds the store on first boot.
func DefaultPricingConfig() *PricingConfig {
	return &PricingConfig{
		DailyPrices: map[int]float64{
			1: 10, 2: 14, 3: 18, 4: 22, 5: 26,
			6: 30, 7: 33, 8: 36, 9: 38, 10: 40,
		},
		MidRangeRate:   2,
		MidRangeMaxDay: 30,
		LongTermRate:   1,
		Version:        1,
	}
}
