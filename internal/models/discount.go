package models

import "time"

type DiscountType string

const (
	DiscountPercentage DiscountType = "percentage"
	DiscountFixed      DiscountType = "fixed"
)

type DiscountCode struct {
	Code          string       `json:"code"`
	DiscountType  DiscountType `json:"discount_type"`
	DiscountValue float64      `json:"discount_value"`
	IsActive      bool         `json:"is_active"`
	UsageCount    int          `json:"usage_count"`
	MaxUsages     *int         `json:"max_usages,omitempty"`
	ExpiryDate    *string      `json:"expiry_date,omitempty"`
	CreatedAt     time.Time    `json:"created_at"`
	LastUsedAt    *time.Time   `json:"last_used_at,omitempty"`
}
