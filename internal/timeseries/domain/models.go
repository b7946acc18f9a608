// Package domain contains the per-site production and cashflow time series.
package domain

import "time"

// TSRecord is one production and cashflow sample for a site. The pair
// (SiteID, Timestamp) is the primary key; there is no surrogate id.
type TSRecord struct {
	SiteID         int64     `json:"site_id" gorm:"primaryKey;autoIncrement:false"`
	Timestamp      time.Time `json:"timestamp" gorm:"column:timestamp;primaryKey;autoIncrement:false"`
	Production     float64   `json:"production" gorm:"not null"`
	UnitProduction string    `json:"unit_production" gorm:"type:varchar(32);not null"`
	Cashflow       float64   `json:"cashflow" gorm:"not null"`
	UnitCashflow   string    `json:"unit_cashflow" gorm:"type:varchar(32);not null"`
}

// TableName sets the database table name.
func (TSRecord) TableName() string { return "timeseries_records" }
