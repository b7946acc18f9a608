// Package domain contains persistence models for production sites.
package domain

import (
	"database/sql/driver"
	"fmt"
	"strings"

	contractdomain "github.com/smallbiznis/sitebill/internal/contract/domain"
	timeseriesdomain "github.com/smallbiznis/sitebill/internal/timeseries/domain"
)

// Techno is the generation technology installed on a site.
type Techno string

const (
	TechnoWindTurbineOnshore        Techno = "wind_turbine_onshore"
	TechnoWindTurbineOffshore       Techno = "wind_turbine_offshore"
	TechnoSolarFieldGroundMounted   Techno = "solar_field_ground_mounted"
	TechnoSolarFieldRooftop         Techno = "solar_field_rooftop"
	TechnoSolarFieldCanopy          Techno = "solar_field_canopy"
	TechnoHydroTurbineRunOfRiver    Techno = "hydro_turbine_run_of_river"
	TechnoHydroTurbinePumpedStorage Techno = "hydro_turbine_pumped_storage"
	TechnoHydroTurbineReservoir     Techno = "hydro_turbine_reservoir"
	TechnoCogenerationBiomass       Techno = "cogeneration_biomass"
	TechnoCogenerationWaste         Techno = "cogeneration_waste"
	TechnoCogenerationOther         Techno = "cogeneration_other"
)

var Technos = []Techno{
	TechnoWindTurbineOnshore,
	TechnoWindTurbineOffshore,
	TechnoSolarFieldGroundMounted,
	TechnoSolarFieldRooftop,
	TechnoSolarFieldCanopy,
	TechnoHydroTurbineRunOfRiver,
	TechnoHydroTurbinePumpedStorage,
	TechnoHydroTurbineReservoir,
	TechnoCogenerationBiomass,
	TechnoCogenerationWaste,
	TechnoCogenerationOther,
}

// Family groups technologies by energy source.
type Family string

const (
	FamilyWind         Family = "wind"
	FamilySolar        Family = "solar"
	FamilyHydro        Family = "hydro"
	FamilyCogeneration Family = "cogeneration"
)

var familyPrefixes = []struct {
	prefix string
	family Family
}{
	{"wind_turbine_", FamilyWind},
	{"solar_field_", FamilySolar},
	{"hydro_turbine_", FamilyHydro},
	{"cogeneration_", FamilyCogeneration},
}

func (t Techno) Valid() bool {
	for _, techno := range Technos {
		if t == techno {
			return true
		}
	}
	return false
}

// Family returns the energy source of t, or "" for unknown values.
func (t Techno) Family() Family {
	if !t.Valid() {
		return ""
	}
	for _, p := range familyPrefixes {
		if strings.HasPrefix(string(t), p.prefix) {
			return p.family
		}
	}
	return ""
}

func ParseTechno(value string) (Techno, error) {
	t := Techno(value)
	if !t.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidTechno, value)
	}
	return t, nil
}

func (t Techno) Value() (driver.Value, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidTechno, string(t))
	}
	return string(t), nil
}

func (t *Techno) Scan(src any) error {
	var raw string
	switch v := src.(type) {
	case string:
		raw = v
	case []byte:
		raw = string(v)
	default:
		return fmt.Errorf("%w: cannot scan %T", ErrInvalidTechno, src)
	}
	parsed, err := ParseTechno(raw)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Site is a renewable-energy production site. Name is globally unique.
type Site struct {
	ID        int64                       `json:"id" gorm:"primaryKey;autoIncrement"`
	Name      string                      `json:"name" gorm:"type:varchar(100);not null;uniqueIndex:ux_sites_name"`
	Capacity  float64                     `json:"capacity" gorm:"not null"`
	Techno    Techno                      `json:"techno" gorm:"type:varchar(64);not null"`
	Latitude  *float64                    `json:"latitude,omitempty"`
	Longitude *float64                    `json:"longitude,omitempty"`
	Contracts []contractdomain.Contract   `json:"contracts,omitempty" gorm:"foreignKey:SiteID;constraint:OnDelete:RESTRICT"`
	Records   []timeseriesdomain.TSRecord `json:"records,omitempty" gorm:"foreignKey:SiteID;constraint:OnDelete:RESTRICT"`
}

// TableName sets the database table name.
func (Site) TableName() string { return "sites" }

// String returns the name.
func (s *Site) String() string {
	if s == nil {
		return "<nil>"
	}
	return s.Name
}
