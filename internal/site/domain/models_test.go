package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTechnoFamily(t *testing.T) {
	tests := map[Techno]Family{
		TechnoWindTurbineOnshore:        FamilyWind,
		TechnoWindTurbineOffshore:       FamilyWind,
		TechnoSolarFieldGroundMounted:   FamilySolar,
		TechnoSolarFieldRooftop:         FamilySolar,
		TechnoSolarFieldCanopy:          FamilySolar,
		TechnoHydroTurbineRunOfRiver:    FamilyHydro,
		TechnoHydroTurbinePumpedStorage: FamilyHydro,
		TechnoHydroTurbineReservoir:     FamilyHydro,
		TechnoCogenerationBiomass:       FamilyCogeneration,
		TechnoCogenerationWaste:         FamilyCogeneration,
		TechnoCogenerationOther:         FamilyCogeneration,
	}
	require.Len(t, Technos, len(tests))

	for techno, family := range tests {
		assert.Equal(t, family, techno.Family(), techno)
	}
	assert.Empty(t, Techno("wind_turbine_vertical").Family())
}

func TestTechnoScan(t *testing.T) {
	var techno Techno
	require.NoError(t, techno.Scan("hydro_turbine_reservoir"))
	assert.Equal(t, TechnoHydroTurbineReservoir, techno)

	assert.True(t, errors.Is(techno.Scan("nuclear"), ErrInvalidTechno))
	assert.True(t, errors.Is(techno.Scan(3.5), ErrInvalidTechno))

	_, err := Techno("SOLAR_FIELD_ROOFTOP").Value()
	assert.True(t, errors.Is(err, ErrInvalidTechno))
}

func TestSiteString(t *testing.T) {
	assert.Equal(t, "Le Moulin", (&Site{Name: "Le Moulin"}).String())

	var missing *Site
	assert.Equal(t, "<nil>", missing.String())
}
