package domain

// Snapshot holds every record of every layer, in storage order. A Snapshot
// is built once and then only read.
type Snapshot struct {
	AdminBoundaries   []AdminBoundary
	Arrondissements   []Arrondissement
	Buildings         []Building
	MontrealBuildings []MontrealBuilding
	LandUses          []LandUse
	Zonages           []Zonage
	ZoneCells         []ZoneCell
	Properties        []PropertyAssessment
}

// Count returns the number of records held for layer.
func (s *Snapshot) Count(layer Layer) int {
	switch layer {
	case LayerAdminBoundaries:
		return len(s.AdminBoundaries)
	case LayerArrondissements:
		return len(s.Arrondissements)
	case LayerBuildings:
		return len(s.Buildings)
	case LayerMontrealBuildings:
		return len(s.MontrealBuildings)
	case LayerLandUse:
		return len(s.LandUses)
	case LayerZonage:
		return len(s.Zonages)
	case LayerRawZonageTab:
		return len(s.ZoneCells)
	case LayerPropertyAssessment:
		return len(s.Properties)
	}
	return 0
}
