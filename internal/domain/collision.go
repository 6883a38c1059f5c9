package domain

import "time"

// Normalized column vocabulary. Source headers are lowercased once at load time
// and every downstream lookup goes through these names.
const (
	ColCrashDate          = "crash date"
	ColCrashTime          = "crash time"
	ColDateTime           = "date/time"
	ColBorough            = "borough"
	ColZipCode            = "zip code"
	ColLatitude           = "latitude"
	ColLongitude          = "longitude"
	ColOnStreet           = "on street name"
	ColCrossStreet        = "cross street name"
	ColPersonsInjured     = "number of persons injured"
	ColPersonsKilled      = "number of persons killed"
	ColPedestriansInjured = "number of pedestrians injured"
	ColPedestriansKilled  = "number of pedestrians killed"
	ColCyclistsInjured    = "number of cyclist injured"
	ColCyclistsKilled     = "number of cyclist killed"
	ColMotoristsInjured   = "number of motorist injured"
	ColMotoristsKilled    = "number of motorist killed"
	ColContributingFactor = "contributing factor vehicle 1"
	ColCollisionID        = "collision_id"
	ColVehicleType        = "vehicle type code 1"
)

// RequiredColumns must be present in the source header.
var RequiredColumns = []string{ColCrashDate, ColCrashTime, ColLatitude, ColLongitude}

// Geo represents a WGS-84 latitude/longitude coordinate pair.
type Geo struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Casualties holds injured/killed counts for one class of person.
type Casualties struct {
	Injured int `json:"injured"`
	Killed  int `json:"killed"`
}

// Count returns the count matching the perspective.
func (c Casualties) Count(p Perspective) int {
	if p == Killed {
		return c.Killed
	}
	return c.Injured
}

// Collision is one reported collision. Categorical fields use the empty string
// for null.
type Collision struct {
	CollisionID string    `json:"collision_id,omitempty"`
	Time        time.Time `json:"date_time"`
	Geo         Geo       `json:"geo"`
	Borough     string    `json:"borough,omitempty"`
	ZipCode     string    `json:"zip_code,omitempty"`

	Persons     Casualties `json:"persons"`
	Pedestrians Casualties `json:"pedestrians"`
	Cyclists    Casualties `json:"cyclists"`
	Motorists   Casualties `json:"motorists"`

	VehicleType        string `json:"vehicle_type,omitempty"`
	ContributingFactor string `json:"contributing_factor,omitempty"`
	OnStreet           string `json:"on_street,omitempty"`
	CrossStreet        string `json:"cross_street,omitempty"`
}

// ClassCasualties returns the casualty counts for an affected class.
func (c Collision) ClassCasualties(class Class) Casualties {
	switch class {
	case Pedestrians:
		return c.Pedestrians
	case Cyclists:
		return c.Cyclists
	case Motorists:
		return c.Motorists
	default:
		return c.Persons
	}
}

// Category returns the categorical value for a top-N category, "" when null.
func (c Collision) Category(cat Category) string {
	switch cat {
	case VehicleTypes:
		return c.VehicleType
	case ContributingFactors:
		return c.ContributingFactor
	case StreetNames:
		return c.OnStreet
	default:
		return ""
	}
}
