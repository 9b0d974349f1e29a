package reproject

import (
	"github.com/ctessum/geom/proj"
	"github.com/paulmach/orb"
	"github.com/pkg/errors"
	"math"
)

const (
	// Lambert93 is the PROJ definition of EPSG:2154, the projection of the ARCEP site lists.
	Lambert93 = "+proj=lcc +lat_1=49 +lat_2=44 +lat_0=46.5 +lon_0=3 +x_0=700000 +y_0=6600000 +ellps=GRS80 +towgs84=0,0,0,0,0,0,0 +units=m +no_defs"

	// Wgs84 is the PROJ definition of EPSG:4326.
	Wgs84 = "+proj=longlat +datum=WGS84 +no_defs"
)

// supportedProjections are the PROJ projection names that can be transformed. Unknown names are accepted by the parser
// but don't describe a usable projection.
var supportedProjections = map[string]bool{
	"lcc":     true,
	"longlat": true,
	"merc":    true,
	"tmerc":   true,
	"utm":     true,
}

// Transformer converts projected coordinates into WGS84 points.
type Transformer struct {
	transform proj.Transformer
}

func NewLambert93ToWgs84() (*Transformer, error) {
	return NewTransformer(Lambert93)
}

// NewTransformer creates a transformer from the given PROJ definition to WGS84.
func NewTransformer(sourceDefinition string) (*Transformer, error) {
	sourceSR, err := proj.Parse(sourceDefinition)
	if err != nil {
		return nil, errors.Wrapf(err, "Unable to parse source projection '%s'", sourceDefinition)
	}
	if !supportedProjections[sourceSR.Name] {
		return nil, errors.Errorf("Unsupported projection '%s' in definition '%s'", sourceSR.Name, sourceDefinition)
	}

	wgs84SR, err := proj.Parse(Wgs84)
	if err != nil {
		return nil, errors.Wrap(err, "Unable to parse WGS84 projection")
	}

	transform, err := sourceSR.NewTransform(wgs84SR)
	if err != nil {
		return nil, errors.Wrap(err, "Unable to create transformation to WGS84")
	}

	return &Transformer{transform: transform}, nil
}

// ToWgs84 converts the x/y coordinate into a (lon, lat) point.
func (t *Transformer) ToWgs84(x float64, y float64) (orb.Point, error) {
	lon, lat, err := t.transform(x, y)
	if err != nil {
		return orb.Point{}, errors.Wrapf(err, "Unable to transform coordinate (%f, %f)", x, y)
	}
	if math.IsNaN(lon) || math.IsNaN(lat) {
		return orb.Point{}, errors.Errorf("Coordinate (%f, %f) has no WGS84 representation", x, y)
	}
	return orb.Point{lon, lat}, nil
}
