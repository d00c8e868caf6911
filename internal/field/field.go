package field

// Field is a quantity that can be evaluated anywhere in the atmosphere.
type Field interface {
	At(alt, lat, lon float64) (float64, error)
}

// Position is a point in altitude [m], latitude and longitude [deg].
type Position struct {
	Alt float64 `yaml:"alt" json:"alt"`
	Lat float64 `yaml:"lat" json:"lat"`
	Lon float64 `yaml:"lon" json:"lon"`
}

// Constant is a field with the same value everywhere.
type Constant float64

func (c Constant) At(_, _, _ float64) (float64, error) {
	return float64(c), nil
}

// Func is a field given by a closed-form function.
type Func func(alt, lat, lon float64) float64

func (f Func) At(alt, lat, lon float64) (float64, error) {
	return f(alt, lat, lon), nil
}

// Sample evaluates f at the given position.
func Sample(f Field, alt, lat, lon float64) (float64, error) {
	return f.At(alt, lat, lon)
}

// SampleAt evaluates f at pos.
func SampleAt(f Field, pos Position) (float64, error) {
	return f.At(pos.Alt, pos.Lat, pos.Lon)
}
