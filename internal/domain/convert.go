package domain

const ozToML = 29.5735295625

// ConvertVolume converts a volume between "oz" and "ml".
// Returns v unchanged if from == to or if the units are unrecognised.
func ConvertVolume(v float64, from, to string) float64 {
	if from == to {
		return v
	}
	if from == "oz" && to == "ml" {
		return v * ozToML
	}
	if from == "ml" && to == "oz" {
		return v / ozToML
	}
	return v
}
