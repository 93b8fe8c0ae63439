package env

// Reading represents a single decoded SEN5x measurement.
type Reading struct {
	Temperature float64 `json:"temperature"` // °C
	Humidity    float64 `json:"humidity"`    // %RH
	PM1         float64 `json:"pm1"`         // µg/m³
	PM25        float64 `json:"pm25"`        // µg/m³
	PM4         float64 `json:"pm4"`         // µg/m³
	PM10        float64 `json:"pm10"`        // µg/m³
	VOC         float64 `json:"voc"`         // VOC index
	NOx         float64 `json:"nox"`         // NOx index

	Timestamp float64 `json:"timestamp"` // seconds since the Unix epoch
}
