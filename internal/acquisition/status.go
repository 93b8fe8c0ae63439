package acquisition

import (
	"fmt"

	"github.com/relabs-tech/air_monitor/internal/env"
)

// Status lines shown before the first reading.
const (
	StatusStarting    = "Starting..."
	StatusInitialized = "Sensor initialized"
	StatusInitFailed  = "Sensor init failed!"
)

// InitStatus returns the status line for the outcome of sensor init.
func InitStatus(err error) string {
	if err != nil {
		return StatusInitFailed
	}
	return StatusInitialized
}

// ReadingsText formats a reading as the multi-line block shown on the
// status panel.
func ReadingsText(r env.Reading) string {
	return fmt.Sprintf("Temp: %.1f°C\nHumidity: %.1f%%\nPM2.5: %.1f µg/m³\nPM10: %.1f µg/m³\nVOC: %.1f\nNOx: %.1f",
		r.Temperature, r.Humidity, r.PM25, r.PM10, r.VOC, r.NOx)
}
