package app

import (
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/relabs-tech/air_monitor/internal/acquisition"
	"github.com/relabs-tech/air_monitor/internal/env"
	"github.com/relabs-tech/air_monitor/internal/sen5x"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var testStart = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func okResult() acquisition.Result {
	return acquisition.Result{
		Started:  testStart,
		Duration: 3500 * time.Millisecond,
		Reading: env.Reading{
			Temperature: 21.5,
			Humidity:    40.25,
			PM1:         1.5,
			PM25:        2.5,
			PM4:         4.5,
			PM10:        10.5,
			VOC:         100,
			NOx:         1,
			Timestamp:   float64(testStart.Unix()),
		},
		Device: sen5x.StatusFanCleaning,
	}
}

func failedResult() acquisition.Result {
	return acquisition.Result{
		Started:  testStart,
		Duration: 5 * time.Second,
		Err:      acquisition.ErrDataNotReadyTimeout,
	}
}

var errBoom = errors.New("boom")
