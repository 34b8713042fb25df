package lifecycle

import (
	"time"

	"github.com/cinesrc/cinesrc/source"
	"github.com/dustin/go-humanize"
)

const (
	idleSpeed        = "0 B/s"
	doneRemaining    = "0s"
	unknownRemaining = "--"
)

// nominalSize is the assumed size of a retrieval, used to turn percent
// increments into a speed.
var nominalSize = map[source.Quality]uint64{
	source.QualitySD:  700 * humanize.MByte,
	source.QualityHD:  1500 * humanize.MByte,
	source.QualityFHD: 4 * humanize.GByte,
	source.Quality4K:  15 * humanize.GByte,
}

// speedLabel is the rate of advancing by increment percent every interval.
func speedLabel(quality source.Quality, increment int, interval time.Duration) string {
	if increment <= 0 || interval <= 0 {
		return idleSpeed
	}

	size, ok := nominalSize[quality]
	if !ok {
		size = nominalSize[source.QualitySD]
	}

	perTick := float64(size) * float64(increment) / 100
	return humanize.Bytes(uint64(perTick/interval.Seconds())) + "/s"
}

// remainingLabel estimates the time left at the current increment.
func remainingLabel(progress, increment int, interval time.Duration) string {
	if progress >= 100 {
		return doneRemaining
	}
	if increment <= 0 || interval <= 0 {
		return unknownRemaining
	}

	ticks := (100 - progress + increment - 1) / increment
	return (time.Duration(ticks) * interval).Round(time.Second).String()
}
