package media

import (
	"bytes"
	"time"

	"github.com/evanoberholster/imagemeta"
	"github.com/rs/zerolog/log"
)

// extractMetadata pulls capture time and GPS from embedded EXIF. Failure at
// any step yields nil fields; normalization never fails on metadata.
func extractMetadata(raw []byte) (*time.Time, *GPSCoordinate) {
	exif, err := imagemeta.Decode(bytes.NewReader(raw))
	if err != nil {
		log.Debug().Err(err).Msg("No usable EXIF metadata in image")
		return nil, nil
	}

	var captureTime *time.Time
	// Fallback chain: DateTimeOriginal > CreateDate > ModifyDate.
	switch {
	case !exif.DateTimeOriginal().IsZero():
		ts := exif.DateTimeOriginal()
		captureTime = &ts
	case !exif.CreateDate().IsZero():
		ts := exif.CreateDate()
		captureTime = &ts
	case !exif.ModifyDate().IsZero():
		ts := exif.ModifyDate()
		captureTime = &ts
	}

	var gps *GPSCoordinate
	if exif.GPS.Latitude() != 0 || exif.GPS.Longitude() != 0 {
		gps = &GPSCoordinate{
			Latitude:  exif.GPS.Latitude(),
			Longitude: exif.GPS.Longitude(),
		}
	}

	return captureTime, gps
}
