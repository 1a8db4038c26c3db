package gtfsrt

import (
	"fmt"
	"time"

	"github.com/onboardtransit/onboard/pkg/util"
	"github.com/onboardtransit/onboard/pkg/wire"
)

// ParseAlerts decodes a service alerts feed and drops alerts whose active
// periods, when present, do not cover now.
func ParseAlerts(buf []byte, now time.Time) ([]Alert, error) {
	var alerts []Alert

	err := forEachEntity(buf, func(id string, entity []byte) error {
		payload, err := messageField(entity, entityFieldAlert)
		if err != nil || payload == nil {
			return err
		}

		alert, err := parseAlert(payload)
		if err != nil {
			return err
		}

		alert.ID = id
		alerts = append(alerts, alert)
		return nil
	})
	if err != nil {
		return nil, err
	}

	nowMillis := now.UnixMilli()
	util.InPlaceFilter(&alerts, func(alert Alert) bool {
		return alertActiveAt(alert, nowMillis)
	})

	return alerts, nil
}

func alertActiveAt(alert Alert, nowMillis int64) bool {
	if len(alert.ActivePeriods) == 0 {
		return true
	}

	for _, period := range alert.ActivePeriods {
		if period.Start != 0 && nowMillis < period.Start {
			continue
		}
		if period.End != 0 && nowMillis > period.End {
			continue
		}
		return true
	}

	return false
}

func parseAlert(buf []byte) (Alert, error) {
	var alert Alert
	offset := 0

	for offset < len(buf) {
		field, wireType, next, err := wire.ReadTag(buf, offset)
		if err != nil {
			return alert, err
		}
		offset = next

		switch {
		case field == 1 && wireType == wire.TypeLengthDelimited:
			var payload []byte
			payload, offset, err = wire.ReadBytes(buf, offset)
			if err == nil {
				var period ActivePeriod
				period, err = parseActivePeriod(payload)
				alert.ActivePeriods = append(alert.ActivePeriods, period)
			}
		case field == 5 && wireType == wire.TypeLengthDelimited:
			var payload []byte
			payload, offset, err = wire.ReadBytes(buf, offset)
			if err == nil {
				var entity EntitySelector
				entity, err = parseEntitySelector(payload)
				alert.InformedEntities = append(alert.InformedEntities, entity)
			}
		case field == 6 && wireType == wire.TypeVarint:
			var cause uint64
			cause, offset, err = wire.ReadUvarint(buf, offset)
			alert.Cause = alertCauseNames[cause]
		case field == 7 && wireType == wire.TypeVarint:
			var effect uint64
			effect, offset, err = wire.ReadUvarint(buf, offset)
			alert.Effect = alertEffectNames[effect]
		case field == 8 && wireType == wire.TypeLengthDelimited:
			var payload []byte
			payload, offset, err = wire.ReadBytes(buf, offset)
			if err == nil {
				alert.URL, err = firstTranslation(payload)
			}
		case field == 10 && wireType == wire.TypeLengthDelimited:
			var payload []byte
			payload, offset, err = wire.ReadBytes(buf, offset)
			if err == nil {
				alert.HeaderText, err = firstTranslation(payload)
			}
		case field == 11 && wireType == wire.TypeLengthDelimited:
			var payload []byte
			payload, offset, err = wire.ReadBytes(buf, offset)
			if err == nil {
				alert.DescriptionText, err = firstTranslation(payload)
			}
		default:
			offset, err = wire.SkipField(buf, offset, wireType)
		}

		if err != nil {
			return alert, fmt.Errorf("alert field %d: %w", field, err)
		}
	}

	return alert, nil
}

func parseActivePeriod(buf []byte) (ActivePeriod, error) {
	var period ActivePeriod
	offset := 0

	for offset < len(buf) {
		field, wireType, next, err := wire.ReadTag(buf, offset)
		if err != nil {
			return period, err
		}
		offset = next

		switch {
		case field == 1 && wireType == wire.TypeVarint:
			var start uint64
			start, offset, err = wire.ReadUvarint(buf, offset)
			period.Start = int64(start) * 1000
		case field == 2 && wireType == wire.TypeVarint:
			var end uint64
			end, offset, err = wire.ReadUvarint(buf, offset)
			period.End = int64(end) * 1000
		default:
			offset, err = wire.SkipField(buf, offset, wireType)
		}

		if err != nil {
			return period, fmt.Errorf("active period field %d: %w", field, err)
		}
	}

	return period, nil
}

func parseEntitySelector(buf []byte) (EntitySelector, error) {
	var entity EntitySelector
	offset := 0

	for offset < len(buf) {
		field, wireType, next, err := wire.ReadTag(buf, offset)
		if err != nil {
			return entity, err
		}
		offset = next

		switch {
		case field == 1 && wireType == wire.TypeLengthDelimited:
			entity.AgencyID, offset, err = wire.ReadString(buf, offset)
		case field == 2 && wireType == wire.TypeLengthDelimited:
			entity.RouteID, offset, err = wire.ReadString(buf, offset)
		case field == 4 && wireType == wire.TypeLengthDelimited:
			var payload []byte
			payload, offset, err = wire.ReadBytes(buf, offset)
			if err == nil {
				var trip TripDescriptor
				trip, err = parseTripDescriptor(payload)
				entity.TripID = trip.TripID

				// Trip descriptor route id is the fallback when the
				// selector has no route id of its own.
				if entity.RouteID == "" {
					entity.RouteID = trip.RouteID
				}
			}
		case field == 5 && wireType == wire.TypeLengthDelimited:
			entity.StopID, offset, err = wire.ReadString(buf, offset)
		default:
			offset, err = wire.SkipField(buf, offset, wireType)
		}

		if err != nil {
			return entity, fmt.Errorf("informed entity field %d: %w", field, err)
		}
	}

	entity.NormalizedRouteID = NormalizeRouteID(entity.RouteID)

	return entity, nil
}

// firstTranslation returns the text of the first translation in a translated
// string message.
func firstTranslation(buf []byte) (string, error) {
	translation, err := messageField(buf, 1)
	if err != nil || translation == nil {
		return "", err
	}

	text, err := messageField(translation, 1)
	if err != nil {
		return "", err
	}

	return string(text), nil
}
