package gtfsrt

import (
	"fmt"

	"github.com/onboardtransit/onboard/pkg/wire"
)

// ParseTripUpdates decodes a trip updates feed.
func ParseTripUpdates(buf []byte) ([]TripUpdate, error) {
	var updates []TripUpdate

	err := forEachEntity(buf, func(id string, entity []byte) error {
		payload, err := messageField(entity, entityFieldTripUpdate)
		if err != nil || payload == nil {
			return err
		}

		update, err := parseTripUpdate(payload)
		if err != nil {
			return err
		}

		updates = append(updates, update)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return updates, nil
}

func parseTripUpdate(buf []byte) (TripUpdate, error) {
	var update TripUpdate
	offset := 0

	for offset < len(buf) {
		field, wireType, next, err := wire.ReadTag(buf, offset)
		if err != nil {
			return update, err
		}
		offset = next

		switch {
		case field == 1 && wireType == wire.TypeLengthDelimited:
			var payload []byte
			payload, offset, err = wire.ReadBytes(buf, offset)
			if err == nil {
				update.Trip, err = parseTripDescriptor(payload)
			}
		case field == 2 && wireType == wire.TypeLengthDelimited:
			var payload []byte
			payload, offset, err = wire.ReadBytes(buf, offset)
			if err == nil {
				var stopTimeUpdate StopTimeUpdate
				stopTimeUpdate, err = parseStopTimeUpdate(payload)
				update.StopTimeUpdates = append(update.StopTimeUpdates, stopTimeUpdate)
			}
		case field == 3 && wireType == wire.TypeLengthDelimited:
			var payload []byte
			payload, offset, err = wire.ReadBytes(buf, offset)
			if err == nil {
				update.Vehicle, err = parseVehicleDescriptor(payload)
			}
		case field == 4 && wireType == wire.TypeVarint:
			var timestamp uint64
			timestamp, offset, err = wire.ReadUvarint(buf, offset)
			update.Timestamp = int64(timestamp)
		default:
			offset, err = wire.SkipField(buf, offset, wireType)
		}

		if err != nil {
			return update, fmt.Errorf("trip update field %d: %w", field, err)
		}
	}

	return update, nil
}

func parseStopTimeUpdate(buf []byte) (StopTimeUpdate, error) {
	var update StopTimeUpdate
	offset := 0

	for offset < len(buf) {
		field, wireType, next, err := wire.ReadTag(buf, offset)
		if err != nil {
			return update, err
		}
		offset = next

		switch {
		case field == 1 && wireType == wire.TypeVarint:
			var sequence uint64
			sequence, offset, err = wire.ReadUvarint(buf, offset)
			update.StopSequence = int(sequence)
		case field == 2 && wireType == wire.TypeLengthDelimited:
			var payload []byte
			payload, offset, err = wire.ReadBytes(buf, offset)
			if err == nil {
				update.Arrival, err = parseStopTimeEvent(payload)
			}
		case field == 3 && wireType == wire.TypeLengthDelimited:
			var payload []byte
			payload, offset, err = wire.ReadBytes(buf, offset)
			if err == nil {
				update.Departure, err = parseStopTimeEvent(payload)
			}
		case field == 4 && wireType == wire.TypeLengthDelimited:
			update.StopID, offset, err = wire.ReadString(buf, offset)
		default:
			offset, err = wire.SkipField(buf, offset, wireType)
		}

		if err != nil {
			return update, fmt.Errorf("stop time update field %d: %w", field, err)
		}
	}

	return update, nil
}

func parseStopTimeEvent(buf []byte) (*StopTimeEvent, error) {
	event := &StopTimeEvent{}
	offset := 0

	for offset < len(buf) {
		field, wireType, next, err := wire.ReadTag(buf, offset)
		if err != nil {
			return nil, err
		}
		offset = next

		switch {
		case field == 1 && wireType == wire.TypeVarint:
			// Signed delay, sign extended across the full varint.
			var delay uint64
			delay, offset, err = wire.ReadUvarint(buf, offset)
			event.Delay = int(int64(delay))
		case field == 2 && wireType == wire.TypeVarint:
			var at uint64
			at, offset, err = wire.ReadUvarint(buf, offset)
			event.Time = int64(at)
		default:
			offset, err = wire.SkipField(buf, offset, wireType)
		}

		if err != nil {
			return nil, fmt.Errorf("stop time event field %d: %w", field, err)
		}
	}

	return event, nil
}
