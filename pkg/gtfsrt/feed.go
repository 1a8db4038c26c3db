package gtfsrt

import (
	"fmt"

	"github.com/onboardtransit/onboard/pkg/wire"
)

// Feed entity field numbers within the top level message.
const (
	fieldFeedEntity = 2

	entityFieldID         = 1
	entityFieldTripUpdate = 3
	entityFieldVehicle    = 4
	entityFieldAlert      = 5
)

// forEachEntity walks the top level message and hands every entity payload to
// visit, along with the entity id. Unknown fields are skipped by wire type.
func forEachEntity(buf []byte, visit func(id string, entity []byte) error) error {
	offset := 0

	for offset < len(buf) {
		field, wireType, next, err := wire.ReadTag(buf, offset)
		if err != nil {
			return fmt.Errorf("feed header: %w", err)
		}
		offset = next

		if field == fieldFeedEntity && wireType == wire.TypeLengthDelimited {
			entity, next, err := wire.ReadBytes(buf, offset)
			if err != nil {
				return fmt.Errorf("feed entity: %w", err)
			}
			offset = next

			id, err := entityID(entity)
			if err != nil {
				return err
			}

			if err := visit(id, entity); err != nil {
				return err
			}
			continue
		}

		offset, err = wire.SkipField(buf, offset, wireType)
		if err != nil {
			return fmt.Errorf("feed field %d: %w", field, err)
		}
	}

	return nil
}

func entityID(entity []byte) (string, error) {
	offset := 0

	for offset < len(entity) {
		field, wireType, next, err := wire.ReadTag(entity, offset)
		if err != nil {
			return "", err
		}
		offset = next

		if field == entityFieldID && wireType == wire.TypeLengthDelimited {
			id, _, err := wire.ReadString(entity, offset)
			return id, err
		}

		offset, err = wire.SkipField(entity, offset, wireType)
		if err != nil {
			return "", err
		}
	}

	return "", nil
}

// messageField returns the payload of the first length-delimited occurrence
// of field within message, or nil when absent.
func messageField(message []byte, wanted int) ([]byte, error) {
	offset := 0

	for offset < len(message) {
		field, wireType, next, err := wire.ReadTag(message, offset)
		if err != nil {
			return nil, err
		}
		offset = next

		if field == wanted && wireType == wire.TypeLengthDelimited {
			payload, _, err := wire.ReadBytes(message, offset)
			return payload, err
		}

		offset, err = wire.SkipField(message, offset, wireType)
		if err != nil {
			return nil, err
		}
	}

	return nil, nil
}

func parseTripDescriptor(buf []byte) (TripDescriptor, error) {
	var trip TripDescriptor
	offset := 0

	for offset < len(buf) {
		field, wireType, next, err := wire.ReadTag(buf, offset)
		if err != nil {
			return trip, err
		}
		offset = next

		switch {
		case field == 1 && wireType == wire.TypeLengthDelimited:
			trip.TripID, offset, err = wire.ReadString(buf, offset)
		case field == 2 && wireType == wire.TypeLengthDelimited:
			trip.StartTime, offset, err = wire.ReadString(buf, offset)
		case field == 3 && wireType == wire.TypeLengthDelimited:
			trip.StartDate, offset, err = wire.ReadString(buf, offset)
		case field == 5 && wireType == wire.TypeLengthDelimited:
			trip.RouteID, offset, err = wire.ReadString(buf, offset)
		case field == 6 && wireType == wire.TypeVarint:
			var direction uint64
			direction, offset, err = wire.ReadUvarint(buf, offset)
			trip.Direction = int(direction)
		default:
			offset, err = wire.SkipField(buf, offset, wireType)
		}

		if err != nil {
			return trip, fmt.Errorf("trip descriptor field %d: %w", field, err)
		}
	}

	return trip, nil
}

func parseVehicleDescriptor(buf []byte) (VehicleDescriptor, error) {
	var vehicle VehicleDescriptor
	offset := 0

	for offset < len(buf) {
		field, wireType, next, err := wire.ReadTag(buf, offset)
		if err != nil {
			return vehicle, err
		}
		offset = next

		switch {
		case field == 1 && wireType == wire.TypeLengthDelimited:
			vehicle.ID, offset, err = wire.ReadString(buf, offset)
		case field == 2 && wireType == wire.TypeLengthDelimited:
			vehicle.Label, offset, err = wire.ReadString(buf, offset)
		default:
			offset, err = wire.SkipField(buf, offset, wireType)
		}

		if err != nil {
			return vehicle, fmt.Errorf("vehicle descriptor field %d: %w", field, err)
		}
	}

	return vehicle, nil
}
