package gtfsrt

import (
	"fmt"

	"github.com/onboardtransit/onboard/pkg/wire"
)

// ParseVehiclePositions decodes a vehicle positions feed. Malformed or
// truncated bytes fail the whole parse rather than returning partial data.
func ParseVehiclePositions(buf []byte) ([]VehiclePosition, error) {
	var vehicles []VehiclePosition

	err := forEachEntity(buf, func(id string, entity []byte) error {
		payload, err := messageField(entity, entityFieldVehicle)
		if err != nil || payload == nil {
			return err
		}

		vehicle, err := parseVehiclePosition(payload)
		if err != nil {
			return err
		}

		vehicles = append(vehicles, vehicle)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return vehicles, nil
}

func parseVehiclePosition(buf []byte) (VehiclePosition, error) {
	var vehicle VehiclePosition
	offset := 0

	for offset < len(buf) {
		field, wireType, next, err := wire.ReadTag(buf, offset)
		if err != nil {
			return vehicle, err
		}
		offset = next

		switch {
		case field == 1 && wireType == wire.TypeLengthDelimited:
			var payload []byte
			payload, offset, err = wire.ReadBytes(buf, offset)
			if err == nil {
				vehicle.Trip, err = parseTripDescriptor(payload)
			}
		case field == 2 && wireType == wire.TypeLengthDelimited:
			var payload []byte
			payload, offset, err = wire.ReadBytes(buf, offset)
			if err == nil {
				err = parsePosition(payload, &vehicle)
			}
		case field == 3 && wireType == wire.TypeVarint:
			var sequence uint64
			sequence, offset, err = wire.ReadUvarint(buf, offset)
			vehicle.StopSequence = int(sequence)
		case field == 4 && wireType == wire.TypeVarint:
			var status uint64
			status, offset, err = wire.ReadUvarint(buf, offset)
			vehicle.Status = vehicleStatusNames[status]
		case field == 5 && wireType == wire.TypeVarint:
			var timestamp uint64
			timestamp, offset, err = wire.ReadUvarint(buf, offset)
			vehicle.Timestamp = int64(timestamp)
		case field == 7 && wireType == wire.TypeLengthDelimited:
			vehicle.StopID, offset, err = wire.ReadString(buf, offset)
		case field == 8 && wireType == wire.TypeLengthDelimited:
			var payload []byte
			payload, offset, err = wire.ReadBytes(buf, offset)
			if err == nil {
				vehicle.Vehicle, err = parseVehicleDescriptor(payload)
			}
		default:
			offset, err = wire.SkipField(buf, offset, wireType)
		}

		if err != nil {
			return vehicle, fmt.Errorf("vehicle position field %d: %w", field, err)
		}
	}

	return vehicle, nil
}

func parsePosition(buf []byte, vehicle *VehiclePosition) error {
	offset := 0

	for offset < len(buf) {
		field, wireType, next, err := wire.ReadTag(buf, offset)
		if err != nil {
			return err
		}
		offset = next

		var value float32

		switch {
		case field == 1 && wireType == wire.TypeFixed32:
			value, offset, err = wire.ReadFloat32(buf, offset)
			vehicle.Latitude = float64(value)
		case field == 2 && wireType == wire.TypeFixed32:
			value, offset, err = wire.ReadFloat32(buf, offset)
			vehicle.Longitude = float64(value)
		case field == 3 && wireType == wire.TypeFixed32:
			value, offset, err = wire.ReadFloat32(buf, offset)
			vehicle.Bearing = float64(value)
		case field == 4 && wireType == wire.TypeFixed32:
			value, offset, err = wire.ReadFloat32(buf, offset)
			vehicle.Speed = float64(value)
		default:
			offset, err = wire.SkipField(buf, offset, wireType)
		}

		if err != nil {
			return fmt.Errorf("position field %d: %w", field, err)
		}
	}

	return nil
}
