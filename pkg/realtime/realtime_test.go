package realtime

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/MobilityData/gtfs-realtime-bindings/golang/gtfs"
	"github.com/onboardtransit/onboard/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/proto"
)

func vehicleFeed(t *testing.T, tripID string) []byte {
	t.Helper()

	feed := &gtfs.FeedMessage{
		Header: &gtfs.FeedHeader{
			GtfsRealtimeVersion: proto.String("2.0"),
		},
		Entity: []*gtfs.FeedEntity{
			{
				Id: proto.String("veh-1"),
				Vehicle: &gtfs.VehiclePosition{
					Trip: &gtfs.TripDescriptor{TripId: proto.String(tripID)},
					Position: &gtfs.Position{
						Latitude:  proto.Float32(44.65),
						Longitude: proto.Float32(-63.58),
					},
				},
			},
		},
	}

	buf, err := proto.Marshal(feed)
	require.NoError(t, err)

	return buf
}

func TestStoreEmptyBeforeFirstRefresh(t *testing.T) {
	store := &Store{}

	assert.Empty(t, store.Vehicles().Vehicles)
	assert.Empty(t, store.TripUpdates().Updates)
	assert.Empty(t, store.Alerts().Alerts)
	assert.Nil(t, store.Index())
}

func TestRefreshVehiclesReplacesSnapshot(t *testing.T) {
	body := vehicleFeed(t, "trip-1")
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(body)
	}))
	defer server.Close()

	cfg := config.Default()
	cfg.Realtime.VehiclePositionsURL = server.URL

	manager := NewManager(cfg)
	manager.refreshVehicles(context.Background())

	snapshot := manager.Store.Vehicles()
	require.Len(t, snapshot.Vehicles, 1)
	assert.Equal(t, "trip-1", snapshot.Vehicles[0].Trip.TripID)
	assert.False(t, snapshot.FetchedAt.IsZero())

	body = vehicleFeed(t, "trip-2")
	manager.refreshVehicles(context.Background())

	snapshot = manager.Store.Vehicles()
	require.Len(t, snapshot.Vehicles, 1)
	assert.Equal(t, "trip-2", snapshot.Vehicles[0].Trip.TripID)
}

func TestRefreshFailureKeepsPreviousSnapshot(t *testing.T) {
	healthy := true
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !healthy {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write(vehicleFeed(t, "trip-1"))
	}))
	defer server.Close()

	cfg := config.Default()
	cfg.Realtime.VehiclePositionsURL = server.URL

	manager := NewManager(cfg)
	manager.refreshVehicles(context.Background())
	require.Len(t, manager.Store.Vehicles().Vehicles, 1)

	healthy = false
	manager.refreshVehicles(context.Background())

	// The failed refresh leaves the last good snapshot in place.
	assert.Len(t, manager.Store.Vehicles().Vehicles, 1)
	assert.Equal(t, "trip-1", manager.Store.Vehicles().Vehicles[0].Trip.TripID)
}

func TestRefreshSkipsWhenUnconfigured(t *testing.T) {
	manager := NewManager(config.Default())
	manager.refreshVehicles(context.Background())
	manager.refreshTripUpdates(context.Background())
	manager.refreshAlerts(context.Background())

	assert.Empty(t, manager.Store.Vehicles().Vehicles)
}
