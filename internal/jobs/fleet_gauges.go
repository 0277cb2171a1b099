package jobs

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"

	"github.com/Imanalii/yitiflow-dashboard/internal/model"
	"github.com/Imanalii/yitiflow-dashboard/internal/store"
)

var (
	vehiclesByStatus = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "yitiflow_vehicles",
		Help: "Fleet vehicles by status.",
	}, []string{"status"})
	tripsByStatus = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "yitiflow_trips",
		Help: "Trips by status.",
	}, []string{"status"})
)

var (
	vehicleStatuses = []model.VehicleStatus{model.VehicleAvailable, model.VehicleBusy, model.VehicleMaintenance}
	tripStatuses    = []model.TripStatus{model.TripPending, model.TripActive, model.TripCompleted, model.TripCancelled}
)

// StartFleetGauges refreshes the dashboard gauges on a fixed interval.
// A degraded store simply reports an empty fleet.
func StartFleetGauges(ctx context.Context, interval time.Duration, st *store.Store, logger *zap.Logger) {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := refreshFleetGauges(ctx, st); err != nil {
					logger.Warn("fleet gauge refresh failed", zap.Error(err))
				}
			}
		}
	}()
}

func refreshFleetGauges(ctx context.Context, st *store.Store) error {
	vehicles, err := st.ListVehicles(ctx)
	if err != nil {
		return err
	}
	vehicleCounts := map[model.VehicleStatus]int{}
	for _, vehicle := range vehicles {
		vehicleCounts[vehicle.Status]++
	}
	for _, status := range vehicleStatuses {
		vehiclesByStatus.WithLabelValues(string(status)).Set(float64(vehicleCounts[status]))
	}

	trips, err := st.ListTrips(ctx)
	if err != nil {
		return err
	}
	tripCounts := map[model.TripStatus]int{}
	for _, trip := range trips {
		tripCounts[trip.Status]++
	}
	for _, status := range tripStatuses {
		tripsByStatus.WithLabelValues(string(status)).Set(float64(tripCounts[status]))
	}
	return nil
}
