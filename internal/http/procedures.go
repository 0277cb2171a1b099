package http

import (
	"encoding/json"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/Imanalii/yitiflow-dashboard/internal/model"
)

// Vehicles

func (s *Server) handleVehiclesList(w http.ResponseWriter, r *http.Request) {
	vehicles, err := s.store.ListVehicles(r.Context())
	if err != nil {
		s.logger.Error("list vehicles failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	writeJSON(w, http.StatusOK, vehicles)
}

func (s *Server) handleVehiclesGetByID(w http.ResponseWriter, r *http.Request) {
	id, err := numberInput(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	vehicle, err := s.store.GetVehicle(r.Context(), id)
	if err != nil {
		s.logger.Error("get vehicle failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	writeJSON(w, http.StatusOK, vehicle)
}

func (s *Server) handleVehiclesCreate(w http.ResponseWriter, r *http.Request) {
	_, body, err := validateInput(r, shape{
		"providerId":   kindNumber,
		"type":         kindString,
		"licensePlate": kindString,
		"capacity":     kindNumber,
		"fuelType":     kindString,
	}, "{ providerId: number, type: string, licensePlate: string, capacity: number, fuelType: string }")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	var insert model.VehicleInsert
	if err := json.Unmarshal(body, &insert); err != nil {
		writeError(w, http.StatusBadRequest, "invalid input: malformed vehicle")
		return
	}
	vehicle, err := s.store.CreateVehicle(r.Context(), insert)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, vehicle)
}

func (s *Server) handleVehiclesUpdateLocation(w http.ResponseWriter, r *http.Request) {
	payload, _, err := validateInput(r, shape{
		"id":        kindNumber,
		"latitude":  kindString,
		"longitude": kindString,
	}, "{ id: number, latitude: string, longitude: string }")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	var id int64
	var latitude, longitude string
	if json.Unmarshal(payload["id"], &id) != nil ||
		json.Unmarshal(payload["latitude"], &latitude) != nil ||
		json.Unmarshal(payload["longitude"], &longitude) != nil {
		writeError(w, http.StatusBadRequest, "invalid input: expected { id: number, latitude: string, longitude: string }")
		return
	}
	if err := s.store.UpdateVehiclePosition(r.Context(), id, latitude, longitude); err != nil {
		s.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// Trips

func (s *Server) handleTripsList(w http.ResponseWriter, r *http.Request) {
	trips, err := s.store.ListTrips(r.Context())
	if err != nil {
		s.logger.Error("list trips failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	writeJSON(w, http.StatusOK, trips)
}

func (s *Server) handleTripsGetByID(w http.ResponseWriter, r *http.Request) {
	id, err := numberInput(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	trip, err := s.store.GetTrip(r.Context(), id)
	if err != nil {
		s.logger.Error("get trip failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	writeJSON(w, http.StatusOK, trip)
}

func (s *Server) handleTripsCreate(w http.ResponseWriter, r *http.Request) {
	_, body, err := validateInput(r, shape{
		"userId":         kindNumber,
		"vehicleId":      kindNumber,
		"startLatitude":  kindString,
		"startLongitude": kindString,
		"startTime":      kindString,
	}, "{ userId: number, vehicleId: number, startLatitude: string, startLongitude: string, startTime: string }")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	var insert model.TripInsert
	if err := json.Unmarshal(body, &insert); err != nil {
		writeError(w, http.StatusBadRequest, "invalid input: malformed trip")
		return
	}
	trip, err := s.store.CreateTrip(r.Context(), insert)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, trip)
}

func (s *Server) handleTripsUpdateStatus(w http.ResponseWriter, r *http.Request) {
	payload, _, err := validateInput(r, shape{
		"id":     kindNumber,
		"status": kindString,
	}, "{ id: number, status: string }")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	var id int64
	var rawStatus string
	if json.Unmarshal(payload["id"], &id) != nil || json.Unmarshal(payload["status"], &rawStatus) != nil {
		writeError(w, http.StatusBadRequest, "invalid input: expected { id: number, status: string }")
		return
	}
	status, err := normalizeTripStatus(rawStatus)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_status")
		return
	}
	if err := s.store.UpdateTripStatus(r.Context(), id, status); err != nil {
		s.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func normalizeTripStatus(value string) (model.TripStatus, error) {
	switch model.TripStatus(value) {
	case model.TripPending, model.TripActive, model.TripCompleted, model.TripCancelled:
		return model.TripStatus(value), nil
	}
	return "", fmt.Errorf("unknown trip status %q", value)
}

// Sensors

func (s *Server) handleSensorsSave(w http.ResponseWriter, r *http.Request) {
	_, body, err := validateInput(r, shape{
		"vehicleId": kindNumber,
		"deviceId":  kindString,
		"timestamp": kindString,
	}, "{ vehicleId: number, deviceId: string, timestamp: string }")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	var insert model.SensorReadingInsert
	if err := json.Unmarshal(body, &insert); err != nil {
		writeError(w, http.StatusBadRequest, "invalid input: malformed sensor reading")
		return
	}
	reading, err := s.store.SaveSensorReading(r.Context(), insert)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, reading)
}

func (s *Server) handleSensorsLatest(w http.ResponseWriter, r *http.Request) {
	vehicleID, err := numberInput(r, "vehicleId")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	reading, err := s.store.LatestSensorReading(r.Context(), vehicleID)
	if err != nil {
		s.logger.Error("latest sensor reading failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	writeJSON(w, http.StatusOK, reading)
}

// Rewards

func (s *Server) handleRewardsList(w http.ResponseWriter, r *http.Request) {
	rewards, err := s.store.ListRewards(r.Context())
	if err != nil {
		s.logger.Error("list rewards failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	writeJSON(w, http.StatusOK, rewards)
}

func (s *Server) handleRewardsByUser(w http.ResponseWriter, r *http.Request) {
	userID, err := numberInput(r, "userId")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	rewards, err := s.store.RewardsByUser(r.Context(), userID)
	if err != nil {
		s.logger.Error("rewards by user failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	writeJSON(w, http.StatusOK, rewards)
}

func (s *Server) handleRewardsBalance(w http.ResponseWriter, r *http.Request) {
	userID, err := numberInput(r, "userId")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	rewards, err := s.store.RewardsByUser(r.Context(), userID)
	if err != nil {
		s.logger.Error("rewards by user failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	writeJSON(w, http.StatusOK, rewardBalance(rewards))
}

func (s *Server) handleRewardsCreate(w http.ResponseWriter, r *http.Request) {
	_, body, err := validateInput(r, shape{
		"userId": kindNumber,
		"type":   kindString,
		"amount": kindNumber,
	}, "{ userId: number, type: string, amount: number }")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	var insert model.RewardInsert
	if err := json.Unmarshal(body, &insert); err != nil {
		writeError(w, http.StatusBadRequest, "invalid input: malformed reward")
		return
	}
	reward, err := s.store.CreateReward(r.Context(), insert)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, reward)
}

// rewardBalance is a pure fold over the user's ledger rows, recomputed on
// every call; per-user row sets are assumed small.
func rewardBalance(rewards []model.Reward) model.RewardBalance {
	var balance model.RewardBalance
	for _, reward := range rewards {
		balance.TotalEarned += reward.Amount
		balance.TotalRedeemed += reward.Redeemed
	}
	balance.Balance = balance.TotalEarned - balance.TotalRedeemed
	return balance
}
