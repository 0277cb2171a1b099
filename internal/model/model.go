package model

import (
	"encoding/json"
	"time"
)

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

type VehicleType string

const (
	VehicleBoat        VehicleType = "boat"
	VehicleBus         VehicleType = "bus"
	VehicleCar         VehicleType = "car"
	VehicleElectricCar VehicleType = "electric_car"
)

type VehicleStatus string

const (
	VehicleAvailable   VehicleStatus = "available"
	VehicleBusy        VehicleStatus = "busy"
	VehicleMaintenance VehicleStatus = "maintenance"
)

type FuelType string

const (
	FuelDiesel   FuelType = "diesel"
	FuelElectric FuelType = "electric"
	FuelHybrid   FuelType = "hybrid"
)

type TripStatus string

const (
	TripPending   TripStatus = "pending"
	TripActive    TripStatus = "active"
	TripCompleted TripStatus = "completed"
	TripCancelled TripStatus = "cancelled"
)

type RewardType string

const (
	RewardSustainableChoice RewardType = "sustainable_choice"
	RewardOffPeak           RewardType = "off_peak"
	RewardLoyalty           RewardType = "loyalty"
	RewardSocial            RewardType = "social"
)

// User is a rider or operator identified by an external OAuth openId.
type User struct {
	ID           int64     `json:"id"`
	OpenID       string    `json:"openId"`
	Name         *string   `json:"name"`
	Email        *string   `json:"email"`
	LoginMethod  *string   `json:"loginMethod"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
	LastSignedIn time.Time `json:"lastSignedIn"`
}

// NullableString distinguishes an explicit JSON null (clear the column)
// from an omitted key (leave the column unchanged).
type NullableString struct {
	Set   bool
	Value *string
}

func (n *NullableString) UnmarshalJSON(data []byte) error {
	n.Set = true
	return json.Unmarshal(data, &n.Value)
}

func (n NullableString) MarshalJSON() ([]byte, error) {
	return json.Marshal(n.Value)
}

// UserUpsert carries the fields supplied on login. Pointer/Set fields that
// are absent keep the stored value.
type UserUpsert struct {
	OpenID       string         `json:"openId"`
	Name         NullableString `json:"name"`
	Email        NullableString `json:"email"`
	LoginMethod  NullableString `json:"loginMethod"`
	Role         *Role          `json:"role"`
	LastSignedIn *time.Time     `json:"lastSignedIn"`
}

// Vehicle positions are decimal strings so no precision is lost between the
// store and the map widget. Latitude and longitude are both set or both nil.
type Vehicle struct {
	ID               int64         `json:"id"`
	ProviderID       int64         `json:"providerId"`
	Type             VehicleType   `json:"type"`
	LicensePlate     string        `json:"licensePlate"`
	Capacity         int32         `json:"capacity"`
	CurrentLatitude  *string       `json:"currentLatitude"`
	CurrentLongitude *string       `json:"currentLongitude"`
	Status           VehicleStatus `json:"status"`
	FuelType         FuelType      `json:"fuelType"`
	CreatedAt        time.Time     `json:"createdAt"`
	UpdatedAt        time.Time     `json:"updatedAt"`
}

type VehicleInsert struct {
	ProviderID       int64         `json:"providerId"`
	Type             VehicleType   `json:"type"`
	LicensePlate     string        `json:"licensePlate"`
	Capacity         int32         `json:"capacity"`
	CurrentLatitude  *string       `json:"currentLatitude"`
	CurrentLongitude *string       `json:"currentLongitude"`
	Status           VehicleStatus `json:"status"`
	FuelType         FuelType      `json:"fuelType"`
}

// Trip distances are meters, durations seconds, prices in the minor currency
// unit and emissions in grams; all plain integers, absent until known.
type Trip struct {
	ID              int64      `json:"id"`
	UserID          int64      `json:"userId"`
	VehicleID       int64      `json:"vehicleId"`
	StartLatitude   string     `json:"startLatitude"`
	StartLongitude  string     `json:"startLongitude"`
	StartAddress    *string    `json:"startAddress"`
	EndLatitude     *string    `json:"endLatitude"`
	EndLongitude    *string    `json:"endLongitude"`
	EndAddress      *string    `json:"endAddress"`
	StartTime       time.Time  `json:"startTime"`
	EndTime         *time.Time `json:"endTime"`
	Distance        *int64     `json:"distance"`
	Duration        *int64     `json:"duration"`
	Price           *int64     `json:"price"`
	CarbonEmissions *int64     `json:"carbonEmissions"`
	Rating          *int32     `json:"rating"`
	Review          *string    `json:"review"`
	Status          TripStatus `json:"status"`
	CreatedAt       time.Time  `json:"createdAt"`
}

type TripInsert struct {
	UserID          int64      `json:"userId"`
	VehicleID       int64      `json:"vehicleId"`
	StartLatitude   string     `json:"startLatitude"`
	StartLongitude  string     `json:"startLongitude"`
	StartAddress    *string    `json:"startAddress"`
	EndLatitude     *string    `json:"endLatitude"`
	EndLongitude    *string    `json:"endLongitude"`
	EndAddress      *string    `json:"endAddress"`
	StartTime       time.Time  `json:"startTime"`
	EndTime         *time.Time `json:"endTime"`
	Distance        *int64     `json:"distance"`
	Duration        *int64     `json:"duration"`
	Price           *int64     `json:"price"`
	CarbonEmissions *int64     `json:"carbonEmissions"`
	Rating          *int32     `json:"rating"`
	Review          *string    `json:"review"`
	Status          TripStatus `json:"status"`
}

// SensorReading is one immutable telemetry event. Temperature and humidity
// are fixed-point ×100, co2 is ppm. Ordering is by Timestamp, never by id.
type SensorReading struct {
	ID          int64     `json:"id"`
	VehicleID   int64     `json:"vehicleId"`
	DeviceID    string    `json:"deviceId"`
	Latitude    *string   `json:"latitude"`
	Longitude   *string   `json:"longitude"`
	Temperature *int32    `json:"temperature"`
	Humidity    *int32    `json:"humidity"`
	CO2         *int32    `json:"co2"`
	Timestamp   time.Time `json:"timestamp"`
	CreatedAt   time.Time `json:"createdAt"`
}

type SensorReadingInsert struct {
	VehicleID   int64     `json:"vehicleId"`
	DeviceID    string    `json:"deviceId"`
	Latitude    *string   `json:"latitude"`
	Longitude   *string   `json:"longitude"`
	Temperature *int32    `json:"temperature"`
	Humidity    *int32    `json:"humidity"`
	CO2         *int32    `json:"co2"`
	Timestamp   time.Time `json:"timestamp"`
}

// Reward is one ledger row of the loyalty-point system. Multiplier is
// fixed-point ×100 (150 = 1.5×). Redeemed is the amount already spent from
// this row; nothing enforces redeemed <= amount, matching the stored data.
type Reward struct {
	ID         int64      `json:"id"`
	UserID     int64      `json:"userId"`
	TripID     *int64     `json:"tripId"`
	Type       RewardType `json:"type"`
	Amount     int64      `json:"amount"`
	Multiplier int32      `json:"multiplier"`
	EarnedAt   time.Time  `json:"earnedAt"`
	ExpiresAt  *time.Time `json:"expiresAt"`
	Redeemed   int64      `json:"redeemed"`
}

type RewardInsert struct {
	UserID     int64      `json:"userId"`
	TripID     *int64     `json:"tripId"`
	Type       RewardType `json:"type"`
	Amount     int64      `json:"amount"`
	Multiplier *int32     `json:"multiplier"`
	EarnedAt   *time.Time `json:"earnedAt"`
	ExpiresAt  *time.Time `json:"expiresAt"`
	Redeemed   *int64     `json:"redeemed"`
}

// RewardBalance is the derived per-user ledger summary.
type RewardBalance struct {
	TotalEarned   int64 `json:"totalEarned"`
	TotalRedeemed int64 `json:"totalRedeemed"`
	Balance       int64 `json:"balance"`
}
