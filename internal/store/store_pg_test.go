package store

import (
	"context"
	"os"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/Imanalii/yitiflow-dashboard/internal/model"
)

func openTestStore(t *testing.T, ownerOpenID string) *Store {
	t.Helper()
	url := os.Getenv("FLEET_TEST_DB")
	if url == "" {
		url = os.Getenv("DATABASE_URL")
	}
	if url == "" {
		t.Skip("FLEET_TEST_DB or DATABASE_URL not set")
		return nil
	}
	s := New(url, ownerOpenID, zap.NewNop())
	if !s.Available(context.Background()) {
		t.Skip("test database unreachable")
		return nil
	}
	if err := s.Migrate(context.Background()); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(s.Close)
	return s
}

func TestUpsertUserIdempotence(t *testing.T) {
	s := openTestStore(t, "")
	ctx := context.Background()
	openID := "test-open-" + time.Now().Format("20060102150405.000000")

	name := "Salim"
	email := "salim@example.local"
	method := "oauth"
	first := model.UserUpsert{
		OpenID:      openID,
		Name:        model.NullableString{Set: true, Value: &name},
		Email:       model.NullableString{Set: true, Value: &email},
		LoginMethod: model.NullableString{Set: true, Value: &method},
	}
	if err := s.UpsertUser(ctx, first); err != nil {
		t.Fatalf("first upsert: %v", err)
	}
	created, err := s.GetUserByOpenID(ctx, openID)
	if err != nil || created == nil {
		t.Fatalf("get after first upsert: user=%+v err=%v", created, err)
	}

	time.Sleep(10 * time.Millisecond)
	if err := s.UpsertUser(ctx, model.UserUpsert{OpenID: openID}); err != nil {
		t.Fatalf("second upsert: %v", err)
	}
	updated, err := s.GetUserByOpenID(ctx, openID)
	if err != nil || updated == nil {
		t.Fatalf("get after second upsert: user=%+v err=%v", updated, err)
	}

	if updated.Name == nil || *updated.Name != name {
		t.Fatalf("no-field upsert changed name: %+v", updated.Name)
	}
	if updated.Email == nil || *updated.Email != email {
		t.Fatalf("no-field upsert changed email: %+v", updated.Email)
	}
	if updated.LoginMethod == nil || *updated.LoginMethod != method {
		t.Fatalf("no-field upsert changed loginMethod: %+v", updated.LoginMethod)
	}
	if updated.Role != created.Role {
		t.Fatalf("no-field upsert changed role: %s -> %s", created.Role, updated.Role)
	}
	if !updated.LastSignedIn.After(created.LastSignedIn) {
		t.Fatalf("lastSignedIn did not advance: %s -> %s", created.LastSignedIn, updated.LastSignedIn)
	}
}

func TestUpsertOwnerBootstrap(t *testing.T) {
	owner := "owner-" + time.Now().Format("20060102150405.000000")
	s := openTestStore(t, owner)
	ctx := context.Background()

	if err := s.UpsertUser(ctx, model.UserUpsert{OpenID: owner}); err != nil {
		t.Fatalf("owner upsert: %v", err)
	}
	user, err := s.GetUserByOpenID(ctx, owner)
	if err != nil || user == nil {
		t.Fatalf("get owner: user=%+v err=%v", user, err)
	}
	if user.Role != model.RoleAdmin {
		t.Fatalf("expected owner role admin, got %s", user.Role)
	}
}

func TestLatestSensorReadingOrdering(t *testing.T) {
	s := openTestStore(t, "")
	ctx := context.Background()
	vehicleID := time.Now().UnixNano() % 1_000_000_000

	base := time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC)
	temps := []int32{2100, 2200, 2300}
	// Insert out of timestamp order so insertion order cannot win.
	order := []int{1, 2, 0}
	for _, i := range order {
		temp := temps[i]
		_, err := s.SaveSensorReading(ctx, model.SensorReadingInsert{
			VehicleID:   vehicleID,
			DeviceID:    "dev-ordering",
			Temperature: &temp,
			Timestamp:   base.Add(time.Duration(i) * time.Minute),
		})
		if err != nil {
			t.Fatalf("save reading %d: %v", i, err)
		}
	}

	latest, err := s.LatestSensorReading(ctx, vehicleID)
	if err != nil || latest == nil {
		t.Fatalf("latest reading: reading=%+v err=%v", latest, err)
	}
	if latest.Temperature == nil || *latest.Temperature != 2300 {
		t.Fatalf("expected the newest reading by timestamp, got %+v", latest.Temperature)
	}
}
