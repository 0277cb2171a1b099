package mq

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/Imanalii/yitiflow-dashboard/internal/store"
)

func testConsumer() *SensorConsumer {
	return &SensorConsumer{
		store:  store.New("", "", zap.NewNop()),
		logger: zap.NewNop(),
	}
}

func TestProcessRejectsMalformedPayload(t *testing.T) {
	c := testConsumer()
	for _, body := range []string{`not json`, `{"deviceId": "dev-1"}`, `{"vehicleId": 1, "deviceId": ""}`} {
		err := c.process(context.Background(), []byte(body))
		if err == nil {
			t.Fatalf("body %s: expected error", body)
		}
		if errors.Is(err, store.ErrStoreUnavailable) {
			t.Fatalf("body %s: malformed payload must fail before the store", body)
		}
	}
}

func TestProcessSurfacesStoreUnavailable(t *testing.T) {
	c := testConsumer()
	body := `{"vehicleId": 7, "deviceId": "dev-1", "timestamp": "2026-08-20T10:00:00Z"}`
	err := c.process(context.Background(), []byte(body))
	if !errors.Is(err, store.ErrStoreUnavailable) {
		t.Fatalf("expected ErrStoreUnavailable, got %v", err)
	}
}
