package logging

import "go.uber.org/zap"

// New builds the service-wide structured logger.
func New(serviceName string) (*zap.Logger, error) {
	config := zap.NewProductionConfig()
	config.InitialFields = map[string]interface{}{
		"service": serviceName,
	}
	return config.Build()
}
