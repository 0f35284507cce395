package logger

import (
	"go.uber.org/zap"
)

// New builds the application logger. Release mode gets the JSON production
// encoder; anything else gets the human-readable development encoder.
func New(ginMode string) (*zap.Logger, error) {
	if ginMode == "release" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
