package errors

import (
	"go.uber.org/zap"
)

// LogError logs an error with its context before the response is written.
func LogError(logger *zap.Logger, err error, requestID string) {
	if gwErr, ok := err.(*GatewayError); ok {
		logger.Error("request error",
			zap.String("error_type", string(gwErr.Type)),
			zap.String("message", gwErr.Message),
			zap.Int("code", gwErr.Code),
			zap.String("request_id", requestID),
			zap.Error(gwErr.Unwrap()),
		)
	} else {
		logger.Error("unexpected error",
			zap.Error(err),
			zap.String("request_id", requestID),
		)
	}
}
