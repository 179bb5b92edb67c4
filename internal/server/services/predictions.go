package services

import (
	"context"

	"github.com/dmitrijs2005/firewatch/internal/common"
)

// PredictionFireDetected is the only label the stub predictor returns.
const PredictionFireDetected = "Fire Detected"

// PredictionService answers prediction requests with a fixed label.
type PredictionService struct{}

func NewPredictionService() *PredictionService {
	return &PredictionService{}
}

func (s *PredictionService) Predict(ctx context.Context, inputData any) (string, error) {
	switch v := inputData.(type) {
	case nil:
		return "", common.NewValidationError("Missing inputData in request")
	case string:
		if v == "" {
			return "", common.NewValidationError("Missing inputData in request")
		}
	}
	return PredictionFireDetected, nil
}
