package services

import (
	"os"
	"testing"

	"devarena/internal/logger"

	"go.uber.org/zap"
)

func TestMain(m *testing.M) {
	logger.Log = zap.NewNop()
	os.Exit(m.Run())
}
