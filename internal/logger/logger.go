package logger

import (
	"os"

	"go.uber.org/zap"
)

var Log *zap.Logger

// InitLogger builds the global logger: JSON output when APP_ENV=production,
// the human-readable console encoder everywhere else.
func InitLogger() {
	var (
		built *zap.Logger
		err   error
	)
	if os.Getenv("APP_ENV") == "production" {
		built, err = zap.NewProduction()
	} else {
		built, err = zap.NewDevelopment()
	}
	if err != nil {
		panic("Failed to init logger: " + err.Error())
	}
	Log = built
}

func SyncLogger() {
	_ = Log.Sync()
}
