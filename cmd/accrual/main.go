package main

import (
	"flag"

	"go-absences/internal/app"
	"go-absences/internal/shared/apperror"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	date := flag.String("date", "", "day to accrue as YYYY-MM-DD, defaults to today (UTC)")
	flag.Parse()

	_ = godotenv.Load()
	logger, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()
	zap.ReplaceGlobals(logger)

	apperror.Init()

	if err := app.RunAccrual(*date); err != nil {
		logger.Fatal("run accrual failed", zap.Error(err))
	}
}
