package main

import (
	"context"
	"fmt"
	"os"

	"classBook/application"
	"classBook/config"
	"classBook/logger"
	"classBook/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	logr := logger.GetInstance()
	logr.SetLevel(cfg.LogLevel)

	gw, err := application.OpenGateway(context.Background(), cfg, logr)
	if err != nil {
		logr.Fatalf("open record store: %v", err)
	}

	cli := newCommandLine(gw, services.NewReportBuilder(gw.Schedule, gw.Attendance, logr), os.Stdout)
	err = cli.run(os.Args)
	if closeErr := gw.Close(); closeErr != nil {
		logr.Errorf("close record store: %v", closeErr)
	}
	if err != nil {
		if err != errHelp {
			fmt.Fprintf(os.Stderr, "\nerror: %s\n", services.UserMessage(err))
			logr.Errorf("%s: %v", os.Args[1], err)
		}
		os.Exit(1)
	}
}
