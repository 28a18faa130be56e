package main

import (
	"log"

	"gatekeeper-service/safety"
)

type LogLevel int

const (
	LogLevelNone  LogLevel = 0
	LogLevelError LogLevel = 1
	LogLevelWarn  LogLevel = 2
	LogLevelInfo  LogLevel = 3
	LogLevelDebug LogLevel = 4
)

type Options struct {
	LogLevel         LogLevel
	RedisServerAddr  string
	RedisServerPort  uint16
	VehicleCANDevice string
	CameraCANDevice  string
	Model            safety.Model
	SafetyParam      uint32
	Logger           *log.Logger
}
