package main

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/go-redis/redis/v8"
)

const telemetryKey = "safety-gatekeeper"

type Telemetry struct {
	log   *log.Logger
	redis *redis.Client
	mu    sync.Mutex
	ctx   context.Context
}

func NewTelemetry(logger *log.Logger, redis *redis.Client) *Telemetry {
	return &Telemetry{
		log:   logger,
		redis: redis,
		ctx:   context.Background(),
	}
}

func (tx *Telemetry) Destroy() {}

func (tx *Telemetry) SendControls(data RedisControls) error {
	tx.mu.Lock()
	defer tx.mu.Unlock()

	pipe := tx.redis.Pipeline()

	pipe.HSet(tx.ctx, telemetryKey, map[string]interface{}{
		"controls":          map[bool]string{true: "allowed", false: "disabled"}[data.Allowed],
		"relay-malfunction": map[bool]string{true: "tripped", false: "ok"}[data.RelayMalfunction],
	})

	// Publish controls state changes
	pipe.Publish(tx.ctx, telemetryKey+" controls", nil)

	_, err := pipe.Exec(tx.ctx)
	if err != nil {
		return fmt.Errorf("failed to send controls state: %v", err)
	}

	return nil
}

func (tx *Telemetry) SendDriver(data RedisDriver) error {
	tx.mu.Lock()
	defer tx.mu.Unlock()

	if err := tx.redis.HSet(tx.ctx, telemetryKey,
		"torque-driver-min", data.TorqueMin,
		"torque-driver-max", data.TorqueMax,
		"brake", map[bool]string{true: "pressed", false: "released"}[data.BrakePressed],
		"gas", map[bool]string{true: "pressed", false: "released"}[data.GasPressed],
	).Err(); err != nil {
		return fmt.Errorf("failed to send driver state: %v", err)
	}

	return nil
}

func (tx *Telemetry) SendMotion(data RedisMotion) error {
	tx.mu.Lock()
	defer tx.mu.Unlock()

	if err := tx.redis.HSet(tx.ctx, telemetryKey,
		"wheel-speed-fl", data.WheelSpeeds[0],
		"wheel-speed-fr", data.WheelSpeeds[1],
		"wheel-speed-rl", data.WheelSpeeds[2],
		"wheel-speed-rr", data.WheelSpeeds[3],
		"yaw-rate", data.YawRate,
		"moving", map[bool]string{true: "yes", false: "no"}[data.Moving],
	).Err(); err != nil {
		return fmt.Errorf("failed to send motion state: %v", err)
	}

	return nil
}

func (tx *Telemetry) SendCruise(data RedisCruise) error {
	tx.mu.Lock()
	defer tx.mu.Unlock()

	pipe := tx.redis.Pipeline()

	pipe.HSet(tx.ctx, telemetryKey,
		"cruise", map[bool]string{true: "engaged", false: "disengaged"}[data.Engaged],
		"cruise-main", map[bool]string{true: "on", false: "off"}[data.MainSwitch],
	)

	// Also publish cruise state changes
	pipe.Publish(tx.ctx, telemetryKey+" cruise", nil)

	_, err := pipe.Exec(tx.ctx)
	if err != nil {
		return fmt.Errorf("failed to send cruise state: %v", err)
	}

	return nil
}

func (tx *Telemetry) SendCounters(data RedisCounters) error {
	tx.mu.Lock()
	defer tx.mu.Unlock()

	if err := tx.redis.HSet(tx.ctx, telemetryKey,
		"tx-allowed", data.TxAllowed,
		"tx-rejected", data.TxRejected,
		"forwarded", data.Forwarded,
	).Err(); err != nil {
		return fmt.Errorf("failed to send counters: %v", err)
	}

	return nil
}

func (tx *Telemetry) SendBusLink(idx int, up bool) error {
	tx.mu.Lock()
	defer tx.mu.Unlock()

	pipe := tx.redis.Pipeline()

	pipe.HSet(tx.ctx, telemetryKey,
		fmt.Sprintf("bus:%d", idx), map[bool]string{true: "up", false: "down"}[up],
	)

	// Also publish bus link changes
	pipe.Publish(tx.ctx, telemetryKey+" bus", nil)

	_, err := pipe.Exec(tx.ctx)
	if err != nil {
		return fmt.Errorf("failed to send bus link state: %v", err)
	}

	return nil
}
