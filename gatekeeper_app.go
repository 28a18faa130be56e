package main

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"gatekeeper-service/codec"
	"gatekeeper-service/safety"

	"github.com/brutella/can"
	"github.com/go-redis/redis/v8"
)

const (
	// Tracked vehicle state is considered stale after this long without a
	// safety-relevant frame; authority is revoked while stale.
	VehicleDataTimeout = 2 * time.Second

	watchdogInterval = 500 * time.Millisecond
)

type GatekeeperApp struct {
	log       *log.Logger
	leveled   *LeveledLogger
	redis     *redis.Client
	ipcRx     *IPCRx
	telemetry *Telemetry
	buses     *Buses
	bridge    *Bridge
	session   *safety.Session
	decoder   *codec.Decoder
	diag      *Diag
	mu        sync.Mutex
	ctx       context.Context
	cancel    context.CancelFunc

	lastAllowed bool
	lastRelay   bool
	busLinkUp   [BusCount]bool
}

// writeDefaultRedisState writes neutral values to Redis
func (app *GatekeeperApp) writeDefaultRedisState() {
	app.mu.Lock()
	defer app.mu.Unlock()

	controls := RedisControls{
		Allowed:          false,
		RelayMalfunction: false,
	}

	driver := RedisDriver{}
	motion := RedisMotion{}
	cruise := RedisCruise{}
	counters := RedisCounters{}

	if err := app.telemetry.SendControls(controls); err != nil {
		app.log.Printf("Failed to send default controls state: %v", err)
	}

	if err := app.telemetry.SendDriver(driver); err != nil {
		app.log.Printf("Failed to send default driver state: %v", err)
	}

	if err := app.telemetry.SendMotion(motion); err != nil {
		app.log.Printf("Failed to send default motion state: %v", err)
	}

	if err := app.telemetry.SendCruise(cruise); err != nil {
		app.log.Printf("Failed to send default cruise state: %v", err)
	}

	if err := app.telemetry.SendCounters(counters); err != nil {
		app.log.Printf("Failed to send default counters: %v", err)
	}

	app.log.Printf("Default Redis state written")
}

func NewGatekeeperApp(opts *Options) (*GatekeeperApp, error) {
	ctx, cancel := context.WithCancel(context.Background())

	app := &GatekeeperApp{
		log:    log.New(log.Writer(), fmt.Sprintf("GKP: %s ", ProjectName), log.LstdFlags),
		ctx:    ctx,
		cancel: cancel,
	}
	app.leveled = NewLeveledLogger(app.log, opts.LogLevel)

	// Initialize Redis client with timeouts
	app.redis = redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%d", opts.RedisServerAddr, opts.RedisServerPort),
		Password:     "",
		DB:           0,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})

	// Test Redis connection with timeout
	connectCtx, connectCancel := context.WithTimeout(ctx, 5*time.Second)
	defer connectCancel()

	app.log.Printf("Connecting to Redis at %s:%d...", opts.RedisServerAddr, opts.RedisServerPort)

	if err := app.redis.Ping(connectCtx).Err(); err != nil {
		app.log.Printf("Failed to connect to Redis: %v", err)
		return nil, fmt.Errorf("failed to connect to Redis: %v", err)
	}
	app.log.Printf("Successfully connected to Redis")

	// Initialize components
	app.telemetry = NewTelemetry(app.log, app.redis)
	app.log.Printf("Telemetry component initialized")

	// Write default values to Redis after telemetry is initialized
	app.writeDefaultRedisState()

	// Start health check goroutine
	go app.redisHealthCheck()

	app.buses = NewBuses(app.log)
	app.log.Printf("Bus link component initialized")

	app.diag = NewDiag(app.log, app.redis)
	app.log.Printf("Diagnostics component initialized")

	// Create the safety session for the selected vehicle
	session, err := safety.NewSession(opts.Model, opts.SafetyParam, app.leveled)
	if err != nil {
		return nil, fmt.Errorf("failed to create safety session: %v", err)
	}
	app.session = session
	app.log.Printf("Safety session initialized - selected policy: %s", session.Hooks().Name())

	app.decoder, err = codec.ForModel(opts.Model)
	if err != nil {
		return nil, fmt.Errorf("failed to create signal decoder: %v", err)
	}
	app.log.Printf("Signal decoder initialized")

	app.bridge = NewBridge(app.leveled, app.session)
	app.log.Printf("Forwarding bridge initialized")

	// Attach the vehicle bus
	if err := app.attachBus(opts.VehicleCANDevice, safety.BusVehicle, 0); err != nil {
		return nil, err
	}

	// Attach the camera bus; without it the gatekeeper still gates
	// transmission but forwards nothing
	if opts.CameraCANDevice != "" {
		if err := app.attachBus(opts.CameraCANDevice, safety.BusCamera, 1); err != nil {
			return nil, err
		}
	} else {
		app.log.Printf("No camera CAN device configured, forwarding disabled")
	}

	app.ipcRx = NewIPCRx(app.leveled, app.redis, app.session, app.decoder, app.bridge)
	if app.ipcRx == nil {
		return nil, fmt.Errorf("failed to initialize IPC RX")
	}
	app.log.Printf("IPC RX component initialized")

	// Start the safety watchdog
	go app.safetyWatchdog()

	return app, nil
}

// attachBus opens one CAN device and wires its frames into the gatekeeper.
func (app *GatekeeperApp) attachBus(device string, busNum, linkIdx int) error {
	bus, err := can.NewBusForInterfaceWithName(device)
	if err != nil {
		return fmt.Errorf("failed to initialize CAN bus %s: %v", device, err)
	}

	app.buses.Configure(linkIdx)
	app.bridge.SetPublisher(busNum, bus.Publish)

	handler := &frameHandler{app: app, busNum: busNum, linkIdx: linkIdx}
	bus.Subscribe(handler)

	// Start CAN message publishing
	go func() {
		if err := bus.ConnectAndPublish(); err != nil {
			app.log.Printf("CAN bus %s publish error: %v", device, err)
		}
	}()

	app.log.Printf("CAN device %s attached as bus %d", device, busNum)
	return nil
}

// Frame handler for CAN messages
type frameHandler struct {
	app     *GatekeeperApp
	busNum  int
	linkIdx int
}

func (h *frameHandler) Handle(frame can.Frame) {
	app := h.app

	app.buses.MarkFrame(h.linkIdx)
	app.leveled.DebugCAN("RX", h.busNum, frame.ID, frame.Data[:], frame.Length)

	// Update tracked state; frames without definitions carry no tracked
	// signals and are only candidates for forwarding
	if msg, ok := app.decoder.Decode(h.busNum, frame); ok {
		app.session.OnReceive(msg)
	} else {
		app.session.OnReceive(safety.Message{Bus: h.busNum, Addr: frame.ID})
	}

	// Relay to the other segment per the forwarding policy
	app.bridge.HandleReceived(h.busNum, frame)

	// Update Redis with latest gatekeeper state
	app.updateRedisState()
}

// Update Redis with current gatekeeper state
func (app *GatekeeperApp) updateRedisState() {
	app.mu.Lock()
	defer app.mu.Unlock()

	allowed := app.session.ControlsAllowed()
	relay := app.session.RelayMalfunction()

	// Only publish controls on change
	if allowed != app.lastAllowed || relay != app.lastRelay {
		controls := RedisControls{
			Allowed:          allowed,
			RelayMalfunction: relay,
		}

		if err := app.telemetry.SendControls(controls); err != nil {
			app.log.Printf("Failed to send controls state: %v", err)
		} else {
			app.lastAllowed = allowed
			app.lastRelay = relay
		}
	}

	driver := RedisDriver{
		TorqueMin:    app.session.TorqueDriverMin(),
		TorqueMax:    app.session.TorqueDriverMax(),
		BrakePressed: app.session.BrakePressed(),
		GasPressed:   app.session.GasPressed(),
	}

	motion := RedisMotion{
		WheelSpeeds: app.session.WheelSpeeds(),
		YawRate:     app.session.YawRate(),
		Moving:      app.session.VehicleMoving(),
	}

	cruise := RedisCruise{
		Engaged:    app.session.CruiseEngaged(),
		MainSwitch: app.session.CruiseMainSwitch(),
	}

	if err := app.telemetry.SendDriver(driver); err != nil {
		app.log.Printf("Failed to send driver state: %v", err)
	}

	if err := app.telemetry.SendMotion(motion); err != nil {
		app.log.Printf("Failed to send motion state: %v", err)
	}

	if err := app.telemetry.SendCruise(cruise); err != nil {
		app.log.Printf("Failed to send cruise state: %v", err)
	}

	if app.ipcRx != nil {
		txAllowed, txRejected := app.ipcRx.Counters()
		counters := RedisCounters{
			TxAllowed:  txAllowed,
			TxRejected: txRejected,
			Forwarded:  app.bridge.Forwarded(),
		}
		if err := app.telemetry.SendCounters(counters); err != nil {
			app.log.Printf("Failed to send counters: %v", err)
		}
	}

	// Report the relay malfunction latch
	app.diag.SetFaultPresence(safety.FaultRelayMalfunction, relay)
}

// safetyWatchdog enforces reception staleness and publishes bus link health.
func (app *GatekeeperApp) safetyWatchdog() {
	ticker := time.NewTicker(watchdogInterval)
	defer ticker.Stop()

	for {
		select {
		case <-app.ctx.Done():
			return
		case <-ticker.C:
			stale := app.session.CheckRxTimeout(VehicleDataTimeout)
			app.diag.SetFaultPresence(safety.FaultRxTimeout, stale)

			for idx := 0; idx < BusCount; idx++ {
				up := app.buses.Up(idx)
				app.mu.Lock()
				changed := up != app.busLinkUp[idx]
				app.busLinkUp[idx] = up
				app.mu.Unlock()

				if changed {
					if err := app.telemetry.SendBusLink(idx, up); err != nil {
						app.log.Printf("Failed to send bus link state: %v", err)
					}
				}
			}
		}
	}
}

func (app *GatekeeperApp) redisHealthCheck() {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-app.ctx.Done():
			return
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(app.ctx, 2*time.Second)
			if err := app.redis.Ping(ctx).Err(); err != nil {
				app.log.Printf("Redis health check failed: %v", err)
			}
			cancel()
		}
	}
}

func (app *GatekeeperApp) Destroy() {
	app.mu.Lock()
	defer app.mu.Unlock()

	app.log.Printf("Shutting down gatekeeper application...")

	if app.cancel != nil {
		app.cancel()
	}

	if app.ipcRx != nil {
		app.ipcRx.Destroy()
		app.log.Printf("IPC RX shutdown complete")
	}

	if app.bridge != nil {
		app.bridge.Destroy()
		app.log.Printf("Forwarding bridge shutdown complete")
	}

	if app.buses != nil {
		app.buses.Destroy()
		app.log.Printf("Bus link shutdown complete")
	}

	if app.diag != nil {
		app.diag.Destroy()
		app.log.Printf("Diagnostics shutdown complete")
	}

	if app.telemetry != nil {
		app.telemetry.Destroy()
		app.log.Printf("Telemetry shutdown complete")
	}

	if app.redis != nil {
		if err := app.redis.Close(); err != nil {
			app.log.Printf("Error closing Redis connection: %v", err)
		} else {
			app.log.Printf("Redis connection closed")
		}
	}

	app.log.Printf("Gatekeeper application shutdown complete")
}
