package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"gatekeeper-service/safety"
)

var (
	version     = flag.Bool("version", false, "Print version info")
	help        = flag.Bool("help", false, "Print help")
	logLevel    = flag.Int("log", 3, "Log level (0=NONE, 1=ERROR, 2=WARN, 3=INFO, 4=DEBUG)")
	redisServer = flag.String("redis_server", "127.0.0.1", "Redis server address")
	redisPort   = flag.Int("redis_port", 6379, "Redis server port")
	vehicleCAN  = flag.String("can_device", "can0", "CAN device of the vehicle bus")
	cameraCAN   = flag.String("cam_can_device", "can2", "CAN device of the camera bus (empty disables forwarding)")
	vehicle     = flag.String("vehicle", "vw_meb", "Vehicle model (vw_meb or vw_mqb)")
	safetyParam = flag.Uint("safety_param", 0, "Vehicle variant parameter bits")
)

const (
	ProjectName    = "gatekeeper-service"
	ProjectVersion = "1.0.0"
)

func printVersion() {
	fmt.Printf("%s v%s\n", ProjectName, ProjectVersion)
}

func printHelp() {
	printVersion()
	flag.PrintDefaults()
}

func main() {
	flag.Parse()

	if *version {
		printVersion()
		os.Exit(0)
	}

	if *help {
		printHelp()
		os.Exit(0)
	}

	// Validate log level
	if *logLevel < 0 || *logLevel > 4 {
		log.Fatalf("invalid log level %d", *logLevel)
	}

	// Parse vehicle model
	var model safety.Model
	switch *vehicle {
	case "vw_meb":
		model = safety.ModelVWMeb
		log.Printf("Selected vehicle model: Volkswagen MEB")
	case "vw_mqb":
		model = safety.ModelVWMqb
		log.Printf("Selected vehicle model: Volkswagen MQB")
	default:
		log.Fatalf("invalid vehicle model: %s (must be 'vw_meb' or 'vw_mqb')", *vehicle)
	}

	opts := &Options{
		LogLevel:         LogLevel(*logLevel),
		RedisServerAddr:  *redisServer,
		RedisServerPort:  uint16(*redisPort),
		VehicleCANDevice: *vehicleCAN,
		CameraCANDevice:  *cameraCAN,
		Model:            model,
		SafetyParam:      uint32(*safetyParam),
	}

	app, err := NewGatekeeperApp(opts)
	if err != nil {
		log.Fatalf("failed to create gatekeeper app: %v", err)
	}
	defer app.Destroy()

	// Handle SIGINT and SIGTERM
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// Run until signal received
	<-sigChan
}
