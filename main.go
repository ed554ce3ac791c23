// Host controller entry point: bus, config, engine, I/O, protection,
// telemetry, heartbeat and the diagnostic HTTP surface. MCU targets
// use the entries under cmd/ instead.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"pdmcode-go/bus"
	cfgsvc "pdmcode-go/services/config"
	"pdmcode-go/services/diag"
	"pdmcode-go/services/engine"
	"pdmcode-go/services/heartbeat"
	iosvc "pdmcode-go/services/io"
	"pdmcode-go/services/protection"
	"pdmcode-go/services/telemetry"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	b := bus.NewBus(16)

	guard := protection.NewManager()
	_ = guard.Start(ctx, b.NewConnection("protection"))

	engineSvc := engine.NewService(b.NewConnection("engine"), engine.WithGuard(guard))
	_ = engineSvc.Start(ctx)

	ioSvc := iosvc.NewService(b.NewConnection("io"))
	_ = ioSvc.Start(ctx)

	hb := heartbeat.NewService(b.NewConnection("heartbeat"))
	_ = hb.Start(ctx)

	if addr := os.Getenv("PDM_DIAG_ADDR"); addr != "" {
		_ = diag.NewService(b.NewConnection("diag"), addr).Start(ctx)
	}

	if broker := os.Getenv("PDM_MQTT_BROKER"); broker != "" {
		pub, err := telemetry.NewRealPublisher(broker, "pdm-controller")
		if err != nil {
			println("telemetry disabled:", err.Error())
		} else {
			_ = telemetry.NewService(b.NewConnection("telemetry"), pub).Start(ctx)
		}
	}

	path := "pdm.yaml"
	if len(os.Args) > 1 {
		path = os.Args[1]
	}
	cfg := cfgsvc.NewService(b.NewConnection("config"))
	if err := cfg.LoadFileAndPublish(path); err != nil {
		println("config load failed:", err.Error())
		os.Exit(1)
	}
	println("config loaded from", path)

	<-ctx.Done()
	println("shutting down")
}
