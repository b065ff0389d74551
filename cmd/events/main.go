package main

import (
	"crewcall/internal/events/handler"
	"crewcall/internal/events/repository"
	"crewcall/internal/events/service"
	"crewcall/internal/events/validator"
	"crewcall/pkg/app"
	"crewcall/pkg/config"
	"crewcall/pkg/publisher"
)

const ServiceName = "events"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()
	cfg.SetRedis()

	cfg.Log.Info("Starting Events service")
	serverApp := app.NewApplication(cfg)
	eventService := initServices(cfg, serverApp.Publisher())
	serverApp.SetApp(handler.NewEventHandler(eventService, cfg.Log))
	serverApp.Run()
}

func initServices(cfg *config.Config, pub publisher.Publisher) service.EventService {
	eventValidator := validator.NewEventValidator(cfg.Log)
	eventRepo := repository.NewMongoEventRepository(cfg)
	eventService := service.NewEventService(
		eventRepo,
		eventValidator,
		pub,
		cfg,
	)

	cfg.Log.Info("Events service initialized", "database", cfg.MongoDatabaseName)
	return eventService
}
