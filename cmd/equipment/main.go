package main

import (
	"crewcall/internal/equipment/handler"
	"crewcall/internal/equipment/repository"
	"crewcall/internal/equipment/service"
	"crewcall/internal/equipment/validator"
	"crewcall/pkg/app"
	"crewcall/pkg/config"
	mongodb "crewcall/pkg/db/mongo"
	"crewcall/pkg/publisher"
)

const ServiceName = "equipment"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()
	cfg.SetRedis()

	cfg.Log.Info("Starting Equipment service")
	serverApp := app.NewApplication(cfg)
	bookingService := initServices(cfg, serverApp.Publisher())
	serverApp.SetApp(handler.NewEquipmentBookingHandler(bookingService, cfg.Log))
	serverApp.Run()
}

func initServices(cfg *config.Config, pub publisher.Publisher) service.EquipmentBookingService {
	bookingValidator := validator.NewEquipmentBookingValidator(cfg.Log)
	bookingRepo := repository.NewMongoEquipmentBookingRepository(cfg)
	locks := mongodb.NewLockRepository(cfg.Client.Mongo.Database(cfg.MongoDatabaseName), cfg.WriteTimeout)
	bookingService := service.NewEquipmentBookingService(
		bookingRepo,
		locks,
		bookingValidator,
		pub,
		cfg,
	)

	cfg.Log.Info("Equipment booking service initialized", "database", cfg.MongoDatabaseName)
	return bookingService
}
