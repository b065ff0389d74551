package main

import (
	availabilityhandler "crewcall/internal/availability/handler"
	availabilityrepo "crewcall/internal/availability/repository"
	availabilityservice "crewcall/internal/availability/service"
	availabilityvalidator "crewcall/internal/availability/validator"
	crewhandler "crewcall/internal/crew/handler"
	crewrepo "crewcall/internal/crew/repository"
	crewservice "crewcall/internal/crew/service"
	crewvalidator "crewcall/internal/crew/validator"
	"crewcall/pkg/app"
	"crewcall/pkg/config"
	"crewcall/pkg/publisher"
)

const ServiceName = "availability"

// Serves the crew roster alongside availability since every availability
// query resolves subjects against it.
func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()
	cfg.SetRedis()

	cfg.Log.Info("Starting Availability service")
	serverApp := app.NewApplication(cfg)
	pub := serverApp.Publisher()

	crewRepo := crewrepo.NewMongoCrewRepository(cfg)
	crewService := crewservice.NewCrewService(crewRepo, crewvalidator.NewCrewValidator(cfg.Log), cfg)
	availabilityService := initAvailability(cfg, crewRepo, pub)

	serverApp.SetApp(
		crewhandler.NewCrewHandler(crewService, cfg.Log),
		availabilityhandler.NewAvailabilityHandler(availabilityService, cfg.Log),
	)
	serverApp.Run()
}

func initAvailability(cfg *config.Config, roster availabilityservice.RosterSource, pub publisher.Publisher) availabilityservice.AvailabilityService {
	availabilityValidator := availabilityvalidator.NewAvailabilityValidator(cfg.Log)
	availabilityRepo := availabilityrepo.NewMongoAvailabilityRepository(cfg)
	availabilityService := availabilityservice.NewAvailabilityService(
		availabilityRepo,
		roster,
		availabilityValidator,
		pub,
		cfg,
	)

	cfg.Log.Info("Availability service initialized", "database", cfg.MongoDatabaseName)
	return availabilityService
}
