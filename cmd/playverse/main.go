package main

import (
	"context"
	_ "time/tzdata"

	bookingshandler "playverse/internal/bookings/handler"
	bookingsrepo "playverse/internal/bookings/repository"
	bookingsservice "playverse/internal/bookings/service"
	bookingsvalidator "playverse/internal/bookings/validator"
	eventshandler "playverse/internal/events/handler"
	eventsrepo "playverse/internal/events/repository"
	eventsservice "playverse/internal/events/service"
	eventsvalidator "playverse/internal/events/validator"
	notificationshandler "playverse/internal/notifications/handler"
	notificationsservice "playverse/internal/notifications/service"
	venueshandler "playverse/internal/venues/handler"
	venuesrepo "playverse/internal/venues/repository"
	venuesservice "playverse/internal/venues/service"
	venuesvalidator "playverse/internal/venues/validator"
	"playverse/pkg/app"
	"playverse/pkg/client"
	"playverse/pkg/config"
	"playverse/pkg/contracts"
	"playverse/pkg/kafka"
	kafka_config "playverse/pkg/kafka/config"
	kafka_middleware "playverse/pkg/kafka/middleware"
	"playverse/pkg/middleware"
	"playverse/pkg/msg91"
	"playverse/pkg/obs"
	"playverse/pkg/payu"

	"github.com/joho/godotenv"
)

const ServiceName = "playverse"

func main() {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	cfg := config.Load(ServiceName)
	cfg.SetMongo()
	defer cfg.GracefulShutdown()
	cfg.SetProviders()

	shutdownTracer, err := obs.InitTracer(ServiceName, cfg.OtelEndpoint, cfg.Environment, cfg.Log)
	if err != nil {
		cfg.Log.Fatal("Failed to initialise tracing", "error", err)
	}

	publisher := newPublisher(cfg)
	httpClient := client.NewHttpClient(cfg.ExternalCallTimeout)
	admin := middleware.NewAdminAuth(cfg.Providers.Admin.JWTSecret, cfg.Providers.Admin.Role, cfg.Log)

	serverApp := app.NewApplication(cfg)
	serverApp.OnShutdown("kafka", func(context.Context) error { return publisher.Close() })
	serverApp.OnShutdown("tracer", func(ctx context.Context) error { return shutdownTracer(ctx) })
	serverApp.SetApp(initHandlers(cfg, httpClient, publisher, admin))

	cfg.Log.Info("Starting Playverse API")
	serverApp.Run()
}

func newPublisher(cfg *config.Config) kafka.Publisher {
	if !cfg.KafkaEnabled {
		cfg.Log.Info("Kafka disabled, booking events will not be published")
		return kafka.NoopPublisher{}
	}

	kafkaCfg, err := kafka_config.Load()
	if err != nil {
		cfg.Log.Fatal("Invalid Kafka configuration", "error", err)
	}
	kafkaCfg.LogConfiguration(cfg.Log.Info)

	producer, err := kafka.NewProducer(kafkaCfg, cfg.KafkaBookingTopic, cfg.KafkaDLQTopic, cfg.Log)
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka producer", "error", err)
	}
	producer.Use(kafka_middleware.LoggingProducerMiddleware(cfg.Log))
	return producer
}

func initHandlers(cfg *config.Config, httpClient *client.HttpClient, publisher kafka.Publisher, admin contracts.Guard) contracts.Handlers {
	providers := cfg.Providers

	gateway := payu.NewClient(payu.Config{
		MerchantKey:    providers.PayU.MerchantKey,
		MerchantSalt:   providers.PayU.MerchantSalt,
		Mode:           providers.PayU.Mode,
		PaymentURL:     providers.PayU.PaymentURL,
		RefundURL:      providers.PayU.RefundURL,
		BackendBaseURL: cfg.BackendBaseURL,
	}, httpClient)

	messenger := msg91.NewClient(msg91.Config{
		AuthKey:          providers.MSG91.AuthKey,
		IntegratedNumber: providers.MSG91.IntegratedNumber,
		BaseURL:          providers.MSG91.BaseURL,
	}, httpClient)

	templates := msg91.Templates{
		BroadcastNamespace:   providers.MSG91.BroadcastNamespace,
		ConfirmationTemplate: providers.MSG91.ConfirmationTemplate,
		CancellationTemplate: providers.MSG91.CancellationTemplate,
		ConfirmationLinkBase: providers.MSG91.ConfirmationLinkBase,
		DefaultHeaderImage:   providers.MSG91.DefaultHeaderImage,
		ThresholdNamespace:   providers.MSG91.ThresholdNamespace,
		ThresholdTemplate:    providers.MSG91.ThresholdTemplate,
	}

	venueRepo := venuesrepo.NewMongoVenueRepository(cfg)
	venueService := venuesservice.NewVenueService(venueRepo, venuesvalidator.NewVenueValidator(cfg.Log), cfg)

	eventRepo := eventsrepo.NewMongoEventRepository(cfg)
	eventService := eventsservice.NewEventService(eventRepo, venueRepo, eventsvalidator.NewEventValidator(cfg.Log), cfg)

	bookingService := bookingsservice.NewBookingService(
		bookingsrepo.NewMongoBookingRepository(cfg),
		bookingsvalidator.NewBookingValidator(cfg.Log),
		gateway,
		bookingsservice.Alerts{
			AdminPhone:   providers.MSG91.AdminPhone,
			EventBaseURL: cfg.PublicEventBaseURL,
			Templates:    templates,
			Messenger:    messenger,
		},
		publisher,
		cfg,
	)

	broadcastService := notificationsservice.NewBroadcastService(eventRepo, messenger, templates, cfg)

	cfg.Log.Info("Services initialized", "database", cfg.MongoDatabaseName, "payu_mode", providers.PayU.Mode)

	return contracts.Handlers{
		eventshandler.NewEventHandler(eventService, admin, cfg.Log, cfg.MaxPageLimit),
		venueshandler.NewVenueHandler(venueService, admin, cfg.Log),
		bookingshandler.NewBookingHandler(bookingService, admin, cfg.Log, cfg.ClientBaseURL),
		notificationshandler.NewBroadcastHandler(broadcastService, admin, cfg.Log),
	}
}
