package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	beginPaymentHandler "github.com/staypoint/STP-ReservationService/internal/api/handlers/begin_payment"
	cancelBookingHandler "github.com/staypoint/STP-ReservationService/internal/api/handlers/cancel_booking"
	createBookingHandler "github.com/staypoint/STP-ReservationService/internal/api/handlers/create_booking"
	createQuoteHandler "github.com/staypoint/STP-ReservationService/internal/api/handlers/create_quote"
	getAvailabilityHandler "github.com/staypoint/STP-ReservationService/internal/api/handlers/get_availability"
	getBookingHandler "github.com/staypoint/STP-ReservationService/internal/api/handlers/get_booking"
	getGuestBookingsHandler "github.com/staypoint/STP-ReservationService/internal/api/handlers/get_guest_bookings"
	paymentWebhookHandler "github.com/staypoint/STP-ReservationService/internal/api/handlers/payment_webhook"
	"github.com/staypoint/STP-ReservationService/internal/api/middleware"
	"github.com/staypoint/STP-ReservationService/internal/config"
	bookingRepo "github.com/staypoint/STP-ReservationService/internal/infra/storage/booking"
	eventRepo "github.com/staypoint/STP-ReservationService/internal/infra/storage/paymentevent"
	catalogClient "github.com/staypoint/STP-ReservationService/internal/integrations/catalog"
	notifierClient "github.com/staypoint/STP-ReservationService/internal/integrations/notifier"
	"github.com/staypoint/STP-ReservationService/internal/integrations/stripegw"
	bookingsService "github.com/staypoint/STP-ReservationService/internal/service/bookings"
	lifecycleService "github.com/staypoint/STP-ReservationService/internal/service/lifecycle"
	beginPaymentUC "github.com/staypoint/STP-ReservationService/internal/usecase/begin_payment"
	cancelBookingUC "github.com/staypoint/STP-ReservationService/internal/usecase/cancel_booking"
	createBookingUC "github.com/staypoint/STP-ReservationService/internal/usecase/create_booking"
	createQuoteUC "github.com/staypoint/STP-ReservationService/internal/usecase/create_quote"
	getAvailabilityUC "github.com/staypoint/STP-ReservationService/internal/usecase/get_availability"
	processWebhookUC "github.com/staypoint/STP-ReservationService/internal/usecase/process_webhook"
	"github.com/staypoint/STP-ReservationService/internal/worker"
	"github.com/staypoint/STP-ReservationService/pkg/dbmetrics"
	"github.com/staypoint/STP-ReservationService/pkg/logger"
	"github.com/staypoint/STP-ReservationService/pkg/metrics"
	"github.com/staypoint/STP-ReservationService/pkg/simpletxmanager"
	"github.com/staypoint/STP-ReservationService/pkg/txmanager"
)

func main() {
	// Загружаем конфигурацию
	cfg, err := config.Load("config.toml")
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Инициализируем логгер
	log, err := logger.New(cfg.Logs.File, cfg.Logs.Level)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Close()

	log.Info("Starting STP-ReservationService...")
	log.Info("Configuration loaded from config.toml")

	// Инициализируем метрики (если включены)
	var metricsCollector *metrics.Metrics
	var wrappedDB *dbmetrics.DB
	stopMetricsCh := make(chan struct{})

	if cfg.Metrics.Enabled {
		metricsCollector = metrics.New(cfg.Metrics.ServiceName)
		log.Info("Metrics enabled at %s", cfg.Metrics.Path)
	}

	// Подключаемся к базе данных
	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		log.Fatal("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Настраиваем connection pool
	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(cfg.Database.ConnMaxLifetime) * time.Second)

	// Проверяем соединение
	if err := db.Ping(); err != nil {
		log.Fatal("Failed to ping database: %v", err)
	}
	log.Info("Successfully connected to database (host=%s, port=%d, db=%s)",
		cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)

	// Инициализируем интеграционных клиентов
	catalog := catalogClient.NewClient(
		cfg.Catalog.URL,
		time.Duration(cfg.Catalog.Timeout)*time.Second,
		log,
	)
	notifier := notifierClient.NewClient(
		cfg.Notifier.URL,
		time.Duration(cfg.Notifier.Timeout)*time.Second,
		log,
	)
	gateway := stripegw.NewClient(
		cfg.Stripe.SecretKey,
		cfg.Stripe.WebhookSecret,
		cfg.Stripe.SuccessURL,
		cfg.Stripe.CancelURL,
		log,
	)
	log.Info("Integration clients initialized (Catalog=%s timeout=%ds, Notifier=%s timeout=%ds)",
		cfg.Catalog.URL, cfg.Catalog.Timeout, cfg.Notifier.URL, cfg.Notifier.Timeout)

	// Инициализируем репозитории и transaction manager (с метриками или без)
	var (
		bookingRepository *bookingRepo.Repository
		eventRepository   *eventRepo.Repository
	)

	type TxManager interface {
		DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
	}
	var txMgr TxManager

	if cfg.Metrics.Enabled {
		wrappedDB = dbmetrics.WrapWithDefault(db, metricsCollector, cfg.Metrics.ServiceName, stopMetricsCh)
		log.Info("Database metrics collection started")

		bookingRepository = bookingRepo.NewRepository(wrappedDB)
		eventRepository = eventRepo.NewRepository(wrappedDB)
		txMgr = txmanager.NewTransactionManager(wrappedDB)
	} else {
		bookingRepository = bookingRepo.NewRepository(db)
		eventRepository = eventRepo.NewRepository(db)
		txMgr = simpletxmanager.NewTransactionManager(db)
	}

	// Инициализируем сервисы
	lifecycle := lifecycleService.NewService(bookingRepository, notifier, log)
	bookingSvc := bookingsService.NewService(bookingRepository, log)

	// Инициализируем use cases
	getAvailabilityUseCase := getAvailabilityUC.NewUseCase(bookingRepository, catalog, log)
	createQuoteUseCase := createQuoteUC.NewUseCase(catalog, log)
	createBookingUseCase := createBookingUC.NewUseCase(bookingRepository, lifecycle, catalog, txMgr, log)
	beginPaymentUseCase := beginPaymentUC.NewUseCase(bookingRepository, lifecycle, gateway, log)
	cancelBookingUseCase := cancelBookingUC.NewUseCase(bookingRepository, lifecycle, gateway, log)
	processWebhookUseCase := processWebhookUC.NewUseCase(
		bookingRepository,
		eventRepository,
		lifecycle,
		gateway,
		metricsCollector,
		cfg.Booking.MaxWebhookAttempts,
		log,
	)

	// Инициализируем handlers
	getAvailability := getAvailabilityHandler.NewHandler(getAvailabilityUseCase, log)
	createQuote := createQuoteHandler.NewHandler(createQuoteUseCase, log)
	createBooking := createBookingHandler.NewHandler(createBookingUseCase, log)
	beginPayment := beginPaymentHandler.NewHandler(beginPaymentUseCase, log)
	cancelBooking := cancelBookingHandler.NewHandler(cancelBookingUseCase, log)
	getBooking := getBookingHandler.NewHandler(bookingSvc, log)
	getGuestBookings := getGuestBookingsHandler.NewHandler(bookingSvc, log)
	paymentWebhook := paymentWebhookHandler.NewHandler(processWebhookUseCase, log)

	// Запускаем фоновый свип просроченных и прошедших броней
	sweeperCtx, stopSweeper := context.WithCancel(context.Background())
	sweeper := worker.NewSweeper(
		lifecycle,
		eventRepository,
		time.Duration(cfg.Booking.PendingTTLMinutes)*time.Minute,
		time.Duration(cfg.Booking.SweepIntervalSec)*time.Second,
		cfg.Booking.MaxWebhookAttempts,
		log,
	)
	go sweeper.Run(sweeperCtx)

	// Настраиваем роутер
	r := mux.NewRouter()

	// Добавляем metrics middleware (если метрики включены)
	if cfg.Metrics.Enabled {
		r.Use(middleware.MetricsMiddleware(metricsCollector, cfg.Metrics.ServiceName))
		r.Handle(cfg.Metrics.Path, promhttp.Handler()).Methods(http.MethodGet)
		log.Info("Prometheus metrics endpoint exposed at %s", cfg.Metrics.Path)
	}

	// Вебхук платёжного шлюза (аутентификация подписью, вне /api)
	r.HandleFunc("/webhooks/payment", paymentWebhook.Handle).Methods(http.MethodPost)

	// API prefix
	api := r.PathPrefix("/api/v1").Subrouter()

	// ============================================================
	// PUBLIC ROUTES (без аутентификации)
	// ============================================================

	// Проверка доступности диапазона дат
	api.HandleFunc("/properties/{propertyId}/availability", getAvailability.Handle).Methods(http.MethodGet)

	// Расчет квоты
	api.HandleFunc("/quotes", createQuote.Handle).Methods(http.MethodPost)

	// ============================================================
	// PROTECTED ROUTES (требуют X-User-ID header)
	// ============================================================

	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.Auth)

	// Создание бронирования
	protected.HandleFunc("/bookings", createBooking.Handle).Methods(http.MethodPost)

	// Получение бронирования по ID
	protected.HandleFunc("/bookings/{bookingId}", getBooking.Handle).Methods(http.MethodGet)

	// Старт оплаты бронирования
	protected.HandleFunc("/bookings/{bookingId}/payment", beginPayment.Handle).Methods(http.MethodPost)

	// Отмена бронирования
	protected.HandleFunc("/bookings/{bookingId}/cancel", cancelBooking.Handle).Methods(http.MethodPatch)

	// История бронирований гостя
	protected.HandleFunc("/guests/{guestId}/bookings", getGuestBookings.Handle).Methods(http.MethodGet)

	// Создаем HTTP сервер
	addr := fmt.Sprintf(":%d", cfg.Server.HTTPPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Info("Starting server on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed to start: %v", err)
		}
	}()

	// Ожидаем сигнал завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	// Останавливаем фоновый свип
	stopSweeper()

	// Останавливаем сбор метрик connection pool
	if cfg.Metrics.Enabled {
		close(stopMetricsCh)
		log.Info("Metrics collection stopped")
	}

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown: %v", err)
	}

	log.Info("Server stopped gracefully")
}
