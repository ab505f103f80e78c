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
	"github.com/redis/go-redis/v9"

	cancelBookingHandler "github.com/m04kA/agenda-core/internal/api/handlers/cancel_booking"
	confirmPaymentHandler "github.com/m04kA/agenda-core/internal/api/handlers/confirm_payment"
	createBookingHandler "github.com/m04kA/agenda-core/internal/api/handlers/create_booking"
	deleteBookingHandler "github.com/m04kA/agenda-core/internal/api/handlers/delete_booking"
	getAvailableSlotsHandler "github.com/m04kA/agenda-core/internal/api/handlers/get_available_slots"
	getBookingHandler "github.com/m04kA/agenda-core/internal/api/handlers/get_booking"
	getScheduleHandler "github.com/m04kA/agenda-core/internal/api/handlers/get_schedule"
	listBookingsHandler "github.com/m04kA/agenda-core/internal/api/handlers/list_bookings"
	respondBookingHandler "github.com/m04kA/agenda-core/internal/api/handlers/respond_booking"
	updateBookingStatusHandler "github.com/m04kA/agenda-core/internal/api/handlers/update_booking_status"
	updateScheduleHandler "github.com/m04kA/agenda-core/internal/api/handlers/update_schedule"
	"github.com/m04kA/agenda-core/internal/api/middleware"
	"github.com/m04kA/agenda-core/internal/config"
	"github.com/m04kA/agenda-core/internal/domain"
	"github.com/m04kA/agenda-core/internal/infra/notify"
	appointmentRepo "github.com/m04kA/agenda-core/internal/infra/storage/appointment"
	catalogRepo "github.com/m04kA/agenda-core/internal/infra/storage/catalog"
	resourceRepo "github.com/m04kA/agenda-core/internal/infra/storage/resource"
	scheduleRepo "github.com/m04kA/agenda-core/internal/infra/storage/schedule"
	"github.com/m04kA/agenda-core/internal/integrations/stripegateway"
	reservationsService "github.com/m04kA/agenda-core/internal/service/reservations"
	scheduleService "github.com/m04kA/agenda-core/internal/service/schedule"
	createBookingUC "github.com/m04kA/agenda-core/internal/usecase/create_booking"
	getAvailabilityUC "github.com/m04kA/agenda-core/internal/usecase/get_availability"
	"github.com/m04kA/agenda-core/internal/worker/holdsweeper"
	"github.com/m04kA/agenda-core/pkg/dbmetrics"
	"github.com/m04kA/agenda-core/pkg/logger"
	"github.com/m04kA/agenda-core/pkg/metrics"
	"github.com/m04kA/agenda-core/pkg/simpletxmanager"
	"github.com/m04kA/agenda-core/pkg/txmanager"
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

	log.Info("Starting agenda-core...")
	log.Info("Configuration loaded from config.toml (mode=%s, timezone=%s)", cfg.Booking.Mode, cfg.Booking.Timezone)

	// Таймзона бизнеса
	location, err := time.LoadLocation(cfg.Booking.Timezone)
	if err != nil {
		log.Fatal("Failed to load timezone %q: %v", cfg.Booking.Timezone, err)
	}
	bookingMode := domain.BookingMode(cfg.Booking.Mode)

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

	// Подключаемся к Redis (если включен)
	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := redisClient.Ping(pingCtx).Err(); err != nil {
			cancel()
			log.Fatal("Failed to ping redis at %s: %v", cfg.Redis.Addr, err)
		}
		cancel()
		defer redisClient.Close()
		log.Info("Successfully connected to redis (addr=%s, db=%d)", cfg.Redis.Addr, cfg.Redis.DB)
	}

	// Публикатор событий жизненного цикла
	type eventPublisher interface {
		BookingCreated(ctx context.Context, group *domain.BookingGroup)
		BookingStatusChanged(ctx context.Context, group *domain.BookingGroup, event domain.TransitionEvent)
		PaymentHoldOpened(ctx context.Context, group *domain.BookingGroup)
		HoldReleased(ctx context.Context, group *domain.BookingGroup)
	}
	var publisher eventPublisher = notify.NopPublisher{}
	if cfg.Redis.Enabled {
		publisher = notify.NewPublisher(redisClient, log)
		log.Info("Lifecycle event publishing enabled (channels: %s, %s)", notify.ChannelBookings, notify.ChannelHolds)
	}

	// Платежный шлюз
	type paymentGateway interface {
		CreateHold(ctx context.Context, token string, amount float64, description string) (string, error)
		Verify(ctx context.Context, token string) (bool, error)
	}
	var gateway paymentGateway = stripegateway.NopGateway{}
	if cfg.Payments.Enabled {
		gateway = stripegateway.NewClient(
			cfg.Payments.StripeSecretKey,
			cfg.Payments.Currency,
			cfg.Payments.SuccessURL,
			cfg.Payments.CancelURL,
			time.Duration(cfg.Payments.SessionTTLMinutes)*time.Minute,
			redisClient,
			log,
		)
		log.Info("Stripe payment gateway enabled (currency=%s)", cfg.Payments.Currency)
	}

	// Инициализируем репозитории (с метриками или без)
	var (
		appointmentRepository *appointmentRepo.Repository
		scheduleRepository    *scheduleRepo.Repository
		resourceRepository    *resourceRepo.Repository
		catalogRepository     *catalogRepo.Repository
	)

	type txManager interface {
		DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
	}
	var txMgr txManager

	if cfg.Metrics.Enabled {
		wrappedDB = dbmetrics.WrapWithDefault(db, metricsCollector, cfg.Metrics.ServiceName, stopMetricsCh)
		log.Info("Database metrics collection started")

		appointmentRepository = appointmentRepo.NewRepository(wrappedDB)
		scheduleRepository = scheduleRepo.NewRepository(wrappedDB)
		resourceRepository = resourceRepo.NewRepository(wrappedDB)
		catalogRepository = catalogRepo.NewRepository(wrappedDB)
		txMgr = txmanager.NewTransactionManager(wrappedDB)
	} else {
		appointmentRepository = appointmentRepo.NewRepository(db)
		scheduleRepository = scheduleRepo.NewRepository(db)
		resourceRepository = resourceRepo.NewRepository(db)
		catalogRepository = catalogRepo.NewRepository(db)
		txMgr = simpletxmanager.NewTransactionManager(db)
	}

	// Инициализируем сервисы
	reservationsSvc := reservationsService.NewService(
		appointmentRepository,
		gateway,
		publisher,
		bookingMode,
		cfg.Booking.HoldDurationMinutes,
		log,
	)
	scheduleSvc := scheduleService.NewService(scheduleRepository, log)

	// Инициализируем use cases
	getAvailabilityUseCase := getAvailabilityUC.NewUseCase(
		appointmentRepository,
		scheduleRepository,
		resourceRepository,
		catalogRepository,
		location,
		cfg.Booking.SlotCadenceMinutes,
		cfg.Booking.MinNoticeMinutes,
		log,
	)
	createBookingUseCase := createBookingUC.NewUseCase(
		appointmentRepository,
		scheduleRepository,
		resourceRepository,
		catalogRepository,
		txMgr,
		gateway,
		publisher,
		location,
		bookingMode,
		cfg.Booking.MinNoticeMinutes,
		log,
	)

	// Фоновая очистка истекших hold'ов
	sweeperCtx, stopSweeper := context.WithCancel(context.Background())
	defer stopSweeper()

	if cfg.Sweeper.Enabled && bookingMode == domain.ModePagoPostAprobacion {
		var sweeperMetrics holdsweeper.Metrics = holdsweeper.NopMetrics{}
		if cfg.Metrics.Enabled {
			sweeperMetrics = metricsCollector
		}
		sweeper := holdsweeper.NewSweeper(
			appointmentRepository,
			publisher,
			sweeperMetrics,
			cfg.Sweeper.IntervalSeconds,
			log,
		)
		go sweeper.Run(sweeperCtx)
		log.Info("Hold sweeper started (interval=%ds)", cfg.Sweeper.IntervalSeconds)
	}

	// Инициализируем handlers
	getAvailableSlots := getAvailableSlotsHandler.NewHandler(getAvailabilityUseCase, log)
	createBooking := createBookingHandler.NewHandler(createBookingUseCase, log)
	getBooking := getBookingHandler.NewHandler(reservationsSvc, log)
	listBookings := listBookingsHandler.NewHandler(reservationsSvc, log)
	respondBooking := respondBookingHandler.NewHandler(reservationsSvc, log)
	confirmPayment := confirmPaymentHandler.NewHandler(reservationsSvc, log)
	updateBookingStatus := updateBookingStatusHandler.NewHandler(reservationsSvc, log)
	cancelBooking := cancelBookingHandler.NewHandler(reservationsSvc, log)
	deleteBooking := deleteBookingHandler.NewHandler(reservationsSvc, log)
	getSchedule := getScheduleHandler.NewHandler(scheduleSvc, log)
	updateSchedule := updateScheduleHandler.NewHandler(scheduleSvc, log)

	// Настраиваем роутер
	r := mux.NewRouter()

	// Добавляем metrics middleware (если метрики включены)
	if cfg.Metrics.Enabled {
		r.Use(middleware.MetricsMiddleware(metricsCollector, cfg.Metrics.ServiceName))
		r.Handle(cfg.Metrics.Path, promhttp.Handler()).Methods(http.MethodGet)
		log.Info("Prometheus metrics endpoint exposed at %s", cfg.Metrics.Path)
	}

	// API prefix
	api := r.PathPrefix("/api/v1").Subrouter()

	// ============================================================
	// PUBLIC ROUTES (клиентские, без аутентификации)
	// ============================================================

	// Доступные слоты на дату
	api.HandleFunc("/availability", getAvailableSlots.Handle).Methods(http.MethodGet)

	// Создание бронирования
	api.HandleFunc("/bookings", createBooking.Handle).Methods(http.MethodPost)

	// Подтверждение оплаты по платежному токену
	api.HandleFunc("/payments/{token}/confirm", confirmPayment.Handle).Methods(http.MethodPost)

	// Конфигурация календаря (для клиентских календарей)
	api.HandleFunc("/schedule", getSchedule.Handle).Methods(http.MethodGet)

	// Отмена брони клиентом
	api.HandleFunc("/bookings/{groupId}/cancel", cancelBooking.Handle).Methods(http.MethodPatch)

	// ============================================================
	// PROTECTED ROUTES (владелец, требуют X-Owner-Key header)
	// ============================================================

	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.Auth)

	// --- Бронирования ---
	protected.HandleFunc("/bookings", listBookings.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/bookings/{groupId}", getBooking.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/bookings/{groupId}/respond", respondBooking.Handle).Methods(http.MethodPatch)
	protected.HandleFunc("/bookings/{groupId}/status", updateBookingStatus.Handle).Methods(http.MethodPatch)
	protected.HandleFunc("/bookings/{groupId}", deleteBooking.Handle).Methods(http.MethodDelete)

	// --- Календарь ---
	protected.HandleFunc("/schedule/hours", updateSchedule.HandleUpsertBusinessHour).Methods(http.MethodPut)
	protected.HandleFunc("/schedule/breaks", updateSchedule.HandleCreateBreak).Methods(http.MethodPost)
	protected.HandleFunc("/schedule/breaks/{id}", updateSchedule.HandleDeleteBreak).Methods(http.MethodDelete)
	protected.HandleFunc("/schedule/exceptions", updateSchedule.HandleCreateException).Methods(http.MethodPost)
	protected.HandleFunc("/schedule/exceptions/{id}", updateSchedule.HandleDeleteException).Methods(http.MethodDelete)

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

	// Останавливаем sweeper и сбор метрик connection pool
	stopSweeper()
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
