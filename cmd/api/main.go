package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	"github.com/redis/go-redis/v9"

	"holasmile/cmd/internal/auth"
	"holasmile/cmd/internal/config"
	"holasmile/cmd/internal/domain/database"
	"holasmile/cmd/internal/domain/database/repository"
	cognitoclient "holasmile/cmd/internal/integration/aws/cognito"
	"holasmile/cmd/internal/jobs"
	"holasmile/cmd/internal/notify"
	"holasmile/cmd/internal/routes"
	"holasmile/cmd/internal/service"
	"holasmile/cmd/internal/utils/validators"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("failed to load configuration: ", err)
	}

	validate := validators.New()

	db, err := database.Init(cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		log.Fatal("failed to initialize database: ", err)
	}

	cogClient, err := cognitoclient.InitCognitoClient(context.Background(), cfg.AWSRegion, cfg.CognitoUserPoolID)
	if err != nil {
		log.Fatal("failed to initialize cognito client: ", err)
	}

	// Repositories
	userRepo := repository.NewUserRepository(db)
	dentistRepo := repository.NewDentistRepository(db)
	patientRepo := repository.NewPatientRepository(db)
	apptRepo := repository.NewAppointmentRepository(db)
	scheduleRepo := repository.NewScheduleRepository(db)
	supplyRepo := repository.NewSupplyRepository(db)
	txnRepo := repository.NewTransactionRepository(db)
	warrantyRepo := repository.NewWarrantyRepository(db)
	prescriptionRepo := repository.NewPrescriptionRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)

	// Notification channels
	dispatchers := notify.Multi{&notify.StoreDispatcher{Store: notificationRepo}}
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := rdb.Ping(context.Background()).Err(); err != nil {
			log.Warnf("redis unavailable at %s, realtime push disabled: %v", cfg.RedisAddr, err)
		} else {
			dispatchers = append(dispatchers, &notify.PubSubDispatcher{Client: rdb})
		}
	}
	if cfg.SMTPHost != "" {
		dispatchers = append(dispatchers, notify.NewMailDispatcher(userRepo, cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.SMTPFrom))
	}
	notifier := notify.NewNotifier(dispatchers, cfg.NotifyConcurrency, cfg.NotifyTimeout)

	// Services
	scheduleService := service.NewScheduleService(scheduleRepo, dentistRepo, userRepo, notifier, validate)
	supplyService := service.NewSupplyService(supplyRepo, userRepo, notifier, validate)
	warrantyService := service.NewWarrantyService(warrantyRepo, notifier, validate)
	prescriptionService := service.NewPrescriptionService(prescriptionRepo, apptRepo, notifier, validate)
	txnService := service.NewTransactionService(txnRepo, userRepo, notifier, validate)
	userService := service.NewUserService(userRepo, validate, cogClient)
	apptService := service.NewAppointmentService(apptRepo, patientRepo, dentistRepo)
	notificationService := service.NewNotificationService(notificationRepo)

	// Routes
	scheduleRoutes := routes.NewScheduleDefault(scheduleService)
	supplyRoutes := routes.NewSupplyDefault(supplyService)
	clinicRoutes := routes.NewClinicDefault(warrantyService, prescriptionService, txnService)
	userRoutes := routes.NewUserDefault(userService)
	apptRoutes := routes.NewAppointmentDefault(apptService)
	notificationRoutes := routes.NewNotificationDefault(notificationService)

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{Generator: uuid.NewString}))
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(auth.Middleware([]byte(cfg.JWTSecret)))

	// Schedules
	e.GET("/api/schedules/mine", scheduleRoutes.ListMySchedules)
	e.POST("/api/schedules", scheduleRoutes.RegisterSchedules)
	e.PUT("/api/schedules/approval", scheduleRoutes.ApproveSchedules)
	e.PUT("/api/schedules/:id", scheduleRoutes.EditSchedule)
	e.DELETE("/api/schedules/:id", scheduleRoutes.CancelSchedule)

	// Supplies
	e.GET("/api/supplies", supplyRoutes.GetSupplies)
	e.POST("/api/supplies", supplyRoutes.CreateSupply)
	e.PUT("/api/supplies/:id", supplyRoutes.EditSupply)
	e.PUT("/api/supplies/:id/toggle", supplyRoutes.ToggleSupply)

	// Clinical records and finance
	e.PUT("/api/warranty-cards/:id", clinicRoutes.EditWarranty)
	e.POST("/api/prescriptions", clinicRoutes.CreatePrescription)
	e.PUT("/api/prescriptions/:id", clinicRoutes.EditPrescription)
	e.POST("/api/transactions", clinicRoutes.CreateTransaction)

	// Users
	e.PUT("/api/users/:id/ban-toggle", userRoutes.BanUnbanUser)

	// Appointments
	e.GET("/api/appointments", apptRoutes.GetAppointments)
	e.GET("/api/appointments/:id", apptRoutes.GetAppointment)

	// Notifications
	e.GET("/api/notifications", notificationRoutes.GetNotifications)
	e.GET("/api/notifications/unread-count", notificationRoutes.GetUnreadCount)
	e.PUT("/api/notifications/read-all", notificationRoutes.MarkAllAsRead)
	e.PUT("/api/notifications/:id/read", notificationRoutes.MarkAsRead)

	sweeper := &jobs.Sweeper{
		Warranties: warrantyRepo,
		Supplies:   supplyRepo,
		Users:      userRepo,
		Notifier:   notifier,
		WindowDays: cfg.SupplyExpiryWindowDays,
	}
	scheduler, err := jobs.Start(sweeper, cfg.CronWarrantySpec, cfg.CronSupplySpec)
	if err != nil {
		log.Fatal("failed to schedule cron jobs: ", err)
	}

	go func() {
		if err := e.Start(cfg.HTTPAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			e.Logger.Fatal(err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	<-scheduler.Stop().Done()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		e.Logger.Fatal(err)
	}
}
