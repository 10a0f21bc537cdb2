package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/yourusername/quizmaker-api/internal/config"
	"github.com/yourusername/quizmaker-api/internal/handler"
	"github.com/yourusername/quizmaker-api/internal/middleware"
	pgRepo "github.com/yourusername/quizmaker-api/internal/repository/postgres"
	redisRepo "github.com/yourusername/quizmaker-api/internal/repository/redis"
	"github.com/yourusername/quizmaker-api/internal/service"
	"github.com/yourusername/quizmaker-api/pkg/auth"
	"github.com/yourusername/quizmaker-api/pkg/database"
)

func main() {
	// Загружаем конфигурацию
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config/config.yaml"
	}
	log.Printf("Загрузка конфигурации из %s", configPath)

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Printf("Failed to load config: %v", err)
		os.Exit(1)
	}

	// Инициализируем подключение к PostgreSQL
	db, err := database.NewPostgresDB(cfg.Database.PostgresConnectionString())
	if err != nil {
		log.Printf("Failed to connect to database: %v", err)
		os.Exit(1)
	}

	// Применяем миграции
	if err := database.MigrateDB(db); err != nil {
		log.Printf("Failed to migrate database: %v", err)
		os.Exit(1)
	}

	// Инициализируем подключение к Redis с использованием унифицированной конфигурации
	redisClient, err := database.NewUniversalRedisClient(cfg.Redis)
	if err != nil {
		log.Printf("Failed to connect to Redis: %v", err)
		os.Exit(1)
	}
	log.Println("Successfully connected to Redis")

	// Инициализируем репозитории
	userRepo := pgRepo.NewUserRepo(db)
	quizRepo := pgRepo.NewQuizRepo(db)
	questionRepo := pgRepo.NewQuestionRepo(db)
	reusableQuestionRepo := pgRepo.NewReusableQuestionRepo(db)
	attemptRepo := pgRepo.NewAttemptRepo(db)
	leaderboardRepo := pgRepo.NewLeaderboardRepo(db)

	cacheRepo, err := redisRepo.NewCacheRepo(redisClient)
	if err != nil {
		log.Printf("Failed to initialize CacheRepo: %v", err)
		os.Exit(1)
	}

	// Инициализируем JWT-сервис
	jwtService, err := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.ExpirationHrs)
	if err != nil {
		log.Printf("Failed to initialize JWTService: %v", err)
		os.Exit(1)
	}

	// Email: Resend в проде, no-op без API-ключа
	var emailService service.EmailService
	if cfg.Email.ResendAPIKey != "" {
		resendService, err := service.NewResendEmailService(cfg.Email.ResendAPIKey, cfg.Email.From)
		if err != nil {
			log.Printf("Failed to initialize email service: %v", err)
			os.Exit(1)
		}
		emailService = resendService
		log.Println("Email: используется Resend")
	} else {
		emailService = &service.NoopEmailService{}
		log.Println("Email: RESEND_API_KEY не задан, письма не отправляются")
	}

	// Инициализируем сервисы
	authService, err := service.NewAuthService(userRepo, jwtService, emailService, cfg.Email.ResetURLBase)
	if err != nil {
		log.Printf("Failed to initialize AuthService: %v", err)
		os.Exit(1)
	}
	quizService := service.NewQuizService(quizRepo, userRepo, emailService)
	questionService := service.NewQuestionService(quizRepo, questionRepo, reusableQuestionRepo)
	participantService := service.NewParticipantService(quizRepo, questionRepo, attemptRepo, leaderboardRepo, cacheRepo, db)
	leaderboardService := service.NewLeaderboardService(leaderboardRepo, quizRepo, userRepo, cacheRepo)
	analyticsService := service.NewAnalyticsService(quizRepo, questionRepo, attemptRepo, userRepo)

	// Инициализируем обработчики
	authHandler := handler.NewAuthHandler(authService)
	quizHandler := handler.NewQuizHandler(quizService)
	questionHandler := handler.NewQuestionHandler(questionService)
	participantHandler := handler.NewParticipantHandler(participantService, leaderboardService)
	analyticsHandler := handler.NewAnalyticsHandler(analyticsService, quizService)

	// Инициализируем middleware
	authMiddleware := middleware.NewAuthMiddleware(jwtService)
	rateLimiter := middleware.NewRateLimiter(redisClient)

	// Инициализируем роутер Gin
	router := gin.Default()

	isProduction := gin.Mode() == gin.ReleaseMode

	// Настройка доверенных прокси для корректной работы c.ClientIP()
	if isProduction {
		// Production: не доверять прокси-заголовкам
		// Если используете load balancer, замените nil на []string{"IP_БАЛАНСИРОВЩИКА"}
		if err := router.SetTrustedProxies(nil); err != nil {
			log.Printf("Warning: failed to set trusted proxies: %v", err)
		}
	} else {
		// Development: доверяем localhost
		if err := router.SetTrustedProxies([]string{"127.0.0.1", "::1"}); err != nil {
			log.Printf("Warning: failed to set trusted proxies: %v", err)
		}
	}

	// Настройка CORS
	allowedOrigins := cfg.CORS.AllowedOrigins
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"http://localhost:5173", "http://localhost:3000"}
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Настраиваем маршруты API
	api := router.Group("/api")
	{
		// Аутентификация
		authGroup := api.Group("/auth")
		{
			authGroup.POST("/createUser", rateLimiter.Limit(middleware.StrictAuthRateLimitConfig()), authHandler.CreateUser)
			authGroup.POST("/login", rateLimiter.Limit(middleware.StrictAuthRateLimitConfig()), authHandler.Login)
			authGroup.POST("/forgotPassword", rateLimiter.Limit(middleware.StrictAuthRateLimitConfig()), authHandler.ForgotPassword)
			authGroup.POST("/resetPassword", rateLimiter.Limit(middleware.StrictAuthRateLimitConfig()), authHandler.ResetPassword)
		}

		// Викторины
		quizzes := api.Group("/quizzes")
		quizzes.Use(authMiddleware.RequireAuth())
		{
			quizzes.POST("/create", quizHandler.CreateQuiz)
			quizzes.GET("/getAllQuizzes", quizHandler.GetAllQuizzes)
			quizzes.GET("/user-quizzes", quizHandler.GetUserQuizzes)
			quizzes.GET("/searchQuizzes", quizHandler.SearchQuizzes)

			quizWithID := quizzes.Group("/:id")
			quizWithID.Use(middleware.ExtractUintParam("id", "quizID"))
			{
				quizWithID.GET("", quizHandler.GetQuiz)
			}

			quizzes.PUT("/update/:id", middleware.ExtractUintParam("id", "quizID"), quizHandler.UpdateQuiz)
			quizzes.DELETE("/delete/:id", middleware.ExtractUintParam("id", "quizID"), quizHandler.DeleteQuiz)
		}

		// Вопросы
		questions := api.Group("/questions")
		questions.Use(authMiddleware.RequireAuth())
		{
			questions.POST("/create", questionHandler.AddQuestions)
			questions.GET("/quiz/:quizId", middleware.ExtractUintParam("quizId", "quizID"), questionHandler.GetQuizQuestions)
			questions.PUT("/update/:questionId", middleware.ExtractUintParam("questionId", "questionID"), questionHandler.UpdateQuestion)
			questions.DELETE("/delete/:questionId", middleware.ExtractUintParam("questionId", "questionID"), questionHandler.DeleteQuestion)

			// Личный пул вопросов
			pool := questions.Group("/pool")
			{
				pool.GET("", questionHandler.GetPoolQuestions)
				pool.GET("/search", questionHandler.SearchPoolQuestions)
				pool.POST("/create", questionHandler.CreatePoolQuestion)
				pool.PUT("/update/:questionId", middleware.ExtractUintParam("questionId", "questionID"), questionHandler.UpdatePoolQuestion)
				pool.DELETE("/delete/:questionId", middleware.ExtractUintParam("questionId", "questionID"), questionHandler.DeletePoolQuestion)
				pool.POST("/add-to-quiz/:quizId", middleware.ExtractUintParam("quizId", "quizID"), questionHandler.AddPoolQuestionsToQuiz)
			}
		}

		// Участие в викторинах
		participants := api.Group("/participants")
		participants.Use(authMiddleware.RequireAuth())
		{
			participants.POST("/submit", participantHandler.SubmitAnswers)
			participants.POST("/join-public-quiz/:quizId", middleware.ExtractUintParam("quizId", "quizID"), participantHandler.JoinPublicQuiz)
			participants.POST("/join-private-quiz", participantHandler.JoinPrivateQuiz)
			participants.GET("/getLeaderboard/:quizId", middleware.ExtractUintParam("quizId", "quizID"), participantHandler.GetLeaderboard)
			participants.GET("/getLeaderboard/:quizId/export", middleware.ExtractUintParam("quizId", "quizID"), participantHandler.ExportLeaderboard)
		}

		// Аналитика
		analytics := api.Group("/analytics")
		analytics.Use(authMiddleware.RequireAuth())
		{
			analytics.GET("/quiz/:quizId", middleware.ExtractUintParam("quizId", "quizID"), analyticsHandler.GetQuizAnalytics)
		}
	}

	// Настраиваем HTTP сервер с тайм-аутами для защиты от slow client attacks
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	// Запускаем сервер в горутине
	go func() {
		log.Printf("Starting server on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("Failed to start server: %v", err)
		}
	}()

	log.Printf("Server started on port %s", cfg.Server.Port)

	// Graceful shutdown по SIGINT/SIGTERM
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
		os.Exit(1)
	}

	if err := redisClient.Close(); err != nil {
		log.Printf("Error closing Redis client: %v", err)
	}

	log.Println("Server exited properly")
}
