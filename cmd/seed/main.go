package main

import (
	"context"
	"flag"
	"log"
	"time"

	"fintrack/internal/dto"
	"fintrack/internal/models"
	"fintrack/internal/repository"
	"fintrack/internal/service"
	"fintrack/pkg/auth"
	"fintrack/pkg/config"
	"fintrack/pkg/logger"
	"fintrack/pkg/postgres"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var expenseCategories = []string{
	"Groceries", "Rent", "Transport", "Utilities", "Entertainment", "Health", "Dining",
}

var incomeCategories = []string{
	"Salary", "Freelance", "Interest", "Gifts",
}

func main() {
	users := flag.Int("users", 3, "number of demo users to create")
	perUser := flag.Int("transactions", 25, "number of transactions per user")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logger.Init(cfg.Logger.Level); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()
	appLogger := logger.Get()

	ctx := context.Background()
	db, err := postgres.NewPool(ctx, &cfg.Database, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if err := postgres.RunMigrations(&cfg.Database); err != nil {
		appLogger.Fatal("Failed to run migrations", zap.Error(err))
	}

	userRepo := repository.NewUserRepository(db, appLogger)
	txRepo := repository.NewTransactionRepository(db, appLogger)
	txService := service.NewTransactionService(txRepo, appLogger)

	appLogger.Info("Seeding demo data", zap.Int("users", *users), zap.Int("transactions", *perUser))

	for i := 0; i < *users; i++ {
		userID, email, err := seedUser(ctx, userRepo)
		if err != nil {
			appLogger.Fatal("Failed to create demo user", zap.Error(err))
		}

		for j := 0; j < *perUser; j++ {
			if _, err := txService.Create(ctx, userID, randomTransaction()); err != nil {
				appLogger.Fatal("Failed to create demo transaction", zap.Error(err))
			}
		}

		appLogger.Info("Seeded demo user",
			zap.String("email", email),
			zap.Int("transactions", *perUser),
		)
	}

	appLogger.Info("Seeding completed")
}

func seedUser(ctx context.Context, userRepo *repository.UserRepository) (uuid.UUID, string, error) {
	password, err := auth.HashPassword("password123")
	if err != nil {
		return uuid.Nil, "", err
	}

	now := time.Now()
	user := &models.User{
		ID:        uuid.New(),
		Username:  gofakeit.Username(),
		Email:     gofakeit.Email(),
		Password:  password,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := userRepo.Create(ctx, user); err != nil {
		return uuid.Nil, "", err
	}

	return user.ID, user.Email, nil
}

func randomTransaction() *dto.CreateTransactionRequest {
	txType := models.TypeExpense
	category := gofakeit.RandomString(expenseCategories)
	if gofakeit.Number(0, 3) == 0 {
		txType = models.TypeIncome
		category = gofakeit.RandomString(incomeCategories)
	}

	date := gofakeit.DateRange(time.Now().AddDate(0, -6, 0), time.Now())

	return &dto.CreateTransactionRequest{
		Type:        string(txType),
		Category:    category,
		Amount:      gofakeit.Price(1, 2000),
		Description: gofakeit.Sentence(4),
		Date:        &date,
	}
}
