package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"estatelist/backend/internal/auth"
	"estatelist/backend/internal/database"
	"estatelist/backend/internal/handlers"
	"estatelist/backend/internal/listing"
	"estatelist/backend/internal/models"
	"estatelist/backend/internal/notifications"
	"estatelist/backend/internal/router"
	"estatelist/backend/internal/storage"
	appconfig "estatelist/backend/pkg/config"
	applog "estatelist/backend/pkg/log"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

func buildDSN() string {
	cfg := appconfig.Cfg
	sslMode := "disable"
	if cfg.EnableDBSSL {
		sslMode = "require"
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s TimeZone=UTC",
		cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBName, sslMode)
}

// runSetup connects, migrates, and seeds the first admin account.
func runSetup() {
	reader := bufio.NewReader(os.Stdin)
	fmt.Println("--- EstateList Setup ---")

	if err := database.ConnectDB(buildDSN()); err != nil {
		applog.L.Fatal("Failed to connect to database during setup", zap.Error(err))
	}
	if err := database.MigrateDB(); err != nil {
		applog.L.Fatal("Failed to run database migrations during setup", zap.Error(err))
	}
	fmt.Println("Database ready.")

	fmt.Print("Enter admin username: ")
	username, _ := reader.ReadString('\n')
	username = strings.TrimSpace(username)

	fmt.Print("Enter admin email: ")
	email, _ := reader.ReadString('\n')
	email = strings.TrimSpace(email)

	fmt.Print("Enter admin phone number: ")
	phone, _ := reader.ReadString('\n')
	phone = strings.TrimSpace(phone)

	fmt.Print("Enter admin password: ")
	password, _ := reader.ReadString('\n')
	password = strings.TrimSpace(password)

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		applog.L.Fatal("Failed to hash password during setup", zap.Error(err))
	}

	admin := models.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hashedPassword),
		PhoneNumber:  phone,
		Role:         models.RoleAdmin,
	}
	if err := database.GetDB().Create(&admin).Error; err != nil {
		applog.L.Fatal("Failed to create admin user during setup", zap.Error(err))
	}

	fmt.Printf("Admin user %q created.\n--- Setup Complete ---\n", admin.Username)
}

func startServer() {
	ctx := context.Background()

	if err := auth.InitializeJWT(); err != nil {
		applog.L.Fatal("Failed to initialize JWT", zap.Error(err))
	}

	if err := database.ConnectDB(buildDSN()); err != nil {
		applog.L.Fatal("Failed to connect to database", zap.Error(err))
	}
	if err := database.MigrateDB(); err != nil {
		applog.L.Fatal("Failed to run database migrations", zap.Error(err))
	}

	provider, err := storage.New(ctx)
	if err != nil {
		applog.L.Fatal("Failed to initialize storage provider", zap.Error(err))
	}

	notifier, err := notifications.NewEmailNotifier(ctx)
	if err != nil {
		applog.L.Fatal("Failed to initialize email notifier", zap.Error(err))
	}

	listingService := listing.NewService(database.GetDB(), provider)
	propertyHandler := handlers.NewPropertyHandler(listingService)
	resetHandler := handlers.NewPasswordResetHandler(notifier)

	r := router.SetupRouter(applog.L, propertyHandler, resetHandler)

	port := appconfig.Cfg.Port
	applog.L.Info("Starting server", zap.String("port", port))
	if err := r.Run(":" + port); err != nil {
		applog.L.Fatal("Failed to start server", zap.Error(err))
	}
}

func main() {
	defer applog.Sync()

	if len(os.Args) > 1 && os.Args[1] == "setup" {
		runSetup()
	} else {
		startServer()
	}
}
