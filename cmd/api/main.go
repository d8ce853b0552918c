package main

import (
	"context"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"gopkg.in/natefinch/lumberjack.v2"
	"gorm.io/gorm"

	"github.com/Wikid82/autosource/backend/internal/config"
	"github.com/Wikid82/autosource/backend/internal/database"
	"github.com/Wikid82/autosource/backend/internal/logger"
	"github.com/Wikid82/autosource/backend/internal/models"
	"github.com/Wikid82/autosource/backend/internal/server"
	"github.com/Wikid82/autosource/backend/internal/version"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	// Setup logging with rotation
	logDir := cfg.LogDir
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		logDir = filepath.Join("data", "logs")
		_ = os.MkdirAll(logDir, 0o755)
	}
	rotator := &lumberjack.Logger{
		Filename:   filepath.Join(logDir, "autosource.log"),
		MaxSize:    10, // megabytes
		MaxBackups: 3,
		MaxAge:     28, // days
		Compress:   true,
	}
	defer rotator.Close()

	// Log to both stdout and file
	mw := io.MultiWriter(os.Stdout, rotator)
	log.SetOutput(mw)
	logger.Init(cfg.Debug, mw)

	db, err := database.Connect(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("connect database: %v", err)
	}

	// Handle CLI commands
	if len(os.Args) > 1 && os.Args[1] == "reset-password" {
		if len(os.Args) != 4 {
			log.Fatalf("Usage: %s reset-password <email> <new-password>", os.Args[0])
		}
		resetPassword(db, os.Args[2], os.Args[3])
		return
	}

	srv, err := server.New(db, cfg)
	if err != nil {
		log.Fatalf("build server: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Log().WithField("port", cfg.HTTPPort).WithField("version", version.Full()).
		Infof("starting %s backend", version.Name)
	if err := srv.Run(ctx); err != nil {
		logger.Log().WithError(err).Fatal("server error")
	}
	logger.Log().Info("server stopped")
}

func resetPassword(db *gorm.DB, email, newPassword string) {
	var user models.User
	if err := db.Where("email = ?", strings.ToLower(email)).First(&user).Error; err != nil {
		log.Fatalf("user not found: %v", err)
	}

	if err := user.SetPassword(newPassword); err != nil {
		log.Fatalf("failed to hash password: %v", err)
	}
	user.Enabled = true

	if err := db.Save(&user).Error; err != nil {
		log.Fatalf("failed to save user: %v", err)
	}

	log.Printf("Password updated successfully for user %s", email)
}
