package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"syscall"

	govalidator "github.com/go-playground/validator/v10"
	"github.com/stemsi/exam-engine/internal/config"
	"github.com/stemsi/exam-engine/internal/logger"
	"github.com/stemsi/exam-engine/internal/model"
	"github.com/stemsi/exam-engine/internal/service"
	"github.com/stemsi/exam-engine/internal/store"
	"golang.org/x/term"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)

	ctx := context.Background()

	// ─── Open Store ────────────────────────────────────────────────────
	stores, err := store.Open(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open store")
	}
	defer stores.Close()

	// ─── Initialize Service ────────────────────────────────────────────
	// Password hashing does not touch Redis.
	userService := service.NewUserService(stores.Users, service.NewAuthService(cfg, nil), log)
	validate := govalidator.New()

	// ─── CLI Input ─────────────────────────────────────────────────────
	reader := bufio.NewReader(os.Stdin)

	fmt.Println("=== Create New User ===")

	// Name
	fmt.Print("Enter Name: ")
	name, _ := reader.ReadString('\n')
	name = strings.TrimSpace(name)
	if err := validate.Var(name, "required,min=2,max=100"); err != nil {
		fmt.Println("Error: Name must be 2-100 characters")
		return
	}

	// Email
	fmt.Print("Enter Email: ")
	email, _ := reader.ReadString('\n')
	email = strings.TrimSpace(email)
	if err := validate.Var(email, "required,email,max=255"); err != nil {
		fmt.Println("Error: A valid email is required")
		return
	}

	// Password
	fmt.Print("Enter Password: ")
	bytePassword, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		fmt.Println("\nError reading password")
		return
	}
	password := string(bytePassword)
	fmt.Println() // Newline after password input
	if err := validate.Var(password, "min=8,max=72"); err != nil || len(password) > model.MaxPasswordBytes {
		fmt.Printf("Error: Password must be 8-%d characters\n", model.MaxPasswordBytes)
		return
	}

	// ─── Logic ─────────────────────────────────────────────────────────
	user, err := userService.Register(ctx, name, email, password)
	if err != nil {
		if errors.Is(err, service.ErrEmailTaken) {
			fmt.Println("Error: Email is already registered")
			return
		}
		if errors.Is(err, service.ErrPasswordTooLong) {
			fmt.Printf("Error: Password must be at most %d bytes\n", model.MaxPasswordBytes)
			return
		}
		log.Fatal().Err(err).Msg("Failed to create user")
	}

	fmt.Printf("\nSuccess! User '%s' (%s) created with ID: %s\n", user.Name, user.Email, user.ID)
}
