package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/Rehtse11/Essence-Luxe/internal/models"
	"github.com/Rehtse11/Essence-Luxe/internal/store"
	"golang.org/x/crypto/bcrypt"
)

func main() {
	addAdminCmd := flag.NewFlagSet("add-admin", flag.ExitOnError)
	email := addAdminCmd.String("email", "", "Email for the admin account")
	password := addAdminCmd.String("password", "", "Password for the admin account")
	firstName := addAdminCmd.String("first-name", "Admin", "First name")
	lastName := addAdminCmd.String("last-name", "User", "Last name")

	if len(os.Args) < 2 {
		fmt.Println("expected 'add-admin' subcommand")
		os.Exit(1)
	}

	switch os.Args[1] {
	case "add-admin":
		addAdminCmd.Parse(os.Args[2:])
		if *email == "" || *password == "" {
			fmt.Println("email and password are required")
			addAdminCmd.PrintDefaults()
			os.Exit(1)
		}
		createAdmin(*email, *password, *firstName, *lastName)
	default:
		fmt.Println("expected 'add-admin' subcommand")
		os.Exit(1)
	}
}

func createAdmin(email, password, firstName, lastName string) {
	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		dbPath = "./essence.db"
	}
	migrationsDir := os.Getenv("MIGRATIONS_DIR")
	if migrationsDir == "" {
		migrationsDir = "migrations"
	}

	db, err := store.NewStore(dbPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	// Ensure schema exists if running cli before server
	if err := db.Migrate(migrationsDir); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("Failed to hash password: %v", err)
	}

	user := &models.User{
		FirstName: firstName,
		LastName:  lastName,
		Email:     email,
		Password:  string(hashedPassword),
		Role:      "admin",
	}
	if err := db.CreateUser(user); err != nil {
		log.Fatalf("Failed to create admin user: %v", err)
	}

	fmt.Printf("Admin '%s' created successfully.\n", email)
}
