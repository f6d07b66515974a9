// Command admin manages roles from the command line.
package main

import (
	"errors"
	"fmt"
	"log"
	"os"

	"critique/internal/config"
	"critique/internal/database"
	"critique/internal/models"

	"gorm.io/gorm"
)

func usage() {
	fmt.Println("Usage:")
	fmt.Println("  admin promote <username> <user|moderator|admin>  - Set a user's role")
	fmt.Println("  admin superuser <username>                       - Grant superuser")
	fmt.Println("  admin list-admins                                - List admins and superusers")
	os.Exit(1)
}

func main() {
	if len(os.Args) < 2 {
		usage()
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	switch os.Args[1] {
	case "promote":
		if len(os.Args) < 4 {
			usage()
		}
		role := models.Role(os.Args[3])
		if !role.Valid() {
			log.Fatalf("Unknown role %q", os.Args[3])
		}
		setRole(db, os.Args[2], role)

	case "superuser":
		if len(os.Args) < 3 {
			usage()
		}
		grantSuperuser(db, os.Args[2])

	case "list-admins":
		listAdmins(db)

	default:
		fmt.Printf("Unknown command: %s\n", os.Args[1])
		usage()
	}
}

func findUser(db *gorm.DB, username string) models.User {
	var user models.User
	if err := db.Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			fmt.Printf("User %s not found\n", username)
			os.Exit(1)
		}
		log.Fatalf("Database error: %v", err)
	}
	return user
}

func setRole(db *gorm.DB, username string, role models.Role) {
	user := findUser(db, username)
	if user.Role == role {
		fmt.Printf("User %s already has role %s\n", user.Username, role)
		return
	}
	if err := db.Model(&user).Update("role", role).Error; err != nil {
		log.Fatalf("Failed to update role: %v", err)
	}
	fmt.Printf("Set role of %s to %s\n", user.Username, role)
}

func grantSuperuser(db *gorm.DB, username string) {
	user := findUser(db, username)
	if user.IsSuperuser {
		fmt.Printf("User %s is already a superuser\n", user.Username)
		return
	}
	if err := db.Model(&user).Update("is_superuser", true).Error; err != nil {
		log.Fatalf("Failed to grant superuser: %v", err)
	}
	fmt.Printf("Granted superuser to %s\n", user.Username)
}

func listAdmins(db *gorm.DB) {
	var admins []models.User
	if err := db.Where("role = ? OR is_superuser = ?", models.RoleAdmin, true).Order("username").Find(&admins).Error; err != nil {
		log.Fatalf("Failed to fetch admins: %v", err)
	}
	if len(admins) == 0 {
		fmt.Println("No admins found")
		return
	}
	for _, u := range admins {
		flag := ""
		if u.IsSuperuser {
			flag = " (superuser)"
		}
		fmt.Printf("  %-24s %-28s %s%s\n", u.Username, u.Email, u.Role, flag)
	}
}
