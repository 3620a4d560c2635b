package db

import (
	"fmt"
	"log"

	"github.com/estatelink/estatelink/models"
)

func Migrate() {
	// Initialize DB connection
	Init()

	// Run AutoMigrate only when explicitly called
	err := DB.AutoMigrate(
		&models.User{},
		&models.OTPRecord{},
		&models.Property{},
		&models.Conversation{},
		&models.ConversationParticipant{},
		&models.Message{},
		&models.Payment{},
		&models.Notification{},
	)
	if err != nil {
		log.Fatal("Failed to run migrations: ", err)
	}

	fmt.Println("✅ Migrations applied successfully!")
}
