package cron

import (
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/estatelink/estatelink/db"
	"github.com/estatelink/estatelink/models"
	"github.com/estatelink/estatelink/services"
)

// StartCronJobs initializes and starts the background scheduler
func StartCronJobs(otp *services.OTPService) {
	fmt.Println("Starting cron job scheduler...")
	c := cron.New()

	// The OTP TTL reaper. Verification checks expiry itself, this just
	// keeps dead rows from piling up.
	_, err := c.AddFunc("* * * * *", func() {
		purged, err := otp.PurgeExpired()
		if err != nil {
			log.Printf("Error purging expired OTP records: %v", err)
			return
		}
		if purged > 0 {
			log.Printf("Purged %d expired OTP records", purged)
		}
	})
	if err != nil {
		log.Fatalf("Failed to add cron job: %v", err)
	}

	// Expire listing promotions whose paid window has passed.
	_, err = c.AddFunc("0 3 * * *", expirePromotions)
	if err != nil {
		log.Fatalf("Failed to add cron job: %v", err)
	}

	c.Start()
	log.Println("Cron job scheduler started")
}

// expirePromotions clears the promoted flag on listings past their paid
// window
func expirePromotions() {
	res := db.DB.Model(&models.Property{}).
		Where("is_promoted = ? AND promoted_until < ?", true, time.Now()).
		Updates(map[string]interface{}{"is_promoted": false, "promoted_until": nil})
	if res.Error != nil {
		log.Printf("Error expiring promotions: %v", res.Error)
		return
	}
	if res.RowsAffected > 0 {
		log.Printf("Expired %d listing promotions", res.RowsAffected)
	}
}
