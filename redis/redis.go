package redis

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	Client *redis.Client
	Ctx    = context.Background()
)

func InitRedis() {
	Client = redis.NewClient(&redis.Options{
		Addr: os.Getenv("REDIS_ADDR"),
		DB:   0,
	})

	// Test connection
	_, err := Client.Ping(Ctx).Result()
	if err != nil {
		panic(fmt.Sprintf("Failed to connect to Redis: %v", err))
	}
	fmt.Println("✅ Connected to Redis")
}

// OTP request rate limit: at most maxOTPRequests codes per email per window.
const (
	maxOTPRequests   = 5
	otpRequestWindow = time.Hour
)

// AllowOTPRequest increments the per-email request counter and reports
// whether this request is still within the limit. When Redis is not
// configured the limiter is a no-op.
func AllowOTPRequest(email string) bool {
	if Client == nil {
		return true
	}

	key := "otp:req:" + email
	count, err := Client.Incr(Ctx, key).Result()
	if err != nil {
		// Redis being down should not block sign-ins.
		return true
	}
	if count == 1 {
		Client.Expire(Ctx, key, otpRequestWindow)
	}
	return count <= maxOTPRequests
}
