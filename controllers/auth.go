package controllers

import (
	"errors"
	"os"
	"strings"
	"time"

	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"

	"github.com/estatelink/estatelink/db"
	"github.com/estatelink/estatelink/models"
	"github.com/estatelink/estatelink/redis"
	"github.com/estatelink/estatelink/services"
	"github.com/estatelink/estatelink/utils"
)

// Services are wired in main. OTP carries the injected mailer and the
// dev-mode code exposure flag.
var (
	OTP       *services.OTPService
	Messaging *services.MessagingService
)

// RequestOTP issues a verification code for an email address
func RequestOTP(c *fiber.Ctx) error {
	type OTPRequest struct {
		Email string `json:"email"`
	}

	req := new(OTPRequest)
	if err := c.BodyParser(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Cannot parse JSON",
		})
	}

	if req.Email == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Missing required fields",
		})
	}

	if !redis.AllowOTPRequest(strings.ToLower(req.Email)) {
		return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
			"error": "Too many verification requests, try again later",
		})
	}

	result, err := OTP.RequestOTP(req.Email)
	if err != nil {
		if errors.Is(err, services.ErrValidation) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Missing required fields",
			})
		}
		log.Printf("Error requesting OTP for %s: %v", req.Email, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to send verification code",
		})
	}

	response := fiber.Map{
		"message": "Verification code sent",
	}
	if result.Code != "" {
		response["otp"] = result.Code
	}
	return c.JSON(response)
}

// VerifyOTPRequest is the verify-otp body. Registration fields are only
// read when a registration payload is present.
type VerifyOTPRequest struct {
	Email string `json:"email"`
	OTP   string `json:"otp"`

	FirstName     string   `json:"first_name"`
	LastName      string   `json:"last_name"`
	Password      string   `json:"password"`
	Role          string   `json:"role"`
	LicenseNumber string   `json:"license_number"`
	Agency        string   `json:"agency"`
	Experience    uint     `json:"experience"`
	Specialties   []string `json:"specialties"`
	Region        string   `json:"region"`
}

// VerifyOTP consumes a code and either registers a new user (when a
// registration payload is supplied) or re-authenticates an existing one.
func VerifyOTP(c *fiber.Ctx) error {
	req := new(VerifyOTPRequest)
	if err := c.BodyParser(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Cannot parse JSON",
		})
	}

	if req.Email == "" || req.OTP == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Missing required fields",
		})
	}

	if status, msg := verifyCode(req.Email, req.OTP); status != 0 {
		return c.Status(status).JSON(fiber.Map{"error": msg})
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))

	// Registration mode when a password is supplied.
	if req.Password != "" {
		var existing models.User
		if db.DB.Where("email = ?", email).First(&existing).RowsAffected > 0 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "User with this email already exists",
			})
		}

		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Failed to hash password",
			})
		}

		user := models.User{
			FirstName:  req.FirstName,
			LastName:   req.LastName,
			Email:      email,
			Password:   string(hashedPassword),
			Role:       models.ParseRole(req.Role),
			IsVerified: true,
		}
		if user.Role == models.RoleAgent {
			user.LicenseNumber = req.LicenseNumber
			user.Agency = req.Agency
			user.Experience = req.Experience
			user.Region = req.Region
			for _, tag := range req.Specialties {
				if models.IsAgentSpecialty(tag) {
					user.Specialties = append(user.Specialties, tag)
				}
			}
		}

		if err := db.DB.Create(&user).Error; err != nil {
			log.Printf("Error creating user: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Failed to create user",
			})
		}
		return respondWithToken(c, &user)
	}

	// Login mode: the account must already exist.
	var user models.User
	if db.DB.Where("email = ?", email).First(&user).RowsAffected == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "No account found for this email",
		})
	}
	if !user.IsVerified {
		db.DB.Model(&user).UpdateColumn("is_verified", true)
		user.IsVerified = true
	}
	return respondWithToken(c, &user)
}

// VerifySocialLogin consumes a code issued during a social sign-in and
// auto-provisions the account if it does not exist yet.
func VerifySocialLogin(c *fiber.Ctx) error {
	type SocialLoginRequest struct {
		Email     string `json:"email"`
		OTP       string `json:"otp"`
		Provider  string `json:"provider"`
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
	}

	req := new(SocialLoginRequest)
	if err := c.BodyParser(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Cannot parse JSON",
		})
	}

	if req.Email == "" || req.OTP == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Missing required fields",
		})
	}

	if status, msg := verifyCode(req.Email, req.OTP); status != 0 {
		return c.Status(status).JSON(fiber.Map{"error": msg})
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))

	var user models.User
	if db.DB.Where("email = ?", email).First(&user).RowsAffected == 0 {
		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(utils.GenerateRandomPassword()), bcrypt.DefaultCost)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Failed to provision account",
			})
		}
		user = models.User{
			FirstName:  req.FirstName,
			LastName:   req.LastName,
			Email:      email,
			Password:   string(hashedPassword),
			Role:       models.RoleCustomer,
			IsVerified: true,
		}
		if err := db.DB.Create(&user).Error; err != nil {
			log.Printf("Error provisioning social user: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Failed to provision account",
			})
		}
	} else if !user.IsVerified {
		db.DB.Model(&user).UpdateColumn("is_verified", true)
		user.IsVerified = true
	}
	return respondWithToken(c, &user)
}

// verifyCode maps OTP service failures to an HTTP status and message.
// A zero status means the code was accepted.
func verifyCode(email, code string) (int, string) {
	err := OTP.VerifyOTP(email, code)
	switch {
	case err == nil:
		return 0, ""
	case errors.Is(err, services.ErrInvalidCode):
		return fiber.StatusUnauthorized, services.ErrInvalidCode.Error()
	case errors.Is(err, services.ErrExpiredCode):
		return fiber.StatusUnauthorized, services.ErrExpiredCode.Error()
	case errors.Is(err, services.ErrValidation):
		return fiber.StatusBadRequest, "Missing required fields"
	default:
		log.Printf("Error verifying OTP for %s: %v", email, err)
		return fiber.StatusInternalServerError, "Failed to verify code"
	}
}

// CheckUser reports whether an account exists for the given email
func CheckUser(c *fiber.Ctx) error {
	email := strings.ToLower(strings.TrimSpace(c.Query("email")))
	if email == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Missing required fields",
		})
	}

	var user models.User
	if db.DB.Where("email = ?", email).First(&user).RowsAffected == 0 {
		return c.JSON(fiber.Map{"exists": false})
	}
	return c.JSON(fiber.Map{"exists": true, "user_id": user.ID})
}

// Login handles password authentication
func Login(c *fiber.Ctx) error {
	type LoginInput struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	input := new(LoginInput)
	if err := c.BodyParser(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Cannot parse JSON",
		})
	}

	var user models.User
	if db.DB.Where("email = ?", strings.ToLower(input.Email)).First(&user).RowsAffected == 0 {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Invalid credentials",
		})
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(input.Password)); err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Invalid credentials",
		})
	}

	return respondWithToken(c, &user)
}

// respondWithToken issues the access and refresh tokens for user and
// writes the auth response.
func respondWithToken(c *fiber.Ctx, user *models.User) error {
	secret := jwtSecret()

	claims := jwt.MapClaims{
		"id":    user.ID,
		"email": user.Email,
		"role":  user.Role,
		"exp":   time.Now().Add(time.Hour * 24).Unix(), // 24 hour expiration
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(secret))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to generate token",
		})
	}

	refreshClaims := jwt.MapClaims{
		"id":    user.ID,
		"email": user.Email,
		"exp":   time.Now().Add(time.Hour * 24 * 7).Unix(), // 7 day expiration
	}
	refreshToken := jwt.NewWithClaims(jwt.SigningMethodHS256, refreshClaims)
	refreshTokenString, err := refreshToken.SignedString([]byte(secret))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to generate refresh token",
		})
	}

	return c.JSON(fiber.Map{
		"id":            user.ID,
		"first_name":    user.FirstName,
		"last_name":     user.LastName,
		"email":         user.Email,
		"role":          user.Role,
		"token":         tokenString,
		"refresh_token": refreshTokenString,
	})
}

func jwtSecret() string {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "solid_secret_key" // Replace with secure key in production
	}
	return secret
}

// GetUserProfile returns the current user's profile
func GetUserProfile(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	var user models.User
	if err := db.DB.First(&user, userID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "User not found",
		})
	}

	// Don't send password
	user.Password = ""
	return c.JSON(user)
}

// UpdateProfile updates the caller's profile fields. Agent-only fields are
// ignored for non-agents.
func UpdateProfile(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	var user models.User
	if err := db.DB.First(&user, userID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "User not found",
		})
	}

	req := new(VerifyOTPRequest)
	if err := c.BodyParser(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Cannot parse JSON",
		})
	}

	if req.FirstName != "" {
		user.FirstName = req.FirstName
	}
	if req.LastName != "" {
		user.LastName = req.LastName
	}
	if user.Role == models.RoleAgent {
		if req.LicenseNumber != "" {
			user.LicenseNumber = req.LicenseNumber
		}
		if req.Agency != "" {
			user.Agency = req.Agency
		}
		if req.Experience != 0 {
			user.Experience = req.Experience
		}
		if req.Region != "" {
			user.Region = req.Region
		}
		if len(req.Specialties) > 0 {
			user.Specialties = nil
			for _, tag := range req.Specialties {
				if models.IsAgentSpecialty(tag) {
					user.Specialties = append(user.Specialties, tag)
				}
			}
		}
	}

	if err := db.DB.Save(&user).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to update profile",
		})
	}

	user.Password = ""
	return c.JSON(user)
}

// Logout doesn't actually invalidate the token as JWTs are stateless
// For a more secure implementation, you'd need to use a token blacklist
func Logout(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"message": "Successfully logged out",
	})
}

// RefreshToken generates a new access token using a refresh token
func RefreshToken(c *fiber.Ctx) error {
	type RefreshRequest struct {
		RefreshToken string `json:"refresh_token"`
	}

	refreshRequest := new(RefreshRequest)
	if err := c.BodyParser(refreshRequest); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Cannot parse JSON",
		})
	}

	secret := jwtSecret()
	token, err := jwt.Parse(refreshRequest.RefreshToken, func(token *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Invalid refresh token",
		})
	}

	claims := token.Claims.(jwt.MapClaims)

	// Re-read the user so the fresh token carries the current role.
	var user models.User
	if err := db.DB.First(&user, uint(claims["id"].(float64))).Error; err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Invalid refresh token",
		})
	}

	newClaims := jwt.MapClaims{
		"id":    user.ID,
		"email": user.Email,
		"role":  user.Role,
		"exp":   time.Now().Add(time.Hour * 24).Unix(),
	}
	newToken := jwt.NewWithClaims(jwt.SigningMethodHS256, newClaims)
	tokenString, err := newToken.SignedString([]byte(secret))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to generate token",
		})
	}

	return c.JSON(fiber.Map{
		"token": tokenString,
	})
}
