package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds all configuration for our application
type Config struct {
	Port                      string
	Origin                    string
	Environment               string
	JWTSecret                 string
	JWTRefreshSecret          string
	Database                  DatabaseConfig
	Ashram                    AshramConfig
	Queue                     QueueConfig
	JWTExpirationMinutes      int
	JWTRefreshExpirationHours int
	AppURL                    string
}

// DatabaseConfig holds database connection details
type DatabaseConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	Name     string
	DSN      string
}

// AshramConfig holds the reference location used by the check-in geofence.
type AshramConfig struct {
	Name               string
	Latitude           float64
	Longitude          float64
	CheckInRadiusM     float64
	CheckInEarlyMin    int
	CheckInLateMin     int
}

// QueueConfig holds tunables for the consultation queue.
type QueueConfig struct {
	AvgConsultationMinutes int
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	// Load database configuration
	dbConfig := DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     getEnv("DB_PORT", "3306"),
		Username: getEnv("DB_USERNAME", "root"),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", "ashram"),
	}

	// Build DSN (Data Source Name) for MySQL connection
	dbConfig.DSN = fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		dbConfig.Username, dbConfig.Password, dbConfig.Host, dbConfig.Port, dbConfig.Name)

	jwtExpMinutes, err := strconv.Atoi(getEnv("JWT_EXPIRATION_MINUTES", "15"))
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_EXPIRATION_MINUTES: %w", err)
	}

	jwtRefreshExpHours, err := strconv.Atoi(getEnv("JWT_REFRESH_EXPIRATION_HOURS", "168")) // 7 days
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_REFRESH_EXPIRATION_HOURS: %w", err)
	}

	ashramLat, err := strconv.ParseFloat(getEnv("ASHRAM_LATITUDE", "19.0760"), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid ASHRAM_LATITUDE: %w", err)
	}
	ashramLng, err := strconv.ParseFloat(getEnv("ASHRAM_LONGITUDE", "72.8777"), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid ASHRAM_LONGITUDE: %w", err)
	}
	checkInRadius, err := strconv.ParseFloat(getEnv("CHECKIN_RADIUS_METERS", "100"), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid CHECKIN_RADIUS_METERS: %w", err)
	}
	checkInEarly, err := strconv.Atoi(getEnv("CHECKIN_EARLY_MINUTES", "20"))
	if err != nil {
		return nil, fmt.Errorf("invalid CHECKIN_EARLY_MINUTES: %w", err)
	}
	checkInLate, err := strconv.Atoi(getEnv("CHECKIN_LATE_MINUTES", "15"))
	if err != nil {
		return nil, fmt.Errorf("invalid CHECKIN_LATE_MINUTES: %w", err)
	}

	// The source system disagreed with itself on the average consultation
	// length (15 vs 30). One configurable value, default 15.
	avgConsultation, err := strconv.Atoi(getEnv("AVG_CONSULTATION_MINUTES", "15"))
	if err != nil {
		return nil, fmt.Errorf("invalid AVG_CONSULTATION_MINUTES: %w", err)
	}

	// Return complete configuration
	return &Config{
		Port:             getEnv("PORT", "3001"),
		Origin:           getEnv("ORIGIN", "http://localhost:4200"),
		Environment:      getEnv("APP_ENV", "development"),
		JWTSecret:        getEnv("JWT_SECRET", "default_jwt_secret"),
		JWTRefreshSecret: getEnv("JWT_REFRESH_SECRET", "default_refresh_secret"),
		Database:         dbConfig,
		Ashram: AshramConfig{
			Name:            getEnv("ASHRAM_NAME", "Main Ashram"),
			Latitude:        ashramLat,
			Longitude:       ashramLng,
			CheckInRadiusM:  checkInRadius,
			CheckInEarlyMin: checkInEarly,
			CheckInLateMin:  checkInLate,
		},
		Queue: QueueConfig{
			AvgConsultationMinutes: avgConsultation,
		},
		JWTExpirationMinutes:      jwtExpMinutes,
		JWTRefreshExpirationHours: jwtRefreshExpHours,
		AppURL:                    getEnv("APP_URL", "http://localhost:3001"),
	}, nil
}

// Helper function to get environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
