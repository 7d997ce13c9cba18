package configs

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	ServerPort string
	RedisAddr  string
	JWTSecret  string

	JudgeURL     string
	JudgeAPIKey  string
	JudgeAPIHost string

	NumberOfWorkers int
	AllowedOrigins  []string

	// CountFirstSolveSubmission controls whether a first-time solve also
	// increments total submission counters. The reference behavior only
	// counts repeat solves.
	CountFirstSolveSubmission bool
}

func LoadConfig() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	numWorkerInt, _ := strconv.Atoi(os.Getenv("NUM_OF_WORKERS"))
	if numWorkerInt <= 0 {
		numWorkerInt = 2
	}

	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		redisAddr = "localhost:6379"
	}

	judgeURL := os.Getenv("JUDGE_URL")
	if judgeURL == "" {
		judgeURL = "https://judge0-ce.p.rapidapi.com"
	}

	var origins []string
	for _, origin := range strings.Split(os.Getenv("ALLOWED_ORIGINS"), ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			origins = append(origins, origin)
		}
	}
	if len(origins) == 0 {
		origins = []string{"http://localhost:5173", "http://localhost:3000"}
	}

	countFirstSolve, _ := strconv.ParseBool(os.Getenv("COUNT_FIRST_SOLVE_SUBMISSION"))

	return &Config{
		DBHost:                    os.Getenv("DB_HOST"),
		DBPort:                    os.Getenv("DB_PORT"),
		DBUser:                    os.Getenv("DB_USER"),
		DBPassword:                os.Getenv("DB_PASSWORD"),
		DBName:                    os.Getenv("DB_NAME"),
		ServerPort:                os.Getenv("SERVER_PORT"),
		RedisAddr:                 redisAddr,
		JWTSecret:                 os.Getenv("JWT_SECRET"),
		JudgeURL:                  judgeURL,
		JudgeAPIKey:               os.Getenv("JUDGE_API_KEY"),
		JudgeAPIHost:              os.Getenv("JUDGE_API_HOST"),
		NumberOfWorkers:           numWorkerInt,
		AllowedOrigins:            origins,
		CountFirstSolveSubmission: countFirstSolve,
	}
}
