// Command tokengen issues bearer tokens for the marketplace's POST actions.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/honeynil/nft-marketplace/internal/infrastructure/auth"
	"github.com/joho/godotenv"
)

func main() {
	userID := flag.Int64("user", 0, "user id to put in the user_id claim")
	ttl := flag.Duration("ttl", time.Hour, "token lifetime")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using default env vars")
	}

	if *userID <= 0 {
		log.Fatal("-user must be a positive id")
	}

	token, err := auth.GenerateJWT(os.Getenv("JWT_SECRET"), *userID, *ttl)
	if err != nil {
		log.Fatalf("Failed to generate token: %v", err)
	}
	fmt.Println(token)
}
