package main

import (
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/publicvoting/internal/config"
	"github.com/vncsmyrnk/publicvoting/internal/core/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	user := flag.String("user", "", "organizer user ID (uuid)")
	email := flag.String("email", "", "organizer email address")
	ttl := flag.Duration("ttl", 15*time.Minute, "token lifetime")
	flag.Parse()

	userID, err := uuid.Parse(*user)
	if err != nil {
		log.Fatalf("invalid -user: %v", err)
	}

	auth, err := services.NewOrganizerAuth(cfg.JWTSecret)
	if err != nil {
		log.Fatal(err)
	}

	token, err := auth.IssueAccessToken(userID, *email, *ttl)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(token)
}
