// Command issue-token mints a bearer token for an internal client of the
// transfer service. The secret is read from JWT_SECRET.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/Tanisha-99/internal-transfer-system/shared/middleware"
	"github.com/joho/godotenv"
)

func main() {
	clientID := flag.String("client", "", "client id to embed in the token")
	ttl := flag.Duration("ttl", 24*time.Hour, "token lifetime")
	flag.Parse()

	_ = godotenv.Load()

	if *clientID == "" {
		flag.Usage()
		os.Exit(2)
	}

	token, err := middleware.IssueToken([]byte(os.Getenv("JWT_SECRET")), *clientID, *ttl)
	if err != nil {
		log.Fatalf("Failed to issue token: %v", err)
	}
	fmt.Println(token)
}
