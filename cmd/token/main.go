// Command token prints a bearer token for POST /run, signed with TRIGGER_JWT_SECRET.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	jwtmw "stock_ingest/internal/platform/jwt"
)

func main() {
	subject := flag.String("subject", "scheduler", "caller identity stored in the sub claim")
	ttl := flag.Duration("ttl", 24*time.Hour, "token lifetime")
	flag.Parse()

	_ = godotenv.Load()

	secret := os.Getenv(jwtmw.EnvKeyTriggerSecret)
	if secret == "" {
		fmt.Fprintf(os.Stderr, "%s is not set\n", jwtmw.EnvKeyTriggerSecret)
		os.Exit(1)
	}

	token, err := jwtmw.NewGenerator(secret, *ttl).GenerateToken(*subject)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	fmt.Println(token)
}
