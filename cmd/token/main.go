// Command token prints an access token signed with JWT_SECRET_KEY, for
// wall screens and scripts that talk to the planner API.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/guccio85/proximasuite-sub000/internal/config"
	"github.com/guccio85/proximasuite-sub000/internal/pkg/jwt"
)

func main() {
	subject := flag.String("sub", "planner", "token subject")
	admin := flag.Bool("admin", false, "grant admin privileges")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error loading config:", err)
		os.Exit(1)
	}

	token, expiresAt, err := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration).GenerateAccessToken(*subject, *admin)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error generating token:", err)
		os.Exit(1)
	}

	fmt.Println(token)
	fmt.Fprintln(os.Stderr, "expires at", time.Unix(expiresAt, 0).Format(time.RFC3339))
}
