// Command mktoken mints a signed bearer token for local development and
// manual API testing.
package main

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"

	"taskspace/internal/auth"
)

func main() {
	_ = godotenv.Load()

	secret := pflag.String("secret", os.Getenv("TASKSPACE_AUTH_SECRET"), "signing secret")
	uid := pflag.String("uid", "", "user identifier (required)")
	email := pflag.String("email", "", "user email")
	name := pflag.String("name", "", "display name")
	picture := pflag.String("picture", "", "avatar URL")
	ttl := pflag.Duration("ttl", 24*time.Hour, "token validity")
	pflag.Parse()

	if *secret == "" {
		log.Fatal("a signing secret is required (--secret or TASKSPACE_AUTH_SECRET)")
	}
	if *uid == "" {
		log.Fatal("--uid is required")
	}

	verifier := auth.NewHMACVerifier(*secret)
	token, err := verifier.Sign(auth.Identity{
		UID:     *uid,
		Email:   *email,
		Name:    *name,
		Picture: *picture,
	}, *ttl)
	if err != nil {
		log.Fatalf("signing token: %v", err)
	}

	fmt.Println(token)
}
