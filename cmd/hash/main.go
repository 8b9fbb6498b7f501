// Package main is a utility for generating the admin password hash. The server
// stores only a bcrypt hash of the admin password — never the raw value — so
// this tool produces the string to put in auth.admin_password_hash (or the
// DDP_AUTH_ADMIN_PASSWORD_HASH environment variable).
//
// Usage: go run ./cmd/hash <password>
package main

import (
	"fmt"
	"os"

	"github.com/decoydrop/decoydrop/internal/auth"
)

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintf(os.Stderr, "usage: %s <password>\n", os.Args[0])
		os.Exit(1)
	}

	hash, err := auth.HashPassword(os.Args[1])
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to hash password: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(hash)
}
