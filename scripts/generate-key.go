// Package main is a development utility for generating the server's JWT signing
// secret. It prints a 32-byte random secret as hex plus a ready-to-paste export
// line for DDP_JWT_SECRET, so developers can bootstrap a local environment
// without reaching for openssl. Production deployments should provision the
// secret through their secret manager instead of shell history.
package main

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log"
)

func main() {
	secret := make([]byte, 32)
	if _, err := rand.Read(secret); err != nil {
		log.Fatal(err)
	}

	encoded := hex.EncodeToString(secret)

	fmt.Println("Generated JWT signing secret:")
	fmt.Println()
	fmt.Printf("  %s\n", encoded)
	fmt.Println()
	fmt.Println("Export it before starting the server:")
	fmt.Println()
	fmt.Printf("  export DDP_JWT_SECRET=%s\n", encoded)
}
