// Generates the argon2id hash expected in PIN_HASH from a PIN given
// on the command line.
package main

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/alexedwards/argon2id"
)

func main() {
	if len(os.Args) != 2 || strings.TrimSpace(os.Args[1]) == "" {
		log.Fatal("usage: pinhash <pin>")
	}

	hash, err := argon2id.CreateHash(strings.TrimSpace(os.Args[1]), argon2id.DefaultParams)
	if err != nil {
		log.Fatalf("Failed to hash PIN: %v", err)
	}
	fmt.Println(hash)
}
