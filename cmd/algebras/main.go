package main

import "github.com/joho/godotenv"

func main() {
	// A .env file is optional; the keychain and flags take precedence.
	_ = godotenv.Load()
	execute()
}
