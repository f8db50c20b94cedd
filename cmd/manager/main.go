// Command manager is the admin CLI: add-user and delete-user.
package main

import (
	"context"
	"crypto/rand"
	"fmt"
	"os"

	"github.com/roomrelay/server/internal/auth"
	"github.com/roomrelay/server/internal/config"
	"github.com/roomrelay/server/internal/store"
	"github.com/roomrelay/server/internal/store/postgres"
	"github.com/roomrelay/server/internal/types"
)

const passwordAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
const generatedPasswordLength = 7

func main() {
	if len(os.Args) < 3 {
		usage()
	}

	cfg, err := config.Load()
	if err != nil {
		fail(err)
	}

	db, err := postgres.Open(cfg.DatabaseURL)
	if err != nil {
		fail(err)
	}
	defer db.Close()

	users := db.Users()

	switch os.Args[1] {
	case "add-user":
		if err := addUser(users, os.Args[2]); err != nil {
			fail(err)
		}
	case "delete-user":
		if err := deleteUser(users, os.Args[2]); err != nil {
			fail(err)
		}
	default:
		usage()
	}
}

func addUser(users store.UserStore, username string) error {
	password, err := generatePassword(generatedPasswordLength)
	if err != nil {
		return err
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}

	user := &types.User{Username: username, PasswordHash: hash}
	if err := users.Insert(context.Background(), user); err != nil {
		return err
	}

	fmt.Printf("User created. Generated password: %s\n", password)
	return nil
}

func deleteUser(users store.UserStore, username string) error {
	user, err := users.ByUsername(context.Background(), username)
	if err != nil {
		return err
	}
	if user == nil {
		fmt.Println("User not found")
		return nil
	}

	if err := users.Delete(context.Background(), user); err != nil {
		return err
	}

	fmt.Println("User deleted")
	return nil
}

func generatePassword(length int) (string, error) {
	buf := make([]byte, length)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	out := make([]byte, length)
	for i, b := range buf {
		out[i] = passwordAlphabet[int(b)%len(passwordAlphabet)]
	}
	return string(out), nil
}

func usage() {
	fmt.Println("usage: manager add-user <username> | delete-user <username>")
	os.Exit(1)
}

func fail(err error) {
	fmt.Printf("Error occurred: %s\n", err)
	os.Exit(1)
}
