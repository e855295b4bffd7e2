// Copyright (c) 2026 Anirate. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Command anirate is a terminal client for the Anirate API.
//
// It browses the watch list with the same filters and sorts as the web UI,
// and lets an administrator sign in and rate entries.
//
// Settings come from flags, then ANIRATE_URL and ANIRATE_TOKEN, which may
// also be set in a local .env file.
package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintln(os.Stderr, "anirate: failed to read .env:", err)
		os.Exit(1)
	}

	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
