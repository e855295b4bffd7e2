// Copyright (c) 2026 Anirate. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package migrations embeds the versioned SQL schema for the rating and identity tables.
package migrations

import "embed"

// FS holds every golang-migrate file in this directory.
//
//go:embed *.sql
var FS embed.FS
