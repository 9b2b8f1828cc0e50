// Package db embeds the storefront database schema.
package db

import _ "embed"

// Schema contains the DDL for the catalog, cart, order, and API key tables.
//
//go:embed migrations/001_schema.sql
var Schema string
