// Package models holds the GORM row types for users, accounts, transactions
// and budgets. The tables themselves are created by the SQL files in
// migrations/; the gorm tags here only have to agree with them, plus let
// the SQLite-backed tests AutoMigrate an equivalent schema.
//
// Each model converts to and from its domain aggregate with ToDomain and a
// *ModelFromDomain constructor, so domain packages never import gorm.
package models
