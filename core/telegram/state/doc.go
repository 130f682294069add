// Package state provides typed per-user conversation sessions and an explicit
// transition-table state machine for Telegram bots.
//
// Machines work on transport-neutral Events and Replies; telebot.go adapts
// them to telebot contexts. Domain packages never touch telebot types.
package state
