package utils

import "time"

// General Configuration
const (
	BotColor     = 0x5865F2
	QuoteColor   = 0x0099FF
	LevelColor   = 0x00AE86
	ReportColor  = 0xE67E22
	ProtestColor = 0x9B59B6
	WinColor     = 0x00ff00
	PushColor    = 0xffff00
	LossColor    = 0xff0000
)

// Economy & XP
const (
	StartingChips    = 100
	XPCooldown       = time.Minute
	MinXPPerMessage  = 1
	MaxXPPerMessage  = 25
	XPPerLevelFactor = 50
)

// Flow step windows
const (
	SelectTimeout      = 120 * time.Second
	ModalTimeout       = 60 * time.Second
	ReportModalTimeout = 600 * time.Second
	ProtestWindow      = 72 * time.Hour
	ActionTimeout      = 60 * time.Second
)

// Moderation
const (
	MutedRoleName       = "Muted"
	MaxTimeoutDuration  = 28 * 24 * time.Hour
	MuteNoticeLifetime  = 3 * time.Second
	ThreadArchiveMinute = 4320
	MaxFetchBatch       = 100
)

// Blackjack Game Constants
const (
	DealerStandValue = 17
	BlackjackPayout  = 1.5
	BlackjackTarget  = 21
)

// UI Messages
const (
	NotYourInteractionMessage = "This isn't your interaction."
	NotYourGameMessage        = "❌ This is not your game!"
	ExpiredComponentMessage   = "This interaction has expired. Run the command again."
	GenericFailureMessage     = "Something went wrong while processing that. Please try again."
	ConversationTimeout       = "Conversation building timed out. Use the command again to start over."
	GameTimeoutMessage        = "You did not respond in time. Your game has timed out and you have forfeited your bet of %d chips."
)
