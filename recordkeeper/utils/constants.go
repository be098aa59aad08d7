package utils

const (
	ErrorColor   = 0xFF0000
	SuccessColor = 0x00FF00
	InfoColor    = 0x0099FF
	WarningColor = 0xFFAA00

	// Discord caps message content at 2000 characters; chunked listings stay
	// under this with room for code fences.
	MaxMessageLen = 1900
)
