// SPDX-License-Identifier: AGPL-3.0-or-later

// Package ui holds the colored terminal output helpers shared by commands.
package ui

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
)

var (
	successColor = color.New(color.FgGreen, color.Bold)
	errorColor   = color.New(color.FgRed, color.Bold)
	warnColor    = color.New(color.FgYellow, color.Bold)
	infoColor    = color.New(color.FgCyan)
	titleColor   = color.New(color.FgMagenta, color.Bold)
)

// Success prints a green success line.
func Success(format string, args ...any) {
	successColor.Printf("✓ "+format+"\n", args...)
}

// Error prints a red error line.
func Error(format string, args ...any) {
	errorColor.Printf("✗ "+format+"\n", args...)
}

// Warn prints a yellow warning line.
func Warn(format string, args ...any) {
	warnColor.Printf("! "+format+"\n", args...)
}

// Info prints a cyan informational line.
func Info(format string, args ...any) {
	infoColor.Printf(format+"\n", args...)
}

// Title prints a section title.
func Title(format string, args ...any) {
	titleColor.Printf(format+"\n", args...)
}

// Separator prints a horizontal rule.
func Separator() {
	fmt.Println(strings.Repeat("─", 72))
}
