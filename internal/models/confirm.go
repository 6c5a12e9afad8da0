package models

// ConfirmFunc asks the user a yes/no question
type ConfirmFunc func(prompt string) bool

// AlwaysConfirm answers yes without asking
func AlwaysConfirm(string) bool { return true }

// NeverConfirm answers no without asking
func NeverConfirm(string) bool { return false }
