// Package branding holds the product name shared by every command.
package branding

// AppName is the user-facing product name.
const AppName = "CBTA"
