// SPDX-License-Identifier: MPL-2.0

package manifest

import "fmt"

// Package types, in the precedence order used to classify a manifest.
const (
	TypeUnknown Type = iota
	TypeExtension
	TypeTheme
	TypeUserScript
	TypeHostedApp
	TypePackagedApp
	TypePlatformApp
)

// Type is the kind of package a manifest describes.
type Type int

// String returns the snake-case name of the type.
func (t Type) String() string {
	switch t {
	case TypeExtension:
		return "extension"
	case TypeTheme:
		return "theme"
	case TypeUserScript:
		return "user_script"
	case TypeHostedApp:
		return "hosted_app"
	case TypePackagedApp:
		return "packaged_app"
	case TypePlatformApp:
		return "platform_app"
	default:
		return fmt.Sprintf("unknown(%d)", int(t))
	}
}

// IsApp reports whether t is one of the app types.
func (t Type) IsApp() bool {
	return t == TypeHostedApp || t == TypePackagedApp || t == TypePlatformApp
}
