// SPDX-License-Identifier: MPL-2.0

package bitbar

import (
	_ "embed"
)

var (
	//go:embed images/battery.png
	batteryImage []byte
	//go:embed images/battery-charging.png
	batteryChargingImage []byte
	//go:embed images/discord.png
	discordLogo []byte
	//go:embed images/twitch.png
	twitchLogo []byte
)

// Icons are the template images the plugins show in the menu bar.
type Icons struct {
	Battery         []byte
	BatteryCharging []byte
	Discord         []byte
	Twitch          []byte
}

// DefaultIcons returns the built-in images.
func DefaultIcons() Icons {
	return Icons{
		Battery:         batteryImage,
		BatteryCharging: batteryChargingImage,
		Discord:         discordLogo,
		Twitch:          twitchLogo,
	}
}
