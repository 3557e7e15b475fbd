package usecase

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectCategory(t *testing.T) {
	tests := []struct {
		name  string
		title string
		want  string
	}{
		{"laptop backpack beats laptop", "HP Laptop Backpack 15.6 inch Water Resistant", "laptop backpack"},
		{"laptop table beats laptop", "Portronics Adjustable Laptop Table Foldable", "laptop table/desk"},
		{"laptop sleeve is an accessory", "AmazonBasics Laptop Sleeve Case 14 inch", "laptop accessory"},
		{"phone cover is an accessory", "Spigen iPhone 15 Cover Tough Armor", "phone accessory"},
		{"charger", "Ambrane 65W Fast Charger Type-C Cable", "charger/cable"},
		{"phone holder is an accessory", "Mobile Phone Stand Holder Flexible Arm", "phone accessory"},
		{"laptop stand", "Boyata Laptop Stand Ergonomic Riser", "stand/mount"},
		{"monitor mount is not a stand", "Ergotron Monitor Mount LX Desk Arm", "monitor"},
		{"plain laptop", "ASUS VivoBook 15 Laptop Intel Core i5", "laptop"},
		{"macbook counts as laptop", "Apple MacBook Air M2", "laptop"},
		{"keyboard", "Logitech K380 Wireless Keyboard", "keyboard"},
		{"mouse", "Razer DeathAdder Gaming Mouse", "mouse"},
		{"smartphone", "Samsung Galaxy S24 smartphone", "smartphone"},
		{"tablet", "Apple iPad 10th Gen", "tablet"},
		{"speaker", "JBL Flip 6 Bluetooth Speaker", "speaker"},
		{"earbuds", "boAt Airdopes 141 Earbuds", "earbuds"},
		{"smartwatch", "Noise ColorFit Pro 4 Smartwatch", "smartwatch"},
		{"monitor", "LG UltraGear 27 inch Gaming Monitor", "monitor"},
		{"unknown falls back to product", "Prestige Omega Deluxe Cookware Set", "product"},
		{"case-insensitive", "GAMING LAPTOP RTX 4060", "laptop"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectCategory(tt.title))
		})
	}
}

func TestDetectCategory_AccessoryRulesComeFirst(t *testing.T) {
	// The ordering is the contract: a title matching both an accessory rule
	// and a device rule must classify as the accessory.
	assert.Equal(t, "laptop backpack", DetectCategory("Dell laptop backpack"))
	assert.Equal(t, "phone accessory", DetectCategory("iPhone 15 case silicone"))
}

func TestGuessCategoryFromURL(t *testing.T) {
	assert.Equal(t, "laptop", GuessCategoryFromURL("https://www.amazon.in/gaming-laptop/dp/B0ABCDEF12"))
	assert.Equal(t, "smartphone", GuessCategoryFromURL("https://www.flipkart.com/mobile-phone/p/itm123"))
	assert.Equal(t, "product", GuessCategoryFromURL("https://www.amazon.in/dp/B0ABCDEF12"))
}
