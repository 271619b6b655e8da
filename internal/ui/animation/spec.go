package animation

// Tip is one eye-health card shown on the break overlay.
type Tip struct {
	Title       string
	Description string
}

// DefaultTips returns the cards rotated during a break.
func DefaultTips() []Tip {
	return []Tip{
		{Title: "20-20-20 Rule", Description: "Every 20 minutes, look at something 20 feet away for at least 20 seconds."},
		{Title: "Blink Frequently", Description: "Blinking helps moisten your eyes and reduce dryness from screen time."},
		{Title: "Adjust Your Display", Description: "Keep your screen 20-24 inches away and slightly below eye level."},
		{Title: "Use Proper Lighting", Description: "Avoid glare and ensure your room is well-lit to reduce eye strain."},
		{Title: "Stay Hydrated", Description: "Drink plenty of water to keep your eyes and body hydrated."},
		{Title: "Take Regular Breaks", Description: "Give your eyes a rest by looking away from screens periodically."},
	}
}
