package intake

// Canned assistant text that does not go through the LLM. Kept in one file so
// it is easy to tweak without touching the turn logic.
const (
	// greetingMessage opens every new session, in the vitals agent's voice.
	greetingMessage = "Hello! I'm here to help get your visit started. " +
		"Before we talk about what brings you in, could you share any recent measurements you have — " +
		"temperature, weight, or blood pressure — and briefly describe how you're feeling right now?"

	// fallbackReply is used when reply generation fails; the turn still
	// completes and the record keeps whatever was extracted.
	fallbackReply = "Thank you for sharing that. Could you tell me a little more about how you're feeling?"
)
