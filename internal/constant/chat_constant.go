package constant

const (
	ChatMessageRoleUser      = "user"
	ChatMessageRoleAssistant = "assistant"

	DefaultChatTitle = "New conversation"

	// Stored as the assistant turn when the provider call fails or comes back blank.
	AssistantReplyFallback = "I apologize, but I encountered an issue processing your request. Please try again."
	// Stored when no provider is configured at all.
	AssistantReplyUnavailable = "I'm sorry, I couldn't process your request at this time."

	ChatTitlePromptV1 = `Based on the following user message, generate a short, concise title (3-6 words only). Return ONLY the title, no quotes or additional text.

User message: "%s"`

	ChatReplyPromptV1 = `Please respond to the following message in a helpful and concise way: "%s"`

	// Titles shorter than this are treated as a failed generation.
	MinChatTitleLength = 2
)
