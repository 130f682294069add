package relay

// Reply keyboard labels. Pressing one sends its label as text.
const (
	BtnSendMessage = "📧 Send message"
	BtnPremium     = "💎 Premium features (promo)"
	BtnModerator   = "😊 About moderator work"
	BtnRules       = "🟥 Rules"
	BtnSend        = "✅ Send"
	BtnCancel      = "❌ Cancel"
	BtnCancelInput = "❌ Cancel input"
)

const (
	msgWelcome = "Hi! 👋 This bot lets you send an anonymous message to another user 🤔"

	msgRules = `📜 Rules:
1. No spam
2. No insults
3. No advertising
4. No 18+ content
5. Breaking the rules leads to a ban`

	msgPremium = `💎 Premium features:
- Sending media files
- Scheduled messages
- Extended statistics
- Priority support`

	msgModerator = "We are not looking for moderators right now ❌"

	msgAskRecipient = "Who do you want to send an anonymous message to?\n" +
		"Enter the recipient's @username\n\n" +
		"❗ The recipient must have started this bot, otherwise the message cannot be delivered"
	msgBadRecipient = "❌ Please enter a valid username starting with @\nFor example: @username"
	msgAskTitle     = "Enter the message title"
	msgAskBody      = "Enter the message text"
	msgEmptyInput   = "❌ The text must not be empty"

	msgCancelled      = "Input cancelled. Choose an action:"
	msgSendCancelled  = "Sending cancelled"
	msgDelivered      = "✅ Message delivered!"
	msgBlocked        = "❌ The user has blocked the bot. The message cannot be delivered."
	msgDeliveryFailed = "❌ Failed to send the message: %s"
	msgDraftBroken    = "❌ Something went wrong with your draft. Please start over."
	msgIdleHint       = "Use the menu buttons below or send /start"

	msgNotFound = "❌ User %s not found!\n\n" +
		"To receive a message the recipient must:\n" +
		"1. Find the bot: @%s\n" +
		"2. Start it with /start\n" +
		"3. Then try sending again\n\n" +
		"You can forward the next message to the recipient:"
	msgInvite = "👋 Hi! To receive an anonymous message:\n" +
		"1. Open the bot @%s\n" +
		"2. Press START or send /start"

	msgPreview = "Check your message:\n\n📧 To: %s\n📑 Title: %s\n💬 Message: %s"

	msgIncoming = "📨 You have received an anonymous message!\n\n" +
		"📑 Title: %s\n" +
		"💬 Message: %s\n" +
		"📅 Date: %s\n\n" +
		"Send an anonymous message: @%s"

	msgAdminNotice = "📧 New anonymous message\n" +
		"👤 Sender: %d\n" +
		"📨 Recipient: %s\n" +
		"📑 Title: %s\n" +
		"🔖 Ref: %s"

	msgStats = "👥 Registered users: %d\n💬 Active sessions: %d"

	// dateLayout is dd.mm.yyyy HH:MM.
	dateLayout = "02.01.2006 15:04"
)
