package currency

const (
	msgStart     = "👋 Hi! I convert currencies.\n\nChoose the base currency (convert FROM):"
	msgAskAmount = "Base currency: %s\nNow enter the amount to convert:"
	msgBadAmount = "❌ Please enter a valid positive number.\nUse a dot or a comma as the decimal separator."
	msgAskTarget = "Amount: %s %s\nChoose the target currency (convert TO):"
	msgResult    = "💰 Conversion result:\n\n%s %s = %s %s\n\nRate: 1 %s = %s %s\n\nSend /start for a new conversion"
	msgFailed    = "❌ Conversion failed. Send /start to try again."
	msgHint      = "Send /start to begin a conversion or /help for instructions."

	msgHelp = "🔍 How to use the bot:\n\n" +
		"1. Send /start to begin a conversion\n" +
		"2. Choose the base currency (convert FROM)\n" +
		"3. Enter the amount\n" +
		"4. Choose the target currency (convert TO)\n" +
		"5. Get the result\n\n" +
		"Supported currencies: %s"
)
