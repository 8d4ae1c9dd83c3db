package handler

const (
	msgWelcome = "🎓 Welcome to Engineering Resources!\n\nPlease select your path:"

	msgGreeting = "🎓 Welcome to the Engineering bot, %s! 👋\n\n" +
		"This bot gives you access to engineering course materials.\n\n" +
		"Commands:\n" +
		"• /ing - main resources menu\n" +
		"• /subscribe - receive announcements\n" +
		"• /feedback - send feedback to the team\n" +
		"• /send - share a file with other students\n" +
		"• /about - about this bot\n" +
		"• /help - help"

	msgHelp = "🤖 Engineering Bot Help\n\n" +
		"Commands:\n" +
		"/ing - open the resources menu and choose a path\n" +
		"/help - show this message\n" +
		"/feedback - send feedback or suggestions\n" +
		"/send - share files with other students\n" +
		"/subscribe, /unsubscribe - manage announcements\n" +
		"/cancel - abort the current action\n\n" +
		"Paths:\n" +
		"📚 Tronc commun - common courses of semesters 1 to 4\n" +
		"🎯 Spécialité - specializations and advanced courses\n\n" +
		"Navigation:\n" +
		"• Use the inline buttons to move between paths, universities, semesters, modules and resource types\n" +
		"• Use the back buttons to return to previous menus"

	msgAbout = "🤖 Engineering resources bot\n\n" +
		"🔹 /start greets you.\n" +
		"🔹 /ing opens the main menu with courses, tutorials, exams, books and more.\n" +
		"🔹 /send shares a file with other students through a dedicated channel.\n" +
		"🔹 /feedback sends your remarks or problem reports to the bot team."

	msgTroncCommun     = "📚 Tronc commun\n\nCommon courses of semesters 1 to 4\n\nPlease select a university:"
	msgSpecialite      = "🎯 Spécialité\n\nSpecializations and advanced courses\n\nPlease select a specialization:"
	msgScopeSemesters  = "🏫 %s\n\nPlease select a semester:"
	msgSpecSemesters   = "⚡ %s\n\nPlease select a semester:"
	msgSemesterModules = "📚 %s Modules:\n\nSelect a module:"
	msgModuleResources = "📖 %s\n\nSelect resource type:"
	msgNoFiles         = "%s %s for %s\n\n❌ No files available for this resource type yet.\n\n💡 Files will be added soon!"
	msgFilesAvailable  = "%s %s for %s\n\n📁 Available files:"
	msgNothingHere     = "📭 Nothing is available here yet."

	msgFileSent      = "✅ File \"%s\" sent successfully!"
	msgFileNotFound  = "❌ File \"%s\" not found. Please contact the bot administrator."
	msgFileError     = "❌ Error sending file \"%s\". Please try again later."
	msgNoDescription = "No description available"

	msgUnknownCommand = "❌ Unknown command. Please try again."
	msgError          = "❌ An error occurred. Please try again."

	msgSubscribed        = "🔔 You are now subscribed to announcements."
	msgAlreadySubscribed = "ℹ️ You are already subscribed."
	msgUnsubscribed      = "🔕 You will no longer receive announcements."
	msgNotSubscribed     = "ℹ️ You are not subscribed."
	msgSubscribeBlocked  = "🚫 Announcements are disabled for your account."

	msgFeedbackPrompt   = "📢 Please share your feedback, suggestions, or report any issues:\n\n(Your feedback will be sent to the bot owner)"
	msgFeedbackSent     = "✅ Thank you for your feedback! It has been sent to our feedback channel."
	msgFeedbackFailed   = "❌ Sorry, there was an error sending your feedback. Please try again later."
	msgFeedbackForward  = "📢 Feedback from %s (%s)  Id : (%d)\nMessage: %s"
	msgSendPrompt       = "Please insert the files:"
	msgSendNamePrompt   = "Please enter the name of the file:"
	msgSendExpectedFile = "📎 Please send the file as a document, or /cancel."
	msgFileShared       = "✅ Thank you! Your file has been sent to our file sharing channel."
	msgFileShareFailed  = "❌ Sorry, there was an error sending your file. Please try again later."
	msgFileForward      = "📢 File from %s (%s)  Id : (%d)\nFile: %s"
	msgCancelled        = "❎ Cancelled."
	msgInputRejected    = "❌ %s. Please try again, or /cancel."

	msgRefreshing     = "🔄 Regenerating file mapping..."
	msgRefreshed      = "✅ File mapping refreshed successfully!\n\n📊 Found %d files across %d scopes."
	msgRefreshFailed  = "❌ Error refreshing file mapping. Check the logs for details."
	msgBroadcastUsage = "Usage: %s <message>\n\nTo attach media, send a photo, video, audio or document first."
	msgMediaStashed   = "📎 %s saved. It will be attached to your next broadcast."
	msgBroadcastStart = "📤 Sending broadcast to %s..."
	msgRateLimited    = "⏳ Rate limit reached. Please wait before sending another broadcast."
	msgInvalidMessage = "❌ Broadcast rejected: %s"
	msgBlockUsage     = "Usage: %s <user id>"
	msgUserBlocked    = "🚫 User %d blocked."
	msgUserUnblocked  = "✅ User %d unblocked."
	msgUserUnknown    = "❓ User %d is not registered."
	msgUsersUsage     = "Usage: /users [all|subscribers|active|blocked]"
)
