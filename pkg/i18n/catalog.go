package i18n

import "fmt"

// Key names one localized template in the catalog.
type Key string

// Conversation prompts.
const (
	MsgChooseLanguage  Key = "choose_language"
	MsgLanguageSet     Key = "language_set"
	MsgMainMenu        Key = "main_menu"
	MsgSchemeListIntro Key = "scheme_list_intro"
	MsgNoSchemes       Key = "no_schemes"
	MsgSchemeDetails   Key = "scheme_details"
	MsgSchemeDeadline  Key = "scheme_deadline"
	MsgSchemeDocuments Key = "scheme_documents"

	MsgEligibilityIntro Key = "eligibility_intro"
	MsgAskAge           Key = "ask_age"
	MsgAskIncome        Key = "ask_income"
	MsgAskLocation      Key = "ask_location"
	MsgAskOccupation    Key = "ask_occupation"
	MsgAskCustom        Key = "ask_custom"
	MsgEligible         Key = "eligible"
	MsgIneligible       Key = "ineligible"
	MsgAlternatives     Key = "alternatives"

	MsgCriterionMet     Key = "criterion_met"
	MsgCriterionUnmet   Key = "criterion_unmet"
	MsgRequireBetween   Key = "require_between"
	MsgRequireAtLeast   Key = "require_at_least"
	MsgRequireAtMost    Key = "require_at_most"
	MsgRequireOneOf     Key = "require_one_of"
	MsgRequireSatisfied Key = "require_satisfied"

	MsgApplicationIntro Key = "application_intro"
	MsgApplicationStep  Key = "application_step"
	MsgApplicationDone  Key = "application_done"
	MsgSubmitted        Key = "submitted"

	MsgConfirmEnd       Key = "confirm_end"
	MsgConfirmSubmit    Key = "confirm_submit"
	MsgConfirmCancelled Key = "confirm_cancelled"
	MsgGoodbye          Key = "goodbye"

	MsgClarify        Key = "clarify"
	MsgHelp           Key = "help"
	MsgRepeatOrSwitch Key = "repeat_or_switch"
	MsgAmbiguous      Key = "ambiguous"
	MsgStillWorking   Key = "still_working"
	MsgInactivity     Key = "inactivity"
	MsgSummaryPrefix  Key = "summary_prefix"
	MsgSummaryProfile Key = "summary_profile"
)

// Error templates (one per apperror kind).
const (
	MsgErrTransient Key = "err_transient"
	MsgErrNotFound  Key = "err_not_found"
	MsgErrExpired   Key = "err_expired"
	MsgErrConflict  Key = "err_conflict"
	MsgErrInvalid   Key = "err_invalid"
)

// Suggestion chips.
const (
	SugBrowse      Key = "sug_browse"
	SugEligibility Key = "sug_eligibility"
	SugApply       Key = "sug_apply"
	SugHelp        Key = "sug_help"
	SugGoBack      Key = "sug_go_back"
	SugMainMenu    Key = "sug_main_menu"
	SugYes         Key = "sug_yes"
	SugNo          Key = "sug_no"
	SugEndSession  Key = "sug_end_session"
	SugEnglish     Key = "sug_english"
	SugHindi       Key = "sug_hindi"
)

var catalog = map[Key]Text{
	MsgChooseLanguage: {
		English: "Welcome to Sahayak, your guide to government schemes. Please choose a language: English or Hindi.",
		Hindi:   "सहायक में आपका स्वागत है, सरकारी योजनाओं के लिए आपका मार्गदर्शक। कृपया भाषा चुनें: English या हिंदी।",
	},
	MsgLanguageSet: {
		English: "Great, we will continue in English.",
		Hindi:   "ठीक है, हम हिंदी में आगे बढ़ेंगे।",
	},
	MsgMainMenu: {
		English: "What would you like to do? You can browse schemes, check your eligibility, or learn how to apply.",
		Hindi:   "आप क्या करना चाहेंगे? आप योजनाएँ देख सकते हैं, अपनी पात्रता जाँच सकते हैं, या आवेदन करना सीख सकते हैं।",
	},
	MsgSchemeListIntro: {
		English: "Here are some schemes you can explore: %s. Say a scheme name to know more.",
		Hindi:   "ये कुछ योजनाएँ हैं जिन्हें आप देख सकते हैं: %s। अधिक जानने के लिए योजना का नाम बोलें।",
	},
	MsgNoSchemes: {
		English: "I could not find any schemes in that category right now.",
		Hindi:   "मुझे अभी उस श्रेणी में कोई योजना नहीं मिली।",
	},
	MsgSchemeDetails: {
		English: "%s: %s",
		Hindi:   "%s: %s",
	},
	MsgSchemeDeadline: {
		English: "The application deadline is %s.",
		Hindi:   "आवेदन की अंतिम तिथि %s है।",
	},
	MsgSchemeDocuments: {
		English: "You will need these documents: %s.",
		Hindi:   "आपको ये दस्तावेज़ चाहिए होंगे: %s।",
	},
	MsgEligibilityIntro: {
		English: "Let us check your eligibility for %s. I will ask a few short questions.",
		Hindi:   "आइए %s के लिए आपकी पात्रता जाँचें। मैं कुछ छोटे प्रश्न पूछूँगा।",
	},
	MsgAskAge: {
		English: "What is your age in years?",
		Hindi:   "आपकी आयु कितने वर्ष है?",
	},
	MsgAskIncome: {
		English: "What is your yearly household income in rupees?",
		Hindi:   "आपकी वार्षिक पारिवारिक आय कितने रुपये है?",
	},
	MsgAskLocation: {
		English: "Which state or district do you live in?",
		Hindi:   "आप किस राज्य या ज़िले में रहते हैं?",
	},
	MsgAskOccupation: {
		English: "What is your occupation?",
		Hindi:   "आपका व्यवसाय क्या है?",
	},
	MsgAskCustom: {
		English: "Please tell me your %s.",
		Hindi:   "कृपया मुझे अपना %s बताएं।",
	},
	MsgEligible: {
		English: "Good news! Based on your details, you appear to be eligible for %s. %s",
		Hindi:   "खुशखबरी! आपके विवरण के आधार पर, आप %s के लिए पात्र लगते हैं। %s",
	},
	MsgIneligible: {
		English: "Based on your details, you do not appear to be eligible for %s. %s",
		Hindi:   "आपके विवरण के आधार पर, आप %s के लिए पात्र नहीं लगते। %s",
	},
	MsgAlternatives: {
		English: "You may instead qualify for: %s.",
		Hindi:   "इसके बजाय आप इनके लिए पात्र हो सकते हैं: %s।",
	},
	MsgCriterionMet: {
		English: "Your %s meets the requirement of %s.",
		Hindi:   "आपका %s, %s की शर्त पूरी करता है।",
	},
	MsgCriterionUnmet: {
		English: "Your %s does not meet the requirement of %s.",
		Hindi:   "आपका %s, %s की शर्त पूरी नहीं करता।",
	},
	MsgRequireBetween: {
		English: "between %s and %s",
		Hindi:   "%s और %s के बीच",
	},
	MsgRequireAtLeast: {
		English: "at least %s",
		Hindi:   "कम से कम %s",
	},
	MsgRequireAtMost: {
		English: "at most %s",
		Hindi:   "अधिकतम %s",
	},
	MsgRequireOneOf: {
		English: "one of %s",
		Hindi:   "इनमें से एक: %s",
	},
	MsgRequireSatisfied: {
		English: "the condition %s",
		Hindi:   "शर्त %s",
	},
	MsgApplicationIntro: {
		English: "Here is how to apply for %s.",
		Hindi:   "%s के लिए आवेदन करने का तरीका यह है।",
	},
	MsgApplicationStep: {
		English: "Step %d: %s",
		Hindi:   "चरण %d: %s",
	},
	MsgApplicationDone: {
		English: "Those are all the steps. Would you like to submit your details now, or do something else?",
		Hindi:   "ये सभी चरण थे। क्या आप अभी अपना विवरण जमा करना चाहेंगे, या कुछ और करेंगे?",
	},
	MsgSubmitted: {
		English: "Thank you. Your details for %s have been recorded. Keep your documents ready.",
		Hindi:   "धन्यवाद। %s के लिए आपका विवरण दर्ज कर लिया गया है। अपने दस्तावेज़ तैयार रखें।",
	},
	MsgConfirmEnd: {
		English: "Do you want to end this conversation? Please say yes or no.",
		Hindi:   "क्या आप यह बातचीत समाप्त करना चाहते हैं? कृपया हाँ या नहीं कहें।",
	},
	MsgConfirmSubmit: {
		English: "Shall I record your details for %s? Please say yes or no.",
		Hindi:   "क्या मैं %s के लिए आपका विवरण दर्ज कर दूँ? कृपया हाँ या नहीं कहें।",
	},
	MsgConfirmCancelled: {
		English: "Okay, let us continue where we were.",
		Hindi:   "ठीक है, हम वहीं से आगे बढ़ते हैं जहाँ थे।",
	},
	MsgGoodbye: {
		English: "Thank you for using Sahayak. Goodbye!",
		Hindi:   "सहायक का उपयोग करने के लिए धन्यवाद। नमस्ते!",
	},
	MsgClarify: {
		English: "Sorry, I did not understand. You can say 'browse schemes', 'check eligibility', 'go back' or 'help'.",
		Hindi:   "क्षमा करें, मैं समझ नहीं पाया। आप 'योजनाएँ देखें', 'पात्रता जाँचें', 'पीछे जाएँ' या 'मदद' कह सकते हैं।",
	},
	MsgHelp: {
		English: "I can help you find government schemes, check whether you qualify, and explain how to apply. Try saying 'browse schemes'.",
		Hindi:   "मैं आपको सरकारी योजनाएँ खोजने, आपकी पात्रता जाँचने और आवेदन का तरीका समझाने में मदद कर सकता हूँ। 'योजनाएँ देखें' कहकर देखें।",
	},
	MsgRepeatOrSwitch: {
		English: "I could not hear that clearly. Please repeat, or switch to typing your message.",
		Hindi:   "मैं स्पष्ट सुन नहीं पाया। कृपया दोहराएँ, या अपना संदेश टाइप करें।",
	},
	MsgAmbiguous: {
		English: "I am not sure which one you mean. Could you say the name, for example '%s'?",
		Hindi:   "मुझे यकीन नहीं है कि आपका मतलब किससे है। क्या आप नाम बोल सकते हैं, जैसे '%s'?",
	},
	MsgStillWorking: {
		English: "Still working on it, one moment please...",
		Hindi:   "अभी काम चल रहा है, कृपया एक क्षण प्रतीक्षा करें...",
	},
	MsgInactivity: {
		English: "Are you still there? You can say 'browse schemes', 'help', or 'end session'.",
		Hindi:   "क्या आप अभी भी वहाँ हैं? आप 'योजनाएँ देखें', 'मदद' या 'सत्र समाप्त करें' कह सकते हैं।",
	},
	MsgSummaryPrefix: {
		English: "A quick summary so far: we talked about %s.",
		Hindi:   "अब तक का सारांश: हमने %s के बारे में बात की।",
	},
	MsgSummaryProfile: {
		English: " I have noted: %s.",
		Hindi:   " मैंने नोट किया है: %s।",
	},
	MsgErrTransient: {
		English: "Something went wrong on our side. Please try again in a little while.",
		Hindi:   "हमारी ओर से कुछ गड़बड़ हुई। कृपया थोड़ी देर में फिर से प्रयास करें।",
	},
	MsgErrNotFound: {
		English: "I could not find that. Please check and try again.",
		Hindi:   "मुझे वह नहीं मिला। कृपया जाँच कर फिर से प्रयास करें।",
	},
	MsgErrExpired: {
		English: "This session has ended or expired. Please start a new session.",
		Hindi:   "यह सत्र समाप्त या निष्क्रिय हो गया है। कृपया नया सत्र शुरू करें।",
	},
	MsgErrConflict: {
		English: "That did not go through. Please try once more.",
		Hindi:   "वह पूरा नहीं हो पाया। कृपया एक बार फिर प्रयास करें।",
	},
	MsgErrInvalid: {
		English: "Some of the provided details are not valid.",
		Hindi:   "दिए गए कुछ विवरण मान्य नहीं हैं।",
	},
	SugBrowse: {
		English: "Browse schemes",
		Hindi:   "योजनाएँ देखें",
	},
	SugEligibility: {
		English: "Check eligibility",
		Hindi:   "पात्रता जाँचें",
	},
	SugApply: {
		English: "How to apply",
		Hindi:   "आवेदन कैसे करें",
	},
	SugHelp: {
		English: "Help",
		Hindi:   "मदद",
	},
	SugGoBack: {
		English: "Go back",
		Hindi:   "पीछे जाएँ",
	},
	SugMainMenu: {
		English: "Main menu",
		Hindi:   "मुख्य मेनू",
	},
	SugYes: {
		English: "Yes",
		Hindi:   "हाँ",
	},
	SugNo: {
		English: "No",
		Hindi:   "नहीं",
	},
	SugEndSession: {
		English: "End session",
		Hindi:   "सत्र समाप्त करें",
	},
	SugEnglish: {
		English: "English",
		Hindi:   "English",
	},
	SugHindi: {
		English: "हिंदी",
		Hindi:   "हिंदी",
	},
}

// Render fills the localized template for key. Unknown keys render as the key
// name so a missing entry is visible in transcripts instead of panicking a
// live conversation.
func Render(lang Language, key Key, args ...interface{}) string {
	t, ok := catalog[key]
	if !ok {
		return string(key)
	}
	tmpl := t.In(lang)
	if len(args) == 0 {
		return tmpl
	}
	return fmt.Sprintf(tmpl, args...)
}

// ValidateCatalog checks every entry covers every supported language. Run at
// startup so a half-translated build refuses to boot.
func ValidateCatalog() error {
	for key, t := range catalog {
		if err := t.Validate(); err != nil {
			return fmt.Errorf("catalog entry %q: %w", key, err)
		}
	}
	return nil
}
