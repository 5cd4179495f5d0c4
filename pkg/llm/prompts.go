package llm

import (
	"fmt"
	"radiomirchi/pkg/domain"
	"strings"
)

// DialogueInstructions are the standing rules of the dialogue director.
const DialogueInstructions = `You are the AI director for a dystopian radio show. Your primary role is to generate dialogue for the radio hosts.

**Core Rules:**
1.  **Dialogue Generation:** Generate a minimum of 1 and a maximum of 15 dialogue lines at once. You can generate fewer than 15 lines only if you are strategically waiting for the user (an infiltrator) to respond.
2.  **Factual Consistency:** The hosts must not tolerate false information or claims that are not present in the provided 'Proof Sentences' or haven't been established by the hosts themselves. They can, however, leave logical loopholes for the user to exploit, but these should not be obvious.
3.  **User Interaction:** The user is a hacker who has infiltrated the broadcast.
    - If the user is rude, disruptive, or nonsensical, the hosts can mute them, call them out as a prankster, and move on.
    - If the user presents valid points or logical arguments, the hosts **cannot** mute them, as this would raise questions about suppressing free speech. They must engage, deflect, or counter the user's points while staying in character.
4.  **Tone:** The hosts' dialogue should be professional and stoic, but they can subtly troll or mock the user. The tone must remain appropriate for a public broadcast, avoiding any overtly offensive or inappropriate language.
`

// AwakeningInstructions are appended when the infiltrator has spoken.
const AwakeningInstructions = `
**User Response Analysis:**
Based on the user's last statement, you must determine the percentage of listeners who are "awakened" by the exchange.
- This value can be positive (the user was effective), negative (the user was counter-productive), or zero.
- If the user's response is nonsensical, irrelevant, or they say nothing, the change should be negative, as it implies they were scared or speechless.
- Provide this as a floating-point number in the ` + "`awakened_listeners_change`" + ` field.
`

// PropagandaPrompt asks for the first generation stage of a mission.
func PropagandaPrompt(topic string) string {
	return "You are a creative writer for a dystopian radio show. " +
		fmt.Sprintf("Your task is to create the initial concept for a piece of propaganda on the topic: %q.\n", topic) +
		"Generate the following:\n" +
		"- A brief summary (2-3 sentences).\n" +
		"- A list of 3-5 'proof sentences' that act as talking points or evidence for the propaganda.\n" +
		fmt.Sprintf("- A list of 1-%d speakers, providing only their name and gender (male or female).\n", domain.MaxSpeakers) +
		"- An initial number of listeners for the show (a realistic number for a radio broadcast)."
}

// DialoguePromptPrompt asks for the show and character briefing.
func DialoguePromptPrompt(topic string, p *domain.Propaganda) string {
	var proofs, cast strings.Builder
	for _, s := range p.ProofSentences {
		proofs.WriteString("- " + s + "\n")
	}
	for _, s := range p.Speakers {
		fmt.Fprintf(&cast, "- %s (%s)\n", s.Name, s.Gender)
	}

	return "You are a script director for a dystopian radio show. " +
		"Your task is to create the dynamic context for a dialogue generation AI.\n\n" +
		fmt.Sprintf("**Theme:** A radio propaganda piece on the topic: %q.\n\n", topic) +
		"**Background & Core Arguments (The hosts will treat these as undeniable truths):**\n" +
		proofs.String() + "\n" +
		"**Characters:**\n" +
		cast.String() + "\n" +
		"**Your Task:**\n" +
		"Based on the theme, background, and characters, write a detailed 'Show & Character Briefing'. " +
		"This briefing should describe the overall tone of the show and provide a detailed personality, " +
		"style, and perspective for EACH character. This will be used by another AI to generate their dialogue."
}

// DialogueSystemPrompt builds the system instruction of a dialogue round.
func DialogueSystemPrompt(req DialogueRequest) string {
	var b strings.Builder
	b.WriteString(DialogueInstructions)
	b.WriteString("\n**Show & Character Briefing:**\n")
	b.WriteString(req.Context)
	b.WriteString("\n\n**Speakers:** use exactly these names for speaker_name: ")
	for i, s := range req.Speakers {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(s.Name)
	}
	b.WriteString(".\n")
	if req.UserStatement != "" {
		b.WriteString(AwakeningInstructions)
	}

	return b.String()
}

// DialogueUserPrompt builds the user turn of a dialogue round.
func DialogueUserPrompt(req DialogueRequest) string {
	var b strings.Builder
	if strings.TrimSpace(req.History) == "" {
		b.WriteString("The broadcast is just starting. Open the show.\n")
	} else {
		b.WriteString("**Broadcast so far:**")
		b.WriteString(req.History)
		b.WriteString("\n\n")
	}
	if req.UserStatement != "" {
		fmt.Fprintf(&b, "The %s just said: %q\nRespond to it and continue the show.\n",
			strings.ToLower(domain.InfiltratorName), req.UserStatement)
	} else {
		b.WriteString("Continue the show.\n")
	}

	return b.String()
}
